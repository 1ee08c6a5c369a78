package extract

import (
	"sort"
	"strings"
)

// fieldKind identifies which semantic field a candidate competes for. The
// scorer uses it to pick the right heuristic rule set.
type fieldKind int

const (
	fieldTotal fieldKind = iota
	fieldSubtotal
	fieldTax
	fieldDate
	fieldMerchant
	fieldPayment
	fieldReceiptNo
)

// candidate is one raw, unvalidated interpretation of a text span.
// Transient: discarded after resolution.
type candidate struct {
	raw      string  // full matched substring
	value    string  // primary parsed/captured value
	currency string  // captured currency token, amounts only
	amount   float64 // normalized amount, amounts only

	start         int     // byte offset of the match in the full text
	positionRatio float64 // start / len(text), in [0,1]
	lineIndex     int     // zero-based index of the containing line
	line          string  // the full containing line, lowercased

	confidence float64 // assigned by the scorer
}

// docContext carries the whole-document signals the scorer needs. Built
// once per extract call.
type docContext struct {
	text      string
	lower     string
	lines     []string
	lineCount int
	// today in YYYY-MM-DD, from the engine clock; used only by the date
	// recency heuristics.
	today string
}

func newDocContext(text, today string) *docContext {
	lines := strings.Split(text, "\n")
	return &docContext{
		text:      text,
		lower:     strings.ToLower(text),
		lines:     lines,
		lineCount: len(lines),
		today:     today,
	}
}

// locate fills the positional fields of a candidate from its byte offset.
func (dc *docContext) locate(c *candidate) {
	if len(dc.text) > 0 {
		c.positionRatio = float64(c.start) / float64(len(dc.text))
	}
	idx := 0
	offset := 0
	for i, line := range dc.lines {
		next := offset + len(line) + 1
		if c.start < next {
			idx = i
			break
		}
		offset = next
		idx = i
	}
	c.lineIndex = idx
	c.line = strings.ToLower(dc.lines[idx])
}

// pickBest returns the top-confidence candidate. Sorting is stable with a
// position tie-break so repeated calls return bit-identical results.
func pickBest(cands []candidate) (candidate, bool) {
	if len(cands) == 0 {
		return candidate{}, false
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].confidence != cands[j].confidence {
			return cands[i].confidence > cands[j].confidence
		}
		return cands[i].start < cands[j].start
	})
	return cands[0], true
}
