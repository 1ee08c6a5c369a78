package extract

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/ticketscan/ticketscan/internal/entity"
)

const (
	merchantMinLen = 2
	merchantMaxLen = 50

	defaultMerchant = "unknown merchant"
)

// boilerplateRe matches receipt wording that can never be a merchant name.
var boilerplateRe = regexp.MustCompile(`(?i)^\s*(ticket|re[cç]u|receipt|facture|invoice|caisse|cashier|merci|thank\s*you|bienvenue|welcome|tva|vat|total|date|tel|t[eé]l)\b`)

// matchMerchants merges two independent candidate strategies into one pool:
// positional (the first 3 non-blank lines) and keyword-anchored (store
// indicator words followed by a short trailing string). Candidates must
// pass the validity filter before being scored at all.
func matchMerchants(pt *patternTable, dc *docContext) []candidate {
	var cands []candidate

	// strategy 1: positional
	seen := 0
	offset := 0
	for i, line := range dc.lines {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			if name, ok := normalizeMerchant(trimmed); ok {
				c := candidate{
					raw:       trimmed,
					value:     name,
					start:     offset,
					lineIndex: i,
					line:      strings.ToLower(line),
				}
				if len(dc.text) > 0 {
					c.positionRatio = float64(offset) / float64(len(dc.text))
				}
				score(fieldMerchant, &c, dc)
				cands = append(cands, c)
			}
			seen++
			if seen == 3 {
				break
			}
		}
		offset += len(line) + 1
	}

	// strategy 2: keyword-anchored
	for _, re := range pt.merchantKeyword {
		for _, loc := range re.FindAllStringSubmatchIndex(dc.text, -1) {
			raw := group(dc.text, loc, 1)
			name, ok := normalizeMerchant(raw)
			if !ok {
				continue
			}
			c := candidate{
				raw:   raw,
				value: name,
				start: loc[0],
			}
			dc.locate(&c)
			score(fieldMerchant, &c, dc)
			cands = append(cands, c)
		}
	}
	return cands
}

// normalizeMerchant applies the validity filter, then cleans the accepted
// name: whitespace collapsed, disallowed punctuation stripped, truncated to
// 50 characters.
func normalizeMerchant(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if boilerplateRe.MatchString(s) {
		return "", false
	}
	if amountLikeRe.MatchString(s) && len(digitRe.FindAllString(s, -1)) > len(s)/2 {
		return "", false
	}
	if dateLikeRe.MatchString(s) {
		return "", false
	}

	runes := []rune(s)
	if len(runes) < merchantMinLen || len(runes) > merchantMaxLen {
		return "", false
	}

	var letters, specials int
	for _, r := range runes {
		switch {
		case unicode.IsLetter(r):
			letters++
		case unicode.IsDigit(r) || unicode.IsSpace(r):
			// neutral
		default:
			specials++
		}
	}
	if letters == 0 {
		return "", false
	}
	// letter-density >= 30%, special-character density <= 30%
	if float64(letters)/float64(len(runes)) < 0.3 {
		return "", false
	}
	if float64(specials)/float64(len(runes)) > 0.3 {
		return "", false
	}

	// strip disallowed punctuation; keep what real shop names use
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		switch r {
		case '&', '\'', '-', '.':
			return r
		}
		return -1
	}, s)
	cleaned = strings.Join(strings.Fields(cleaned), " ")

	runes = []rune(cleaned)
	if len(runes) < merchantMinLen {
		return "", false
	}
	if len(runes) > merchantMaxLen {
		cleaned = string(runes[:merchantMaxLen])
	}
	return cleaned, true
}

// resolveMerchant picks the winner or the documented sentinel default.
func resolveMerchant(pt *patternTable, dc *docContext) entity.Field[string] {
	best, ok := pickBest(matchMerchants(pt, dc))
	if !ok {
		return entity.Field[string]{Value: defaultMerchant, Confidence: defaultConfidence}
	}
	return entity.Field[string]{
		Value:      best.value,
		Confidence: best.confidence,
		RawText:    best.raw,
	}
}
