package extract

import (
	"github.com/ticketscan/ticketscan/internal/entity"
	"github.com/ticketscan/ticketscan/internal/normalize"
)

// matchDates emits one candidate per parseable date substring. Substrings
// that fail calendar validation (month 13, Feb 30) are treated as absent,
// not errors.
func matchDates(pt *patternTable, dc *docContext) []candidate {
	var cands []candidate
	for _, re := range pt.date {
		for _, loc := range re.FindAllStringSubmatchIndex(dc.text, -1) {
			raw := group(dc.text, loc, 1)
			iso, ok := normalize.ParseDate(raw)
			if !ok {
				continue
			}
			c := candidate{
				raw:   raw,
				value: iso,
				start: loc[0],
			}
			dc.locate(&c)
			score(fieldDate, &c, dc)
			cands = append(cands, c)
		}
	}
	return cands
}

// resolveDate picks the winning date or falls back to the engine clock's
// current date at floor confidence. The fallback is the only place the
// result depends on anything beyond the input text.
func resolveDate(pt *patternTable, dc *docContext) entity.Field[string] {
	best, ok := pickBest(matchDates(pt, dc))
	if !ok {
		return entity.Field[string]{Value: dc.today, Confidence: defaultConfidence}
	}
	return entity.Field[string]{
		Value:      best.value,
		Confidence: best.confidence,
		RawText:    best.raw,
	}
}
