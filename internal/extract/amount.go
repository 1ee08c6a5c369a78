package extract

import (
	"regexp"

	"github.com/ticketscan/ticketscan/internal/entity"
	"github.com/ticketscan/ticketscan/internal/normalize"
)

// matchAmounts runs one amount pattern list over the full text and emits a
// scored candidate per raw match. Patterns are applied in priority order
// (keyword-anchored first, bare currency-amount last); overlapping matches
// from different patterns coexist and the resolver's top pick suppresses
// the rest.
func matchAmounts(kind fieldKind, patterns []*regexp.Regexp, dc *docContext) []candidate {
	var cands []candidate
	for _, re := range patterns {
		for _, loc := range re.FindAllStringSubmatchIndex(dc.text, -1) {
			c := candidate{
				raw:   dc.text[loc[0]:loc[1]],
				start: loc[0],
			}
			curBefore := group(dc.text, loc, 1)
			c.value = group(dc.text, loc, 2)
			curAfter := group(dc.text, loc, 3)

			c.amount = normalize.ParseAmount(c.value)
			token := curBefore
			if token == "" {
				token = curAfter
			}
			c.currency = normalize.ResolveCurrency(token)

			dc.locate(&c)
			score(kind, &c, dc)
			cands = append(cands, c)
		}
	}
	return cands
}

// group extracts one submatch from FindAllStringSubmatchIndex output,
// tolerating unmatched optional groups.
func group(text string, loc []int, n int) string {
	if 2*n+1 >= len(loc) || loc[2*n] < 0 {
		return ""
	}
	return text[loc[2*n]:loc[2*n+1]]
}

// resolveTotal picks the winning total-amount candidate or the documented
// default (0 EUR, floor confidence) when the text offers none.
func resolveTotal(pt *patternTable, dc *docContext) entity.AmountField {
	best, ok := pickBest(matchAmounts(fieldTotal, pt.total, dc))
	if !ok {
		return entity.AmountField{Value: 0, Currency: "EUR", Confidence: defaultConfidence}
	}
	return entity.AmountField{
		Value:      best.amount,
		Currency:   best.currency,
		Confidence: best.confidence,
		RawText:    best.raw,
	}
}

// resolveOptionalAmount returns nil when no candidate exists; subtotal and
// tax are optional fields with no default.
func resolveOptionalAmount(kind fieldKind, patterns []*regexp.Regexp, dc *docContext) *entity.AmountField {
	best, ok := pickBest(matchAmounts(kind, patterns, dc))
	if !ok {
		return nil
	}
	return &entity.AmountField{
		Value:      best.amount,
		Currency:   best.currency,
		Confidence: best.confidence,
		RawText:    best.raw,
	}
}
