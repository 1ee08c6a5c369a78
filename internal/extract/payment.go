package extract

import (
	"strings"

	"github.com/ticketscan/ticketscan/constants"
	"github.com/ticketscan/ticketscan/internal/entity"
)

// matchPayments emits a candidate per recognizable payment wording. The
// candidate value is the canonical method, not the raw wording.
func matchPayments(pt *patternTable, dc *docContext) []candidate {
	var cands []candidate
	for _, re := range pt.payment {
		for _, loc := range re.FindAllStringSubmatchIndex(dc.text, -1) {
			raw := group(dc.text, loc, 1)
			method, ok := constants.CanonicalizePayment(raw)
			if !ok {
				continue
			}
			c := candidate{
				raw:   strings.TrimSpace(raw),
				value: string(method),
				start: loc[0],
			}
			dc.locate(&c)
			score(fieldPayment, &c, dc)
			cands = append(cands, c)
		}
	}
	return cands
}

func resolvePayment(pt *patternTable, dc *docContext) entity.Field[constants.PaymentMethod] {
	best, ok := pickBest(matchPayments(pt, dc))
	if !ok {
		return entity.Field[constants.PaymentMethod]{Value: constants.PaymentUnknown, Confidence: defaultConfidence}
	}
	return entity.Field[constants.PaymentMethod]{
		Value:      constants.PaymentMethod(best.value),
		Confidence: best.confidence,
		RawText:    best.raw,
	}
}

// matchReceiptNumbers picks up ticket/invoice identifiers.
func matchReceiptNumbers(pt *patternTable, dc *docContext) []candidate {
	var cands []candidate
	for _, re := range pt.receiptNo {
		for _, loc := range re.FindAllStringSubmatchIndex(dc.text, -1) {
			raw := group(dc.text, loc, 1)
			c := candidate{
				raw:   raw,
				value: strings.ToUpper(strings.TrimSpace(raw)),
				start: loc[0],
			}
			dc.locate(&c)
			score(fieldReceiptNo, &c, dc)
			cands = append(cands, c)
		}
	}
	return cands
}

func resolveReceiptNumber(pt *patternTable, dc *docContext) entity.Field[string] {
	best, ok := pickBest(matchReceiptNumbers(pt, dc))
	if !ok {
		return entity.Field[string]{Value: "", Confidence: defaultConfidence}
	}
	return entity.Field[string]{
		Value:      best.value,
		Confidence: best.confidence,
		RawText:    best.raw,
	}
}
