package constants

import "strings"

// PaymentMethod is the canonical payment method stored on a receipt.
type PaymentMethod string

const (
	PaymentCard    PaymentMethod = "CARD"
	PaymentCash    PaymentMethod = "CASH"
	PaymentCheque  PaymentMethod = "CHEQUE"
	PaymentMobile  PaymentMethod = "MOBILE"
	PaymentVoucher PaymentMethod = "VOUCHER"
	PaymentUnknown PaymentMethod = "UNKNOWN"
)

// paymentSynonyms is ordered longest key first so the most specific
// synonym wins when an OCR capture contains several of them.
var paymentSynonyms = []struct {
	word   string
	method PaymentMethod
}{
	{"ticket restaurant", PaymentVoucher},
	{"titre restaurant", PaymentVoucher},
	{"carte bancaire", PaymentCard},
	{"sans contact", PaymentCard},
	{"carte bleue", PaymentCard},
	{"credit card", PaymentCard},
	{"contactless", PaymentCard},
	{"mastercard", PaymentCard},
	{"google pay", PaymentMobile},
	{"debit card", PaymentCard},
	{"apple pay", PaymentMobile},
	{"espèces", PaymentCash},
	{"especes", PaymentCash},
	{"liquide", PaymentCash},
	{"voucher", PaymentVoucher},
	{"chèque", PaymentCheque},
	{"cheque", PaymentCheque},
	{"paylib", PaymentMobile},
	{"carte", PaymentCard},
	{"check", PaymentCheque},
	{"visa", PaymentCard},
	{"amex", PaymentCard},
	{"card", PaymentCard},
	{"cash", PaymentCash},
	{"cb", PaymentCard},
}

// CanonicalizePayment maps raw receipt wording (both languages) to a
// canonical payment method. Matching is substring-based so OCR lines
// like "PAIEMENT CB ****1234" still resolve.
func CanonicalizePayment(input string) (PaymentMethod, bool) {
	if input == "" {
		return PaymentUnknown, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))
	for _, syn := range paymentSynonyms {
		if strings.Contains(normalized, syn.word) {
			return syn.method, true
		}
	}
	return PaymentUnknown, false
}
