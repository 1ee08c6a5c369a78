package extract

import (
	"fmt"
	"strings"

	"github.com/ticketscan/ticketscan/internal/entity"
)

// summaryMaxLen caps the generated description.
const summaryMaxLen = 200

var currencySymbols = map[string]string{
	"EUR": "€",
	"USD": "$",
	"GBP": "£",
	"JPY": "¥",
}

// buildSummary composes a short human-readable purchase description from
// the resolved fields. Pure string composition, no scoring; clauses are
// included only when the corresponding field resolved to something
// meaningful.
func buildSummary(result *entity.ExtractionResult) string {
	var b strings.Builder
	b.WriteString("Achat")

	if result.MerchantName.Value != "" && result.MerchantName.Value != defaultMerchant {
		fmt.Fprintf(&b, " chez %s", result.MerchantName.Value)
	}

	fmt.Fprintf(&b, " pour un montant de %.2f%s", result.TotalAmount.Value, currencySuffix(result.TotalAmount.Currency))

	if result.Date.Confidence > defaultConfidence {
		fmt.Fprintf(&b, " le %s", result.Date.Value)
	}

	if n := len(result.Items); n > 0 {
		if n == 1 {
			b.WriteString(" (1 article)")
		} else {
			fmt.Fprintf(&b, " (%d articles)", n)
		}
	}

	return truncate(b.String(), summaryMaxLen)
}

func currencySuffix(iso string) string {
	if sym, ok := currencySymbols[iso]; ok {
		return sym
	}
	return " " + iso
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if n <= 0 || len(runes) <= n {
		return s
	}
	if n <= 1 {
		return string(runes[:n])
	}
	return string(runes[:n-1]) + "…"
}
