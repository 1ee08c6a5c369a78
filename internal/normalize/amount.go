// Package normalize converts the heterogeneous numeric, currency and date
// spellings found in OCR output into canonical forms. Everything here is
// pure computation; malformed input degrades to zero values, never errors.
package normalize

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// symbolToISO maps currency symbols to ISO-4217 codes.
var symbolToISO = map[string]string{
	"€": "EUR",
	"$": "USD",
	"£": "GBP",
	"¥": "JPY",
}

// knownCodes are the ISO codes accepted as bare 3-letter tokens.
var knownCodes = map[string]struct{}{
	"EUR": {}, "USD": {}, "GBP": {}, "JPY": {},
	"CHF": {}, "CAD": {}, "AUD": {}, "INR": {},
}

var nonNumericRe = regexp.MustCompile(`[^0-9.,]`)

// ParseAmount parses a localized numeric string into a non-negative float
// rounded to two decimals. A decimal comma (European convention) is
// recognized when a comma is followed by a trailing 1-2 digit group;
// otherwise commas are treated as thousands separators. Malformed input
// parses to 0 and is expected to receive low confidence downstream.
func ParseAmount(raw string) float64 {
	cleaned := nonNumericRe.ReplaceAllString(raw, "")
	if cleaned == "" {
		return 0
	}

	lastComma := strings.LastIndex(cleaned, ",")
	lastDot := strings.LastIndex(cleaned, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		// Both present: the rightmost separator is the decimal mark.
		if lastComma > lastDot {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", -1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case lastComma >= 0:
		frac := cleaned[lastComma+1:]
		if len(frac) >= 1 && len(frac) <= 2 && !strings.Contains(frac, ",") {
			head := strings.ReplaceAll(cleaned[:lastComma], ",", "")
			cleaned = head + "." + frac
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0
	}
	f, _ := d.Abs().Round(2).Float64()
	return f
}

// ResolveCurrency maps a captured symbol or code onto an ISO-4217 code,
// defaulting to EUR (primary deployment locale) when nothing matches.
func ResolveCurrency(token string) string {
	token = strings.TrimSpace(token)
	if token == "" {
		return "EUR"
	}
	if iso, ok := symbolToISO[token]; ok {
		return iso
	}
	upper := strings.ToUpper(token)
	if _, ok := knownCodes[upper]; ok {
		return upper
	}
	return "EUR"
}
