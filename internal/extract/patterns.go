package extract

import (
	"regexp"

	"github.com/ticketscan/ticketscan/constants"
)

// Shared regex fragments. amountFrag tolerates both decimal conventions and
// thousands separators; currFrag captures symbols and bare ISO codes.
const (
	amountFrag = `(\d{1,3}(?:,\d{3})+(?:\.\d{1,2})?|\d{1,3}(?:[ .]\d{3})+(?:,\d{1,2})?|\d+(?:[.,]\d{1,2})?)`
	currFrag   = `(€|\$|£|¥|(?:EUR|USD|GBP|JPY|CHF|CAD)|(?:eur|usd|gbp|jpy|chf|cad))`
)

// patternTable holds the compiled, language-specific patterns for every
// candidate matcher. Tables are built once at package init and never
// mutated, so the engine is safe for concurrent use.
type patternTable struct {
	// scalar amount fields; keyword-anchored patterns come first, the bare
	// currency-amount fallback last. Groups: optional currency, amount,
	// optional currency.
	total    []*regexp.Regexp
	subtotal []*regexp.Regexp
	tax      []*regexp.Regexp

	// date candidates; group 1 is the raw date substring.
	date []*regexp.Regexp

	// merchant indicator words followed by a short trailing string.
	merchantKeyword []*regexp.Regexp

	// payment method lines; group 1 is the raw method wording.
	payment []*regexp.Regexp

	// receipt/ticket numbers; group 1 is the identifier.
	receiptNo []*regexp.Regexp

	// line-item shapes, tried in order per line:
	// qty x name price / name qty x price / name price.
	itemQtyFirst *regexp.Regexp
	itemQtyMid   *regexp.Regexp
	itemBare     *regexp.Regexp

	// lines that must never be parsed as items.
	itemExclude []*regexp.Regexp
}

func amountPattern(keywords string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(?:` + keywords + `)\s*:?\s*` + currFrag + `?\s*` + amountFrag + `\s*` + currFrag + `?`)
}

var bareAmountPatterns = []*regexp.Regexp{
	regexp.MustCompile(currFrag + `\s*` + amountFrag + `()`),
	regexp.MustCompile(`()` + amountFrag + `\s*` + currFrag),
}

var datePatterns = []*regexp.Regexp{
	// 25/12/2023, 25-12-23, 2023/12/25, 25.12.2023
	regexp.MustCompile(`\b(\d{1,4}[/.\-]\d{1,2}[/.\-]\d{1,4})\b`),
	// 25 décembre 2023, 1er janvier 24
	regexp.MustCompile(`(?i)\b(\d{1,2}(?:er|st|nd|rd|th)?\s+[a-zA-Zéûà]{3,9}\.?\s+\d{2,4})\b`),
	// December 25, 2023
	regexp.MustCompile(`(?i)\b([a-zA-Zéûà]{3,9}\.?\s+\d{1,2}(?:er|st|nd|rd|th)?,?\s+\d{2,4})\b`),
}

var itemExcludePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(total|sous[- ]?total|subtotal|montant|tva|vat|tax|ttc|ht|rendu|change|cash|esp[eè]ces|carte|card|cb|visa|mastercard|amex|merci|thank|bienvenue|welcome|caisse|cashier|ticket|re[cç]u|receipt|facture|invoice|tel|t[eé]l[eé]phone|siret|siren|www|http)\b`),
	regexp.MustCompile(`^\s*[-=*_.]+\s*$`),
	regexp.MustCompile(`^\s*\d{1,2}[/.\-]\d{1,2}[/.\-]\d{2,4}\s*$`),
	regexp.MustCompile(`^\s*\d{1,2}:\d{2}(?::\d{2})?\s*$`),
}

var frTable = &patternTable{
	total: append([]*regexp.Regexp{
		amountPattern(`total\s+ttc|net\s+[aà]\s+payer|total\s+[aà]\s+payer|montant\s+(?:total|d[uû]|[aà]\s+payer)|[aà]\s+payer|total`),
		amountPattern(`montant`),
	}, bareAmountPatterns...),
	subtotal: []*regexp.Regexp{
		amountPattern(`sous[- ]?total|total\s+ht|montant\s+ht`),
	},
	tax: []*regexp.Regexp{
		amountPattern(`tva(?:\s*\d{1,2}[.,]?\d{0,2}\s*%)?|taxe|montant\s+tva`),
	},
	date: datePatterns,
	merchantKeyword: []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:magasin|boutique|march[eé]|supermarch[eé]|[eé]picerie|pharmacie|boulangerie|restaurant|tabac|station)\s*:?\s+([^\n]{2,50})`),
	},
	payment: []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:pay[eé]\s+(?:par|en)|paiement|r[eè]gl[eé]|r[eè]glement|mode\s+de\s+paiement)\s*:?\s*([a-zA-Zéè ]{2,25})`),
		regexp.MustCompile(`(?i)\b(carte\s+(?:bancaire|bleue)|cb|esp[eè]ces|liquide|ch[eè]que|sans\s+contact|ticket\s+restaurant|visa|mastercard|amex)\b`),
	},
	receiptNo: []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:ticket|re[cç]u|facture|transaction|trans\.?|caisse)\s*(?:n[o°]|no\.?|num[eé]ro|#)?\s*:?\s*([A-Za-z0-9][A-Za-z0-9\-]{3,19})`),
	},
	itemQtyFirst: regexp.MustCompile(`(?i)^\s*(\d{1,3})\s*[x*]\s*(.{2,60}?)\s+` + amountFrag + `\s*` + currFrag + `?\s*$`),
	itemQtyMid:   regexp.MustCompile(`(?i)^\s*(.{2,60}?)\s+(\d{1,3})\s*[x*]\s*` + amountFrag + `\s*` + currFrag + `?\s*$`),
	itemBare:     regexp.MustCompile(`(?i)^\s*(.{2,60}?)\s{1,}` + amountFrag + `\s*` + currFrag + `?\s*$`),
	itemExclude:  itemExcludePatterns,
}

var enTable = &patternTable{
	total: append([]*regexp.Regexp{
		amountPattern(`grand\s+total|total\s+due|amount\s+due|balance\s+due|total\s+amount|total`),
		amountPattern(`amount`),
	}, bareAmountPatterns...),
	subtotal: []*regexp.Regexp{
		amountPattern(`sub[- ]?total`),
	},
	tax: []*regexp.Regexp{
		amountPattern(`vat(?:\s*\d{1,2}[.,]?\d{0,2}\s*%)?|tax|sales\s+tax`),
	},
	date: datePatterns,
	merchantKeyword: []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:store|shop|market|supermarket|grocery|pharmacy|bakery|restaurant|station)\s*:?\s+([^\n]{2,50})`),
	},
	payment: []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:paid\s+(?:by|with|in)|payment(?:\s+method)?|tender)\s*:?\s*([a-zA-Z ]{2,25})`),
		regexp.MustCompile(`(?i)\b(credit\s+card|debit\s+card|card|cash|cheque|check|contactless|visa|mastercard|amex)\b`),
	},
	receiptNo: []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:receipt|invoice|ticket|transaction|trans\.?|ref)\s*(?:n[o°]|no\.?|number|#)?\s*:?\s*([A-Za-z0-9][A-Za-z0-9\-]{3,19})`),
	},
	itemQtyFirst: regexp.MustCompile(`(?i)^\s*(\d{1,3})\s*[x*]\s*(.{2,60}?)\s+` + amountFrag + `\s*` + currFrag + `?\s*$`),
	itemQtyMid:   regexp.MustCompile(`(?i)^\s*(.{2,60}?)\s+(\d{1,3})\s*[x*]\s*` + amountFrag + `\s*` + currFrag + `?\s*$`),
	itemBare:     regexp.MustCompile(`(?i)^\s*(.{2,60}?)\s{1,}` + amountFrag + `\s*` + currFrag + `?\s*$`),
	itemExclude:  itemExcludePatterns,
}

// patternsFor selects the immutable pattern table for a resolved language.
// Auto must be resolved by detection before lookup; it falls back to French,
// the primary deployment locale.
func patternsFor(lang constants.Language) *patternTable {
	if lang == constants.LanguageEnglish {
		return enTable
	}
	return frTable
}
