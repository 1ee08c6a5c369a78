package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/ticketscan/ticketscan/internal/normalize"
)

// Confidence bounds: a scored candidate is never below the "still possible"
// floor nor above certainty.
const (
	scoreFloor = 0.1
	scoreCeil  = 1.0
)

// scoreRule is one pure heuristic: it inspects a candidate in its document
// context and returns a signed delta. Rules are folded in order onto a
// per-field base score, then clamped.
type scoreRule func(c *candidate, dc *docContext) float64

func scoreCandidate(base float64, c *candidate, dc *docContext, rules []scoreRule) float64 {
	score := base
	for _, rule := range rules {
		score += rule(c, dc)
	}
	return clamp(score)
}

func clamp(score float64) float64 {
	if score < scoreFloor {
		return scoreFloor
	}
	if score > scoreCeil {
		return scoreCeil
	}
	return score
}

// --- shared keyword rules ---

// keywordBonus awards delta when any keyword appears in the candidate's
// containing line.
func keywordBonus(delta float64, keywords ...string) scoreRule {
	return func(c *candidate, _ *docContext) float64 {
		for _, kw := range keywords {
			if strings.Contains(c.line, kw) {
				return delta
			}
		}
		return 0
	}
}

// positionBand rewards candidates inside [lo,hi] and penalizes the rest of
// the document symmetrically.
func positionBand(lo, hi, bonus, penalty float64) scoreRule {
	return func(c *candidate, _ *docContext) float64 {
		if c.positionRatio >= lo && c.positionRatio <= hi {
			return bonus
		}
		return penalty
	}
}

// --- total / subtotal / tax ---

var totalRules = []scoreRule{
	keywordBonus(0.30, "total ttc", "net à payer", "net a payer", "à payer", "a payer", "amount due", "balance due", "grand total"),
	keywordBonus(0.20, "total", "montant"),
	keywordBonus(0.05, "visa", "mastercard", "amex", "cb"),
	keywordBonus(-0.25, "sous-total", "sous total", "subtotal", "sub-total"),
	keywordBonus(-0.20, "tva", "vat", "tax", "rendu", "change"),
	// totals sit near the end of a receipt
	func(c *candidate, _ *docContext) float64 {
		switch {
		case c.positionRatio > 0.7:
			return 0.10
		case c.positionRatio < 0.3:
			return -0.10
		}
		return 0
	},
}

var subtotalRules = []scoreRule{
	keywordBonus(0.30, "sous-total", "sous total", "subtotal", "sub-total", "total ht"),
	keywordBonus(-0.15, "tva", "vat"),
}

var taxRules = []scoreRule{
	keywordBonus(0.30, "tva", "vat", "tax", "taxe"),
	keywordBonus(-0.20, "total ttc", "net à payer"),
}

// --- date ---

var dateRules = []scoreRule{
	keywordBonus(0.15, "date", "le "),
	// dates are expected early in the document
	positionBand(0, 0.4, 0.10, -0.05),
	dateRecency,
}

// dateRecency: receipts skew recent. Within the last 30 days earns a bonus;
// more than 5 years old is penalized.
func dateRecency(c *candidate, dc *docContext) float64 {
	d, err := time.Parse(normalize.ISODate, c.value)
	if err != nil {
		return 0
	}
	today, err := time.Parse(normalize.ISODate, dc.today)
	if err != nil {
		return 0
	}
	age := today.Sub(d)
	switch {
	case age >= 0 && age <= 30*24*time.Hour:
		return 0.10
	case age > 5*365*24*time.Hour:
		return -0.15
	case age < 0:
		// future dates are suspicious on a purchase receipt
		return -0.10
	}
	return 0
}

// --- merchant ---

var (
	merchantSuffixRe = regexp.MustCompile(`(?i)\b(sarl|sas|sa|eurl|snc|scop|gmbh|ltd|llc|inc|market|supermarch[eé]|boulangerie|pharmacie)\b`)
	amountLikeRe     = regexp.MustCompile(`\d+[.,]\d{2}`)
	dateLikeRe       = regexp.MustCompile(`\d{1,4}[/.\-]\d{1,2}[/.\-]\d{1,4}`)
	mixedCaseRe      = regexp.MustCompile(`[a-z][A-Z]|[A-Z][a-z]`)
	digitRe          = regexp.MustCompile(`\d`)
)

var merchantRules = []scoreRule{
	// explicit index bonus decaying with line index: merchants live in the
	// first lines of the document
	func(c *candidate, _ *docContext) float64 {
		switch c.lineIndex {
		case 0:
			return 0.25
		case 1:
			return 0.15
		case 2:
			return 0.08
		}
		return -0.10
	},
	func(c *candidate, _ *docContext) float64 {
		if merchantSuffixRe.MatchString(c.value) {
			return 0.10
		}
		return 0
	},
	func(c *candidate, _ *docContext) float64 {
		if strings.Contains(c.value, "&") || strings.Contains(strings.ToLower(c.value), " et ") || strings.Contains(strings.ToLower(c.value), " and ") {
			return 0.05
		}
		return 0
	},
	func(c *candidate, _ *docContext) float64 {
		if mixedCaseRe.MatchString(c.value) {
			return 0.05
		}
		return 0
	},
	// a date-like or amount-like substring inside a merchant name is a bad sign
	func(c *candidate, _ *docContext) float64 {
		if amountLikeRe.MatchString(c.value) || dateLikeRe.MatchString(c.value) {
			return -0.20
		}
		return 0
	},
}

// --- payment / receipt number ---

var paymentRules = []scoreRule{
	keywordBonus(0.25, "paiement", "payé", "paye", "règlement", "reglement", "paid", "payment", "tender"),
	positionBand(0.5, 1.0, 0.05, 0),
}

var receiptNoRules = []scoreRule{
	keywordBonus(0.25, "ticket", "reçu", "recu", "facture", "receipt", "invoice", "transaction"),
	// digits-only identifiers are more plausible than word fragments
	func(c *candidate, _ *docContext) float64 {
		if digitRe.MatchString(c.value) {
			return 0.10
		}
		return -0.15
	},
}

// Per-field base scores: a fixed midpoint, slightly higher where the
// anchoring keywords are more discriminative.
var baseScores = map[fieldKind]float64{
	fieldTotal:     0.50,
	fieldSubtotal:  0.50,
	fieldTax:       0.50,
	fieldDate:      0.55,
	fieldMerchant:  0.55,
	fieldPayment:   0.55,
	fieldReceiptNo: 0.50,
}

var rulesFor = map[fieldKind][]scoreRule{
	fieldTotal:     totalRules,
	fieldSubtotal:  subtotalRules,
	fieldTax:       taxRules,
	fieldDate:      dateRules,
	fieldMerchant:  merchantRules,
	fieldPayment:   paymentRules,
	fieldReceiptNo: receiptNoRules,
}

// score annotates one candidate with its clamped confidence.
func score(kind fieldKind, c *candidate, dc *docContext) {
	c.confidence = scoreCandidate(baseScores[kind], c, dc, rulesFor[kind])
}
