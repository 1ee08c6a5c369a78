package extract

import (
	"strings"

	"github.com/ticketscan/ticketscan/constants"
)

// Keyword lists for the language majority vote. Accent-free variants are
// listed because OCR frequently drops diacritics.
var (
	frenchKeywords = []string{
		"montant", "tva", "ttc", "sous-total", "especes", "espèces",
		"carte bancaire", "paiement", "merci", "caisse", "reçu", "recu",
		"achat", "rendu", "chèque", "cheque", "boulangerie", "pharmacie",
		"à payer", "a payer", "prix", "article",
	}
	englishKeywords = []string{
		"amount", "vat", "tax", "subtotal", "cash", "credit card",
		"payment", "thank you", "cashier", "receipt", "purchase",
		"change", "check", "price", "item", "store", "total due",
	}
)

// DetectLanguage runs a keyword-majority vote over the full text. Ties
// default to French, the primary deployment locale.
func DetectLanguage(text string) constants.Language {
	lower := strings.ToLower(text)
	var fr, en int
	for _, kw := range frenchKeywords {
		fr += strings.Count(lower, kw)
	}
	for _, kw := range englishKeywords {
		en += strings.Count(lower, kw)
	}
	if en > fr {
		return constants.LanguageEnglish
	}
	return constants.LanguageFrench
}

// Receipt-type marker lists. A second, independent majority vote; no
// marker at all yields UNKNOWN.
var receiptTypeKeywords = map[constants.ReceiptType][]string{
	constants.ReceiptTypeCardPayment: {
		"carte bancaire", "carte bleue", "cb", "visa", "mastercard",
		"amex", "sans contact", "contactless", "credit card", "debit card",
		"autorisation", "authorization", "pin",
	},
	constants.ReceiptTypeCashRegister: {
		"caisse", "cashier", "rendu", "change", "especes", "espèces",
		"cash", "ticket de caisse", "register",
	},
	constants.ReceiptTypeRetail: {
		"magasin", "boutique", "store", "shop", "market", "supermarché",
		"supermarche", "article", "item", "rayon", "aisle",
	},
}

// typeVoteOrder fixes the iteration order so ties resolve deterministically
// (card markers are the most specific signal, retail the least).
var typeVoteOrder = []constants.ReceiptType{
	constants.ReceiptTypeCardPayment,
	constants.ReceiptTypeCashRegister,
	constants.ReceiptTypeRetail,
}

// DetectReceiptType classifies the document from marker keywords. The
// result is contextual metadata only; it never alters extraction patterns.
func DetectReceiptType(text string) constants.ReceiptType {
	lower := strings.ToLower(text)
	best := constants.ReceiptTypeUnknown
	bestVotes := 0
	for _, rt := range typeVoteOrder {
		votes := 0
		for _, kw := range receiptTypeKeywords[rt] {
			votes += strings.Count(lower, kw)
		}
		if votes > bestVotes {
			best = rt
			bestVotes = votes
		}
	}
	return best
}
