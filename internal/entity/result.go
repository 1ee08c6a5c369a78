package entity

import (
	"github.com/ticketscan/ticketscan/constants"
)

// Field is one resolved answer for a scalar receipt field, plus provenance.
// Immutable once constructed; confidence always lies in [0,1].
type Field[T any] struct {
	Value      T       `json:"value"`
	Confidence float64 `json:"confidence"`
	RawText    string  `json:"raw_text,omitempty"`
}

// AmountField is a resolved monetary field with its ISO-4217 currency code.
type AmountField struct {
	Value      float64 `json:"value"`
	Currency   string  `json:"currency"`
	Confidence float64 `json:"confidence"`
	RawText    string  `json:"raw_text,omitempty"`
}

// ReceiptItem is one parsed line item. Quantity defaults to 1 when the
// line carries no explicit quantity.
type ReceiptItem struct {
	Name       string   `json:"name"`
	Quantity   float64  `json:"quantity"`
	UnitPrice  *float64 `json:"unit_price,omitempty"`
	TotalPrice float64  `json:"total_price"`
	Category   string   `json:"category,omitempty"`
}

// ExtractionResult is the sole output of the extraction engine. It is fully
// owned by the caller once returned; the engine retains no reference to it.
type ExtractionResult struct {
	MerchantName  Field[string]                    `json:"merchant_name"`
	Date          Field[string]                    `json:"date"` // YYYY-MM-DD
	TotalAmount   AmountField                      `json:"total_amount"`
	Subtotal      *AmountField                     `json:"subtotal,omitempty"`
	Tax           *AmountField                     `json:"tax,omitempty"`
	PaymentMethod Field[constants.PaymentMethod]   `json:"payment_method"`
	ReceiptNumber Field[string]                    `json:"receipt_number"`
	Language      constants.Language               `json:"language"`
	ReceiptType   constants.ReceiptType            `json:"receipt_type"`
	Items         []ReceiptItem                    `json:"items"`
	Summary       string                           `json:"summary"`
}

// ExtractionOptions is a plain configuration value for one extract call.
type ExtractionOptions struct {
	Language         constants.Language    `json:"language"`
	ReceiptType      constants.ReceiptType `json:"receipt_type,omitempty"`
	StrictValidation bool                  `json:"strict_validation"`
}
