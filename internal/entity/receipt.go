package entity

import (
	"time"

	"github.com/google/uuid"
)

// Receipt represents a persisted receipt for data transfer between layers.
type Receipt struct {
	ID            uuid.UUID     `json:"id"`
	MerchantName  string        `json:"merchant_name"`
	TxDate        time.Time     `json:"tx_date"`
	Subtotal      *float64      `json:"subtotal,omitempty"`
	Tax           *float64      `json:"tax,omitempty"`
	Total         float64       `json:"total"`
	CurrencyCode  string        `json:"currency_code"`
	PaymentMethod *string       `json:"payment_method,omitempty"`
	ReceiptNumber *string       `json:"receipt_number,omitempty"`
	Language      string        `json:"language"`
	ReceiptType   string        `json:"receipt_type"`
	Summary       string        `json:"summary"`
	Confidence    float64       `json:"confidence"` // overall, in [0,1]
	NeedsReview   bool          `json:"needs_review"`
	Items         []ReceiptItem `json:"items,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}
