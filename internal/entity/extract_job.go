package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/ticketscan/ticketscan/constants"
)

// ExtractJob tracks one OCR text through the extraction pipeline.
type ExtractJob struct {
	ID         uuid.UUID           `json:"id"`
	SourcePath string              `json:"source_path,omitempty"`
	OcrText    string              `json:"ocr_text"`
	Status     constants.JobStatus `json:"status"`
	Error      *string             `json:"error,omitempty"`
	ReceiptID  *uuid.UUID          `json:"receipt_id,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}
