// Package processor runs extraction jobs end to end: load the job, resolve
// fields, decide whether the result needs review, and persist the receipt.
package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ticketscan/ticketscan/constants"
	"github.com/ticketscan/ticketscan/internal/entity"
	"github.com/ticketscan/ticketscan/internal/extract"
	"github.com/ticketscan/ticketscan/internal/repository"
)

// FieldExtractor resolves receipt fields from OCR text.
// *extract.Engine is the production implementation.
type FieldExtractor interface {
	Extract(text string, opts entity.ExtractionOptions) (entity.ExtractionResult, error)
}

// Config holds thresholds and behavior flags for the extract stage.
type Config struct {
	MinConfidence float64 // default 0.60
	Language      constants.Language
	Strict        bool
}

// ExtractStage advances one QUEUED job to EXTRACT_OK or FAILED.
type ExtractStage struct {
	Logger       *slog.Logger
	Cfg          Config
	JobsRepo     repository.ExtractJobRepository
	ReceiptsRepo repository.ReceiptRepository
	Extractor    FieldExtractor
}

func NewExtractStage(
	logger *slog.Logger,
	cfg Config,
	jobs repository.ExtractJobRepository,
	recs repository.ReceiptRepository,
	fe FieldExtractor,
) *ExtractStage {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MinConfidence <= 0 {
		cfg.MinConfidence = 0.60
	}
	if cfg.Language == "" {
		cfg.Language = constants.LanguageAuto
	}
	return &ExtractStage{
		Logger:       logger,
		Cfg:          cfg,
		JobsRepo:     jobs,
		ReceiptsRepo: recs,
		Extractor:    fe,
	}
}

// Run executes the extract stage for an existing job.
// Preconditions: job exists with non-empty ocr_text.
// Effects: transitions the job to RUNNING, then EXTRACT_OK with a linked
// receipt, or FAILED with the error recorded on the job row.
func (p *ExtractStage) Run(ctx context.Context, jobID uuid.UUID) (uuid.UUID, error) {
	job, err := p.JobsRepo.GetByID(ctx, jobID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("load job: %w", err)
	}
	if job.Status != constants.JobStatusQueued {
		return job.ID, fmt.Errorf("job not ready for extract: status=%s", job.Status)
	}
	if err := p.JobsRepo.MarkRunning(ctx, job.ID); err != nil {
		return job.ID, fmt.Errorf("mark running: %w", err)
	}

	p.Logger.Info("extract start",
		"job_id", job.ID, "source_path", job.SourcePath, "ocr_bytes", len(job.OcrText))

	result, err := p.Extractor.Extract(job.OcrText, entity.ExtractionOptions{
		Language:         p.Cfg.Language,
		StrictValidation: p.Cfg.Strict,
	})
	if err != nil {
		_ = p.JobsRepo.MarkFailed(ctx, job.ID, err.Error())
		return job.ID, fmt.Errorf("extract fields: %w", err)
	}

	// the persisted shape is the API shape; reject drift before it hits storage
	payload, err := json.Marshal(result)
	if err == nil {
		err = extract.ValidateResultJSON(payload)
	}
	if err != nil {
		_ = p.JobsRepo.MarkFailed(ctx, job.ID, err.Error())
		return job.ID, fmt.Errorf("validate result: %w", err)
	}

	confidence := overallConfidence(result)
	needsReview := p.needsReview(result, confidence)
	if needsReview {
		p.Logger.Warn("extraction needs review",
			"job_id", job.ID, "confidence", confidence,
			"merchant", result.MerchantName.Value, "total", result.TotalAmount.Value)
	}

	rec, err := p.ReceiptsRepo.Save(ctx, repository.SaveReceiptRequest{
		Result:      result,
		Confidence:  confidence,
		NeedsReview: needsReview,
	})
	if err != nil {
		_ = p.JobsRepo.MarkFailed(ctx, job.ID, err.Error())
		return job.ID, fmt.Errorf("save receipt: %w", err)
	}
	if err := p.JobsRepo.MarkCompleted(ctx, job.ID, rec.ID); err != nil {
		return job.ID, fmt.Errorf("mark completed: %w", err)
	}

	p.Logger.Info("extract ok",
		"job_id", job.ID, "receipt_id", rec.ID,
		"merchant", rec.MerchantName, "total", rec.Total,
		"confidence", confidence, "needs_review", needsReview)
	return rec.ID, nil
}

// overallConfidence averages the scalar field confidences. Items carry no
// per-item confidence, so they do not participate.
func overallConfidence(r entity.ExtractionResult) float64 {
	sum := r.MerchantName.Confidence + r.Date.Confidence +
		r.TotalAmount.Confidence + r.PaymentMethod.Confidence
	return sum / 4
}

func (p *ExtractStage) needsReview(r entity.ExtractionResult, confidence float64) bool {
	if confidence < p.Cfg.MinConfidence {
		return true
	}
	if r.TotalAmount.Value <= 0 {
		return true
	}
	// a merchant resolved from fallback carries only the floor confidence
	return r.MerchantName.RawText == ""
}
