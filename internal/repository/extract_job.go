package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ticketscan/ticketscan/constants"
	"github.com/ticketscan/ticketscan/internal/common"
	"github.com/ticketscan/ticketscan/internal/entity"
)

// ExtractJobRepository tracks extraction jobs through their lifecycle.
type ExtractJobRepository interface {
	// Create enqueues a new job in QUEUED state.
	Create(ctx context.Context, sourcePath, ocrText string) (*entity.ExtractJob, error)
	// GetByID fetches one job.
	GetByID(ctx context.Context, id uuid.UUID) (*entity.ExtractJob, error)
	// MarkRunning transitions a job to RUNNING.
	MarkRunning(ctx context.Context, id uuid.UUID) error
	// MarkCompleted records a successful extraction and links the receipt.
	MarkCompleted(ctx context.Context, id, receiptID uuid.UUID) error
	// MarkFailed records a failure with its message.
	MarkFailed(ctx context.Context, id uuid.UUID, cause string) error
}

type extractJobRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewExtractJobRepository creates an ExtractJobRepository backed by database/sql.
func NewExtractJobRepository(db *sql.DB, logger *slog.Logger) ExtractJobRepository {
	return &extractJobRepository{db: db, logger: logger}
}

func (r *extractJobRepository) Create(ctx context.Context, sourcePath, ocrText string) (*entity.ExtractJob, error) {
	if ocrText == "" {
		return nil, common.NewAppError("EMPTY_INPUT", "ocr text is required", common.ErrInvalidInput)
	}
	now := time.Now().UTC()
	job := &entity.ExtractJob{
		ID:         uuid.New(),
		SourcePath: sourcePath,
		OcrText:    ocrText,
		Status:     constants.JobStatusQueued,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO extract_jobs
		(id, source_path, ocr_text, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		job.ID.String(), job.SourcePath, job.OcrText, string(job.Status),
		now.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		r.logger.Error("failed to create extract job", "error", err)
		return nil, common.NewAppError("DB_ERROR", "failed to create extract job", common.ErrDatabase)
	}
	r.logger.Info("created extract job", "job_id", job.ID, "source_path", sourcePath)
	return job, nil
}

func (r *extractJobRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.ExtractJob, error) {
	var (
		job                  entity.ExtractJob
		jobID, status        string
		createdAt, updatedAt string
		jobErr, receiptID    sql.NullString
	)
	err := r.db.QueryRowContext(ctx, `SELECT id, source_path, ocr_text, status,
		error, receipt_id, created_at, updated_at FROM extract_jobs WHERE id = $1`,
		id.String()).
		Scan(&jobID, &job.SourcePath, &job.OcrText, &status, &jobErr, &receiptID,
			&createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewAppError("JOB_NOT_FOUND", "extract job not found", common.ErrNotFound)
		}
		r.logger.Error("failed to fetch extract job", "job_id", id, "error", err)
		return nil, common.NewAppError("DB_ERROR", "failed to fetch extract job", common.ErrDatabase)
	}
	job.ID, err = uuid.Parse(jobID)
	if err != nil {
		return nil, common.NewAppError("DB_ERROR", "corrupt job id", common.ErrDatabase)
	}
	job.Status = constants.JobStatus(status)
	if jobErr.Valid {
		job.Error = &jobErr.String
	}
	if receiptID.Valid {
		rid, err := uuid.Parse(receiptID.String)
		if err != nil {
			return nil, common.NewAppError("DB_ERROR", "corrupt receipt id", common.ErrDatabase)
		}
		job.ReceiptID = &rid
	}
	if job.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, common.NewAppError("DB_ERROR", "corrupt job timestamps", common.ErrDatabase)
	}
	if job.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, common.NewAppError("DB_ERROR", "corrupt job timestamps", common.ErrDatabase)
	}
	return &job, nil
}

func (r *extractJobRepository) MarkRunning(ctx context.Context, id uuid.UUID) error {
	return r.setStatus(ctx, id, constants.JobStatusRunning, nil, nil)
}

func (r *extractJobRepository) MarkCompleted(ctx context.Context, id, receiptID uuid.UUID) error {
	rid := receiptID.String()
	return r.setStatus(ctx, id, constants.JobStatusExtractOK, nil, &rid)
}

func (r *extractJobRepository) MarkFailed(ctx context.Context, id uuid.UUID, cause string) error {
	return r.setStatus(ctx, id, constants.JobStatusFailed, &cause, nil)
}

func (r *extractJobRepository) setStatus(ctx context.Context, id uuid.UUID, status constants.JobStatus, cause, receiptID *string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE extract_jobs
		SET status = $1, error = $2, receipt_id = $3, updated_at = $4 WHERE id = $5`,
		string(status), cause, receiptID, time.Now().UTC().Format(time.RFC3339), id.String())
	if err != nil {
		r.logger.Error("failed to update job status", "job_id", id, "status", status, "error", err)
		return common.NewAppError("DB_ERROR", "failed to update job status", common.ErrDatabase)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.NewAppError("JOB_NOT_FOUND", "extract job not found", common.ErrNotFound)
	}
	return nil
}
