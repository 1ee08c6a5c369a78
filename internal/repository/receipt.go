package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ticketscan/ticketscan/internal/common"
	"github.com/ticketscan/ticketscan/internal/entity"
	"github.com/ticketscan/ticketscan/internal/normalize"
)

// SaveReceiptRequest carries everything the pipeline resolved for one
// receipt, plus the review flag it derived.
type SaveReceiptRequest struct {
	Result      entity.ExtractionResult
	Confidence  float64
	NeedsReview bool
}

// ReceiptRepository persists resolved receipts.
type ReceiptRepository interface {
	// Save stores a resolved receipt and its line items.
	Save(ctx context.Context, req SaveReceiptRequest) (*entity.Receipt, error)
	// GetByID fetches one receipt with its items.
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Receipt, error)
	// List returns receipts ordered by transaction date descending,
	// optionally bounded by an inclusive date range.
	List(ctx context.Context, from, to *time.Time) ([]*entity.Receipt, error)
}

type receiptRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewReceiptRepository creates a ReceiptRepository backed by database/sql.
func NewReceiptRepository(db *sql.DB, logger *slog.Logger) ReceiptRepository {
	return &receiptRepository{db: db, logger: logger}
}

func (r *receiptRepository) Save(ctx context.Context, req SaveReceiptRequest) (*entity.Receipt, error) {
	res := req.Result
	txDate, err := time.Parse(normalize.ISODate, res.Date.Value)
	if err != nil {
		return nil, common.NewAppError("INVALID_DATE", "transaction date is not ISO formatted", common.ErrInvalidInput)
	}

	rec := &entity.Receipt{
		ID:           uuid.New(),
		MerchantName: res.MerchantName.Value,
		TxDate:       txDate,
		Total:        res.TotalAmount.Value,
		CurrencyCode: res.TotalAmount.Currency,
		Language:     string(res.Language),
		ReceiptType:  string(res.ReceiptType),
		Summary:      res.Summary,
		Confidence:   req.Confidence,
		NeedsReview:  req.NeedsReview,
		Items:        res.Items,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	if res.Subtotal != nil {
		rec.Subtotal = &res.Subtotal.Value
	}
	if res.Tax != nil {
		rec.Tax = &res.Tax.Value
	}
	if pm := string(res.PaymentMethod.Value); pm != "" && pm != "UNKNOWN" {
		rec.PaymentMethod = &pm
	}
	if rn := res.ReceiptNumber.Value; rn != "" {
		rec.ReceiptNumber = &rn
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.logger.Error("failed to begin transaction", "error", err)
		return nil, common.NewAppError("DB_ERROR", "failed to save receipt", common.ErrDatabase)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `INSERT INTO receipts
		(id, merchant_name, tx_date, subtotal, tax, total, currency_code,
		 payment_method, receipt_number, language, receipt_type, summary,
		 confidence, needs_review, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		rec.ID.String(), rec.MerchantName, rec.TxDate.Format(normalize.ISODate),
		rec.Subtotal, rec.Tax, rec.Total, rec.CurrencyCode,
		rec.PaymentMethod, rec.ReceiptNumber, rec.Language, rec.ReceiptType,
		rec.Summary, rec.Confidence, rec.NeedsReview,
		rec.CreatedAt.Format(time.RFC3339), rec.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		r.logger.Error("failed to insert receipt", "receipt_id", rec.ID, "error", err)
		return nil, common.NewAppError("DB_ERROR", "failed to save receipt", common.ErrDatabase)
	}

	for i, it := range rec.Items {
		var category *string
		if it.Category != "" {
			category = &it.Category
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO receipt_items
			(receipt_id, position, name, quantity, unit_price, total_price, category)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			rec.ID.String(), i, it.Name, it.Quantity, it.UnitPrice, it.TotalPrice, category)
		if err != nil {
			r.logger.Error("failed to insert receipt item", "receipt_id", rec.ID, "position", i, "error", err)
			return nil, common.NewAppError("DB_ERROR", "failed to save receipt items", common.ErrDatabase)
		}
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("failed to commit receipt", "receipt_id", rec.ID, "error", err)
		return nil, common.NewAppError("DB_ERROR", "failed to save receipt", common.ErrDatabase)
	}
	r.logger.Info("saved receipt", "receipt_id", rec.ID, "merchant", rec.MerchantName, "total", rec.Total)
	return rec, nil
}

const receiptColumns = `id, merchant_name, tx_date, subtotal, tax, total,
	currency_code, payment_method, receipt_number, language, receipt_type,
	summary, confidence, needs_review, created_at, updated_at`

func (r *receiptRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Receipt, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+receiptColumns+` FROM receipts WHERE id = $1`, id.String())
	rec, err := scanReceipt(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewAppError("RECEIPT_NOT_FOUND", "receipt not found", common.ErrNotFound)
		}
		r.logger.Error("failed to fetch receipt", "receipt_id", id, "error", err)
		return nil, common.NewAppError("DB_ERROR", "failed to fetch receipt", common.ErrDatabase)
	}
	if err := r.loadItems(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *receiptRepository) List(ctx context.Context, from, to *time.Time) ([]*entity.Receipt, error) {
	query := `SELECT ` + receiptColumns + ` FROM receipts`
	var args []any
	switch {
	case from != nil && to != nil:
		query += ` WHERE tx_date >= $1 AND tx_date <= $2`
		args = append(args, from.Format(normalize.ISODate), to.Format(normalize.ISODate))
	case from != nil:
		query += ` WHERE tx_date >= $1`
		args = append(args, from.Format(normalize.ISODate))
	case to != nil:
		query += ` WHERE tx_date <= $1`
		args = append(args, to.Format(normalize.ISODate))
	}
	query += ` ORDER BY tx_date DESC, created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to list receipts", "error", err)
		return nil, common.NewAppError("DB_ERROR", "failed to list receipts", common.ErrDatabase)
	}
	defer rows.Close()

	var receipts []*entity.Receipt
	for rows.Next() {
		rec, err := scanReceipt(rows)
		if err != nil {
			r.logger.Error("failed to scan receipt row", "error", err)
			return nil, common.NewAppError("DB_ERROR", "failed to list receipts", common.ErrDatabase)
		}
		receipts = append(receipts, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewAppError("DB_ERROR", "failed to list receipts", common.ErrDatabase)
	}
	for _, rec := range receipts {
		if err := r.loadItems(ctx, rec); err != nil {
			return nil, err
		}
	}
	return receipts, nil
}

func (r *receiptRepository) loadItems(ctx context.Context, rec *entity.Receipt) error {
	rows, err := r.db.QueryContext(ctx, `SELECT name, quantity, unit_price, total_price, category
		FROM receipt_items WHERE receipt_id = $1 ORDER BY position`, rec.ID.String())
	if err != nil {
		r.logger.Error("failed to fetch receipt items", "receipt_id", rec.ID, "error", err)
		return common.NewAppError("DB_ERROR", "failed to fetch receipt items", common.ErrDatabase)
	}
	defer rows.Close()

	rec.Items = rec.Items[:0]
	for rows.Next() {
		var it entity.ReceiptItem
		var category sql.NullString
		if err := rows.Scan(&it.Name, &it.Quantity, &it.UnitPrice, &it.TotalPrice, &category); err != nil {
			return common.NewAppError("DB_ERROR", "failed to scan receipt item", common.ErrDatabase)
		}
		it.Category = category.String
		rec.Items = append(rec.Items, it)
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReceipt(row rowScanner) (*entity.Receipt, error) {
	var (
		rec                    entity.Receipt
		id, txDate             string
		createdAt, updatedAt   string
		payment, receiptNumber sql.NullString
	)
	err := row.Scan(&id, &rec.MerchantName, &txDate, &rec.Subtotal, &rec.Tax,
		&rec.Total, &rec.CurrencyCode, &payment, &receiptNumber,
		&rec.Language, &rec.ReceiptType, &rec.Summary, &rec.Confidence,
		&rec.NeedsReview, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	rec.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	if rec.TxDate, err = time.Parse(normalize.ISODate, txDate); err != nil {
		return nil, err
	}
	if rec.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, err
	}
	if rec.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, err
	}
	if payment.Valid {
		rec.PaymentMethod = &payment.String
	}
	if receiptNumber.Valid {
		rec.ReceiptNumber = &receiptNumber.String
	}
	return &rec, nil
}
