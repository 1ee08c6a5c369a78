package repository

import (
	"context"
	"database/sql"

	"github.com/ticketscan/ticketscan/internal/common"
)

// ddl is portable across Postgres and sqlite: TEXT ids and timestamps,
// DOUBLE PRECISION money, confidences stored on the engine's [0,1] scale.
var ddl = []string{
	`CREATE TABLE IF NOT EXISTS receipts (
		id              TEXT PRIMARY KEY,
		merchant_name   TEXT NOT NULL,
		tx_date         TEXT NOT NULL,
		subtotal        DOUBLE PRECISION,
		tax             DOUBLE PRECISION,
		total           DOUBLE PRECISION NOT NULL,
		currency_code   TEXT NOT NULL,
		payment_method  TEXT,
		receipt_number  TEXT,
		language        TEXT NOT NULL,
		receipt_type    TEXT NOT NULL,
		summary         TEXT NOT NULL,
		confidence      DOUBLE PRECISION NOT NULL,
		needs_review    BOOLEAN NOT NULL,
		created_at      TEXT NOT NULL,
		updated_at      TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS receipt_items (
		receipt_id   TEXT NOT NULL REFERENCES receipts(id),
		position     INTEGER NOT NULL,
		name         TEXT NOT NULL,
		quantity     DOUBLE PRECISION NOT NULL,
		unit_price   DOUBLE PRECISION,
		total_price  DOUBLE PRECISION NOT NULL,
		category     TEXT,
		PRIMARY KEY (receipt_id, position)
	)`,
	`CREATE TABLE IF NOT EXISTS extract_jobs (
		id           TEXT PRIMARY KEY,
		source_path  TEXT,
		ocr_text     TEXT NOT NULL,
		status       TEXT NOT NULL,
		error        TEXT,
		receipt_id   TEXT,
		created_at   TEXT NOT NULL,
		updated_at   TEXT NOT NULL
	)`,
}

// Migrate creates the schema when missing. Idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range ddl {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return common.WrapError(err, "apply schema")
		}
	}
	return nil
}
