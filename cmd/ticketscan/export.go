package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ticketscan/ticketscan/internal/export"
	"github.com/ticketscan/ticketscan/internal/repository"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored receipts as an XLSX workbook",
	Example: `  # All receipts from the configured database
  ticketscan export --out receipts.xlsx

  # Only May 2026
  ticketscan export --out may.xlsx --from 2026-05-01 --to 2026-05-31`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().String("out", "receipts.xlsx", "output XLSX file path")
	exportCmd.Flags().String("from", "", "from date YYYY-MM-DD (inclusive)")
	exportCmd.Flags().String("to", "", "to date YYYY-MM-DD (inclusive)")
	exportCmd.Flags().String("db", "./ticketscan.db", "sqlite database path (used when DB_URL is unset)")
}

func runExport(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("out")
	from, err := parseDateFlag(cmd, "from")
	if err != nil {
		return err
	}
	to, err := parseDateFlag(cmd, "to")
	if err != nil {
		return err
	}

	ctx := context.Background()
	var db *sql.DB
	if cfg.Database.DSN != "" {
		pgdb, pool, err := repository.OpenPostgres(ctx, cfg.Database, logger)
		if err != nil {
			return err
		}
		defer pool.Close()
		db = pgdb
	} else {
		path, _ := cmd.Flags().GetString("db")
		db, err = repository.OpenSQLite(path, logger)
		if err != nil {
			return err
		}
	}
	defer db.Close()

	return writeWorkbook(ctx, db, out, from, to, logger)
}

func writeWorkbook(ctx context.Context, db *sql.DB, out string, from, to *time.Time, logger *slog.Logger) error {
	exporter := export.NewService(repository.NewReceiptRepository(db, logger), logger)
	data, err := exporter.ExportReceiptsXLSX(ctx, from, to)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	fmt.Printf("Workbook written to %s\n", out)
	return nil
}

func parseDateFlag(cmd *cobra.Command, name string) (*time.Time, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s date, use YYYY-MM-DD: %w", name, err)
	}
	return &t, nil
}
