package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ticketscan/ticketscan/internal/entity"
	"github.com/ticketscan/ticketscan/internal/repository"
)

// Service is a tiny façade over the receipts repository that produces XLSX
// bytes for exports.
type Service struct {
	receiptsRepo repository.ReceiptRepository
	logger       *slog.Logger
}

func NewService(repo repository.ReceiptRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{receiptsRepo: repo, logger: logger}
}

// ExportReceiptsXLSX returns an XLSX workbook (as bytes) for the given date window.
// If only from is provided -> from..today (inclusive).
// If only to is provided   -> beginning..to (inclusive).
// If neither is provided   -> all receipts.
func (s *Service) ExportReceiptsXLSX(ctx context.Context, from, to *time.Time) ([]byte, error) {
	start := time.Now()

	// Normalize dates (date-only, UTC)
	var fromDate, toDate *time.Time
	if from != nil {
		f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
		fromDate = &f
	}
	if to != nil {
		t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
		toDate = &t
	}
	if fromDate != nil && toDate == nil {
		today := time.Now().UTC()
		t := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
		toDate = &t
	}

	recs, err := s.receiptsRepo.List(ctx, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("query receipts: %w", err)
	}

	f := excelize.NewFile()
	if err := s.writeReceiptsSheet(f, recs); err != nil {
		return nil, err
	}
	if err := s.writeItemsSheet(f, recs); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(recs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func (s *Service) writeReceiptsSheet(f *excelize.File, recs []*entity.Receipt) error {
	const sheet = "Receipts"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	// excelize seeds new files with "Sheet1"
	_ = f.DeleteSheet("Sheet1")

	headers := []string{
		"Transaction Date",
		"Merchant",
		"Total",
		"Currency",
		"Payment Method",
		"Receipt Number",
		"Language",
		"Type",
		"Confidence",
		"Needs Review",
		"Summary",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, r := range recs {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, r.TxDate.Format("2006-01-02"))
		write(2, r.MerchantName)
		write(3, r.Total)
		write(4, r.CurrencyCode)
		if r.PaymentMethod != nil {
			write(5, *r.PaymentMethod)
		}
		if r.ReceiptNumber != nil {
			write(6, *r.ReceiptNumber)
		}
		write(7, r.Language)
		write(8, r.ReceiptType)
		write(9, fmt.Sprintf("%.0f%%", r.Confidence*100))
		write(10, r.NeedsReview)
		write(11, truncate(r.Summary, 140))

		row++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 14) // date
	_ = f.SetColWidth(sheet, "B", "B", 28) // merchant
	_ = f.SetColWidth(sheet, "C", "D", 12) // total + currency
	_ = f.SetColWidth(sheet, "E", "F", 18) // payment + number
	_ = f.SetColWidth(sheet, "K", "K", 60) // summary
	return nil
}

func (s *Service) writeItemsSheet(f *excelize.File, recs []*entity.Receipt) error {
	const sheet = "Items"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
	}

	headers := []string{"Transaction Date", "Merchant", "Item", "Quantity", "Unit Price", "Line Total", "Category"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, r := range recs {
		for _, it := range r.Items {
			write := func(col int, v any) {
				cell, _ := excelize.CoordinatesToCellName(col, row)
				_ = f.SetCellValue(sheet, cell, v)
			}

			write(1, r.TxDate.Format("2006-01-02"))
			write(2, r.MerchantName)
			write(3, it.Name)
			write(4, it.Quantity)
			if it.UnitPrice != nil {
				write(5, *it.UnitPrice)
			}
			write(6, it.TotalPrice)
			write(7, it.Category)

			row++
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 14)
	_ = f.SetColWidth(sheet, "B", "C", 28)
	_ = f.SetColWidth(sheet, "D", "F", 12)
	_ = f.SetColWidth(sheet, "G", "G", 18)
	return nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
