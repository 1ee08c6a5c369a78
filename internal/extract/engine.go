// Package extract implements the field extraction and confidence resolution
// engine: candidate generation, heuristic scoring, per-field resolution and
// normalization of noisy OCR receipt text into a structured record.
//
// The engine is pure computation over an immutable input string plus an
// options value. It holds no mutable state across calls and is safe for
// concurrent use; callers processing many receipts should bound concurrency
// themselves (see the async package).
package extract

import (
	"log/slog"
	"time"

	"github.com/ticketscan/ticketscan/constants"
	"github.com/ticketscan/ticketscan/internal/entity"
	"github.com/ticketscan/ticketscan/internal/normalize"
)

// defaultConfidence is assigned to the documented fallback value when a
// field produced no candidate at all.
const defaultConfidence = 0.1

// Engine is a stateless extractor sharing one immutable configuration
// (pattern tables, keyword lists) across calls. Construct once at startup
// and reuse.
type Engine struct {
	logger *slog.Logger
	now    func() time.Time
}

type Option func(*Engine)

// WithLogger sets the logger used for advisory warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock overrides the current-date source used by the date fallback and
// recency scoring. Tests pin it for full determinism.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Extract converts raw OCR text into a structured extraction result. It
// never fails on missing fields; those resolve to documented defaults with
// floor confidence. The only error path is strict validation rejecting an
// internally inconsistent result.
func (e *Engine) Extract(text string, opts entity.ExtractionOptions) (entity.ExtractionResult, error) {
	lang := opts.Language
	if lang == "" || lang == constants.LanguageAuto {
		lang = DetectLanguage(text)
	}
	receiptType := opts.ReceiptType
	if receiptType == "" {
		receiptType = DetectReceiptType(text)
	}

	pt := patternsFor(lang)
	today := e.now().UTC().Format(normalize.ISODate)
	dc := newDocContext(text, today)

	result := entity.ExtractionResult{
		Language:    lang,
		ReceiptType: receiptType,
		Items:       []entity.ReceiptItem{},
	}

	result.TotalAmount = resolveTotal(pt, dc)
	result.Subtotal = resolveOptionalAmount(fieldSubtotal, pt.subtotal, dc)
	result.Tax = resolveOptionalAmount(fieldTax, pt.tax, dc)
	result.Date = resolveDate(pt, dc)
	result.MerchantName = resolveMerchant(pt, dc)
	result.PaymentMethod = resolvePayment(pt, dc)
	result.ReceiptNumber = resolveReceiptNumber(pt, dc)
	if items := matchItems(pt, dc); len(items) > 0 {
		result.Items = items
	}
	result.Summary = buildSummary(&result)

	warnOnItemSumDeviation(e.logger, &result)

	if opts.StrictValidation {
		if err := validateResult(&result); err != nil {
			return entity.ExtractionResult{}, err
		}
	}
	return result, nil
}
