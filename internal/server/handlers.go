package server

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/ticketscan/ticketscan/constants"
	"github.com/ticketscan/ticketscan/internal/async"
	"github.com/ticketscan/ticketscan/internal/common"
	"github.com/ticketscan/ticketscan/internal/entity"
	"github.com/ticketscan/ticketscan/internal/export"
	processor "github.com/ticketscan/ticketscan/internal/pipeline"
	"github.com/ticketscan/ticketscan/internal/repository"
)

// Handlers wires the HTTP surface to the pipeline and repositories.
type Handlers struct {
	Logger    *slog.Logger
	DB        *sql.DB
	Engine    processor.FieldExtractor
	Queue     async.Queue
	Jobs      repository.ExtractJobRepository
	Receipts  repository.ReceiptRepository
	Exporter  *export.Service
	EngineCfg common.EngineConfig
}

func (h *Handlers) RegisterRoutes(app *fiber.App) {
	app.Get("/health", h.health)

	v1 := app.Group("/v1")
	v1.Post("/extract", h.extract)
	v1.Post("/jobs", h.createJob)
	v1.Get("/jobs/:id", h.getJob)
	v1.Get("/receipts", h.listReceipts)
	v1.Get("/receipts/:id", h.getReceipt)
	v1.Get("/export.xlsx", h.exportXLSX)
}

func (h *Handlers) health(c *fiber.Ctx) error {
	health := fiber.Map{"status": "healthy", "service": "ticketscan"}
	if err := h.DB.PingContext(c.UserContext()); err != nil {
		health["status"] = "degraded"
		health["db"] = "unhealthy"
	} else {
		health["db"] = "healthy"
	}
	return c.JSON(health)
}

type extractRequest struct {
	Text        string `json:"text"`
	Language    string `json:"language,omitempty"`
	ReceiptType string `json:"receipt_type,omitempty"`
	Strict      *bool  `json:"strict,omitempty"`
}

// extract resolves fields synchronously without touching storage.
func (h *Handlers) extract(c *fiber.Ctx) error {
	var req extractRequest
	if err := c.BodyParser(&req); err != nil {
		return common.NewAppError("BAD_REQUEST", "invalid JSON body", common.ErrInvalidInput)
	}
	if req.Text == "" {
		return common.NewAppError("EMPTY_INPUT", "text is required", common.ErrInvalidInput)
	}

	opts := entity.ExtractionOptions{
		Language:         constants.Language(h.EngineCfg.Language),
		StrictValidation: h.EngineCfg.Strict,
	}
	if req.Language != "" {
		lang, ok := constants.CanonicalizeLanguage(req.Language)
		if !ok {
			return common.NewAppError("BAD_LANGUAGE", "unsupported language", common.ErrInvalidInput)
		}
		opts.Language = lang
	}
	if req.ReceiptType != "" {
		opts.ReceiptType = constants.ReceiptType(req.ReceiptType)
	}
	if req.Strict != nil {
		opts.StrictValidation = *req.Strict
	}

	result, err := h.Engine.Extract(req.Text, opts)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

type createJobRequest struct {
	Text       string `json:"text"`
	SourcePath string `json:"source_path,omitempty"`
}

// createJob persists a QUEUED job and hands it to the worker pool.
func (h *Handlers) createJob(c *fiber.Ctx) error {
	var req createJobRequest
	if err := c.BodyParser(&req); err != nil {
		return common.NewAppError("BAD_REQUEST", "invalid JSON body", common.ErrInvalidInput)
	}

	job, err := h.Jobs.Create(c.UserContext(), req.SourcePath, req.Text)
	if err != nil {
		return err
	}
	if err := h.Queue.Enqueue(c.UserContext(), async.Job{JobID: job.ID, SubmittedAt: time.Now().UTC()}); err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(job)
}

func (h *Handlers) getJob(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return common.NewAppError("BAD_ID", "job id must be a UUID", common.ErrInvalidInput)
	}
	job, err := h.Jobs.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(job)
}

func (h *Handlers) getReceipt(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return common.NewAppError("BAD_ID", "receipt id must be a UUID", common.ErrInvalidInput)
	}
	rec, err := h.Receipts.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(rec)
}

func (h *Handlers) listReceipts(c *fiber.Ctx) error {
	from, to, err := dateWindow(c)
	if err != nil {
		return err
	}
	recs, err := h.Receipts.List(c.UserContext(), from, to)
	if err != nil {
		return err
	}
	if recs == nil {
		recs = []*entity.Receipt{}
	}
	return c.JSON(recs)
}

func (h *Handlers) exportXLSX(c *fiber.Ctx) error {
	from, to, err := dateWindow(c)
	if err != nil {
		return err
	}
	data, err := h.Exporter.ExportReceiptsXLSX(c.UserContext(), from, to)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="receipts.xlsx"`)
	return c.Send(data)
}

// dateWindow parses optional ?from= and ?to= query params (YYYY-MM-DD).
func dateWindow(c *fiber.Ctx) (*time.Time, *time.Time, error) {
	parse := func(name string) (*time.Time, error) {
		raw := c.Query(name)
		if raw == "" {
			return nil, nil
		}
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, common.NewAppError("BAD_DATE", name+" must be YYYY-MM-DD", common.ErrInvalidInput)
		}
		return &t, nil
	}
	from, err := parse("from")
	if err != nil {
		return nil, nil, err
	}
	to, err := parse("to")
	if err != nil {
		return nil, nil, err
	}
	return from, to, nil
}
