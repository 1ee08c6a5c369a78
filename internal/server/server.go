// Package server exposes the extraction pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/ticketscan/ticketscan/internal/common"
)

// New builds the fiber app with middleware and routes registered.
func New(cfg common.ServerConfig, h *Handlers, logger *slog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "ticketscan",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(logger),
		BodyLimit:             cfg.BodyLimit,
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Header: "X-Request-ID"}))
	// propagate the request id into the context handed to repositories
	app.Use(func(c *fiber.Ctx) error {
		if rid, ok := c.Locals(requestid.ConfigDefault.ContextKey).(string); ok {
			c.SetUserContext(common.WithRequestID(c.UserContext(), rid))
		}
		return c.Next()
	})

	h.RegisterRoutes(app)
	return app
}

// errorHandler maps application errors onto HTTP statuses. Anything not an
// AppError is a plain 500 with the message suppressed.
func errorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{
				"code":    "HTTP_ERROR",
				"message": fiberErr.Message,
			})
		}

		var appErr *common.AppError
		if errors.As(err, &appErr) {
			status := fiber.StatusInternalServerError
			switch {
			case errors.Is(appErr.Cause, common.ErrNotFound):
				status = fiber.StatusNotFound
			case errors.Is(appErr.Cause, common.ErrInvalidInput):
				status = fiber.StatusBadRequest
			case errors.Is(appErr.Cause, common.ErrValidation):
				status = fiber.StatusUnprocessableEntity
			}
			if status == fiber.StatusInternalServerError {
				logger.Error("request failed", "path", c.Path(), "request_id", common.RequestIDFromContext(c.UserContext()), "code", appErr.Code, "error", err)
			}
			return c.Status(status).JSON(fiber.Map{
				"code":    appErr.Code,
				"message": appErr.Message,
			})
		}

		logger.Error("request failed", "path", c.Path(), "request_id", common.RequestIDFromContext(c.UserContext()), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"code":    "INTERNAL",
			"message": "internal server error",
		})
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, app *fiber.App, addr string, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() { errCh <- app.Listen(addr) }()
	logger.Info("http server listening", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutting down http server")
		return app.Shutdown()
	}
}
