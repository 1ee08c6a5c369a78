package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ticketscan/ticketscan/internal/common"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:     "ticketscan",
	Short:   "ticketscan - field extraction for OCR receipt text",
	Long: `ticketscan turns noisy OCR receipt text into structured records:
merchant, date, amounts, payment method and line items, each with a
confidence score, plus a one-line French summary.`,
	Version: version,
}

func main() {
	if err := godotenv.Load(); err != nil {
		// .env is optional; environment variables still apply
		slog.Debug("no .env file loaded", "error", err)
	}
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newLogger builds the process-wide structured logger.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		_ = level.UnmarshalText([]byte(v))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func loadConfig() (*common.Config, error) {
	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
