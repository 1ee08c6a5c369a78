package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/ticketscan/ticketscan/constants"
	"github.com/ticketscan/ticketscan/internal/async"
	"github.com/ticketscan/ticketscan/internal/export"
	"github.com/ticketscan/ticketscan/internal/extract"
	processor "github.com/ticketscan/ticketscan/internal/pipeline"
	"github.com/ticketscan/ticketscan/internal/repository"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Extract a directory of OCR dumps and export them as XLSX",
	Long: `Walks a directory for .txt and .ocr files, runs extraction on each
through the worker pool against a throwaway in-memory store, then writes
all resolved receipts to one XLSX workbook.`,
	Example: `  # Process a folder of OCR dumps
  ticketscan batch --dir ./dumps --out receipts.xlsx

  # Keep the intermediate store on disk
  ticketscan batch --dir ./dumps --db ./ticketscan.db`,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().String("dir", "", "directory to process OCR dumps from (required)")
	batchCmd.Flags().String("out", "", "output XLSX file path (default: <dir>/../receipts.xlsx)")
	batchCmd.Flags().String("db", ":memory:", "sqlite database path")
	_ = batchCmd.MarkFlagRequired("dir")
}

func runBatch(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	dir, _ := cmd.Flags().GetString("dir")
	out, _ := cmd.Flags().GetString("out")
	dbPath, _ := cmd.Flags().GetString("db")
	if out == "" {
		out = filepath.Join(filepath.Dir(dir), "receipts.xlsx")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	db, err := repository.OpenSQLite(dbPath, logger)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := repository.Migrate(ctx, db); err != nil {
		return err
	}

	jobsRepo := repository.NewExtractJobRepository(db, logger)
	receiptsRepo := repository.NewReceiptRepository(db, logger)
	engine := extract.NewEngine(extract.WithLogger(logger))
	stage := processor.NewExtractStage(logger, processor.Config{
		MinConfidence: cfg.Engine.MinConfidence,
		Language:      constants.Language(cfg.Engine.Language),
		Strict:        cfg.Engine.Strict,
	}, jobsRepo, receiptsRepo, engine)

	queue := async.NewExtractQueue(stage, logger,
		async.WithWorkers(cfg.Queue.Workers),
		async.WithQueueSize(cfg.Queue.QueueSize),
		async.WithJobTimeout(cfg.Queue.JobTimeout))

	paths, err := collectDumps(dir)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no .txt or .ocr files found under %s", dir)
	}

	queued := 0
	for _, path := range paths {
		text, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("skipping unreadable file", "path", path, "error", err)
			continue
		}
		job, err := jobsRepo.Create(ctx, path, string(text))
		if err != nil {
			logger.Warn("skipping file", "path", path, "error", err)
			continue
		}
		if err := queue.Enqueue(ctx, async.Job{JobID: job.ID, SubmittedAt: time.Now().UTC()}); err != nil {
			return err
		}
		queued++
	}

	drainCtx, cancel := context.WithTimeout(ctx, time.Duration(queued+1)*cfg.Queue.JobTimeout)
	queue.Shutdown(drainCtx)
	cancel()

	exporter := export.NewService(receiptsRepo, logger)
	data, err := exporter.ExportReceiptsXLSX(ctx, nil, nil)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}

	logger.Info("batch complete", "files", queued, "workbook", out)
	fmt.Printf("Processed %d file(s), workbook written to %s\n", queued, out)
	return nil
}

// collectDumps finds OCR text dumps under root, sorted for stable ordering.
func collectDumps(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := constants.AllowedExtensions[constants.NormalizeExt(filepath.Ext(path))]; ok {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}
