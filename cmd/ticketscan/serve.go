package main

import (
	"context"
	"database/sql"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ticketscan/ticketscan/constants"
	"github.com/ticketscan/ticketscan/internal/async"
	"github.com/ticketscan/ticketscan/internal/export"
	"github.com/ticketscan/ticketscan/internal/extract"
	processor "github.com/ticketscan/ticketscan/internal/pipeline"
	"github.com/ticketscan/ticketscan/internal/repository"
	"github.com/ticketscan/ticketscan/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Serves the extraction API. DB_URL selects Postgres; when unset an
embedded sqlite database is used (SQLITE_PATH, default ./ticketscan.db).`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("sqlite", "./ticketscan.db", "sqlite database path (used when DB_URL is unset)")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var db *sql.DB
	if cfg.Database.DSN != "" {
		pgdb, pool, err := repository.OpenPostgres(ctx, cfg.Database, logger)
		if err != nil {
			return err
		}
		defer pool.Close()
		db = pgdb
	} else {
		path, _ := cmd.Flags().GetString("sqlite")
		db, err = repository.OpenSQLite(path, logger)
		if err != nil {
			return err
		}
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

	handlers := &server.Handlers{
		Logger:    logger,
		DB:        db,
		Engine:    engine,
		Queue:     queue,
		Jobs:      jobsRepo,
		Receipts:  receiptsRepo,
		Exporter:  export.NewService(receiptsRepo, logger),
		EngineCfg: cfg.Engine,
	}
	app := server.New(cfg.Server, handlers, logger)

	err = server.Run(ctx, app, cfg.Server.Addr, logger)

	drainCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	queue.Shutdown(drainCtx)
	cancel()
	return err
}
