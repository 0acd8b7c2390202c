package main

import (
	"context"
	"errors"
	"os"
	"time"

	"lifedash/internal/amqp"
	"lifedash/internal/cli"
	"lifedash/internal/log"
	"lifedash/internal/storage"
	"lifedash/internal/worker"
)

var version = "dev"

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg.LogLevel, cfg.LogFormat).WithComponent(log.ComponentWorker)

	if !cfg.AMQPEnabled() {
		cli.Exit(logger, "Worker cannot start", errors.New("AMQP_URL is required"))
	}
	if !cfg.JournalEnabled() {
		cli.Exit(logger, "Worker cannot start", errors.New("SQLITE_DB_PATH is required"))
	}

	flush, err := cli.InitSentry(cfg, version)
	if err != nil {
		logger.Warn("Sentry disabled", log.FieldError, err)
	}
	defer flush()

	journal, err := storage.OpenJournal(cfg.SQLiteDBPath)
	if err != nil {
		cli.Exit(logger, "Failed to open write journal", err)
	}
	defer journal.Close()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		cli.Exit(logger, "Failed to initialize AMQP client", err)
	}
	defer client.Close()

	jw := worker.NewJournalWorker(journal, worker.Config{Retention: cfg.JournalRetention})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := jw.Stop(ctx); err != nil {
			logger.Error("Journal worker stop failed", log.FieldError, err)
		}
	})

	if err := jw.Start(ctx); err != nil {
		cli.Exit(logger, "Failed to start journal worker", err)
	}

	logger.Info("Starting lifedash-worker",
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue,
		"db_path", cfg.SQLiteDBPath,
		"version", version)

	if err := client.ConsumeWriteEvents(ctx, jw.HandleWriteEvent); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", log.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped")
}
