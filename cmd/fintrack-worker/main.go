package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	"fintrack/internal/backend"
	"fintrack/internal/cli"
	"fintrack/internal/core"
	"fintrack/internal/log"
	gsheet "fintrack/internal/sheets/google"
	"fintrack/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), log.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)
	ctx := context.Background()

	if err := cfg.ValidateWorker(); err != nil {
		logger.ErrorContext(ctx, "Worker configuration invalid", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger.InfoContext(ctx, "Starting fintrack-worker", "backend", cfg.DataBackend, "queue", cfg.AMQPQueue)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.ErrorContext(ctx, "Invalid backend configuration", log.FieldError, err.Error())
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to create backend", log.FieldError, err.Error())
		os.Exit(1)
	}
	defer func() {
		if result.Cleanup != nil {
			_ = result.Cleanup()
		}
	}()

	sheetsClient, err := gsheet.New(ctx, gsheet.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		logger.ErrorContext(ctx, "Failed to initialize Google Sheets client", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger.InfoContext(ctx, "Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to initialize AMQP client", log.FieldError, err.Error())
		os.Exit(1)
	}
	defer amqpClient.Close()

	reports := worker.NewReportWorker(result.Documents, sheetsClient)
	sigCtx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	g, gctx := errgroup.WithContext(sigCtx)
	g.Go(func() error {
		return amqpClient.ConsumeUserDataUpdated(gctx, reports.HandleUserDataUpdated)
	})
	g.Go(func() error {
		// Startup backfill for reports missed while the worker was down.
		end := core.MonthOf(time.Now())
		for _, userID := range cfg.BackfillUserIDs() {
			n, err := reports.Backfill(gctx, userID, end, cfg.BackfillMonths)
			if err != nil {
				logger.ErrorContext(gctx, "Report backfill failed",
					log.FieldUserID, userID,
					log.FieldCount, n,
					log.FieldError, err.Error())
				continue
			}
			logger.InfoContext(gctx, "Report backfill completed", log.FieldUserID, userID, log.FieldCount, n)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.ErrorContext(ctx, "Worker stopped", log.FieldError, err.Error())
		os.Exit(1)
	}
	<-done
}
