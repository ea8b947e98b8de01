package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	"fintrack/internal/backend"
	"fintrack/internal/cli"
	apihttp "fintrack/internal/http"
	"fintrack/internal/log"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), log.ComponentAPI)
	cfg := cli.LoadAndValidateConfig(logger)
	ctx := context.Background()

	logger.InfoContext(ctx, "Starting fintrack-api", "port", cfg.Port, "backend", cfg.DataBackend)

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

	opts := apihttp.Options{
		Addr:           ":" + cfg.Port,
		Documents:      result.Documents,
		APIToken:       cfg.APIToken,
		Logger:         logger.WithComponent(log.ComponentHTTP),
		RequestTimeout: 10 * time.Second,
	}

	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			// Saves keep working without events; the worker catches up on the next save.
			logger.WarnContext(ctx, "AMQP unavailable, update events disabled", log.FieldError, err.Error())
		} else {
			opts.Publisher = amqpClient
		}
	} else {
		logger.InfoContext(ctx, "AMQP disabled - no AMQP_URL provided")
	}

	srv := apihttp.NewServer(opts)

	sigCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.ErrorContext(shutdownCtx, "HTTP shutdown failed", log.FieldError, err.Error())
		}
	})

	g, gctx := errgroup.WithContext(sigCtx)
	g.Go(func() error {
		logger.InfoContext(gctx, "HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.ErrorContext(ctx, "HTTP server failed", log.FieldError, err.Error())
	} else {
		<-done
	}

	if amqpClient != nil {
		_ = amqpClient.Close()
	}
	if result.Cleanup != nil {
		if err := result.Cleanup(); err != nil {
			logger.ErrorContext(ctx, "Backend cleanup failed", log.FieldError, err.Error())
		}
	}
}
