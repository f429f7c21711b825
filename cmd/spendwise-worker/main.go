package main

import (
	"context"
	"errors"
	"os"
	"time"

	"spendwise/internal/amqp"
	"spendwise/internal/backend"
	"spendwise/internal/cli"
	applog "spendwise/internal/log"
	"spendwise/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Stdout, os.Getenv("LOG_LEVEL"))
	logger.Info("Starting spendwise-worker")

	cfg := cli.MustLoadConfig(logger)
	if err := cfg.ValidateWorker(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	factory := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Logger)
	primary, mirror := cfg.Backend(), cfg.Mirror()
	w := worker.NewMirrorWorker(
		func(ctx context.Context, username string) (*backend.BackendResult, error) {
			return factory.CreateBackend(ctx, primary, username)
		},
		func(ctx context.Context, username string) (*backend.BackendResult, error) {
			return factory.CreateBackend(ctx, mirror, username)
		},
		logger.Logger,
	)

	ctx, cancel := cli.GracefulShutdown(logger, 10*time.Second, nil)
	defer cancel()

	logger.Info("Mirroring saved expenses", "from", cfg.DataBackend, "to", cfg.MirrorBackend)
	if err := amqpClient.ConsumeExpensesSaved(ctx, w.HandleExpensesSaved); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", applog.FieldError, err)
		amqpClient.Close()
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
