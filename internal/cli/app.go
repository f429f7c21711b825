package cli

import (
	"context"
	"fmt"

	"spendwise/internal/amqp"
	"spendwise/internal/backend"
	"spendwise/internal/config"
	applog "spendwise/internal/log"
	"spendwise/internal/session"
)

// App holds what both binaries share: the backend factory and the optional
// save-event publisher.
type App struct {
	cfg       *config.Config
	logger    *applog.Logger
	factory   backend.Factory
	publisher *amqp.Client
}

// NewApp wires the backend factory and, when AMQP_URL is set, the publisher.
// A broker that cannot be reached disables save events instead of failing.
func NewApp(cfg *config.Config, logger *applog.Logger) *App {
	a := &App{
		cfg:     cfg,
		logger:  logger,
		factory: backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Logger),
	}
	if cfg.AMQPURL == "" {
		return a
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Warn("AMQP unavailable, save events disabled", applog.FieldError, err)
		return a
	}
	logger.Info("AMQP publisher connected", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	a.publisher = client
	return a
}

// OpenSession opens the configured backend for username and loads its expenses.
func (a *App) OpenSession(ctx context.Context, username string) (*session.Session, error) {
	opts := session.Options{
		Open: func(ctx context.Context, username string) (*backend.BackendResult, error) {
			return a.factory.CreateBackend(ctx, a.cfg.Backend(), username)
		},
		Logger: a.logger.WithComponent(applog.ComponentSession).Logger,
	}
	if a.publisher != nil {
		opts.Notifier = a.publisher
	}
	sess, err := session.Open(ctx, username, opts)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	return sess, nil
}

// Close releases the publisher connection.
func (a *App) Close() error {
	if a.publisher == nil {
		return nil
	}
	return a.publisher.Close()
}
