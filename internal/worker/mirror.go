package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"spendwise/internal/amqp"
	"spendwise/internal/backend"
)

// OpenFunc opens a storage resource for a username.
type OpenFunc func(ctx context.Context, username string) (*backend.BackendResult, error)

// MirrorWorker copies a user's saved expense table from the primary backend
// to a mirror backend each time a save event arrives.
type MirrorWorker struct {
	primary OpenFunc
	mirror  OpenFunc
	logger  *slog.Logger
}

func NewMirrorWorker(primary, mirror OpenFunc, logger *slog.Logger) *MirrorWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &MirrorWorker{primary: primary, mirror: mirror, logger: logger}
}

// HandleExpensesSaved reads the full table from the primary backend and
// overwrites the mirror with it. The table may have changed since the event
// was published; the mirror always receives what is stored now.
func (w *MirrorWorker) HandleExpensesSaved(ctx context.Context, msg *amqp.ExpensesSavedMessage) error {
	if msg.Username == "" {
		w.logger.WarnContext(ctx, "Skipping save event without username", "resource", msg.Resource)
		return nil
	}

	src, err := w.primary(ctx, msg.Username)
	if err != nil {
		return fmt.Errorf("open primary for %s: %w", msg.Username, err)
	}
	expenses, err := src.Source.Load(ctx)
	cleanupErr := cleanup(src)
	if err != nil {
		return fmt.Errorf("load %s: %w", src.Source.Name(), err)
	}
	if cleanupErr != nil {
		w.logger.WarnContext(ctx, "Failed to release primary backend", "error", cleanupErr)
	}

	if len(expenses) != msg.Count {
		w.logger.InfoContext(ctx, "Primary changed since save event",
			"username", msg.Username,
			"event_count", msg.Count,
			"stored_count", len(expenses))
	}

	dst, err := w.mirror(ctx, msg.Username)
	if err != nil {
		return fmt.Errorf("open mirror for %s: %w", msg.Username, err)
	}
	saveErr := dst.Source.Save(ctx, expenses)
	if err := errors.Join(saveErr, cleanup(dst)); err != nil {
		return fmt.Errorf("write %s: %w", dst.Source.Name(), err)
	}

	w.logger.InfoContext(ctx, "Mirrored expenses",
		"username", msg.Username,
		"from", src.Source.Name(),
		"to", dst.Source.Name(),
		"count", len(expenses))
	return nil
}

func cleanup(r *backend.BackendResult) error {
	if r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}
