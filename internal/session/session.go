// Package session binds the record store to user-initiated commands.
//
// A Session is created once per identity step and passed to every shell
// handler; the commands take explicit inputs and return a Result or an
// error, independent of any presentation layer.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"spendwise/internal/backend"
	"spendwise/internal/core"
	"spendwise/internal/ledger"
	"spendwise/internal/tabular"
)

// User-facing acknowledgements.
const (
	MsgAdded   = "Expense added successfully!"
	MsgDeleted = "Expense deleted successfully."
)

// ErrMultipleSelection rejects a delete with more than one selected row.
var ErrMultipleSelection = &core.ValidationError{Message: "Please select a single expense to delete."}

// OpenFunc opens the storage resource for a username.
type OpenFunc func(ctx context.Context, username string) (*backend.BackendResult, error)

// Notifier is told about every successful save.
type Notifier interface {
	PublishExpensesSaved(ctx context.Context, username, resource string, count int, total string) error
}

// Options configures Open.
type Options struct {
	Open     OpenFunc
	Notifier Notifier
	Logger   *slog.Logger
}

// Session is one run from username entry to close.
type Session struct {
	username string
	store    *ledger.Store
	notifier Notifier
	cleanup  backend.CleanupFunc
	logger   *slog.Logger
	closed   bool
}

// Result is the outcome of a successful command, carrying what a shell
// needs to refresh its view.
type Result struct {
	Message string
	Expense core.Expense
	Listing ledger.Listing
	Total   core.Money
}

// ValidateUsername trims the username and rejects empty or path-like values.
func ValidateUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", core.ErrUsernameRequired
	}
	if strings.ContainsAny(username, `/\`) || username == "." || username == ".." {
		return "", core.ErrInvalidUsername
	}
	return username, nil
}

// Open validates the username, opens its resource and loads the store.
func Open(ctx context.Context, username string, opts Options) (*Session, error) {
	username, err := ValidateUsername(username)
	if err != nil {
		return nil, err
	}
	if opts.Open == nil {
		return nil, errors.New("session: no storage opener configured")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	res, err := opts.Open(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("open storage for %s: %w", username, err)
	}
	store, err := ledger.Open(ctx, res.Source)
	if err != nil {
		if res.Cleanup != nil {
			_ = res.Cleanup()
		}
		return nil, err
	}

	logger.InfoContext(ctx, "Session opened", "username", username, "resource", res.Source.Name(), "expenses", store.Len())
	return &Session{
		username: username,
		store:    store,
		notifier: opts.Notifier,
		cleanup:  res.Cleanup,
		logger:   logger,
	}, nil
}

// Username returns the identity the session was opened with.
func (s *Session) Username() string { return s.username }

// Resource returns the derived storage resource name.
func (s *Session) Resource() string { return tabular.ResourceName(s.username) }

// Store exposes the underlying record store.
func (s *Session) Store() *ledger.Store { return s.store }

// Snapshot returns the current listing and total without changing anything.
func (s *Session) Snapshot() Result {
	return Result{Listing: s.store.List(), Total: s.store.Total()}
}

func (s *Session) result(msg string, e core.Expense) Result {
	r := s.Snapshot()
	r.Message = msg
	r.Expense = e
	return r
}

// AddExpense validates the form values and appends the expense.
func (s *Session) AddExpense(ctx context.Context, in core.ExpenseInput) (Result, error) {
	if err := in.Validate(); err != nil {
		s.logger.DebugContext(ctx, "Add expense rejected", "error", err)
		return Result{}, err
	}
	e, err := s.store.Add(in.Category, in.Description, in.Amount, strings.TrimSpace(in.Date), in.Location, in.PaymentMethod)
	if err != nil {
		return Result{}, err
	}
	s.logger.InfoContext(ctx, "Expense added",
		"username", s.username,
		"id", e.ID,
		"category", e.Category,
		"amount", e.Amount.String())
	return s.result(MsgAdded, e), nil
}

// DeleteInput names the selected rows, by stable ID or by zero-based position.
type DeleteInput struct {
	IDs       []string
	Positions []int
}

// DeleteSelected removes exactly one selected expense.
func (s *Session) DeleteSelected(ctx context.Context, in DeleteInput) (Result, error) {
	var ids []string
	for _, id := range in.IDs {
		if strings.TrimSpace(id) != "" {
			ids = append(ids, strings.TrimSpace(id))
		}
	}
	switch n := len(ids) + len(in.Positions); {
	case n == 0:
		return Result{}, core.ErrNoSelection
	case n > 1:
		return Result{}, ErrMultipleSelection
	}

	var (
		removed core.Expense
		err     error
	)
	if len(ids) == 1 {
		removed, err = s.store.DeleteByID(ids[0])
	} else {
		removed, err = s.store.Delete(in.Positions[0])
	}
	if err != nil {
		s.logger.WarnContext(ctx, "Delete expense failed", "username", s.username, "error", err)
		return Result{}, err
	}
	s.logger.InfoContext(ctx, "Expense deleted", "username", s.username, "id", removed.ID)
	return s.result(MsgDeleted, removed), nil
}

// SaveAll writes the store and announces the save. A failed announcement is
// logged and does not fail the save.
func (s *Session) SaveAll(ctx context.Context) (Result, error) {
	msg, err := s.store.Save(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Save failed", "username", s.username, "error", err)
		return Result{}, err
	}
	s.logger.InfoContext(ctx, "Expenses saved", "username", s.username, "resource", s.store.Source().Name(), "count", s.store.Len())

	if s.notifier != nil {
		if err := s.notifier.PublishExpensesSaved(ctx, s.username, s.Resource(), s.store.Len(), s.store.Total().StringFixed(2)); err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish save event", "username", s.username, "error", err)
		}
	}
	return s.result(msg, core.Expense{}), nil
}

// Close performs the final save and releases the storage resource. When the
// save fails the session stays open so the caller can retry. Calling Close
// again after a successful close is a no-op.
func (s *Session) Close(ctx context.Context) error {
	if s.closed {
		return nil
	}
	if _, err := s.SaveAll(ctx); err != nil {
		return fmt.Errorf("final save: %w", err)
	}
	s.closed = true
	if s.cleanup != nil {
		if err := s.cleanup(); err != nil {
			return fmt.Errorf("release storage: %w", err)
		}
	}
	s.logger.InfoContext(ctx, "Session closed", "username", s.username)
	return nil
}
