package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"spendwise/internal/core"
	"spendwise/internal/tabular"

	_ "modernc.org/sqlite"
)

// SQLiteRepository keeps every user's expense table in one SQLite database,
// keyed by owner (the username-derived table name).
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const selectExpenses = `
SELECT category, description, amount, date, location, payment_method
FROM expenses
WHERE owner = ?
ORDER BY position`

// LoadExpenses returns the owner's table in stored order. An unknown owner has no rows.
func (r *SQLiteRepository) LoadExpenses(ctx context.Context, owner string) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, selectExpenses, owner)
	if err != nil {
		return nil, fmt.Errorf("query expenses for %s: %w", owner, err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		rec := make(map[string]string, len(core.Header))
		var category, description, amount, date, location, payment string
		if err := rows.Scan(&category, &description, &amount, &date, &location, &payment); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		rec[core.FieldCategory] = category
		rec[core.FieldDescription] = description
		rec[core.FieldAmount] = amount
		rec[core.FieldDate] = date
		rec[core.FieldLocation] = location
		rec[core.FieldPaymentMethod] = payment

		e, err := core.ExpenseFromRecord(rec)
		if err != nil {
			return nil, &tabular.RowError{Row: len(out) + 2, Err: err}
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return out, nil
}

const insertExpense = `
INSERT INTO expenses (owner, position, category, description, amount, date, location, payment_method)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

// ReplaceExpenses overwrites the owner's table inside a single transaction.
func (r *SQLiteRepository) ReplaceExpenses(ctx context.Context, owner string, expenses []core.Expense) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM expenses WHERE owner = ?`, owner); err != nil {
		return fmt.Errorf("clear expenses for %s: %w", owner, err)
	}

	stmt, err := tx.PrepareContext(ctx, insertExpense)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range expenses {
		if _, err := stmt.ExecContext(ctx, owner, i,
			e.Category, e.Description, e.AmountText(), e.Date, e.Location, e.PaymentMethod); err != nil {
			return fmt.Errorf("insert expense %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Expenses saved to SQLite", "owner", owner, "rows", len(expenses))
	return nil
}

// Source binds the repository to one owner as a tabular.Source.
func (r *SQLiteRepository) Source(owner string) tabular.Source {
	return &ownerSource{repo: r, owner: owner}
}

type ownerSource struct {
	repo  *SQLiteRepository
	owner string
}

func (s *ownerSource) Name() string { return "sqlite:" + s.owner }

func (s *ownerSource) Load(ctx context.Context) ([]core.Expense, error) {
	return s.repo.LoadExpenses(ctx, s.owner)
}

func (s *ownerSource) Save(ctx context.Context, expenses []core.Expense) error {
	return s.repo.ReplaceExpenses(ctx, s.owner, expenses)
}
