package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"spendwise/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "spendwise.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteSourceRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	src := repo.Source("alice_expenses")

	got, err := src.Load(ctx)
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty table for new owner, got %d err=%v", len(got), err)
	}

	want := []core.Expense{
		{Category: "Food", Description: "Lunch", Amount: core.MustMoney("40.00"), Date: "01/01/2024", Location: "Cafe", PaymentMethod: "Cash"},
		{Category: "Utilities", Description: "Power", Amount: core.MustMoney("120.50"), Date: "05/01/2024", Location: "Online", PaymentMethod: "UPI"},
		{Category: "Rent/Mortgage", Description: "Rent", Amount: core.MustMoney("500"), Date: "", Location: "Home", PaymentMethod: "Cheque"},
	}
	if err := src.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err = src.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].Description != want[i].Description || !got[i].Amount.Equal(want[i].Amount.Decimal) || got[i].Date != want[i].Date {
			t.Fatalf("row %d mismatch: got %+v want %+v", i, got[i], want[i])
		}
	}
}

func TestSQLiteOwnersAreIsolatedAndSaveOverwrites(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	alice, bob := repo.Source("alice_expenses"), repo.Source("bob_expenses")

	one := []core.Expense{{Category: "Food", Amount: core.MustMoney("1")}}
	two := []core.Expense{{Category: "Food", Amount: core.MustMoney("1")}, {Category: "Health", Amount: core.MustMoney("2")}}

	if err := alice.Save(ctx, two); err != nil {
		t.Fatalf("save alice: %v", err)
	}
	if err := bob.Save(ctx, one); err != nil {
		t.Fatalf("save bob: %v", err)
	}
	if err := alice.Save(ctx, one); err != nil {
		t.Fatalf("overwrite alice: %v", err)
	}

	a, _ := alice.Load(ctx)
	b, _ := bob.Load(ctx)
	if len(a) != 1 || len(b) != 1 {
		t.Fatalf("expected 1 row each, got alice=%d bob=%d", len(a), len(b))
	}
	if alice.Name() != "sqlite:alice_expenses" {
		t.Fatalf("unexpected name %s", alice.Name())
	}
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spendwise.db")
	if err := RunMigrations(path); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := RunMigrations(path); err != nil {
		t.Fatalf("second run: %v", err)
	}
}

func TestRunMigrationsRecordsVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spendwise.db")
	if err := RunMigrations(path); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var version int
	var dirty bool
	if err := db.QueryRow(`SELECT version, dirty FROM ` + MigrationsTable).Scan(&version, &dirty); err != nil {
		t.Fatalf("read %s: %v", MigrationsTable, err)
	}
	if version != 1 || dirty {
		t.Fatalf("version=%d dirty=%v", version, dirty)
	}
}
