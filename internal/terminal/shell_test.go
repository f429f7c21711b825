package terminal

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"spendwise/internal/backend"
	"spendwise/internal/core"
	"spendwise/internal/session"
	"spendwise/internal/tabular/csvfile"
	"spendwise/internal/tabular/memory"
)

func csvOpener(dir string) Opener {
	return func(ctx context.Context, username string) (*session.Session, error) {
		return session.Open(ctx, username, session.Options{
			Open: func(_ context.Context, u string) (*backend.BackendResult, error) {
				return &backend.BackendResult{Source: csvfile.ForUser(dir, u)}, nil
			},
		})
	}
}

func run(t *testing.T, dir, input string) string {
	t.Helper()
	var out bytes.Buffer
	sh := New(strings.NewReader(input), &out, Options{Opener: csvOpener(dir), CurrencySymbol: "₹"})
	if err := sh.Run(context.Background()); err != nil {
		t.Fatalf("run: %v\n%s", err, out.String())
	}
	return out.String()
}

const addLunch = "add\nFood\nLunch\n45\n01/01/2024\nCafe\nCash\n"

func TestUsernameReprompt(t *testing.T) {
	out := run(t, t.TempDir(), "\n  \nalice\nquit\n")
	if n := strings.Count(out, UsernamePrompt); n != 3 {
		t.Fatalf("expected 3 prompts, got %d:\n%s", n, out)
	}
	if strings.Count(out, "Username is required.") != 2 {
		t.Fatalf("missing validation message:\n%s", out)
	}
	if !strings.Contains(out, "Welcome, alice.") {
		t.Fatalf("missing welcome:\n%s", out)
	}
}

func TestEOFBeforeUsername(t *testing.T) {
	dir := t.TempDir()
	out := run(t, dir, "")
	if !strings.Contains(out, UsernamePrompt) {
		t.Fatalf("unexpected output %q", out)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("nothing should be written, found %d files", len(entries))
	}
}

func TestAddListTotalAndQuitSaves(t *testing.T) {
	dir := t.TempDir()
	input := "bob\nlist\n" + addLunch +
		"add\nRent/Mortgage\nRent\n1200\n1/2/2024\nHome\nBank Transfer\n" +
		"list\ntotal\nquit\n"
	out := run(t, dir, input)

	for _, want := range []string{
		"No expenses recorded yet.",
		"Expense added successfully!",
		"1. Date: 01/01/2024, Category: Food, Description: Lunch, Amount: ₹45.00, Location: Cafe, Payment Method: Cash, Category: Safe Expenses",
		"2. Date: 1/2/2024, Category: Rent/Mortgage, Description: Rent, Amount: ₹1200.00, Location: Home, Payment Method: Bank Transfer, Category: High Expenses",
		"Total Expenses: ₹1245.00",
		"Expenses saved successfully!",
		"Goodbye.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "bob_expenses.csv"))
	if err != nil {
		t.Fatalf("quit did not save: %v", err)
	}
	if !strings.Contains(string(data), "Food,Lunch,45,01/01/2024,Cafe,Cash") {
		t.Fatalf("unexpected file:\n%s", data)
	}
}

func TestAddValidationMessages(t *testing.T) {
	input := "carol\n" +
		"add\nFood\nLunch\nabc\n01/01/2024\nCafe\nCash\n" +
		"add\nFood\nLunch\n10\n2024-01-01\nCafe\nCash\n" +
		"add\nFood\n\n10\n01/01/2024\nCafe\nCash\n" +
		"total\nquit\n"
	out := run(t, t.TempDir(), input)
	for _, want := range []string{
		"Please enter a valid amount.",
		"Please enter a valid date in DD/MM/YYYY format.",
		"Please fill in all fields.",
		"Total Expenses: ₹0.00",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestDeleteCommand(t *testing.T) {
	input := "dave\n" + addLunch + addLunch +
		"delete\ndelete 9\ndelete x\ndelete 1\nlist\nquit\n"
	out := run(t, t.TempDir(), input)

	if !strings.Contains(out, "Please select an expense to delete.") {
		t.Errorf("missing no-selection message\n%s", out)
	}
	if strings.Count(out, "Invalid expense index.") != 2 {
		t.Errorf("expected two range errors\n%s", out)
	}
	if !strings.Contains(out, "Expense deleted successfully.") {
		t.Errorf("missing delete confirmation\n%s", out)
	}
	if strings.Contains(out, "2. Date:") {
		t.Errorf("positions did not shift after delete\n%s", out)
	}
}

func TestEOFSavesSession(t *testing.T) {
	dir := t.TempDir()
	run(t, dir, "erin\n"+addLunch)
	if _, err := os.Stat(filepath.Join(dir, "erin_expenses.csv")); err != nil {
		t.Fatalf("EOF did not trigger final save: %v", err)
	}
}

func TestUnknownCommandAndHelp(t *testing.T) {
	out := run(t, t.TempDir(), "frank\nfrobnicate\nhelp\nquit\n")
	if !strings.Contains(out, `unknown command "frobnicate"`) {
		t.Errorf("missing unknown command message\n%s", out)
	}
	if !strings.Contains(out, "delete <index>") {
		t.Errorf("missing help\n%s", out)
	}
}

func TestReloadsExistingExpenses(t *testing.T) {
	dir := t.TempDir()
	run(t, dir, "gina\n"+addLunch+"quit\n")
	out := run(t, dir, "gina\ntotal\nquit\n")
	if !strings.Contains(out, "Total Expenses: ₹45.00") {
		t.Fatalf("expenses not reloaded\n%s", out)
	}
}

func TestOpenFailure(t *testing.T) {
	var out bytes.Buffer
	sh := New(strings.NewReader("hank\n"), &out, Options{Opener: func(context.Context, string) (*session.Session, error) {
		return nil, errors.New("disk unavailable")
	}})
	if err := sh.Run(context.Background()); err == nil || !strings.Contains(err.Error(), "disk unavailable") {
		t.Fatalf("expected open error, got %v", err)
	}
}

type failOnceSource struct {
	*memory.Store
	failed bool
}

func (f *failOnceSource) Save(ctx context.Context, expenses []core.Expense) error {
	if !f.failed {
		f.failed = true
		return errors.New("disk full")
	}
	return f.Store.Save(ctx, expenses)
}

func TestQuitRetriesAfterFailedSave(t *testing.T) {
	src := &failOnceSource{Store: memory.New("ivy")}
	opener := func(ctx context.Context, username string) (*session.Session, error) {
		return session.Open(ctx, username, session.Options{
			Open: func(context.Context, string) (*backend.BackendResult, error) {
				return &backend.BackendResult{Source: src}, nil
			},
		})
	}
	var out bytes.Buffer
	sh := New(strings.NewReader("ivy\n"+addLunch+"quit\nquit\n"), &out, Options{Opener: opener})
	if err := sh.Run(context.Background()); err != nil {
		t.Fatalf("run: %v\n%s", err, out.String())
	}
	if !strings.Contains(out.String(), "disk full") {
		t.Fatalf("failed save not reported:\n%s", out.String())
	}
	if strings.Count(out.String(), "Goodbye.") != 1 {
		t.Fatalf("expected a single goodbye:\n%s", out.String())
	}
	if saved, _ := src.Load(context.Background()); len(saved) != 1 {
		t.Fatalf("expense lost, saved=%d", len(saved))
	}
}
