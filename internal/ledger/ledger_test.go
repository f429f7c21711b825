package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"spendwise/internal/core"
	"spendwise/internal/tabular/csvfile"
	"spendwise/internal/tabular/memory"
)

func add(t *testing.T, s *Store, desc, amount string) core.Expense {
	t.Helper()
	e, err := s.Add("Food", desc, amount, "01/01/2024", "Cafe", "Cash")
	if err != nil {
		t.Fatalf("add %s: %v", desc, err)
	}
	return e
}

func TestEmptyStore(t *testing.T) {
	s := New(memory.New("t"))
	if !s.List().Empty() {
		t.Fatalf("expected empty listing")
	}
	if got := s.List().String(); got != NoExpenses {
		t.Fatalf("expected sentinel, got %q", got)
	}
	if got := s.Total().StringFixed(2); got != "0.00" {
		t.Fatalf("expected 0.00, got %s", got)
	}
}

func TestTotalIsDecimalSum(t *testing.T) {
	s := New(memory.New("t"))
	for _, a := range []string{"40.00", "120.50", "500.00"} {
		add(t, s, "x", a)
	}
	if got := s.Total().StringFixed(2); got != "660.50" {
		t.Fatalf("expected 660.50, got %s", got)
	}
}

func TestAddScenario(t *testing.T) {
	s := New(memory.New("t"))
	e, err := s.Add("Food", "Lunch", "45", "01/01/2024", "Cafe", "Cash")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.ID == "" {
		t.Fatalf("expected a synthetic id")
	}
	if got := s.Total().StringFixed(2); got != "45.00" {
		t.Fatalf("expected 45.00, got %s", got)
	}
	if b := s.List().Entries[0].Bucket; b != core.BucketSafe {
		t.Fatalf("expected SAFE, got %s", b)
	}
}

func TestAddInvalidAmountLeavesStoreUnchanged(t *testing.T) {
	s := New(memory.New("t"))
	add(t, s, "first", "10")
	_, err := s.Add("Food", "Lunch", "abc", "01/01/2024", "Cafe", "Cash")
	if !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("store should be unchanged, len=%d", s.Len())
	}
}

func TestAddDoesNotDeduplicate(t *testing.T) {
	s := New(memory.New("t"))
	a := add(t, s, "same", "5")
	b := add(t, s, "same", "5")
	if s.Len() != 2 || a.ID == b.ID {
		t.Fatalf("expected two distinct expenses, len=%d", s.Len())
	}
}

func TestDeleteShiftsPositions(t *testing.T) {
	s := New(memory.New("t"))
	for _, d := range []string{"a", "b", "c", "d"} {
		add(t, s, d, "1")
	}
	removed, err := s.Delete(1)
	if err != nil || removed.Description != "b" {
		t.Fatalf("expected to remove b, got %+v err=%v", removed, err)
	}
	l := s.List()
	if len(l.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(l.Entries))
	}
	for i, want := range []string{"a", "c", "d"} {
		if l.Entries[i].Expense.Description != want || l.Entries[i].Position != i {
			t.Fatalf("entry %d: got %+v", i, l.Entries[i])
		}
	}
}

func TestDeleteOutOfRange(t *testing.T) {
	s := New(memory.New("t"))
	add(t, s, "a", "1")
	for _, pos := range []int{-1, 1, 5} {
		_, err := s.Delete(pos)
		var re *core.RangeError
		if !errors.As(err, &re) || !errors.Is(err, core.ErrOutOfRange) {
			t.Fatalf("pos %d: expected RangeError, got %v", pos, err)
		}
		if s.Len() != 1 {
			t.Fatalf("pos %d: store changed", pos)
		}
	}
}

func TestDeleteByID(t *testing.T) {
	s := New(memory.New("t"))
	a := add(t, s, "a", "1")
	b := add(t, s, "b", "2")
	if _, err := s.DeleteByID(a.ID); err != nil {
		t.Fatalf("delete a: %v", err)
	}
	if s.PositionOf(b.ID) != 0 {
		t.Fatalf("b should now be at position 0")
	}
	if _, err := s.DeleteByID(a.ID); !errors.Is(err, core.ErrOutOfRange) {
		t.Fatalf("stale id must not delete anything, got %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 remaining, got %d", s.Len())
	}
}

func TestListBuckets(t *testing.T) {
	s := New(memory.New("t"))
	for _, a := range []string{"49.99", "50.00", "300.00", "300.01"} {
		add(t, s, a, a)
	}
	want := []core.Bucket{core.BucketSafe, core.BucketAverage, core.BucketAverage, core.BucketHigh}
	for i, en := range s.List().Entries {
		if en.Bucket != want[i] {
			t.Fatalf("%s: expected %s, got %s", en.Expense.Description, want[i], en.Bucket)
		}
	}
}

func TestListingFormat(t *testing.T) {
	s := New(memory.New("t"))
	if _, err := s.Add("Food", "Lunch", "45", "01/01/2024", "", "Cash"); err != nil {
		t.Fatalf("add: %v", err)
	}
	out := s.List().Format("₹")
	for _, want := range []string{"1. Date: 01/01/2024", "Amount: ₹45.00", "Location: N/A", "Category: Safe Expenses"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := csvfile.New(filepath.Join(t.TempDir(), "alice_expenses.csv"))
	s := New(src)
	add(t, s, "a", "40.00")
	add(t, s, "b", "120.50")
	add(t, s, "c", "500.00")
	msg, err := s.Save(ctx)
	if err != nil || msg != SavedMessage {
		t.Fatalf("save: %q %v", msg, err)
	}

	reloaded, err := Open(ctx, src)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	got, want := reloaded.Expenses(), s.Expenses()
	if len(got) != len(want) {
		t.Fatalf("expected %d, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].Description != want[i].Description || !got[i].Amount.Equal(want[i].Amount.Decimal) ||
			got[i].Category != want[i].Category || got[i].Date != want[i].Date ||
			got[i].Location != want[i].Location || got[i].PaymentMethod != want[i].PaymentMethod {
			t.Fatalf("row %d mismatch: %+v vs %+v", i, got[i], want[i])
		}
		if got[i].ID == "" {
			t.Fatalf("loaded rows need ids")
		}
	}
	if reloaded.Total().StringFixed(2) != "660.50" {
		t.Fatalf("unexpected reloaded total %s", reloaded.Total())
	}
}

func TestOpenMissingResource(t *testing.T) {
	s, err := Open(context.Background(), csvfile.New(filepath.Join(t.TempDir(), "ghost_expenses.csv")))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("expected empty store")
	}
}

type failingSource struct{ memory.Store }

func (*failingSource) Save(context.Context, []core.Expense) error { return errors.New("disk full") }

func TestSaveErrorIsWrapped(t *testing.T) {
	s := New(&failingSource{})
	if _, err := s.Save(context.Background()); err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected wrapped save error, got %v", err)
	}
}
