// Package ledger holds one user's ordered expense sequence and moves it to
// and from a tabular source.
package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"spendwise/internal/core"
	"spendwise/internal/tabular"
)

// SavedMessage is the confirmation shown after a successful save.
const SavedMessage = "Expenses saved successfully!"

// Store is the in-memory expense sequence. Position is insertion order and
// is the only identity persisted; IDs exist for the lifetime of the process.
// A Store is not safe for concurrent use.
type Store struct {
	source   tabular.Source
	expenses []core.Expense
	newID    func() string
}

// New returns an empty store bound to source.
func New(source tabular.Source) *Store {
	return &Store{
		source: source,
		newID:  func() string { return uuid.NewString() },
	}
}

// Open returns a store populated from source.
func Open(ctx context.Context, source tabular.Source) (*Store, error) {
	s := New(source)
	if err := s.Load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Source returns the backing resource.
func (s *Store) Source() tabular.Source { return s.source }

// Len returns the number of expenses.
func (s *Store) Len() int { return len(s.expenses) }

// Expenses returns a copy of the sequence.
func (s *Store) Expenses() []core.Expense {
	return append([]core.Expense(nil), s.expenses...)
}

// Add coerces amount and appends a new expense. A non-numeric amount fails
// with core.ErrInvalidAmount and leaves the store unchanged.
func (s *Store) Add(category, description, amount, date, location, paymentMethod string) (core.Expense, error) {
	m, err := core.ParseMoney(amount)
	if err != nil {
		return core.Expense{}, err
	}
	e := core.Expense{
		ID:            s.newID(),
		Category:      category,
		Description:   description,
		Amount:        m,
		Date:          date,
		Location:      location,
		PaymentMethod: paymentMethod,
	}
	s.expenses = append(s.expenses, e)
	return e, nil
}

// Delete removes the expense at the zero-based position. Later expenses
// shift down by one.
func (s *Store) Delete(position int) (core.Expense, error) {
	if position < 0 || position >= len(s.expenses) {
		return core.Expense{}, &core.RangeError{Position: position, Length: len(s.expenses)}
	}
	removed := s.expenses[position]
	s.expenses = append(s.expenses[:position], s.expenses[position+1:]...)
	return removed, nil
}

// DeleteByID resolves the current position of id and deletes it.
func (s *Store) DeleteByID(id string) (core.Expense, error) {
	pos := s.PositionOf(id)
	if pos < 0 {
		return core.Expense{}, &core.RangeError{Position: -1, Length: len(s.expenses)}
	}
	return s.Delete(pos)
}

// PositionOf returns the current position of id, or -1.
func (s *Store) PositionOf(id string) int {
	if id == "" {
		return -1
	}
	for i, e := range s.expenses {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// Total sums every amount. An empty store totals zero.
func (s *Store) Total() core.Money {
	var total core.Money
	for _, e := range s.expenses {
		total = total.Add(e.Amount)
	}
	return total
}

// List snapshots the sequence with the bucket of each expense.
func (s *Store) List() Listing {
	entries := make([]Entry, len(s.expenses))
	for i, e := range s.expenses {
		entries[i] = Entry{Position: i, Expense: e, Bucket: core.Classify(e.Amount)}
	}
	return Listing{Entries: entries}
}

// Load replaces the sequence with the contents of the source. A missing
// resource yields an empty store.
func (s *Store) Load(ctx context.Context) error {
	loaded, err := s.source.Load(ctx)
	if err != nil {
		return fmt.Errorf("load %s: %w", s.source.Name(), err)
	}
	for i := range loaded {
		loaded[i].ID = s.newID()
	}
	s.expenses = loaded
	return nil
}

// Save overwrites the source with the full sequence and returns the
// confirmation message for the user.
func (s *Store) Save(ctx context.Context) (string, error) {
	if err := s.source.Save(ctx, s.Expenses()); err != nil {
		return "", fmt.Errorf("save %s: %w", s.source.Name(), err)
	}
	return SavedMessage, nil
}

// NoExpenses is the text of an empty listing.
const NoExpenses = "No expenses recorded yet."

// Entry is one expense as presented, with its current position and bucket.
type Entry struct {
	Position int
	Expense  core.Expense
	Bucket   core.Bucket
}

// Index is the 1-based number shown to the user.
func (e Entry) Index() int { return e.Position + 1 }

// Listing is a presentation snapshot of the store.
type Listing struct {
	Entries []Entry
}

// Empty reports whether there is nothing to show.
func (l Listing) Empty() bool { return len(l.Entries) == 0 }

// Format renders one line per entry, or NoExpenses.
func (l Listing) Format(symbol string) string {
	if l.Empty() {
		return NoExpenses
	}
	lines := make([]string, len(l.Entries))
	for i, en := range l.Entries {
		e := en.Expense
		lines[i] = fmt.Sprintf("%d. Date: %s, Category: %s, Description: %s, Amount: %s, Location: %s, Payment Method: %s, Category: %s",
			en.Index(), core.Display(e.Date), core.Display(e.Category), core.Display(e.Description),
			e.DisplayAmount(symbol), core.Display(e.Location), core.Display(e.PaymentMethod), en.Bucket.Label())
	}
	return strings.Join(lines, "\n")
}

func (l Listing) String() string { return l.Format(core.DefaultCurrencySymbol) }
