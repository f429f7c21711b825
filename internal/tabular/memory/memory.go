package memory

import (
	"context"
	"sync"

	"spendwise/internal/core"
	"spendwise/internal/tabular"
)

// Store keeps an expense table in process memory. Contents live as long as
// the process, which makes it useful for demos and tests.
type Store struct {
	mu    sync.Mutex
	name  string
	items []core.Expense
	saves int
}

var _ tabular.Source = (*Store)(nil)

func New(name string, seed ...core.Expense) *Store {
	return &Store{name: name, items: clone(seed)}
}

func (s *Store) Name() string { return "memory:" + s.name }

func (s *Store) Load(_ context.Context) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.items), nil
}

func (s *Store) Save(_ context.Context, expenses []core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = clone(expenses)
	s.saves++
	return nil
}

// Saves reports how many times Save has been called.
func (s *Store) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func clone(in []core.Expense) []core.Expense {
	if len(in) == 0 {
		return nil
	}
	out := make([]core.Expense, len(in))
	for i, e := range in {
		e.ID = ""
		out[i] = e
	}
	return out
}
