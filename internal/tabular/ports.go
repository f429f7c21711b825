// Package tabular defines the persistence port for expense tables and the
// naming rule that ties a username to its storage resource.
package tabular

import (
	"context"
	"strconv"
	"strings"

	"spendwise/internal/core"
)

// ResourceSuffix is appended to the username to form the resource name.
const ResourceSuffix = "_expenses.csv"

// Source reads and writes one user's expense table.
type Source interface {
	// Load returns the stored expenses in table order. A resource that does
	// not exist yet yields no expenses and no error.
	Load(ctx context.Context) ([]core.Expense, error)
	// Save overwrites the resource with the given expenses under core.Header.
	Save(ctx context.Context, expenses []core.Expense) error
	// Name identifies the resource in logs and user messages.
	Name() string
}

// ResourceName derives the storage resource name for a username.
func ResourceName(username string) string {
	return username + ResourceSuffix
}

// TableName is ResourceName without the file extension, used where a file
// suffix makes no sense (SQLite owner key, spreadsheet tab title).
func TableName(username string) string {
	return strings.TrimSuffix(ResourceName(username), ".csv")
}

// RecordsFromRows maps header-keyed rows to expenses. Cells beyond the header
// are ignored and short rows leave the trailing fields empty.
func RecordsFromRows(header []string, rows [][]string) ([]core.Expense, error) {
	out := make([]core.Expense, 0, len(rows))
	for i, row := range rows {
		if isBlank(row) {
			continue
		}
		rec := make(map[string]string, len(header))
		for j, name := range header {
			if j < len(row) {
				rec[strings.TrimSpace(name)] = row[j]
			}
		}
		e, err := core.ExpenseFromRecord(rec)
		if err != nil {
			return nil, &RowError{Row: i + 2, Err: err}
		}
		out = append(out, e)
	}
	return out, nil
}

// Rows returns the header followed by one row per expense.
func Rows(expenses []core.Expense) [][]string {
	rows := make([][]string, 0, len(expenses)+1)
	rows = append(rows, append([]string(nil), core.Header...))
	for _, e := range expenses {
		rows = append(rows, e.Row())
	}
	return rows
}

// RowError locates a stored row that could not be decoded. Row is 1-based and
// counts the header line.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return "row " + strconv.Itoa(e.Row) + ": " + e.Err.Error()
}

func (e *RowError) Unwrap() error { return e.Err }

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
