package tabular

import (
	"errors"
	"testing"

	"spendwise/internal/core"
)

func TestResourceNames(t *testing.T) {
	if got := ResourceName("alice"); got != "alice_expenses.csv" {
		t.Fatalf("unexpected resource %q", got)
	}
	if got := TableName("alice"); got != "alice_expenses" {
		t.Fatalf("unexpected table %q", got)
	}
	if ResourceName("alice") == ResourceName("alice2") {
		t.Fatalf("distinct usernames must not collide")
	}
}

func TestRowsAndRecordsFromRows(t *testing.T) {
	in := []core.Expense{
		{Category: "Food", Description: "Lunch", Amount: core.MustMoney("45"), Date: "01/01/2024", Location: "Cafe", PaymentMethod: "Cash"},
	}
	rows := Rows(in)
	if len(rows) != 2 || rows[0][0] != core.FieldCategory || rows[1][2] != "45" {
		t.Fatalf("unexpected rows %v", rows)
	}
	got, err := RecordsFromRows(rows[0], rows[1:])
	if err != nil || len(got) != 1 || got[0].Location != "Cafe" {
		t.Fatalf("unexpected decode %+v err=%v", got, err)
	}

	_, err = RecordsFromRows([]string{"amount"}, [][]string{{"1"}, {"x"}})
	var rowErr *RowError
	if !errors.As(err, &rowErr) || rowErr.Row != 3 {
		t.Fatalf("expected RowError at row 3, got %v", err)
	}
}
