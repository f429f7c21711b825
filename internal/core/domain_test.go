package core

import (
	"errors"
	"testing"
)

func validInput() ExpenseInput {
	return ExpenseInput{
		Category:      "Food",
		Description:   "Lunch",
		Amount:        "45",
		Date:          "01/01/2024",
		Location:      "Cafe",
		PaymentMethod: "Cash",
	}
}

func TestExpenseInputValidate(t *testing.T) {
	if err := validInput().Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*ExpenseInput)
		want   error
	}{
		{"missing category", func(in *ExpenseInput) { in.Category = "" }, ErrMissingField},
		{"blank description", func(in *ExpenseInput) { in.Description = "  " }, ErrMissingField},
		{"missing date", func(in *ExpenseInput) { in.Date = "" }, ErrMissingField},
		{"missing location", func(in *ExpenseInput) { in.Location = "" }, ErrMissingField},
		{"missing payment", func(in *ExpenseInput) { in.PaymentMethod = "" }, ErrMissingField},
		{"bad amount", func(in *ExpenseInput) { in.Amount = "abc" }, ErrInvalidAmount},
		{"empty amount", func(in *ExpenseInput) { in.Amount = "" }, ErrInvalidAmount},
		{"iso date", func(in *ExpenseInput) { in.Date = "2024-01-01" }, ErrInvalidDate},
		{"impossible date", func(in *ExpenseInput) { in.Date = "31/02/2024" }, ErrInvalidDate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			err := in.Validate()
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected a validation error, got %v", err)
			}
		})
	}
}

func TestValidateDateAcceptsSingleDigits(t *testing.T) {
	for _, d := range []string{"1/1/2024", "01/01/2024", "29/02/2024", "31/12/1999"} {
		if err := ValidateDate(d); err != nil {
			t.Fatalf("%q expected ok, got %v", d, err)
		}
	}
}

func TestExpenseRecordRoundTrip(t *testing.T) {
	e := Expense{
		Category:      "Rent/Mortgage",
		Description:   "March, rent",
		Amount:        MustMoney("1200.75"),
		Date:          "01/03/2024",
		Location:      "Home",
		PaymentMethod: "Bank Transfer",
	}
	got, err := ExpenseFromRecord(e.Record())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Description != e.Description || !got.Amount.Equal(e.Amount.Decimal) || got.PaymentMethod != e.PaymentMethod {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, e)
	}
	if row := e.Row(); len(row) != len(Header) || row[2] != "1200.75" {
		t.Fatalf("unexpected row: %v", row)
	}
}

func TestExpenseFromRecordMissingFields(t *testing.T) {
	got, err := ExpenseFromRecord(map[string]string{FieldCategory: "Food", FieldAmount: "10"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Location != "" || got.Date != "" {
		t.Fatalf("missing fields should stay empty, got %+v", got)
	}
	if Display(got.Location) != NotAvailable {
		t.Fatalf("expected N/A for missing location")
	}

	if _, err := ExpenseFromRecord(map[string]string{FieldAmount: "ten"}); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestMissingAmountDisplaysNotAvailable(t *testing.T) {
	got, err := ExpenseFromRecord(map[string]string{FieldCategory: "Food"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.NoAmount || !got.Amount.IsZero() {
		t.Fatalf("expected absent zero amount, got %+v", got)
	}
	if d := got.DisplayAmount("₹"); d != NotAvailable {
		t.Fatalf("DisplayAmount = %q, want %q", d, NotAvailable)
	}
	if row := got.Row(); row[2] != "" {
		t.Fatalf("absent amount should stay empty in storage, got %q", row[2])
	}

	present := Expense{Amount: MustMoney("0")}
	if d := present.DisplayAmount("₹"); d != "₹0.00" {
		t.Fatalf("DisplayAmount = %q, want ₹0.00", d)
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(ErrNoSelection); got != "Please select an expense to delete." {
		t.Fatalf("unexpected message %q", got)
	}
	if got := UserMessage(&RangeError{Position: 3, Length: 1}); got != "Invalid expense index." {
		t.Fatalf("unexpected message %q", got)
	}
}
