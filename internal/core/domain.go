package core

import (
	"strings"
	"time"
)

// DateLayout is the DD/MM/YYYY entry format. Single-digit days and months are accepted.
const DateLayout = "2/1/2006"

// NotAvailable is shown in place of an empty field. It is never stored.
const NotAvailable = "N/A"

// Storage field names, in header order.
const (
	FieldCategory      = "category"
	FieldDescription   = "description"
	FieldAmount        = "amount"
	FieldDate          = "date"
	FieldLocation      = "location"
	FieldPaymentMethod = "payment_method"
)

// Header is the fixed column order of every persisted expense table.
var Header = []string{
	FieldCategory,
	FieldDescription,
	FieldAmount,
	FieldDate,
	FieldLocation,
	FieldPaymentMethod,
}

// Suggested values offered by the shells. Neither list constrains input.
var (
	SuggestedCategories = []string{
		"Food", "Transportation", "Rent/Mortgage", "Utilities",
		"Entertainment", "Health", "Education", "Miscellaneous",
	}
	SuggestedPaymentMethods = []string{
		"Cash", "UPI", "Credit Card", "Debit Card", "Bank Transfer", "Cheque",
	}
)

type (
	Expense struct {
		ID            string // synthetic, assigned in memory only
		Category      string
		Description   string
		Amount        Money
		NoAmount      bool   // stored row left amount empty; Amount reads as zero
		Date          string // as entered, DD/MM/YYYY
		Location      string
		PaymentMethod string
	}

	// ExpenseInput carries the raw form values of an add request.
	ExpenseInput struct {
		Category      string
		Description   string
		Amount        string
		Date          string
		Location      string
		PaymentMethod string
	}
)

// Validate checks presence of the text fields, then the amount, then the date.
func (in ExpenseInput) Validate() error {
	for _, v := range []string{in.Category, in.Description, in.Date, in.Location, in.PaymentMethod} {
		if strings.TrimSpace(v) == "" {
			return ErrMissingField
		}
	}
	if _, err := ParseMoney(in.Amount); err != nil {
		return err
	}
	return ValidateDate(in.Date)
}

// ValidateDate reports whether s is a real calendar date in DD/MM/YYYY form.
func ValidateDate(s string) error {
	if _, err := time.Parse(DateLayout, strings.TrimSpace(s)); err != nil {
		return ErrInvalidDate
	}
	return nil
}

// Record returns the expense as a field-name keyed row.
func (e Expense) Record() map[string]string {
	return map[string]string{
		FieldCategory:      e.Category,
		FieldDescription:   e.Description,
		FieldAmount:        e.AmountText(),
		FieldDate:          e.Date,
		FieldLocation:      e.Location,
		FieldPaymentMethod: e.PaymentMethod,
	}
}

// AmountText is the stored form of the amount, empty when the row had none.
func (e Expense) AmountText() string {
	if e.NoAmount {
		return ""
	}
	return e.Amount.String()
}

// DisplayAmount formats the amount for display, or NotAvailable when absent.
func (e Expense) DisplayAmount(symbol string) string {
	if e.NoAmount {
		return NotAvailable
	}
	return e.Amount.Format(symbol)
}

// Row returns the expense values in Header order.
func (e Expense) Row() []string {
	rec := e.Record()
	row := make([]string, len(Header))
	for i, name := range Header {
		row[i] = rec[name]
	}
	return row
}

// ExpenseFromRecord rebuilds an expense from a field-name keyed row.
// Missing fields stay empty; an empty amount reads as zero and is marked
// NoAmount so it renders as NotAvailable and saves back empty.
func ExpenseFromRecord(rec map[string]string) (Expense, error) {
	e := Expense{
		Category:      rec[FieldCategory],
		Description:   rec[FieldDescription],
		Date:          rec[FieldDate],
		Location:      rec[FieldLocation],
		PaymentMethod: rec[FieldPaymentMethod],
	}
	if raw := strings.TrimSpace(rec[FieldAmount]); raw != "" {
		m, err := ParseMoney(raw)
		if err != nil {
			return Expense{}, err
		}
		e.Amount = m
	} else {
		e.NoAmount = true
	}
	return e, nil
}

// Display returns v, or NotAvailable when v is blank.
func Display(v string) string {
	if strings.TrimSpace(v) == "" {
		return NotAvailable
	}
	return v
}
