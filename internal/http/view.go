package http

import (
	"spendwise/internal/core"
	"spendwise/internal/session"
	"spendwise/internal/taxonomy"
)

type rowView struct {
	ID            string
	Index         int
	Date          string
	Category      string
	Description   string
	Amount        string
	Location      string
	PaymentMethod string
	BucketClass   string
	BucketLabel   string
}

type expensesView struct {
	Username string
	Empty    bool
	Rows     []rowView
	Total    string
	Currency string
}

type trackerView struct {
	Username       string
	Expenses       expensesView
	Categories     []string
	PaymentMethods []string
}

type indexView struct {
	Error string
}

// bucketClass maps a bucket to its CSS row class.
func bucketClass(b core.Bucket) string {
	switch b {
	case core.BucketSafe:
		return "bucket-safe"
	case core.BucketHigh:
		return "bucket-high"
	default:
		return "bucket-average"
	}
}

func newExpensesView(username, currency string, res session.Result) expensesView {
	v := expensesView{
		Username: username,
		Empty:    res.Listing.Empty(),
		Total:    res.Total.Format(currency),
		Currency: currency,
	}
	for _, en := range res.Listing.Entries {
		e := en.Expense
		v.Rows = append(v.Rows, rowView{
			ID:            e.ID,
			Index:         en.Index(),
			Date:          e.Date,
			Category:      e.Category,
			Description:   e.Description,
			Amount:        e.DisplayAmount(currency),
			Location:      e.Location,
			PaymentMethod: e.PaymentMethod,
			BucketClass:   bucketClass(en.Bucket),
			BucketLabel:   en.Bucket.Label(),
		})
	}
	return v
}

func newTrackerView(username, currency string, res session.Result, tax taxonomy.Taxonomy) trackerView {
	return trackerView{
		Username:       username,
		Expenses:       newExpensesView(username, currency, res),
		Categories:     tax.Categories,
		PaymentMethods: tax.PaymentMethods,
	}
}
