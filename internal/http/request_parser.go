package http

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"spendwise/internal/core"
	"spendwise/internal/session"
)

// Form field names shared with the templates.
const (
	fieldUsername      = "username"
	fieldCategory      = "category"
	fieldDescription   = "description"
	fieldAmount        = "amount"
	fieldDate          = "date"
	fieldLocation      = "location"
	fieldPaymentMethod = "payment_method"
	fieldSelected      = "selected"
	fieldIndex         = "index"
)

// ParseExpenseInput reads the six add-form fields.
func ParseExpenseInput(form url.Values) core.ExpenseInput {
	return core.ExpenseInput{
		Category:      sanitizeInput(form.Get(fieldCategory)),
		Description:   sanitizeInput(form.Get(fieldDescription)),
		Amount:        strings.TrimSpace(form.Get(fieldAmount)),
		Date:          strings.TrimSpace(form.Get(fieldDate)),
		Location:      sanitizeInput(form.Get(fieldLocation)),
		PaymentMethod: sanitizeInput(form.Get(fieldPaymentMethod)),
	}
}

// ParseDeleteInput collects selected row IDs and 1-based indices. Indices that
// are not integers are kept as -1 so the session reports them out of range.
func ParseDeleteInput(form url.Values) session.DeleteInput {
	var in session.DeleteInput
	for _, id := range form[fieldSelected] {
		if id = strings.TrimSpace(id); id != "" {
			in.IDs = append(in.IDs, id)
		}
	}
	for _, v := range form[fieldIndex] {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			n = 0
		}
		in.Positions = append(in.Positions, n-1)
	}
	return in
}

// RequireMethod returns an error response unless r uses one of methods.
func RequireMethod(r *http.Request, methods ...string) *HTMXResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// RequirePOST is a convenience function for POST-only handlers.
func RequirePOST(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodPost)
}

// ParseFormOrFail parses the request form and returns an error response on failure.
func ParseFormOrFail(r *http.Request) *HTMXResponseBuilder {
	if err := r.ParseForm(); err != nil {
		return BadRequestError("Invalid request format")
	}
	return nil
}
