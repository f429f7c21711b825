// Package core provides money parsing and handling utilities.
//
// This file contains the decimal amount type used for every expense and
// the bucket classification derived from it.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a decimal currency value in a single implied unit. Sign is unconstrained.
type Money struct {
	decimal.Decimal
}

// ParseMoney coerces s to a decimal amount.
//
// Plain and exponent forms are accepted ("45", "120.50", "-3", "1e3").
// Symbolic values such as NaN or Inf, currency symbols and thousands
// separators are rejected with ErrInvalidAmount.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return Money{Decimal: d}, nil
}

// MustMoney parses s and panics on failure. Intended for tests and constants.
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Add returns m + o.
func (m Money) Add(o Money) Money {
	return Money{Decimal: m.Decimal.Add(o.Decimal)}
}

// Format renders the amount with two decimals behind the given currency symbol.
func (m Money) Format(symbol string) string {
	return symbol + m.StringFixed(2)
}

// Bucket classifies an expense by amount magnitude.
type Bucket string

const (
	BucketSafe    Bucket = "SAFE"
	BucketAverage Bucket = "AVERAGE"
	BucketHigh    Bucket = "HIGH"
)

var (
	averageFloor = decimal.NewFromInt(50)
	highCeiling  = decimal.NewFromInt(300)
)

// Classify maps amount < 50 to SAFE, 50..300 inclusive to AVERAGE and > 300 to HIGH.
func Classify(m Money) Bucket {
	switch {
	case m.LessThan(averageFloor):
		return BucketSafe
	case m.GreaterThan(highCeiling):
		return BucketHigh
	default:
		return BucketAverage
	}
}

// Label is the human text shown in the Category Type column.
func (b Bucket) Label() string {
	switch b {
	case BucketSafe:
		return "Safe Expenses"
	case BucketAverage:
		return "Average Zone"
	case BucketHigh:
		return "High Expenses"
	default:
		return string(b)
	}
}

// Color is the row background for the bucket.
func (b Bucket) Color() string {
	switch b {
	case BucketSafe:
		return "darkgreen"
	case BucketAverage:
		return "skyblue"
	case BucketHigh:
		return "red"
	default:
		return "white"
	}
}

// DefaultCurrencySymbol prefixes displayed amounts unless configured otherwise.
const DefaultCurrencySymbol = "₹"
