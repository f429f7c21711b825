package core

import (
	"errors"
	"testing"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"45", "45", true},
		{"120.50", "120.5", true},
		{" 2.50 ", "2.5", true},
		{"-12", "-12", true},
		{"0", "0", true},
		{"1e3", "1000", true},
		{"abc", "", false},
		{"", "", false},
		{"1.2.3", "", false},
		{"NaN", "", false},
		{"Inf", "", false},
		{"₹45", "", false},
		{"1,000", "", false},
	}
	for _, tc := range cases {
		got, err := ParseMoney(tc.in)
		if tc.ok {
			if err != nil || got.String() != tc.out {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got.String(), err)
			}
		} else {
			if !errors.Is(err, ErrInvalidAmount) {
				t.Fatalf("%q expected ErrInvalidAmount, got %v", tc.in, err)
			}
		}
	}
}

func TestMoneyFormat(t *testing.T) {
	if got := MustMoney("660.5").Format("₹"); got != "₹660.50" {
		t.Fatalf("unexpected format %q", got)
	}
	if got := (Money{}).Format("₹"); got != "₹0.00" {
		t.Fatalf("zero value should format as ₹0.00, got %q", got)
	}
}

func TestMoneyAddIsExact(t *testing.T) {
	sum := MustMoney("0.1").Add(MustMoney("0.2"))
	if !sum.Equal(MustMoney("0.3").Decimal) {
		t.Fatalf("expected exact 0.3, got %s", sum)
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		amount string
		want   Bucket
	}{
		{"-5", BucketSafe},
		{"0", BucketSafe},
		{"49.99", BucketSafe},
		{"50.00", BucketAverage},
		{"120.50", BucketAverage},
		{"300.00", BucketAverage},
		{"300.01", BucketHigh},
		{"500", BucketHigh},
	}
	for _, tc := range cases {
		if got := Classify(MustMoney(tc.amount)); got != tc.want {
			t.Fatalf("Classify(%s) = %s, want %s", tc.amount, got, tc.want)
		}
	}
}

func TestBucketPresentation(t *testing.T) {
	if BucketSafe.Label() != "Safe Expenses" || BucketSafe.Color() != "darkgreen" {
		t.Fatalf("unexpected SAFE presentation")
	}
	if BucketAverage.Label() != "Average Zone" || BucketAverage.Color() != "skyblue" {
		t.Fatalf("unexpected AVERAGE presentation")
	}
	if BucketHigh.Label() != "High Expenses" || BucketHigh.Color() != "red" {
		t.Fatalf("unexpected HIGH presentation")
	}
}
