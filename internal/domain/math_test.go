package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestSafeParseValid(t *testing.T) {
	d := SafeParse("123.4567")
	if d.String() != "123.4567" {
		t.Errorf("SafeParse = %s, want 123.4567", d)
	}
}

func TestSafeParseInvalid(t *testing.T) {
	for _, in := range []string{"", "abc", "12.3.4", "NaN-ish"} {
		if d := SafeParse(in); !d.IsZero() {
			t.Errorf("SafeParse(%q) = %s, want 0", in, d)
		}
	}
}

func TestSafeGrams(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{30.0, "30"},
		{int64(5), "5"},
		{"2.5", "2.5"},
		{"-3", "0"},
		{-1.5, "0"},
		{nil, "0"},
		{"not a number", "0"},
		{map[string]any{"grams": 1}, "0"},
	}
	for _, c := range cases {
		if got := SafeGrams(c.in); got.String() != c.want {
			t.Errorf("SafeGrams(%v) = %s, want %s", c.in, got, c.want)
		}
	}
}

func TestFormatGrams(t *testing.T) {
	if got := FormatGrams(decimal.RequireFromString("2")); got != "2.0000" {
		t.Errorf("FormatGrams = %q, want 2.0000", got)
	}
	if got := FormatGrams(decimal.RequireFromString("0.12345")); got != "0.1235" {
		t.Errorf("FormatGrams = %q, want 0.1235", got)
	}
}

func TestFormatMYR(t *testing.T) {
	if got := FormatMYR(decimal.RequireFromString("1000")); got != "RM 1000.00" {
		t.Errorf("FormatMYR = %q, want RM 1000.00", got)
	}
}

func TestPurityPct(t *testing.T) {
	got := PurityPct(decimal.NewFromInt(9999))
	if got.String() != "99.99" {
		t.Errorf("PurityPct(9999) = %s, want 99.99", got)
	}
}

func TestRoundGrams(t *testing.T) {
	if got := RoundGrams(decimal.RequireFromString("2.50000")); got != "2.5" {
		t.Errorf("RoundGrams = %q, want 2.5", got)
	}
	if got := RoundGrams(decimal.NewFromInt(75)); got != "75" {
		t.Errorf("RoundGrams = %q, want 75", got)
	}
}
