package utils

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseDecimal_AcceptsFormattedStrings(t *testing.T) {
	cases := []struct {
		in       string
		expected string
	}{
		{"20000", "20000"},
		{"20,000", "20000"},
		{"  1,234.50  ", "1234.5"},
		{"-3.25", "-3.25"},
		{"0.07", "0.07"},
	}
	for _, tc := range cases {
		d, err := ParseDecimal(tc.in)
		if err != nil {
			t.Fatalf("ParseDecimal(%q) error: %v", tc.in, err)
		}
		if d.String() != tc.expected {
			t.Fatalf("ParseDecimal(%q) expected %s, got %s", tc.in, tc.expected, d.String())
		}
	}
}

func TestParseDecimal_RejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "   ", "bad", "12abc", "1.2.3"} {
		if _, err := ParseDecimal(in); err == nil {
			t.Fatalf("ParseDecimal(%q) expected error", in)
		}
	}
}

func TestHasMoneyPrecision(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"10", true},
		{"10.5", true},
		{"10.25", true},
		{"10.250", true},
		{"10.255", false},
	}
	for _, tc := range cases {
		if got := HasMoneyPrecision(decimal.RequireFromString(tc.in)); got != tc.want {
			t.Fatalf("HasMoneyPrecision(%s) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestRoundMoney(t *testing.T) {
	got := RoundMoney(decimal.RequireFromString("8.505"))
	if !got.Equal(decimal.RequireFromString("8.51")) {
		t.Fatalf("RoundMoney(8.505) = %s, want 8.51", got)
	}
}
