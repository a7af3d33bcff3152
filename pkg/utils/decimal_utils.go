package utils

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MoneyPlaces is the fixed precision of prices, amounts and quantities.
const MoneyPlaces = 2

// ParseDecimal parses a user- or spreadsheet-supplied number such as "1,234.50".
// Thousands separators and surrounding spaces are accepted, anything else is an error.
func ParseDecimal(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty numeric value")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid numeric value %q", raw)
	}
	return d, nil
}

// HasMoneyPrecision reports whether d has at most MoneyPlaces fractional digits.
func HasMoneyPrecision(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(MoneyPlaces))
}

// RoundMoney rounds half away from zero to MoneyPlaces.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}
