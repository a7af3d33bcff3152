package utils

import (
	"strings"

	"github.com/ttacon/libphonenumber"
)

// NormalizePhone formats a parseable, valid number as E.164 using region for
// numbers written without a country code. Anything else is returned trimmed.
func NormalizePhone(raw, region string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	num, err := libphonenumber.Parse(trimmed, strings.ToUpper(region))
	if err != nil || !libphonenumber.IsValidNumber(num) {
		return trimmed
	}
	return libphonenumber.Format(num, libphonenumber.E164)
}
