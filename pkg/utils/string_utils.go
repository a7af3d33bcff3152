package utils

import "strings"

// NewNullString is a helper for string pointers, returning nil if string is empty.
// Useful for fields that are optional and should be NULL in DB if not provided.
func NewNullString(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// DerefString returns the pointed-to string or fallback when p is nil.
func DerefString(p *string, fallback string) string {
	if p == nil {
		return fallback
	}
	return *p
}
