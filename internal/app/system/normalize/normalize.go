// Package normalize canonicalizes contact fields before they are
// stored or used as delivery targets.
package normalize

import (
	"strings"
	"unicode"
)

// Email lowercases and trims an email address. Empty or blank input
// normalizes to the empty string.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Phone strips formatting from a phone number, keeping digits and a
// single leading plus sign. "+55 (11) 91234-5678" becomes
// "+5511912345678".
func Phone(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	var b strings.Builder
	for i, r := range s {
		if r == '+' && i == 0 {
			b.WriteRune(r)
			continue
		}
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Name trims surrounding whitespace but preserves case.
func Name(s string) string {
	return strings.TrimSpace(s)
}
