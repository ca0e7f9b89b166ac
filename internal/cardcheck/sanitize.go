package cardcheck

import "strings"

// Sanitize returns the ASCII digits of raw in their original order.
// Every other character, including non-ASCII digits, is dropped.
func Sanitize(raw string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)
}

// IsDigits reports whether s consists of ASCII digits only.
// The empty string is reported as digits.
func IsDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
