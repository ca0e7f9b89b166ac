package cardcheck

import "fmt"

const (
	MinLength = 13
	MaxLength = 19
)

// IsValid reports whether clean is a 13..19 digit number that passes the
// Luhn checksum. Anything else, including input that still carries
// non-digit characters, is reported as invalid.
func IsValid(clean string) bool {
	if l := len(clean); l < MinLength || l > MaxLength {
		return false
	}
	if !IsDigits(clean) {
		return false
	}
	return luhnSum(clean, false)%10 == 0
}

// CheckDigit returns the digit that completes body into a Luhn-valid number.
func CheckDigit(body string) (byte, error) {
	if body == "" {
		return 0, fmt.Errorf("body is required")
	}
	if !IsDigits(body) {
		return 0, fmt.Errorf("body must contain digits only")
	}
	cd := (10 - luhnSum(body, true)%10) % 10
	return '0' + byte(cd), nil
}

// luhnSum walks digits from the right. With dbl false the rightmost digit
// is taken as is (validation); with dbl true it is doubled, which is where
// a check digit still has to be appended.
func luhnSum(digits string, dbl bool) int {
	sum := 0
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if dbl {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		dbl = !dbl
	}
	return sum
}
