package cardgen

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/alovak/cardcheck/internal/cardcheck"
)

// network describes how to build numbers that classify as one card type.
type network struct {
	prefixes []string
	lengths  []int
}

var networks = map[cardcheck.Type]network{
	cardcheck.AmericanExpress: {prefixes: []string{"34", "37"}, lengths: []int{15}},
	cardcheck.MasterCard:      {prefixes: []string{"51", "52", "53", "54", "55"}, lengths: []int{16}},
	cardcheck.Visa:            {prefixes: []string{"4"}, lengths: []int{16, 13}},
	cardcheck.Discover:        {prefixes: []string{"6011", "60"}, lengths: []int{16, 17, 18, 19}},
}

// DefaultLength returns the most common length for typ, 0 for Unknown.
func DefaultLength(typ cardcheck.Type) int {
	n, ok := networks[typ]
	if !ok {
		return 0
	}
	return n.lengths[0]
}

// GenerateNumber returns a random Luhn-valid number of the given length that
// classifies as typ. A zero length picks the network default.
func GenerateNumber(typ cardcheck.Type, length int) (string, error) {
	n, ok := networks[typ]
	if !ok {
		return "", fmt.Errorf("cannot generate numbers for card type %s", typ)
	}
	if length == 0 {
		length = n.lengths[0]
	}
	if !containsInt(n.lengths, length) {
		return "", fmt.Errorf("%s numbers must be %s digits long (got %d)", typ, joinInts(n.lengths), length)
	}
	i, err := rand.Int(rand.Reader, big.NewInt(int64(len(n.prefixes))))
	if err != nil {
		return "", fmt.Errorf("rand: %w", err)
	}
	return GeneratePAN(n.prefixes[i.Int64()], length, "")
}

// GeneratePAN builds a number of totalLen digits (13..19) starting with prefix
// and ending with the Luhn check digit. sequence, when set, overrides the
// digits right before the check digit.
func GeneratePAN(prefix string, totalLen int, sequence string) (string, error) {
	if err := ValidatePrefix(prefix); err != nil {
		return "", err
	}
	if totalLen < cardcheck.MinLength || totalLen > cardcheck.MaxLength {
		return "", fmt.Errorf("total length must be %d..%d", cardcheck.MinLength, cardcheck.MaxLength)
	}
	fill := totalLen - 1 - len(prefix)
	if fill <= 0 {
		return "", fmt.Errorf("prefix too long: %s", prefix)
	}
	seq := strings.TrimSpace(sequence)
	if seq != "" {
		if !cardcheck.IsDigits(seq) {
			return "", fmt.Errorf("sequence must be numeric")
		}
		if len(seq) > fill {
			return "", fmt.Errorf("sequence length %d exceeds %d", len(seq), fill)
		}
	}

	digitsPart, err := randomDigits(fill)
	if err != nil {
		return "", fmt.Errorf("rand: %w", err)
	}
	b := []byte(digitsPart)
	if seq != "" {
		copy(b[fill-len(seq):], seq)
	}

	body := prefix + string(b)
	cd, err := cardcheck.CheckDigit(body)
	if err != nil {
		return "", err
	}
	return body + string(cd), nil
}

// randomDigits uses rejection sampling so that 0-9 stay uniform: only bytes
// below 250 are kept before taking them mod 10.
func randomDigits(count int) (string, error) {
	if count <= 0 {
		return "", nil
	}
	const threshold = 250 // 256 - (256 % 10)
	var sb strings.Builder
	sb.Grow(count)
	buf := make([]byte, 64)
	for sb.Len() < count {
		n, err := rand.Read(buf)
		if err != nil {
			return "", err
		}
		for i := 0; i < n && sb.Len() < count; i++ {
			b := buf[i]
			if b < threshold {
				sb.WriteByte('0' + (b % 10))
			}
		}
	}
	return sb.String(), nil
}

func ValidatePrefix(prefix string) error {
	if prefix == "" {
		return fmt.Errorf("prefix is required")
	}
	if !cardcheck.IsDigits(prefix) {
		return fmt.Errorf("prefix must contain digits only")
	}
	if len(prefix) > 9 {
		return fmt.Errorf("prefix must be at most 9 digits")
	}
	return nil
}

// GenerateUnique calls gen until exists reports an unused number.
func GenerateUnique(gen func() (string, error), maxRetries int, exists func(string) (bool, error)) (string, error) {
	if maxRetries <= 0 {
		maxRetries = 5
	}
	for i := 0; i <= maxRetries; i++ {
		pan, err := gen()
		if err != nil {
			return "", err
		}
		if exists == nil {
			return pan, nil
		}
		used, err := exists(pan)
		if err != nil {
			return "", fmt.Errorf("exists callback: %w", err)
		}
		if !used {
			return pan, nil
		}
	}
	return "", fmt.Errorf("failed to generate unique number after %d retries", maxRetries)
}

// LastN / MaskPAN are shared with the service and CLI.
func LastN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

// FirstN returns up to n leading characters of s.
func FirstN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// MaskPAN keeps the first six and last four digits of numbers long enough to
// be a card number (13 digits or more). Shorter input keeps at most the last
// four, and only when at least as many digits stay hidden.
func MaskPAN(pan string) string {
	cleaned := cardcheck.Sanitize(pan)
	n := len(cleaned)
	switch {
	case n <= 8:
		return strings.Repeat("*", n)
	case n < cardcheck.MinLength:
		return strings.Repeat("*", n-4) + cleaned[n-4:]
	default:
		return cleaned[:6] + strings.Repeat("*", n-10) + cleaned[n-4:]
	}
}

// Truncate returns the BIN and last four digits kept in audit records. Both
// are empty for numbers shorter than 13 digits, where together they would
// cover most or all of the number.
func Truncate(pan string) (bin, last4 string) {
	if len(pan) < cardcheck.MinLength {
		return "", ""
	}
	return FirstN(pan, 6), LastN(pan, 4)
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprint(x)
	}
	return strings.Join(parts, "/")
}
