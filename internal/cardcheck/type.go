package cardcheck

import (
	"fmt"
	"strings"
)

// Type is a card network.
type Type int

const (
	Unknown Type = iota
	AmericanExpress
	MasterCard
	Visa
	Discover
)

// Types lists the known networks, Unknown excluded.
var Types = []Type{AmericanExpress, MasterCard, Visa, Discover}

func (t Type) String() string {
	switch t {
	case AmericanExpress:
		return "American Express"
	case MasterCard:
		return "MasterCard"
	case Visa:
		return "Visa"
	case Discover:
		return "Discover"
	default:
		return "Unknown"
	}
}

// Slug returns the short lowercase name used by flags and config.
func (t Type) Slug() string {
	switch t {
	case AmericanExpress:
		return "amex"
	case MasterCard:
		return "mastercard"
	case Visa:
		return "visa"
	case Discover:
		return "discover"
	default:
		return "unknown"
	}
}

func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Type) UnmarshalText(b []byte) error {
	v, err := ParseType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ParseType accepts a display name or a slug, case-insensitively.
func ParseType(s string) (Type, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, t := range append([]Type{Unknown}, Types...) {
		if s == strings.ToLower(t.String()) || s == t.Slug() {
			return t, nil
		}
	}
	return Unknown, fmt.Errorf("unknown card type %q", s)
}
