// Package expiry parses card expiry dates and decides whether they have passed.
//
// Two layouts are in use: the card face (MM/YY or MMYY) that people type, and
// YYMM as carried in ISO 8583 field 14. A card stays valid through the last
// instant of its expiry month in the given location.
package expiry

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalid marks expiry values that cannot be parsed. Parse errors in this
// package are not wrapped with it; callers wrap when they need to match.
var ErrInvalid = errors.New("invalid expiry")

// YYMM returns expiry in YYMM for an issue date + years.
func YYMM(issue time.Time, years int, loc *time.Location) string {
	t := issue.In(orUTC(loc))
	y := (t.Year() + years) % 100
	m := int(t.Month())
	return fmt.Sprintf("%02d%02d", y, m)
}

// CardFace returns expiry as MM/YY for card imprint.
func CardFace(issue time.Time, years int, loc *time.Location) string {
	t := issue.In(orUTC(loc))
	y := (t.Year() + years) % 100
	m := int(t.Month())
	return fmt.Sprintf("%02d/%02d", m, y)
}

// ParseYYMMEndOfMonth parses YYMM into the last instant of that month in loc.
func ParseYYMMEndOfMonth(yymm string, loc *time.Location) (time.Time, error) {
	if err := ValidateYYMM(yymm); err != nil {
		return time.Time{}, err
	}
	yy, _ := strconv.Atoi(yymm[:2])
	mm, _ := strconv.Atoi(yymm[2:])
	year := 2000 + yy
	// First day of next month
	firstNext := time.Date(year, time.Month(mm), 1, 0, 0, 0, 0, orUTC(loc)).AddDate(0, 1, 0)
	// End of target month = 1ns before first day of next month
	return firstNext.Add(-time.Nanosecond), nil
}

// IsExpired reports whether time 'at' is strictly after the end of YYMM month in loc.
func IsExpired(yymm string, at time.Time, loc *time.Location) (bool, error) {
	end, err := ParseYYMMEndOfMonth(yymm, loc)
	if err != nil {
		return false, err
	}
	return at.In(end.Location()).After(end), nil
}

// ParseCardFace accepts "MM/YY" or "MMYY" and returns YYMM.
func ParseCardFace(in string) (string, error) {
	s := strings.TrimSpace(in)
	s = strings.ReplaceAll(s, "/", "")
	if len(s) != 4 {
		return "", fmt.Errorf("card face must be MM/YY or MMYY")
	}
	for i := 0; i < 4; i++ {
		if s[i] < '0' || s[i] > '9' {
			return "", fmt.Errorf("card face must be digits")
		}
	}
	mm, _ := strconv.Atoi(s[:2])
	if mm < 1 || mm > 12 {
		return "", fmt.Errorf("month must be 01..12")
	}
	return s[2:] + s[:2], nil
}

// ValidateYYMM checks the YYMM layout and that the month is 01..12.
func ValidateYYMM(yymm string) error {
	if len(yymm) != 4 {
		return fmt.Errorf("expiry must be YYMM (4 digits)")
	}
	for i := 0; i < 4; i++ {
		if yymm[i] < '0' || yymm[i] > '9' {
			return fmt.Errorf("expiry must be digits: YYMM")
		}
	}
	mm := int(yymm[2]-'0')*10 + int(yymm[3]-'0')
	if mm < 1 || mm > 12 {
		return fmt.Errorf("expiry month must be 01..12")
	}
	return nil
}

func orUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
