package models

import (
	"time"

	"github.com/alovak/cardcheck/internal/cardcheck"
)

type CheckRequest struct {
	Number string `json:"number"`
	// Expiry is optional, MM/YY or MMYY as printed on the card.
	Expiry string `json:"expiry,omitempty"`
}

type BatchRequest struct {
	Numbers []string `json:"numbers"`
}

// CheckResult is what callers get back for one number. Number is masked.
type CheckResult struct {
	ID       string         `json:"id,omitempty"`
	Number   string         `json:"number"`
	Valid    bool           `json:"valid"`
	CardType cardcheck.Type `json:"card_type"`
	// Expired is set only when an expiry was supplied.
	Expired *bool `json:"expired,omitempty"`
	// Seen counts earlier checks of the same number.
	Seen  int    `json:"seen,omitempty"`
	Error string `json:"error,omitempty"`
}

type BatchResponse struct {
	Results []CheckResult `json:"results"`
}

// Source tells which front door a check came through.
type Source string

const (
	SourceHTTP    Source = "http"
	SourceISO8583 Source = "iso8583"
	SourceCLI     Source = "cli"
)

// CheckRecord is the audit entry for one check. It never holds the PAN:
// only its keyed hash, the BIN and the last four digits.
type CheckRecord struct {
	ID        string         `json:"id"`
	PANHash   []byte         `json:"-"`
	BIN       string         `json:"bin"`
	Last4     string         `json:"last4"`
	Length    int            `json:"length"`
	Valid     bool           `json:"valid"`
	CardType  cardcheck.Type `json:"card_type"`
	Source    Source         `json:"source"`
	CreatedAt time.Time      `json:"created_at"`
}
