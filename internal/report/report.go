// Package report renders check results for the command line.
package report

import (
	"fmt"
	"io"

	"github.com/alovak/cardcheck/internal/cardcheck"
	"github.com/alovak/cardcheck/internal/cardgen"
	"github.com/alovak/cardcheck/validator/models"
)

// Entry is one rendered line of a report.
type Entry struct {
	Number   string `json:"number" yaml:"number"`
	Valid    bool   `json:"valid" yaml:"valid"`
	CardType string `json:"card_type,omitempty" yaml:"card_type,omitempty"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Formatter writes a set of entries in one output format.
type Formatter interface {
	Name() string
	Format(w io.Writer, entries []Entry) error
}

// Formats lists the names accepted by New.
var Formats = []string{"text", "json", "yaml"}

// New returns the formatter registered under name.
func New(name string, noColor bool) (Formatter, error) {
	switch name {
	case "", "text":
		return NewTextFormatter(noColor), nil
	case "json":
		return &JSONFormatter{}, nil
	case "yaml":
		return &YAMLFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown format %q (want one of %v)", name, Formats)
	}
}

// FromOutcome builds an entry from a local check. The number is shown as the
// caller typed it unless mask is set.
func FromOutcome(o cardcheck.Outcome, mask bool) Entry {
	e := Entry{Number: display(o.Input, mask)}
	if o.Err != nil {
		e.Error = o.Err.Error()
		return e
	}
	e.Valid = o.Result.Valid
	if e.Valid {
		e.CardType = o.Result.Type.String()
	}
	return e
}

// FromResult builds an entry from a server response for input. The server
// only returns masked numbers, so input is used when mask is off.
func FromResult(input string, r models.CheckResult, mask bool) Entry {
	e := Entry{Number: display(input, mask), Valid: r.Valid, Error: r.Error}
	if mask && r.Number != "" {
		e.Number = r.Number
	}
	if e.Valid {
		e.CardType = r.CardType.String()
	}
	return e
}

func display(input string, mask bool) string {
	if mask {
		return cardgen.MaskPAN(input)
	}
	return input
}
