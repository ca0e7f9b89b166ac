package cardcheck

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrMalformedInput is returned in strict mode for input carrying
// anything other than ASCII digits.
var ErrMalformedInput = errors.New("malformed card number")

// Policy decides what happens to non-digit characters in raw input.
type Policy int

const (
	// Lenient drops non-digit characters silently.
	Lenient Policy = iota
	// Strict rejects input with any non-digit character.
	Strict
)

func (p Policy) String() string {
	if p == Strict {
		return "strict"
	}
	return "lenient"
}

func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lenient":
		return Lenient, nil
	case "strict":
		return Strict, nil
	default:
		return Lenient, fmt.Errorf("unknown input policy %q", s)
	}
}

// Result is the outcome of checking one card number.
type Result struct {
	// Number is the sanitized digit sequence.
	Number string
	Valid  bool
	// Type is Unknown unless Valid.
	Type Type
}

// Outcome pairs a raw batch input with its result.
type Outcome struct {
	Input  string
	Result Result
	Err    error
}

// Checker runs sanitize, validate and classify under an input policy.
// The zero value is a lenient checker.
type Checker struct {
	policy Policy
}

func NewChecker(policy Policy) *Checker {
	return &Checker{policy: policy}
}

func (c *Checker) Policy() Policy {
	return c.policy
}

func (c *Checker) Check(raw string) (Result, error) {
	if c.policy == Strict {
		if err := rejectNonDigits(raw); err != nil {
			return Result{}, err
		}
	}
	clean := Sanitize(raw)
	res := Result{Number: clean, Valid: IsValid(clean)}
	if res.Valid {
		res.Type = Classify(clean)
	}
	return res, nil
}

func rejectNonDigits(raw string) error {
	for i, r := range raw {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: unexpected %q at offset %d", ErrMalformedInput, r, i)
		}
	}
	return nil
}

// CheckAll checks every input and returns outcomes in input order.
// With workers > 1 inputs are checked concurrently. Inputs not reached
// before ctx is done carry ctx.Err().
func (c *Checker) CheckAll(ctx context.Context, raws []string, workers int) []Outcome {
	out := make([]Outcome, len(raws))
	if workers > len(raws) {
		workers = len(raws)
	}

	if workers <= 1 {
		for i, raw := range raws {
			out[i] = c.outcome(ctx, raw)
		}
		return out
	}

	idx := make(chan int)
	wg := &sync.WaitGroup{}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idx {
				out[i] = c.outcome(ctx, raws[i])
			}
		}()
	}
	for i := range raws {
		idx <- i
	}
	close(idx)
	wg.Wait()

	return out
}

func (c *Checker) outcome(ctx context.Context, raw string) Outcome {
	if err := ctx.Err(); err != nil {
		return Outcome{Input: raw, Err: err}
	}
	res, err := c.Check(raw)
	return Outcome{Input: raw, Result: res, Err: err}
}
