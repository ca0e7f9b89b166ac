package cardcheck

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestSanitize(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{"", ""},
		{"abc", ""},
		{"4111 1111 1111 1111", "4111111111111111"},
		{"4111-1111-1111-1111", "4111111111111111"},
		{"\t37 1449\n635398431\x00", "371449635398431"},
		{"card: 6011-1111-1111-1117!", "6011111111111117"},
		{"٤١١١", ""}, // arabic-indic digits are not ASCII
		{"0000", "0000"},
	}
	for _, c := range cases {
		if got := Sanitize(c.in); got != c.out {
			t.Fatalf("Sanitize(%q) = %q want %q", c.in, got, c.out)
		}
	}
}

func FuzzSanitize(f *testing.F) {
	for _, seed := range []string{"", "4111 1111 1111 1111", "a1b2c3", "٤١١١-42"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, s string) {
		got := Sanitize(s)
		if !IsDigits(got) {
			t.Fatalf("Sanitize(%q) = %q contains non-digits", s, got)
		}
		// same relative order: got is a subsequence of s
		rest := s
		for _, r := range got {
			i := strings.IndexRune(rest, r)
			if i < 0 {
				t.Fatalf("Sanitize(%q) = %q is not a subsequence", s, got)
			}
			rest = rest[i+1:]
		}
		if again := Sanitize(got); again != got {
			t.Fatalf("Sanitize not idempotent: %q -> %q", got, again)
		}
	})
}

func TestIsValid(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"", false},
		{"4111111111111111", true},
		{"4111111111111112", false},
		{"371449635398431", true},
		{"378282246310005", true},
		{"6011111111111117", true},
		{"5555555555554444", true},
		{"4222222222222", true},
		{"3530111333300000", true},
		{"0000000000000", true},         // 13 zeros pass the checksum
		{"000000000000", false},         // 12 digits
		{"00000000000000000000", false}, // 20 digits
		{"411111111111", false},
		{"4111 1111 1111 1111", false}, // not cleaned
	}
	for _, c := range cases {
		if got := IsValid(c.in); got != c.ok {
			t.Fatalf("IsValid(%q) = %v want %v", c.in, got, c.ok)
		}
	}
}

func TestIsValid_LengthGate(t *testing.T) {
	// Every length outside 13..19 is rejected no matter the digits.
	for l := 0; l <= 25; l++ {
		for _, d := range []string{"0", "4", "9"} {
			s := strings.Repeat(d, l)
			if (l < MinLength || l > MaxLength) && IsValid(s) {
				t.Fatalf("IsValid(%q) = true for length %d", s, l)
			}
		}
	}
}

func TestCheckDigit(t *testing.T) {
	cases := []struct {
		body string
		cd   byte
	}{
		{"411111111111111", '1'},
		{"37144963539843", '1'},
		{"601111111111111", '7'},
		{"555555555555444", '4'},
	}
	for _, c := range cases {
		got, err := CheckDigit(c.body)
		if err != nil {
			t.Fatalf("CheckDigit(%q) err: %v", c.body, err)
		}
		if got != c.cd {
			t.Fatalf("CheckDigit(%q) = %c want %c", c.body, got, c.cd)
		}
		if !IsValid(c.body + string(got)) {
			t.Fatalf("%q + check digit is not valid", c.body)
		}
	}
	if _, err := CheckDigit(""); err == nil {
		t.Fatalf("expected error for empty body")
	}
	if _, err := CheckDigit("41x1"); err == nil {
		t.Fatalf("expected error for non-digit body")
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		in  string
		out Type
	}{
		{"", Unknown},
		{"4", Unknown},
		{"123", Unknown},
		{"371449635398431", AmericanExpress},
		{"341111111111111", AmericanExpress},
		{"3714496353984311", Unknown}, // amex prefix, 16 digits
		{"5105105105105100", MasterCard},
		{"5555555555554444", MasterCard},
		{"5655555555554444", Unknown},
		{"505555555555444", Unknown},
		{"4111111111111111", Visa},
		{"4222222222222", Visa},
		{"411111111111111", Unknown}, // 15 digits
		{"6011111111111117", Discover},
		{"6011111111111111110", Discover}, // 19 digits
		{"601111111111111", Unknown},      // 15 digits
		{"3530111333300000", Unknown},
		{"2221000000000009", Unknown},
	}
	for _, c := range cases {
		if got := Classify(c.in); got != c.out {
			t.Fatalf("Classify(%q) = %v want %v", c.in, got, c.out)
		}
	}
}

func TestParseType(t *testing.T) {
	for _, typ := range append([]Type{Unknown}, Types...) {
		for _, s := range []string{typ.String(), typ.Slug(), strings.ToUpper(typ.Slug())} {
			got, err := ParseType(s)
			if err != nil || got != typ {
				t.Fatalf("ParseType(%q) = %v, %v want %v", s, got, err, typ)
			}
		}
	}
	if _, err := ParseType("jcb"); err == nil {
		t.Fatalf("expected error for jcb")
	}
}

func TestChecker_Policies(t *testing.T) {
	if p := (&Checker{}).Policy(); p != Lenient {
		t.Fatalf("zero Checker policy = %s want lenient", p)
	}
	if p := NewChecker(Strict).Policy(); p != Strict {
		t.Fatalf("NewChecker(Strict).Policy() = %s", p)
	}

	lenient := NewChecker(Lenient)
	res, err := lenient.Check("4111-1111-1111-1111")
	if err != nil {
		t.Fatalf("lenient err: %v", err)
	}
	if !res.Valid || res.Type != Visa || res.Number != "4111111111111111" {
		t.Fatalf("lenient got %+v", res)
	}

	strict := NewChecker(Strict)
	_, err = strict.Check("4111-1111-1111-1111")
	if !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("strict err = %v want ErrMalformedInput", err)
	}
	if !strings.Contains(err.Error(), "offset 4") {
		t.Fatalf("strict err should name the offset: %v", err)
	}

	res, err = strict.Check("371449635398431")
	if err != nil || !res.Valid || res.Type != AmericanExpress {
		t.Fatalf("strict digits got %+v err=%v", res, err)
	}

	// empty input is not malformed, just invalid
	res, err = strict.Check("")
	if err != nil || res.Valid {
		t.Fatalf("strict empty got %+v err=%v", res, err)
	}

	// invalid numbers are never classified
	res, _ = (&Checker{}).Check("4111111111111112")
	if res.Valid || res.Type != Unknown {
		t.Fatalf("invalid got %+v", res)
	}
}

func TestParsePolicy(t *testing.T) {
	cases := []struct {
		in  string
		out Policy
		ok  bool
	}{
		{"", Lenient, true}, {"lenient", Lenient, true}, {" STRICT ", Strict, true}, {"loose", Lenient, false},
	}
	for _, c := range cases {
		got, err := ParsePolicy(c.in)
		if (err == nil) != c.ok || got != c.out {
			t.Fatalf("ParsePolicy(%q) = %v, %v", c.in, got, err)
		}
	}
}

func TestCheckAll_PreservesOrder(t *testing.T) {
	raws := []string{
		"4111111111111111", "4111111111111112", "371449635398431", "", "abc",
		"6011111111111117", "5555 5555 5555 4444", "123",
	}
	want := []bool{true, false, true, false, false, true, true, false}

	for _, workers := range []int{0, 1, 3, 100} {
		out := NewChecker(Lenient).CheckAll(context.Background(), raws, workers)
		if len(out) != len(raws) {
			t.Fatalf("workers=%d len=%d want %d", workers, len(out), len(raws))
		}
		for i, o := range out {
			if o.Input != raws[i] {
				t.Fatalf("workers=%d out[%d].Input=%q want %q", workers, i, o.Input, raws[i])
			}
			if o.Err != nil || o.Result.Valid != want[i] {
				t.Fatalf("workers=%d out[%d]=%+v want valid=%v", workers, i, o, want[i])
			}
		}
	}
}

func TestCheckAll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, workers := range []int{1, 4} {
		out := NewChecker(Lenient).CheckAll(ctx, []string{"4111111111111111", "6011111111111117"}, workers)
		for i, o := range out {
			if !errors.Is(o.Err, context.Canceled) {
				t.Fatalf("workers=%d out[%d].Err=%v want canceled", workers, i, o.Err)
			}
		}
	}
}

func TestDeterminism(t *testing.T) {
	c := NewChecker(Lenient)
	first, _ := c.Check("3714 496353 98431")
	for i := 0; i < 10; i++ {
		again, _ := c.Check("3714 496353 98431")
		if again != first {
			t.Fatalf("run %d got %+v want %+v", i, again, first)
		}
	}
}
