package cardgen

import (
	"bytes"
	"testing"

	"github.com/alovak/cardcheck/internal/cardcheck"
)

func TestGenerateNumber(t *testing.T) {
	cases := []struct {
		typ    cardcheck.Type
		length int
		want   int
	}{
		{cardcheck.AmericanExpress, 0, 15},
		{cardcheck.MasterCard, 0, 16},
		{cardcheck.Visa, 0, 16},
		{cardcheck.Visa, 13, 13},
		{cardcheck.Discover, 0, 16},
		{cardcheck.Discover, 19, 19},
	}
	for _, c := range cases {
		for i := 0; i < 20; i++ {
			pan, err := GenerateNumber(c.typ, c.length)
			if err != nil {
				t.Fatalf("GenerateNumber(%s, %d) err: %v", c.typ, c.length, err)
			}
			if len(pan) != c.want {
				t.Fatalf("GenerateNumber(%s, %d) len=%d want %d", c.typ, c.length, len(pan), c.want)
			}
			if !cardcheck.IsValid(pan) {
				t.Fatalf("GenerateNumber(%s) = %s fails luhn", c.typ, pan)
			}
			if got := cardcheck.Classify(pan); got != c.typ {
				t.Fatalf("GenerateNumber(%s) = %s classifies as %s", c.typ, pan, got)
			}
		}
	}
}

func TestDefaultLength(t *testing.T) {
	cases := map[cardcheck.Type]int{
		cardcheck.AmericanExpress: 15,
		cardcheck.MasterCard:      16,
		cardcheck.Visa:            16,
		cardcheck.Discover:        16,
		cardcheck.Unknown:         0,
	}
	for typ, want := range cases {
		if got := DefaultLength(typ); got != want {
			t.Fatalf("DefaultLength(%s) = %d want %d", typ, got, want)
		}
	}
}

func TestGenerateNumber_Errors(t *testing.T) {
	if _, err := GenerateNumber(cardcheck.Unknown, 0); err == nil {
		t.Fatalf("expected error for Unknown")
	}
	if _, err := GenerateNumber(cardcheck.AmericanExpress, 16); err == nil {
		t.Fatalf("expected error for 16-digit amex")
	}
	if _, err := GenerateNumber(cardcheck.Visa, 14); err == nil {
		t.Fatalf("expected error for 14-digit visa")
	}
}

func TestGeneratePAN_Sequence(t *testing.T) {
	pan, err := GeneratePAN("421234", 16, "4242")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if pan[:6] != "421234" || pan[11:15] != "4242" {
		t.Fatalf("unexpected layout %s", pan)
	}
	if !cardcheck.IsValid(pan) {
		t.Fatalf("%s fails luhn", pan)
	}

	bad := []struct {
		prefix string
		length int
		seq    string
	}{
		{"", 16, ""},
		{"42a", 16, ""},
		{"4", 12, ""},
		{"4", 20, ""},
		{"1234567890", 16, ""},
		{"421234", 16, "12x"},
		{"421234", 16, "1234567890"},
	}
	for _, b := range bad {
		if _, err := GeneratePAN(b.prefix, b.length, b.seq); err == nil {
			t.Fatalf("GeneratePAN(%q, %d, %q) expected error", b.prefix, b.length, b.seq)
		}
	}
}

func TestGenerateUnique(t *testing.T) {
	seq := []string{"a", "a", "b"}
	i := 0
	gen := func() (string, error) { s := seq[i]; i++; return s, nil }
	seen := map[string]bool{"a": true}
	got, err := GenerateUnique(gen, 5, func(s string) (bool, error) { return seen[s], nil })
	if err != nil || got != "b" {
		t.Fatalf("GenerateUnique got %q err=%v", got, err)
	}

	always := func(string) (bool, error) { return true, nil }
	if _, err := GenerateUnique(func() (string, error) { return "x", nil }, 2, always); err == nil {
		t.Fatalf("expected error when every number exists")
	}
}

func TestMaskPAN(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{"", ""},
		{"123", "***"},
		{"123456", "******"},
		{"4111-1111-11", "******1111"},
		{"41111111112", "*******1112"},
		{"411111111111", "********1111"},
		{"4222222222222", "422222***2222"},
		{"4111 1111 1111 1111", "411111******1111"},
		{"371449635398431", "371449*****8431"},
	}
	for _, c := range cases {
		if got := MaskPAN(c.in); got != c.out {
			t.Fatalf("MaskPAN(%q) = %q want %q", c.in, got, c.out)
		}
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in    string
		bin   string
		last4 string
	}{
		{"", "", ""},
		{"4111111111", "", ""},
		{"41111111112", "", ""},
		{"411111111111", "", ""},
		{"4222222222222", "422222", "2222"},
		{"4111111111111111", "411111", "1111"},
	}
	for _, c := range cases {
		bin, last4 := Truncate(c.in)
		if bin != c.bin || last4 != c.last4 {
			t.Fatalf("Truncate(%q) = %q, %q want %q, %q", c.in, bin, last4, c.bin, c.last4)
		}
	}
}

func TestHashPANHMAC(t *testing.T) {
	a := HashPANHMAC("4111111111111111", []byte("k1"))
	b := HashPANHMAC("4111111111111111", []byte("k1"))
	c := HashPANHMAC("4111111111111111", []byte("k2"))
	if !bytes.Equal(a, b) {
		t.Fatalf("hash not deterministic")
	}
	if bytes.Equal(a, c) {
		t.Fatalf("hash ignores key")
	}
	if len(a) != 32 {
		t.Fatalf("hash len=%d want 32", len(a))
	}
}
