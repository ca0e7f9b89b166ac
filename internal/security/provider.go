package security

import (
	"fmt"

	"github.com/alovak/cardcheck/internal/cardgen"
)

// PANHasher derives the keyed digest stored instead of a card number.
// Implementations may be a software HMAC or an HSM (see package hsm).
type PANHasher interface {
	HashPAN(pan string) ([]byte, error)
}

// HMACHasher is the software PANHasher (HMAC-SHA256 with a pepper).
type HMACHasher struct {
	key []byte
}

func NewHMACHasher(key []byte) (*HMACHasher, error) {
	if len(key) == 0 {
		return nil, fmt.Errorf("pan hash key is required")
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &HMACHasher{key: k}, nil
}

func (h *HMACHasher) HashPAN(pan string) ([]byte, error) {
	return cardgen.HashPANHMAC(pan, h.key), nil
}

// Close wipes the key; the hasher must not be used afterwards.
func (h *HMACHasher) Close() {
	Wipe(h.key)
}

// Wipe zeroes b. Go gives no guarantee that no other copy exists.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

var _ PANHasher = (*HMACHasher)(nil)
