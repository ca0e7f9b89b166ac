//go:build !softhsm

package validator

import "github.com/alovak/cardcheck/internal/security"

// newPANHasher returns the software hasher. Builds with the softhsm tag can
// use a PKCS#11 token instead.
func newPANHasher(cfg *Config) (security.PANHasher, func(), error) {
	h, err := security.NewHMACHasher([]byte(cfg.PANHashKey))
	if err != nil {
		return nil, nil, err
	}
	return h, h.Close, nil
}
