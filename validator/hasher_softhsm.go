//go:build softhsm

package validator

import (
	"fmt"

	"github.com/alovak/cardcheck/internal/security"
	"github.com/alovak/cardcheck/internal/security/hsm"
)

// newPANHasher uses the PKCS#11 token from cfg.HSM when a library is set and
// falls back to the software hasher otherwise.
func newPANHasher(cfg *Config) (security.PANHasher, func(), error) {
	if cfg.HSM.Lib == "" {
		h, err := security.NewHMACHasher([]byte(cfg.PANHashKey))
		if err != nil {
			return nil, nil, err
		}
		return h, h.Close, nil
	}
	p := hsm.NewSoftHSMProvider(cfg.HSM.Lib, cfg.HSM.Slot, cfg.HSM.PIN, cfg.HSM.KeyLabel)
	if err := p.Open(); err != nil {
		return nil, nil, fmt.Errorf("opening hsm: %w", err)
	}
	return p, p.Close, nil
}
