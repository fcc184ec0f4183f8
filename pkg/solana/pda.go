package solana

import (
	"crypto/sha256"
	"fmt"
)

// Program-derived address rules: the derived address is
// sha256(seed || ... || program || marker) and must NOT be a valid curve
// point. Callers search bump values 255..0 and take the first (largest) bump
// whose derived address lands off-curve; that bump is the canonical bump and
// is the single source of truth for the seed set.

const (
	// MaxSeedLen is the maximum length of a single seed component.
	MaxSeedLen = 32

	// MaxSeeds is the maximum number of seed components, including the bump.
	MaxSeeds = 16
)

var derivedAddressMarker = []byte("ProgramDerivedAddress")

// CreateProgramAddress derives the address for the exact seed components
// given (bump included by the caller). Returns an error if the result is a
// valid curve point; such a seed set has no derived address.
func CreateProgramAddress(seeds [][]byte, program Address) (Address, error) {
	if len(seeds) > MaxSeeds {
		return Address{}, fmt.Errorf("too many seeds: %d > %d", len(seeds), MaxSeeds)
	}
	h := sha256.New()
	for _, seed := range seeds {
		if len(seed) > MaxSeedLen {
			return Address{}, fmt.Errorf("seed too long: %d > %d", len(seed), MaxSeedLen)
		}
		h.Write(seed)
	}
	h.Write(program[:])
	h.Write(derivedAddressMarker)

	var a Address
	copy(a[:], h.Sum(nil))
	if a.OnCurve() {
		return Address{}, fmt.Errorf("derived address for seeds is on-curve")
	}
	return a, nil
}

// FindProgramAddress searches bump values from 255 downward and returns the
// first off-curve derived address along with the canonical bump.
//
// The search space is defined to be sufficient: every candidate lands
// off-curve with probability ~1/2, so exhausting all 256 bumps means the
// deployment's seed scheme is broken. That is a fatal configuration error
// and panics, matching the infallible contract callers rely on.
func FindProgramAddress(seeds [][]byte, program Address) (Address, uint8) {
	bumped := make([][]byte, len(seeds), len(seeds)+1)
	copy(bumped, seeds)
	for bump := 255; bump >= 0; bump-- {
		candidate := append(bumped, []byte{uint8(bump)})
		addr, err := CreateProgramAddress(candidate, program)
		if err == nil {
			return addr, uint8(bump)
		}
	}
	panic(fmt.Sprintf("no viable bump for program %s", program))
}
