package solana

import (
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// Address is a 32-byte venue account address (an ed25519 public key, or a
// program-derived address that is deliberately not one).
type Address [32]byte

// SystemProgramID is the address of the system allocator program
// (base58 "11111111111111111111111111111111", i.e. all zero bytes).
var SystemProgramID = Address{}

// AddressFromBase58 parses a base58-encoded 32-byte address.
func AddressFromBase58(s string) (Address, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return Address{}, fmt.Errorf("invalid base58 address %q: %w", s, err)
	}
	return AddressFromBytes(b)
}

// AddressFromBytes copies a 32-byte slice into an Address.
func AddressFromBytes(b []byte) (Address, error) {
	if len(b) != 32 {
		return Address{}, fmt.Errorf("address must be 32 bytes, got %d", len(b))
	}
	var a Address
	copy(a[:], b)
	return a, nil
}

// MustAddress parses a base58 address and panics on failure.
// Intended for wiring code and tests, not request paths.
func MustAddress(s string) Address {
	a, err := AddressFromBase58(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Bytes returns the address as a fresh 32-byte slice.
func (a Address) Bytes() []byte {
	b := make([]byte, 32)
	copy(b, a[:])
	return b
}

// String returns the base58 form.
func (a Address) String() string {
	return base58.Encode(a[:])
}

// IsZero reports whether the address is all zero bytes (the system program).
func (a Address) IsZero() bool {
	return a == Address{}
}

// OnCurve reports whether the address is a valid ed25519 curve point, i.e.
// whether a private key could exist for it. Program-derived addresses are
// required to be off-curve so only the deriving program can sign for them.
func (a Address) OnCurve() bool {
	_, err := new(edwards25519.Point).SetBytes(a[:])
	return err == nil
}

// MarshalText implements encoding.TextMarshaler (base58, for JSON payloads).
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := AddressFromBase58(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
