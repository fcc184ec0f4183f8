package proxy

import (
	"errors"

	"github.com/permlabs/dexgate/pkg/dex"
)

// Request errors are terminal: the first error raised aborts the middleware
// chain, nothing is forwarded, and the caller sees exactly that error.
var (
	// ErrInvalidDexPid means the supplied venue program account does not
	// match the configured venue program id.
	ErrInvalidDexPid = errors.New("program id does not match the dex")

	// ErrInvalidInstruction means the request's accounts contradict the
	// instruction's fixed schema (wrong system program, custody address
	// not matching recomputation).
	ErrInvalidInstruction = errors.New("invalid instruction given")

	// ErrCannotUnpack means a recognized instruction body failed to decode.
	// It is the codec's sentinel so callers can match either package's name.
	ErrCannotUnpack = dex.ErrCannotUnpack

	// ErrInvalidReferral means the settle-funds referral slot does not hold
	// the configured beneficiary.
	ErrInvalidReferral = errors.New("invalid referral address given")

	// ErrUnauthorizedUser means the schema-designated caller slot is not
	// marked as a transaction signer.
	ErrUnauthorizedUser = errors.New("the user didn't sign")

	// ErrNotEnoughAccounts means fewer account slots were supplied than the
	// instruction's schema requires.
	ErrNotEnoughAccounts = errors.New("not enough accounts were provided")
)
