package proxy

import (
	"context"

	"github.com/permlabs/dexgate/pkg/solana"
)

// Account is one positional account slot of a request. Slots are borrowed
// for the duration of a single request and never persisted by the gateway.
type Account struct {
	Key        solana.Address
	IsSigner   bool
	IsWritable bool
	Owner      solana.Address
}

// Context is the mutable per-request state shared by the middleware chain.
// It is exclusively owned by one request; there is no cross-request state.
type Context struct {
	// Ctx is the inbound request's context, for middlewares that call out
	// (the allocator). The chain itself never blocks.
	Ctx context.Context

	// ProgramID is the gateway's own program id, the namespace owner for
	// every derived address.
	ProgramID solana.Address

	// DexPID is the venue program id requests are forwarded to.
	DexPID solana.Address

	// Accounts is the ordered slot list. Each instruction kind has a fixed
	// positional contract (see schema.go); middlewares may replace slots or
	// drop consumed leading slots, but never reorder unrelated ones.
	Accounts []Account

	// Data is the instruction body remaining after the decoded head.
	Data []byte

	// Seeds is the append-only log of signer seed sets. Each set is the
	// ordered components (tag, keys, bump byte) sufficient to re-derive one
	// address and prove the gateway's right to sign for it when forwarding.
	Seeds [][][]byte
}

// NewContext copies the caller's slot list so a rejected request leaves the
// caller's view untouched.
func NewContext(ctx context.Context, programID, dexPID solana.Address, accounts []Account, data []byte) *Context {
	owned := make([]Account, len(accounts))
	copy(owned, accounts)
	return &Context{
		Ctx:       ctx,
		ProgramID: programID,
		DexPID:    dexPID,
		Accounts:  owned,
		Data:      data,
	}
}

// PushSeeds appends one signer seed set.
func (c *Context) PushSeeds(seeds [][]byte) {
	c.Seeds = append(c.Seeds, seeds)
}
