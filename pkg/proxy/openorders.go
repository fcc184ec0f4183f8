package proxy

import (
	"fmt"

	"github.com/permlabs/dexgate/pkg/dex"
	"github.com/permlabs/dexgate/pkg/solana"
)

// Seed prefixes for the two derived-address families. Changing either
// orphans every custody account already created under it.
var (
	openOrdersSeed     = []byte("open-orders")
	openOrdersInitSeed = []byte("open-orders-init")
)

// OpenOrdersAuthoritySeedsWithBump returns the seed set for a user's custody
// (open-orders) account with a known canonical bump.
func OpenOrdersAuthoritySeedsWithBump(market, authority solana.Address, bump uint8) [][]byte {
	return [][]byte{openOrdersSeed, market.Bytes(), authority.Bytes(), {bump}}
}

// OpenOrdersAuthoritySeeds returns the seed set for a user's custody
// account, recomputing the canonical bump. Supplied bumps are never trusted;
// every non-init request re-derives.
func OpenOrdersAuthoritySeeds(program, market, authority solana.Address) [][]byte {
	_, bump := solana.FindProgramAddress(
		[][]byte{openOrdersSeed, market.Bytes(), authority.Bytes()}, program)
	return OpenOrdersAuthoritySeedsWithBump(market, authority, bump)
}

// OpenOrdersInitAuthoritySeedsWithBump returns the seed set for the per-market
// init authority, the account that must co-sign creation of new custody
// accounts, with a known canonical bump.
func OpenOrdersInitAuthoritySeedsWithBump(market solana.Address, bump uint8) [][]byte {
	return [][]byte{openOrdersInitSeed, market.Bytes(), {bump}}
}

// OpenOrdersInitAuthoritySeeds returns the init-authority seed set,
// recomputing the canonical bump.
func OpenOrdersInitAuthoritySeeds(program, market solana.Address) [][]byte {
	_, bump := solana.FindProgramAddress(
		[][]byte{openOrdersInitSeed, market.Bytes()}, program)
	return OpenOrdersInitAuthoritySeedsWithBump(market, bump)
}

// OpenOrdersPda substitutes the gateway-controlled derived custody account
// for the caller's personal account on every request kind, and records the
// seed sets the gateway asserts when signing the forwarded call.
type OpenOrdersPda struct {
	NopMiddleware
	alloc Allocator
}

// NewOpenOrdersPda creates the substitution middleware. alloc performs
// account creation for init-open-orders requests.
func NewOpenOrdersPda(alloc Allocator) *OpenOrdersPda {
	return &OpenOrdersPda{alloc: alloc}
}

// proxySigned returns a copy of the slot flagged as a signer: the gateway is
// vouching for that derived identity when forwarding, not minting a key.
func proxySigned(a Account) Account {
	a.IsSigner = true
	return a
}

// InitOpenOrders handles custody-account creation.
//
// Slots: [dex program, system program, open orders, authority, market,
// rent sysvar, init authority]. The two leading slots are consumed here and
// dropped from the forwarded list.
func (m *OpenOrdersPda) InitOpenOrders(c *Context) error {
	schema := schemas[dex.TagInitOpenOrders]
	market := c.Accounts[schema.market]
	user := c.Accounts[schema.user]

	if c.Accounts[0].Key != c.DexPID {
		return ErrInvalidDexPid
	}
	if !c.Accounts[1].Key.IsZero() {
		return fmt.Errorf("%w: slot 1 is not the system program", ErrInvalidInstruction)
	}
	if !user.IsSigner {
		return ErrUnauthorizedUser
	}

	// Canonical bumps for the custody account and the per-market init
	// authority. The caller-supplied slots are checked against
	// recomputation, never trusted.
	custody, bump := solana.FindProgramAddress(
		[][]byte{openOrdersSeed, market.Key.Bytes(), user.Key.Bytes()}, c.ProgramID)
	initAuthority, bumpInit := solana.FindProgramAddress(
		[][]byte{openOrdersInitSeed, market.Key.Bytes()}, c.ProgramID)

	if c.Accounts[schema.custody].Key != custody {
		return fmt.Errorf("%w: open orders slot does not match derivation", ErrInvalidInstruction)
	}
	if c.Accounts[6].Key != initAuthority {
		return fmt.Errorf("%w: init authority slot does not match derivation", ErrInvalidInstruction)
	}

	if err := m.alloc.CreateOpenOrders(c.Ctx, AllocationRequest{
		DexPID:        c.DexPID,
		OpenOrders:    custody,
		Payer:         user,
		Market:        market,
		Rent:          c.Accounts[5],
		InitAuthority: initAuthority,
		Bump:          bump,
		BumpInit:      bumpInit,
	}); err != nil {
		return fmt.Errorf("create open orders: %w", err)
	}

	c.PushSeeds(OpenOrdersAuthoritySeedsWithBump(market.Key, user.Key, bump))
	c.PushSeeds(OpenOrdersInitAuthoritySeedsWithBump(market.Key, bumpInit))

	// Drop the two slots consumed by allocation. Post-drop layout:
	// [open orders, authority, market, rent, init authority].
	c.Accounts = c.Accounts[2:]
	c.Accounts[1] = proxySigned(c.Accounts[0])
	c.Accounts[4].IsSigner = true

	return nil
}

func (m *OpenOrdersPda) NewOrderV3(c *Context, _ *dex.NewOrderV3) error {
	return m.substitute(c, schemas[dex.TagNewOrderV3])
}

func (m *OpenOrdersPda) CancelOrderV2(c *Context, _ *dex.CancelOrderV2) error {
	return m.substitute(c, schemas[dex.TagCancelOrderV2])
}

func (m *OpenOrdersPda) CancelOrderByClientID(c *Context, _ uint64) error {
	return m.substitute(c, schemas[dex.TagCancelOrderByClientID])
}

func (m *OpenOrdersPda) SettleFunds(c *Context) error {
	return m.substitute(c, schemas[dex.TagSettleFunds])
}

func (m *OpenOrdersPda) CloseOpenOrders(c *Context) error {
	return m.substitute(c, schemas[dex.TagCloseOpenOrders])
}

// substitute is the shared path for every post-init instruction: gate on the
// caller's signature, record the recomputed custody seed set, and overwrite
// the caller slot with a gateway-signed copy of the custody slot.
func (m *OpenOrdersPda) substitute(c *Context, schema slotSchema) error {
	market := c.Accounts[schema.market]
	user := c.Accounts[schema.user]
	if !user.IsSigner {
		return ErrUnauthorizedUser
	}

	c.PushSeeds(OpenOrdersAuthoritySeeds(c.ProgramID, market.Key, user.Key))
	c.Accounts[schema.user] = proxySigned(c.Accounts[schema.custody])

	return nil
}
