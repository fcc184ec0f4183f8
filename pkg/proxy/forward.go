package proxy

import (
	"context"

	"github.com/permlabs/dexgate/pkg/solana"
)

// ForwardRequest is everything the venue needs to execute a proxied
// instruction: the payload exactly as received, the rewritten slot list, and
// the seed sets proving the gateway's signing authority for derived slots.
type ForwardRequest struct {
	Payload  []byte
	Accounts []Account
	Seeds    [][][]byte
}

// Forwarder relays a fully processed request to the venue.
type Forwarder interface {
	Forward(ctx context.Context, req ForwardRequest) error
}

// AllocationRequest carries the parameters for creating one open-orders
// account on the venue. The gateway derives the addresses and bumps; the
// allocator performs the storage allocation and initialization.
type AllocationRequest struct {
	DexPID        solana.Address
	OpenOrders    solana.Address // derived custody account to create
	Payer         Account        // caller, funds the allocation
	Market        Account
	Rent          Account
	InitAuthority solana.Address // derived, must co-sign creation
	Bump          uint8          // canonical bump for the custody account
	BumpInit      uint8          // canonical bump for the init authority
}

// Allocator creates open-orders accounts. Consumed only by the
// init-open-orders path.
type Allocator interface {
	CreateOpenOrders(ctx context.Context, req AllocationRequest) error
}
