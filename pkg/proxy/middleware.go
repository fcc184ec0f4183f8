package proxy

import "github.com/permlabs/dexgate/pkg/dex"

// MarketMiddleware observes or rewrites one request on its way to the venue.
// Implementations share the request Context in registration order; the first
// error aborts the chain and fails the request.
//
// Embed NopMiddleware to implement only the hooks a middleware cares about.
type MarketMiddleware interface {
	InitOpenOrders(c *Context) error
	NewOrderV3(c *Context, ix *dex.NewOrderV3) error
	CancelOrderV2(c *Context, ix *dex.CancelOrderV2) error
	CancelOrderByClientID(c *Context, clientID uint64) error
	SettleFunds(c *Context) error
	CloseOpenOrders(c *Context) error

	// Fallback runs instead of the typed hooks when the payload is not a
	// recognized venue instruction.
	Fallback(c *Context) error
}

// NopMiddleware accepts every request without touching it.
type NopMiddleware struct{}

func (NopMiddleware) InitOpenOrders(*Context) error                { return nil }
func (NopMiddleware) NewOrderV3(*Context, *dex.NewOrderV3) error   { return nil }
func (NopMiddleware) CancelOrderV2(*Context, *dex.CancelOrderV2) error {
	return nil
}
func (NopMiddleware) CancelOrderByClientID(*Context, uint64) error { return nil }
func (NopMiddleware) SettleFunds(*Context) error                   { return nil }
func (NopMiddleware) CloseOpenOrders(*Context) error               { return nil }
func (NopMiddleware) Fallback(*Context) error                      { return nil }

// RejectUnknown fails any payload that is not a recognized venue
// instruction. Install it last to tighten the default accept-on-fallback
// behavior.
type RejectUnknown struct {
	NopMiddleware
}

func (RejectUnknown) Fallback(*Context) error {
	return ErrInvalidInstruction
}
