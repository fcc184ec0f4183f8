// Package proxy implements the middleware dispatch and account-substitution
// pipeline that fronts the venue. Each request is processed synchronously by
// one goroutine over exclusively owned state; the dispatcher itself holds no
// mutable state, so one MarketProxy serves any number of concurrent requests.
package proxy

import (
	"context"

	"go.uber.org/zap"

	"github.com/permlabs/dexgate/pkg/dex"
	"github.com/permlabs/dexgate/pkg/solana"
)

// MarketProxy decodes each request's instruction tag, runs the registered
// middleware chain over a shared Context, and forwards the rewritten request
// to the venue.
type MarketProxy struct {
	programID   solana.Address
	dexPID      solana.Address
	forwarder   Forwarder
	middlewares []MarketMiddleware
	log         *zap.SugaredLogger
}

// NewMarketProxy creates a proxy with an empty chain. programID is the
// gateway's derivation namespace; dexPID is the venue program.
func NewMarketProxy(programID, dexPID solana.Address, fwd Forwarder, log *zap.SugaredLogger) *MarketProxy {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &MarketProxy{
		programID: programID,
		dexPID:    dexPID,
		forwarder: fwd,
		log:       log,
	}
}

// Use appends a middleware. Chain order is fixed at startup and is the
// invocation order for every request.
func (p *MarketProxy) Use(mw MarketMiddleware) *MarketProxy {
	p.middlewares = append(p.middlewares, mw)
	return p
}

// Run processes one request: decode the tag, check the slot schema, run the
// chain, forward. The first middleware error aborts the chain; nothing is
// forwarded and the caller's account slice is left untouched.
func (p *MarketProxy) Run(ctx context.Context, accounts []Account, payload []byte) error {
	ix, body, err := dex.Decode(payload)
	if err != nil {
		return err
	}

	if schema, ok := schemas[ix.Tag]; ok && len(accounts) < schema.min {
		return ErrNotEnoughAccounts
	}

	c := NewContext(ctx, p.programID, p.dexPID, accounts, body)

	for _, mw := range p.middlewares {
		if err := p.invoke(mw, c, ix); err != nil {
			p.log.Infow("request_rejected", "instruction", ix.Tag.String(), "err", err)
			return err
		}
	}

	return p.forwarder.Forward(ctx, ForwardRequest{
		Payload:  payload,
		Accounts: c.Accounts,
		Seeds:    c.Seeds,
	})
}

func (p *MarketProxy) invoke(mw MarketMiddleware, c *Context, ix *dex.Instruction) error {
	switch ix.Tag {
	case dex.TagInitOpenOrders:
		return mw.InitOpenOrders(c)
	case dex.TagNewOrderV3:
		return mw.NewOrderV3(c, ix.NewOrder)
	case dex.TagCancelOrderV2:
		return mw.CancelOrderV2(c, ix.Cancel)
	case dex.TagCancelOrderByClientID:
		return mw.CancelOrderByClientID(c, ix.CancelClientID)
	case dex.TagSettleFunds:
		return mw.SettleFunds(c)
	case dex.TagCloseOpenOrders:
		return mw.CloseOpenOrders(c)
	default:
		return mw.Fallback(c)
	}
}
