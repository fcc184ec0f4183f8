package proxy

import "github.com/permlabs/dexgate/pkg/dex"

// slotSchema is the fixed positional account contract for one instruction
// kind. Indices are the venue's wire ordering; keeping them in one table
// instead of inline keeps a reordering bug from silently moving funds.
type slotSchema struct {
	// min is the slot count required before any middleware runs.
	min int

	// market, custody and user are the slots holding the market account,
	// the open-orders (custody) account, and the human caller. -1 where the
	// instruction has no such slot contract.
	market  int
	custody int
	user    int
}

// Schemas for the five substitution instructions. InitOpenOrders has its own
// layout handled explicitly in OpenOrdersPda (it consumes two leading slots).
//
//	init_open_orders: [dex program, system program, open orders, authority,
//	                   market, rent sysvar, init authority]
var schemas = map[dex.Tag]slotSchema{
	dex.TagInitOpenOrders:        {min: 7, market: 4, custody: 2, user: 3},
	dex.TagNewOrderV3:            {min: 8, market: 0, custody: 1, user: 7},
	dex.TagCancelOrderV2:         {min: 5, market: 0, custody: 3, user: 4},
	dex.TagCancelOrderByClientID: {min: 5, market: 0, custody: 3, user: 4},
	dex.TagSettleFunds:           {min: 3, market: 0, custody: 1, user: 2},
	dex.TagCloseOpenOrders:       {min: 4, market: 3, custody: 0, user: 1},
}

// settleFundsReferralSlot is the beneficiary-of-proceeds slot checked by the
// referral policy. Present only when the caller supplies the optional
// referral account.
const settleFundsReferralSlot = 9
