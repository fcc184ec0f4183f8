package proxy

import "github.com/permlabs/dexgate/pkg/solana"

// ReferralFees enforces that settle-funds proceeds flow to the configured
// beneficiary. Read-only on every request kind.
type ReferralFees struct {
	NopMiddleware
	referral solana.Address
	enforce  bool
}

// NewReferralFees creates the policy. When enforce is false the middleware
// observes settle-funds requests without rejecting anything.
func NewReferralFees(referral solana.Address, enforce bool) *ReferralFees {
	return &ReferralFees{referral: referral, enforce: enforce}
}

func (r *ReferralFees) SettleFunds(c *Context) error {
	if !r.enforce {
		return nil
	}
	if len(c.Accounts) <= settleFundsReferralSlot {
		return ErrNotEnoughAccounts
	}
	if c.Accounts[settleFundsReferralSlot].Key != r.referral {
		return ErrInvalidReferral
	}
	return nil
}
