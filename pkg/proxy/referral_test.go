package proxy

import (
	"context"
	"errors"
	"testing"

	"github.com/permlabs/dexgate/pkg/dex"
)

var testReferral = fillAddr(0x77)

// settleAccounts builds the ten-slot settle-funds layout with the referral
// beneficiary in the last slot.
func settleAccounts(referral Account) []Account {
	accounts := make([]Account, 10)
	accounts[0] = Account{Key: testMarket}
	accounts[1] = Account{Key: fillAddr(0x10), IsWritable: true} // open orders
	accounts[2] = Account{Key: testUser, IsSigner: true}
	accounts[9] = referral
	return accounts
}

func runReferral(t *testing.T, enforce bool, accounts []Account) (*fakeForwarder, error) {
	t.Helper()
	fwd := &fakeForwarder{}
	p := NewMarketProxy(testProgramID, testDexPID, fwd, nil).
		Use(NewReferralFees(testReferral, enforce)).
		Use(NewOpenOrdersPda(&fakeAllocator{}))
	err := p.Run(context.Background(), accounts, payload(dex.TagSettleFunds, nil))
	return fwd, err
}

func TestReferralEnforced(t *testing.T) {
	fwd, err := runReferral(t, true, settleAccounts(Account{Key: fillAddr(0x99)}))
	if !errors.Is(err, ErrInvalidReferral) {
		t.Fatalf("err = %v, want ErrInvalidReferral", err)
	}
	if fwd.forwarded {
		t.Error("rejected settle must not be forwarded")
	}
}

func TestReferralEnforcedMatch(t *testing.T) {
	fwd, err := runReferral(t, true, settleAccounts(Account{Key: testReferral}))
	if err != nil {
		t.Fatalf("matching referral rejected: %v", err)
	}
	if !fwd.forwarded {
		t.Error("matching settle must be forwarded")
	}
}

func TestReferralInactiveIgnoresSlot(t *testing.T) {
	fwd, err := runReferral(t, false, settleAccounts(Account{Key: fillAddr(0x99)}))
	if err != nil {
		t.Fatalf("inactive policy rejected: %v", err)
	}
	if !fwd.forwarded {
		t.Error("inactive policy must forward")
	}
}

func TestReferralEnforcedMissingSlot(t *testing.T) {
	// Schema minimum for settle funds is three slots; the referral slot is
	// optional unless the policy enforces it.
	accounts := settleAccounts(Account{Key: testReferral})[:3]
	_, err := runReferral(t, true, accounts)
	if !errors.Is(err, ErrNotEnoughAccounts) {
		t.Fatalf("err = %v, want ErrNotEnoughAccounts", err)
	}
}

func TestReferralReadOnlyOnOtherKinds(t *testing.T) {
	fwd := &fakeForwarder{}
	p := NewMarketProxy(testProgramID, testDexPID, fwd, nil).
		Use(NewReferralFees(testReferral, true)).
		Use(NewOpenOrdersPda(&fakeAllocator{}))

	if err := p.Run(context.Background(), newOrderAccounts(), newOrderPayload()); err != nil {
		t.Fatalf("referral policy must not touch new orders: %v", err)
	}
	if !fwd.forwarded {
		t.Error("new order must be forwarded")
	}
}
