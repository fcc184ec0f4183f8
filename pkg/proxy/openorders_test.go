package proxy

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/permlabs/dexgate/pkg/dex"
	"github.com/permlabs/dexgate/pkg/solana"
)

func runThroughPda(t *testing.T, accounts []Account, data []byte) (*fakeForwarder, *fakeAllocator, error) {
	t.Helper()
	fwd := &fakeForwarder{}
	alloc := &fakeAllocator{}
	p := NewMarketProxy(testProgramID, testDexPID, fwd, nil).Use(NewOpenOrdersPda(alloc))
	err := p.Run(context.Background(), accounts, data)
	return fwd, alloc, err
}

func expectSeedSet(t *testing.T, got [][]byte, want [][]byte) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("seed set has %d components, want %d", len(got), len(want))
	}
	for i := range want {
		if !bytes.Equal(got[i], want[i]) {
			t.Errorf("seed component %d = %x, want %x", i, got[i], want[i])
		}
	}
}

func TestSubstitutionPerInstruction(t *testing.T) {
	custody := fillAddr(0x10)

	tests := []struct {
		name     string
		tag      dex.Tag
		body     []byte
		accounts func() []Account
		custody  int
		user     int
	}{
		{
			name: "new order v3",
			tag:  dex.TagNewOrderV3, body: make([]byte, 46),
			accounts: func() []Account {
				a := make([]Account, 8)
				a[0] = Account{Key: testMarket}
				a[1] = Account{Key: custody, IsWritable: true}
				a[7] = Account{Key: testUser, IsSigner: true}
				return a
			},
			custody: 1, user: 7,
		},
		{
			name: "cancel order v2",
			tag:  dex.TagCancelOrderV2, body: make([]byte, 20),
			accounts: func() []Account {
				a := make([]Account, 5)
				a[0] = Account{Key: testMarket}
				a[3] = Account{Key: custody, IsWritable: true}
				a[4] = Account{Key: testUser, IsSigner: true}
				return a
			},
			custody: 3, user: 4,
		},
		{
			name: "cancel order by client id",
			tag:  dex.TagCancelOrderByClientID, body: make([]byte, 8),
			accounts: func() []Account {
				a := make([]Account, 5)
				a[0] = Account{Key: testMarket}
				a[3] = Account{Key: custody, IsWritable: true}
				a[4] = Account{Key: testUser, IsSigner: true}
				return a
			},
			custody: 3, user: 4,
		},
		{
			name: "settle funds",
			tag:  dex.TagSettleFunds, body: nil,
			accounts: func() []Account {
				a := make([]Account, 3)
				a[0] = Account{Key: testMarket}
				a[1] = Account{Key: custody, IsWritable: true}
				a[2] = Account{Key: testUser, IsSigner: true}
				return a
			},
			custody: 1, user: 2,
		},
		{
			name: "close open orders",
			tag:  dex.TagCloseOpenOrders, body: nil,
			accounts: func() []Account {
				a := make([]Account, 4)
				a[0] = Account{Key: custody, IsWritable: true}
				a[1] = Account{Key: testUser, IsSigner: true}
				a[3] = Account{Key: testMarket}
				return a
			},
			custody: 0, user: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fwd, _, err := runThroughPda(t, tt.accounts(), payload(tt.tag, tt.body))
			if err != nil {
				t.Fatalf("run failed: %v", err)
			}

			slot := fwd.req.Accounts[tt.user]
			if slot.Key != custody {
				t.Errorf("user slot holds %s, want custody %s", slot.Key, custody)
			}
			if !slot.IsSigner {
				t.Error("substituted custody slot must be proxy-signed")
			}
			if !slot.IsWritable {
				t.Error("substituted slot must keep the custody slot's flags")
			}

			if len(fwd.req.Seeds) != 1 {
				t.Fatalf("seed sets = %d, want 1", len(fwd.req.Seeds))
			}
			_, bump := solana.FindProgramAddress(
				[][]byte{[]byte("open-orders"), testMarket.Bytes(), testUser.Bytes()}, testProgramID)
			expectSeedSet(t, fwd.req.Seeds[0], [][]byte{
				[]byte("open-orders"), testMarket.Bytes(), testUser.Bytes(), {bump},
			})
		})
	}
}

func TestUnauthorizedUserGate(t *testing.T) {
	accounts := newOrderAccounts()
	accounts[7].IsSigner = false

	fwd, _, err := runThroughPda(t, accounts, newOrderPayload())
	if !errors.Is(err, ErrUnauthorizedUser) {
		t.Fatalf("err = %v, want ErrUnauthorizedUser", err)
	}
	if fwd.forwarded {
		t.Error("unauthorized request must not be forwarded")
	}
	// The caller's slice is untouched; the chain mutates only its own copy.
	if accounts[7].Key != testUser || accounts[7].IsSigner {
		t.Error("caller-visible account list was modified")
	}
}

func initAccounts(custody, initAuthority solana.Address) []Account {
	return []Account{
		{Key: testDexPID},
		{Key: solana.SystemProgramID},
		{Key: custody, IsWritable: true},
		{Key: testUser, IsSigner: true, IsWritable: true},
		{Key: testMarket},
		{Key: fillAddr(0x20)}, // rent sysvar
		{Key: initAuthority},
	}
}

func TestInitOpenOrders(t *testing.T) {
	custody, bump := solana.FindProgramAddress(
		[][]byte{[]byte("open-orders"), testMarket.Bytes(), testUser.Bytes()}, testProgramID)
	initAuthority, bumpInit := solana.FindProgramAddress(
		[][]byte{[]byte("open-orders-init"), testMarket.Bytes()}, testProgramID)

	fwd, alloc, err := runThroughPda(t, initAccounts(custody, initAuthority), payload(dex.TagInitOpenOrders, nil))
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if !alloc.called {
		t.Fatal("allocation must be delegated")
	}
	if alloc.req.OpenOrders != custody {
		t.Errorf("allocated %s, want derived custody %s", alloc.req.OpenOrders, custody)
	}
	if alloc.req.InitAuthority != initAuthority {
		t.Errorf("init authority %s, want %s", alloc.req.InitAuthority, initAuthority)
	}
	if alloc.req.Bump != bump || alloc.req.BumpInit != bumpInit {
		t.Errorf("bumps = %d/%d, want %d/%d", alloc.req.Bump, alloc.req.BumpInit, bump, bumpInit)
	}
	if alloc.req.Payer.Key != testUser {
		t.Errorf("payer = %s, want caller", alloc.req.Payer.Key)
	}

	// Both derived seed sets must ride along as signer proofs.
	if len(fwd.req.Seeds) != 2 {
		t.Fatalf("seed sets = %d, want 2", len(fwd.req.Seeds))
	}
	expectSeedSet(t, fwd.req.Seeds[0], [][]byte{
		[]byte("open-orders"), testMarket.Bytes(), testUser.Bytes(), {bump},
	})
	expectSeedSet(t, fwd.req.Seeds[1], [][]byte{
		[]byte("open-orders-init"), testMarket.Bytes(), {bumpInit},
	})

	// The consumed dex-program and allocator slots are dropped; the
	// authority slot becomes a proxy-signed copy of the custody slot and
	// the init authority is marked signed.
	if len(fwd.req.Accounts) != 5 {
		t.Fatalf("forwarded %d accounts, want 5", len(fwd.req.Accounts))
	}
	if fwd.req.Accounts[0].Key != custody {
		t.Errorf("slot 0 = %s, want custody", fwd.req.Accounts[0].Key)
	}
	if fwd.req.Accounts[1].Key != custody || !fwd.req.Accounts[1].IsSigner {
		t.Error("slot 1 must be a proxy-signed copy of the custody slot")
	}
	if fwd.req.Accounts[2].Key != testMarket {
		t.Errorf("slot 2 = %s, want market", fwd.req.Accounts[2].Key)
	}
	if !fwd.req.Accounts[4].IsSigner {
		t.Error("init authority slot must be proxy-signed")
	}
}

func TestInitOpenOrdersChecks(t *testing.T) {
	custody, _ := solana.FindProgramAddress(
		[][]byte{[]byte("open-orders"), testMarket.Bytes(), testUser.Bytes()}, testProgramID)
	initAuthority, _ := solana.FindProgramAddress(
		[][]byte{[]byte("open-orders-init"), testMarket.Bytes()}, testProgramID)

	tests := []struct {
		name    string
		mutate  func([]Account)
		wantErr error
	}{
		{
			name:    "wrong dex program",
			mutate:  func(a []Account) { a[0].Key = fillAddr(0x99) },
			wantErr: ErrInvalidDexPid,
		},
		{
			name:    "wrong system program",
			mutate:  func(a []Account) { a[1].Key = fillAddr(0x99) },
			wantErr: ErrInvalidInstruction,
		},
		{
			name:    "unsigned authority",
			mutate:  func(a []Account) { a[3].IsSigner = false },
			wantErr: ErrUnauthorizedUser,
		},
		{
			name:    "custody slot not matching derivation",
			mutate:  func(a []Account) { a[2].Key = fillAddr(0x99) },
			wantErr: ErrInvalidInstruction,
		},
		{
			name:    "init authority not matching derivation",
			mutate:  func(a []Account) { a[6].Key = fillAddr(0x99) },
			wantErr: ErrInvalidInstruction,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accounts := initAccounts(custody, initAuthority)
			tt.mutate(accounts)

			fwd, alloc, err := runThroughPda(t, accounts, payload(dex.TagInitOpenOrders, nil))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if fwd.forwarded {
				t.Error("rejected init must not be forwarded")
			}
			if alloc.called {
				t.Error("rejected init must not allocate")
			}
		})
	}
}

func TestSeedHelpersAgree(t *testing.T) {
	withRecompute := OpenOrdersAuthoritySeeds(testProgramID, testMarket, testUser)
	_, bump := solana.FindProgramAddress(
		[][]byte{[]byte("open-orders"), testMarket.Bytes(), testUser.Bytes()}, testProgramID)
	withBump := OpenOrdersAuthoritySeedsWithBump(testMarket, testUser, bump)

	if len(withRecompute) != len(withBump) {
		t.Fatalf("seed set lengths differ: %d vs %d", len(withRecompute), len(withBump))
	}
	for i := range withBump {
		if !bytes.Equal(withRecompute[i], withBump[i]) {
			t.Errorf("component %d differs: %x vs %x", i, withRecompute[i], withBump[i])
		}
	}

	initRecompute := OpenOrdersInitAuthoritySeeds(testProgramID, testMarket)
	_, bumpInit := solana.FindProgramAddress(
		[][]byte{[]byte("open-orders-init"), testMarket.Bytes()}, testProgramID)
	initWithBump := OpenOrdersInitAuthoritySeedsWithBump(testMarket, bumpInit)
	for i := range initWithBump {
		if !bytes.Equal(initRecompute[i], initWithBump[i]) {
			t.Errorf("init component %d differs", i)
		}
	}
}
