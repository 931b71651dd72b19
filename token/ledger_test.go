package token

import (
	"context"
	"errors"
	"testing"

	"github.com/xraph/paygate/types"
)

var (
	alice = types.MustParseAddress("GALICE")
	bob   = types.MustParseAddress("GBOB")
)

func TestLedgerMintAndBalance(t *testing.T) {
	l := NewLedger()

	if !l.Balance(alice).IsZero() {
		t.Error("fresh account should have zero balance")
	}

	l.Mint(alice, types.NewAmount(100))
	l.Mint(alice, types.NewAmount(50))

	if got := l.Balance(alice); !got.Equal(types.NewAmount(150)) {
		t.Errorf("got %s, want 150", got)
	}
}

func TestLedgerTransferFrom(t *testing.T) {
	l := NewLedger()
	l.Mint(alice, types.NewAmount(100))

	if err := l.TransferFrom(context.Background(), alice, bob, types.NewAmount(60)); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}

	if got := l.Balance(alice); !got.Equal(types.NewAmount(40)) {
		t.Errorf("payer balance: got %s, want 40", got)
	}
	if got := l.Balance(bob); !got.Equal(types.NewAmount(60)) {
		t.Errorf("payee balance: got %s, want 60", got)
	}
}

func TestLedgerInsufficientBalance(t *testing.T) {
	l := NewLedger()
	l.Mint(alice, types.NewAmount(10))

	err := l.TransferFrom(context.Background(), alice, bob, types.NewAmount(11))
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	// A failed transfer must not move anything.
	if got := l.Balance(alice); !got.Equal(types.NewAmount(10)) {
		t.Errorf("payer balance changed: got %s, want 10", got)
	}
	if !l.Balance(bob).IsZero() {
		t.Error("payee balance changed on failed transfer")
	}
}

func TestLedgerNegativeTransfer(t *testing.T) {
	l := NewLedger()
	l.Mint(alice, types.NewAmount(100))

	if err := l.TransferFrom(context.Background(), alice, bob, types.NewAmount(-1)); err == nil {
		t.Fatal("expected error for negative transfer amount")
	}
}

func TestLedgerZeroTransfer(t *testing.T) {
	l := NewLedger()

	// Zero moves nothing and always succeeds, even from an empty account.
	if err := l.TransferFrom(context.Background(), alice, bob, types.ZeroAmount()); err != nil {
		t.Fatalf("zero transfer failed: %v", err)
	}
}
