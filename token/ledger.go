package token

import (
	"context"
	"fmt"
	"sync"

	"github.com/xraph/paygate/types"
)

// Ledger is an in-memory token backend for tests and demos. Balances start
// at zero; Mint credits an account out of thin air.
type Ledger struct {
	mu       sync.Mutex
	balances map[types.Address]types.Amount
}

// NewLedger creates an empty in-memory token ledger.
func NewLedger() *Ledger {
	return &Ledger{balances: make(map[types.Address]types.Amount)}
}

// Mint credits amount to addr.
func (l *Ledger) Mint(addr types.Address, amount types.Amount) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[addr] = l.balances[addr].Add(amount)
}

// Balance returns the current balance of addr.
func (l *Ledger) Balance(addr types.Address) types.Amount {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[addr]
}

// TransferFrom implements Transferor.
func (l *Ledger) TransferFrom(_ context.Context, payer, payee types.Address, amount types.Amount) error {
	if amount.Sign() < 0 {
		return fmt.Errorf("token: negative transfer amount %s", amount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	from := l.balances[payer]
	if from.LessThan(amount) {
		return fmt.Errorf("%w: %s has %s, needs %s", ErrInsufficientBalance, payer, from, amount)
	}
	l.balances[payer] = from.Sub(amount)
	l.balances[payee] = l.balances[payee].Add(amount)
	return nil
}
