// Package token defines the fungible-token transfer collaborator.
//
// The gateway treats value movement as an opaque external call: TransferFrom
// either atomically moves the full amount from payer to payee or fails, in
// which case the calling gateway operation aborts with no state change.
// There is no partial transfer, no retry and no timeout at this layer.
package token

import (
	"context"
	"errors"

	"github.com/xraph/paygate/types"
)

// ErrInsufficientBalance is returned when the payer cannot cover the amount.
var ErrInsufficientBalance = errors.New("token: insufficient balance")

// Transferor moves token value between accounts.
type Transferor interface {
	// TransferFrom moves amount from payer to payee. It is all-or-nothing:
	// a non-nil error means no value moved.
	TransferFrom(ctx context.Context, payer, payee types.Address, amount types.Amount) error
}

// TransferorFunc is an adapter to use a plain function as a Transferor.
type TransferorFunc func(ctx context.Context, payer, payee types.Address, amount types.Amount) error

// TransferFrom implements Transferor.
func (f TransferorFunc) TransferFrom(ctx context.Context, payer, payee types.Address, amount types.Amount) error {
	return f(ctx, payer, payee, amount)
}
