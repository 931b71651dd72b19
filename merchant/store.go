package merchant

import (
	"context"

	"github.com/xraph/paygate/types"
)

// Store is the merchant registry slice of the gateway store. Addresses are
// unique; Add must fail on duplicates and Remove on absent entries so the
// engine can surface the registry error taxonomy without a read-check-write
// race.
type Store interface {
	Add(ctx context.Context, m *Merchant) error
	Remove(ctx context.Context, addr types.Address) error
	Exists(ctx context.Context, addr types.Address) (bool, error)
}
