package link

import (
	"context"

	"github.com/xraph/paygate/id"
)

// Store is the payment link slice of the gateway store.
type Store interface {
	Create(ctx context.Context, l *PaymentLink) error
	Get(ctx context.Context, linkID id.LinkID) (*PaymentLink, error)
	Update(ctx context.Context, l *PaymentLink) error
}
