package subscription

import (
	"context"
	"time"

	"github.com/xraph/paygate/id"
)

// Store is the subscription slice of the gateway store.
type Store interface {
	Create(ctx context.Context, s *Subscription) error
	Get(ctx context.Context, subID id.SubscriptionID) (*Subscription, error)
	Update(ctx context.Context, s *Subscription) error

	// ListDue returns active subscriptions whose next billing time is at or
	// before now and whose plan is still active. It exists for the billing
	// worker; it is not part of the public gateway surface.
	ListDue(ctx context.Context, now time.Time) ([]*Subscription, error)
}
