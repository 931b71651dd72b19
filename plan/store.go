package plan

import (
	"context"

	"github.com/xraph/paygate/id"
)

// Store is the subscription plan slice of the gateway store.
type Store interface {
	Create(ctx context.Context, p *Plan) error
	Get(ctx context.Context, planID id.PlanID) (*Plan, error)
	Update(ctx context.Context, p *Plan) error
}
