package plan

import (
	"time"

	"github.com/xraph/paygate/id"
	"github.com/xraph/paygate/types"
)

// Status is the lifecycle state of a subscription plan. The only transition
// is Active -> Inactive; there is no reactivation.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Plan is a merchant-owned recurring-billing template: a fixed amount billed
// every Interval seconds. Deactivating a plan stops new subscriptions but
// does not cancel existing ones.
type Plan struct {
	types.Entity
	ID       id.PlanID     `json:"id"`
	Merchant types.Address `json:"merchant"`
	Amount   types.Amount  `json:"amount"`
	Interval uint32        `json:"interval"` // billing period in whole seconds, > 0
	Status   Status        `json:"status"`
	Name     string        `json:"name"`
}

// IsActive reports whether the plan accepts new subscriptions.
func (p *Plan) IsActive() bool { return p.Status == StatusActive }

// Deactivate transitions the plan to Inactive. It reports whether the
// transition happened; false means the plan was already inactive.
func (p *Plan) Deactivate() bool {
	if p.Status != StatusActive {
		return false
	}
	p.Status = StatusInactive
	return true
}

// IntervalDuration returns the billing period as a time.Duration.
func (p *Plan) IntervalDuration() time.Duration {
	return time.Duration(p.Interval) * time.Second
}
