package subscription

import (
	"time"

	"github.com/xraph/paygate/id"
	"github.com/xraph/paygate/types"
)

// Status is the lifecycle state of a subscription. The only transition is
// Active -> Inactive; there is no reactivation.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Subscription is a subscriber's binding to a plan. It is addressed by the
// composite (Subscriber, ID); ids are drawn from a single global counter, so
// ID alone is also unique.
type Subscription struct {
	types.Entity
	ID          id.SubscriptionID `json:"id"`
	Subscriber  types.Address     `json:"subscriber"`
	PlanID      id.PlanID         `json:"plan_id"`
	StartTime   time.Time         `json:"start_time"`
	LastPayment time.Time         `json:"last_payment"`
	Status      Status            `json:"status"`
}

// IsActive reports whether the subscription is billable.
func (s *Subscription) IsActive() bool { return s.Status == StatusActive }

// Cancel transitions the subscription to Inactive. It reports whether the
// transition happened; false means it was already inactive.
func (s *Subscription) Cancel() bool {
	if s.Status != StatusActive {
		return false
	}
	s.Status = StatusInactive
	return true
}

// NextDue returns the earliest time the next billing is allowed, given the
// plan's interval in seconds.
func (s *Subscription) NextDue(interval uint32) time.Time {
	return s.LastPayment.Add(time.Duration(interval) * time.Second)
}

// Due reports whether a billing is allowed at now for the given interval.
func (s *Subscription) Due(now time.Time, interval uint32) bool {
	return !now.Before(s.NextDue(interval))
}
