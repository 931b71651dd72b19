package link

import (
	"github.com/xraph/paygate/id"
	"github.com/xraph/paygate/types"
)

// Status is the lifecycle state of a payment link. The only transition is
// Active -> Inactive; there is no reactivation.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// PaymentLink is a reusable, merchant-owned request for a fixed amount. Any
// number of payers may pay it any number of times until the owning merchant
// deactivates it.
type PaymentLink struct {
	types.Entity
	ID          id.LinkID     `json:"id"`
	Merchant    types.Address `json:"merchant"`
	Amount      types.Amount  `json:"amount"`
	Status      Status        `json:"status"`
	Description string        `json:"description"`
}

// IsActive reports whether the link is payable.
func (l *PaymentLink) IsActive() bool { return l.Status == StatusActive }

// Deactivate transitions the link to Inactive. It reports whether the
// transition happened; false means the link was already inactive.
func (l *PaymentLink) Deactivate() bool {
	if l.Status != StatusActive {
		return false
	}
	l.Status = StatusInactive
	return true
}
