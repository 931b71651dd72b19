package merchant

import "github.com/xraph/paygate/types"

// Merchant is an address the gateway owner has authorized to create payment
// links and subscription plans. Membership is checked at creation time only:
// removing a merchant never deactivates the links or plans it already
// created.
type Merchant struct {
	types.Entity
	Address types.Address `json:"address"`
}
