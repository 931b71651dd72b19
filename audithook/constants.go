package audithook

// Action constants for audit events.
const (
	// Merchant actions
	ActionMerchantAdded   = "merchant.added"
	ActionMerchantRemoved = "merchant.removed"

	// Payment link actions
	ActionLinkCreated     = "link.created"
	ActionLinkDeactivated = "link.deactivated"
	ActionPaymentReceived = "payment.received"

	// Plan actions
	ActionPlanCreated     = "plan.created"
	ActionPlanDeactivated = "plan.deactivated"

	// Subscription actions
	ActionSubscribed           = "subscription.created"
	ActionSubscriptionPaid     = "subscription.paid"
	ActionSubscriptionCanceled = "subscription.canceled"
)

// Resource constants for audit events.
const (
	ResourceMerchant     = "merchant"
	ResourceLink         = "payment_link"
	ResourcePlan         = "plan"
	ResourceSubscription = "subscription"
)

// Category constants for audit events.
const (
	CategoryRegistry     = "registry"
	CategoryPayment      = "payment"
	CategorySubscription = "subscription"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
