// Package plugin provides an extensible plugin system for Paygate.
// Plugins hook into gateway lifecycle events; the hook dispatch is the
// engine's fire-and-forget event facility — hook results are logged, never
// read back by the engine.
package plugin

import (
	"context"

	"github.com/xraph/paygate/id"
	"github.com/xraph/paygate/types"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the gateway starts.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, gw interface{}) error
}

// OnShutdown is called when the gateway is shutting down.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Merchant registry hooks
// ──────────────────────────────────────────────────

// OnMerchantAdded is called when the owner authorizes a merchant.
type OnMerchantAdded interface {
	Plugin
	OnMerchantAdded(ctx context.Context, merchant types.Address) error
}

// OnMerchantRemoved is called when the owner removes a merchant.
type OnMerchantRemoved interface {
	Plugin
	OnMerchantRemoved(ctx context.Context, merchant types.Address) error
}

// ──────────────────────────────────────────────────
// Payment link hooks
// ──────────────────────────────────────────────────

// OnPaymentLinkCreated is called when a merchant publishes a payment link.
type OnPaymentLinkCreated interface {
	Plugin
	OnPaymentLinkCreated(ctx context.Context, link interface{}) error
}

// OnPaymentLinkDeactivated is called when a merchant deactivates a link.
type OnPaymentLinkDeactivated interface {
	Plugin
	OnPaymentLinkDeactivated(ctx context.Context, linkID id.LinkID) error
}

// OnPaymentProcessed is called after a successful link payment.
type OnPaymentProcessed interface {
	Plugin
	OnPaymentProcessed(ctx context.Context, linkID id.LinkID, payer types.Address) error
}

// ──────────────────────────────────────────────────
// Subscription plan hooks
// ──────────────────────────────────────────────────

// OnPlanCreated is called when a merchant publishes a subscription plan.
type OnPlanCreated interface {
	Plugin
	OnPlanCreated(ctx context.Context, plan interface{}) error
}

// OnPlanDeactivated is called when a merchant deactivates a plan.
type OnPlanDeactivated interface {
	Plugin
	OnPlanDeactivated(ctx context.Context, planID id.PlanID) error
}

// ──────────────────────────────────────────────────
// Subscription hooks
// ──────────────────────────────────────────────────

// OnSubscribed is called when a subscriber binds to a plan.
type OnSubscribed interface {
	Plugin
	OnSubscribed(ctx context.Context, sub interface{}) error
}

// OnSubscriptionPaid is called after each successful subscription billing,
// including the upfront charge at subscribe time.
type OnSubscriptionPaid interface {
	Plugin
	OnSubscriptionPaid(ctx context.Context, subID id.SubscriptionID) error
}

// OnSubscriptionCanceled is called when a subscription is cancelled.
type OnSubscriptionCanceled interface {
	Plugin
	OnSubscriptionCanceled(ctx context.Context, sub interface{}) error
}
