// Package store defines the unified persistence interface for Paygate.
package store

import (
	"context"
	"time"

	"github.com/xraph/paygate/id"
	"github.com/xraph/paygate/link"
	"github.com/xraph/paygate/merchant"
	"github.com/xraph/paygate/plan"
	"github.com/xraph/paygate/subscription"
	"github.com/xraph/paygate/types"
)

// Config is the gateway configuration written once at initialization. There
// is no rotation operation: Owner and Token are immutable for the lifetime
// of the instance.
type Config struct {
	types.Entity
	Owner types.Address `json:"owner"`
	Token types.Address `json:"token"`
}

// Store is the unified storage interface for all Paygate entities.
// Instead of embedding the per-entity sub-interfaces, all methods are
// declared explicitly to avoid naming conflicts.
//
// Counter allocation methods increment before returning, so the first id in
// every namespace is 1. A returned id is burned permanently; the engine
// therefore only allocates after every step that can still fail (in
// particular the external token transfer) has succeeded.
type Store interface {
	// Config methods
	InitConfig(ctx context.Context, cfg *Config) error
	GetConfig(ctx context.Context) (*Config, error)

	// Merchant registry methods
	AddMerchant(ctx context.Context, m *merchant.Merchant) error
	RemoveMerchant(ctx context.Context, addr types.Address) error
	IsMerchant(ctx context.Context, addr types.Address) (bool, error)

	// Counter methods
	NextLinkID(ctx context.Context) (id.LinkID, error)
	NextPlanID(ctx context.Context) (id.PlanID, error)
	NextSubscriptionID(ctx context.Context) (id.SubscriptionID, error)

	// Payment link methods
	CreateLink(ctx context.Context, l *link.PaymentLink) error
	GetLink(ctx context.Context, linkID id.LinkID) (*link.PaymentLink, error)
	UpdateLink(ctx context.Context, l *link.PaymentLink) error

	// Subscription plan methods
	CreatePlan(ctx context.Context, p *plan.Plan) error
	GetPlan(ctx context.Context, planID id.PlanID) (*plan.Plan, error)
	UpdatePlan(ctx context.Context, p *plan.Plan) error

	// Subscription methods
	CreateSubscription(ctx context.Context, s *subscription.Subscription) error
	GetSubscription(ctx context.Context, subID id.SubscriptionID) (*subscription.Subscription, error)
	UpdateSubscription(ctx context.Context, s *subscription.Subscription) error
	ListDueSubscriptions(ctx context.Context, now time.Time) ([]*subscription.Subscription, error)

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
