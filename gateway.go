package paygate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/xraph/paygate/auth"
	"github.com/xraph/paygate/clock"
	"github.com/xraph/paygate/id"
	"github.com/xraph/paygate/link"
	"github.com/xraph/paygate/merchant"
	"github.com/xraph/paygate/plan"
	"github.com/xraph/paygate/plugin"
	"github.com/xraph/paygate/store"
	"github.com/xraph/paygate/subscription"
	"github.com/xraph/paygate/token"
	"github.com/xraph/paygate/types"
)

// Gateway is the main payment gateway engine.
type Gateway struct {
	store    store.Store
	plugins  *plugin.Registry
	verifier auth.Verifier
	token    token.Transferor
	clock    clock.Clock
	logger   *slog.Logger

	// Background billing worker
	stopChan chan struct{}
	wg       sync.WaitGroup

	// Configuration
	billingOperator types.Address
	billingInterval time.Duration
}

// New creates a new Gateway instance.
func New(s store.Store, opts ...Option) *Gateway {
	g := &Gateway{
		store:           s,
		plugins:         plugin.NewRegistry(),
		verifier:        auth.ContextVerifier{},
		clock:           clock.System(),
		logger:          slog.Default(),
		stopChan:        make(chan struct{}),
		billingInterval: time.Minute,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Option configures a Gateway instance.
type Option func(*Gateway)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
		g.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(g *Gateway) {
		_ = g.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithVerifier sets the identity verifier.
func WithVerifier(v auth.Verifier) Option {
	return func(g *Gateway) {
		g.verifier = v
	}
}

// WithTransferor sets the token transfer backend.
func WithTransferor(t token.Transferor) Option {
	return func(g *Gateway) {
		g.token = t
	}
}

// WithClock sets the time source.
func WithClock(c clock.Clock) Option {
	return func(g *Gateway) {
		g.clock = c
	}
}

// WithBillingOperator enables the auto-billing worker. The worker drives
// ProcessSubscriptionPayment on due subscriptions as the given operator
// address.
func WithBillingOperator(operator types.Address) Option {
	return func(g *Gateway) {
		g.billingOperator = operator
	}
}

// WithBillingInterval sets how often the billing worker scans for due
// subscriptions.
func WithBillingInterval(interval time.Duration) Option {
	return func(g *Gateway) {
		g.billingInterval = interval
	}
}

// Start validates the configuration, runs migrations, initializes plugins
// and begins background workers.
func (g *Gateway) Start(ctx context.Context) error {
	// Every other collaborator has a default; the token backend does not.
	if g.token == nil {
		return ErrNoTransferor
	}

	if err := g.store.Migrate(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrMigrationFailed, err)
	}

	g.plugins.EmitInit(ctx, g)

	if !g.billingOperator.IsZero() {
		g.wg.Add(1)
		go g.billingWorker(ctx)
	}

	g.logger.Info("paygate started",
		"billing_worker", !g.billingOperator.IsZero(),
		"billing_interval", g.billingInterval,
	)

	return nil
}

// Stop shuts down the Gateway.
func (g *Gateway) Stop() error {
	close(g.stopChan)
	g.wg.Wait()

	ctx := context.Background()
	g.plugins.EmitShutdown(ctx)

	return g.store.Close()
}

// ──────────────────────────────────────────────────
// Initialization
// ──────────────────────────────────────────────────

// Init initializes the gateway. The authenticated invoker becomes the owner;
// token is the asset every payment settles in. Both are immutable afterwards,
// and a second call fails with ErrAlreadyInitialized.
func (g *Gateway) Init(ctx context.Context, invoker, tokenAddr types.Address) error {
	if err := g.verifier.RequireAuth(ctx, invoker); err != nil {
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if tokenAddr.IsZero() {
		return ValidationError{Field: "token", Message: "address must not be empty"}
	}

	if _, err := g.store.GetConfig(ctx); err == nil {
		return ErrAlreadyInitialized
	}

	cfg := &store.Config{
		Entity: types.EntityAt(g.clock.Now()),
		Owner:  invoker,
		Token:  tokenAddr,
	}
	if err := g.store.InitConfig(ctx, cfg); err != nil {
		return ErrAlreadyInitialized
	}

	g.logger.Info("gateway initialized", "owner", invoker, "token", tokenAddr)
	return nil
}

// ──────────────────────────────────────────────────
// Merchant Registry
// ──────────────────────────────────────────────────

// AddMerchant authorizes an address to create payment links and plans.
// Owner only.
func (g *Gateway) AddMerchant(ctx context.Context, invoker, addr types.Address) error {
	if _, err := g.requireOwner(ctx, invoker); err != nil {
		return err
	}
	if addr.IsZero() {
		return ValidationError{Field: "merchant", Message: "address must not be empty"}
	}

	registered, err := g.store.IsMerchant(ctx, addr)
	if err != nil {
		return err
	}
	if registered {
		return ErrMerchantRegistered
	}

	m := &merchant.Merchant{
		Entity:  types.EntityAt(g.clock.Now()),
		Address: addr,
	}
	if err := g.store.AddMerchant(ctx, m); err != nil {
		return err
	}

	g.plugins.EmitMerchantAdded(ctx, addr)
	g.logger.Info("merchant added", "merchant", addr)
	return nil
}

// RemoveMerchant revokes an address's merchant authorization. Owner only.
// Existing links and plans of the removed merchant are left untouched.
func (g *Gateway) RemoveMerchant(ctx context.Context, invoker, addr types.Address) error {
	if _, err := g.requireOwner(ctx, invoker); err != nil {
		return err
	}

	registered, err := g.store.IsMerchant(ctx, addr)
	if err != nil {
		return err
	}
	if !registered {
		return ErrMerchantNotRegistered
	}

	if err := g.store.RemoveMerchant(ctx, addr); err != nil {
		return err
	}

	g.plugins.EmitMerchantRemoved(ctx, addr)
	g.logger.Info("merchant removed", "merchant", addr)
	return nil
}

// IsMerchant reports whether addr is currently an authorized merchant.
func (g *Gateway) IsMerchant(ctx context.Context, addr types.Address) (bool, error) {
	if _, err := g.config(ctx); err != nil {
		return false, err
	}
	return g.store.IsMerchant(ctx, addr)
}

// ──────────────────────────────────────────────────
// Payment Links
// ──────────────────────────────────────────────────

// CreatePaymentLink publishes a fixed-price payment link. Merchants only.
func (g *Gateway) CreatePaymentLink(ctx context.Context, invoker types.Address, amount types.Amount, description string) (id.LinkID, error) {
	if err := g.requireMerchant(ctx, invoker); err != nil {
		return 0, err
	}
	if !amount.IsPositive() {
		return 0, ErrInvalidAmount
	}

	linkID, err := g.store.NextLinkID(ctx)
	if err != nil {
		return 0, err
	}

	l := &link.PaymentLink{
		Entity:      types.EntityAt(g.clock.Now()),
		ID:          linkID,
		Merchant:    invoker,
		Amount:      amount,
		Status:      link.StatusActive,
		Description: description,
	}
	if err := g.store.CreateLink(ctx, l); err != nil {
		return 0, err
	}

	g.plugins.EmitPaymentLinkCreated(ctx, l)
	g.logger.Info("payment link created", "link_id", linkID, "merchant", invoker, "amount", amount)
	return linkID, nil
}

// ProcessPayment pays a link: the full link amount moves from the payer to
// the link's merchant. Links stay active and can be paid any number of times.
func (g *Gateway) ProcessPayment(ctx context.Context, payer types.Address, linkID id.LinkID) error {
	if _, err := g.config(ctx); err != nil {
		return err
	}
	if err := g.verifier.RequireAuth(ctx, payer); err != nil {
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	l, err := g.store.GetLink(ctx, linkID)
	if err != nil {
		return ErrLinkNotFound
	}
	if !l.IsActive() {
		return ErrLinkInactive
	}

	if err := g.token.TransferFrom(ctx, payer, l.Merchant, l.Amount); err != nil {
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}

	g.plugins.EmitPaymentProcessed(ctx, linkID, payer)
	g.logger.Info("payment processed", "link_id", linkID, "payer", payer, "amount", l.Amount)
	return nil
}

// DeactivatePaymentLink permanently disables a link. Only the link's merchant
// may deactivate it, and there is no reactivation.
func (g *Gateway) DeactivatePaymentLink(ctx context.Context, invoker types.Address, linkID id.LinkID) error {
	if _, err := g.config(ctx); err != nil {
		return err
	}
	if err := g.verifier.RequireAuth(ctx, invoker); err != nil {
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	l, err := g.store.GetLink(ctx, linkID)
	if err != nil {
		return ErrLinkNotFound
	}
	if !l.Merchant.Equal(invoker) {
		return ErrUnauthorized
	}
	if !l.Deactivate() {
		return ErrLinkInactive
	}
	l.TouchAt(g.clock.Now())

	if err := g.store.UpdateLink(ctx, l); err != nil {
		return err
	}

	g.plugins.EmitPaymentLinkDeactivated(ctx, linkID)
	g.logger.Info("payment link deactivated", "link_id", linkID, "merchant", invoker)
	return nil
}

// GetPaymentLink retrieves a payment link by id.
func (g *Gateway) GetPaymentLink(ctx context.Context, linkID id.LinkID) (*link.PaymentLink, error) {
	if _, err := g.config(ctx); err != nil {
		return nil, err
	}
	l, err := g.store.GetLink(ctx, linkID)
	if err != nil {
		return nil, ErrLinkNotFound
	}
	return l, nil
}

// ──────────────────────────────────────────────────
// Subscription Plans
// ──────────────────────────────────────────────────

// CreateSubscriptionPlan publishes a recurring billing plan. Merchants only.
// Interval is the billing period in seconds.
func (g *Gateway) CreateSubscriptionPlan(ctx context.Context, invoker types.Address, amount types.Amount, interval uint32, name string) (id.PlanID, error) {
	if err := g.requireMerchant(ctx, invoker); err != nil {
		return 0, err
	}
	if !amount.IsPositive() {
		return 0, ErrInvalidAmount
	}
	if interval == 0 {
		return 0, ErrInvalidInterval
	}

	planID, err := g.store.NextPlanID(ctx)
	if err != nil {
		return 0, err
	}

	p := &plan.Plan{
		Entity:   types.EntityAt(g.clock.Now()),
		ID:       planID,
		Merchant: invoker,
		Amount:   amount,
		Interval: interval,
		Status:   plan.StatusActive,
		Name:     name,
	}
	if err := g.store.CreatePlan(ctx, p); err != nil {
		return 0, err
	}

	g.plugins.EmitPlanCreated(ctx, p)
	g.logger.Info("plan created", "plan_id", planID, "merchant", invoker, "amount", amount, "interval_secs", interval)
	return planID, nil
}

// DeactivateSubscriptionPlan permanently disables a plan. Only the plan's
// merchant may deactivate it. Existing subscriptions are not cancelled, but
// further charges against the plan stop.
func (g *Gateway) DeactivateSubscriptionPlan(ctx context.Context, invoker types.Address, planID id.PlanID) error {
	if _, err := g.config(ctx); err != nil {
		return err
	}
	if err := g.verifier.RequireAuth(ctx, invoker); err != nil {
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	p, err := g.store.GetPlan(ctx, planID)
	if err != nil {
		return ErrPlanNotFound
	}
	if !p.Merchant.Equal(invoker) {
		return ErrUnauthorized
	}
	if !p.Deactivate() {
		return ErrPlanInactive
	}
	p.TouchAt(g.clock.Now())

	if err := g.store.UpdatePlan(ctx, p); err != nil {
		return err
	}

	g.plugins.EmitPlanDeactivated(ctx, planID)
	g.logger.Info("plan deactivated", "plan_id", planID, "merchant", invoker)
	return nil
}

// GetSubscriptionPlan retrieves a plan by id.
func (g *Gateway) GetSubscriptionPlan(ctx context.Context, planID id.PlanID) (*plan.Plan, error) {
	if _, err := g.config(ctx); err != nil {
		return nil, err
	}
	p, err := g.store.GetPlan(ctx, planID)
	if err != nil {
		return nil, ErrPlanNotFound
	}
	return p, nil
}

// ──────────────────────────────────────────────────
// Subscriptions
// ──────────────────────────────────────────────────

// Subscribe binds the invoker to a plan and charges the first period upfront.
// The transfer runs before the subscription id is allocated, so a failed
// charge leaves no record behind and burns no id.
func (g *Gateway) Subscribe(ctx context.Context, invoker types.Address, planID id.PlanID) (id.SubscriptionID, error) {
	if _, err := g.config(ctx); err != nil {
		return 0, err
	}
	if err := g.verifier.RequireAuth(ctx, invoker); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	p, err := g.store.GetPlan(ctx, planID)
	if err != nil {
		return 0, ErrPlanNotFound
	}
	if !p.IsActive() {
		return 0, ErrPlanInactive
	}

	now := g.clock.Now()

	if err := g.token.TransferFrom(ctx, invoker, p.Merchant, p.Amount); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}

	subID, err := g.store.NextSubscriptionID(ctx)
	if err != nil {
		return 0, err
	}

	sub := &subscription.Subscription{
		Entity:      types.EntityAt(now),
		ID:          subID,
		Subscriber:  invoker,
		PlanID:      planID,
		StartTime:   now,
		LastPayment: now,
		Status:      subscription.StatusActive,
	}
	if err := g.store.CreateSubscription(ctx, sub); err != nil {
		return 0, err
	}

	g.plugins.EmitSubscribed(ctx, sub)
	g.plugins.EmitSubscriptionPaid(ctx, subID)
	g.logger.Info("subscribed", "sub_id", subID, "subscriber", invoker, "plan_id", planID)
	return subID, nil
}

// ProcessSubscriptionPayment charges one billing period of a due
// subscription. Any authenticated invoker may trigger it; the charge is
// always subscriber -> plan merchant regardless of who invokes, so there is
// nothing to gain from calling it early (it fails with ErrNotDue) or late
// (exactly one period is charged).
func (g *Gateway) ProcessSubscriptionPayment(ctx context.Context, invoker, subscriber types.Address, subID id.SubscriptionID) error {
	if _, err := g.config(ctx); err != nil {
		return err
	}
	if err := g.verifier.RequireAuth(ctx, invoker); err != nil {
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	sub, err := g.store.GetSubscription(ctx, subID)
	if err != nil {
		return ErrSubscriptionNotFound
	}
	// Subscriptions are addressed by (subscriber, id); a mismatch is
	// indistinguishable from absence.
	if !sub.Subscriber.Equal(subscriber) {
		return ErrSubscriptionNotFound
	}
	if !sub.IsActive() {
		return ErrSubscriptionInactive
	}

	p, err := g.store.GetPlan(ctx, sub.PlanID)
	if err != nil {
		return ErrPlanNotFound
	}
	if !p.IsActive() {
		return ErrPlanInactive
	}

	now := g.clock.Now()
	if !sub.Due(now, p.Interval) {
		return ErrNotDue
	}

	if err := g.token.TransferFrom(ctx, sub.Subscriber, p.Merchant, p.Amount); err != nil {
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}

	sub.LastPayment = now
	sub.TouchAt(now)
	if err := g.store.UpdateSubscription(ctx, sub); err != nil {
		return err
	}

	g.plugins.EmitSubscriptionPaid(ctx, subID)
	g.logger.Info("subscription payment processed", "sub_id", subID, "subscriber", sub.Subscriber, "amount", p.Amount)
	return nil
}

// CancelSubscription permanently cancels a subscription. The subscriber may
// cancel their own subscription; any registered merchant may also cancel.
// Periods already paid are not refunded.
func (g *Gateway) CancelSubscription(ctx context.Context, invoker types.Address, subID id.SubscriptionID) error {
	if _, err := g.config(ctx); err != nil {
		return err
	}
	if err := g.verifier.RequireAuth(ctx, invoker); err != nil {
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	sub, err := g.store.GetSubscription(ctx, subID)
	if err != nil {
		return ErrSubscriptionNotFound
	}

	if !sub.Subscriber.Equal(invoker) {
		isMerchant, err := g.store.IsMerchant(ctx, invoker)
		if err != nil {
			return err
		}
		if !isMerchant {
			return ErrUnauthorized
		}
	}

	if !sub.Cancel() {
		return ErrSubscriptionInactive
	}
	sub.TouchAt(g.clock.Now())

	if err := g.store.UpdateSubscription(ctx, sub); err != nil {
		return err
	}

	g.plugins.EmitSubscriptionCanceled(ctx, sub)
	g.logger.Info("subscription canceled", "sub_id", subID, "by", invoker)
	return nil
}

// GetSubscription retrieves a subscription by id.
func (g *Gateway) GetSubscription(ctx context.Context, subID id.SubscriptionID) (*subscription.Subscription, error) {
	if _, err := g.config(ctx); err != nil {
		return nil, err
	}
	sub, err := g.store.GetSubscription(ctx, subID)
	if err != nil {
		return nil, ErrSubscriptionNotFound
	}
	return sub, nil
}

// ──────────────────────────────────────────────────
// Billing worker
// ──────────────────────────────────────────────────

// billingWorker periodically charges due subscriptions as the configured
// billing operator.
func (g *Gateway) billingWorker(ctx context.Context) {
	defer g.wg.Done()

	ticker := time.NewTicker(g.billingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-g.stopChan:
			return
		case <-ticker.C:
			g.runBillingCycle(ctx)
		}
	}
}

func (g *Gateway) runBillingCycle(ctx context.Context) {
	now := g.clock.Now()
	due, err := g.store.ListDueSubscriptions(ctx, now)
	if err != nil {
		g.logger.Error("billing cycle: list due subscriptions failed", "error", err)
		return
	}

	opCtx := auth.WithCaller(ctx, g.billingOperator)
	for _, sub := range due {
		err := g.ProcessSubscriptionPayment(opCtx, g.billingOperator, sub.Subscriber, sub.ID)
		switch {
		case err == nil:
			// charged
		case IsNotFound(err), IsInactive(err):
			// cancelled or deactivated since the scan
		case errors.Is(err, ErrNotDue):
			// another trigger raced us
		default:
			g.logger.Warn("billing cycle: charge failed",
				"sub_id", sub.ID,
				"subscriber", sub.Subscriber,
				"error", err,
			)
		}
	}

	if len(due) > 0 {
		g.logger.Debug("billing cycle complete", "due", len(due))
	}
}
