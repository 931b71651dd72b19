package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/xraph/paygate/id"
	"github.com/xraph/paygate/types"
)

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery for O(1) dispatch performance.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger

	// Type-cached plugin lists for efficient dispatch
	onInit                   []OnInit
	onShutdown               []OnShutdown
	onMerchantAdded          []OnMerchantAdded
	onMerchantRemoved        []OnMerchantRemoved
	onPaymentLinkCreated     []OnPaymentLinkCreated
	onPaymentLinkDeactivated []OnPaymentLinkDeactivated
	onPaymentProcessed       []OnPaymentProcessed
	onPlanCreated            []OnPlanCreated
	onPlanDeactivated        []OnPlanDeactivated
	onSubscribed             []OnSubscribed
	onSubscriptionPaid       []OnSubscriptionPaid
	onSubscriptionCanceled   []OnSubscriptionCanceled
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{logger: slog.Default()}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check for duplicate
	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	// Type-switch to cache interfaces
	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnMerchantAdded); ok {
		r.onMerchantAdded = append(r.onMerchantAdded, v)
	}
	if v, ok := p.(OnMerchantRemoved); ok {
		r.onMerchantRemoved = append(r.onMerchantRemoved, v)
	}
	if v, ok := p.(OnPaymentLinkCreated); ok {
		r.onPaymentLinkCreated = append(r.onPaymentLinkCreated, v)
	}
	if v, ok := p.(OnPaymentLinkDeactivated); ok {
		r.onPaymentLinkDeactivated = append(r.onPaymentLinkDeactivated, v)
	}
	if v, ok := p.(OnPaymentProcessed); ok {
		r.onPaymentProcessed = append(r.onPaymentProcessed, v)
	}
	if v, ok := p.(OnPlanCreated); ok {
		r.onPlanCreated = append(r.onPlanCreated, v)
	}
	if v, ok := p.(OnPlanDeactivated); ok {
		r.onPlanDeactivated = append(r.onPlanDeactivated, v)
	}
	if v, ok := p.(OnSubscribed); ok {
		r.onSubscribed = append(r.onSubscribed, v)
	}
	if v, ok := p.(OnSubscriptionPaid); ok {
		r.onSubscriptionPaid = append(r.onSubscriptionPaid, v)
	}
	if v, ok := p.(OnSubscriptionCanceled); ok {
		r.onSubscriptionCanceled = append(r.onSubscriptionCanceled, v)
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", r.getImplementedInterfaces(p),
	)

	return nil
}

// getImplementedInterfaces returns a list of interfaces implemented by the plugin.
func (r *Registry) getImplementedInterfaces(p Plugin) []string {
	var interfaces []string
	v := reflect.TypeOf(p)

	checkInterface := func(iface reflect.Type, name string) {
		if v.Implements(iface) {
			interfaces = append(interfaces, name)
		}
	}

	checkInterface(reflect.TypeOf((*OnInit)(nil)).Elem(), "OnInit")
	checkInterface(reflect.TypeOf((*OnShutdown)(nil)).Elem(), "OnShutdown")
	checkInterface(reflect.TypeOf((*OnMerchantAdded)(nil)).Elem(), "OnMerchantAdded")
	checkInterface(reflect.TypeOf((*OnMerchantRemoved)(nil)).Elem(), "OnMerchantRemoved")
	checkInterface(reflect.TypeOf((*OnPaymentLinkCreated)(nil)).Elem(), "OnPaymentLinkCreated")
	checkInterface(reflect.TypeOf((*OnPaymentLinkDeactivated)(nil)).Elem(), "OnPaymentLinkDeactivated")
	checkInterface(reflect.TypeOf((*OnPaymentProcessed)(nil)).Elem(), "OnPaymentProcessed")
	checkInterface(reflect.TypeOf((*OnPlanCreated)(nil)).Elem(), "OnPlanCreated")
	checkInterface(reflect.TypeOf((*OnPlanDeactivated)(nil)).Elem(), "OnPlanDeactivated")
	checkInterface(reflect.TypeOf((*OnSubscribed)(nil)).Elem(), "OnSubscribed")
	checkInterface(reflect.TypeOf((*OnSubscriptionPaid)(nil)).Elem(), "OnSubscriptionPaid")
	checkInterface(reflect.TypeOf((*OnSubscriptionCanceled)(nil)).Elem(), "OnSubscriptionCanceled")

	return interfaces
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, gw interface{}) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInit(ctx, gw)
		}); err != nil {
			r.logger.Warn("plugin OnInit failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnShutdown(ctx)
		}); err != nil {
			r.logger.Warn("plugin OnShutdown failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitMerchantAdded emits a merchant added event.
func (r *Registry) EmitMerchantAdded(ctx context.Context, merchant types.Address) {
	r.mu.RLock()
	plugins := r.onMerchantAdded
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnMerchantAdded(ctx, merchant)
		}); err != nil {
			r.logger.Warn("plugin OnMerchantAdded failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitMerchantRemoved emits a merchant removed event.
func (r *Registry) EmitMerchantRemoved(ctx context.Context, merchant types.Address) {
	r.mu.RLock()
	plugins := r.onMerchantRemoved
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnMerchantRemoved(ctx, merchant)
		}); err != nil {
			r.logger.Warn("plugin OnMerchantRemoved failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitPaymentLinkCreated emits a payment link created event.
func (r *Registry) EmitPaymentLinkCreated(ctx context.Context, link interface{}) {
	r.mu.RLock()
	plugins := r.onPaymentLinkCreated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnPaymentLinkCreated(ctx, link)
		}); err != nil {
			r.logger.Warn("plugin OnPaymentLinkCreated failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitPaymentLinkDeactivated emits a payment link deactivated event.
func (r *Registry) EmitPaymentLinkDeactivated(ctx context.Context, linkID id.LinkID) {
	r.mu.RLock()
	plugins := r.onPaymentLinkDeactivated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnPaymentLinkDeactivated(ctx, linkID)
		}); err != nil {
			r.logger.Warn("plugin OnPaymentLinkDeactivated failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitPaymentProcessed emits a payment processed event.
func (r *Registry) EmitPaymentProcessed(ctx context.Context, linkID id.LinkID, payer types.Address) {
	r.mu.RLock()
	plugins := r.onPaymentProcessed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnPaymentProcessed(ctx, linkID, payer)
		}); err != nil {
			r.logger.Warn("plugin OnPaymentProcessed failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitPlanCreated emits a plan created event.
func (r *Registry) EmitPlanCreated(ctx context.Context, plan interface{}) {
	r.mu.RLock()
	plugins := r.onPlanCreated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnPlanCreated(ctx, plan)
		}); err != nil {
			r.logger.Warn("plugin OnPlanCreated failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitPlanDeactivated emits a plan deactivated event.
func (r *Registry) EmitPlanDeactivated(ctx context.Context, planID id.PlanID) {
	r.mu.RLock()
	plugins := r.onPlanDeactivated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnPlanDeactivated(ctx, planID)
		}); err != nil {
			r.logger.Warn("plugin OnPlanDeactivated failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitSubscribed emits a subscribed event.
func (r *Registry) EmitSubscribed(ctx context.Context, sub interface{}) {
	r.mu.RLock()
	plugins := r.onSubscribed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnSubscribed(ctx, sub)
		}); err != nil {
			r.logger.Warn("plugin OnSubscribed failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitSubscriptionPaid emits a subscription paid event.
func (r *Registry) EmitSubscriptionPaid(ctx context.Context, subID id.SubscriptionID) {
	r.mu.RLock()
	plugins := r.onSubscriptionPaid
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnSubscriptionPaid(ctx, subID)
		}); err != nil {
			r.logger.Warn("plugin OnSubscriptionPaid failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitSubscriptionCanceled emits a subscription cancelled event.
func (r *Registry) EmitSubscriptionCanceled(ctx context.Context, sub interface{}) {
	r.mu.RLock()
	plugins := r.onSubscriptionCanceled
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnSubscriptionCanceled(ctx, sub)
		}); err != nil {
			r.logger.Warn("plugin OnSubscriptionCanceled failed", "plugin", p.Name(), "error", err)
		}
	}
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block the payment pipeline.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
