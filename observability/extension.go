// Package observability provides a metrics extension for Paygate that
// records lifecycle event counts via a pluggable MetricFactory.
package observability

import (
	"context"

	"github.com/xraph/paygate/id"
	"github.com/xraph/paygate/plugin"
	"github.com/xraph/paygate/types"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin                   = (*MetricsExtension)(nil)
	_ plugin.OnInit                   = (*MetricsExtension)(nil)
	_ plugin.OnMerchantAdded          = (*MetricsExtension)(nil)
	_ plugin.OnMerchantRemoved        = (*MetricsExtension)(nil)
	_ plugin.OnPaymentLinkCreated     = (*MetricsExtension)(nil)
	_ plugin.OnPaymentLinkDeactivated = (*MetricsExtension)(nil)
	_ plugin.OnPaymentProcessed       = (*MetricsExtension)(nil)
	_ plugin.OnPlanCreated            = (*MetricsExtension)(nil)
	_ plugin.OnPlanDeactivated        = (*MetricsExtension)(nil)
	_ plugin.OnSubscribed             = (*MetricsExtension)(nil)
	_ plugin.OnSubscriptionPaid       = (*MetricsExtension)(nil)
	_ plugin.OnSubscriptionCanceled   = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records system-wide lifecycle metrics.
// Register it as a Paygate plugin to automatically track gateway metrics.
type MetricsExtension struct {
	factory MetricFactory

	// Merchant metrics
	MerchantAdded   Counter
	MerchantRemoved Counter

	// Payment link metrics
	LinkCreated     Counter
	LinkDeactivated Counter
	PaymentsTotal   Counter

	// Plan metrics
	PlanCreated     Counter
	PlanDeactivated Counter

	// Subscription metrics
	Subscribed           Counter
	SubscriptionPaid     Counter
	SubscriptionCanceled Counter

	// Error metrics
	StoreErrors  Counter
	PluginErrors Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use app.Metrics() in forge extensions.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Merchant metrics
		MerchantAdded:   factory.Counter("paygate.merchant.added"),
		MerchantRemoved: factory.Counter("paygate.merchant.removed"),

		// Payment link metrics
		LinkCreated:     factory.Counter("paygate.link.created"),
		LinkDeactivated: factory.Counter("paygate.link.deactivated"),
		PaymentsTotal:   factory.Counter("paygate.payments.total"),

		// Plan metrics
		PlanCreated:     factory.Counter("paygate.plan.created"),
		PlanDeactivated: factory.Counter("paygate.plan.deactivated"),

		// Subscription metrics
		Subscribed:           factory.Counter("paygate.subscription.created"),
		SubscriptionPaid:     factory.Counter("paygate.subscription.paid"),
		SubscriptionCanceled: factory.Counter("paygate.subscription.canceled"),

		// Error metrics
		StoreErrors:  factory.Counter("paygate.store.errors"),
		PluginErrors: factory.Counter("paygate.plugin.errors"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	// No initialization needed
	return nil
}

// ──────────────────────────────────────────────────
// Merchant registry hooks
// ──────────────────────────────────────────────────

// OnMerchantAdded implements plugin.OnMerchantAdded.
func (m *MetricsExtension) OnMerchantAdded(_ context.Context, _ types.Address) error {
	m.MerchantAdded.Inc()
	return nil
}

// OnMerchantRemoved implements plugin.OnMerchantRemoved.
func (m *MetricsExtension) OnMerchantRemoved(_ context.Context, _ types.Address) error {
	m.MerchantRemoved.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Payment link hooks
// ──────────────────────────────────────────────────

// OnPaymentLinkCreated implements plugin.OnPaymentLinkCreated.
func (m *MetricsExtension) OnPaymentLinkCreated(_ context.Context, _ interface{}) error {
	m.LinkCreated.Inc()
	return nil
}

// OnPaymentLinkDeactivated implements plugin.OnPaymentLinkDeactivated.
func (m *MetricsExtension) OnPaymentLinkDeactivated(_ context.Context, _ id.LinkID) error {
	m.LinkDeactivated.Inc()
	return nil
}

// OnPaymentProcessed implements plugin.OnPaymentProcessed.
func (m *MetricsExtension) OnPaymentProcessed(_ context.Context, _ id.LinkID, _ types.Address) error {
	m.PaymentsTotal.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Subscription plan hooks
// ──────────────────────────────────────────────────

// OnPlanCreated implements plugin.OnPlanCreated.
func (m *MetricsExtension) OnPlanCreated(_ context.Context, _ interface{}) error {
	m.PlanCreated.Inc()
	return nil
}

// OnPlanDeactivated implements plugin.OnPlanDeactivated.
func (m *MetricsExtension) OnPlanDeactivated(_ context.Context, _ id.PlanID) error {
	m.PlanDeactivated.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Subscription hooks
// ──────────────────────────────────────────────────

// OnSubscribed implements plugin.OnSubscribed.
func (m *MetricsExtension) OnSubscribed(_ context.Context, _ interface{}) error {
	m.Subscribed.Inc()
	return nil
}

// OnSubscriptionPaid implements plugin.OnSubscriptionPaid.
func (m *MetricsExtension) OnSubscriptionPaid(_ context.Context, _ id.SubscriptionID) error {
	m.SubscriptionPaid.Inc()
	return nil
}

// OnSubscriptionCanceled implements plugin.OnSubscriptionCanceled.
func (m *MetricsExtension) OnSubscriptionCanceled(_ context.Context, _ interface{}) error {
	m.SubscriptionCanceled.Inc()
	return nil
}
