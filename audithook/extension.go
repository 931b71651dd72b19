// Package audithook bridges Paygate lifecycle events to an audit trail
// backend.
//
// It defines a local Recorder interface so the package does not import
// Chronicle directly. Callers inject a RecorderFunc adapter that bridges
// to Chronicle at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xraph/paygate/id"
	"github.com/xraph/paygate/link"
	"github.com/xraph/paygate/plan"
	"github.com/xraph/paygate/plugin"
	"github.com/xraph/paygate/subscription"
	"github.com/xraph/paygate/types"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin                   = (*Extension)(nil)
	_ plugin.OnMerchantAdded          = (*Extension)(nil)
	_ plugin.OnMerchantRemoved        = (*Extension)(nil)
	_ plugin.OnPaymentLinkCreated     = (*Extension)(nil)
	_ plugin.OnPaymentLinkDeactivated = (*Extension)(nil)
	_ plugin.OnPaymentProcessed       = (*Extension)(nil)
	_ plugin.OnPlanCreated            = (*Extension)(nil)
	_ plugin.OnPlanDeactivated        = (*Extension)(nil)
	_ plugin.OnSubscribed             = (*Extension)(nil)
	_ plugin.OnSubscriptionPaid       = (*Extension)(nil)
	_ plugin.OnSubscriptionCanceled   = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
// This matches chronicle.Emitter but is defined locally so that the
// audithook package does not import Chronicle directly — callers inject
// the concrete *chronicle.Chronicle at wiring time.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
// It mirrors chronicle/audit.Event but avoids a module dependency.
type AuditEvent struct {
	EventID    string         `json:"event_id"`
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges Paygate lifecycle events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Merchant registry hooks
// ──────────────────────────────────────────────────

// OnMerchantAdded implements plugin.OnMerchantAdded.
func (e *Extension) OnMerchantAdded(ctx context.Context, merchant types.Address) error {
	return e.record(ctx, ActionMerchantAdded, SeverityInfo, OutcomeSuccess,
		ResourceMerchant, merchant.String(), CategoryRegistry, nil,
		"merchant", merchant.String(),
	)
}

// OnMerchantRemoved implements plugin.OnMerchantRemoved.
func (e *Extension) OnMerchantRemoved(ctx context.Context, merchant types.Address) error {
	return e.record(ctx, ActionMerchantRemoved, SeverityWarning, OutcomeSuccess,
		ResourceMerchant, merchant.String(), CategoryRegistry, nil,
		"merchant", merchant.String(),
	)
}

// ──────────────────────────────────────────────────
// Payment link hooks
// ──────────────────────────────────────────────────

// OnPaymentLinkCreated implements plugin.OnPaymentLinkCreated.
func (e *Extension) OnPaymentLinkCreated(ctx context.Context, l interface{}) error {
	var resourceID string
	kv := []any{"event", "link_created"}
	if pl, ok := l.(*link.PaymentLink); ok {
		resourceID = pl.ID.String()
		kv = append(kv, "merchant", pl.Merchant.String(), "amount", pl.Amount.String())
	}
	return e.record(ctx, ActionLinkCreated, SeverityInfo, OutcomeSuccess,
		ResourceLink, resourceID, CategoryPayment, nil, kv...)
}

// OnPaymentLinkDeactivated implements plugin.OnPaymentLinkDeactivated.
func (e *Extension) OnPaymentLinkDeactivated(ctx context.Context, linkID id.LinkID) error {
	return e.record(ctx, ActionLinkDeactivated, SeverityInfo, OutcomeSuccess,
		ResourceLink, linkID.String(), CategoryPayment, nil,
		"link_id", linkID.String(),
	)
}

// OnPaymentProcessed implements plugin.OnPaymentProcessed.
func (e *Extension) OnPaymentProcessed(ctx context.Context, linkID id.LinkID, payer types.Address) error {
	return e.record(ctx, ActionPaymentReceived, SeverityInfo, OutcomeSuccess,
		ResourceLink, linkID.String(), CategoryPayment, nil,
		"link_id", linkID.String(),
		"payer", payer.String(),
	)
}

// ──────────────────────────────────────────────────
// Subscription plan hooks
// ──────────────────────────────────────────────────

// OnPlanCreated implements plugin.OnPlanCreated.
func (e *Extension) OnPlanCreated(ctx context.Context, p interface{}) error {
	var resourceID string
	kv := []any{"event", "plan_created"}
	if pl, ok := p.(*plan.Plan); ok {
		resourceID = pl.ID.String()
		kv = append(kv, "merchant", pl.Merchant.String(), "amount", pl.Amount.String(), "interval_secs", pl.Interval)
	}
	return e.record(ctx, ActionPlanCreated, SeverityInfo, OutcomeSuccess,
		ResourcePlan, resourceID, CategorySubscription, nil, kv...)
}

// OnPlanDeactivated implements plugin.OnPlanDeactivated.
func (e *Extension) OnPlanDeactivated(ctx context.Context, planID id.PlanID) error {
	return e.record(ctx, ActionPlanDeactivated, SeverityInfo, OutcomeSuccess,
		ResourcePlan, planID.String(), CategorySubscription, nil,
		"plan_id", planID.String(),
	)
}

// ──────────────────────────────────────────────────
// Subscription hooks
// ──────────────────────────────────────────────────

// OnSubscribed implements plugin.OnSubscribed.
func (e *Extension) OnSubscribed(ctx context.Context, s interface{}) error {
	var resourceID string
	kv := []any{"event", "subscribed"}
	if sub, ok := s.(*subscription.Subscription); ok {
		resourceID = sub.ID.String()
		kv = append(kv, "subscriber", sub.Subscriber.String(), "plan_id", sub.PlanID.String())
	}
	return e.record(ctx, ActionSubscribed, SeverityInfo, OutcomeSuccess,
		ResourceSubscription, resourceID, CategorySubscription, nil, kv...)
}

// OnSubscriptionPaid implements plugin.OnSubscriptionPaid.
func (e *Extension) OnSubscriptionPaid(ctx context.Context, subID id.SubscriptionID) error {
	return e.record(ctx, ActionSubscriptionPaid, SeverityInfo, OutcomeSuccess,
		ResourceSubscription, subID.String(), CategoryPayment, nil,
		"sub_id", subID.String(),
	)
}

// OnSubscriptionCanceled implements plugin.OnSubscriptionCanceled.
func (e *Extension) OnSubscriptionCanceled(ctx context.Context, s interface{}) error {
	var resourceID string
	kv := []any{"event", "subscription_canceled"}
	if sub, ok := s.(*subscription.Subscription); ok {
		resourceID = sub.ID.String()
		kv = append(kv, "subscriber", sub.Subscriber.String())
	}
	return e.record(ctx, ActionSubscriptionCanceled, SeverityInfo, OutcomeSuccess,
		ResourceSubscription, resourceID, CategorySubscription, nil, kv...)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		EventID:    id.NewEventID().String(),
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audithook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
