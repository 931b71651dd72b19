package plugin

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/xraph/paygate/id"
	"github.com/xraph/paygate/types"
)

// recorderPlugin implements every hook and counts calls.
type recorderPlugin struct {
	name string

	mu    sync.Mutex
	calls map[string]int
	fail  bool
}

func newRecorder(name string) *recorderPlugin {
	return &recorderPlugin{name: name, calls: make(map[string]int)}
}

func (p *recorderPlugin) record(hook string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls[hook]++
	if p.fail {
		return errors.New("hook failed")
	}
	return nil
}

func (p *recorderPlugin) count(hook string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[hook]
}

func (p *recorderPlugin) Name() string { return p.name }

func (p *recorderPlugin) OnInit(context.Context, interface{}) error { return p.record("init") }
func (p *recorderPlugin) OnShutdown(context.Context) error          { return p.record("shutdown") }
func (p *recorderPlugin) OnMerchantAdded(context.Context, types.Address) error {
	return p.record("merchant_added")
}
func (p *recorderPlugin) OnMerchantRemoved(context.Context, types.Address) error {
	return p.record("merchant_removed")
}
func (p *recorderPlugin) OnPaymentLinkCreated(context.Context, interface{}) error {
	return p.record("link_created")
}
func (p *recorderPlugin) OnPaymentLinkDeactivated(context.Context, id.LinkID) error {
	return p.record("link_deactivated")
}
func (p *recorderPlugin) OnPaymentProcessed(context.Context, id.LinkID, types.Address) error {
	return p.record("payment_processed")
}
func (p *recorderPlugin) OnPlanCreated(context.Context, interface{}) error {
	return p.record("plan_created")
}
func (p *recorderPlugin) OnPlanDeactivated(context.Context, id.PlanID) error {
	return p.record("plan_deactivated")
}
func (p *recorderPlugin) OnSubscribed(context.Context, interface{}) error {
	return p.record("subscribed")
}
func (p *recorderPlugin) OnSubscriptionPaid(context.Context, id.SubscriptionID) error {
	return p.record("subscription_paid")
}
func (p *recorderPlugin) OnSubscriptionCanceled(context.Context, interface{}) error {
	return p.record("subscription_canceled")
}

// namedOnly implements only the base Plugin interface.
type namedOnly struct{ name string }

func (p *namedOnly) Name() string { return p.name }

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(newRecorder("a")); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := r.Register(&namedOnly{name: "b"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if r.Count() != 2 {
		t.Errorf("Count: got %d, want 2", r.Count())
	}
	if r.Get("a") == nil {
		t.Error("Get(a) returned nil")
	}
	if r.Get("missing") != nil {
		t.Error("Get(missing) should return nil")
	}
	if len(r.List()) != 2 {
		t.Errorf("List: got %d plugins, want 2", len(r.List()))
	}
}

func TestRegistryDuplicateName(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(newRecorder("dup")); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := r.Register(newRecorder("dup")); err == nil {
		t.Fatal("expected error for duplicate plugin name")
	}
}

func TestRegistryDispatch(t *testing.T) {
	r := NewRegistry()
	p := newRecorder("rec")
	if err := r.Register(p); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	ctx := context.Background()
	merchant := types.MustParseAddress("GMERCHANT")

	r.EmitInit(ctx, nil)
	r.EmitMerchantAdded(ctx, merchant)
	r.EmitMerchantRemoved(ctx, merchant)
	r.EmitPaymentLinkCreated(ctx, nil)
	r.EmitPaymentLinkDeactivated(ctx, 1)
	r.EmitPaymentProcessed(ctx, 1, merchant)
	r.EmitPlanCreated(ctx, nil)
	r.EmitPlanDeactivated(ctx, 1)
	r.EmitSubscribed(ctx, nil)
	r.EmitSubscriptionPaid(ctx, 1)
	r.EmitSubscriptionCanceled(ctx, nil)
	r.EmitShutdown(ctx)

	for _, hook := range []string{
		"init", "shutdown",
		"merchant_added", "merchant_removed",
		"link_created", "link_deactivated", "payment_processed",
		"plan_created", "plan_deactivated",
		"subscribed", "subscription_paid", "subscription_canceled",
	} {
		if got := p.count(hook); got != 1 {
			t.Errorf("hook %s: got %d calls, want 1", hook, got)
		}
	}
}

func TestRegistryHookErrorsAreSwallowed(t *testing.T) {
	r := NewRegistry()
	failing := newRecorder("failing")
	failing.fail = true
	after := newRecorder("after")

	if err := r.Register(failing); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := r.Register(after); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	// A failing hook must not block dispatch to later plugins.
	r.EmitMerchantAdded(context.Background(), types.MustParseAddress("GMERCHANT"))

	if got := failing.count("merchant_added"); got != 1 {
		t.Errorf("failing plugin: got %d calls, want 1", got)
	}
	if got := after.count("merchant_added"); got != 1 {
		t.Errorf("plugin after failure: got %d calls, want 1", got)
	}
}

func TestRegistryPartialInterface(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&namedOnly{name: "bare"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	// A plugin with no hooks must not break dispatch.
	r.EmitInit(context.Background(), nil)
	r.EmitSubscriptionPaid(context.Background(), 1)
}
