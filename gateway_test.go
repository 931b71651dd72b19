package paygate_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	paygate "github.com/xraph/paygate"
	"github.com/xraph/paygate/auth"
	"github.com/xraph/paygate/clock"
	"github.com/xraph/paygate/id"
	"github.com/xraph/paygate/store/memory"
	"github.com/xraph/paygate/token"
	"github.com/xraph/paygate/types"
)

var (
	owner      = types.MustParseAddress("GOWNER")
	tokenAsset = types.MustParseAddress("CTOKEN")
	merchantA  = types.MustParseAddress("GMERCHANT")
	merchantB  = types.MustParseAddress("GMERCHANTB")
	alice      = types.MustParseAddress("GALICE")
	mallory    = types.MustParseAddress("GMALLORY")
)

var testStart = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

type env struct {
	t      *testing.T
	gw     *paygate.Gateway
	ledger *token.Ledger
	clk    *clock.Fake
}

// newEnv builds a gateway over a memory store, an in-memory token ledger and
// a fake clock pinned to testStart. The gateway is started and stopped via
// t.Cleanup.
func newEnv(t *testing.T, opts ...paygate.Option) *env {
	t.Helper()

	ledger := token.NewLedger()
	clk := clock.NewFake(testStart)

	all := append([]paygate.Option{
		paygate.WithTransferor(ledger),
		paygate.WithClock(clk),
		paygate.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, opts...)

	gw := paygate.New(memory.New(), all...)
	if err := gw.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	t.Cleanup(func() {
		_ = gw.Stop()
	})

	return &env{t: t, gw: gw, ledger: ledger, clk: clk}
}

// as returns a context authenticated as addr.
func (e *env) as(addr types.Address) context.Context {
	return auth.WithCaller(context.Background(), addr)
}

// initialize runs Init as the owner.
func (e *env) initialize() {
	e.t.Helper()
	if err := e.gw.Init(e.as(owner), owner, tokenAsset); err != nil {
		e.t.Fatalf("init failed: %v", err)
	}
}

// addMerchant registers addr as a merchant, acting as the owner.
func (e *env) addMerchant(addr types.Address) {
	e.t.Helper()
	if err := e.gw.AddMerchant(e.as(owner), owner, addr); err != nil {
		e.t.Fatalf("add merchant failed: %v", err)
	}
}

// createLink publishes a link as merchantA.
func (e *env) createLink(amount int64) id.LinkID {
	e.t.Helper()
	linkID, err := e.gw.CreatePaymentLink(e.as(merchantA), merchantA, types.NewAmount(amount), "test link")
	if err != nil {
		e.t.Fatalf("create link failed: %v", err)
	}
	return linkID
}

// createPlan publishes a plan as merchantA.
func (e *env) createPlan(amount int64, interval uint32) id.PlanID {
	e.t.Helper()
	planID, err := e.gw.CreateSubscriptionPlan(e.as(merchantA), merchantA, types.NewAmount(amount), interval, "test plan")
	if err != nil {
		e.t.Fatalf("create plan failed: %v", err)
	}
	return planID
}

// ──────────────────────────────────────────────────
// Initialization
// ──────────────────────────────────────────────────

func TestStartRequiresTransferor(t *testing.T) {
	// No WithTransferor: Start must fail up front instead of letting the
	// first payment dereference a nil backend.
	gw := paygate.New(memory.New(),
		paygate.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err := gw.Start(context.Background()); !errors.Is(err, paygate.ErrNoTransferor) {
		t.Fatalf("expected ErrNoTransferor, got %v", err)
	}
}

func TestInit(t *testing.T) {
	e := newEnv(t)
	e.initialize()

	// Init is one-shot.
	err := e.gw.Init(e.as(owner), owner, tokenAsset)
	if !errors.Is(err, paygate.ErrAlreadyInitialized) {
		t.Fatalf("expected ErrAlreadyInitialized, got %v", err)
	}
}

func TestInitRejectsZeroToken(t *testing.T) {
	e := newEnv(t)

	err := e.gw.Init(e.as(owner), owner, types.ZeroAddress)
	var verr paygate.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestInitRequiresAuth(t *testing.T) {
	e := newEnv(t)

	// No authenticated caller in the context.
	err := e.gw.Init(context.Background(), owner, tokenAsset)
	if !errors.Is(err, paygate.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	// Caller identity does not match the claimed invoker.
	err = e.gw.Init(e.as(mallory), owner, tokenAsset)
	if !errors.Is(err, paygate.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestOperationsBeforeInit(t *testing.T) {
	e := newEnv(t)

	if err := e.gw.AddMerchant(e.as(owner), owner, merchantA); !errors.Is(err, paygate.ErrNotInitialized) {
		t.Errorf("AddMerchant: expected ErrNotInitialized, got %v", err)
	}
	if _, err := e.gw.CreatePaymentLink(e.as(merchantA), merchantA, types.NewAmount(1), ""); !errors.Is(err, paygate.ErrNotInitialized) {
		t.Errorf("CreatePaymentLink: expected ErrNotInitialized, got %v", err)
	}
	if _, err := e.gw.GetPaymentLink(context.Background(), 1); !errors.Is(err, paygate.ErrNotInitialized) {
		t.Errorf("GetPaymentLink: expected ErrNotInitialized, got %v", err)
	}
	if _, err := e.gw.Subscribe(e.as(alice), alice, 1); !errors.Is(err, paygate.ErrNotInitialized) {
		t.Errorf("Subscribe: expected ErrNotInitialized, got %v", err)
	}
}

// ──────────────────────────────────────────────────
// Merchant registry
// ──────────────────────────────────────────────────

func TestMerchantRegistry(t *testing.T) {
	e := newEnv(t)
	e.initialize()

	if err := e.gw.AddMerchant(e.as(owner), owner, merchantA); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := e.gw.AddMerchant(e.as(owner), owner, merchantA); !errors.Is(err, paygate.ErrMerchantRegistered) {
		t.Fatalf("expected ErrMerchantRegistered, got %v", err)
	}

	ok, err := e.gw.IsMerchant(context.Background(), merchantA)
	if err != nil {
		t.Fatalf("IsMerchant failed: %v", err)
	}
	if !ok {
		t.Error("merchantA not registered")
	}

	if err := e.gw.RemoveMerchant(e.as(owner), owner, merchantA); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if err := e.gw.RemoveMerchant(e.as(owner), owner, merchantA); !errors.Is(err, paygate.ErrMerchantNotRegistered) {
		t.Fatalf("expected ErrMerchantNotRegistered, got %v", err)
	}

	ok, _ = e.gw.IsMerchant(context.Background(), merchantA)
	if ok {
		t.Error("merchantA still registered after removal")
	}
}

func TestMerchantRegistryOwnerOnly(t *testing.T) {
	e := newEnv(t)
	e.initialize()

	// A correctly authenticated non-owner is rejected with ErrNotOwner.
	if err := e.gw.AddMerchant(e.as(mallory), mallory, merchantA); !errors.Is(err, paygate.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	if err := e.gw.RemoveMerchant(e.as(mallory), mallory, merchantA); !errors.Is(err, paygate.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}

	// Claiming to be the owner without proving it fails earlier.
	if err := e.gw.AddMerchant(e.as(mallory), owner, merchantA); !errors.Is(err, paygate.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

// ──────────────────────────────────────────────────
// Payment links
// ──────────────────────────────────────────────────

func TestCreatePaymentLink(t *testing.T) {
	e := newEnv(t)
	e.initialize()
	e.addMerchant(merchantA)

	// Ids are dense and start at 1.
	first := e.createLink(100)
	second := e.createLink(200)
	if first != 1 || second != 2 {
		t.Errorf("got ids %d, %d, want 1, 2", first, second)
	}

	l, err := e.gw.GetPaymentLink(context.Background(), first)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !l.Merchant.Equal(merchantA) {
		t.Errorf("merchant: got %s, want %s", l.Merchant, merchantA)
	}
	if !l.Amount.Equal(types.NewAmount(100)) {
		t.Errorf("amount: got %s, want 100", l.Amount)
	}
	if !l.IsActive() {
		t.Error("new link should be active")
	}
}

func TestCreatePaymentLinkValidation(t *testing.T) {
	e := newEnv(t)
	e.initialize()
	e.addMerchant(merchantA)

	if _, err := e.gw.CreatePaymentLink(e.as(alice), alice, types.NewAmount(100), ""); !errors.Is(err, paygate.ErrNotMerchant) {
		t.Errorf("non-merchant: expected ErrNotMerchant, got %v", err)
	}
	if _, err := e.gw.CreatePaymentLink(e.as(merchantA), merchantA, types.ZeroAmount(), ""); !errors.Is(err, paygate.ErrInvalidAmount) {
		t.Errorf("zero amount: expected ErrInvalidAmount, got %v", err)
	}
	if _, err := e.gw.CreatePaymentLink(e.as(merchantA), merchantA, types.NewAmount(-5), ""); !errors.Is(err, paygate.ErrInvalidAmount) {
		t.Errorf("negative amount: expected ErrInvalidAmount, got %v", err)
	}
}

func TestProcessPayment(t *testing.T) {
	e := newEnv(t)
	e.initialize()
	e.addMerchant(merchantA)
	linkID := e.createLink(100)

	e.ledger.Mint(alice, types.NewAmount(250))

	if err := e.gw.ProcessPayment(e.as(alice), alice, linkID); err != nil {
		t.Fatalf("payment failed: %v", err)
	}
	if got := e.ledger.Balance(alice); !got.Equal(types.NewAmount(150)) {
		t.Errorf("payer balance: got %s, want 150", got)
	}
	if got := e.ledger.Balance(merchantA); !got.Equal(types.NewAmount(100)) {
		t.Errorf("merchant balance: got %s, want 100", got)
	}

	// Links are reusable: a second payment works and the link stays active.
	if err := e.gw.ProcessPayment(e.as(alice), alice, linkID); err != nil {
		t.Fatalf("second payment failed: %v", err)
	}
	l, _ := e.gw.GetPaymentLink(context.Background(), linkID)
	if !l.IsActive() {
		t.Error("link deactivated by payment")
	}
}

func TestProcessPaymentFailures(t *testing.T) {
	e := newEnv(t)
	e.initialize()
	e.addMerchant(merchantA)
	linkID := e.createLink(100)

	if err := e.gw.ProcessPayment(e.as(alice), alice, 99); !errors.Is(err, paygate.ErrLinkNotFound) {
		t.Errorf("missing link: expected ErrLinkNotFound, got %v", err)
	}

	// Alice has nothing; the transfer fails and no funds move.
	err := e.gw.ProcessPayment(e.as(alice), alice, linkID)
	if !errors.Is(err, paygate.ErrTransferFailed) {
		t.Fatalf("expected ErrTransferFailed, got %v", err)
	}
	if !e.ledger.Balance(merchantA).IsZero() {
		t.Error("merchant balance changed on failed payment")
	}

	if err := e.gw.ProcessPayment(context.Background(), alice, linkID); !errors.Is(err, paygate.ErrUnauthorized) {
		t.Errorf("unauthenticated: expected ErrUnauthorized, got %v", err)
	}
}

func TestDeactivatePaymentLink(t *testing.T) {
	e := newEnv(t)
	e.initialize()
	e.addMerchant(merchantA)
	e.addMerchant(merchantB)
	linkID := e.createLink(100)

	// Only the owning merchant may deactivate, other merchants included.
	if err := e.gw.DeactivatePaymentLink(e.as(merchantB), merchantB, linkID); !errors.Is(err, paygate.ErrUnauthorized) {
		t.Fatalf("foreign merchant: expected ErrUnauthorized, got %v", err)
	}

	if err := e.gw.DeactivatePaymentLink(e.as(merchantA), merchantA, linkID); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}

	// Deactivation is permanent and not idempotent.
	if err := e.gw.DeactivatePaymentLink(e.as(merchantA), merchantA, linkID); !errors.Is(err, paygate.ErrLinkInactive) {
		t.Fatalf("second deactivate: expected ErrLinkInactive, got %v", err)
	}

	e.ledger.Mint(alice, types.NewAmount(100))
	if err := e.gw.ProcessPayment(e.as(alice), alice, linkID); !errors.Is(err, paygate.ErrLinkInactive) {
		t.Fatalf("payment on inactive link: expected ErrLinkInactive, got %v", err)
	}
	if !e.ledger.Balance(merchantA).IsZero() {
		t.Error("funds moved through inactive link")
	}
}

func TestMerchantRemovalLeavesLinksPayable(t *testing.T) {
	e := newEnv(t)
	e.initialize()
	e.addMerchant(merchantA)
	linkID := e.createLink(100)

	if err := e.gw.RemoveMerchant(e.as(owner), owner, merchantA); err != nil {
		t.Fatalf("remove failed: %v", err)
	}

	// Removal revokes creation rights, not existing links.
	e.ledger.Mint(alice, types.NewAmount(100))
	if err := e.gw.ProcessPayment(e.as(alice), alice, linkID); err != nil {
		t.Fatalf("payment after merchant removal failed: %v", err)
	}

	// But the removed merchant cannot create new links.
	if _, err := e.gw.CreatePaymentLink(e.as(merchantA), merchantA, types.NewAmount(1), ""); !errors.Is(err, paygate.ErrNotMerchant) {
		t.Fatalf("expected ErrNotMerchant, got %v", err)
	}
}

// ──────────────────────────────────────────────────
// Subscription plans
// ──────────────────────────────────────────────────

func TestCreateSubscriptionPlan(t *testing.T) {
	e := newEnv(t)
	e.initialize()
	e.addMerchant(merchantA)

	// Plan ids are independent of link ids: both start at 1.
	_ = e.createLink(100)
	planID := e.createPlan(500, 3600)
	if planID != 1 {
		t.Errorf("got plan id %d, want 1", planID)
	}

	p, err := e.gw.GetSubscriptionPlan(context.Background(), planID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if p.Interval != 3600 {
		t.Errorf("interval: got %d, want 3600", p.Interval)
	}
}

func TestCreateSubscriptionPlanValidation(t *testing.T) {
	e := newEnv(t)
	e.initialize()
	e.addMerchant(merchantA)

	if _, err := e.gw.CreateSubscriptionPlan(e.as(merchantA), merchantA, types.NewAmount(500), 0, ""); !errors.Is(err, paygate.ErrInvalidInterval) {
		t.Errorf("zero interval: expected ErrInvalidInterval, got %v", err)
	}
	if _, err := e.gw.CreateSubscriptionPlan(e.as(merchantA), merchantA, types.ZeroAmount(), 3600, ""); !errors.Is(err, paygate.ErrInvalidAmount) {
		t.Errorf("zero amount: expected ErrInvalidAmount, got %v", err)
	}
	if _, err := e.gw.CreateSubscriptionPlan(e.as(alice), alice, types.NewAmount(500), 3600, ""); !errors.Is(err, paygate.ErrNotMerchant) {
		t.Errorf("non-merchant: expected ErrNotMerchant, got %v", err)
	}
}

func TestDeactivateSubscriptionPlan(t *testing.T) {
	e := newEnv(t)
	e.initialize()
	e.addMerchant(merchantA)
	e.addMerchant(merchantB)
	planID := e.createPlan(500, 3600)

	if err := e.gw.DeactivateSubscriptionPlan(e.as(merchantB), merchantB, planID); !errors.Is(err, paygate.ErrUnauthorized) {
		t.Fatalf("foreign merchant: expected ErrUnauthorized, got %v", err)
	}

	if err := e.gw.DeactivateSubscriptionPlan(e.as(merchantA), merchantA, planID); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}
	if err := e.gw.DeactivateSubscriptionPlan(e.as(merchantA), merchantA, planID); !errors.Is(err, paygate.ErrPlanInactive) {
		t.Fatalf("second deactivate: expected ErrPlanInactive, got %v", err)
	}

	// No new subscriptions on an inactive plan.
	e.ledger.Mint(alice, types.NewAmount(500))
	if _, err := e.gw.Subscribe(e.as(alice), alice, planID); !errors.Is(err, paygate.ErrPlanInactive) {
		t.Fatalf("subscribe: expected ErrPlanInactive, got %v", err)
	}
}

// ──────────────────────────────────────────────────
// Subscriptions
// ──────────────────────────────────────────────────

func TestSubscribe(t *testing.T) {
	e := newEnv(t)
	e.initialize()
	e.addMerchant(merchantA)
	planID := e.createPlan(500, 3600)

	e.ledger.Mint(alice, types.NewAmount(1200))

	subID, err := e.gw.Subscribe(e.as(alice), alice, planID)
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	if subID != 1 {
		t.Errorf("got sub id %d, want 1", subID)
	}

	// The first period is charged upfront.
	if got := e.ledger.Balance(alice); !got.Equal(types.NewAmount(700)) {
		t.Errorf("subscriber balance: got %s, want 700", got)
	}
	if got := e.ledger.Balance(merchantA); !got.Equal(types.NewAmount(500)) {
		t.Errorf("merchant balance: got %s, want 500", got)
	}

	sub, err := e.gw.GetSubscription(context.Background(), subID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !sub.StartTime.Equal(testStart) || !sub.LastPayment.Equal(testStart) {
		t.Errorf("timestamps: start=%s last=%s, want both %s", sub.StartTime, sub.LastPayment, testStart)
	}
	if !sub.IsActive() {
		t.Error("new subscription should be active")
	}
}

func TestSubscribeChargeFailureLeavesNothing(t *testing.T) {
	e := newEnv(t)
	e.initialize()
	e.addMerchant(merchantA)
	planID := e.createPlan(500, 3600)

	// Alice cannot afford the first period.
	_, err := e.gw.Subscribe(e.as(alice), alice, planID)
	if !errors.Is(err, paygate.ErrTransferFailed) {
		t.Fatalf("expected ErrTransferFailed, got %v", err)
	}

	// No record was written.
	if _, err := e.gw.GetSubscription(context.Background(), 1); !errors.Is(err, paygate.ErrSubscriptionNotFound) {
		t.Fatalf("expected ErrSubscriptionNotFound, got %v", err)
	}

	// And no id was burned: the next successful subscribe gets id 1.
	e.ledger.Mint(alice, types.NewAmount(500))
	subID, err := e.gw.Subscribe(e.as(alice), alice, planID)
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	if subID != 1 {
		t.Errorf("got sub id %d, want 1 (failed charge must not burn ids)", subID)
	}
}

func TestProcessSubscriptionPayment(t *testing.T) {
	e := newEnv(t)
	e.initialize()
	e.addMerchant(merchantA)
	planID := e.createPlan(500, 3600)

	e.ledger.Mint(alice, types.NewAmount(2000))
	subID, err := e.gw.Subscribe(e.as(alice), alice, planID)
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	// Not due until a full interval has elapsed.
	if err := e.gw.ProcessSubscriptionPayment(e.as(alice), alice, alice, subID); !errors.Is(err, paygate.ErrNotDue) {
		t.Fatalf("expected ErrNotDue, got %v", err)
	}
	e.clk.Advance(time.Hour - time.Second)
	if err := e.gw.ProcessSubscriptionPayment(e.as(alice), alice, alice, subID); !errors.Is(err, paygate.ErrNotDue) {
		t.Fatalf("one second early: expected ErrNotDue, got %v", err)
	}

	// Due exactly at the boundary. Anyone authenticated may trigger it.
	e.clk.Advance(time.Second)
	if err := e.gw.ProcessSubscriptionPayment(e.as(mallory), mallory, alice, subID); err != nil {
		t.Fatalf("charge failed: %v", err)
	}
	if got := e.ledger.Balance(alice); !got.Equal(types.NewAmount(1000)) {
		t.Errorf("subscriber balance: got %s, want 1000", got)
	}
	if got := e.ledger.Balance(merchantA); !got.Equal(types.NewAmount(1000)) {
		t.Errorf("merchant balance: got %s, want 1000", got)
	}

	// The period window resets: charging again immediately fails.
	if err := e.gw.ProcessSubscriptionPayment(e.as(alice), alice, alice, subID); !errors.Is(err, paygate.ErrNotDue) {
		t.Fatalf("expected ErrNotDue after charge, got %v", err)
	}

	// A late trigger charges exactly one period, not the arrears.
	e.clk.Advance(10 * time.Hour)
	if err := e.gw.ProcessSubscriptionPayment(e.as(alice), alice, alice, subID); err != nil {
		t.Fatalf("late charge failed: %v", err)
	}
	if got := e.ledger.Balance(alice); !got.Equal(types.NewAmount(500)) {
		t.Errorf("subscriber balance after late charge: got %s, want 500", got)
	}
}

func TestProcessSubscriptionPaymentSubscriberMismatch(t *testing.T) {
	e := newEnv(t)
	e.initialize()
	e.addMerchant(merchantA)
	planID := e.createPlan(500, 3600)

	e.ledger.Mint(alice, types.NewAmount(500))
	subID, err := e.gw.Subscribe(e.as(alice), alice, planID)
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	e.clk.Advance(time.Hour)

	// A wrong subscriber address looks exactly like a missing subscription.
	err = e.gw.ProcessSubscriptionPayment(e.as(mallory), mallory, mallory, subID)
	if !errors.Is(err, paygate.ErrSubscriptionNotFound) {
		t.Fatalf("expected ErrSubscriptionNotFound, got %v", err)
	}
	err = e.gw.ProcessSubscriptionPayment(e.as(alice), alice, alice, 99)
	if !errors.Is(err, paygate.ErrSubscriptionNotFound) {
		t.Fatalf("missing id: expected ErrSubscriptionNotFound, got %v", err)
	}
}

func TestProcessSubscriptionPaymentInactive(t *testing.T) {
	e := newEnv(t)
	e.initialize()
	e.addMerchant(merchantA)
	planID := e.createPlan(500, 3600)

	e.ledger.Mint(alice, types.NewAmount(2000))
	subID, err := e.gw.Subscribe(e.as(alice), alice, planID)
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	e.clk.Advance(time.Hour)

	// Deactivating the plan stops further charges.
	if err := e.gw.DeactivateSubscriptionPlan(e.as(merchantA), merchantA, planID); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}
	if err := e.gw.ProcessSubscriptionPayment(e.as(alice), alice, alice, subID); !errors.Is(err, paygate.ErrPlanInactive) {
		t.Fatalf("expected ErrPlanInactive, got %v", err)
	}

	// A cancelled subscription is not billable either.
	if err := e.gw.CancelSubscription(e.as(alice), alice, subID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if err := e.gw.ProcessSubscriptionPayment(e.as(alice), alice, alice, subID); !errors.Is(err, paygate.ErrSubscriptionInactive) {
		t.Fatalf("expected ErrSubscriptionInactive, got %v", err)
	}
}

func TestProcessSubscriptionPaymentTransferFailure(t *testing.T) {
	e := newEnv(t)
	e.initialize()
	e.addMerchant(merchantA)
	planID := e.createPlan(500, 3600)

	// Exactly one period's worth: the upfront charge drains the account.
	e.ledger.Mint(alice, types.NewAmount(500))
	subID, err := e.gw.Subscribe(e.as(alice), alice, planID)
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	e.clk.Advance(time.Hour)

	if err := e.gw.ProcessSubscriptionPayment(e.as(alice), alice, alice, subID); !errors.Is(err, paygate.ErrTransferFailed) {
		t.Fatalf("expected ErrTransferFailed, got %v", err)
	}

	// The billing window must not advance on a failed charge.
	sub, _ := e.gw.GetSubscription(context.Background(), subID)
	if !sub.LastPayment.Equal(testStart) {
		t.Errorf("LastPayment moved on failed charge: %s", sub.LastPayment)
	}
}

func TestCancelSubscription(t *testing.T) {
	e := newEnv(t)
	e.initialize()
	e.addMerchant(merchantA)
	e.addMerchant(merchantB)
	planID := e.createPlan(500, 3600)

	e.ledger.Mint(alice, types.NewAmount(2000))

	subID, err := e.gw.Subscribe(e.as(alice), alice, planID)
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	// A stranger cannot cancel.
	if err := e.gw.CancelSubscription(e.as(mallory), mallory, subID); !errors.Is(err, paygate.ErrUnauthorized) {
		t.Fatalf("stranger: expected ErrUnauthorized, got %v", err)
	}

	// The subscriber can.
	if err := e.gw.CancelSubscription(e.as(alice), alice, subID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if err := e.gw.CancelSubscription(e.as(alice), alice, subID); !errors.Is(err, paygate.ErrSubscriptionInactive) {
		t.Fatalf("second cancel: expected ErrSubscriptionInactive, got %v", err)
	}

	// Any registered merchant can cancel too, not just the plan's.
	subID2, err := e.gw.Subscribe(e.as(alice), alice, planID)
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	if err := e.gw.CancelSubscription(e.as(merchantB), merchantB, subID2); err != nil {
		t.Fatalf("merchant cancel failed: %v", err)
	}

	// No refund on cancel.
	if got := e.ledger.Balance(alice); !got.Equal(types.NewAmount(1000)) {
		t.Errorf("subscriber balance: got %s, want 1000", got)
	}
}

// ──────────────────────────────────────────────────
// Billing worker
// ──────────────────────────────────────────────────

func TestBillingWorker(t *testing.T) {
	operator := types.MustParseAddress("GOPERATOR")
	e := newEnv(t,
		paygate.WithBillingOperator(operator),
		paygate.WithBillingInterval(5*time.Millisecond),
	)
	e.initialize()
	e.addMerchant(merchantA)
	planID := e.createPlan(500, 3600)

	e.ledger.Mint(alice, types.NewAmount(1000))
	if _, err := e.gw.Subscribe(e.as(alice), alice, planID); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	// Nothing is due yet; the worker must stay idle.
	time.Sleep(30 * time.Millisecond)
	if got := e.ledger.Balance(merchantA); !got.Equal(types.NewAmount(500)) {
		t.Fatalf("premature charge: merchant has %s, want 500", got)
	}

	// Advance ledger time past the period and wait for the worker to pick
	// the subscription up.
	e.clk.Advance(time.Hour)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if e.ledger.Balance(merchantA).Equal(types.NewAmount(1000)) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("billing worker never charged: merchant has %s, want 1000", e.ledger.Balance(merchantA))
}
