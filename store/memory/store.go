// Package memory provides an in-memory implementation of the store interface.
// It is safe for concurrent use and intended for tests, demos and
// single-process deployments that do not need durability.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/xraph/paygate/id"
	"github.com/xraph/paygate/link"
	"github.com/xraph/paygate/merchant"
	"github.com/xraph/paygate/plan"
	"github.com/xraph/paygate/store"
	"github.com/xraph/paygate/subscription"
	"github.com/xraph/paygate/types"
)

// Store is an in-memory implementation of store.Store.
type Store struct {
	mu sync.RWMutex

	config    *store.Config
	merchants map[types.Address]*merchant.Merchant

	links         map[id.LinkID]*link.PaymentLink
	plans         map[id.PlanID]*plan.Plan
	subscriptions map[id.SubscriptionID]*subscription.Subscription

	linkCounter uint32
	planCounter uint32
	subCounter  uint32
}

var _ store.Store = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		merchants:     make(map[types.Address]*merchant.Merchant),
		links:         make(map[id.LinkID]*link.PaymentLink),
		plans:         make(map[id.PlanID]*plan.Plan),
		subscriptions: make(map[id.SubscriptionID]*subscription.Subscription),
	}
}

// ──────────────────────────────────────────────────
// Config
// ──────────────────────────────────────────────────

func (s *Store) InitConfig(_ context.Context, cfg *store.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.config != nil {
		return fmt.Errorf("config already initialized")
	}
	c := *cfg
	s.config = &c
	return nil
}

func (s *Store) GetConfig(_ context.Context) (*store.Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.config == nil {
		return nil, fmt.Errorf("config not found")
	}
	c := *s.config
	return &c, nil
}

// ──────────────────────────────────────────────────
// Merchant registry
// ──────────────────────────────────────────────────

func (s *Store) AddMerchant(_ context.Context, m *merchant.Merchant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.merchants[m.Address]; ok {
		return fmt.Errorf("merchant %s already registered", m.Address)
	}
	cp := *m
	s.merchants[m.Address] = &cp
	return nil
}

func (s *Store) RemoveMerchant(_ context.Context, addr types.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.merchants[addr]; !ok {
		return fmt.Errorf("merchant %s not found", addr)
	}
	delete(s.merchants, addr)
	return nil
}

func (s *Store) IsMerchant(_ context.Context, addr types.Address) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.merchants[addr]
	return ok, nil
}

// ──────────────────────────────────────────────────
// Counters
// ──────────────────────────────────────────────────

func (s *Store) NextLinkID(_ context.Context) (id.LinkID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.linkCounter++
	return id.LinkID(s.linkCounter), nil
}

func (s *Store) NextPlanID(_ context.Context) (id.PlanID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.planCounter++
	return id.PlanID(s.planCounter), nil
}

func (s *Store) NextSubscriptionID(_ context.Context) (id.SubscriptionID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subCounter++
	return id.SubscriptionID(s.subCounter), nil
}

// ──────────────────────────────────────────────────
// Payment links
// ──────────────────────────────────────────────────

func (s *Store) CreateLink(_ context.Context, l *link.PaymentLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.links[l.ID]; ok {
		return fmt.Errorf("payment link %s already exists", l.ID)
	}
	cp := *l
	s.links[l.ID] = &cp
	return nil
}

func (s *Store) GetLink(_ context.Context, linkID id.LinkID) (*link.PaymentLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.links[linkID]
	if !ok {
		return nil, fmt.Errorf("payment link %s not found", linkID)
	}
	cp := *l
	return &cp, nil
}

func (s *Store) UpdateLink(_ context.Context, l *link.PaymentLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.links[l.ID]; !ok {
		return fmt.Errorf("payment link %s not found", l.ID)
	}
	cp := *l
	s.links[l.ID] = &cp
	return nil
}

// ──────────────────────────────────────────────────
// Subscription plans
// ──────────────────────────────────────────────────

func (s *Store) CreatePlan(_ context.Context, p *plan.Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.plans[p.ID]; ok {
		return fmt.Errorf("plan %s already exists", p.ID)
	}
	cp := *p
	s.plans[p.ID] = &cp
	return nil
}

func (s *Store) GetPlan(_ context.Context, planID id.PlanID) (*plan.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.plans[planID]
	if !ok {
		return nil, fmt.Errorf("plan %s not found", planID)
	}
	cp := *p
	return &cp, nil
}

func (s *Store) UpdatePlan(_ context.Context, p *plan.Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.plans[p.ID]; !ok {
		return fmt.Errorf("plan %s not found", p.ID)
	}
	cp := *p
	s.plans[p.ID] = &cp
	return nil
}

// ──────────────────────────────────────────────────
// Subscriptions
// ──────────────────────────────────────────────────

func (s *Store) CreateSubscription(_ context.Context, sub *subscription.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subscriptions[sub.ID]; ok {
		return fmt.Errorf("subscription %s already exists", sub.ID)
	}
	cp := *sub
	s.subscriptions[sub.ID] = &cp
	return nil
}

func (s *Store) GetSubscription(_ context.Context, subID id.SubscriptionID) (*subscription.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.subscriptions[subID]
	if !ok {
		return nil, fmt.Errorf("subscription %s not found", subID)
	}
	cp := *sub
	return &cp, nil
}

func (s *Store) UpdateSubscription(_ context.Context, sub *subscription.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subscriptions[sub.ID]; !ok {
		return fmt.Errorf("subscription %s not found", sub.ID)
	}
	cp := *sub
	s.subscriptions[sub.ID] = &cp
	return nil
}

// ListDueSubscriptions returns active subscriptions whose next billing time
// is at or before now. Due-ness depends on the plan interval, so the plan is
// resolved here; subscriptions whose plan went inactive are skipped.
func (s *Store) ListDueSubscriptions(_ context.Context, now time.Time) ([]*subscription.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var due []*subscription.Subscription
	for _, sub := range s.subscriptions {
		if !sub.IsActive() {
			continue
		}
		p, ok := s.plans[sub.PlanID]
		if !ok || !p.IsActive() {
			continue
		}
		if sub.Due(now, p.Interval) {
			cp := *sub
			due = append(due, &cp)
		}
	}
	return due, nil
}

// ──────────────────────────────────────────────────
// Core
// ──────────────────────────────────────────────────

// Migrate is a no-op for the in-memory store.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping is a no-op for the in-memory store.
func (s *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op for the in-memory store.
func (s *Store) Close() error { return nil }
