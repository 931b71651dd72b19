// Package mongo implements the store interface using MongoDB via Grove ORM.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	paygate "github.com/xraph/paygate"
	"github.com/xraph/paygate/id"
	"github.com/xraph/paygate/link"
	"github.com/xraph/paygate/merchant"
	"github.com/xraph/paygate/plan"
	paygatestore "github.com/xraph/paygate/store"
	"github.com/xraph/paygate/subscription"
	"github.com/xraph/paygate/types"
)

// Collection name constants.
const (
	colConfig        = "paygate_config"
	colMerchants     = "paygate_merchants"
	colCounters      = "paygate_counters"
	colLinks         = "paygate_links"
	colPlans         = "paygate_plans"
	colSubscriptions = "paygate_subscriptions"
)

// compile-time interface check
var _ paygatestore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for all paygate collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("paygate/mongo: migrate %s indexes: %w", col, err)
		}
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Config ====================

func (s *Store) InitConfig(ctx context.Context, cfg *paygatestore.Config) error {
	m := toConfigModel(cfg)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		// The fixed _id makes a second insert a duplicate key error.
		if mongo.IsDuplicateKeyError(err) {
			return paygate.ErrAlreadyInitialized
		}
		return fmt.Errorf("paygate/mongo: init config: %w", err)
	}
	return nil
}

func (s *Store) GetConfig(ctx context.Context) (*paygatestore.Config, error) {
	var m configModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": 1}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, paygate.ErrNotInitialized
		}
		return nil, fmt.Errorf("paygate/mongo: get config: %w", err)
	}
	return fromConfigModel(&m)
}

// ==================== Merchant registry ====================

func (s *Store) AddMerchant(ctx context.Context, m *merchant.Merchant) error {
	model := toMerchantModel(m)
	if _, err := s.mdb.NewInsert(model).Exec(ctx); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return paygate.ErrMerchantRegistered
		}
		return fmt.Errorf("paygate/mongo: add merchant: %w", err)
	}
	return nil
}

func (s *Store) RemoveMerchant(ctx context.Context, addr types.Address) error {
	res, err := s.mdb.NewDelete((*merchantModel)(nil)).
		Filter(bson.M{"_id": addr.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("paygate/mongo: remove merchant: %w", err)
	}
	if res.DeletedCount() == 0 {
		return paygate.ErrMerchantNotRegistered
	}
	return nil
}

func (s *Store) IsMerchant(ctx context.Context, addr types.Address) (bool, error) {
	var m merchantModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": addr.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return false, nil
		}
		return false, fmt.Errorf("paygate/mongo: is merchant: %w", err)
	}
	return true, nil
}

// ==================== Counters ====================

func (s *Store) NextLinkID(ctx context.Context) (id.LinkID, error) {
	v, err := s.nextCounter(ctx, "link")
	return id.LinkID(v), err
}

func (s *Store) NextPlanID(ctx context.Context) (id.PlanID, error) {
	v, err := s.nextCounter(ctx, "plan")
	return id.PlanID(v), err
}

func (s *Store) NextSubscriptionID(ctx context.Context) (id.SubscriptionID, error) {
	v, err := s.nextCounter(ctx, "subscription")
	return id.SubscriptionID(v), err
}

// nextCounter atomically increments and returns a named counter using a
// findAndModify upsert.
func (s *Store) nextCounter(ctx context.Context, name string) (uint32, error) {
	var doc struct {
		Value int64 `bson:"value"`
	}
	err := s.mdb.Collection(colCounters).FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"value": 1}},
		options.FindOneAndUpdate().
			SetUpsert(true).
			SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("paygate/mongo: increment %s counter: %w", name, err)
	}
	return uint32(doc.Value), nil
}

// ==================== Payment links ====================

func (s *Store) CreateLink(ctx context.Context, l *link.PaymentLink) error {
	m := toLinkModel(l)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("paygate/mongo: create link: %w", err)
	}
	return nil
}

func (s *Store) GetLink(ctx context.Context, linkID id.LinkID) (*link.PaymentLink, error) {
	var m linkModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": int64(linkID)}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, paygate.ErrLinkNotFound
		}
		return nil, fmt.Errorf("paygate/mongo: get link: %w", err)
	}
	return fromLinkModel(&m)
}

func (s *Store) UpdateLink(ctx context.Context, l *link.PaymentLink) error {
	m := toLinkModel(l)
	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("paygate/mongo: update link: %w", err)
	}
	if res.MatchedCount() == 0 {
		return paygate.ErrLinkNotFound
	}
	return nil
}

// ==================== Subscription plans ====================

func (s *Store) CreatePlan(ctx context.Context, p *plan.Plan) error {
	m := toPlanModel(p)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("paygate/mongo: create plan: %w", err)
	}
	return nil
}

func (s *Store) GetPlan(ctx context.Context, planID id.PlanID) (*plan.Plan, error) {
	var m planModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": int64(planID)}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, paygate.ErrPlanNotFound
		}
		return nil, fmt.Errorf("paygate/mongo: get plan: %w", err)
	}
	return fromPlanModel(&m)
}

func (s *Store) UpdatePlan(ctx context.Context, p *plan.Plan) error {
	m := toPlanModel(p)
	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("paygate/mongo: update plan: %w", err)
	}
	if res.MatchedCount() == 0 {
		return paygate.ErrPlanNotFound
	}
	return nil
}

// ==================== Subscriptions ====================

func (s *Store) CreateSubscription(ctx context.Context, sub *subscription.Subscription) error {
	m := toSubscriptionModel(sub)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("paygate/mongo: create subscription: %w", err)
	}
	return nil
}

func (s *Store) GetSubscription(ctx context.Context, subID id.SubscriptionID) (*subscription.Subscription, error) {
	var m subscriptionModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": int64(subID)}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, paygate.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("paygate/mongo: get subscription: %w", err)
	}
	return fromSubscriptionModel(&m)
}

func (s *Store) UpdateSubscription(ctx context.Context, sub *subscription.Subscription) error {
	m := toSubscriptionModel(sub)
	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("paygate/mongo: update subscription: %w", err)
	}
	if res.MatchedCount() == 0 {
		return paygate.ErrSubscriptionNotFound
	}
	return nil
}

// ListDueSubscriptions queries per active plan with a plan-specific
// last_payment cutoff.
func (s *Store) ListDueSubscriptions(ctx context.Context, now time.Time) ([]*subscription.Subscription, error) {
	var plans []planModel
	err := s.mdb.NewFind(&plans).
		Filter(bson.M{"status": string(plan.StatusActive)}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("paygate/mongo: list active plans: %w", err)
	}

	var due []*subscription.Subscription
	for i := range plans {
		cutoff := now.Add(-time.Duration(plans[i].IntervalSecs) * time.Second)

		var models []subscriptionModel
		err := s.mdb.NewFind(&models).
			Filter(bson.M{
				"plan_id":      plans[i].ID,
				"status":       string(subscription.StatusActive),
				"last_payment": bson.M{"$lte": cutoff},
			}).
			Sort(bson.D{{Key: "_id", Value: 1}}).
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("paygate/mongo: list due subscriptions: %w", err)
		}

		for j := range models {
			sub, err := fromSubscriptionModel(&models[j])
			if err != nil {
				return nil, err
			}
			due = append(due, sub)
		}
	}
	return due, nil
}

// ==================== Helpers ====================

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all paygate collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colConfig:    {},
		colMerchants: {},
		colCounters:  {},
		colLinks: {
			{Keys: bson.D{{Key: "merchant", Value: 1}}},
		},
		colPlans: {
			{Keys: bson.D{{Key: "merchant", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
		colSubscriptions: {
			{Keys: bson.D{{Key: "subscriber", Value: 1}}},
			{Keys: bson.D{{Key: "plan_id", Value: 1}, {Key: "status", Value: 1}, {Key: "last_payment", Value: 1}}},
		},
	}
}
