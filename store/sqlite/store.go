// Package sqlite implements the store interface using SQLite via Grove ORM.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/sqlitedriver"
	"github.com/xraph/grove/migrate"

	paygate "github.com/xraph/paygate"
	"github.com/xraph/paygate/id"
	"github.com/xraph/paygate/link"
	"github.com/xraph/paygate/merchant"
	"github.com/xraph/paygate/plan"
	paygatestore "github.com/xraph/paygate/store"
	"github.com/xraph/paygate/subscription"
	"github.com/xraph/paygate/types"
)

// compile-time interface check
var _ paygatestore.Store = (*Store)(nil)

// Store implements store.Store using SQLite via Grove ORM.
type Store struct {
	db  *grove.DB
	sdb *sqlitedriver.SqliteDB
}

// New creates a new SQLite store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		sdb: sqlitedriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.sdb)
	if err != nil {
		return fmt.Errorf("paygate/sqlite: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("paygate/sqlite: migration failed: %w", err)
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
	if _, err := s.sdb.NewInsert(m).Exec(ctx); err != nil {
		// The fixed primary key makes a second insert a constraint violation.
		return paygate.ErrAlreadyInitialized
	}
	return nil
}

func (s *Store) GetConfig(ctx context.Context) (*paygatestore.Config, error) {
	m := new(configModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", 1).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, paygate.ErrNotInitialized
		}
		return nil, err
	}
	return fromConfigModel(m)
}

// ==================== Merchant registry ====================

func (s *Store) AddMerchant(ctx context.Context, m *merchant.Merchant) error {
	model := toMerchantModel(m)
	if _, err := s.sdb.NewInsert(model).Exec(ctx); err != nil {
		return paygate.ErrMerchantRegistered
	}
	return nil
}

func (s *Store) RemoveMerchant(ctx context.Context, addr types.Address) error {
	res, err := s.sdb.NewDelete((*merchantModel)(nil)).
		Where("address = ?", addr.String()).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return paygate.ErrMerchantNotRegistered
	}
	return nil
}

func (s *Store) IsMerchant(ctx context.Context, addr types.Address) (bool, error) {
	m := new(merchantModel)
	err := s.sdb.NewSelect(m).
		Where("address = ?", addr.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return false, nil
		}
		return false, err
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

// nextCounter atomically increments and returns a named counter.
func (s *Store) nextCounter(ctx context.Context, name string) (uint32, error) {
	var value int64
	err := s.sdb.NewRaw(`
		UPDATE paygate_counters SET value = value + 1 WHERE name = ? RETURNING value
	`, name).Scan(ctx, &value)
	if err != nil {
		return 0, fmt.Errorf("paygate/sqlite: increment %s counter: %w", name, err)
	}
	return uint32(value), nil
}

// ==================== Payment links ====================

func (s *Store) CreateLink(ctx context.Context, l *link.PaymentLink) error {
	m := toLinkModel(l)
	_, err := s.sdb.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetLink(ctx context.Context, linkID id.LinkID) (*link.PaymentLink, error) {
	m := new(linkModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", int64(linkID)).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, paygate.ErrLinkNotFound
		}
		return nil, err
	}
	return fromLinkModel(m)
}

func (s *Store) UpdateLink(ctx context.Context, l *link.PaymentLink) error {
	m := toLinkModel(l)
	res, err := s.sdb.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return paygate.ErrLinkNotFound
	}
	return nil
}

// ==================== Subscription plans ====================

func (s *Store) CreatePlan(ctx context.Context, p *plan.Plan) error {
	m := toPlanModel(p)
	_, err := s.sdb.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetPlan(ctx context.Context, planID id.PlanID) (*plan.Plan, error) {
	m := new(planModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", int64(planID)).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, paygate.ErrPlanNotFound
		}
		return nil, err
	}
	return fromPlanModel(m)
}

func (s *Store) UpdatePlan(ctx context.Context, p *plan.Plan) error {
	m := toPlanModel(p)
	res, err := s.sdb.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return paygate.ErrPlanNotFound
	}
	return nil
}

// ==================== Subscriptions ====================

func (s *Store) CreateSubscription(ctx context.Context, sub *subscription.Subscription) error {
	m := toSubscriptionModel(sub)
	_, err := s.sdb.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetSubscription(ctx context.Context, subID id.SubscriptionID) (*subscription.Subscription, error) {
	m := new(subscriptionModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", int64(subID)).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, paygate.ErrSubscriptionNotFound
		}
		return nil, err
	}
	return fromSubscriptionModel(m)
}

func (s *Store) UpdateSubscription(ctx context.Context, sub *subscription.Subscription) error {
	m := toSubscriptionModel(sub)
	res, err := s.sdb.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return paygate.ErrSubscriptionNotFound
	}
	return nil
}

// ListDueSubscriptions queries per active plan so each lookup hits the
// (plan_id, status, last_payment) index with a plan-specific cutoff.
func (s *Store) ListDueSubscriptions(ctx context.Context, now time.Time) ([]*subscription.Subscription, error) {
	var plans []planModel
	err := s.sdb.NewSelect(&plans).
		Where("status = ?", string(plan.StatusActive)).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	var due []*subscription.Subscription
	for i := range plans {
		cutoff := now.Add(-time.Duration(plans[i].IntervalSecs) * time.Second)

		var models []subscriptionModel
		err := s.sdb.NewSelect(&models).
			Where("plan_id = ?", plans[i].ID).
			Where("status = ?", string(subscription.StatusActive)).
			Where("last_payment <= ?", cutoff).
			OrderExpr("id ASC").
			Scan(ctx)
		if err != nil {
			return nil, err
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

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
