package mongo

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/paygate/id"
	"github.com/xraph/paygate/link"
	"github.com/xraph/paygate/merchant"
	"github.com/xraph/paygate/plan"
	"github.com/xraph/paygate/store"
	"github.com/xraph/paygate/subscription"
	"github.com/xraph/paygate/types"
)

// Amounts are persisted as decimal strings so 256-bit values survive the
// round trip without loss.

// ==================== Config model ====================

type configModel struct {
	grove.BaseModel `grove:"table:paygate_config"`

	ID        int       `grove:"id,pk"      bson:"_id"`
	Owner     string    `grove:"owner"      bson:"owner"`
	Token     string    `grove:"token"      bson:"token"`
	CreatedAt time.Time `grove:"created_at" bson:"created_at"`
	UpdatedAt time.Time `grove:"updated_at" bson:"updated_at"`
}

func toConfigModel(c *store.Config) *configModel {
	return &configModel{
		ID:        1,
		Owner:     c.Owner.String(),
		Token:     c.Token.String(),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func fromConfigModel(m *configModel) (*store.Config, error) {
	owner, err := types.ParseAddress(m.Owner)
	if err != nil {
		return nil, err
	}
	token, err := types.ParseAddress(m.Token)
	if err != nil {
		return nil, err
	}

	return &store.Config{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		Owner: owner,
		Token: token,
	}, nil
}

// ==================== Merchant model ====================

type merchantModel struct {
	grove.BaseModel `grove:"table:paygate_merchants"`

	Address   string    `grove:"address,pk" bson:"_id"`
	CreatedAt time.Time `grove:"created_at" bson:"created_at"`
	UpdatedAt time.Time `grove:"updated_at" bson:"updated_at"`
}

func toMerchantModel(m *merchant.Merchant) *merchantModel {
	return &merchantModel{
		Address:   m.Address.String(),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// ==================== Payment link model ====================

type linkModel struct {
	grove.BaseModel `grove:"table:paygate_links"`

	ID          int64     `grove:"id,pk"       bson:"_id"`
	Merchant    string    `grove:"merchant"    bson:"merchant"`
	Amount      string    `grove:"amount"      bson:"amount"`
	Status      string    `grove:"status"      bson:"status"`
	Description string    `grove:"description" bson:"description"`
	CreatedAt   time.Time `grove:"created_at"  bson:"created_at"`
	UpdatedAt   time.Time `grove:"updated_at"  bson:"updated_at"`
}

func toLinkModel(l *link.PaymentLink) *linkModel {
	return &linkModel{
		ID:          int64(l.ID),
		Merchant:    l.Merchant.String(),
		Amount:      l.Amount.String(),
		Status:      string(l.Status),
		Description: l.Description,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

func fromLinkModel(m *linkModel) (*link.PaymentLink, error) {
	amount, err := types.ParseAmount(m.Amount)
	if err != nil {
		return nil, err
	}
	merchantAddr, err := types.ParseAddress(m.Merchant)
	if err != nil {
		return nil, err
	}

	return &link.PaymentLink{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:          id.LinkID(m.ID),
		Merchant:    merchantAddr,
		Amount:      amount,
		Status:      link.Status(m.Status),
		Description: m.Description,
	}, nil
}

// ==================== Subscription plan model ====================

type planModel struct {
	grove.BaseModel `grove:"table:paygate_plans"`

	ID           int64     `grove:"id,pk"         bson:"_id"`
	Merchant     string    `grove:"merchant"      bson:"merchant"`
	Amount       string    `grove:"amount"        bson:"amount"`
	IntervalSecs int64     `grove:"interval_secs" bson:"interval_secs"`
	Status       string    `grove:"status"        bson:"status"`
	Name         string    `grove:"name"          bson:"name"`
	CreatedAt    time.Time `grove:"created_at"    bson:"created_at"`
	UpdatedAt    time.Time `grove:"updated_at"    bson:"updated_at"`
}

func toPlanModel(p *plan.Plan) *planModel {
	return &planModel{
		ID:           int64(p.ID),
		Merchant:     p.Merchant.String(),
		Amount:       p.Amount.String(),
		IntervalSecs: int64(p.Interval),
		Status:       string(p.Status),
		Name:         p.Name,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func fromPlanModel(m *planModel) (*plan.Plan, error) {
	amount, err := types.ParseAmount(m.Amount)
	if err != nil {
		return nil, err
	}
	merchantAddr, err := types.ParseAddress(m.Merchant)
	if err != nil {
		return nil, err
	}

	return &plan.Plan{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:       id.PlanID(m.ID),
		Merchant: merchantAddr,
		Amount:   amount,
		Interval: uint32(m.IntervalSecs),
		Status:   plan.Status(m.Status),
		Name:     m.Name,
	}, nil
}

// ==================== Subscription model ====================

type subscriptionModel struct {
	grove.BaseModel `grove:"table:paygate_subscriptions"`

	ID          int64     `grove:"id,pk"        bson:"_id"`
	Subscriber  string    `grove:"subscriber"   bson:"subscriber"`
	PlanID      int64     `grove:"plan_id"      bson:"plan_id"`
	StartTime   time.Time `grove:"start_time"   bson:"start_time"`
	LastPayment time.Time `grove:"last_payment" bson:"last_payment"`
	Status      string    `grove:"status"       bson:"status"`
	CreatedAt   time.Time `grove:"created_at"   bson:"created_at"`
	UpdatedAt   time.Time `grove:"updated_at"   bson:"updated_at"`
}

func toSubscriptionModel(s *subscription.Subscription) *subscriptionModel {
	return &subscriptionModel{
		ID:          int64(s.ID),
		Subscriber:  s.Subscriber.String(),
		PlanID:      int64(s.PlanID),
		StartTime:   s.StartTime,
		LastPayment: s.LastPayment,
		Status:      string(s.Status),
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func fromSubscriptionModel(m *subscriptionModel) (*subscription.Subscription, error) {
	subscriber, err := types.ParseAddress(m.Subscriber)
	if err != nil {
		return nil, err
	}

	return &subscription.Subscription{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:          id.SubscriptionID(m.ID),
		Subscriber:  subscriber,
		PlanID:      id.PlanID(m.PlanID),
		StartTime:   m.StartTime,
		LastPayment: m.LastPayment,
		Status:      subscription.Status(m.Status),
	}, nil
}
