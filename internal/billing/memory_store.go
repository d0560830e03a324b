package billing

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store used by tests and local development. It
// enforces the same invariants the SQL schema does: one active subscription
// per user, guarded coupon increments and single-default payment methods,
// all under one mutex so concurrent callers see transactional behavior.
type MemoryStore struct {
	mu            sync.Mutex
	plans         map[int64]Plan
	coupons       map[string]*Coupon // keyed by normalized code
	methods       map[uuid.UUID]*PaymentMethod
	subscriptions map[uuid.UUID]*Subscription
	events        []BillingEvent
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		plans:         make(map[int64]Plan),
		coupons:       make(map[string]*Coupon),
		methods:       make(map[uuid.UUID]*PaymentMethod),
		subscriptions: make(map[uuid.UUID]*Subscription),
	}
}

// SeedPlan registers a plan in the catalog.
func (m *MemoryStore) SeedPlan(p Plan) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plans[p.ID] = p
}

// SeedCoupon registers a coupon, keyed by its normalized code.
func (m *MemoryStore) SeedCoupon(c Coupon) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.Code = NormalizeCouponCode(c.Code)
	m.coupons[c.Code] = &c
}

func (m *MemoryStore) ListActivePlans(_ context.Context) ([]Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	plans := make([]Plan, 0, len(m.plans))
	for _, p := range m.plans {
		if p.IsActive {
			plans = append(plans, p)
		}
	}
	sort.Slice(plans, func(i, j int) bool { return plans[i].Price.Amount < plans[j].Price.Amount })
	return plans, nil
}

func (m *MemoryStore) GetPlan(_ context.Context, planID int64) (*Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.plans[planID]
	if !ok || !p.IsActive {
		return nil, ErrPlanNotFound
	}
	return &p, nil
}

func (m *MemoryStore) GetCouponByCode(_ context.Context, code string) (*Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.coupons[NormalizeCouponCode(code)]
	if !ok {
		return nil, ErrCouponInvalid
	}
	cp := *c
	return &cp, nil
}

func (m *MemoryStore) CreateSubscription(_ context.Context, sub *Subscription, event *BillingEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.subscriptions {
		if existing.UserID == sub.UserID && existing.Status == StatusActive {
			return ErrAlreadySubscribed
		}
	}

	if sub.CouponID != nil {
		coupon := m.couponByID(*sub.CouponID)
		if coupon == nil || !coupon.IsRedeemableAt(sub.StartedAt) {
			return ErrCouponInvalid
		}
		coupon.CurrentUses++
	}

	cp := *sub
	m.subscriptions[sub.ID] = &cp
	if event != nil {
		m.events = append(m.events, *event)
	}
	return nil
}

func (m *MemoryStore) couponByID(id int64) *Coupon {
	for _, c := range m.coupons {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (m *MemoryStore) UpdateSubscription(_ context.Context, sub *Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.subscriptions[sub.ID]; !ok {
		return ErrSubscriptionNotFound
	}
	cp := *sub
	m.subscriptions[sub.ID] = &cp
	return nil
}

func (m *MemoryStore) ActiveSubscription(_ context.Context, userID uuid.UUID) (*Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, sub := range m.subscriptions {
		if sub.UserID == userID && sub.Status == StatusActive {
			cp := *sub
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MemoryStore) GetSubscription(_ context.Context, userID, subscriptionID uuid.UUID) (*Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sub, ok := m.subscriptions[subscriptionID]
	if !ok || sub.UserID != userID {
		return nil, ErrSubscriptionNotFound
	}
	cp := *sub
	return &cp, nil
}

func (m *MemoryStore) DueForExpiry(_ context.Context, now time.Time) ([]Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var due []Subscription
	for _, sub := range m.subscriptions {
		if sub.IsDueForExpiryAt(now) {
			due = append(due, *sub)
		}
	}
	return due, nil
}

func (m *MemoryStore) AddPaymentMethod(_ context.Context, pm *PaymentMethod) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if pm.IsDefault {
		for _, other := range m.methods {
			if other.UserID == pm.UserID && other.IsActive {
				other.IsDefault = false
			}
		}
	}
	cp := *pm
	m.methods[pm.ID] = &cp
	return nil
}

func (m *MemoryStore) GetPaymentMethod(_ context.Context, userID, methodID uuid.UUID) (*PaymentMethod, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pm, ok := m.methods[methodID]
	if !ok || pm.UserID != userID || !pm.IsActive {
		return nil, ErrPaymentMethodNotFound
	}
	cp := *pm
	return &cp, nil
}

func (m *MemoryStore) SetDefaultPaymentMethod(_ context.Context, userID, methodID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	target, ok := m.methods[methodID]
	if !ok || target.UserID != userID || !target.IsActive {
		return ErrPaymentMethodNotFound
	}

	for _, other := range m.methods {
		if other.UserID == userID && other.IsActive {
			other.IsDefault = false
		}
	}
	target.IsDefault = true
	return nil
}

func (m *MemoryStore) RemovePaymentMethod(_ context.Context, userID, methodID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	pm, ok := m.methods[methodID]
	if !ok || pm.UserID != userID || !pm.IsActive {
		return ErrPaymentMethodNotFound
	}
	pm.IsActive = false
	return nil
}

func (m *MemoryStore) ListPaymentMethods(_ context.Context, userID uuid.UUID) ([]PaymentMethod, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var methods []PaymentMethod
	for _, pm := range m.methods {
		if pm.UserID == userID && pm.IsActive {
			methods = append(methods, *pm)
		}
	}
	sort.Slice(methods, func(i, j int) bool {
		if methods[i].IsDefault != methods[j].IsDefault {
			return methods[i].IsDefault
		}
		return methods[i].CreatedAt.After(methods[j].CreatedAt)
	})
	return methods, nil
}

func (m *MemoryStore) RecordBillingEvent(_ context.Context, event *BillingEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events = append(m.events, *event)
	return nil
}

func (m *MemoryStore) ListBillingEvents(_ context.Context, userID uuid.UUID, limit int) ([]BillingEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var events []BillingEvent
	for _, ev := range m.events {
		if ev.UserID == userID {
			if pm, ok := m.methods[deref(ev.PaymentMethodID)]; ok && ev.PaymentMethodID != nil {
				ev.CardLastFour = pm.CardLastFour
				ev.CardBrand = pm.CardBrand
			}
			events = append(events, ev)
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].OccurredAt.After(events[j].OccurredAt) })
	if len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

func deref(id *uuid.UUID) uuid.UUID {
	if id == nil {
		return uuid.Nil
	}
	return *id
}

var _ Store = (*MemoryStore)(nil)
