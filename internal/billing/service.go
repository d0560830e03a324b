package billing

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// defaultEventLimit caps billing history listings when the caller does
	// not ask for a specific page size.
	defaultEventLimit = 50
	maxEventLimit     = 200
)

// Service implements the subscription and coupon lifecycle on top of a
// Store. All operations are parameterized by an already-authenticated user
// id; the service performs no credential checks of its own.
type Service struct {
	store Store
	now   func() time.Time
}

// ServiceOption configures optional Service settings.
type ServiceOption func(*Service)

// WithClock overrides the time source. Used by tests that need fixed time.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a Service. Panics on a nil store to fail fast during
// initialization.
func NewService(store Store, opts ...ServiceOption) *Service {
	if store == nil {
		panic("billing: Store is required")
	}

	s := &Service{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListActivePlans returns the plan catalog, cheapest first.
func (s *Service) ListActivePlans(ctx context.Context) ([]Plan, error) {
	return s.store.ListActivePlans(ctx)
}

// ValidateCoupon checks a coupon code against a plan and returns the price
// breakdown. Validation alone has no side effects; the usage counter moves
// only when a subscription is created with the coupon.
func (s *Service) ValidateCoupon(ctx context.Context, code string, planID int64) (*CouponQuote, error) {
	code = NormalizeCouponCode(code)
	if code == "" {
		return nil, ErrCouponInvalid
	}

	plan, err := s.store.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	return s.quoteCoupon(ctx, code, plan)
}

func (s *Service) quoteCoupon(ctx context.Context, code string, plan *Plan) (*CouponQuote, error) {
	coupon, err := s.store.GetCouponByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !coupon.IsRedeemableAt(s.now()) {
		return nil, ErrCouponInvalid
	}

	discount := coupon.DiscountFor(plan.Price)
	return &CouponQuote{
		Coupon:         *coupon,
		OriginalPrice:  plan.Price,
		DiscountAmount: Money{Amount: discount, Currency: plan.Price.Currency},
		FinalPrice:     plan.Price.Sub(discount),
	}, nil
}

// SubscribeParams carries the subscribe request after boundary decoding.
type SubscribeParams struct {
	PlanID          int64
	PaymentMethodID uuid.UUID
	CouponCode      string // optional
}

// Subscribe creates a subscription for the user. The active-subscription
// invariant and the coupon usage cap are both enforced inside the store's
// transaction, so two concurrent calls admit exactly one winner.
func (s *Service) Subscribe(ctx context.Context, userID uuid.UUID, params SubscribeParams) (*Subscription, error) {
	plan, err := s.store.GetPlan(ctx, params.PlanID)
	if err != nil {
		return nil, err
	}

	method, err := s.store.GetPaymentMethod(ctx, userID, params.PaymentMethodID)
	if err != nil {
		return nil, err
	}

	// Friendly rejection before touching the coupon counter. The partial
	// unique index remains the authority if another subscribe races past
	// this check.
	if existing, err := s.store.ActiveSubscription(ctx, userID); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrAlreadySubscribed
	}

	now := s.now()
	charge := plan.Price
	var couponID *int64
	if params.CouponCode != "" {
		quote, err := s.quoteCoupon(ctx, NormalizeCouponCode(params.CouponCode), plan)
		if err != nil {
			return nil, err
		}
		charge = quote.FinalPrice
		couponID = &quote.Coupon.ID
	}

	sub := &Subscription{
		ID:              uuid.New(),
		UserID:          userID,
		PlanID:          plan.ID,
		PaymentMethodID: method.ID,
		CouponID:        couponID,
		Status:          StatusActive,
		AutoRenew:       true,
		StartedAt:       now,
		PeriodEnd:       plan.PeriodEndFrom(now),
		CreatedAt:       now,
	}

	event := &BillingEvent{
		ID:              uuid.New(),
		UserID:          userID,
		SubscriptionID:  &sub.ID,
		PaymentMethodID: &method.ID,
		Amount:          charge,
		Status:          EventCompleted,
		TransactionID:   newTransactionID(),
		Description:     "Subscription to " + plan.Name,
		OccurredAt:      now,
	}

	if err := s.store.CreateSubscription(ctx, sub, event); err != nil {
		return nil, err
	}
	return sub, nil
}

// Cancel cancels the user's subscription. Immediate cancellation flips the
// status right away; otherwise only auto-renew is disabled and the external
// renewal sweep retires the row once the paid period ends.
func (s *Service) Cancel(ctx context.Context, userID, subscriptionID uuid.UUID, immediate bool) error {
	sub, err := s.store.GetSubscription(ctx, userID, subscriptionID)
	if err != nil {
		return err
	}
	if !sub.IsActive() {
		return ErrSubscriptionNotFound
	}

	sub.AutoRenew = false
	if immediate {
		now := s.now()
		sub.Status = StatusCanceled
		sub.CanceledAt = &now
	}

	return s.store.UpdateSubscription(ctx, sub)
}

// ActiveSubscription returns the user's active subscription, or nil when
// there is none.
func (s *Service) ActiveSubscription(ctx context.Context, userID uuid.UUID) (*Subscription, error) {
	return s.store.ActiveSubscription(ctx, userID)
}

// DueForExpiry lists cancel-pending subscriptions whose period has ended.
// Consumed by the out-of-process renewal sweep.
func (s *Service) DueForExpiry(ctx context.Context, now time.Time) ([]Subscription, error) {
	return s.store.DueForExpiry(ctx, now)
}

// AddPaymentMethodParams carries a new payment instrument. CardNumber is
// reduced to its last four digits before anything is persisted.
type AddPaymentMethodParams struct {
	MethodType  string
	CardNumber  string
	CardBrand   string
	ExpiryMonth int
	ExpiryYear  int
	BillingName string
	IsDefault   bool
}

func (p AddPaymentMethodParams) validate(now time.Time) error {
	var ve ValidationErrors

	if strings.TrimSpace(p.MethodType) == "" {
		ve.add("type", "is required")
	}
	digits := strings.ReplaceAll(p.CardNumber, " ", "")
	if len(digits) < 12 || len(digits) > 19 {
		ve.add("card_number", "must be 12 to 19 digits")
	} else {
		for _, r := range digits {
			if r < '0' || r > '9' {
				ve.add("card_number", "must contain only digits")
				break
			}
		}
	}
	if p.ExpiryMonth < 1 || p.ExpiryMonth > 12 {
		ve.add("expiry_month", "must be between 1 and 12")
	}
	if p.ExpiryYear < now.Year() {
		ve.add("expiry_year", "must not be in the past")
	} else if p.ExpiryYear == now.Year() && p.ExpiryMonth >= 1 && p.ExpiryMonth <= 12 && time.Month(p.ExpiryMonth) < now.Month() {
		ve.add("expiry_month", "card is expired")
	}
	if strings.TrimSpace(p.BillingName) == "" {
		ve.add("billing_name", "is required")
	}

	if len(ve) > 0 {
		return ve
	}
	return nil
}

// AddPaymentMethod stores a masked payment instrument for the user. When
// IsDefault is set the store demotes every other active method in the same
// transaction, so there is never a moment with two defaults.
func (s *Service) AddPaymentMethod(ctx context.Context, userID uuid.UUID, params AddPaymentMethodParams) (*PaymentMethod, error) {
	now := s.now()
	if err := params.validate(now); err != nil {
		return nil, err
	}

	pm := &PaymentMethod{
		ID:           uuid.New(),
		UserID:       userID,
		MethodType:   strings.TrimSpace(params.MethodType),
		CardLastFour: LastFour(strings.ReplaceAll(params.CardNumber, " ", "")),
		CardBrand:    params.CardBrand,
		ExpiryMonth:  params.ExpiryMonth,
		ExpiryYear:   params.ExpiryYear,
		BillingName:  strings.TrimSpace(params.BillingName),
		IsDefault:    params.IsDefault,
		IsActive:     true,
		CreatedAt:    now,
	}

	if err := s.store.AddPaymentMethod(ctx, pm); err != nil {
		return nil, err
	}
	return pm, nil
}

// SetDefaultPaymentMethod promotes the method to default, demoting all of
// the user's other active methods atomically.
func (s *Service) SetDefaultPaymentMethod(ctx context.Context, userID, methodID uuid.UUID) error {
	return s.store.SetDefaultPaymentMethod(ctx, userID, methodID)
}

// RemovePaymentMethod soft-deletes the method. If it was the default the
// user is left without one; another method is deliberately not promoted.
func (s *Service) RemovePaymentMethod(ctx context.Context, userID, methodID uuid.UUID) error {
	return s.store.RemovePaymentMethod(ctx, userID, methodID)
}

// ListPaymentMethods returns the user's active methods, default first, then
// newest first.
func (s *Service) ListPaymentMethods(ctx context.Context, userID uuid.UUID) ([]PaymentMethod, error) {
	return s.store.ListPaymentMethods(ctx, userID)
}

// RecordEventParams carries an externally observed payment outcome.
type RecordEventParams struct {
	UserID          uuid.UUID
	SubscriptionID  *uuid.UUID
	PaymentMethodID *uuid.UUID
	Amount          Money
	Status          EventStatus
	Description     string
}

// RecordBillingEvent appends an immutable payment-history entry.
func (s *Service) RecordBillingEvent(ctx context.Context, params RecordEventParams) (*BillingEvent, error) {
	var ve ValidationErrors
	if params.Amount.Amount < 0 {
		ve.add("amount", "must not be negative")
	}
	switch params.Status {
	case EventCompleted, EventPending, EventFailed:
	default:
		ve.add("status", "must be completed, pending or failed")
	}
	if len(ve) > 0 {
		return nil, ve
	}

	event := &BillingEvent{
		ID:              uuid.New(),
		UserID:          params.UserID,
		SubscriptionID:  params.SubscriptionID,
		PaymentMethodID: params.PaymentMethodID,
		Amount:          params.Amount,
		Status:          params.Status,
		TransactionID:   newTransactionID(),
		Description:     params.Description,
		OccurredAt:      s.now(),
	}

	if err := s.store.RecordBillingEvent(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// ListBillingEvents returns the user's payment history, newest first. A
// non-positive limit falls back to the default page size.
func (s *Service) ListBillingEvents(ctx context.Context, userID uuid.UUID, limit int) ([]BillingEvent, error) {
	if limit <= 0 {
		limit = defaultEventLimit
	}
	if limit > maxEventLimit {
		limit = maxEventLimit
	}
	return s.store.ListBillingEvents(ctx, userID, limit)
}

// IsTerminal reports whether the error must not be retried unchanged.
// Everything except transient storage failures is terminal for the request.
func IsTerminal(err error) bool {
	return err != nil && !errors.Is(err, ErrStorageUnavailable)
}

func newTransactionID() string {
	return "txn_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
