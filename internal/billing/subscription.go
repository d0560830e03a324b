package billing

import (
	"time"

	"github.com/google/uuid"
)

// Subscription grants a user access to the catalog under a plan. A user has
// at most one subscription with StatusActive at any instant; the storage
// layer enforces that invariant.
type Subscription struct {
	ID              uuid.UUID          `json:"id"`
	UserID          uuid.UUID          `json:"user_id"`
	PlanID          int64              `json:"plan_id"`
	PaymentMethodID uuid.UUID          `json:"payment_method_id"`
	CouponID        *int64             `json:"coupon_id,omitempty"`
	Status          SubscriptionStatus `json:"status"`
	AutoRenew       bool               `json:"auto_renew"`
	StartedAt       time.Time          `json:"started_at"`
	PeriodEnd       time.Time          `json:"period_end"`
	CanceledAt      *time.Time         `json:"canceled_at,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
}

func (s *Subscription) IsActive() bool {
	return s.Status == StatusActive
}

// IsCancelPending reports whether the subscription was cancelled at period
// end: still active, but renewal disabled.
func (s *Subscription) IsCancelPending() bool {
	return s.Status == StatusActive && !s.AutoRenew
}

// IsDueForExpiryAt reports whether the external renewal sweep should flip
// the subscription to expired/canceled at the given time.
func (s *Subscription) IsDueForExpiryAt(now time.Time) bool {
	return s.IsCancelPending() && !now.Before(s.PeriodEnd)
}
