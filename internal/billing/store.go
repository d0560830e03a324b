package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store is the persistence contract for the billing core. Implementations
// own the transactional discipline: methods documented as atomic must not be
// decomposable into racy read-then-write sequences.
//
// Lookup methods return the package's sentinel errors (ErrPlanNotFound,
// ErrPaymentMethodNotFound, ...) for missing or unowned rows, and wrap
// transient failures with ErrStorageUnavailable.
type Store interface {
	// ListActivePlans returns active plans ordered by ascending price.
	ListActivePlans(ctx context.Context) ([]Plan, error)
	// GetPlan returns the active plan with the given id or ErrPlanNotFound.
	GetPlan(ctx context.Context, planID int64) (*Plan, error)

	// GetCouponByCode returns the coupon for a normalized code, or
	// ErrCouponInvalid when no such code exists.
	GetCouponByCode(ctx context.Context, code string) (*Coupon, error)

	// CreateSubscription persists sub and its billing event in a single
	// transaction. When sub.CouponID is set the coupon's usage counter is
	// incremented in the same transaction, guarded by the cap: a capped-out
	// coupon fails the whole transaction with ErrCouponInvalid. A concurrent
	// active subscription for the same user fails with ErrAlreadySubscribed.
	CreateSubscription(ctx context.Context, sub *Subscription, event *BillingEvent) error
	// UpdateSubscription persists status/auto-renew changes.
	UpdateSubscription(ctx context.Context, sub *Subscription) error
	// ActiveSubscription returns the user's active subscription or nil.
	ActiveSubscription(ctx context.Context, userID uuid.UUID) (*Subscription, error)
	// GetSubscription returns the user's subscription by id, or
	// ErrSubscriptionNotFound when it does not exist or is not theirs.
	GetSubscription(ctx context.Context, userID, subscriptionID uuid.UUID) (*Subscription, error)
	// DueForExpiry returns cancel-pending subscriptions whose period end has
	// passed, for the external renewal sweep.
	DueForExpiry(ctx context.Context, now time.Time) ([]Subscription, error)

	// AddPaymentMethod inserts pm; when pm.IsDefault it demotes the user's
	// other active methods in the same transaction.
	AddPaymentMethod(ctx context.Context, pm *PaymentMethod) error
	// GetPaymentMethod returns the user's active method by id, or
	// ErrPaymentMethodNotFound.
	GetPaymentMethod(ctx context.Context, userID, methodID uuid.UUID) (*PaymentMethod, error)
	// SetDefaultPaymentMethod atomically demotes all of the user's active
	// methods and promotes the target.
	SetDefaultPaymentMethod(ctx context.Context, userID, methodID uuid.UUID) error
	// RemovePaymentMethod soft-deletes the method.
	RemovePaymentMethod(ctx context.Context, userID, methodID uuid.UUID) error
	// ListPaymentMethods returns the user's active methods, default first,
	// then newest first.
	ListPaymentMethods(ctx context.Context, userID uuid.UUID) ([]PaymentMethod, error)

	// RecordBillingEvent appends an event. Events are never updated.
	RecordBillingEvent(ctx context.Context, event *BillingEvent) error
	// ListBillingEvents returns up to limit events for the user, newest
	// first, with card details joined in where available.
	ListBillingEvents(ctx context.Context, userID uuid.UUID, limit int) ([]BillingEvent, error)
}
