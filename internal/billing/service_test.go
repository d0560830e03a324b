package billing_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinestream/billing/internal/billing"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// newFixture seeds a store with the demo catalog and one payment method for
// the given user.
func newFixture(t *testing.T, userID uuid.UUID) (*billing.Service, *billing.MemoryStore, uuid.UUID) {
	t.Helper()

	store := billing.NewMemoryStore()
	store.SeedPlan(billing.Plan{
		ID:         1,
		Name:       "Standard",
		Price:      billing.Money{Amount: 1500, Currency: "USD"},
		Quality:    billing.QualityHD,
		MaxScreens: 2,
		IsActive:   true,
	})
	store.SeedPlan(billing.Plan{
		ID:       2,
		Name:     "Basic",
		Price:    billing.Money{Amount: 900, Currency: "USD"},
		Quality:  billing.QualitySD,
		IsActive: true,
	})
	store.SeedPlan(billing.Plan{
		ID:       3,
		Name:     "Legacy",
		Price:    billing.Money{Amount: 500, Currency: "USD"},
		Quality:  billing.QualitySD,
		IsActive: false,
	})
	store.SeedCoupon(billing.Coupon{
		ID:            10,
		Code:          "WELCOME50",
		DiscountType:  billing.DiscountPercentage,
		DiscountValue: 50,
		IsActive:      true,
	})

	svc := billing.NewService(store, billing.WithClock(func() time.Time { return fixedNow }))

	method, err := svc.AddPaymentMethod(context.Background(), userID, billing.AddPaymentMethodParams{
		MethodType:  "credit_card",
		CardNumber:  "4111111111111111",
		CardBrand:   "visa",
		ExpiryMonth: 12,
		ExpiryYear:  fixedNow.Year() + 2,
		BillingName: "Test User",
		IsDefault:   true,
	})
	require.NoError(t, err)

	return svc, store, method.ID
}

func TestService_ListActivePlans(t *testing.T) {
	t.Parallel()

	svc, _, _ := newFixture(t, uuid.New())

	plans, err := svc.ListActivePlans(context.Background())
	require.NoError(t, err)
	require.Len(t, plans, 2, "inactive plans must be excluded")
	assert.Equal(t, "Basic", plans[0].Name, "plans must be ordered by ascending price")
	assert.Equal(t, "Standard", plans[1].Name)
}

func TestService_ValidateCoupon(t *testing.T) {
	t.Parallel()

	t.Run("computes discount breakdown", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newFixture(t, uuid.New())

		quote, err := svc.ValidateCoupon(context.Background(), "welcome50", 1)
		require.NoError(t, err)
		assert.Equal(t, int64(1500), quote.OriginalPrice.Amount)
		assert.Equal(t, int64(750), quote.DiscountAmount.Amount)
		assert.Equal(t, int64(750), quote.FinalPrice.Amount)
	})

	t.Run("unknown plan", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newFixture(t, uuid.New())

		_, err := svc.ValidateCoupon(context.Background(), "WELCOME50", 999)
		assert.ErrorIs(t, err, billing.ErrPlanNotFound)
	})

	t.Run("inactive plan", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newFixture(t, uuid.New())

		_, err := svc.ValidateCoupon(context.Background(), "WELCOME50", 3)
		assert.ErrorIs(t, err, billing.ErrPlanNotFound)
	})

	t.Run("unknown code", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newFixture(t, uuid.New())

		_, err := svc.ValidateCoupon(context.Background(), "NOPE", 1)
		assert.ErrorIs(t, err, billing.ErrCouponInvalid)
	})

	t.Run("capped coupon", func(t *testing.T) {
		t.Parallel()
		svc, store, _ := newFixture(t, uuid.New())
		maxUses := 1
		store.SeedCoupon(billing.Coupon{
			ID: 11, Code: "ONCE", DiscountType: billing.DiscountFixed,
			DiscountValue: 100, MaxUses: &maxUses, CurrentUses: 1, IsActive: true,
		})

		_, err := svc.ValidateCoupon(context.Background(), "ONCE", 1)
		assert.ErrorIs(t, err, billing.ErrCouponInvalid)
	})

	t.Run("validation has no side effects", func(t *testing.T) {
		t.Parallel()
		svc, store, _ := newFixture(t, uuid.New())

		_, err := svc.ValidateCoupon(context.Background(), "WELCOME50", 1)
		require.NoError(t, err)

		coupon, err := store.GetCouponByCode(context.Background(), "WELCOME50")
		require.NoError(t, err)
		assert.Equal(t, 0, coupon.CurrentUses)
	})
}

func TestService_Subscribe(t *testing.T) {
	t.Parallel()

	t.Run("creates active subscription with 30 day period", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		svc, _, methodID := newFixture(t, userID)

		sub, err := svc.Subscribe(context.Background(), userID, billing.SubscribeParams{
			PlanID:          1,
			PaymentMethodID: methodID,
		})
		require.NoError(t, err)
		assert.Equal(t, billing.StatusActive, sub.Status)
		assert.True(t, sub.AutoRenew)
		assert.Equal(t, fixedNow, sub.StartedAt)
		assert.Equal(t, fixedNow.Add(30*24*time.Hour), sub.PeriodEnd)
		assert.Nil(t, sub.CouponID)
	})

	t.Run("records a billing event for the charge", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		svc, _, methodID := newFixture(t, userID)

		sub, err := svc.Subscribe(context.Background(), userID, billing.SubscribeParams{
			PlanID:          1,
			PaymentMethodID: methodID,
		})
		require.NoError(t, err)

		events, err := svc.ListBillingEvents(context.Background(), userID, 0)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, int64(1500), events[0].Amount.Amount)
		assert.Equal(t, billing.EventCompleted, events[0].Status)
		assert.Equal(t, sub.ID, *events[0].SubscriptionID)
		assert.NotEmpty(t, events[0].TransactionID)
	})

	t.Run("coupon reduces the charge and is redeemed", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		svc, store, methodID := newFixture(t, userID)

		sub, err := svc.Subscribe(context.Background(), userID, billing.SubscribeParams{
			PlanID:          1,
			PaymentMethodID: methodID,
			CouponCode:      "welcome50",
		})
		require.NoError(t, err)
		require.NotNil(t, sub.CouponID)
		assert.Equal(t, int64(10), *sub.CouponID)

		coupon, err := store.GetCouponByCode(context.Background(), "WELCOME50")
		require.NoError(t, err)
		assert.Equal(t, 1, coupon.CurrentUses)

		events, err := svc.ListBillingEvents(context.Background(), userID, 0)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, int64(750), events[0].Amount.Amount)
	})

	t.Run("rejects second active subscription", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		svc, _, methodID := newFixture(t, userID)

		_, err := svc.Subscribe(context.Background(), userID, billing.SubscribeParams{PlanID: 1, PaymentMethodID: methodID})
		require.NoError(t, err)

		_, err = svc.Subscribe(context.Background(), userID, billing.SubscribeParams{PlanID: 2, PaymentMethodID: methodID})
		assert.ErrorIs(t, err, billing.ErrAlreadySubscribed)

		sub, err := svc.ActiveSubscription(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), sub.PlanID, "losing subscribe must not replace the winner")
	})

	t.Run("unknown plan", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		svc, _, methodID := newFixture(t, userID)

		_, err := svc.Subscribe(context.Background(), userID, billing.SubscribeParams{PlanID: 999, PaymentMethodID: methodID})
		assert.ErrorIs(t, err, billing.ErrPlanNotFound)
	})

	t.Run("payment method of another user", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		svc, _, _ := newFixture(t, userID)

		otherMethod, err := svc.AddPaymentMethod(context.Background(), uuid.New(), billing.AddPaymentMethodParams{
			MethodType: "credit_card", CardNumber: "5555444433331111", CardBrand: "mastercard",
			ExpiryMonth: 6, ExpiryYear: fixedNow.Year() + 1, BillingName: "Someone Else",
		})
		require.NoError(t, err)

		_, err = svc.Subscribe(context.Background(), userID, billing.SubscribeParams{PlanID: 1, PaymentMethodID: otherMethod.ID})
		assert.ErrorIs(t, err, billing.ErrPaymentMethodNotFound)
	})

	t.Run("invalid coupon aborts subscription", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		svc, _, methodID := newFixture(t, userID)

		_, err := svc.Subscribe(context.Background(), userID, billing.SubscribeParams{
			PlanID: 1, PaymentMethodID: methodID, CouponCode: "NOPE",
		})
		assert.ErrorIs(t, err, billing.ErrCouponInvalid)

		sub, err := svc.ActiveSubscription(context.Background(), userID)
		require.NoError(t, err)
		assert.Nil(t, sub)
	})

	t.Run("concurrent subscribes admit exactly one winner", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		svc, _, methodID := newFixture(t, userID)

		const attempts = 16
		var wg sync.WaitGroup
		errs := make([]error, attempts)
		for i := range attempts {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = svc.Subscribe(context.Background(), userID, billing.SubscribeParams{
					PlanID: 1, PaymentMethodID: methodID,
				})
			}()
		}
		wg.Wait()

		var wins, conflicts int
		for _, err := range errs {
			switch {
			case err == nil:
				wins++
			default:
				require.ErrorIs(t, err, billing.ErrAlreadySubscribed)
				conflicts++
			}
		}
		assert.Equal(t, 1, wins)
		assert.Equal(t, attempts-1, conflicts)
	})

	t.Run("concurrent redemptions of a nearly capped coupon admit one winner", func(t *testing.T) {
		t.Parallel()
		svc, store, _ := newFixture(t, uuid.New())
		maxUses := 1
		store.SeedCoupon(billing.Coupon{
			ID: 12, Code: "LASTONE", DiscountType: billing.DiscountFixed,
			DiscountValue: 100, MaxUses: &maxUses, IsActive: true,
		})

		const attempts = 8
		var wg sync.WaitGroup
		errs := make([]error, attempts)
		for i := range attempts {
			wg.Add(1)
			go func() {
				defer wg.Done()
				userID := uuid.New()
				method, err := svc.AddPaymentMethod(context.Background(), userID, billing.AddPaymentMethodParams{
					MethodType: "credit_card", CardNumber: "4111111111111111", CardBrand: "visa",
					ExpiryMonth: 1, ExpiryYear: fixedNow.Year() + 1, BillingName: "Racer",
				})
				if err != nil {
					errs[i] = err
					return
				}
				_, errs[i] = svc.Subscribe(context.Background(), userID, billing.SubscribeParams{
					PlanID: 1, PaymentMethodID: method.ID, CouponCode: "LASTONE",
				})
			}()
		}
		wg.Wait()

		var wins int
		for _, err := range errs {
			if err == nil {
				wins++
			} else {
				require.ErrorIs(t, err, billing.ErrCouponInvalid)
			}
		}
		assert.Equal(t, 1, wins)

		coupon, err := store.GetCouponByCode(context.Background(), "LASTONE")
		require.NoError(t, err)
		assert.Equal(t, 1, coupon.CurrentUses, "usage count must never exceed the cap")
	})
}

func TestService_Cancel(t *testing.T) {
	t.Parallel()

	subscribe := func(t *testing.T, svc *billing.Service, userID uuid.UUID, methodID uuid.UUID) *billing.Subscription {
		t.Helper()
		sub, err := svc.Subscribe(context.Background(), userID, billing.SubscribeParams{PlanID: 1, PaymentMethodID: methodID})
		require.NoError(t, err)
		return sub
	}

	t.Run("deferred cancel keeps access until period end", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		svc, _, methodID := newFixture(t, userID)
		sub := subscribe(t, svc, userID, methodID)

		require.NoError(t, svc.Cancel(context.Background(), userID, sub.ID, false))

		got, err := svc.ActiveSubscription(context.Background(), userID)
		require.NoError(t, err)
		require.NotNil(t, got, "status must remain active")
		assert.False(t, got.AutoRenew)
		assert.Equal(t, sub.PeriodEnd, got.PeriodEnd, "period end must not change")
		assert.True(t, got.IsCancelPending())
	})

	t.Run("deferred cancel shows up in DueForExpiry only after period end", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		svc, _, methodID := newFixture(t, userID)
		sub := subscribe(t, svc, userID, methodID)
		require.NoError(t, svc.Cancel(context.Background(), userID, sub.ID, false))

		due, err := svc.DueForExpiry(context.Background(), sub.PeriodEnd.Add(-time.Minute))
		require.NoError(t, err)
		assert.Empty(t, due)

		due, err = svc.DueForExpiry(context.Background(), sub.PeriodEnd)
		require.NoError(t, err)
		require.Len(t, due, 1)
		assert.Equal(t, sub.ID, due[0].ID)
	})

	t.Run("immediate cancel flips status now", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		svc, _, methodID := newFixture(t, userID)
		sub := subscribe(t, svc, userID, methodID)

		require.NoError(t, svc.Cancel(context.Background(), userID, sub.ID, true))

		got, err := svc.ActiveSubscription(context.Background(), userID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("unknown subscription", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		svc, _, _ := newFixture(t, userID)

		err := svc.Cancel(context.Background(), userID, uuid.New(), true)
		assert.ErrorIs(t, err, billing.ErrSubscriptionNotFound)
	})

	t.Run("subscription of another user", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		svc, _, methodID := newFixture(t, userID)
		sub := subscribe(t, svc, userID, methodID)

		err := svc.Cancel(context.Background(), uuid.New(), sub.ID, true)
		assert.ErrorIs(t, err, billing.ErrSubscriptionNotFound)
	})

	t.Run("already canceled subscription", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		svc, _, methodID := newFixture(t, userID)
		sub := subscribe(t, svc, userID, methodID)
		require.NoError(t, svc.Cancel(context.Background(), userID, sub.ID, true))

		err := svc.Cancel(context.Background(), userID, sub.ID, true)
		assert.ErrorIs(t, err, billing.ErrSubscriptionNotFound)
	})
}
