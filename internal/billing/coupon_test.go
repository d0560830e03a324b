package billing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cinestream/billing/internal/billing"
)

func TestCoupon_DiscountFor(t *testing.T) {
	t.Parallel()

	price := billing.Money{Amount: 1500, Currency: "USD"} // $15.00

	t.Run("percentage discount", func(t *testing.T) {
		t.Parallel()
		coupon := billing.Coupon{DiscountType: billing.DiscountPercentage, DiscountValue: 50}

		discount := coupon.DiscountFor(price)
		assert.Equal(t, int64(750), discount)
		assert.Equal(t, int64(750), price.Sub(discount).Amount)
	})

	t.Run("fixed discount", func(t *testing.T) {
		t.Parallel()
		coupon := billing.Coupon{DiscountType: billing.DiscountFixed, DiscountValue: 1000}

		discount := coupon.DiscountFor(price)
		assert.Equal(t, int64(1000), discount)
		assert.Equal(t, int64(500), price.Sub(discount).Amount)
	})

	t.Run("fixed discount larger than price floors at zero", func(t *testing.T) {
		t.Parallel()
		coupon := billing.Coupon{DiscountType: billing.DiscountFixed, DiscountValue: 2000}

		discount := coupon.DiscountFor(price)
		assert.Equal(t, int64(1500), discount)
		assert.Equal(t, int64(0), price.Sub(discount).Amount)
	})
}

func TestCoupon_IsRedeemableAt(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("active coupon with no limits", func(t *testing.T) {
		t.Parallel()
		coupon := billing.Coupon{IsActive: true}
		assert.True(t, coupon.IsRedeemableAt(now))
	})

	t.Run("inactive coupon", func(t *testing.T) {
		t.Parallel()
		coupon := billing.Coupon{IsActive: false}
		assert.False(t, coupon.IsRedeemableAt(now))
	})

	t.Run("expired coupon", func(t *testing.T) {
		t.Parallel()
		expired := now.Add(-time.Hour)
		coupon := billing.Coupon{IsActive: true, ValidUntil: &expired}
		assert.False(t, coupon.IsRedeemableAt(now))
	})

	t.Run("at usage cap is rejected regardless of expiry", func(t *testing.T) {
		t.Parallel()
		farFuture := now.AddDate(10, 0, 0)
		maxUses := 1
		coupon := billing.Coupon{
			IsActive:    true,
			ValidUntil:  &farFuture,
			MaxUses:     &maxUses,
			CurrentUses: 1,
		}
		assert.False(t, coupon.IsRedeemableAt(now))
	})

	t.Run("under usage cap", func(t *testing.T) {
		t.Parallel()
		maxUses := 5
		coupon := billing.Coupon{IsActive: true, MaxUses: &maxUses, CurrentUses: 4}
		assert.True(t, coupon.IsRedeemableAt(now))
	})
}

func TestNormalizeCouponCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "WELCOME50", billing.NormalizeCouponCode("  welcome50 "))
	assert.Equal(t, "FIRST10", billing.NormalizeCouponCode("First10"))
	assert.Equal(t, "", billing.NormalizeCouponCode("   "))
}
