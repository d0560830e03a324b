package billing

import (
	"strings"
	"time"
)

// Coupon is a redeemable discount code with an optional expiry and usage cap.
type Coupon struct {
	ID            int64        `json:"id"`
	Code          string       `json:"code"`
	DiscountType  DiscountType `json:"discount_type"`
	DiscountValue int64        `json:"discount_value"` // percent for percentage type, cents for fixed_amount
	ValidUntil    *time.Time   `json:"valid_until,omitempty"`
	MaxUses       *int         `json:"max_uses,omitempty"`
	CurrentUses   int          `json:"current_uses"`
	IsActive      bool         `json:"is_active"`
}

// NormalizeCouponCode canonicalizes a coupon code for case-insensitive
// matching. Codes are stored upper-case.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsRedeemableAt reports whether the coupon can be redeemed at the given
// time: active, not expired and under its usage cap.
func (c Coupon) IsRedeemableAt(now time.Time) bool {
	if !c.IsActive {
		return false
	}
	if c.ValidUntil != nil && c.ValidUntil.Before(now) {
		return false
	}
	if c.MaxUses != nil && c.CurrentUses >= *c.MaxUses {
		return false
	}
	return true
}

// DiscountFor returns the discount amount the coupon grants on price, capped
// at the price itself so the final amount never goes negative.
func (c Coupon) DiscountFor(price Money) int64 {
	var discount int64
	switch c.DiscountType {
	case DiscountPercentage:
		discount = price.Amount * c.DiscountValue / 100
	case DiscountFixed:
		discount = c.DiscountValue
	}
	if discount > price.Amount {
		discount = price.Amount
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}

// CouponQuote is the result of validating a coupon against a plan's price.
type CouponQuote struct {
	Coupon         Coupon `json:"coupon"`
	OriginalPrice  Money  `json:"original_price"`
	DiscountAmount Money  `json:"discount_amount"`
	FinalPrice     Money  `json:"final_price"`
}
