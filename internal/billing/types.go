package billing

// Money represents a monetary amount in the smallest currency unit.
// For example, $10.99 USD would be Amount: 1099, Currency: "USD".
type Money struct {
	Amount   int64  `json:"amount"`   // Amount in smallest currency unit (cents for USD)
	Currency string `json:"currency"` // ISO 4217 currency code
}

// Sub returns m reduced by amount, floored at zero. Currency is kept from m.
func (m Money) Sub(amount int64) Money {
	result := m.Amount - amount
	if result < 0 {
		result = 0
	}
	return Money{Amount: result, Currency: m.Currency}
}

// Quality represents a plan's maximum streaming quality tier.
type Quality string

const (
	QualitySD  Quality = "sd"
	QualityHD  Quality = "hd"
	QualityUHD Quality = "uhd_hdr"
)

// DiscountType represents how a coupon's value is applied to a price.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed_amount"
)

// SubscriptionStatus represents the current state of a subscription.
type SubscriptionStatus string

const (
	StatusActive   SubscriptionStatus = "active"
	StatusCanceled SubscriptionStatus = "canceled"
	StatusExpired  SubscriptionStatus = "expired"
)

// EventStatus represents the outcome of a recorded payment attempt.
type EventStatus string

const (
	EventCompleted EventStatus = "completed"
	EventPending   EventStatus = "pending"
	EventFailed    EventStatus = "failed"
)
