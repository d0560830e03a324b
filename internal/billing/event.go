package billing

import (
	"time"

	"github.com/google/uuid"
)

// BillingEvent is an immutable record of a charge attempt and its outcome.
// Events are append-only; nothing in the service updates or deletes them.
type BillingEvent struct {
	ID              uuid.UUID   `json:"id"`
	UserID          uuid.UUID   `json:"user_id"`
	SubscriptionID  *uuid.UUID  `json:"subscription_id,omitempty"`
	PaymentMethodID *uuid.UUID  `json:"payment_method_id,omitempty"`
	Amount          Money       `json:"amount"`
	Status          EventStatus `json:"status"`
	TransactionID   string      `json:"transaction_id"`
	Description     string      `json:"description"`
	OccurredAt      time.Time   `json:"occurred_at"`

	// Card details of the linked payment method, denormalized for history
	// listings. Empty when the event has no payment method.
	CardLastFour string `json:"card_last_four,omitempty"`
	CardBrand    string `json:"card_brand,omitempty"`
}
