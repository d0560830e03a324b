package billing

import (
	"time"

	"github.com/google/uuid"
)

// PaymentMethod is a stored payment instrument. Only the last four digits of
// the card number are ever persisted; removal is a soft delete so billing
// history keeps its references.
type PaymentMethod struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	MethodType   string    `json:"type"`
	CardLastFour string    `json:"card_last_four"`
	CardBrand    string    `json:"card_brand"`
	ExpiryMonth  int       `json:"expiry_month"`
	ExpiryYear   int       `json:"expiry_year"`
	BillingName  string    `json:"billing_name"`
	IsDefault    bool      `json:"is_default"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// LastFour reduces a full card number to the stored suffix. The full number
// must not outlive the call that received it.
func LastFour(cardNumber string) string {
	if len(cardNumber) <= 4 {
		return cardNumber
	}
	return cardNumber[len(cardNumber)-4:]
}
