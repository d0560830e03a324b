package billing

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrPlanNotFound          = errors.New("plan not found")
	ErrCouponInvalid         = errors.New("coupon is invalid or expired")
	ErrPaymentMethodNotFound = errors.New("payment method not found")
	ErrSubscriptionNotFound  = errors.New("subscription not found")
	ErrAlreadySubscribed     = errors.New("user already has an active subscription")

	// ErrStorageUnavailable marks transient storage failures. It is the only
	// error class callers may retry unchanged.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// ValidationError describes a single rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

// ValidationErrors aggregates boundary validation failures for one request.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(ve))
	for _, e := range ve {
		parts = append(parts, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Fields returns messages keyed by field, shaped for JSON error details.
func (ve ValidationErrors) Fields() map[string][]string {
	if len(ve) == 0 {
		return nil
	}
	fields := make(map[string][]string, len(ve))
	for _, e := range ve {
		fields[e.Field] = append(fields[e.Field], e.Message)
	}
	return fields
}

func (ve *ValidationErrors) add(field, message string) {
	*ve = append(*ve, ValidationError{Field: field, Message: message})
}
