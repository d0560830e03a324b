// Package api exposes the billing core over JSON/HTTP.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cinestream/billing/internal/billing"
)

// envelope is the standard JSON response shape. Success responses carry
// data, error responses carry a machine-readable code plus message.
type envelope struct {
	Data  any          `json:"data"`
	Error *errorDetail `json:"error,omitempty"`
}

type errorDetail struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Details map[string][]string `json:"details,omitempty"`
}

func respond(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Data: data})
}

// respondError maps domain errors to stable HTTP codes. Unknown errors are
// logged and hidden behind a generic 500 so internals do not leak.
func respondError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	status := http.StatusInternalServerError
	detail := &errorDetail{Code: "internal_error", Message: "internal server error"}

	var ve billing.ValidationErrors
	var br badRequestError

	switch {
	case errors.As(err, &ve):
		status = http.StatusBadRequest
		detail.Code = "validation_failed"
		detail.Message = "request validation failed"
		detail.Details = ve.Fields()
	case errors.As(err, &br):
		status = http.StatusBadRequest
		detail.Code = "invalid_request"
		detail.Message = br.Error()
	case errors.Is(err, billing.ErrPlanNotFound):
		status = http.StatusNotFound
		detail.Code = "plan_not_found"
		detail.Message = "plan not found"
	case errors.Is(err, billing.ErrPaymentMethodNotFound):
		status = http.StatusNotFound
		detail.Code = "payment_method_not_found"
		detail.Message = "payment method not found"
	case errors.Is(err, billing.ErrSubscriptionNotFound):
		status = http.StatusNotFound
		detail.Code = "subscription_not_found"
		detail.Message = "subscription not found"
	case errors.Is(err, billing.ErrAlreadySubscribed):
		status = http.StatusConflict
		detail.Code = "already_subscribed"
		detail.Message = "user already has an active subscription"
	case errors.Is(err, billing.ErrCouponInvalid):
		status = http.StatusBadRequest
		detail.Code = "coupon_invalid"
		detail.Message = "coupon is invalid or expired"
	case errors.Is(err, billing.ErrStorageUnavailable):
		status = http.StatusServiceUnavailable
		detail.Code = "storage_unavailable"
		detail.Message = "storage temporarily unavailable, retry later"
	default:
		log.ErrorContext(r.Context(), "unhandled error", "error", err, "path", r.URL.Path)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Error: detail})
}
