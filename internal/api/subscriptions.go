package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/cinestream/billing/internal/billing"
)

type subscribeRequest struct {
	PlanID          int64     `json:"plan_id"`
	PaymentMethodID uuid.UUID `json:"payment_method_id"`
	CouponCode      string    `json:"coupon_code,omitempty"`
}

func (req subscribeRequest) validate() error {
	var ve billing.ValidationErrors
	if req.PlanID <= 0 {
		ve = append(ve, billing.ValidationError{Field: "plan_id", Message: "is required"})
	}
	if req.PaymentMethodID == uuid.Nil {
		ve = append(ve, billing.ValidationError{Field: "payment_method_id", Message: "is required"})
	}
	if len(ve) > 0 {
		return ve
	}
	return nil
}

func (h *Handler) subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if err := req.validate(); err != nil {
		respondError(w, r, h.log, err)
		return
	}

	sub, err := h.svc.Subscribe(r.Context(), userID(r.Context()), billing.SubscribeParams{
		PlanID:          req.PlanID,
		PaymentMethodID: req.PaymentMethodID,
		CouponCode:      req.CouponCode,
	})
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respond(w, http.StatusCreated, sub)
}

type cancelRequest struct {
	SubscriptionID uuid.UUID `json:"subscription_id"`
	Immediate      bool      `json:"immediate,omitempty"`
}

func (h *Handler) cancelSubscription(w http.ResponseWriter, r *http.Request) {
	var req cancelRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if req.SubscriptionID == uuid.Nil {
		respondError(w, r, h.log, billing.ValidationErrors{
			{Field: "subscription_id", Message: "is required"},
		})
		return
	}

	if err := h.svc.Cancel(r.Context(), userID(r.Context()), req.SubscriptionID, req.Immediate); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respond(w, http.StatusOK, map[string]bool{"canceled": true})
}

func (h *Handler) activeSubscription(w http.ResponseWriter, r *http.Request) {
	sub, err := h.svc.ActiveSubscription(r.Context(), userID(r.Context()))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	// data is null when the user has no active subscription.
	respond(w, http.StatusOK, sub)
}
