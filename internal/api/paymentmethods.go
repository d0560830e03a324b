package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cinestream/billing/internal/billing"
)

type addPaymentMethodRequest struct {
	MethodType  string `json:"type"`
	CardNumber  string `json:"card_number"`
	CardBrand   string `json:"card_brand,omitempty"`
	ExpiryMonth int    `json:"expiry_month"`
	ExpiryYear  int    `json:"expiry_year"`
	BillingName string `json:"billing_name"`
	IsDefault   bool   `json:"is_default,omitempty"`
}

func (h *Handler) addPaymentMethod(w http.ResponseWriter, r *http.Request) {
	var req addPaymentMethodRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}

	pm, err := h.svc.AddPaymentMethod(r.Context(), userID(r.Context()), billing.AddPaymentMethodParams{
		MethodType:  req.MethodType,
		CardNumber:  req.CardNumber,
		CardBrand:   req.CardBrand,
		ExpiryMonth: req.ExpiryMonth,
		ExpiryYear:  req.ExpiryYear,
		BillingName: req.BillingName,
		IsDefault:   req.IsDefault,
	})
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respond(w, http.StatusCreated, pm)
}

// methodIDParam parses the {id} path segment.
func methodIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, billing.ValidationErrors{
			{Field: "id", Message: "must be a valid UUID"},
		}
	}
	return id, nil
}

func (h *Handler) setDefaultPaymentMethod(w http.ResponseWriter, r *http.Request) {
	id, err := methodIDParam(r)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	if err := h.svc.SetDefaultPaymentMethod(r.Context(), userID(r.Context()), id); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respond(w, http.StatusOK, map[string]bool{"default": true})
}

func (h *Handler) removePaymentMethod(w http.ResponseWriter, r *http.Request) {
	id, err := methodIDParam(r)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	if err := h.svc.RemovePaymentMethod(r.Context(), userID(r.Context()), id); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respond(w, http.StatusOK, map[string]bool{"removed": true})
}

func (h *Handler) listPaymentMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := h.svc.ListPaymentMethods(r.Context(), userID(r.Context()))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respond(w, http.StatusOK, methods)
}
