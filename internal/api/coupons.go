package api

import (
	"net/http"
	"strings"

	"github.com/cinestream/billing/internal/billing"
)

type validateCouponRequest struct {
	Code   string `json:"code"`
	PlanID int64  `json:"plan_id"`
}

func (h *Handler) validateCoupon(w http.ResponseWriter, r *http.Request) {
	var req validateCouponRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}

	var ve billing.ValidationErrors
	if strings.TrimSpace(req.Code) == "" {
		ve = append(ve, billing.ValidationError{Field: "code", Message: "is required"})
	}
	if req.PlanID <= 0 {
		ve = append(ve, billing.ValidationError{Field: "plan_id", Message: "is required"})
	}
	if len(ve) > 0 {
		respondError(w, r, h.log, ve)
		return
	}

	quote, err := h.svc.ValidateCoupon(r.Context(), req.Code, req.PlanID)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respond(w, http.StatusOK, quote)
}
