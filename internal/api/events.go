package api

import (
	"net/http"
	"strconv"

	"github.com/cinestream/billing/internal/billing"
)

func (h *Handler) listBillingEvents(w http.ResponseWriter, r *http.Request) {
	var limit int
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondError(w, r, h.log, billing.ValidationErrors{
				{Field: "limit", Message: "must be a positive integer"},
			})
			return
		}
		limit = parsed
	}

	events, err := h.svc.ListBillingEvents(r.Context(), userID(r.Context()), limit)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respond(w, http.StatusOK, events)
}
