package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/cinestream/billing/internal/billing"
)

// Handler holds the dependencies of the HTTP layer.
type Handler struct {
	svc *billing.Service
	log *slog.Logger
}

// RouterOptions configures optional router behavior.
type RouterOptions struct {
	// RateLimit, when set, is applied to the /api subtree.
	RateLimit func(http.Handler) http.Handler
	// Health, when set, is mounted at /health.
	Health http.HandlerFunc
	// RequestTimeout bounds request handling; defaults to 30s.
	RequestTimeout time.Duration
}

// NewRouter builds the service's HTTP routing tree.
func NewRouter(svc *billing.Service, log *slog.Logger, opts RouterOptions) chi.Router {
	h := &Handler{svc: svc, log: log}

	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))

	if opts.Health != nil {
		r.Get("/health", opts.Health)
	}

	r.Route("/api", func(r chi.Router) {
		if opts.RateLimit != nil {
			r.Use(opts.RateLimit)
		}

		// The plan catalog is public; everything else requires identity.
		r.Get("/plans", h.listPlans)

		r.Group(func(r chi.Router) {
			r.Use(requireUser)

			r.Get("/subscriptions/active", h.activeSubscription)
			r.Post("/subscriptions", h.subscribe)
			r.Post("/subscriptions/cancel", h.cancelSubscription)

			r.Post("/coupons/validate", h.validateCoupon)

			r.Route("/payment-methods", func(r chi.Router) {
				r.Get("/", h.listPaymentMethods)
				r.Post("/", h.addPaymentMethod)
				r.Put("/{id}/default", h.setDefaultPaymentMethod)
				r.Delete("/{id}", h.removePaymentMethod)
			})

			r.Get("/billing-events", h.listBillingEvents)
		})
	})

	return r
}
