package contact

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/eventide-agency/eventide/internal/authz"
)

// MountRoutes attaches the contact inbox. Submission is public and rate
// limited per IP; reading and handling are staff operations.
func (h *Handler) MountRoutes(r chi.Router, policy *authz.Policy) {
	r.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(5, time.Minute))
		r.Post("/contact", h.Submit)
	})
	r.Group(func(r chi.Router) {
		r.Use(policy.Require(authz.ResourceContact, authz.ActionView))
		r.Get("/contact", h.List)
		r.Get("/contact/{id}", h.Show)
	})
	r.Group(func(r chi.Router) {
		r.Use(policy.Require(authz.ResourceContact, authz.ActionEdit))
		r.Put("/contact/{id}/handled", h.MarkHandled)
	})
}
