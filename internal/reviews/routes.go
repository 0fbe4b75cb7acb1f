package reviews

import (
	"github.com/go-chi/chi/v5"

	"github.com/eventide-agency/eventide/internal/authz"
)

// MountRoutes attaches review endpoints under /reviews.
func (h *Handler) MountRoutes(r chi.Router, policy *authz.Policy) {
	r.Group(func(r chi.Router) {
		r.Use(policy.RequireAny(authz.ResourceReviews, authz.ActionView, authz.ActionViewOwn))
		r.Get("/reviews", h.List)
		r.Get("/reviews/{id}", h.Show)
	})
	r.Group(func(r chi.Router) {
		r.Use(policy.Require(authz.ResourceReviews, authz.ActionCreate))
		r.Post("/reviews", h.Create)
	})
	r.Group(func(r chi.Router) {
		r.Use(policy.Require(authz.ResourceReviews, authz.ActionModerate))
		r.Put("/reviews/{id}/moderation", h.Moderate)
	})
	r.Group(func(r chi.Router) {
		r.Use(policy.Require(authz.ResourceReviews, authz.ActionDelete))
		r.Delete("/reviews/{id}", h.Delete)
	})
}
