package events

import (
	"github.com/go-chi/chi/v5"

	"github.com/eventide-agency/eventide/internal/authz"
)

// MountRoutes attaches event endpoints under /events.
func (h *Handler) MountRoutes(r chi.Router, policy *authz.Policy) {
	r.Group(func(r chi.Router) {
		r.Use(policy.RequireAny(authz.ResourceEvents, authz.ActionView, authz.ActionViewOwn))
		r.Get("/events", h.List)
		r.Get("/events/{id}", h.Show)
	})
	r.Group(func(r chi.Router) {
		r.Use(policy.Require(authz.ResourceEvents, authz.ActionCreate))
		r.Post("/events", h.Create)
	})
	r.Group(func(r chi.Router) {
		r.Use(policy.Require(authz.ResourceEvents, authz.ActionEdit))
		r.Put("/events/{id}", h.Update)
		r.Patch("/events/{id}/status", h.UpdateStatus)
	})
	r.Group(func(r chi.Router) {
		r.Use(policy.Require(authz.ResourceEvents, authz.ActionDelete))
		r.Delete("/events/{id}", h.Delete)
	})
}
