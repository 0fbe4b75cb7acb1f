package prospects

import (
	"github.com/go-chi/chi/v5"

	"github.com/eventide-agency/eventide/internal/authz"
)

// MountRoutes attaches prospect endpoints under /prospects.
func (h *Handler) MountRoutes(r chi.Router, policy *authz.Policy) {
	r.Group(func(r chi.Router) {
		r.Use(policy.Require(authz.ResourceProspects, authz.ActionView))
		r.Get("/prospects", h.List)
		r.Get("/prospects/{id}", h.Show)
		r.Get("/prospects/{id}/notes", h.ListNotes)
	})
	r.Group(func(r chi.Router) {
		r.Use(policy.Require(authz.ResourceProspects, authz.ActionCreate))
		r.Post("/prospects", h.Create)
		r.Post("/prospects/{id}/notes", h.AddNote)
	})
	r.Group(func(r chi.Router) {
		r.Use(policy.Require(authz.ResourceProspects, authz.ActionEdit))
		r.Put("/prospects/{id}", h.Update)
		r.Post("/prospects/{id}/convert", h.Convert)
	})
	r.Group(func(r chi.Router) {
		r.Use(policy.Require(authz.ResourceProspects, authz.ActionDelete))
		r.Delete("/prospects/{id}", h.Delete)
	})
}
