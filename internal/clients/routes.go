package clients

import (
	"github.com/go-chi/chi/v5"

	"github.com/eventide-agency/eventide/internal/authz"
)

// MountRoutes attaches client directory endpoints under /clients.
func (h *Handler) MountRoutes(r chi.Router, policy *authz.Policy) {
	r.Group(func(r chi.Router) {
		r.Use(policy.Require(authz.ResourceClients, authz.ActionView))
		r.Get("/clients", h.List)
		r.Get("/clients/{id}", h.Show)
	})
	r.Group(func(r chi.Router) {
		r.Use(policy.Require(authz.ResourceClients, authz.ActionCreate))
		r.Post("/clients", h.Create)
	})
	r.Group(func(r chi.Router) {
		r.Use(policy.Require(authz.ResourceClients, authz.ActionEdit))
		r.Put("/clients/{id}", h.Update)
	})
	r.Group(func(r chi.Router) {
		r.Use(policy.Require(authz.ResourceClients, authz.ActionDelete))
		r.Delete("/clients/{id}", h.Delete)
	})
}
