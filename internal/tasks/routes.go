package tasks

import (
	"github.com/go-chi/chi/v5"

	"github.com/eventide-agency/eventide/internal/authz"
)

// MountRoutes attaches task endpoints under /tasks.
func (h *Handler) MountRoutes(r chi.Router, policy *authz.Policy) {
	r.Group(func(r chi.Router) {
		r.Use(policy.Require(authz.ResourceTasks, authz.ActionView))
		r.Get("/tasks", h.List)
		r.Get("/tasks/{id}", h.Show)
	})
	r.Group(func(r chi.Router) {
		r.Use(policy.Require(authz.ResourceTasks, authz.ActionCreate))
		r.Post("/tasks", h.Create)
	})
	r.Group(func(r chi.Router) {
		r.Use(policy.Require(authz.ResourceTasks, authz.ActionEdit))
		r.Put("/tasks/{id}", h.Update)
	})
	r.Group(func(r chi.Router) {
		r.Use(policy.Require(authz.ResourceTasks, authz.ActionDelete))
		r.Delete("/tasks/{id}", h.Delete)
	})
}
