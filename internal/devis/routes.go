package devis

import (
	"github.com/go-chi/chi/v5"

	"github.com/eventide-agency/eventide/internal/authz"
)

// MountRoutes attaches quote endpoints under /devis. Role access comes from
// the shared policy; ownership of client transitions is re-checked by the
// service, since the role alone does not prove the caller owns the quote.
func (h *Handler) MountRoutes(r chi.Router, policy *authz.Policy) {
	r.Group(func(r chi.Router) {
		r.Use(policy.Require(authz.ResourceDevis, authz.ActionView))
		r.Get("/devis", h.List)
		r.Get("/devis/{id}", h.Show)
		r.Get("/devis/{id}/pdf", h.PDF)
	})
	r.Group(func(r chi.Router) {
		r.Use(policy.Require(authz.ResourceDevis, authz.ActionViewOwn))
		r.Get("/devis/mine", h.ListMine)
	})
	r.Group(func(r chi.Router) {
		r.Use(policy.Require(authz.ResourceDevis, authz.ActionCreate))
		r.Post("/devis", h.Create)
	})
	r.Group(func(r chi.Router) {
		r.Use(policy.Require(authz.ResourceDevis, authz.ActionEdit))
		r.Put("/devis/{id}", h.Update)
	})
	r.Group(func(r chi.Router) {
		r.Use(policy.Require(authz.ResourceDevis, authz.ActionSend))
		r.Post("/devis/{id}/send", h.Send)
	})
	r.Group(func(r chi.Router) {
		r.Use(policy.Require(authz.ResourceDevis, authz.ActionDelete))
		r.Delete("/devis/{id}", h.Delete)
	})
	r.Group(func(r chi.Router) {
		r.Use(policy.Require(authz.ResourceDevis, authz.ActionRespond))
		r.Post("/devis/{id}/accept", h.Accept)
		r.Post("/devis/{id}/refuse", h.Refuse)
		r.Post("/devis/{id}/modify", h.Modify)
	})
}
