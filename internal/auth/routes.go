package auth

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

// MountRoutes attaches the authentication endpoints. Login is rate
// limited per IP to slow credential stuffing.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(10, time.Minute))
		r.Post("/auth/login", h.Login)
	})
	r.Post("/auth/logout", h.Logout)
	r.Get("/auth/me", h.Me)
}
