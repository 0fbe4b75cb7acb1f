package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eventide-agency/eventide/internal/audit"
	"github.com/eventide-agency/eventide/internal/auth"
	"github.com/eventide-agency/eventide/internal/authz"
	"github.com/eventide-agency/eventide/internal/clients"
	"github.com/eventide-agency/eventide/internal/contact"
	"github.com/eventide-agency/eventide/internal/devis"
	"github.com/eventide-agency/eventide/internal/events"
	"github.com/eventide-agency/eventide/internal/prospects"
	"github.com/eventide-agency/eventide/internal/reviews"
	"github.com/eventide-agency/eventide/internal/tasks"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config
	Tokens *auth.TokenStore
	Policy *authz.Policy

	AuthHandler      *auth.Handler
	ProspectsHandler *prospects.Handler
	ClientsHandler   *clients.Handler
	EventsHandler    *events.Handler
	DevisHandler     *devis.Handler
	TasksHandler     *tasks.Handler
	ReviewsHandler   *reviews.Handler
	ContactHandler   *contact.Handler
	AuditHandler     *audit.Handler
}

// NewRouter constructs the chi.Router with Eventide defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
		Tokens: params.Tokens,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true}`))
	})

	r.Route("/api", func(r chi.Router) {
		params.AuthHandler.MountRoutes(r)
		params.ProspectsHandler.MountRoutes(r, params.Policy)
		params.ClientsHandler.MountRoutes(r, params.Policy)
		params.EventsHandler.MountRoutes(r, params.Policy)
		params.DevisHandler.MountRoutes(r, params.Policy)
		params.TasksHandler.MountRoutes(r, params.Policy)
		params.ReviewsHandler.MountRoutes(r, params.Policy)
		params.ContactHandler.MountRoutes(r, params.Policy)
		params.AuditHandler.MountRoutes(r, params.Policy)
	})

	return r
}
