package audit

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/eventide-agency/eventide/internal/authz"
	"github.com/eventide-agency/eventide/internal/platform/httpx"
)

// Handler exposes the audit trail to administrators.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes attaches the audit listing under /audit.
func (h *Handler) MountRoutes(r chi.Router, policy *authz.Policy) {
	r.Group(func(r chi.Router) {
		r.Use(policy.Require(authz.ResourceAudit, authz.ActionView))
		r.Get("/audit", h.List)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var f ListFilters
	q := r.URL.Query()
	if v := q.Get("actor_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			f.Actor = &id
		}
	}
	f.Entity = q.Get("entity")
	f.Action = q.Get("action")
	if v := q.Get("from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			f.From = t
		}
	}
	if v := q.Get("to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			f.To = t
		}
	}
	f.Page, _ = strconv.Atoi(q.Get("page"))
	f.PageSize, _ = strconv.Atoi(q.Get("page_size"))

	entries, total, err := h.service.List(r.Context(), f)
	if err != nil {
		h.logger.Error("list audit entries", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{"entries": entries, "total": total})
}
