package devis

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/eventide-agency/eventide/internal/platform/httpx"
	"github.com/eventide-agency/eventide/internal/shared"
)

// Handler exposes the quote endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, validate *validator.Validate) *Handler {
	return &Handler{logger: logger, service: service, validate: validate}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var req ListDevisRequest
	q := r.URL.Query()
	if v := q.Get("event_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			req.EventID = &id
		}
	}
	if v := q.Get("status"); v != "" {
		s := Status(v)
		req.Status = &s
	}
	req.Limit, _ = strconv.Atoi(q.Get("limit"))
	req.Offset, _ = strconv.Atoi(q.Get("offset"))

	list, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list devis", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{"devis": list, "total": total})
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	id := shared.IdentityFromContext(r.Context())
	if id == nil {
		httpx.Fail(w, http.StatusUnauthorized, "authentication required")
		return
	}
	list, err := h.service.ListMine(r.Context(), id.UserID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{"devis": list})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.urlID(w, r)
	if !ok {
		return
	}
	d, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, d)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateDevisRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	d, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.logger.Error("create devis", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusCreated, d)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.urlID(w, r)
	if !ok {
		return
	}
	var req UpdateDevisRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	d, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, d)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.urlID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, nil)
}

func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	id, ok := h.urlID(w, r)
	if !ok {
		return
	}
	d, err := h.service.Send(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, d)
}

func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.service.Accept)
}

func (h *Handler) Refuse(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.service.Refuse)
}

func (h *Handler) Modify(w http.ResponseWriter, r *http.Request) {
	id, ok := h.urlID(w, r)
	if !ok {
		return
	}
	caller := shared.IdentityFromContext(r.Context())
	if caller == nil {
		httpx.Fail(w, http.StatusUnauthorized, "authentication required")
		return
	}
	var req ModifyDevisRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	d, err := h.service.RequestModification(r.Context(), id, caller.UserID, req.Reason)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, d)
}

func (h *Handler) PDF(w http.ResponseWriter, r *http.Request) {
	id, ok := h.urlID(w, r)
	if !ok {
		return
	}
	d, document, err := h.service.RenderPDF(r.Context(), id)
	if err != nil {
		h.logger.Error("render devis pdf", slog.Int64("id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", d.Number+".pdf"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(document)
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id, callerUserID int64) (*WithTotals, error)) {
	id, ok := h.urlID(w, r)
	if !ok {
		return
	}
	caller := shared.IdentityFromContext(r.Context())
	if caller == nil {
		httpx.Fail(w, http.StatusUnauthorized, "authentication required")
		return
	}
	d, err := fn(r.Context(), id, caller.UserID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, d)
}

func (h *Handler) urlID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid devis id")
		return 0, false
	}
	return id, true
}
