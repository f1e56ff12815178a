// Package handler exposes the issue lifecycle over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lpa/internal/issue"
	"lpa/internal/issue/service"
	"lpa/pkg/platform/httputil"
	"lpa/pkg/requestcontext"
)

type Service interface {
	Create(ctx context.Context, req service.CreateRequest) (*issue.Record, error)
	Get(ctx context.Context, id string) (*issue.Record, error)
	List(ctx context.Context, status, subcategory string) ([]*issue.Record, error)
	Update(ctx context.Context, id string, req service.UpdateRequest) (*issue.Record, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/issues", h.HandleCreate)
	r.Get("/issues", h.HandleList)
	r.Get("/issues/{id}", h.HandleGet)
	r.Put("/issues/{id}", h.HandleUpdate)
}

// HandleCreate handles POST /issues.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := httputil.Decode[service.CreateRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	record, err := h.service.Create(ctx, req)
	if err != nil {
		h.logger.ErrorContext(ctx, "issue creation failed",
			"request_id", requestcontext.RequestID(ctx),
			"subcategory", req.Subcategory,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, record)
}

// HandleList handles GET /issues?status=&subcategory=.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.List(r.Context(), r.URL.Query().Get("status"), r.URL.Query().Get("subcategory"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, records)
}

// HandleGet handles GET /issues/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	record, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, record)
}

// HandleUpdate handles PUT /issues/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := httputil.Decode[service.UpdateRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	record, err := h.service.Update(ctx, chi.URLParam(r, "id"), req)
	if err != nil {
		h.logger.ErrorContext(ctx, "issue update failed",
			"request_id", requestcontext.RequestID(ctx),
			"issue_id", chi.URLParam(r, "id"),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, record)
}
