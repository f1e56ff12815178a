// Package handler exposes audit submission and listing over HTTP. It decodes
// requests, delegates to the service, and renders coded error envelopes.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lpa/internal/audit"
	"lpa/internal/audit/service"
	"lpa/internal/export"
	domainerrors "lpa/pkg/domain-errors"
	"lpa/pkg/platform/httputil"
	"lpa/pkg/requestcontext"
)

// Service is the audit surface the handler delegates to.
type Service interface {
	Submit(ctx context.Context, sub service.Submission) (*audit.Record, error)
	Edit(ctx context.Context, id string, answers map[string]audit.Answer) (*audit.Record, error)
	Get(ctx context.Context, id string) (*audit.Record, error)
	ListRange(ctx context.Context, auditType audit.Type, start, end string) ([]*audit.Record, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the audit endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Post("/audits", h.HandleSubmit)
	r.Get("/audits", h.HandleListRange)
	r.Get("/audits/export.csv", h.HandleListRangeCSV)
	r.Get("/audits/{id}", h.HandleGet)
	r.Put("/audits/{id}", h.HandleEdit)
}

// HandleSubmit handles POST /audits.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sub, err := httputil.Decode[service.Submission](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	record, err := h.service.Submit(ctx, sub)
	if err != nil {
		// A persisted record alongside an error means issue writes failed
		// after the audit write; the failure is surfaced, not hidden.
		h.logger.ErrorContext(ctx, "audit submission failed",
			"request_id", requestcontext.RequestID(ctx),
			"audit_type", sub.AuditType,
			"subcategory", sub.Subcategory,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "audit submitted",
		"request_id", requestcontext.RequestID(ctx),
		"audit_id", record.ID,
		"audit_type", record.AuditType,
		"period_key", record.PeriodKey(),
	)
	httputil.WriteJSON(w, http.StatusCreated, record)
}

// HandleGet handles GET /audits/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	record, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, record)
}

type editRequest struct {
	Answers map[string]audit.Answer `json:"answers"`
}

// HandleEdit handles PUT /audits/{id}.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := httputil.Decode[editRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	record, err := h.service.Edit(ctx, chi.URLParam(r, "id"), req.Answers)
	if err != nil {
		h.logger.ErrorContext(ctx, "audit edit failed",
			"request_id", requestcontext.RequestID(ctx),
			"audit_id", chi.URLParam(r, "id"),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, record)
}

// HandleListRange handles GET /audits?auditType=&start=&end=.
func (h *Handler) HandleListRange(w http.ResponseWriter, r *http.Request) {
	records, _, err := h.listRange(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, records)
}

// HandleListRangeCSV handles GET /audits/export.csv with the same query
// parameters, rendering the flat listing as a download.
func (h *Handler) HandleListRangeCSV(w http.ResponseWriter, r *http.Request) {
	records, auditType, err := h.listRange(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out, err := export.RecordsCSV(records)
	if err != nil {
		httputil.WriteError(w, domainerrors.Wrap(domainerrors.CodeInternal, "listing export failed", err))
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.RecordsCSVFilename(auditType)+`"`)
	_, _ = w.Write(out)
}

func (h *Handler) listRange(r *http.Request) ([]*audit.Record, audit.Type, error) {
	auditType, err := audit.ParseType(r.URL.Query().Get("auditType"))
	if err != nil {
		return nil, "", domainerrors.New(domainerrors.CodeBadRequest, "unknown audit type").
			WithField("auditType", r.URL.Query().Get("auditType"))
	}
	records, err := h.service.ListRange(r.Context(), auditType, r.URL.Query().Get("start"), r.URL.Query().Get("end"))
	if err != nil {
		return nil, "", err
	}
	return records, auditType, nil
}
