// Package handler exposes draft save/load/clear over HTTP. The draft key's
// user segment always comes from the authenticated actor, never the request,
// so one user cannot read or clobber another's draft.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lpa/internal/audit"
	"lpa/internal/draft"
	"lpa/internal/platform/metrics"
	domainerrors "lpa/pkg/domain-errors"
	"lpa/pkg/platform/httputil"
	"lpa/pkg/requestcontext"
)

type Handler struct {
	drafts  draft.Store
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func New(drafts draft.Store, m *metrics.Metrics, logger *slog.Logger) *Handler {
	return &Handler{drafts: drafts, metrics: m, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Put("/drafts", h.HandleSave)
	r.Get("/drafts", h.HandleLoad)
	r.Delete("/drafts", h.HandleClear)
}

// keyFromRequest assembles the draft key from the query string and the
// authenticated actor.
func keyFromRequest(r *http.Request) (draft.Key, error) {
	q := r.URL.Query()
	auditType, err := audit.ParseType(q.Get("auditType"))
	if err != nil {
		return draft.Key{}, domainerrors.New(domainerrors.CodeBadRequest, "unknown audit type").
			WithField("auditType", q.Get("auditType"))
	}
	periodKey := q.Get("periodKey")
	subcategory := q.Get("subcategory")
	if periodKey == "" || subcategory == "" {
		return draft.Key{}, domainerrors.New(domainerrors.CodeBadRequest, "periodKey and subcategory are required")
	}
	return draft.Key{
		UserID:      requestcontext.Actor(r.Context()).UID,
		AuditType:   auditType,
		PeriodKey:   periodKey,
		Slot:        q.Get("slot"),
		Subcategory: subcategory,
	}, nil
}

type saveRequest struct {
	Answers map[string]audit.Answer `json:"answers"`
}

// HandleSave handles PUT /drafts: overwrite the draft for this key.
func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	key, err := keyFromRequest(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := httputil.Decode[saveRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.drafts.Save(r.Context(), key, req.Answers); err != nil {
		h.logger.ErrorContext(r.Context(), "draft save failed", "key", key.String(), "error", err)
		httputil.WriteError(w, domainerrors.Wrap(domainerrors.CodeStoreUnavailable, "draft store unavailable", err))
		return
	}
	if h.metrics != nil {
		h.metrics.DraftsSaved.Inc()
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleLoad handles GET /drafts. A missing, expired, or corrupt draft is an
// empty answer set, never an error.
func (h *Handler) HandleLoad(w http.ResponseWriter, r *http.Request) {
	key, err := keyFromRequest(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	answers, err := h.drafts.Load(r.Context(), key)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "draft load failed", "key", key.String(), "error", err)
		httputil.WriteError(w, domainerrors.Wrap(domainerrors.CodeStoreUnavailable, "draft store unavailable", err))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, saveRequest{Answers: answers})
}

// HandleClear handles DELETE /drafts.
func (h *Handler) HandleClear(w http.ResponseWriter, r *http.Request) {
	key, err := keyFromRequest(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.drafts.Clear(r.Context(), key); err != nil {
		h.logger.ErrorContext(r.Context(), "draft clear failed", "key", key.String(), "error", err)
		httputil.WriteError(w, domainerrors.Wrap(domainerrors.CodeStoreUnavailable, "draft store unavailable", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
