// Package handler exposes the question bank listings and the admin editing
// primitives.
package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lpa/internal/questionbank"
	domainerrors "lpa/pkg/domain-errors"
	"lpa/pkg/platform/httputil"
	"lpa/pkg/platform/sentinel"
)

type Handler struct {
	store  questionbank.Store
	logger *slog.Logger
}

func New(store questionbank.Store, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/subcategories", h.HandleListSubcategories)
	r.Get("/subcategories/{id}/questions", h.HandleListQuestions)
	r.Post("/subcategories/{id}/questions", h.HandleAddQuestion)
	r.Post("/subcategories/{id}/questions/swap", h.HandleSwapOrder)
}

// HandleListSubcategories handles GET /subcategories.
func (h *Handler) HandleListSubcategories(w http.ResponseWriter, r *http.Request) {
	subs, err := h.store.ListSubcategories(r.Context())
	if err != nil {
		httputil.WriteError(w, domainerrors.Wrap(domainerrors.CodeStoreUnavailable, "question bank unavailable", err))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, subs)
}

// HandleListQuestions handles GET /subcategories/{id}/questions.
func (h *Handler) HandleListQuestions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	questions, err := h.store.ListQuestions(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, storeError(err, id))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, questions)
}

// HandleAddQuestion handles POST /subcategories/{id}/questions.
func (h *Handler) HandleAddQuestion(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	question, err := httputil.Decode[questionbank.Question](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if question.Text == "" {
		httputil.WriteError(w, domainerrors.New(domainerrors.CodeBadRequest, "question text is required"))
		return
	}
	switch question.Type {
	case questionbank.TypeRadio, questionbank.TypeNumber, questionbank.TypeTextarea:
	default:
		httputil.WriteError(w, domainerrors.New(domainerrors.CodeBadRequest, "unknown question type").
			WithField("type", string(question.Type)))
		return
	}
	if question.Type == questionbank.TypeRadio && len(question.Options) == 0 {
		question.Options = questionbank.RadioOptions
	}

	added, err := h.store.AddQuestion(r.Context(), id, question)
	if err != nil {
		httputil.WriteError(w, storeError(err, id))
		return
	}
	h.logger.InfoContext(r.Context(), "question added", "subcategory", id, "question_id", added.ID)
	httputil.WriteJSON(w, http.StatusCreated, added)
}

type swapRequest struct {
	QuestionIDA string `json:"questionIdA"`
	QuestionIDB string `json:"questionIdB"`
}

// HandleSwapOrder handles POST /subcategories/{id}/questions/swap, the
// move-up/move-down primitive of the admin editor.
func (h *Handler) HandleSwapOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	req, err := httputil.Decode[swapRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if req.QuestionIDA == "" || req.QuestionIDB == "" {
		httputil.WriteError(w, domainerrors.New(domainerrors.CodeBadRequest, "both question ids are required"))
		return
	}
	if err := h.store.SwapOrder(r.Context(), id, req.QuestionIDA, req.QuestionIDB); err != nil {
		httputil.WriteError(w, storeError(err, id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func storeError(err error, subcategory string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return domainerrors.New(domainerrors.CodeNotFound, "not found").WithField("subcategory", subcategory)
	}
	return domainerrors.Wrap(domainerrors.CodeStoreUnavailable, "question bank unavailable", err)
}
