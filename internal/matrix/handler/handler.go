// Package handler serves the compliance matrix, its export downloads, and the
// day dashboard.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lpa/internal/audit"
	"lpa/internal/export"
	"lpa/internal/matrix"
	"lpa/internal/period"
	"lpa/internal/platform/metrics"
	"lpa/internal/questionbank"
	domainerrors "lpa/pkg/domain-errors"
	"lpa/pkg/platform/httputil"
	"lpa/pkg/requestcontext"
)

// Builder is the matrix construction surface.
type Builder interface {
	Build(ctx context.Context, week, subcategory string, questions []questionbank.Question) (*matrix.Matrix, error)
	BuildDashboard(ctx context.Context, date string) (*matrix.Dashboard, error)
}

type Handler struct {
	builder   Builder
	questions questionbank.Store
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func New(builder Builder, questions questionbank.Store, m *metrics.Metrics, logger *slog.Logger) *Handler {
	return &Handler{builder: builder, questions: questions, metrics: m, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/matrix", h.HandleMatrix)
	r.Get("/matrix/export.csv", h.HandleExportCSV)
	r.Get("/matrix/export.pdf", h.HandleExportPDF)
	r.Get("/matrix/export.xlsx", h.HandleExportXLSX)
	r.Get("/dashboard", h.HandleDashboard)
}

// HandleMatrix handles GET /matrix?week=&subcategory=.
func (h *Handler) HandleMatrix(w http.ResponseWriter, r *http.Request) {
	built, err := h.buildMatrix(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromMatrix(built))
}

// HandleExportCSV handles GET /matrix/export.csv.
func (h *Handler) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	built, err := h.buildMatrix(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.countExport("csv")
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.CSVFilename(built)+`"`)
	_, _ = w.Write(export.MatrixCSV(built))
}

// HandleExportPDF handles GET /matrix/export.pdf.
func (h *Handler) HandleExportPDF(w http.ResponseWriter, r *http.Request) {
	built, err := h.buildMatrix(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out, err := export.MatrixPDF(built)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "matrix pdf export failed", "week", built.Week, "error", err)
		httputil.WriteError(w, domainerrors.Wrap(domainerrors.CodeInternal, "export failed", err))
		return
	}
	h.countExport("pdf")
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.PDFFilename(built)+`"`)
	_, _ = w.Write(out)
}

// HandleExportXLSX handles GET /matrix/export.xlsx.
func (h *Handler) HandleExportXLSX(w http.ResponseWriter, r *http.Request) {
	built, err := h.buildMatrix(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out, err := export.MatrixXLSX(built)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "matrix xlsx export failed", "week", built.Week, "error", err)
		httputil.WriteError(w, domainerrors.Wrap(domainerrors.CodeInternal, "export failed", err))
		return
	}
	h.countExport("xlsx")
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.XLSXFilename(built)+`"`)
	_, _ = w.Write(out)
}

// HandleDashboard handles GET /dashboard?date=.
func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if _, err := period.ParseDate(date); err != nil {
		httputil.WriteError(w, domainerrors.New(domainerrors.CodeBadRequest, "malformed date").WithField("date", date))
		return
	}
	dashboard, err := h.builder.BuildDashboard(r.Context(), date)
	if err != nil {
		httputil.WriteError(w, domainerrors.Wrap(domainerrors.CodeStoreUnavailable, "dashboard build failed", err))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, dashboard)
}

func (h *Handler) buildMatrix(r *http.Request) (*matrix.Matrix, error) {
	ctx := r.Context()
	week := r.URL.Query().Get("week")
	subcategoryID := r.URL.Query().Get("subcategory")

	if _, err := period.DatesOfISOWeek(week); err != nil {
		return nil, domainerrors.New(domainerrors.CodeBadRequest, "malformed week id").WithField("week", week)
	}

	// The matrix shows the live questionnaire, not per-record snapshots.
	questions, err := h.questions.ListQuestions(ctx, subcategoryID)
	if err != nil {
		return nil, domainerrors.New(domainerrors.CodeNotFound, "unknown subcategory").WithField("subcategory", subcategoryID)
	}

	built, err := h.builder.Build(ctx, week, subcategoryID, questions)
	if err != nil {
		h.logger.ErrorContext(ctx, "matrix build failed",
			"request_id", requestcontext.RequestID(ctx),
			"week", week,
			"subcategory", subcategoryID,
			"error", err,
		)
		return nil, domainerrors.Wrap(domainerrors.CodeStoreUnavailable, "matrix build failed", err)
	}
	return built, nil
}

func (h *Handler) countExport(format string) {
	if h.metrics != nil {
		h.metrics.ExportsGenerated.WithLabelValues(format).Inc()
	}
}

// matrixResponse is the JSON rendition of a built matrix.
type matrixResponse struct {
	Subcategory string        `json:"subcategory"`
	Week        string        `json:"week"`
	Month       string        `json:"month"`
	WeekDates   []string      `json:"weekDates"`
	Questions   []questionRow `json:"questions"`
}

type questionRow struct {
	QuestionID string     `json:"questionId"`
	Text       string     `json:"text"`
	Daily      [][]string `json:"daily"` // [day][slot], Sunday-led, M/D/A
	Weekly     weeklyRow  `json:"weekly"`
	Monthly    string     `json:"monthly"`
}

type weeklyRow struct {
	QualityTech       string `json:"qualityTech"`
	OperationsManager string `json:"operationsManager"`
}

func fromMatrix(m *matrix.Matrix) matrixResponse {
	resp := matrixResponse{
		Subcategory: m.Subcategory,
		Week:        m.Week,
		Month:       m.Month,
	}
	for _, date := range m.WeekDates {
		resp.WeekDates = append(resp.WeekDates, period.FormatDate(date))
	}
	for _, question := range m.Questions {
		row := questionRow{
			QuestionID: question.ID,
			Text:       question.Text,
			Weekly: weeklyRow{
				QualityTech:       string(m.WeeklyMark(question.ID, audit.RoleQualityTech)),
				OperationsManager: string(m.WeeklyMark(question.ID, audit.RoleOperationsManager)),
			},
			Monthly: string(m.MonthlyMark(question.ID)),
		}
		for day := range m.WeekDates {
			var slots []string
			for _, slot := range audit.TimeSlots {
				slots = append(slots, string(m.DailyMark(question.ID, day, slot)))
			}
			row.Daily = append(row.Daily, slots)
		}
		resp.Questions = append(resp.Questions, row)
	}
	return resp
}
