// Package httptransport assembles the HTTP surface: platform middleware, the
// health and metrics endpoints, and the authenticated API routes contributed
// by each module's handler.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lpa/internal/platform/middleware"
	"lpa/pkg/platform/httputil"
)

// Registrar is implemented by every module handler.
type Registrar interface {
	Register(r chi.Router)
}

// NewRouter mounts the platform endpoints openly and every module handler
// behind authentication.
func NewRouter(logger *slog.Logger, validator middleware.JWTValidator, handlers ...Registrar) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(api chi.Router) {
		api.Use(middleware.RequireAuth(validator, logger))
		for _, h := range handlers {
			h.Register(api)
		}
	})

	return r
}
