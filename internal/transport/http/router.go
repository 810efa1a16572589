// Package httptransport wires the public HTTP surface: student routes,
// health, and metrics.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	studenthandler "studentregistry/internal/student/handler"
	"studentregistry/pkg/platform/httputil"
)

// Pinger reports storage reachability for the health endpoint.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// NewRouter mounts all endpoints. Business routes carry their own middleware
// chain; health and metrics stay bare so probes are cheap.
func NewRouter(students *studenthandler.Handler, db Pinger, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	students.Register(r)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if err := db.PingContext(req.Context()); err != nil {
			logger.ErrorContext(req.Context(), "health check failed", "error", err)
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
