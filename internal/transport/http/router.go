package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"visitflow/internal/platform/metrics"
	"visitflow/internal/visit/handler"
	"visitflow/pkg/platform/httputil"
	"visitflow/pkg/platform/middleware/auth"
	"visitflow/pkg/platform/middleware/request"
	"visitflow/pkg/platform/middleware/requesttime"
)

// HealthCheck reports whether a backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Deps carries what the router mounts.
type Deps struct {
	Visit     *handler.Handler
	Validator auth.JWTValidator
	Gatherer  prometheus.Gatherer
	Metrics   *metrics.HTTP
	Logger    *slog.Logger
	// Health checks run on GET /healthz, keyed by dependency name.
	Health map[string]HealthCheck
}

// NewRouter wires all public endpoints. Only /healthz and /metrics are reachable without
// an agent token.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Recovery(deps.Logger))
	r.Use(request.Logger(deps.Logger))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}
	r.Use(requesttime.Middleware)

	r.Get("/healthz", healthz(deps.Health))
	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(deps.Validator, deps.Logger))
		deps.Visit.Register(r)
	})
	return r
}

func healthz(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		body := map[string]string{"status": "ok"}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
				body[name] = err.Error()
				continue
			}
			body[name] = "ok"
		}
		httputil.WriteJSON(w, status, body)
	}
}
