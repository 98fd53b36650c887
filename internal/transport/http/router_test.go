package httptransport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jwttoken "visitflow/internal/jwt_token"
	"visitflow/internal/platform/metrics"
	"visitflow/internal/visit/handler"
	"visitflow/internal/visit/lock"
	"visitflow/internal/visit/service/catalog"
	"visitflow/internal/visit/service/checkpoint"
	"visitflow/internal/visit/service/compliance"
	"visitflow/internal/visit/service/overdue"
	"visitflow/internal/visit/service/schedule"
	"visitflow/internal/visit/store"
	id "visitflow/pkg/domain"
)

func newTestRouter(t *testing.T, health map[string]HealthCheck) (http.Handler, *jwttoken.JWTService) {
	t.Helper()
	st := store.NewInMemory()
	catalogSvc, err := catalog.New(st, st, st)
	require.NoError(t, err)
	scheduleSvc, err := schedule.New(st, st, st)
	require.NoError(t, err)
	evaluator, err := compliance.New(st, st)
	require.NoError(t, err)
	recorder, err := checkpoint.New(st, st, st, lock.NewMemory(), evaluator)
	require.NoError(t, err)
	detector, err := overdue.New(st, st)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	visit := handler.New(handler.Services{
		Catalog:     catalogSvc,
		Schedules:   scheduleSvc,
		Checkpoints: recorder,
		Overdue:     detector,
	}, time.UTC, logger)

	reg := prometheus.NewRegistry()
	jwtService := jwttoken.NewJWTService("router-test-key", "visitflow")
	return NewRouter(Deps{
		Visit:     visit,
		Validator: jwttoken.NewJWTServiceAdapter(jwtService),
		Gatherer:  reg,
		Metrics:   metrics.NewHTTP(reg),
		Logger:    logger,
		Health:    health,
	}), jwtService
}

func TestRouter_RequiresAgentToken(t *testing.T) {
	router, jwtService := newTestRouter(t, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/pavilions", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	token, err := jwtService.GenerateAgentToken(id.AgentID(uuid.New()), id.PavilionID{}, time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/pavilions", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestRouter_MetricsArePublic(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `visitflow_http_requests_total{method="GET",route="/healthz",status="200"} 1`)
}

func TestRouter_Healthz(t *testing.T) {
	router, _ := newTestRouter(t, map[string]HealthCheck{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"degraded","postgres":"ok","redis":"connection refused"}`, w.Body.String())
}
