package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

type fakeCoverageSource struct{ ratio float64 }

func (f fakeCoverageSource) Coverage() float64 { return f.ratio }

func TestHealthz_ReturnsOK(t *testing.T) {
	reg := prometheus.NewRegistry()
	router := NewRouter(fakeCoverageSource{ratio: 0.5}, reg)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCoverage_ReturnsRatio(t *testing.T) {
	reg := prometheus.NewRegistry()
	router := NewRouter(fakeCoverageSource{ratio: 0.42}, reg)

	req := httptest.NewRequest(http.MethodGet, "/v1/coverage", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body coverageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.InDelta(t, 0.42, body.Coverage, 1e-9)
}

func TestCoverage_NoSourceReturnsServiceUnavailable(t *testing.T) {
	reg := prometheus.NewRegistry()
	router := NewRouter(nil, reg)

	req := httptest.NewRequest(http.MethodGet, "/v1/coverage", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetrics_ExposesPrometheusFormat(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_counter", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	router := NewRouter(fakeCoverageSource{}, reg)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "test_counter")
}
