package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/capacity-api/internal/models"
)

func TestMetricsServiceRecordsReservations(t *testing.T) {
	m := NewMetricsService()

	m.RecordReservation(models.OutcomeReserved, 100)
	m.RecordReservation(models.OutcomeExhausted, 50)
	m.RecordReservation(models.OutcomeExhausted, 50)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.reservations.WithLabelValues("reserved")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.reservations.WithLabelValues("exhausted")))
	assert.Equal(t, 100.0, testutil.ToFloat64(m.reservedMinutes))
}

func TestMetricsServiceCacheRatio(t *testing.T) {
	m := NewMetricsService()

	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)

	assert.Equal(t, 0.5, testutil.ToFloat64(m.cacheHitRatio))
}

func TestMetricsServiceHandlerExposesCollectors(t *testing.T) {
	m := NewMetricsService()
	m.ObserveDBQuery("capacity_rows", 5*time.Millisecond)
	m.ObserveHTTPRequest(http.MethodPost, "/api/v1/capacity", http.StatusOK, time.Millisecond)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `db_query_duration_seconds_count{query="capacity_rows"} 1`)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestNilMetricsServiceIsSafe(t *testing.T) {
	var m *MetricsService
	assert.NotPanics(t, func() {
		m.RecordReservation(models.OutcomeReserved, 1)
		m.ObserveDBQuery("x", time.Second)
		m.RecordCacheOperation(true, time.Second)
	})

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
