package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.PublishOutcome("delivered")
	m.PublishOutcome("delivered")
	m.PublishOutcome("soft_failed")
	m.StoreError("put")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.publishOutcomes.WithLabelValues("delivered")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.publishOutcomes.WithLabelValues("soft_failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storeErrors.WithLabelValues("put")))
}

func TestMetrics_HandlerExposesRequestHistogram(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveRequest("GET /alive", http.StatusOK, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "inventory_http_request_duration_seconds_count")
	assert.Contains(t, rec.Body.String(), `route="GET /alive"`)
}
