package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersAndHandler(t *testing.T) {
	m := New()
	m.ObserveFetch("Helsinki", "ok", 20*time.Millisecond)
	m.ObserveFetch("Espoo", "error", time.Millisecond)
	m.PairFailed("timeout")
	m.PairFailed("timeout")
	m.CacheHit()
	m.CacheMiss()
	m.ObserveBuild(time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetches.WithLabelValues("ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.pairFailures.WithLabelValues("timeout")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.builds))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "tyotilasto_summary_pair_failures_total"))
	assert.True(t, strings.Contains(body, "tyotilasto_summary_cache_requests_total"))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveFetch("x", "ok", time.Second)
		m.PairFailed("malformed")
		m.ObserveBuild(time.Second)
		m.CacheHit()
		m.CacheMiss()
		m.Refreshed("amqp")
	})
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
