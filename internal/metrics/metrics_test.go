package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsExposure(t *testing.T) {
	m := New()
	m.ObserveHTTP(http.MethodGet, "/api/tweets", http.StatusOK, 20*time.Millisecond)
	m.ObserveJob("scheduled-posts", ResultSuccess, time.Second)
	m.IncJobUserError("scheduled-posts")
	m.IncPublished(true)
	m.IncPublished(false)
	m.AddGenerated(3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	for _, name := range []string{
		"autoposter_http_requests_total",
		"autoposter_http_request_duration_seconds",
		"autoposter_job_runs_total",
		"autoposter_job_duration_seconds",
		"autoposter_job_user_errors_total",
		"autoposter_posts_published_total",
		"autoposter_posts_generated_total",
		"go_goroutines",
	} {
		assert.Contains(t, body, name)
	}
}

func TestMetricsValues(t *testing.T) {
	m := New()
	m.IncPublished(true)
	m.IncPublished(true)
	m.IncPublished(false)
	m.ObserveJob("daily-analytics", ResultSkipped, 0)
	m.AddGenerated(0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.posts.WithLabelValues("posted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.posts.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.jobRuns.WithLabelValues("daily-analytics", ResultSkipped)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.generated))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveHTTP("GET", "/", 200, time.Millisecond)
		m.ObserveJob("x", ResultError, time.Millisecond)
		m.IncJobUserError("x")
		m.IncPublished(true)
		m.AddGenerated(1)
	})
}
