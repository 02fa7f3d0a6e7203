package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/edugames/internal/model"
)

func TestMetrics_RecordAttempt(t *testing.T) {
	m := New()

	m.RecordAttempt(model.GameKindPuzzle)
	m.RecordAttempt(model.GameKindPuzzle)
	m.RecordAttempt(model.GameKindMemory)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AttemptsSubmitted.WithLabelValues("puzzle")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AttemptsSubmitted.WithLabelValues("memory")))
}

func TestMetrics_RecordAchievement(t *testing.T) {
	m := New()

	m.RecordAchievement(model.AchievementWordSearch)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.AchievementsGranted.WithLabelValues("cacaPalavras")))
}

func TestMetrics_RecordRequest(t *testing.T) {
	m := New()

	m.RecordRequest(http.MethodGet, "/api/v1/users/{id}", http.StatusNotFound, 10*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/api/v1/users/{id}", "404")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.HTTPDuration))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordAttempt(model.GameKindMemory)
		m.RecordAchievement(model.AchievementMemory)
		m.RecordRequest("GET", "/", 200, time.Millisecond)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.RecordAttempt(model.GameKindWordSearch)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `edugames_attempts_submitted_total{kind="word-search"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
