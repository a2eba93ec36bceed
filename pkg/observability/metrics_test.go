package observability_test

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aretw0/syllabus/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *observability.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMetrics_Record(t *testing.T) {
	m := observability.NewMetrics()

	m.Mutation("add_module")
	m.Mutation("add_module")
	m.Publish(observability.OutcomeSuccess, 20*time.Millisecond)
	m.Publish(observability.OutcomeInvalid, 0)
	m.MediaIngest(observability.OutcomeApplied)
	m.SessionOpened()

	out := scrape(t, m)
	assert.Contains(t, out, `syllabus_tree_mutations_total{op="add_module"} 2`)
	assert.Contains(t, out, `syllabus_publish_total{outcome="success"} 1`)
	assert.Contains(t, out, `syllabus_publish_total{outcome="invalid"} 1`)
	assert.Contains(t, out, "syllabus_publish_duration_seconds_count 1")
	assert.Contains(t, out, `syllabus_media_ingest_total{outcome="applied"} 1`)
	assert.Contains(t, out, "syllabus_active_sessions 1")
}

func TestMetrics_Handler(t *testing.T) {
	m := observability.NewMetrics()
	m.Mutation("delete_lesson")

	out := scrape(t, m)
	assert.Contains(t, out, `syllabus_tree_mutations_total{op="delete_lesson"} 1`)
	assert.Contains(t, out, "go_goroutines")
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *observability.Metrics
	assert.NotPanics(t, func() {
		m.Mutation("x")
		m.Publish(observability.OutcomeFailure, time.Second)
		m.MediaIngest(observability.OutcomeDiscarded)
		m.SessionOpened()
		m.SessionClosed()
	})
}
