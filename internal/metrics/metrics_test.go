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

func TestCountersAreLabelled(t *testing.T) {
	m := New()

	m.WebhookReceived("freekassa", "accepted")
	m.WebhookReceived("freekassa", "accepted")
	m.WebhookReceived("freekassa", "forbidden")
	m.ClaimAttempt("claimed")
	m.PipelineFinished("song", "completed")
	m.ConversionTracked("created")
	m.SetQueueDepth(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.webhooks.WithLabelValues("freekassa", "accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.webhooks.WithLabelValues("freekassa", "forbidden")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.claims.WithLabelValues("claimed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.pipelineRuns.WithLabelValues("song", "completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.conversions.WithLabelValues("created")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.queueDepth))
}

func TestObserveStage(t *testing.T) {
	m := New()
	m.ObserveStage("text", 2*time.Second)

	assert.Equal(t, 1, testutil.CollectAndCount(m.stageSeconds, "youwow_pipeline_stage_seconds"))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.WebhookReceived("a", "b")
		m.ClaimAttempt("c")
		m.PipelineFinished("d", "e")
		m.ConversionTracked("f")
		m.ObserveStage("g", time.Second)
		m.SetQueueDepth(1)
	})
}

func TestHandlerServesRegistry(t *testing.T) {
	m := New()
	m.ClaimAttempt("conflict")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `youwow_order_claims_total{result="conflict"} 1`))
}
