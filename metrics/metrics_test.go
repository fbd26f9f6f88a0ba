package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Independent(t *testing.T) {
	// Two instances must not collide on registration
	a := New()
	b := New()

	a.ValidationsTotal.WithLabelValues("ok").Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(a.ValidationsTotal.WithLabelValues("ok")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.ValidationsTotal.WithLabelValues("ok")))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ValidationsTotal.WithLabelValues("ok").Inc()
	m.ValidationScore.Observe(82)
	m.EventsDropped.Inc()
	m.PublishesTotal.WithLabelValues("error").Inc()

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "prompts_validations_total")
	assert.Contains(t, string(body), "prompts_validation_score_percent")
	assert.Contains(t, string(body), "prompts_watch_events_dropped_total")
	assert.Contains(t, string(body), "prompts_report_publishes_total")
}
