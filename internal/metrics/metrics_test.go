package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	require.NotNil(t, m)

	m.RecordRequest(true)
	m.RecordIndexed("indexed")
	m.ObserveStage("embedding", 10*time.Millisecond)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["sharerapy_ai_requests_total"])
	assert.True(t, names["sharerapy_index_reports_total"])
	assert.True(t, names["sharerapy_ai_stage_duration_seconds"])
	assert.True(t, names["sharerapy_ai_active_streams"])
}

func TestNew_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}

func TestRecorders(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordRequest(true)
	m.RecordRequest(false)
	m.RecordRequest(false)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("failed")))

	m.RecordFailure("embedding")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StageFailures.WithLabelValues("embedding")))

	m.RecordExpansionFallback()
	m.RecordHydrationMiss()
	m.RecordHydrationMiss()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExpansionFallbacks))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.HydrationMisses))

	m.StreamStarted()
	m.StreamStarted()
	m.StreamEnded()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActiveStreams))

	m.RecordDelta()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StreamDeltas))

	m.ObserveRetrieved(3)
	m.ObserveFirstDelta(200 * time.Millisecond)
	assert.Equal(t, 1, testutil.CollectAndCount(m.RetrievedChunks))
	assert.Equal(t, 1, testutil.CollectAndCount(m.TimeToFirstDelta))
}

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRequest(true)
		m.ObserveStage("retrieving", time.Second)
		m.RecordFailure("retrieving")
		m.RecordExpansionFallback()
		m.ObserveRetrieved(0)
		m.RecordHydrationMiss()
		m.StreamStarted()
		m.StreamEnded()
		m.ObserveFirstDelta(time.Second)
		m.RecordDelta()
		m.RecordIndexed("failed")
	})
}
