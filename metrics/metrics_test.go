package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironautomata/ironautomata/eudoxus"
	"github.com/ironautomata/ironautomata/eudoxus/engine"
	"github.com/ironautomata/ironautomata/logging"
	"github.com/ironautomata/ironautomata/metrics"
)

func newTestMetrics(t *testing.T) (*metrics.Metrics, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()

	return metrics.New(reg), reg
}

func TestSinkCountsBySeverity(t *testing.T) {
	m, _ := newTestMetrics(t)
	sink := m.Sink()

	sink(logging.Event{Severity: logging.Warning, Message: "dup node"})
	sink(logging.Event{Severity: logging.Warning, Message: "dup node again"})
	sink(logging.Event{Severity: logging.Error, Message: "dangling edge"})

	assert.Equal(t, float64(2), testutil.ToFloat64(m.DiagnosticsTotal.WithLabelValues("WARN")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.DiagnosticsTotal.WithLabelValues("ERROR")))
}

func TestRecordCompileAccumulatesAcrossCalls(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.RecordCompile(0, eudoxus.Stats{TotalBytes: 100, NodesEmitted: 5, OutputsEmitted: 2, PaddingBytes: 3, IDWidth: 2})
	m.RecordCompile(0, eudoxus.Stats{TotalBytes: 50, NodesEmitted: 1, OutputsEmitted: 0, PaddingBytes: 0, IDWidth: 2})

	assert.Equal(t, float64(2), testutil.ToFloat64(m.CompilationsTotal))
	assert.Equal(t, float64(150), testutil.ToFloat64(m.CompiledBytesTotal))
	assert.Equal(t, float64(6), testutil.ToFloat64(m.CompiledNodesTotal))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.CompiledOutputsTotal))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.CompiledPaddingBytesTotal))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.CompiledIDWidth.WithLabelValues("auto")))
}

func TestRecordCompileLabelsRequestedWidth(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.RecordCompile(4, eudoxus.Stats{IDWidth: 4})
	assert.Equal(t, float64(4), testutil.ToFloat64(m.CompiledIDWidth.WithLabelValues("4")))
}

func TestRecordEngineStepCountsStatusAndOutputs(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.RecordEngineStep(engine.NeedsInput, 3)
	m.RecordEngineStep(engine.NeedsInput, 0)
	m.RecordEngineStep(engine.Ended, 0)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.EngineStepsTotal.WithLabelValues("needs-input")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.EngineStepsTotal.WithLabelValues("ended")))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.EngineOutputsTotal))
}

func TestNewAcceptsNilRegisterer(t *testing.T) {
	require.NotPanics(t, func() {
		m := metrics.New(nil)
		m.RecordEngineStep(engine.Ended, 0)
	})
}
