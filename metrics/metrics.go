package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ironautomata/ironautomata/eudoxus"
	"github.com/ironautomata/ironautomata/eudoxus/engine"
	"github.com/ironautomata/ironautomata/logging"
)

// Metrics holds every counter and gauge this module reports.
// Initialize once per registerer via New and share the value across the
// call sites that feed it: Sink for the intermediate reader and engine
// states, RecordCompile after a compilation, RecordEngineStep after each
// State.Execute call.
type Metrics struct {
	// DiagnosticsTotal counts logging.Events by severity, across every
	// subsystem that accepts a logging.Sink.
	DiagnosticsTotal *prometheus.CounterVec

	// CompilationsTotal counts completed compilations.
	CompilationsTotal prometheus.Counter
	// CompiledBytesTotal sums Stats.TotalBytes across compilations.
	CompiledBytesTotal prometheus.Counter
	// CompiledNodesTotal sums Stats.NodesEmitted across compilations.
	CompiledNodesTotal prometheus.Counter
	// CompiledOutputsTotal sums Stats.OutputsEmitted across compilations.
	CompiledOutputsTotal prometheus.Counter
	// CompiledPaddingBytesTotal sums Stats.PaddingBytes across compilations.
	CompiledPaddingBytesTotal prometheus.Counter
	// CompiledIDWidth records the id width chosen by the most recent
	// compilation, labeled so a width change over time is visible.
	CompiledIDWidth *prometheus.GaugeVec

	// EngineStepsTotal counts engine.State.Execute calls by the Status
	// they returned.
	EngineStepsTotal *prometheus.CounterVec
	// EngineOutputsTotal counts outputs delivered to a Callback.
	EngineOutputsTotal prometheus.Counter
}

// New constructs a Metrics registered against reg. Pass
// prometheus.DefaultRegisterer in production or a fresh
// prometheus.NewRegistry() in tests; reg may be nil, in which case the
// returned metrics observe normally but register with nothing.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		DiagnosticsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: diagnosticsSubsys,
			Name:      "events_total",
			Help:      "Total logging events observed, by severity.",
		}, []string{"severity"}),

		CompilationsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: compilerSubsystem,
			Name:      "compilations_total",
			Help:      "Total calls to eudoxus.Compile that returned successfully.",
		}),
		CompiledBytesTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: compilerSubsystem,
			Name:      "compiled_bytes_total",
			Help:      "Sum of compiled buffer sizes in bytes.",
		}),
		CompiledNodesTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: compilerSubsystem,
			Name:      "compiled_nodes_total",
			Help:      "Sum of node records emitted.",
		}),
		CompiledOutputsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: compilerSubsystem,
			Name:      "compiled_outputs_total",
			Help:      "Sum of output records emitted.",
		}),
		CompiledPaddingBytesTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: compilerSubsystem,
			Name:      "compiled_padding_bytes_total",
			Help:      "Sum of alignment padding bytes inserted.",
		}),
		CompiledIDWidth: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: compilerSubsystem,
			Name:      "compiled_id_width",
			Help:      "Identifier width, in bytes, chosen by the most recent compilation.",
		}, []string{"requested"}),

		EngineStepsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: engineSubsystem,
			Name:      "execute_total",
			Help:      "Total State.Execute calls, by the Status returned.",
		}, []string{"status"}),
		EngineOutputsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: engineSubsystem,
			Name:      "outputs_total",
			Help:      "Total outputs delivered to an engine Callback.",
		}),
	}
}

// Sink returns a logging.Sink that tallies DiagnosticsTotal by severity.
// It never itself writes the event anywhere; compose it with another sink
// (e.g. logging.Default()) via a small fan-out if both are wanted.
func (m *Metrics) Sink() logging.Sink {
	return func(e logging.Event) {
		m.DiagnosticsTotal.WithLabelValues(e.Severity.String()).Inc()
	}
}

// RecordCompile tallies one completed compilation's statistics. requested
// is the Config.IDWidth the caller asked for (0 for "minimize"), recorded
// alongside the width actually chosen so a fleet of compilations run with
// id_width=0 can be distinguished from ones pinned to a fixed width.
func (m *Metrics) RecordCompile(requested int, stats eudoxus.Stats) {
	m.CompilationsTotal.Inc()
	m.CompiledBytesTotal.Add(float64(stats.TotalBytes))
	m.CompiledNodesTotal.Add(float64(stats.NodesEmitted))
	m.CompiledOutputsTotal.Add(float64(stats.OutputsEmitted))
	m.CompiledPaddingBytesTotal.Add(float64(stats.PaddingBytes))
	m.CompiledIDWidth.WithLabelValues(requestedLabel(requested)).Set(float64(stats.IDWidth))
}

func requestedLabel(requested int) string {
	if requested == 0 {
		return "auto"
	}

	return strconv.Itoa(requested)
}

// RecordEngineStep tallies one State.Execute call's outcome and, when it
// delivered outputs, how many.
func (m *Metrics) RecordEngineStep(status engine.Status, outputsDelivered int) {
	m.EngineStepsTotal.WithLabelValues(status.String()).Inc()
	if outputsDelivered > 0 {
		m.EngineOutputsTotal.Add(float64(outputsDelivered))
	}
}
