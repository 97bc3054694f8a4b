// Package metrics exposes Prometheus instrumentation for the three
// pipeline stages: diagnostics routed through a logging.Sink, compiler
// statistics (eudoxus.Stats), and engine execution outcomes
// (eudoxus/engine.Status). Metrics is a constructed value, not a global
// singleton, so callers choose which prometheus.Registerer backs it —
// the process default in production, a throwaway prometheus.NewRegistry()
// in tests.
package metrics

const (
	namespace         = "ironautomata"
	compilerSubsystem = "compiler"
	engineSubsystem   = "engine"
	diagnosticsSubsys = "diagnostics"
)
