package driver

import (
	"runtime"

	"sigil/internal/arc"
	"sigil/internal/trace"
)

// DefaultMaxDiagnostics bounds the bag when the caller does not.
const DefaultMaxDiagnostics = 256

// Options configures ProcessModule and ExpandFile. The zero value runs
// every analysis with no cache, no progress reporting, and no tracing.
type Options struct {
	// Config carries the [arc] manifest settings into classification.
	// The analyses answer the same regardless; the knobs travel with
	// the output for later stages.
	Config arc.Config
	// MaxDiagnostics caps the bag; overflow is counted, not stored.
	MaxDiagnostics int
	// Jobs bounds the per-function fan-out. Zero or negative means
	// GOMAXPROCS.
	Jobs int
	// Validate re-checks every function against the IR validator after
	// expansion. A failure there is a pipeline bug and comes back as an
	// error return, not a diagnostic.
	Validate bool
	// Cache, when set, serves repeat runs without re-expanding.
	Cache *DiskCache
	// Tracer receives pass and per-function spans.
	Tracer trace.Tracer
	// Progress receives stage events.
	Progress ProgressSink
	// Timings appends an ObsTimings diagnostic with phase durations.
	Timings bool
}

func (o Options) withDefaults() Options {
	if o.MaxDiagnostics <= 0 {
		o.MaxDiagnostics = DefaultMaxDiagnostics
	}
	if o.Jobs <= 0 {
		o.Jobs = runtime.GOMAXPROCS(0)
	}
	if o.Tracer == nil {
		o.Tracer = trace.Nop
	}
	return o
}
