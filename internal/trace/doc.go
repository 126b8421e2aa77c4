// Package trace provides the tracing subsystem for the ARC pipeline.
//
// Tracing exists to answer "where did the time go" and "which function
// was being processed when it hung" without attaching a profiler.
//
// # Usage
//
// Enable tracing via the CLI:
//
//	sigil-arc expand --trace=- mod.mp
//	sigil-arc expand --trace=run.ndjson mod.mp
//
// # Levels
//
//   - LevelOff: no tracing
//   - LevelError: reserved for error paths
//   - LevelPhase: driver and pass boundaries (cycles, ownership, expand)
//   - LevelDetail: per-function events inside a pass
//   - LevelDebug: everything
//
// # Context propagation
//
// Tracers ride the context through the pipeline:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopePass, "expand", parentID)
//	defer span.End("")
//
// Spans nest by parent ID; the per-function fan-out stores the pass
// span in the context so workers parent their spans correctly.
package trace
