// Package diag defines the diagnostic model shared by the ARC pipeline
// stages.
//
// # Purpose
//
//   - Provide deterministic, serialisable records for findings produced by
//     the cycle detector, the bundle loader, and configuration parsing.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to concrete storage or formatting layers.
//
// # Scope
//
// Package diag does not perform any formatting, IO, or CLI integration.
// Rendering lives in internal/diagfmt; orchestration lives in the driver.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – tri-level enum (Info, Warning, Error).
//   - Code – compact numeric identifier (see codes.go) with stable string form.
//   - Message – human oriented text; keep it short and actionable.
//   - Primary span – the canonical source.Span pointing at the issue
//     (a type declaration for cycle errors; zero when no position exists).
//   - Notes – optional secondary spans/messages, e.g. the other members of
//     a reference cycle. Each note must add new context rather than repeat
//     the diagnostic message.
//
// Unlike the front end, this stage never attaches fix suggestions: bundles
// carry spans but no source text, so there is nothing to edit here. Breaking
// a type cycle is a design decision for the author, not a mechanical fix.
//
// # Emitting diagnostics
//
// Producers report through a diag.Reporter. The cycle detector constructs a
// ReportBuilder via ReportError and chains WithNote before calling Emit.
// BagReporter aggregates into a Bag, which supports sorting, deduplication
// and merging so per-function results combine deterministically.
package diag
