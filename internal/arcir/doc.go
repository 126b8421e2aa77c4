// Package arcir is the reference-counted intermediate representation
// the compiler lowers function bodies into, and the home of the
// constructor reuse expansion.
//
// A Func is a set of basic blocks over a flat, densely numbered
// variable space; VarTypes gives every variable its type. Blocks carry
// parameters in place of phi nodes and keep a Spans slice in lock step
// with Body so provenance survives rewrites. Instructions cover pure
// bindings, calls, projections, construction, in-place stores, and the
// reference count primitives RcInc, RcDec, and IsShared.
//
// Reset and Reuse bracket a reuse opportunity: Reset names the memory
// of a value whose last use has passed, Reuse constructs into that
// memory. Expand rewrites every pair into a runtime uniqueness test
// with two continuations. When the old value is unshared the fast path
// writes the changed fields in place; when it is shared the slow path
// decrements the old value and allocates fresh. After Expand no Reset
// or Reuse remains.
//
// ComputeLiveness reports per-block live-in and live-out sets over the
// refcounted variables, and Validate checks the structural invariants
// every well-formed function keeps: terminated blocks, resolvable
// targets, in-range variables, and span lock step.
package arcir
