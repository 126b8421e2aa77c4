// Package hir holds the typed expression trees the ARC passes analyze.
//
// HIR here is the slice of the frontend the ownership analyzer needs:
// every expression carries its resolved TypeID and source span, and the
// tree is stored in a flat arena addressed by ExprID. Functions arrive
// in bundles already typed; this package never lowers source text.
//
// The representation is deliberately fat: one Expr struct covers every
// kind, with per-kind field roles documented on Expr. That keeps the
// arena a single dense slice and makes snapshots trivial to encode.
package hir

// ExprID identifies an expression within a Tree. IDs are 1-based;
// zero is the sentinel for "no expression" (absent else arm, unit
// block result, bare return).
type ExprID uint32

// NoExprID is the invalid expression id.
const NoExprID ExprID = 0

// IsValid reports whether the id refers to an expression.
func (id ExprID) IsValid() bool { return id != NoExprID }
