package hir

import (
	"sigil/internal/source"
	"sigil/internal/types"
)

// Param is a function parameter.
type Param struct {
	Name source.StringID
	Type types.TypeID
	Span source.Span
}

// Func is a typed function body ready for ownership analysis.
type Func struct {
	Name   source.StringID
	Params []Param
	Result types.TypeID
	Body   ExprID
	Tree   *Tree
}

// BodyExpr returns the root body node, or nil for an empty function.
func (f *Func) BodyExpr() *Expr {
	if f.Tree == nil {
		return nil
	}
	return f.Tree.Expr(f.Body)
}
