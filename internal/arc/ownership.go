package arc

import (
	"fmt"

	"sigil/internal/hir"
	"sigil/internal/source"
)

// Ownership describes how an expression's context consumes its value.
// The analyzer threads it top-down; it is never stored.
type Ownership uint8

const (
	// Owned values belong to the enclosing scope and die with it.
	Owned Ownership = iota
	// Borrowed values are observed without being consumed.
	Borrowed
	// Moved values transfer into a new owner: argument slots,
	// initializers, container elements.
	Moved
	// Escapes values leave the function through a return or a capture.
	Escapes
)

func (o Ownership) String() string {
	switch o {
	case Owned:
		return "owned"
	case Borrowed:
		return "borrowed"
	case Moved:
		return "moved"
	case Escapes:
		return "escapes"
	default:
		return fmt.Sprintf("Ownership(%d)", uint8(o))
	}
}

// OwnershipInfo is the result of one ownership pass over a function
// body: the expressions whose retain/release pair is provably redundant
// and the bindings that still owe a release when their scope ends.
// Elision is conservative. A missed entry costs one refcount bump at
// runtime, never a leak and never a use after free.
type OwnershipInfo struct {
	ElideARC     map[hir.ExprID]struct{}
	NeedsRelease map[source.StringID]struct{}
}

// Elided reports whether ARC operations for the expression are skipped.
func (info *OwnershipInfo) Elided(id hir.ExprID) bool {
	_, ok := info.ElideARC[id]
	return ok
}

// Releases reports whether the binding owes a release at scope end.
func (info *OwnershipInfo) Releases(name source.StringID) bool {
	_, ok := info.NeedsRelease[name]
	return ok
}

// AnalyzeOwnership walks the function body once, top down, starting in
// Owned context. The walk is linear in the number of expressions; no
// fixpoint, no interprocedural state.
func AnalyzeOwnership(fn *hir.Func, cls Classification) *OwnershipInfo {
	info := &OwnershipInfo{
		ElideARC:     make(map[hir.ExprID]struct{}),
		NeedsRelease: make(map[source.StringID]struct{}),
	}
	if fn == nil || fn.Tree == nil || !fn.Body.IsValid() {
		return info
	}
	p := &ownershipPass{tree: fn.Tree, cls: cls, info: info}
	p.visit(fn.Body, Owned)
	return info
}

type ownershipPass struct {
	tree *hir.Tree
	cls  Classification
	info *OwnershipInfo
}

func (p *ownershipPass) elide(id hir.ExprID) {
	p.info.ElideARC[id] = struct{}{}
}

func (p *ownershipPass) visit(id hir.ExprID, ctx Ownership) {
	e := p.tree.Expr(id)
	if e == nil {
		return
	}

	// Values that never carry a refcount skip ARC wholesale. Children
	// still get visited: an RC'd subexpression can hide under a scalar
	// comparison or a scalar-returning call.
	if !p.cls.NeedsRC(e.Type) {
		p.elide(id)
		p.visitScalarChildren(e)
		return
	}

	switch e.Kind {
	case hir.ExprIdent:
		// A use whose context takes the value over is a candidate last
		// use: the retain and the eventual release cancel out.
		if ctx == Moved || ctx == Owned {
			p.elide(id)
		}

	case hir.ExprIntLit, hir.ExprFloatLit, hir.ExprBoolLit,
		hir.ExprStrLit, hir.ExprCharLit, hir.ExprUnitLit:
		// Freshly constructed values are uniquely owned at birth.
		p.elide(id)

	case hir.ExprSome, hir.ExprOk, hir.ExprErr:
		// The wrapper stays unboxed when the payload is scalar.
		inner := p.tree.Expr(e.X)
		if inner == nil || !p.cls.NeedsRC(inner.Type) {
			p.elide(id)
		}
		p.visit(e.X, Moved)

	case hir.ExprLet:
		p.info.NeedsRelease[e.Name] = struct{}{}
		p.visit(e.X, Moved)

	case hir.ExprAssign:
		p.visit(e.X, Borrowed)
		p.visit(e.Y, Moved)

	case hir.ExprCall, hir.ExprMethodCall:
		p.visit(e.X, Borrowed)
		for _, arg := range e.List {
			p.visit(arg, Moved)
		}

	case hir.ExprBinary:
		p.visit(e.X, Borrowed)
		p.visit(e.Y, Borrowed)

	case hir.ExprUnary:
		p.visit(e.X, Borrowed)

	case hir.ExprIf:
		p.visit(e.X, Borrowed)
		p.visit(e.Y, ctx)
		p.visit(e.Z, ctx)

	case hir.ExprMatch:
		p.visit(e.X, Borrowed)
		for _, arm := range e.List {
			p.visit(arm, ctx)
		}

	case hir.ExprFor:
		p.visit(e.X, Borrowed)
		p.visit(e.Y, Borrowed)
		p.visit(e.Z, Owned)

	case hir.ExprBlock:
		for _, stmt := range e.List {
			p.visit(stmt, Owned)
		}
		p.visit(e.X, ctx)

	case hir.ExprLambda:
		// Parameters rebind inside the lambda; only the body is walked.
		p.visit(e.X, Escapes)

	case hir.ExprListLit, hir.ExprTupleLit, hir.ExprMapLit, hir.ExprStructLit:
		// The container itself is a fresh allocation the context will
		// consume; its elements move in.
		for _, el := range e.List {
			p.visit(el, Moved)
		}

	case hir.ExprField, hir.ExprIndex:
		p.visit(e.X, Borrowed)

	case hir.ExprRange:
		p.visit(e.X, Borrowed)
		p.visit(e.Y, Borrowed)

	case hir.ExprReturn, hir.ExprBreak:
		p.visit(e.X, Escapes)

	case hir.ExprTry, hir.ExprAwait:
		p.visit(e.X, ctx)
	}
}

// visitScalarChildren reaches RC'd subexpressions below an expression
// that is itself scalar. Only shapes whose children can outlive the
// scalar result matter here; the contexts are fixed because the parent
// no longer supplies one.
func (p *ownershipPass) visitScalarChildren(e *hir.Expr) {
	switch e.Kind {
	case hir.ExprBinary:
		p.visit(e.X, Borrowed)
		p.visit(e.Y, Borrowed)
	case hir.ExprUnary:
		p.visit(e.X, Borrowed)
	case hir.ExprIf:
		p.visit(e.X, Borrowed)
		p.visit(e.Y, Owned)
		p.visit(e.Z, Owned)
	case hir.ExprLet:
		p.visit(e.X, Moved)
	case hir.ExprCall:
		p.visit(e.X, Borrowed)
		for _, arg := range e.List {
			p.visit(arg, Moved)
		}
	}
}
