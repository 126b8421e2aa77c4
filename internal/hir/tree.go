package hir

import (
	"fmt"

	"fortio.org/safecast"
)

// Tree is a flat expression arena. IDs are 1-based so the zero ExprID
// stays free as the "absent" sentinel.
type Tree struct {
	exprs []Expr
}

// NewTree creates a tree whose storage starts at capHint expressions.
// Zero is allowed.
func NewTree(capHint uint) *Tree {
	return &Tree{
		exprs: make([]Expr, 0, capHint),
	}
}

// Push appends an expression and returns its id.
func (t *Tree) Push(e Expr) ExprID {
	t.exprs = append(t.exprs, e)
	return ExprID(safecast.MustConvert[uint32](len(t.exprs)))
}

// Expr returns the node for id, or nil for NoExprID and out-of-range ids.
// The pointer stays valid until the next Push.
func (t *Tree) Expr(id ExprID) *Expr {
	if id == NoExprID || int(id) > len(t.exprs) {
		return nil
	}
	return &t.exprs[id-1]
}

// Len returns the number of expressions in the tree.
func (t *Tree) Len() int {
	return len(t.exprs)
}

// Snapshot returns a deep copy of the arena in id order, suitable for
// serialization. Index i holds the node with id i+1.
func (t *Tree) Snapshot() []Expr {
	out := make([]Expr, len(t.exprs))
	copy(out, t.exprs)
	for i := range out {
		if len(out[i].List) > 0 {
			list := make([]ExprID, len(out[i].List))
			copy(list, out[i].List)
			out[i].List = list
		}
	}
	return out
}

// RestoreTree rebuilds a tree from a snapshot, preserving ids. Trees
// grow bottom-up, so a node may only reference strictly earlier ids;
// anything else is a corrupted snapshot and is rejected instead of
// producing dangling or cyclic references.
func RestoreTree(exprs []Expr) (*Tree, error) {
	check := func(at int, id ExprID) error {
		if id != NoExprID && int(id) > at {
			return fmt.Errorf("hir: expr %d references id %d, not an earlier node", at+1, id)
		}
		return nil
	}
	for i := range exprs {
		e := &exprs[i]
		if e.Kind == ExprInvalid {
			return nil, fmt.Errorf("hir: expr %d has invalid kind", i+1)
		}
		if err := check(i, e.X); err != nil {
			return nil, err
		}
		if err := check(i, e.Y); err != nil {
			return nil, err
		}
		if err := check(i, e.Z); err != nil {
			return nil, err
		}
		for _, id := range e.List {
			if err := check(i, id); err != nil {
				return nil, err
			}
		}
	}
	t := &Tree{exprs: make([]Expr, len(exprs))}
	copy(t.exprs, exprs)
	for i := range t.exprs {
		if len(t.exprs[i].List) > 0 {
			list := make([]ExprID, len(t.exprs[i].List))
			copy(list, t.exprs[i].List)
			t.exprs[i].List = list
		}
	}
	return t, nil
}
