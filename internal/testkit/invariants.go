// Package testkit holds invariant checkers shared by tests in other
// packages.
package testkit

import (
	"fmt"

	"sigil/internal/arcir"
	"sigil/internal/bundle"
	"sigil/internal/hir"
	"sigil/internal/source"
	"sigil/internal/types"
)

// CheckImageInvariants runs referential integrity checks on a live
// image, covering what bundle.Restore leaves to its producers:
// 1) every name a function or expression carries is in the string table
// 2) every type annotation is in the type pool
// 3) every span with a position points at a file the file table knows
// 4) every IR function keeps its structural shape
func CheckImageInvariants(img *bundle.Image) error {
	if img == nil {
		return fmt.Errorf("nil image")
	}
	if img.Names == nil || img.Files == nil || img.Types == nil {
		return fmt.Errorf("image is missing an interner")
	}

	for i, f := range img.HIR {
		if f == nil {
			return fmt.Errorf("hir func %d is nil", i)
		}
		if err := checkHIRFunc(img, f); err != nil {
			return fmt.Errorf("hir func %d: %w", i, err)
		}
	}
	for i, f := range img.Funcs {
		if f == nil {
			return fmt.Errorf("ir func %d is nil", i)
		}
		if err := checkIRFunc(img, f); err != nil {
			return fmt.Errorf("ir func %d: %w", i, err)
		}
	}
	return nil
}

func checkHIRFunc(img *bundle.Image, f *hir.Func) error {
	if err := checkName(img, f.Name); err != nil {
		return err
	}
	if err := checkType(img, f.Result); err != nil {
		return err
	}
	for i, p := range f.Params {
		if err := join(checkName(img, p.Name), checkType(img, p.Type), checkSpan(img, p.Span)); err != nil {
			return fmt.Errorf("param %d: %w", i, err)
		}
	}

	if f.Tree == nil {
		if f.Body != hir.NoExprID {
			return fmt.Errorf("body id %d without a tree", f.Body)
		}
		return nil
	}
	for id := hir.ExprID(1); int(id) <= f.Tree.Len(); id++ {
		e := f.Tree.Expr(id)
		if err := join(checkName(img, e.Name), checkType(img, e.Type), checkSpan(img, e.Span)); err != nil {
			return fmt.Errorf("expr %d: %w", id, err)
		}
	}
	return nil
}

func checkIRFunc(img *bundle.Image, f *arcir.Func) error {
	if err := join(checkName(img, f.Name), checkSpan(img, f.Span)); err != nil {
		return err
	}
	for i, p := range f.Params {
		if err := checkType(img, p.Type); err != nil {
			return fmt.Errorf("param %d: %w", i, err)
		}
	}
	for i, t := range f.VarTypes {
		if err := checkType(img, t); err != nil {
			return fmt.Errorf("var %%%d: %w", i, err)
		}
	}
	for i := range f.Blocks {
		bb := &f.Blocks[i]
		for _, p := range bb.Params {
			if err := checkType(img, p.Type); err != nil {
				return fmt.Errorf("bb%d: %w", i, err)
			}
		}
		for _, sp := range bb.Spans {
			if err := checkSpan(img, sp); err != nil {
				return fmt.Errorf("bb%d: %w", i, err)
			}
		}
	}
	return arcir.ValidateShape(f)
}

func checkName(img *bundle.Image, id source.StringID) error {
	if id != source.NoStringID && !img.Names.Has(id) {
		return fmt.Errorf("name id %d is not in the string table", id)
	}
	return nil
}

func checkType(img *bundle.Image, id types.TypeID) error {
	if id == types.NoTypeID {
		return nil
	}
	if _, ok := img.Types.Lookup(id); !ok {
		return fmt.Errorf("type id %d is not in the pool", id)
	}
	return nil
}

func checkSpan(img *bundle.Image, sp source.Span) error {
	if sp.File == source.NoFileID {
		return nil
	}
	if img.Files.Get(sp.File) == nil {
		return fmt.Errorf("span %s points at an unknown file", sp)
	}
	return nil
}

func join(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
