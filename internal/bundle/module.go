// Package bundle defines the msgpack container ARC modules travel in
// between compiler stages. A bundle is self-contained: the string table,
// the file table, the type pool, the typed expression trees the
// ownership pass reads, and the ARC IR the expansion pass rewrites all
// ride along, and every ID survives a round trip unchanged.
package bundle

import (
	"errors"
	"fmt"
	"slices"

	"sigil/internal/arcir"
	"sigil/internal/hir"
	"sigil/internal/source"
	"sigil/internal/types"
)

// Schema is the bundle format version. Bump it on any change to the
// serialized layout; readers reject everything else.
const Schema uint16 = 1

// Module is the serialized form of a compiler module between lowering
// and codegen.
type Module struct {
	Schema  uint16
	Name    source.StringID
	Strings []string
	Files   []string
	Types   types.Snapshot
	HIR     []HIRFunc
	Funcs   []*arcir.Func
}

// HIRFunc carries one typed function; the expression arena travels as a
// flat slice in ID order.
type HIRFunc struct {
	Name   source.StringID
	Params []hir.Param
	Result types.TypeID
	Body   hir.ExprID
	Exprs  []hir.Expr
}

// Image is a bundle brought back to life: fresh interners holding the
// bundle's IDs, with the functions wired to them.
type Image struct {
	Name  source.StringID
	Names *source.Interner
	Files *source.FileSet
	Types *types.Interner
	HIR   []*hir.Func
	Funcs []*arcir.Func
}

// Snapshot captures a live image into its serializable form. The IR
// functions are shared, not copied; encode before mutating them.
func Snapshot(img *Image) *Module {
	if img == nil {
		return nil
	}
	m := &Module{Schema: Schema, Name: img.Name}
	if img.Names != nil {
		m.Strings = img.Names.Snapshot()
	}
	if img.Files != nil {
		m.Files = img.Files.Snapshot()
	}
	if img.Types != nil {
		m.Types = img.Types.Snapshot()
	}
	m.HIR = make([]HIRFunc, 0, len(img.HIR))
	for _, f := range img.HIR {
		if f == nil {
			continue
		}
		hf := HIRFunc{
			Name:   f.Name,
			Params: slices.Clone(f.Params),
			Result: f.Result,
			Body:   f.Body,
		}
		if f.Tree != nil {
			hf.Exprs = f.Tree.Snapshot()
		}
		m.HIR = append(m.HIR, hf)
	}
	m.Funcs = make([]*arcir.Func, 0, len(img.Funcs))
	for _, f := range img.Funcs {
		if f != nil {
			m.Funcs = append(m.Funcs, f)
		}
	}
	return m
}

// Restore rebuilds live interners and functions from the bundle,
// preserving every ID. A malformed bundle is rejected whole.
func (m *Module) Restore() (*Image, error) {
	if m == nil {
		return nil, errors.New("bundle: nil module")
	}
	img := &Image{
		Name:  m.Name,
		Names: source.NewInterner(),
		Files: source.NewFileSet(),
		Types: types.NewInterner(),
	}
	if err := img.Names.Restore(m.Strings); err != nil {
		return nil, fmt.Errorf("bundle: string table: %w", err)
	}
	img.Files.Restore(m.Files)
	if err := img.Types.Restore(m.Types); err != nil {
		return nil, fmt.Errorf("bundle: type pool: %w", err)
	}

	img.HIR = make([]*hir.Func, 0, len(m.HIR))
	for i := range m.HIR {
		hf := &m.HIR[i]
		if int(hf.Body) > len(hf.Exprs) {
			return nil, fmt.Errorf("bundle: hir func %d: body id %d beyond arena of %d", i, hf.Body, len(hf.Exprs))
		}
		tree, err := hir.RestoreTree(hf.Exprs)
		if err != nil {
			return nil, fmt.Errorf("bundle: hir func %d: %w", i, err)
		}
		img.HIR = append(img.HIR, &hir.Func{
			Name:   hf.Name,
			Params: slices.Clone(hf.Params),
			Result: hf.Result,
			Body:   hf.Body,
			Tree:   tree,
		})
	}

	img.Funcs = make([]*arcir.Func, 0, len(m.Funcs))
	for i, f := range m.Funcs {
		if f == nil {
			continue
		}
		// Shape problems surface here so the passes can index blocks
		// and variable tables without further checks.
		if err := arcir.ValidateShape(f); err != nil {
			return nil, fmt.Errorf("bundle: ir func %d: %w", i, err)
		}
		img.Funcs = append(img.Funcs, f)
	}
	return img, nil
}
