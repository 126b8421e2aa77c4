package fuzztests

import (
	"bytes"
	"testing"

	"sigil/internal/arc"
	"sigil/internal/arcir"
	"sigil/internal/bundle"
	"sigil/internal/hir"
	"sigil/internal/source"
	"sigil/internal/types"
)

const maxSeedBytes = 64 << 10 // 64 KiB cap for the corpus

// addCorpusSeeds feeds the fuzzer valid bundle encodings plus a few
// degenerate byte strings. Valid seeds matter: mutations of a real
// encoding reach far deeper than random bytes.
func addCorpusSeeds(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte{0xc1})
	for _, img := range seedImages() {
		var buf bytes.Buffer
		if err := bundle.Encode(&buf, bundle.Snapshot(img)); err != nil {
			continue
		}
		enc := clampSeed(buf.Bytes())
		f.Add(enc)
		if len(enc) > 8 {
			f.Add(enc[:len(enc)/2])
		}
	}
}

// seedImages builds small well-formed modules: an empty one, one with
// a typed function body, and one with a reset/reuse pair.
func seedImages() []*bundle.Image {
	return []*bundle.Image{
		emptyImage(),
		typedImage(),
		reuseImage(),
	}
}

func emptyImage() *bundle.Image {
	names := source.NewInterner()
	return &bundle.Image{
		Name:  names.Intern("empty"),
		Names: names,
		Files: source.NewFileSet(),
		Types: types.NewInterner(),
	}
}

func typedImage() *bundle.Image {
	names := source.NewInterner()
	files := source.NewFileSet()
	pool := types.NewInterner()
	b := pool.Builtins()

	fileID := files.AddVirtual("main.sg", []byte("fn main(xs: str) {}\n"))
	sp := func(n uint32) source.Span {
		return source.Span{File: fileID, Start: n, End: n + 1}
	}

	node := pool.RegisterStruct(names.Intern("Node"), sp(0))
	pool.SetStructFields(node, []types.Field{
		{Name: names.Intern("value"), Type: b.Str},
		{Name: names.Intern("count"), Type: b.Int},
	})

	xs := names.Intern("xs")
	consume := names.Intern("consume")
	tree := hir.NewTree(4)
	callee := tree.Push(hir.Expr{Kind: hir.ExprIdent, Name: consume, Type: b.Unit, Span: sp(3)})
	arg := tree.Push(hir.Expr{Kind: hir.ExprIdent, Name: xs, Type: b.Str, Span: sp(4)})
	call := tree.Push(hir.Expr{Kind: hir.ExprCall, X: callee, List: []hir.ExprID{arg}, Type: b.Unit, Span: sp(3)})
	body := tree.Push(hir.Expr{Kind: hir.ExprBlock, List: []hir.ExprID{call}, Type: b.Unit, Span: sp(2)})

	return &bundle.Image{
		Name:  names.Intern("typed"),
		Names: names,
		Files: files,
		Types: pool,
		HIR: []*hir.Func{{
			Name:   names.Intern("main"),
			Params: []hir.Param{{Name: xs, Type: b.Str, Span: sp(1)}},
			Result: b.Unit,
			Body:   body,
			Tree:   tree,
		}},
	}
}

func reuseImage() *bundle.Image {
	names := source.NewInterner()
	files := source.NewFileSet()
	pool := types.NewInterner()
	b := pool.Builtins()

	fileID := files.AddVirtual("main.sg", []byte("fn step(n: Node, v: str) -> Node\n"))
	sp := func(n uint32) source.Span {
		return source.Span{File: fileID, Start: n, End: n + 1}
	}

	nodeName := names.Intern("Node")
	node := pool.RegisterStruct(nodeName, sp(0))
	pool.SetStructFields(node, []types.Field{
		{Name: names.Intern("value"), Type: b.Str},
	})

	fn := &arcir.Func{
		Name:     names.Intern("step"),
		Span:     sp(1),
		Params:   []arcir.Param{{Var: 0, Type: node, Own: arc.Owned}, {Var: 1, Type: b.Str, Own: arc.Borrowed}},
		Result:   node,
		Entry:    0,
		VarTypes: []types.TypeID{node, b.Str, node, node},
		Blocks: []arcir.Block{{
			ID: 0,
			Body: []arcir.Instr{
				{Kind: arcir.InstrReset, Reset: arcir.ResetInstr{Var: 0, Token: 2}},
				{Kind: arcir.InstrReuse, Reuse: arcir.ReuseInstr{
					Token: 2, Dst: 3, Type: node,
					Ctor: arcir.Ctor{Kind: arcir.CtorStruct, Name: nodeName},
					Args: []arcir.VarID{1},
				}},
			},
			Spans: []source.Span{sp(5), sp(6)},
			Term:  arcir.Terminator{Kind: arcir.TermReturn, Return: arcir.ReturnTerm{Value: 3}},
		}},
	}

	return &bundle.Image{
		Name:  names.Intern("reuse"),
		Names: names,
		Files: files,
		Types: pool,
		Funcs: []*arcir.Func{fn},
	}
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}
