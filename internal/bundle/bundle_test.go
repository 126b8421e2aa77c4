package bundle_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"sigil/internal/arc"
	"sigil/internal/arcir"
	"sigil/internal/bundle"
	"sigil/internal/hir"
	"sigil/internal/source"
	"sigil/internal/testkit"
	"sigil/internal/types"
)

// liveImage assembles a small but fully populated module: one struct
// type, one typed function body, and one IR function.
func liveImage(t *testing.T) *bundle.Image {
	t.Helper()

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
		{Name: names.Intern("next"), Type: b.Int},
	})

	xs := names.Intern("xs")
	consume := names.Intern("consume")
	tree := hir.NewTree(3)
	callee := tree.Push(hir.Expr{Kind: hir.ExprIdent, Name: consume, Type: b.Unit, Span: sp(3)})
	arg := tree.Push(hir.Expr{Kind: hir.ExprIdent, Name: xs, Type: b.Str, Span: sp(4)})
	call := tree.Push(hir.Expr{Kind: hir.ExprCall, X: callee, List: []hir.ExprID{arg}, Type: b.Unit, Span: sp(3)})
	body := tree.Push(hir.Expr{Kind: hir.ExprBlock, List: []hir.ExprID{call}, Type: b.Unit, Span: sp(2)})

	mainName := names.Intern("main")
	hirFn := &hir.Func{
		Name:   mainName,
		Params: []hir.Param{{Name: xs, Type: b.Str, Span: sp(1)}},
		Result: b.Unit,
		Body:   body,
		Tree:   tree,
	}

	irFn := &arcir.Func{
		Name:     mainName,
		Span:     sp(1),
		Params:   []arcir.Param{{Var: 0, Type: b.Str, Own: arc.Owned}},
		Result:   b.Str,
		Entry:    0,
		VarTypes: []types.TypeID{b.Str, b.Str},
		Blocks: []arcir.Block{{
			ID: 0,
			Body: []arcir.Instr{{
				Kind:  arcir.InstrApply,
				Apply: arcir.ApplyInstr{Dst: 1, Type: b.Str, Func: consume, Args: []arcir.VarID{0}},
			}},
			Spans: []source.Span{sp(5)},
			Term:  arcir.Terminator{Kind: arcir.TermReturn, Return: arcir.ReturnTerm{Value: 1}},
		}},
	}

	return &bundle.Image{
		Name:  names.Intern("demo"),
		Names: names,
		Files: files,
		Types: pool,
		HIR:   []*hir.Func{hirFn},
		Funcs: []*arcir.Func{irFn},
	}
}

func TestBundleRoundTrip(t *testing.T) {
	img := liveImage(t)
	m := bundle.Snapshot(img)

	var buf bytes.Buffer
	if err := bundle.Encode(&buf, m); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := bundle.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if got.Schema != bundle.Schema {
		t.Errorf("expected schema %d, got %d", bundle.Schema, got.Schema)
	}
	if got.Name != m.Name {
		t.Errorf("expected name id %d, got %d", m.Name, got.Name)
	}
	if !reflect.DeepEqual(got.Strings, m.Strings) {
		t.Errorf("string table diverged:\nwant %v\ngot  %v", m.Strings, got.Strings)
	}
	if !reflect.DeepEqual(got.Files, m.Files) {
		t.Errorf("file table diverged:\nwant %v\ngot  %v", m.Files, got.Files)
	}
	if !reflect.DeepEqual(got.Types, m.Types) {
		t.Errorf("type pool diverged")
	}
	if !reflect.DeepEqual(got.HIR, m.HIR) {
		t.Errorf("hir funcs diverged")
	}
	if len(got.Funcs) != 1 || !reflect.DeepEqual(got.Funcs[0], m.Funcs[0]) {
		t.Errorf("ir funcs diverged")
	}
}

func TestRestorePreservesIDs(t *testing.T) {
	img := liveImage(t)
	m := bundle.Snapshot(img)

	var buf bytes.Buffer
	if err := bundle.Encode(&buf, m); err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := bundle.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	back, err := decoded.Restore()
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if err := testkit.CheckImageInvariants(back); err != nil {
		t.Fatalf("restored image lost integrity: %v", err)
	}

	if name, ok := back.Names.Lookup(back.Name); !ok || name != "demo" {
		t.Errorf("expected module name demo, got %q (ok=%t)", name, ok)
	}
	if !reflect.DeepEqual(back.Types.Snapshot(), img.Types.Snapshot()) {
		t.Errorf("type pool did not survive the round trip")
	}
	if got, want := back.Files.Snapshot(), img.Files.Snapshot(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected file table %v, got %v", want, got)
	}

	if len(back.HIR) != 1 {
		t.Fatalf("expected 1 hir func, got %d", len(back.HIR))
	}
	fn := back.HIR[0]
	if fn.Tree.Len() != img.HIR[0].Tree.Len() {
		t.Errorf("expected arena of %d, got %d", img.HIR[0].Tree.Len(), fn.Tree.Len())
	}
	if root := fn.BodyExpr(); root == nil || root.Kind != hir.ExprBlock {
		t.Errorf("body root lost its shape: %+v", root)
	}
	if !reflect.DeepEqual(fn.Params, img.HIR[0].Params) {
		t.Errorf("hir params diverged")
	}

	if len(back.Funcs) != 1 || !reflect.DeepEqual(back.Funcs[0], img.Funcs[0]) {
		t.Errorf("ir func did not survive the round trip")
	}
}

func TestDecodeRejectsSchemaMismatch(t *testing.T) {
	var buf bytes.Buffer
	if err := msgpack.NewEncoder(&buf).Encode(&bundle.Module{Schema: 99}); err != nil {
		t.Fatalf("encode: %v", err)
	}
	_, err := bundle.Decode(&buf)
	if !errors.Is(err, bundle.ErrSchemaVersion) {
		t.Errorf("expected ErrSchemaVersion, got %v", err)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := bundle.Decode(bytes.NewReader([]byte{0xc1})); err == nil {
		t.Errorf("garbage input should not decode")
	}
}

func TestReadWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "demo.mp")
	m := bundle.Snapshot(liveImage(t))

	if err := bundle.WriteFile(path, m); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, digest, err := bundle.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Name != m.Name {
		t.Errorf("expected name id %d, got %d", m.Name, got.Name)
	}
	if digest == (bundle.Digest{}) {
		t.Errorf("digest should not be zero")
	}
	if len(digest.Hex()) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(digest.Hex()))
	}

	_, again, err := bundle.ReadFile(path)
	if err != nil {
		t.Fatalf("second read: %v", err)
	}
	if digest != again {
		t.Errorf("digest not stable across reads")
	}

	if _, _, err := bundle.ReadFile(filepath.Join(dir, "missing.mp")); err == nil {
		t.Errorf("missing file should not read")
	}

	bad := filepath.Join(dir, "bad.mp")
	if err := os.WriteFile(bad, []byte{0xc1}, 0o644); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}
	if _, _, err := bundle.ReadFile(bad); err == nil {
		t.Errorf("corrupt file should not read")
	}
}

func TestRestoreRejectsCorruptBundles(t *testing.T) {
	goodTypes := types.NewInterner().Snapshot()

	tests := []struct {
		name string
		m    *bundle.Module
		want string
	}{
		{
			name: "empty_string_table",
			m:    &bundle.Module{Types: goodTypes},
			want: "string table",
		},
		{
			name: "bad_type_payload",
			m: &bundle.Module{
				Strings: []string{""},
				Types: types.Snapshot{Types: []types.Type{
					{Kind: types.KindInvalid},
					{Kind: types.KindStruct, Payload: 9},
				}},
			},
			want: "type pool",
		},
		{
			name: "body_beyond_arena",
			m: &bundle.Module{
				Strings: []string{""},
				Types:   goodTypes,
				HIR: []bundle.HIRFunc{{
					Body:  5,
					Exprs: []hir.Expr{{Kind: hir.ExprUnitLit}},
				}},
			},
			want: "body id 5 beyond arena of 1",
		},
		{
			name: "dangling_child",
			m: &bundle.Module{
				Strings: []string{""},
				Types:   goodTypes,
				HIR: []bundle.HIRFunc{{
					Body:  1,
					Exprs: []hir.Expr{{Kind: hir.ExprBlock, List: []hir.ExprID{9}}},
				}},
			},
			want: "references id 9",
		},
		{
			name: "ir_var_out_of_range",
			m: &bundle.Module{
				Strings: []string{""},
				Types:   goodTypes,
				Funcs: []*arcir.Func{{
					Entry: 0,
					Blocks: []arcir.Block{{
						ID:   0,
						Term: arcir.Terminator{Kind: arcir.TermReturn, Return: arcir.ReturnTerm{Value: 7}},
					}},
				}},
			},
			want: "uses var %7 out of range",
		},
		{
			name: "ir_unterminated_block",
			m: &bundle.Module{
				Strings: []string{""},
				Types:   goodTypes,
				Funcs: []*arcir.Func{{
					Entry:  0,
					Blocks: []arcir.Block{{ID: 0}},
				}},
			},
			want: "unterminated block",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.m.Restore()
			if err == nil {
				t.Fatalf("corrupt bundle restored")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("expected error to contain %q, got %q", tc.want, err.Error())
			}
		})
	}
}
