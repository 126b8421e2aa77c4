package arc

import (
	"testing"

	"sigil/internal/source"
	"sigil/internal/types"
)

func newClassifier(pool *types.Interner) *Classifier {
	return NewClassifier(pool, DefaultConfig())
}

func TestClassifyScalars(t *testing.T) {
	pool := types.NewInterner()
	cls := newClassifier(pool)
	b := pool.Builtins()

	scalars := map[string]types.TypeID{
		"unit":     b.Unit,
		"never":    b.Never,
		"bool":     b.Bool,
		"int":      b.Int,
		"float":    b.Float,
		"char":     b.Char,
		"byte":     b.Byte,
		"duration": b.Duration,
		"size":     b.Size,
		"ordering": b.Ordering,
		"error":    b.Error,
	}
	for name, id := range scalars {
		if cls.NeedsRC(id) {
			t.Errorf("NeedsRC(%s) = true, want false", name)
		}
	}
	if !cls.NeedsRC(b.Str) {
		t.Errorf("NeedsRC(str) = false, want true")
	}
}

func TestClassifyContainers(t *testing.T) {
	pool := types.NewInterner()
	cls := newClassifier(pool)
	intTy := pool.Builtins().Int

	tests := []struct {
		name string
		id   types.TypeID
	}{
		{"list of int", pool.Intern(types.MakeList(intTy))},
		{"map int to int", pool.Intern(types.MakeMap(intTy, intTy))},
		{"set of int", pool.Intern(types.MakeSet(intTy))},
		{"channel of int", pool.Intern(types.MakeChannel(intTy))},
		{"fn int to int", pool.RegisterFn([]types.TypeID{intTy}, intTy)},
	}
	for _, tt := range tests {
		if !cls.NeedsRC(tt.id) {
			t.Errorf("NeedsRC(%s) = false, want true", tt.name)
		}
	}
}

func TestClassifyTransparentWrappers(t *testing.T) {
	pool := types.NewInterner()
	cls := newClassifier(pool)
	b := pool.Builtins()

	tests := []struct {
		name string
		id   types.TypeID
		want bool
	}{
		{"option of int", pool.Intern(types.MakeOption(b.Int)), false},
		{"option of str", pool.Intern(types.MakeOption(b.Str)), true},
		{"range of int", pool.Intern(types.MakeRange(b.Int)), false},
		{"result int err bool", pool.Intern(types.MakeResult(b.Int, b.Bool)), false},
		{"result int err str", pool.Intern(types.MakeResult(b.Int, b.Str)), true},
		{"result str err int", pool.Intern(types.MakeResult(b.Str, b.Int)), true},
		{"tuple of scalars", pool.RegisterTuple([]types.TypeID{b.Int, b.Bool}), false},
		{"tuple with str", pool.RegisterTuple([]types.TypeID{b.Int, b.Str}), true},
		{"nested option", pool.Intern(types.MakeOption(pool.Intern(types.MakeOption(b.Int)))), false},
	}
	for _, tt := range tests {
		if got := cls.NeedsRC(tt.id); got != tt.want {
			t.Errorf("NeedsRC(%s) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestClassifyNominal(t *testing.T) {
	pool := types.NewInterner()
	names := source.NewInterner()

	point := pool.RegisterStruct(names.Intern("Point"), source.Span{})
	pool.SetStructFields(point, []types.Field{
		{Name: names.Intern("x"), Type: pool.Builtins().Int},
		{Name: names.Intern("y"), Type: pool.Builtins().Int},
	})
	shape := pool.RegisterEnum(names.Intern("Shape"), source.Span{})
	meters := pool.RegisterAlias(names.Intern("Meters"), source.Span{})
	pool.SetAliasTarget(meters, pool.Builtins().Int)
	handle := pool.RegisterAlias(names.Intern("Handle"), source.Span{})
	pool.SetAliasTarget(handle, point)

	cls := newClassifier(pool)

	// Structs and enums are always heap candidates, even all-scalar ones.
	if !cls.NeedsRC(point) {
		t.Errorf("NeedsRC(Point) = false, want true")
	}
	if !cls.NeedsRC(shape) {
		t.Errorf("NeedsRC(Shape) = false, want true")
	}
	if cls.NeedsRC(meters) {
		t.Errorf("NeedsRC(Meters = int) = true, want false")
	}
	if !cls.NeedsRC(handle) {
		t.Errorf("NeedsRC(Handle = Point) = false, want true")
	}
	if !cls.NeedsRC(pool.InternNamed(names.Intern("Point"))) {
		t.Errorf("NeedsRC(named Point) = false, want true")
	}
}

func TestClassifyUnresolvedIsConservative(t *testing.T) {
	pool := types.NewInterner()
	names := source.NewInterner()
	cls := newClassifier(pool)

	tests := []struct {
		name string
		id   types.TypeID
	}{
		{"no type", types.NoTypeID},
		{"undeclared name", pool.InternNamed(names.Intern("Ghost"))},
		{"inference var", pool.InternVar(7)},
		{"projection", pool.InternProjection(pool.Builtins().Int, names.Intern("Item"))},
		{"foreign id", types.TypeID(4096)},
	}
	for _, tt := range tests {
		if !cls.NeedsRC(tt.id) {
			t.Errorf("NeedsRC(%s) = false, want true", tt.name)
		}
	}
}

func TestClassifyAliasCycleTerminates(t *testing.T) {
	pool := types.NewInterner()
	names := source.NewInterner()

	a := pool.RegisterAlias(names.Intern("A"), source.Span{})
	b := pool.RegisterAlias(names.Intern("B"), source.Span{})
	pool.SetAliasTarget(a, pool.InternNamed(names.Intern("B")))
	pool.SetAliasTarget(b, pool.InternNamed(names.Intern("A")))

	cls := newClassifier(pool)
	// Mutually recursive aliases never resolve; the guard answers true.
	if !cls.NeedsRC(a) {
		t.Errorf("NeedsRC(A) = false, want true for an alias cycle")
	}
}

func TestClassifyMemoIsStable(t *testing.T) {
	pool := types.NewInterner()
	cls := newClassifier(pool)

	opt := pool.Intern(types.MakeOption(pool.Builtins().Str))
	first := cls.NeedsRC(opt)
	for range 3 {
		if got := cls.NeedsRC(opt); got != first {
			t.Fatalf("NeedsRC changed between calls: %v then %v", first, got)
		}
	}

	// Types interned after construction still classify; the memo grows.
	late := pool.Intern(types.MakeList(pool.Builtins().Int))
	if !cls.NeedsRC(late) {
		t.Errorf("NeedsRC(late list) = false, want true")
	}
}
