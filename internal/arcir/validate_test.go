package arcir_test

import (
	"strings"
	"testing"

	"sigil/internal/arcir"
	"sigil/internal/source"
	"sigil/internal/types"
)

// validFunc builds a function that passes every check: a call, a jump
// carrying its result, and a parameterized return block.
func validFunc(fx *expandFixture) *arcir.Func {
	return &arcir.Func{
		Name:     fx.names.Intern("ok"),
		Params:   []arcir.Param{{Var: 0, Type: fx.strT}},
		Result:   fx.strT,
		Entry:    0,
		VarTypes: []types.TypeID{fx.strT, fx.strT, fx.strT},
		Blocks: []arcir.Block{
			{
				ID:    0,
				Body:  []arcir.Instr{apply(1, fx.strT, fx.names.Intern("mk"), 0)},
				Spans: []source.Span{span(1)},
				Term:  jump(1, 1),
			},
			{
				ID:     1,
				Params: []arcir.BlockParam{{Var: 2, Type: fx.strT}},
				Term:   ret(2),
			},
		},
	}
}

func TestValidateAcceptsWellFormedFunction(t *testing.T) {
	fx := newExpandFixture()
	if err := arcir.ValidateFunc(validFunc(fx)); err != nil {
		t.Fatalf("valid function rejected: %v", err)
	}
	if err := arcir.ValidateFunc(nil); err != nil {
		t.Errorf("nil function should pass, got %v", err)
	}
}

// TestValidateShapeAllowsReusePairs checks the structural validator
// accepts functions that have not been expanded yet; only the full
// validator insists the markers are gone.
func TestValidateShapeAllowsReusePairs(t *testing.T) {
	fx := newExpandFixture()
	f := validFunc(fx)
	f.Blocks[0].Body[0] = reset(1, 0)

	if err := arcir.ValidateShape(f); err != nil {
		t.Fatalf("shape check rejected a reuse marker: %v", err)
	}
	if err := arcir.ValidateFunc(f); err == nil {
		t.Errorf("full validation should reject a surviving reset")
	}
}

// TestValidateCatchesCorruption mutates one invariant at a time and
// checks the report names it.
func TestValidateCatchesCorruption(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f *arcir.Func)
		want   string
	}{
		{
			name:   "unterminated_block",
			mutate: func(f *arcir.Func) { f.Blocks[1].Term = arcir.Terminator{} },
			want:   "bb1: unterminated block",
		},
		{
			name:   "missing_entry",
			mutate: func(f *arcir.Func) { f.Entry = 5 },
			want:   "entry block bb5 does not exist",
		},
		{
			name:   "stale_block_id",
			mutate: func(f *arcir.Func) { f.Blocks[1].ID = 7 },
			want:   "bb1: carries id bb7",
		},
		{
			name:   "missing_jump_target",
			mutate: func(f *arcir.Func) { f.Blocks[0].Term = jump(9, 1) },
			want:   "jump target bb9 does not exist",
		},
		{
			name:   "jump_arity_mismatch",
			mutate: func(f *arcir.Func) { f.Blocks[0].Term = jump(1) },
			want:   "jump passes 0 args, target bb1 takes 1 params",
		},
		{
			name:   "branch_into_params",
			mutate: func(f *arcir.Func) { f.Blocks[0].Term = branch(0, 1, 1) },
			want:   "takes block params",
		},
		{
			name: "duplicate_switch_tags",
			mutate: func(f *arcir.Func) {
				f.Blocks[1].Params = nil
				f.Blocks[1].Term = ret(0)
				f.Blocks[0].Term = arcir.Terminator{Kind: arcir.TermSwitch, Switch: arcir.SwitchTerm{
					Scrutinee: 0,
					Cases:     []arcir.SwitchCase{{Tag: 3, Target: 1}, {Tag: 3, Target: 1}},
					Default:   arcir.NoBlockID,
				}}
			},
			want: "switch has duplicate case for tag 3",
		},
		{
			name:   "use_out_of_range",
			mutate: func(f *arcir.Func) { f.Blocks[0].Body[0].Apply.Args[0] = 9 },
			want:   "bb0: instr 0 uses var %9 out of range",
		},
		{
			name:   "def_out_of_range",
			mutate: func(f *arcir.Func) { f.Blocks[0].Body[0].Apply.Dst = 9 },
			want:   "bb0: instr 0 defines var %9 out of range",
		},
		{
			name:   "param_out_of_range",
			mutate: func(f *arcir.Func) { f.Params[0].Var = 9 },
			want:   "param var %9 out of range",
		},
		{
			name:   "span_mismatch",
			mutate: func(f *arcir.Func) { f.Blocks[0].Spans = nil },
			want:   "bb0: 1 instructions but 0 spans",
		},
		{
			name:   "surviving_reset",
			mutate: func(f *arcir.Func) { f.Blocks[0].Body[0] = reset(1, 0) },
			want:   "bb0: instr 0 is an unexpanded reset",
		},
		{
			name: "surviving_reuse",
			mutate: func(f *arcir.Func) {
				f.Blocks[0].Body[0] = reuse(1, 0, f.VarTypes[0], arcir.Ctor{Kind: arcir.CtorStruct})
			},
			want: "bb0: instr 0 is an unexpanded reuse",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fx := newExpandFixture()
			f := validFunc(fx)
			tc.mutate(f)
			err := arcir.ValidateFunc(f)
			if err == nil {
				t.Fatalf("corruption not caught")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("expected report to contain %q, got %q", tc.want, err.Error())
			}
		})
	}
}

// TestValidateModuleNamesFunction checks module validation prefixes
// reports with the offending function.
func TestValidateModuleNamesFunction(t *testing.T) {
	fx := newExpandFixture()
	bad := validFunc(fx)
	bad.Blocks[1].Term = arcir.Terminator{}
	m := &arcir.Module{Funcs: []*arcir.Func{validFunc(fx), bad, nil}}

	err := arcir.Validate(m, fx.names)
	if err == nil {
		t.Fatalf("expected an error")
	}
	if !strings.Contains(err.Error(), "function ok:") {
		t.Errorf("report should name the function, got %q", err.Error())
	}
	if err := arcir.Validate(nil, fx.names); err != nil {
		t.Errorf("nil module should pass, got %v", err)
	}
}
