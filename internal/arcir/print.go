package arcir

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"sigil/internal/source"
	"sigil/internal/types"
)

// DumpOptions configures ARC IR module dumping.
type DumpOptions struct{}

// DumpModule writes a human-readable representation of an ARC IR
// module. Functions come out sorted by name so dumps diff cleanly.
func DumpModule(w io.Writer, m *Module, typesIn *types.Interner, names *source.Interner, _ DumpOptions) error {
	if w == nil || m == nil {
		return nil
	}

	funcs := make([]*Func, 0, len(m.Funcs))
	for _, f := range m.Funcs {
		if f != nil {
			funcs = append(funcs, f)
		}
	}
	slices.SortStableFunc(funcs, func(a, b *Func) int {
		return strings.Compare(lookupName(names, a.Name), lookupName(names, b.Name))
	})

	fmt.Fprintf(w, "funcs=%d\n", len(funcs))
	for _, f := range funcs {
		if err := dumpFunc(w, f, typesIn, names); err != nil {
			return err
		}
	}
	return nil
}

func dumpFunc(w io.Writer, f *Func, typesIn *types.Interner, names *source.Interner) error {
	if w == nil || f == nil {
		return nil
	}
	fmt.Fprintf(w, "\nfn %s:\n", lookupName(names, f.Name))

	if len(f.Params) > 0 {
		fmt.Fprintf(w, "  params:\n")
		for _, p := range f.Params {
			fmt.Fprintf(w, "    %s: %s %s\n", formatVar(p.Var), types.Label(typesIn, names, p.Type), p.Own)
		}
	}
	fmt.Fprintf(w, "  result: %s\n", types.Label(typesIn, names, f.Result))

	for i := range f.Blocks {
		bb := &f.Blocks[i]
		fmt.Fprintf(w, "  bb%d%s:\n", int32(bb.ID), formatBlockParams(typesIn, names, bb.Params))
		for j := range bb.Body {
			fmt.Fprintf(w, "    %s\n", formatInstr(names, &bb.Body[j]))
		}
		fmt.Fprintf(w, "    %s\n", formatTerm(&bb.Term))
	}

	return nil
}

func formatVar(v VarID) string {
	if !v.IsValid() {
		return "%?"
	}
	return fmt.Sprintf("%%%d", int32(v))
}

func formatVars(vs []VarID) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = formatVar(v)
	}
	return strings.Join(parts, ", ")
}

func formatBlockParams(typesIn *types.Interner, names *source.Interner, params []BlockParam) string {
	if len(params) == 0 {
		return ""
	}
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = fmt.Sprintf("%s: %s", formatVar(p.Var), types.Label(typesIn, names, p.Type))
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func formatCtor(names *source.Interner, c Ctor) string {
	switch c.Kind {
	case CtorStruct:
		return lookupName(names, c.Name)
	case CtorEnumVariant:
		return fmt.Sprintf("%s.%d", lookupName(names, c.Name), c.Variant)
	case CtorClosure:
		return "closure " + lookupName(names, c.Name)
	default:
		return c.Kind.String()
	}
}

func formatInstr(names *source.Interner, ins *Instr) string {
	if ins == nil {
		return "<instr?>"
	}
	switch ins.Kind {
	case InstrLet:
		return fmt.Sprintf("%s = %s", formatVar(ins.Let.Dst), ins.Let.Value.format())
	case InstrApply:
		return fmt.Sprintf("%s = apply %s(%s)", formatVar(ins.Apply.Dst), lookupName(names, ins.Apply.Func), formatVars(ins.Apply.Args))
	case InstrApplyIndirect:
		return fmt.Sprintf("%s = apply %s(%s)", formatVar(ins.ApplyIndirect.Dst), formatVar(ins.ApplyIndirect.Closure), formatVars(ins.ApplyIndirect.Args))
	case InstrPartialApply:
		return fmt.Sprintf("%s = pap %s(%s)", formatVar(ins.PartialApply.Dst), lookupName(names, ins.PartialApply.Func), formatVars(ins.PartialApply.Args))
	case InstrProject:
		return fmt.Sprintf("%s = proj[%d] %s", formatVar(ins.Project.Dst), ins.Project.Field, formatVar(ins.Project.Obj))
	case InstrConstruct:
		return fmt.Sprintf("%s = ctor %s(%s)", formatVar(ins.Construct.Dst), formatCtor(names, ins.Construct.Ctor), formatVars(ins.Construct.Args))
	case InstrRcInc:
		if ins.RcInc.Count > 1 {
			return fmt.Sprintf("inc %s x%d", formatVar(ins.RcInc.Var), ins.RcInc.Count)
		}
		return fmt.Sprintf("inc %s", formatVar(ins.RcInc.Var))
	case InstrRcDec:
		return fmt.Sprintf("dec %s", formatVar(ins.RcDec.Var))
	case InstrIsShared:
		return fmt.Sprintf("%s = is_shared %s", formatVar(ins.IsShared.Dst), formatVar(ins.IsShared.Var))
	case InstrSet:
		return fmt.Sprintf("set %s[%d] = %s", formatVar(ins.Set.Base), ins.Set.Field, formatVar(ins.Set.Value))
	case InstrSetTag:
		return fmt.Sprintf("set_tag %s = %d", formatVar(ins.SetTag.Base), ins.SetTag.Tag)
	case InstrReset:
		return fmt.Sprintf("%s = reset %s", formatVar(ins.Reset.Token), formatVar(ins.Reset.Var))
	case InstrReuse:
		return fmt.Sprintf("%s = reuse %s ctor %s(%s)", formatVar(ins.Reuse.Dst), formatVar(ins.Reuse.Token), formatCtor(names, ins.Reuse.Ctor), formatVars(ins.Reuse.Args))
	default:
		return "<instr?>"
	}
}

func formatTerm(term *Terminator) string {
	if term == nil {
		return "<term?>"
	}
	switch term.Kind {
	case TermNone:
		return "<unterminated>"
	case TermReturn:
		if !term.Return.Value.IsValid() {
			return "return"
		}
		return fmt.Sprintf("return %s", formatVar(term.Return.Value))
	case TermJump:
		if len(term.Jump.Args) == 0 {
			return fmt.Sprintf("goto bb%d", int32(term.Jump.Target))
		}
		return fmt.Sprintf("goto bb%d(%s)", int32(term.Jump.Target), formatVars(term.Jump.Args))
	case TermBranch:
		return fmt.Sprintf("if %s then bb%d else bb%d", formatVar(term.Branch.Cond), int32(term.Branch.Then), int32(term.Branch.Else))
	case TermSwitch:
		out := fmt.Sprintf("switch %s {", formatVar(term.Switch.Scrutinee))
		for _, c := range term.Switch.Cases {
			out += fmt.Sprintf(" %d -> bb%d;", c.Tag, int32(c.Target))
		}
		if term.Switch.Default.IsValid() {
			out += fmt.Sprintf(" default -> bb%d;", int32(term.Switch.Default))
		}
		out += " }"
		return out
	case TermUnreachable:
		return "unreachable"
	default:
		return "<term?>"
	}
}

func lookupName(names *source.Interner, id source.StringID) string {
	if names == nil {
		return fmt.Sprintf("#%d", uint32(id))
	}
	s, ok := names.Lookup(id)
	if !ok || s == "" {
		return fmt.Sprintf("#%d", uint32(id))
	}
	return s
}
