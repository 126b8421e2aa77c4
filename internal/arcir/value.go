package arcir

import (
	"fmt"
	"strings"

	"sigil/internal/hir"
	"sigil/internal/source"
)

// ValueKind discriminates the right-hand side of a Let instruction.
type ValueKind uint8

const (
	ValueVar ValueKind = iota
	ValueLit
	ValuePrim
)

// LitKind discriminates literal payloads.
type LitKind uint8

const (
	LitUnit LitKind = iota
	LitBool
	LitInt
	LitFloat
	LitStr
	LitChar
)

// Lit is a literal operand. Only the field matching Kind is meaningful.
type Lit struct {
	Kind  LitKind
	Bool  bool
	Int   int64
	Float float64
	Str   source.StringID
	Char  rune
}

// Prim applies a pure primitive operator to already-evaluated operands.
type Prim struct {
	Op   hir.Op
	Args []VarID
}

// Value is the right-hand side of a Let. Exactly one of Var, Lit, Prim
// is active, selected by Kind.
type Value struct {
	Kind ValueKind
	Var  VarID
	Lit  Lit
	Prim Prim
}

func VarValue(v VarID) Value { return Value{Kind: ValueVar, Var: v} }

func LitValue(l Lit) Value { return Value{Kind: ValueLit, Lit: l} }

func PrimValue(op hir.Op, args ...VarID) Value {
	return Value{Kind: ValuePrim, Prim: Prim{Op: op, Args: args}}
}

// Clone deep-copies the value so that later in-place substitution on
// one copy cannot alias another.
func (v Value) Clone() Value {
	out := v
	if v.Kind == ValuePrim {
		out.Prim.Args = append([]VarID(nil), v.Prim.Args...)
	}
	return out
}

// CtorKind says what shape a Construct or Reuse instruction builds.
type CtorKind uint8

const (
	CtorStruct CtorKind = iota
	CtorEnumVariant
	CtorTuple
	CtorList
	CtorMap
	CtorSet
	CtorClosure
)

// Ctor identifies the constructor applied by Construct and Reuse.
// Name is the nominal type (or closure symbol) when the kind has one;
// Variant selects the enum variant for CtorEnumVariant.
type Ctor struct {
	Kind    CtorKind
	Name    source.StringID
	Variant uint32
}

// IsEnum reports whether constructing this shape must also set a tag.
func (c Ctor) IsEnum() bool { return c.Kind == CtorEnumVariant }

func (k CtorKind) String() string {
	switch k {
	case CtorStruct:
		return "struct"
	case CtorEnumVariant:
		return "enum"
	case CtorTuple:
		return "tuple"
	case CtorList:
		return "list"
	case CtorMap:
		return "map"
	case CtorSet:
		return "set"
	case CtorClosure:
		return "closure"
	default:
		return fmt.Sprintf("ctor(%d)", uint8(k))
	}
}

func (l Lit) format() string {
	switch l.Kind {
	case LitUnit:
		return "unit"
	case LitBool:
		return fmt.Sprintf("%t", l.Bool)
	case LitInt:
		return fmt.Sprintf("%d", l.Int)
	case LitFloat:
		return fmt.Sprintf("%g", l.Float)
	case LitStr:
		return fmt.Sprintf("str#%d", uint32(l.Str))
	case LitChar:
		return fmt.Sprintf("%q", l.Char)
	default:
		return fmt.Sprintf("lit(%d)", uint8(l.Kind))
	}
}

func (v Value) format() string {
	switch v.Kind {
	case ValueVar:
		return fmt.Sprintf("%%%d", int32(v.Var))
	case ValueLit:
		return v.Lit.format()
	case ValuePrim:
		var sb strings.Builder
		fmt.Fprintf(&sb, "%s(", v.Prim.Op)
		for i, a := range v.Prim.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%%%d", int32(a))
		}
		sb.WriteString(")")
		return sb.String()
	default:
		return fmt.Sprintf("value(%d)", uint8(v.Kind))
	}
}
