package arcir

import (
	"slices"

	"sigil/internal/source"
	"sigil/internal/types"
)

// InstrKind enumerates instruction kinds in ARC IR.
type InstrKind uint8

const (
	// InstrLet represents a pure binding instruction.
	InstrLet InstrKind = iota
	// InstrApply represents a direct call instruction.
	InstrApply
	// InstrApplyIndirect represents a call through a closure value.
	InstrApplyIndirect
	// InstrPartialApply represents closure construction over a function.
	InstrPartialApply
	// InstrProject represents a field load instruction.
	InstrProject
	// InstrConstruct represents a fresh allocation instruction.
	InstrConstruct
	// InstrRcInc represents a reference count increment.
	InstrRcInc
	// InstrRcDec represents a reference count decrement.
	InstrRcDec
	// InstrIsShared represents a uniqueness test on a reference count.
	InstrIsShared
	// InstrSet represents an in-place field store.
	InstrSet
	// InstrSetTag represents an in-place enum tag store.
	InstrSetTag
	// InstrReset represents the reclaim half of a reuse pair.
	InstrReset
	// InstrReuse represents the reallocation half of a reuse pair.
	InstrReuse
)

// Instr represents an ARC IR instruction.
type Instr struct {
	Kind InstrKind

	Let           LetInstr
	Apply         ApplyInstr
	ApplyIndirect ApplyIndirectInstr
	PartialApply  PartialApplyInstr
	Project       ProjectInstr
	Construct     ConstructInstr
	RcInc         RcIncInstr
	RcDec         RcDecInstr
	IsShared      IsSharedInstr
	Set           SetInstr
	SetTag        SetTagInstr
	Reset         ResetInstr
	Reuse         ReuseInstr
}

// LetInstr represents a pure binding of a value to a fresh variable.
type LetInstr struct {
	Dst   VarID
	Type  types.TypeID
	Value Value
}

// ApplyInstr represents a direct call to a named function.
type ApplyInstr struct {
	Dst  VarID
	Type types.TypeID
	Func source.StringID
	Args []VarID
}

// ApplyIndirectInstr represents a call through a closure variable.
type ApplyIndirectInstr struct {
	Dst     VarID
	Type    types.TypeID
	Closure VarID
	Args    []VarID
}

// PartialApplyInstr represents closure construction: a named function
// packed with a prefix of its arguments.
type PartialApplyInstr struct {
	Dst  VarID
	Type types.TypeID
	Func source.StringID
	Args []VarID
}

// ProjectInstr represents a field load from a constructed value.
type ProjectInstr struct {
	Dst   VarID
	Type  types.TypeID
	Obj   VarID
	Field uint32
}

// ConstructInstr represents a fresh heap allocation.
type ConstructInstr struct {
	Dst  VarID
	Type types.TypeID
	Ctor Ctor
	Args []VarID
}

// RcIncInstr represents a reference count increment by Count.
type RcIncInstr struct {
	Var   VarID
	Count uint32
}

// RcDecInstr represents a reference count decrement.
type RcDecInstr struct {
	Var VarID
}

// IsSharedInstr represents a uniqueness test: Dst is true when Var's
// reference count is above one.
type IsSharedInstr struct {
	Dst VarID
	Var VarID
}

// SetInstr represents an in-place store into a field of Base.
type SetInstr struct {
	Base  VarID
	Field uint32
	Value VarID
}

// SetTagInstr represents an in-place store of an enum tag.
type SetTagInstr struct {
	Base VarID
	Tag  uint64
}

// ResetInstr represents the reclaim half of a reuse pair: Token names
// the memory of Var for a later Reuse.
type ResetInstr struct {
	Var   VarID
	Token VarID
}

// ReuseInstr represents the reallocation half of a reuse pair:
// construct Dst into the memory named by Token.
type ReuseInstr struct {
	Token VarID
	Dst   VarID
	Type  types.TypeID
	Ctor  Ctor
	Args  []VarID
}

// DefinedVar returns the variable the instruction writes, or NoVarID.
// A Reset defines its token.
func (in *Instr) DefinedVar() VarID {
	switch in.Kind {
	case InstrLet:
		return in.Let.Dst
	case InstrApply:
		return in.Apply.Dst
	case InstrApplyIndirect:
		return in.ApplyIndirect.Dst
	case InstrPartialApply:
		return in.PartialApply.Dst
	case InstrProject:
		return in.Project.Dst
	case InstrConstruct:
		return in.Construct.Dst
	case InstrIsShared:
		return in.IsShared.Dst
	case InstrReset:
		return in.Reset.Token
	case InstrReuse:
		return in.Reuse.Dst
	default:
		return NoVarID
	}
}

// UsedVars appends every variable the instruction reads to dst and
// returns the extended slice.
func (in *Instr) UsedVars(dst []VarID) []VarID {
	switch in.Kind {
	case InstrLet:
		switch in.Let.Value.Kind {
		case ValueVar:
			dst = append(dst, in.Let.Value.Var)
		case ValuePrim:
			dst = append(dst, in.Let.Value.Prim.Args...)
		}
	case InstrApply:
		dst = append(dst, in.Apply.Args...)
	case InstrApplyIndirect:
		dst = append(dst, in.ApplyIndirect.Closure)
		dst = append(dst, in.ApplyIndirect.Args...)
	case InstrPartialApply:
		dst = append(dst, in.PartialApply.Args...)
	case InstrProject:
		dst = append(dst, in.Project.Obj)
	case InstrConstruct:
		dst = append(dst, in.Construct.Args...)
	case InstrRcInc:
		dst = append(dst, in.RcInc.Var)
	case InstrRcDec:
		dst = append(dst, in.RcDec.Var)
	case InstrIsShared:
		dst = append(dst, in.IsShared.Var)
	case InstrSet:
		dst = append(dst, in.Set.Base, in.Set.Value)
	case InstrSetTag:
		dst = append(dst, in.SetTag.Base)
	case InstrReset:
		dst = append(dst, in.Reset.Var)
	case InstrReuse:
		dst = append(dst, in.Reuse.Token)
		dst = append(dst, in.Reuse.Args...)
	}
	return dst
}

// SubstituteUses rewrites read positions of from to to. Definition
// positions are left alone.
func (in *Instr) SubstituteUses(from, to VarID) {
	sub := func(v *VarID) {
		if *v == from {
			*v = to
		}
	}
	subAll := func(vs []VarID) {
		for i := range vs {
			sub(&vs[i])
		}
	}
	switch in.Kind {
	case InstrLet:
		switch in.Let.Value.Kind {
		case ValueVar:
			sub(&in.Let.Value.Var)
		case ValuePrim:
			subAll(in.Let.Value.Prim.Args)
		}
	case InstrApply:
		subAll(in.Apply.Args)
	case InstrApplyIndirect:
		sub(&in.ApplyIndirect.Closure)
		subAll(in.ApplyIndirect.Args)
	case InstrPartialApply:
		subAll(in.PartialApply.Args)
	case InstrProject:
		sub(&in.Project.Obj)
	case InstrConstruct:
		subAll(in.Construct.Args)
	case InstrRcInc:
		sub(&in.RcInc.Var)
	case InstrRcDec:
		sub(&in.RcDec.Var)
	case InstrIsShared:
		sub(&in.IsShared.Var)
	case InstrSet:
		sub(&in.Set.Base)
		sub(&in.Set.Value)
	case InstrSetTag:
		sub(&in.SetTag.Base)
	case InstrReset:
		sub(&in.Reset.Var)
	case InstrReuse:
		sub(&in.Reuse.Token)
		subAll(in.Reuse.Args)
	}
}

// Clone deep-copies the instruction so the copy can be substituted
// without touching the original's argument slices.
func (in Instr) Clone() Instr {
	out := in
	switch in.Kind {
	case InstrLet:
		out.Let.Value = in.Let.Value.Clone()
	case InstrApply:
		out.Apply.Args = slices.Clone(in.Apply.Args)
	case InstrApplyIndirect:
		out.ApplyIndirect.Args = slices.Clone(in.ApplyIndirect.Args)
	case InstrPartialApply:
		out.PartialApply.Args = slices.Clone(in.PartialApply.Args)
	case InstrConstruct:
		out.Construct.Args = slices.Clone(in.Construct.Args)
	case InstrReuse:
		out.Reuse.Args = slices.Clone(in.Reuse.Args)
	}
	return out
}
