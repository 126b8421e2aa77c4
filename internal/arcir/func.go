package arcir

import (
	"fmt"

	"fortio.org/safecast"

	"sigil/internal/arc"
	"sigil/internal/source"
	"sigil/internal/types"
)

type Param struct {
	Var  VarID
	Type types.TypeID
	Own  arc.Ownership
}

type Func struct {
	Name   source.StringID
	Span   source.Span
	Params []Param
	Result types.TypeID

	Blocks []Block
	Entry  BlockID

	// VarTypes maps every VarID the function mentions to its type.
	VarTypes []types.TypeID
}

func (f *Func) NumVars() int {
	return len(f.VarTypes)
}

// VarType panics on an out-of-range id: an untyped variable in the IR
// is a builder bug, not an input error.
func (f *Func) VarType(v VarID) types.TypeID {
	if !v.IsValid() || int(v) >= len(f.VarTypes) {
		panic(fmt.Sprintf("arcir: var %%%d out of range, func has %d vars", int32(v), len(f.VarTypes)))
	}
	return f.VarTypes[v]
}

func (f *Func) FreshVar(ty types.TypeID) VarID {
	raw, err := safecast.Conv[int32](len(f.VarTypes))
	if err != nil {
		panic(fmt.Errorf("arcir: var id overflow: %w", err))
	}
	f.VarTypes = append(f.VarTypes, ty)
	return VarID(raw)
}

func (f *Func) NextBlockID() BlockID {
	raw, err := safecast.Conv[int32](len(f.Blocks))
	if err != nil {
		panic(fmt.Errorf("arcir: block id overflow: %w", err))
	}
	return BlockID(raw)
}

// PushBlock appends b, which must carry the next dense id. Spans is
// padded with zero spans so it stays in lock step with Body.
func (f *Func) PushBlock(b Block) BlockID {
	next := f.NextBlockID()
	if b.ID != next {
		panic(fmt.Sprintf("arcir: block bb%d pushed out of order, want bb%d", int32(b.ID), int32(next)))
	}
	for len(b.Spans) < len(b.Body) {
		b.Spans = append(b.Spans, source.Span{})
	}
	f.Blocks = append(f.Blocks, b)
	return next
}

func (f *Func) Block(id BlockID) *Block {
	if !id.IsValid() || int(id) >= len(f.Blocks) {
		return nil
	}
	return &f.Blocks[id]
}
