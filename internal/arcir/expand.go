package arcir

import (
	"fmt"
	"slices"

	"sigil/internal/arc"
	"sigil/internal/source"
	"sigil/internal/types"
)

// Expand rewrites every Reset/Reuse pair in f into a runtime
// uniqueness test with two continuations and returns the number of
// pairs expanded. Per pair:
// 1. Cancel single increments on projections of the reset variable
// 2. Hoist the instructions between Reset and Reuse above the pair
// 3. Emit a fast path that stores the changed fields in place
// 4. Emit a slow path that decrements the old value and allocates
// 5. Route both paths through a merge block when the result has uses
//
// Only blocks that existed on entry are scanned; the blocks the
// expansion itself appends are never revisited.
func Expand(f *Func, pool *types.Interner, cls arc.Classification) int {
	if f == nil || pool == nil || cls == nil {
		return 0
	}
	expanded := 0
	original := len(f.Blocks)
	for bi := range original {
		for expandOne(f, BlockID(bi), pool, cls) {
			expanded++
		}
	}
	return expanded
}

// reusePair locates a Reset and the Reuse consuming its token inside
// one block's body.
type reusePair struct {
	resetIdx int
	reuseIdx int
	resetVar VarID
}

// findPair returns the first Reset followed by a Reuse of the same
// token. A Reset whose token is never reused is skipped.
func findPair(b *Block) (reusePair, bool) {
	for i := range b.Body {
		if b.Body[i].Kind != InstrReset {
			continue
		}
		token := b.Body[i].Reset.Token
		for j := i + 1; j < len(b.Body); j++ {
			if b.Body[j].Kind == InstrReuse && b.Body[j].Reuse.Token == token {
				return reusePair{
					resetIdx: i,
					reuseIdx: j,
					resetVar: b.Body[i].Reset.Var,
				}, true
			}
		}
	}
	return reusePair{}, false
}

// projectionsBefore maps field index to the variable it was projected
// into, for loads of obj above the Reset. A later projection of the
// same field wins.
func projectionsBefore(b *Block, resetIdx int, obj VarID) map[uint32]VarID {
	projs := make(map[uint32]VarID)
	for i := range resetIdx {
		in := &b.Body[i]
		if in.Kind == InstrProject && in.Project.Obj == obj {
			projs[in.Project.Field] = in.Project.Dst
		}
	}
	return projs
}

// eraseProjIncs cancels increments on projections of the reset
// variable against the release the Reset proves. For each projected
// field the nearest RcInc above the Reset is inspected: a count of
// one is erased and the field claimed, a higher count is left alone
// and the field stays unclaimed. Claimed fields skip the old-value
// decrement on the fast path; the slow path restores the erased
// increment because there the old value lives on.
func eraseProjIncs(b *Block, resetIdx int, projs map[uint32]VarID) map[uint32]VarID {
	claimed := make(map[uint32]VarID)
	drop := make(map[int]struct{})
	for field, projVar := range projs {
		for k := resetIdx - 1; k >= 0; k-- {
			in := &b.Body[k]
			if in.Kind != InstrRcInc || in.RcInc.Var != projVar {
				continue
			}
			if in.RcInc.Count == 1 {
				drop[k] = struct{}{}
				claimed[field] = projVar
			}
			break
		}
	}
	eraseIndices(b, drop)
	return claimed
}

func eraseIndices(b *Block, drop map[int]struct{}) {
	if len(drop) == 0 {
		return
	}
	body := make([]Instr, 0, len(b.Body)-len(drop))
	spans := make([]source.Span, 0, len(b.Spans)-len(drop))
	for i := range b.Body {
		if _, gone := drop[i]; gone {
			continue
		}
		body = append(body, b.Body[i])
		spans = append(spans, b.Spans[i])
	}
	b.Body, b.Spans = body, spans
}

// hoistBetween moves the instructions separating Reset from Reuse
// above the Reset, leaving the pair adjacent. The token is defined by
// the Reset and used only by its Reuse, so the moved instructions
// cannot depend on it.
func hoistBetween(b *Block, resetIdx, reuseIdx int) {
	if reuseIdx == resetIdx+1 {
		return
	}
	body := make([]Instr, 0, len(b.Body))
	spans := make([]source.Span, 0, len(b.Spans))
	body = append(body, b.Body[:resetIdx]...)
	spans = append(spans, b.Spans[:resetIdx]...)
	body = append(body, b.Body[resetIdx+1:reuseIdx]...)
	spans = append(spans, b.Spans[resetIdx+1:reuseIdx]...)
	body = append(body, b.Body[resetIdx], b.Body[reuseIdx])
	spans = append(spans, b.Spans[resetIdx], b.Spans[reuseIdx])
	body = append(body, b.Body[reuseIdx+1:]...)
	spans = append(spans, b.Spans[reuseIdx+1:]...)
	b.Body, b.Spans = body, spans
}

func padSpans(b *Block) {
	for len(b.Spans) < len(b.Body) {
		b.Spans = append(b.Spans, source.Span{})
	}
}

// expansion carries one pair's rewrite state across path builders.
type expansion struct {
	f        *Func
	resetVar VarID
	dst      VarID
	ty       types.TypeID
	ctor     Ctor
	args     []VarID
	projs    map[uint32]VarID
	claimed  map[uint32]VarID
	origTerm Terminator

	fastID  BlockID
	slowID  BlockID
	mergeID BlockID
}

// pathTerm ends a fast or slow path: a jump into the merge block
// carrying the path's result, or a copy of the original terminator
// when nothing below needs the result.
func (e *expansion) pathTerm(result VarID) Terminator {
	if e.mergeID.IsValid() {
		return Terminator{Kind: TermJump, Jump: JumpTerm{
			Target: e.mergeID,
			Args:   []VarID{result},
		}}
	}
	t := e.origTerm.Clone()
	t.SubstituteUses(e.dst, result)
	return t
}

// fastPath writes the constructor arguments into the unique old value
// in place. A field whose argument is its own projection needs no
// store. An unclaimed refcounted old field is released before being
// overwritten; claimed fields already canceled that release against
// the erased increment.
func (e *expansion) fastPath(cls arc.Classification) Block {
	b := Block{ID: e.fastID}
	for pos, arg := range e.args {
		field := uint32(pos)
		if old, ok := e.projs[field]; ok && old == arg {
			continue
		}
		if _, isClaimed := e.claimed[field]; !isClaimed {
			if old, ok := e.projs[field]; ok && cls.NeedsRC(e.f.VarType(old)) {
				b.Push(Instr{Kind: InstrRcDec, RcDec: RcDecInstr{Var: old}}, source.Span{})
			}
		}
		b.Push(Instr{Kind: InstrSet, Set: SetInstr{
			Base:  e.resetVar,
			Field: field,
			Value: arg,
		}}, source.Span{})
	}
	if e.ctor.IsEnum() {
		b.Push(Instr{Kind: InstrSetTag, SetTag: SetTagInstr{
			Base: e.resetVar,
			Tag:  uint64(e.ctor.Variant),
		}}, source.Span{})
	}
	b.Term = e.pathTerm(e.resetVar)
	return b
}

// slowPath releases the shared old value and constructs fresh. The
// increments erased while claiming fields are restored first, in
// field order, since on this path the old value stays alive.
func (e *expansion) slowPath() Block {
	b := Block{ID: e.slowID}
	b.Push(Instr{Kind: InstrRcDec, RcDec: RcDecInstr{Var: e.resetVar}}, source.Span{})
	fields := make([]uint32, 0, len(e.claimed))
	for field := range e.claimed {
		fields = append(fields, field)
	}
	slices.Sort(fields)
	for _, field := range fields {
		b.Push(Instr{Kind: InstrRcInc, RcInc: RcIncInstr{
			Var:   e.claimed[field],
			Count: 1,
		}}, source.Span{})
	}
	b.Push(Instr{Kind: InstrConstruct, Construct: ConstructInstr{
		Dst:  e.dst,
		Type: e.ty,
		Ctor: e.ctor,
		Args: e.args,
	}}, source.Span{})
	b.Term = e.pathTerm(e.dst)
	return b
}

// mergeBlock rejoins the two paths. A fresh block parameter stands in
// for the reuse destination; the instructions that followed the Reuse
// move here with their spans.
func (e *expansion) mergeBlock(suffix []Instr, spans []source.Span) Block {
	param := e.f.FreshVar(e.ty)
	b := Block{
		ID:     e.mergeID,
		Params: []BlockParam{{Var: param, Type: e.ty}},
		Body:   suffix,
		Spans:  spans,
	}
	for i := range b.Body {
		b.Body[i].SubstituteUses(e.dst, param)
	}
	t := e.origTerm.Clone()
	t.SubstituteUses(e.dst, param)
	b.Term = t
	return b
}

func expandOne(f *Func, id BlockID, pool *types.Interner, cls arc.Classification) bool {
	b := f.Block(id)
	if b == nil {
		return false
	}
	padSpans(b)

	p, ok := findPair(b)
	if !ok {
		return false
	}
	projs := projectionsBefore(b, p.resetIdx, p.resetVar)
	claimed := eraseProjIncs(b, p.resetIdx, projs)

	// Every rewrite shifts indices; locate the pair again after each.
	// The pair vanishing mid-rewrite means this pass corrupted its own
	// bookkeeping, so it dies rather than producing wrong IR.
	p, ok = findPair(b)
	if !ok {
		panic(fmt.Sprintf("arcir: reuse pair in bb%d lost after increment erasure", int32(id)))
	}
	hoistBetween(b, p.resetIdx, p.reuseIdx)
	p, ok = findPair(b)
	if !ok || p.reuseIdx != p.resetIdx+1 {
		panic(fmt.Sprintf("arcir: reuse pair in bb%d not adjacent after hoisting", int32(id)))
	}

	reuse := b.Body[p.reuseIdx].Reuse
	e := expansion{
		f:        f,
		resetVar: p.resetVar,
		dst:      reuse.Dst,
		ty:       reuse.Type,
		ctor:     reuse.Ctor,
		args:     slices.Clone(reuse.Args),
		projs:    projs,
		claimed:  claimed,
		origTerm: b.Term,
		fastID:   f.NextBlockID(),
		mergeID:  NoBlockID,
	}
	e.slowID = e.fastID + 1

	suffix := make([]Instr, 0, len(b.Body)-p.reuseIdx-1)
	for _, in := range b.Body[p.reuseIdx+1:] {
		suffix = append(suffix, in.Clone())
	}
	suffixSpans := slices.Clone(b.Spans[p.reuseIdx+1:])

	needsMerge := len(suffix) > 0 || e.origTerm.UsesVar(e.dst)
	if needsMerge {
		e.mergeID = e.slowID + 1
	}

	fast := e.fastPath(cls)
	slow := e.slowPath()
	var merge Block
	if needsMerge {
		merge = e.mergeBlock(suffix, suffixSpans)
	}

	shared := f.FreshVar(pool.Builtins().Bool)
	b.Body = b.Body[:p.resetIdx]
	b.Spans = b.Spans[:p.resetIdx]
	b.Push(Instr{Kind: InstrIsShared, IsShared: IsSharedInstr{
		Dst: shared,
		Var: p.resetVar,
	}}, source.Span{})
	b.Term = Terminator{Kind: TermBranch, Branch: BranchTerm{
		Cond: shared,
		Then: e.slowID,
		Else: e.fastID,
	}}

	// b is invalid past this point: pushing may move f.Blocks.
	f.PushBlock(fast)
	f.PushBlock(slow)
	if needsMerge {
		f.PushBlock(merge)
	}
	return true
}
