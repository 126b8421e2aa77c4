package arcir

import (
	"sigil/internal/source"
	"sigil/internal/types"
)

type BlockParam struct {
	Var  VarID
	Type types.TypeID
}

// Block holds instructions in execution order. Spans runs in lock step
// with Body; a zero span marks a synthesized instruction.
type Block struct {
	ID     BlockID
	Params []BlockParam
	Body   []Instr
	Spans  []source.Span
	Term   Terminator
}

func (b *Block) Terminated() bool {
	if b == nil {
		return true
	}
	return b.Term.Kind != TermNone
}

func (b *Block) Push(in Instr, sp source.Span) {
	b.Body = append(b.Body, in)
	b.Spans = append(b.Spans, sp)
}
