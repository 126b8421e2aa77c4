package arcir

import (
	"math/bits"

	"sigil/internal/arc"
)

// VarSet is a dense bitset over a function's variables. Adds outside
// the size the set was built with are dropped.
type VarSet struct {
	words []uint64
}

func NewVarSet(vars int) VarSet {
	return VarSet{words: make([]uint64, (vars+63)/64)}
}

func (s VarSet) Has(v VarID) bool {
	if !v.IsValid() {
		return false
	}
	w := int(v) >> 6
	if w >= len(s.words) {
		return false
	}
	return s.words[w]&(1<<(uint32(v)&63)) != 0
}

func (s VarSet) Add(v VarID) {
	if !v.IsValid() {
		return
	}
	w := int(v) >> 6
	if w < len(s.words) {
		s.words[w] |= 1 << (uint32(v) & 63)
	}
}

// UnionWith folds o into s and reports whether s grew.
func (s VarSet) UnionWith(o VarSet) bool {
	changed := false
	for i, word := range o.words {
		if i >= len(s.words) {
			break
		}
		if next := s.words[i] | word; next != s.words[i] {
			s.words[i] = next
			changed = true
		}
	}
	return changed
}

func (s VarSet) Len() int {
	n := 0
	for _, word := range s.words {
		n += bits.OnesCount64(word)
	}
	return n
}

// Vars lists the members in ascending order.
func (s VarSet) Vars() []VarID {
	out := make([]VarID, 0, s.Len())
	for w, word := range s.words {
		for word != 0 {
			bit := bits.TrailingZeros64(word)
			out = append(out, VarID(w*64+bit))
			word &^= 1 << bit
		}
	}
	return out
}

// BlockLiveness holds one block's dataflow sets. Gen is the variables
// read before any redefinition, Kill the variables the block defines.
type BlockLiveness struct {
	Gen     VarSet
	Kill    VarSet
	LiveIn  VarSet
	LiveOut VarSet
}

// ComputeLiveness solves backward liveness over the refcounted
// variables of f, indexed by block id. Scalar variables never enter
// the sets. The fixpoint runs over the blocks reachable from entry;
// an unreachable block keeps LiveIn equal to its Gen set.
func ComputeLiveness(f *Func, cls arc.Classification) []BlockLiveness {
	if f == nil || cls == nil {
		return nil
	}
	tracked := func(v VarID) bool {
		return v.IsValid() && int(v) < len(f.VarTypes) && cls.NeedsRC(f.VarTypes[v])
	}

	live := make([]BlockLiveness, len(f.Blocks))
	for i := range f.Blocks {
		gen, kill := blockGenKill(f, &f.Blocks[i], tracked)
		in := NewVarSet(f.NumVars())
		in.UnionWith(gen)
		live[i] = BlockLiveness{
			Gen:     gen,
			Kill:    kill,
			LiveIn:  in,
			LiveOut: NewVarSet(f.NumVars()),
		}
	}

	order := Postorder(f)
	var succs []BlockID
	for changed := true; changed; {
		changed = false
		for _, id := range order {
			bl := &live[id]
			succs = f.Blocks[id].Term.Successors(succs[:0])
			for _, s := range succs {
				if int(s) < len(live) && bl.LiveOut.UnionWith(live[s].LiveIn) {
					changed = true
				}
			}
			if refreshLiveIn(bl) {
				changed = true
			}
		}
	}
	return live
}

func blockGenKill(f *Func, b *Block, tracked func(VarID) bool) (gen, kill VarSet) {
	gen = NewVarSet(f.NumVars())
	kill = NewVarSet(f.NumVars())
	for _, p := range b.Params {
		if tracked(p.Var) {
			kill.Add(p.Var)
		}
	}
	var uses []VarID
	for i := range b.Body {
		uses = b.Body[i].UsedVars(uses[:0])
		for _, u := range uses {
			if tracked(u) && !kill.Has(u) {
				gen.Add(u)
			}
		}
		if d := b.Body[i].DefinedVar(); tracked(d) {
			kill.Add(d)
		}
	}
	uses = b.Term.UsedVars(uses[:0])
	for _, u := range uses {
		if tracked(u) && !kill.Has(u) {
			gen.Add(u)
		}
	}
	return gen, kill
}

// refreshLiveIn recomputes LiveIn = Gen ∪ (LiveOut − Kill). LiveOut
// only grows, so assigning the equation directly stays monotone.
func refreshLiveIn(bl *BlockLiveness) bool {
	changed := false
	for i := range bl.LiveIn.words {
		next := bl.Gen.words[i] | (bl.LiveOut.words[i] &^ bl.Kill.words[i])
		if next != bl.LiveIn.words[i] {
			bl.LiveIn.words[i] = next
			changed = true
		}
	}
	return changed
}
