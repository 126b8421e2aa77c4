package arcir

import "slices"

type TermKind uint8

const (
	TermNone TermKind = iota
	TermReturn
	TermJump
	TermBranch
	TermSwitch
	TermUnreachable
)

type Terminator struct {
	Kind TermKind

	Return      ReturnTerm
	Jump        JumpTerm
	Branch      BranchTerm
	Switch      SwitchTerm
	Unreachable struct{}
}

type ReturnTerm struct {
	Value VarID
}

type JumpTerm struct {
	Target BlockID
	Args   []VarID
}

type BranchTerm struct {
	Cond VarID
	Then BlockID
	Else BlockID
}

type SwitchCase struct {
	Tag    uint64
	Target BlockID
}

type SwitchTerm struct {
	Scrutinee VarID
	Cases     []SwitchCase
	Default   BlockID
}

func (t *Terminator) UsedVars(dst []VarID) []VarID {
	switch t.Kind {
	case TermReturn:
		if t.Return.Value.IsValid() {
			dst = append(dst, t.Return.Value)
		}
	case TermJump:
		dst = append(dst, t.Jump.Args...)
	case TermBranch:
		dst = append(dst, t.Branch.Cond)
	case TermSwitch:
		dst = append(dst, t.Switch.Scrutinee)
	}
	return dst
}

func (t *Terminator) UsesVar(v VarID) bool {
	switch t.Kind {
	case TermReturn:
		return t.Return.Value == v
	case TermJump:
		return slices.Contains(t.Jump.Args, v)
	case TermBranch:
		return t.Branch.Cond == v
	case TermSwitch:
		return t.Switch.Scrutinee == v
	default:
		return false
	}
}

func (t *Terminator) SubstituteUses(from, to VarID) {
	switch t.Kind {
	case TermReturn:
		if t.Return.Value == from {
			t.Return.Value = to
		}
	case TermJump:
		for i, a := range t.Jump.Args {
			if a == from {
				t.Jump.Args[i] = to
			}
		}
	case TermBranch:
		if t.Branch.Cond == from {
			t.Branch.Cond = to
		}
	case TermSwitch:
		if t.Switch.Scrutinee == from {
			t.Switch.Scrutinee = to
		}
	}
}

func (t *Terminator) Successors(dst []BlockID) []BlockID {
	switch t.Kind {
	case TermJump:
		dst = append(dst, t.Jump.Target)
	case TermBranch:
		dst = append(dst, t.Branch.Then, t.Branch.Else)
	case TermSwitch:
		for _, c := range t.Switch.Cases {
			dst = append(dst, c.Target)
		}
		if t.Switch.Default.IsValid() {
			dst = append(dst, t.Switch.Default)
		}
	}
	return dst
}

// Clone deep-copies the terminator. Substituting on a shallow copy
// would rewrite the original's Args and Cases in place.
func (t Terminator) Clone() Terminator {
	out := t
	switch t.Kind {
	case TermJump:
		out.Jump.Args = slices.Clone(t.Jump.Args)
	case TermSwitch:
		out.Switch.Cases = slices.Clone(t.Switch.Cases)
	}
	return out
}
