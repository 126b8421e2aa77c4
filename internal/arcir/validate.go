package arcir

import (
	"errors"
	"fmt"

	"sigil/internal/source"
)

// Validate checks ARC IR module invariants. The module is expected to
// be past expansion; a surviving Reset or Reuse is an error.
// Returns error if any invariant is violated.
func Validate(m *Module, names *source.Interner) error {
	if m == nil {
		return nil
	}
	var errs []error
	for _, f := range m.Funcs {
		if f == nil {
			continue
		}
		if err := ValidateFunc(f); err != nil {
			errs = append(errs, fmt.Errorf("function %s: %w", lookupName(names, f.Name), err))
		}
	}
	return errors.Join(errs...)
}

// ValidateFunc checks one function's invariants, including that
// expansion consumed every reuse pair.
func ValidateFunc(f *Func) error {
	if f == nil {
		return nil
	}
	return errors.Join(ValidateShape(f), validateExpanded(f))
}

// ValidateShape checks the structural invariants every function must
// satisfy whether or not it has been expanded. Passes that index into
// blocks and variable tables rely on these holding.
func ValidateShape(f *Func) error {
	if f == nil {
		return nil
	}

	var errs []error

	// 1. Check entry block exists
	if err := validateEntry(f); err != nil {
		errs = append(errs, err)
	}

	// 2. Check block ids are dense
	if err := validateBlockIDs(f); err != nil {
		errs = append(errs, err)
	}

	// 3. Check all blocks terminated
	if err := validateBlocksTerminated(f); err != nil {
		errs = append(errs, err)
	}

	// 4. Check terminator targets exist and arities match
	if err := validateBlockTargets(f); err != nil {
		errs = append(errs, err)
	}

	// 5. Check var ids are in range
	if err := validateVarIDs(f); err != nil {
		errs = append(errs, err)
	}

	// 6. Check spans run in lock step with bodies
	if err := validateSpans(f); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func validateEntry(f *Func) error {
	if f.Block(f.Entry) == nil {
		return fmt.Errorf("entry block bb%d does not exist", int32(f.Entry))
	}
	return nil
}

// validateBlockIDs checks that each block carries its slice index.
func validateBlockIDs(f *Func) error {
	var errs []error
	for i := range f.Blocks {
		if int(f.Blocks[i].ID) != i {
			errs = append(errs, fmt.Errorf("bb%d: carries id bb%d", i, int32(f.Blocks[i].ID)))
		}
	}
	return errors.Join(errs...)
}

// validateBlocksTerminated checks that every block ends with a terminator.
func validateBlocksTerminated(f *Func) error {
	var errs []error
	for i := range f.Blocks {
		if f.Blocks[i].Term.Kind == TermNone {
			errs = append(errs, fmt.Errorf("bb%d: unterminated block", i))
		}
	}
	return errors.Join(errs...)
}

// validateBlockTargets checks that all targets exist, that jump
// arguments match the target's parameters, and that branch and switch
// targets take no parameters.
func validateBlockTargets(f *Func) error {
	var errs []error

	blockExists := func(id BlockID) bool {
		return id >= 0 && int(id) < len(f.Blocks)
	}
	paramCount := func(id BlockID) int {
		return len(f.Blocks[id].Params)
	}

	for i := range f.Blocks {
		bb := &f.Blocks[i]
		switch bb.Term.Kind {
		case TermJump:
			target := bb.Term.Jump.Target
			if !blockExists(target) {
				errs = append(errs, fmt.Errorf("bb%d: jump target bb%d does not exist", i, int32(target)))
				continue
			}
			if got, want := len(bb.Term.Jump.Args), paramCount(target); got != want {
				errs = append(errs, fmt.Errorf("bb%d: jump passes %d args, target bb%d takes %d params",
					i, got, int32(target), want))
			}
		case TermBranch:
			for _, leg := range []struct {
				name   string
				target BlockID
			}{{"then", bb.Term.Branch.Then}, {"else", bb.Term.Branch.Else}} {
				if !blockExists(leg.target) {
					errs = append(errs, fmt.Errorf("bb%d: branch %s target bb%d does not exist", i, leg.name, int32(leg.target)))
					continue
				}
				if paramCount(leg.target) != 0 {
					errs = append(errs, fmt.Errorf("bb%d: branch %s target bb%d takes block params", i, leg.name, int32(leg.target)))
				}
			}
		case TermSwitch:
			seenTags := make(map[uint64]bool)
			for j, c := range bb.Term.Switch.Cases {
				if seenTags[c.Tag] {
					errs = append(errs, fmt.Errorf("bb%d: switch has duplicate case for tag %d", i, c.Tag))
				}
				seenTags[c.Tag] = true

				if !blockExists(c.Target) {
					errs = append(errs, fmt.Errorf("bb%d: switch case %d target bb%d does not exist", i, j, int32(c.Target)))
					continue
				}
				if paramCount(c.Target) != 0 {
					errs = append(errs, fmt.Errorf("bb%d: switch case %d target bb%d takes block params", i, j, int32(c.Target)))
				}
			}
			if def := bb.Term.Switch.Default; def.IsValid() {
				if !blockExists(def) {
					errs = append(errs, fmt.Errorf("bb%d: switch default target bb%d does not exist", i, int32(def)))
				} else if paramCount(def) != 0 {
					errs = append(errs, fmt.Errorf("bb%d: switch default target bb%d takes block params", i, int32(def)))
				}
			}
		}
	}

	return errors.Join(errs...)
}

// validateVarIDs checks every variable an instruction or terminator
// mentions against the function's variable table.
func validateVarIDs(f *Func) error {
	var errs []error

	inRange := func(v VarID) bool {
		return v.IsValid() && int(v) < len(f.VarTypes)
	}

	for _, p := range f.Params {
		if !inRange(p.Var) {
			errs = append(errs, fmt.Errorf("param var %%%d out of range", int32(p.Var)))
		}
	}

	var uses []VarID
	for i := range f.Blocks {
		bb := &f.Blocks[i]
		for _, p := range bb.Params {
			if !inRange(p.Var) {
				errs = append(errs, fmt.Errorf("bb%d: param var %%%d out of range", i, int32(p.Var)))
			}
		}
		for j := range bb.Body {
			uses = bb.Body[j].UsedVars(uses[:0])
			for _, u := range uses {
				if !inRange(u) {
					errs = append(errs, fmt.Errorf("bb%d: instr %d uses var %%%d out of range", i, j, int32(u)))
				}
			}
			if d := bb.Body[j].DefinedVar(); d != NoVarID && !inRange(d) {
				errs = append(errs, fmt.Errorf("bb%d: instr %d defines var %%%d out of range", i, j, int32(d)))
			}
		}
		uses = bb.Term.UsedVars(uses[:0])
		for _, u := range uses {
			if !inRange(u) {
				errs = append(errs, fmt.Errorf("bb%d: terminator uses var %%%d out of range", i, int32(u)))
			}
		}
	}

	return errors.Join(errs...)
}

// validateSpans checks the span slice mirrors the body slice.
func validateSpans(f *Func) error {
	var errs []error
	for i := range f.Blocks {
		bb := &f.Blocks[i]
		if len(bb.Spans) != len(bb.Body) {
			errs = append(errs, fmt.Errorf("bb%d: %d instructions but %d spans", i, len(bb.Body), len(bb.Spans)))
		}
	}
	return errors.Join(errs...)
}

// validateExpanded checks that expansion consumed every reuse pair.
func validateExpanded(f *Func) error {
	var errs []error
	for i := range f.Blocks {
		for j := range f.Blocks[i].Body {
			switch f.Blocks[i].Body[j].Kind {
			case InstrReset:
				errs = append(errs, fmt.Errorf("bb%d: instr %d is an unexpanded reset", i, j))
			case InstrReuse:
				errs = append(errs, fmt.Errorf("bb%d: instr %d is an unexpanded reuse", i, j))
			}
		}
	}
	return errors.Join(errs...)
}
