package arc

import (
	"sigil/internal/types"
)

// Classification answers whether values of a type carry a reference
// count. Passes accept the interface rather than the concrete
// Classifier so alternate policies can be supplied without touching
// the algorithms.
type Classification interface {
	NeedsRC(id types.TypeID) bool
}

// Cache states. The visiting state doubles as the recursion guard: a
// type reached during its own classification needs heap indirection
// and answers true.
const (
	memoUnknown uint8 = iota
	memoVisiting
	memoNo
	memoYes
)

// Classifier is the production Classification over a type pool. It is
// total, side effect free, and memoized per TypeID; the same pool
// always yields the same answers.
type Classifier struct {
	pool *types.Interner
	cfg  Config
	memo []uint8
}

// NewClassifier builds a classifier for pool. The config travels with
// the classifier so consumers that forward settings to code generation
// can read them back.
func NewClassifier(pool *types.Interner, cfg Config) *Classifier {
	return &Classifier{
		pool: pool,
		cfg:  cfg,
		memo: make([]uint8, pool.Len()),
	}
}

// Config returns the settings the classifier was built with.
func (c *Classifier) Config() Config {
	return c.cfg
}

// NeedsRC reports whether values of the given type are reference
// counted at runtime. Unresolved and unknown types answer true.
func (c *Classifier) NeedsRC(id types.TypeID) bool {
	return c.classify(id)
}

func (c *Classifier) classify(id types.TypeID) bool {
	if id == types.NoTypeID {
		return true
	}
	if int(id) >= len(c.memo) {
		if int(id) >= c.pool.Len() {
			return true
		}
		grown := make([]uint8, c.pool.Len())
		copy(grown, c.memo)
		c.memo = grown
	}
	switch c.memo[id] {
	case memoYes:
		return true
	case memoNo:
		return false
	case memoVisiting:
		return true
	}
	c.memo[id] = memoVisiting
	needs := c.classifyKind(id)
	if needs {
		c.memo[id] = memoYes
	} else {
		c.memo[id] = memoNo
	}
	return needs
}

func (c *Classifier) classifyKind(id types.TypeID) bool {
	t, ok := c.pool.Lookup(id)
	if !ok {
		return true
	}
	switch t.Kind {
	case types.KindUnit, types.KindNever, types.KindBool, types.KindInt,
		types.KindFloat, types.KindChar, types.KindByte, types.KindDuration,
		types.KindSize, types.KindOrdering, types.KindError:
		return false

	// Str may or may not hit the heap (SSO keeps short strings inline,
	// cfg.SSOThreshold bytes and below). Classification is per type, so
	// the answer is true and the generated code tests the length.
	case types.KindStr:
		return true

	case types.KindList, types.KindMap, types.KindSet, types.KindChannel, types.KindFn:
		return true

	case types.KindOption, types.KindRange:
		return c.classify(t.Elem)

	case types.KindResult:
		return c.classify(t.Elem) || c.classify(t.Aux)

	case types.KindTuple:
		for _, elem := range c.pool.TupleElems(id) {
			if c.classify(elem) {
				return true
			}
		}
		return false

	case types.KindNamed, types.KindAlias:
		resolved := c.pool.Resolve(id)
		if resolved == id {
			return true
		}
		return c.classify(resolved)

	case types.KindStruct, types.KindEnum:
		return true

	case types.KindVar, types.KindProjection:
		return true

	default:
		return true
	}
}
