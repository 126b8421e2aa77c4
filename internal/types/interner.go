package types

import (
	"fmt"

	"fortio.org/safecast"

	"sigil/internal/source"
)

// Builtins stores TypeIDs for the primitive types every module uses.
type Builtins struct {
	Invalid  TypeID
	Unit     TypeID
	Never    TypeID
	Bool     TypeID
	Int      TypeID
	Float    TypeID
	Char     TypeID
	Byte     TypeID
	Duration TypeID
	Size     TypeID
	Ordering TypeID
	Str      TypeID
	Error    TypeID
}

// Interner provides stable TypeIDs by hashing structural descriptors.
// Nominal types (structs, enums, aliases) live in side tables addressed
// through the descriptor's Payload slot.
type Interner struct {
	types    []Type
	index    map[Type]TypeID
	builtins Builtins

	structs []StructInfo
	enums   []EnumInfo
	aliases []AliasInfo
	tuples  []TupleInfo
	fns     []FnInfo

	decls map[source.StringID]TypeID // declared name -> struct/enum/alias
}

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index: make(map[Type]TypeID, 64),
		decls: make(map[source.StringID]TypeID),
	}
	// Slot 0 of every side table is an invalid sentinel.
	in.structs = append(in.structs, StructInfo{})
	in.enums = append(in.enums, EnumInfo{})
	in.aliases = append(in.aliases, AliasInfo{})
	in.tuples = append(in.tuples, TupleInfo{})
	in.fns = append(in.fns, FnInfo{})

	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid})
	in.builtins.Unit = in.Intern(Type{Kind: KindUnit})
	in.builtins.Never = in.Intern(Type{Kind: KindNever})
	in.builtins.Bool = in.Intern(Type{Kind: KindBool})
	in.builtins.Int = in.Intern(Type{Kind: KindInt})
	in.builtins.Float = in.Intern(Type{Kind: KindFloat})
	in.builtins.Char = in.Intern(Type{Kind: KindChar})
	in.builtins.Byte = in.Intern(Type{Kind: KindByte})
	in.builtins.Duration = in.Intern(Type{Kind: KindDuration})
	in.builtins.Size = in.Intern(Type{Kind: KindSize})
	in.builtins.Ordering = in.Intern(Type{Kind: KindOrdering})
	in.builtins.Str = in.Intern(Type{Kind: KindStr})
	in.builtins.Error = in.Intern(Type{Kind: KindError})
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	if id, ok := in.index[t]; ok {
		return id
	}
	return in.internRaw(t)
}

// internRaw adds the descriptor to the storage without consulting the map.
func (in *Interner) internRaw(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	in.index[t] = id
	return id
}

// InternNamed interns an unresolved reference to a declared type.
func (in *Interner) InternNamed(name source.StringID) TypeID {
	return in.Intern(Type{Kind: KindNamed, Payload: uint32(name)})
}

// InternVar interns an inference variable that survived into this stage.
func (in *Interner) InternVar(n uint32) TypeID {
	return in.Intern(Type{Kind: KindVar, Payload: n})
}

// InternProjection interns an associated-type projection Base::Assoc.
func (in *Interner) InternProjection(base TypeID, assoc source.StringID) TypeID {
	return in.Intern(Type{Kind: KindProjection, Elem: base, Payload: uint32(assoc)})
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic(fmt.Sprintf("types: invalid TypeID %d", id))
	}
	return tt
}

// Kind returns the kind for a TypeID; KindInvalid for unknown IDs.
func (in *Interner) Kind(id TypeID) Kind {
	tt, ok := in.Lookup(id)
	if !ok {
		return KindInvalid
	}
	return tt.Kind
}

// Len counts interned descriptors, the invalid sentinel included.
func (in *Interner) Len() int {
	return len(in.types)
}

// Elem returns the element type for list/set/option/range/channel, the
// value type for maps, and the ok type for results.
func (in *Interner) Elem(id TypeID) TypeID {
	tt, ok := in.Lookup(id)
	if !ok {
		return NoTypeID
	}
	return tt.Elem
}

// MapKey returns K for a {K: V} type.
func (in *Interner) MapKey(id TypeID) TypeID {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindMap {
		return NoTypeID
	}
	return tt.Aux
}

// MapValue returns V for a {K: V} type.
func (in *Interner) MapValue(id TypeID) TypeID {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindMap {
		return NoTypeID
	}
	return tt.Elem
}

// ResultOk returns T for a Result<T, E> type.
func (in *Interner) ResultOk(id TypeID) TypeID {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindResult {
		return NoTypeID
	}
	return tt.Elem
}

// ResultErr returns E for a Result<T, E> type.
func (in *Interner) ResultErr(id TypeID) TypeID {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindResult {
		return NoTypeID
	}
	return tt.Aux
}

func cloneTypeArgs(args []TypeID) []TypeID {
	if len(args) == 0 {
		return nil
	}
	out := make([]TypeID, len(args))
	copy(out, args)
	return out
}
