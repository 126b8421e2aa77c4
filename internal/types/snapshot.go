package types

import (
	"fmt"
	"slices"

	"sigil/internal/source"
)

// Snapshot is the serializable form of an interner. IDs are positions, so
// restoring a snapshot reproduces every TypeID exactly. Bundles embed it.
type Snapshot struct {
	Types   []Type
	Structs []StructInfo
	Enums   []EnumInfo
	Aliases []AliasInfo
	Tuples  []TupleInfo
	Fns     []FnInfo
}

// Snapshot captures the full interner state in ID order.
func (in *Interner) Snapshot() Snapshot {
	snap := Snapshot{
		Types:   slices.Clone(in.types),
		Structs: make([]StructInfo, len(in.structs)),
		Enums:   make([]EnumInfo, len(in.enums)),
		Aliases: slices.Clone(in.aliases),
		Tuples:  make([]TupleInfo, len(in.tuples)),
		Fns:     make([]FnInfo, len(in.fns)),
	}
	for i, s := range in.structs {
		snap.Structs[i] = StructInfo{
			Name:     s.Name,
			Decl:     s.Decl,
			Fields:   cloneFields(s.Fields),
			TypeArgs: cloneTypeArgs(s.TypeArgs),
		}
	}
	for i, e := range in.enums {
		snap.Enums[i] = EnumInfo{
			Name:     e.Name,
			Decl:     e.Decl,
			Variants: cloneEnumVariants(e.Variants),
			TypeArgs: cloneTypeArgs(e.TypeArgs),
		}
	}
	for i, t := range in.tuples {
		snap.Tuples[i] = TupleInfo{Elems: cloneTypeArgs(t.Elems)}
	}
	for i, f := range in.fns {
		snap.Fns[i] = FnInfo{Params: cloneTypeArgs(f.Params), Result: f.Result}
	}
	return snap
}

// Restore rebuilds the interner from a snapshot, discarding the current
// state. The snapshot must describe a pool created by this package: the
// zero slot of every table is the invalid sentinel and payload slots must
// be in range for their kind.
func (in *Interner) Restore(snap Snapshot) error {
	if len(snap.Types) == 0 || snap.Types[0].Kind != KindInvalid {
		return fmt.Errorf("type table must start with the invalid sentinel")
	}
	for id, tt := range snap.Types {
		if err := checkPayload(tt, snap); err != nil {
			return fmt.Errorf("type %d: %w", id, err)
		}
	}

	in.types = slices.Clone(snap.Types)
	in.index = make(map[Type]TypeID, len(in.types))
	for id, tt := range in.types {
		in.index[tt] = TypeID(id)
	}

	in.structs = restoreTable(snap.Structs)
	in.enums = restoreTable(snap.Enums)
	in.aliases = restoreTable(snap.Aliases)
	in.tuples = restoreTable(snap.Tuples)
	in.fns = restoreTable(snap.Fns)

	in.decls = make(map[source.StringID]TypeID)
	for id, tt := range in.types {
		switch tt.Kind {
		case KindStruct, KindEnum, KindAlias:
			in.declare(in.NameOf(TypeID(id)), TypeID(id))
		}
	}

	in.builtins = Builtins{}
	in.builtins.Invalid = NoTypeID
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
	return nil
}

func checkPayload(tt Type, snap Snapshot) error {
	var table int
	switch tt.Kind {
	case KindStruct:
		table = len(snap.Structs)
	case KindEnum:
		table = len(snap.Enums)
	case KindAlias:
		table = len(snap.Aliases)
	case KindTuple:
		table = len(snap.Tuples)
	case KindFn:
		table = len(snap.Fns)
	default:
		return nil
	}
	if tt.Payload == 0 || int(tt.Payload) >= table {
		return fmt.Errorf("%s payload %d out of range (table size %d)", tt.Kind, tt.Payload, table)
	}
	return nil
}

// restoreTable clones a side table, inserting the sentinel slot when the
// snapshot came without one (an empty table).
func restoreTable[T any](src []T) []T {
	if len(src) == 0 {
		return make([]T, 1)
	}
	return slices.Clone(src)
}
