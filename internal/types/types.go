package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota

	// Scalar primitives. These never touch the heap and never carry
	// a reference count.
	KindUnit
	KindNever
	KindBool
	KindInt
	KindFloat
	KindChar
	KindByte
	KindDuration
	KindSize
	KindOrdering

	// Conditionally heap-allocated. str uses small-string optimization,
	// error boxes its payload.
	KindStr
	KindError

	// Containers and other structural types.
	KindList
	KindMap
	KindSet
	KindOption
	KindResult
	KindTuple
	KindFn
	KindRange
	KindChannel

	// Nominal types.
	KindNamed // unresolved reference to a declared type, by name
	KindStruct
	KindEnum
	KindAlias

	// Inference artifacts that may survive into this stage.
	KindVar
	KindProjection
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindUnit:
		return "unit"
	case KindNever:
		return "never"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindChar:
		return "char"
	case KindByte:
		return "byte"
	case KindDuration:
		return "duration"
	case KindSize:
		return "size"
	case KindOrdering:
		return "ordering"
	case KindStr:
		return "str"
	case KindError:
		return "error"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindSet:
		return "set"
	case KindOption:
		return "option"
	case KindResult:
		return "result"
	case KindTuple:
		return "tuple"
	case KindFn:
		return "fn"
	case KindRange:
		return "range"
	case KindChannel:
		return "channel"
	case KindNamed:
		return "named"
	case KindStruct:
		return "struct"
	case KindEnum:
		return "enum"
	case KindAlias:
		return "alias"
	case KindVar:
		return "var"
	case KindProjection:
		return "projection"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Type is a compact descriptor for any supported type. The meaning of
// Elem/Aux/Payload depends on Kind:
//
//	list/set/option/range/channel  Elem = element
//	map                            Aux = key, Elem = value
//	result                         Elem = ok, Aux = err
//	tuple/fn/struct/enum/alias     Payload = side-table slot
//	named                          Payload = StringID of the name
//	var                            Payload = inference variable number
//	projection                     Elem = base, Payload = StringID of assoc
//
// Type is comparable, so it doubles as the interner's hash key.
type Type struct {
	Kind    Kind
	Elem    TypeID
	Aux     TypeID
	Payload uint32
}

// Descriptor helpers ---------------------------------------------------------

// MakeList describes [T].
func MakeList(elem TypeID) Type {
	return Type{Kind: KindList, Elem: elem}
}

// MakeMap describes {K: V}.
func MakeMap(key, value TypeID) Type {
	return Type{Kind: KindMap, Aux: key, Elem: value}
}

// MakeSet describes {T}.
func MakeSet(elem TypeID) Type {
	return Type{Kind: KindSet, Elem: elem}
}

// MakeOption describes Option<T>.
func MakeOption(inner TypeID) Type {
	return Type{Kind: KindOption, Elem: inner}
}

// MakeResult describes Result<T, E>.
func MakeResult(ok, err TypeID) Type {
	return Type{Kind: KindResult, Elem: ok, Aux: err}
}

// MakeRange describes Range<T>.
func MakeRange(elem TypeID) Type {
	return Type{Kind: KindRange, Elem: elem}
}

// MakeChannel describes Channel<T>.
func MakeChannel(elem TypeID) Type {
	return Type{Kind: KindChannel, Elem: elem}
}
