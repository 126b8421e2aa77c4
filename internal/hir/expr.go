package hir

import (
	"sigil/internal/source"
	"sigil/internal/types"
)

// ExprKind enumerates the expression shapes the ARC passes dispatch on.
type ExprKind uint8

const (
	// ExprInvalid is the zero value; it never appears in a well-formed tree.
	ExprInvalid ExprKind = iota
	// ExprIdent is a reference to a binding or parameter.
	ExprIdent
	// ExprIntLit is an integer literal.
	ExprIntLit
	// ExprFloatLit is a floating-point literal.
	ExprFloatLit
	// ExprBoolLit is true or false.
	ExprBoolLit
	// ExprStrLit is a string literal.
	ExprStrLit
	// ExprCharLit is a character literal.
	ExprCharLit
	// ExprUnitLit is the unit value.
	ExprUnitLit
	// ExprSome wraps a value into Option.
	ExprSome
	// ExprOk wraps a value into the ok slot of Result.
	ExprOk
	// ExprErr wraps a value into the err slot of Result.
	ExprErr
	// ExprLet binds a name to an initializer inside a block.
	ExprLet
	// ExprAssign overwrites an existing binding or place.
	ExprAssign
	// ExprCall applies a callee expression to arguments.
	ExprCall
	// ExprMethodCall applies a named method to a receiver and arguments.
	ExprMethodCall
	// ExprBinary is a binary operator application.
	ExprBinary
	// ExprUnary is a unary operator application.
	ExprUnary
	// ExprIf is a conditional with an optional else arm.
	ExprIf
	// ExprMatch scrutinizes a value and yields one arm's result.
	ExprMatch
	// ExprFor iterates a sequence with an optional guard.
	ExprFor
	// ExprBlock is a statement sequence with an optional result value.
	ExprBlock
	// ExprLambda is a closure literal.
	ExprLambda
	// ExprListLit constructs a list from elements.
	ExprListLit
	// ExprTupleLit constructs a tuple from elements.
	ExprTupleLit
	// ExprMapLit constructs a map from interleaved keys and values.
	ExprMapLit
	// ExprStructLit constructs a named struct from field values.
	ExprStructLit
	// ExprField reads a field out of a base value.
	ExprField
	// ExprIndex reads an element out of an indexable value.
	ExprIndex
	// ExprRange constructs a range from bounds.
	ExprRange
	// ExprReturn leaves the function with an optional value.
	ExprReturn
	// ExprBreak leaves the enclosing loop with an optional value.
	ExprBreak
	// ExprTry propagates the err slot of its operand.
	ExprTry
	// ExprAwait suspends on its operand.
	ExprAwait
)

// String returns a human-readable name for the expression kind.
func (k ExprKind) String() string {
	switch k {
	case ExprInvalid:
		return "Invalid"
	case ExprIdent:
		return "Ident"
	case ExprIntLit:
		return "IntLit"
	case ExprFloatLit:
		return "FloatLit"
	case ExprBoolLit:
		return "BoolLit"
	case ExprStrLit:
		return "StrLit"
	case ExprCharLit:
		return "CharLit"
	case ExprUnitLit:
		return "UnitLit"
	case ExprSome:
		return "Some"
	case ExprOk:
		return "Ok"
	case ExprErr:
		return "Err"
	case ExprLet:
		return "Let"
	case ExprAssign:
		return "Assign"
	case ExprCall:
		return "Call"
	case ExprMethodCall:
		return "MethodCall"
	case ExprBinary:
		return "Binary"
	case ExprUnary:
		return "Unary"
	case ExprIf:
		return "If"
	case ExprMatch:
		return "Match"
	case ExprFor:
		return "For"
	case ExprBlock:
		return "Block"
	case ExprLambda:
		return "Lambda"
	case ExprListLit:
		return "ListLit"
	case ExprTupleLit:
		return "TupleLit"
	case ExprMapLit:
		return "MapLit"
	case ExprStructLit:
		return "StructLit"
	case ExprField:
		return "Field"
	case ExprIndex:
		return "Index"
	case ExprRange:
		return "Range"
	case ExprReturn:
		return "Return"
	case ExprBreak:
		return "Break"
	case ExprTry:
		return "Try"
	case ExprAwait:
		return "Await"
	default:
		return "ExprKind(?)"
	}
}

// Op enumerates operators for ExprBinary and ExprUnary. The ownership
// pass treats all operators alike; the enum exists for dumps and tests.
type Op uint8

const (
	OpNone Op = iota
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
	OpNeg
	OpNot
)

// String returns the operator's surface syntax.
func (o Op) String() string {
	switch o {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	case OpEq:
		return "=="
	case OpNe:
		return "!="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	case OpAnd:
		return "&&"
	case OpOr:
		return "||"
	case OpNeg:
		return "-"
	case OpNot:
		return "!"
	default:
		return "?"
	}
}

// Expr is a single typed expression node. One struct covers every kind;
// the field roles depend on Kind:
//
//	Ident:      Name = binding
//	IntLit, FloatLit, StrLit, CharLit: Name = interned lexeme
//	BoolLit:    Op = 1 for true, 0 for false
//	UnitLit:    no operands
//	Some, Ok, Err, Try, Await: X = operand
//	Let:        Name = binding, X = initializer
//	Assign:     X = target place, Y = value
//	Call:       X = callee, List = arguments
//	MethodCall: X = receiver, Name = method, List = arguments
//	Binary:     Op, X = left, Y = right
//	Unary:      Op, X = operand
//	If:         X = condition, Y = then, Z = else (NoExprID when absent)
//	Match:      X = scrutinee, List = arm bodies
//	For:        Name = loop binding, X = iterable,
//	            Y = guard (NoExprID when absent), Z = body
//	Block:      List = statements, X = result value (NoExprID for unit)
//	Lambda:     List = parameter Idents, X = body
//	ListLit, TupleLit: List = elements
//	MapLit:     List = interleaved key, value, key, value, ...
//	StructLit:  Name = struct name, List = field values in declaration
//	            order (field names live in the type pool)
//	Field:      X = base, Name = field
//	Index:      X = base, Y = index
//	Range:      X = low bound, Y = high bound
//	Return, Break: X = value (NoExprID when bare)
//
// Type is the expression's resolved type and is never NoTypeID in a
// well-formed tree. Span may be the zero span for synthesized nodes.
type Expr struct {
	Kind ExprKind
	Op   Op
	Type types.TypeID
	Span source.Span
	Name source.StringID
	X    ExprID
	Y    ExprID
	Z    ExprID
	List []ExprID
}
