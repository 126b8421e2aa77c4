package types

import (
	"fmt"
	"strings"

	"sigil/internal/source"
)

// Label returns a user-friendly rendering of a type, in surface syntax.
// Used by diagnostics and the IR printer; never by analysis logic.
func Label(in *Interner, names *source.Interner, id TypeID) string {
	return labelDepth(in, names, id, 0)
}

func labelDepth(in *Interner, names *source.Interner, id TypeID, depth int) string {
	if id == NoTypeID {
		return "?"
	}
	if depth > 6 {
		return "..."
	}
	if in == nil {
		return "?"
	}
	tt, ok := in.Lookup(id)
	if !ok {
		return "?"
	}
	switch tt.Kind {
	case KindUnit:
		return "()"
	case KindNever:
		return "never"
	case KindBool, KindInt, KindFloat, KindChar, KindByte,
		KindDuration, KindSize, KindOrdering, KindStr, KindError:
		return tt.Kind.String()
	case KindList:
		return "[" + labelDepth(in, names, tt.Elem, depth+1) + "]"
	case KindMap:
		return "{" + labelDepth(in, names, tt.Aux, depth+1) + ": " +
			labelDepth(in, names, tt.Elem, depth+1) + "}"
	case KindSet:
		return "{" + labelDepth(in, names, tt.Elem, depth+1) + "}"
	case KindOption:
		return "Option<" + labelDepth(in, names, tt.Elem, depth+1) + ">"
	case KindResult:
		return "Result<" + labelDepth(in, names, tt.Elem, depth+1) + ", " +
			labelDepth(in, names, tt.Aux, depth+1) + ">"
	case KindRange:
		return "Range<" + labelDepth(in, names, tt.Elem, depth+1) + ">"
	case KindChannel:
		return "Channel<" + labelDepth(in, names, tt.Elem, depth+1) + ">"
	case KindTuple:
		info, ok := in.TupleInfo(id)
		if !ok {
			return "(?)"
		}
		parts := make([]string, len(info.Elems))
		for i, e := range info.Elems {
			parts[i] = labelDepth(in, names, e, depth+1)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case KindFn:
		info, ok := in.FnInfo(id)
		if !ok {
			return "fn(?)"
		}
		parts := make([]string, len(info.Params))
		for i, p := range info.Params {
			parts[i] = labelDepth(in, names, p, depth+1)
		}
		return "fn(" + strings.Join(parts, ", ") + ") -> " +
			labelDepth(in, names, info.Result, depth+1)
	case KindNamed, KindStruct, KindEnum, KindAlias:
		return lookupName(names, in.NameOf(id))
	case KindVar:
		return fmt.Sprintf("$%d", tt.Payload)
	case KindProjection:
		return labelDepth(in, names, tt.Elem, depth+1) + "::" +
			lookupName(names, source.StringID(tt.Payload))
	default:
		return "?"
	}
}

func lookupName(names *source.Interner, id source.StringID) string {
	if names == nil {
		return fmt.Sprintf("#%d", id)
	}
	s, ok := names.Lookup(id)
	if !ok || s == "" {
		return fmt.Sprintf("#%d", id)
	}
	return s
}
