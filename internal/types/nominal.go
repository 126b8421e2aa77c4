package types

import (
	"fmt"
	"slices"

	"fortio.org/safecast"

	"sigil/internal/source"
)

// Field describes a single field inside a struct or an enum variant.
type Field struct {
	Name source.StringID
	Type TypeID
	Span source.Span
}

// StructInfo stores metadata for a struct type.
type StructInfo struct {
	Name     source.StringID
	Decl     source.Span
	Fields   []Field
	TypeArgs []TypeID // concrete arguments for generic instantiations
}

// EnumVariantInfo stores metadata for a single enum variant. Variants may
// carry payload fields; the tag is the variant's position.
type EnumVariantInfo struct {
	Name   source.StringID
	Span   source.Span
	Fields []Field
}

// EnumInfo stores metadata for an enum type.
type EnumInfo struct {
	Name     source.StringID
	Decl     source.Span
	Variants []EnumVariantInfo
	TypeArgs []TypeID
}

// AliasInfo stores metadata for a nominal alias type.
type AliasInfo struct {
	Name   source.StringID
	Decl   source.Span
	Target TypeID
}

// RegisterStruct allocates a nominal struct type slot and returns its TypeID.
func (in *Interner) RegisterStruct(name source.StringID, decl source.Span) TypeID {
	slot := in.appendStructInfo(StructInfo{Name: name, Decl: decl})
	id := in.internRaw(Type{Kind: KindStruct, Payload: slot})
	in.declare(name, id)
	return id
}

// SetStructFields stores the resolved field descriptors for the struct type.
func (in *Interner) SetStructFields(typeID TypeID, fields []Field) {
	info := in.structInfo(typeID)
	if info == nil {
		return
	}
	info.Fields = cloneFields(fields)
}

// SetStructTypeArgs stores concrete type arguments for an instantiation.
func (in *Interner) SetStructTypeArgs(typeID TypeID, args []TypeID) {
	info := in.structInfo(typeID)
	if info == nil {
		return
	}
	info.TypeArgs = cloneTypeArgs(args)
}

// StructInfo returns metadata for the provided struct TypeID.
func (in *Interner) StructInfo(typeID TypeID) (*StructInfo, bool) {
	info := in.structInfo(typeID)
	if info == nil {
		return nil, false
	}
	return info, true
}

// StructFields returns a copy of struct fields for the TypeID.
func (in *Interner) StructFields(typeID TypeID) []Field {
	info := in.structInfo(typeID)
	if info == nil || len(info.Fields) == 0 {
		return nil
	}
	return cloneFields(info.Fields)
}

// RegisterEnum allocates a nominal enum type slot and returns its TypeID.
func (in *Interner) RegisterEnum(name source.StringID, decl source.Span) TypeID {
	slot := in.appendEnumInfo(EnumInfo{Name: name, Decl: decl})
	id := in.internRaw(Type{Kind: KindEnum, Payload: slot})
	in.declare(name, id)
	return id
}

// SetEnumVariants stores the resolved variants for the enum type.
func (in *Interner) SetEnumVariants(typeID TypeID, variants []EnumVariantInfo) {
	info := in.enumInfo(typeID)
	if info == nil {
		return
	}
	info.Variants = cloneEnumVariants(variants)
}

// EnumInfo returns metadata for the provided enum TypeID.
func (in *Interner) EnumInfo(typeID TypeID) (*EnumInfo, bool) {
	info := in.enumInfo(typeID)
	if info == nil {
		return nil, false
	}
	return info, true
}

// VariantTag returns the tag (position) of the named variant.
func (in *Interner) VariantTag(typeID TypeID, variant source.StringID) (uint32, bool) {
	info := in.enumInfo(typeID)
	if info == nil {
		return 0, false
	}
	for i, v := range info.Variants {
		if v.Name == variant {
			return uint32(i), true
		}
	}
	return 0, false
}

// RegisterAlias allocates a nominal alias type slot and returns its TypeID.
func (in *Interner) RegisterAlias(name source.StringID, decl source.Span) TypeID {
	slot := in.appendAliasInfo(AliasInfo{Name: name, Decl: decl})
	id := in.internRaw(Type{Kind: KindAlias, Payload: slot})
	in.declare(name, id)
	return id
}

// SetAliasTarget sets the aliased target type for the provided alias TypeID.
func (in *Interner) SetAliasTarget(typeID, target TypeID) {
	info := in.aliasInfo(typeID)
	if info == nil {
		return
	}
	info.Target = target
}

// AliasTarget retrieves the aliased target type.
func (in *Interner) AliasTarget(typeID TypeID) (TypeID, bool) {
	info := in.aliasInfo(typeID)
	if info == nil || info.Target == NoTypeID {
		return NoTypeID, false
	}
	return info.Target, true
}

// AliasInfo returns metadata for the provided alias TypeID.
func (in *Interner) AliasInfo(typeID TypeID) (*AliasInfo, bool) {
	info := in.aliasInfo(typeID)
	if info == nil {
		return nil, false
	}
	return info, true
}

// Decl returns the declared struct/enum/alias for a name.
func (in *Interner) Decl(name source.StringID) (TypeID, bool) {
	id, ok := in.decls[name]
	return id, ok
}

// DeclNames returns every declared type name, in a stable order.
func (in *Interner) DeclNames() []source.StringID {
	names := make([]source.StringID, 0, len(in.decls))
	for name := range in.decls {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// NameOf returns the declared name for nominal types and named references.
func (in *Interner) NameOf(id TypeID) source.StringID {
	tt, ok := in.Lookup(id)
	if !ok {
		return source.NoStringID
	}
	switch tt.Kind {
	case KindNamed:
		return source.StringID(tt.Payload)
	case KindStruct:
		if info := in.structInfo(id); info != nil {
			return info.Name
		}
	case KindEnum:
		if info := in.enumInfo(id); info != nil {
			return info.Name
		}
	case KindAlias:
		if info := in.aliasInfo(id); info != nil {
			return info.Name
		}
	}
	return source.NoStringID
}

// Resolve follows named references and alias chains to the underlying
// type. Names without a declaration and over-deep alias chains resolve to
// the input; callers classify such types conservatively.
func (in *Interner) Resolve(id TypeID) TypeID {
	const maxHops = 64
	cur := id
	for range maxHops {
		tt, ok := in.Lookup(cur)
		if !ok {
			return cur
		}
		switch tt.Kind {
		case KindNamed:
			decl, ok := in.decls[source.StringID(tt.Payload)]
			if !ok {
				return cur
			}
			cur = decl
		case KindAlias:
			target, ok := in.AliasTarget(cur)
			if !ok {
				return cur
			}
			cur = target
		default:
			return cur
		}
	}
	return cur
}

// declare records the first declaration for a name. Redeclaration is a
// front-end error; this stage keeps the original winner.
func (in *Interner) declare(name source.StringID, id TypeID) {
	if name == source.NoStringID {
		return
	}
	if _, exists := in.decls[name]; exists {
		return
	}
	in.decls[name] = id
}

func (in *Interner) structInfo(typeID TypeID) *StructInfo {
	if typeID == NoTypeID {
		return nil
	}
	tt, ok := in.Lookup(typeID)
	if !ok || tt.Kind != KindStruct {
		return nil
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.structs) {
		return nil
	}
	return &in.structs[tt.Payload]
}

func (in *Interner) enumInfo(typeID TypeID) *EnumInfo {
	if typeID == NoTypeID {
		return nil
	}
	tt, ok := in.Lookup(typeID)
	if !ok || tt.Kind != KindEnum {
		return nil
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.enums) {
		return nil
	}
	return &in.enums[tt.Payload]
}

func (in *Interner) aliasInfo(typeID TypeID) *AliasInfo {
	if typeID == NoTypeID {
		return nil
	}
	tt, ok := in.Lookup(typeID)
	if !ok || tt.Kind != KindAlias {
		return nil
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.aliases) {
		return nil
	}
	return &in.aliases[tt.Payload]
}

func (in *Interner) appendStructInfo(info StructInfo) uint32 {
	in.structs = append(in.structs, StructInfo{
		Name:     info.Name,
		Decl:     info.Decl,
		Fields:   cloneFields(info.Fields),
		TypeArgs: cloneTypeArgs(info.TypeArgs),
	})
	slot, err := safecast.Conv[uint32](len(in.structs) - 1)
	if err != nil {
		panic(fmt.Errorf("struct info overflow: %w", err))
	}
	return slot
}

func (in *Interner) appendEnumInfo(info EnumInfo) uint32 {
	in.enums = append(in.enums, EnumInfo{
		Name:     info.Name,
		Decl:     info.Decl,
		Variants: cloneEnumVariants(info.Variants),
		TypeArgs: cloneTypeArgs(info.TypeArgs),
	})
	slot, err := safecast.Conv[uint32](len(in.enums) - 1)
	if err != nil {
		panic(fmt.Errorf("enum info overflow: %w", err))
	}
	return slot
}

func (in *Interner) appendAliasInfo(info AliasInfo) uint32 {
	in.aliases = append(in.aliases, info)
	slot, err := safecast.Conv[uint32](len(in.aliases) - 1)
	if err != nil {
		panic(fmt.Errorf("alias info overflow: %w", err))
	}
	return slot
}

func cloneFields(fields []Field) []Field {
	if len(fields) == 0 {
		return nil
	}
	return slices.Clone(fields)
}

func cloneEnumVariants(variants []EnumVariantInfo) []EnumVariantInfo {
	if len(variants) == 0 {
		return nil
	}
	result := make([]EnumVariantInfo, len(variants))
	copy(result, variants)
	return result
}
