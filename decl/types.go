package decl

import (
	"fmt"
)

type TypeTag int

const (
	TypeTagUnknown TypeTag = iota
	TypeTagVoid
	TypeTagSimple
	TypeTagList
	TypeTagNamed
)

// Type describes both declared types (field and static declarations) and the
// runtime types reported by values.
// Simple types carry their name in Info, list types carry their element type
// (nil for an untyped runtime list) and named types carry the shape name.
type Type struct {
	Tag  TypeTag
	Info any
}

var (
	// Use singletons for basic types for efficiency
	VoidType  = &Type{Tag: TypeTagVoid, Info: "Void"}
	BoolType  = SimpleType("Bool")
	IntType   = SimpleType("Int")
	FloatType = SimpleType("Float")
	CharType  = SimpleType("Char")
	StrType   = SimpleType("String")

	// Handles to entities, bound by named entity filters
	EntityType = SimpleType("Entity")
)

func SimpleType(name string) *Type {
	return &Type{Tag: TypeTagSimple, Info: name}
}

// ListType returns a list type.  A nil element type denotes a list whose
// elements are not constrained, which is what every runtime list reports.
func ListType(elementType *Type) *Type {
	return &Type{Tag: TypeTagList, Info: elementType}
}

// NamedType refers to a struct, component or resource shape by name.
func NamedType(name string) *Type {
	if name == "" {
		panic("named type needs a name")
	}
	return &Type{Tag: TypeTagNamed, Info: name}
}

// Element type of a list type (nil for untyped lists or non list types)
func (t *Type) ElementType() *Type {
	if t == nil || t.Tag != TypeTagList || t.Info == nil {
		return nil
	}
	return t.Info.(*Type)
}

// Name of a named type or "" otherwise
func (t *Type) ShapeName() string {
	if t == nil || t.Tag != TypeTagNamed {
		return ""
	}
	return t.Info.(string)
}

func (t *Type) IsList() bool  { return t != nil && t.Tag == TypeTagList }
func (t *Type) IsNamed() bool { return t != nil && t.Tag == TypeTagNamed }

// String representation of the type
func (t *Type) String() string {
	if t == nil {
		return "<nil_type>"
	}
	switch t.Tag {
	case TypeTagVoid, TypeTagSimple, TypeTagNamed:
		return t.Info.(string)
	case TypeTagList:
		if elem := t.ElementType(); elem != nil {
			return fmt.Sprintf("[%s]", elem.String())
		}
		return "List"
	}
	return "Unknown Type"
}

// Equals checks if two types are the same.  Runtime values only ever carry
// untyped list types so two list types are equal when their element types
// are equal or when either side is untyped.
func (t *Type) Equals(other *Type) bool {
	if t == other {
		return true
	}
	if t == nil || other == nil {
		return false
	}
	if t.Tag != other.Tag {
		return false
	}
	switch t.Tag {
	case TypeTagVoid, TypeTagSimple, TypeTagNamed:
		return t.Info.(string) == other.Info.(string)
	case TypeTagList:
		e1, e2 := t.ElementType(), other.ElementType()
		if e1 == nil || e2 == nil {
			return true
		}
		return e1.Equals(e2)
	}
	panic(fmt.Sprintf("Invalid types... %d, %v, %d, %v", t.Tag, t.Info, other.Tag, other.Info))
}

// Maps the primitive type keywords of the language to their types.
func PrimitiveType(keyword string) *Type {
	switch keyword {
	case "int":
		return IntType
	case "float":
		return FloatType
	case "bool":
		return BoolType
	case "char":
		return CharType
	case "string":
		return StrType
	case "void":
		return VoidType
	}
	return nil
}
