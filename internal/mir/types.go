package mir

import "strings"

// Type is the aggregate-type lattice the definite-initialization pass needs:
// enough structure to flatten tuples and structs into primitive sub-elements,
// while enums, weak wrappers, and anything else count as a single primitive.
type Type interface {
	isType()
	String() string
}

// PrimitiveType is any non-aggregate type: integers, floats, pointers,
// opaque nominal types with no stored-property visibility to this pass.
type PrimitiveType struct{ Name string }

func (PrimitiveType) isType() {}
func (t PrimitiveType) String() string {
	if t.Name == "" {
		return "<primitive>"
	}
	return t.Name
}

// TupleType is an ordered, unnamed product type.
type TupleType struct{ Elements []Type }

func (TupleType) isType() {}
func (t TupleType) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, e := range t.Elements {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(e.String())
	}
	b.WriteByte(')')
	return b.String()
}

// StructField is one stored property of a StructType, in declaration order.
type StructField struct {
	Name string
	Type Type
}

// StructType is an ordered, named product type.
type StructType struct {
	Name   string
	Fields []StructField
}

func (StructType) isType() {}
func (t StructType) String() string {
	if t.Name != "" {
		return t.Name
	}
	var b strings.Builder
	b.WriteByte('{')
	for i, f := range t.Fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.Name)
		b.WriteByte(':')
		b.WriteString(f.Type.String())
	}
	b.WriteByte('}')
	return b.String()
}

// EnumType is a sum type. Its payload is opaque to sub-element flattening:
// the whole enum counts as one primitive regardless of the payload's shape.
type EnumType struct {
	Name    string
	Payload Type
}

func (EnumType) isType() {}
func (t EnumType) String() string {
	if t.Name != "" {
		return t.Name
	}
	return "enum"
}

// WeakType wraps a referent type held without a strong reference. Like
// EnumType, it counts as a single primitive; load promotion additionally
// refuses to forward across a weak-typed allocation (spec §4.5.3).
type WeakType struct{ Referent Type }

func (WeakType) isType() {}
func (t WeakType) String() string { return "weak " + t.Referent.String() }

// IsWeak reports whether t is (or is, transparently, a weak wrapper around) a
// weak-referenced type.
func IsWeak(t Type) bool {
	_, ok := t.(WeakType)
	return ok
}
