// Package definiteinit proves, per tuple-flattened element of an allocation's
// type (see tupleElementCount; a struct counts as one element), that every
// read, inout pass, escape, or release is dominated by a
// prior store along every control-flow path, then lowers abstract Assign
// operations and forwards loads from prior stores within a block.
package definiteinit

import (
	"fmt"
	"strings"

	"github.com/orizon-lang/definit/internal/mir"
)

// subElementCount returns the number of primitive sub-elements in t: the
// recursive sum over tuple field types and struct stored-property types, or
// 1 for anything else (including enum payloads and weak wrappers, which are
// opaque to this pass's flattening).
func subElementCount(t mir.Type) int {
	switch tt := t.(type) {
	case mir.TupleType:
		n := 0
		for _, e := range tt.Elements {
			n += subElementCount(e)
		}
		return n
	case mir.StructType:
		n := 0
		for _, f := range tt.Fields {
			n += subElementCount(f.Type)
		}
		return n
	default:
		return 1
	}
}

// tupleElementCount returns the number of tuple-flattened elements in t:
// recursive over tuple field types only, stopping at the first non-tuple. A
// struct, enum, or weak type is one opaque element at this granularity even
// though subElementCount would count further into it — this is the count the
// use collector buckets by, since DI proof treats a struct as a single unit:
// a store into one field can never by itself prove the others are live.
func tupleElementCount(t mir.Type) int {
	tt, ok := t.(mir.TupleType)
	if !ok {
		return 1
	}
	n := 0
	for _, e := range tt.Elements {
		n += tupleElementCount(e)
	}
	return n
}

// tupleElementType returns the type occupying tuple-flattened index within t
// (see tupleElementCount) — a primitive, or a whole struct/enum/weak type
// when that's what sits at that position.
func tupleElementType(t mir.Type, index int) mir.Type {
	tt, ok := t.(mir.TupleType)
	if !ok {
		return t
	}
	for _, e := range tt.Elements {
		n := tupleElementCount(e)
		if index < n {
			return tupleElementType(e, index)
		}
		index -= n
	}
	assertf(false, "tupleElementType: tuple index out of range")
	return nil
}

// tuplePathString renders the dotted path to a tuple-flattened index (see
// tupleElementCount), stopping at the first non-tuple; used for diagnostics
// naming, which operate at the same granularity the use collector buckets by.
func tuplePathString(t mir.Type, index int) string {
	var b strings.Builder
	tuplePathStringInto(t, index, &b)
	return b.String()
}

func tuplePathStringInto(t mir.Type, index int, b *strings.Builder) {
	tt, ok := t.(mir.TupleType)
	if !ok {
		assertf(index == 0, "tuplePathString: leaf index out of range")
		return
	}
	for i, e := range tt.Elements {
		n := tupleElementCount(e)
		if index < n {
			fmt.Fprintf(b, ".%d", i)
			tuplePathStringInto(e, index, b)
			return
		}
		index -= n
	}
	assertf(false, "tuplePathString: tuple index out of range")
}

// pathString renders the dotted field path to sub-element index within t,
// e.g. ".a.1". It panics via assertf if index is out of range for t.
func pathString(t mir.Type, index int) string {
	var b strings.Builder
	pathStringInto(t, index, &b)
	return b.String()
}

func pathStringInto(t mir.Type, index int, b *strings.Builder) {
	switch tt := t.(type) {
	case mir.TupleType:
		for i, e := range tt.Elements {
			n := subElementCount(e)
			if index < n {
				fmt.Fprintf(b, ".%d", i)
				pathStringInto(e, index, b)
				return
			}
			index -= n
		}
		assertf(false, "pathString: tuple index out of range")
	case mir.StructType:
		for _, f := range tt.Fields {
			n := subElementCount(f.Type)
			if index < n {
				fmt.Fprintf(b, ".%s", f.Name)
				pathStringInto(f.Type, index, b)
				return
			}
			index -= n
		}
		assertf(false, "pathString: struct index out of range")
	default:
		assertf(index == 0, "pathString: leaf index out of range")
	}
}

// elementName renders a human-facing name for a tuple-flattened element index
// of an allocation named allocName with allocation type allocType, e.g.
// "p.1", or "<unknown>" when allocName is empty. Struct fields sharing one
// element don't get a further name: the element is identified by its tuple
// position, not by which field within it a particular store touched.
func elementName(allocName string, allocType mir.Type, index int) string {
	if allocName == "" {
		allocName = "<unknown>"
	}
	return allocName + tuplePathString(allocType, index)
}
