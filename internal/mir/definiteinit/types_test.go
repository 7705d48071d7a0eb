package definiteinit

import (
	"testing"

	"github.com/orizon-lang/definit/internal/mir"
)

func TestSubElementCount(t *testing.T) {
	cases := []struct {
		name string
		t    mir.Type
		want int
	}{
		{"primitive", mir.PrimitiveType{Name: "Int"}, 1},
		{"empty tuple", mir.TupleType{}, 0},
		{"flat tuple", mir.TupleType{Elements: []mir.Type{
			mir.PrimitiveType{Name: "Int"}, mir.PrimitiveType{Name: "Bool"},
		}}, 2},
		{"nested tuple", mir.TupleType{Elements: []mir.Type{
			mir.TupleType{Elements: []mir.Type{mir.PrimitiveType{Name: "Int"}, mir.PrimitiveType{Name: "Int"}}},
			mir.PrimitiveType{Name: "Bool"},
		}}, 3},
		{"struct", mir.StructType{Name: "Point", Fields: []mir.StructField{
			{Name: "x", Type: mir.PrimitiveType{Name: "Int"}},
			{Name: "y", Type: mir.PrimitiveType{Name: "Int"}},
		}}, 2},
		{"struct of tuple", mir.StructType{Fields: []mir.StructField{
			{Name: "p", Type: mir.TupleType{Elements: []mir.Type{mir.PrimitiveType{Name: "Int"}, mir.PrimitiveType{Name: "Int"}}}},
			{Name: "ok", Type: mir.PrimitiveType{Name: "Bool"}},
		}}, 3},
		{"enum opaque", mir.EnumType{Name: "Opt", Payload: mir.PrimitiveType{Name: "Int"}}, 1},
		{"weak opaque", mir.WeakType{Referent: mir.PrimitiveType{Name: "Foo"}}, 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := subElementCount(c.t); got != c.want {
				t.Errorf("subElementCount(%v) = %d, want %d", c.t, got, c.want)
			}
		})
	}
}

func TestPathString(t *testing.T) {
	point := mir.StructType{Name: "Point", Fields: []mir.StructField{
		{Name: "x", Type: mir.PrimitiveType{Name: "Int"}},
		{Name: "y", Type: mir.PrimitiveType{Name: "Int"}},
	}}
	tup := mir.TupleType{Elements: []mir.Type{point, mir.PrimitiveType{Name: "Bool"}}}

	cases := []struct {
		index int
		want  string
	}{
		{0, ".0.x"},
		{1, ".0.y"},
		{2, ".1"},
	}
	for _, c := range cases {
		if got := pathString(tup, c.index); got != c.want {
			t.Errorf("pathString(index=%d) = %q, want %q", c.index, got, c.want)
		}
	}
}

func TestTupleElementCount(t *testing.T) {
	cases := []struct {
		name string
		t    mir.Type
		want int
	}{
		{"primitive", mir.PrimitiveType{Name: "Int"}, 1},
		{"flat tuple", mir.TupleType{Elements: []mir.Type{
			mir.PrimitiveType{Name: "Int"}, mir.PrimitiveType{Name: "Bool"},
		}}, 2},
		{"struct is one element regardless of field count", mir.StructType{Fields: []mir.StructField{
			{Name: "x", Type: mir.PrimitiveType{Name: "Int"}},
			{Name: "y", Type: mir.PrimitiveType{Name: "Int"}},
		}}, 1},
		{"tuple of struct and primitive", mir.TupleType{Elements: []mir.Type{
			mir.StructType{Fields: []mir.StructField{
				{Name: "x", Type: mir.PrimitiveType{Name: "Int"}},
				{Name: "y", Type: mir.PrimitiveType{Name: "Int"}},
			}},
			mir.PrimitiveType{Name: "Bool"},
		}}, 2},
		{"nested tuple still flattens fully", mir.TupleType{Elements: []mir.Type{
			mir.TupleType{Elements: []mir.Type{mir.PrimitiveType{Name: "Int"}, mir.PrimitiveType{Name: "Int"}}},
			mir.PrimitiveType{Name: "Bool"},
		}}, 3},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := tupleElementCount(c.t); got != c.want {
				t.Errorf("tupleElementCount(%v) = %d, want %d", c.t, got, c.want)
			}
		})
	}
}

func TestTupleElementType(t *testing.T) {
	point := mir.StructType{Name: "Point", Fields: []mir.StructField{
		{Name: "x", Type: mir.PrimitiveType{Name: "Int"}},
		{Name: "y", Type: mir.PrimitiveType{Name: "Int"}},
	}}
	tup := mir.TupleType{Elements: []mir.Type{point, mir.PrimitiveType{Name: "Bool"}}}

	if got := tupleElementType(tup, 0); got.String() != point.String() {
		t.Errorf("tupleElementType(tup, 0) = %v, want the whole struct %v", got, point)
	}
	if got := tupleElementType(tup, 1); got.String() != (mir.PrimitiveType{Name: "Bool"}).String() {
		t.Errorf("tupleElementType(tup, 1) = %v, want Bool", got)
	}
}

func TestTuplePathString(t *testing.T) {
	point := mir.StructType{Name: "Point", Fields: []mir.StructField{
		{Name: "x", Type: mir.PrimitiveType{Name: "Int"}},
		{Name: "y", Type: mir.PrimitiveType{Name: "Int"}},
	}}
	tup := mir.TupleType{Elements: []mir.Type{point, mir.PrimitiveType{Name: "Bool"}}}

	// Unlike pathString, this never descends into the struct: it's one
	// element regardless of how many fields it has.
	if got := tuplePathString(tup, 0); got != ".0" {
		t.Errorf("tuplePathString(tup, 0) = %q, want %q", got, ".0")
	}
	if got := tuplePathString(tup, 1); got != ".1" {
		t.Errorf("tuplePathString(tup, 1) = %q, want %q", got, ".1")
	}
}

func TestElementName(t *testing.T) {
	pair := mir.TupleType{Elements: []mir.Type{mir.PrimitiveType{Name: "Int"}, mir.PrimitiveType{Name: "Int"}}}
	if got := elementName("p", pair, 1); got != "p.1" {
		t.Errorf("elementName = %q, want %q", got, "p.1")
	}
	if got := elementName("", mir.PrimitiveType{Name: "Int"}, 0); got != "<unknown>" {
		t.Errorf("elementName with empty name = %q, want %q", got, "<unknown>")
	}
}

// Every sub-element index in [0, subElementCount(t)) must round-trip through
// pathString without panicking — every index subElementCount counts is a
// valid pathString input.
func TestSubElementCountMatchesPathStringDomain(t *testing.T) {
	ty := mir.StructType{Fields: []mir.StructField{
		{Name: "a", Type: mir.TupleType{Elements: []mir.Type{mir.PrimitiveType{Name: "Int"}, mir.PrimitiveType{Name: "Int"}}}},
		{Name: "b", Type: mir.PrimitiveType{Name: "Bool"}},
	}}
	n := subElementCount(ty)
	for i := 0; i < n; i++ {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("pathString panicked at in-range index %d: %v", i, r)
				}
			}()
			pathString(ty, i)
		}()
	}
}
