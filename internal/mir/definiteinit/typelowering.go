package definiteinit

import "github.com/orizon-lang/definit/internal/mir"

// TypeLowering classifies types for Assign lowering and emits the
// copy/destroy sequences for non-trivial types. It is supplied by the caller
// of Run, per the IR's own notion of what "trivially copyable" and "destroy"
// mean; Run substitutes TrivialLowering when the caller supplies none.
type TypeLowering interface {
	// IsTrivial reports whether a value of type t can be overwritten without
	// destroying the previous occupant (no retain/release semantics).
	IsTrivial(t mir.Type) bool
	// EmitLoadOfCopy returns a value read from addr (optionally consuming it,
	// if isTake) and any instructions needed to produce it.
	EmitLoadOfCopy(addr mir.Value, isTake bool, gen *refGen) (mir.Value, []mir.Instr)
	// EmitStoreOfCopy returns the instructions needed to store val into addr.
	EmitStoreOfCopy(val, addr mir.Value, isInit bool) []mir.Instr
	// EmitDestroyValue returns the instructions needed to release val.
	EmitDestroyValue(val mir.Value) []mir.Instr
}

// TrivialLowering treats every type as bitwise-copyable: Assign always
// lowers to a plain Store, and destroy is a no-op. Suitable for test
// fixtures built entirely from primitive types.
type TrivialLowering struct{}

func (TrivialLowering) IsTrivial(mir.Type) bool { return true }

func (TrivialLowering) EmitLoadOfCopy(addr mir.Value, _ bool, gen *refGen) (mir.Value, []mir.Instr) {
	dst := gen.value()
	return dst, []mir.Instr{mir.Load{Dst: dst.Ref, Addr: addr}}
}

func (TrivialLowering) EmitStoreOfCopy(val, addr mir.Value, _ bool) []mir.Instr {
	return []mir.Instr{mir.Store{Addr: addr, Val: val}}
}

func (TrivialLowering) EmitDestroyValue(mir.Value) []mir.Instr { return nil }

// DefaultNeedsDrop is the drop-trait convention used when the caller does
// not supply its own: a closed set of known-trivial primitive names are
// bitwise-copyable; every tuple/struct is non-trivial if any field is;
// enums and weak references are always non-trivial, matching a heap box's
// own reference semantics. Mirrors the Copy/Drop traits tracked per value by
// *mir.OwnershipManager, applied here at the type level.
func DefaultNeedsDrop(t mir.Type) bool {
	switch tt := t.(type) {
	case mir.PrimitiveType:
		switch tt.Name {
		case "Int", "Int8", "Int16", "Int32", "Int64", "UInt", "Bool", "Float32", "Float64", "Unit", "":
			return false
		default:
			return true
		}
	case mir.TupleType:
		for _, e := range tt.Elements {
			if DefaultNeedsDrop(e) {
				return true
			}
		}
		return false
	case mir.StructType:
		for _, f := range tt.Fields {
			if DefaultNeedsDrop(f.Type) {
				return true
			}
		}
		return false
	default:
		return true
	}
}

// RetainCountLowering defers triviality to a drop-trait oracle (typically
// DefaultNeedsDrop) and emits a symbolic DestroyValue for non-trivial types.
type RetainCountLowering struct {
	// NeedsDrop reports whether a value of the given type needs a destroy
	// when overwritten. A nil NeedsDrop treats every type as trivial.
	NeedsDrop func(t mir.Type) bool
}

func (l RetainCountLowering) IsTrivial(t mir.Type) bool {
	if l.NeedsDrop == nil {
		return true
	}
	return !l.NeedsDrop(t)
}

func (RetainCountLowering) EmitLoadOfCopy(addr mir.Value, _ bool, gen *refGen) (mir.Value, []mir.Instr) {
	dst := gen.value()
	return dst, []mir.Instr{mir.Load{Dst: dst.Ref, Addr: addr}}
}

func (RetainCountLowering) EmitStoreOfCopy(val, addr mir.Value, _ bool) []mir.Instr {
	return []mir.Instr{mir.Store{Addr: addr, Val: val}}
}

func (RetainCountLowering) EmitDestroyValue(val mir.Value) []mir.Instr {
	return []mir.Instr{mir.DestroyValue{Value: val}}
}
