package definiteinit

import "github.com/orizon-lang/definit/internal/mir"

// addrPointeeType returns the type of the storage addr points to, by
// looking up addr's defining instruction. Every instruction that produces an
// address in this pass's vocabulary carries (or can derive) its pointee
// type, so this is total over well-formed IR; it returns (nil, false) only
// for an address with no recorded definition (a function parameter, or
// foreign IR this pass doesn't model).
func addrPointeeType(uc *mir.UseChains, addr mir.Value) (mir.Type, bool) {
	if addr.Kind != mir.ValRef {
		return nil, false
	}
	loc, ok := uc.Def(addr.Ref)
	if !ok {
		return nil, false
	}
	switch i := loc.Instr.(type) {
	case mir.AllocBox:
		return i.ElemType, i.ElemType != nil
	case mir.AllocStack:
		return i.ElemType, i.ElemType != nil
	case mir.MarkUninitialized:
		return i.ElemType, i.ElemType != nil
	case mir.TupleElementAddr:
		if i.Tuple == nil || i.Field >= len(i.Tuple.Elements) {
			return nil, false
		}
		return i.Tuple.Elements[i.Field], true
	case mir.StructElementAddr:
		if i.Struct == nil || i.Field >= len(i.Struct.Fields) {
			return nil, false
		}
		return i.Struct.Fields[i.Field].Type, true
	case mir.EnumDataAddr:
		if i.Enum == nil {
			return nil, false
		}
		return i.Enum.Payload, true
	default:
		return nil, false
	}
}
