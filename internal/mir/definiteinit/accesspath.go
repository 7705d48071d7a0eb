package definiteinit

import "github.com/orizon-lang/definit/internal/mir"

// resolve walks addr back through a chain of TupleElementAddr/StructElementAddr
// projections to root, accumulating the flat sub-element index of the first
// primitive addr addresses. Returns (0, false) if addr is not rooted at root
// via a well-formed projection chain.
func resolve(uc *mir.UseChains, addr mir.Value, rootRef string) (firstSubElement int, found bool) {
	acc := 0
	cur := addr
	for {
		if cur.Kind == mir.ValRef && cur.Ref == rootRef {
			return acc, true
		}
		if cur.Kind != mir.ValRef {
			return 0, false
		}
		loc, ok := uc.Def(cur.Ref)
		if !ok {
			return 0, false
		}
		switch instr := loc.Instr.(type) {
		case mir.TupleElementAddr:
			for i := 0; i < instr.Field; i++ {
				acc += subElementCount(instr.Tuple.Elements[i])
			}
			cur = instr.Addr
		case mir.StructElementAddr:
			for i := 0; i < instr.Field; i++ {
				acc += subElementCount(instr.Struct.Fields[i].Type)
			}
			cur = instr.Addr
		default:
			return 0, false
		}
	}
}
