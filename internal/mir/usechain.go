package mir

// InstrLoc pins an instruction to its position in a function.
type InstrLoc struct {
	Block *BasicBlock
	Index int
	Instr Instr
}

// UseChains is the def/use index a function exposes to its consumers: for
// every value ref produced anywhere in the function, where it was defined
// and every instruction that references it as an operand, in IR order.
type UseChains struct {
	defs map[string]InstrLoc
	uses map[string][]InstrLoc
}

// BuildUseChains scans f once and returns its def/use index.
func BuildUseChains(f *Function) *UseChains {
	uc := &UseChains{
		defs: make(map[string]InstrLoc),
		uses: make(map[string][]InstrLoc),
	}
	for _, b := range f.Blocks {
		for idx, instr := range b.Instr {
			loc := InstrLoc{Block: b, Index: idx, Instr: instr}
			for _, ref := range resultRefs(instr) {
				uc.defs[ref] = loc
			}
			for _, ref := range operandRefs(instr) {
				uc.uses[ref] = append(uc.uses[ref], loc)
			}
		}
	}
	return uc
}

// Def returns where ref was produced, if anywhere in the function.
func (uc *UseChains) Def(ref string) (InstrLoc, bool) {
	loc, ok := uc.defs[ref]
	return loc, ok
}

// Uses returns every instruction that references ref as an operand, in the
// order they appear in the function.
func (uc *UseChains) Uses(ref string) []InstrLoc {
	return uc.uses[ref]
}

// resultRefs returns the value refs an instruction defines.
func resultRefs(instr Instr) []string {
	switch i := instr.(type) {
	case BinOp:
		return nonEmpty(i.Dst)
	case Call:
		return nonEmpty(i.Dst)
	case Alloca:
		return nonEmpty(i.Dst)
	case Load:
		return nonEmpty(i.Dst)
	case Cmp:
		return nonEmpty(i.Dst)
	case AllocBox:
		return nonEmpty(i.RefDst, i.AddrDst)
	case AllocStack:
		return nonEmpty(i.RefDst, i.AddrDst)
	case MarkUninitialized:
		return nonEmpty(i.Dst)
	case TupleElementAddr:
		return nonEmpty(i.Dst)
	case StructElementAddr:
		return nonEmpty(i.Dst)
	case EnumDataAddr:
		return nonEmpty(i.Dst)
	case LoadWeak:
		return nonEmpty(i.Dst)
	case TupleExtract:
		return nonEmpty(i.Dst)
	case StructExtract:
		return nonEmpty(i.Dst)
	case TupleConstruct:
		return nonEmpty(i.Dst)
	case StructConstruct:
		return nonEmpty(i.Dst)
	case InitExistential:
		return nonEmpty(i.Dst)
	case ProjectExistential:
		return nonEmpty(i.Dst)
	case ProtocolMethod:
		return nonEmpty(i.Dst)
	default:
		return nil
	}
}

// operandRefs returns the ValRef operands an instruction reads, in operand
// order. Constant operands are omitted; only named refs participate in the
// def/use chain.
func operandRefs(instr Instr) []string {
	var refs []string
	add := func(vs ...Value) {
		for _, v := range vs {
			if v.Kind == ValRef && v.Ref != "" {
				refs = append(refs, v.Ref)
			}
		}
	}
	switch i := instr.(type) {
	case BinOp:
		add(i.LHS, i.RHS)
	case Ret:
		if i.Val != nil {
			add(*i.Val)
		}
	case Call:
		if i.CalleeVal != nil {
			add(*i.CalleeVal)
		}
		add(i.Args...)
	case Load:
		add(i.Addr)
	case Store:
		add(i.Addr, i.Val)
	case Cmp:
		add(i.LHS, i.RHS)
	case CondBr:
		add(i.Cond)
	case MarkUninitialized:
		add(i.Operand)
	case TupleElementAddr:
		add(i.Addr)
	case StructElementAddr:
		add(i.Addr)
	case EnumDataAddr:
		add(i.Addr)
	case Assign:
		add(i.Addr, i.Val)
	case CopyAddr:
		add(i.Src, i.Dst)
	case LoadWeak:
		add(i.Addr)
	case StoreWeak:
		add(i.Addr, i.Val)
	case InitializeVar:
		add(i.Addr)
	case InitExistential:
		add(i.Addr)
	case UpcastExistential:
		add(i.Src, i.Dst)
	case ProjectExistential:
		add(i.Addr)
	case ProtocolMethod:
		add(i.Addr)
	case InjectEnumAddr:
		add(i.Addr)
	case StrongRelease:
		add(i.Value)
	case DeallocStack:
		add(i.Addr)
	case MarkFunctionEscape:
		add(i.Addr)
	case TupleExtract:
		add(i.Val)
	case StructExtract:
		add(i.Val)
	case TupleConstruct:
		add(i.Elements...)
	case StructConstruct:
		add(i.Elements...)
	case DestroyValue:
		add(i.Value)
	}
	return refs
}

func nonEmpty(refs ...string) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		if r != "" {
			out = append(out, r)
		}
	}
	return out
}
