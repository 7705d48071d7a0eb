package mir

// InsertInstrs splices instrs into block at position at, before the
// instruction currently at that index (or at the end, if at == len(block.Instr)).
// The inserted instructions' new indices are at..at+len(instrs)-1.
func InsertInstrs(block *BasicBlock, at int, instrs ...Instr) {
	if len(instrs) == 0 {
		return
	}
	grown := make([]Instr, 0, len(block.Instr)+len(instrs))
	grown = append(grown, block.Instr[:at]...)
	grown = append(grown, instrs...)
	grown = append(grown, block.Instr[at:]...)
	block.Instr = grown
}

// EraseInstr removes the instruction at index at from block.
func EraseInstr(block *BasicBlock, at int) {
	block.Instr = append(block.Instr[:at], block.Instr[at+1:]...)
}

// ReplaceAllUses rewrites every operand across every block of f that refers
// to oldRef so that it reads newVal instead. Definitions of oldRef are left
// untouched — callers that want the defining instruction gone must erase it
// themselves (definiteinit always does, via EraseInstr, right after forwarding).
func ReplaceAllUses(f *Function, oldRef string, newVal Value) {
	rewrite := func(v *Value) {
		if v.Kind == ValRef && v.Ref == oldRef {
			*v = newVal
		}
	}
	for _, b := range f.Blocks {
		for idx := range b.Instr {
			switch i := b.Instr[idx].(type) {
			case BinOp:
				rewrite(&i.LHS)
				rewrite(&i.RHS)
				b.Instr[idx] = i
			case Ret:
				if i.Val != nil {
					v := *i.Val
					rewrite(&v)
					i.Val = &v
				}
				b.Instr[idx] = i
			case Call:
				if i.CalleeVal != nil {
					v := *i.CalleeVal
					rewrite(&v)
					i.CalleeVal = &v
				}
				for j := range i.Args {
					rewrite(&i.Args[j])
				}
				b.Instr[idx] = i
			case Load:
				rewrite(&i.Addr)
				b.Instr[idx] = i
			case Store:
				rewrite(&i.Addr)
				rewrite(&i.Val)
				b.Instr[idx] = i
			case Cmp:
				rewrite(&i.LHS)
				rewrite(&i.RHS)
				b.Instr[idx] = i
			case CondBr:
				rewrite(&i.Cond)
				b.Instr[idx] = i
			case MarkUninitialized:
				rewrite(&i.Operand)
				b.Instr[idx] = i
			case TupleElementAddr:
				rewrite(&i.Addr)
				b.Instr[idx] = i
			case StructElementAddr:
				rewrite(&i.Addr)
				b.Instr[idx] = i
			case EnumDataAddr:
				rewrite(&i.Addr)
				b.Instr[idx] = i
			case Assign:
				rewrite(&i.Addr)
				rewrite(&i.Val)
				b.Instr[idx] = i
			case CopyAddr:
				rewrite(&i.Src)
				rewrite(&i.Dst)
				b.Instr[idx] = i
			case LoadWeak:
				rewrite(&i.Addr)
				b.Instr[idx] = i
			case StoreWeak:
				rewrite(&i.Addr)
				rewrite(&i.Val)
				b.Instr[idx] = i
			case InitializeVar:
				rewrite(&i.Addr)
				b.Instr[idx] = i
			case InitExistential:
				rewrite(&i.Addr)
				b.Instr[idx] = i
			case UpcastExistential:
				rewrite(&i.Src)
				rewrite(&i.Dst)
				b.Instr[idx] = i
			case ProjectExistential:
				rewrite(&i.Addr)
				b.Instr[idx] = i
			case ProtocolMethod:
				rewrite(&i.Addr)
				b.Instr[idx] = i
			case InjectEnumAddr:
				rewrite(&i.Addr)
				b.Instr[idx] = i
			case StrongRelease:
				rewrite(&i.Value)
				b.Instr[idx] = i
			case DeallocStack:
				rewrite(&i.Addr)
				b.Instr[idx] = i
			case MarkFunctionEscape:
				rewrite(&i.Addr)
				b.Instr[idx] = i
			case TupleExtract:
				rewrite(&i.Val)
				b.Instr[idx] = i
			case StructExtract:
				rewrite(&i.Val)
				b.Instr[idx] = i
			case TupleConstruct:
				for j := range i.Elements {
					rewrite(&i.Elements[j])
				}
				b.Instr[idx] = i
			case StructConstruct:
				for j := range i.Elements {
					rewrite(&i.Elements[j])
				}
				b.Instr[idx] = i
			case DestroyValue:
				rewrite(&i.Value)
				b.Instr[idx] = i
			}
		}
	}
}
