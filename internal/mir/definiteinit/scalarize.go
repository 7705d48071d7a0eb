package definiteinit

import "github.com/orizon-lang/definit/internal/mir"

// scalarizeTupleLoad replaces a Load of a tuple-typed address with one
// TupleElementAddr + Load per field and a TupleConstruct recombining them,
// spliced in place of the original load. It returns the reconstructed value
// (already wired to every existing use of load.Dst) and the per-field
// element addresses, for the use collector to recurse into.
func scalarizeTupleLoad(f *mir.Function, gen *refGen, block *mir.BasicBlock, idx int, load mir.Load, tt mir.TupleType) (mir.Value, []mir.Value) {
	fieldAddrs := make([]mir.Value, len(tt.Elements))
	fieldVals := make([]mir.Value, len(tt.Elements))
	var fresh []mir.Instr
	for i, elemTy := range tt.Elements {
		addrVal := gen.value()
		fresh = append(fresh, mir.TupleElementAddr{Dst: addrVal.Ref, Addr: load.Addr, Tuple: &tt, Field: i})
		fieldAddrs[i] = addrVal

		loadVal := gen.value()
		fresh = append(fresh, mir.Load{Dst: loadVal.Ref, Addr: addrVal, Type: elemTy})
		fieldVals[i] = loadVal
	}
	result := gen.value()
	fresh = append(fresh, mir.TupleConstruct{Dst: result.Ref, Elements: fieldVals})

	mir.EraseInstr(block, idx)
	mir.InsertInstrs(block, idx, fresh...)
	mir.ReplaceAllUses(f, load.Dst, result)

	return result, fieldAddrs
}

// promoteLoad replaces every use of a promoted load's result with the
// forwarded value, erases the load itself, and cleans up any address
// projection chain left with no remaining user.
func promoteLoad(f *mir.Function, uc *mir.UseChains, loc mir.InstrLoc, load mir.Load, forwarded mir.Value) {
	mir.ReplaceAllUses(f, load.Dst, forwarded)
	mir.EraseInstr(loc.Block, loc.Index)
	cleanupDeadProjections(uc, load.Addr, loc)
}

// scalarizeAggregateStore replaces a Store/Assign of an aggregate value into
// a tuple-typed destination address with one element-address projection and
// one store per field. When val is itself the result of a TupleConstruct,
// its operands are forwarded directly instead of re-extracting them.
//
// newStore build the per-field store instruction (Store or Assign, matching
// the original use's kind). It returns the new instructions' locations, for
// the caller to register as fresh uses.
func scalarizeAggregateStore(f *mir.Function, uc *mir.UseChains, gen *refGen, block *mir.BasicBlock, idx int, addr, val mir.Value, tt mir.TupleType, newStore func(fieldAddr, fieldVal mir.Value) mir.Instr) []mir.InstrLoc {
	fieldVals := constructorOperands(uc, val, len(tt.Elements))

	var fresh []mir.Instr
	for i, elemTy := range tt.Elements {
		addrVal := gen.value()
		fresh = append(fresh, mir.TupleElementAddr{Dst: addrVal.Ref, Addr: addr, Tuple: &tt, Field: i})

		fv := fieldVals[i]
		if fv.Kind == mir.ValInvalid {
			extractVal := gen.value()
			fresh = append(fresh, mir.TupleExtract{Dst: extractVal.Ref, Val: val, Field: i})
			fv = extractVal
		}
		_ = elemTy
		fresh = append(fresh, newStore(addrVal, fv))
	}

	mir.EraseInstr(block, idx)
	mir.InsertInstrs(block, idx, fresh...)

	locs := make([]mir.InstrLoc, len(fresh))
	for i, instr := range fresh {
		locs[i] = mir.InstrLoc{Block: block, Index: idx + i, Instr: instr}
	}
	return locs
}

// constructorOperands returns val's n element values directly when val is
// the result of a TupleConstruct with exactly n elements, avoiding a
// redundant extract/construct round trip; otherwise every slot is the
// zero Value (ValInvalid), signalling the caller to emit a TupleExtract.
func constructorOperands(uc *mir.UseChains, val mir.Value, n int) []mir.Value {
	out := make([]mir.Value, n)
	if val.Kind != mir.ValRef {
		return out
	}
	loc, ok := uc.Def(val.Ref)
	if !ok {
		return out
	}
	if tc, ok := loc.Instr.(mir.TupleConstruct); ok && len(tc.Elements) == n {
		copy(out, tc.Elements)
	}
	return out
}

// lowerAssign implements spec's Assign-lowering rule for a scalar (non-
// aggregate) destination: a pure Store when isInit or the type is trivial;
// otherwise a load of the previous occupant, the new store, and a destroy of
// what was loaded. Returns the replacement instructions' locations so the
// caller can register the new Store as a Store use and the new Load as a
// Load use.
func lowerAssign(f *mir.Function, tl TypeLowering, gen *refGen, block *mir.BasicBlock, idx int, assign mir.Assign, elemType mir.Type, isInit bool) []mir.InstrLoc {
	var fresh []mir.Instr
	if isInit || tl.IsTrivial(elemType) {
		fresh = append(fresh, mir.Store{Addr: assign.Addr, Val: assign.Val})
	} else {
		prev, loadInstrs := tl.EmitLoadOfCopy(assign.Addr, false, gen)
		fresh = append(fresh, loadInstrs...)
		fresh = append(fresh, tl.EmitStoreOfCopy(assign.Val, assign.Addr, false)...)
		fresh = append(fresh, tl.EmitDestroyValue(prev)...)
	}

	mir.EraseInstr(block, idx)
	mir.InsertInstrs(block, idx, fresh...)

	locs := make([]mir.InstrLoc, len(fresh))
	for i, instr := range fresh {
		locs[i] = mir.InstrLoc{Block: block, Index: idx + i, Instr: instr}
	}
	return locs
}

// cleanupDeadProjections walks upward from a just-erased instruction's
// address operand through TupleElementAddr/StructElementAddr projections,
// erasing each one left with no remaining user. uc is the (now slightly
// stale) use-chain snapshot built before removed was erased; consumed pins
// removed's own recorded position so it can be excluded from each ancestor's
// live-use count without re-scanning the IR. It stops at the first
// projection that still has another user, or at a non-projection (the
// allocation root, or an address this pass does not model).
func cleanupDeadProjections(uc *mir.UseChains, addr mir.Value, removed mir.InstrLoc) {
	consumed := removed
	for {
		if addr.Kind != mir.ValRef {
			return
		}
		if liveUseCount(uc, addr.Ref, consumed) > 0 {
			return
		}
		loc, ok := uc.Def(addr.Ref)
		if !ok {
			return
		}
		var parent mir.Value
		switch i := loc.Instr.(type) {
		case mir.TupleElementAddr:
			parent = i.Addr
		case mir.StructElementAddr:
			parent = i.Addr
		case mir.EnumDataAddr:
			parent = i.Addr
		default:
			return
		}
		mir.EraseInstr(loc.Block, loc.Index)
		consumed = loc
		addr = parent
	}
}

// liveUseCount counts ref's recorded uses, excluding the one occurrence at
// consumed's position (already erased from the IR, but still present in the
// stale uc snapshot).
func liveUseCount(uc *mir.UseChains, ref string, consumed mir.InstrLoc) int {
	n := 0
	for _, u := range uc.Uses(ref) {
		if u.Block == consumed.Block && u.Index == consumed.Index {
			continue
		}
		n++
	}
	return n
}
