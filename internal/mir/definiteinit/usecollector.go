package definiteinit

import "github.com/orizon-lang/definit/internal/mir"

// UseKind classifies one recorded reference to an allocation's sub-element.
type UseKind int

const (
	UseLoad UseKind = iota
	UseStore
	UsePartialStore
	UseInOutUse
	UseEscape
	UseRelease
)

func (k UseKind) String() string {
	switch k {
	case UseLoad:
		return "load"
	case UseStore:
		return "store"
	case UsePartialStore:
		return "partial-store"
	case UseInOutUse:
		return "inout"
	case UseEscape:
		return "escape"
	case UseRelease:
		return "release"
	default:
		return "unknown"
	}
}

// ElementUse is one reference to a sub-element, scoped to a single
// ElementPromotion run. Loc.Instr is nil for a tombstoned entry (superseded
// by assign lowering or scalarization); Phase 1/2 must skip those.
type ElementUse struct {
	Loc  mir.InstrLoc
	Kind UseKind
}

// ElementUses is the growing, index-addressed use list for one sub-element.
// Append during iteration via addUse; never snapshot-iterate it directly
// (spec's growing-during-iteration discipline).
type ElementUses struct {
	items []ElementUse
}

func (eu *ElementUses) addUse(loc mir.InstrLoc, kind UseKind) {
	eu.items = append(eu.items, ElementUse{Loc: loc, Kind: kind})
}

func (eu *ElementUses) tombstone(i int) {
	eu.items[i].Loc.Instr = nil
}

// shiftBlock adjusts every live (non-tombstoned) entry recorded in block at
// or after fromIndex by delta, after an insert or erase at fromIndex moved
// everything from there onward. Scoped to this one sub-element's use list;
// other sub-elements' lists are independent and need their own shift calls.
func (eu *ElementUses) shiftBlock(block *mir.BasicBlock, fromIndex, delta int) {
	for i := range eu.items {
		loc := &eu.items[i].Loc
		if loc.Instr != nil && loc.Block == block && loc.Index >= fromIndex {
			loc.Index += delta
		}
	}
}

// insertAt splices instrs into block at at, tracking this use list's
// bookkeeping so later entries in this block shift correctly, and returns
// the inserted instructions' fresh locations.
func (eu *ElementUses) insertAt(block *mir.BasicBlock, at int, instrs ...mir.Instr) []mir.InstrLoc {
	if len(instrs) == 0 {
		return nil
	}
	mir.InsertInstrs(block, at, instrs...)
	eu.shiftBlock(block, at, len(instrs))
	locs := make([]mir.InstrLoc, len(instrs))
	for i, instr := range instrs {
		locs[i] = mir.InstrLoc{Block: block, Index: at + i, Instr: instr}
	}
	return locs
}

// eraseAt removes the instruction at at in block, tracking this use list's
// bookkeeping so later entries in this block shift correctly.
func (eu *ElementUses) eraseAt(block *mir.BasicBlock, at int) {
	mir.EraseInstr(block, at)
	eu.shiftBlock(block, at+1, -1)
}

// collector walks the use chains of an allocation root, bucketing every
// reached reference into the per-element ElementUses arrays sized by
// tupleElementCount(allocType) — DI proof treats a struct as a single unit,
// so its fields all land in one bucket regardless of how many fields it has.
type collector struct {
	f        *mir.Function
	uc       *mir.UseChains
	gen      *refGen
	allocRef string
	allocTy  mir.Type
	buckets  []*ElementUses
}

func newCollector(f *mir.Function, uc *mir.UseChains, gen *refGen, allocRef string, allocTy mir.Type) *collector {
	n := tupleElementCount(allocTy)
	buckets := make([]*ElementUses, n)
	for i := range buckets {
		buckets[i] = &ElementUses{}
	}
	return &collector{f: f, uc: uc, gen: gen, allocRef: allocRef, allocTy: allocTy, buckets: buckets}
}

func (c *collector) bucket(i int) *ElementUses {
	assertf(i >= 0 && i < len(c.buckets), "collector: bucket index %d out of range [0,%d)", i, len(c.buckets))
	return c.buckets[i]
}

// collectAllUses walks every current use of addrRef (rooted at base, with
// the given type) and classifies it. base is the tuple-flattened element
// (bucket) index of addrRef within the allocation, as counted by
// tupleElementCount; ty is addrRef's pointee type.
func (c *collector) collectAllUses(addrRef string, base int, ty mir.Type, inStruct, inEnum bool) {
	for _, use := range c.uc.Uses(addrRef) {
		c.classify(addrRef, base, ty, inStruct, inEnum, use)
	}
}

func (c *collector) classify(addrRef string, base int, ty mir.Type, inStruct, inEnum bool, use mir.InstrLoc) {
	switch instr := use.Instr.(type) {
	case mir.TupleElementAddr:
		// Within a struct/enum sub-element, a nested tuple's fields don't get
		// their own positions: they're all uses of the enclosing element.
		if inStruct || inEnum {
			c.collectAllUses(instr.Dst, base, instr.Tuple.Elements[instr.Field], inStruct, inEnum)
			break
		}
		fieldBase := base
		for i := 0; i < instr.Field; i++ {
			fieldBase += tupleElementCount(instr.Tuple.Elements[i])
		}
		c.collectAllUses(instr.Dst, fieldBase, instr.Tuple.Elements[instr.Field], inStruct, inEnum)

	case mir.StructElementAddr:
		// A struct always occupies a single element bucket: base is not
		// adjusted per field, only the flag changes.
		c.collectAllUses(instr.Dst, base, instr.Struct.Fields[instr.Field].Type, true, inEnum)

	case mir.EnumDataAddr:
		c.collectAllUses(instr.Dst, base, instr.Enum.Payload, inStruct, true)

	case mir.Load:
		if tt, ok := instr.Type.(mir.TupleType); ok && len(tt.Elements) > 0 {
			result, fieldAddrs := scalarizeTupleLoad(c.f, c.gen, use.Block, use.Index, instr, tt)
			_ = result
			// Refresh the shared use chains in place so the fresh element
			// addresses (and their loads) can be walked and resolved.
			*c.uc = *mir.BuildUseChains(c.f)
			for i, fv := range fieldAddrs {
				fieldBase := base
				if !inStruct && !inEnum {
					fieldBase += tupleFieldOffset(tt, i)
				}
				c.collectAllUses(fv.Ref, fieldBase, tt.Elements[i], inStruct, inEnum)
			}
			break
		}
		c.bucket(base).addUse(use, UseLoad)

	case mir.LoadWeak:
		c.bucket(base).addUse(use, UseLoad)

	case mir.Store:
		if instr.Addr.Kind == mir.ValRef && instr.Addr.Ref == addrRef {
			c.recordStoreLike(base, ty, inStruct, use, instr.Addr)
		}

	case mir.Assign:
		if instr.Addr.Kind == mir.ValRef && instr.Addr.Ref == addrRef {
			c.recordStoreLike(base, ty, inStruct, use, instr.Addr)
		}

	case mir.StoreWeak:
		assertf(!inStruct && !inEnum, "StoreWeak on a struct/enum sub-element is forbidden")
		if instr.Addr.Kind == mir.ValRef && instr.Addr.Ref == addrRef {
			c.bucket(base).addUse(use, UseStore)
		}

	case mir.CopyAddr:
		n := tupleElementCount(ty)
		if instr.Src.Kind == mir.ValRef && instr.Src.Ref == addrRef {
			c.recordRange(base, n, inStruct, inEnum, use, UseLoad)
		}
		if instr.Dst.Kind == mir.ValRef && instr.Dst.Ref == addrRef {
			kind := UseStore
			if inStruct {
				kind = UsePartialStore
			}
			c.recordRange(base, n, inStruct, inEnum, use, kind)
		}

	case mir.InitializeVar:
		c.recordRange(base, tupleElementCount(ty), inStruct, inEnum, use, UseStore)

	case mir.Call:
		for i, arg := range instr.Args {
			if arg.Kind != mir.ValRef || arg.Ref != addrRef {
				continue
			}
			conv := mir.ConventionDirect
			if i < len(instr.Conventions) {
				conv = instr.Conventions[i]
			}
			switch conv {
			case mir.ConventionIndirectResult:
				c.recordRange(base, tupleElementCount(ty), inStruct, inEnum, use, UseStore)
			case mir.ConventionIndirectInOut:
				c.recordRange(base, tupleElementCount(ty), inStruct, inEnum, use, UseInOutUse)
			default:
				c.bucket(base).addUse(use, UseEscape)
			}
		}

	case mir.InitExistential:
		// Modeled as an initialization store into the whole container;
		// subsequent writes through the projected concrete-type address are
		// sub-element accesses, not independent initializations.
		c.bucket(base).addUse(use, UseStore)
		if instr.Dst != "" {
			c.collectAllUses(instr.Dst, base, instr.Type, true, inEnum)
		}

	case mir.InjectEnumAddr:
		c.bucket(base).addUse(use, UseStore)

	case mir.UpcastExistential:
		if instr.Src.Kind == mir.ValRef && instr.Src.Ref == addrRef {
			c.bucket(base).addUse(use, UseLoad)
		}
		if instr.Dst.Kind == mir.ValRef && instr.Dst.Ref == addrRef {
			c.bucket(base).addUse(use, UseStore)
		}

	case mir.ProjectExistential, mir.ProtocolMethod:
		// A use of the boxed protocol value, not of the container's storage
		// beyond requiring it be already initialized.
		c.bucket(base).addUse(use, UseLoad)

	case mir.MarkFunctionEscape:
		c.bucket(base).addUse(use, UseEscape)

	case mir.StrongRelease, mir.DeallocStack:
		// Handled separately via collectReferenceUses; a reference-result use
		// never also appears as an address-result use of the same allocation.

	default:
		c.bucket(base).addUse(use, UseEscape)
	}
}

func (c *collector) recordStoreLike(base int, ty mir.Type, inStruct bool, use mir.InstrLoc, addr mir.Value) {
	if tt, ok := ty.(mir.TupleType); ok && len(tt.Elements) > 0 {
		isAssign := false
		var val mir.Value
		switch i := use.Instr.(type) {
		case mir.Assign:
			val, isAssign = i.Val, true
		case mir.Store:
			val = i.Val
		}
		newStore := func(fieldAddr, fieldVal mir.Value) mir.Instr {
			if isAssign {
				return mir.Assign{Addr: fieldAddr, Val: fieldVal}
			}
			return mir.Store{Addr: fieldAddr, Val: fieldVal}
		}
		locs := scalarizeAggregateStore(c.f, c.uc, c.gen, use.Block, use.Index, addr, val, tt, newStore)
		// locs alternates TupleElementAddr, per-field Store/Assign, one pair per field.
		for i := range tt.Elements {
			fieldBase := base
			if !inStruct {
				fieldBase += tupleFieldOffset(tt, i)
			}
			fieldAddr := locs[2*i].Instr.(mir.TupleElementAddr)
			c.recordStoreLike(fieldBase, tt.Elements[i], inStruct, locs[2*i+1], mir.Value{Kind: mir.ValRef, Ref: fieldAddr.Dst})
		}
		return
	}
	kind := UseStore
	if inStruct {
		kind = UsePartialStore
	}
	c.bucket(base).addUse(use, kind)
}

// recordRange records kind on n consecutive buckets from base, or on just
// base when inStruct/inEnum is set: a struct or enum always occupies a
// single element bucket, so a use spanning "every sub-element" of something
// addressed from within one collapses to that one bucket.
func (c *collector) recordRange(base, n int, inStruct, inEnum bool, use mir.InstrLoc, kind UseKind) {
	if inStruct && kind == UseStore {
		kind = UsePartialStore
	}
	if inStruct || inEnum {
		n = 1
	}
	for i := 0; i < n; i++ {
		c.bucket(base + i).addUse(use, kind)
	}
}

// collectReferenceUses appends a Release use to every sub-element bucket for
// each StrongRelease/DeallocStack reached through the allocation's reference
// result (result 0 of a heap box, or the stack slot's pseudo-reference).
func (c *collector) collectReferenceUses(refResult string) {
	for _, use := range c.uc.Uses(refResult) {
		switch use.Instr.(type) {
		case mir.StrongRelease, mir.DeallocStack:
			for _, b := range c.buckets {
				b.addUse(use, UseRelease)
			}
		}
	}
}

// tupleFieldOffset sums tupleElementCount over tt's fields preceding field.
func tupleFieldOffset(tt mir.TupleType, field int) int {
	n := 0
	for i := 0; i < field; i++ {
		n += tupleElementCount(tt.Elements[i])
	}
	return n
}
