package definiteinit

import (
	"github.com/orizon-lang/definit/internal/mir"
	"github.com/orizon-lang/definit/internal/position"
)

// DIStatus is the result of checking one use against definite initialization.
type DIStatus int

const (
	DIYes DIStatus = iota
	DINo
	// DIPartial is kept as a named status, but checkDI never returns it.
	DIPartial
)

// ElementPromotion runs Phase 1 (classification & diagnostics) and, if no
// error was emitted, Phase 2 (load promotion) over one sub-element's use
// list. One instance is built and discarded per (allocation, sub-element).
type ElementPromotion struct {
	f   *mir.Function
	cfg *mir.CFG
	uc  *mir.UseChains
	gen *refGen
	tl  TypeLowering

	sink   DiagnosticSink
	locate func(mir.InstrLoc) position.Span

	allocLoc   mir.InstrLoc
	allocBlock *mir.BasicBlock
	allocName  string
	allocType  mir.Type
	isWeak     bool

	index int
	uses  *ElementUses

	bs            *blockStates
	nonLoadBlocks map[*mir.BasicBlock]bool

	errored bool
}

func newElementPromotion(
	f *mir.Function, cfg *mir.CFG, uc *mir.UseChains, gen *refGen, tl TypeLowering,
	sink DiagnosticSink, locate func(mir.InstrLoc) position.Span,
	allocLoc mir.InstrLoc, allocName string, allocType mir.Type,
	index int, uses *ElementUses,
) *ElementPromotion {
	ep := &ElementPromotion{
		f: f, cfg: cfg, uc: uc, gen: gen, tl: tl,
		sink: sink, locate: locate,
		allocLoc: allocLoc, allocBlock: allocLoc.Block,
		allocName: allocName, allocType: allocType, isWeak: mir.IsWeak(allocType),
		index: index, uses: uses,
	}
	ep.nonLoadBlocks = make(map[*mir.BasicBlock]bool)
	for _, u := range uses.items {
		if u.Loc.Instr != nil && u.Kind != UseLoad {
			ep.nonLoadBlocks[u.Loc.Block] = true
		}
	}
	ep.bs = newBlockStates(cfg)
	ep.bs.markInitialized(ep.allocBlock, ep.nonLoadBlocks)
	return ep
}

func (ep *ElementPromotion) elementName() string {
	return elementName(ep.allocName, ep.allocType, ep.index)
}

func (ep *ElementPromotion) diagnose(kind MessageKind, at mir.InstrLoc) {
	if ep.errored {
		return
	}
	ep.errored = true
	var atSpan, defSpan position.Span
	if ep.locate != nil {
		atSpan = ep.locate(at)
		defSpan = ep.locate(ep.allocLoc)
	}
	ep.sink.Diagnose(kind, ep.elementName(), atSpan, defSpan)
}

// blockHasNonLoadUse reports whether the backward scan in checkDI has
// anything to find in b: either a real non-load use of this element, or (for
// the allocation's own block) the allocation sentinel.
func (ep *ElementPromotion) blockHasNonLoadUse(b *mir.BasicBlock) bool {
	return ep.nonLoadBlocks[b] || b == ep.allocBlock
}

// nearestNonLoadBefore scans ep.uses.items live for the non-load-use entry in
// block b closest to, but before, index beforeIdx. It also considers the
// allocation sentinel, pinned at a virtual index of -1 in the allocation's
// own block — the decisive candidate when no real non-load use lies between
// the block's start and beforeIdx. ok is false when b has no non-load use at
// all before beforeIdx, signalling the checkDI fallthrough.
func (ep *ElementPromotion) nearestNonLoadBefore(b *mir.BasicBlock, beforeIdx int) (isAlloc bool, ok bool) {
	best := -2
	bestIsAlloc := false
	if b == ep.allocBlock && beforeIdx > -1 {
		best = -1
		bestIsAlloc = true
	}
	for _, u := range ep.uses.items {
		if u.Loc.Instr == nil || u.Kind == UseLoad {
			continue
		}
		if u.Loc.Block != b || u.Loc.Index >= beforeIdx {
			continue
		}
		if u.Loc.Index > best {
			best = u.Loc.Index
			bestIsAlloc = false
		}
	}
	if best == -2 {
		return false, false
	}
	return bestIsAlloc, true
}

// checkDI implements §4.5.1: a backward scan within the use's own block, with
// the same predecessor-liveness fallthrough whether that block has no
// non-load use at all, or has one but the scan runs off the block's start
// without finding it (every non-load use in the block turns out to lie after
// the query point in program order).
func (ep *ElementPromotion) checkDI(useLoc mir.InstrLoc) DIStatus {
	block := useLoc.Block
	if ep.blockHasNonLoadUse(block) {
		if isAlloc, ok := ep.nearestNonLoadBefore(block, useLoc.Index); ok {
			if isAlloc {
				return DINo
			}
			return DIYes
		}
	}
	for _, pred := range ep.cfg.Preds(block.Name) {
		if !ep.bs.isLiveOut(pred) {
			return DINo
		}
	}
	return DIYes
}

// runPhase1 classifies every use in program order (re-reading ep.uses.items'
// length each step, skipping tombstones) per §4.5, diagnosing at most once.
func (ep *ElementPromotion) runPhase1() {
	for i := 0; i < len(ep.uses.items); i++ {
		u := ep.uses.items[i]
		if u.Loc.Instr == nil {
			continue
		}
		switch u.Kind {
		case UseLoad:
			ep.classifyLoad(u.Loc)
		case UseStore:
			ep.classifyStore(i, u.Loc, false)
		case UsePartialStore:
			ep.classifyStore(i, u.Loc, true)
		case UseInOutUse:
			if ep.checkDI(u.Loc) != DIYes {
				ep.diagnose(MsgInoutBeforeInitialized, u.Loc)
			}
		case UseEscape:
			if ep.checkDI(u.Loc) != DIYes {
				if _, ok := u.Loc.Instr.(mir.MarkFunctionEscape); ok {
					ep.diagnose(MsgGlobalFunctionUseUninit, u.Loc)
				} else {
					ep.diagnose(MsgEscapeBeforeInitialized, u.Loc)
				}
			}
		case UseRelease:
			if ep.checkDI(u.Loc) != DIYes {
				ep.diagnose(MsgDestroyedBeforeInitialized, u.Loc)
			}
		}
		if ep.errored {
			return
		}
	}
}

func (ep *ElementPromotion) classifyLoad(loc mir.InstrLoc) {
	if ep.checkDI(loc) != DIYes {
		ep.diagnose(MsgUsedBeforeInitialized, loc)
	}
}

// classifyStore applies the §4.5 skip filter, then the DI-gated diagnosis
// and isInitOfDest / Assign-lowering handling common to Store and
// PartialStore uses.
func (ep *ElementPromotion) classifyStore(i int, loc mir.InstrLoc, partial bool) {
	switch instr := loc.Instr.(type) {
	case mir.CopyAddr:
		if instr.IsInitOfDest {
			return
		}
	case mir.StoreWeak:
		if instr.IsInitOfDest {
			return
		}
	case mir.InitExistential, mir.UpcastExistential, mir.EnumDataAddr, mir.InjectEnumAddr:
		return
	case mir.Store, mir.InitializeVar, mir.Call:
		if !partial {
			return
		}
	}

	status := ep.checkDI(loc)
	if partial {
		if status != DIYes {
			ep.diagnose(MsgStructNotFullyInitialized, loc)
			return
		}
	} else if status == DIPartial {
		ep.diagnose(MsgInitializedOnSomePaths, loc)
		return
	}

	switch instr := loc.Instr.(type) {
	case mir.CopyAddr:
		instr.IsInitOfDest = status == DINo
		loc.Block.Instr[loc.Index] = instr
	case mir.StoreWeak:
		instr.IsInitOfDest = status == DINo
		loc.Block.Instr[loc.Index] = instr
	case mir.Assign:
		ep.uses.tombstone(i)
		ep.lowerAssignUse(loc, instr, status == DINo)
	}
}

// lowerAssignUse runs §4.3 assign lowering and registers every inserted
// Store as a new Store use and every inserted Load as a new Load use,
// appended to this element's own use list so Phase 1's growing iteration
// picks them up.
func (ep *ElementPromotion) lowerAssignUse(loc mir.InstrLoc, assign mir.Assign, isInit bool) {
	locs := lowerAssign(ep.f, ep.tl, ep.gen, loc.Block, loc.Index, assign, ep.elemType(), isInit)
	ep.uses.shiftBlock(loc.Block, loc.Index+1, len(locs)-1)
	for _, l := range locs {
		switch l.Instr.(type) {
		case mir.Store:
			ep.uses.addUse(l, UseStore)
		case mir.Load:
			ep.uses.addUse(l, UseLoad)
		}
	}
}

// elemType reports this element's own type for Assign lowering's triviality
// check. An element is a tuple-flattened position (see tupleElementCount), so
// this can be a whole struct/enum/weak type, not necessarily a primitive.
func (ep *ElementPromotion) elemType() mir.Type {
	return tupleElementType(ep.allocType, ep.index)
}

// runPhase2 attempts load promotion for every surviving Load use, per
// §4.5.3. Skipped entirely when Phase 1 emitted a diagnostic for this
// element.
func (ep *ElementPromotion) runPhase2() {
	if ep.errored || ep.isWeak {
		return
	}
	if ep.hasEscape() {
		return
	}
	for i := 0; i < len(ep.uses.items); i++ {
		u := ep.uses.items[i]
		if u.Loc.Instr == nil || u.Kind != UseLoad {
			continue
		}
		load, ok := u.Loc.Instr.(mir.Load)
		if !ok {
			continue
		}
		ep.tryPromote(u.Loc, load)
	}
}

func (ep *ElementPromotion) hasEscape() bool {
	for _, u := range ep.uses.items {
		if u.Loc.Instr != nil && u.Kind == UseEscape {
			return true
		}
	}
	return false
}

func (ep *ElementPromotion) tryPromote(loc mir.InstrLoc, load mir.Load) {
	allocRef, ok := ep.resolveAllocRef()
	if !ok {
		return
	}
	firstSubElt, found := resolve(ep.uc, load.Addr, allocRef)
	if !found {
		return
	}
	span := subElementCount(load.Type)
	if span == 0 {
		return
	}
	n := subElementCount(ep.allocType)
	required := newBitset(n)
	for i := firstSubElt; i < firstSubElt+span; i++ {
		required.set(i)
	}
	available := make([]availableValue, n)

	if !ep.computeAvailableValues(loc, required, available) {
		return
	}
	result, instrs := aggregateAvailableValues(ep.gen, load.Type, firstSubElt, available)
	if len(instrs) > 0 {
		ep.uses.insertAt(loc.Block, loc.Index, instrs...)
		// insertAt shifted loc itself along with everything else at/after
		// loc.Index; the load we're replacing now sits len(instrs) later.
		loc = mir.InstrLoc{Block: loc.Block, Index: loc.Index + len(instrs), Instr: loc.Instr}
	}
	promoteLoad(ep.f, ep.uc, loc, load, result)
}

// resolveAllocRef recovers the allocation's own address ref from its
// defining instruction, for resolve() to walk projections back to.
func (ep *ElementPromotion) resolveAllocRef() (string, bool) {
	switch i := ep.allocLoc.Instr.(type) {
	case mir.AllocBox:
		return i.AddrDst, true
	case mir.AllocStack:
		return i.AddrDst, true
	case mir.MarkUninitialized:
		return i.Dst, true
	default:
		return "", false
	}
}

// availableValue records the source aggregate a sub-element's value can be
// extracted from, that aggregate's own type, and the sub-element's offset
// within it — enough to navigate a TupleExtract/StructExtract chain down to
// the exact leaf when the source covers more than this one sub-element.
type availableValue struct {
	ok         bool
	source     mir.Value
	sourceType mir.Type
	offset     int
}

// computeAvailableValues implements §4.5.3 step 5: a purely intra-block
// backward scan from the load, recording a Store/Assign's operand as the
// source for every required bit it covers, and bailing to failure on any
// other non-load use reached first (or on running out of block).
func (ep *ElementPromotion) computeAvailableValues(loadLoc mir.InstrLoc, required *bitset, available []availableValue) bool {
	if required.empty() {
		return true
	}
	block := loadLoc.Block
	if !ep.blockHasNonLoadUse(block) {
		return false
	}
	var inBlock []mir.InstrLoc
	for _, u := range ep.uses.items {
		if u.Loc.Instr == nil || u.Kind == UseLoad {
			continue
		}
		if u.Loc.Block != block || u.Loc.Index >= loadLoc.Index {
			continue
		}
		inBlock = append(inBlock, u.Loc)
	}
	// Closest to the load first: a plain insertion sort on the small,
	// per-block candidate list is enough.
	for i := 1; i < len(inBlock); i++ {
		for j := i; j > 0 && inBlock[j-1].Index < inBlock[j].Index; j-- {
			inBlock[j-1], inBlock[j] = inBlock[j], inBlock[j-1]
		}
	}

	for _, loc := range inBlock {
		var addr, val mir.Value
		switch instr := loc.Instr.(type) {
		case mir.Store:
			addr, val = instr.Addr, instr.Val
		case mir.Assign:
			addr, val = instr.Addr, instr.Val
		default:
			required.clear()
			return false
		}
		allocRef, ok := ep.resolveAllocRef()
		if !ok {
			required.clear()
			return false
		}
		start, ok := resolve(ep.uc, addr, allocRef)
		if !ok {
			required.clear()
			return false
		}
		storeType, ok := addrPointeeType(ep.uc, addr)
		if !ok {
			required.clear()
			return false
		}
		span := subElementCount(storeType)
		for i := 0; i < span; i++ {
			bit := start + i
			if !required.has(bit) {
				continue
			}
			available[bit] = availableValue{ok: true, source: val, sourceType: storeType, offset: i}
			required.clear1(bit)
		}
		if required.empty() {
			return true
		}
	}
	return required.empty()
}
