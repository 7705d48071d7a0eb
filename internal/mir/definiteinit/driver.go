package definiteinit

import (
	"fmt"
	"io"

	"github.com/orizon-lang/definit/internal/errors"
	"github.com/orizon-lang/definit/internal/mir"
	"github.com/orizon-lang/definit/internal/position"
)

// Config carries the collaborators and flags Run needs beyond the module and
// diagnostic sink themselves.
type Config struct {
	// TypeLowering classifies types and emits copy/destroy sequences for
	// Assign lowering. A nil TypeLowering defaults to TrivialLowering,
	// suitable only for allocations of primitive, non-reference-counted type.
	TypeLowering TypeLowering
	// EnableCopyAddrForwarding, when true, dumps each analyzed function to
	// Dump after processing; it never changes the pass's output IR.
	EnableCopyAddrForwarding bool
	Dump                     io.Writer
	// Locate supplies source spans for diagnostics. A nil Locate reports
	// every diagnosis against the zero-value (unknown) span.
	Locate func(mir.InstrLoc) position.Span
	// ValidateOwnership, when true, runs ValidateOwnershipPostDI over the
	// module once every function has been analyzed and lowered.
	ValidateOwnership bool
}

// Run analyzes every function in module, in module order: for each
// allocation root it finds, it flattens and collects that allocation's uses,
// runs element promotion over every tuple-flattened element (see
// tupleElementCount; a struct is one element), and lowers or
// forwards accordingly. It returns a *errors.StandardError (category
// CategorySystem) if the pass's own invariants are violated; user-level
// findings go through sink instead and never abort the run.
func Run(module *mir.Module, cfg Config, sink DiagnosticSink) error {
	tl := cfg.TypeLowering
	if tl == nil {
		tl = TrivialLowering{}
	}
	for _, f := range module.Functions {
		if err := runFunction(f, tl, cfg, sink); err != nil {
			return err
		}
	}
	if cfg.ValidateOwnership {
		return ValidateOwnershipPostDI(module)
	}
	return nil
}

func runFunction(f *mir.Function, tl TypeLowering, cfg Config, sink DiagnosticSink) (err error) {
	defer func() {
		if r := recover(); r != nil {
			ie, ok := r.(internalError)
			if !ok {
				panic(r)
			}
			err = errors.NewStandardError(errors.CategorySystem, "DI_INVARIANT_VIOLATED", ie.Error(),
				map[string]interface{}{"function": f.Name})
		}
	}()

	gen := &refGen{}
	for _, ref := range collectAllocationRoots(f) {
		processRoot(f, ref, gen, tl, cfg, sink)
	}
	stripResidual(f)

	if cfg.EnableCopyAddrForwarding && cfg.Dump != nil {
		fmt.Fprint(cfg.Dump, f.String())
	}
	return nil
}

// collectAllocationRoots returns the address refs this pass is responsible
// for, in program order: every AllocBox/AllocStack address not itself wrapped
// by a MarkUninitialized elsewhere in the function (the wrapper becomes the
// real root in that case), plus every MarkUninitialized result.
func collectAllocationRoots(f *mir.Function) []string {
	wrapped := make(map[string]bool)
	allocNames := make(map[string]string)
	for _, b := range f.Blocks {
		for _, instr := range b.Instr {
			switch i := instr.(type) {
			case mir.AllocBox:
				allocNames[i.AddrDst] = i.Name
			case mir.AllocStack:
				allocNames[i.AddrDst] = i.Name
			}
			if mu, ok := instr.(mir.MarkUninitialized); ok && mu.Operand.Kind == mir.ValRef {
				wrapped[mu.Operand.Ref] = true
			}
		}
	}

	var roots []string
	for _, b := range f.Blocks {
		for idx, instr := range b.Instr {
			switch i := instr.(type) {
			case mir.AllocBox:
				if !wrapped[i.AddrDst] {
					roots = append(roots, i.AddrDst)
				}
			case mir.AllocStack:
				if !wrapped[i.AddrDst] {
					roots = append(roots, i.AddrDst)
				}
			case mir.MarkUninitialized:
				// Name isn't always set by whoever built the marker (there's
				// no front end in this module to populate it from source);
				// backfill it from the allocation it wraps so diagnostics
				// against this root still name the real variable.
				if i.Name == "" && i.Operand.Kind == mir.ValRef {
					if name, ok := allocNames[i.Operand.Ref]; ok && name != "" {
						i.Name = name
						b.Instr[idx] = i
					}
				}
				roots = append(roots, i.Dst)
			}
		}
	}
	return roots
}

// processRoot runs the full collect-classify-promote pipeline for one
// allocation root, identified by its stable address ref (not a position:
// earlier roots' promotion may have shifted every instruction after them in
// the same block, so this rebuilds use chains and re-resolves the root's
// current location before touching it).
func processRoot(f *mir.Function, addrRef string, gen *refGen, tl TypeLowering, cfg Config, sink DiagnosticSink) {
	uc := mir.BuildUseChains(f)
	loc, ok := uc.Def(addrRef)
	assertf(ok, "processRoot: allocation root %q has no recorded definition", addrRef)

	allocType, allocName, refResult := rootMeta(loc.Instr)
	if allocType == nil {
		return
	}

	// Dead-allocation fast path: a root whose address and reference result
	// (where one exists) are both never used is removed outright instead of
	// running element promotion over nothing.
	if len(uc.Uses(addrRef)) == 0 && (refResult == "" || len(uc.Uses(refResult)) == 0) {
		mir.EraseInstr(loc.Block, loc.Index)
		return
	}

	col := newCollector(f, uc, gen, addrRef, allocType)
	col.collectAllUses(addrRef, 0, allocType, false, false)
	if refResult != "" {
		col.collectReferenceUses(refResult)
	}

	cfg2 := mir.BuildCFG(f)
	n := tupleElementCount(allocType)
	for idx := 0; idx < n; idx++ {
		ep := newElementPromotion(f, cfg2, uc, gen, tl, sink, cfg.Locate, loc, allocName, allocType, idx, col.bucket(idx))
		ep.runPhase1()
		ep.runPhase2()
	}
}

func rootMeta(instr mir.Instr) (allocType mir.Type, allocName, refResult string) {
	switch i := instr.(type) {
	case mir.AllocBox:
		return i.ElemType, i.Name, i.RefDst
	case mir.AllocStack:
		return i.ElemType, i.Name, i.RefDst
	case mir.MarkUninitialized:
		return i.ElemType, i.Name, ""
	default:
		return nil, "", ""
	}
}

// stripResidual applies the outbound contract's remaining cleanup: every
// MarkUninitialized is transparent by the time analysis finishes, so its
// result is replaced by its wrapped operand and the marker is erased; every
// MarkFunctionEscape has done its job informing Phase 1 and is erased
// outright. Any Assign surviving to this point is a pass invariant
// violation — every reachable Assign is lowered during element promotion.
func stripResidual(f *mir.Function) {
	for _, b := range f.Blocks {
		for i := 0; i < len(b.Instr); i++ {
			switch instr := b.Instr[i].(type) {
			case mir.MarkUninitialized:
				mir.ReplaceAllUses(f, instr.Dst, instr.Operand)
				mir.EraseInstr(b, i)
				i--
			case mir.MarkFunctionEscape:
				mir.EraseInstr(b, i)
				i--
			case mir.Assign:
				assertf(false, "stripResidual: an Assign survived element promotion at %s", b.Name)
			}
		}
	}
}
