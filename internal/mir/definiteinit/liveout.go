package definiteinit

import "github.com/orizon-lang/definit/internal/mir"

// liveOutState is the tri-state marker attached to a block's availability
// for one sub-element under analysis.
type liveOutState int

const (
	stateUnknown liveOutState = iota
	stateComputing
	stateLiveOut
	stateNotLiveOut
)

// blockStates tracks liveOutState per block, for one ElementPromotion run.
type blockStates struct {
	cfg   *mir.CFG
	state map[*mir.BasicBlock]liveOutState
}

func newBlockStates(cfg *mir.CFG) *blockStates {
	return &blockStates{cfg: cfg, state: make(map[*mir.BasicBlock]liveOutState)}
}

// markInitialized seeds the table before Phase 1: every block holding a
// non-load use of this sub-element always produces a local definition, so it
// starts LiveOut; the allocation's own block starts NotLiveOut unless it is
// also one of those non-load-use blocks.
func (bs *blockStates) markInitialized(allocBlock *mir.BasicBlock, nonLoadBlocks map[*mir.BasicBlock]bool) {
	for b := range nonLoadBlocks {
		bs.state[b] = stateLiveOut
	}
	if _, ok := bs.state[allocBlock]; !ok {
		bs.state[allocBlock] = stateNotLiveOut
	}
}

// isLiveOut answers whether b's sub-element is live (definitely stored to)
// on every path leaving b, per spec's cyclic tri-state computation: a block
// still being computed is optimistically assumed live-out, breaking cycles
// through loop headers without a separate dominance pass.
func (bs *blockStates) isLiveOut(b *mir.BasicBlock) bool {
	switch bs.state[b] {
	case stateLiveOut:
		return true
	case stateNotLiveOut:
		return false
	case stateComputing:
		return true
	}
	bs.state[b] = stateComputing
	for _, pred := range bs.cfg.Preds(b.Name) {
		if !bs.isLiveOut(pred) {
			bs.state[b] = stateNotLiveOut
			return false
		}
	}
	bs.state[b] = stateLiveOut
	return true
}
