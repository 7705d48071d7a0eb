package definiteinit

import (
	"testing"

	"github.com/orizon-lang/definit/internal/mir"
)

func block(name string) *mir.BasicBlock { return &mir.BasicBlock{Name: name} }

func TestIsLiveOutLinear(t *testing.T) {
	entry, store, use := block("entry"), block("store"), block("use")
	entry.Instr = []mir.Instr{mir.Br{Target: "store"}}
	store.Instr = []mir.Instr{mir.Br{Target: "use"}}
	use.Instr = []mir.Instr{mir.Ret{}}
	f := &mir.Function{Name: "f", Blocks: []*mir.BasicBlock{entry, store, use}}
	cfg := mir.BuildCFG(f)

	bs := newBlockStates(cfg)
	bs.markInitialized(entry, map[*mir.BasicBlock]bool{store: true})

	if !bs.isLiveOut(store) {
		t.Errorf("a block holding the store itself must be live-out")
	}
	if !bs.isLiveOut(use) {
		t.Errorf("use's only predecessor (store) is live-out, so use must be too")
	}
}

func TestIsLiveOutMergeRequiresAllPredecessors(t *testing.T) {
	entry, left, right, join := block("entry"), block("left"), block("right"), block("join")
	entry.Instr = []mir.Instr{mir.CondBr{True: "left", False: "right"}}
	left.Instr = []mir.Instr{mir.Br{Target: "join"}} // stores
	right.Instr = []mir.Instr{mir.Br{Target: "join"}} // does not store
	join.Instr = []mir.Instr{mir.Ret{}}
	f := &mir.Function{Name: "f", Blocks: []*mir.BasicBlock{entry, left, right, join}}
	cfg := mir.BuildCFG(f)

	bs := newBlockStates(cfg)
	bs.markInitialized(entry, map[*mir.BasicBlock]bool{left: true})

	if bs.isLiveOut(join) {
		t.Errorf("join must not be live-out: right reaches it with no store")
	}
}

func TestIsLiveOutMergeAllPredecessorsStore(t *testing.T) {
	entry, left, right, join := block("entry"), block("left"), block("right"), block("join")
	entry.Instr = []mir.Instr{mir.CondBr{True: "left", False: "right"}}
	left.Instr = []mir.Instr{mir.Br{Target: "join"}}
	right.Instr = []mir.Instr{mir.Br{Target: "join"}}
	join.Instr = []mir.Instr{mir.Ret{}}
	f := &mir.Function{Name: "f", Blocks: []*mir.BasicBlock{entry, left, right, join}}
	cfg := mir.BuildCFG(f)

	bs := newBlockStates(cfg)
	bs.markInitialized(entry, map[*mir.BasicBlock]bool{left: true, right: true})

	if !bs.isLiveOut(join) {
		t.Errorf("join should be live-out: every predecessor stores")
	}
}

// A loop header's back edge must not cause infinite recursion; the
// optimistic stateComputing marker breaks the cycle.
func TestIsLiveOutLoopDoesNotRecurseForever(t *testing.T) {
	entry, header, body, exit := block("entry"), block("header"), block("body"), block("exit")
	entry.Instr = []mir.Instr{mir.Br{Target: "header"}}
	header.Instr = []mir.Instr{mir.CondBr{True: "body", False: "exit"}}
	body.Instr = []mir.Instr{mir.Br{Target: "header"}} // back edge
	exit.Instr = []mir.Instr{mir.Ret{}}
	f := &mir.Function{Name: "f", Blocks: []*mir.BasicBlock{entry, header, body, exit}}
	cfg := mir.BuildCFG(f)

	bs := newBlockStates(cfg)
	bs.markInitialized(entry, map[*mir.BasicBlock]bool{entry: true})

	if !bs.isLiveOut(exit) {
		t.Errorf("entry stores, so every path including through the loop is live-out")
	}
}
