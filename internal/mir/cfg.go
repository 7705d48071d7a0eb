package mir

// CFG is the control-flow graph of a function, derived from its blocks'
// terminators (Br, CondBr). Blocks with no branch terminator (Ret, or a
// fallthrough into nothing) have no successors.
type CFG struct {
	fn     *Function
	blocks map[string]*BasicBlock
	order  []string
	succs  map[string][]string
	preds  map[string][]string
}

// BuildCFG computes the predecessor/successor adjacency of f from its
// blocks' terminating instructions. Block names are assumed unique within f.
func BuildCFG(f *Function) *CFG {
	c := &CFG{
		fn:     f,
		blocks: make(map[string]*BasicBlock, len(f.Blocks)),
		succs:  make(map[string][]string, len(f.Blocks)),
		preds:  make(map[string][]string, len(f.Blocks)),
	}
	for _, b := range f.Blocks {
		c.blocks[b.Name] = b
		c.order = append(c.order, b.Name)
	}
	for _, b := range f.Blocks {
		for _, succ := range terminatorTargets(b) {
			c.succs[b.Name] = append(c.succs[b.Name], succ)
			c.preds[succ] = append(c.preds[succ], b.Name)
		}
	}
	return c
}

func terminatorTargets(b *BasicBlock) []string {
	if len(b.Instr) == 0 {
		return nil
	}
	switch term := b.Instr[len(b.Instr)-1].(type) {
	case Br:
		return []string{term.Target}
	case CondBr:
		return []string{term.True, term.False}
	default:
		return nil
	}
}

// Block returns the named block, or nil if it doesn't exist.
func (c *CFG) Block(name string) *BasicBlock { return c.blocks[name] }

// Blocks returns the function's blocks in declaration order.
func (c *CFG) Blocks() []*BasicBlock {
	out := make([]*BasicBlock, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.blocks[name])
	}
	return out
}

// Preds returns the predecessor blocks of the named block, in the order
// their branches were discovered (function block order, then terminator
// operand order).
func (c *CFG) Preds(name string) []*BasicBlock {
	names := c.preds[name]
	out := make([]*BasicBlock, 0, len(names))
	for _, n := range names {
		out = append(out, c.blocks[n])
	}
	return out
}

// Succs returns the successor blocks of the named block.
func (c *CFG) Succs(name string) []*BasicBlock {
	names := c.succs[name]
	out := make([]*BasicBlock, 0, len(names))
	for _, n := range names {
		out = append(out, c.blocks[n])
	}
	return out
}
