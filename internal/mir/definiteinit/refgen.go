package definiteinit

import (
	"fmt"
	"github.com/orizon-lang/definit/internal/mir"
)

// refGen mints fresh value-ref names for instructions synthesized during a
// single Run invocation. Scoped per run so names never collide with the
// input IR's own "%..." refs, regardless of what the producer named them.
type refGen struct{ n int }

func (g *refGen) next() string {
	g.n++
	return fmt.Sprintf("%%di.%d", g.n)
}

func (g *refGen) value() mir.Value {
	return mir.Value{Kind: mir.ValRef, Ref: g.next()}
}
