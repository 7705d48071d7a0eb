package definiteinit

import (
	"fmt"

	"github.com/pkg/errors"
)

// internalError is an invariant violation inside the pass itself: an
// unreachable pattern-match arm, an access path that terminates on a
// non-projection, an out-of-range sub-element index. It is never a
// diagnosis about the analyzed program — see DiagnosticSink for that.
type internalError struct{ err error }

func (e internalError) Error() string { return e.err.Error() }

// assertf panics with a wrapped, stack-traced error when cond is false.
// Run recovers panics of this shape at its function-level boundary.
func assertf(cond bool, format string, args ...any) {
	if cond {
		return
	}
	panic(internalError{errors.Wrap(fmt.Errorf(format, args...), "definiteinit: invariant violated")})
}
