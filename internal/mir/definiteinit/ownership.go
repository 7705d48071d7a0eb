package definiteinit

import "github.com/orizon-lang/definit/internal/mir"

// ValidateOwnershipPostDI re-checks borrow and ownership rules after Run has
// lowered every Assign and promoted every safe load. Load promotion forwards
// stored values directly to their use sites, which can extend a value's
// effective lifetime past where the original load stood; running the borrow
// and ownership checkers again over the rewritten module catches a
// conflict that forwarding introduced.
func ValidateOwnershipPostDI(module *mir.Module) error {
	lm := mir.NewLifetimeManager()
	bc := mir.NewBorrowChecker(lm)
	if err := bc.ValidateBorrowRules(module); err != nil {
		return err
	}
	om := mir.NewOwnershipManager(bc)
	return om.ValidateOwnership(module)
}
