package core

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the purchase/warehouse sync engine. Callers are expected
// to classify failures with errors.Is rather than string matching.
var (
	// ErrNotFound covers missing purchases, ingredients, and suppliers.
	ErrNotFound = errors.New("not found")

	// ErrInvalidCostState means the WAC calculator produced a negative or
	// otherwise impossible stock/cost result. It is never silently clamped.
	ErrInvalidCostState = errors.New("invalid cost state")

	// ErrInsufficientStockOnReversal means reverting a purchase would drive an
	// ingredient's stock negative. The reversal is rejected, not clamped.
	ErrInsufficientStockOnReversal = errors.New("insufficient stock on reversal")

	// ErrConcurrentModification means a transition lost a race against another
	// writer and bounded retries were exhausted.
	ErrConcurrentModification = errors.New("concurrent modification")

	// ErrTerminalStatus means the purchase is cancelled and accepts no
	// further transitions.
	ErrTerminalStatus = errors.New("purchase status is terminal")

	// ErrInvalidTransition means the requested status change is not part of
	// the purchase state machine.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// PartialSyncError reports a status transition that failed on one ingredient
// after others had already been written inside the same transaction. The
// transaction is rolled back, so the warehouse is left untouched and the
// caller may safely retry; the detail exists so operators can see exactly
// which line item blocked the transition.
type PartialSyncError struct {
	PurchaseID       string
	FailedIngredient string
	Applied          []string // ingredient IDs updated before the failure (all rolled back)
	Err              error
}

func (e *PartialSyncError) Error() string {
	applied := "none"
	if len(e.Applied) > 0 {
		applied = strings.Join(e.Applied, ", ")
	}
	return fmt.Sprintf("purchase %s: sync failed on ingredient %s (rolled back; previously applied in tx: %s): %v",
		e.PurchaseID, e.FailedIngredient, applied, e.Err)
}

func (e *PartialSyncError) Unwrap() error { return e.Err }
