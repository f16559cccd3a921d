package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CostState is an ingredient's stock position as seen by the weighted
// average cost calculator: how much is on hand and at what running unit cost.
type CostState struct {
	Stock decimal.Decimal
	WAC   decimal.Decimal
}

// ApplyReceipt folds a completed purchase line into a cost state:
//
//	newStock = stock + qty
//	newWAC   = (stock × wac + qty × unitPrice) / newStock
//
// The bootstrap case (no prior stock) sets WAC directly to the purchase price
// instead of weighting against a stale or zero cost. A receipt with a zero
// unit price increases stock but leaves the WAC untouched — diluting the cost
// basis with free stock would silently corrupt margins.
//
// Pure function: no I/O, same inputs always produce the same outputs.
func ApplyReceipt(cur CostState, qty, unitPrice decimal.Decimal) (CostState, error) {
	if qty.IsNegative() || qty.IsZero() {
		return CostState{}, fmt.Errorf("%w: receipt quantity must be positive, got %s", ErrInvalidCostState, qty)
	}
	if unitPrice.IsNegative() {
		return CostState{}, fmt.Errorf("%w: unit price cannot be negative, got %s", ErrInvalidCostState, unitPrice)
	}
	if cur.Stock.IsNegative() || cur.WAC.IsNegative() {
		return CostState{}, fmt.Errorf("%w: stored state is corrupt (stock=%s, wac=%s)", ErrInvalidCostState, cur.Stock, cur.WAC)
	}

	newStock := cur.Stock.Add(qty)

	var newWAC decimal.Decimal
	switch {
	case cur.Stock.IsZero():
		// Bootstrap: first-ever stock for this ingredient.
		newWAC = unitPrice
	case unitPrice.IsZero():
		newWAC = cur.WAC
	default:
		newWAC = cur.Stock.Mul(cur.WAC).Add(qty.Mul(unitPrice)).Div(newStock)
	}

	if newWAC.IsNegative() {
		return CostState{}, fmt.Errorf("%w: receipt produced negative WAC %s", ErrInvalidCostState, newWAC)
	}
	return CostState{Stock: newStock, WAC: newWAC}, nil
}

// RevertReceipt exactly undoes a previously applied purchase line: it removes
// the original quantity and that line's original value contribution, rather
// than running a generic negative-price recompute.
//
// A reversal that would drive stock negative is rejected with
// ErrInsufficientStockOnReversal — the ledger is inconsistent and clamping
// would silently lose history. When stock reaches exactly zero the cost basis
// resets to zero; the next purchase re-bootstraps it.
func RevertReceipt(cur CostState, appliedQty, appliedUnitPrice decimal.Decimal) (CostState, error) {
	if appliedQty.IsNegative() || appliedQty.IsZero() {
		return CostState{}, fmt.Errorf("%w: reversal quantity must be positive, got %s", ErrInvalidCostState, appliedQty)
	}
	if appliedUnitPrice.IsNegative() {
		return CostState{}, fmt.Errorf("%w: unit price cannot be negative, got %s", ErrInvalidCostState, appliedUnitPrice)
	}
	if cur.Stock.IsNegative() || cur.WAC.IsNegative() {
		return CostState{}, fmt.Errorf("%w: stored state is corrupt (stock=%s, wac=%s)", ErrInvalidCostState, cur.Stock, cur.WAC)
	}

	newStock := cur.Stock.Sub(appliedQty)
	if newStock.IsNegative() {
		return CostState{}, fmt.Errorf("%w: stock %s cannot absorb reversal of %s",
			ErrInsufficientStockOnReversal, cur.Stock, appliedQty)
	}

	if newStock.IsZero() {
		return CostState{Stock: decimal.Zero, WAC: decimal.Zero}, nil
	}

	// A zero-price line never changed the WAC when it was applied; removing
	// the free stock must not change it either.
	if appliedUnitPrice.IsZero() {
		return CostState{Stock: newStock, WAC: cur.WAC}, nil
	}

	remainingValue := cur.Stock.Mul(cur.WAC).Sub(appliedQty.Mul(appliedUnitPrice))
	if remainingValue.IsNegative() {
		// Rounding residue from an earlier inexact division; the value basis
		// cannot go below zero.
		remainingValue = decimal.Zero
	}
	return CostState{Stock: newStock, WAC: remainingValue.Div(newStock)}, nil
}
