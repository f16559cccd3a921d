package app

import "github.com/monifinebakery/BISMILLAH-sub018/internal/core"

// PurchaseResult is returned by purchase lifecycle operations.
type PurchaseResult struct {
	Purchase *core.Purchase
}

// PurchaseListResult is returned by ListPurchases.
type PurchaseListResult struct {
	Purchases []core.Purchase
}

// IngredientResult is returned by ingredient operations.
type IngredientResult struct {
	Ingredient *core.Ingredient
}

// IngredientListResult is returned by ListIngredients and ListLowStock.
type IngredientListResult struct {
	Ingredients []core.Ingredient
}

// MovementListResult is returned by GetMovements.
type MovementListResult struct {
	IngredientID string
	Movements    []core.StockMovement
}

// FulfillmentResult is returned by FulfillOrder.
type FulfillmentResult struct {
	OrderRef string
	Results  []core.DeductionResult
}

// SupplierResult is returned by supplier operations.
type SupplierResult struct {
	Supplier *core.Supplier
}

// SupplierListResult is returned by ListSuppliers.
type SupplierListResult struct {
	Suppliers []core.Supplier
}
