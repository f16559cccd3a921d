package core

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Ingredient is a warehouse master-data record: current stock quantity and
// the running weighted average cost per unit. It is created independently of
// any purchase and never deleted by the sync engine.
type Ingredient struct {
	ID                  string
	Name                string
	Category            string
	Unit                string
	CurrentStock        decimal.Decimal
	WeightedAverageCost decimal.Decimal
	LastUnitPrice       decimal.Decimal
	MinimumStock        decimal.Decimal
	SupplierNote        *string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// IngredientInput holds the master-data fields for creating or updating an
// ingredient. Stock and WAC are deliberately absent: only the sync engine
// and the fulfillment deduction may mutate those.
type IngredientInput struct {
	Name         string
	Category     string
	Unit         string
	MinimumStock decimal.Decimal
	SupplierNote string
}

// FulfillmentLine is one ingredient requirement of a completed order.
type FulfillmentLine struct {
	IngredientID string
	Quantity     decimal.Decimal
}

// DeductionResult reports how an order-fulfillment deduction landed for one
// ingredient. Deducted may be less than Requested when stock ran out — the
// deduction clamps at zero rather than failing the order.
type DeductionResult struct {
	IngredientID string
	Requested    decimal.Decimal
	Deducted     decimal.Decimal
	Remaining    decimal.Decimal
}

// WarehouseService owns ingredient master data and every stock mutation.
// Outside of this service nothing writes ingredient stock or WAC.
type WarehouseService interface {
	// Standalone operations (manage their own transactions).
	CreateIngredient(ctx context.Context, input IngredientInput) (*Ingredient, error)
	GetIngredient(ctx context.Context, id string) (*Ingredient, error)
	ListIngredients(ctx context.Context) ([]Ingredient, error)
	UpdateIngredient(ctx context.Context, id string, input IngredientInput) (*Ingredient, error)
	// LowStock returns ingredients at or below their minimum stock level.
	LowStock(ctx context.Context) ([]Ingredient, error)
	// Movements returns the audited stock history of one ingredient,
	// oldest first.
	Movements(ctx context.Context, ingredientID string) ([]StockMovement, error)

	// TX-scoped operations: used by the purchase orchestrator so warehouse
	// writes commit atomically with the purchase status change. Both lock
	// the ingredient row FOR UPDATE and fold through the WAC calculator,
	// so multiple lines touching the same ingredient compound correctly.

	// ApplyPurchaseItemTx adds one completed purchase line to the warehouse.
	ApplyPurchaseItemTx(ctx context.Context, tx pgx.Tx, purchaseID string, item PurchaseItem) error
	// RevertPurchaseItemTx exactly undoes a previously applied line.
	RevertPurchaseItemTx(ctx context.Context, tx pgx.Tx, purchaseID string, item PurchaseItem) error

	// DeductForOrder is the separate one-directional fulfillment flow:
	// stock minus required quantity, clamped at zero, WAC untouched. It
	// shares the same row-locking discipline as the purchase path because
	// both contend for the same ingredient rows.
	DeductForOrder(ctx context.Context, orderRef string, lines []FulfillmentLine) ([]DeductionResult, error)
}
