package app

import (
	"context"

	"github.com/monifinebakery/BISMILLAH-sub018/internal/core"
)

// ApplicationService is the single interface all adapters (CLI, Web) call.
// It decouples presentation from business logic. Implementations must contain
// no fmt.Println, no ANSI codes, and no display logic of any kind.
type ApplicationService interface {
	// CreatePurchase creates a new pending purchase from a request whose
	// line fields have been normalized from any historical aliases.
	CreatePurchase(ctx context.Context, req CreatePurchaseRequest) (*PurchaseResult, error)

	// GetPurchase returns a purchase with its lines.
	GetPurchase(ctx context.Context, id string) (*PurchaseResult, error)

	// ListPurchases returns purchases, optionally filtered by status.
	ListPurchases(ctx context.Context, status string) (*PurchaseListResult, error)

	// UpdatePurchase replaces the lines of a pending purchase.
	UpdatePurchase(ctx context.Context, id string, req CreatePurchaseRequest) (*PurchaseResult, error)

	// DeletePurchase removes a purchase, reverting its warehouse effect
	// first if it was completed.
	DeletePurchase(ctx context.Context, id string) error

	// SetPurchaseStatus drives the purchase state machine and returns the
	// purchase in its new state.
	SetPurchaseStatus(ctx context.Context, id, status string) (*PurchaseResult, error)

	// CreateIngredient registers new warehouse master data with zero
	// stock and zero WAC.
	CreateIngredient(ctx context.Context, req IngredientRequest) (*IngredientResult, error)

	// GetIngredient returns one ingredient.
	GetIngredient(ctx context.Context, id string) (*IngredientResult, error)

	// ListIngredients returns all ingredients.
	ListIngredients(ctx context.Context) (*IngredientListResult, error)

	// UpdateIngredient updates ingredient master data. Stock and WAC are
	// not editable through this path.
	UpdateIngredient(ctx context.Context, id string, req IngredientRequest) (*IngredientResult, error)

	// ListLowStock returns ingredients at or below their minimum stock.
	ListLowStock(ctx context.Context) (*IngredientListResult, error)

	// GetMovements returns the audited stock history of an ingredient.
	GetMovements(ctx context.Context, ingredientID string) (*MovementListResult, error)

	// FulfillOrder deducts consumed ingredients for a completed order,
	// clamped at zero, WAC untouched.
	FulfillOrder(ctx context.Context, req FulfillmentRequest) (*FulfillmentResult, error)

	// CreateSupplier registers a purchasing counterparty.
	CreateSupplier(ctx context.Context, req SupplierRequest) (*SupplierResult, error)

	// ListSuppliers returns suppliers, active only by default.
	ListSuppliers(ctx context.Context, includeInactive bool) (*SupplierListResult, error)

	// UpdateSupplier updates supplier master data.
	UpdateSupplier(ctx context.Context, id string, req SupplierRequest) (*SupplierResult, error)

	// DeactivateSupplier soft-deletes a supplier.
	DeactivateSupplier(ctx context.Context, id string) error

	// CheckPurchase reconciles a purchase's status against its recorded
	// movement trail.
	CheckPurchase(ctx context.Context, id string) (*core.PurchaseCheck, error)

	// RebuildIngredient replays an ingredient's movement history and
	// optionally writes the computed state back.
	RebuildIngredient(ctx context.Context, id string, fix bool) (*core.IngredientRebuild, error)

	// StockValuation values the inventory at current WAC.
	StockValuation(ctx context.Context) (*core.StockValuation, error)
}
