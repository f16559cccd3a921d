package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseItem is one line of a purchase: a quantity of an ingredient bought
// at a unit price. Lines of a completed purchase are immutable except through
// a status transition.
type PurchaseItem struct {
	ID             int64
	PurchaseID     string
	LineNumber     int
	IngredientID   string
	IngredientName string
	Quantity       decimal.Decimal
	UnitPrice      decimal.Decimal
	Subtotal       decimal.Decimal // quantity × unit price
}

// Purchase is a purchase header with its ordered line items.
type Purchase struct {
	ID                string
	SupplierID        string
	SupplierName      string
	Status            PurchaseStatus
	CalculationMethod CalculationMethod
	TotalValue        decimal.Decimal
	Notes             *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	Items             []PurchaseItem
}

// PurchaseLineInput holds the canonical fields for one purchase line. Any
// historical field-name aliases are normalized at the ingestion boundary
// before this type is constructed.
type PurchaseLineInput struct {
	IngredientID string
	Quantity     decimal.Decimal
	UnitPrice    decimal.Decimal
}

// PurchaseService owns purchase records and their status transitions.
// SetStatus is the single entry point that mutates warehouse stock/WAC.
type PurchaseService interface {
	// CreatePurchase creates a new pending purchase with computed line
	// subtotals. Only the AVERAGE calculation method is accepted.
	CreatePurchase(ctx context.Context, supplierID string, items []PurchaseLineInput,
		method CalculationMethod, notes string) (*Purchase, error)

	// GetPurchase returns a purchase by ID including all lines.
	GetPurchase(ctx context.Context, id string) (*Purchase, error)

	// GetPurchases returns purchases, optionally filtered by status
	// (empty string returns all), newest first.
	GetPurchases(ctx context.Context, status PurchaseStatus) ([]Purchase, error)

	// UpdatePurchase replaces the supplier, lines, and notes of a pending
	// purchase. Completed and cancelled purchases are immutable.
	UpdatePurchase(ctx context.Context, id, supplierID string,
		items []PurchaseLineInput, notes string) (*Purchase, error)

	// DeletePurchase removes a purchase. A completed purchase is first
	// reverted from the warehouse within the same transaction so its stock
	// and WAC contribution disappears with it.
	DeletePurchase(ctx context.Context, id string) error

	// SetStatus drives the purchase state machine:
	//
	//	pending   → completed  applies every line to the warehouse
	//	completed → pending    exactly reverts every line ("undo")
	//	completed → cancelled  exactly reverts every line
	//	pending   → cancelled  status-only, no warehouse effect
	//
	// Requesting the current status is an idempotent no-op; cancelled is
	// terminal. The transition and all warehouse writes commit as a single
	// transaction, with bounded retry on write races.
	SetStatus(ctx context.Context, id string, target PurchaseStatus) error
}
