package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseStatus is the purchase lifecycle state. Status transitions are the
// only events that mutate warehouse stock and WAC.
type PurchaseStatus string

const (
	StatusPending   PurchaseStatus = "pending"
	StatusCompleted PurchaseStatus = "completed"
	StatusCancelled PurchaseStatus = "cancelled"
)

// Valid reports whether s is a known purchase status.
func (s PurchaseStatus) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// CalculationMethod selects the costing method for a purchase. Only the
// weighted average method is implemented; the column exists so historical
// records keep their method if others are ever added.
type CalculationMethod string

const CalculationAverage CalculationMethod = "AVERAGE"

// MovementType classifies entries in the stock_movements audit trail.
type MovementType string

const (
	MovementPurchaseApply  MovementType = "PURCHASE_APPLY"
	MovementPurchaseRevert MovementType = "PURCHASE_REVERT"
	MovementOrderDeduct    MovementType = "ORDER_DEDUCT"
)

// StockMovement is one audited stock mutation. Quantity is signed: positive
// for purchase applications, negative for reversals and order deductions.
type StockMovement struct {
	ID           int64
	IngredientID string
	PurchaseID   *string
	OrderRef     *string
	Type         MovementType
	Quantity     decimal.Decimal
	UnitPrice    decimal.Decimal
	CreatedAt    time.Time
}

// Supplier is a purchasing counterparty (master data).
type Supplier struct {
	ID        string
	Name      string
	Contact   *string
	Phone     *string
	Address   *string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SupplierInput holds the fields required to create or update a supplier.
type SupplierInput struct {
	Name    string
	Contact string
	Phone   string
	Address string
}
