package web

import (
	"time"

	"github.com/monifinebakery/BISMILLAH-sub018/internal/core"

	"github.com/shopspring/decimal"
)

// View types shape the JSON wire format independently of the core structs,
// so renaming a core field never silently changes the API.

type purchaseView struct {
	ID                string             `json:"id"`
	SupplierID        string             `json:"supplierId"`
	SupplierName      string             `json:"supplierName"`
	Status            string             `json:"status"`
	CalculationMethod string             `json:"calculationMethod"`
	TotalValue        decimal.Decimal    `json:"totalValue"`
	Notes             *string            `json:"notes,omitempty"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`
	Items             []purchaseItemView `json:"items"`
}

type purchaseItemView struct {
	LineNumber     int             `json:"lineNumber"`
	IngredientID   string          `json:"ingredientId"`
	IngredientName string          `json:"ingredientName"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unitPrice"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

func toPurchaseView(p *core.Purchase) purchaseView {
	items := make([]purchaseItemView, len(p.Items))
	for i, it := range p.Items {
		items[i] = purchaseItemView{
			LineNumber:     it.LineNumber,
			IngredientID:   it.IngredientID,
			IngredientName: it.IngredientName,
			Quantity:       it.Quantity,
			UnitPrice:      it.UnitPrice,
			Subtotal:       it.Subtotal,
		}
	}
	return purchaseView{
		ID:                p.ID,
		SupplierID:        p.SupplierID,
		SupplierName:      p.SupplierName,
		Status:            string(p.Status),
		CalculationMethod: string(p.CalculationMethod),
		TotalValue:        p.TotalValue,
		Notes:             p.Notes,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
		Items:             items,
	}
}

func toPurchaseViews(purchases []core.Purchase) []purchaseView {
	views := make([]purchaseView, len(purchases))
	for i := range purchases {
		views[i] = toPurchaseView(&purchases[i])
	}
	return views
}

type ingredientView struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	Category            string          `json:"category"`
	Unit                string          `json:"unit"`
	CurrentStock        decimal.Decimal `json:"currentStock"`
	WeightedAverageCost decimal.Decimal `json:"weightedAverageCost"`
	LastUnitPrice       decimal.Decimal `json:"lastUnitPrice"`
	MinimumStock        decimal.Decimal `json:"minimumStock"`
	SupplierNote        *string         `json:"supplierNote,omitempty"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

func toIngredientView(ing *core.Ingredient) ingredientView {
	return ingredientView{
		ID:                  ing.ID,
		Name:                ing.Name,
		Category:            ing.Category,
		Unit:                ing.Unit,
		CurrentStock:        ing.CurrentStock,
		WeightedAverageCost: ing.WeightedAverageCost,
		LastUnitPrice:       ing.LastUnitPrice,
		MinimumStock:        ing.MinimumStock,
		SupplierNote:        ing.SupplierNote,
		CreatedAt:           ing.CreatedAt,
		UpdatedAt:           ing.UpdatedAt,
	}
}

func toIngredientViews(ingredients []core.Ingredient) []ingredientView {
	views := make([]ingredientView, len(ingredients))
	for i := range ingredients {
		views[i] = toIngredientView(&ingredients[i])
	}
	return views
}

type movementView struct {
	ID           int64           `json:"id"`
	IngredientID string          `json:"ingredientId"`
	PurchaseID   *string         `json:"purchaseId,omitempty"`
	OrderRef     *string         `json:"orderRef,omitempty"`
	Type         string          `json:"type"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	CreatedAt    time.Time       `json:"createdAt"`
}

func toMovementViews(movements []core.StockMovement) []movementView {
	views := make([]movementView, len(movements))
	for i, m := range movements {
		views[i] = movementView{
			ID:           m.ID,
			IngredientID: m.IngredientID,
			PurchaseID:   m.PurchaseID,
			OrderRef:     m.OrderRef,
			Type:         string(m.Type),
			Quantity:     m.Quantity,
			UnitPrice:    m.UnitPrice,
			CreatedAt:    m.CreatedAt,
		}
	}
	return views
}

type supplierView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Contact   *string   `json:"contact,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Address   *string   `json:"address,omitempty"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toSupplierView(sp *core.Supplier) supplierView {
	return supplierView{
		ID:        sp.ID,
		Name:      sp.Name,
		Contact:   sp.Contact,
		Phone:     sp.Phone,
		Address:   sp.Address,
		IsActive:  sp.IsActive,
		CreatedAt: sp.CreatedAt,
		UpdatedAt: sp.UpdatedAt,
	}
}

type deductionView struct {
	IngredientID string          `json:"ingredientId"`
	Requested    decimal.Decimal `json:"requested"`
	Deducted     decimal.Decimal `json:"deducted"`
	Remaining    decimal.Decimal `json:"remaining"`
}
