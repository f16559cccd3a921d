package app

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// CreatePurchaseRequest is the input for creating or updating a purchase.
type CreatePurchaseRequest struct {
	SupplierID        string                `json:"supplierId"`
	CalculationMethod string                `json:"calculationMethod"`
	Notes             string                `json:"notes"`
	Items             []PurchaseLineRequest `json:"items"`
}

// PurchaseLineRequest is one purchase line as submitted by a client. Several
// generations of clients used different field names for the same values, so
// decoding accepts every historical alias and normalizes to the canonical
// fields. Canonical names win when a payload carries both.
type PurchaseLineRequest struct {
	IngredientID string
	Quantity     decimal.Decimal
	UnitPrice    decimal.Decimal
}

// purchaseLineAliases mirrors every accepted spelling of the line fields.
// Pointers distinguish absent from zero.
type purchaseLineAliases struct {
	IngredientID   string           `json:"ingredientId"`
	BahanBakuID    string           `json:"bahanBakuId"`
	BahanBakuSnake string           `json:"bahan_baku_id"`
	Quantity       *decimal.Decimal `json:"quantity"`
	Jumlah         *decimal.Decimal `json:"jumlah"`
	Kuantitas      *decimal.Decimal `json:"kuantitas"`
	UnitPrice      *decimal.Decimal `json:"unitPrice"`
	HargaPerSatuan *decimal.Decimal `json:"harga_per_satuan"`
	HargaSatuan    *decimal.Decimal `json:"harga_satuan"`
	Subtotal       *decimal.Decimal `json:"subtotal"`
}

func (p *PurchaseLineRequest) UnmarshalJSON(data []byte) error {
	var raw purchaseLineAliases
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	p.IngredientID = firstNonEmpty(raw.IngredientID, raw.BahanBakuID, raw.BahanBakuSnake)

	qty := firstSet(raw.Quantity, raw.Jumlah, raw.Kuantitas)
	if qty == nil {
		return fmt.Errorf("purchase line is missing a quantity field")
	}
	p.Quantity = *qty

	if price := firstSet(raw.UnitPrice, raw.HargaPerSatuan, raw.HargaSatuan); price != nil {
		p.UnitPrice = *price
		return nil
	}

	// Some clients sent only the line subtotal. Derive the unit price when
	// the quantity allows it; a zero-quantity line keeps a zero price.
	if raw.Subtotal != nil && p.Quantity.IsPositive() {
		p.UnitPrice = raw.Subtotal.Div(p.Quantity)
		return nil
	}
	return fmt.Errorf("purchase line is missing a unit price field")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstSet(values ...*decimal.Decimal) *decimal.Decimal {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

// IngredientRequest is the input for creating or updating ingredient master
// data. Stock and WAC are deliberately absent.
type IngredientRequest struct {
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Unit         string          `json:"unit"`
	MinimumStock decimal.Decimal `json:"minimumStock"`
	SupplierNote string          `json:"supplierNote"`
}

// SupplierRequest is the input for creating or updating a supplier.
type SupplierRequest struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// FulfillmentRequest is the input for deducting ingredients consumed by a
// completed order.
type FulfillmentRequest struct {
	OrderRef string                   `json:"orderRef"`
	Lines    []FulfillmentLineRequest `json:"lines"`
}

// FulfillmentLineRequest is one ingredient requirement of an order.
type FulfillmentLineRequest struct {
	IngredientID string          `json:"ingredientId"`
	Quantity     decimal.Decimal `json:"quantity"`
}
