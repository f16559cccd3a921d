package app

import (
	"context"
	"fmt"

	"github.com/monifinebakery/BISMILLAH-sub018/internal/core"
)

type appService struct {
	purchases core.PurchaseService
	warehouse core.WarehouseService
	suppliers core.SupplierService
	reconcile core.ReconcileService
	reporting core.ReportingService
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(
	purchases core.PurchaseService,
	warehouse core.WarehouseService,
	suppliers core.SupplierService,
	reconcile core.ReconcileService,
	reporting core.ReportingService,
) ApplicationService {
	return &appService{
		purchases: purchases,
		warehouse: warehouse,
		suppliers: suppliers,
		reconcile: reconcile,
		reporting: reporting,
	}
}

// ── Purchases ─────────────────────────────────────────────────────────────────

func (s *appService) CreatePurchase(ctx context.Context, req CreatePurchaseRequest) (*PurchaseResult, error) {
	purchase, err := s.purchases.CreatePurchase(ctx, req.SupplierID, toLineInputs(req.Items),
		core.CalculationMethod(req.CalculationMethod), req.Notes)
	if err != nil {
		return nil, err
	}
	return &PurchaseResult{Purchase: purchase}, nil
}

func (s *appService) GetPurchase(ctx context.Context, id string) (*PurchaseResult, error) {
	purchase, err := s.purchases.GetPurchase(ctx, id)
	if err != nil {
		return nil, err
	}
	return &PurchaseResult{Purchase: purchase}, nil
}

func (s *appService) ListPurchases(ctx context.Context, status string) (*PurchaseListResult, error) {
	filter := core.PurchaseStatus(status)
	if status != "" && !filter.Valid() {
		return nil, fmt.Errorf("unknown purchase status %q", status)
	}
	purchases, err := s.purchases.GetPurchases(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &PurchaseListResult{Purchases: purchases}, nil
}

func (s *appService) UpdatePurchase(ctx context.Context, id string, req CreatePurchaseRequest) (*PurchaseResult, error) {
	purchase, err := s.purchases.UpdatePurchase(ctx, id, req.SupplierID, toLineInputs(req.Items), req.Notes)
	if err != nil {
		return nil, err
	}
	return &PurchaseResult{Purchase: purchase}, nil
}

func (s *appService) DeletePurchase(ctx context.Context, id string) error {
	return s.purchases.DeletePurchase(ctx, id)
}

func (s *appService) SetPurchaseStatus(ctx context.Context, id, status string) (*PurchaseResult, error) {
	target := core.PurchaseStatus(status)
	if !target.Valid() {
		return nil, fmt.Errorf("unknown purchase status %q: %w", status, core.ErrInvalidTransition)
	}
	if err := s.purchases.SetStatus(ctx, id, target); err != nil {
		return nil, err
	}
	return s.GetPurchase(ctx, id)
}

func toLineInputs(items []PurchaseLineRequest) []core.PurchaseLineInput {
	lines := make([]core.PurchaseLineInput, len(items))
	for i, item := range items {
		lines[i] = core.PurchaseLineInput{
			IngredientID: item.IngredientID,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
		}
	}
	return lines
}

// ── Warehouse ─────────────────────────────────────────────────────────────────

func (s *appService) CreateIngredient(ctx context.Context, req IngredientRequest) (*IngredientResult, error) {
	ing, err := s.warehouse.CreateIngredient(ctx, toIngredientInput(req))
	if err != nil {
		return nil, err
	}
	return &IngredientResult{Ingredient: ing}, nil
}

func (s *appService) GetIngredient(ctx context.Context, id string) (*IngredientResult, error) {
	ing, err := s.warehouse.GetIngredient(ctx, id)
	if err != nil {
		return nil, err
	}
	return &IngredientResult{Ingredient: ing}, nil
}

func (s *appService) ListIngredients(ctx context.Context) (*IngredientListResult, error) {
	ingredients, err := s.warehouse.ListIngredients(ctx)
	if err != nil {
		return nil, err
	}
	return &IngredientListResult{Ingredients: ingredients}, nil
}

func (s *appService) UpdateIngredient(ctx context.Context, id string, req IngredientRequest) (*IngredientResult, error) {
	ing, err := s.warehouse.UpdateIngredient(ctx, id, toIngredientInput(req))
	if err != nil {
		return nil, err
	}
	return &IngredientResult{Ingredient: ing}, nil
}

func (s *appService) ListLowStock(ctx context.Context) (*IngredientListResult, error) {
	ingredients, err := s.warehouse.LowStock(ctx)
	if err != nil {
		return nil, err
	}
	return &IngredientListResult{Ingredients: ingredients}, nil
}

func (s *appService) GetMovements(ctx context.Context, ingredientID string) (*MovementListResult, error) {
	movements, err := s.warehouse.Movements(ctx, ingredientID)
	if err != nil {
		return nil, err
	}
	return &MovementListResult{IngredientID: ingredientID, Movements: movements}, nil
}

func (s *appService) FulfillOrder(ctx context.Context, req FulfillmentRequest) (*FulfillmentResult, error) {
	if req.OrderRef == "" {
		return nil, fmt.Errorf("order reference is required")
	}
	lines := make([]core.FulfillmentLine, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = core.FulfillmentLine{IngredientID: l.IngredientID, Quantity: l.Quantity}
	}
	results, err := s.warehouse.DeductForOrder(ctx, req.OrderRef, lines)
	if err != nil {
		return nil, err
	}
	return &FulfillmentResult{OrderRef: req.OrderRef, Results: results}, nil
}

func toIngredientInput(req IngredientRequest) core.IngredientInput {
	return core.IngredientInput{
		Name:         req.Name,
		Category:     req.Category,
		Unit:         req.Unit,
		MinimumStock: req.MinimumStock,
		SupplierNote: req.SupplierNote,
	}
}

// ── Suppliers ─────────────────────────────────────────────────────────────────

func (s *appService) CreateSupplier(ctx context.Context, req SupplierRequest) (*SupplierResult, error) {
	sp, err := s.suppliers.CreateSupplier(ctx, toSupplierInput(req))
	if err != nil {
		return nil, err
	}
	return &SupplierResult{Supplier: sp}, nil
}

func (s *appService) ListSuppliers(ctx context.Context, includeInactive bool) (*SupplierListResult, error) {
	suppliers, err := s.suppliers.ListSuppliers(ctx, includeInactive)
	if err != nil {
		return nil, err
	}
	return &SupplierListResult{Suppliers: suppliers}, nil
}

func (s *appService) UpdateSupplier(ctx context.Context, id string, req SupplierRequest) (*SupplierResult, error) {
	sp, err := s.suppliers.UpdateSupplier(ctx, id, toSupplierInput(req))
	if err != nil {
		return nil, err
	}
	return &SupplierResult{Supplier: sp}, nil
}

func (s *appService) DeactivateSupplier(ctx context.Context, id string) error {
	return s.suppliers.DeactivateSupplier(ctx, id)
}

func toSupplierInput(req SupplierRequest) core.SupplierInput {
	return core.SupplierInput{
		Name:    req.Name,
		Contact: req.Contact,
		Phone:   req.Phone,
		Address: req.Address,
	}
}

// ── Reconciliation and reporting ──────────────────────────────────────────────

func (s *appService) CheckPurchase(ctx context.Context, id string) (*core.PurchaseCheck, error) {
	return s.reconcile.CheckPurchase(ctx, id)
}

func (s *appService) RebuildIngredient(ctx context.Context, id string, fix bool) (*core.IngredientRebuild, error) {
	return s.reconcile.RebuildIngredient(ctx, id, fix)
}

func (s *appService) StockValuation(ctx context.Context) (*core.StockValuation, error) {
	return s.reporting.StockValuation(ctx)
}
