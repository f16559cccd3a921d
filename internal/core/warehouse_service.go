package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type warehouseService struct {
	pool *pgxpool.Pool
}

// NewWarehouseService constructs a WarehouseService backed by PostgreSQL.
func NewWarehouseService(pool *pgxpool.Pool) WarehouseService {
	return &warehouseService{pool: pool}
}

const ingredientColumns = `id, name, category, unit, current_stock, weighted_average_cost,
       last_unit_price, minimum_stock, supplier_note, created_at, updated_at`

func scanIngredient(row pgx.Row) (*Ingredient, error) {
	ing := &Ingredient{}
	err := row.Scan(
		&ing.ID, &ing.Name, &ing.Category, &ing.Unit,
		&ing.CurrentStock, &ing.WeightedAverageCost,
		&ing.LastUnitPrice, &ing.MinimumStock, &ing.SupplierNote,
		&ing.CreatedAt, &ing.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return ing, nil
}

// ── Master data ───────────────────────────────────────────────────────────────

func (s *warehouseService) CreateIngredient(ctx context.Context, input IngredientInput) (*Ingredient, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("ingredient name is required")
	}

	var note *string
	if input.SupplierNote != "" {
		note = &input.SupplierNote
	}

	ing, err := scanIngredient(s.pool.QueryRow(ctx, `
		INSERT INTO ingredients (name, category, unit, minimum_stock, supplier_note)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+ingredientColumns,
		input.Name, input.Category, input.Unit, input.MinimumStock, note,
	))
	if err != nil {
		return nil, fmt.Errorf("create ingredient %q: %w", input.Name, err)
	}
	return ing, nil
}

func (s *warehouseService) GetIngredient(ctx context.Context, id string) (*Ingredient, error) {
	ing, err := scanIngredient(s.pool.QueryRow(ctx,
		`SELECT `+ingredientColumns+` FROM ingredients WHERE id = $1`, id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("ingredient %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get ingredient %s: %w", id, err)
	}
	return ing, nil
}

func (s *warehouseService) ListIngredients(ctx context.Context) ([]Ingredient, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+ingredientColumns+` FROM ingredients ORDER BY name, unit`)
	if err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	defer rows.Close()
	return collectIngredients(rows)
}

func (s *warehouseService) UpdateIngredient(ctx context.Context, id string, input IngredientInput) (*Ingredient, error) {
	var note *string
	if input.SupplierNote != "" {
		note = &input.SupplierNote
	}

	ing, err := scanIngredient(s.pool.QueryRow(ctx, `
		UPDATE ingredients
		SET name = $1, category = $2, unit = $3, minimum_stock = $4,
		    supplier_note = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING `+ingredientColumns,
		input.Name, input.Category, input.Unit, input.MinimumStock, note, id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("ingredient %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("update ingredient %s: %w", id, err)
	}
	return ing, nil
}

func (s *warehouseService) LowStock(ctx context.Context) ([]Ingredient, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+ingredientColumns+`
		FROM ingredients
		WHERE current_stock <= minimum_stock
		ORDER BY name, unit`)
	if err != nil {
		return nil, fmt.Errorf("list low-stock ingredients: %w", err)
	}
	defer rows.Close()
	return collectIngredients(rows)
}

func (s *warehouseService) Movements(ctx context.Context, ingredientID string) ([]StockMovement, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, ingredient_id, purchase_id, order_ref, movement_type, quantity, unit_price, created_at
		FROM stock_movements
		WHERE ingredient_id = $1
		ORDER BY created_at, id`,
		ingredientID,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch movements for ingredient %s: %w", ingredientID, err)
	}
	defer rows.Close()

	var movements []StockMovement
	for rows.Next() {
		var m StockMovement
		if err := rows.Scan(&m.ID, &m.IngredientID, &m.PurchaseID, &m.OrderRef,
			&m.Type, &m.Quantity, &m.UnitPrice, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

func collectIngredients(rows pgx.Rows) ([]Ingredient, error) {
	var ingredients []Ingredient
	for rows.Next() {
		var ing Ingredient
		if err := rows.Scan(
			&ing.ID, &ing.Name, &ing.Category, &ing.Unit,
			&ing.CurrentStock, &ing.WeightedAverageCost,
			&ing.LastUnitPrice, &ing.MinimumStock, &ing.SupplierNote,
			&ing.CreatedAt, &ing.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan ingredient: %w", err)
		}
		ingredients = append(ingredients, ing)
	}
	return ingredients, rows.Err()
}

// ── TX-scoped purchase sync ───────────────────────────────────────────────────

// lockCostState reads an ingredient's (stock, wac) under a row lock so the
// read-modify-write below is serialized against every other writer.
func lockCostState(ctx context.Context, tx pgx.Tx, ingredientID string) (CostState, error) {
	var cur CostState
	err := tx.QueryRow(ctx,
		"SELECT current_stock, weighted_average_cost FROM ingredients WHERE id = $1 FOR UPDATE",
		ingredientID,
	).Scan(&cur.Stock, &cur.WAC)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return CostState{}, fmt.Errorf("ingredient %s: %w", ingredientID, ErrNotFound)
		}
		return CostState{}, fmt.Errorf("lock ingredient %s: %w", ingredientID, err)
	}
	return cur, nil
}

func (s *warehouseService) ApplyPurchaseItemTx(ctx context.Context, tx pgx.Tx, purchaseID string, item PurchaseItem) error {
	cur, err := lockCostState(ctx, tx, item.IngredientID)
	if err != nil {
		return err
	}

	next, err := ApplyReceipt(cur, item.Quantity, item.UnitPrice)
	if err != nil {
		return fmt.Errorf("apply %s × %s to ingredient %s: %w",
			item.Quantity, item.UnitPrice, item.IngredientID, err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE ingredients
		SET current_stock = $1, weighted_average_cost = $2, last_unit_price = $3, updated_at = NOW()
		WHERE id = $4`,
		next.Stock, next.WAC, item.UnitPrice, item.IngredientID,
	); err != nil {
		return fmt.Errorf("write stock for ingredient %s: %w", item.IngredientID, err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO stock_movements (ingredient_id, purchase_id, movement_type, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5)`,
		item.IngredientID, purchaseID, MovementPurchaseApply, item.Quantity, item.UnitPrice,
	); err != nil {
		return fmt.Errorf("record apply movement for ingredient %s: %w", item.IngredientID, err)
	}
	return nil
}

func (s *warehouseService) RevertPurchaseItemTx(ctx context.Context, tx pgx.Tx, purchaseID string, item PurchaseItem) error {
	cur, err := lockCostState(ctx, tx, item.IngredientID)
	if err != nil {
		return err
	}

	next, err := RevertReceipt(cur, item.Quantity, item.UnitPrice)
	if err != nil {
		return fmt.Errorf("revert %s × %s from ingredient %s: %w",
			item.Quantity, item.UnitPrice, item.IngredientID, err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE ingredients
		SET current_stock = $1, weighted_average_cost = $2, updated_at = NOW()
		WHERE id = $3`,
		next.Stock, next.WAC, item.IngredientID,
	); err != nil {
		return fmt.Errorf("write stock for ingredient %s: %w", item.IngredientID, err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO stock_movements (ingredient_id, purchase_id, movement_type, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5)`,
		item.IngredientID, purchaseID, MovementPurchaseRevert, item.Quantity.Neg(), item.UnitPrice,
	); err != nil {
		return fmt.Errorf("record revert movement for ingredient %s: %w", item.IngredientID, err)
	}
	return nil
}

// ── Order fulfillment ─────────────────────────────────────────────────────────

// DeductForOrder deducts consumed ingredients for a completed order. This is
// the one-directional flow: stock goes down, clamped at zero, and the WAC is
// never touched. Shortfalls are reported, not failed, so one missing
// ingredient does not block the rest of the order. Lock ordering against a
// concurrent purchase apply can deadlock, so the transaction retries the same
// way status transitions do.
func (s *warehouseService) DeductForOrder(ctx context.Context, orderRef string, lines []FulfillmentLine) ([]DeductionResult, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("at least one fulfillment line is required")
	}

	var results []DeductionResult
	err := withRetry(ctx, transitionRetryAttempts, func() error {
		results = results[:0]

		tx, err := s.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		defer tx.Rollback(ctx)

		for _, line := range lines {
			if line.Quantity.IsNegative() || line.Quantity.IsZero() {
				return fmt.Errorf("fulfillment quantity for ingredient %s must be positive, got %s",
					line.IngredientID, line.Quantity)
			}

			cur, err := lockCostState(ctx, tx, line.IngredientID)
			if err != nil {
				return err
			}

			deducted := line.Quantity
			if cur.Stock.LessThan(deducted) {
				deducted = cur.Stock
			}
			remaining := cur.Stock.Sub(deducted)

			if _, err := tx.Exec(ctx, `
				UPDATE ingredients SET current_stock = $1, updated_at = NOW() WHERE id = $2`,
				remaining, line.IngredientID,
			); err != nil {
				return fmt.Errorf("deduct stock for ingredient %s: %w", line.IngredientID, err)
			}

			if deducted.IsPositive() {
				if _, err := tx.Exec(ctx, `
					INSERT INTO stock_movements (ingredient_id, order_ref, movement_type, quantity, unit_price)
					VALUES ($1, $2, $3, $4, 0)`,
					line.IngredientID, orderRef, MovementOrderDeduct, deducted.Neg(),
				); err != nil {
					return fmt.Errorf("record deduction movement for ingredient %s: %w", line.IngredientID, err)
				}
			}

			results = append(results, DeductionResult{
				IngredientID: line.IngredientID,
				Requested:    line.Quantity,
				Deducted:     deducted,
				Remaining:    remaining,
			})
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit order deduction: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}
