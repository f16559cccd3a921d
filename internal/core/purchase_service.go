package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type purchaseService struct {
	pool      *pgxpool.Pool
	warehouse WarehouseService
}

// NewPurchaseService constructs a PurchaseService backed by PostgreSQL.
// The warehouse service is injected so every status transition drives its
// stock/WAC writes through the same transaction.
func NewPurchaseService(pool *pgxpool.Pool, warehouse WarehouseService) PurchaseService {
	return &purchaseService{pool: pool, warehouse: warehouse}
}

// CreatePurchase creates a new pending purchase with computed line subtotals.
func (s *purchaseService) CreatePurchase(ctx context.Context, supplierID string,
	items []PurchaseLineInput, method CalculationMethod, notes string) (*Purchase, error) {

	if len(items) == 0 {
		return nil, fmt.Errorf("purchase must have at least one line item")
	}
	if method == "" {
		method = CalculationAverage
	}
	if method != CalculationAverage {
		return nil, fmt.Errorf("calculation method %q is not implemented (only %s)", method, CalculationAverage)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var supplierExists bool
	if err := tx.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM suppliers WHERE id = $1 AND is_active = true)",
		supplierID,
	).Scan(&supplierExists); err != nil {
		return nil, fmt.Errorf("validate supplier: %w", err)
	}
	if !supplierExists {
		return nil, fmt.Errorf("supplier %s: %w", supplierID, ErrNotFound)
	}

	total, err := validateLines(items)
	if err != nil {
		return nil, err
	}

	var toNotes *string
	if notes != "" {
		toNotes = &notes
	}

	var purchaseID string
	if err := tx.QueryRow(ctx, `
		INSERT INTO purchases (supplier_id, status, calculation_method, total_value, notes)
		VALUES ($1, 'pending', $2, $3, $4)
		RETURNING id`,
		supplierID, method, total, toNotes,
	).Scan(&purchaseID); err != nil {
		return nil, fmt.Errorf("insert purchase: %w", err)
	}

	if err := insertLines(ctx, tx, purchaseID, items); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit purchase: %w", err)
	}

	return s.GetPurchase(ctx, purchaseID)
}

// validateLines checks every line references an ingredient and carries
// non-negative amounts, returning the purchase total.
func validateLines(items []PurchaseLineInput) (decimal.Decimal, error) {
	var total decimal.Decimal
	for i, item := range items {
		if item.IngredientID == "" {
			return decimal.Zero, fmt.Errorf("line %d: ingredient reference is required", i+1)
		}
		if item.Quantity.IsNegative() {
			return decimal.Zero, fmt.Errorf("line %d: quantity cannot be negative, got %s", i+1, item.Quantity)
		}
		if item.UnitPrice.IsNegative() {
			return decimal.Zero, fmt.Errorf("line %d: unit price cannot be negative, got %s", i+1, item.UnitPrice)
		}
		total = total.Add(item.Quantity.Mul(item.UnitPrice))
	}
	return total, nil
}

func insertLines(ctx context.Context, tx pgx.Tx, purchaseID string, items []PurchaseLineInput) error {
	for i, item := range items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO purchase_items (purchase_id, line_number, ingredient_id, quantity, unit_price, subtotal)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			purchaseID, i+1, item.IngredientID, item.Quantity, item.UnitPrice,
			item.Quantity.Mul(item.UnitPrice),
		); err != nil {
			return fmt.Errorf("insert purchase line %d: %w", i+1, err)
		}
	}
	return nil
}

// GetPurchase returns a purchase by ID including all lines.
func (s *purchaseService) GetPurchase(ctx context.Context, id string) (*Purchase, error) {
	p := &Purchase{}
	if err := s.pool.QueryRow(ctx, `
		SELECT p.id, p.supplier_id, sp.name, p.status, p.calculation_method,
		       p.total_value, p.notes, p.created_at, p.updated_at
		FROM purchases p
		JOIN suppliers sp ON sp.id = p.supplier_id
		WHERE p.id = $1`,
		id,
	).Scan(
		&p.ID, &p.SupplierID, &p.SupplierName, &p.Status, &p.CalculationMethod,
		&p.TotalValue, &p.Notes, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("purchase %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get purchase %s: %w", id, err)
	}

	items, err := s.fetchItems(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Items = items
	return p, nil
}

// GetPurchases returns purchases filtered by status (empty = all), newest first.
func (s *purchaseService) GetPurchases(ctx context.Context, status PurchaseStatus) ([]Purchase, error) {
	query := `
		SELECT p.id, p.supplier_id, sp.name, p.status, p.calculation_method,
		       p.total_value, p.notes, p.created_at, p.updated_at
		FROM purchases p
		JOIN suppliers sp ON sp.id = p.supplier_id`
	args := []any{}
	if status != "" {
		query += " WHERE p.status = $1"
		args = append(args, status)
	}
	query += " ORDER BY p.created_at DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	var purchases []Purchase
	for rows.Next() {
		var p Purchase
		if err := rows.Scan(
			&p.ID, &p.SupplierID, &p.SupplierName, &p.Status, &p.CalculationMethod,
			&p.TotalValue, &p.Notes, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		purchases = append(purchases, p)
	}
	return purchases, rows.Err()
}

// UpdatePurchase replaces the lines of a pending purchase. Completed
// purchases are immutable except through a status transition.
func (s *purchaseService) UpdatePurchase(ctx context.Context, id, supplierID string,
	items []PurchaseLineInput, notes string) (*Purchase, error) {

	if len(items) == 0 {
		return nil, fmt.Errorf("purchase must have at least one line item")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status PurchaseStatus
	if err := tx.QueryRow(ctx,
		"SELECT status FROM purchases WHERE id = $1 FOR UPDATE", id,
	).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("purchase %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("fetch purchase %s: %w", id, err)
	}
	if status != StatusPending {
		return nil, fmt.Errorf("purchase %s is %s and cannot be edited: %w", id, status, ErrInvalidTransition)
	}

	var supplierExists bool
	if err := tx.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM suppliers WHERE id = $1 AND is_active = true)",
		supplierID,
	).Scan(&supplierExists); err != nil {
		return nil, fmt.Errorf("validate supplier: %w", err)
	}
	if !supplierExists {
		return nil, fmt.Errorf("supplier %s: %w", supplierID, ErrNotFound)
	}

	total, err := validateLines(items)
	if err != nil {
		return nil, err
	}

	var toNotes *string
	if notes != "" {
		toNotes = &notes
	}
	if _, err := tx.Exec(ctx, `
		UPDATE purchases SET supplier_id = $1, total_value = $2, notes = $3, updated_at = NOW()
		WHERE id = $4`,
		supplierID, total, toNotes, id,
	); err != nil {
		return nil, fmt.Errorf("update purchase %s: %w", id, err)
	}

	if _, err := tx.Exec(ctx, "DELETE FROM purchase_items WHERE purchase_id = $1", id); err != nil {
		return nil, fmt.Errorf("clear purchase lines: %w", err)
	}
	if err := insertLines(ctx, tx, id, items); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit purchase update: %w", err)
	}
	return s.GetPurchase(ctx, id)
}

// DeletePurchase removes a purchase. If it is completed, its warehouse effect
// is reverted inside the same transaction so stock and WAC stay consistent.
func (s *purchaseService) DeletePurchase(ctx context.Context, id string) error {
	return withRetry(ctx, transitionRetryAttempts, func() error {
		tx, err := s.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		defer tx.Rollback(ctx)

		var status PurchaseStatus
		if err := tx.QueryRow(ctx,
			"SELECT status FROM purchases WHERE id = $1 FOR UPDATE", id,
		).Scan(&status); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("purchase %s: %w", id, ErrNotFound)
			}
			return fmt.Errorf("fetch purchase %s: %w", id, err)
		}

		if status == StatusCompleted {
			if err := s.revertItemsTx(ctx, tx, id); err != nil {
				return err
			}
		}

		if _, err := tx.Exec(ctx, "DELETE FROM purchases WHERE id = $1", id); err != nil {
			return fmt.Errorf("delete purchase %s: %w", id, err)
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit purchase delete: %w", err)
		}
		return nil
	})
}

// ── Status transitions ────────────────────────────────────────────────────────

// SetStatus drives the purchase state machine. See PurchaseService for the
// transition table. Write races are retried a bounded number of times; each
// attempt re-reads the persisted status under a row lock.
func (s *purchaseService) SetStatus(ctx context.Context, id string, target PurchaseStatus) error {
	if !target.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, target)
	}
	return withRetry(ctx, transitionRetryAttempts, func() error {
		return s.transition(ctx, id, target)
	})
}

func (s *purchaseService) transition(ctx context.Context, id string, target PurchaseStatus) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Lock the header row: concurrent status changes on the same purchase
	// serialize here, and the status we read is the one we transition from.
	var current PurchaseStatus
	if err := tx.QueryRow(ctx,
		"SELECT status FROM purchases WHERE id = $1 FOR UPDATE", id,
	).Scan(&current); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("purchase %s: %w", id, ErrNotFound)
		}
		return fmt.Errorf("fetch purchase %s: %w", id, err)
	}

	// Idempotent: re-requesting the current status is a no-op, never a
	// double application.
	if current == target {
		return nil
	}
	if current == StatusCancelled {
		return fmt.Errorf("purchase %s: %w", id, ErrTerminalStatus)
	}

	switch {
	case current == StatusPending && target == StatusCompleted:
		if err := s.applyItemsTx(ctx, tx, id); err != nil {
			return err
		}
	case current == StatusCompleted && (target == StatusPending || target == StatusCancelled):
		if err := s.revertItemsTx(ctx, tx, id); err != nil {
			return err
		}
	case current == StatusPending && target == StatusCancelled:
		// Nothing was ever applied; status-only change.
	default:
		return fmt.Errorf("purchase %s: %s → %s: %w", id, current, target, ErrInvalidTransition)
	}

	if _, err := tx.Exec(ctx,
		"UPDATE purchases SET status = $1, updated_at = NOW() WHERE id = $2",
		target, id,
	); err != nil {
		return fmt.Errorf("update purchase %s status: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit status transition: %w", err)
	}
	return nil
}

// applyItemsTx folds every line item into the warehouse, in line order.
// Lines for the same ingredient compound because each apply re-reads the
// row just written under the same lock.
func (s *purchaseService) applyItemsTx(ctx context.Context, tx pgx.Tx, purchaseID string) error {
	items, err := fetchItemsTx(ctx, tx, purchaseID)
	if err != nil {
		return err
	}

	var applied []string
	for _, item := range items {
		if item.Quantity.IsZero() {
			continue
		}
		if err := s.warehouse.ApplyPurchaseItemTx(ctx, tx, purchaseID, item); err != nil {
			return &PartialSyncError{
				PurchaseID:       purchaseID,
				FailedIngredient: item.IngredientID,
				Applied:          applied,
				Err:              err,
			}
		}
		applied = append(applied, item.IngredientID)
	}
	return nil
}

// revertItemsTx undoes every line item using its original quantity and
// original unit price.
func (s *purchaseService) revertItemsTx(ctx context.Context, tx pgx.Tx, purchaseID string) error {
	items, err := fetchItemsTx(ctx, tx, purchaseID)
	if err != nil {
		return err
	}

	var reverted []string
	for _, item := range items {
		if item.Quantity.IsZero() {
			continue
		}
		if err := s.warehouse.RevertPurchaseItemTx(ctx, tx, purchaseID, item); err != nil {
			return &PartialSyncError{
				PurchaseID:       purchaseID,
				FailedIngredient: item.IngredientID,
				Applied:          reverted,
				Err:              err,
			}
		}
		reverted = append(reverted, item.IngredientID)
	}
	return nil
}

func (s *purchaseService) fetchItems(ctx context.Context, purchaseID string) ([]PurchaseItem, error) {
	rows, err := s.pool.Query(ctx, itemQuery, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("fetch purchase lines for %s: %w", purchaseID, err)
	}
	defer rows.Close()
	return collectItems(rows)
}

func fetchItemsTx(ctx context.Context, tx pgx.Tx, purchaseID string) ([]PurchaseItem, error) {
	rows, err := tx.Query(ctx, itemQuery, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("fetch purchase lines for %s: %w", purchaseID, err)
	}
	defer rows.Close()
	return collectItems(rows)
}

const itemQuery = `
	SELECT pi.id, pi.purchase_id, pi.line_number, pi.ingredient_id, ing.name,
	       pi.quantity, pi.unit_price, pi.subtotal
	FROM purchase_items pi
	JOIN ingredients ing ON ing.id = pi.ingredient_id
	WHERE pi.purchase_id = $1
	ORDER BY pi.line_number`

func collectItems(rows pgx.Rows) ([]PurchaseItem, error) {
	var items []PurchaseItem
	for rows.Next() {
		var it PurchaseItem
		if err := rows.Scan(
			&it.ID, &it.PurchaseID, &it.LineNumber, &it.IngredientID, &it.IngredientName,
			&it.Quantity, &it.UnitPrice, &it.Subtotal,
		); err != nil {
			return nil, fmt.Errorf("scan purchase line: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
