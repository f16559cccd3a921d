package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// SyncState classifies the agreement between a purchase's status and its
// recorded warehouse effect.
type SyncState string

const (
	// SyncConsistent: the status and the movement trail agree.
	SyncConsistent SyncState = "CONSISTENT"
	// SyncAppliedNotCompleted: movements show a net application but the
	// purchase is not completed. Usually a failed revert.
	SyncAppliedNotCompleted SyncState = "APPLIED_BUT_NOT_COMPLETED"
	// SyncCompletedNotApplied: the purchase is completed but the movement
	// trail shows no (or a partial) application. Usually a failed apply or
	// data imported from outside the engine.
	SyncCompletedNotApplied SyncState = "COMPLETED_BUT_NOT_APPLIED"
)

// LineCheck is the verdict for one ingredient of a checked purchase.
type LineCheck struct {
	IngredientID string
	Expected     decimal.Decimal // net quantity the status implies
	Recorded     decimal.Decimal // net quantity in the movement trail
}

// PurchaseCheck is the result of reconciling one purchase.
type PurchaseCheck struct {
	PurchaseID string
	Status     PurchaseStatus
	State      SyncState
	Mismatches []LineCheck
}

// IngredientRebuild reports a movement-history replay for one ingredient.
type IngredientRebuild struct {
	IngredientID  string
	StoredStock   decimal.Decimal
	StoredWAC     decimal.Decimal
	ComputedStock decimal.Decimal
	ComputedWAC   decimal.Decimal
	MovementsSeen int
	Drifted       bool
	Fixed         bool
}

// ReconcileService detects and repairs drift between purchase statuses, the
// stock movement trail, and ingredient state. The sync engine itself is
// transactional, so drift normally means outside writes or imported data.
type ReconcileService interface {
	// CheckPurchase compares a purchase's status against the net movements
	// it produced.
	CheckPurchase(ctx context.Context, purchaseID string) (*PurchaseCheck, error)
	// RebuildIngredient replays an ingredient's movement history through
	// the cost calculator and compares the result against the stored
	// state. With fix set, the stored state is overwritten by the replay.
	RebuildIngredient(ctx context.Context, ingredientID string, fix bool) (*IngredientRebuild, error)
}

type reconcileService struct {
	pool *pgxpool.Pool
}

// NewReconcileService constructs a ReconcileService backed by PostgreSQL.
func NewReconcileService(pool *pgxpool.Pool) ReconcileService {
	return &reconcileService{pool: pool}
}

func (s *reconcileService) CheckPurchase(ctx context.Context, purchaseID string) (*PurchaseCheck, error) {
	var status PurchaseStatus
	if err := s.pool.QueryRow(ctx,
		"SELECT status FROM purchases WHERE id = $1", purchaseID,
	).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("purchase %s: %w", purchaseID, ErrNotFound)
		}
		return nil, fmt.Errorf("fetch purchase %s: %w", purchaseID, err)
	}

	// What the status implies per ingredient. Completed means every line's
	// quantity is net-applied; anything else means net zero.
	expected := map[string]decimal.Decimal{}
	rows, err := s.pool.Query(ctx,
		"SELECT ingredient_id, quantity FROM purchase_items WHERE purchase_id = $1", purchaseID)
	if err != nil {
		return nil, fmt.Errorf("fetch purchase lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		var qty decimal.Decimal
		if err := rows.Scan(&id, &qty); err != nil {
			return nil, fmt.Errorf("scan purchase line: %w", err)
		}
		if status == StatusCompleted {
			expected[id] = expected[id].Add(qty)
		} else if _, ok := expected[id]; !ok {
			expected[id] = decimal.Zero
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// What the movement trail actually recorded. Apply rows are positive,
	// revert rows negative, so a clean apply+revert sums to zero.
	recorded := map[string]decimal.Decimal{}
	mrows, err := s.pool.Query(ctx, `
		SELECT ingredient_id, COALESCE(SUM(quantity), 0)
		FROM stock_movements
		WHERE purchase_id = $1
		GROUP BY ingredient_id`, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("fetch movement totals: %w", err)
	}
	defer mrows.Close()
	for mrows.Next() {
		var id string
		var net decimal.Decimal
		if err := mrows.Scan(&id, &net); err != nil {
			return nil, fmt.Errorf("scan movement total: %w", err)
		}
		recorded[id] = net
	}
	if err := mrows.Err(); err != nil {
		return nil, err
	}

	check := &PurchaseCheck{PurchaseID: purchaseID, Status: status, State: SyncConsistent}
	for id, want := range expected {
		got := recorded[id]
		if !want.Equal(got) {
			check.Mismatches = append(check.Mismatches, LineCheck{
				IngredientID: id, Expected: want, Recorded: got,
			})
			if got.GreaterThan(want) {
				check.State = SyncAppliedNotCompleted
			} else {
				check.State = SyncCompletedNotApplied
			}
		}
	}
	return check, nil
}

func (s *reconcileService) RebuildIngredient(ctx context.Context, ingredientID string, fix bool) (*IngredientRebuild, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Lock the row so no purchase or deduction races the replay.
	stored, err := lockCostState(ctx, tx, ingredientID)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT movement_type, quantity, unit_price
		FROM stock_movements
		WHERE ingredient_id = $1
		ORDER BY created_at, id`,
		ingredientID,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch movements for ingredient %s: %w", ingredientID, err)
	}
	defer rows.Close()

	state := CostState{Stock: decimal.Zero, WAC: decimal.Zero}
	seen := 0
	for rows.Next() {
		var mtype MovementType
		var qty, price decimal.Decimal
		if err := rows.Scan(&mtype, &qty, &price); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		seen++

		switch mtype {
		case MovementPurchaseApply:
			state, err = ApplyReceipt(state, qty, price)
		case MovementPurchaseRevert:
			// Revert rows store the quantity negated; undo with the
			// original positive quantity and price.
			state, err = RevertReceipt(state, qty.Neg(), price)
		case MovementOrderDeduct:
			// Deductions are stock-only and were clamped at write
			// time, so the replay clamps the same way.
			next := state.Stock.Add(qty)
			if next.IsNegative() {
				next = decimal.Zero
			}
			state.Stock = next
		default:
			return nil, fmt.Errorf("ingredient %s: unknown movement type %q", ingredientID, mtype)
		}
		if err != nil {
			return nil, fmt.Errorf("replay movement %d for ingredient %s: %w", seen, ingredientID, err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rebuild := &IngredientRebuild{
		IngredientID:  ingredientID,
		StoredStock:   stored.Stock,
		StoredWAC:     stored.WAC,
		ComputedStock: state.Stock,
		ComputedWAC:   state.WAC,
		MovementsSeen: seen,
		Drifted:       !stored.Stock.Equal(state.Stock) || !stored.WAC.Equal(state.WAC),
	}

	if fix && rebuild.Drifted {
		if _, err := tx.Exec(ctx, `
			UPDATE ingredients
			SET current_stock = $1, weighted_average_cost = $2, updated_at = NOW()
			WHERE id = $3`,
			state.Stock, state.WAC, ingredientID,
		); err != nil {
			return nil, fmt.Errorf("write rebuilt state for ingredient %s: %w", ingredientID, err)
		}
		rebuild.Fixed = true
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit rebuild: %w", err)
	}
	return rebuild, nil
}
