package core_test

import (
	"context"
	"testing"

	"github.com/monifinebakery/BISMILLAH-sub018/internal/core"
)

func TestReconcile_ConsistentPurchase(t *testing.T) {
	pool := setupSyncTestDB(t)
	defer pool.Close()
	purchases, _ := newTestServices(pool)
	reconcile := core.NewReconcileService(pool)
	ctx := context.Background()

	p := createTestPurchase(t, ctx, purchases, []core.PurchaseLineInput{
		{IngredientID: testTepung, Quantity: d(100), UnitPrice: d(2000)},
	})
	if err := purchases.SetStatus(ctx, p.ID, core.StatusCompleted); err != nil {
		t.Fatalf("Completion failed: %v", err)
	}

	check, err := reconcile.CheckPurchase(ctx, p.ID)
	if err != nil {
		t.Fatalf("CheckPurchase failed: %v", err)
	}
	if check.State != core.SyncConsistent {
		t.Errorf("Expected CONSISTENT, got %s (mismatches: %v)", check.State, check.Mismatches)
	}

	// After revert, net movements return to zero and the purchase is
	// still consistent with its pending status.
	if err := purchases.SetStatus(ctx, p.ID, core.StatusPending); err != nil {
		t.Fatalf("Revert failed: %v", err)
	}
	check, err = reconcile.CheckPurchase(ctx, p.ID)
	if err != nil {
		t.Fatalf("CheckPurchase failed: %v", err)
	}
	if check.State != core.SyncConsistent {
		t.Errorf("Expected CONSISTENT after revert, got %s", check.State)
	}
}

func TestReconcile_DetectsMissingApplication(t *testing.T) {
	pool := setupSyncTestDB(t)
	defer pool.Close()
	purchases, _ := newTestServices(pool)
	reconcile := core.NewReconcileService(pool)
	ctx := context.Background()

	p := createTestPurchase(t, ctx, purchases, []core.PurchaseLineInput{
		{IngredientID: testTepung, Quantity: d(100), UnitPrice: d(2000)},
	})
	if err := purchases.SetStatus(ctx, p.ID, core.StatusCompleted); err != nil {
		t.Fatalf("Completion failed: %v", err)
	}

	// Simulate drift from an outside writer: the movement trail loses
	// the application record.
	if _, err := pool.Exec(ctx, "DELETE FROM stock_movements WHERE purchase_id = $1", p.ID); err != nil {
		t.Fatalf("Failed to tamper with movements: %v", err)
	}

	check, err := reconcile.CheckPurchase(ctx, p.ID)
	if err != nil {
		t.Fatalf("CheckPurchase failed: %v", err)
	}
	if check.State != core.SyncCompletedNotApplied {
		t.Errorf("Expected COMPLETED_BUT_NOT_APPLIED, got %s", check.State)
	}
	if len(check.Mismatches) != 1 || check.Mismatches[0].IngredientID != testTepung {
		t.Errorf("Expected one mismatch on tepung, got %v", check.Mismatches)
	}
}

func TestReconcile_DetectsStaleApplication(t *testing.T) {
	pool := setupSyncTestDB(t)
	defer pool.Close()
	purchases, _ := newTestServices(pool)
	reconcile := core.NewReconcileService(pool)
	ctx := context.Background()

	p := createTestPurchase(t, ctx, purchases, []core.PurchaseLineInput{
		{IngredientID: testTepung, Quantity: d(100), UnitPrice: d(2000)},
	})
	if err := purchases.SetStatus(ctx, p.ID, core.StatusCompleted); err != nil {
		t.Fatalf("Completion failed: %v", err)
	}

	// Outside writer flips the status back without reverting.
	if _, err := pool.Exec(ctx, "UPDATE purchases SET status = 'pending' WHERE id = $1", p.ID); err != nil {
		t.Fatalf("Failed to tamper with status: %v", err)
	}

	check, err := reconcile.CheckPurchase(ctx, p.ID)
	if err != nil {
		t.Fatalf("CheckPurchase failed: %v", err)
	}
	if check.State != core.SyncAppliedNotCompleted {
		t.Errorf("Expected APPLIED_BUT_NOT_COMPLETED, got %s", check.State)
	}
}

func TestReconcile_RebuildDetectsAndFixesDrift(t *testing.T) {
	pool := setupSyncTestDB(t)
	defer pool.Close()
	purchases, warehouse := newTestServices(pool)
	reconcile := core.NewReconcileService(pool)
	ctx := context.Background()

	// Build a real history on gula: purchase, partial consumption.
	p := createTestPurchase(t, ctx, purchases, []core.PurchaseLineInput{
		{IngredientID: testGula, Quantity: d(100), UnitPrice: d(5000)},
	})
	if err := purchases.SetStatus(ctx, p.ID, core.StatusCompleted); err != nil {
		t.Fatalf("Completion failed: %v", err)
	}
	if _, err := warehouse.DeductForOrder(ctx, "ORDER-9", []core.FulfillmentLine{
		{IngredientID: testGula, Quantity: d(40)},
	}); err != nil {
		t.Fatalf("DeductForOrder failed: %v", err)
	}

	// No drift yet: replay matches the stored state.
	rebuild, err := reconcile.RebuildIngredient(ctx, testGula, false)
	if err != nil {
		t.Fatalf("RebuildIngredient failed: %v", err)
	}
	if rebuild.Drifted {
		t.Errorf("Expected no drift, got stored (%s, %s) vs computed (%s, %s)",
			rebuild.StoredStock, rebuild.StoredWAC, rebuild.ComputedStock, rebuild.ComputedWAC)
	}
	if rebuild.MovementsSeen != 2 {
		t.Errorf("Expected 2 movements replayed, got %d", rebuild.MovementsSeen)
	}

	// Corrupt the stored state directly, bypassing the engine.
	if _, err := pool.Exec(ctx,
		"UPDATE ingredients SET current_stock = 999, weighted_average_cost = 1 WHERE id = $1",
		testGula); err != nil {
		t.Fatalf("Failed to corrupt ingredient: %v", err)
	}

	// Dry run reports the drift without writing.
	rebuild, err = reconcile.RebuildIngredient(ctx, testGula, false)
	if err != nil {
		t.Fatalf("RebuildIngredient dry run failed: %v", err)
	}
	if !rebuild.Drifted || rebuild.Fixed {
		t.Errorf("Expected drifted=true, fixed=false; got drifted=%v, fixed=%v", rebuild.Drifted, rebuild.Fixed)
	}
	stock, _ := costState(t, ctx, warehouse, testGula)
	if !stock.Equal(d(999)) {
		t.Errorf("Dry run must not write; expected stock still 999, got %s", stock)
	}

	// Fix writes the replayed state back: 100 bought - 40 consumed = 60 @ 5000.
	rebuild, err = reconcile.RebuildIngredient(ctx, testGula, true)
	if err != nil {
		t.Fatalf("RebuildIngredient fix failed: %v", err)
	}
	if !rebuild.Fixed {
		t.Error("Expected fixed=true")
	}
	stock, wac := costState(t, ctx, warehouse, testGula)
	if !stock.Equal(d(60)) {
		t.Errorf("Expected rebuilt stock=60, got %s", stock)
	}
	if !wac.Equal(d(5000)) {
		t.Errorf("Expected rebuilt WAC=5000, got %s", wac)
	}
}
