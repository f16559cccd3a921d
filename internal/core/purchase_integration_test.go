package core_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/monifinebakery/BISMILLAH-sub018/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	testSupplier = "a0000000-0000-4000-8000-000000000001"
	testTepung   = "b0000000-0000-4000-8000-000000000001" // 100 kg @ WAC 1000
	testGula     = "b0000000-0000-4000-8000-000000000002" // empty
	testMentega  = "b0000000-0000-4000-8000-000000000003" // 50 kg @ WAC 20000
)

func setupSyncTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	// Set TEST_DATABASE_URL in your .env or environment to run integration tests.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE stock_movements, purchase_items, purchases, ingredients, suppliers CASCADE;

		INSERT INTO suppliers (id, name, contact)
		VALUES ('`+testSupplier+`', 'Toko Bahan Test', 'Ibu Rina');

		INSERT INTO ingredients (id, name, category, unit, current_stock, weighted_average_cost, minimum_stock)
		VALUES
		('`+testTepung+`',  'Tepung Terigu', 'Dry Goods', 'kg', 100, 1000,  25),
		('`+testGula+`',    'Gula Pasir',    'Dry Goods', 'kg', 0,   0,     15),
		('`+testMentega+`', 'Mentega',       'Dairy',     'kg', 50,  20000, 10);
	`)
	if err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}

	return pool
}

func newTestServices(pool *pgxpool.Pool) (core.PurchaseService, core.WarehouseService) {
	warehouse := core.NewWarehouseService(pool)
	return core.NewPurchaseService(pool, warehouse), warehouse
}

// costState fetches (current_stock, weighted_average_cost) for an ingredient.
func costState(t *testing.T, ctx context.Context, warehouse core.WarehouseService, id string) (stock, wac decimal.Decimal) {
	t.Helper()
	ing, err := warehouse.GetIngredient(ctx, id)
	if err != nil {
		t.Fatalf("GetIngredient %s failed: %v", id, err)
	}
	return ing.CurrentStock, ing.WeightedAverageCost
}

func createTestPurchase(t *testing.T, ctx context.Context, purchases core.PurchaseService, items []core.PurchaseLineInput) *core.Purchase {
	t.Helper()
	p, err := purchases.CreatePurchase(ctx, testSupplier, items, core.CalculationAverage, "")
	if err != nil {
		t.Fatalf("CreatePurchase failed: %v", err)
	}
	if p.Status != core.StatusPending {
		t.Fatalf("Expected new purchase to be pending, got %s", p.Status)
	}
	return p
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestPurchase_CompleteAppliesStockAndWAC(t *testing.T) {
	pool := setupSyncTestDB(t)
	defer pool.Close()
	purchases, warehouse := newTestServices(pool)
	ctx := context.Background()

	// 100 kg @ 2000 on top of 100 kg @ 1000 → 200 kg @ 1500
	p := createTestPurchase(t, ctx, purchases, []core.PurchaseLineInput{
		{IngredientID: testTepung, Quantity: d(100), UnitPrice: d(2000)},
	})

	if err := purchases.SetStatus(ctx, p.ID, core.StatusCompleted); err != nil {
		t.Fatalf("SetStatus completed failed: %v", err)
	}

	stock, wac := costState(t, ctx, warehouse, testTepung)
	if !stock.Equal(d(200)) {
		t.Errorf("Expected stock=200, got %s", stock)
	}
	if !wac.Equal(d(1500)) {
		t.Errorf("Expected WAC=1500, got %s", wac)
	}

	ing, err := warehouse.GetIngredient(ctx, testTepung)
	if err != nil {
		t.Fatalf("GetIngredient failed: %v", err)
	}
	if !ing.LastUnitPrice.Equal(d(2000)) {
		t.Errorf("Expected last_unit_price=2000, got %s", ing.LastUnitPrice)
	}

	movements, err := warehouse.Movements(ctx, testTepung)
	if err != nil {
		t.Fatalf("Movements failed: %v", err)
	}
	if len(movements) != 1 {
		t.Fatalf("Expected 1 movement, got %d", len(movements))
	}
	if movements[0].Type != core.MovementPurchaseApply || !movements[0].Quantity.Equal(d(100)) {
		t.Errorf("Expected PURCHASE_APPLY of +100, got %s %s", movements[0].Type, movements[0].Quantity)
	}
}

func TestPurchase_CompleteIsIdempotent(t *testing.T) {
	pool := setupSyncTestDB(t)
	defer pool.Close()
	purchases, warehouse := newTestServices(pool)
	ctx := context.Background()

	p := createTestPurchase(t, ctx, purchases, []core.PurchaseLineInput{
		{IngredientID: testTepung, Quantity: d(100), UnitPrice: d(2000)},
	})

	if err := purchases.SetStatus(ctx, p.ID, core.StatusCompleted); err != nil {
		t.Fatalf("First completion failed: %v", err)
	}
	// Second completion must be a no-op, never a double application.
	if err := purchases.SetStatus(ctx, p.ID, core.StatusCompleted); err != nil {
		t.Fatalf("Repeated completion should be a no-op, got %v", err)
	}

	stock, wac := costState(t, ctx, warehouse, testTepung)
	if !stock.Equal(d(200)) {
		t.Errorf("Expected stock=200 after double completion, got %s", stock)
	}
	if !wac.Equal(d(1500)) {
		t.Errorf("Expected WAC=1500 after double completion, got %s", wac)
	}
}

func TestPurchase_RevertRestoresExactState(t *testing.T) {
	pool := setupSyncTestDB(t)
	defer pool.Close()
	purchases, warehouse := newTestServices(pool)
	ctx := context.Background()

	p := createTestPurchase(t, ctx, purchases, []core.PurchaseLineInput{
		{IngredientID: testTepung, Quantity: d(100), UnitPrice: d(2000)},
	})

	if err := purchases.SetStatus(ctx, p.ID, core.StatusCompleted); err != nil {
		t.Fatalf("Completion failed: %v", err)
	}
	if err := purchases.SetStatus(ctx, p.ID, core.StatusPending); err != nil {
		t.Fatalf("Revert to pending failed: %v", err)
	}

	stock, wac := costState(t, ctx, warehouse, testTepung)
	if !stock.Equal(d(100)) {
		t.Errorf("Expected stock restored to 100, got %s", stock)
	}
	if !wac.Equal(d(1000)) {
		t.Errorf("Expected WAC restored to 1000, got %s", wac)
	}

	// The audit trail keeps both sides of the round trip.
	movements, err := warehouse.Movements(ctx, testTepung)
	if err != nil {
		t.Fatalf("Movements failed: %v", err)
	}
	if len(movements) != 2 {
		t.Fatalf("Expected 2 movements (apply + revert), got %d", len(movements))
	}
	if movements[1].Type != core.MovementPurchaseRevert || !movements[1].Quantity.Equal(d(-100)) {
		t.Errorf("Expected PURCHASE_REVERT of -100, got %s %s", movements[1].Type, movements[1].Quantity)
	}
}

func TestPurchase_CancelCompletedRevertsAndBecomesTerminal(t *testing.T) {
	pool := setupSyncTestDB(t)
	defer pool.Close()
	purchases, warehouse := newTestServices(pool)
	ctx := context.Background()

	p := createTestPurchase(t, ctx, purchases, []core.PurchaseLineInput{
		{IngredientID: testMentega, Quantity: d(10), UnitPrice: d(25000)},
	})

	if err := purchases.SetStatus(ctx, p.ID, core.StatusCompleted); err != nil {
		t.Fatalf("Completion failed: %v", err)
	}
	if err := purchases.SetStatus(ctx, p.ID, core.StatusCancelled); err != nil {
		t.Fatalf("Cancellation failed: %v", err)
	}

	stock, wac := costState(t, ctx, warehouse, testMentega)
	if !stock.Equal(d(50)) {
		t.Errorf("Expected stock restored to 50, got %s", stock)
	}
	if !wac.Equal(d(20000)) {
		t.Errorf("Expected WAC restored to 20000, got %s", wac)
	}

	// Cancelled is terminal.
	err := purchases.SetStatus(ctx, p.ID, core.StatusCompleted)
	if !errors.Is(err, core.ErrTerminalStatus) {
		t.Errorf("Expected ErrTerminalStatus reactivating a cancelled purchase, got %v", err)
	}
	err = purchases.SetStatus(ctx, p.ID, core.StatusPending)
	if !errors.Is(err, core.ErrTerminalStatus) {
		t.Errorf("Expected ErrTerminalStatus, got %v", err)
	}
}

func TestPurchase_CancelPendingHasNoWarehouseEffect(t *testing.T) {
	pool := setupSyncTestDB(t)
	defer pool.Close()
	purchases, warehouse := newTestServices(pool)
	ctx := context.Background()

	p := createTestPurchase(t, ctx, purchases, []core.PurchaseLineInput{
		{IngredientID: testTepung, Quantity: d(40), UnitPrice: d(3000)},
	})

	if err := purchases.SetStatus(ctx, p.ID, core.StatusCancelled); err != nil {
		t.Fatalf("Cancelling pending purchase failed: %v", err)
	}

	stock, wac := costState(t, ctx, warehouse, testTepung)
	if !stock.Equal(d(100)) || !wac.Equal(d(1000)) {
		t.Errorf("Expected warehouse untouched (100, 1000), got (%s, %s)", stock, wac)
	}

	movements, err := warehouse.Movements(ctx, testTepung)
	if err != nil {
		t.Fatalf("Movements failed: %v", err)
	}
	if len(movements) != 0 {
		t.Errorf("Expected no movements for a never-applied purchase, got %d", len(movements))
	}
}

func TestPurchase_MultiLineSameIngredientCompounds(t *testing.T) {
	pool := setupSyncTestDB(t)
	defer pool.Close()
	purchases, warehouse := newTestServices(pool)
	ctx := context.Background()

	// Two lines for the same ingredient must fold sequentially:
	// bootstrap 100@2000, then (100×2000 + 100×1000)/200 = 1500.
	p := createTestPurchase(t, ctx, purchases, []core.PurchaseLineInput{
		{IngredientID: testGula, Quantity: d(100), UnitPrice: d(2000)},
		{IngredientID: testGula, Quantity: d(100), UnitPrice: d(1000)},
	})

	if err := purchases.SetStatus(ctx, p.ID, core.StatusCompleted); err != nil {
		t.Fatalf("Completion failed: %v", err)
	}

	stock, wac := costState(t, ctx, warehouse, testGula)
	if !stock.Equal(d(200)) {
		t.Errorf("Expected stock=200, got %s", stock)
	}
	if !wac.Equal(d(1500)) {
		t.Errorf("Expected WAC=1500 from compounded lines, got %s", wac)
	}

	// Round trip: reverting must walk back both lines.
	if err := purchases.SetStatus(ctx, p.ID, core.StatusPending); err != nil {
		t.Fatalf("Revert failed: %v", err)
	}
	stock, wac = costState(t, ctx, warehouse, testGula)
	if !stock.IsZero() || !wac.IsZero() {
		t.Errorf("Expected (0, 0) after full revert, got (%s, %s)", stock, wac)
	}
}

func TestPurchase_ZeroQuantityLineIsSkipped(t *testing.T) {
	pool := setupSyncTestDB(t)
	defer pool.Close()
	purchases, warehouse := newTestServices(pool)
	ctx := context.Background()

	p := createTestPurchase(t, ctx, purchases, []core.PurchaseLineInput{
		{IngredientID: testTepung, Quantity: d(50), UnitPrice: d(2000)},
		{IngredientID: testGula, Quantity: decimal.Zero, UnitPrice: d(5000)},
	})

	if err := purchases.SetStatus(ctx, p.ID, core.StatusCompleted); err != nil {
		t.Fatalf("Completion failed: %v", err)
	}

	stock, wac := costState(t, ctx, warehouse, testGula)
	if !stock.IsZero() || !wac.IsZero() {
		t.Errorf("Expected zero-quantity line to leave gula at (0, 0), got (%s, %s)", stock, wac)
	}
}

func TestPurchase_RevertRejectedWhenStockConsumed(t *testing.T) {
	pool := setupSyncTestDB(t)
	defer pool.Close()
	purchases, warehouse := newTestServices(pool)
	ctx := context.Background()

	// Buy 100 gula, then consume 70 through order fulfillment. Only 30
	// remain, so reverting the 100 must be rejected outright.
	p := createTestPurchase(t, ctx, purchases, []core.PurchaseLineInput{
		{IngredientID: testGula, Quantity: d(100), UnitPrice: d(5000)},
	})
	if err := purchases.SetStatus(ctx, p.ID, core.StatusCompleted); err != nil {
		t.Fatalf("Completion failed: %v", err)
	}

	_, err := warehouse.DeductForOrder(ctx, "ORDER-77", []core.FulfillmentLine{
		{IngredientID: testGula, Quantity: d(70)},
	})
	if err != nil {
		t.Fatalf("DeductForOrder failed: %v", err)
	}

	err = purchases.SetStatus(ctx, p.ID, core.StatusPending)
	if !errors.Is(err, core.ErrInsufficientStockOnReversal) {
		t.Fatalf("Expected ErrInsufficientStockOnReversal, got %v", err)
	}
	var partial *core.PartialSyncError
	if !errors.As(err, &partial) {
		t.Fatalf("Expected PartialSyncError detail, got %T", err)
	}
	if partial.FailedIngredient != testGula {
		t.Errorf("Expected failure attributed to gula, got %s", partial.FailedIngredient)
	}

	// The transition rolled back: the purchase stays completed and the
	// consumed stock is unchanged.
	got, err := purchases.GetPurchase(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPurchase failed: %v", err)
	}
	if got.Status != core.StatusCompleted {
		t.Errorf("Expected purchase to remain completed after failed revert, got %s", got.Status)
	}
	stock, _ := costState(t, ctx, warehouse, testGula)
	if !stock.Equal(d(30)) {
		t.Errorf("Expected stock=30 (unchanged), got %s", stock)
	}
}

func TestPurchase_DeleteCompletedRevertsWarehouse(t *testing.T) {
	pool := setupSyncTestDB(t)
	defer pool.Close()
	purchases, warehouse := newTestServices(pool)
	ctx := context.Background()

	p := createTestPurchase(t, ctx, purchases, []core.PurchaseLineInput{
		{IngredientID: testTepung, Quantity: d(100), UnitPrice: d(2000)},
	})
	if err := purchases.SetStatus(ctx, p.ID, core.StatusCompleted); err != nil {
		t.Fatalf("Completion failed: %v", err)
	}

	if err := purchases.DeletePurchase(ctx, p.ID); err != nil {
		t.Fatalf("DeletePurchase failed: %v", err)
	}

	stock, wac := costState(t, ctx, warehouse, testTepung)
	if !stock.Equal(d(100)) || !wac.Equal(d(1000)) {
		t.Errorf("Expected warehouse restored to (100, 1000), got (%s, %s)", stock, wac)
	}

	if _, err := purchases.GetPurchase(ctx, p.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
}

func TestPurchase_ConcurrentCompletionAppliesOnce(t *testing.T) {
	pool := setupSyncTestDB(t)
	defer pool.Close()
	purchases, warehouse := newTestServices(pool)
	ctx := context.Background()

	p := createTestPurchase(t, ctx, purchases, []core.PurchaseLineInput{
		{IngredientID: testTepung, Quantity: d(100), UnitPrice: d(2000)},
	})

	// Both goroutines race to complete the same purchase. The row lock
	// serializes them; the loser sees status=completed and no-ops.
	var g errgroup.Group
	for i := 0; i < 2; i++ {
		g.Go(func() error {
			return purchases.SetStatus(ctx, p.ID, core.StatusCompleted)
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("Concurrent completion failed: %v", err)
	}

	stock, wac := costState(t, ctx, warehouse, testTepung)
	if !stock.Equal(d(200)) {
		t.Errorf("Expected stock=200 (applied exactly once), got %s", stock)
	}
	if !wac.Equal(d(1500)) {
		t.Errorf("Expected WAC=1500, got %s", wac)
	}
}

func TestPurchase_CreateValidation(t *testing.T) {
	pool := setupSyncTestDB(t)
	defer pool.Close()
	purchases, _ := newTestServices(pool)
	ctx := context.Background()

	// Unknown supplier.
	_, err := purchases.CreatePurchase(ctx, "a0000000-0000-4000-8000-00000000dead",
		[]core.PurchaseLineInput{{IngredientID: testTepung, Quantity: d(1), UnitPrice: d(1)}},
		core.CalculationAverage, "")
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown supplier, got %v", err)
	}

	// Empty lines.
	_, err = purchases.CreatePurchase(ctx, testSupplier, nil, core.CalculationAverage, "")
	if err == nil {
		t.Error("Expected error for empty line items")
	}

	// Negative quantity.
	_, err = purchases.CreatePurchase(ctx, testSupplier,
		[]core.PurchaseLineInput{{IngredientID: testTepung, Quantity: d(-5), UnitPrice: d(100)}},
		core.CalculationAverage, "")
	if err == nil {
		t.Error("Expected error for negative quantity")
	}

	// Unsupported costing method.
	_, err = purchases.CreatePurchase(ctx, testSupplier,
		[]core.PurchaseLineInput{{IngredientID: testTepung, Quantity: d(5), UnitPrice: d(100)}},
		core.CalculationMethod("FIFO"), "")
	if err == nil {
		t.Error("Expected error for unsupported calculation method")
	}
}

func TestPurchase_UpdateOnlyPending(t *testing.T) {
	pool := setupSyncTestDB(t)
	defer pool.Close()
	purchases, _ := newTestServices(pool)
	ctx := context.Background()

	p := createTestPurchase(t, ctx, purchases, []core.PurchaseLineInput{
		{IngredientID: testTepung, Quantity: d(10), UnitPrice: d(2000)},
	})

	updated, err := purchases.UpdatePurchase(ctx, p.ID, testSupplier,
		[]core.PurchaseLineInput{{IngredientID: testTepung, Quantity: d(20), UnitPrice: d(2500)}}, "revised")
	if err != nil {
		t.Fatalf("UpdatePurchase on pending failed: %v", err)
	}
	if !updated.TotalValue.Equal(d(50000)) {
		t.Errorf("Expected total=50000, got %s", updated.TotalValue)
	}

	if err := purchases.SetStatus(ctx, p.ID, core.StatusCompleted); err != nil {
		t.Fatalf("Completion failed: %v", err)
	}
	_, err = purchases.UpdatePurchase(ctx, p.ID, testSupplier,
		[]core.PurchaseLineInput{{IngredientID: testTepung, Quantity: d(5), UnitPrice: d(2500)}}, "")
	if !errors.Is(err, core.ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition editing a completed purchase, got %v", err)
	}
}

func TestPurchase_UpdateValidatesSupplier(t *testing.T) {
	pool := setupSyncTestDB(t)
	defer pool.Close()
	purchases, _ := newTestServices(pool)
	ctx := context.Background()

	p := createTestPurchase(t, ctx, purchases, []core.PurchaseLineInput{
		{IngredientID: testTepung, Quantity: d(10), UnitPrice: d(2000)},
	})
	lines := []core.PurchaseLineInput{{IngredientID: testTepung, Quantity: d(20), UnitPrice: d(2500)}}

	// Unknown supplier surfaces as ErrNotFound, not a foreign key violation.
	_, err := purchases.UpdatePurchase(ctx, p.ID, "a0000000-0000-4000-8000-00000000dead", lines, "")
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Expected ErrNotFound updating to unknown supplier, got %v", err)
	}

	// Inactive suppliers are rejected on update like they are on create.
	suppliers := core.NewSupplierService(pool)
	if err := suppliers.DeactivateSupplier(ctx, testSupplier); err != nil {
		t.Fatalf("DeactivateSupplier failed: %v", err)
	}
	_, err = purchases.UpdatePurchase(ctx, p.ID, testSupplier, lines, "")
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Expected ErrNotFound updating to inactive supplier, got %v", err)
	}
}

func TestPurchase_StatusFilter(t *testing.T) {
	pool := setupSyncTestDB(t)
	defer pool.Close()
	purchases, _ := newTestServices(pool)
	ctx := context.Background()

	p1 := createTestPurchase(t, ctx, purchases, []core.PurchaseLineInput{
		{IngredientID: testTepung, Quantity: d(10), UnitPrice: d(2000)},
	})
	createTestPurchase(t, ctx, purchases, []core.PurchaseLineInput{
		{IngredientID: testGula, Quantity: d(5), UnitPrice: d(5000)},
	})

	if err := purchases.SetStatus(ctx, p1.ID, core.StatusCompleted); err != nil {
		t.Fatalf("Completion failed: %v", err)
	}

	completed, err := purchases.GetPurchases(ctx, core.StatusCompleted)
	if err != nil {
		t.Fatalf("GetPurchases failed: %v", err)
	}
	if len(completed) != 1 || completed[0].ID != p1.ID {
		t.Errorf("Expected exactly p1 in completed filter, got %d purchases", len(completed))
	}

	all, err := purchases.GetPurchases(ctx, "")
	if err != nil {
		t.Fatalf("GetPurchases(all) failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Expected 2 purchases total, got %d", len(all))
	}
}
