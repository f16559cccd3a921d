package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/monifinebakery/BISMILLAH-sub018/internal/app"
	"github.com/monifinebakery/BISMILLAH-sub018/internal/core"
)

// Run executes a one-shot CLI command and exits.
// args is os.Args[1:] — the first element is the subcommand name.
func Run(ctx context.Context, svc app.ApplicationService, args []string) {
	switch args[0] {
	case "purchases", "pur", "p":
		status := ""
		if len(args) > 1 {
			status = args[1]
		}
		result, err := svc.ListPurchases(ctx, status)
		if err != nil {
			log.Fatalf("Failed to list purchases: %v", err)
		}
		printPurchases(result)

	case "complete":
		requireRef(args, "Usage: app complete <purchase-id>")
		setStatus(ctx, svc, args[1], "completed")

	case "revert":
		requireRef(args, "Usage: app revert <purchase-id>")
		setStatus(ctx, svc, args[1], "pending")

	case "cancel":
		requireRef(args, "Usage: app cancel <purchase-id>")
		setStatus(ctx, svc, args[1], "cancelled")

	case "stock", "s":
		result, err := svc.ListIngredients(ctx)
		if err != nil {
			log.Fatalf("Failed to list ingredients: %v", err)
		}
		printStock(result)

	case "low-stock", "low":
		result, err := svc.ListLowStock(ctx)
		if err != nil {
			log.Fatalf("Failed to list low-stock ingredients: %v", err)
		}
		printStock(result)

	case "movements", "mov":
		requireRef(args, "Usage: app movements <ingredient-id>")
		result, err := svc.GetMovements(ctx, args[1])
		if err != nil {
			log.Fatalf("Failed to fetch movements: %v", err)
		}
		printMovements(result)

	case "valuation", "val":
		report, err := svc.StockValuation(ctx)
		if err != nil {
			log.Fatalf("Failed to compute valuation: %v", err)
		}
		printValuation(report)

	case "reconcile":
		requireRef(args, "Usage: app reconcile <purchase-id>")
		check, err := svc.CheckPurchase(ctx, args[1])
		if err != nil {
			log.Fatalf("Reconciliation failed: %v", err)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(check)

	case "rebuild":
		requireRef(args, "Usage: app rebuild <ingredient-id> [--fix]")
		fix := len(args) > 2 && args[2] == "--fix"
		rebuild, err := svc.RebuildIngredient(ctx, args[1], fix)
		if err != nil {
			log.Fatalf("Rebuild failed: %v", err)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(rebuild)

	default:
		log.Fatalf("Unknown command: %s\nAvailable: purchases, complete, revert, cancel, stock, low-stock, movements, valuation, reconcile, rebuild", args[0])
	}
}

func requireRef(args []string, usage string) {
	if len(args) < 2 {
		log.Fatal(usage)
	}
}

func setStatus(ctx context.Context, svc app.ApplicationService, id, status string) {
	result, err := svc.SetPurchaseStatus(ctx, id, status)
	if err != nil {
		log.Fatalf("Status change failed: %v", err)
	}
	p := result.Purchase
	fmt.Printf("Purchase %s is now %s (total %s).\n", p.ID, p.Status, p.TotalValue.StringFixed(2))
}

func printPurchases(result *app.PurchaseListResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 86))
	fmt.Printf("  %-58s\n", "PURCHASES")
	fmt.Println(strings.Repeat("=", 86))
	fmt.Printf("  %-38s %-20s %-10s %14s\n", "ID", "SUPPLIER", "STATUS", "TOTAL")
	fmt.Println(strings.Repeat("-", 86))
	for _, p := range result.Purchases {
		fmt.Printf("  %-38s %-20s %-10s %14s\n", p.ID, p.SupplierName, p.Status, p.TotalValue.StringFixed(2))
	}
	fmt.Println(strings.Repeat("=", 86))
}

func printStock(result *app.IngredientListResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 92))
	fmt.Printf("  %-58s\n", "WAREHOUSE STOCK")
	fmt.Println(strings.Repeat("=", 92))
	fmt.Printf("  %-30s %-8s %14s %16s %14s\n", "NAME", "UNIT", "STOCK", "WAC", "MIN")
	fmt.Println(strings.Repeat("-", 92))
	for _, ing := range result.Ingredients {
		fmt.Printf("  %-30s %-8s %14s %16s %14s\n",
			ing.Name, ing.Unit, ing.CurrentStock.String(),
			ing.WeightedAverageCost.StringFixed(2), ing.MinimumStock.String())
	}
	fmt.Println(strings.Repeat("=", 92))
}

func printMovements(result *app.MovementListResult) {
	fmt.Println()
	fmt.Printf("  Movements for ingredient %s\n", result.IngredientID)
	fmt.Println(strings.Repeat("-", 80))
	fmt.Printf("  %-20s %-18s %14s %16s\n", "WHEN", "TYPE", "QTY", "UNIT PRICE")
	fmt.Println(strings.Repeat("-", 80))
	for _, m := range result.Movements {
		fmt.Printf("  %-20s %-18s %14s %16s\n",
			m.CreatedAt.Format("2006-01-02 15:04:05"), m.Type, m.Quantity.String(), m.UnitPrice.StringFixed(2))
	}
	fmt.Println(strings.Repeat("-", 80))
}

func printValuation(report *core.StockValuation) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("  %-58s\n", "STOCK VALUATION")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("  %-30s %14s %14s %16s\n", "NAME", "STOCK", "WAC", "VALUE")
	fmt.Println(strings.Repeat("-", 80))
	for _, v := range report.Ingredients {
		fmt.Printf("  %-30s %14s %14s %16s\n",
			v.Name, v.Stock.String(), v.WAC.StringFixed(2), v.Value.StringFixed(2))
	}
	fmt.Println(strings.Repeat("-", 80))
	for _, c := range report.Categories {
		fmt.Printf("  %-30s %46s\n", c.Category, c.Value.StringFixed(2))
	}
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("  %-30s %46s\n", "TOTAL", report.TotalValue.StringFixed(2))
	fmt.Println(strings.Repeat("=", 80))
}
