package main

import (
	"context"
	"log"
	"os"

	"github.com/monifinebakery/BISMILLAH-sub018/internal/adapters/cli"
	"github.com/monifinebakery/BISMILLAH-sub018/internal/app"
	"github.com/monifinebakery/BISMILLAH-sub018/internal/core"
	"github.com/monifinebakery/BISMILLAH-sub018/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		log.Fatal("Usage: app <command> [args]\nCommands: purchases, complete, revert, cancel, stock, low-stock, movements, valuation, reconcile, rebuild")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	warehouse := core.NewWarehouseService(pool)
	purchases := core.NewPurchaseService(pool, warehouse)
	suppliers := core.NewSupplierService(pool)
	reconcile := core.NewReconcileService(pool)
	reporting := core.NewReportingService(pool)

	svc := app.NewAppService(purchases, warehouse, suppliers, reconcile, reporting)

	cli.Run(ctx, svc, os.Args[1:])
}
