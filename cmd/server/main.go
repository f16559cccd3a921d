package main

import (
	"context"
	"log"
	"net/http"
	"os"

	webAdapter "github.com/monifinebakery/BISMILLAH-sub018/internal/adapters/web"
	"github.com/monifinebakery/BISMILLAH-sub018/internal/app"
	"github.com/monifinebakery/BISMILLAH-sub018/internal/core"
	"github.com/monifinebakery/BISMILLAH-sub018/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

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

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	handler := webAdapter.NewHandler(svc, allowedOrigins)

	log.Printf("server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
