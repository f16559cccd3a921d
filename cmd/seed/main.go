// seed is a one-shot tool that loads demo master data: a few suppliers and
// the bakery's core ingredient list, with zero stock and zero cost. Run it
// after migrations on a fresh database.
//
// Usage: go run ./cmd/seed
package main

import (
	"context"
	"log"

	"github.com/monifinebakery/BISMILLAH-sub018/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	log.Println("Seeding suppliers...")
	_, err = tx.Exec(ctx, `
		INSERT INTO suppliers (name, contact, phone, address)
		VALUES
		  ('Toko Bahan Sejahtera', 'Ibu Rina',  '0812-3456-7890', 'Jl. Pasar Baru 12'),
		  ('CV Sumber Tepung',     'Pak Dedi',  '0813-9876-5432', 'Jl. Industri 4'),
		  ('UD Gula Manis',        NULL,        NULL,             NULL)
		ON CONFLICT DO NOTHING;
	`)
	if err != nil {
		log.Fatalf("Failed to seed suppliers: %v", err)
	}

	log.Println("Seeding ingredients...")
	_, err = tx.Exec(ctx, `
		INSERT INTO ingredients (name, category, unit, minimum_stock)
		VALUES
		  ('Tepung Terigu',     'Dry Goods', 'kg',   25),
		  ('Gula Pasir',        'Dry Goods', 'kg',   15),
		  ('Mentega',           'Dairy',     'kg',   10),
		  ('Telur',             'Dairy',     'butir', 60),
		  ('Ragi Instan',       'Dry Goods', 'gram', 500),
		  ('Cokelat Bubuk',     'Dry Goods', 'kg',   5),
		  ('Susu Cair',         'Dairy',     'liter', 10),
		  ('Keju Cheddar',      'Dairy',     'kg',   3)
		ON CONFLICT DO NOTHING;
	`)
	if err != nil {
		log.Fatalf("Failed to seed ingredients: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("Failed to commit: %v", err)
	}

	log.Println("Seed data loaded.")
}
