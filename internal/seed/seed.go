package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type userSeed struct {
	Email string
	Role  string
}

type productSeed struct {
	SKU        string
	Name       string
	PriceCents int64
}

type stockSeed struct {
	SKU           string
	WarehouseCode string
	OnHand        int
	Threshold     int
}

// Apply inserts basic seed data for manual testing. It is idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	users := []userSeed{
		{Email: "admin@example.com", Role: "ADMIN"},
		{Email: "alice@example.com", Role: "CUSTOMER"},
		{Email: "bob@example.com", Role: "CUSTOMER"},
	}
	for _, u := range users {
		if err := upsertUser(ctx, pool, u); err != nil {
			return fmt.Errorf("upsert user %s: %w", u.Email, err)
		}
	}

	warehouses := map[string]string{
		"WH-MAIN": "Main Warehouse",
		"WH-EAST": "East Warehouse",
	}
	for code, name := range warehouses {
		if err := upsertWarehouse(ctx, pool, code, name); err != nil {
			return fmt.Errorf("upsert warehouse %s: %w", code, err)
		}
	}

	products := []productSeed{
		{SKU: "SKU-DEMO-TSHIRT", Name: "Demo T-Shirt", PriceCents: 1999},
		{SKU: "SKU-DEMO-MUG", Name: "Demo Mug", PriceCents: 1299},
		{SKU: "SKU-DEMO-POSTER", Name: "Demo Poster", PriceCents: 899},
	}
	for _, p := range products {
		if err := upsertProduct(ctx, pool, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.SKU, err)
		}
	}

	stock := []stockSeed{
		{SKU: "SKU-DEMO-TSHIRT", WarehouseCode: "WH-MAIN", OnHand: 120, Threshold: 20},
		{SKU: "SKU-DEMO-MUG", WarehouseCode: "WH-MAIN", OnHand: 60, Threshold: 10},
		{SKU: "SKU-DEMO-MUG", WarehouseCode: "WH-EAST", OnHand: 15, Threshold: 10},
		{SKU: "SKU-DEMO-POSTER", WarehouseCode: "WH-EAST", OnHand: 200, Threshold: 25},
	}
	for _, s := range stock {
		if err := upsertStock(ctx, pool, s); err != nil {
			return fmt.Errorf("upsert stock %s@%s: %w", s.SKU, s.WarehouseCode, err)
		}
	}

	return nil
}

func upsertUser(ctx context.Context, pool *pgxpool.Pool, u userSeed) error {
	const q = `
INSERT INTO users (email, role)
VALUES ($1, $2)
ON CONFLICT (email) DO UPDATE SET role = EXCLUDED.role
`
	_, err := pool.Exec(ctx, q, u.Email, u.Role)
	return err
}

func upsertWarehouse(ctx context.Context, pool *pgxpool.Pool, code, name string) error {
	const q = `
INSERT INTO warehouses (code, name)
VALUES ($1, $2)
ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name
`
	_, err := pool.Exec(ctx, q, code, name)
	return err
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, p productSeed) error {
	const q = `
INSERT INTO products (sku, name, price_cents)
VALUES ($1, $2, $3)
ON CONFLICT (sku) DO UPDATE
SET name = EXCLUDED.name,
    price_cents = EXCLUDED.price_cents
`
	_, err := pool.Exec(ctx, q, p.SKU, p.Name, p.PriceCents)
	return err
}

// upsertStock sets on-hand levels directly without ledger entries; seed data
// predates any movement history by definition.
func upsertStock(ctx context.Context, pool *pgxpool.Pool, s stockSeed) error {
	const q = `
INSERT INTO inventory (product_id, warehouse_id, quantity_on_hand, low_stock_threshold)
SELECT p.id, w.id, $3, $4
FROM products p, warehouses w
WHERE p.sku = $1 AND w.code = $2
ON CONFLICT (product_id, warehouse_id) DO UPDATE
SET quantity_on_hand = EXCLUDED.quantity_on_hand,
    low_stock_threshold = EXCLUDED.low_stock_threshold
`
	_, err := pool.Exec(ctx, q, s.SKU, s.WarehouseCode, s.OnHand, s.Threshold)
	return err
}
