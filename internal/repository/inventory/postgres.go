package inventory

import (
	"context"
	"errors"
	"io"
	"log"

	"retail-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) AddStock(ctx context.Context, in MutationInput) (*domain.InventoryRecord, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	id, _, err := lockRecord(ctx, tx, in.ProductID, in.WarehouseID)
	if err != nil {
		return nil, err
	}
	if id == 0 {
		id, err = insertRecord(ctx, tx, in.ProductID, in.WarehouseID, in.Quantity)
	} else {
		_, err = tx.Exec(ctx, `
UPDATE inventory
SET quantity_on_hand = quantity_on_hand + $1, updated_at = now()
WHERE id = $2
`, in.Quantity, id)
	}
	if err != nil {
		return nil, err
	}

	if err := appendMovement(ctx, tx, in, domain.MovementReceived, in.Quantity); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Printf("inventory repo: add product_id=%d warehouse_id=%d qty=%d", in.ProductID, in.WarehouseID, in.Quantity)
	return r.getRecord(ctx, in.ProductID, in.WarehouseID)
}

func (r *postgresRepo) AdjustStock(ctx context.Context, in MutationInput) (*domain.InventoryRecord, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	id, onHand, err := lockRecord(ctx, tx, in.ProductID, in.WarehouseID)
	if err != nil {
		return nil, err
	}
	if id == 0 {
		if id, err = insertRecord(ctx, tx, in.ProductID, in.WarehouseID, 0); err != nil {
			return nil, err
		}
		onHand = 0
	}

	// Destructive adjustments clamp at zero instead of erroring.
	newQty := onHand + in.Quantity
	if newQty < 0 {
		newQty = 0
	}
	if _, err := tx.Exec(ctx, `
UPDATE inventory
SET quantity_on_hand = $1, updated_at = now()
WHERE id = $2
`, newQty, id); err != nil {
		return nil, err
	}

	movementType := domain.MovementAdjustmentAdd
	magnitude := in.Quantity
	if in.Quantity < 0 {
		movementType = domain.MovementAdjustmentSubtract
		magnitude = -in.Quantity
	}
	// The ledger records the requested magnitude, not the clamped effect.
	if err := appendMovement(ctx, tx, in, movementType, magnitude); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Printf("inventory repo: adjust product_id=%d warehouse_id=%d delta=%d new=%d", in.ProductID, in.WarehouseID, in.Quantity, newQty)
	return r.getRecord(ctx, in.ProductID, in.WarehouseID)
}

func (r *postgresRepo) SetThreshold(ctx context.Context, productID, warehouseID int64, threshold int) (*domain.InventoryRecord, error) {
	const q = `
INSERT INTO inventory (product_id, warehouse_id, quantity_on_hand, low_stock_threshold)
VALUES ($1, $2, 0, $3)
ON CONFLICT (product_id, warehouse_id)
DO UPDATE SET low_stock_threshold = EXCLUDED.low_stock_threshold, updated_at = now()
`
	if _, err := r.pool.Exec(ctx, q, productID, warehouseID, threshold); err != nil {
		return nil, err
	}
	return r.getRecord(ctx, productID, warehouseID)
}

const recordColumns = `
i.id, i.product_id, i.warehouse_id, i.quantity_on_hand, i.low_stock_threshold, i.updated_at,
p.name, p.sku, w.code`

func (r *postgresRepo) GetByProduct(ctx context.Context, productID int64) ([]domain.InventoryRecord, error) {
	const q = `
SELECT ` + recordColumns + `
FROM inventory i
JOIN products p ON p.id = i.product_id
JOIN warehouses w ON w.id = i.warehouse_id
WHERE i.product_id = $1
ORDER BY i.warehouse_id ASC
`
	return r.queryRecords(ctx, q, productID)
}

func (r *postgresRepo) GetByWarehouse(ctx context.Context, warehouseID int64, lowStockOnly bool) ([]domain.InventoryRecord, error) {
	q := `
SELECT ` + recordColumns + `
FROM inventory i
JOIN products p ON p.id = i.product_id
JOIN warehouses w ON w.id = i.warehouse_id
WHERE i.warehouse_id = $1
`
	if lowStockOnly {
		q += `AND i.quantity_on_hand <= i.low_stock_threshold AND i.low_stock_threshold > 0
`
	}
	q += `ORDER BY i.product_id ASC`
	return r.queryRecords(ctx, q, warehouseID)
}

func (r *postgresRepo) Movements(ctx context.Context, productID int64, page, pageSize int) ([]domain.StockMovement, error) {
	if page < 1 {
		page = 1
	}
	const q = `
SELECT id, product_id, warehouse_id, movement_type, quantity, reference_type, reference_id, notes, created_by, created_at
FROM inventory_movements
WHERE product_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3
`
	rows, err := r.pool.Query(ctx, q, productID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StockMovement
	for rows.Next() {
		var m domain.StockMovement
		if err := rows.Scan(
			&m.ID,
			&m.ProductID,
			&m.WarehouseID,
			&m.MovementType,
			&m.Quantity,
			&m.ReferenceType,
			&m.ReferenceID,
			&m.Notes,
			&m.CreatedBy,
			&m.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) Stats(ctx context.Context) (*domain.InventoryStats, error) {
	const q = `
SELECT
	(SELECT COUNT(*) FROM inventory),
	(SELECT COALESCE(SUM(quantity_on_hand), 0) FROM inventory),
	(SELECT COUNT(*) FROM inventory WHERE quantity_on_hand <= low_stock_threshold AND low_stock_threshold > 0),
	(SELECT COUNT(*) FROM inventory_movements)
`
	var stats domain.InventoryStats
	if err := r.pool.QueryRow(ctx, q).Scan(
		&stats.TotalRecords,
		&stats.TotalOnHand,
		&stats.LowStockCount,
		&stats.MovementCount,
	); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *postgresRepo) getRecord(ctx context.Context, productID, warehouseID int64) (*domain.InventoryRecord, error) {
	const q = `
SELECT ` + recordColumns + `
FROM inventory i
JOIN products p ON p.id = i.product_id
JOIN warehouses w ON w.id = i.warehouse_id
WHERE i.product_id = $1 AND i.warehouse_id = $2
`
	var rec domain.InventoryRecord
	err := r.pool.QueryRow(ctx, q, productID, warehouseID).Scan(
		&rec.ID,
		&rec.ProductID,
		&rec.WarehouseID,
		&rec.QuantityOnHand,
		&rec.LowStockThreshold,
		&rec.UpdatedAt,
		&rec.ProductName,
		&rec.ProductSKU,
		&rec.WarehouseCode,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (r *postgresRepo) queryRecords(ctx context.Context, q string, args ...interface{}) ([]domain.InventoryRecord, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Printf("inventory repo: query error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.InventoryRecord
	for rows.Next() {
		var rec domain.InventoryRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.ProductID,
			&rec.WarehouseID,
			&rec.QuantityOnHand,
			&rec.LowStockThreshold,
			&rec.UpdatedAt,
			&rec.ProductName,
			&rec.ProductSKU,
			&rec.WarehouseCode,
		); err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// lockRecord takes a row lock on the (product, warehouse) record so that
// concurrent writers to the same pair serialize. Returns id 0 when absent.
func lockRecord(ctx context.Context, tx pgx.Tx, productID, warehouseID int64) (int64, int, error) {
	var id int64
	var onHand int
	err := tx.QueryRow(ctx, `
SELECT id, quantity_on_hand
FROM inventory
WHERE product_id = $1 AND warehouse_id = $2
FOR UPDATE
`, productID, warehouseID).Scan(&id, &onHand)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, 0, nil
		}
		return 0, 0, err
	}
	return id, onHand, nil
}

func insertRecord(ctx context.Context, tx pgx.Tx, productID, warehouseID int64, quantity int) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx, `
INSERT INTO inventory (product_id, warehouse_id, quantity_on_hand)
VALUES ($1, $2, $3)
RETURNING id
`, productID, warehouseID, quantity).Scan(&id)
	return id, err
}

func appendMovement(ctx context.Context, tx pgx.Tx, in MutationInput, movementType domain.MovementType, quantity int) error {
	_, err := tx.Exec(ctx, `
INSERT INTO inventory_movements (product_id, warehouse_id, movement_type, quantity, reference_type, reference_id, notes, created_by)
VALUES ($1, $2, $3, $4, '', 0, $5, $6)
`, in.ProductID, in.WarehouseID, movementType, quantity, in.Notes, in.ActorID)
	return err
}
