package order

import (
	"context"
	"errors"
	"fmt"
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

func (r *postgresRepo) Create(ctx context.Context, in CreateInput) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Lock the cart lines so a concurrent checkout of the same cart cannot
	// consume them twice. Lines whose product went inactive are skipped.
	rows, err := tx.Query(ctx, `
SELECT c.id, c.product_id, c.quantity, p.price_cents
FROM shopping_carts c
JOIN products p ON p.id = c.product_id
WHERE c.user_id = $1 AND NOT c.saved_for_later AND p.active
ORDER BY c.id
FOR UPDATE OF c
`, in.UserID)
	if err != nil {
		return nil, err
	}

	type consumedLine struct {
		cartLineID int64
		productID  int64
		quantity   int
		priceCents int64
	}
	var lines []consumedLine
	for rows.Next() {
		var l consumedLine
		if err := rows.Scan(&l.cartLineID, &l.productID, &l.quantity, &l.priceCents); err != nil {
			rows.Close()
			return nil, err
		}
		lines = append(lines, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, domain.ErrEmptyCart
	}

	var subtotal int64
	for _, l := range lines {
		subtotal += l.priceCents * int64(l.quantity)
	}
	tax := subtotal * in.TaxRateBps / 10000
	total := subtotal + tax

	var orderID int64
	if err := tx.QueryRow(ctx, `
INSERT INTO orders (user_id, order_number, status, total_cents, tax_cents, shipping_address, delivery_phone, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id
`, in.UserID, in.OrderNumber, domain.StatusPending, total, tax, in.ShippingAddress, in.DeliveryPhone, in.Notes).Scan(&orderID); err != nil {
		return nil, err
	}

	for _, l := range lines {
		if _, err := tx.Exec(ctx, `
INSERT INTO order_items (order_id, product_id, quantity, unit_price_cents, total_cents)
VALUES ($1, $2, $3, $4, $5)
`, orderID, l.productID, l.quantity, l.priceCents, l.priceCents*int64(l.quantity)); err != nil {
			return nil, err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM shopping_carts WHERE id = $1`, l.cartLineID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Printf("order repo: created id=%d number=%s user_id=%d total=%d lines=%d", orderID, in.OrderNumber, in.UserID, total, len(lines))
	return r.GetByID(ctx, orderID)
}

const orderColumns = `
o.id, o.user_id, o.order_number, o.status, o.total_cents, o.tax_cents,
o.shipping_address, o.delivery_phone, o.notes, o.created_at, o.updated_at, u.email`

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	const q = `
SELECT ` + orderColumns + `
FROM orders o
JOIN users u ON u.id = o.user_id
WHERE o.id = $1
`
	var o domain.Order
	if err := r.pool.QueryRow(ctx, q, id).Scan(
		&o.ID,
		&o.UserID,
		&o.OrderNumber,
		&o.Status,
		&o.TotalCents,
		&o.TaxCents,
		&o.ShippingAddress,
		&o.DeliveryPhone,
		&o.Notes,
		&o.CreatedAt,
		&o.UpdatedAt,
		&o.UserEmail,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	lines, err := r.fetchLines(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Lines = lines
	return &o, nil
}

func (r *postgresRepo) List(ctx context.Context, f ListFilter) ([]domain.Order, error) {
	q := `
SELECT ` + orderColumns + `
FROM orders o
JOIN users u ON u.id = o.user_id
WHERE 1=1`
	var args []interface{}
	if f.Status != "" {
		args = append(args, f.Status)
		q += fmt.Sprintf(" AND o.status = $%d", len(args))
	}
	if f.UserID != 0 {
		args = append(args, f.UserID)
		q += fmt.Sprintf(" AND o.user_id = $%d", len(args))
	}
	if !f.From.IsZero() {
		args = append(args, f.From)
		q += fmt.Sprintf(" AND o.created_at >= $%d", len(args))
	}
	if !f.To.IsZero() {
		args = append(args, f.To)
		q += fmt.Sprintf(" AND o.created_at < $%d", len(args))
	}
	q += " ORDER BY o.created_at DESC, o.id DESC"

	page := f.Page
	if page < 1 {
		page = 1
	}
	pageSize := f.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	args = append(args, pageSize)
	q += fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, (page-1)*pageSize)
	q += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Printf("order repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(
			&o.ID,
			&o.UserID,
			&o.OrderNumber,
			&o.Status,
			&o.TotalCents,
			&o.TaxCents,
			&o.ShippingAddress,
			&o.DeliveryPhone,
			&o.Notes,
			&o.CreatedAt,
			&o.UpdatedAt,
			&o.UserEmail,
		); err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error) {
	cmd, err := r.pool.Exec(ctx, `
UPDATE orders
SET status = $1, updated_at = now()
WHERE id = $2 AND status NOT IN ($3, $4)
`, status, id, domain.StatusDelivered, domain.StatusCancelled)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		// Distinguish missing from terminal.
		var current domain.OrderStatus
		err := r.pool.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1`, id).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if err != nil {
			return nil, err
		}
		return nil, domain.ErrInvalidState
	}
	return r.GetByID(ctx, id)
}

func (r *postgresRepo) Cancel(ctx context.Context, id int64, actorID int64) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var status domain.OrderStatus
	err = tx.QueryRow(ctx, `
SELECT status
FROM orders
WHERE id = $1
FOR UPDATE
`, id).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if status.Terminal() {
		return nil, domain.ErrInvalidState
	}

	lines, err := r.fetchLinesTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	for _, line := range lines {
		warehouseID, err := restoreStock(ctx, tx, line.ProductID, line.Quantity)
		if err != nil {
			return nil, err
		}
		if _, err := tx.Exec(ctx, `
INSERT INTO inventory_movements (product_id, warehouse_id, movement_type, quantity, reference_type, reference_id, notes, created_by)
VALUES ($1, $2, $3, $4, 'order', $5, '', $6)
`, line.ProductID, warehouseID, domain.MovementOrderRestore, line.Quantity, id, actorID); err != nil {
			return nil, err
		}
	}

	if _, err := tx.Exec(ctx, `
UPDATE orders
SET status = $1, updated_at = now()
WHERE id = $2
`, domain.StatusCancelled, id); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Printf("order repo: cancelled id=%d lines_restored=%d", id, len(lines))
	return r.GetByID(ctx, id)
}

func (r *postgresRepo) Stats(ctx context.Context) (*domain.OrderStats, error) {
	stats := &domain.OrderStats{CountsByStatus: map[domain.OrderStatus]int64{}}

	rows, err := r.pool.Query(ctx, `
SELECT status, COUNT(*)
FROM orders
GROUP BY status
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var status domain.OrderStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.CountsByStatus[status] = count
		stats.TotalOrders += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var counted int64
	if err := r.pool.QueryRow(ctx, `
SELECT COALESCE(SUM(total_cents), 0), COUNT(*)
FROM orders
WHERE status <> $1
`, domain.StatusCancelled).Scan(&stats.RevenueCents, &counted); err != nil {
		return nil, err
	}
	if counted > 0 {
		stats.AvgOrderCents = stats.RevenueCents / counted
	}
	return stats, nil
}

func (r *postgresRepo) fetchLines(ctx context.Context, orderID int64) ([]domain.OrderLine, error) {
	return fetchLinesQuerier(ctx, r.pool, orderID)
}

func (r *postgresRepo) fetchLinesTx(ctx context.Context, tx pgx.Tx, orderID int64) ([]domain.OrderLine, error) {
	return fetchLinesQuerier(ctx, tx, orderID)
}

type querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

func fetchLinesQuerier(ctx context.Context, q querier, orderID int64) ([]domain.OrderLine, error) {
	rows, err := q.Query(ctx, `
SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.unit_price_cents, oi.total_cents, p.name, p.sku
FROM order_items oi
JOIN products p ON p.id = oi.product_id
WHERE oi.order_id = $1
ORDER BY oi.id ASC
`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.OrderLine
	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(
			&line.ID,
			&line.OrderID,
			&line.ProductID,
			&line.Quantity,
			&line.UnitPriceCents,
			&line.TotalCents,
			&line.ProductName,
			&line.ProductSKU,
		); err != nil {
			return nil, err
		}
		result = append(result, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// restoreStock locks the product's inventory row and adds the quantity back.
// Orders do not record a warehouse per line, so restoration targets the
// product's lowest-numbered inventory record, falling back to the
// lowest-numbered warehouse when the product has no record yet.
func restoreStock(ctx context.Context, tx pgx.Tx, productID int64, quantity int) (int64, error) {
	var recordID, warehouseID int64
	err := tx.QueryRow(ctx, `
SELECT id, warehouse_id
FROM inventory
WHERE product_id = $1
ORDER BY warehouse_id ASC
LIMIT 1
FOR UPDATE
`, productID).Scan(&recordID, &warehouseID)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		if err := tx.QueryRow(ctx, `SELECT id FROM warehouses ORDER BY id ASC LIMIT 1`).Scan(&warehouseID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return 0, fmt.Errorf("restore stock for product %d: no warehouses configured", productID)
			}
			return 0, err
		}
		if _, err := tx.Exec(ctx, `
INSERT INTO inventory (product_id, warehouse_id, quantity_on_hand)
VALUES ($1, $2, $3)
`, productID, warehouseID, quantity); err != nil {
			return 0, err
		}
		return warehouseID, nil
	case err != nil:
		return 0, err
	}

	if _, err := tx.Exec(ctx, `
UPDATE inventory
SET quantity_on_hand = quantity_on_hand + $1, updated_at = now()
WHERE id = $2
`, quantity, recordID); err != nil {
		return 0, err
	}
	return warehouseID, nil
}
