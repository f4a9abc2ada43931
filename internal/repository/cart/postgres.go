package cart

import (
	"context"
	"errors"

	"retail-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const lineColumns = `
c.id, c.user_id, c.product_id, c.quantity, c.saved_for_later, c.created_at, c.updated_at,
p.name, p.sku, p.price_cents, p.active`

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Upsert(ctx context.Context, userID, productID int64, quantity int) (*domain.CartLine, error) {
	const q = `
INSERT INTO shopping_carts (user_id, product_id, quantity)
VALUES ($1, $2, $3)
ON CONFLICT (user_id, product_id) WHERE NOT saved_for_later
DO UPDATE SET quantity = shopping_carts.quantity + EXCLUDED.quantity,
              updated_at = now()
RETURNING id
`
	var id int64
	if err := r.pool.QueryRow(ctx, q, userID, productID, quantity).Scan(&id); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.CartLine, error) {
	const q = `
SELECT ` + lineColumns + `
FROM shopping_carts c
JOIN products p ON p.id = c.product_id
WHERE c.id = $1
`
	line, err := scanLine(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return line, nil
}

func (r *postgresRepo) UpdateQuantity(ctx context.Context, id int64, quantity int) (*domain.CartLine, error) {
	const q = `
UPDATE shopping_carts
SET quantity = $1, updated_at = now()
WHERE id = $2
`
	cmd, err := r.pool.Exec(ctx, q, quantity, id)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, domain.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *postgresRepo) SetSaved(ctx context.Context, id int64, saved bool) (*domain.CartLine, error) {
	const q = `
UPDATE shopping_carts
SET saved_for_later = $1, updated_at = now()
WHERE id = $2
`
	cmd, err := r.pool.Exec(ctx, q, saved, id)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, domain.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *postgresRepo) Restore(ctx context.Context, id int64) (*domain.CartLine, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var (
		userID    int64
		productID int64
		quantity  int
		saved     bool
	)
	err = tx.QueryRow(ctx, `
SELECT user_id, product_id, quantity, saved_for_later
FROM shopping_carts
WHERE id = $1
FOR UPDATE
`, id).Scan(&userID, &productID, &quantity, &saved)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if !saved {
		return r.GetByID(ctx, id)
	}

	resultID := id
	var activeID int64
	err = tx.QueryRow(ctx, `
SELECT id
FROM shopping_carts
WHERE user_id = $1 AND product_id = $2 AND NOT saved_for_later
FOR UPDATE
`, userID, productID).Scan(&activeID)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		if _, err := tx.Exec(ctx, `
UPDATE shopping_carts
SET saved_for_later = FALSE, updated_at = now()
WHERE id = $1
`, id); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		// An active line for the product already exists; merge into it so
		// the active-line unique index is never violated.
		if _, err := tx.Exec(ctx, `
UPDATE shopping_carts
SET quantity = quantity + $1, updated_at = now()
WHERE id = $2
`, quantity, activeID); err != nil {
			return nil, err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM shopping_carts WHERE id = $1`, id); err != nil {
			return nil, err
		}
		resultID = activeID
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, resultID)
}

func (r *postgresRepo) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM shopping_carts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) ClearActive(ctx context.Context, userID int64) error {
	_, err := r.pool.Exec(ctx, `
DELETE FROM shopping_carts
WHERE user_id = $1 AND NOT saved_for_later
`, userID)
	return err
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID int64, saved bool) ([]domain.CartLine, error) {
	const q = `
SELECT ` + lineColumns + `
FROM shopping_carts c
JOIN products p ON p.id = c.product_id
WHERE c.user_id = $1 AND c.saved_for_later = $2
ORDER BY c.created_at ASC
`
	rows, err := r.pool.Query(ctx, q, userID, saved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.CartLine
	for rows.Next() {
		line, err := scanLine(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanLine(row pgx.Row) (*domain.CartLine, error) {
	var line domain.CartLine
	if err := row.Scan(
		&line.ID,
		&line.UserID,
		&line.ProductID,
		&line.Quantity,
		&line.SavedForLater,
		&line.CreatedAt,
		&line.UpdatedAt,
		&line.ProductName,
		&line.ProductSKU,
		&line.UnitPriceCents,
		&line.ProductActive,
	); err != nil {
		return nil, err
	}
	return &line, nil
}
