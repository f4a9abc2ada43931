package cart

import (
	"context"

	"retail-backend/internal/domain"
)

type Repository interface {
	// Upsert inserts an active line or merges quantity into an existing one.
	Upsert(ctx context.Context, userID, productID int64, quantity int) (*domain.CartLine, error)
	GetByID(ctx context.Context, id int64) (*domain.CartLine, error)
	UpdateQuantity(ctx context.Context, id int64, quantity int) (*domain.CartLine, error)
	SetSaved(ctx context.Context, id int64, saved bool) (*domain.CartLine, error)
	// Restore moves a saved-for-later line back into the active cart. When an
	// active line for the same product already exists, the quantities merge
	// into it and the saved row is removed; a bare flag flip would collide
	// with the active-line unique index.
	Restore(ctx context.Context, id int64) (*domain.CartLine, error)
	Delete(ctx context.Context, id int64) error
	// ClearActive deletes the user's active lines; saved-for-later lines stay.
	ClearActive(ctx context.Context, userID int64) error
	ListByUser(ctx context.Context, userID int64, saved bool) ([]domain.CartLine, error)
}
