package order

import (
	"context"
	"time"

	"retail-backend/internal/domain"
)

// CreateInput carries everything the checkout transaction needs. Totals are
// computed inside the transaction from the cart lines it consumes.
type CreateInput struct {
	UserID          int64
	OrderNumber     string
	ShippingAddress string
	DeliveryPhone   string
	Notes           string
	TaxRateBps      int64
}

type ListFilter struct {
	Status   domain.OrderStatus
	UserID   int64
	From     time.Time
	To       time.Time
	Page     int
	PageSize int
}

type Repository interface {
	// Create converts the user's active cart into an order atomically: read
	// purchasable cart lines, snapshot prices into order lines, clear the
	// consumed cart lines. Returns ErrEmptyCart when nothing is purchasable.
	Create(ctx context.Context, in CreateInput) (*domain.Order, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	List(ctx context.Context, f ListFilter) ([]domain.Order, error)
	// UpdateStatus persists the new status unless the order is already in a
	// terminal state.
	UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error)
	// Cancel restores on-hand stock for every line, appends one ORDER_RESTORE
	// movement per line, and marks the order CANCELLED, all in one
	// transaction.
	Cancel(ctx context.Context, id int64, actorID int64) (*domain.Order, error)
	Stats(ctx context.Context) (*domain.OrderStats, error)
}
