package inventory

import (
	"context"

	"retail-backend/internal/domain"
)

// MutationInput captures an inventory write. Quantity carries the sign for
// Adjust; Add requires it positive.
type MutationInput struct {
	ProductID   int64
	WarehouseID int64
	Quantity    int
	Notes       string
	ActorID     int64
}

type Repository interface {
	// AddStock increments (creating the record when absent) and appends a
	// RECEIVED movement in one transaction.
	AddStock(ctx context.Context, in MutationInput) (*domain.InventoryRecord, error)
	// AdjustStock applies a signed delta clamped at zero and appends an
	// ADJUSTMENT_ADD/ADJUSTMENT_SUBTRACT movement with magnitude |delta| in
	// one transaction. The logged magnitude is the requested one even when
	// the clamp truncated the effect.
	AdjustStock(ctx context.Context, in MutationInput) (*domain.InventoryRecord, error)
	SetThreshold(ctx context.Context, productID, warehouseID int64, threshold int) (*domain.InventoryRecord, error)
	GetByProduct(ctx context.Context, productID int64) ([]domain.InventoryRecord, error)
	GetByWarehouse(ctx context.Context, warehouseID int64, lowStockOnly bool) ([]domain.InventoryRecord, error)
	Movements(ctx context.Context, productID int64, page, pageSize int) ([]domain.StockMovement, error)
	Stats(ctx context.Context) (*domain.InventoryStats, error)
}
