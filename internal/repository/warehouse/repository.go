package warehouse

import (
	"context"

	"retail-backend/internal/domain"
)

type Repository interface {
	GetByCode(ctx context.Context, code string) (*domain.Warehouse, error)
	List(ctx context.Context) ([]domain.Warehouse, error)
}
