package inventory

import (
	"context"
	"fmt"
	"io"
	"log"

	"retail-backend/internal/domain"
	auditrepo "retail-backend/internal/repository/audit"
	invrepo "retail-backend/internal/repository/inventory"
)

const movementsPageSize = 50

// Service exposes the stock ledger: admin mutations plus the read surface.
type Service struct {
	repo   inventoryRepo
	audit  auditSink
	logger *log.Logger
}

type inventoryRepo interface {
	AddStock(ctx context.Context, in invrepo.MutationInput) (*domain.InventoryRecord, error)
	AdjustStock(ctx context.Context, in invrepo.MutationInput) (*domain.InventoryRecord, error)
	SetThreshold(ctx context.Context, productID, warehouseID int64, threshold int) (*domain.InventoryRecord, error)
	GetByProduct(ctx context.Context, productID int64) ([]domain.InventoryRecord, error)
	GetByWarehouse(ctx context.Context, warehouseID int64, lowStockOnly bool) ([]domain.InventoryRecord, error)
	Movements(ctx context.Context, productID int64, page, pageSize int) ([]domain.StockMovement, error)
	Stats(ctx context.Context) (*domain.InventoryStats, error)
}

type auditSink interface {
	Record(ctx context.Context, e auditrepo.Entry) error
}

func New(repo inventoryRepo, audit auditSink, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, audit: audit, logger: logger}
}

// AddStock receives goods into a warehouse, creating the inventory record on
// first receipt.
func (s *Service) AddStock(ctx context.Context, actor domain.Actor, productID, warehouseID int64, quantity int, notes string) (*domain.InventoryRecord, error) {
	if !actor.Privileged() {
		return nil, domain.ErrForbidden
	}
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be positive", domain.ErrValidation)
	}
	rec, err := s.repo.AddStock(ctx, invrepo.MutationInput{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Quantity:    quantity,
		Notes:       notes,
		ActorID:     actor.UserID,
	})
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actor, "inventory.add", rec, quantity)
	return rec, nil
}

// AdjustStock applies a signed delta. A destructive delta that would drive
// the quantity negative clamps at zero; the ledger still records the
// requested magnitude.
func (s *Service) AdjustStock(ctx context.Context, actor domain.Actor, productID, warehouseID int64, delta int, notes string) (*domain.InventoryRecord, error) {
	if !actor.Privileged() {
		return nil, domain.ErrForbidden
	}
	if delta == 0 {
		return nil, fmt.Errorf("%w: adjustment delta must be non-zero", domain.ErrValidation)
	}
	rec, err := s.repo.AdjustStock(ctx, invrepo.MutationInput{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Quantity:    delta,
		Notes:       notes,
		ActorID:     actor.UserID,
	})
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actor, "inventory.adjust", rec, delta)
	return rec, nil
}

// SetThreshold updates the low-stock threshold. Pure metadata: no ledger
// entry is written.
func (s *Service) SetThreshold(ctx context.Context, actor domain.Actor, productID, warehouseID int64, threshold int) (*domain.InventoryRecord, error) {
	if !actor.Privileged() {
		return nil, domain.ErrForbidden
	}
	if threshold < 0 {
		return nil, fmt.Errorf("%w: threshold must not be negative", domain.ErrValidation)
	}
	return s.repo.SetThreshold(ctx, productID, warehouseID, threshold)
}

func (s *Service) GetByProduct(ctx context.Context, productID int64) ([]domain.InventoryRecord, error) {
	return s.repo.GetByProduct(ctx, productID)
}

func (s *Service) GetByWarehouse(ctx context.Context, warehouseID int64, lowStockOnly bool) ([]domain.InventoryRecord, error) {
	return s.repo.GetByWarehouse(ctx, warehouseID, lowStockOnly)
}

func (s *Service) GetLowStock(ctx context.Context, warehouseID int64) ([]domain.InventoryRecord, error) {
	return s.repo.GetByWarehouse(ctx, warehouseID, true)
}

func (s *Service) GetMovements(ctx context.Context, productID int64, page int) ([]domain.StockMovement, error) {
	return s.repo.Movements(ctx, productID, page, movementsPageSize)
}

func (s *Service) GetStats(ctx context.Context, actor domain.Actor) (*domain.InventoryStats, error) {
	if !actor.Privileged() {
		return nil, domain.ErrForbidden
	}
	return s.repo.Stats(ctx)
}

func (s *Service) recordAudit(ctx context.Context, actor domain.Actor, action string, rec *domain.InventoryRecord, delta int) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, auditrepo.Entry{
		ActorID:    actor.UserID,
		Action:     action,
		EntityType: "inventory",
		EntityID:   rec.ID,
		New: map[string]interface{}{
			"productId":      rec.ProductID,
			"warehouseId":    rec.WarehouseID,
			"delta":          delta,
			"quantityOnHand": rec.QuantityOnHand,
		},
	})
	if err != nil {
		s.logger.Printf("inventory service: audit %s record_id=%d error=%v", action, rec.ID, err)
	}
}
