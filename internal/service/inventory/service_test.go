package inventory

import (
	"context"
	"errors"
	"testing"

	"retail-backend/internal/domain"
	auditrepo "retail-backend/internal/repository/audit"
	invrepo "retail-backend/internal/repository/inventory"
)

type stubRepo struct {
	addRec  *domain.InventoryRecord
	addErr  error
	lastAdd invrepo.MutationInput

	adjustRec  *domain.InventoryRecord
	adjustErr  error
	lastAdjust invrepo.MutationInput

	thresholdRec  *domain.InventoryRecord
	lastThreshold int

	byProduct   []domain.InventoryRecord
	byWarehouse []domain.InventoryRecord
	lastLowOnly bool

	movements    []domain.StockMovement
	lastPage     int
	lastPageSize int

	stats *domain.InventoryStats
}

func (s *stubRepo) AddStock(_ context.Context, in invrepo.MutationInput) (*domain.InventoryRecord, error) {
	s.lastAdd = in
	return s.addRec, s.addErr
}

func (s *stubRepo) AdjustStock(_ context.Context, in invrepo.MutationInput) (*domain.InventoryRecord, error) {
	s.lastAdjust = in
	return s.adjustRec, s.adjustErr
}

func (s *stubRepo) SetThreshold(_ context.Context, _, _ int64, threshold int) (*domain.InventoryRecord, error) {
	s.lastThreshold = threshold
	return s.thresholdRec, nil
}

func (s *stubRepo) GetByProduct(_ context.Context, _ int64) ([]domain.InventoryRecord, error) {
	return s.byProduct, nil
}

func (s *stubRepo) GetByWarehouse(_ context.Context, _ int64, lowStockOnly bool) ([]domain.InventoryRecord, error) {
	s.lastLowOnly = lowStockOnly
	return s.byWarehouse, nil
}

func (s *stubRepo) Movements(_ context.Context, _ int64, page, pageSize int) ([]domain.StockMovement, error) {
	s.lastPage = page
	s.lastPageSize = pageSize
	return s.movements, nil
}

func (s *stubRepo) Stats(_ context.Context) (*domain.InventoryStats, error) {
	return s.stats, nil
}

type stubAudit struct {
	entries []auditrepo.Entry
	err     error
}

func (s *stubAudit) Record(_ context.Context, e auditrepo.Entry) error {
	s.entries = append(s.entries, e)
	return s.err
}

var (
	admin    = domain.Actor{UserID: 1, Role: domain.RoleAdmin}
	customer = domain.Actor{UserID: 7, Role: domain.RoleCustomer}
)

func TestAddStockRequiresPrivilege(t *testing.T) {
	svc := New(&stubRepo{}, &stubAudit{}, nil)
	_, err := svc.AddStock(context.Background(), customer, 1, 1, 10, "")
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestAddStockRejectsNonPositiveQuantity(t *testing.T) {
	svc := New(&stubRepo{}, &stubAudit{}, nil)
	for _, qty := range []int{0, -5} {
		_, err := svc.AddStock(context.Background(), admin, 1, 1, qty, "")
		if !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("qty %d: expected validation error, got %v", qty, err)
		}
	}
}

func TestAddStockHappyPath(t *testing.T) {
	rec := &domain.InventoryRecord{ID: 5, ProductID: 1, WarehouseID: 2, QuantityOnHand: 20}
	repo := &stubRepo{addRec: rec}
	audit := &stubAudit{}
	svc := New(repo, audit, nil)

	got, err := svc.AddStock(context.Background(), admin, 1, 2, 20, "initial receipt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != rec {
		t.Fatalf("unexpected record %+v", got)
	}
	in := repo.lastAdd
	if in.ProductID != 1 || in.WarehouseID != 2 || in.Quantity != 20 || in.ActorID != 1 || in.Notes != "initial receipt" {
		t.Fatalf("unexpected input %+v", in)
	}
	if len(audit.entries) != 1 || audit.entries[0].Action != "inventory.add" {
		t.Fatalf("expected audit entry, got %+v", audit.entries)
	}
}

func TestAdjustStockRejectsZeroDelta(t *testing.T) {
	svc := New(&stubRepo{}, &stubAudit{}, nil)
	_, err := svc.AdjustStock(context.Background(), admin, 1, 1, 0, "")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAdjustStockPassesSignedDelta(t *testing.T) {
	rec := &domain.InventoryRecord{ID: 5, QuantityOnHand: 0}
	repo := &stubRepo{adjustRec: rec}
	svc := New(repo, &stubAudit{}, nil)

	if _, err := svc.AdjustStock(context.Background(), admin, 1, 2, -8, "shrinkage"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastAdjust.Quantity != -8 {
		t.Fatalf("expected delta -8, got %d", repo.lastAdjust.Quantity)
	}
}

func TestAdjustStockSurvivesAuditFailure(t *testing.T) {
	rec := &domain.InventoryRecord{ID: 5}
	svc := New(&stubRepo{adjustRec: rec}, &stubAudit{err: errors.New("sink down")}, nil)
	got, err := svc.AdjustStock(context.Background(), admin, 1, 2, 3, "")
	if err != nil || got != rec {
		t.Fatalf("audit failure must not fail the operation: %v", err)
	}
}

func TestSetThresholdValidation(t *testing.T) {
	svc := New(&stubRepo{}, &stubAudit{}, nil)
	_, err := svc.SetThreshold(context.Background(), admin, 1, 1, -1)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetLowStockForcesFilter(t *testing.T) {
	repo := &stubRepo{}
	svc := New(repo, &stubAudit{}, nil)
	if _, err := svc.GetLowStock(context.Background(), 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !repo.lastLowOnly {
		t.Fatalf("expected low-stock-only query")
	}
}

func TestGetMovementsPageSize(t *testing.T) {
	repo := &stubRepo{}
	svc := New(repo, &stubAudit{}, nil)
	if _, err := svc.GetMovements(context.Background(), 1, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastPage != 3 || repo.lastPageSize != movementsPageSize {
		t.Fatalf("unexpected paging page=%d size=%d", repo.lastPage, repo.lastPageSize)
	}
}

func TestGetStatsRequiresPrivilege(t *testing.T) {
	repo := &stubRepo{stats: &domain.InventoryStats{TotalRecords: 2}}
	svc := New(repo, &stubAudit{}, nil)

	if _, err := svc.GetStats(context.Background(), customer); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	stats, err := svc.GetStats(context.Background(), admin)
	if err != nil || stats.TotalRecords != 2 {
		t.Fatalf("unexpected stats %+v err=%v", stats, err)
	}
}
