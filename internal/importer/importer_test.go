package importer

import (
	"context"
	"strings"
	"testing"

	"retail-backend/internal/domain"
	inventoryrepo "retail-backend/internal/repository/inventory"
)

type stubProductLookup struct {
	bySKU map[string]int64
}

func (s *stubProductLookup) GetBySKU(_ context.Context, sku string) (*domain.Product, error) {
	id, ok := s.bySKU[sku]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &domain.Product{ID: id, SKU: sku, Active: true}, nil
}

type stubWarehouseLookup struct {
	byCode map[string]int64
	calls  int
}

func (s *stubWarehouseLookup) GetByCode(_ context.Context, code string) (*domain.Warehouse, error) {
	s.calls++
	id, ok := s.byCode[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &domain.Warehouse{ID: id, Code: code}, nil
}

type stubStockWriter struct {
	booked []inventoryrepo.MutationInput
}

func (s *stubStockWriter) AddStock(_ context.Context, in inventoryrepo.MutationInput) (*domain.InventoryRecord, error) {
	s.booked = append(s.booked, in)
	return &domain.InventoryRecord{ProductID: in.ProductID, WarehouseID: in.WarehouseID, QuantityOnHand: in.Quantity}, nil
}

func TestCSVImporter_Run(t *testing.T) {
	csvData := `sku,warehouse,quantity,notes
SKU-1,WH-MAIN,20,container 7
SKU-2,WH-MAIN,5,
SKU-1,WH-EAST,3,overflow`

	products := &stubProductLookup{bySKU: map[string]int64{"SKU-1": 10, "SKU-2": 11}}
	warehouses := &stubWarehouseLookup{byCode: map[string]int64{"WH-MAIN": 1, "WH-EAST": 2}}
	stock := &stubStockWriter{}
	imp := NewCSVImporter(strings.NewReader(csvData), products, warehouses, stock, 42)

	count, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 receipts booked, got %d", count)
	}
	if len(stock.booked) != 3 {
		t.Fatalf("expected 3 stock writes, got %d", len(stock.booked))
	}

	first := stock.booked[0]
	if first.ProductID != 10 || first.WarehouseID != 1 || first.Quantity != 20 || first.ActorID != 42 {
		t.Fatalf("unexpected first receipt %+v", first)
	}
	if first.Notes != "container 7" {
		t.Fatalf("expected notes preserved, got %q", first.Notes)
	}
	if stock.booked[1].Notes != "csv import" {
		t.Fatalf("expected default notes, got %q", stock.booked[1].Notes)
	}
	if warehouses.calls != 2 {
		t.Fatalf("expected warehouse lookups cached, got %d calls", warehouses.calls)
	}
}

func TestCSVImporter_UnknownSKUStopsRun(t *testing.T) {
	csvData := `sku,warehouse,quantity
SKU-1,WH-MAIN,20
SKU-MISSING,WH-MAIN,5
SKU-1,WH-MAIN,1`

	products := &stubProductLookup{bySKU: map[string]int64{"SKU-1": 10}}
	warehouses := &stubWarehouseLookup{byCode: map[string]int64{"WH-MAIN": 1}}
	stock := &stubStockWriter{}
	imp := NewCSVImporter(strings.NewReader(csvData), products, warehouses, stock, 1)

	count, err := imp.Run(context.Background())
	if err == nil {
		t.Fatalf("expected error for unknown sku")
	}
	if count != 1 {
		t.Fatalf("expected 1 receipt booked before failure, got %d", count)
	}
}

func TestCSVImporter_RejectsBadQuantity(t *testing.T) {
	csvData := `sku,warehouse,quantity
SKU-1,WH-MAIN,0`

	products := &stubProductLookup{bySKU: map[string]int64{"SKU-1": 10}}
	warehouses := &stubWarehouseLookup{byCode: map[string]int64{"WH-MAIN": 1}}
	imp := NewCSVImporter(strings.NewReader(csvData), products, warehouses, &stubStockWriter{}, 1)

	if _, err := imp.Run(context.Background()); err == nil {
		t.Fatalf("expected error for non-positive quantity")
	}
}

func TestCSVImporter_MissingColumn(t *testing.T) {
	csvData := `sku,quantity
SKU-1,5`

	imp := NewCSVImporter(strings.NewReader(csvData), &stubProductLookup{}, &stubWarehouseLookup{}, &stubStockWriter{}, 1)
	if _, err := imp.Run(context.Background()); err == nil {
		t.Fatalf("expected error for missing warehouse column")
	}
}
