package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"retail-backend/internal/domain"
	inventoryrepo "retail-backend/internal/repository/inventory"
)

type ProductLookup interface {
	GetBySKU(ctx context.Context, sku string) (*domain.Product, error)
}

type WarehouseLookup interface {
	GetByCode(ctx context.Context, code string) (*domain.Warehouse, error)
}

type StockWriter interface {
	AddStock(ctx context.Context, in inventoryrepo.MutationInput) (*domain.InventoryRecord, error)
}

// CSVImporter reads supplier receipt CSVs and books the quantities as
// received stock. Expected headers: sku, warehouse, quantity and an optional
// notes column.
type CSVImporter struct {
	reader     *csv.Reader
	products   ProductLookup
	warehouses WarehouseLookup
	stock      StockWriter
	actorID    int64

	warehouseCache map[string]int64
}

func NewCSVImporter(r io.Reader, products ProductLookup, warehouses WarehouseLookup, stock StockWriter, actorID int64) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:         csvr,
		products:       products,
		warehouses:     warehouses,
		stock:          stock,
		actorID:        actorID,
		warehouseCache: make(map[string]int64),
	}
}

type receiptRow struct {
	SKU           string
	WarehouseCode string
	Quantity      int
	Notes         string
}

// Run parses the receipt rows and books each one. It stops on the first bad
// row so a partially mangled file does not half-apply silently.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	for _, required := range []string{"sku", "warehouse", "quantity"} {
		if _, ok := index[required]; !ok {
			return 0, fmt.Errorf("missing required column %q", required)
		}
	}

	imported := 0
	line := 1
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		line++

		row, err := parseRow(record, index)
		if err != nil {
			return imported, fmt.Errorf("line %d: %w", line, err)
		}
		if row == nil {
			continue
		}

		if err := i.book(ctx, row); err != nil {
			return imported, fmt.Errorf("line %d: %w", line, err)
		}
		imported++
	}

	return imported, nil
}

func (i *CSVImporter) book(ctx context.Context, row *receiptRow) error {
	product, err := i.products.GetBySKU(ctx, row.SKU)
	if err != nil {
		return fmt.Errorf("lookup sku %q: %w", row.SKU, err)
	}

	warehouseID, cached := i.warehouseCache[row.WarehouseCode]
	if !cached {
		warehouse, err := i.warehouses.GetByCode(ctx, row.WarehouseCode)
		if err != nil {
			return fmt.Errorf("lookup warehouse %q: %w", row.WarehouseCode, err)
		}
		warehouseID = warehouse.ID
		i.warehouseCache[row.WarehouseCode] = warehouseID
	}

	notes := row.Notes
	if notes == "" {
		notes = "csv import"
	}

	_, err = i.stock.AddStock(ctx, inventoryrepo.MutationInput{
		ProductID:   product.ID,
		WarehouseID: warehouseID,
		Quantity:    row.Quantity,
		Notes:       notes,
		ActorID:     i.actorID,
	})
	if err != nil {
		return fmt.Errorf("book %q: %w", row.SKU, err)
	}
	return nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) (*receiptRow, error) {
	sku := pick(record, index, "sku")
	code := pick(record, index, "warehouse")
	qtyStr := pick(record, index, "quantity")

	if sku == "" && code == "" && qtyStr == "" {
		return nil, nil // blank line
	}
	if sku == "" || code == "" || qtyStr == "" {
		return nil, fmt.Errorf("incomplete row (sku=%q warehouse=%q quantity=%q)", sku, code, qtyStr)
	}

	qty, err := strconv.Atoi(qtyStr)
	if err != nil || qty < 1 {
		return nil, fmt.Errorf("invalid quantity %q for sku %q", qtyStr, sku)
	}

	return &receiptRow{
		SKU:           sku,
		WarehouseCode: code,
		Quantity:      qty,
		Notes:         pick(record, index, "notes"),
	}, nil
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
