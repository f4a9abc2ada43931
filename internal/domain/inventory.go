package domain

import "time"

// InventoryRecord is the current on-hand quantity per (product, warehouse).
// It is only ever mutated together with a StockMovement append.
type InventoryRecord struct {
	ID                int64     `json:"id"`
	ProductID         int64     `json:"productId"`
	WarehouseID       int64     `json:"warehouseId"`
	QuantityOnHand    int       `json:"quantityOnHand"`
	LowStockThreshold int       `json:"lowStockThreshold"`
	UpdatedAt         time.Time `json:"updatedAt"`

	ProductName   string `json:"productName,omitempty"`
	ProductSKU    string `json:"productSku,omitempty"`
	WarehouseCode string `json:"warehouseCode,omitempty"`
}

// MovementType classifies a stock ledger entry.
type MovementType string

const (
	MovementReceived           MovementType = "RECEIVED"
	MovementAdjustmentAdd      MovementType = "ADJUSTMENT_ADD"
	MovementAdjustmentSubtract MovementType = "ADJUSTMENT_SUBTRACT"
	MovementOrderDebit         MovementType = "ORDER_DEBIT"
	MovementOrderRestore       MovementType = "ORDER_RESTORE"
)

// StockMovement is one append-only ledger entry. Quantity is always the
// positive magnitude; the sign is carried by the movement type.
type StockMovement struct {
	ID            int64        `json:"id"`
	ProductID     int64        `json:"productId"`
	WarehouseID   int64        `json:"warehouseId"`
	MovementType  MovementType `json:"movementType"`
	Quantity      int          `json:"quantity"`
	ReferenceType string       `json:"referenceType,omitempty"`
	ReferenceID   int64        `json:"referenceId,omitempty"`
	Notes         string       `json:"notes,omitempty"`
	CreatedBy     int64        `json:"createdBy"`
	CreatedAt     time.Time    `json:"createdAt"`
}

// InventoryStats is the aggregate stock view.
type InventoryStats struct {
	TotalRecords  int64 `json:"totalRecords"`
	TotalOnHand   int64 `json:"totalOnHand"`
	LowStockCount int64 `json:"lowStockCount"`
	MovementCount int64 `json:"movementCount"`
}
