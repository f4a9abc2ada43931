package domain

import (
	"strings"
	"time"
)

// OrderStatus enumerates the order state machine. The canonical forward path
// is PENDING → CONFIRMED → PACKED → SHIPPED → DELIVERED; PROCESSING is a
// legacy alias accepted on input. CANCELLED is reachable from any non-terminal
// state. Beyond terminal-state protection no transition graph is enforced.
type OrderStatus string

const (
	StatusPending    OrderStatus = "PENDING"
	StatusConfirmed  OrderStatus = "CONFIRMED"
	StatusProcessing OrderStatus = "PROCESSING"
	StatusPacked     OrderStatus = "PACKED"
	StatusShipped    OrderStatus = "SHIPPED"
	StatusDelivered  OrderStatus = "DELIVERED"
	StatusCancelled  OrderStatus = "CANCELLED"
)

// ParseOrderStatus normalizes and validates a status value from input.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch status := OrderStatus(strings.ToUpper(strings.TrimSpace(s))); status {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusPacked,
		StatusShipped, StatusDelivered, StatusCancelled:
		return status, nil
	default:
		return "", ErrInvalidStatus
	}
}

// Terminal reports whether no further transitions are permitted.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Order is immutable once created except for Status and UpdatedAt.
type Order struct {
	ID              int64       `json:"id"`
	UserID          int64       `json:"userId"`
	OrderNumber     string      `json:"orderNumber"`
	Status          OrderStatus `json:"status"`
	TotalCents      int64       `json:"totalCents"`
	TaxCents        int64       `json:"taxCents"`
	ShippingAddress string      `json:"shippingAddress"`
	DeliveryPhone   string      `json:"deliveryPhone,omitempty"`
	Notes           string      `json:"notes,omitempty"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
	Lines           []OrderLine `json:"lineItems,omitempty"`

	// Joined for the reporting surface.
	UserEmail string `json:"userEmail,omitempty"`
}

// OrderLine snapshots price at order time; later catalog price changes must
// not alter it.
type OrderLine struct {
	ID             int64 `json:"id"`
	OrderID        int64 `json:"orderId"`
	ProductID      int64 `json:"productId"`
	Quantity       int   `json:"quantity"`
	UnitPriceCents int64 `json:"unitPriceCents"`
	TotalCents     int64 `json:"totalCents"`

	ProductName string `json:"productName,omitempty"`
	ProductSKU  string `json:"productSku,omitempty"`
}

// OrderStats is the aggregate reporting view.
type OrderStats struct {
	CountsByStatus map[OrderStatus]int64 `json:"countsByStatus"`
	RevenueCents   int64                 `json:"revenueCents"`
	AvgOrderCents  int64                 `json:"avgOrderCents"`
	TotalOrders    int64                 `json:"totalOrders"`
}
