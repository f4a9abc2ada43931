package domain

import "time"

// CartLine is one (user, product) row in the shopping cart. Active lines are
// unique per (user, product); re-adding a product merges quantities.
type CartLine struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"-"`
	ProductID     int64     `json:"productId"`
	Quantity      int       `json:"quantity"`
	SavedForLater bool      `json:"savedForLater"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	// Joined from the catalog for display and totals.
	ProductName    string `json:"productName"`
	ProductSKU     string `json:"productSku"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	ProductActive  bool   `json:"productActive"`
}

// CartView is the active cart with money computed over purchasable lines.
// Lines whose product has gone inactive stay in Lines so the UI can flag
// them, but contribute nothing to the totals.
type CartView struct {
	Lines         []CartLine `json:"lineItems"`
	SubtotalCents int64      `json:"subtotalCents"`
	TaxCents      int64      `json:"taxCents"`
	TotalCents    int64      `json:"totalCents"`
}
