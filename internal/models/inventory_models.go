package models

import "time"

// Stock movement directions. The movement log is append-only; rows are never
// updated or merged.
const (
	MovementIn  = "In"
	MovementOut = "Out"
)

// InventoryBatch is a discrete purchased quantity of a product at a given
// cost. Batches are consumed oldest-first (lowest id) and never merged.
type InventoryBatch struct {
	ID            int64     `json:"id" db:"id"`
	ProductID     int64     `json:"product_id" db:"product_id" binding:"required"`
	PurchasePrice float64   `json:"purchase_price" db:"purchase_price"`
	SalePrice     float64   `json:"sale_price" db:"sale_price"`
	Quantity      int       `json:"quantity" db:"quantity"` // Remaining units, never negative
	ExpiryDate    *string   `json:"expiry_date,omitempty" db:"expiry_date"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	Product       *Product  `json:"product,omitempty"` // For joined reads
}

// StockMovement is an immutable audit record of one partial or full batch
// consumption (or the initial fill of a batch).
type StockMovement struct {
	ID           int64     `json:"id" db:"id"`
	BatchID      int64     `json:"batch_id" db:"batch_id"`
	MovementType string    `json:"movement_type" db:"movement_type"` // MovementIn or MovementOut
	Quantity     int       `json:"quantity" db:"quantity"`
	MovementDate time.Time `json:"movement_date" db:"movement_date"`
	ProductID    *int64    `json:"product_id,omitempty"`   // Populated on joined reads
	ProductName  *string   `json:"product_name,omitempty"` // Populated on joined reads
}
