package models

import "time"

// Product represents a sellable item in a shop's catalog.
type Product struct {
	ID         int64     `json:"id" db:"id"`
	Name       string    `json:"name" db:"name" binding:"required"`
	Price      float64   `json:"price" db:"price"`
	Barcode    *string   `json:"barcode,omitempty" db:"barcode"` // Unique within a tenant store
	Origin     *string   `json:"origin,omitempty" db:"origin"`
	ExpiryDate *string   `json:"expiry_date,omitempty" db:"expiry_date"` // Stored as YYYY-MM-DD, parsed when needed
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
	StockLevel *int      `json:"stock_level,omitempty"` // Summed batch quantity when joined
}
