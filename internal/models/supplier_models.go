package models

import "time"

// Supplier represents a vendor a shop purchases stock from.
type Supplier struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name" binding:"required"`
	Phone     *string   `json:"phone,omitempty" db:"phone"`
	Email     *string   `json:"email,omitempty" db:"email"`
	Address   *string   `json:"address,omitempty" db:"address"`
	Notes     *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// SupplierProductLink is the many-to-many row between suppliers and products.
type SupplierProductLink struct {
	SupplierID int64     `json:"supplier_id" db:"supplier_id"`
	ProductID  int64     `json:"product_id" db:"product_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// SupplierPricing is the pricing side-record attached to a supplier-product link.
// It is replaced wholesale on update, never partially merged.
type SupplierPricing struct {
	SupplierID    int64     `json:"supplier_id" db:"supplier_id"`
	ProductID     int64     `json:"product_id" db:"product_id"`
	SupplierPrice float64   `json:"supplier_price" db:"supplier_price"`
	SupplierSKU   *string   `json:"supplier_sku,omitempty" db:"supplier_sku"`
	MinOrderQty   *int      `json:"min_order_qty,omitempty" db:"min_order_qty"`
	LeadTimeDays  *int      `json:"lead_time_days,omitempty" db:"lead_time_days"`
	IsActive      bool      `json:"is_active" db:"is_active"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// LinkedProduct is a product joined with the pricing a given supplier offers for it.
type LinkedProduct struct {
	Product Product         `json:"product"`
	Pricing SupplierPricing `json:"pricing"`
}

// LinkedSupplier is a supplier joined with the pricing it offers for a given product.
type LinkedSupplier struct {
	Supplier Supplier        `json:"supplier"`
	Pricing  SupplierPricing `json:"pricing"`
}
