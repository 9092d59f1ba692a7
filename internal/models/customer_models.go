package models

import "time"

// ReservedCustomerName is the always-present fallback counterparty for
// anonymous sales. It is seeded when a tenant store is provisioned.
const ReservedCustomerName = "Public/Client"

// Customer represents a buyer known to the shop.
type Customer struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name" binding:"required"`
	Phone     *string   `json:"phone,omitempty" db:"phone"`
	Email     *string   `json:"email,omitempty" db:"email"`
	Notes     *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
