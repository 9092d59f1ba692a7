package models

import "time"

// ShopAccount is one registered shop owner in the platform registry. Each
// account owns exactly one isolated tenant store, keyed by TenantKey.
type ShopAccount struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"` // '-' means don't send in JSON response
	ShopName     string    `json:"shop_name" db:"shop_name"`
	OwnerName    *string   `json:"owner_name,omitempty" db:"owner_name"`
	TenantKey    string    `json:"tenant_key" db:"tenant_key"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
