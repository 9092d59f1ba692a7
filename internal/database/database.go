package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver
)

// ErrProvisioning is returned when a tenant's isolated store cannot be
// created or its schema cannot be applied.
var ErrProvisioning = errors.New("tenant store provisioning failed")

// TenantDirectory maps a tenant key to an isolated SQLite store under the
// data root, provisioning the store on first use. It replaces a shared
// global database handle: callers resolve a handle per operation, use it
// for one logical unit of work and close it.
type TenantDirectory struct {
	root string
}

// NewTenantDirectory creates a TenantDirectory rooted at the given data
// directory. The directory itself is created lazily on first Resolve.
func NewTenantDirectory(root string) *TenantDirectory {
	return &TenantDirectory{root: root}
}

// Root returns the data directory this TenantDirectory manages.
func (d *TenantDirectory) Root() string {
	return d.root
}

// Resolve returns a ready-to-use handle for the tenant's store. The store
// directory, schema and reserved default customer are created if absent;
// pragmas are re-asserted on every call since they are per-connection.
func (d *TenantDirectory) Resolve(tenantKey string) (*sql.DB, error) {
	if tenantKey == "" {
		return nil, fmt.Errorf("%w: empty tenant key", ErrProvisioning)
	}
	dir := filepath.Join(d.root, "shops", tenantKey)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating tenant directory: %v", ErrProvisioning, err)
	}

	db, err := open(filepath.Join(dir, "shop.db"))
	if err != nil {
		return nil, err
	}
	if err := applyTenantSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// OpenRegistry opens the top-level registry store mapping login identities
// to tenant keys, creating it if absent.
func (d *TenantDirectory) OpenRegistry() (*sql.DB, error) {
	if err := os.MkdirAll(d.root, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating data root: %v", ErrProvisioning, err)
	}
	db, err := open(filepath.Join(d.root, "registry.db"))
	if err != nil {
		return nil, err
	}
	if err := applyRegistrySchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// open opens a SQLite file and asserts the connection settings every store
// relies on: foreign keys on, WAL for concurrent readers, and a bounded
// wait on writer contention instead of an immediate busy failure.
func open(path string) (*sql.DB, error) {
	// _time_format=sqlite stores time.Time values in a layout SQLite's own
	// date functions can parse, which the analytics queries rely on.
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_time_format=sqlite", path))
	if err != nil {
		return nil, fmt.Errorf("%w: opening store %s: %v", ErrProvisioning, path, err)
	}
	pragmas := []string{
		`PRAGMA foreign_keys = ON;`,
		`PRAGMA journal_mode = WAL;`,
		`PRAGMA busy_timeout = 5000;`,
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%w: applying %s: %v", ErrProvisioning, pragma, err)
		}
	}
	return db, nil
}

// applyTenantSchema applies the full per-tenant schema with
// create-if-not-exists semantics and seeds the reserved default customer.
func applyTenantSchema(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS products (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			price REAL NOT NULL DEFAULT 0,
			barcode TEXT UNIQUE,
			origin TEXT,
			expiry_date TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS suppliers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			phone TEXT,
			email TEXT,
			address TEXT,
			notes TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS customers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			phone TEXT,
			email TEXT,
			notes TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS supplier_products (
			supplier_id INTEGER NOT NULL REFERENCES suppliers(id) ON DELETE CASCADE,
			product_id INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (supplier_id, product_id)
		);`,
		`CREATE TABLE IF NOT EXISTS supplier_product_pricing (
			supplier_id INTEGER NOT NULL,
			product_id INTEGER NOT NULL,
			supplier_price REAL NOT NULL,
			supplier_sku TEXT,
			min_order_qty INTEGER,
			lead_time_days INTEGER,
			is_active INTEGER NOT NULL DEFAULT 1,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (supplier_id, product_id),
			FOREIGN KEY (supplier_id, product_id)
				REFERENCES supplier_products(supplier_id, product_id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS inventory (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			product_id INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
			purchase_price REAL NOT NULL DEFAULT 0,
			sale_price REAL NOT NULL DEFAULT 0,
			quantity INTEGER NOT NULL CHECK (quantity >= 0),
			expiry_date TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			type TEXT NOT NULL,
			payment_status TEXT NOT NULL DEFAULT 'paid',
			amount REAL NOT NULL CHECK (amount >= 0),
			supplier_id INTEGER REFERENCES suppliers(id),
			customer_id INTEGER REFERENCES customers(id),
			transaction_date DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			notes TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS stock_movement (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			batch_id INTEGER NOT NULL REFERENCES inventory(id) ON DELETE CASCADE,
			movement_type TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			movement_date DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("%w: applying schema: %v", ErrProvisioning, err)
		}
	}

	// Reserved fallback counterparty for anonymous sales. Insert-if-absent
	// keeps provisioning idempotent.
	_, err := db.Exec(
		`INSERT INTO customers (name) SELECT ? WHERE NOT EXISTS (SELECT 1 FROM customers WHERE name = ?)`,
		"Public/Client", "Public/Client",
	)
	if err != nil {
		return fmt.Errorf("%w: seeding default customer: %v", ErrProvisioning, err)
	}
	return nil
}

func applyRegistrySchema(db *sql.DB) error {
	stmt := `CREATE TABLE IF NOT EXISTS shop_accounts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		shop_name TEXT NOT NULL,
		owner_name TEXT,
		tenant_key TEXT NOT NULL UNIQUE,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`
	if _, err := db.Exec(stmt); err != nil {
		return fmt.Errorf("%w: applying registry schema: %v", ErrProvisioning, err)
	}
	return nil
}
