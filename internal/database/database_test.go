package database

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"shopledger_backend/internal/models"
)

func TestResolveProvisionsStore(t *testing.T) {
	dir := NewTenantDirectory(t.TempDir())

	db, err := dir.Resolve("tenant-a")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(filepath.Join(dir.Root(), "shops", "tenant-a", "shop.db")); err != nil {
		t.Fatalf("expected store file to exist: %v", err)
	}

	// All tables of the schema must serve queries.
	for _, table := range []string{
		"products", "suppliers", "customers", "supplier_products",
		"supplier_product_pricing", "inventory", "transactions", "stock_movement",
	} {
		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
			t.Fatalf("table %s not usable: %v", table, err)
		}
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	dir := NewTenantDirectory(t.TempDir())

	db1, err := dir.Resolve("tenant-a")
	if err != nil {
		t.Fatalf("first resolve failed: %v", err)
	}
	if _, err := db1.Exec(`INSERT INTO products (name, price, created_at, updated_at) VALUES ('Rice', 2.5, datetime('now'), datetime('now'))`); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	db1.Close()

	db2, err := dir.Resolve("tenant-a")
	if err != nil {
		t.Fatalf("second resolve failed: %v", err)
	}
	defer db2.Close()

	var count int
	if err := db2.QueryRow(`SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected existing data to survive re-resolve, got %d products", count)
	}
}

func TestResolveSeedsReservedCustomerOnce(t *testing.T) {
	dir := NewTenantDirectory(t.TempDir())

	for i := 0; i < 3; i++ {
		db, err := dir.Resolve("tenant-a")
		if err != nil {
			t.Fatalf("resolve %d failed: %v", i, err)
		}
		db.Close()
	}

	db, err := dir.Resolve("tenant-a")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM customers WHERE name = ?`, models.ReservedCustomerName).Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one reserved customer, got %d", count)
	}
}

func TestTenantStoresAreIsolated(t *testing.T) {
	dir := NewTenantDirectory(t.TempDir())

	dbA, err := dir.Resolve("tenant-a")
	if err != nil {
		t.Fatalf("resolve tenant-a failed: %v", err)
	}
	defer dbA.Close()
	if _, err := dbA.Exec(`INSERT INTO products (name, price, created_at, updated_at) VALUES ('Only In A', 1.0, datetime('now'), datetime('now'))`); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	dbB, err := dir.Resolve("tenant-b")
	if err != nil {
		t.Fatalf("resolve tenant-b failed: %v", err)
	}
	defer dbB.Close()

	var count int
	if err := dbB.QueryRow(`SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("tenant-b sees %d products from tenant-a", count)
	}
}

func TestResolveEmptyTenantKeyFails(t *testing.T) {
	dir := NewTenantDirectory(t.TempDir())

	_, err := dir.Resolve("")
	if !errors.Is(err, ErrProvisioning) {
		t.Fatalf("expected ErrProvisioning, got %v", err)
	}
}

func TestResolveUnwritableRootFails(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("running as root, permission checks are bypassed")
	}

	root := filepath.Join(t.TempDir(), "locked")
	if err := os.MkdirAll(root, 0o555); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}

	dir := NewTenantDirectory(filepath.Join(root, "data"))
	_, err := dir.Resolve("tenant-a")
	if !errors.Is(err, ErrProvisioning) {
		t.Fatalf("expected ErrProvisioning, got %v", err)
	}
}

func TestOpenRegistry(t *testing.T) {
	dir := NewTenantDirectory(t.TempDir())

	registry, err := dir.OpenRegistry()
	if err != nil {
		t.Fatalf("open registry failed: %v", err)
	}
	defer registry.Close()

	var count int
	if err := registry.QueryRow(`SELECT COUNT(*) FROM shop_accounts`).Scan(&count); err != nil {
		t.Fatalf("shop_accounts not usable: %v", err)
	}
}
