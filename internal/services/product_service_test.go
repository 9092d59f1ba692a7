package services

import (
	"errors"
	"testing"
)

func TestCreateProductAndFetchByBarcode(t *testing.T) {
	env := newTestEnv(t)

	product, err := env.products.CreateProduct(testTenant, CreateProductRequest{
		Name:    "Kefir 1L",
		Price:   2.20,
		Barcode: strPtr("4870001001"),
		Origin:  strPtr("Kazakhstan"),
	})
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	if product.ID == 0 {
		t.Fatal("expected a non-zero product ID")
	}

	byBarcode, err := env.products.GetProductByBarcode(testTenant, "4870001001")
	if err != nil {
		t.Fatalf("get by barcode failed: %v", err)
	}
	if byBarcode.ID != product.ID {
		t.Errorf("barcode lookup returned product %d, want %d", byBarcode.ID, product.ID)
	}
	if byBarcode.Origin == nil || *byBarcode.Origin != "Kazakhstan" {
		t.Errorf("origin = %v, want Kazakhstan", byBarcode.Origin)
	}
}

func TestCreateProductValidation(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.products.CreateProduct(testTenant, CreateProductRequest{Name: "  ", Price: 1}); !errors.Is(err, ErrValidation) {
		t.Errorf("blank name: expected ErrValidation, got %v", err)
	}
	if _, err := env.products.CreateProduct(testTenant, CreateProductRequest{Name: "Salt", Price: -1}); !errors.Is(err, ErrValidation) {
		t.Errorf("negative price: expected ErrValidation, got %v", err)
	}
}

func TestCreateProductDuplicateBarcode(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.products.CreateProduct(testTenant, CreateProductRequest{
		Name: "Sugar", Price: 1.10, Barcode: strPtr("111"),
	}); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	_, err := env.products.CreateProduct(testTenant, CreateProductRequest{
		Name: "Flour", Price: 0.90, Barcode: strPtr("111"),
	})
	if !errors.Is(err, ErrBarcodeExists) {
		t.Fatalf("expected ErrBarcodeExists, got %v", err)
	}
}

func TestUpdateProductSparsePatch(t *testing.T) {
	env := newTestEnv(t)
	product, err := env.products.CreateProduct(testTenant, CreateProductRequest{
		Name:    "Rice 1kg",
		Price:   3.00,
		Barcode: strPtr("222"),
		Origin:  strPtr("Uzbekistan"),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := env.products.UpdateProduct(testTenant, product.ID, UpdateProductRequest{
		Price: floatPtr(3.50),
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Price != 3.50 {
		t.Errorf("price = %v, want 3.50", updated.Price)
	}
	// Untouched fields survive a sparse patch.
	if updated.Name != "Rice 1kg" {
		t.Errorf("name = %q, want unchanged", updated.Name)
	}
	if updated.Barcode == nil || *updated.Barcode != "222" {
		t.Errorf("barcode = %v, want unchanged", updated.Barcode)
	}
	if updated.Origin == nil || *updated.Origin != "Uzbekistan" {
		t.Errorf("origin = %v, want unchanged", updated.Origin)
	}
}

func TestGetProductsPaginationAndSearch(t *testing.T) {
	env := newTestEnv(t)
	names := []string{"Apple Juice", "Apple Pie", "Orange Juice", "Banana"}
	for _, name := range names {
		env.createProduct(t, name, 1.0)
	}

	page1, total, err := env.products.GetProducts(testTenant, 1, 3, nil)
	if err != nil {
		t.Fatalf("get products failed: %v", err)
	}
	if total != 4 {
		t.Errorf("total = %d, want 4", total)
	}
	if len(page1) != 3 {
		t.Errorf("page 1 size = %d, want 3", len(page1))
	}
	page2, _, err := env.products.GetProducts(testTenant, 2, 3, nil)
	if err != nil {
		t.Fatalf("get products page 2 failed: %v", err)
	}
	if len(page2) != 1 {
		t.Errorf("page 2 size = %d, want 1", len(page2))
	}

	apples, appleTotal, err := env.products.GetProducts(testTenant, 1, 10, strPtr("Apple"))
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if appleTotal != 2 || len(apples) != 2 {
		t.Errorf("search total = %d rows = %d, want 2 and 2", appleTotal, len(apples))
	}
}

func TestDeleteProduct(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct(t, "Discontinued", 9.99)

	if err := env.products.DeleteProduct(testTenant, product.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := env.products.GetProductByID(testTenant, product.ID); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound after delete, got %v", err)
	}
	if err := env.products.DeleteProduct(testTenant, product.ID); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("second delete: expected ErrProductNotFound, got %v", err)
	}
}
