package services

import (
	"errors"
	"testing"
)

func TestLinkProductToSupplierWithPricing(t *testing.T) {
	env := newTestEnv(t)
	supplier := env.createSupplier(t, "Almaty Wholesale")
	product := env.createProduct(t, "Tea", 4.0)

	err := env.suppliers.LinkProductToSupplier(testTenant, supplier.ID, product.ID, PricingRequest{
		SupplierPrice: floatPtr(2.75),
		SupplierSKU:   strPtr("AW-TEA-01"),
		LeadTimeDays:  intPtr(3),
	})
	if err != nil {
		t.Fatalf("link failed: %v", err)
	}

	linked, err := env.suppliers.GetLinkedProducts(testTenant, supplier.ID)
	if err != nil {
		t.Fatalf("get linked products failed: %v", err)
	}
	if len(linked) != 1 {
		t.Fatalf("expected 1 linked product, got %d", len(linked))
	}
	if linked[0].Product.ID != product.ID {
		t.Errorf("linked product id = %d, want %d", linked[0].Product.ID, product.ID)
	}
	if linked[0].Pricing.SupplierPrice != 2.75 {
		t.Errorf("supplier price = %v, want 2.75", linked[0].Pricing.SupplierPrice)
	}
	if linked[0].Pricing.SupplierSKU == nil || *linked[0].Pricing.SupplierSKU != "AW-TEA-01" {
		t.Errorf("supplier sku = %v, want AW-TEA-01", linked[0].Pricing.SupplierSKU)
	}
}

func TestLinkRequiresNonNegativePrice(t *testing.T) {
	env := newTestEnv(t)
	supplier := env.createSupplier(t, "Vendor")
	product := env.createProduct(t, "Milk", 1.5)

	err := env.suppliers.LinkProductToSupplier(testTenant, supplier.ID, product.ID, PricingRequest{
		SupplierPrice: floatPtr(-1),
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	err = env.suppliers.LinkProductToSupplier(testTenant, supplier.ID, product.ID, PricingRequest{})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("missing price: expected ErrValidation, got %v", err)
	}

	// No half-written link may survive a rejected request.
	linked, err := env.suppliers.GetLinkedProducts(testTenant, supplier.ID)
	if err != nil {
		t.Fatalf("get linked products failed: %v", err)
	}
	if len(linked) != 0 {
		t.Fatalf("rejected link left %d rows behind", len(linked))
	}
}

func TestLinkUnknownCounterpartsRollsBack(t *testing.T) {
	env := newTestEnv(t)
	supplier := env.createSupplier(t, "Vendor")
	product := env.createProduct(t, "Bread", 1.0)

	err := env.suppliers.LinkProductToSupplier(testTenant, supplier.ID, 999, PricingRequest{
		SupplierPrice: floatPtr(1),
	})
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}

	err = env.suppliers.LinkProductToSupplier(testTenant, 999, product.ID, PricingRequest{
		SupplierPrice: floatPtr(1),
	})
	if !errors.Is(err, ErrSupplierNotFound) {
		t.Fatalf("expected ErrSupplierNotFound, got %v", err)
	}

	linked, err := env.suppliers.GetLinkedProducts(testTenant, supplier.ID)
	if err != nil {
		t.Fatalf("get linked products failed: %v", err)
	}
	if len(linked) != 0 {
		t.Fatalf("failed link left %d rows behind", len(linked))
	}
}

func TestLinkIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	supplier := env.createSupplier(t, "Vendor")
	product := env.createProduct(t, "Eggs", 0.5)

	for i := 0; i < 2; i++ {
		err := env.suppliers.LinkProductToSupplier(testTenant, supplier.ID, product.ID, PricingRequest{
			SupplierPrice: floatPtr(float64(i) + 0.3),
		})
		if err != nil {
			t.Fatalf("link attempt %d failed: %v", i, err)
		}
	}

	linked, err := env.suppliers.GetLinkedProducts(testTenant, supplier.ID)
	if err != nil {
		t.Fatalf("get linked products failed: %v", err)
	}
	if len(linked) != 1 {
		t.Fatalf("expected 1 link after re-linking, got %d", len(linked))
	}
	// Re-linking replaces the pricing wholesale.
	if linked[0].Pricing.SupplierPrice != 1.3 {
		t.Errorf("supplier price = %v, want 1.3 after re-link", linked[0].Pricing.SupplierPrice)
	}
}

func TestUnlinkRemovesPricingAndLink(t *testing.T) {
	env := newTestEnv(t)
	supplier := env.createSupplier(t, "Vendor")
	product := env.createProduct(t, "Butter", 3.0)

	if err := env.suppliers.LinkProductToSupplier(testTenant, supplier.ID, product.ID, PricingRequest{
		SupplierPrice: floatPtr(2),
	}); err != nil {
		t.Fatalf("link failed: %v", err)
	}

	if err := env.suppliers.UnlinkProductFromSupplier(testTenant, supplier.ID, product.ID); err != nil {
		t.Fatalf("unlink failed: %v", err)
	}

	linked, err := env.suppliers.GetLinkedProducts(testTenant, supplier.ID)
	if err != nil {
		t.Fatalf("get linked products failed: %v", err)
	}
	if len(linked) != 0 {
		t.Fatalf("unlink left %d rows behind", len(linked))
	}

	suppliersOfProduct, err := env.suppliers.GetLinkedSuppliers(testTenant, product.ID)
	if err != nil {
		t.Fatalf("get linked suppliers failed: %v", err)
	}
	if len(suppliersOfProduct) != 0 {
		t.Fatalf("unlink left %d supplier rows behind", len(suppliersOfProduct))
	}
}

func TestUnlinkMissingLink(t *testing.T) {
	env := newTestEnv(t)
	supplier := env.createSupplier(t, "Vendor")
	product := env.createProduct(t, "Jam", 2.0)

	err := env.suppliers.UnlinkProductFromSupplier(testTenant, supplier.ID, product.ID)
	if !errors.Is(err, ErrLinkNotFound) {
		t.Fatalf("expected ErrLinkNotFound, got %v", err)
	}
}

func TestDeleteSupplierCascadesLinks(t *testing.T) {
	env := newTestEnv(t)
	supplier := env.createSupplier(t, "Vendor")
	product := env.createProduct(t, "Honey", 6.0)

	if err := env.suppliers.LinkProductToSupplier(testTenant, supplier.ID, product.ID, PricingRequest{
		SupplierPrice: floatPtr(4),
	}); err != nil {
		t.Fatalf("link failed: %v", err)
	}

	if err := env.suppliers.DeleteSupplier(testTenant, supplier.ID); err != nil {
		t.Fatalf("delete supplier failed: %v", err)
	}

	suppliersOfProduct, err := env.suppliers.GetLinkedSuppliers(testTenant, product.ID)
	if err != nil {
		t.Fatalf("get linked suppliers failed: %v", err)
	}
	if len(suppliersOfProduct) != 0 {
		t.Fatalf("deleting supplier left %d link rows behind", len(suppliersOfProduct))
	}
}
