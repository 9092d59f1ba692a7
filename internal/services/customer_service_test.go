package services

import (
	"errors"
	"testing"

	"shopledger_backend/internal/models"
)

// reservedCustomer locates the seeded default customer for a fresh tenant.
func reservedCustomer(t *testing.T, env *testEnv) models.Customer {
	t.Helper()
	customers, _, err := env.customers.GetCustomers(testTenant, 1, 50, nil)
	if err != nil {
		t.Fatalf("list customers failed: %v", err)
	}
	for _, c := range customers {
		if c.Name == models.ReservedCustomerName {
			return c
		}
	}
	t.Fatalf("default customer %q not seeded", models.ReservedCustomerName)
	return models.Customer{}
}

func TestDefaultCustomerIsSeeded(t *testing.T) {
	env := newTestEnv(t)
	c := reservedCustomer(t, env)
	if c.ID == 0 {
		t.Fatal("expected seeded customer to have an ID")
	}
}

func TestCannotCreateSecondDefaultCustomer(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.customers.CreateCustomer(testTenant, CreateCustomerRequest{
		Name: models.ReservedCustomerName,
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestCannotUpdateOrDeleteDefaultCustomer(t *testing.T) {
	env := newTestEnv(t)
	c := reservedCustomer(t, env)

	_, err := env.customers.UpdateCustomer(testTenant, c.ID, UpdateCustomerRequest{
		Name: strPtr("Renamed"),
	})
	if !errors.Is(err, ErrReservedCustomer) {
		t.Errorf("update: expected ErrReservedCustomer, got %v", err)
	}

	if err := env.customers.DeleteCustomer(testTenant, c.ID); !errors.Is(err, ErrReservedCustomer) {
		t.Errorf("delete: expected ErrReservedCustomer, got %v", err)
	}
}

func TestCannotRenameCustomerOntoDefaultName(t *testing.T) {
	env := newTestEnv(t)
	created, err := env.customers.CreateCustomer(testTenant, CreateCustomerRequest{Name: "Aigerim"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	_, err = env.customers.UpdateCustomer(testTenant, created.ID, UpdateCustomerRequest{
		Name: strPtr(models.ReservedCustomerName),
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestCustomerCRUD(t *testing.T) {
	env := newTestEnv(t)
	created, err := env.customers.CreateCustomer(testTenant, CreateCustomerRequest{
		Name:  "Dastan",
		Phone: strPtr("+7 701 000 0000"),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := env.customers.UpdateCustomer(testTenant, created.ID, UpdateCustomerRequest{
		Email: strPtr("dastan@example.kz"),
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Name != "Dastan" {
		t.Errorf("name = %q, want unchanged", updated.Name)
	}
	if updated.Phone == nil || *updated.Phone != "+7 701 000 0000" {
		t.Errorf("phone = %v, want unchanged", updated.Phone)
	}
	if updated.Email == nil || *updated.Email != "dastan@example.kz" {
		t.Errorf("email = %v, want dastan@example.kz", updated.Email)
	}

	if err := env.customers.DeleteCustomer(testTenant, created.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := env.customers.GetCustomerByID(testTenant, created.ID); !errors.Is(err, ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
}
