package services

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"shopledger_backend/internal/database"
	"shopledger_backend/internal/repositories"
	"shopledger_backend/pkg/utils"
)

func newAuthEnv(t *testing.T) (AuthService, string) {
	t.Helper()
	utils.SetJWTSecret("test-secret")
	root := t.TempDir()
	dir := database.NewTenantDirectory(root)
	return NewAuthService(repositories.NewAuthRepository(), dir), root
}

func TestRegisterShopProvisionsTenantStore(t *testing.T) {
	svc, root := newAuthEnv(t)

	account, err := svc.RegisterShop(RegisterShopRequest{
		Email:    "Owner@Example.KZ",
		Password: "correct-horse",
		ShopName: "Dastarkhan",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if account.ID == 0 {
		t.Error("expected a registry account ID")
	}
	if account.TenantKey == "" {
		t.Fatal("expected a tenant key")
	}
	if account.Email != "owner@example.kz" {
		t.Errorf("email = %q, want lowercased", account.Email)
	}
	if account.PasswordHash != "" {
		t.Error("password hash must never leave the service")
	}

	storePath := filepath.Join(root, "shops", account.TenantKey, "shop.db")
	if _, err := os.Stat(storePath); err != nil {
		t.Errorf("tenant store not provisioned at %s: %v", storePath, err)
	}
}

func TestRegisterShopDuplicateEmail(t *testing.T) {
	svc, _ := newAuthEnv(t)

	req := RegisterShopRequest{Email: "shop@example.kz", Password: "password1", ShopName: "First"}
	if _, err := svc.RegisterShop(req); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	req.ShopName = "Second"
	if _, err := svc.RegisterShop(req); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

func TestLoginIssuesTokenWithTenantKey(t *testing.T) {
	svc, _ := newAuthEnv(t)

	registered, err := svc.RegisterShop(RegisterShopRequest{
		Email:    "login@example.kz",
		Password: "password1",
		ShopName: "Corner Store",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	resp, err := svc.Login(LoginRequest{Email: "login@example.kz", Password: "password1"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("expected both tokens")
	}

	claims, err := utils.ValidateToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("validate token failed: %v", err)
	}
	if claims.UserID != registered.ID {
		t.Errorf("token user id = %d, want %d", claims.UserID, registered.ID)
	}
	if claims.TenantKey != registered.TenantKey {
		t.Errorf("token tenant key = %q, want %q", claims.TenantKey, registered.TenantKey)
	}
	if claims.ShopName != "Corner Store" {
		t.Errorf("token shop name = %q, want Corner Store", claims.ShopName)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newAuthEnv(t)

	if _, err := svc.RegisterShop(RegisterShopRequest{
		Email:    "shop@example.kz",
		Password: "password1",
		ShopName: "Shop",
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, err := svc.Login(LoginRequest{Email: "shop@example.kz", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(LoginRequest{Email: "nobody@example.kz", Password: "password1"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestGetAccountProfile(t *testing.T) {
	svc, _ := newAuthEnv(t)

	registered, err := svc.RegisterShop(RegisterShopRequest{
		Email:    "profile@example.kz",
		Password: "password1",
		ShopName: "Profile Shop",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	profile, err := svc.GetAccountProfile(registered.ID)
	if err != nil {
		t.Fatalf("get profile failed: %v", err)
	}
	if profile.Email != "profile@example.kz" || profile.ShopName != "Profile Shop" {
		t.Errorf("profile = %+v, want registered values", profile)
	}
	if profile.PasswordHash != "" {
		t.Error("password hash must never leave the service")
	}

	if _, err := svc.GetAccountProfile(9999); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}
