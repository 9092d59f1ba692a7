package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"shopledger_backend/internal/database"
	"shopledger_backend/internal/models"
	"shopledger_backend/internal/repositories"
	"shopledger_backend/pkg/utils"
)

// --- Custom Service Errors ---
var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("email already registered")
	ErrTokenGeneration    = errors.New("failed to generate token")
)

// --- Data Transfer Objects (DTOs) ---

// RegisterShopRequest DTO
type RegisterShopRequest struct {
	Email     string  `json:"email" binding:"required,email"`
	Password  string  `json:"password" binding:"required,min=8"`
	ShopName  string  `json:"shop_name" binding:"required"`
	OwnerName *string `json:"owner_name"`
}

// LoginRequest DTO
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse DTO
type AuthResponse struct {
	Account      *models.ShopAccount `json:"account"`
	AccessToken  string              `json:"access_token"`
	RefreshToken string              `json:"refresh_token,omitempty"`
}

// --- AuthService Interface ---
type AuthService interface {
	RegisterShop(req RegisterShopRequest) (*models.ShopAccount, error)
	Login(req LoginRequest) (*AuthResponse, error)
	GetAccountProfile(accountID int64) (*models.ShopAccount, error)
}

type authService struct {
	authRepo repositories.AuthRepository
	dir      *database.TenantDirectory
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(authRepo repositories.AuthRepository, dir *database.TenantDirectory) AuthService {
	return &authService{
		authRepo: authRepo,
		dir:      dir,
	}
}

// RegisterShop creates the registry account and provisions the shop's
// isolated store. The tenant key is a fresh UUID; the store is created
// eagerly here so the first authenticated request never pays the
// provisioning cost.
func (s *authService) RegisterShop(req RegisterShopRequest) (*models.ShopAccount, error) {
	if strings.TrimSpace(req.ShopName) == "" {
		return nil, fmt.Errorf("%w: shop name cannot be empty", ErrValidation)
	}

	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	registry, err := s.dir.OpenRegistry()
	if err != nil {
		return nil, err
	}
	defer registry.Close()

	account := &models.ShopAccount{
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		ShopName:  req.ShopName,
		OwnerName: req.OwnerName,
		TenantKey: uuid.NewString(),
	}
	accountID, err := s.authRepo.CreateAccount(registry, account, string(hashedPasswordBytes))
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to register shop: %w", err)
	}

	tenantDB, err := s.dir.Resolve(account.TenantKey)
	if err != nil {
		return nil, fmt.Errorf("account created but tenant store provisioning failed: %w", err)
	}
	tenantDB.Close()

	registered, err := s.authRepo.FindAccountByID(registry, accountID)
	if err != nil {
		account.ID = accountID
		return account, nil
	}
	registered.PasswordHash = ""
	return registered, nil
}

// Login verifies credentials and issues tokens carrying the tenant key.
func (s *authService) Login(req LoginRequest) (*AuthResponse, error) {
	registry, err := s.dir.OpenRegistry()
	if err != nil {
		return nil, err
	}
	defer registry.Close()

	account, storedHashedPassword, err := s.authRepo.FindAccountByEmail(registry, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login attempt failed: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(storedHashedPassword), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	accessToken, err := utils.GenerateAccessToken(account.ID, account.Email, account.ShopName, account.TenantKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}
	refreshToken, err := utils.GenerateRefreshToken(account.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}

	account.PasswordHash = ""
	return &AuthResponse{
		Account:      account,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// GetAccountProfile retrieves an account's profile by its registry id.
func (s *authService) GetAccountProfile(accountID int64) (*models.ShopAccount, error) {
	registry, err := s.dir.OpenRegistry()
	if err != nil {
		return nil, err
	}
	defer registry.Close()

	account, err := s.authRepo.FindAccountByID(registry, accountID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to retrieve account profile: %w", err)
	}
	account.PasswordHash = ""
	return account, nil
}
