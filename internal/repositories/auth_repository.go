package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shopledger_backend/internal/models"
)

// AuthRepository defines the interface for registry database operations:
// the top-level store mapping login identities to tenant keys.
type AuthRepository interface {
	CreateAccount(executor SQLExecutor, account *models.ShopAccount, hashedPassword string) (int64, error)
	FindAccountByEmail(executor SQLExecutor, email string) (*models.ShopAccount, string, error) // Returns account, hashed password, error
	FindAccountByID(executor SQLExecutor, id int64) (*models.ShopAccount, error)
}

type authRepository struct{}

// NewAuthRepository creates a new instance of AuthRepository.
func NewAuthRepository() AuthRepository {
	return &authRepository{}
}

// CreateAccount inserts a new shop account into the registry.
func (r *authRepository) CreateAccount(executor SQLExecutor, account *models.ShopAccount, hashedPassword string) (int64, error) {
	query := `INSERT INTO shop_accounts (email, password_hash, shop_name, owner_name, tenant_key, created_at)
	          VALUES (?, ?, ?, ?, ?, ?)
	          RETURNING id`

	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now()
	}

	err := executor.QueryRow(query,
		account.Email, hashedPassword, account.ShopName, account.OwnerName,
		account.TenantKey, account.CreatedAt,
	).Scan(&account.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: email or tenant key already registered: %v", ErrDuplicateKey, err)
		}
		return 0, fmt.Errorf("%w: creating shop account: %v", ErrDatabaseError, err)
	}
	return account.ID, nil
}

// FindAccountByEmail retrieves an account by email along with its password hash.
func (r *authRepository) FindAccountByEmail(executor SQLExecutor, email string) (*models.ShopAccount, string, error) {
	account := &models.ShopAccount{}
	var hashedPassword string
	query := `SELECT id, email, password_hash, shop_name, owner_name, tenant_key, created_at
	          FROM shop_accounts WHERE email = ?`

	err := executor.QueryRow(query, email).Scan(
		&account.ID, &account.Email, &hashedPassword, &account.ShopName,
		&account.OwnerName, &account.TenantKey, &account.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("%w: finding account by email: %v", ErrDatabaseError, err)
	}
	return account, hashedPassword, nil
}

// FindAccountByID retrieves an account by its registry id.
func (r *authRepository) FindAccountByID(executor SQLExecutor, id int64) (*models.ShopAccount, error) {
	account := &models.ShopAccount{}
	query := `SELECT id, email, password_hash, shop_name, owner_name, tenant_key, created_at
	          FROM shop_accounts WHERE id = ?`

	err := executor.QueryRow(query, id).Scan(
		&account.ID, &account.Email, &account.PasswordHash, &account.ShopName,
		&account.OwnerName, &account.TenantKey, &account.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: finding account by ID %d: %v", ErrDatabaseError, id, err)
	}
	return account, nil
}
