package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"shopledger_backend/internal/models"
)

// CustomerRepository defines the interface for customer-related database operations.
type CustomerRepository interface {
	CreateCustomer(executor SQLExecutor, customer *models.Customer) (int64, error)
	GetCustomerByID(executor SQLExecutor, id int64) (*models.Customer, error)
	GetCustomerByName(executor SQLExecutor, name string) (*models.Customer, error)
	GetCustomers(executor SQLExecutor, page, pageSize int, searchTerm *string) ([]models.Customer, int, error)
	UpdateCustomer(executor SQLExecutor, customer *models.Customer) error
	DeleteCustomer(executor SQLExecutor, id int64) error
}

type customerRepository struct{}

// NewCustomerRepository creates a new instance of CustomerRepository.
func NewCustomerRepository() CustomerRepository {
	return &customerRepository{}
}

// CreateCustomer inserts a new customer into the tenant store.
func (r *customerRepository) CreateCustomer(executor SQLExecutor, customer *models.Customer) (int64, error) {
	query := `INSERT INTO customers (name, phone, email, notes, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?)
	          RETURNING id`

	currentTime := time.Now()
	if customer.CreatedAt.IsZero() {
		customer.CreatedAt = currentTime
	}
	customer.UpdatedAt = currentTime

	err := executor.QueryRow(query,
		customer.Name, customer.Phone, customer.Email, customer.Notes,
		customer.CreatedAt, customer.UpdatedAt,
	).Scan(&customer.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating customer: %v", ErrDatabaseError, err)
	}
	return customer.ID, nil
}

// GetCustomerByID retrieves a customer by their ID.
func (r *customerRepository) GetCustomerByID(executor SQLExecutor, id int64) (*models.Customer, error) {
	customer := &models.Customer{}
	query := `SELECT id, name, phone, email, notes, created_at, updated_at
	          FROM customers WHERE id = ?`

	err := executor.QueryRow(query, id).Scan(
		&customer.ID, &customer.Name, &customer.Phone, &customer.Email, &customer.Notes,
		&customer.CreatedAt, &customer.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting customer by ID %d: %v", ErrDatabaseError, id, err)
	}
	return customer, nil
}

// GetCustomerByName retrieves a customer by exact name. Used to look up the
// reserved default customer.
func (r *customerRepository) GetCustomerByName(executor SQLExecutor, name string) (*models.Customer, error) {
	customer := &models.Customer{}
	query := `SELECT id, name, phone, email, notes, created_at, updated_at
	          FROM customers WHERE name = ? ORDER BY id ASC LIMIT 1`

	err := executor.QueryRow(query, name).Scan(
		&customer.ID, &customer.Name, &customer.Phone, &customer.Email, &customer.Notes,
		&customer.CreatedAt, &customer.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting customer by name %s: %v", ErrDatabaseError, name, err)
	}
	return customer, nil
}

// GetCustomers retrieves a list of customers with pagination and optional search.
func (r *customerRepository) GetCustomers(executor SQLExecutor, page, pageSize int, searchTerm *string) ([]models.Customer, int, error) {
	customers := []models.Customer{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT id, name, phone, email, notes, created_at, updated_at,
	                          COUNT(*) OVER() AS total_count FROM customers`)

	var args []interface{}
	if searchTerm != nil && *searchTerm != "" {
		queryBuilder.WriteString(" WHERE LOWER(name) LIKE ?")
		args = append(args, "%"+strings.ToLower(*searchTerm)+"%")
	}

	queryBuilder.WriteString(" ORDER BY name ASC")
	if pageSize > 0 {
		queryBuilder.WriteString(" LIMIT ? OFFSET ?")
		offset := 0
		if page > 1 {
			offset = (page - 1) * pageSize
		}
		args = append(args, pageSize, offset)
	}

	rows, err := executor.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying customers: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var customer models.Customer
		if err := rows.Scan(
			&customer.ID, &customer.Name, &customer.Phone, &customer.Email, &customer.Notes,
			&customer.CreatedAt, &customer.UpdatedAt, &totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning customer: %v", ErrDatabaseError, err)
		}
		customers = append(customers, customer)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating customer rows: %v", ErrDatabaseError, err)
	}

	return customers, totalCount, nil
}

// UpdateCustomer updates an existing customer.
func (r *customerRepository) UpdateCustomer(executor SQLExecutor, customer *models.Customer) error {
	query := `UPDATE customers SET name = ?, phone = ?, email = ?, notes = ?, updated_at = ? WHERE id = ?`

	customer.UpdatedAt = time.Now()
	result, err := executor.Exec(query,
		customer.Name, customer.Phone, customer.Email, customer.Notes, customer.UpdatedAt, customer.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: updating customer ID %d: %v", ErrDatabaseError, customer.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for updating customer ID %d: %v", ErrDatabaseError, customer.ID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCustomer removes a customer from the tenant store.
func (r *customerRepository) DeleteCustomer(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM customers WHERE id = ?`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: customer ID %d is referenced by ledger records: %v", ErrDatabaseError, id, err)
		}
		return fmt.Errorf("%w: deleting customer ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for deleting customer ID %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
