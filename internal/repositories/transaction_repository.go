package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"shopledger_backend/internal/models"
)

// TransactionRepository defines the interface for financial ledger database
// operations.
type TransactionRepository interface {
	CreateTransaction(executor SQLExecutor, record *models.Transaction) (int64, error)
	GetTransactionByID(executor SQLExecutor, id int64) (*models.Transaction, error)
	GetTransactions(executor SQLExecutor, typeFilter *string) ([]models.Transaction, error)
	UpdateTransaction(executor SQLExecutor, record *models.Transaction) error
	DeleteTransaction(executor SQLExecutor, id int64) error
}

type transactionRepository struct{}

// NewTransactionRepository creates a new instance of TransactionRepository.
func NewTransactionRepository() TransactionRepository {
	return &transactionRepository{}
}

// CreateTransaction inserts one ledger row. Counterparty resolution happens
// in the service; by the time this runs the references are final.
func (r *transactionRepository) CreateTransaction(executor SQLExecutor, record *models.Transaction) (int64, error) {
	query := `INSERT INTO transactions (type, payment_status, amount, supplier_id, customer_id, transaction_date, notes, created_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	          RETURNING id`

	currentTime := time.Now()
	if record.TransactionDate.IsZero() {
		record.TransactionDate = currentTime
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = currentTime
	}

	err := executor.QueryRow(query,
		record.Type, record.PaymentStatus, record.Amount, record.SupplierID, record.CustomerID,
		record.TransactionDate, record.Notes, record.CreatedAt,
	).Scan(&record.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, fmt.Errorf("%w: transaction counterparty does not exist: %v", ErrDatabaseError, err)
		}
		return 0, fmt.Errorf("%w: creating transaction: %v", ErrDatabaseError, err)
	}
	return record.ID, nil
}

// GetTransactionByID retrieves one ledger row with counterparty names joined.
func (r *transactionRepository) GetTransactionByID(executor SQLExecutor, id int64) (*models.Transaction, error) {
	record := &models.Transaction{}
	query := `SELECT t.id, t.type, t.payment_status, t.amount, t.supplier_id, t.customer_id,
	            t.transaction_date, t.notes, t.created_at, s.name, c.name
	          FROM transactions t
	          LEFT JOIN suppliers s ON s.id = t.supplier_id
	          LEFT JOIN customers c ON c.id = t.customer_id
	          WHERE t.id = ?`

	var supplierName, customerName sql.NullString
	err := executor.QueryRow(query, id).Scan(
		&record.ID, &record.Type, &record.PaymentStatus, &record.Amount,
		&record.SupplierID, &record.CustomerID, &record.TransactionDate,
		&record.Notes, &record.CreatedAt, &supplierName, &customerName,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting transaction by ID %d: %v", ErrDatabaseError, id, err)
	}
	if supplierName.Valid {
		record.SupplierName = &supplierName.String
	}
	if customerName.Valid {
		record.CustomerName = &customerName.String
	}
	return record, nil
}

// GetTransactions lists the ledger newest first, breaking same-date ties by
// id so the ordering is deterministic. Optional type filter.
func (r *transactionRepository) GetTransactions(executor SQLExecutor, typeFilter *string) ([]models.Transaction, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT t.id, t.type, t.payment_status, t.amount, t.supplier_id, t.customer_id,
	                          t.transaction_date, t.notes, t.created_at, s.name, c.name
	                          FROM transactions t
	                          LEFT JOIN suppliers s ON s.id = t.supplier_id
	                          LEFT JOIN customers c ON c.id = t.customer_id`)

	var args []interface{}
	if typeFilter != nil && *typeFilter != "" {
		queryBuilder.WriteString(" WHERE t.type = ?")
		args = append(args, *typeFilter)
	}
	queryBuilder.WriteString(" ORDER BY t.transaction_date DESC, t.id DESC")

	rows, err := executor.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying transactions: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	records := []models.Transaction{}
	for rows.Next() {
		var record models.Transaction
		var supplierName, customerName sql.NullString
		if err := rows.Scan(
			&record.ID, &record.Type, &record.PaymentStatus, &record.Amount,
			&record.SupplierID, &record.CustomerID, &record.TransactionDate,
			&record.Notes, &record.CreatedAt, &supplierName, &customerName,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning transaction: %v", ErrDatabaseError, err)
		}
		if supplierName.Valid {
			name := supplierName.String
			record.SupplierName = &name
		}
		if customerName.Valid {
			name := customerName.String
			record.CustomerName = &name
		}
		records = append(records, record)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating transactions: %v", ErrDatabaseError, err)
	}
	return records, nil
}

// UpdateTransaction updates one ledger row. No cascading side effects.
func (r *transactionRepository) UpdateTransaction(executor SQLExecutor, record *models.Transaction) error {
	query := `UPDATE transactions SET
	            type = ?, payment_status = ?, amount = ?, supplier_id = ?, customer_id = ?,
	            transaction_date = ?, notes = ?
	          WHERE id = ?`

	result, err := executor.Exec(query,
		record.Type, record.PaymentStatus, record.Amount, record.SupplierID, record.CustomerID,
		record.TransactionDate, record.Notes, record.ID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: transaction counterparty does not exist: %v", ErrDatabaseError, err)
		}
		return fmt.Errorf("%w: updating transaction ID %d: %v", ErrDatabaseError, record.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for updating transaction ID %d: %v", ErrDatabaseError, record.ID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTransaction hard-deletes one ledger row.
func (r *transactionRepository) DeleteTransaction(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting transaction ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for deleting transaction ID %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
