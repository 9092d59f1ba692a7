package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"shopledger_backend/internal/database"
	"shopledger_backend/internal/models"
	"shopledger_backend/internal/repositories"
)

var ErrTransactionNotFound = errors.New("transaction not found")

// --- Transaction DTOs ---

type CreateTransactionRequest struct {
	Type            string     `json:"type" binding:"required"`
	PaymentStatus   string     `json:"payment_status" binding:"required"`
	Amount          *float64   `json:"amount" binding:"required"`
	SupplierID      *int64     `json:"supplier_id"`
	CustomerID      *int64     `json:"customer_id"`
	TransactionDate *time.Time `json:"transaction_date"`
	Notes           *string    `json:"notes"`
}

type UpdateTransactionRequest struct {
	Type            *string    `json:"type"`
	PaymentStatus   *string    `json:"payment_status"`
	Amount          *float64   `json:"amount"`
	SupplierID      *int64     `json:"supplier_id"`
	CustomerID      *int64     `json:"customer_id"`
	TransactionDate *time.Time `json:"transaction_date"`
	Notes           *string    `json:"notes"`
}

// --- TransactionService Interface ---
type TransactionService interface {
	CreateTransaction(tenantKey string, req CreateTransactionRequest) (*models.Transaction, error)
	GetTransactionByID(tenantKey string, transactionID int64) (*models.Transaction, error)
	GetTransactions(tenantKey string, typeFilter *string) ([]models.Transaction, error)
	UpdateTransaction(tenantKey string, transactionID int64, req UpdateTransactionRequest) (*models.Transaction, error)
	DeleteTransaction(tenantKey string, transactionID int64) error
	GetBalance(tenantKey string) (*models.BalanceSummary, error)
}

type transactionService struct {
	transactionRepo repositories.TransactionRepository
	customerRepo    repositories.CustomerRepository
	supplierRepo    repositories.SupplierRepository
	dir             *database.TenantDirectory
}

// NewTransactionService creates a new instance of TransactionService.
func NewTransactionService(
	tr repositories.TransactionRepository,
	cr repositories.CustomerRepository,
	sr repositories.SupplierRepository,
	dir *database.TenantDirectory,
) TransactionService {
	return &transactionService{
		transactionRepo: tr,
		customerRepo:    cr,
		supplierRepo:    sr,
		dir:             dir,
	}
}

func validTransactionType(t string) bool {
	switch t {
	case models.TransactionPurchase, models.TransactionSale,
		models.TransactionDeposit, models.TransactionWithdrawal:
		return true
	}
	return false
}

func validPaymentStatus(s string) bool {
	return s == models.PaymentPaid || s == models.PaymentOwed
}

// CreateTransaction resolves the counterparty and appends one ledger row.
// A Sale with no customer falls back to the tenant's default customer; a
// Deposit or Withdrawal carries no counterparty at all.
func (s *transactionService) CreateTransaction(tenantKey string, req CreateTransactionRequest) (*models.Transaction, error) {
	if !validTransactionType(req.Type) {
		return nil, fmt.Errorf("%w: unknown transaction type %q", ErrValidation, req.Type)
	}
	if !validPaymentStatus(req.PaymentStatus) {
		return nil, fmt.Errorf("%w: payment status must be %q or %q", ErrValidation, models.PaymentPaid, models.PaymentOwed)
	}
	if req.Amount == nil || *req.Amount < 0 {
		return nil, fmt.Errorf("%w: amount must be a non-negative magnitude", ErrValidation)
	}

	db, err := s.dir.Resolve(tenantKey)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	record := &models.Transaction{
		Type:          req.Type,
		PaymentStatus: req.PaymentStatus,
		Amount:        *req.Amount,
		Notes:         req.Notes,
	}
	if req.TransactionDate != nil {
		record.TransactionDate = *req.TransactionDate
	}

	switch req.Type {
	case models.TransactionPurchase:
		if req.SupplierID != nil {
			if _, err := s.supplierRepo.GetSupplierByID(db, *req.SupplierID); err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					return nil, fmt.Errorf("%w: supplier ID %d", ErrSupplierNotFound, *req.SupplierID)
				}
				return nil, fmt.Errorf("failed to verify supplier: %w", err)
			}
			record.SupplierID = req.SupplierID
		}
	case models.TransactionSale:
		customerID, err := s.resolveSaleCustomer(db, req.CustomerID)
		if err != nil {
			return nil, err
		}
		record.CustomerID = &customerID
	}

	id, err := s.transactionRepo.CreateTransaction(db, record)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return s.transactionRepo.GetTransactionByID(db, id)
}

// resolveSaleCustomer returns the explicit customer, or the reserved
// default for anonymous sales. The default is looked up by name with an
// insert fallback, so two concurrent anonymous sales against a fresh
// tenant still converge on a single row.
func (s *transactionService) resolveSaleCustomer(db repositories.SQLExecutor, customerID *int64) (int64, error) {
	if customerID != nil {
		if _, err := s.customerRepo.GetCustomerByID(db, *customerID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return 0, fmt.Errorf("%w: customer ID %d", ErrCustomerNotFound, *customerID)
			}
			return 0, fmt.Errorf("failed to verify customer: %w", err)
		}
		return *customerID, nil
	}

	customer, err := s.customerRepo.GetCustomerByName(db, models.ReservedCustomerName)
	if err == nil {
		return customer.ID, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return 0, fmt.Errorf("failed to look up default customer: %w", err)
	}

	fallback := &models.Customer{Name: models.ReservedCustomerName}
	id, err := s.customerRepo.CreateCustomer(db, fallback)
	if err != nil {
		// Lost the race against another insert; the row exists now.
		customer, lookupErr := s.customerRepo.GetCustomerByName(db, models.ReservedCustomerName)
		if lookupErr == nil {
			return customer.ID, nil
		}
		return 0, fmt.Errorf("failed to create default customer: %w", err)
	}
	return id, nil
}

func (s *transactionService) GetTransactionByID(tenantKey string, transactionID int64) (*models.Transaction, error) {
	db, err := s.dir.Resolve(tenantKey)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	record, err := s.transactionRepo.GetTransactionByID(db, transactionID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction by ID: %w", err)
	}
	return record, nil
}

func (s *transactionService) GetTransactions(tenantKey string, typeFilter *string) ([]models.Transaction, error) {
	if typeFilter != nil && *typeFilter != "" && !validTransactionType(*typeFilter) {
		return nil, fmt.Errorf("%w: unknown transaction type %q", ErrValidation, *typeFilter)
	}

	db, err := s.dir.Resolve(tenantKey)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	records, err := s.transactionRepo.GetTransactions(db, typeFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}
	return records, nil
}

// UpdateTransaction corrects one ledger row in place. Correction, not
// re-posting: no counterparty re-resolution and no stock side effects.
func (s *transactionService) UpdateTransaction(tenantKey string, transactionID int64, req UpdateTransactionRequest) (*models.Transaction, error) {
	db, err := s.dir.Resolve(tenantKey)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	record, err := s.transactionRepo.GetTransactionByID(db, transactionID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to find transaction for update: %w", err)
	}

	if req.Type != nil {
		if !validTransactionType(*req.Type) {
			return nil, fmt.Errorf("%w: unknown transaction type %q", ErrValidation, *req.Type)
		}
		record.Type = *req.Type
	}
	if req.PaymentStatus != nil {
		if !validPaymentStatus(*req.PaymentStatus) {
			return nil, fmt.Errorf("%w: payment status must be %q or %q", ErrValidation, models.PaymentPaid, models.PaymentOwed)
		}
		record.PaymentStatus = *req.PaymentStatus
	}
	if req.Amount != nil {
		if *req.Amount < 0 {
			return nil, fmt.Errorf("%w: amount must be a non-negative magnitude", ErrValidation)
		}
		record.Amount = *req.Amount
	}
	if req.SupplierID != nil {
		record.SupplierID = req.SupplierID
	}
	if req.CustomerID != nil {
		record.CustomerID = req.CustomerID
	}
	if req.TransactionDate != nil {
		record.TransactionDate = *req.TransactionDate
	}
	if req.Notes != nil {
		record.Notes = req.Notes
	}

	if err := s.transactionRepo.UpdateTransaction(db, record); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}
	return s.transactionRepo.GetTransactionByID(db, transactionID)
}

func (s *transactionService) DeleteTransaction(tenantKey string, transactionID int64) error {
	db, err := s.dir.Resolve(tenantKey)
	if err != nil {
		return err
	}
	defer db.Close()

	err = s.transactionRepo.DeleteTransaction(db, transactionID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrTransactionNotFound
		}
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return nil
}

// GetBalance folds the whole ledger into a cash balance plus outstanding
// receivables and payables. Only paid rows move the balance: Sale and
// Deposit add, Purchase and Withdrawal subtract. Owed Sales accumulate as
// receivables, owed Purchases as payables. Decimal arithmetic keeps the
// running sums exact.
func (s *transactionService) GetBalance(tenantKey string) (*models.BalanceSummary, error) {
	db, err := s.dir.Resolve(tenantKey)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	records, err := s.transactionRepo.GetTransactions(db, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger for balance: %w", err)
	}

	balance := decimal.Zero
	receivables := decimal.Zero
	payables := decimal.Zero

	for _, record := range records {
		amount := decimal.NewFromFloat(record.Amount)

		if record.PaymentStatus == models.PaymentOwed {
			switch record.Type {
			case models.TransactionSale:
				receivables = receivables.Add(amount)
			case models.TransactionPurchase:
				payables = payables.Add(amount)
			}
			continue
		}

		switch record.Type {
		case models.TransactionSale, models.TransactionDeposit:
			balance = balance.Add(amount)
		case models.TransactionPurchase, models.TransactionWithdrawal:
			balance = balance.Sub(amount)
		}
	}

	return &models.BalanceSummary{
		Balance:     balance.InexactFloat64(),
		Receivables: receivables.InexactFloat64(),
		Payables:    payables.InexactFloat64(),
	}, nil
}
