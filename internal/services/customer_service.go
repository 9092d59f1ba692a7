package services

import (
	"errors"
	"fmt"
	"strings"

	"shopledger_backend/internal/database"
	"shopledger_backend/internal/models"
	"shopledger_backend/internal/repositories"
)

var ErrCustomerNotFound = errors.New("customer not found")

// ErrReservedCustomer is returned for mutations targeting the default
// "Public/Client" row, which anonymous sales depend on.
var ErrReservedCustomer = errors.New("the default customer cannot be modified or deleted")

// --- Customer DTOs ---

type CreateCustomerRequest struct {
	Name  string  `json:"name" binding:"required"`
	Phone *string `json:"phone"`
	Email *string `json:"email"`
	Notes *string `json:"notes"`
}

type UpdateCustomerRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
	Email *string `json:"email"`
	Notes *string `json:"notes"`
}

// --- CustomerService Interface ---
type CustomerService interface {
	CreateCustomer(tenantKey string, req CreateCustomerRequest) (*models.Customer, error)
	GetCustomerByID(tenantKey string, customerID int64) (*models.Customer, error)
	GetCustomers(tenantKey string, page, pageSize int, searchTerm *string) ([]models.Customer, int, error)
	UpdateCustomer(tenantKey string, customerID int64, req UpdateCustomerRequest) (*models.Customer, error)
	DeleteCustomer(tenantKey string, customerID int64) error
}

type customerService struct {
	customerRepo repositories.CustomerRepository
	dir          *database.TenantDirectory
}

// NewCustomerService creates a new instance of CustomerService.
func NewCustomerService(cr repositories.CustomerRepository, dir *database.TenantDirectory) CustomerService {
	return &customerService{customerRepo: cr, dir: dir}
}

func (s *customerService) CreateCustomer(tenantKey string, req CreateCustomerRequest) (*models.Customer, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: customer name cannot be empty", ErrValidation)
	}
	if req.Name == models.ReservedCustomerName {
		return nil, fmt.Errorf("%w: %q is reserved", ErrValidation, models.ReservedCustomerName)
	}

	db, err := s.dir.Resolve(tenantKey)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	customer := &models.Customer{
		Name:  req.Name,
		Phone: req.Phone,
		Email: req.Email,
		Notes: req.Notes,
	}
	id, err := s.customerRepo.CreateCustomer(db, customer)
	if err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return s.customerRepo.GetCustomerByID(db, id)
}

func (s *customerService) GetCustomerByID(tenantKey string, customerID int64) (*models.Customer, error) {
	db, err := s.dir.Resolve(tenantKey)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	customer, err := s.customerRepo.GetCustomerByID(db, customerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to get customer by ID: %w", err)
	}
	return customer, nil
}

func (s *customerService) GetCustomers(tenantKey string, page, pageSize int, searchTerm *string) ([]models.Customer, int, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}

	db, err := s.dir.Resolve(tenantKey)
	if err != nil {
		return nil, 0, err
	}
	defer db.Close()

	customers, totalCount, err := s.customerRepo.GetCustomers(db, page, pageSize, searchTerm)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get customers: %w", err)
	}
	return customers, totalCount, nil
}

func (s *customerService) UpdateCustomer(tenantKey string, customerID int64, req UpdateCustomerRequest) (*models.Customer, error) {
	db, err := s.dir.Resolve(tenantKey)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	customer, err := s.customerRepo.GetCustomerByID(db, customerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to find customer for update: %w", err)
	}
	if customer.Name == models.ReservedCustomerName {
		return nil, ErrReservedCustomer
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, fmt.Errorf("%w: customer name cannot be empty if provided", ErrValidation)
		}
		if *req.Name == models.ReservedCustomerName {
			return nil, fmt.Errorf("%w: %q is reserved", ErrValidation, models.ReservedCustomerName)
		}
		customer.Name = *req.Name
	}
	if req.Phone != nil {
		customer.Phone = req.Phone
	}
	if req.Email != nil {
		customer.Email = req.Email
	}
	if req.Notes != nil {
		customer.Notes = req.Notes
	}

	if err := s.customerRepo.UpdateCustomer(db, customer); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}
	return s.customerRepo.GetCustomerByID(db, customerID)
}

func (s *customerService) DeleteCustomer(tenantKey string, customerID int64) error {
	db, err := s.dir.Resolve(tenantKey)
	if err != nil {
		return err
	}
	defer db.Close()

	customer, err := s.customerRepo.GetCustomerByID(db, customerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrCustomerNotFound
		}
		return fmt.Errorf("failed to find customer for deletion: %w", err)
	}
	if customer.Name == models.ReservedCustomerName {
		return ErrReservedCustomer
	}

	if err := s.customerRepo.DeleteCustomer(db, customerID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrCustomerNotFound
		}
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	return nil
}
