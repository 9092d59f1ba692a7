package services

import (
	"errors"
	"fmt"
	"strings"

	"shopledger_backend/internal/database"
	"shopledger_backend/internal/models"
	"shopledger_backend/internal/repositories"
)

// --- Custom Service Errors for Suppliers ---
var (
	ErrSupplierNotFound = errors.New("supplier not found")
	ErrLinkNotFound     = errors.New("supplier-product link not found")
)

// --- Supplier DTOs ---

type CreateSupplierRequest struct {
	Name    string  `json:"name" binding:"required"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
	Address *string `json:"address"`
	Notes   *string `json:"notes"`
}

type UpdateSupplierRequest struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
	Address *string `json:"address"`
	Notes   *string `json:"notes"`
}

// PricingRequest carries the pricing side-record for a link. SupplierPrice
// is required and must be non-negative; the record replaces any previous
// pricing wholesale.
type PricingRequest struct {
	SupplierPrice *float64 `json:"supplier_price" binding:"required"`
	SupplierSKU   *string  `json:"supplier_sku"`
	MinOrderQty   *int     `json:"min_order_qty"`
	LeadTimeDays  *int     `json:"lead_time_days"`
	IsActive      *bool    `json:"is_active"`
}

// --- SupplierService Interface ---
type SupplierService interface {
	CreateSupplier(tenantKey string, req CreateSupplierRequest) (*models.Supplier, error)
	GetSupplierByID(tenantKey string, supplierID int64) (*models.Supplier, error)
	GetSuppliers(tenantKey string, page, pageSize int, searchTerm *string) ([]models.Supplier, int, error)
	UpdateSupplier(tenantKey string, supplierID int64, req UpdateSupplierRequest) (*models.Supplier, error)
	DeleteSupplier(tenantKey string, supplierID int64) error

	LinkProductToSupplier(tenantKey string, supplierID, productID int64, pricing PricingRequest) error
	UnlinkProductFromSupplier(tenantKey string, supplierID, productID int64) error
	UpdatePricing(tenantKey string, supplierID, productID int64, pricing PricingRequest) error
	GetLinkedProducts(tenantKey string, supplierID int64) ([]models.LinkedProduct, error)
	GetLinkedSuppliers(tenantKey string, productID int64) ([]models.LinkedSupplier, error)
}

type supplierService struct {
	supplierRepo repositories.SupplierRepository
	productRepo  repositories.ProductRepository
	dir          *database.TenantDirectory
}

// NewSupplierService creates a new instance of SupplierService.
func NewSupplierService(
	sr repositories.SupplierRepository,
	pr repositories.ProductRepository,
	dir *database.TenantDirectory,
) SupplierService {
	return &supplierService{
		supplierRepo: sr,
		productRepo:  pr,
		dir:          dir,
	}
}

func (s *supplierService) CreateSupplier(tenantKey string, req CreateSupplierRequest) (*models.Supplier, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: supplier name cannot be empty", ErrValidation)
	}

	db, err := s.dir.Resolve(tenantKey)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	supplier := &models.Supplier{
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
		Notes:   req.Notes,
	}
	id, err := s.supplierRepo.CreateSupplier(db, supplier)
	if err != nil {
		return nil, fmt.Errorf("failed to create supplier: %w", err)
	}
	return s.supplierRepo.GetSupplierByID(db, id)
}

func (s *supplierService) GetSupplierByID(tenantKey string, supplierID int64) (*models.Supplier, error) {
	db, err := s.dir.Resolve(tenantKey)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	supplier, err := s.supplierRepo.GetSupplierByID(db, supplierID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSupplierNotFound
		}
		return nil, fmt.Errorf("failed to get supplier by ID: %w", err)
	}
	return supplier, nil
}

func (s *supplierService) GetSuppliers(tenantKey string, page, pageSize int, searchTerm *string) ([]models.Supplier, int, error) {
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

	suppliers, totalCount, err := s.supplierRepo.GetSuppliers(db, page, pageSize, searchTerm)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get suppliers: %w", err)
	}
	return suppliers, totalCount, nil
}

func (s *supplierService) UpdateSupplier(tenantKey string, supplierID int64, req UpdateSupplierRequest) (*models.Supplier, error) {
	db, err := s.dir.Resolve(tenantKey)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	supplier, err := s.supplierRepo.GetSupplierByID(db, supplierID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSupplierNotFound
		}
		return nil, fmt.Errorf("failed to find supplier for update: %w", err)
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, fmt.Errorf("%w: supplier name cannot be empty if provided", ErrValidation)
		}
		supplier.Name = *req.Name
	}
	if req.Phone != nil {
		supplier.Phone = req.Phone
	}
	if req.Email != nil {
		supplier.Email = req.Email
	}
	if req.Address != nil {
		supplier.Address = req.Address
	}
	if req.Notes != nil {
		supplier.Notes = req.Notes
	}

	if err := s.supplierRepo.UpdateSupplier(db, supplier); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSupplierNotFound
		}
		return nil, fmt.Errorf("failed to update supplier: %w", err)
	}
	return s.supplierRepo.GetSupplierByID(db, supplierID)
}

func (s *supplierService) DeleteSupplier(tenantKey string, supplierID int64) error {
	db, err := s.dir.Resolve(tenantKey)
	if err != nil {
		return err
	}
	defer db.Close()

	err = s.supplierRepo.DeleteSupplier(db, supplierID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrSupplierNotFound
		}
		return fmt.Errorf("failed to delete supplier: %w", err)
	}
	return nil
}

// LinkProductToSupplier links a supplier and a product and records its
// pricing as one atomic unit. Any failure rolls the whole thing back,
// leaving neither a dangling link nor stale pricing.
func (s *supplierService) LinkProductToSupplier(tenantKey string, supplierID, productID int64, pricing PricingRequest) error {
	if pricing.SupplierPrice == nil {
		return fmt.Errorf("%w: supplier_price is required", ErrValidation)
	}
	if *pricing.SupplierPrice < 0 {
		return fmt.Errorf("%w: supplier_price cannot be negative", ErrValidation)
	}

	db, err := s.dir.Resolve(tenantKey)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := s.supplierRepo.GetSupplierByID(tx, supplierID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: supplier ID %d", ErrSupplierNotFound, supplierID)
		}
		return fmt.Errorf("failed to verify supplier for link: %w", err)
	}
	if _, err := s.productRepo.GetProductByID(tx, productID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: product ID %d", ErrProductNotFound, productID)
		}
		return fmt.Errorf("failed to verify product for link: %w", err)
	}

	if err := s.supplierRepo.InsertLink(tx, supplierID, productID); err != nil {
		return fmt.Errorf("failed to insert supplier-product link: %w", err)
	}
	if err := s.supplierRepo.UpsertPricing(tx, buildPricing(supplierID, productID, pricing)); err != nil {
		return fmt.Errorf("failed to upsert pricing: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit link transaction: %w", err)
	}
	return nil
}

// UnlinkProductFromSupplier removes pricing first, then the link, as one
// transaction. Pricing has a foreign key onto the link and must go first.
func (s *supplierService) UnlinkProductFromSupplier(tenantKey string, supplierID, productID int64) error {
	db, err := s.dir.Resolve(tenantKey)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.supplierRepo.DeletePricing(tx, supplierID, productID); err != nil {
		return fmt.Errorf("failed to delete pricing: %w", err)
	}
	if err := s.supplierRepo.DeleteLink(tx, supplierID, productID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrLinkNotFound
		}
		return fmt.Errorf("failed to delete link: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit unlink transaction: %w", err)
	}
	return nil
}

// UpdatePricing replaces the pricing record independently of re-linking.
func (s *supplierService) UpdatePricing(tenantKey string, supplierID, productID int64, pricing PricingRequest) error {
	if pricing.SupplierPrice == nil {
		return fmt.Errorf("%w: supplier_price is required", ErrValidation)
	}
	if *pricing.SupplierPrice < 0 {
		return fmt.Errorf("%w: supplier_price cannot be negative", ErrValidation)
	}

	db, err := s.dir.Resolve(tenantKey)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := s.supplierRepo.UpsertPricing(db, buildPricing(supplierID, productID, pricing)); err != nil {
		return fmt.Errorf("failed to update pricing: %w", err)
	}
	return nil
}

func (s *supplierService) GetLinkedProducts(tenantKey string, supplierID int64) ([]models.LinkedProduct, error) {
	db, err := s.dir.Resolve(tenantKey)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if _, err := s.supplierRepo.GetSupplierByID(db, supplierID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSupplierNotFound
		}
		return nil, fmt.Errorf("failed to verify supplier: %w", err)
	}
	linked, err := s.supplierRepo.GetLinkedProducts(db, supplierID)
	if err != nil {
		return nil, fmt.Errorf("failed to get linked products: %w", err)
	}
	return linked, nil
}

func (s *supplierService) GetLinkedSuppliers(tenantKey string, productID int64) ([]models.LinkedSupplier, error) {
	db, err := s.dir.Resolve(tenantKey)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if _, err := s.productRepo.GetProductByID(db, productID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to verify product: %w", err)
	}
	linked, err := s.supplierRepo.GetLinkedSuppliers(db, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get linked suppliers: %w", err)
	}
	return linked, nil
}

// buildPricing maps a validated PricingRequest onto the full pricing row.
// Active defaults to true when not supplied.
func buildPricing(supplierID, productID int64, req PricingRequest) *models.SupplierPricing {
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	return &models.SupplierPricing{
		SupplierID:    supplierID,
		ProductID:     productID,
		SupplierPrice: *req.SupplierPrice,
		SupplierSKU:   req.SupplierSKU,
		MinOrderQty:   req.MinOrderQty,
		LeadTimeDays:  req.LeadTimeDays,
		IsActive:      isActive,
	}
}
