package services

import (
	"errors"
	"fmt"
	"strings"

	"shopledger_backend/internal/database"
	"shopledger_backend/internal/models"
	"shopledger_backend/internal/repositories"
)

// --- Custom Service Errors ---
var (
	ErrValidation      = errors.New("validation error")
	ErrProductNotFound = errors.New("product not found")
	ErrBarcodeExists   = errors.New("barcode already in use")
)

// --- Product DTOs ---

// CreateProductRequest carries the fields for a new product.
type CreateProductRequest struct {
	Name       string  `json:"name" binding:"required"`
	Price      float64 `json:"price"`
	Barcode    *string `json:"barcode"`
	Origin     *string `json:"origin"`
	ExpiryDate *string `json:"expiry_date"`
}

// UpdateProductRequest is a sparse patch: only non-nil fields are applied,
// omitted fields are left untouched, never nulled.
type UpdateProductRequest struct {
	Name       *string  `json:"name"`
	Price      *float64 `json:"price"`
	Barcode    *string  `json:"barcode"`
	Origin     *string  `json:"origin"`
	ExpiryDate *string  `json:"expiry_date"`
}

// --- ProductService Interface ---
type ProductService interface {
	CreateProduct(tenantKey string, req CreateProductRequest) (*models.Product, error)
	GetProductByID(tenantKey string, productID int64) (*models.Product, error)
	GetProductByBarcode(tenantKey string, barcode string) (*models.Product, error)
	GetProducts(tenantKey string, page, pageSize int, searchTerm *string) ([]models.Product, int, error)
	UpdateProduct(tenantKey string, productID int64, req UpdateProductRequest) (*models.Product, error)
	DeleteProduct(tenantKey string, productID int64) error
}

type productService struct {
	productRepo repositories.ProductRepository
	dir         *database.TenantDirectory
}

// NewProductService creates a new instance of ProductService.
func NewProductService(repo repositories.ProductRepository, dir *database.TenantDirectory) ProductService {
	return &productService{
		productRepo: repo,
		dir:         dir,
	}
}

func (s *productService) CreateProduct(tenantKey string, req CreateProductRequest) (*models.Product, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: product name cannot be empty", ErrValidation)
	}
	if req.Price < 0 {
		return nil, fmt.Errorf("%w: product price cannot be negative", ErrValidation)
	}

	db, err := s.dir.Resolve(tenantKey)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	product := &models.Product{
		Name:       req.Name,
		Price:      req.Price,
		Barcode:    req.Barcode,
		Origin:     req.Origin,
		ExpiryDate: req.ExpiryDate,
	}
	id, err := s.productRepo.CreateProduct(db, product)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: %s", ErrBarcodeExists, err.Error())
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return s.productRepo.GetProductByID(db, id)
}

func (s *productService) GetProductByID(tenantKey string, productID int64) (*models.Product, error) {
	db, err := s.dir.Resolve(tenantKey)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	product, err := s.productRepo.GetProductByID(db, productID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product by ID: %w", err)
	}
	return product, nil
}

func (s *productService) GetProductByBarcode(tenantKey string, barcode string) (*models.Product, error) {
	if strings.TrimSpace(barcode) == "" {
		return nil, fmt.Errorf("%w: barcode cannot be empty", ErrValidation)
	}

	db, err := s.dir.Resolve(tenantKey)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	product, err := s.productRepo.GetProductByBarcode(db, barcode)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product by barcode: %w", err)
	}
	return product, nil
}

func (s *productService) GetProducts(tenantKey string, page, pageSize int, searchTerm *string) ([]models.Product, int, error) {
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

	products, totalCount, err := s.productRepo.GetProducts(db, page, pageSize, searchTerm)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get products: %w", err)
	}
	return products, totalCount, nil
}

func (s *productService) UpdateProduct(tenantKey string, productID int64, req UpdateProductRequest) (*models.Product, error) {
	db, err := s.dir.Resolve(tenantKey)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	product, err := s.productRepo.GetProductByID(db, productID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product for update: %w", err)
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, fmt.Errorf("%w: product name cannot be empty if provided", ErrValidation)
		}
		product.Name = *req.Name
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, fmt.Errorf("%w: product price cannot be negative", ErrValidation)
		}
		product.Price = *req.Price
	}
	if req.Barcode != nil {
		product.Barcode = req.Barcode
	}
	if req.Origin != nil {
		product.Origin = req.Origin
	}
	if req.ExpiryDate != nil {
		product.ExpiryDate = req.ExpiryDate
	}

	err = s.productRepo.UpdateProduct(db, product)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: %s", ErrBarcodeExists, err.Error())
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return s.productRepo.GetProductByID(db, productID)
}

func (s *productService) DeleteProduct(tenantKey string, productID int64) error {
	db, err := s.dir.Resolve(tenantKey)
	if err != nil {
		return err
	}
	defer db.Close()

	err = s.productRepo.DeleteProduct(db, productID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}
