package services

import (
	"errors"
	"fmt"
	"time"

	"shopledger_backend/internal/database"
	"shopledger_backend/internal/models"
	"shopledger_backend/internal/repositories"
)

// --- Custom Service Errors for Inventory ---
var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrBatchNotFound     = errors.New("inventory batch not found")
)

// --- Inventory DTOs ---

type AddBatchRequest struct {
	ProductID     int64    `json:"product_id" binding:"required"`
	PurchasePrice *float64 `json:"purchase_price" binding:"required"`
	SalePrice     *float64 `json:"sale_price" binding:"required"`
	Quantity      *int     `json:"quantity" binding:"required"`
	ExpiryDate    *string  `json:"expiry_date"`
}

type ReduceStockRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  *int  `json:"quantity" binding:"required"`
}

// ReducedBatch reports how much one batch contributed to a reduction.
type ReducedBatch struct {
	BatchID  int64 `json:"batch_id"`
	Quantity int   `json:"quantity"`
}

// --- InventoryService Interface ---
type InventoryService interface {
	AddBatch(tenantKey string, req AddBatchRequest) (*models.InventoryBatch, error)
	ReduceStock(tenantKey string, req ReduceStockRequest) ([]ReducedBatch, error)
	GetBatches(tenantKey string, productID *int64) ([]models.InventoryBatch, error)
	GetStockLevel(tenantKey string, productID int64) (int, error)
	GetMovements(tenantKey string, productID *int64, movementType *string) ([]models.StockMovement, error)
}

type inventoryService struct {
	inventoryRepo repositories.InventoryRepository
	productRepo   repositories.ProductRepository
	dir           *database.TenantDirectory
}

// NewInventoryService creates a new instance of InventoryService.
func NewInventoryService(
	ir repositories.InventoryRepository,
	pr repositories.ProductRepository,
	dir *database.TenantDirectory,
) InventoryService {
	return &inventoryService{
		inventoryRepo: ir,
		productRepo:   pr,
		dir:           dir,
	}
}

// AddBatch records a stock purchase as a new batch and writes the matching
// "In" movement in the same transaction.
func (s *inventoryService) AddBatch(tenantKey string, req AddBatchRequest) (*models.InventoryBatch, error) {
	if req.Quantity == nil || *req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}
	if req.PurchasePrice == nil || *req.PurchasePrice < 0 {
		return nil, fmt.Errorf("%w: purchase_price cannot be negative", ErrValidation)
	}
	if req.SalePrice == nil || *req.SalePrice < 0 {
		return nil, fmt.Errorf("%w: sale_price cannot be negative", ErrValidation)
	}

	db, err := s.dir.Resolve(tenantKey)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := s.productRepo.GetProductByID(tx, req.ProductID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: product ID %d", ErrProductNotFound, req.ProductID)
		}
		return nil, fmt.Errorf("failed to verify product for batch: %w", err)
	}

	batch := &models.InventoryBatch{
		ProductID:     req.ProductID,
		PurchasePrice: *req.PurchasePrice,
		SalePrice:     *req.SalePrice,
		Quantity:      *req.Quantity,
		ExpiryDate:    req.ExpiryDate,
		CreatedAt:     time.Now(),
	}
	if _, err := s.inventoryRepo.CreateBatch(tx, batch); err != nil {
		return nil, fmt.Errorf("failed to create inventory batch: %w", err)
	}

	movement := &models.StockMovement{
		BatchID:      batch.ID,
		MovementType: models.MovementIn,
		Quantity:     batch.Quantity,
		MovementDate: batch.CreatedAt,
	}
	if _, err := s.inventoryRepo.CreateMovement(tx, movement); err != nil {
		return nil, fmt.Errorf("failed to record stock movement: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit batch transaction: %w", err)
	}
	return batch, nil
}

// ReduceStock consumes stock oldest batch first. The total available
// quantity is checked up front inside the transaction; if it cannot cover
// the request, nothing is changed and ErrInsufficientStock is returned.
// Each batch touched gets its own "Out" movement row.
func (s *inventoryService) ReduceStock(tenantKey string, req ReduceStockRequest) ([]ReducedBatch, error) {
	if req.Quantity == nil || *req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}

	db, err := s.dir.Resolve(tenantKey)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	reduced, err := s.reduceStockTx(tx, req.ProductID, *req.Quantity, time.Now())
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit stock reduction: %w", err)
	}
	return reduced, nil
}

// reduceStockTx runs the FIFO walk inside the caller's transaction so that
// sale recording can consume stock and write its ledger row atomically.
func (s *inventoryService) reduceStockTx(tx repositories.SQLExecutor, productID int64, quantity int, at time.Time) ([]ReducedBatch, error) {
	batches, err := s.inventoryRepo.GetOpenBatches(tx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load open batches: %w", err)
	}

	available := 0
	for _, b := range batches {
		available += b.Quantity
	}
	if available < quantity {
		return nil, fmt.Errorf("%w: requested %d, available %d", ErrInsufficientStock, quantity, available)
	}

	remaining := quantity
	reduced := []ReducedBatch{}
	for _, batch := range batches {
		if remaining == 0 {
			break
		}
		take := batch.Quantity
		if take > remaining {
			take = remaining
		}

		if err := s.inventoryRepo.SetBatchQuantity(tx, batch.ID, batch.Quantity-take); err != nil {
			return nil, fmt.Errorf("failed to update batch %d quantity: %w", batch.ID, err)
		}
		movement := &models.StockMovement{
			BatchID:      batch.ID,
			MovementType: models.MovementOut,
			Quantity:     take,
			MovementDate: at,
		}
		if _, err := s.inventoryRepo.CreateMovement(tx, movement); err != nil {
			return nil, fmt.Errorf("failed to record stock movement: %w", err)
		}

		reduced = append(reduced, ReducedBatch{BatchID: batch.ID, Quantity: take})
		remaining -= take
	}
	return reduced, nil
}

func (s *inventoryService) GetBatches(tenantKey string, productID *int64) ([]models.InventoryBatch, error) {
	db, err := s.dir.Resolve(tenantKey)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	batches, err := s.inventoryRepo.GetBatches(db, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get batches: %w", err)
	}
	return batches, nil
}

func (s *inventoryService) GetStockLevel(tenantKey string, productID int64) (int, error) {
	db, err := s.dir.Resolve(tenantKey)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	if _, err := s.productRepo.GetProductByID(db, productID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return 0, ErrProductNotFound
		}
		return 0, fmt.Errorf("failed to verify product: %w", err)
	}
	level, err := s.inventoryRepo.StockLevel(db, productID)
	if err != nil {
		return 0, fmt.Errorf("failed to compute stock level: %w", err)
	}
	return level, nil
}

func (s *inventoryService) GetMovements(tenantKey string, productID *int64, movementType *string) ([]models.StockMovement, error) {
	if movementType != nil && *movementType != "" &&
		*movementType != models.MovementIn && *movementType != models.MovementOut {
		return nil, fmt.Errorf("%w: movement type must be %q or %q", ErrValidation, models.MovementIn, models.MovementOut)
	}

	db, err := s.dir.Resolve(tenantKey)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	movements, err := s.inventoryRepo.GetMovements(db, productID, movementType)
	if err != nil {
		return nil, fmt.Errorf("failed to get stock movements: %w", err)
	}
	return movements, nil
}
