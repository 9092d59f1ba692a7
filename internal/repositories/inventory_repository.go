package repositories

import (
	"fmt"
	"strings"
	"time"

	"shopledger_backend/internal/models"
)

// InventoryRepository defines the interface for batch and stock-movement
// database operations. Movements are append-only; there is deliberately no
// update or delete for them.
type InventoryRepository interface {
	CreateBatch(executor SQLExecutor, batch *models.InventoryBatch) (int64, error)
	GetOpenBatches(executor SQLExecutor, productID int64) ([]models.InventoryBatch, error)
	GetBatches(executor SQLExecutor, productID *int64) ([]models.InventoryBatch, error)
	SetBatchQuantity(executor SQLExecutor, batchID int64, quantity int) error
	StockLevel(executor SQLExecutor, productID int64) (int, error)
	CreateMovement(executor SQLExecutor, movement *models.StockMovement) (int64, error)
	GetMovements(executor SQLExecutor, productID *int64, movementType *string) ([]models.StockMovement, error)
}

type inventoryRepository struct{}

// NewInventoryRepository creates a new instance of InventoryRepository.
func NewInventoryRepository() InventoryRepository {
	return &inventoryRepository{}
}

// CreateBatch inserts a new stock batch with its full purchased quantity.
func (r *inventoryRepository) CreateBatch(executor SQLExecutor, batch *models.InventoryBatch) (int64, error) {
	query := `INSERT INTO inventory (product_id, purchase_price, sale_price, quantity, expiry_date, created_at)
	          VALUES (?, ?, ?, ?, ?, ?)
	          RETURNING id`

	if batch.CreatedAt.IsZero() {
		batch.CreatedAt = time.Now()
	}

	err := executor.QueryRow(query,
		batch.ProductID, batch.PurchasePrice, batch.SalePrice, batch.Quantity,
		batch.ExpiryDate, batch.CreatedAt,
	).Scan(&batch.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, fmt.Errorf("%w: product %d does not exist: %v", ErrDatabaseError, batch.ProductID, err)
		}
		return 0, fmt.Errorf("%w: creating inventory batch: %v", ErrDatabaseError, err)
	}
	return batch.ID, nil
}

// GetOpenBatches loads all batches of a product that still hold stock,
// oldest purchase first. This ordering is what makes consumption FIFO.
func (r *inventoryRepository) GetOpenBatches(executor SQLExecutor, productID int64) ([]models.InventoryBatch, error) {
	query := `SELECT id, product_id, purchase_price, sale_price, quantity, expiry_date, created_at
	          FROM inventory
	          WHERE product_id = ? AND quantity > 0
	          ORDER BY id ASC`

	rows, err := executor.Query(query, productID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying open batches for product %d: %v", ErrDatabaseError, productID, err)
	}
	defer rows.Close()

	batches := []models.InventoryBatch{}
	for rows.Next() {
		var batch models.InventoryBatch
		if err := rows.Scan(
			&batch.ID, &batch.ProductID, &batch.PurchasePrice, &batch.SalePrice,
			&batch.Quantity, &batch.ExpiryDate, &batch.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning batch: %v", ErrDatabaseError, err)
		}
		batches = append(batches, batch)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating batches: %v", ErrDatabaseError, err)
	}
	return batches, nil
}

// GetBatches lists batches, optionally filtered by product, with the owning
// product joined for display.
func (r *inventoryRepository) GetBatches(executor SQLExecutor, productID *int64) ([]models.InventoryBatch, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT i.id, i.product_id, i.purchase_price, i.sale_price, i.quantity, i.expiry_date, i.created_at,
	                          p.name, p.price, p.barcode
	                          FROM inventory i
	                          JOIN products p ON p.id = i.product_id`)

	var args []interface{}
	if productID != nil {
		queryBuilder.WriteString(" WHERE i.product_id = ?")
		args = append(args, *productID)
	}
	queryBuilder.WriteString(" ORDER BY i.id ASC")

	rows, err := executor.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying batches: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	batches := []models.InventoryBatch{}
	for rows.Next() {
		var batch models.InventoryBatch
		var product models.Product
		if err := rows.Scan(
			&batch.ID, &batch.ProductID, &batch.PurchasePrice, &batch.SalePrice,
			&batch.Quantity, &batch.ExpiryDate, &batch.CreatedAt,
			&product.Name, &product.Price, &product.Barcode,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning batch: %v", ErrDatabaseError, err)
		}
		product.ID = batch.ProductID
		batch.Product = &product
		batches = append(batches, batch)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating batches: %v", ErrDatabaseError, err)
	}
	return batches, nil
}

// SetBatchQuantity writes a batch's remaining quantity. The schema's CHECK
// constraint rejects negative values.
func (r *inventoryRepository) SetBatchQuantity(executor SQLExecutor, batchID int64, quantity int) error {
	result, err := executor.Exec(`UPDATE inventory SET quantity = ? WHERE id = ?`, quantity, batchID)
	if err != nil {
		return fmt.Errorf("%w: setting quantity for batch %d: %v", ErrDatabaseError, batchID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for batch %d: %v", ErrDatabaseError, batchID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// StockLevel sums the remaining quantity across all batches of a product.
// A product with no batches has level 0.
func (r *inventoryRepository) StockLevel(executor SQLExecutor, productID int64) (int, error) {
	var level int
	err := executor.QueryRow(
		`SELECT COALESCE(SUM(quantity), 0) FROM inventory WHERE product_id = ?`, productID,
	).Scan(&level)
	if err != nil {
		return 0, fmt.Errorf("%w: computing stock level for product %d: %v", ErrDatabaseError, productID, err)
	}
	return level, nil
}

// CreateMovement appends one immutable audit row for a batch consumption or fill.
func (r *inventoryRepository) CreateMovement(executor SQLExecutor, movement *models.StockMovement) (int64, error) {
	query := `INSERT INTO stock_movement (batch_id, movement_type, quantity, movement_date)
	          VALUES (?, ?, ?, ?)
	          RETURNING id`

	if movement.MovementDate.IsZero() {
		movement.MovementDate = time.Now()
	}

	err := executor.QueryRow(query,
		movement.BatchID, movement.MovementType, movement.Quantity, movement.MovementDate,
	).Scan(&movement.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating stock movement: %v", ErrDatabaseError, err)
	}
	return movement.ID, nil
}

// GetMovements reads the audit trail, newest first, optionally filtered by
// product and direction.
func (r *inventoryRepository) GetMovements(executor SQLExecutor, productID *int64, movementType *string) ([]models.StockMovement, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT sm.id, sm.batch_id, sm.movement_type, sm.quantity, sm.movement_date,
	                          i.product_id, p.name
	                          FROM stock_movement sm
	                          JOIN inventory i ON i.id = sm.batch_id
	                          JOIN products p ON p.id = i.product_id`)

	var conditions []string
	var args []interface{}
	if productID != nil {
		conditions = append(conditions, "i.product_id = ?")
		args = append(args, *productID)
	}
	if movementType != nil && *movementType != "" {
		conditions = append(conditions, "sm.movement_type = ?")
		args = append(args, *movementType)
	}
	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY sm.movement_date DESC, sm.id DESC")

	rows, err := executor.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying stock movements: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	movements := []models.StockMovement{}
	for rows.Next() {
		var movement models.StockMovement
		var prodID int64
		var prodName string
		if err := rows.Scan(
			&movement.ID, &movement.BatchID, &movement.MovementType, &movement.Quantity,
			&movement.MovementDate, &prodID, &prodName,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning stock movement: %v", ErrDatabaseError, err)
		}
		movement.ProductID = &prodID
		movement.ProductName = &prodName
		movements = append(movements, movement)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating stock movements: %v", ErrDatabaseError, err)
	}
	return movements, nil
}
