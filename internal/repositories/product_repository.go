package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"shopledger_backend/internal/models"
)

// ProductRepository defines the interface for product-related database
// operations. Repositories are stateless; the executor selects the tenant
// store (and optionally a transaction) per call.
type ProductRepository interface {
	CreateProduct(executor SQLExecutor, product *models.Product) (int64, error)
	GetProductByID(executor SQLExecutor, id int64) (*models.Product, error)
	GetProductByBarcode(executor SQLExecutor, barcode string) (*models.Product, error)
	GetProducts(executor SQLExecutor, page, pageSize int, searchTerm *string) ([]models.Product, int, error)
	UpdateProduct(executor SQLExecutor, product *models.Product) error
	DeleteProduct(executor SQLExecutor, id int64) error
}

type productRepository struct{}

// NewProductRepository creates a new instance of ProductRepository.
func NewProductRepository() ProductRepository {
	return &productRepository{}
}

// CreateProduct inserts a new product into the tenant store.
func (r *productRepository) CreateProduct(executor SQLExecutor, product *models.Product) (int64, error) {
	query := `INSERT INTO products (name, price, barcode, origin, expiry_date, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?)
	          RETURNING id`

	currentTime := time.Now()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = currentTime
	}
	product.UpdatedAt = currentTime

	err := executor.QueryRow(query,
		product.Name, product.Price, product.Barcode, product.Origin, product.ExpiryDate,
		product.CreatedAt, product.UpdatedAt,
	).Scan(&product.ID)

	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: barcode already in use: %v", ErrDuplicateKey, err)
		}
		return 0, fmt.Errorf("%w: creating product: %v", ErrDatabaseError, err)
	}
	return product.ID, nil
}

// GetProductByID retrieves a product by its ID.
func (r *productRepository) GetProductByID(executor SQLExecutor, id int64) (*models.Product, error) {
	product := &models.Product{}
	query := `SELECT id, name, price, barcode, origin, expiry_date, created_at, updated_at
	          FROM products WHERE id = ?`

	err := executor.QueryRow(query, id).Scan(
		&product.ID, &product.Name, &product.Price, &product.Barcode, &product.Origin,
		&product.ExpiryDate, &product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting product by ID %d: %v", ErrDatabaseError, id, err)
	}
	return product, nil
}

// GetProductByBarcode retrieves a product by its barcode.
func (r *productRepository) GetProductByBarcode(executor SQLExecutor, barcode string) (*models.Product, error) {
	product := &models.Product{}
	query := `SELECT id, name, price, barcode, origin, expiry_date, created_at, updated_at
	          FROM products WHERE barcode = ?`

	err := executor.QueryRow(query, barcode).Scan(
		&product.ID, &product.Name, &product.Price, &product.Barcode, &product.Origin,
		&product.ExpiryDate, &product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting product by barcode %s: %v", ErrDatabaseError, barcode, err)
	}
	return product, nil
}

// GetProducts retrieves a list of products with pagination, optional search
// and the summed remaining batch quantity per product.
func (r *productRepository) GetProducts(executor SQLExecutor, page, pageSize int, searchTerm *string) ([]models.Product, int, error) {
	products := []models.Product{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT p.id, p.name, p.price, p.barcode, p.origin, p.expiry_date, p.created_at, p.updated_at,
	                          COALESCE((SELECT SUM(i.quantity) FROM inventory i WHERE i.product_id = p.id), 0) AS stock_level,
	                          COUNT(*) OVER() AS total_count
	                          FROM products p`)

	var args []interface{}
	if searchTerm != nil && *searchTerm != "" {
		queryBuilder.WriteString(" WHERE LOWER(p.name) LIKE ? OR p.barcode = ?")
		args = append(args, "%"+strings.ToLower(*searchTerm)+"%", *searchTerm)
	}

	queryBuilder.WriteString(" ORDER BY p.name ASC")

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
		return nil, 0, fmt.Errorf("%w: querying products: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var product models.Product
		var stockLevel int
		if err := rows.Scan(
			&product.ID, &product.Name, &product.Price, &product.Barcode, &product.Origin,
			&product.ExpiryDate, &product.CreatedAt, &product.UpdatedAt, &stockLevel, &totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning product: %v", ErrDatabaseError, err)
		}
		product.StockLevel = &stockLevel
		products = append(products, product)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating product rows: %v", ErrDatabaseError, err)
	}

	return products, totalCount, nil
}

// UpdateProduct updates an existing product in the tenant store.
func (r *productRepository) UpdateProduct(executor SQLExecutor, product *models.Product) error {
	query := `UPDATE products SET
	            name = ?, price = ?, barcode = ?, origin = ?, expiry_date = ?, updated_at = ?
	          WHERE id = ?`

	product.UpdatedAt = time.Now()
	result, err := executor.Exec(query,
		product.Name, product.Price, product.Barcode, product.Origin, product.ExpiryDate,
		product.UpdatedAt, product.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: barcode already in use: %v", ErrDuplicateKey, err)
		}
		return fmt.Errorf("%w: updating product ID %d: %v", ErrDatabaseError, product.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for updating product ID %d: %v", ErrDatabaseError, product.ID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteProduct removes a product. Batches and supplier links referencing it
// are removed by the ON DELETE CASCADE constraints in the schema, not here.
func (r *productRepository) DeleteProduct(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting product ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for deleting product ID %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
