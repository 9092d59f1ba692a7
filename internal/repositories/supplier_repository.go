package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"shopledger_backend/internal/models"
)

// SupplierRepository defines the interface for supplier-related database
// operations, including the supplier-product link registry and its pricing
// side-records.
type SupplierRepository interface {
	CreateSupplier(executor SQLExecutor, supplier *models.Supplier) (int64, error)
	GetSupplierByID(executor SQLExecutor, id int64) (*models.Supplier, error)
	GetSuppliers(executor SQLExecutor, page, pageSize int, searchTerm *string) ([]models.Supplier, int, error)
	UpdateSupplier(executor SQLExecutor, supplier *models.Supplier) error
	DeleteSupplier(executor SQLExecutor, id int64) error

	InsertLink(executor SQLExecutor, supplierID, productID int64) error
	DeleteLink(executor SQLExecutor, supplierID, productID int64) error
	UpsertPricing(executor SQLExecutor, pricing *models.SupplierPricing) error
	DeletePricing(executor SQLExecutor, supplierID, productID int64) error
	GetPricing(executor SQLExecutor, supplierID, productID int64) (*models.SupplierPricing, error)
	GetLinkedProducts(executor SQLExecutor, supplierID int64) ([]models.LinkedProduct, error)
	GetLinkedSuppliers(executor SQLExecutor, productID int64) ([]models.LinkedSupplier, error)
}

type supplierRepository struct{}

// NewSupplierRepository creates a new instance of SupplierRepository.
func NewSupplierRepository() SupplierRepository {
	return &supplierRepository{}
}

// CreateSupplier inserts a new supplier into the tenant store.
func (r *supplierRepository) CreateSupplier(executor SQLExecutor, supplier *models.Supplier) (int64, error) {
	query := `INSERT INTO suppliers (name, phone, email, address, notes, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?)
	          RETURNING id`

	currentTime := time.Now()
	if supplier.CreatedAt.IsZero() {
		supplier.CreatedAt = currentTime
	}
	supplier.UpdatedAt = currentTime

	err := executor.QueryRow(query,
		supplier.Name, supplier.Phone, supplier.Email, supplier.Address, supplier.Notes,
		supplier.CreatedAt, supplier.UpdatedAt,
	).Scan(&supplier.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating supplier: %v", ErrDatabaseError, err)
	}
	return supplier.ID, nil
}

// GetSupplierByID retrieves a supplier by its ID.
func (r *supplierRepository) GetSupplierByID(executor SQLExecutor, id int64) (*models.Supplier, error) {
	supplier := &models.Supplier{}
	query := `SELECT id, name, phone, email, address, notes, created_at, updated_at
	          FROM suppliers WHERE id = ?`

	err := executor.QueryRow(query, id).Scan(
		&supplier.ID, &supplier.Name, &supplier.Phone, &supplier.Email, &supplier.Address,
		&supplier.Notes, &supplier.CreatedAt, &supplier.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting supplier by ID %d: %v", ErrDatabaseError, id, err)
	}
	return supplier, nil
}

// GetSuppliers retrieves a list of suppliers with pagination and optional search.
func (r *supplierRepository) GetSuppliers(executor SQLExecutor, page, pageSize int, searchTerm *string) ([]models.Supplier, int, error) {
	suppliers := []models.Supplier{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT id, name, phone, email, address, notes, created_at, updated_at,
	                          COUNT(*) OVER() AS total_count FROM suppliers`)

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
		return nil, 0, fmt.Errorf("%w: querying suppliers: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var supplier models.Supplier
		if err := rows.Scan(
			&supplier.ID, &supplier.Name, &supplier.Phone, &supplier.Email, &supplier.Address,
			&supplier.Notes, &supplier.CreatedAt, &supplier.UpdatedAt, &totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning supplier: %v", ErrDatabaseError, err)
		}
		suppliers = append(suppliers, supplier)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating supplier rows: %v", ErrDatabaseError, err)
	}

	return suppliers, totalCount, nil
}

// UpdateSupplier updates an existing supplier.
func (r *supplierRepository) UpdateSupplier(executor SQLExecutor, supplier *models.Supplier) error {
	query := `UPDATE suppliers SET
	            name = ?, phone = ?, email = ?, address = ?, notes = ?, updated_at = ?
	          WHERE id = ?`

	supplier.UpdatedAt = time.Now()
	result, err := executor.Exec(query,
		supplier.Name, supplier.Phone, supplier.Email, supplier.Address, supplier.Notes,
		supplier.UpdatedAt, supplier.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: updating supplier ID %d: %v", ErrDatabaseError, supplier.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for updating supplier ID %d: %v", ErrDatabaseError, supplier.ID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteSupplier removes a supplier. Links and pricing cascade at the
// storage level.
func (r *supplierRepository) DeleteSupplier(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM suppliers WHERE id = ?`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: supplier ID %d is referenced by ledger records: %v", ErrDatabaseError, id, err)
		}
		return fmt.Errorf("%w: deleting supplier ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for deleting supplier ID %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// InsertLink inserts the supplier-product link row if absent. Re-linking an
// existing pair is a no-op.
func (r *supplierRepository) InsertLink(executor SQLExecutor, supplierID, productID int64) error {
	_, err := executor.Exec(
		`INSERT OR IGNORE INTO supplier_products (supplier_id, product_id, created_at) VALUES (?, ?, ?)`,
		supplierID, productID, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("%w: linking supplier %d to product %d: %v", ErrDatabaseError, supplierID, productID, err)
	}
	return nil
}

// DeleteLink removes the supplier-product link row.
func (r *supplierRepository) DeleteLink(executor SQLExecutor, supplierID, productID int64) error {
	result, err := executor.Exec(
		`DELETE FROM supplier_products WHERE supplier_id = ? AND product_id = ?`,
		supplierID, productID,
	)
	if err != nil {
		return fmt.Errorf("%w: unlinking supplier %d from product %d: %v", ErrDatabaseError, supplierID, productID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for unlink: %v", ErrDatabaseError, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpsertPricing replaces the pricing record for a link wholesale. Partial
// merges are not supported; every column is written.
func (r *supplierRepository) UpsertPricing(executor SQLExecutor, pricing *models.SupplierPricing) error {
	query := `INSERT INTO supplier_product_pricing
	            (supplier_id, product_id, supplier_price, supplier_sku, min_order_qty, lead_time_days, is_active, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	          ON CONFLICT (supplier_id, product_id) DO UPDATE SET
	            supplier_price = excluded.supplier_price,
	            supplier_sku = excluded.supplier_sku,
	            min_order_qty = excluded.min_order_qty,
	            lead_time_days = excluded.lead_time_days,
	            is_active = excluded.is_active,
	            updated_at = excluded.updated_at`

	pricing.UpdatedAt = time.Now()
	_, err := executor.Exec(query,
		pricing.SupplierID, pricing.ProductID, pricing.SupplierPrice, pricing.SupplierSKU,
		pricing.MinOrderQty, pricing.LeadTimeDays, pricing.IsActive, pricing.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: pricing requires an existing supplier-product link: %v", ErrDatabaseError, err)
		}
		return fmt.Errorf("%w: upserting pricing for supplier %d product %d: %v", ErrDatabaseError, pricing.SupplierID, pricing.ProductID, err)
	}
	return nil
}

// DeletePricing removes the pricing record for a link. Missing pricing is
// not an error; unlink must work for links that never had pricing.
func (r *supplierRepository) DeletePricing(executor SQLExecutor, supplierID, productID int64) error {
	_, err := executor.Exec(
		`DELETE FROM supplier_product_pricing WHERE supplier_id = ? AND product_id = ?`,
		supplierID, productID,
	)
	if err != nil {
		return fmt.Errorf("%w: deleting pricing for supplier %d product %d: %v", ErrDatabaseError, supplierID, productID, err)
	}
	return nil
}

// GetPricing retrieves the pricing record for one supplier-product link.
func (r *supplierRepository) GetPricing(executor SQLExecutor, supplierID, productID int64) (*models.SupplierPricing, error) {
	pricing := &models.SupplierPricing{}
	query := `SELECT supplier_id, product_id, supplier_price, supplier_sku, min_order_qty, lead_time_days, is_active, updated_at
	          FROM supplier_product_pricing WHERE supplier_id = ? AND product_id = ?`

	err := executor.QueryRow(query, supplierID, productID).Scan(
		&pricing.SupplierID, &pricing.ProductID, &pricing.SupplierPrice, &pricing.SupplierSKU,
		&pricing.MinOrderQty, &pricing.LeadTimeDays, &pricing.IsActive, &pricing.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting pricing for supplier %d product %d: %v", ErrDatabaseError, supplierID, productID, err)
	}
	return pricing, nil
}

// GetLinkedProducts lists the products a supplier is linked to, with pricing.
func (r *supplierRepository) GetLinkedProducts(executor SQLExecutor, supplierID int64) ([]models.LinkedProduct, error) {
	query := `SELECT p.id, p.name, p.price, p.barcode, p.origin, p.expiry_date, p.created_at, p.updated_at,
	            spp.supplier_price, spp.supplier_sku, spp.min_order_qty, spp.lead_time_days, spp.is_active, spp.updated_at
	          FROM supplier_products sp
	          JOIN products p ON p.id = sp.product_id
	          LEFT JOIN supplier_product_pricing spp
	            ON spp.supplier_id = sp.supplier_id AND spp.product_id = sp.product_id
	          WHERE sp.supplier_id = ?
	          ORDER BY p.name ASC`

	rows, err := executor.Query(query, supplierID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying linked products for supplier %d: %v", ErrDatabaseError, supplierID, err)
	}
	defer rows.Close()

	linked := []models.LinkedProduct{}
	for rows.Next() {
		var lp models.LinkedProduct
		var price sql.NullFloat64
		var sku sql.NullString
		var minQty, leadTime sql.NullInt64
		var isActive sql.NullBool
		var updatedAt sql.NullTime
		if err := rows.Scan(
			&lp.Product.ID, &lp.Product.Name, &lp.Product.Price, &lp.Product.Barcode, &lp.Product.Origin,
			&lp.Product.ExpiryDate, &lp.Product.CreatedAt, &lp.Product.UpdatedAt,
			&price, &sku, &minQty, &leadTime, &isActive, &updatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning linked product: %v", ErrDatabaseError, err)
		}
		lp.Pricing.SupplierID = supplierID
		lp.Pricing.ProductID = lp.Product.ID
		if price.Valid {
			lp.Pricing.SupplierPrice = price.Float64
		}
		if sku.Valid {
			s := sku.String
			lp.Pricing.SupplierSKU = &s
		}
		if minQty.Valid {
			q := int(minQty.Int64)
			lp.Pricing.MinOrderQty = &q
		}
		if leadTime.Valid {
			lt := int(leadTime.Int64)
			lp.Pricing.LeadTimeDays = &lt
		}
		if isActive.Valid {
			lp.Pricing.IsActive = isActive.Bool
		}
		if updatedAt.Valid {
			lp.Pricing.UpdatedAt = updatedAt.Time
		}
		linked = append(linked, lp)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating linked products: %v", ErrDatabaseError, err)
	}
	return linked, nil
}

// GetLinkedSuppliers lists the suppliers linked to a product, with pricing.
func (r *supplierRepository) GetLinkedSuppliers(executor SQLExecutor, productID int64) ([]models.LinkedSupplier, error) {
	query := `SELECT s.id, s.name, s.phone, s.email, s.address, s.notes, s.created_at, s.updated_at,
	            spp.supplier_price, spp.supplier_sku, spp.min_order_qty, spp.lead_time_days, spp.is_active, spp.updated_at
	          FROM supplier_products sp
	          JOIN suppliers s ON s.id = sp.supplier_id
	          LEFT JOIN supplier_product_pricing spp
	            ON spp.supplier_id = sp.supplier_id AND spp.product_id = sp.product_id
	          WHERE sp.product_id = ?
	          ORDER BY s.name ASC`

	rows, err := executor.Query(query, productID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying linked suppliers for product %d: %v", ErrDatabaseError, productID, err)
	}
	defer rows.Close()

	linked := []models.LinkedSupplier{}
	for rows.Next() {
		var ls models.LinkedSupplier
		var price sql.NullFloat64
		var sku sql.NullString
		var minQty, leadTime sql.NullInt64
		var isActive sql.NullBool
		var updatedAt sql.NullTime
		if err := rows.Scan(
			&ls.Supplier.ID, &ls.Supplier.Name, &ls.Supplier.Phone, &ls.Supplier.Email, &ls.Supplier.Address,
			&ls.Supplier.Notes, &ls.Supplier.CreatedAt, &ls.Supplier.UpdatedAt,
			&price, &sku, &minQty, &leadTime, &isActive, &updatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning linked supplier: %v", ErrDatabaseError, err)
		}
		ls.Pricing.SupplierID = ls.Supplier.ID
		ls.Pricing.ProductID = productID
		if price.Valid {
			ls.Pricing.SupplierPrice = price.Float64
		}
		if sku.Valid {
			s := sku.String
			ls.Pricing.SupplierSKU = &s
		}
		if minQty.Valid {
			q := int(minQty.Int64)
			ls.Pricing.MinOrderQty = &q
		}
		if leadTime.Valid {
			lt := int(leadTime.Int64)
			ls.Pricing.LeadTimeDays = &lt
		}
		if isActive.Valid {
			ls.Pricing.IsActive = isActive.Bool
		}
		if updatedAt.Valid {
			ls.Pricing.UpdatedAt = updatedAt.Time
		}
		linked = append(linked, ls)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating linked suppliers: %v", ErrDatabaseError, err)
	}
	return linked, nil
}
