package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"shopledger_backend/internal/models"
)

// AnalyticsRepository defines the read-only aggregate queries the analytics
// engine fans out to. Every method only reads; none of them ever mutates
// ledger state.
type AnalyticsRepository interface {
	SalesTrends(executor SQLExecutor, period string) ([]models.SalesTrendPoint, error)
	TopProducts(executor SQLExecutor, limit int) ([]models.TopProduct, error)
	InventoryTurnover(executor SQLExecutor, windowDays int) ([]models.ProductTurnover, error)
	ProfitMargin(executor SQLExecutor, start, end time.Time) (*models.ProfitMargin, error)
	LowStock(executor SQLExecutor, threshold int) ([]models.LowStockAlert, error)
	CustomerLifetimeValue(executor SQLExecutor) ([]models.CustomerValue, error)
	SupplierPerformance(executor SQLExecutor) ([]models.SupplierPerformance, error)
	InventoryValuation(executor SQLExecutor) (*models.InventoryValuation, error)
	PaymentAnalysis(executor SQLExecutor) (*models.PaymentAnalysis, error)
}

type analyticsRepository struct{}

// NewAnalyticsRepository creates a new instance of AnalyticsRepository.
func NewAnalyticsRepository() AnalyticsRepository {
	return &analyticsRepository{}
}

// SalesTrends groups Sale transactions into daily, weekly or monthly buckets.
func (r *analyticsRepository) SalesTrends(executor SQLExecutor, period string) ([]models.SalesTrendPoint, error) {
	bucketFormat := "%Y-%m-%d"
	switch period {
	case "weekly":
		bucketFormat = "%Y-%W"
	case "monthly":
		bucketFormat = "%Y-%m"
	}

	query := `SELECT strftime(?, transaction_date) AS bucket, COALESCE(SUM(amount), 0), COUNT(*)
	          FROM transactions
	          WHERE type = ?
	          GROUP BY bucket
	          ORDER BY bucket ASC`

	rows, err := executor.Query(query, bucketFormat, models.TransactionSale)
	if err != nil {
		return nil, fmt.Errorf("%w: querying sales trends: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	points := []models.SalesTrendPoint{}
	for rows.Next() {
		var point models.SalesTrendPoint
		if err := rows.Scan(&point.Bucket, &point.TotalSales, &point.TransactionCount); err != nil {
			return nil, fmt.Errorf("%w: scanning sales trend point: %v", ErrDatabaseError, err)
		}
		points = append(points, point)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating sales trends: %v", ErrDatabaseError, err)
	}
	return points, nil
}

// TopProducts ranks products by units sold, estimating revenue as quantity
// sold times the average sale price of the batches it was drawn from.
func (r *analyticsRepository) TopProducts(executor SQLExecutor, limit int) ([]models.TopProduct, error) {
	query := `SELECT p.id, p.name, SUM(sm.quantity) AS qty_sold,
	            SUM(sm.quantity) * AVG(i.sale_price) AS est_revenue
	          FROM stock_movement sm
	          JOIN inventory i ON i.id = sm.batch_id
	          JOIN products p ON p.id = i.product_id
	          WHERE sm.movement_type = ?
	          GROUP BY p.id, p.name
	          ORDER BY qty_sold DESC
	          LIMIT ?`

	rows, err := executor.Query(query, models.MovementOut, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: querying top products: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	top := []models.TopProduct{}
	for rows.Next() {
		var tp models.TopProduct
		if err := rows.Scan(&tp.ProductID, &tp.ProductName, &tp.QuantitySold, &tp.EstimatedRevenue); err != nil {
			return nil, fmt.Errorf("%w: scanning top product: %v", ErrDatabaseError, err)
		}
		top = append(top, tp)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating top products: %v", ErrDatabaseError, err)
	}
	return top, nil
}

// InventoryTurnover computes, per product, units sold in the trailing window
// against the average on-hand quantity. Ratio is zero when nothing is on hand.
func (r *analyticsRepository) InventoryTurnover(executor SQLExecutor, windowDays int) ([]models.ProductTurnover, error) {
	since := time.Now().AddDate(0, 0, -windowDays)
	query := `SELECT p.id, p.name,
	            COALESCE((SELECT SUM(sm.quantity) FROM stock_movement sm
	              JOIN inventory ib ON ib.id = sm.batch_id
	              WHERE ib.product_id = p.id AND sm.movement_type = ?
	                AND datetime(sm.movement_date) >= datetime(?)), 0) AS qty_sold,
	            COALESCE((SELECT AVG(i.quantity) FROM inventory i WHERE i.product_id = p.id), 0) AS avg_on_hand
	          FROM products p
	          ORDER BY p.name ASC`

	rows, err := executor.Query(query, models.MovementOut, since)
	if err != nil {
		return nil, fmt.Errorf("%w: querying inventory turnover: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	turnover := []models.ProductTurnover{}
	for rows.Next() {
		var pt models.ProductTurnover
		if err := rows.Scan(&pt.ProductID, &pt.ProductName, &pt.QuantitySold, &pt.AvgOnHand); err != nil {
			return nil, fmt.Errorf("%w: scanning turnover row: %v", ErrDatabaseError, err)
		}
		if pt.AvgOnHand > 0 {
			pt.Ratio = float64(pt.QuantitySold) / pt.AvgOnHand
		}
		turnover = append(turnover, pt)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating turnover rows: %v", ErrDatabaseError, err)
	}
	return turnover, nil
}

// ProfitMargin sums paid Sale revenue and cost of goods sold over a date
// range. Percentage math is left to the service layer.
func (r *analyticsRepository) ProfitMargin(executor SQLExecutor, start, end time.Time) (*models.ProfitMargin, error) {
	margin := &models.ProfitMargin{}

	revenueQuery := `SELECT COALESCE(SUM(amount), 0) FROM transactions
	                 WHERE type = ? AND payment_status = ?
	                   AND datetime(transaction_date) >= datetime(?)
	                   AND datetime(transaction_date) <= datetime(?)`
	err := executor.QueryRow(revenueQuery, models.TransactionSale, models.PaymentPaid, start, end).Scan(&margin.Revenue)
	if err != nil {
		return nil, fmt.Errorf("%w: computing revenue: %v", ErrDatabaseError, err)
	}

	cogsQuery := `SELECT COALESCE(SUM(sm.quantity * i.purchase_price), 0)
	              FROM stock_movement sm
	              JOIN inventory i ON i.id = sm.batch_id
	              WHERE sm.movement_type = ?
	                AND datetime(sm.movement_date) >= datetime(?)
	                AND datetime(sm.movement_date) <= datetime(?)`
	err = executor.QueryRow(cogsQuery, models.MovementOut, start, end).Scan(&margin.COGS)
	if err != nil {
		return nil, fmt.Errorf("%w: computing cost of goods sold: %v", ErrDatabaseError, err)
	}

	return margin, nil
}

// LowStock lists products whose summed batch quantity is below the threshold.
func (r *analyticsRepository) LowStock(executor SQLExecutor, threshold int) ([]models.LowStockAlert, error) {
	query := `SELECT p.id, p.name, COALESCE(SUM(i.quantity), 0) AS on_hand
	          FROM products p
	          LEFT JOIN inventory i ON i.product_id = p.id
	          GROUP BY p.id, p.name
	          HAVING on_hand < ?
	          ORDER BY on_hand ASC, p.name ASC`

	rows, err := executor.Query(query, threshold)
	if err != nil {
		return nil, fmt.Errorf("%w: querying low stock: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	alerts := []models.LowStockAlert{}
	for rows.Next() {
		var alert models.LowStockAlert
		if err := rows.Scan(&alert.ProductID, &alert.ProductName, &alert.Quantity); err != nil {
			return nil, fmt.Errorf("%w: scanning low stock alert: %v", ErrDatabaseError, err)
		}
		alert.Threshold = threshold
		alerts = append(alerts, alert)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating low stock alerts: %v", ErrDatabaseError, err)
	}
	return alerts, nil
}

// CustomerLifetimeValue aggregates Sale totals per customer.
func (r *analyticsRepository) CustomerLifetimeValue(executor SQLExecutor) ([]models.CustomerValue, error) {
	query := `SELECT c.id, c.name, COALESCE(SUM(t.amount), 0), COUNT(t.id),
	            MIN(strftime('%Y-%m-%d', t.transaction_date)), MAX(strftime('%Y-%m-%d', t.transaction_date))
	          FROM customers c
	          JOIN transactions t ON t.customer_id = c.id AND t.type = ?
	          GROUP BY c.id, c.name
	          ORDER BY SUM(t.amount) DESC`

	rows, err := executor.Query(query, models.TransactionSale)
	if err != nil {
		return nil, fmt.Errorf("%w: querying customer lifetime value: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	values := []models.CustomerValue{}
	for rows.Next() {
		var cv models.CustomerValue
		var first, last sql.NullString
		if err := rows.Scan(&cv.CustomerID, &cv.CustomerName, &cv.TotalSpent, &cv.SaleCount, &first, &last); err != nil {
			return nil, fmt.Errorf("%w: scanning customer value: %v", ErrDatabaseError, err)
		}
		if first.Valid {
			cv.FirstSale = &first.String
		}
		if last.Valid {
			cv.LastSale = &last.String
		}
		values = append(values, cv)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating customer values: %v", ErrDatabaseError, err)
	}
	return values, nil
}

// SupplierPerformance aggregates purchase activity per supplier. On-time
// deliveries are counted as paid purchases; lead time averages over the
// supplier's active pricing records.
func (r *analyticsRepository) SupplierPerformance(executor SQLExecutor) ([]models.SupplierPerformance, error) {
	query := `SELECT s.id, s.name,
	            (SELECT COUNT(*) FROM transactions t WHERE t.supplier_id = s.id AND t.type = ?),
	            (SELECT AVG(spp.lead_time_days) FROM supplier_product_pricing spp
	               WHERE spp.supplier_id = s.id AND spp.is_active = 1),
	            (SELECT COUNT(*) FROM transactions t WHERE t.supplier_id = s.id AND t.type = ? AND t.payment_status = ?)
	          FROM suppliers s
	          ORDER BY s.name ASC`

	rows, err := executor.Query(query, models.TransactionPurchase, models.TransactionPurchase, models.PaymentPaid)
	if err != nil {
		return nil, fmt.Errorf("%w: querying supplier performance: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	stats := []models.SupplierPerformance{}
	for rows.Next() {
		var sp models.SupplierPerformance
		var avgLead sql.NullFloat64
		if err := rows.Scan(&sp.SupplierID, &sp.SupplierName, &sp.PurchaseCount, &avgLead, &sp.OnTimeCount); err != nil {
			return nil, fmt.Errorf("%w: scanning supplier performance: %v", ErrDatabaseError, err)
		}
		if avgLead.Valid {
			sp.AvgLeadTime = &avgLead.Float64
		}
		stats = append(stats, sp)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating supplier performance: %v", ErrDatabaseError, err)
	}
	return stats, nil
}

// InventoryValuation values on-hand stock per product at the average
// purchase price of its batches.
func (r *analyticsRepository) InventoryValuation(executor SQLExecutor) (*models.InventoryValuation, error) {
	query := `SELECT p.id, p.name, COALESCE(SUM(i.quantity), 0) AS on_hand,
	            COALESCE(SUM(i.quantity), 0) * COALESCE(AVG(i.purchase_price), 0) AS value
	          FROM products p
	          LEFT JOIN inventory i ON i.product_id = p.id
	          GROUP BY p.id, p.name
	          ORDER BY value DESC`

	rows, err := executor.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: querying inventory valuation: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	valuation := &models.InventoryValuation{Lines: []models.ValuationLine{}}
	for rows.Next() {
		var line models.ValuationLine
		if err := rows.Scan(&line.ProductID, &line.ProductName, &line.Quantity, &line.Value); err != nil {
			return nil, fmt.Errorf("%w: scanning valuation line: %v", ErrDatabaseError, err)
		}
		valuation.TotalValue += line.Value
		valuation.Lines = append(valuation.Lines, line)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating valuation lines: %v", ErrDatabaseError, err)
	}
	return valuation, nil
}

// PaymentAnalysis totals the ledger by payment status.
func (r *analyticsRepository) PaymentAnalysis(executor SQLExecutor) (*models.PaymentAnalysis, error) {
	analysis := &models.PaymentAnalysis{}
	query := `SELECT
	            COALESCE(SUM(CASE WHEN payment_status = ? THEN amount ELSE 0 END), 0),
	            COALESCE(SUM(CASE WHEN payment_status = ? THEN amount ELSE 0 END), 0),
	            COALESCE(SUM(CASE WHEN payment_status = ? THEN 1 ELSE 0 END), 0),
	            COALESCE(SUM(CASE WHEN payment_status = ? THEN 1 ELSE 0 END), 0)
	          FROM transactions`

	err := executor.QueryRow(query,
		models.PaymentPaid, models.PaymentOwed, models.PaymentPaid, models.PaymentOwed,
	).Scan(&analysis.PaidTotal, &analysis.OwedTotal, &analysis.PaidCount, &analysis.OwedCount)
	if err != nil {
		return nil, fmt.Errorf("%w: querying payment analysis: %v", ErrDatabaseError, err)
	}
	return analysis, nil
}
