package models

import "time"

// AnalyticsSnapshot is the point-in-time bundle of all analytics aggregates
// for one tenant. A failed computation is delivered as DefaultSnapshot, so
// callers cannot distinguish a failure from a shop with no activity.
type AnalyticsSnapshot struct {
	ShopName       string                `json:"shop_name"`
	UserID         int64                 `json:"user_id"`
	GeneratedAt    time.Time             `json:"generated_at"`
	SalesTrends    []SalesTrendPoint     `json:"sales_trends"`
	TopProducts    []TopProduct          `json:"top_products"`
	Turnover       []ProductTurnover     `json:"inventory_turnover"`
	Margin         ProfitMargin          `json:"profit_margin"`
	LowStock       []LowStockAlert       `json:"low_stock_alerts"`
	CustomerValues []CustomerValue       `json:"customer_lifetime_value"`
	SupplierStats  []SupplierPerformance `json:"supplier_performance"`
	Valuation      InventoryValuation    `json:"inventory_valuation"`
	Payments       PaymentAnalysis       `json:"payment_analysis"`
}

// SalesTrendPoint is one time bucket of aggregated sales.
type SalesTrendPoint struct {
	Bucket           string  `json:"bucket"` // YYYY-MM-DD, YYYY-WW or YYYY-MM
	TotalSales       float64 `json:"total_sales"`
	TransactionCount int     `json:"transaction_count"`
}

// TopProduct ranks a product by units sold, with revenue estimated from the
// average sale price of its batches.
type TopProduct struct {
	ProductID        int64   `json:"product_id"`
	ProductName      string  `json:"product_name"`
	QuantitySold     int     `json:"quantity_sold"`
	EstimatedRevenue float64 `json:"estimated_revenue"`
}

// ProductTurnover is the ratio of units sold in a trailing window to the
// average on-hand quantity. Zero when nothing is on hand.
type ProductTurnover struct {
	ProductID    int64   `json:"product_id"`
	ProductName  string  `json:"product_name"`
	QuantitySold int     `json:"quantity_sold"`
	AvgOnHand    float64 `json:"avg_on_hand"`
	Ratio        float64 `json:"ratio"`
}

// ProfitMargin summarises revenue, cost of goods sold and margin over a
// date range. MarginPercent is zero when revenue is zero.
type ProfitMargin struct {
	Revenue       float64 `json:"revenue"`
	COGS          float64 `json:"cogs"`
	Profit        float64 `json:"profit"`
	MarginPercent float64 `json:"margin_percent"`
}

// LowStockAlert flags a product whose summed batch quantity fell below the
// caller-supplied threshold.
type LowStockAlert struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	Threshold   int    `json:"threshold"`
}

// CustomerValue aggregates the lifetime sales attributed to one customer.
type CustomerValue struct {
	CustomerID   int64   `json:"customer_id"`
	CustomerName string  `json:"customer_name"`
	TotalSpent   float64 `json:"total_spent"`
	SaleCount    int     `json:"sale_count"`
	FirstSale    *string `json:"first_sale,omitempty"`
	LastSale     *string `json:"last_sale,omitempty"`
}

// SupplierPerformance aggregates purchasing activity for one supplier.
type SupplierPerformance struct {
	SupplierID    int64    `json:"supplier_id"`
	SupplierName  string   `json:"supplier_name"`
	PurchaseCount int      `json:"purchase_count"`
	AvgLeadTime   *float64 `json:"avg_lead_time_days,omitempty"`
	OnTimeCount   int      `json:"on_time_count"`
}

// ValuationLine is the on-hand value of one product at average purchase price.
type ValuationLine struct {
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Value       float64 `json:"value"`
}

// InventoryValuation is the total on-hand stock value plus its per-product lines.
type InventoryValuation struct {
	TotalValue float64         `json:"total_value"`
	Lines      []ValuationLine `json:"lines"`
}

// PaymentAnalysis totals the ledger by payment status.
type PaymentAnalysis struct {
	PaidTotal float64 `json:"paid_total"`
	OwedTotal float64 `json:"owed_total"`
	PaidCount int     `json:"paid_count"`
	OwedCount int     `json:"owed_count"`
}

// DefaultSnapshot is the explicit all-zero/empty snapshot returned whenever
// any part of the analytics fan-out fails.
func DefaultSnapshot(userID int64, shopName string) *AnalyticsSnapshot {
	return &AnalyticsSnapshot{
		ShopName:       shopName,
		UserID:         userID,
		SalesTrends:    []SalesTrendPoint{},
		TopProducts:    []TopProduct{},
		Turnover:       []ProductTurnover{},
		LowStock:       []LowStockAlert{},
		CustomerValues: []CustomerValue{},
		SupplierStats:  []SupplierPerformance{},
		Valuation:      InventoryValuation{Lines: []ValuationLine{}},
	}
}
