package models

import "time"

// Transaction types. The amount column always holds a non-negative
// magnitude; the sign applied to the cash balance is implied by the type.
const (
	TransactionPurchase   = "Purchase"
	TransactionSale       = "Sale"
	TransactionDeposit    = "Deposit"
	TransactionWithdrawal = "Withdrawal"
)

// Payment statuses. Only paid transactions affect the immediate cash
// balance; owed ones are outstanding receivables/payables.
const (
	PaymentPaid = "paid"
	PaymentOwed = "owed"
)

// Transaction is one financial event in a shop's ledger.
type Transaction struct {
	ID              int64     `json:"id" db:"id"`
	Type            string    `json:"type" db:"type" binding:"required"`
	PaymentStatus   string    `json:"payment_status" db:"payment_status"`
	Amount          float64   `json:"amount" db:"amount"`
	SupplierID      *int64    `json:"supplier_id,omitempty" db:"supplier_id"`
	CustomerID      *int64    `json:"customer_id,omitempty" db:"customer_id"`
	TransactionDate time.Time `json:"transaction_date" db:"transaction_date"`
	Notes           *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	SupplierName    *string   `json:"supplier_name,omitempty"` // Joined for display
	CustomerName    *string   `json:"customer_name,omitempty"` // Joined for display
}

// BalanceSummary is the cash position computed from the ledger. Balance
// counts paid rows only; the owed totals are reported alongside it.
type BalanceSummary struct {
	Balance     float64 `json:"balance"`
	Receivables float64 `json:"receivables"` // Owed sales
	Payables    float64 `json:"payables"`    // Owed purchases
}
