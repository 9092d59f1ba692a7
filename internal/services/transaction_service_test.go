package services

import (
	"errors"
	"math"
	"testing"

	"shopledger_backend/internal/models"
)

func createTransaction(t *testing.T, env *testEnv, req CreateTransactionRequest) *models.Transaction {
	t.Helper()
	record, err := env.transactions.CreateTransaction(testTenant, req)
	if err != nil {
		t.Fatalf("create transaction failed: %v", err)
	}
	return record
}

func TestBalanceExcludesOwedTransactions(t *testing.T) {
	env := newTestEnv(t)

	createTransaction(t, env, CreateTransactionRequest{
		Type: models.TransactionSale, PaymentStatus: models.PaymentPaid, Amount: floatPtr(100),
	})
	createTransaction(t, env, CreateTransactionRequest{
		Type: models.TransactionPurchase, PaymentStatus: models.PaymentPaid, Amount: floatPtr(40),
	})
	createTransaction(t, env, CreateTransactionRequest{
		Type: models.TransactionSale, PaymentStatus: models.PaymentOwed, Amount: floatPtr(20),
	})

	summary, err := env.transactions.GetBalance(testTenant)
	if err != nil {
		t.Fatalf("balance failed: %v", err)
	}
	if math.Abs(summary.Balance-60) > 1e-9 {
		t.Errorf("balance = %v, want 60", summary.Balance)
	}
	if math.Abs(summary.Receivables-20) > 1e-9 {
		t.Errorf("receivables = %v, want 20", summary.Receivables)
	}
	if summary.Payables != 0 {
		t.Errorf("payables = %v, want 0", summary.Payables)
	}
}

func TestDepositsAndWithdrawalsMoveBalance(t *testing.T) {
	env := newTestEnv(t)

	createTransaction(t, env, CreateTransactionRequest{
		Type: models.TransactionDeposit, PaymentStatus: models.PaymentPaid, Amount: floatPtr(500),
	})
	createTransaction(t, env, CreateTransactionRequest{
		Type: models.TransactionWithdrawal, PaymentStatus: models.PaymentPaid, Amount: floatPtr(120.50),
	})

	summary, err := env.transactions.GetBalance(testTenant)
	if err != nil {
		t.Fatalf("balance failed: %v", err)
	}
	if math.Abs(summary.Balance-379.50) > 1e-9 {
		t.Errorf("balance = %v, want 379.50", summary.Balance)
	}
}

// An owed Deposit or Withdrawal is money that has not moved yet: it touches
// neither the balance nor receivables/payables until it is marked paid.
func TestOwedDepositsAndWithdrawalsAreInert(t *testing.T) {
	env := newTestEnv(t)

	createTransaction(t, env, CreateTransactionRequest{
		Type: models.TransactionDeposit, PaymentStatus: models.PaymentOwed, Amount: floatPtr(300),
	})
	withdrawal := createTransaction(t, env, CreateTransactionRequest{
		Type: models.TransactionWithdrawal, PaymentStatus: models.PaymentOwed, Amount: floatPtr(75),
	})

	summary, err := env.transactions.GetBalance(testTenant)
	if err != nil {
		t.Fatalf("balance failed: %v", err)
	}
	if summary.Balance != 0 || summary.Receivables != 0 || summary.Payables != 0 {
		t.Fatalf("owed deposit/withdrawal leaked into summary %+v, want all zero", summary)
	}

	// Flipping the withdrawal to paid makes it count.
	paid := models.PaymentPaid
	if _, err := env.transactions.UpdateTransaction(testTenant, withdrawal.ID, UpdateTransactionRequest{
		PaymentStatus: &paid,
	}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	summary, err = env.transactions.GetBalance(testTenant)
	if err != nil {
		t.Fatalf("balance failed: %v", err)
	}
	if summary.Balance != -75 {
		t.Errorf("balance = %v, want -75 after withdrawal settles", summary.Balance)
	}
}

func TestAnonymousSaleResolvesReservedCustomerIdempotently(t *testing.T) {
	env := newTestEnv(t)

	first := createTransaction(t, env, CreateTransactionRequest{
		Type: models.TransactionSale, PaymentStatus: models.PaymentPaid, Amount: floatPtr(10),
	})
	second := createTransaction(t, env, CreateTransactionRequest{
		Type: models.TransactionSale, PaymentStatus: models.PaymentPaid, Amount: floatPtr(15),
	})

	if first.CustomerID == nil || second.CustomerID == nil {
		t.Fatal("anonymous sales must resolve to a customer")
	}
	if *first.CustomerID != *second.CustomerID {
		t.Fatalf("anonymous sales resolved to different customers: %d vs %d", *first.CustomerID, *second.CustomerID)
	}
	if first.CustomerName == nil || *first.CustomerName != models.ReservedCustomerName {
		t.Fatalf("expected reserved customer name, got %v", first.CustomerName)
	}

	customers, total, err := env.customers.GetCustomers(testTenant, 1, 100, strPtr(models.ReservedCustomerName))
	if err != nil {
		t.Fatalf("get customers failed: %v", err)
	}
	count := 0
	for _, c := range customers {
		if c.Name == models.ReservedCustomerName {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one reserved customer, found %d (total %d)", count, total)
	}
}

func TestSaleWithExplicitCustomer(t *testing.T) {
	env := newTestEnv(t)
	customer, err := env.customers.CreateCustomer(testTenant, CreateCustomerRequest{Name: "Aizhan"})
	if err != nil {
		t.Fatalf("create customer failed: %v", err)
	}

	record := createTransaction(t, env, CreateTransactionRequest{
		Type: models.TransactionSale, PaymentStatus: models.PaymentOwed, Amount: floatPtr(30),
		CustomerID: &customer.ID,
	})
	if record.CustomerID == nil || *record.CustomerID != customer.ID {
		t.Fatalf("sale not attributed to explicit customer")
	}
}

func TestCreateTransactionUnknownCounterparty(t *testing.T) {
	env := newTestEnv(t)
	missing := int64(404)

	_, err := env.transactions.CreateTransaction(testTenant, CreateTransactionRequest{
		Type: models.TransactionPurchase, PaymentStatus: models.PaymentPaid, Amount: floatPtr(10),
		SupplierID: &missing,
	})
	if !errors.Is(err, ErrSupplierNotFound) {
		t.Fatalf("expected ErrSupplierNotFound, got %v", err)
	}

	_, err = env.transactions.CreateTransaction(testTenant, CreateTransactionRequest{
		Type: models.TransactionSale, PaymentStatus: models.PaymentPaid, Amount: floatPtr(10),
		CustomerID: &missing,
	})
	if !errors.Is(err, ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.transactions.CreateTransaction(testTenant, CreateTransactionRequest{
		Type: "Refund", PaymentStatus: models.PaymentPaid, Amount: floatPtr(10),
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("unknown type: expected ErrValidation, got %v", err)
	}

	_, err = env.transactions.CreateTransaction(testTenant, CreateTransactionRequest{
		Type: models.TransactionSale, PaymentStatus: "pending", Amount: floatPtr(10),
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("unknown status: expected ErrValidation, got %v", err)
	}

	_, err = env.transactions.CreateTransaction(testTenant, CreateTransactionRequest{
		Type: models.TransactionSale, PaymentStatus: models.PaymentPaid, Amount: floatPtr(-5),
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("negative amount: expected ErrValidation, got %v", err)
	}
}

func TestUpdateTransactionSparsePatch(t *testing.T) {
	env := newTestEnv(t)
	record := createTransaction(t, env, CreateTransactionRequest{
		Type: models.TransactionSale, PaymentStatus: models.PaymentOwed, Amount: floatPtr(25),
		Notes: strPtr("tab for regular"),
	})

	paid := models.PaymentPaid
	updated, err := env.transactions.UpdateTransaction(testTenant, record.ID, UpdateTransactionRequest{
		PaymentStatus: &paid,
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.PaymentStatus != models.PaymentPaid {
		t.Errorf("payment status = %q, want paid", updated.PaymentStatus)
	}
	if updated.Amount != 25 {
		t.Errorf("amount changed to %v on sparse patch", updated.Amount)
	}
	if updated.Notes == nil || *updated.Notes != "tab for regular" {
		t.Errorf("notes changed on sparse patch: %v", updated.Notes)
	}
}

func TestDeleteTransaction(t *testing.T) {
	env := newTestEnv(t)
	record := createTransaction(t, env, CreateTransactionRequest{
		Type: models.TransactionDeposit, PaymentStatus: models.PaymentPaid, Amount: floatPtr(50),
	})

	if err := env.transactions.DeleteTransaction(testTenant, record.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	_, err := env.transactions.GetTransactionByID(testTenant, record.ID)
	if !errors.Is(err, ErrTransactionNotFound) {
		t.Fatalf("expected ErrTransactionNotFound after delete, got %v", err)
	}
}
