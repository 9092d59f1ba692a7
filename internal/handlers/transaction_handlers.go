package handlers

import (
	"errors"
	"net/http"

	"shopledger_backend/internal/services"
	"shopledger_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// TransactionHandler holds the transaction service.
type TransactionHandler struct {
	transactionService services.TransactionService
	analyticsService   services.AnalyticsService
}

// NewTransactionHandler creates a new TransactionHandler. The analytics
// service is used only to drop stale cached snapshots after mutations.
func NewTransactionHandler(ts services.TransactionService, as services.AnalyticsService) *TransactionHandler {
	return &TransactionHandler{transactionService: ts, analyticsService: as}
}

// CreateTransaction handles appending a new ledger record.
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	tenantKey, ok := tenantKeyOrAbort(c)
	if !ok {
		return
	}

	var req services.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateTransaction: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	record, err := h.transactionService.CreateTransaction(tenantKey, req)
	if err != nil {
		utils.LogError(err, "CreateTransaction: Error from transactionService.CreateTransaction")
		if errors.Is(err, services.ErrSupplierNotFound) || errors.Is(err, services.ErrCustomerNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Transaction counterparty not found.", err.Error()))
		} else if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create transaction.", "Internal error"))
		}
		return
	}

	h.analyticsService.InvalidateSnapshot(c.Request.Context(), tenantKey)
	c.JSON(http.StatusCreated, record)
}

// GetTransactions handles listing the ledger, optionally filtered by type.
func (h *TransactionHandler) GetTransactions(c *gin.Context) {
	tenantKey, ok := tenantKeyOrAbort(c)
	if !ok {
		return
	}

	pTypeFilter := utils.NewNullString(c.Query("type"))

	records, err := h.transactionService.GetTransactions(tenantKey, pTypeFilter)
	if err != nil {
		utils.LogError(err, "GetTransactions: Error from transactionService.GetTransactions")
		if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch transactions.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": records})
}

// GetTransactionByID handles fetching a single ledger record.
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	tenantKey, ok := tenantKeyOrAbort(c)
	if !ok {
		return
	}
	transactionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	record, err := h.transactionService.GetTransactionByID(tenantKey, transactionID)
	if err != nil {
		utils.LogError(err, "GetTransactionByID: Error from transactionService.GetTransactionByID")
		if errors.Is(err, services.ErrTransactionNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Transaction not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch transaction.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, record)
}

// UpdateTransaction handles correcting a ledger record.
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	tenantKey, ok := tenantKeyOrAbort(c)
	if !ok {
		return
	}
	transactionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdateTransaction: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	record, err := h.transactionService.UpdateTransaction(tenantKey, transactionID, req)
	if err != nil {
		utils.LogError(err, "UpdateTransaction: Error from transactionService.UpdateTransaction")
		if errors.Is(err, services.ErrTransactionNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Transaction not found.", err.Error()))
		} else if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update transaction.", "Internal error"))
		}
		return
	}

	h.analyticsService.InvalidateSnapshot(c.Request.Context(), tenantKey)
	c.JSON(http.StatusOK, record)
}

// DeleteTransaction handles removing a ledger record.
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	tenantKey, ok := tenantKeyOrAbort(c)
	if !ok {
		return
	}
	transactionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	err := h.transactionService.DeleteTransaction(tenantKey, transactionID)
	if err != nil {
		utils.LogError(err, "DeleteTransaction: Error from transactionService.DeleteTransaction")
		if errors.Is(err, services.ErrTransactionNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Transaction not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete transaction.", "Internal error"))
		}
		return
	}

	h.analyticsService.InvalidateSnapshot(c.Request.Context(), tenantKey)
	c.Status(http.StatusNoContent)
}

// GetBalance handles computing the cash balance and outstanding amounts.
func (h *TransactionHandler) GetBalance(c *gin.Context) {
	tenantKey, ok := tenantKeyOrAbort(c)
	if !ok {
		return
	}

	summary, err := h.transactionService.GetBalance(tenantKey)
	if err != nil {
		utils.LogError(err, "GetBalance: Error from transactionService.GetBalance")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to compute balance.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, summary)
}
