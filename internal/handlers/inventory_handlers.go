package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"shopledger_backend/internal/services"
	"shopledger_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// InventoryHandler holds the inventory service.
type InventoryHandler struct {
	inventoryService services.InventoryService
	analyticsService services.AnalyticsService
}

// NewInventoryHandler creates a new InventoryHandler. The analytics service
// is used only to drop stale cached snapshots after stock mutations.
func NewInventoryHandler(is services.InventoryService, as services.AnalyticsService) *InventoryHandler {
	return &InventoryHandler{inventoryService: is, analyticsService: as}
}

// AddBatch handles recording a stock purchase as a new batch.
func (h *InventoryHandler) AddBatch(c *gin.Context) {
	tenantKey, ok := tenantKeyOrAbort(c)
	if !ok {
		return
	}

	var req services.AddBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "AddBatch: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	batch, err := h.inventoryService.AddBatch(tenantKey, req)
	if err != nil {
		utils.LogError(err, "AddBatch: Error from inventoryService.AddBatch")
		if errors.Is(err, services.ErrProductNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Product not found.", err.Error()))
		} else if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to add inventory batch.", "Internal error"))
		}
		return
	}
	h.analyticsService.InvalidateSnapshot(c.Request.Context(), tenantKey)
	c.JSON(http.StatusCreated, batch)
}

// ReduceStock handles consuming stock from the oldest batches first.
func (h *InventoryHandler) ReduceStock(c *gin.Context) {
	tenantKey, ok := tenantKeyOrAbort(c)
	if !ok {
		return
	}

	var req services.ReduceStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "ReduceStock: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	reduced, err := h.inventoryService.ReduceStock(tenantKey, req)
	if err != nil {
		utils.LogError(err, "ReduceStock: Error from inventoryService.ReduceStock")
		if errors.Is(err, services.ErrInsufficientStock) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Insufficient stock.", err.Error()))
		} else if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to reduce stock.", "Internal error"))
		}
		return
	}
	h.analyticsService.InvalidateSnapshot(c.Request.Context(), tenantKey)
	c.JSON(http.StatusOK, gin.H{"reduced": reduced})
}

// GetBatches handles listing inventory batches, optionally per product.
func (h *InventoryHandler) GetBatches(c *gin.Context) {
	tenantKey, ok := tenantKeyOrAbort(c)
	if !ok {
		return
	}

	var pProductID *int64
	if idStr := c.Query("product_id"); idStr != "" {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid product_id format.", err.Error()))
			return
		}
		pProductID = &id
	}

	batches, err := h.inventoryService.GetBatches(tenantKey, pProductID)
	if err != nil {
		utils.LogError(err, "GetBatches: Error from inventoryService.GetBatches")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch batches.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": batches})
}

// GetStockLevel handles reporting the summed on-hand quantity of a product.
func (h *InventoryHandler) GetStockLevel(c *gin.Context) {
	tenantKey, ok := tenantKeyOrAbort(c)
	if !ok {
		return
	}
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	level, err := h.inventoryService.GetStockLevel(tenantKey, productID)
	if err != nil {
		utils.LogError(err, "GetStockLevel: Error from inventoryService.GetStockLevel")
		if errors.Is(err, services.ErrProductNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Product not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to compute stock level.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"product_id": productID, "stock_level": level})
}

// GetMovements handles reading the stock movement audit trail.
func (h *InventoryHandler) GetMovements(c *gin.Context) {
	tenantKey, ok := tenantKeyOrAbort(c)
	if !ok {
		return
	}

	var pProductID *int64
	if idStr := c.Query("product_id"); idStr != "" {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid product_id format.", err.Error()))
			return
		}
		pProductID = &id
	}
	pMovementType := utils.NewNullString(c.Query("type"))

	movements, err := h.inventoryService.GetMovements(tenantKey, pProductID, pMovementType)
	if err != nil {
		utils.LogError(err, "GetMovements: Error from inventoryService.GetMovements")
		if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch stock movements.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": movements})
}
