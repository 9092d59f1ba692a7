package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"shopledger_backend/internal/middleware"
	"shopledger_backend/internal/services"
	"shopledger_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AnalyticsHandler holds the analytics service.
type AnalyticsHandler struct {
	analyticsService services.AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(as services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: as}
}

// GetSnapshot returns the full analytics snapshot for the caller's shop.
// This endpoint never fails; broken analytics are served as the default
// empty snapshot.
func (h *AnalyticsHandler) GetSnapshot(c *gin.Context) {
	tenantKey, ok := tenantKeyOrAbort(c)
	if !ok {
		return
	}

	userID, _ := c.Get(middleware.ContextUserID)
	shopName, _ := c.Get(middleware.ContextShopName)

	uid, _ := userID.(int64)
	name, _ := shopName.(string)

	snapshot := h.analyticsService.GetSnapshot(c.Request.Context(), tenantKey, uid, name)
	c.JSON(http.StatusOK, snapshot)
}

// GetSalesTrends returns bucketed sales totals. Period defaults to daily.
func (h *AnalyticsHandler) GetSalesTrends(c *gin.Context) {
	tenantKey, ok := tenantKeyOrAbort(c)
	if !ok {
		return
	}
	period := c.DefaultQuery("period", "daily")

	trends, err := h.analyticsService.GetSalesTrends(tenantKey, period)
	if err != nil {
		utils.LogError(err, "GetSalesTrends: Error from analyticsService.GetSalesTrends")
		if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to compute sales trends.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": trends})
}

// GetTopProducts returns products ranked by units sold.
func (h *AnalyticsHandler) GetTopProducts(c *gin.Context) {
	tenantKey, ok := tenantKeyOrAbort(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	top, err := h.analyticsService.GetTopProducts(tenantKey, limit)
	if err != nil {
		utils.LogError(err, "GetTopProducts: Error from analyticsService.GetTopProducts")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to compute top products.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": top})
}

// GetInventoryTurnover returns per-product turnover over a trailing window.
func (h *AnalyticsHandler) GetInventoryTurnover(c *gin.Context) {
	tenantKey, ok := tenantKeyOrAbort(c)
	if !ok {
		return
	}
	windowDays, _ := strconv.Atoi(c.DefaultQuery("window_days", "30"))

	turnover, err := h.analyticsService.GetInventoryTurnover(tenantKey, windowDays)
	if err != nil {
		utils.LogError(err, "GetInventoryTurnover: Error from analyticsService.GetInventoryTurnover")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to compute inventory turnover.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": turnover})
}

// GetProfitMargin returns revenue, COGS and margin over a date range.
// Defaults to the current month.
func (h *AnalyticsHandler) GetProfitMargin(c *gin.Context) {
	tenantKey, ok := tenantKeyOrAbort(c)
	if !ok {
		return
	}

	now := time.Now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := now
	if s := c.Query("start"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid start date, expected YYYY-MM-DD.", err.Error()))
			return
		}
		start = parsed
	}
	if e := c.Query("end"); e != "" {
		parsed, err := time.Parse("2006-01-02", e)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid end date, expected YYYY-MM-DD.", err.Error()))
			return
		}
		end = parsed.Add(24*time.Hour - time.Second)
	}

	margin, err := h.analyticsService.GetProfitMargin(tenantKey, start, end)
	if err != nil {
		utils.LogError(err, "GetProfitMargin: Error from analyticsService.GetProfitMargin")
		if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to compute profit margin.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, margin)
}

// GetLowStock returns products whose on-hand quantity is below the threshold.
func (h *AnalyticsHandler) GetLowStock(c *gin.Context) {
	tenantKey, ok := tenantKeyOrAbort(c)
	if !ok {
		return
	}
	threshold, _ := strconv.Atoi(c.DefaultQuery("threshold", "5"))

	alerts, err := h.analyticsService.GetLowStock(tenantKey, threshold)
	if err != nil {
		utils.LogError(err, "GetLowStock: Error from analyticsService.GetLowStock")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to compute low stock alerts.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": alerts})
}
