package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"shopledger_backend/internal/models"
	"shopledger_backend/internal/services"
	"shopledger_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// SupplierHandler holds the supplier service.
type SupplierHandler struct {
	supplierService services.SupplierService
}

// NewSupplierHandler creates a new SupplierHandler.
func NewSupplierHandler(ss services.SupplierService) *SupplierHandler {
	return &SupplierHandler{supplierService: ss}
}

// CreateSupplier handles the creation of a new supplier.
func (h *SupplierHandler) CreateSupplier(c *gin.Context) {
	tenantKey, ok := tenantKeyOrAbort(c)
	if !ok {
		return
	}

	var req services.CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateSupplier: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	supplier, err := h.supplierService.CreateSupplier(tenantKey, req)
	if err != nil {
		utils.LogError(err, "CreateSupplier: Error from supplierService.CreateSupplier")
		if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create supplier.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, supplier)
}

// GetSuppliers handles fetching all suppliers with pagination and search.
func (h *SupplierHandler) GetSuppliers(c *gin.Context) {
	tenantKey, ok := tenantKeyOrAbort(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	pSearchTerm := utils.NewNullString(c.Query("search"))

	suppliers, totalCount, err := h.supplierService.GetSuppliers(tenantKey, page, pageSize, pSearchTerm)
	if err != nil {
		utils.LogError(err, "GetSuppliers: Error from supplierService.GetSuppliers")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch suppliers.", "Internal error"))
		return
	}

	if suppliers == nil {
		suppliers = []models.Supplier{}
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      suppliers,
		"total":     totalCount,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetSupplierByID handles fetching a single supplier by ID.
func (h *SupplierHandler) GetSupplierByID(c *gin.Context) {
	tenantKey, ok := tenantKeyOrAbort(c)
	if !ok {
		return
	}
	supplierID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	supplier, err := h.supplierService.GetSupplierByID(tenantKey, supplierID)
	if err != nil {
		utils.LogError(err, "GetSupplierByID: Error from supplierService.GetSupplierByID")
		if errors.Is(err, services.ErrSupplierNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Supplier not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch supplier.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, supplier)
}

// UpdateSupplier handles updating a supplier.
func (h *SupplierHandler) UpdateSupplier(c *gin.Context) {
	tenantKey, ok := tenantKeyOrAbort(c)
	if !ok {
		return
	}
	supplierID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdateSupplier: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	supplier, err := h.supplierService.UpdateSupplier(tenantKey, supplierID, req)
	if err != nil {
		utils.LogError(err, "UpdateSupplier: Error from supplierService.UpdateSupplier")
		if errors.Is(err, services.ErrSupplierNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Supplier not found.", err.Error()))
		} else if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update supplier.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, supplier)
}

// DeleteSupplier handles deleting a supplier.
func (h *SupplierHandler) DeleteSupplier(c *gin.Context) {
	tenantKey, ok := tenantKeyOrAbort(c)
	if !ok {
		return
	}
	supplierID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	err := h.supplierService.DeleteSupplier(tenantKey, supplierID)
	if err != nil {
		utils.LogError(err, "DeleteSupplier: Error from supplierService.DeleteSupplier")
		if errors.Is(err, services.ErrSupplierNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Supplier not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete supplier.", "Internal error"))
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// LinkProduct handles linking a product to a supplier with its pricing.
func (h *SupplierHandler) LinkProduct(c *gin.Context) {
	tenantKey, ok := tenantKeyOrAbort(c)
	if !ok {
		return
	}
	supplierID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	productID, ok := parseIDParam(c, "product_id")
	if !ok {
		return
	}

	var req services.PricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "LinkProduct: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	err := h.supplierService.LinkProductToSupplier(tenantKey, supplierID, productID, req)
	if err != nil {
		utils.LogError(err, "LinkProduct: Error from supplierService.LinkProductToSupplier")
		if errors.Is(err, services.ErrSupplierNotFound) || errors.Is(err, services.ErrProductNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Supplier or product not found.", err.Error()))
		} else if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to link product to supplier.", "Internal error"))
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// UnlinkProduct handles removing a supplier-product link and its pricing.
func (h *SupplierHandler) UnlinkProduct(c *gin.Context) {
	tenantKey, ok := tenantKeyOrAbort(c)
	if !ok {
		return
	}
	supplierID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	productID, ok := parseIDParam(c, "product_id")
	if !ok {
		return
	}

	err := h.supplierService.UnlinkProductFromSupplier(tenantKey, supplierID, productID)
	if err != nil {
		utils.LogError(err, "UnlinkProduct: Error from supplierService.UnlinkProductFromSupplier")
		if errors.Is(err, services.ErrLinkNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Supplier-product link not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to unlink product from supplier.", "Internal error"))
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdatePricing handles replacing the pricing record of an existing link.
func (h *SupplierHandler) UpdatePricing(c *gin.Context) {
	tenantKey, ok := tenantKeyOrAbort(c)
	if !ok {
		return
	}
	supplierID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	productID, ok := parseIDParam(c, "product_id")
	if !ok {
		return
	}

	var req services.PricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdatePricing: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	err := h.supplierService.UpdatePricing(tenantKey, supplierID, productID, req)
	if err != nil {
		utils.LogError(err, "UpdatePricing: Error from supplierService.UpdatePricing")
		if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update pricing.", "Internal error"))
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// GetLinkedProducts handles listing the products supplied by one supplier.
func (h *SupplierHandler) GetLinkedProducts(c *gin.Context) {
	tenantKey, ok := tenantKeyOrAbort(c)
	if !ok {
		return
	}
	supplierID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	linked, err := h.supplierService.GetLinkedProducts(tenantKey, supplierID)
	if err != nil {
		utils.LogError(err, "GetLinkedProducts: Error from supplierService.GetLinkedProducts")
		if errors.Is(err, services.ErrSupplierNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Supplier not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch linked products.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": linked})
}

// GetLinkedSuppliers handles listing the suppliers of one product.
func (h *SupplierHandler) GetLinkedSuppliers(c *gin.Context) {
	tenantKey, ok := tenantKeyOrAbort(c)
	if !ok {
		return
	}
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	linked, err := h.supplierService.GetLinkedSuppliers(tenantKey, productID)
	if err != nil {
		utils.LogError(err, "GetLinkedSuppliers: Error from supplierService.GetLinkedSuppliers")
		if errors.Is(err, services.ErrProductNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Product not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch linked suppliers.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": linked})
}
