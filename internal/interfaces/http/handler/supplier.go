package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	partnerapp "github.com/voyago/backend/internal/application/partner"
)

// SupplierHandler handles supplier (fournisseur) endpoints
type SupplierHandler struct {
	BaseHandler
	supplierService *partnerapp.SupplierService
}

// NewSupplierHandler creates a new SupplierHandler
func NewSupplierHandler(supplierService *partnerapp.SupplierService) *SupplierHandler {
	return &SupplierHandler{supplierService: supplierService}
}

// CreateSupplierRequest is the request body for registering a supplier
type CreateSupplierRequest struct {
	Name  string `json:"name" binding:"required,min=1,max=200"`
	Email string `json:"email" binding:"omitempty,email,max=200"`
	Phone string `json:"phone" binding:"max=50"`
}

// SupplierDebtRequest is the request body for recording a purchase on credit
type SupplierDebtRequest struct {
	Amount string `json:"amount" binding:"required"`
}

// SupplierPaymentRequest is the request body for paying a supplier from the caisse
type SupplierPaymentRequest struct {
	Amount    string `json:"amount" binding:"required"`
	Method    string `json:"method" binding:"required"`
	Label     string `json:"label" binding:"required,max=500"`
	Reference string `json:"reference" binding:"max=100"`
}

// Create registers a new supplier
func (h *SupplierHandler) Create(c *gin.Context) {
	agencyID, err := getAgencyID(c)
	if err != nil {
		h.Forbidden(c, "Caller has no agency context")
		return
	}

	var req CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.supplierService.Create(c.Request.Context(), agencyID, partnerapp.CreateSupplierRequest{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// Get returns one supplier
func (h *SupplierHandler) Get(c *gin.Context) {
	agencyID, err := getAgencyID(c)
	if err != nil {
		h.Forbidden(c, "Caller has no agency context")
		return
	}
	supplierID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid supplier ID")
		return
	}

	resp, err := h.supplierService.Get(c.Request.Context(), agencyID, supplierID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// List returns a page of suppliers
func (h *SupplierHandler) List(c *gin.Context) {
	agencyID, err := getAgencyID(c)
	if err != nil {
		h.Forbidden(c, "Caller has no agency context")
		return
	}

	filter, err := parseFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	suppliers, total, err := h.supplierService.List(c.Request.Context(), agencyID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, suppliers, total, filter.Page, filter.PageSize)
}

// RecordDebt records a purchase on credit, increasing the supplier debt
func (h *SupplierHandler) RecordDebt(c *gin.Context) {
	agencyID, err := getAgencyID(c)
	if err != nil {
		h.Forbidden(c, "Caller has no agency context")
		return
	}
	supplierID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid supplier ID")
		return
	}

	var req SupplierDebtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		h.BadRequest(c, "Invalid amount")
		return
	}

	resp, err := h.supplierService.RecordDebt(c.Request.Context(), agencyID, partnerapp.SupplierDebtRequest{
		SupplierID: supplierID,
		Amount:     amount,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Pay settles supplier debt from the caisse. Any surplus over the debt
// becomes prepaid credit held at the supplier.
func (h *SupplierHandler) Pay(c *gin.Context) {
	agencyID, err := getAgencyID(c)
	if err != nil {
		h.Forbidden(c, "Caller has no agency context")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	supplierID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid supplier ID")
		return
	}

	var req SupplierPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		h.BadRequest(c, "Invalid amount")
		return
	}

	resp, err := h.supplierService.Pay(c.Request.Context(), agencyID, userID, partnerapp.SupplierPaymentRequest{
		SupplierID: supplierID,
		Amount:     amount,
		Method:     req.Method,
		Label:      req.Label,
		Reference:  req.Reference,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}
