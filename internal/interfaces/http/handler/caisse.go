package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	ledgerapp "github.com/voyago/backend/internal/application/ledger"
)

// CaisseHandler handles the agency cash ledger endpoints
type CaisseHandler struct {
	BaseHandler
	caisseService *ledgerapp.CaisseService
}

// NewCaisseHandler creates a new CaisseHandler
func NewCaisseHandler(caisseService *ledgerapp.CaisseService) *CaisseHandler {
	return &CaisseHandler{caisseService: caisseService}
}

// RecordOperationRequest is the request body for appending a movement
type RecordOperationRequest struct {
	Type       string  `json:"type" binding:"required"`
	Direction  string  `json:"direction" binding:"omitempty,oneof=entree sortie"`
	Amount     string  `json:"amount" binding:"required"`
	Method     string  `json:"method" binding:"required"`
	Label      string  `json:"label" binding:"required,max=500"`
	Reference  string  `json:"reference" binding:"max=100"`
	InvoiceID  *string `json:"invoice_id" binding:"omitempty,uuid"`
	ClientID   *string `json:"client_id" binding:"omitempty,uuid"`
	SupplierID *string `json:"supplier_id" binding:"omitempty,uuid"`
	AgentID    *string `json:"agent_id" binding:"omitempty,uuid"`
}

// CancelOperationRequest is the request body for reversing an operation
type CancelOperationRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// ReportQuery bounds a period report
type ReportQuery struct {
	From time.Time `form:"from" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	To   time.Time `form:"to" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
}

// Record appends an operation to the caisse
func (h *CaisseHandler) Record(c *gin.Context) {
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

	var req RecordOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		h.BadRequest(c, "Invalid amount")
		return
	}

	appReq := ledgerapp.RecordOperationRequest{
		Type:      req.Type,
		Direction: req.Direction,
		Amount:    amount,
		Method:    req.Method,
		Label:     req.Label,
		Reference: req.Reference,
	}
	if appReq.InvoiceID, err = parseOptionalUUID(req.InvoiceID); err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}
	if appReq.ClientID, err = parseOptionalUUID(req.ClientID); err != nil {
		h.BadRequest(c, "Invalid client ID")
		return
	}
	if appReq.SupplierID, err = parseOptionalUUID(req.SupplierID); err != nil {
		h.BadRequest(c, "Invalid supplier ID")
		return
	}
	if appReq.AgentID, err = parseOptionalUUID(req.AgentID); err != nil {
		h.BadRequest(c, "Invalid agent ID")
		return
	}

	resp, err := h.caisseService.RecordOperation(c.Request.Context(), agencyID, userID, appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// Cancel appends the compensating reversal of an operation
func (h *CaisseHandler) Cancel(c *gin.Context) {
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
	operationID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid operation ID")
		return
	}

	var req CancelOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.caisseService.CancelOperation(c.Request.Context(), agencyID, userID, ledgerapp.CancelOperationRequest{
		OperationID: operationID,
		Reason:      req.Reason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// Get returns one operation
func (h *CaisseHandler) Get(c *gin.Context) {
	agencyID, err := getAgencyID(c)
	if err != nil {
		h.Forbidden(c, "Caller has no agency context")
		return
	}
	operationID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid operation ID")
		return
	}

	resp, err := h.caisseService.GetOperation(c.Request.Context(), agencyID, operationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// List returns a filtered page of operations
func (h *CaisseHandler) List(c *gin.Context) {
	agencyID, err := getAgencyID(c)
	if err != nil {
		h.Forbidden(c, "Caller has no agency context")
		return
	}

	var query struct {
		Page     int        `form:"page"`
		PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
		Type     string     `form:"type"`
		From     *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
		To       *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	operations, total, err := h.caisseService.ListOperations(c.Request.Context(), agencyID, ledgerapp.ListOperationsRequest{
		Page:     query.Page,
		PageSize: query.PageSize,
		Type:     query.Type,
		From:     query.From,
		To:       query.To,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page := query.Page
	if page <= 0 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	h.SuccessWithMeta(c, operations, total, page, pageSize)
}

// Balance returns the agency's current caisse balance
func (h *CaisseHandler) Balance(c *gin.Context) {
	agencyID, err := getAgencyID(c)
	if err != nil {
		h.Forbidden(c, "Caller has no agency context")
		return
	}

	resp, err := h.caisseService.ComputeBalance(c.Request.Context(), agencyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Report returns a period report over the caisse
func (h *CaisseHandler) Report(c *gin.Context) {
	agencyID, err := getAgencyID(c)
	if err != nil {
		h.Forbidden(c, "Caller has no agency context")
		return
	}

	var query ReportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.caisseService.GenerateReport(c.Request.Context(), agencyID, query.From, query.To)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

func parseOptionalUUID(s *string) (*uuid.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
