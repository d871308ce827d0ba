package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	billingapp "github.com/voyago/backend/internal/application/billing"
)

// PaymentHandler handles invoice payment endpoints
type PaymentHandler struct {
	BaseHandler
	paymentService *billingapp.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *billingapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// PayInvoiceRequest is the request body for paying an invoice.
// Amount is required for partial payments and ignored for full ones.
type PayInvoiceRequest struct {
	Amount    string `json:"amount"`
	Method    string `json:"method" binding:"required"`
	Reference string `json:"reference" binding:"max=100"`
}

// CreditNoteHTTPRequest is the request body for issuing a credit note
type CreditNoteHTTPRequest struct {
	Amount string `json:"amount" binding:"required"`
	Method string `json:"method" binding:"required"`
	Reason string `json:"reason" binding:"required,max=500"`
}

// RefundHTTPRequest is the request body for refunding collected money
type RefundHTTPRequest struct {
	Amount string `json:"amount" binding:"required"`
	Method string `json:"method" binding:"required"`
	Reason string `json:"reason" binding:"required,max=500"`
}

// PayFull settles the remaining balance of an invoice in one movement
func (h *PaymentHandler) PayFull(c *gin.Context) {
	agencyID, userID, invoiceID, ok := h.paymentContext(c)
	if !ok {
		return
	}

	var req PayInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.paymentService.PayFull(c.Request.Context(), agencyID, userID, billingapp.PayInvoiceRequest{
		InvoiceID: invoiceID,
		Method:    req.Method,
		Reference: req.Reference,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// PayPartial applies a partial payment to an invoice
func (h *PaymentHandler) PayPartial(c *gin.Context) {
	agencyID, userID, invoiceID, ok := h.paymentContext(c)
	if !ok {
		return
	}

	var req PayInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		h.BadRequest(c, "Invalid amount")
		return
	}

	resp, err := h.paymentService.PayPartial(c.Request.Context(), agencyID, userID, billingapp.PayInvoiceRequest{
		InvoiceID: invoiceID,
		Amount:    amount,
		Method:    req.Method,
		Reference: req.Reference,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// CreditNote issues a credit voucher against an invoice
func (h *PaymentHandler) CreditNote(c *gin.Context) {
	agencyID, userID, invoiceID, ok := h.paymentContext(c)
	if !ok {
		return
	}

	var req CreditNoteHTTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		h.BadRequest(c, "Invalid amount")
		return
	}

	resp, err := h.paymentService.IssueCreditNote(c.Request.Context(), agencyID, userID, billingapp.CreditNoteRequest{
		InvoiceID: invoiceID,
		Amount:    amount,
		Method:    req.Method,
		Reason:    req.Reason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// Refund gives collected money back to the client
func (h *PaymentHandler) Refund(c *gin.Context) {
	agencyID, userID, invoiceID, ok := h.paymentContext(c)
	if !ok {
		return
	}

	var req RefundHTTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		h.BadRequest(c, "Invalid amount")
		return
	}

	resp, err := h.paymentService.Refund(c.Request.Context(), agencyID, userID, billingapp.RefundRequest{
		InvoiceID: invoiceID,
		Amount:    amount,
		Method:    req.Method,
		Reason:    req.Reason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// GetInvoice returns one invoice with its payment state
func (h *PaymentHandler) GetInvoice(c *gin.Context) {
	agencyID, err := getAgencyID(c)
	if err != nil {
		h.Forbidden(c, "Caller has no agency context")
		return
	}
	invoiceID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	resp, err := h.paymentService.GetInvoice(c.Request.Context(), agencyID, invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

func (h *PaymentHandler) paymentContext(c *gin.Context) (agencyID, userID, invoiceID uuid.UUID, ok bool) {
	aid, err := getAgencyID(c)
	if err != nil {
		h.Forbidden(c, "Caller has no agency context")
		return
	}
	uid, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	iid, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}
	return aid, uid, iid, true
}
