package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	partnerapp "github.com/voyago/backend/internal/application/partner"
)

// ClientHandler handles travel-agency client endpoints
type ClientHandler struct {
	BaseHandler
	clientService *partnerapp.ClientService
}

// NewClientHandler creates a new ClientHandler
func NewClientHandler(clientService *partnerapp.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// CreateClientRequest is the request body for registering a client
type CreateClientRequest struct {
	Name  string `json:"name" binding:"required,min=1,max=200"`
	Email string `json:"email" binding:"omitempty,email,max=200"`
	Phone string `json:"phone" binding:"max=50"`
}

// ClientRechargeRequest is the request body for crediting a client's prepaid account
type ClientRechargeRequest struct {
	Amount    string `json:"amount" binding:"required"`
	Method    string `json:"method" binding:"required"`
	Reference string `json:"reference" binding:"max=100"`
}

// Create registers a new client
func (h *ClientHandler) Create(c *gin.Context) {
	agencyID, err := getAgencyID(c)
	if err != nil {
		h.Forbidden(c, "Caller has no agency context")
		return
	}

	var req CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.clientService.Create(c.Request.Context(), agencyID, partnerapp.CreateClientRequest{
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

// Get returns one client
func (h *ClientHandler) Get(c *gin.Context) {
	agencyID, err := getAgencyID(c)
	if err != nil {
		h.Forbidden(c, "Caller has no agency context")
		return
	}
	clientID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid client ID")
		return
	}

	resp, err := h.clientService.Get(c.Request.Context(), agencyID, clientID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// List returns a page of clients
func (h *ClientHandler) List(c *gin.Context) {
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

	clients, total, err := h.clientService.List(c.Request.Context(), agencyID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, clients, total, filter.Page, filter.PageSize)
}

// Recharge credits the client's prepaid account through the caisse
func (h *ClientHandler) Recharge(c *gin.Context) {
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
	clientID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid client ID")
		return
	}

	var req ClientRechargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		h.BadRequest(c, "Invalid amount")
		return
	}

	resp, err := h.clientService.Recharge(c.Request.Context(), agencyID, userID, partnerapp.ClientRechargeRequest{
		ClientID:  clientID,
		Amount:    amount,
		Method:    req.Method,
		Reference: req.Reference,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}
