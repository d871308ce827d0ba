package partner

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/voyago/backend/internal/domain/partner"
)

// CreateSupplierRequest registers a fournisseur
type CreateSupplierRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// SupplierPaymentRequest pays money to a supplier from the caisse
type SupplierPaymentRequest struct {
	SupplierID uuid.UUID       `json:"supplier_id"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	Label      string          `json:"label"`
	Reference  string          `json:"reference"`
}

// SupplierDebtRequest records a purchase on credit from a supplier
type SupplierDebtRequest struct {
	SupplierID uuid.UUID       `json:"supplier_id"`
	Amount     decimal.Decimal `json:"amount"`
}

// SupplierResponse is the read model of a supplier with both balances
type SupplierResponse struct {
	ID               uuid.UUID       `json:"id"`
	Name             string          `json:"name"`
	Email            string          `json:"email"`
	Phone            string          `json:"phone"`
	DetteFournisseur decimal.Decimal `json:"dette_fournisseur"`
	SoldeCrediteur   decimal.Decimal `json:"solde_crediteur"`
	NetPosition      decimal.Decimal `json:"net_position"`
	Active           bool            `json:"active"`
}

// CreateClientRequest registers a client
type CreateClientRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// ClientRechargeRequest credits a client's prepaid account through the caisse
type ClientRechargeRequest struct {
	ClientID  uuid.UUID       `json:"client_id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Reference string          `json:"reference"`
}

// ClientResponse is the read model of a client
type ClientResponse struct {
	ID      uuid.UUID       `json:"id"`
	Name    string          `json:"name"`
	Email   string          `json:"email"`
	Phone   string          `json:"phone"`
	Balance decimal.Decimal `json:"balance"`
	Active  bool            `json:"active"`
}

// ToSupplierResponse maps the aggregate to its read model
func ToSupplierResponse(s *partner.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:               s.ID,
		Name:             s.Name,
		Email:            s.ContactEmail,
		Phone:            s.ContactPhone,
		DetteFournisseur: s.DetteFournisseur,
		SoldeCrediteur:   s.SoldeCrediteur,
		NetPosition:      s.NetPosition(),
		Active:           s.Active,
	}
}

// ToClientResponse maps the aggregate to its read model
func ToClientResponse(c *partner.Client) ClientResponse {
	return ClientResponse{
		ID:      c.ID,
		Name:    c.Name,
		Email:   c.Email,
		Phone:   c.Phone,
		Balance: c.Balance,
		Active:  c.Active,
	}
}
