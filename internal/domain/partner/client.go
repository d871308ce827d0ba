package partner

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/voyago/backend/internal/domain/shared"
	"github.com/voyago/backend/internal/domain/shared/valueobject"
)

// Client is a customer of the agency. Balance is the prepaid account the
// client can recharge at the caisse and spend on invoices.
type Client struct {
	shared.AgencyAggregateRoot
	Name    string
	Email   string
	Phone   string
	Balance decimal.Decimal
	Active  bool
}

// NewClient creates a client with a zero account balance
func NewClient(agencyID uuid.UUID, name, email, phone string) (*Client, error) {
	if agencyID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Agency ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Client name cannot be empty")
	}

	return &Client{
		AgencyAggregateRoot: shared.NewAgencyAggregateRoot(agencyID),
		Name:                name,
		Email:               email,
		Phone:               phone,
		Balance:             decimal.Zero,
		Active:              true,
	}, nil
}

// Recharge credits the client's prepaid account
func (c *Client) Recharge(amount valueobject.Money) error {
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("VALIDATION_ERROR", "Recharge amount must be positive")
	}
	c.Balance = c.Balance.Add(amount.Amount())
	c.IncrementVersion()
	return nil
}

// Debit spends from the client's prepaid account
func (c *Client) Debit(amount valueobject.Money) error {
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("VALIDATION_ERROR", "Debit amount must be positive")
	}
	if amount.Amount().GreaterThan(c.Balance) {
		return shared.NewDomainError("INSUFFICIENT_BALANCE", "Client balance is insufficient")
	}
	c.Balance = c.Balance.Sub(amount.Amount())
	c.IncrementVersion()
	return nil
}

// Deactivate hides the client from new operations
func (c *Client) Deactivate() {
	c.Active = false
	c.IncrementVersion()
}
