package partner

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/voyago/backend/internal/domain/shared"
	"github.com/voyago/backend/internal/domain/shared/valueobject"
)

// Supplier is a fournisseur of the agency. It carries two separate balances
// instead of one signed figure: DetteFournisseur is what the agency owes the
// supplier, SoldeCrediteur is prepaid credit held at the supplier. Both are
// always non-negative; money moves between them through the operations below.
type Supplier struct {
	shared.AgencyAggregateRoot
	Name             string
	ContactEmail     string
	ContactPhone     string
	DetteFournisseur decimal.Decimal
	SoldeCrediteur   decimal.Decimal
	Active           bool
}

// NewSupplier creates a supplier with zero balances
func NewSupplier(agencyID uuid.UUID, name, email, phone string) (*Supplier, error) {
	if agencyID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Agency ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Supplier name cannot be empty")
	}

	return &Supplier{
		AgencyAggregateRoot: shared.NewAgencyAggregateRoot(agencyID),
		Name:                name,
		ContactEmail:        email,
		ContactPhone:        phone,
		DetteFournisseur:    decimal.Zero,
		SoldeCrediteur:      decimal.Zero,
		Active:              true,
	}, nil
}

// AddDebt records a purchase on credit: the agency now owes more
func (s *Supplier) AddDebt(amount valueobject.Money) error {
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("VALIDATION_ERROR", "Debt amount must be positive")
	}
	s.DetteFournisseur = s.DetteFournisseur.Add(amount.Amount())
	s.IncrementVersion()
	return nil
}

// RecordPayment settles money paid to the supplier. The payment first clears
// outstanding debt; any excess becomes prepaid credit.
func (s *Supplier) RecordPayment(amount valueobject.Money) error {
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("VALIDATION_ERROR", "Payment amount must be positive")
	}

	remaining := amount.Amount()
	if s.DetteFournisseur.IsPositive() {
		applied := decimal.Min(remaining, s.DetteFournisseur)
		s.DetteFournisseur = s.DetteFournisseur.Sub(applied)
		remaining = remaining.Sub(applied)
	}
	if remaining.IsPositive() {
		s.SoldeCrediteur = s.SoldeCrediteur.Add(remaining)
	}
	s.IncrementVersion()
	return nil
}

// ConsumeCredit spends prepaid credit against a new purchase
func (s *Supplier) ConsumeCredit(amount valueobject.Money) error {
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("VALIDATION_ERROR", "Credit amount must be positive")
	}
	if amount.Amount().GreaterThan(s.SoldeCrediteur) {
		return shared.NewDomainError("INSUFFICIENT_BALANCE", "Supplier credit is insufficient")
	}
	s.SoldeCrediteur = s.SoldeCrediteur.Sub(amount.Amount())
	s.IncrementVersion()
	return nil
}

// NetPosition is DetteFournisseur − SoldeCrediteur: positive means the agency
// owes money, negative means it holds credit.
func (s *Supplier) NetPosition() decimal.Decimal {
	return s.DetteFournisseur.Sub(s.SoldeCrediteur)
}

// Deactivate hides the supplier from new operations
func (s *Supplier) Deactivate() {
	s.Active = false
	s.IncrementVersion()
}
