package models

import (
	"github.com/shopspring/decimal"

	"github.com/voyago/backend/internal/domain/partner"
)

// SupplierModel is the persistence model for the Supplier aggregate.
type SupplierModel struct {
	AgencyAggregateModel
	Name             string          `gorm:"type:varchar(200);not null"`
	ContactEmail     string          `gorm:"type:varchar(200)"`
	ContactPhone     string          `gorm:"type:varchar(50)"`
	DetteFournisseur decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	SoldeCrediteur   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Active           bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (SupplierModel) TableName() string {
	return "suppliers"
}

// ToDomain converts the persistence model to a domain Supplier aggregate.
func (m *SupplierModel) ToDomain() *partner.Supplier {
	return &partner.Supplier{
		AgencyAggregateRoot: m.ToDomainAgencyAggregateRoot(),
		Name:                m.Name,
		ContactEmail:        m.ContactEmail,
		ContactPhone:        m.ContactPhone,
		DetteFournisseur:    m.DetteFournisseur,
		SoldeCrediteur:      m.SoldeCrediteur,
		Active:              m.Active,
	}
}

// FromDomain populates the persistence model from a domain Supplier aggregate.
func (m *SupplierModel) FromDomain(s *partner.Supplier) {
	m.FromDomainAgencyAggregateRoot(s.AgencyAggregateRoot)
	m.Name = s.Name
	m.ContactEmail = s.ContactEmail
	m.ContactPhone = s.ContactPhone
	m.DetteFournisseur = s.DetteFournisseur
	m.SoldeCrediteur = s.SoldeCrediteur
	m.Active = s.Active
}

// SupplierModelFromDomain creates a new persistence model from a domain Supplier aggregate.
func SupplierModelFromDomain(s *partner.Supplier) *SupplierModel {
	m := &SupplierModel{}
	m.FromDomain(s)
	return m
}

// ClientModel is the persistence model for the Client aggregate.
type ClientModel struct {
	AgencyAggregateModel
	Name    string          `gorm:"type:varchar(200);not null"`
	Email   string          `gorm:"type:varchar(200)"`
	Phone   string          `gorm:"type:varchar(50)"`
	Balance decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Active  bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (ClientModel) TableName() string {
	return "clients"
}

// ToDomain converts the persistence model to a domain Client aggregate.
func (m *ClientModel) ToDomain() *partner.Client {
	return &partner.Client{
		AgencyAggregateRoot: m.ToDomainAgencyAggregateRoot(),
		Name:                m.Name,
		Email:               m.Email,
		Phone:               m.Phone,
		Balance:             m.Balance,
		Active:              m.Active,
	}
}

// FromDomain populates the persistence model from a domain Client aggregate.
func (m *ClientModel) FromDomain(c *partner.Client) {
	m.FromDomainAgencyAggregateRoot(c.AgencyAggregateRoot)
	m.Name = c.Name
	m.Email = c.Email
	m.Phone = c.Phone
	m.Balance = c.Balance
	m.Active = c.Active
}

// ClientModelFromDomain creates a new persistence model from a domain Client aggregate.
func ClientModelFromDomain(c *partner.Client) *ClientModel {
	m := &ClientModel{}
	m.FromDomain(c)
	return m
}
