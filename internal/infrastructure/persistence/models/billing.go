package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/voyago/backend/internal/domain/billing"
)

// InvoiceModel is the persistence model for the Invoice aggregate.
type InvoiceModel struct {
	AgencyAggregateModel
	Number        string                 `gorm:"type:varchar(50);not null;uniqueIndex:idx_invoice_agency_number,priority:2"`
	ClientID      uuid.UUID              `gorm:"type:uuid;not null;index"`
	Status        billing.InvoiceStatus  `gorm:"type:varchar(20);not null;default:'draft';index"`
	IssuedAt      time.Time              `gorm:"not null"`
	DueAt         *time.Time             `gorm:"index"`
	AmountExclTax decimal.Decimal        `gorm:"type:decimal(18,2);not null"`
	AmountInclTax decimal.Decimal        `gorm:"type:decimal(18,2);not null"`
	AmountPaid    decimal.Decimal        `gorm:"type:decimal(18,2);not null;default:0"`
	Lines         billing.LineItems      `gorm:"type:jsonb"`
	Payments      billing.PaymentEntries `gorm:"type:jsonb"`
	CancelledAt   *time.Time
	CancelReason  string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice aggregate.
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	return &billing.Invoice{
		AgencyAggregateRoot: m.ToDomainAgencyAggregateRoot(),
		Number:              m.Number,
		ClientID:            m.ClientID,
		Status:              m.Status,
		IssuedAt:            m.IssuedAt,
		DueAt:               m.DueAt,
		AmountExclTax:       m.AmountExclTax,
		AmountInclTax:       m.AmountInclTax,
		AmountPaid:          m.AmountPaid,
		Lines:               m.Lines,
		Payments:            m.Payments,
		CancelledAt:         m.CancelledAt,
		CancelReason:        m.CancelReason,
	}
}

// FromDomain populates the persistence model from a domain Invoice aggregate.
func (m *InvoiceModel) FromDomain(inv *billing.Invoice) {
	m.FromDomainAgencyAggregateRoot(inv.AgencyAggregateRoot)
	m.Number = inv.Number
	m.ClientID = inv.ClientID
	m.Status = inv.Status
	m.IssuedAt = inv.IssuedAt
	m.DueAt = inv.DueAt
	m.AmountExclTax = inv.AmountExclTax
	m.AmountInclTax = inv.AmountInclTax
	m.AmountPaid = inv.AmountPaid
	m.Lines = inv.Lines
	m.Payments = inv.Payments
	m.CancelledAt = inv.CancelledAt
	m.CancelReason = inv.CancelReason
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice aggregate.
func InvoiceModelFromDomain(inv *billing.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}
