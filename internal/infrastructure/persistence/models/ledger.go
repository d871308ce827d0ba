package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/voyago/backend/internal/domain/billing"
	"github.com/voyago/backend/internal/domain/ledger"
)

// OperationModel is the persistence model for one ledger row. The ledger is
// append-only: the repositories never issue UPDATE or DELETE against this
// table.
type OperationModel struct {
	AgencyAggregateModel
	Type         ledger.OperationType  `gorm:"type:varchar(30);not null;index:idx_operation_agency_type"`
	Direction    string                `gorm:"type:varchar(10);not null"`
	Amount       decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	Method       billing.PaymentMethod `gorm:"type:varchar(20);not null"`
	Label        string                `gorm:"type:varchar(500);not null"`
	Reference    string                `gorm:"type:varchar(100)"`
	InvoiceID    *uuid.UUID            `gorm:"type:uuid;index"`
	ClientID     *uuid.UUID            `gorm:"type:uuid;index"`
	SupplierID   *uuid.UUID            `gorm:"type:uuid;index"`
	AgentID      *uuid.UUID            `gorm:"type:uuid"`
	ReversalOfID *uuid.UUID            `gorm:"type:uuid;uniqueIndex"`
	RecordedBy   uuid.UUID             `gorm:"type:uuid;not null"`
	OccurredAt   time.Time             `gorm:"not null;index:idx_operation_agency_time"`
}

// TableName returns the table name for GORM
func (OperationModel) TableName() string {
	return "operations"
}

// ToDomain converts the persistence model to a domain Operation.
func (m *OperationModel) ToDomain() *ledger.Operation {
	flow, err := ledger.ParseDirection(m.Direction)
	if err != nil {
		flow = ledger.DirectionOf(m.Type)
	}
	return &ledger.Operation{
		AgencyAggregateRoot: m.ToDomainAgencyAggregateRoot(),
		Type:                m.Type,
		Flow:                flow,
		Amount:              m.Amount,
		Method:              m.Method,
		Label:               m.Label,
		Reference:           m.Reference,
		InvoiceID:           m.InvoiceID,
		ClientID:            m.ClientID,
		SupplierID:          m.SupplierID,
		AgentID:             m.AgentID,
		ReversalOfID:        m.ReversalOfID,
		RecordedBy:          m.RecordedBy,
		OccurredAt:          m.OccurredAt,
	}
}

// FromDomain populates the persistence model from a domain Operation.
func (m *OperationModel) FromDomain(op *ledger.Operation) {
	m.FromDomainAgencyAggregateRoot(op.AgencyAggregateRoot)
	m.Type = op.Type
	flow := op.Flow
	if flow == 0 {
		flow = ledger.DirectionOf(op.Type)
	}
	m.Direction = flow.String()
	m.Amount = op.Amount
	m.Method = op.Method
	m.Label = op.Label
	m.Reference = op.Reference
	m.InvoiceID = op.InvoiceID
	m.ClientID = op.ClientID
	m.SupplierID = op.SupplierID
	m.AgentID = op.AgentID
	m.ReversalOfID = op.ReversalOfID
	m.RecordedBy = op.RecordedBy
	m.OccurredAt = op.OccurredAt
}

// OperationModelFromDomain creates a new persistence model from a domain Operation.
func OperationModelFromDomain(op *ledger.Operation) *OperationModel {
	m := &OperationModel{}
	m.FromDomain(op)
	return m
}
