package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/voyago/backend/internal/domain/billing"
	"github.com/voyago/backend/internal/domain/shared"
	"github.com/voyago/backend/internal/domain/shared/valueobject"
)

// OperationType classifies every movement of money through the caisse
type OperationType string

const (
	OpInvoicePayment  OperationType = "invoice_payment"
	OpClientRecharge  OperationType = "client_recharge"
	OpFreeSale        OperationType = "free_sale"
	OpRefund          OperationType = "refund"
	OpCreditNote      OperationType = "credit_note"
	OpSupplierPayment OperationType = "supplier_payment"
	OpAgentSalary     OperationType = "agent_salary"
	OpMiscExpense     OperationType = "misc_expense"
	OpOther           OperationType = "other"
)

// IsValid checks if the operation type is recognized
func (t OperationType) IsValid() bool {
	switch t {
	case OpInvoicePayment, OpClientRecharge, OpFreeSale, OpRefund, OpCreditNote,
		OpSupplierPayment, OpAgentSalary, OpMiscExpense, OpOther:
		return true
	}
	return false
}

// String returns the string representation of OperationType
func (t OperationType) String() string {
	return string(t)
}

// Direction is the sign an operation contributes to the balance. On the wire
// and in storage it reads as "entree" (money in) or "sortie" (money out).
type Direction int

const (
	DirectionIn  Direction = 1
	DirectionOut Direction = -1
)

// String returns the stored form of the direction
func (d Direction) String() string {
	if d == DirectionIn {
		return "entree"
	}
	return "sortie"
}

// ParseDirection converts the stored form back to a Direction
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "entree":
		return DirectionIn, nil
	case "sortie":
		return DirectionOut, nil
	}
	return 0, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Unrecognized direction %q", s))
}

// DirectionOf maps each operation type to its canonical balance sign.
// Inflows: invoice payments, client recharges, free sales.
// Everything else moves money out of the caisse.
func DirectionOf(t OperationType) Direction {
	switch t {
	case OpInvoicePayment, OpClientRecharge, OpFreeSale:
		return DirectionIn
	default:
		return DirectionOut
	}
}

// HasFixedDirection reports whether the type pins the direction. Only "other"
// is free to flow either way; every named type has a canonical side.
func HasFixedDirection(t OperationType) bool {
	return t != OpOther
}

// Operation is one immutable row in the agency cash ledger. Rows are never
// updated or deleted after creation; cancellation appends a compensating
// reversal whose ReversalOfID points back here.
type Operation struct {
	shared.AgencyAggregateRoot
	Type         OperationType
	Flow         Direction
	Amount       decimal.Decimal
	Method       billing.PaymentMethod
	Label        string
	Reference    string
	InvoiceID    *uuid.UUID
	ClientID     *uuid.UUID
	SupplierID   *uuid.UUID
	AgentID      *uuid.UUID
	ReversalOfID *uuid.UUID
	RecordedBy   uuid.UUID
	OccurredAt   time.Time
}

// NewOperation creates a ledger operation flowing in its type's canonical
// direction. The amount is always stored positive; the sign comes from the
// recorded direction at read time.
func NewOperation(
	agencyID uuid.UUID,
	opType OperationType,
	amount valueobject.Money,
	method billing.PaymentMethod,
	label string,
	recordedBy uuid.UUID,
) (*Operation, error) {
	return NewDirectedOperation(agencyID, opType, DirectionOf(opType), amount, method, label, recordedBy)
}

// NewDirectedOperation creates a ledger operation with an explicit direction.
// Types with a fixed direction reject the opposite one; "other" flows
// whichever way the caller says.
func NewDirectedOperation(
	agencyID uuid.UUID,
	opType OperationType,
	flow Direction,
	amount valueobject.Money,
	method billing.PaymentMethod,
	label string,
	recordedBy uuid.UUID,
) (*Operation, error) {
	if agencyID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Agency ID cannot be empty")
	}
	if !opType.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Unrecognized operation type %q", opType))
	}
	if flow != DirectionIn && flow != DirectionOut {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Operation direction must be entree or sortie")
	}
	if HasFixedDirection(opType) && flow != DirectionOf(opType) {
		return nil, shared.NewDomainError("VALIDATION_ERROR",
			fmt.Sprintf("Operation type %q always flows %s", opType, DirectionOf(opType)))
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Operation amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Unrecognized payment method %q", method))
	}
	if label == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Operation label cannot be empty")
	}
	if recordedBy == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Recording user cannot be empty")
	}

	op := &Operation{
		AgencyAggregateRoot: shared.NewAgencyAggregateRoot(agencyID),
		Type:                opType,
		Flow:                flow,
		Amount:              amount.Amount().Round(2),
		Method:              method,
		Label:               label,
		RecordedBy:          recordedBy,
		OccurredAt:          time.Now(),
	}

	op.AddDomainEvent(NewOperationRecordedEvent(op))

	return op, nil
}

// WithInvoice links the operation to an invoice
func (o *Operation) WithInvoice(invoiceID uuid.UUID) *Operation {
	o.InvoiceID = &invoiceID
	return o
}

// WithClient links the operation to a client
func (o *Operation) WithClient(clientID uuid.UUID) *Operation {
	o.ClientID = &clientID
	return o
}

// WithSupplier links the operation to a supplier
func (o *Operation) WithSupplier(supplierID uuid.UUID) *Operation {
	o.SupplierID = &supplierID
	return o
}

// WithAgent links the operation to an agent (salary payments)
func (o *Operation) WithAgent(agentID uuid.UUID) *Operation {
	o.AgentID = &agentID
	return o
}

// WithReference attaches a free-form external reference (cheque number,
// transfer id)
func (o *Operation) WithReference(ref string) *Operation {
	o.Reference = ref
	return o
}

// Direction returns the balance sign of this operation. A reversal carries
// the original's type and direction but contributes the opposite sign, so
// the pair nets to exactly zero without touching the original row.
func (o *Operation) Direction() Direction {
	d := o.Flow
	if d == 0 {
		d = DirectionOf(o.Type)
	}
	if o.IsReversal() {
		return -d
	}
	return d
}

// SignedAmount returns the amount with the sign the operation contributes
// to the balance
func (o *Operation) SignedAmount() decimal.Decimal {
	if o.Direction() == DirectionOut {
		return o.Amount.Neg()
	}
	return o.Amount
}

// IsReversal reports whether this operation compensates another one
func (o *Operation) IsReversal() bool {
	return o.ReversalOfID != nil
}

// NewReversal builds the compensating operation for o: same amount and
// method, opposite direction. The original row is never touched.
func (o *Operation) NewReversal(recordedBy uuid.UUID, reason string) (*Operation, error) {
	if o.IsReversal() {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot cancel a cancellation operation")
	}
	if recordedBy == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Recording user cannot be empty")
	}

	label := fmt.Sprintf("Annulation: %s", o.Label)
	if reason != "" {
		label = fmt.Sprintf("%s (%s)", label, reason)
	}

	rev := &Operation{
		AgencyAggregateRoot: shared.NewAgencyAggregateRoot(o.AgencyID),
		Type:                o.Type,
		Flow:                o.Flow,
		Amount:              o.Amount,
		Method:              o.Method,
		Label:               label,
		Reference:           o.Reference,
		InvoiceID:           o.InvoiceID,
		ClientID:            o.ClientID,
		SupplierID:          o.SupplierID,
		AgentID:             o.AgentID,
		RecordedBy:          recordedBy,
		OccurredAt:          time.Now(),
	}
	originalID := o.ID
	rev.ReversalOfID = &originalID

	rev.AddDomainEvent(NewOperationReversedEvent(rev, originalID))

	return rev, nil
}

// Event names for the ledger aggregate
const (
	EventOperationRecorded = "ledger.operation.recorded"
	EventOperationReversed = "ledger.operation.reversed"
)

// OperationRecordedEvent is emitted when an operation is appended
type OperationRecordedEvent struct {
	shared.BaseDomainEvent
	Type   OperationType
	Amount decimal.Decimal
}

// NewOperationRecordedEvent creates an OperationRecordedEvent
func NewOperationRecordedEvent(op *Operation) OperationRecordedEvent {
	return OperationRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventOperationRecorded, op.ID),
		Type:            op.Type,
		Amount:          op.Amount,
	}
}

// OperationReversedEvent is emitted when a compensating operation is appended
type OperationReversedEvent struct {
	shared.BaseDomainEvent
	OriginalID uuid.UUID
}

// NewOperationReversedEvent creates an OperationReversedEvent
func NewOperationReversedEvent(rev *Operation, originalID uuid.UUID) OperationReversedEvent {
	return OperationReversedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventOperationReversed, rev.ID),
		OriginalID:      originalID,
	}
}
