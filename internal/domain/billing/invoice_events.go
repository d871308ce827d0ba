package billing

import (
	"github.com/voyago/backend/internal/domain/shared"
	"github.com/voyago/backend/internal/domain/shared/valueobject"
)

// Event names for the invoice aggregate
const (
	EventInvoiceCreated       = "billing.invoice.created"
	EventInvoicePartiallyPaid = "billing.invoice.partially_paid"
	EventInvoicePaid          = "billing.invoice.paid"
	EventInvoiceRefunded      = "billing.invoice.refunded"
	EventInvoiceCancelled     = "billing.invoice.cancelled"
)

// InvoiceCreatedEvent is emitted when an invoice is created
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	Number string
}

// NewInvoiceCreatedEvent creates an InvoiceCreatedEvent
func NewInvoiceCreatedEvent(inv *Invoice) InvoiceCreatedEvent {
	return InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventInvoiceCreated, inv.ID),
		Number:          inv.Number,
	}
}

// InvoicePartiallyPaidEvent is emitted on each partial settlement
type InvoicePartiallyPaidEvent struct {
	shared.BaseDomainEvent
	Amount valueobject.Money
}

// NewInvoicePartiallyPaidEvent creates an InvoicePartiallyPaidEvent
func NewInvoicePartiallyPaidEvent(inv *Invoice, amount valueobject.Money) InvoicePartiallyPaidEvent {
	return InvoicePartiallyPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventInvoicePartiallyPaid, inv.ID),
		Amount:          amount,
	}
}

// InvoicePaidEvent is emitted when the invoice becomes fully settled
type InvoicePaidEvent struct {
	shared.BaseDomainEvent
}

// NewInvoicePaidEvent creates an InvoicePaidEvent
func NewInvoicePaidEvent(inv *Invoice) InvoicePaidEvent {
	return InvoicePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventInvoicePaid, inv.ID),
	}
}

// InvoiceRefundedEvent is emitted when collected money is given back
type InvoiceRefundedEvent struct {
	shared.BaseDomainEvent
	Amount valueobject.Money
}

// NewInvoiceRefundedEvent creates an InvoiceRefundedEvent
func NewInvoiceRefundedEvent(inv *Invoice, amount valueobject.Money) InvoiceRefundedEvent {
	return InvoiceRefundedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventInvoiceRefunded, inv.ID),
		Amount:          amount,
	}
}

// InvoiceCancelledEvent is emitted when the invoice is cancelled
type InvoiceCancelledEvent struct {
	shared.BaseDomainEvent
	Reason string
}

// NewInvoiceCancelledEvent creates an InvoiceCancelledEvent
func NewInvoiceCancelledEvent(inv *Invoice) InvoiceCancelledEvent {
	return InvoiceCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventInvoiceCancelled, inv.ID),
		Reason:          inv.CancelReason,
	}
}
