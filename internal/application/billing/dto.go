package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/voyago/backend/internal/domain/billing"
)

// PayInvoiceRequest settles an invoice in full or in part. Amount is ignored
// for full payments.
type PayInvoiceRequest struct {
	InvoiceID uuid.UUID       `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Reference string          `json:"reference"`
}

// CreditNoteRequest issues a credit voucher against an invoice
type CreditNoteRequest struct {
	InvoiceID uuid.UUID       `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Reason    string          `json:"reason"`
}

// RefundRequest gives collected money back to the client
type RefundRequest struct {
	InvoiceID uuid.UUID       `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Reason    string          `json:"reason"`
}

// InvoiceResponse is the read model of an invoice
type InvoiceResponse struct {
	ID              uuid.UUID       `json:"id"`
	Number          string          `json:"number"`
	ClientID        uuid.UUID       `json:"client_id"`
	Status          string          `json:"status"`
	AmountExclTax   decimal.Decimal `json:"amount_excl_tax"`
	AmountInclTax   decimal.Decimal `json:"amount_incl_tax"`
	AmountPaid      decimal.Decimal `json:"amount_paid"`
	AmountRemaining decimal.Decimal `json:"amount_remaining"`
	IssuedAt        time.Time       `json:"issued_at"`
	DueAt           *time.Time      `json:"due_at,omitempty"`
}

// PaymentResult is returned by every payment operation: the invoice after the
// mutation plus the ledger operation that recorded the money movement.
type PaymentResult struct {
	Invoice     InvoiceResponse `json:"invoice"`
	OperationID uuid.UUID       `json:"operation_id"`
}

// ToInvoiceResponse maps the aggregate to its read model
func ToInvoiceResponse(inv *billing.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:              inv.ID,
		Number:          inv.Number,
		ClientID:        inv.ClientID,
		Status:          inv.Status.String(),
		AmountExclTax:   inv.AmountExclTax,
		AmountInclTax:   inv.AmountInclTax,
		AmountPaid:      inv.AmountPaid,
		AmountRemaining: inv.AmountRemaining(),
		IssuedAt:        inv.IssuedAt,
		DueAt:           inv.DueAt,
	}
}
