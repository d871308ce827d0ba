package billing

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/voyago/backend/internal/domain/shared"
	"github.com/voyago/backend/internal/domain/shared/valueobject"
)

// InvoiceStatus represents the payment status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "draft"
	InvoiceStatusSent          InvoiceStatus = "sent"
	InvoiceStatusPartiallyPaid InvoiceStatus = "partially_paid"
	InvoiceStatusPaid          InvoiceStatus = "paid"
	InvoiceStatusOverdue       InvoiceStatus = "overdue"
	InvoiceStatusCancelled     InvoiceStatus = "cancelled"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPartiallyPaid,
		InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsTerminal returns true if no further payment activity is allowed
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusCancelled
}

// CanReceivePayment returns true if payments can be applied in this status
func (s InvoiceStatus) CanReceivePayment() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPartiallyPaid, InvoiceStatusOverdue:
		return true
	}
	return false
}

// PaymentMethod is the settlement method of a payment or ledger operation
type PaymentMethod string

const (
	MethodCash     PaymentMethod = "cash"
	MethodCheque   PaymentMethod = "cheque"
	MethodTransfer PaymentMethod = "transfer"
)

// IsValid checks if the payment method is recognized
func (m PaymentMethod) IsValid() bool {
	switch m {
	case MethodCash, MethodCheque, MethodTransfer:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// LineItem is one billed line on an invoice
type LineItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// LineItems is stored as JSONB on the invoice row
type LineItems []LineItem

// Value implements driver.Valuer for JSONB storage
func (l LineItems) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner for JSONB retrieval
func (l *LineItems) Scan(value interface{}) error {
	return scanJSON(value, l, func() { *l = LineItems{} })
}

// PaymentEntry records one settlement applied to the invoice
type PaymentEntry struct {
	ID       uuid.UUID       `json:"id"`
	Amount   decimal.Decimal `json:"amount"`
	Method   PaymentMethod   `json:"method"`
	PaidAt   time.Time       `json:"paid_at"`
	Refunded bool            `json:"refunded,omitempty"`
}

// PaymentEntries is stored as JSONB on the invoice row
type PaymentEntries []PaymentEntry

// Value implements driver.Valuer for JSONB storage
func (p PaymentEntries) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner for JSONB retrieval
func (p *PaymentEntries) Scan(value interface{}) error {
	return scanJSON(value, p, func() { *p = PaymentEntries{} })
}

func scanJSON(value interface{}, dst interface{}, reset func()) error {
	if value == nil {
		reset()
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("unsupported type for JSON scan")
	}
	if len(bytes) == 0 {
		reset()
		return nil
	}
	return json.Unmarshal(bytes, dst)
}

// Invoice is the facture aggregate root. Its monetary fields are mutated only
// through the payment operations below, in lockstep with ledger writes made by
// the caisse service.
type Invoice struct {
	shared.AgencyAggregateRoot
	Number        string
	ClientID      uuid.UUID
	Status        InvoiceStatus
	IssuedAt      time.Time
	DueAt         *time.Time
	AmountExclTax decimal.Decimal
	AmountInclTax decimal.Decimal
	AmountPaid    decimal.Decimal
	Lines         LineItems
	Payments      PaymentEntries
	CancelledAt   *time.Time
	CancelReason  string
}

// NewInvoice creates a new invoice in draft status
func NewInvoice(
	agencyID uuid.UUID,
	number string,
	clientID uuid.UUID,
	amountExclTax valueobject.Money,
	amountInclTax valueobject.Money,
	lines LineItems,
	dueAt *time.Time,
) (*Invoice, error) {
	if number == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Invoice number cannot be empty")
	}
	if agencyID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Agency ID cannot be empty")
	}
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Client ID cannot be empty")
	}
	if amountInclTax.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Invoice amount must be positive")
	}
	if amountExclTax.Amount().GreaterThan(amountInclTax.Amount()) {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Amount excluding tax cannot exceed amount including tax")
	}

	inv := &Invoice{
		AgencyAggregateRoot: shared.NewAgencyAggregateRoot(agencyID),
		Number:              number,
		ClientID:            clientID,
		Status:              InvoiceStatusDraft,
		IssuedAt:            time.Now(),
		DueAt:               dueAt,
		AmountExclTax:       amountExclTax.Amount(),
		AmountInclTax:       amountInclTax.Amount(),
		AmountPaid:          decimal.Zero,
		Lines:               lines,
		Payments:            PaymentEntries{},
	}

	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))

	return inv, nil
}

// AmountRemaining returns amountInclTax − amountPaid, floored at zero
func (inv *Invoice) AmountRemaining() decimal.Decimal {
	remaining := inv.AmountInclTax.Sub(inv.AmountPaid)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// MarkSent transitions a draft invoice to sent
func (inv *Invoice) MarkSent() error {
	if inv.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot send invoice in %s status", inv.Status))
	}
	inv.Status = InvoiceStatusSent
	inv.touch()
	return nil
}

// ApplyPayment applies a payment towards the invoice total. Used for both
// partial and full settlements; the caisse service records the matching
// ledger inflow in the same transaction.
func (inv *Invoice) ApplyPayment(amount valueobject.Money, method PaymentMethod) error {
	if inv.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot apply payment to invoice in %s status", inv.Status))
	}
	if inv.IsPaid() {
		return shared.NewDomainError("INVALID_STATE", "Invoice is already fully paid")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("VALIDATION_ERROR", "Payment amount must be positive")
	}
	if !method.IsValid() {
		return shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Unrecognized payment method %q", method))
	}
	if amount.Amount().GreaterThan(inv.AmountRemaining()) {
		return shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf(
			"Payment amount %s exceeds remaining amount %s",
			amount.Amount().StringFixed(2), inv.AmountRemaining().StringFixed(2)))
	}

	inv.Payments = append(inv.Payments, PaymentEntry{
		ID:     uuid.New(),
		Amount: amount.Amount(),
		Method: method,
		PaidAt: time.Now(),
	})
	inv.AmountPaid = inv.AmountPaid.Add(amount.Amount())
	inv.recomputeStatus()
	inv.touch()

	if inv.IsPaid() {
		inv.AddDomainEvent(NewInvoicePaidEvent(inv))
	} else {
		inv.AddDomainEvent(NewInvoicePartiallyPaidEvent(inv, amount))
	}

	return nil
}

// ApplyRefund reverses previously collected money. The caisse service records
// the matching ledger outflow in the same transaction.
func (inv *Invoice) ApplyRefund(amount valueobject.Money) error {
	if inv.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot refund invoice in %s status", inv.Status))
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("VALIDATION_ERROR", "Refund amount must be positive")
	}
	if amount.Amount().GreaterThan(inv.AmountPaid) {
		return shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf(
			"Refund amount %s exceeds amount paid %s",
			amount.Amount().StringFixed(2), inv.AmountPaid.StringFixed(2)))
	}

	inv.AmountPaid = inv.AmountPaid.Sub(amount.Amount())
	inv.recomputeStatus()
	inv.touch()
	inv.AddDomainEvent(NewInvoiceRefundedEvent(inv, amount))

	return nil
}

// ValidateCreditNote checks that a credit note of the given amount may be
// issued. A credit note is a voucher, not a cash reversal: it never changes
// amountPaid, so the invoice itself is untouched beyond this validation.
func (inv *Invoice) ValidateCreditNote(amount valueobject.Money) error {
	if inv.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot issue credit note for invoice in %s status", inv.Status))
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("VALIDATION_ERROR", "Credit note amount must be positive")
	}
	if amount.Amount().GreaterThan(inv.AmountPaid) {
		return shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf(
			"Credit note amount %s exceeds amount paid %s",
			amount.Amount().StringFixed(2), inv.AmountPaid.StringFixed(2)))
	}
	return nil
}

// Cancel marks the invoice cancelled. Terminal; reachable from any other
// state by explicit action only.
func (inv *Invoice) Cancel(reason string) error {
	if inv.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Invoice is already cancelled")
	}
	if reason == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Cancel reason is required")
	}

	now := time.Now()
	inv.Status = InvoiceStatusCancelled
	inv.CancelledAt = &now
	inv.CancelReason = reason
	inv.touch()
	inv.AddDomainEvent(NewInvoiceCancelledEvent(inv))

	return nil
}

// recomputeStatus derives the status from amountPaid vs amountInclTax.
// Zero paid leaves draft/sent untouched; a refund that empties the invoice
// reverts it to sent.
func (inv *Invoice) recomputeStatus() {
	switch {
	case inv.AmountPaid.GreaterThanOrEqual(inv.AmountInclTax):
		inv.Status = InvoiceStatusPaid
	case inv.AmountPaid.GreaterThan(decimal.Zero):
		inv.Status = InvoiceStatusPartiallyPaid
	default:
		if inv.Status == InvoiceStatusPartiallyPaid || inv.Status == InvoiceStatusPaid {
			inv.Status = InvoiceStatusSent
		}
	}
}

func (inv *Invoice) touch() {
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()
}

// IsPaid returns true if the invoice is fully settled
func (inv *Invoice) IsPaid() bool {
	return inv.AmountPaid.GreaterThanOrEqual(inv.AmountInclTax)
}

// IsCancelled returns true if the invoice was cancelled
func (inv *Invoice) IsCancelled() bool {
	return inv.Status == InvoiceStatusCancelled
}

// IsOverdue returns true if the due date has passed on an unsettled invoice
func (inv *Invoice) IsOverdue() bool {
	if inv.Status.IsTerminal() || inv.IsPaid() {
		return false
	}
	if inv.DueAt == nil {
		return false
	}
	return time.Now().After(*inv.DueAt)
}

// GetAmountPaidMoney returns amountPaid as Money
func (inv *Invoice) GetAmountPaidMoney() valueobject.Money {
	return valueobject.NewMoneyEUR(inv.AmountPaid)
}

// GetAmountRemainingMoney returns the remaining amount as Money
func (inv *Invoice) GetAmountRemainingMoney() valueobject.Money {
	return valueobject.NewMoneyEUR(inv.AmountRemaining())
}
