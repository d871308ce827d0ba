package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/voyago/backend/internal/domain/ledger"
)

// RecordOperationRequest appends a movement to the caisse. Direction is
// optional: empty means the type's canonical side, and only "other" may
// deviate from it.
type RecordOperationRequest struct {
	Type       string          `json:"type"`
	Direction  string          `json:"direction,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	Label      string          `json:"label"`
	Reference  string          `json:"reference"`
	InvoiceID  *uuid.UUID      `json:"invoice_id,omitempty"`
	ClientID   *uuid.UUID      `json:"client_id,omitempty"`
	SupplierID *uuid.UUID      `json:"supplier_id,omitempty"`
	AgentID    *uuid.UUID      `json:"agent_id,omitempty"`
}

// CancelOperationRequest appends the compensating reversal of an operation
type CancelOperationRequest struct {
	OperationID uuid.UUID `json:"operation_id"`
	Reason      string    `json:"reason"`
}

// ListOperationsRequest narrows a ledger listing
type ListOperationsRequest struct {
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
	Type     string     `json:"type"`
	From     *time.Time `json:"from,omitempty"`
	To       *time.Time `json:"to,omitempty"`
}

// OperationResponse is the read model of a ledger operation
type OperationResponse struct {
	ID           uuid.UUID       `json:"id"`
	Type         string          `json:"type"`
	Direction    string          `json:"direction"`
	Amount       decimal.Decimal `json:"amount"`
	SignedAmount decimal.Decimal `json:"signed_amount"`
	Method       string          `json:"method"`
	Label        string          `json:"label"`
	Reference    string          `json:"reference,omitempty"`
	InvoiceID    *uuid.UUID      `json:"invoice_id,omitempty"`
	ClientID     *uuid.UUID      `json:"client_id,omitempty"`
	SupplierID   *uuid.UUID      `json:"supplier_id,omitempty"`
	AgentID      *uuid.UUID      `json:"agent_id,omitempty"`
	ReversalOfID *uuid.UUID      `json:"reversal_of_id,omitempty"`
	RecordedBy   uuid.UUID       `json:"recorded_by"`
	OccurredAt   time.Time       `json:"occurred_at"`
}

// BalanceResponse is the current caisse balance of an agency
type BalanceResponse struct {
	TotalIn        decimal.Decimal `json:"total_in"`
	TotalOut       decimal.Decimal `json:"total_out"`
	Balance        decimal.Decimal `json:"balance"`
	OperationCount int64           `json:"operation_count"`
}

// ReportResponse is a period report over the caisse
type ReportResponse struct {
	From       time.Time                  `json:"from"`
	To         time.Time                  `json:"to"`
	Summary    BalanceResponse            `json:"summary"`
	ByType     map[string]decimal.Decimal `json:"by_type"`
	ByMethod   map[string]BalanceResponse `json:"by_method"`
	Operations int                        `json:"operations"`
}

// ToOperationResponse maps the aggregate to its read model
func ToOperationResponse(op *ledger.Operation) OperationResponse {
	return OperationResponse{
		ID:           op.ID,
		Type:         op.Type.String(),
		Direction:    op.Direction().String(),
		Amount:       op.Amount,
		SignedAmount: op.SignedAmount(),
		Method:       op.Method.String(),
		Label:        op.Label,
		Reference:    op.Reference,
		InvoiceID:    op.InvoiceID,
		ClientID:     op.ClientID,
		SupplierID:   op.SupplierID,
		AgentID:      op.AgentID,
		ReversalOfID: op.ReversalOfID,
		RecordedBy:   op.RecordedBy,
		OccurredAt:   op.OccurredAt,
	}
}

func toBalanceResponse(s ledger.BalanceSummary) BalanceResponse {
	return BalanceResponse{TotalIn: s.TotalIn, TotalOut: s.TotalOut, Balance: s.Balance, OperationCount: s.OperationCount}
}

// ToReportResponse maps the domain report to its read model
func ToReportResponse(r ledger.Report) ReportResponse {
	resp := ReportResponse{
		From:       r.From,
		To:         r.To,
		Summary:    toBalanceResponse(r.Summary),
		ByType:     make(map[string]decimal.Decimal, len(r.ByType)),
		ByMethod:   make(map[string]BalanceResponse, len(r.ByMethod)),
		Operations: r.Operations,
	}
	for ty, amount := range r.ByType {
		resp.ByType[ty.String()] = amount
	}
	for m, s := range r.ByMethod {
		resp.ByMethod[m.String()] = toBalanceResponse(s)
	}
	return resp
}
