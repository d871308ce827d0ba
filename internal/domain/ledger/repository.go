package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/voyago/backend/internal/domain/shared"
)

// ListQuery narrows a ledger listing
type ListQuery struct {
	shared.Filter
	Type       *OperationType
	From       *time.Time
	To         *time.Time
	InvoiceID  *uuid.UUID
	ClientID   *uuid.UUID
	SupplierID *uuid.UUID
}

// OperationRepository is the persistence port for the append-only ledger.
// There is deliberately no Update or Delete: rows are immutable once written.
type OperationRepository interface {
	// Create appends an operation to the ledger
	Create(ctx context.Context, op *Operation) error

	// FindByIDForAgency loads an operation owned by the agency.
	// Returns shared.ErrNotFound if absent or owned by another agency.
	FindByIDForAgency(ctx context.Context, agencyID, id uuid.UUID) (*Operation, error)

	// FindReversalOf returns the compensating operation pointing at the given
	// original, or shared.ErrNotFound if none exists. This is the idempotency
	// guard for cancellation.
	FindReversalOf(ctx context.Context, agencyID, originalID uuid.UUID) (*Operation, error)

	// ListForAgency lists operations of an agency, newest first
	ListForAgency(ctx context.Context, agencyID uuid.UUID, query ListQuery) ([]*Operation, int64, error)

	// ListForPeriod loads every operation of an agency in [from, to]
	ListForPeriod(ctx context.Context, agencyID uuid.UUID, from, to time.Time) ([]*Operation, error)

	// SumForAgency computes the balance summary over the whole ledger of an
	// agency in SQL, without materializing rows.
	SumForAgency(ctx context.Context, agencyID uuid.UUID) (BalanceSummary, error)
}
