package billing

import (
	"context"

	"github.com/google/uuid"

	"github.com/voyago/backend/internal/domain/shared"
)

// InvoiceRepository is the persistence port for invoices.
// Every method is scoped to one agency; cross-agency reads are not expressible.
type InvoiceRepository interface {
	// FindByIDForAgency loads an invoice owned by the agency.
	// Returns shared.ErrNotFound if absent or owned by another agency.
	FindByIDForAgency(ctx context.Context, agencyID, id uuid.UUID) (*Invoice, error)

	// FindByIDForUpdate behaves like FindByIDForAgency but takes a row lock,
	// serializing concurrent payment operations against the same invoice.
	FindByIDForUpdate(ctx context.Context, agencyID, id uuid.UUID) (*Invoice, error)

	// FindByNumber loads an invoice by its per-agency sequence number
	FindByNumber(ctx context.Context, agencyID uuid.UUID, number string) (*Invoice, error)

	// ListForAgency lists invoices of an agency
	ListForAgency(ctx context.Context, agencyID uuid.UUID, filter shared.Filter) ([]*Invoice, int64, error)

	// Save persists the invoice (insert or update)
	Save(ctx context.Context, invoice *Invoice) error
}
