package partner

import (
	"context"

	"github.com/google/uuid"

	"github.com/voyago/backend/internal/domain/shared"
)

// SupplierRepository is the persistence port for suppliers
type SupplierRepository interface {
	FindByIDForAgency(ctx context.Context, agencyID, id uuid.UUID) (*Supplier, error)
	ListForAgency(ctx context.Context, agencyID uuid.UUID, filter shared.Filter) ([]*Supplier, int64, error)
	Save(ctx context.Context, supplier *Supplier) error
}

// ClientRepository is the persistence port for clients
type ClientRepository interface {
	FindByIDForAgency(ctx context.Context, agencyID, id uuid.UUID) (*Client, error)
	ListForAgency(ctx context.Context, agencyID uuid.UUID, filter shared.Filter) ([]*Client, int64, error)
	Save(ctx context.Context, client *Client) error
}
