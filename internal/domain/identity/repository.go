package identity

import (
	"context"

	"github.com/google/uuid"

	"github.com/voyago/backend/internal/domain/shared"
)

// AgencyRepository is the persistence port for agencies
type AgencyRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Agency, error)
	FindByCode(ctx context.Context, code string) (*Agency, error)
	List(ctx context.Context, filter shared.Filter) ([]*Agency, int64, error)
	Save(ctx context.Context, agency *Agency) error
}

// UserRepository is the persistence port for users
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	ListForAgency(ctx context.Context, agencyID uuid.UUID, filter shared.Filter) ([]*User, int64, error)
	Save(ctx context.Context, user *User) error
}
