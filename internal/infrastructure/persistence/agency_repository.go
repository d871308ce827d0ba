package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voyago/backend/internal/domain/identity"
	"github.com/voyago/backend/internal/domain/shared"
)

// GormAgencyRepository implements AgencyRepository using GORM.
// The Agency aggregate carries its own column tags and is persisted directly.
type GormAgencyRepository struct {
	db *gorm.DB
}

// NewGormAgencyRepository creates a new GormAgencyRepository
func NewGormAgencyRepository(db *gorm.DB) *GormAgencyRepository {
	return &GormAgencyRepository{db: db}
}

// FindByID finds an agency by its ID
func (r *GormAgencyRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Agency, error) {
	var agency identity.Agency
	if err := r.db.WithContext(ctx).First(&agency, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &agency, nil
}

// FindByCode finds an agency by its unique code
func (r *GormAgencyRepository) FindByCode(ctx context.Context, code string) (*identity.Agency, error) {
	var agency identity.Agency
	if err := r.db.WithContext(ctx).First(&agency, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &agency, nil
}

// List lists all agencies
func (r *GormAgencyRepository) List(ctx context.Context, filter shared.Filter) ([]*identity.Agency, int64, error) {
	query := r.db.WithContext(ctx).Model(&identity.Agency{})

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("code ILIKE ? OR name ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, AgencySortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var agencies []*identity.Agency
	if err := query.
		Order(orderBy + " " + orderDir).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&agencies).Error; err != nil {
		return nil, 0, err
	}
	return agencies, total, nil
}

// Save persists the agency (insert or update)
func (r *GormAgencyRepository) Save(ctx context.Context, agency *identity.Agency) error {
	return r.db.WithContext(ctx).Save(agency).Error
}

// Ensure GormAgencyRepository implements AgencyRepository
var _ identity.AgencyRepository = (*GormAgencyRepository)(nil)
