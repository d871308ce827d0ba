package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voyago/backend/internal/domain/partner"
	"github.com/voyago/backend/internal/domain/shared"
	"github.com/voyago/backend/internal/infrastructure/persistence/models"
)

// GormSupplierRepository implements SupplierRepository using GORM
type GormSupplierRepository struct {
	db *gorm.DB
}

// NewGormSupplierRepository creates a new GormSupplierRepository
func NewGormSupplierRepository(db *gorm.DB) *GormSupplierRepository {
	return &GormSupplierRepository{db: db}
}

// FindByIDForAgency finds a supplier by ID within an agency
func (r *GormSupplierRepository) FindByIDForAgency(ctx context.Context, agencyID, id uuid.UUID) (*partner.Supplier, error) {
	var model models.SupplierModel
	if err := r.db.WithContext(ctx).
		Where("agency_id = ? AND id = ?", agencyID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListForAgency lists suppliers of an agency
func (r *GormSupplierRepository) ListForAgency(ctx context.Context, agencyID uuid.UUID, filter shared.Filter) ([]*partner.Supplier, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.SupplierModel{}).Where("agency_id = ?", agencyID)

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR contact_email ILIKE ? OR contact_phone ILIKE ?",
			pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, PartnerSortFields, "name")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var rows []models.SupplierModel
	if err := query.
		Order(orderBy + " " + orderDir).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	suppliers := make([]*partner.Supplier, len(rows))
	for i := range rows {
		suppliers[i] = rows[i].ToDomain()
	}
	return suppliers, total, nil
}

// Save persists the supplier (insert or update)
func (r *GormSupplierRepository) Save(ctx context.Context, supplier *partner.Supplier) error {
	model := models.SupplierModelFromDomain(supplier)
	return r.db.WithContext(ctx).Save(model).Error
}

// Ensure GormSupplierRepository implements SupplierRepository
var _ partner.SupplierRepository = (*GormSupplierRepository)(nil)
