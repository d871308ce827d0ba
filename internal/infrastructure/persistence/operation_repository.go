package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/voyago/backend/internal/domain/ledger"
	"github.com/voyago/backend/internal/domain/shared"
	"github.com/voyago/backend/internal/infrastructure/persistence/models"
)

// inflowCondition is true when a row contributes money INTO the caisse:
// a recorded inflow, unless the row is a reversal (reversals carry the
// original's direction but contribute the opposite sign).
const inflowCondition = "(direction = 'entree') <> (reversal_of_id IS NOT NULL)"

// GormOperationRepository implements OperationRepository using GORM.
// The operations table is append-only: this repository never issues UPDATE
// or DELETE.
type GormOperationRepository struct {
	db *gorm.DB
}

// NewGormOperationRepository creates a new GormOperationRepository
func NewGormOperationRepository(db *gorm.DB) *GormOperationRepository {
	return &GormOperationRepository{db: db}
}

// Create appends an operation to the ledger
func (r *GormOperationRepository) Create(ctx context.Context, op *ledger.Operation) error {
	model := models.OperationModelFromDomain(op)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByIDForAgency finds an operation by ID within an agency
func (r *GormOperationRepository) FindByIDForAgency(ctx context.Context, agencyID, id uuid.UUID) (*ledger.Operation, error) {
	var model models.OperationModel
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

// FindReversalOf returns the compensating operation pointing at the given
// original. The unique index on reversal_of_id guarantees at most one exists.
func (r *GormOperationRepository) FindReversalOf(ctx context.Context, agencyID, originalID uuid.UUID) (*ledger.Operation, error) {
	var model models.OperationModel
	if err := r.db.WithContext(ctx).
		Where("agency_id = ? AND reversal_of_id = ?", agencyID, originalID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListForAgency lists operations of an agency, newest first
func (r *GormOperationRepository) ListForAgency(ctx context.Context, agencyID uuid.UUID, query ledger.ListQuery) ([]*ledger.Operation, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.OperationModel{}).Where("agency_id = ?", agencyID)

	if query.Type != nil {
		q = q.Where("type = ?", *query.Type)
	}
	if query.From != nil {
		q = q.Where("occurred_at >= ?", *query.From)
	}
	if query.To != nil {
		q = q.Where("occurred_at <= ?", *query.To)
	}
	if query.InvoiceID != nil {
		q = q.Where("invoice_id = ?", *query.InvoiceID)
	}
	if query.ClientID != nil {
		q = q.Where("client_id = ?", *query.ClientID)
	}
	if query.SupplierID != nil {
		q = q.Where("supplier_id = ?", *query.SupplierID)
	}
	if query.Search != "" {
		pattern := "%" + query.Search + "%"
		q = q.Where("label ILIKE ? OR reference ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(query.OrderBy, OperationSortFields, "occurred_at")
	orderDir := ValidateSortOrder(query.OrderDir)

	var rows []models.OperationModel
	if err := q.
		Order(orderBy + " " + orderDir).
		Offset(query.Offset()).
		Limit(query.Limit()).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	ops := make([]*ledger.Operation, len(rows))
	for i := range rows {
		ops[i] = rows[i].ToDomain()
	}
	return ops, total, nil
}

// ListForPeriod loads every operation of an agency in [from, to], oldest first
func (r *GormOperationRepository) ListForPeriod(ctx context.Context, agencyID uuid.UUID, from, to time.Time) ([]*ledger.Operation, error) {
	var rows []models.OperationModel
	if err := r.db.WithContext(ctx).
		Where("agency_id = ? AND occurred_at >= ? AND occurred_at <= ?", agencyID, from, to).
		Order("occurred_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	ops := make([]*ledger.Operation, len(rows))
	for i := range rows {
		ops[i] = rows[i].ToDomain()
	}
	return ops, nil
}

// SumForAgency computes the balance summary over the whole ledger of an
// agency in SQL, without materializing rows.
func (r *GormOperationRepository) SumForAgency(ctx context.Context, agencyID uuid.UUID) (ledger.BalanceSummary, error) {
	var row struct {
		TotalIn        decimal.Decimal
		TotalOut       decimal.Decimal
		OperationCount int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.OperationModel{}).
		Select("COALESCE(SUM(CASE WHEN "+inflowCondition+" THEN amount ELSE 0 END), 0) AS total_in, "+
			"COALESCE(SUM(CASE WHEN "+inflowCondition+" THEN 0 ELSE amount END), 0) AS total_out, "+
			"COUNT(*) AS operation_count").
		Where("agency_id = ?", agencyID).
		Scan(&row).Error; err != nil {
		return ledger.BalanceSummary{}, err
	}

	return ledger.BalanceSummary{
		TotalIn:        row.TotalIn,
		TotalOut:       row.TotalOut,
		Balance:        row.TotalIn.Sub(row.TotalOut),
		OperationCount: row.OperationCount,
	}, nil
}

// Ensure GormOperationRepository implements OperationRepository
var _ ledger.OperationRepository = (*GormOperationRepository)(nil)
