package persistence

import (
	"context"

	"gorm.io/gorm"

	apppartner "github.com/voyago/backend/internal/application/partner"
	"github.com/voyago/backend/internal/domain/ledger"
	"github.com/voyago/backend/internal/domain/partner"
)

// GormPartnerTransactionScope implements the partner TransactionScope using
// GORM transactions. A supplier or client balance change and the matching
// ledger append commit or roll back together.
type GormPartnerTransactionScope struct {
	db *gorm.DB
}

// NewGormPartnerTransactionScope creates a new GormPartnerTransactionScope
func NewGormPartnerTransactionScope(db *gorm.DB) *GormPartnerTransactionScope {
	return &GormPartnerTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormPartnerTransactionScope) Execute(ctx context.Context, fn func(repos apppartner.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormPartnerRepositories{tx: tx})
	})
}

// gormPartnerRepositories provides partner-side repositories sharing one
// transaction.
type gormPartnerRepositories struct {
	tx *gorm.DB
}

// Suppliers returns the supplier repository scoped to the current transaction
func (r *gormPartnerRepositories) Suppliers() partner.SupplierRepository {
	return NewGormSupplierRepository(r.tx)
}

// Clients returns the client repository scoped to the current transaction
func (r *gormPartnerRepositories) Clients() partner.ClientRepository {
	return NewGormClientRepository(r.tx)
}

// Operations returns the ledger repository scoped to the current transaction
func (r *gormPartnerRepositories) Operations() ledger.OperationRepository {
	return NewGormOperationRepository(r.tx)
}

var _ apppartner.TransactionScope = (*GormPartnerTransactionScope)(nil)
var _ apppartner.TransactionalRepositories = (*gormPartnerRepositories)(nil)
