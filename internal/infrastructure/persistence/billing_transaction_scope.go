package persistence

import (
	"context"

	"gorm.io/gorm"

	appbilling "github.com/voyago/backend/internal/application/billing"
	"github.com/voyago/backend/internal/domain/billing"
	"github.com/voyago/backend/internal/domain/ledger"
)

// GormBillingTransactionScope implements the billing TransactionScope using
// GORM transactions. The invoice mutation and the matching ledger append
// commit or roll back together.
type GormBillingTransactionScope struct {
	db *gorm.DB
}

// NewGormBillingTransactionScope creates a new GormBillingTransactionScope
func NewGormBillingTransactionScope(db *gorm.DB) *GormBillingTransactionScope {
	return &GormBillingTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormBillingTransactionScope) Execute(ctx context.Context, fn func(repos appbilling.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormBillingRepositories{tx: tx})
	})
}

// gormBillingRepositories provides billing-side repositories sharing one
// transaction.
type gormBillingRepositories struct {
	tx *gorm.DB
}

// Invoices returns the invoice repository scoped to the current transaction
func (r *gormBillingRepositories) Invoices() billing.InvoiceRepository {
	return NewGormInvoiceRepository(r.tx)
}

// Operations returns the ledger repository scoped to the current transaction
func (r *gormBillingRepositories) Operations() ledger.OperationRepository {
	return NewGormOperationRepository(r.tx)
}

var _ appbilling.TransactionScope = (*GormBillingTransactionScope)(nil)
var _ appbilling.TransactionalRepositories = (*gormBillingRepositories)(nil)
