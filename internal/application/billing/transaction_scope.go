package billing

import (
	"context"

	"github.com/voyago/backend/internal/domain/billing"
	"github.com/voyago/backend/internal/domain/ledger"
)

// TransactionScope provides transactional access to the repositories a
// payment operation touches. The invoice mutation and the matching ledger
// append must commit or roll back together; a payment that updates one side
// only would desynchronize the caisse from the invoices.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the billing-side repositories
// within a transaction. All repositories returned share the same underlying
// database transaction.
type TransactionalRepositories interface {
	// Invoices returns the invoice repository scoped to the current transaction
	Invoices() billing.InvoiceRepository
	// Operations returns the ledger repository scoped to the current transaction
	Operations() ledger.OperationRepository
}

// NoOpTransactionScope runs the function without a real transaction.
// Useful for tests with in-memory or mocked repositories.
type NoOpTransactionScope struct {
	invoiceRepo   billing.InvoiceRepository
	operationRepo ledger.OperationRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(invoiceRepo billing.InvoiceRepository, operationRepo ledger.OperationRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		invoiceRepo:   invoiceRepo,
		operationRepo: operationRepo,
	}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Invoices returns the invoice repository
func (s *NoOpTransactionScope) Invoices() billing.InvoiceRepository {
	return s.invoiceRepo
}

// Operations returns the ledger repository
func (s *NoOpTransactionScope) Operations() ledger.OperationRepository {
	return s.operationRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
