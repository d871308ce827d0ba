package partner

import (
	"context"

	"github.com/voyago/backend/internal/domain/ledger"
	"github.com/voyago/backend/internal/domain/partner"
)

// TransactionScope provides transactional access to the repositories a
// partner money movement touches: the supplier or client balance update and
// the ledger append must commit together.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the partner-side repositories
// within a transaction.
type TransactionalRepositories interface {
	Suppliers() partner.SupplierRepository
	Clients() partner.ClientRepository
	Operations() ledger.OperationRepository
}

// NoOpTransactionScope runs the function without a real transaction
type NoOpTransactionScope struct {
	supplierRepo  partner.SupplierRepository
	clientRepo    partner.ClientRepository
	operationRepo ledger.OperationRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(
	supplierRepo partner.SupplierRepository,
	clientRepo partner.ClientRepository,
	operationRepo ledger.OperationRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		supplierRepo:  supplierRepo,
		clientRepo:    clientRepo,
		operationRepo: operationRepo,
	}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Suppliers returns the supplier repository
func (s *NoOpTransactionScope) Suppliers() partner.SupplierRepository {
	return s.supplierRepo
}

// Clients returns the client repository
func (s *NoOpTransactionScope) Clients() partner.ClientRepository {
	return s.clientRepo
}

// Operations returns the ledger repository
func (s *NoOpTransactionScope) Operations() ledger.OperationRepository {
	return s.operationRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
