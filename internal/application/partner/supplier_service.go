package partner

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/voyago/backend/internal/domain/billing"
	"github.com/voyago/backend/internal/domain/ledger"
	"github.com/voyago/backend/internal/domain/partner"
	"github.com/voyago/backend/internal/domain/shared"
	"github.com/voyago/backend/internal/domain/shared/valueobject"
)

// SupplierService manages fournisseurs and their money movements. A supplier
// payment updates the dual balances and appends the caisse outflow in one
// transaction.
type SupplierService struct {
	scope  TransactionScope
	logger *zap.Logger
}

// NewSupplierService creates a new SupplierService
func NewSupplierService(scope TransactionScope, logger *zap.Logger) *SupplierService {
	return &SupplierService{scope: scope, logger: logger}
}

// Create registers a new supplier
func (s *SupplierService) Create(ctx context.Context, agencyID uuid.UUID, req CreateSupplierRequest) (*SupplierResponse, error) {
	supplier, err := partner.NewSupplier(agencyID, req.Name, req.Email, req.Phone)
	if err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		return repos.Suppliers().Save(ctx, supplier)
	})
	if err != nil {
		return nil, err
	}

	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// Get loads one supplier
func (s *SupplierService) Get(ctx context.Context, agencyID, supplierID uuid.UUID) (*SupplierResponse, error) {
	var resp *SupplierResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		supplier, err := repos.Suppliers().FindByIDForAgency(ctx, agencyID, supplierID)
		if err != nil {
			return err
		}
		r := ToSupplierResponse(supplier)
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// List lists suppliers of the agency
func (s *SupplierService) List(ctx context.Context, agencyID uuid.UUID, filter shared.Filter) ([]SupplierResponse, int64, error) {
	var out []SupplierResponse
	var total int64
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		suppliers, n, err := repos.Suppliers().ListForAgency(ctx, agencyID, filter)
		if err != nil {
			return err
		}
		out = make([]SupplierResponse, 0, len(suppliers))
		for _, sup := range suppliers {
			out = append(out, ToSupplierResponse(sup))
		}
		total = n
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// RecordDebt registers a purchase on credit; no money leaves the caisse
func (s *SupplierService) RecordDebt(ctx context.Context, agencyID uuid.UUID, req SupplierDebtRequest) (*SupplierResponse, error) {
	var resp *SupplierResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		supplier, err := repos.Suppliers().FindByIDForAgency(ctx, agencyID, req.SupplierID)
		if err != nil {
			return err
		}
		if err := supplier.AddDebt(valueobject.NewMoneyEUR(req.Amount)); err != nil {
			return err
		}
		if err := repos.Suppliers().Save(ctx, supplier); err != nil {
			return err
		}
		r := ToSupplierResponse(supplier)
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Pay moves money from the caisse to the supplier: the payment clears debt
// first, any excess becomes prepaid credit, and a supplier_payment outflow is
// appended to the ledger.
func (s *SupplierService) Pay(ctx context.Context, agencyID, userID uuid.UUID, req SupplierPaymentRequest) (*SupplierResponse, error) {
	method := billing.PaymentMethod(req.Method)
	if !method.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Unrecognized payment method %q", req.Method))
	}
	amount := valueobject.NewMoneyEUR(req.Amount)

	var resp *SupplierResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		supplier, err := repos.Suppliers().FindByIDForAgency(ctx, agencyID, req.SupplierID)
		if err != nil {
			return err
		}

		if err := supplier.RecordPayment(amount); err != nil {
			return err
		}

		label := req.Label
		if label == "" {
			label = fmt.Sprintf("Règlement fournisseur %s", supplier.Name)
		}
		op, err := ledger.NewOperation(agencyID, ledger.OpSupplierPayment, amount, method, label, userID)
		if err != nil {
			return err
		}
		op.WithSupplier(supplier.ID)
		if req.Reference != "" {
			op.WithReference(req.Reference)
		}
		if err := repos.Operations().Create(ctx, op); err != nil {
			return err
		}

		if err := repos.Suppliers().Save(ctx, supplier); err != nil {
			return err
		}

		r := ToSupplierResponse(supplier)
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("supplier payment recorded",
		zap.String("agency_id", agencyID.String()),
		zap.String("supplier_id", req.SupplierID.String()),
		zap.String("amount", req.Amount.StringFixed(2)))

	return resp, nil
}
