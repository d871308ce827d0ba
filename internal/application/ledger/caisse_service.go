package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/voyago/backend/internal/domain/billing"
	"github.com/voyago/backend/internal/domain/ledger"
	"github.com/voyago/backend/internal/domain/shared"
	"github.com/voyago/backend/internal/domain/shared/valueobject"
)

// CaisseService drives the agency cash ledger. Every write appends; nothing
// is ever updated or deleted, so the balance at any point is reproducible
// from the rows alone.
type CaisseService struct {
	operationRepo ledger.OperationRepository
	logger        *zap.Logger
}

// NewCaisseService creates a new CaisseService
func NewCaisseService(operationRepo ledger.OperationRepository, logger *zap.Logger) *CaisseService {
	return &CaisseService{
		operationRepo: operationRepo,
		logger:        logger,
	}
}

// RecordOperation appends a movement to the agency ledger
func (s *CaisseService) RecordOperation(ctx context.Context, agencyID, userID uuid.UUID, req RecordOperationRequest) (*OperationResponse, error) {
	opType := ledger.OperationType(req.Type)
	method := billing.PaymentMethod(req.Method)

	var op *ledger.Operation
	var err error
	if req.Direction != "" {
		flow, perr := ledger.ParseDirection(req.Direction)
		if perr != nil {
			return nil, perr
		}
		op, err = ledger.NewDirectedOperation(agencyID, opType, flow, valueobject.NewMoneyEUR(req.Amount), method, req.Label, userID)
	} else {
		op, err = ledger.NewOperation(agencyID, opType, valueobject.NewMoneyEUR(req.Amount), method, req.Label, userID)
	}
	if err != nil {
		return nil, err
	}
	if req.InvoiceID != nil {
		op.WithInvoice(*req.InvoiceID)
	}
	if req.ClientID != nil {
		op.WithClient(*req.ClientID)
	}
	if req.SupplierID != nil {
		op.WithSupplier(*req.SupplierID)
	}
	if req.AgentID != nil {
		op.WithAgent(*req.AgentID)
	}
	if req.Reference != "" {
		op.WithReference(req.Reference)
	}

	if err := s.operationRepo.Create(ctx, op); err != nil {
		return nil, err
	}

	s.logger.Info("caisse operation recorded",
		zap.String("agency_id", agencyID.String()),
		zap.String("operation_id", op.ID.String()),
		zap.String("type", req.Type),
		zap.String("amount", req.Amount.StringFixed(2)))

	resp := ToOperationResponse(op)
	return &resp, nil
}

// CancelOperation appends the compensating reversal of an existing operation.
// Cancelling twice is idempotent at the ledger level: the second call finds
// the existing reversal and returns it instead of appending another one.
func (s *CaisseService) CancelOperation(ctx context.Context, agencyID, userID uuid.UUID, req CancelOperationRequest) (*OperationResponse, error) {
	original, err := s.operationRepo.FindByIDForAgency(ctx, agencyID, req.OperationID)
	if err != nil {
		return nil, err
	}

	if existing, err := s.operationRepo.FindReversalOf(ctx, agencyID, original.ID); err == nil {
		resp := ToOperationResponse(existing)
		return &resp, nil
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	rev, err := original.NewReversal(userID, req.Reason)
	if err != nil {
		return nil, err
	}

	if err := s.operationRepo.Create(ctx, rev); err != nil {
		// A concurrent cancellation may have won the race on the unique
		// reversal_of_id index between our existence check and the insert.
		// If a reversal exists now, return it instead of surfacing the
		// constraint violation.
		if existing, findErr := s.operationRepo.FindReversalOf(ctx, agencyID, original.ID); findErr == nil {
			s.logger.Warn("concurrent cancellation detected, returning existing reversal",
				zap.String("agency_id", agencyID.String()),
				zap.String("original_id", original.ID.String()),
				zap.String("reversal_id", existing.ID.String()))
			resp := ToOperationResponse(existing)
			return &resp, nil
		}
		return nil, err
	}

	s.logger.Info("caisse operation cancelled",
		zap.String("agency_id", agencyID.String()),
		zap.String("original_id", original.ID.String()),
		zap.String("reversal_id", rev.ID.String()))

	resp := ToOperationResponse(rev)
	return &resp, nil
}

// GetOperation loads one operation
func (s *CaisseService) GetOperation(ctx context.Context, agencyID, operationID uuid.UUID) (*OperationResponse, error) {
	op, err := s.operationRepo.FindByIDForAgency(ctx, agencyID, operationID)
	if err != nil {
		return nil, err
	}
	resp := ToOperationResponse(op)
	return &resp, nil
}

// ListOperations lists ledger rows of the agency
func (s *CaisseService) ListOperations(ctx context.Context, agencyID uuid.UUID, req ListOperationsRequest) ([]OperationResponse, int64, error) {
	query := ledger.ListQuery{Filter: shared.DefaultFilter()}
	if req.Page > 0 {
		query.Page = req.Page
	}
	if req.PageSize > 0 {
		query.PageSize = req.PageSize
	}
	if req.Type != "" {
		opType := ledger.OperationType(req.Type)
		if !opType.IsValid() {
			return nil, 0, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Unrecognized operation type %q", req.Type))
		}
		query.Type = &opType
	}
	query.From = req.From
	query.To = req.To

	ops, total, err := s.operationRepo.ListForAgency(ctx, agencyID, query)
	if err != nil {
		return nil, 0, err
	}

	out := make([]OperationResponse, 0, len(ops))
	for _, op := range ops {
		out = append(out, ToOperationResponse(op))
	}
	return out, total, nil
}

// ComputeBalance returns the current caisse balance of the agency. The sum
// runs over every row ever written; reversal pairs cancel arithmetically.
func (s *CaisseService) ComputeBalance(ctx context.Context, agencyID uuid.UUID) (*BalanceResponse, error) {
	summary, err := s.operationRepo.SumForAgency(ctx, agencyID)
	if err != nil {
		return nil, err
	}
	resp := toBalanceResponse(summary)
	return &resp, nil
}

// GenerateReport builds the period report for the agency
func (s *CaisseService) GenerateReport(ctx context.Context, agencyID uuid.UUID, from, to time.Time) (*ReportResponse, error) {
	if to.Before(from) {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Report period end is before its start")
	}

	ops, err := s.operationRepo.ListForPeriod(ctx, agencyID, from, to)
	if err != nil {
		return nil, err
	}

	resp := ToReportResponse(ledger.BuildReport(from, to, ops))
	return &resp, nil
}
