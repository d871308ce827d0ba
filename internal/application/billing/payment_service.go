package billing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/voyago/backend/internal/domain/billing"
	"github.com/voyago/backend/internal/domain/ledger"
	"github.com/voyago/backend/internal/domain/shared"
	"github.com/voyago/backend/internal/domain/shared/valueobject"
)

// PaymentService drives the invoice payment state machine. Every operation
// mutates the invoice and appends the matching ledger row inside one
// transaction; the row lock taken when loading the invoice serializes
// concurrent payments against the same invoice.
type PaymentService struct {
	scope  TransactionScope
	logger *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(scope TransactionScope, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		scope:  scope,
		logger: logger,
	}
}

// PayFull settles the whole remaining amount of the invoice
func (s *PaymentService) PayFull(ctx context.Context, agencyID, userID uuid.UUID, req PayInvoiceRequest) (*PaymentResult, error) {
	method := billing.PaymentMethod(req.Method)
	if !method.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Unrecognized payment method %q", req.Method))
	}

	var result *PaymentResult
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		inv, err := repos.Invoices().FindByIDForUpdate(ctx, agencyID, req.InvoiceID)
		if err != nil {
			return err
		}

		amount := valueobject.NewMoneyEUR(inv.AmountRemaining())
		if amount.IsZero() {
			return shared.NewDomainError("INVALID_STATE", "Invoice is already fully paid")
		}
		if err := inv.ApplyPayment(amount, method); err != nil {
			return err
		}

		op, err := s.recordOperation(ctx, repos, inv, ledger.OpInvoicePayment, amount, method, userID,
			fmt.Sprintf("Paiement facture %s", inv.Number), req.Reference)
		if err != nil {
			return err
		}

		if err := repos.Invoices().Save(ctx, inv); err != nil {
			return err
		}

		result = &PaymentResult{Invoice: ToInvoiceResponse(inv), OperationID: op.ID}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("invoice paid in full",
		zap.String("agency_id", agencyID.String()),
		zap.String("invoice_id", req.InvoiceID.String()),
		zap.String("operation_id", result.OperationID.String()))

	return result, nil
}

// PayPartial settles part of the remaining amount of the invoice
func (s *PaymentService) PayPartial(ctx context.Context, agencyID, userID uuid.UUID, req PayInvoiceRequest) (*PaymentResult, error) {
	method := billing.PaymentMethod(req.Method)
	if !method.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Unrecognized payment method %q", req.Method))
	}
	amount := valueobject.NewMoneyEUR(req.Amount)
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Payment amount must be positive")
	}

	var result *PaymentResult
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		inv, err := repos.Invoices().FindByIDForUpdate(ctx, agencyID, req.InvoiceID)
		if err != nil {
			return err
		}

		if err := inv.ApplyPayment(amount, method); err != nil {
			return err
		}

		op, err := s.recordOperation(ctx, repos, inv, ledger.OpInvoicePayment, amount, method, userID,
			fmt.Sprintf("Paiement partiel facture %s", inv.Number), req.Reference)
		if err != nil {
			return err
		}

		if err := repos.Invoices().Save(ctx, inv); err != nil {
			return err
		}

		result = &PaymentResult{Invoice: ToInvoiceResponse(inv), OperationID: op.ID}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("partial payment applied",
		zap.String("agency_id", agencyID.String()),
		zap.String("invoice_id", req.InvoiceID.String()),
		zap.String("amount", req.Amount.StringFixed(2)))

	return result, nil
}

// IssueCreditNote records a credit voucher against the invoice. The voucher
// is a caisse outflow only: amountPaid and the invoice status are untouched.
func (s *PaymentService) IssueCreditNote(ctx context.Context, agencyID, userID uuid.UUID, req CreditNoteRequest) (*PaymentResult, error) {
	method := billing.PaymentMethod(req.Method)
	if !method.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Unrecognized payment method %q", req.Method))
	}
	amount := valueobject.NewMoneyEUR(req.Amount)

	var result *PaymentResult
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		inv, err := repos.Invoices().FindByIDForUpdate(ctx, agencyID, req.InvoiceID)
		if err != nil {
			return err
		}

		if err := inv.ValidateCreditNote(amount); err != nil {
			return err
		}

		label := fmt.Sprintf("Avoir facture %s", inv.Number)
		if req.Reason != "" {
			label = fmt.Sprintf("%s (%s)", label, req.Reason)
		}
		op, err := s.recordOperation(ctx, repos, inv, ledger.OpCreditNote, amount, method, userID, label, "")
		if err != nil {
			return err
		}

		result = &PaymentResult{Invoice: ToInvoiceResponse(inv), OperationID: op.ID}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("credit note issued",
		zap.String("agency_id", agencyID.String()),
		zap.String("invoice_id", req.InvoiceID.String()),
		zap.String("amount", req.Amount.StringFixed(2)))

	return result, nil
}

// Refund gives collected money back: amountPaid decreases and the status
// reverts accordingly, with a matching caisse outflow.
func (s *PaymentService) Refund(ctx context.Context, agencyID, userID uuid.UUID, req RefundRequest) (*PaymentResult, error) {
	method := billing.PaymentMethod(req.Method)
	if !method.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Unrecognized payment method %q", req.Method))
	}
	amount := valueobject.NewMoneyEUR(req.Amount)

	var result *PaymentResult
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		inv, err := repos.Invoices().FindByIDForUpdate(ctx, agencyID, req.InvoiceID)
		if err != nil {
			return err
		}

		if err := inv.ApplyRefund(amount); err != nil {
			return err
		}

		label := fmt.Sprintf("Remboursement facture %s", inv.Number)
		if req.Reason != "" {
			label = fmt.Sprintf("%s (%s)", label, req.Reason)
		}
		op, err := s.recordOperation(ctx, repos, inv, ledger.OpRefund, amount, method, userID, label, "")
		if err != nil {
			return err
		}

		if err := repos.Invoices().Save(ctx, inv); err != nil {
			return err
		}

		result = &PaymentResult{Invoice: ToInvoiceResponse(inv), OperationID: op.ID}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("refund recorded",
		zap.String("agency_id", agencyID.String()),
		zap.String("invoice_id", req.InvoiceID.String()),
		zap.String("amount", req.Amount.StringFixed(2)))

	return result, nil
}

// GetInvoice loads an invoice read model
func (s *PaymentService) GetInvoice(ctx context.Context, agencyID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	var resp *InvoiceResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		inv, err := repos.Invoices().FindByIDForAgency(ctx, agencyID, invoiceID)
		if err != nil {
			return err
		}
		r := ToInvoiceResponse(inv)
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// recordOperation appends the ledger row matching an invoice mutation.
// A failure here is escalated to a consistency error: the surrounding
// transaction rolls the invoice back, but the caller must know the payment
// did not land anywhere.
func (s *PaymentService) recordOperation(
	ctx context.Context,
	repos TransactionalRepositories,
	inv *billing.Invoice,
	opType ledger.OperationType,
	amount valueobject.Money,
	method billing.PaymentMethod,
	userID uuid.UUID,
	label, reference string,
) (*ledger.Operation, error) {
	op, err := ledger.NewOperation(inv.AgencyID, opType, amount, method, label, userID)
	if err != nil {
		return nil, err
	}
	op.WithInvoice(inv.ID).WithClient(inv.ClientID)
	if reference != "" {
		op.WithReference(reference)
	}

	if err := repos.Operations().Create(ctx, op); err != nil {
		s.logger.Error("ledger write failed during payment, rolling back invoice mutation",
			zap.String("invoice_id", inv.ID.String()),
			zap.String("operation_type", opType.String()),
			zap.Error(err))
		return nil, shared.NewDomainError("CONSISTENCY_ERROR", "Ledger and invoice state diverged")
	}

	return op, nil
}
