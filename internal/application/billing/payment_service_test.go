package billing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/voyago/backend/internal/domain/billing"
	"github.com/voyago/backend/internal/domain/ledger"
	"github.com/voyago/backend/internal/domain/shared"
	"github.com/voyago/backend/internal/domain/shared/valueobject"
)

// inMemoryInvoiceRepo keeps invoices in a map; FindByIDForUpdate behaves like
// FindByIDForAgency since there is no real transaction here.
type inMemoryInvoiceRepo struct {
	invoices map[uuid.UUID]*billing.Invoice
}

func newInMemoryInvoiceRepo() *inMemoryInvoiceRepo {
	return &inMemoryInvoiceRepo{invoices: make(map[uuid.UUID]*billing.Invoice)}
}

func (r *inMemoryInvoiceRepo) FindByIDForAgency(_ context.Context, agencyID, id uuid.UUID) (*billing.Invoice, error) {
	inv, ok := r.invoices[id]
	if !ok || !inv.BelongsTo(agencyID) {
		return nil, shared.ErrNotFound
	}
	return inv, nil
}

func (r *inMemoryInvoiceRepo) FindByIDForUpdate(ctx context.Context, agencyID, id uuid.UUID) (*billing.Invoice, error) {
	return r.FindByIDForAgency(ctx, agencyID, id)
}

func (r *inMemoryInvoiceRepo) FindByNumber(_ context.Context, agencyID uuid.UUID, number string) (*billing.Invoice, error) {
	for _, inv := range r.invoices {
		if inv.Number == number && inv.BelongsTo(agencyID) {
			return inv, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *inMemoryInvoiceRepo) ListForAgency(_ context.Context, agencyID uuid.UUID, _ shared.Filter) ([]*billing.Invoice, int64, error) {
	out := make([]*billing.Invoice, 0)
	for _, inv := range r.invoices {
		if inv.BelongsTo(agencyID) {
			out = append(out, inv)
		}
	}
	return out, int64(len(out)), nil
}

func (r *inMemoryInvoiceRepo) Save(_ context.Context, inv *billing.Invoice) error {
	r.invoices[inv.ID] = inv
	return nil
}

// inMemoryOperationRepo is an append-only slice
type inMemoryOperationRepo struct {
	ops        []*ledger.Operation
	failCreate bool
}

func (r *inMemoryOperationRepo) Create(_ context.Context, op *ledger.Operation) error {
	if r.failCreate {
		return assert.AnError
	}
	r.ops = append(r.ops, op)
	return nil
}

func (r *inMemoryOperationRepo) FindByIDForAgency(_ context.Context, agencyID, id uuid.UUID) (*ledger.Operation, error) {
	for _, op := range r.ops {
		if op.ID == id && op.BelongsTo(agencyID) {
			return op, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *inMemoryOperationRepo) FindReversalOf(_ context.Context, agencyID, originalID uuid.UUID) (*ledger.Operation, error) {
	for _, op := range r.ops {
		if op.ReversalOfID != nil && *op.ReversalOfID == originalID && op.BelongsTo(agencyID) {
			return op, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *inMemoryOperationRepo) ListForAgency(_ context.Context, agencyID uuid.UUID, _ ledger.ListQuery) ([]*ledger.Operation, int64, error) {
	out := make([]*ledger.Operation, 0)
	for _, op := range r.ops {
		if op.BelongsTo(agencyID) {
			out = append(out, op)
		}
	}
	return out, int64(len(out)), nil
}

func (r *inMemoryOperationRepo) ListForPeriod(_ context.Context, agencyID uuid.UUID, from, to time.Time) ([]*ledger.Operation, error) {
	out := make([]*ledger.Operation, 0)
	for _, op := range r.ops {
		if op.BelongsTo(agencyID) && !op.OccurredAt.Before(from) && !op.OccurredAt.After(to) {
			out = append(out, op)
		}
	}
	return out, nil
}

func (r *inMemoryOperationRepo) SumForAgency(_ context.Context, agencyID uuid.UUID) (ledger.BalanceSummary, error) {
	scoped := make([]*ledger.Operation, 0)
	for _, op := range r.ops {
		if op.BelongsTo(agencyID) {
			scoped = append(scoped, op)
		}
	}
	return ledger.Summarize(scoped), nil
}

type paymentFixture struct {
	service  *PaymentService
	invoices *inMemoryInvoiceRepo
	ops      *inMemoryOperationRepo
	agencyID uuid.UUID
	userID   uuid.UUID
	invoice  *billing.Invoice
}

func newPaymentFixture(t *testing.T, total int64) *paymentFixture {
	t.Helper()
	f := &paymentFixture{
		invoices: newInMemoryInvoiceRepo(),
		ops:      &inMemoryOperationRepo{},
		agencyID: uuid.New(),
		userID:   uuid.New(),
	}
	f.service = NewPaymentService(NewNoOpTransactionScope(f.invoices, f.ops), zap.NewNop())

	totalMoney := decimal.NewFromInt(total)
	inv, err := billing.NewInvoice(f.agencyID, "FAC-2026-0100", uuid.New(),
		eurMoney(totalMoney), eurMoney(totalMoney), nil, nil)
	require.NoError(t, err)
	require.NoError(t, inv.MarkSent())
	require.NoError(t, f.invoices.Save(context.Background(), inv))
	f.invoice = inv
	return f
}

func TestPaymentServicePayFull(t *testing.T) {
	t.Run("settles the invoice and appends one inflow", func(t *testing.T) {
		f := newPaymentFixture(t, 1200)

		res, err := f.service.PayFull(context.Background(), f.agencyID, f.userID,
			PayInvoiceRequest{InvoiceID: f.invoice.ID, Method: "cash"})

		require.NoError(t, err)
		assert.Equal(t, "paid", res.Invoice.Status)
		assert.True(t, res.Invoice.AmountRemaining.IsZero())
		require.Len(t, f.ops.ops, 1)
		assert.Equal(t, ledger.OpInvoicePayment, f.ops.ops[0].Type)
		assert.True(t, f.ops.ops[0].Amount.Equal(decimal.NewFromInt(1200)))
	})

	t.Run("second full payment is rejected", func(t *testing.T) {
		f := newPaymentFixture(t, 500)
		_, err := f.service.PayFull(context.Background(), f.agencyID, f.userID,
			PayInvoiceRequest{InvoiceID: f.invoice.ID, Method: "cash"})
		require.NoError(t, err)

		_, err = f.service.PayFull(context.Background(), f.agencyID, f.userID,
			PayInvoiceRequest{InvoiceID: f.invoice.ID, Method: "cash"})

		assert.Error(t, err)
		assert.Len(t, f.ops.ops, 1)
	})

	t.Run("other agency cannot pay the invoice", func(t *testing.T) {
		f := newPaymentFixture(t, 500)

		_, err := f.service.PayFull(context.Background(), uuid.New(), f.userID,
			PayInvoiceRequest{InvoiceID: f.invoice.ID, Method: "cash"})

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestPaymentServiceLifecycle(t *testing.T) {
	// Invoice of 1200: two partial payments of 600, then a refund of 100.
	// At every step the ledger balance must equal the invoice amountPaid.
	f := newPaymentFixture(t, 1200)
	ctx := context.Background()

	res, err := f.service.PayPartial(ctx, f.agencyID, f.userID,
		PayInvoiceRequest{InvoiceID: f.invoice.ID, Amount: decimal.NewFromInt(600), Method: "cash"})
	require.NoError(t, err)
	assert.Equal(t, "partially_paid", res.Invoice.Status)

	res, err = f.service.PayPartial(ctx, f.agencyID, f.userID,
		PayInvoiceRequest{InvoiceID: f.invoice.ID, Amount: decimal.NewFromInt(600), Method: "transfer"})
	require.NoError(t, err)
	assert.Equal(t, "paid", res.Invoice.Status)

	res, err = f.service.Refund(ctx, f.agencyID, f.userID,
		RefundRequest{InvoiceID: f.invoice.ID, Amount: decimal.NewFromInt(100), Method: "cash", Reason: "vol annulé"})
	require.NoError(t, err)
	assert.Equal(t, "partially_paid", res.Invoice.Status)
	assert.True(t, res.Invoice.AmountPaid.Equal(decimal.NewFromInt(1100)))

	summary, err := f.ops.SumForAgency(ctx, f.agencyID)
	require.NoError(t, err)
	assert.True(t, summary.Balance.Equal(decimal.NewFromInt(1100)),
		"ledger balance %s must match amount paid", summary.Balance)
	assert.Len(t, f.ops.ops, 3)
}

func TestPaymentServiceCreditNote(t *testing.T) {
	t.Run("credit note appends an outflow without touching the invoice", func(t *testing.T) {
		f := newPaymentFixture(t, 1000)
		ctx := context.Background()
		_, err := f.service.PayFull(ctx, f.agencyID, f.userID,
			PayInvoiceRequest{InvoiceID: f.invoice.ID, Method: "cash"})
		require.NoError(t, err)

		res, err := f.service.IssueCreditNote(ctx, f.agencyID, f.userID,
			CreditNoteRequest{InvoiceID: f.invoice.ID, Amount: decimal.NewFromInt(200), Method: "cash", Reason: "geste commercial"})

		require.NoError(t, err)
		assert.Equal(t, "paid", res.Invoice.Status)
		assert.True(t, res.Invoice.AmountPaid.Equal(decimal.NewFromInt(1000)))

		summary, err := f.ops.SumForAgency(ctx, f.agencyID)
		require.NoError(t, err)
		assert.True(t, summary.Balance.Equal(decimal.NewFromInt(800)))
	})

	t.Run("credit note above amount paid is rejected", func(t *testing.T) {
		f := newPaymentFixture(t, 1000)
		ctx := context.Background()

		_, err := f.service.IssueCreditNote(ctx, f.agencyID, f.userID,
			CreditNoteRequest{InvoiceID: f.invoice.ID, Amount: decimal.NewFromInt(200), Method: "cash"})

		assert.Error(t, err)
		assert.Empty(t, f.ops.ops)
	})
}

func TestPaymentServiceLedgerFailure(t *testing.T) {
	f := newPaymentFixture(t, 800)
	f.ops.failCreate = true

	_, err := f.service.PayFull(context.Background(), f.agencyID, f.userID,
		PayInvoiceRequest{InvoiceID: f.invoice.ID, Method: "cash"})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "CONSISTENCY_ERROR", domainErr.Code)
}

func eurMoney(d decimal.Decimal) valueobject.Money {
	return valueobject.NewMoneyEUR(d)
}
