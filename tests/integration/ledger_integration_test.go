package integration

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	ledgerapp "github.com/voyago/backend/internal/application/ledger"
	"github.com/voyago/backend/internal/domain/ledger"
	"github.com/voyago/backend/internal/domain/shared"
	"github.com/voyago/backend/internal/infrastructure/persistence"
)

func TestLedgerRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tdb := NewSharedTestDB(t)
	ctx := context.Background()

	agencyID := uuid.New()
	userID := uuid.New()
	tdb.CreateTestAgency(agencyID)
	tdb.CreateTestUser(userID, agencyID)

	repo := persistence.NewGormOperationRepository(tdb.DB)
	service := ledgerapp.NewCaisseService(repo, zap.NewNop())

	record := func(t *testing.T, opType, amount string) *ledgerapp.OperationResponse {
		t.Helper()
		resp, err := service.RecordOperation(ctx, agencyID, userID, ledgerapp.RecordOperationRequest{
			Type:   opType,
			Amount: decimal.RequireFromString(amount),
			Method: "cash",
			Label:  "Operation de test",
		})
		require.NoError(t, err)
		return resp
	}

	t.Run("balance sums inflows and outflows in SQL", func(t *testing.T) {
		record(t, "free_sale", "300.00")
		record(t, "misc_expense", "120.50")

		balance, err := service.ComputeBalance(ctx, agencyID)
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("179.50").Equal(balance.Balance),
			"expected 179.50, got %s", balance.Balance)
		assert.Equal(t, int64(2), balance.OperationCount)
	})

	t.Run("cancellation is idempotent across real storage", func(t *testing.T) {
		op := record(t, "client_recharge", "90.00")

		first, err := service.CancelOperation(ctx, agencyID, userID, ledgerapp.CancelOperationRequest{
			OperationID: op.ID, Reason: "erreur de saisie",
		})
		require.NoError(t, err)
		require.NotNil(t, first.ReversalOfID)

		second, err := service.CancelOperation(ctx, agencyID, userID, ledgerapp.CancelOperationRequest{
			OperationID: op.ID, Reason: "double clic",
		})
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID, "second cancel must return the existing reversal")

		// The reversal nets the original out of the balance
		balance, err := service.ComputeBalance(ctx, agencyID)
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("179.50").Equal(balance.Balance))
	})

	t.Run("unique index refuses a second reversal row", func(t *testing.T) {
		op := record(t, "free_sale", "40.00")
		rev, err := service.CancelOperation(ctx, agencyID, userID, ledgerapp.CancelOperationRequest{
			OperationID: op.ID, Reason: "annulation",
		})
		require.NoError(t, err)

		// Bypass the service and try to append a second reversal directly
		dup := tdb.DB.Exec(`
			INSERT INTO operations (id, created_at, updated_at, version, agency_id, type, direction, amount, method, label, reversal_of_id, recorded_by, occurred_at)
			VALUES (?, NOW(), NOW(), 1, ?, 'free_sale', 'entree', 40.00, 'cash', 'doublon', ?, ?, NOW())
		`, uuid.New(), agencyID, op.ID, userID)
		assert.Error(t, dup.Error, "storage must refuse a second reversal of %s", rev.ReversalOfID)
	})

	t.Run("reads are scoped to the owning agency", func(t *testing.T) {
		otherAgency := uuid.New()
		tdb.CreateTestAgency(otherAgency)

		op := record(t, "free_sale", "10.00")

		_, err := repo.FindByIDForAgency(ctx, otherAgency, op.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		ops, total, err := repo.ListForAgency(ctx, otherAgency, ledger.ListQuery{})
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, ops)
	})
}
