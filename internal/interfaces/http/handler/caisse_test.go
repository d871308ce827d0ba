package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	ledgerapp "github.com/voyago/backend/internal/application/ledger"
	"github.com/voyago/backend/internal/domain/access"
	"github.com/voyago/backend/internal/domain/ledger"
	"github.com/voyago/backend/internal/domain/shared"
	"github.com/voyago/backend/internal/interfaces/http/middleware"
)

type fakeOperationRepo struct {
	ops []*ledger.Operation
}

func (r *fakeOperationRepo) Create(_ context.Context, op *ledger.Operation) error {
	r.ops = append(r.ops, op)
	return nil
}

func (r *fakeOperationRepo) FindByIDForAgency(_ context.Context, agencyID, id uuid.UUID) (*ledger.Operation, error) {
	for _, op := range r.ops {
		if op.ID == id && op.BelongsTo(agencyID) {
			return op, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeOperationRepo) FindReversalOf(_ context.Context, agencyID, originalID uuid.UUID) (*ledger.Operation, error) {
	for _, op := range r.ops {
		if op.ReversalOfID != nil && *op.ReversalOfID == originalID && op.BelongsTo(agencyID) {
			return op, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeOperationRepo) ListForAgency(_ context.Context, agencyID uuid.UUID, _ ledger.ListQuery) ([]*ledger.Operation, int64, error) {
	out := make([]*ledger.Operation, 0)
	for _, op := range r.ops {
		if op.BelongsTo(agencyID) {
			out = append(out, op)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeOperationRepo) ListForPeriod(_ context.Context, agencyID uuid.UUID, from, to time.Time) ([]*ledger.Operation, error) {
	out := make([]*ledger.Operation, 0)
	for _, op := range r.ops {
		if op.BelongsTo(agencyID) && !op.OccurredAt.Before(from) && !op.OccurredAt.After(to) {
			out = append(out, op)
		}
	}
	return out, nil
}

func (r *fakeOperationRepo) SumForAgency(_ context.Context, agencyID uuid.UUID) (ledger.BalanceSummary, error) {
	summary := ledger.BalanceSummary{TotalIn: decimal.Zero, TotalOut: decimal.Zero, Balance: decimal.Zero}
	for _, op := range r.ops {
		if !op.BelongsTo(agencyID) {
			continue
		}
		signed := op.SignedAmount()
		if signed.IsPositive() {
			summary.TotalIn = summary.TotalIn.Add(signed)
		} else {
			summary.TotalOut = summary.TotalOut.Add(signed.Neg())
		}
		summary.OperationCount++
	}
	summary.Balance = summary.TotalIn.Sub(summary.TotalOut)
	return summary, nil
}

func newCaisseRouter(repo *fakeOperationRepo, agencyID, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	service := ledgerapp.NewCaisseService(repo, zap.NewNop())
	h := NewCaisseHandler(service)

	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		c.Set(middleware.JWTIdentityKey, access.AgencyAdmin{UserID: userID, AgencyID: agencyID})
		c.Set(middleware.JWTUserIDKey, userID.String())
		c.Next()
	})
	engine.POST("/caisse/operations", h.Record)
	engine.POST("/caisse/operations/:id/cancel", h.Cancel)
	engine.GET("/caisse/operations/:id", h.Get)
	engine.GET("/caisse/operations", h.List)
	engine.GET("/caisse/balance", h.Balance)
	return engine
}

func TestCaisseHandlerRecord(t *testing.T) {
	agencyID, userID := uuid.New(), uuid.New()
	repo := &fakeOperationRepo{}
	engine := newCaisseRouter(repo, agencyID, userID)

	t.Run("valid operation is recorded", func(t *testing.T) {
		body := `{"type":"free_sale","amount":"150.00","method":"cash","label":"Vente billet Tunis-Paris"}`
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/caisse/operations", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		engine.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)

		var resp struct {
			Success bool                        `json:"success"`
			Data    ledgerapp.OperationResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "free_sale", resp.Data.Type)
		assert.True(t, decimal.NewFromInt(150).Equal(resp.Data.Amount))
		require.Len(t, repo.ops, 1)
	})

	t.Run("non-numeric amount is a 400", func(t *testing.T) {
		body := `{"type":"free_sale","amount":"beaucoup","method":"cash","label":"Vente"}`
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/caisse/operations", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown operation type maps to validation error", func(t *testing.T) {
		body := `{"type":"loterie","amount":"10.00","method":"cash","label":"?"}`
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/caisse/operations", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_VALIDATION")
	})
}

func TestCaisseHandlerCancel(t *testing.T) {
	agencyID, userID := uuid.New(), uuid.New()
	repo := &fakeOperationRepo{}
	engine := newCaisseRouter(repo, agencyID, userID)

	record := func(t *testing.T) uuid.UUID {
		t.Helper()
		body := `{"type":"client_recharge","amount":"80.00","method":"cheque","label":"Recharge compte client"}`
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/caisse/operations", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		engine.ServeHTTP(w, req)
		require.Equal(t, http.StatusCreated, w.Code)

		var resp struct {
			Data ledgerapp.OperationResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return resp.Data.ID
	}

	opID := record(t)

	t.Run("cancellation appends a reversal", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/caisse/operations/"+opID.String()+"/cancel",
			strings.NewReader(`{"reason":"erreur de saisie"}`))
		req.Header.Set("Content-Type", "application/json")

		engine.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)

		var resp struct {
			Data ledgerapp.OperationResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Data.ReversalOfID)
		assert.Equal(t, opID, *resp.Data.ReversalOfID)
		// A reversal of an inflow moves money out
		assert.True(t, resp.Data.SignedAmount.IsNegative())
	})

	t.Run("second cancellation returns the same reversal", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/caisse/operations/"+opID.String()+"/cancel",
			strings.NewReader(`{"reason":"double clic"}`))
		req.Header.Set("Content-Type", "application/json")

		engine.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)
		// Original + one reversal only
		assert.Len(t, repo.ops, 2)
	})
}

func TestCaisseHandlerBalance(t *testing.T) {
	agencyID, userID := uuid.New(), uuid.New()
	repo := &fakeOperationRepo{}
	engine := newCaisseRouter(repo, agencyID, userID)

	post := func(body string) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/caisse/operations", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		engine.ServeHTTP(w, req)
	}
	post(`{"type":"free_sale","amount":"200.00","method":"cash","label":"Vente"}`)
	post(`{"type":"misc_expense","amount":"50.00","method":"cash","label":"Fournitures"}`)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/caisse/balance", nil)
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data ledgerapp.BalanceResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, decimal.NewFromInt(150).Equal(resp.Data.Balance))
	assert.Equal(t, int64(2), resp.Data.OperationCount)
}

func TestCaisseHandlerRecordDirection(t *testing.T) {
	agencyID, userID := uuid.New(), uuid.New()
	repo := &fakeOperationRepo{}
	engine := newCaisseRouter(repo, agencyID, userID)

	post := func(t *testing.T, body string) *httptest.ResponseRecorder {
		t.Helper()
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/caisse/operations", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		engine.ServeHTTP(w, req)
		return w
	}

	t.Run("other accepts an explicit entree", func(t *testing.T) {
		w := post(t, `{"type":"other","direction":"entree","amount":"75.00","method":"cash","label":"Regularisation"}`)

		require.Equal(t, http.StatusCreated, w.Code)

		var resp struct {
			Data ledgerapp.OperationResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "entree", resp.Data.Direction)
		assert.True(t, resp.Data.SignedAmount.IsPositive())
	})

	t.Run("fixed type rejects the opposite direction", func(t *testing.T) {
		w := post(t, `{"type":"misc_expense","direction":"entree","amount":"20.00","method":"cash","label":"?"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_VALIDATION")
	})

	t.Run("unknown direction fails binding", func(t *testing.T) {
		w := post(t, `{"type":"other","direction":"sideways","amount":"20.00","method":"cash","label":"?"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCaisseHandlerGetUnknownOperation(t *testing.T) {
	agencyID, userID := uuid.New(), uuid.New()
	engine := newCaisseRouter(&fakeOperationRepo{}, agencyID, userID)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/caisse/operations/"+uuid.NewString(), nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_NOT_FOUND")
}
