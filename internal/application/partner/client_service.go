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

// ClientService manages clients and their prepaid accounts. A recharge
// credits the account and appends the caisse inflow in one transaction.
type ClientService struct {
	scope  TransactionScope
	logger *zap.Logger
}

// NewClientService creates a new ClientService
func NewClientService(scope TransactionScope, logger *zap.Logger) *ClientService {
	return &ClientService{scope: scope, logger: logger}
}

// Create registers a new client
func (s *ClientService) Create(ctx context.Context, agencyID uuid.UUID, req CreateClientRequest) (*ClientResponse, error) {
	client, err := partner.NewClient(agencyID, req.Name, req.Email, req.Phone)
	if err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		return repos.Clients().Save(ctx, client)
	})
	if err != nil {
		return nil, err
	}

	resp := ToClientResponse(client)
	return &resp, nil
}

// Get loads one client
func (s *ClientService) Get(ctx context.Context, agencyID, clientID uuid.UUID) (*ClientResponse, error) {
	var resp *ClientResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		client, err := repos.Clients().FindByIDForAgency(ctx, agencyID, clientID)
		if err != nil {
			return err
		}
		r := ToClientResponse(client)
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// List lists clients of the agency
func (s *ClientService) List(ctx context.Context, agencyID uuid.UUID, filter shared.Filter) ([]ClientResponse, int64, error) {
	var out []ClientResponse
	var total int64
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		clients, n, err := repos.Clients().ListForAgency(ctx, agencyID, filter)
		if err != nil {
			return err
		}
		out = make([]ClientResponse, 0, len(clients))
		for _, c := range clients {
			out = append(out, ToClientResponse(c))
		}
		total = n
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Recharge credits the client's prepaid account and appends the matching
// client_recharge inflow.
func (s *ClientService) Recharge(ctx context.Context, agencyID, userID uuid.UUID, req ClientRechargeRequest) (*ClientResponse, error) {
	method := billing.PaymentMethod(req.Method)
	if !method.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Unrecognized payment method %q", req.Method))
	}
	amount := valueobject.NewMoneyEUR(req.Amount)

	var resp *ClientResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		client, err := repos.Clients().FindByIDForAgency(ctx, agencyID, req.ClientID)
		if err != nil {
			return err
		}

		if err := client.Recharge(amount); err != nil {
			return err
		}

		op, err := ledger.NewOperation(agencyID, ledger.OpClientRecharge, amount, method,
			fmt.Sprintf("Recharge compte client %s", client.Name), userID)
		if err != nil {
			return err
		}
		op.WithClient(client.ID)
		if req.Reference != "" {
			op.WithReference(req.Reference)
		}
		if err := repos.Operations().Create(ctx, op); err != nil {
			return err
		}

		if err := repos.Clients().Save(ctx, client); err != nil {
			return err
		}

		r := ToClientResponse(client)
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("client account recharged",
		zap.String("agency_id", agencyID.String()),
		zap.String("client_id", req.ClientID.String()),
		zap.String("amount", req.Amount.StringFixed(2)))

	return resp, nil
}
