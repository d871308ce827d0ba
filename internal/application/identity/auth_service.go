package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/voyago/backend/internal/domain/identity"
	"github.com/voyago/backend/internal/domain/module"
	"github.com/voyago/backend/internal/domain/shared"
)

// TokenIssuer mints the token pair for an authenticated user and redeems
// refresh tokens back into the user they were issued to.
type TokenIssuer interface {
	Issue(user *identity.User) (TokenPair, error)
	ValidateRefresh(token string) (uuid.UUID, error)
}

// AuthService authenticates users and manages their credentials
type AuthService struct {
	userRepo   identity.UserRepository
	agencyRepo identity.AgencyRepository
	issuer     TokenIssuer
	logger     *zap.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo identity.UserRepository,
	agencyRepo identity.AgencyRepository,
	issuer TokenIssuer,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		agencyRepo: agencyRepo,
		issuer:     issuer,
		logger:     logger,
	}
}

// Login authenticates by email and password. Every failure path returns the
// same unauthorized error so callers cannot probe which emails exist.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrUnauthorized
		}
		return nil, err
	}

	if !user.IsActive() || !user.CheckPassword(req.Password) {
		return nil, shared.ErrUnauthorized
	}

	if user.Role != module.RoleSuperadmin {
		agency, err := s.agencyRepo.FindByID(ctx, *user.AgencyID)
		if err != nil {
			return nil, shared.ErrUnauthorized
		}
		if !agency.IsActive() {
			s.logger.Warn("login refused for suspended agency",
				zap.String("agency_id", agency.ID.String()),
				zap.String("user_id", user.ID.String()))
			return nil, shared.ErrUnauthorized
		}
	}

	tokens, err := s.issuer.Issue(user)
	if err != nil {
		return nil, err
	}

	user.RecordLogin()
	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Warn("failed to persist login timestamp", zap.Error(err))
	}

	s.logger.Info("user logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)))

	return &LoginResponse{Tokens: tokens, User: ToUserResponse(user)}, nil
}

// Refresh redeems a refresh token for a fresh token pair. Role and grants are
// re-read from the user record, so a permission change takes effect here.
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest) (*LoginResponse, error) {
	userID, err := s.issuer.ValidateRefresh(req.RefreshToken)
	if err != nil {
		return nil, shared.ErrUnauthorized
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, shared.ErrUnauthorized
	}
	if !user.IsActive() {
		return nil, shared.ErrUnauthorized
	}

	if user.Role != module.RoleSuperadmin {
		agency, err := s.agencyRepo.FindByID(ctx, *user.AgencyID)
		if err != nil || !agency.IsActive() {
			return nil, shared.ErrUnauthorized
		}
	}

	tokens, err := s.issuer.Issue(user)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{Tokens: tokens, User: ToUserResponse(user)}, nil
}

// ChangePassword rotates the caller's password after verifying the current one
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, req ChangePasswordRequest) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.CheckPassword(req.CurrentPassword) {
		return shared.ErrUnauthorized
	}
	if err := user.ChangePassword(req.NewPassword); err != nil {
		return err
	}
	return s.userRepo.Save(ctx, user)
}

// GetProfile loads the caller's own account
func (s *AuthService) GetProfile(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}
