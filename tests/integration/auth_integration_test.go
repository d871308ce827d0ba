package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	identityapp "github.com/voyago/backend/internal/application/identity"
	"github.com/voyago/backend/internal/domain/identity"
	"github.com/voyago/backend/internal/domain/module"
	"github.com/voyago/backend/internal/infrastructure/auth"
	"github.com/voyago/backend/internal/infrastructure/config"
	"github.com/voyago/backend/internal/infrastructure/persistence"
)

func TestAuthenticationAgainstRealStorage(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tdb := NewSharedTestDB(t)
	ctx := context.Background()

	agencyRepo := persistence.NewGormAgencyRepository(tdb.DB)
	userRepo := persistence.NewGormUserRepository(tdb.DB)
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "integration-test-secret-key-0123456789",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "voyago-test",
	})
	service := identityapp.NewAuthService(userRepo, agencyRepo, jwtService, zap.NewNop())

	agency, err := identity.NewAgency("AG-AUTH-01", "Agence Horizon Voyages")
	require.NoError(t, err)
	require.NoError(t, agencyRepo.Save(ctx, agency))

	user, err := identity.NewUser("directeur@horizon.example", "motdepasse-solide", "Directeur", module.RoleAgence, &agency.ID)
	require.NoError(t, err)
	require.NoError(t, userRepo.Save(ctx, user))

	t.Run("login returns a token pair and the profile", func(t *testing.T) {
		resp, err := service.Login(ctx, identityapp.LoginRequest{
			Email:    "directeur@horizon.example",
			Password: "motdepasse-solide",
		})
		require.NoError(t, err)

		assert.NotEmpty(t, resp.Tokens.AccessToken)
		assert.NotEmpty(t, resp.Tokens.RefreshToken)
		assert.Equal(t, "agence", resp.User.Role)
		require.NotNil(t, resp.User.AgencyID)
		assert.Equal(t, agency.ID, *resp.User.AgencyID)
	})

	t.Run("wrong password is refused", func(t *testing.T) {
		_, err := service.Login(ctx, identityapp.LoginRequest{
			Email:    "directeur@horizon.example",
			Password: "mauvais",
		})
		require.Error(t, err)
	})

	t.Run("refresh token issues a new pair", func(t *testing.T) {
		login, err := service.Login(ctx, identityapp.LoginRequest{
			Email:    "directeur@horizon.example",
			Password: "motdepasse-solide",
		})
		require.NoError(t, err)

		refreshed, err := service.Refresh(ctx, identityapp.RefreshRequest{
			RefreshToken: login.Tokens.RefreshToken,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, refreshed.Tokens.AccessToken)
		assert.Equal(t, login.User.ID, refreshed.User.ID)
	})

	t.Run("suspended agency blocks login", func(t *testing.T) {
		require.NoError(t, agency.Suspend("factures impayees"))
		require.NoError(t, agencyRepo.Save(ctx, agency))
		defer func() {
			agency.Activate()
			require.NoError(t, agencyRepo.Save(ctx, agency))
		}()

		_, err := service.Login(ctx, identityapp.LoginRequest{
			Email:    "directeur@horizon.example",
			Password: "motdepasse-solide",
		})
		require.Error(t, err)
	})
}
