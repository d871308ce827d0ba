package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyago/backend/internal/domain/access"
	"github.com/voyago/backend/internal/domain/identity"
	"github.com/voyago/backend/internal/domain/module"
	"github.com/voyago/backend/internal/infrastructure/config"
)

func newTestService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-for-jwt-unit-tests",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "voyago-test",
	})
}

func newAgentUser(t *testing.T) *identity.User {
	t.Helper()
	agencyID := uuid.New()
	u, err := identity.NewUser("agent@voyago.example", "motdepasse", "Agent", module.RoleAgent, &agencyID)
	require.NoError(t, err)
	require.NoError(t, u.SetPermissions([]access.ModulePermission{
		access.NewModulePermission(module.Clients, []string{"lire", "creer"}),
	}))
	return u
}

func TestJWTServiceIssueAndValidate(t *testing.T) {
	s := newTestService()

	t.Run("round trips an agent identity", func(t *testing.T) {
		u := newAgentUser(t)

		pair, err := s.Issue(u)
		require.NoError(t, err)
		require.NotEmpty(t, pair.AccessToken)
		require.NotEmpty(t, pair.RefreshToken)

		claims, err := s.ValidateAccessToken(pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, u.ID.String(), claims.UserID)
		assert.Equal(t, "agent", claims.Role)

		id, err := claims.ToIdentity()
		require.NoError(t, err)
		agent, ok := id.(access.Agent)
		require.True(t, ok)
		assert.Equal(t, *u.AgencyID, agent.AgencyID)
		require.Len(t, agent.Permissions, 1)
		assert.True(t, agent.Permissions[0].Allows(module.ActionRead))
		assert.True(t, agent.Permissions[0].Allows(module.ActionCreate))
	})

	t.Run("superadmin identity carries no agency", func(t *testing.T) {
		u, err := identity.NewUser("root@voyago.example", "motdepasse", "Root", module.RoleSuperadmin, nil)
		require.NoError(t, err)

		pair, err := s.Issue(u)
		require.NoError(t, err)

		claims, err := s.ValidateAccessToken(pair.AccessToken)
		require.NoError(t, err)

		id, err := claims.ToIdentity()
		require.NoError(t, err)
		_, ok := id.(access.Superadmin)
		assert.True(t, ok)
	})

	t.Run("refresh token is rejected as access token", func(t *testing.T) {
		u := newAgentUser(t)
		pair, err := s.Issue(u)
		require.NoError(t, err)

		_, err = s.ValidateAccessToken(pair.RefreshToken)
		assert.Error(t, err)

		_, err = s.ValidateRefreshToken(pair.RefreshToken)
		assert.NoError(t, err)
	})

	t.Run("token signed with another secret is rejected", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{
			Secret:                 "a-completely-different-secret",
			AccessTokenExpiration:  15 * time.Minute,
			RefreshTokenExpiration: 24 * time.Hour,
			Issuer:                 "voyago-test",
		})
		u := newAgentUser(t)
		pair, err := other.Issue(u)
		require.NoError(t, err)

		_, err = s.ValidateAccessToken(pair.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		expired := NewJWTService(config.JWTConfig{
			Secret:                 "test-secret-key-for-jwt-unit-tests",
			AccessTokenExpiration:  -time.Minute,
			RefreshTokenExpiration: 24 * time.Hour,
			Issuer:                 "voyago-test",
		})
		u := newAgentUser(t)
		pair, err := expired.Issue(u)
		require.NoError(t, err)

		_, err = s.ValidateAccessToken(pair.AccessToken)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		_, err := s.ValidateAccessToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
