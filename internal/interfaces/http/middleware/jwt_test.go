package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyago/backend/internal/domain/access"
	"github.com/voyago/backend/internal/domain/identity"
	"github.com/voyago/backend/internal/domain/module"
	"github.com/voyago/backend/internal/infrastructure/auth"
	"github.com/voyago/backend/internal/infrastructure/config"
)

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-for-middleware-tests",
		AccessTokenExpiration:  time.Hour,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "voyago-test",
	})
}

func newProtectedRouter(t *testing.T, svc *auth.JWTService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(JWTAuthMiddleware(svc))
	engine.GET("/api/v1/protected", func(c *gin.Context) {
		id := GetIdentity(c)
		require.NotNil(t, id)
		c.JSON(http.StatusOK, gin.H{"role": string(id.Role())})
	})
	return engine
}

func TestJWTAuthMiddleware(t *testing.T) {
	svc := newTestJWTService()

	t.Run("missing header is rejected", func(t *testing.T) {
		engine := newProtectedRouter(t, svc)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/protected", nil)

		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed bearer value is rejected", func(t *testing.T) {
		engine := newProtectedRouter(t, svc)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/protected", nil)
		req.Header.Set(AuthHeaderKey, "Token abc")

		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid access token passes and exposes the identity", func(t *testing.T) {
		agencyID := uuid.New()
		user, err := identity.NewUser("admin@agence.example", "motdepasse", "Admin", module.RoleAgence, &agencyID)
		require.NoError(t, err)
		pair, err := svc.Issue(user)
		require.NoError(t, err)

		engine := newProtectedRouter(t, svc)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/protected", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+pair.AccessToken)

		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "agence")
	})

	t.Run("refresh token is not accepted on protected routes", func(t *testing.T) {
		agencyID := uuid.New()
		user, err := identity.NewUser("admin@agence.example", "motdepasse", "Admin", module.RoleAgence, &agencyID)
		require.NoError(t, err)
		pair, err := svc.Issue(user)
		require.NoError(t, err)

		engine := newProtectedRouter(t, svc)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/protected", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+pair.RefreshToken)

		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("skip paths bypass authentication", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		engine := gin.New()
		engine.Use(JWTAuthMiddleware(svc))
		engine.POST("/api/v1/auth/login", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)

		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestGetIdentityAgentPermissions(t *testing.T) {
	svc := newTestJWTService()
	agencyID := uuid.New()
	agent, err := identity.NewUser("agent@agence.example", "motdepasse", "Agent", module.RoleAgent, &agencyID)
	require.NoError(t, err)
	require.NoError(t, agent.SetPermissions([]access.ModulePermission{
		access.NewModulePermission(module.Caisse, []string{"lire", "creer"}),
	}))

	pair, err := svc.Issue(agent)
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(JWTAuthMiddleware(svc))
	engine.GET("/api/v1/whoami", func(c *gin.Context) {
		id, ok := GetIdentity(c).(access.Agent)
		require.True(t, ok)
		assert.Equal(t, agencyID, id.AgencyID)
		perm, found := id.PermissionFor(module.Caisse)
		require.True(t, found)
		assert.True(t, perm.Allows(module.ActionRead))
		assert.True(t, perm.Allows(module.ActionCreate))
		assert.False(t, perm.Allows(module.ActionDelete))
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/whoami", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+pair.AccessToken)

	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
