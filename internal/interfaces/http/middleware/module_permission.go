package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/voyago/backend/internal/domain/access"
	"github.com/voyago/backend/internal/domain/module"
)

// PermissionChecker answers whether a caller may perform an action on a
// module. The module service implements it; tests substitute a stub.
type PermissionChecker interface {
	HasPermission(ctx context.Context, caller access.Identity, moduleID module.ID, actionVerb string) bool
}

// ModulePermissionConfig holds configuration for module permission middleware
type ModulePermissionConfig struct {
	Logger *zap.Logger
	// OnDenied is called when permission is denied (optional)
	OnDenied func(c *gin.Context, moduleID module.ID, action string)
}

// RequireModule creates middleware gating a route on one module action.
// The action verb may be canonical or a legacy French alias; the resolver
// normalizes it.
func RequireModule(checker PermissionChecker, moduleID module.ID, action string) gin.HandlerFunc {
	return RequireModuleWithConfig(checker, moduleID, action, ModulePermissionConfig{})
}

// RequireModuleWithConfig creates module permission middleware with custom config
func RequireModuleWithConfig(checker PermissionChecker, moduleID module.ID, action string, cfg ModulePermissionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := GetIdentity(c)
		if identity == nil {
			handleModuleDenied(c, cfg, moduleID, action, "No authenticated identity in context")
			return
		}

		if !checker.HasPermission(c.Request.Context(), identity, moduleID, action) {
			handleModuleDenied(c, cfg, moduleID, action, "Caller lacks module permission")
			return
		}

		if cfg.Logger != nil {
			cfg.Logger.Debug("Module permission check passed",
				zap.String("module", moduleID.String()),
				zap.String("action", action),
			)
		}

		c.Next()
	}
}

// RequireModuleForMethod gates a whole group on one module, deriving the
// action from the HTTP method: GET -> read, POST -> create, PUT/PATCH ->
// update, DELETE -> delete.
func RequireModuleForMethod(checker PermissionChecker, moduleID module.ID) gin.HandlerFunc {
	return func(c *gin.Context) {
		action := methodToAction(c.Request.Method)

		identity := GetIdentity(c)
		if identity == nil {
			handleModuleDenied(c, ModulePermissionConfig{}, moduleID, action, "No authenticated identity in context")
			return
		}

		if !checker.HasPermission(c.Request.Context(), identity, moduleID, action) {
			handleModuleDenied(c, ModulePermissionConfig{}, moduleID, action, "Caller lacks module permission")
			return
		}

		c.Next()
	}
}

// RequireSuperadmin restricts a route to the platform operator.
func RequireSuperadmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := GetIdentity(c)
		if identity == nil || identity.Role() != module.RoleSuperadmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "FORBIDDEN",
					"message": "Superadmin role required",
				},
			})
			return
		}
		c.Next()
	}
}

// RequireAgencyRole restricts a route to agency admins (not agents).
func RequireAgencyRole() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := GetIdentity(c)
		if identity == nil || identity.Role() != module.RoleAgence {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "FORBIDDEN",
					"message": "Agency admin role required",
				},
			})
			return
		}
		c.Next()
	}
}

func methodToAction(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead:
		return string(module.ActionRead)
	case http.MethodPost:
		return string(module.ActionCreate)
	case http.MethodPut, http.MethodPatch:
		return string(module.ActionUpdate)
	case http.MethodDelete:
		return string(module.ActionDelete)
	default:
		return string(module.ActionRead)
	}
}

func handleModuleDenied(c *gin.Context, cfg ModulePermissionConfig, moduleID module.ID, action, reason string) {
	if cfg.OnDenied != nil {
		cfg.OnDenied(c, moduleID, action)
		return
	}

	if cfg.Logger != nil {
		cfg.Logger.Warn("Module permission denied",
			zap.String("module", moduleID.String()),
			zap.String("action", action),
			zap.String("reason", reason),
			zap.String("path", c.Request.URL.Path),
		)
	}

	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "MODULE_INACTIVE",
			"message": "Module is not active or the action is not granted",
		},
	})
}
