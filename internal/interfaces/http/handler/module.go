package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	accessapp "github.com/voyago/backend/internal/application/access"
	"github.com/voyago/backend/internal/domain/access"
	"github.com/voyago/backend/internal/domain/module"
	"github.com/voyago/backend/internal/interfaces/http/middleware"
)

// ModuleHandler exposes the module registry and the activation workflow
type ModuleHandler struct {
	BaseHandler
	moduleService *accessapp.ModuleService
}

// NewModuleHandler creates a new ModuleHandler
func NewModuleHandler(moduleService *accessapp.ModuleService) *ModuleHandler {
	return &ModuleHandler{moduleService: moduleService}
}

// RequestModuleRequest asks for a module to be activated for the caller's agency
type RequestModuleRequest struct {
	ModuleID string `json:"module_id" binding:"required"`
}

// ModuleDecisionRequest carries a superadmin decision about a pending request
type ModuleDecisionRequest struct {
	AgencyID string `json:"agency_id" binding:"required,uuid"`
	ModuleID string `json:"module_id" binding:"required"`
}

// List returns the modules visible to the caller with their activation status
func (h *ModuleHandler) List(c *gin.Context) {
	identity := middleware.GetIdentity(c)
	if identity == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	modules, err := h.moduleService.AccessibleModules(c.Request.Context(), identity)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, modules)
}

// Request queues a module activation for superadmin approval
func (h *ModuleHandler) Request(c *gin.Context) {
	admin, ok := middleware.GetIdentity(c).(access.AgencyAdmin)
	if !ok {
		h.Forbidden(c, "Only agency admins may request modules")
		return
	}

	var req RequestModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.moduleService.RequestModule(c.Request.Context(), admin, module.ID(req.ModuleID)); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Approve grants a pending module request
func (h *ModuleHandler) Approve(c *gin.Context) {
	h.decide(c, h.moduleService.ApproveModule)
}

// Reject declines a pending module request
func (h *ModuleHandler) Reject(c *gin.Context) {
	h.decide(c, h.moduleService.RejectModule)
}

// Deactivate turns an active module off for an agency
func (h *ModuleHandler) Deactivate(c *gin.Context) {
	h.decide(c, h.moduleService.DeactivateModule)
}

func (h *ModuleHandler) decide(c *gin.Context, fn func(ctx context.Context, agencyID uuid.UUID, moduleID module.ID) error) {
	var req ModuleDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	agencyID, err := uuid.Parse(req.AgencyID)
	if err != nil {
		h.BadRequest(c, "Invalid agency ID")
		return
	}

	if err := fn(c.Request.Context(), agencyID, module.ID(req.ModuleID)); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
