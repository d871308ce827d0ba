package access

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/voyago/backend/internal/domain/access"
	"github.com/voyago/backend/internal/domain/identity"
	"github.com/voyago/backend/internal/domain/module"
	"github.com/voyago/backend/internal/domain/shared"
)

// AgencyContextCache caches the per-agency module state consulted on every
// authorized request. A miss falls through to the repository; writes happen
// on load and invalidation on any module change.
type AgencyContextCache interface {
	Get(ctx context.Context, agencyID uuid.UUID) (*access.AgencyContext, error)
	Set(ctx context.Context, agencyCtx *access.AgencyContext) error
	Invalidate(ctx context.Context, agencyID uuid.UUID) error
}

// ModuleService answers module visibility and permission questions and drives
// the request/approve activation flow.
type ModuleService struct {
	registry   *module.Registry
	resolver   *access.Resolver
	agencyRepo identity.AgencyRepository
	cache      AgencyContextCache
	logger     *zap.Logger
}

// NewModuleService creates a new ModuleService
func NewModuleService(
	registry *module.Registry,
	agencyRepo identity.AgencyRepository,
	cache AgencyContextCache,
	logger *zap.Logger,
) *ModuleService {
	return &ModuleService{
		registry:   registry,
		resolver:   access.NewResolver(registry),
		agencyRepo: agencyRepo,
		cache:      cache,
		logger:     logger,
	}
}

// AccessibleModules returns every registry module the caller's role declares,
// annotated with its activation status for this caller.
func (s *ModuleService) AccessibleModules(ctx context.Context, caller access.Identity) ([]ModuleResponse, error) {
	agencyCtx := s.agencyContextFor(ctx, caller)

	out := make([]ModuleResponse, 0)
	for _, m := range s.registry.ForRole(caller.Role()) {
		status := s.resolver.ModuleStatus(caller, agencyCtx, m.ID)
		out = append(out, toModuleResponse(m, status))
	}
	return out, nil
}

// HasPermission reports whether the caller may perform the action, named by
// its canonical or French verb, on the module.
func (s *ModuleService) HasPermission(ctx context.Context, caller access.Identity, moduleID module.ID, actionVerb string) bool {
	action, ok := module.ParseAction(actionVerb)
	if !ok {
		return false
	}
	agencyCtx := s.agencyContextFor(ctx, caller)
	return s.resolver.HasPermission(caller, agencyCtx, moduleID, action)
}

// RequestModule queues a module activation for the caller's agency
func (s *ModuleService) RequestModule(ctx context.Context, caller access.AgencyAdmin, moduleID module.ID) error {
	agency, err := s.agencyRepo.FindByID(ctx, caller.AgencyID)
	if err != nil {
		return err
	}

	if err := agency.RequestModule(s.registry, moduleID); err != nil {
		return err
	}
	if err := s.agencyRepo.Save(ctx, agency); err != nil {
		return err
	}

	s.invalidate(ctx, agency.ID)
	s.logger.Info("module activation requested",
		zap.String("agency_id", agency.ID.String()),
		zap.String("module", string(moduleID)))
	return nil
}

// ApproveModule activates a requested module for an agency. The HTTP layer
// restricts this to superadmins.
func (s *ModuleService) ApproveModule(ctx context.Context, agencyID uuid.UUID, moduleID module.ID) error {
	agency, err := s.agencyRepo.FindByID(ctx, agencyID)
	if err != nil {
		return err
	}

	if err := agency.ApproveModule(moduleID); err != nil {
		return err
	}
	if err := s.agencyRepo.Save(ctx, agency); err != nil {
		return err
	}

	s.invalidate(ctx, agency.ID)
	s.logger.Info("module activation approved",
		zap.String("agency_id", agency.ID.String()),
		zap.String("module", string(moduleID)))
	return nil
}

// RejectModule drops a pending module request for an agency
func (s *ModuleService) RejectModule(ctx context.Context, agencyID uuid.UUID, moduleID module.ID) error {
	agency, err := s.agencyRepo.FindByID(ctx, agencyID)
	if err != nil {
		return err
	}

	if err := agency.RejectModule(moduleID); err != nil {
		return err
	}
	if err := s.agencyRepo.Save(ctx, agency); err != nil {
		return err
	}

	s.invalidate(ctx, agency.ID)
	return nil
}

// DeactivateModule removes an active module from an agency
func (s *ModuleService) DeactivateModule(ctx context.Context, agencyID uuid.UUID, moduleID module.ID) error {
	agency, err := s.agencyRepo.FindByID(ctx, agencyID)
	if err != nil {
		return err
	}

	if err := agency.DeactivateModule(moduleID); err != nil {
		return err
	}
	if err := s.agencyRepo.Save(ctx, agency); err != nil {
		return err
	}

	s.invalidate(ctx, agency.ID)
	s.logger.Info("module deactivated",
		zap.String("agency_id", agency.ID.String()),
		zap.String("module", string(moduleID)))
	return nil
}

// agencyContextFor loads the module state of the caller's agency, cache
// first. Superadmins carry no agency. On load failure the context stays
// unloaded: the resolver then falls back to base modules instead of either
// failing the request or granting access it cannot verify.
func (s *ModuleService) agencyContextFor(ctx context.Context, caller access.Identity) *access.AgencyContext {
	var agencyID uuid.UUID
	switch c := caller.(type) {
	case access.AgencyAdmin:
		agencyID = c.AgencyID
	case access.Agent:
		agencyID = c.AgencyID
	default:
		return nil
	}

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, agencyID); err == nil && cached != nil {
			return cached
		}
	}

	agency, err := s.agencyRepo.FindByID(ctx, agencyID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("agency context unavailable, degrading to base modules",
				zap.String("agency_id", agencyID.String()),
				zap.Error(err))
		}
		return &access.AgencyContext{AgencyID: agencyID, Loaded: false}
	}

	agencyCtx := &access.AgencyContext{
		AgencyID:         agency.ID,
		ActiveModules:    agency.ActiveModules,
		RequestedModules: agency.RequestedModules,
		Loaded:           true,
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, agencyCtx); err != nil {
			s.logger.Warn("agency context cache write failed", zap.Error(err))
		}
	}
	return agencyCtx
}

func (s *ModuleService) invalidate(ctx context.Context, agencyID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, agencyID); err != nil {
		s.logger.Warn("agency context cache invalidation failed",
			zap.String("agency_id", agencyID.String()),
			zap.Error(err))
	}
}
