package access

import (
	"github.com/google/uuid"

	"github.com/voyago/backend/internal/domain/module"
)

// Status is the activation state of a module as seen by one caller
type Status string

const (
	StatusActive   Status = "active"
	StatusPending  Status = "pending"
	StatusInactive Status = "inactive"
)

// AgencyContext is the already-loaded module state of the caller's agency.
// Loaded distinguishes "agency has no active modules" from "agency data not
// available yet": the resolver degrades to base modules in the latter case
// instead of granting broad access.
type AgencyContext struct {
	AgencyID         uuid.UUID
	ActiveModules    []module.ID
	RequestedModules []module.ID
	Loaded           bool
}

// IsActive reports whether the module is activated for the agency
func (c *AgencyContext) IsActive(id module.ID) bool {
	if c == nil {
		return false
	}
	for _, m := range c.ActiveModules {
		if m == id {
			return true
		}
	}
	return false
}

// IsRequested reports whether the module has been requested but not approved
func (c *AgencyContext) IsRequested(id module.ID) bool {
	if c == nil {
		return false
	}
	for _, m := range c.RequestedModules {
		if m == id {
			return true
		}
	}
	return false
}

// Resolver answers module accessibility questions for one caller. It is a
// pure query layer over already-loaded identity and agency state; it never
// fetches anything itself.
type Resolver struct {
	registry *module.Registry
}

// NewResolver creates a resolver over the given module registry
func NewResolver(registry *module.Registry) *Resolver {
	return &Resolver{registry: registry}
}

// AccessibleModules computes the set of modules the caller may see,
// in registry order.
func (r *Resolver) AccessibleModules(id Identity, agency *AgencyContext) []module.ID {
	out := make([]module.ID, 0)
	for _, m := range r.registry.All() {
		if r.accessible(id, agency, m) {
			out = append(out, m.ID)
		}
	}
	return out
}

// HasPermission reports whether the caller may perform the action on the
// module. Unknown modules and actions not declared by the module are always
// denied.
func (r *Resolver) HasPermission(id Identity, agency *AgencyContext, moduleID module.ID, action module.Action) bool {
	m, ok := r.registry.Get(moduleID)
	if !ok {
		return false
	}
	if !m.AllowsAction(action) {
		return false
	}
	if !r.accessible(id, agency, m) {
		return false
	}

	switch caller := id.(type) {
	case Superadmin:
		return true
	case AgencyAdmin:
		// Access to an activated module implies every declared action.
		return true
	case Agent:
		if m.Essential {
			return true
		}
		perm, ok := caller.PermissionFor(moduleID)
		return ok && perm.Allows(action)
	default:
		return false
	}
}

// ModuleStatus reports the activation state of a module for the caller
func (r *Resolver) ModuleStatus(id Identity, agency *AgencyContext, moduleID module.ID) Status {
	m, ok := r.registry.Get(moduleID)
	if !ok {
		return StatusInactive
	}
	if m.Essential || r.accessible(id, agency, m) {
		return StatusActive
	}
	if _, isAgency := id.(AgencyAdmin); isAgency && agency.IsRequested(moduleID) {
		return StatusPending
	}
	return StatusInactive
}

// accessible applies the role precedence rules from most to least privileged.
func (r *Resolver) accessible(id Identity, agency *AgencyContext, m module.Module) bool {
	// Essential modules are reachable by any authenticated user.
	if m.Essential {
		return true
	}

	switch caller := id.(type) {
	case Superadmin:
		return m.AllowsRole(module.RoleSuperadmin)
	case AgencyAdmin:
		if !m.AllowsRole(module.RoleAgence) {
			return false
		}
		// Missing or unloaded agency state degrades to base modules only.
		if agency == nil || !agency.Loaded {
			return false
		}
		// The activated-module list is the single source of truth.
		return agency.IsActive(m.ID)
	case Agent:
		if !m.AllowsRole(module.RoleAgent) {
			return false
		}
		perm, ok := caller.PermissionFor(m.ID)
		return ok && perm.CanRead()
	default:
		return false
	}
}
