package access

import (
	"github.com/google/uuid"

	"github.com/voyago/backend/internal/domain/module"
)

// ModulePermission is one per-module grant held by an agent.
// Actions are stored in canonical form (see module.ParseAction).
type ModulePermission struct {
	Module  module.ID       `json:"module"`
	Actions []module.Action `json:"actions"`
}

// NewModulePermission builds a permission record, normalizing action verbs.
// Unrecognized verbs are dropped rather than rejected: legacy records carry
// French aliases and occasional junk.
func NewModulePermission(moduleID module.ID, verbs []string) ModulePermission {
	actions := make([]module.Action, 0, len(verbs))
	for _, v := range verbs {
		if a, ok := module.ParseAction(v); ok {
			actions = append(actions, a)
		}
	}
	return ModulePermission{Module: moduleID, Actions: actions}
}

// Allows reports whether the record grants the given action
func (p ModulePermission) Allows(action module.Action) bool {
	for _, a := range p.Actions {
		if a == action {
			return true
		}
	}
	return false
}

// CanRead reports whether the record grants read access
func (p ModulePermission) CanRead() bool {
	return p.Allows(module.ActionRead)
}

// Identity is the closed set of caller roles. Each variant carries only the
// data its role needs; dispatch is by type switch so a new role cannot
// silently fall through (the default branch denies).
type Identity interface {
	Role() module.Role
	identity()
}

// Superadmin is the platform operator; agency context is ignored for it.
type Superadmin struct {
	UserID uuid.UUID
}

// Role returns the superadmin role
func (Superadmin) Role() module.Role { return module.RoleSuperadmin }
func (Superadmin) identity()         {}

// AgencyAdmin is an agency owner. It carries no permission records: an
// activated module implies full control over it.
type AgencyAdmin struct {
	UserID   uuid.UUID
	AgencyID uuid.UUID
}

// Role returns the agency role
func (AgencyAdmin) Role() module.Role { return module.RoleAgence }
func (AgencyAdmin) identity()         {}

// Agent is an agency employee with fine-grained per-module grants.
type Agent struct {
	UserID      uuid.UUID
	AgencyID    uuid.UUID
	Permissions []ModulePermission
}

// Role returns the agent role
func (Agent) Role() module.Role { return module.RoleAgent }
func (Agent) identity()         {}

// PermissionFor returns the agent's record for a module, if any
func (a Agent) PermissionFor(moduleID module.ID) (ModulePermission, bool) {
	for _, p := range a.Permissions {
		if p.Module == moduleID {
			return p, true
		}
	}
	return ModulePermission{}, false
}
