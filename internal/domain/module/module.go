package module

import "strings"

// ID identifies a module in the static registry
type ID string

// Known module IDs
const (
	Dashboard    ID = "dashboard"
	Profile      ID = "profile"
	Clients      ID = "clients"
	Fournisseurs ID = "fournisseurs"
	Factures     ID = "factures"
	Caisse       ID = "caisse"
	Rapports     ID = "rapports"
	Agents       ID = "agents"
	Agences      ID = "agences"
	Parametres   ID = "parametres"
)

// String returns the string representation of the module ID
func (id ID) String() string {
	return string(id)
}

// Category classifies modules in the registry
type Category string

const (
	CategoryCore      Category = "core"
	CategoryGestion   Category = "gestion"
	CategoryFinance   Category = "finance"
	CategoryReporting Category = "reporting"
	CategoryAdmin     Category = "administration"
)

// IsValid checks if the category is a known one
func (c Category) IsValid() bool {
	switch c {
	case CategoryCore, CategoryGestion, CategoryFinance, CategoryReporting, CategoryAdmin:
		return true
	}
	return false
}

// Role identifies a user role eligible for a module
type Role string

const (
	RoleSuperadmin Role = "superadmin"
	RoleAgence     Role = "agence"
	RoleAgent      Role = "agent"
)

// IsValid checks if the role is a known one
func (r Role) IsValid() bool {
	switch r {
	case RoleSuperadmin, RoleAgence, RoleAgent:
		return true
	}
	return false
}

// Action is a permitted verb on a module
type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionExport Action = "export"
)

// actionAliases maps legacy French verbs to canonical actions. Permission
// records imported from the previous system still carry these.
var actionAliases = map[string]Action{
	"lire":      ActionRead,
	"creer":     ActionCreate,
	"modifier":  ActionUpdate,
	"supprimer": ActionDelete,
	"exporter":  ActionExport,
}

// ParseAction normalizes an action string to a canonical Action.
// Returns false for unrecognized verbs.
func ParseAction(s string) (Action, bool) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	switch Action(normalized) {
	case ActionRead, ActionCreate, ActionUpdate, ActionDelete, ActionExport:
		return Action(normalized), true
	}
	if a, ok := actionAliases[normalized]; ok {
		return a, true
	}
	return "", false
}

// Module is a static registry entry describing one gated capability.
// Entries are immutable after process start.
type Module struct {
	ID          ID
	Name        string
	Description string
	Category    Category
	Essential   bool
	Roles       []Role
	Actions     []Action
}

// AllowsRole reports whether the role is eligible for this module
func (m Module) AllowsRole(role Role) bool {
	for _, r := range m.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// AllowsAction reports whether the module declares the action
func (m Module) AllowsAction(action Action) bool {
	for _, a := range m.Actions {
		if a == action {
			return true
		}
	}
	return false
}
