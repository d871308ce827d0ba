package module

// Registry is the process-wide, immutable module table. It is built once at
// startup and injected into the permission layer; lookups never fail loudly,
// unknown IDs simply report not found.
type Registry struct {
	modules map[ID]Module
	order   []ID
}

// NewRegistry builds a registry from the given modules.
// Later entries with a duplicate ID are ignored.
func NewRegistry(modules ...Module) *Registry {
	r := &Registry{
		modules: make(map[ID]Module, len(modules)),
		order:   make([]ID, 0, len(modules)),
	}
	for _, m := range modules {
		if _, exists := r.modules[m.ID]; exists {
			continue
		}
		r.modules[m.ID] = m
		r.order = append(r.order, m.ID)
	}
	return r
}

// Get returns the module for the given ID
func (r *Registry) Get(id ID) (Module, bool) {
	m, ok := r.modules[id]
	return m, ok
}

// Contains reports whether the registry knows the given ID
func (r *Registry) Contains(id ID) bool {
	_, ok := r.modules[id]
	return ok
}

// All returns all modules in registration order
func (r *Registry) All() []Module {
	out := make([]Module, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.modules[id])
	}
	return out
}

// ForRole returns the modules eligible for the given role, in registration order
func (r *Registry) ForRole(role Role) []Module {
	out := make([]Module, 0, len(r.order))
	for _, id := range r.order {
		if m := r.modules[id]; m.AllowsRole(role) {
			out = append(out, m)
		}
	}
	return out
}

// BaseModules returns the IDs of essential modules, accessible to every
// authenticated user regardless of role or agency state
func (r *Registry) BaseModules() []ID {
	out := make([]ID, 0, 2)
	for _, id := range r.order {
		if r.modules[id].Essential {
			out = append(out, id)
		}
	}
	return out
}

var allActions = []Action{ActionRead, ActionCreate, ActionUpdate, ActionDelete, ActionExport}

var readExport = []Action{ActionRead, ActionExport}

// Default returns the standard module table for the application
func Default() *Registry {
	everyone := []Role{RoleSuperadmin, RoleAgence, RoleAgent}
	agencyStaff := []Role{RoleAgence, RoleAgent}

	return NewRegistry(
		Module{
			ID:          Dashboard,
			Name:        "Tableau de bord",
			Description: "Vue d'ensemble de l'activité de l'agence",
			Category:    CategoryCore,
			Essential:   true,
			Roles:       everyone,
			Actions:     []Action{ActionRead},
		},
		Module{
			ID:          Profile,
			Name:        "Profil",
			Description: "Gestion du profil utilisateur",
			Category:    CategoryCore,
			Essential:   true,
			Roles:       everyone,
			Actions:     []Action{ActionRead, ActionUpdate},
		},
		Module{
			ID:          Clients,
			Name:        "Clients",
			Description: "Fiches clients et soldes",
			Category:    CategoryGestion,
			Roles:       agencyStaff,
			Actions:     allActions,
		},
		Module{
			ID:          Fournisseurs,
			Name:        "Fournisseurs",
			Description: "Fournisseurs, dettes et soldes créditeurs",
			Category:    CategoryGestion,
			Roles:       agencyStaff,
			Actions:     allActions,
		},
		Module{
			ID:          Factures,
			Name:        "Factures",
			Description: "Facturation et encaissements",
			Category:    CategoryFinance,
			Roles:       agencyStaff,
			Actions:     allActions,
		},
		Module{
			ID:          Caisse,
			Name:        "Caisse",
			Description: "Journal de caisse, entrées et sorties",
			Category:    CategoryFinance,
			Roles:       agencyStaff,
			Actions:     []Action{ActionRead, ActionCreate, ActionExport},
		},
		Module{
			ID:          Rapports,
			Name:        "Rapports",
			Description: "Rapports financiers et d'activité",
			Category:    CategoryReporting,
			Roles:       []Role{RoleSuperadmin, RoleAgence, RoleAgent},
			Actions:     readExport,
		},
		Module{
			ID:          Agents,
			Name:        "Agents",
			Description: "Comptes agents et permissions par module",
			Category:    CategoryAdmin,
			Roles:       []Role{RoleAgence},
			Actions:     allActions,
		},
		Module{
			ID:          Agences,
			Name:        "Agences",
			Description: "Administration des agences de la plateforme",
			Category:    CategoryAdmin,
			Roles:       []Role{RoleSuperadmin},
			Actions:     allActions,
		},
		Module{
			ID:          Parametres,
			Name:        "Paramètres",
			Description: "Paramètres de l'agence",
			Category:    CategoryAdmin,
			Roles:       []Role{RoleSuperadmin, RoleAgence},
			Actions:     []Action{ActionRead, ActionUpdate},
		},
	)
}
