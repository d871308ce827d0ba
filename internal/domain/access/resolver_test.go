package access

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/voyago/backend/internal/domain/module"
)

func loadedAgency(active ...module.ID) *AgencyContext {
	return &AgencyContext{
		AgencyID:      uuid.New(),
		ActiveModules: active,
		Loaded:        true,
	}
}

func TestResolverSuperadmin(t *testing.T) {
	r := NewResolver(module.Default())
	admin := Superadmin{UserID: uuid.New()}

	t.Run("sees agences and parametres without agency context", func(t *testing.T) {
		assert.True(t, r.HasPermission(admin, nil, module.Agences, module.ActionCreate))
		assert.True(t, r.HasPermission(admin, nil, module.Parametres, module.ActionUpdate))
	})

	t.Run("cannot perform undeclared actions", func(t *testing.T) {
		// Rapports only declares read and export.
		assert.False(t, r.HasPermission(admin, nil, module.Rapports, module.ActionDelete))
	})

	t.Run("unknown module is denied", func(t *testing.T) {
		assert.False(t, r.HasPermission(admin, nil, module.ID("comptabilite"), module.ActionRead))
	})
}

func TestResolverAgencyAdmin(t *testing.T) {
	r := NewResolver(module.Default())
	admin := AgencyAdmin{UserID: uuid.New(), AgencyID: uuid.New()}

	t.Run("activated module grants every declared action", func(t *testing.T) {
		agency := loadedAgency(module.Factures, module.Caisse)

		assert.True(t, r.HasPermission(admin, agency, module.Factures, module.ActionCreate))
		assert.True(t, r.HasPermission(admin, agency, module.Caisse, module.ActionRead))
	})

	t.Run("non activated module is denied", func(t *testing.T) {
		agency := loadedAgency(module.Factures)

		assert.False(t, r.HasPermission(admin, agency, module.Caisse, module.ActionRead))
	})

	t.Run("unloaded agency context degrades to base modules", func(t *testing.T) {
		assert.True(t, r.HasPermission(admin, nil, module.Dashboard, module.ActionRead))
		assert.True(t, r.HasPermission(admin, nil, module.Profile, module.ActionRead))
		assert.False(t, r.HasPermission(admin, nil, module.Factures, module.ActionRead))

		mods := r.AccessibleModules(admin, &AgencyContext{Loaded: false})
		assert.ElementsMatch(t, []module.ID{module.Dashboard, module.Profile}, mods)
	})

	t.Run("requested module shows pending", func(t *testing.T) {
		agency := loadedAgency(module.Factures)
		agency.RequestedModules = []module.ID{module.Rapports}

		assert.Equal(t, StatusActive, r.ModuleStatus(admin, agency, module.Factures))
		assert.Equal(t, StatusPending, r.ModuleStatus(admin, agency, module.Rapports))
		assert.Equal(t, StatusInactive, r.ModuleStatus(admin, agency, module.Clients))
	})
}

func TestResolverAgent(t *testing.T) {
	r := NewResolver(module.Default())

	t.Run("read granted and update denied per record", func(t *testing.T) {
		agent := Agent{
			UserID:   uuid.New(),
			AgencyID: uuid.New(),
			Permissions: []ModulePermission{
				NewModulePermission(module.Clients, []string{"lire"}),
			},
		}
		agency := loadedAgency(module.Clients)

		assert.True(t, r.HasPermission(agent, agency, module.Clients, module.ActionRead))
		assert.False(t, r.HasPermission(agent, agency, module.Clients, module.ActionUpdate))
	})

	t.Run("french aliases normalize to canonical actions", func(t *testing.T) {
		perm := NewModulePermission(module.Factures, []string{"lire", "modifier", "exporter", "junk"})

		assert.True(t, perm.Allows(module.ActionRead))
		assert.True(t, perm.Allows(module.ActionUpdate))
		assert.True(t, perm.Allows(module.ActionExport))
		assert.False(t, perm.Allows(module.ActionDelete))
		assert.Len(t, perm.Actions, 3)
	})

	t.Run("no record means no access", func(t *testing.T) {
		agent := Agent{UserID: uuid.New(), AgencyID: uuid.New()}
		agency := loadedAgency(module.Clients)

		assert.False(t, r.HasPermission(agent, agency, module.Clients, module.ActionRead))
	})

	t.Run("essential modules always accessible", func(t *testing.T) {
		agent := Agent{UserID: uuid.New(), AgencyID: uuid.New()}

		assert.True(t, r.HasPermission(agent, nil, module.Dashboard, module.ActionRead))
		assert.True(t, r.HasPermission(agent, nil, module.Profile, module.ActionRead))
	})

	t.Run("role gate trumps permission record", func(t *testing.T) {
		// An agent holding a stale record for a module its role cannot see.
		agent := Agent{
			UserID:   uuid.New(),
			AgencyID: uuid.New(),
			Permissions: []ModulePermission{
				NewModulePermission(module.Agents, []string{"lire"}),
			},
		}
		agency := loadedAgency(module.Agents)

		assert.False(t, r.HasPermission(agent, agency, module.Agents, module.ActionRead))
	})
}
