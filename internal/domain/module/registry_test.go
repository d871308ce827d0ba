package module

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	reg := Default()

	t.Run("contains the ten standard modules", func(t *testing.T) {
		assert.Len(t, reg.All(), 10)
		for _, id := range []ID{Dashboard, Profile, Clients, Fournisseurs, Factures, Caisse, Rapports, Agents, Agences, Parametres} {
			assert.True(t, reg.Contains(id), string(id))
		}
	})

	t.Run("dashboard and profile are essential", func(t *testing.T) {
		assert.ElementsMatch(t, []ID{Dashboard, Profile}, reg.BaseModules())
	})

	t.Run("agences is superadmin only", func(t *testing.T) {
		m, ok := reg.Get(Agences)
		require.True(t, ok)
		assert.True(t, m.AllowsRole(RoleSuperadmin))
		assert.False(t, m.AllowsRole(RoleAgence))
		assert.False(t, m.AllowsRole(RoleAgent))
	})

	t.Run("agents module excludes agents themselves", func(t *testing.T) {
		m, ok := reg.Get(Agents)
		require.True(t, ok)
		assert.True(t, m.AllowsRole(RoleAgence))
		assert.False(t, m.AllowsRole(RoleAgent))
	})

	t.Run("for role returns ordered subset", func(t *testing.T) {
		agentModules := reg.ForRole(RoleAgent)
		for _, m := range agentModules {
			assert.True(t, m.AllowsRole(RoleAgent))
		}
		assert.NotEmpty(t, agentModules)
	})
}

func TestParseAction(t *testing.T) {
	cases := map[string]Action{
		"read":      ActionRead,
		"lire":      ActionRead,
		"create":    ActionCreate,
		"creer":     ActionCreate,
		"update":    ActionUpdate,
		"modifier":  ActionUpdate,
		"delete":    ActionDelete,
		"supprimer": ActionDelete,
		"export":    ActionExport,
		"exporter":  ActionExport,
	}
	for verb, want := range cases {
		got, ok := ParseAction(verb)
		assert.True(t, ok, verb)
		assert.Equal(t, want, got, verb)
	}

	_, ok := ParseAction("voler")
	assert.False(t, ok)
}
