package access

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/voyago/backend/internal/domain/access"
	"github.com/voyago/backend/internal/domain/identity"
	"github.com/voyago/backend/internal/domain/module"
	"github.com/voyago/backend/internal/domain/shared"
)

type fakeAgencyRepo struct {
	agencies map[uuid.UUID]*identity.Agency
	failAll  bool
}

func (r *fakeAgencyRepo) FindByID(_ context.Context, id uuid.UUID) (*identity.Agency, error) {
	if r.failAll {
		return nil, assert.AnError
	}
	a, ok := r.agencies[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return a, nil
}

func (r *fakeAgencyRepo) FindByCode(_ context.Context, code string) (*identity.Agency, error) {
	for _, a := range r.agencies {
		if a.Code == code {
			return a, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeAgencyRepo) List(_ context.Context, _ shared.Filter) ([]*identity.Agency, int64, error) {
	out := make([]*identity.Agency, 0, len(r.agencies))
	for _, a := range r.agencies {
		out = append(out, a)
	}
	return out, int64(len(out)), nil
}

func (r *fakeAgencyRepo) Save(_ context.Context, a *identity.Agency) error {
	r.agencies[a.ID] = a
	return nil
}

// countingCache wraps an in-memory map and counts the calls, enough to show
// the service consults and invalidates it.
type countingCache struct {
	entries     map[uuid.UUID]*access.AgencyContext
	gets, sets  int
	invalidated int
}

func newCountingCache() *countingCache {
	return &countingCache{entries: map[uuid.UUID]*access.AgencyContext{}}
}

func (c *countingCache) Get(_ context.Context, agencyID uuid.UUID) (*access.AgencyContext, error) {
	c.gets++
	if e, ok := c.entries[agencyID]; ok {
		return e, nil
	}
	return nil, shared.ErrNotFound
}

func (c *countingCache) Set(_ context.Context, agencyCtx *access.AgencyContext) error {
	c.sets++
	c.entries[agencyCtx.AgencyID] = agencyCtx
	return nil
}

func (c *countingCache) Invalidate(_ context.Context, agencyID uuid.UUID) error {
	c.invalidated++
	delete(c.entries, agencyID)
	return nil
}

type moduleFixture struct {
	service *ModuleService
	repo    *fakeAgencyRepo
	cache   *countingCache
	agency  *identity.Agency
	admin   access.AgencyAdmin
}

func newModuleFixture(t *testing.T) *moduleFixture {
	t.Helper()
	agency, err := identity.NewAgency("AG-01", "Voyages Carthage")
	require.NoError(t, err)

	repo := &fakeAgencyRepo{agencies: map[uuid.UUID]*identity.Agency{agency.ID: agency}}
	cache := newCountingCache()
	return &moduleFixture{
		service: NewModuleService(module.Default(), repo, cache, zap.NewNop()),
		repo:    repo,
		cache:   cache,
		agency:  agency,
		admin:   access.AgencyAdmin{UserID: uuid.New(), AgencyID: agency.ID},
	}
}

func TestModuleServiceActivationFlow(t *testing.T) {
	f := newModuleFixture(t)
	ctx := context.Background()

	t.Run("caisse starts inactive", func(t *testing.T) {
		assert.False(t, f.service.HasPermission(ctx, f.admin, module.Caisse, "read"))
	})

	t.Run("request marks it pending", func(t *testing.T) {
		require.NoError(t, f.service.RequestModule(ctx, f.admin, module.Caisse))

		mods, err := f.service.AccessibleModules(ctx, f.admin)
		require.NoError(t, err)
		byID := map[string]ModuleResponse{}
		for _, m := range mods {
			byID[m.ID] = m
		}
		assert.Equal(t, "pending", byID["caisse"].Status)
		assert.False(t, f.service.HasPermission(ctx, f.admin, module.Caisse, "read"))
	})

	t.Run("approval activates it", func(t *testing.T) {
		require.NoError(t, f.service.ApproveModule(ctx, f.agency.ID, module.Caisse))

		assert.True(t, f.service.HasPermission(ctx, f.admin, module.Caisse, "read"))
		assert.True(t, f.service.HasPermission(ctx, f.admin, module.Caisse, "create"))
	})

	t.Run("deactivation removes access again", func(t *testing.T) {
		require.NoError(t, f.service.DeactivateModule(ctx, f.agency.ID, module.Caisse))

		assert.False(t, f.service.HasPermission(ctx, f.admin, module.Caisse, "read"))
	})

	t.Run("cache is consulted and invalidated", func(t *testing.T) {
		assert.Positive(t, f.cache.gets)
		assert.Positive(t, f.cache.invalidated)
	})
}

func TestModuleServiceFrenchVerbs(t *testing.T) {
	f := newModuleFixture(t)
	ctx := context.Background()
	require.NoError(t, f.service.RequestModule(ctx, f.admin, module.Factures))
	require.NoError(t, f.service.ApproveModule(ctx, f.agency.ID, module.Factures))

	assert.True(t, f.service.HasPermission(ctx, f.admin, module.Factures, "lire"))
	assert.True(t, f.service.HasPermission(ctx, f.admin, module.Factures, "modifier"))
	assert.False(t, f.service.HasPermission(ctx, f.admin, module.Factures, "voler"))
}

func TestModuleServiceAgentGrants(t *testing.T) {
	f := newModuleFixture(t)
	ctx := context.Background()
	require.NoError(t, f.service.RequestModule(ctx, f.admin, module.Clients))
	require.NoError(t, f.service.ApproveModule(ctx, f.agency.ID, module.Clients))

	agent := access.Agent{
		UserID:   uuid.New(),
		AgencyID: f.agency.ID,
		Permissions: []access.ModulePermission{
			access.NewModulePermission(module.Clients, []string{"lire"}),
		},
	}

	assert.True(t, f.service.HasPermission(ctx, agent, module.Clients, "read"))
	assert.False(t, f.service.HasPermission(ctx, agent, module.Clients, "modifier"))
}

func TestModuleServiceDegradedContext(t *testing.T) {
	// Repository down: agency users keep dashboard and profile, nothing else.
	f := newModuleFixture(t)
	ctx := context.Background()
	require.NoError(t, f.service.RequestModule(ctx, f.admin, module.Caisse))
	require.NoError(t, f.service.ApproveModule(ctx, f.agency.ID, module.Caisse))
	f.repo.failAll = true
	f.cache.entries = map[uuid.UUID]*access.AgencyContext{}

	assert.True(t, f.service.HasPermission(ctx, f.admin, module.Dashboard, "read"))
	assert.True(t, f.service.HasPermission(ctx, f.admin, module.Profile, "read"))
	assert.False(t, f.service.HasPermission(ctx, f.admin, module.Caisse, "read"))
}
