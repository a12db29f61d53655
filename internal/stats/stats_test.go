package stats

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freva-org/freva-nextgen-sub000/internal/apperr"
	"github.com/freva-org/freva-nextgen-sub000/internal/domain"
)

type fakeStatsStore struct {
	inserted []domain.QueryStatRecord
}

func (f *fakeStatsStore) InsertQueryStat(ctx context.Context, rec domain.QueryStatRecord) error {
	f.inserted = append(f.inserted, rec)
	return nil
}

type fakeFlavorStore struct {
	flavors map[string]domain.CustomFlavor // keyed by name+"/"+owner
}

func newFakeFlavorStore() *fakeFlavorStore {
	return &fakeFlavorStore{flavors: map[string]domain.CustomFlavor{}}
}

func key(name, owner string) string { return name + "/" + owner }

func (f *fakeFlavorStore) GetGlobal(ctx context.Context, name string) (*domain.CustomFlavor, error) {
	if cf, ok := f.flavors[key(name, domain.GlobalOwner)]; ok {
		return &cf, nil
	}
	return nil, nil
}

func (f *fakeFlavorStore) GetPersonal(ctx context.Context, name, owner string) (*domain.CustomFlavor, error) {
	if cf, ok := f.flavors[key(name, owner)]; ok {
		return &cf, nil
	}
	return nil, nil
}

func (f *fakeFlavorStore) ListAll(ctx context.Context) ([]domain.CustomFlavor, error) {
	out := make([]domain.CustomFlavor, 0, len(f.flavors))
	for _, cf := range f.flavors {
		out = append(out, cf)
	}
	return out, nil
}

func (f *fakeFlavorStore) CreateFlavor(ctx context.Context, cf domain.CustomFlavor) error {
	f.flavors[key(cf.Name, cf.Owner)] = cf
	return nil
}

func (f *fakeFlavorStore) DeleteFlavor(ctx context.Context, name, owner string) (bool, error) {
	k := key(name, owner)
	if _, ok := f.flavors[k]; !ok {
		return false, nil
	}
	delete(f.flavors, k)
	return true, nil
}

func (f *fakeFlavorStore) UpdateFlavor(ctx context.Context, cf domain.CustomFlavor) error {
	f.flavors[key(cf.Name, cf.Owner)] = cf
	return nil
}

func TestRecordQuery(t *testing.T) {
	st := &fakeStatsStore{}
	svc := New(st, newFakeFlavorStore())

	err := svc.RecordQuery(context.Background(), "freva", "file", 3, 200, 20260101, map[string][]string{
		"variable": {"ua", "va"},
	})
	require.NoError(t, err)
	require.Len(t, st.inserted, 1)
	assert.Equal(t, "ua&va", st.inserted[0].Query["variable"])
	assert.Equal(t, int64(3), st.inserted[0].Metadata.NumResults)
}

func TestCreateFlavor_RejectsBuiltin(t *testing.T) {
	svc := New(&fakeStatsStore{}, newFakeFlavorStore())
	err := svc.CreateFlavor(context.Background(), "alice", false, domain.CustomFlavor{Name: "cmip6"})
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeValidation, ae.Code)
}

func TestCreateFlavor_GlobalRequiresAdmin(t *testing.T) {
	svc := New(&fakeStatsStore{}, newFakeFlavorStore())
	err := svc.CreateFlavor(context.Background(), "alice", false, domain.CustomFlavor{Name: "mine", IsGlobal: true})
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeForbidden, ae.Code)
}

func TestCreateFlavor_ConflictOnDuplicate(t *testing.T) {
	flavors := newFakeFlavorStore()
	svc := New(&fakeStatsStore{}, flavors)

	require.NoError(t, svc.CreateFlavor(context.Background(), "alice", false, domain.CustomFlavor{Name: "mine"}))
	err := svc.CreateFlavor(context.Background(), "alice", false, domain.CustomFlavor{Name: "mine"})
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeConflict, ae.Code)
}

func TestListFlavors_QualifiesCollidingNames(t *testing.T) {
	flavors := newFakeFlavorStore()
	flavors.flavors[key("mine", domain.GlobalOwner)] = domain.CustomFlavor{Name: "mine", Owner: domain.GlobalOwner, IsGlobal: true}
	flavors.flavors[key("mine", "alice")] = domain.CustomFlavor{Name: "mine", Owner: "alice"}
	svc := New(&fakeStatsStore{}, flavors)

	out, err := svc.ListFlavors(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 2)

	names := map[string]bool{}
	for _, f := range out {
		names[f.Name] = true
	}
	assert.True(t, names["mine"])
	assert.True(t, names["alice:mine"])
}

func TestUpdateFlavor_NotFound(t *testing.T) {
	svc := New(&fakeStatsStore{}, newFakeFlavorStore())
	err := svc.UpdateFlavor(context.Background(), "alice", false, "missing", false, map[string]string{})
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeNotFound, ae.Code)
}

func TestDeleteFlavor_OwnerMismatchReportsNotFound(t *testing.T) {
	flavors := newFakeFlavorStore()
	flavors.flavors[key("mine", "alice")] = domain.CustomFlavor{Name: "mine", Owner: "alice"}
	svc := New(&fakeStatsStore{}, flavors)

	err := svc.DeleteFlavor(context.Background(), "bob", false, "mine", false)
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeNotFound, ae.Code)
}

func TestDeleteFlavor_GlobalRequiresAdmin(t *testing.T) {
	flavors := newFakeFlavorStore()
	flavors.flavors[key("mine", domain.GlobalOwner)] = domain.CustomFlavor{Name: "mine", Owner: domain.GlobalOwner, IsGlobal: true}
	svc := New(&fakeStatsStore{}, flavors)

	err := svc.DeleteFlavor(context.Background(), "alice", false, "mine", true)
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeForbidden, ae.Code)
}
