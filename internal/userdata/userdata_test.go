package userdata

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freva-org/freva-nextgen-sub000/internal/domain"
)

type fakeIndexWriter struct {
	upserted []domain.Dataset
	deleteMatch map[string]string
}

func (f *fakeIndexWriter) UpsertDocument(ctx context.Context, d domain.Dataset) error {
	f.upserted = append(f.upserted, d)
	return nil
}

func (f *fakeIndexWriter) DeleteDocuments(ctx context.Context, user string, luceneMatch map[string]string) (int64, error) {
	f.deleteMatch = luceneMatch
	return 2, nil
}

type fakeDocStore struct {
	upserted []domain.Dataset
	deleteMatch map[string]string
}

func (f *fakeDocStore) UpsertUserData(ctx context.Context, d domain.Dataset) error {
	f.upserted = append(f.upserted, d)
	return nil
}

func (f *fakeDocStore) DeleteUserData(ctx context.Context, user string, match map[string]string) (int64, error) {
	f.deleteMatch = match
	return 2, nil
}

func TestUpsert_MergesSharedFacetsAndStampsUser(t *testing.T) {
	idx := &fakeIndexWriter{}
	docs := &fakeDocStore{}
	svc := New(idx, docs)

	items := []UserMetadataItem{
		{"file": "/data/a.nc", "variable": "ua"},
		{"file": "/data/b.nc", "variable": "va"},
	}
	shared := map[string]string{"project": "my-project"}

	require.NoError(t, svc.Upsert(context.Background(), "alice", items, shared))

	require.Len(t, idx.upserted, 2)
	require.Len(t, docs.upserted, 2)
	for _, d := range idx.upserted {
		assert.Equal(t, "alice", d.Facets["user"])
		assert.Equal(t, "my-project", d.Facets["project"])
	}
	assert.Equal(t, "/data/a.nc", idx.upserted[0].File)
}

func TestDelete_LowercasesAndEscapesNonFileValues(t *testing.T) {
	idx := &fakeIndexWriter{}
	docs := &fakeDocStore{}
	svc := New(idx, docs)

	n, err := svc.Delete(context.Background(), "alice", map[string]string{
		"file":     "/data/A.nc",
		"variable": "UA",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	assert.Equal(t, "/data/A.nc", docs.deleteMatch["file"])
	assert.Equal(t, "ua", docs.deleteMatch["variable"])
	assert.Equal(t, `\/data\/A.nc`, idx.deleteMatch["file"])
}
