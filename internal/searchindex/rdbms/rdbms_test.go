package rdbms

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/freva-org/freva-nextgen-sub000/internal/domain"
	"github.com/freva-org/freva-nextgen-sub000/internal/searchindex"
)

func TestBackend_whereClause(t *testing.T) {
	b := &Backend{table: "datasets"}

	t.Run("empty request", func(t *testing.T) {
		where, args := b.whereClause(searchindex.SearchRequest{})
		assert.Equal(t, "", where)
		assert.Empty(t, args)
	})

	t.Run("positive and negative facets", func(t *testing.T) {
		req := searchindex.SearchRequest{
			Facets:    map[string][]string{"project": {"cmip6"}},
			NotFacets: map[string][]string{"realm": {"ocean"}},
		}
		where, args := b.whereClause(req)
		assert.Contains(t, where, "IN (")
		assert.Contains(t, where, "NOT IN (")
		assert.Len(t, args, 2)
	})

	t.Run("time range", func(t *testing.T) {
		start := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)
		req := searchindex.SearchRequest{Time: &domain.TimeRange{Start: start, End: end}}
		where, args := b.whereClause(req)
		assert.Contains(t, where, "time_start <=")
		assert.Contains(t, where, "time_end >=")
		assert.Len(t, args, 2)
	})
}

func TestKeysetCursor_Done(t *testing.T) {
	c := &keysetCursor{lastID: 5, done: false}
	assert.False(t, c.Done())
	c.done = true
	assert.True(t, c.Done())
}
