package searchengine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/freva-org/freva-nextgen-sub000/internal/domain"
	"github.com/freva-org/freva-nextgen-sub000/internal/searchindex"
)

func TestBuildQuery_Empty(t *testing.T) {
	q := buildQuery(searchindex.SearchRequest{})
	_, isMatchAll := q["match_all"]
	assert.True(t, isMatchAll)
}

func TestBuildQuery_FacetsAndTimeAndBBox(t *testing.T) {
	req := searchindex.SearchRequest{
		Facets:       map[string][]string{"project": {"cmip6"}},
		NotFacets:    map[string][]string{"realm": {"ocean"}},
		Time:         &domain.TimeRange{},
		TimeOperator: "Contains",
		BBox:         &domain.BBox{MinLon: -10, MaxLon: 10, MinLat: -5, MaxLat: 5},
	}
	q := buildQuery(req)
	bq, ok := q["bool"].(boolQuery)
	if !assert.True(t, ok) {
		return
	}
	assert.Len(t, bq.Must, 3)
	assert.Len(t, bq.MustNot, 1)
}

func TestSearchAfterCursor_Done(t *testing.T) {
	c := &searchAfterCursor{done: false}
	assert.False(t, c.Done())
	c.done = true
	assert.True(t, c.Done())
}

func TestHitsToDatasets(t *testing.T) {
	hits := []hit{
		{Source: map[string]interface{}{"file": "/a.nc", "version": "v1", "project": "cmip6"}},
	}
	docs := hitsToDatasets(domain.UniqKeyFile, hits)
	if !assert.Len(t, docs, 1) {
		return
	}
	assert.Equal(t, "/a.nc", docs[0].File)
	assert.Equal(t, "v1", docs[0].Version)
	assert.Equal(t, "cmip6", docs[0].Facets["project"])
}
