package stac

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/freva-org/freva-nextgen-sub000/internal/domain"
)

func TestCollectionAccumulateAndFinalize(t *testing.T) {
	col := NewCollection("cmip6", "cmip6 collection")
	start := time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)

	col.Accumulate(domain.Dataset{
		BBox: &domain.BBox{MinLon: -10, MinLat: -5, MaxLon: 10, MaxLat: 5},
		Time: &domain.TimeRange{Start: start, End: end},
	})
	col.Accumulate(domain.Dataset{
		BBox: &domain.BBox{MinLon: -20, MinLat: 0, MaxLon: 5, MaxLat: 15},
		Time: &domain.TimeRange{Start: start.AddDate(-5, 0, 0), End: end.AddDate(2, 0, 0)},
	})
	col.Finalize()

	assert.Len(t, col.Extent.Spatial.BBox, 1)
	overall := col.Extent.Spatial.BBox[0]
	assert.Equal(t, [4]float64{-20, -5, 10, 15}, overall)
	assert.Len(t, col.Extent.Temporal.Interval, 1)
}

func TestCollectionFinalize_NoDocuments(t *testing.T) {
	col := NewCollection("empty", "empty collection")
	col.Finalize()
	assert.Equal(t, [][4]float64{{-180, -90, 180, 90}}, col.Extent.Spatial.BBox)
	assert.Nil(t, col.Extent.Temporal.Interval[0][0])
	assert.Nil(t, col.Extent.Temporal.Interval[0][1])
}

func TestItemFromDataset(t *testing.T) {
	d := domain.Dataset{
		File:   "/data/cmip6/ua.nc",
		Facets: map[string]string{"variable": "ua"},
		BBox:   &domain.BBox{MinLon: -1, MinLat: -1, MaxLon: 1, MaxLat: 1},
	}
	item := ItemFromDataset("cmip6", d, domain.UniqKeyFile)

	assert.Equal(t, "cmip6", item.Collection)
	assert.Equal(t, NormalizeItemID("/data/cmip6/ua.nc"), item.ID)
	assert.Equal(t, "ua", item.Properties["variable"])
	assert.NotNil(t, item.BBox)
	assert.Equal(t, "Polygon", item.Geometry.Type)
}

func TestNormalizeItemID(t *testing.T) {
	assert.Equal(t, "_data_cmip6_ua.nc", NormalizeItemID("/data/cmip6/ua.nc"))
	assert.Equal(t, "a-b_c.d", NormalizeItemID("a-b_c.d"))
}
