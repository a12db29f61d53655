package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleShape(path string, lonSize int, hasTime bool) DatasetShape {
	return DatasetShape{
		Path:      path,
		Dims:      map[string]int{"lon": lonSize, "lat": 10},
		CoordDims: map[string][]string{"lon": {"lon"}, "lat": {"lat"}},
		CoordShapes: map[string][]int{
			"lon": {lonSize},
			"lat": {10},
		},
		HasTime: hasTime,
	}
}

func TestGroupKey_Deterministic(t *testing.T) {
	a := sampleShape("/a.nc", 20, true)
	b := sampleShape("/b.nc", 20, true)
	assert.Equal(t, GroupKey(a), GroupKey(b))
}

func TestGroupKey_DiffersOnShape(t *testing.T) {
	a := sampleShape("/a.nc", 20, true)
	b := sampleShape("/b.nc", 30, true)
	assert.NotEqual(t, GroupKey(a), GroupKey(b))
}

func TestGroup_PartitionsBySignature(t *testing.T) {
	datasets := []DatasetShape{
		sampleShape("/a.nc", 20, true),
		sampleShape("/b.nc", 20, true),
		sampleShape("/c.nc", 30, true),
	}
	groups := Group(datasets)
	assert.Len(t, groups, 2)
}

func TestResolve_AutoSingleGroup(t *testing.T) {
	datasets := []DatasetShape{
		sampleShape("/a.nc", 20, true),
		sampleShape("/b.nc", 20, true),
	}
	plans, err := Resolve(ModeAuto, datasets, "")
	if !assert.NoError(t, err) {
		return
	}
	if !assert.Len(t, plans, 1) {
		return
	}
	assert.Equal(t, ModeConcat, plans[0].Mode)
	assert.Equal(t, "time", plans[0].Dim)
	assert.ElementsMatch(t, []string{"/a.nc", "/b.nc"}, plans[0].Paths)
}

func TestResolve_AutoFallsBackToGrouping(t *testing.T) {
	datasets := []DatasetShape{
		sampleShape("/a.nc", 20, true),
		sampleShape("/b.nc", 30, true),
	}
	plans, err := Resolve(ModeAuto, datasets, "")
	if !assert.NoError(t, err) {
		return
	}
	assert.Len(t, plans, 2)
}

func TestResolve_Merge(t *testing.T) {
	datasets := []DatasetShape{sampleShape("/a.nc", 20, false)}
	plans, err := Resolve(ModeMerge, datasets, "")
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, ModeMerge, plans[0].Mode)
}

func TestResolve_ConcatPrefersExplicitDim(t *testing.T) {
	datasets := []DatasetShape{sampleShape("/a.nc", 20, true)}
	plans, err := Resolve(ModeConcat, datasets, "lev")
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, "lev", plans[0].Dim)
}

func TestResolve_EmptyInput(t *testing.T) {
	_, err := Resolve(ModeAuto, nil, "")
	assert.Error(t, err)
}

func TestResolve_UnknownMode(t *testing.T) {
	_, err := Resolve(Mode("bogus"), []DatasetShape{sampleShape("/a.nc", 20, true)}, "")
	assert.Error(t, err)
}

func TestToAppError_CarriesContext(t *testing.T) {
	aggErr := &AggregationError{GroupKey: "dims[lat=10]", Reason: "shape mismatch", Detail: "lon 20 vs 30"}
	appErr := ToAppError(aggErr)
	assert.Equal(t, "shape mismatch", appErr.Message)
	assert.Equal(t, "dims[lat=10]", appErr.Context["group_key"])
}
