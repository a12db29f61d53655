package zarrgw

import (
	"context"
	"strings"

	"github.com/freva-org/freva-nextgen-sub000/internal/aggregate"
)

// coordVariables are the coordinate names aggregate.GroupKey's signature
// considers; only these are inspected for CoordDims/CoordShapes.
var coordVariables = map[string]bool{
	"lat": true, "lon": true, "rlat": true, "rlon": true, "x": true, "y": true,
}

// CacheShape implements zarrgw.ShapeLookup by materializing a path (the
// same EnsureMaterialized path `/zarr/<t>.zarr` handlers use) and deriving
// the aggregation shape from the resulting consolidated metadata, since the
// gateway never opens a source file directly (spec §4.2 "the real shape
// comes from the worker once materialized").
type CacheShape struct {
	gw *Gateway
}

func NewCacheShape(gw *Gateway) *CacheShape {
	return &CacheShape{gw: gw}
}

func (s *CacheShape) Shape(ctx context.Context, path string) (aggregate.DatasetShape, error) {
	token := CacheToken(path)
	entry, err := s.gw.EnsureMaterialized(ctx, token)
	if err != nil {
		return aggregate.DatasetShape{}, err
	}

	shape := aggregate.DatasetShape{
		Path:        path,
		Dims:        map[string]int{},
		CoordDims:   map[string][]string{},
		CoordShapes: map[string][]int{},
	}

	for key, raw := range entry.Meta.Metadata {
		variable, ok := strings.CutSuffix(key, "/.zarray")
		if !ok {
			continue
		}
		shape.Variables = append(shape.Variables, variable)

		arr, _ := raw.(map[string]interface{})
		arrShape := intSlice(arr["shape"])

		attrs, _ := entry.Meta.Metadata[variable+"/.zattrs"].(map[string]interface{})
		dims := stringSlice(attrs["_ARRAY_DIMENSIONS"])
		if len(dims) == 0 {
			dims = []string{variable}
		}

		for i, dim := range dims {
			if i < len(arrShape) {
				shape.Dims[dim] = arrShape[i]
			}
		}

		if variable == "time" {
			shape.HasTime = true
		}
		if coordVariables[variable] {
			shape.CoordDims[variable] = dims
			shape.CoordShapes[variable] = arrShape
		}
	}

	return shape, nil
}

func intSlice(v interface{}) []int {
	raw, _ := v.([]interface{})
	out := make([]int, len(raw))
	for i, n := range raw {
		if f, ok := n.(float64); ok {
			out[i] = int(f)
		}
	}
	return out
}

func stringSlice(v interface{}) []string {
	raw, _ := v.([]interface{})
	out := make([]string, len(raw))
	for i, s := range raw {
		if str, ok := s.(string); ok {
			out[i] = str
		}
	}
	return out
}
