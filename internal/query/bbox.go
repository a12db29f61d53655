package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/freva-org/freva-nextgen-sub000/internal/domain"
)

// ParseBBox parses the `bbox` query parameter: "minLon,maxLon,minLat,maxLat"
// per spec §4.1 "BBox constraint".
func ParseBBox(raw string) (*domain.BBox, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("invalid bbox %q: expected minLon,maxLon,minLat,maxLat", raw)
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid bbox component %q: %w", p, err)
		}
		vals[i] = v
	}
	minLon, maxLon, minLat, maxLat := vals[0], vals[1], vals[2], vals[3]
	if minLon < -180 || minLon > 180 || maxLon < -180 || maxLon > 180 {
		return nil, fmt.Errorf("invalid bbox %q: longitude must be within [-180, 180]", raw)
	}
	if minLat < -90 || minLat > 90 || maxLat < -90 || maxLat > 90 {
		return nil, fmt.Errorf("invalid bbox %q: latitude must be within [-90, 90]", raw)
	}
	return &domain.BBox{MinLon: minLon, MaxLon: maxLon, MaxLat: maxLat, MinLat: minLat}, nil
}
