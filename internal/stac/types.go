// Package stac assembles STAC (SpatioTemporal Asset Catalog) Collections
// and Items from a streamed document set (spec §4.2 "Catalog composition",
// §6 "STAC API (minimal)"), and serves the minimal STAC API with
// next/prev token pagination. No STAC library appears in the retrieval
// pack, so the Collection/Item/Extent types here are hand-written to the
// STAC 1.0 shapes spec.md names, in the same plain-struct style the
// teacher uses for its own domain records (domain/feed.go).
package stac

import "github.com/freva-org/freva-nextgen-sub000/internal/domain"

// Extent accumulates the spatial/temporal bounds of a Collection as
// documents stream past it (spec §4.2 "accumulates spatial/temporal
// extents as documents stream").
type Extent struct {
	Spatial  SpatialExtent  `json:"spatial"`
	Temporal TemporalExtent `json:"temporal"`
}

type SpatialExtent struct {
	BBox [][4]float64 `json:"bbox"`
}

type TemporalExtent struct {
	Interval [][2]*string `json:"interval"`
}

// Collection is a minimal STAC Collection document.
type Collection struct {
	Type            string                 `json:"type"`
	StacVersion     string                 `json:"stac_version"`
	ID              string                 `json:"id"`
	Description     string                 `json:"description"`
	License         string                 `json:"license"`
	Extent          Extent                 `json:"extent"`
	Links           []Link                 `json:"links"`
	AggregationInfo map[string]interface{} `json:"-"`
}

// Item is a minimal STAC Item document.
type Item struct {
	Type       string                 `json:"type"`
	StacVersion string                `json:"stac_version"`
	ID         string                 `json:"id"`
	Collection string                 `json:"collection"`
	Geometry   *Geometry              `json:"geometry"`
	BBox       *[4]float64            `json:"bbox,omitempty"`
	Properties map[string]interface{} `json:"properties"`
	Links      []Link                 `json:"links"`
	Assets     map[string]Asset       `json:"assets"`
}

type Geometry struct {
	Type        string      `json:"type"`
	Coordinates interface{} `json:"coordinates"`
}

type Link struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
	Type string `json:"type,omitempty"`
}

type Asset struct {
	Href  string `json:"href"`
	Title string `json:"title,omitempty"`
	Type  string `json:"type,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

// NewCollection builds an empty Collection with an Extent ready to
// accumulate, per spec §4.2's "accumulates ... finalizes the collection's
// extent at the end".
func NewCollection(id, description string) *Collection {
	return &Collection{
		Type: "Collection", StacVersion: "1.0.0", ID: id,
		Description: description, License: "proprietary",
	}
}

// Accumulate widens c's extent to cover d's bbox/time, called once per
// streamed document (spec §4.2).
func (c *Collection) Accumulate(d domain.Dataset) {
	if d.BBox != nil {
		c.Extent.Spatial.BBox = append(c.Extent.Spatial.BBox, [4]float64{d.BBox.MinLon, d.BBox.MinLat, d.BBox.MaxLon, d.BBox.MaxLat})
	}
	if d.Time != nil {
		start := d.Time.Start.Format("2006-01-02T15:04:05Z")
		end := d.Time.End.Format("2006-01-02T15:04:05Z")
		c.Extent.Temporal.Interval = append(c.Extent.Temporal.Interval, [2]*string{&start, &end})
	}
}

// Finalize collapses every accumulated per-document bbox/interval into a
// single overall bound, the last step of spec §4.2's extent accumulation.
func (c *Collection) Finalize() {
	if len(c.Extent.Spatial.BBox) == 0 {
		c.Extent.Spatial.BBox = [][4]float64{{-180, -90, 180, 90}}
	} else {
		overall := c.Extent.Spatial.BBox[0]
		for _, b := range c.Extent.Spatial.BBox[1:] {
			if b[0] < overall[0] {
				overall[0] = b[0]
			}
			if b[1] < overall[1] {
				overall[1] = b[1]
			}
			if b[2] > overall[2] {
				overall[2] = b[2]
			}
			if b[3] > overall[3] {
				overall[3] = b[3]
			}
		}
		c.Extent.Spatial.BBox = [][4]float64{overall}
	}

	if len(c.Extent.Temporal.Interval) == 0 {
		c.Extent.Temporal.Interval = [][2]*string{{nil, nil}}
		return
	}
	start, end := c.Extent.Temporal.Interval[0][0], c.Extent.Temporal.Interval[0][1]
	for _, iv := range c.Extent.Temporal.Interval[1:] {
		if iv[0] != nil && (start == nil || *iv[0] < *start) {
			start = iv[0]
		}
		if iv[1] != nil && (end == nil || *iv[1] > *end) {
			end = iv[1]
		}
	}
	c.Extent.Temporal.Interval = [][2]*string{{start, end}}
}

// ItemFromDataset projects a search document to a STAC Item, deriving
// bbox/geometry from the document's BBox/Time fields (spec §4.2 "writes
// each Item with bbox/geometry derived from the document's bbox/time
// fields").
func ItemFromDataset(collectionID string, d domain.Dataset, uniqKey domain.UniqKey) Item {
	item := Item{
		Type: "Feature", StacVersion: "1.0.0",
		ID:         NormalizeItemID(d.Key(uniqKey)),
		Collection: collectionID,
		Properties: map[string]interface{}{},
		Assets:     map[string]Asset{},
	}
	for k, v := range d.Facets {
		item.Properties[k] = v
	}
	if d.Time != nil {
		item.Properties["start_datetime"] = d.Time.Start.Format("2006-01-02T15:04:05Z")
		item.Properties["end_datetime"] = d.Time.End.Format("2006-01-02T15:04:05Z")
	}
	if d.BBox != nil {
		bbox := [4]float64{d.BBox.MinLon, d.BBox.MinLat, d.BBox.MaxLon, d.BBox.MaxLat}
		item.BBox = &bbox
		item.Geometry = &Geometry{
			Type: "Polygon",
			Coordinates: [][][2]float64{{
				{d.BBox.MinLon, d.BBox.MinLat}, {d.BBox.MaxLon, d.BBox.MinLat},
				{d.BBox.MaxLon, d.BBox.MaxLat}, {d.BBox.MinLon, d.BBox.MaxLat},
				{d.BBox.MinLon, d.BBox.MinLat},
			}},
		}
	}
	item.Assets["data"] = Asset{Href: d.Key(uniqKey), Roles: []string{"data"}}
	return item
}

// NormalizeItemID renders a dataset key into a filesystem/URL-safe item
// id, used both for the archive entry filename and the Item's own id.
func NormalizeItemID(key string) string {
	out := make([]byte, 0, len(key))
	for i := 0; i < len(key); i++ {
		b := key[i]
		switch {
		case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9', b == '-', b == '_', b == '.':
			out = append(out, b)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
