// Package domain holds the canonical facet schema and the record types
// shared across the query engine, the zarr gateway, and the worker pool.
package domain

import "time"

// UniqKey selects which field identifies a dataset document in streamed
// results: the filesystem path or the scheme-qualified URI.
type UniqKey string

const (
	UniqKeyFile UniqKey = "file"
	UniqKeyURI  UniqKey = "uri"
)

// TimeRange is a half-open interval [Start, End) over a dataset's temporal
// coverage.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// BBox is an axis-aligned spatial envelope.
type BBox struct {
	MinLon float64
	MaxLon float64
	MaxLat float64
	MinLat float64
}

// CanonicalFacets lists every facet name the index understands, in the
// canonical (untranslated) vocabulary. Order matters for facet listing and
// primary-facet default ordering.
var CanonicalFacets = []string{
	"project", "product", "institute", "model", "experiment",
	"time_frequency", "realm", "variable", "ensemble", "cmor_table",
	"fs_type", "grid_label", "grid_id", "format", "time", "bbox",
	"version", "user",
}

// CordexOnlyFacets are additional canonical facets present only for the
// cordex flavor's documents.
var CordexOnlyFacets = []string{"rcm_name", "driving_model", "rcm_version"}

// PrimaryFacets is the default subset surfaced in overviews and client
// widgets.
var PrimaryFacets = []string{
	"project", "product", "institute", "model", "experiment",
	"time_frequency", "realm", "variable", "ensemble",
}

// Dataset is one catalog record as returned by a search backend, keyed by
// File or URI (exactly one is authoritative per UniqKey). Facets holds every
// other canonical facet value as a flat string map; Time/BBox are parsed out
// separately because they drive range queries rather than exact-match terms.
type Dataset struct {
	File    string            `json:"file,omitempty"`
	URI     string            `json:"uri,omitempty"`
	Facets  map[string]string `json:"facets"`
	Time    *TimeRange        `json:"-"`
	BBox    *BBox             `json:"-"`
	Version string            `json:"version,omitempty"`
}

// Key returns the dataset's identifying value for the given uniq key
// selection.
func (d *Dataset) Key(uk UniqKey) string {
	if uk == UniqKeyURI {
		return d.URI
	}
	return d.File
}
