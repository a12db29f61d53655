// Package translate maps between the canonical facet vocabulary and the
// display vocabulary of a named flavor (spec §4.1 "Translation contract").
package translate

import (
	"strings"

	"github.com/freva-org/freva-nextgen-sub000/internal/domain"
)

// Lookup is a forward (canonical -> display) mapping for one flavor, plus
// its precomputed inverse.
type Lookup struct {
	Forward  map[string]string
	Backward map[string]string
	Primary  []string
}

func newLookup(forward map[string]string, primary []string) *Lookup {
	backward := make(map[string]string, len(forward))
	for k, v := range forward {
		backward[v] = k
	}
	return &Lookup{Forward: forward, Backward: backward, Primary: primary}
}

// builtinLookups holds the forward/backward tables for every built-in
// flavor. freva and user are identity (canonical IS the freva vocabulary);
// cmip6 renames a handful of facets to CMIP6 conventions; cmip5 keeps the
// canonical names, and cordex adds its RCM facets under their own names.
var builtinLookups = map[domain.FlavorName]*Lookup{
	domain.FlavorFreva:  newLookup(identityMapping(), domain.PrimaryFacets),
	domain.FlavorUser:   newLookup(identityMapping(), domain.PrimaryFacets),
	domain.FlavorCMIP6: newLookup(mergeMaps(identityMapping(), map[string]string{
		"project":    "mip_era",
		"product":    "activity_id",
		"institute":  "institution_id",
		"model":      "source_id",
		"experiment": "experiment_id",
		"ensemble":   "variant_label",
		"cmor_table": "table_id",
		"grid_label": "grid_label",
	}), domain.PrimaryFacets),
	domain.FlavorCMIP5: newLookup(mergeMaps(identityMapping(), map[string]string{
		"project":    "project",
		"product":    "product",
		"institute":  "institute",
		"model":      "model",
		"experiment": "experiment",
		"ensemble":   "ensemble",
		"cmor_table": "cmor_table",
	}), domain.PrimaryFacets),
	domain.FlavorCordex: newLookup(mergeMaps(identityMapping(), map[string]string{
		"rcm_name":      "rcm_name",
		"driving_model": "driving_model",
		"rcm_version":   "rcm_version",
	}), append(append([]string{}, domain.PrimaryFacets...), domain.CordexOnlyFacets...)),
}

func identityMapping() map[string]string {
	m := make(map[string]string, len(domain.CanonicalFacets)+len(domain.CordexOnlyFacets))
	for _, f := range domain.CanonicalFacets {
		m[f] = f
	}
	return m
}

func mergeMaps(base, overlay map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		out[k] = v
	}
	return out
}

// BuiltinLookup returns the forward/backward table for a built-in flavor,
// or nil if name is not built-in.
func BuiltinLookup(name string) *Lookup {
	return builtinLookups[domain.FlavorName(strings.ToLower(name))]
}

// FromMapping builds a Lookup from a custom flavor's canonical->display
// mapping, falling back to identity for any canonical facet the mapping
// does not mention.
func FromMapping(mapping map[string]string) *Lookup {
	forward := identityMapping()
	for k, v := range mapping {
		forward[k] = v
	}
	return newLookup(forward, domain.PrimaryFacets)
}

// TranslateForward renders canonical facet keys in a result map to the
// flavor's display vocabulary.
func (l *Lookup) TranslateForward(facets map[string]string) map[string]string {
	out := make(map[string]string, len(facets))
	for k, v := range facets {
		if display, ok := l.Forward[k]; ok {
			out[display] = v
		} else {
			out[k] = v
		}
	}
	return out
}

// TranslateBackward renders display-vocabulary keys back to canonical,
// passing through any key the flavor doesn't rename.
func (l *Lookup) TranslateBackward(facets map[string]string) map[string]string {
	out := make(map[string]string, len(facets))
	for k, v := range facets {
		if canonical, ok := l.Backward[k]; ok {
			out[canonical] = v
		} else {
			out[k] = v
		}
	}
	return out
}

// ValidFacetSet returns the accepted input-key vocabulary for a request
// against this flavor: the display names when translate is true, the
// canonical names otherwise (spec §4.1 "Input facet keys arrive in the
// flavor's display vocabulary"; original `Translator.valid_facets` returns
// `forward_lookup.values()` or `forward_lookup.keys()` accordingly). Keys
// are lower-cased to match the already-normalized input key they are
// compared against.
func (l *Lookup) ValidFacetSet(translate bool) map[string]bool {
	out := make(map[string]bool, len(l.Forward))
	for k, v := range l.Forward {
		if translate {
			out[strings.ToLower(v)] = true
		} else {
			out[strings.ToLower(k)] = true
		}
	}
	return out
}

// PrimaryFacetsForward returns the primary facet set translated to display
// names, in declaration order.
func (l *Lookup) PrimaryFacetsForward() []string {
	out := make([]string, 0, len(l.Primary))
	for _, p := range l.Primary {
		if display, ok := l.Forward[p]; ok {
			out = append(out, display)
		} else {
			out = append(out, p)
		}
	}
	return out
}
