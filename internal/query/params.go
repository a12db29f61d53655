// Package query implements parameter validation, time/bbox/facet value
// parsing, and the streaming/pagination contracts shared by every search
// backend (spec §4.1).
package query

import (
	"strings"

	"github.com/freva-org/freva-nextgen-sub000/internal/domain"
)

// reservedParams are accepted alongside the accepted facet set regardless
// of flavor.
var reservedParams = map[string]bool{
	"time": true, "time_select": true, "bbox": true, "bbox_select": true,
	"zarr_stream": true, "file": true, "uri": true,
}

// ValidFacets is the set of accepted input keys, with the "_not_" suffix
// already stripped and lower-cased by the caller. `accepted` is the
// vocabulary a particular request is validated against: the flavor's
// *display* names when translation is on, or the canonical names when
// `translate=false` (spec §4.1 "Translation contract"; original
// `Translator.valid_facets` returns `forward_lookup.values()` or
// `forward_lookup.keys()` accordingly).
type ValidFacets struct {
	accepted     map[string]bool
	multiVersion bool
}

func NewValidFacets(accepted map[string]bool, multiVersion bool) *ValidFacets {
	return &ValidFacets{accepted: accepted, multiVersion: multiVersion}
}

// Accepts reports whether key (already normalized) is a legal facet or
// reserved parameter name.
func (v *ValidFacets) Accepts(key string) bool {
	if reservedParams[key] {
		return true
	}
	if key == "version" {
		return v.multiVersion
	}
	return v.accepted[key]
}

// NormalizeKey strips a "_not_" suffix and lower-cases the result, per
// spec §4.1 "Parameter validation".
func NormalizeKey(key string) (normalized string, negated bool) {
	lower := strings.ToLower(key)
	if strings.HasSuffix(lower, "_not_") {
		return strings.TrimSuffix(lower, "_not_"), true
	}
	return lower, false
}

// ValidateParams checks every inbound key against accepted (a flavor's
// resolved display or canonical vocabulary, see ValidFacets), returning the
// first offending key, or "" if all keys are valid.
func ValidateParams(params map[string][]string, accepted map[string]bool, multiVersion bool) string {
	vf := NewValidFacets(accepted, multiVersion)
	for key := range params {
		normalized, _ := NormalizeKey(key)
		if !vf.Accepts(normalized) {
			return key
		}
	}
	return ""
}

// CanonicalFacetSet returns every canonical facet name (including the
// CORDEX-only facets), lower-cased, as an acceptance set for
// `translate=false` requests (spec §4.1 "translate=false ... keys stay in
// canonical form").
func CanonicalFacetSet() map[string]bool {
	out := make(map[string]bool, len(domain.CanonicalFacets)+len(domain.CordexOnlyFacets))
	for _, f := range domain.CanonicalFacets {
		out[strings.ToLower(f)] = true
	}
	for _, f := range domain.CordexOnlyFacets {
		out[strings.ToLower(f)] = true
	}
	return out
}
