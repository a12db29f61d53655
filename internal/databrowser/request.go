// Package databrowser orchestrates the search translation and query plane
// (spec §4.1): turning validated, flavor-translated request parameters into
// a backend SearchRequest, and streaming the various response shapes
// (uniq-key lines, extended facet counts, intake/STAC catalogs, zarr load
// URLs) the databrowser endpoints expose.
package databrowser

import (
	"net/url"

	"github.com/freva-org/freva-nextgen-sub000/internal/apperr"
	"github.com/freva-org/freva-nextgen-sub000/internal/domain"
	"github.com/freva-org/freva-nextgen-sub000/internal/query"
	"github.com/freva-org/freva-nextgen-sub000/internal/searchindex"
	"github.com/freva-org/freva-nextgen-sub000/internal/translate"
)

// ParsedRequest is a fully validated search request ready to hand to a
// searchindex.Backend. Translate records whether the request arrived in
// (and should respond in) the flavor's display vocabulary or canonical
// form, per spec §4.1 "translate=false ... keys stay in canonical form for
// both input and output".
type ParsedRequest struct {
	Search       searchindex.SearchRequest
	Lookup       *translate.Lookup
	MultiVersion bool
	Translate    bool
}

// BuildRequest implements spec §4.1's full parameter pipeline: validate
// every key against the flavor's accepted vocabulary (display names when
// translate is true, canonical names otherwise), translate display-
// vocabulary keys back to canonical, split negation markers, parse
// time/bbox, and assemble the backend-agnostic SearchRequest.
func BuildRequest(params url.Values, lookup *translate.Lookup, uniqKey domain.UniqKey, batchSize, maxResults int, multiVersion, doTranslate bool) (*ParsedRequest, error) {
	accepted := lookup.ValidFacetSet(doTranslate)
	if bad := query.ValidateParams(params, accepted, multiVersion); bad != "" {
		return nil, apperr.Validation("unknown parameter "+bad, nil)
	}

	req := searchindex.SearchRequest{
		UniqKey:    uniqKey,
		Facets:     map[string][]string{},
		NotFacets:  map[string][]string{},
		BatchSize:  batchSize,
		MaxResults: maxResults,
	}

	for rawKey, rawValues := range params {
		normalized, keyNegated := query.NormalizeKey(rawKey)
		switch normalized {
		case "time", "time_select", "bbox", "bbox_select", "zarr_stream":
			continue
		}
		canonical := normalized
		if doTranslate {
			if c, ok := lookup.Backward[normalized]; ok {
				canonical = c
			}
		}

		positive, negative := query.ParseFacetValues(rawValues, keyNegated)
		if len(positive) > 0 {
			req.Facets[canonical] = append(req.Facets[canonical], positive...)
		}
		if len(negative) > 0 {
			req.NotFacets[canonical] = append(req.NotFacets[canonical], negative...)
		}
	}

	if timeRaw := params.Get("time"); timeRaw != "" {
		tr, err := query.ParseTimeRange(timeRaw)
		if err != nil {
			return nil, apperr.Validation(err.Error(), err)
		}
		if tr != nil {
			req.Time = &domain.TimeRange{Start: tr.Start, End: tr.End}
			op, err := query.TimeSelect(params.Get("time_select")).IndexOperator()
			if err != nil {
				return nil, apperr.Validation(err.Error(), err)
			}
			req.TimeOperator = op
		}
	}

	if bboxRaw := params.Get("bbox"); bboxRaw != "" {
		bbox, err := query.ParseBBox(bboxRaw)
		if err != nil {
			return nil, apperr.Validation(err.Error(), err)
		}
		req.BBox = bbox
		op, err := query.TimeSelect(params.Get("bbox_select")).IndexOperator()
		if err != nil {
			return nil, apperr.Validation(err.Error(), err)
		}
		req.BBoxOperator = op
	}

	return &ParsedRequest{Search: req, Lookup: lookup, MultiVersion: multiVersion, Translate: doTranslate}, nil
}
