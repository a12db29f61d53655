package databrowser

import (
	"context"
	"fmt"
	"io"

	"github.com/freva-org/freva-nextgen-sub000/internal/apperr"
	"github.com/freva-org/freva-nextgen-sub000/internal/domain"
	"github.com/freva-org/freva-nextgen-sub000/internal/intake"
	"github.com/freva-org/freva-nextgen-sub000/internal/searchindex"
	"github.com/freva-org/freva-nextgen-sub000/internal/stac"
)

// Service wraps a search backend with the streaming/aggregation contracts
// the databrowser endpoints expose (spec §4.1 "Responsibility").
type Service struct {
	backend searchindex.Backend
}

func New(backend searchindex.Backend) *Service {
	return &Service{backend: backend}
}

// Overview lists every canonical facet name plus the primary subset, for
// `GET /databrowser/overview` (spec §8 "Overview/Flavor endpoints").
func Overview() map[string]interface{} {
	return map[string]interface{}{
		"facets":         domain.CanonicalFacets,
		"primary_facets": domain.PrimaryFacets,
		"flavours":       []string{"freva", "cmip6", "cmip5", "cordex", "user"},
	}
}

// Count returns the total matching document count.
func (s *Service) Count(ctx context.Context, req *ParsedRequest) (int64, error) {
	n, err := s.backend.Count(ctx, req.Search)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// MetadataSearch returns per-facet value/count dictionaries translated to
// the requesting flavor's display vocabulary (spec §4.1 "per-facet
// value/count dictionaries"), left in canonical form when the request
// disabled translation (translate=false).
func (s *Service) MetadataSearch(ctx context.Context, req *ParsedRequest) (map[string]interface{}, error) {
	counts, err := s.backend.ExtendedSearch(ctx, req.Search, domain.CanonicalFacets)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"facets": s.renderFacetCounts(req, counts)}, nil
}

// renderFacetCounts translates counts' canonical facet names to the
// flavor's display vocabulary (a no-op when req.Translate is false) and
// flattens each FacetCounts into the `[v0, c0, v1, c1, ...]` wire shape.
func (s *Service) renderFacetCounts(req *ParsedRequest, counts map[string]searchindex.FacetCounts) map[string]interface{} {
	facets := map[string]interface{}{}
	for name, fc := range counts {
		display := name
		if req.Translate {
			if d, ok := req.Lookup.Forward[name]; ok {
				display = d
			}
		}
		pairs := make([]interface{}, 0, len(fc.Values)*2)
		for i := range fc.Values {
			pairs = append(pairs, fc.Values[i], fc.Counts[i])
		}
		facets[display] = pairs
	}
	return facets
}

// searchResultEntry is one `extended-search` search_results element,
// projected from the full document to just its uniq key and fs_type
// (spec §4.1 "search_results (documents projected to {uniq_key, fs_type})").
type searchResultEntry struct {
	UniqKey string `json:"uniq_key"`
	FsType  string `json:"fs_type"`
}

// ExtendedSearch is MetadataSearch plus the total count, search_results
// projected to {uniq_key, fs_type}, facet_mapping (the forward_lookup
// subset covering the faceted names), and primary_facets, per spec §4.1
// "extended-search" (confirmed against the original backends' `solr.py`/
// `search_engine.py` SearchResult construction).
func (s *Service) ExtendedSearch(ctx context.Context, req *ParsedRequest) (map[string]interface{}, error) {
	total, err := s.Count(ctx, req)
	if err != nil {
		return nil, err
	}
	counts, err := s.backend.ExtendedSearch(ctx, req.Search, domain.CanonicalFacets)
	if err != nil {
		return nil, err
	}
	page, err := s.backend.InitStream(ctx, req.Search)
	if err != nil {
		return nil, err
	}

	results := make([]searchResultEntry, 0, len(page.Documents))
	for _, d := range page.Documents {
		results = append(results, searchResultEntry{
			UniqKey: d.Key(req.Search.UniqKey),
			FsType:  d.Facets["fs_type"],
		})
	}

	facetMapping := map[string]string{}
	for name := range counts {
		display := name
		if req.Translate {
			if d, ok := req.Lookup.Forward[name]; ok {
				display = d
			}
		}
		facetMapping[name] = display
	}

	primaryFacets := req.Lookup.Primary
	if req.Translate {
		primaryFacets = req.Lookup.PrimaryFacetsForward()
	}

	return map[string]interface{}{
		"facets":         s.renderFacetCounts(req, counts),
		"total_count":    total,
		"search_results": results,
		"facet_mapping":  facetMapping,
		"primary_facets": primaryFacets,
	}, nil
}

// DataSearch streams `uniq_key\n` lines for every matching document (spec
// §6 "streams uniq_key\n").
func (s *Service) DataSearch(ctx context.Context, req *ParsedRequest, w io.Writer) error {
	return s.streamDocs(ctx, req, func(d domain.Dataset) error {
		_, err := fmt.Fprintf(w, "%s\n", d.Key(req.Search.UniqKey))
		return err
	})
}

// streamDocs drives the InitStream/StreamResponse cursor loop, invoking fn
// once per document until the backend signals exhaustion (spec §4.1
// "Pagination").
func (s *Service) streamDocs(ctx context.Context, req *ParsedRequest, fn func(domain.Dataset) error) error {
	page, err := s.backend.InitStream(ctx, req.Search)
	if err != nil {
		return err
	}
	for {
		for _, d := range page.Documents {
			if err := fn(d); err != nil {
				return err
			}
		}
		if page.Cursor == nil || page.Cursor.Done() {
			return nil
		}
		page, err = s.backend.StreamResponse(ctx, req.Search, page.Cursor)
		if err != nil {
			return err
		}
	}
}

// streamDocsChan pumps every matching document onto a channel, for callers
// (STAC/intake) that consume via a `<-chan domain.Dataset`.
func (s *Service) streamDocsChan(ctx context.Context, req *ParsedRequest) <-chan domain.Dataset {
	out := make(chan domain.Dataset)
	go func() {
		defer close(out)
		_ = s.streamDocs(ctx, req, func(d domain.Dataset) error {
			select {
			case out <- d:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}()
	return out
}

// IntakeCatalogue streams an intake-ESM catalog to w (spec §4.2 "Catalog
// composition"). Per §8 boundary behavior, a zero-result catalog is a 404
// rather than an empty body.
func (s *Service) IntakeCatalogue(ctx context.Context, id string, req *ParsedRequest, w io.Writer) error {
	total, err := s.Count(ctx, req)
	if err != nil {
		return err
	}
	if total == 0 {
		return apperr.NotFound("no documents match this intake catalogue request", nil)
	}
	header := intake.NewHeader(id, req.Lookup, req.Search.UniqKey)
	return intake.WriteCatalog(w, header, req.Lookup, req.Search.UniqKey, s.streamDocsChan(ctx, req))
}

// StacCatalogue streams a zip-packaged STAC catalog to w (spec §4.2, §6
// "streams application/zip").
func (s *Service) StacCatalogue(ctx context.Context, id, description string, req *ParsedRequest, w io.Writer) error {
	total, err := s.Count(ctx, req)
	if err != nil {
		return err
	}
	if total == 0 {
		return apperr.NotFound("no documents match this STAC catalogue request", nil)
	}
	return stac.WriteArchive(w, id, description, s.streamDocsChan(ctx, req), req.Search.UniqKey)
}

// ListDatasets collects every matching document, for callers (the STAC API
// layer) that need full records rather than just uniq keys or streamed
// output.
func (s *Service) ListDatasets(ctx context.Context, req *ParsedRequest) ([]domain.Dataset, error) {
	var docs []domain.Dataset
	err := s.streamDocs(ctx, req, func(d domain.Dataset) error {
		docs = append(docs, d)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// LoadKeys collects every matching document's uniq key, for `GET
// /databrowser/load/{flavour}` (spec §6 "streams zarr URLs"): the caller
// mints one cache token/URL per key via the zarr gateway.
func (s *Service) LoadKeys(ctx context.Context, req *ParsedRequest) ([]string, error) {
	var keys []string
	err := s.streamDocs(ctx, req, func(d domain.Dataset) error {
		keys = append(keys, d.Key(req.Search.UniqKey))
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, apperr.NotFound("no documents match this load request", nil)
	}
	return keys, nil
}
