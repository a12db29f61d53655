// Package searchindex defines the three-backend search abstraction (spec
// §4.1 "Backend abstraction", §9 "Class polymorphism": modeled as a tagged
// interface rather than class inheritance) and its Solr/RDBMS/Search-Engine
// implementations.
package searchindex

import (
	"context"

	"github.com/freva-org/freva-nextgen-sub000/internal/domain"
)

// SearchRequest is the backend-agnostic query built from validated,
// canonical-vocabulary facet constraints.
type SearchRequest struct {
	UniqKey      domain.UniqKey
	Facets       map[string][]string // canonical key -> positive raw values (already negation-split)
	NotFacets    map[string][]string // canonical key -> negative raw values
	Time         *domain.TimeRange
	TimeOperator string // Within | Intersects | Contains
	BBox         *domain.BBox
	BBoxOperator string
	BatchSize    int
	MaxResults   int
}

// FacetCounts is one facet's value/count pairs, in `{facets: {k: [v0, c0,
// v1, c1, ...]}}` alternating order once rendered, held here as parallel
// slices for backend-agnostic construction.
type FacetCounts struct {
	Values []string
	Counts []int64
}

// StreamCursor is an opaque, backend-specific pagination cursor: a Solr
// cursorMark, an RDBMS last-seen id, or an OpenSearch search_after tuple.
type StreamCursor interface {
	Done() bool
}

// DocumentPage is one page of a streamed search.
type DocumentPage struct {
	Documents []domain.Dataset
	Cursor    StreamCursor
}

// Backend is the interface every search backend implements, named after
// the source system's methods per spec §9: init_intake_catalogue,
// init_stream, extended_search, stream_response, intake_catalogue,
// zarr_response.
type Backend interface {
	// Count returns the total number of matching documents.
	Count(ctx context.Context, req SearchRequest) (int64, error)

	// InitStream begins a data-search stream, returning the first page and
	// a cursor to continue from.
	InitStream(ctx context.Context, req SearchRequest) (DocumentPage, error)

	// StreamResponse fetches the next page given a prior cursor.
	StreamResponse(ctx context.Context, req SearchRequest, cursor StreamCursor) (DocumentPage, error)

	// ExtendedSearch returns facet counts for metadata-search/extended-search.
	ExtendedSearch(ctx context.Context, req SearchRequest, facetNames []string) (map[string]FacetCounts, error)

	// InitIntakeCatalogue begins an intake-ESM catalog_dict stream.
	InitIntakeCatalogue(ctx context.Context, req SearchRequest) (DocumentPage, error)

	// IntakeCatalogue fetches the next page of an intake catalog stream.
	IntakeCatalogue(ctx context.Context, req SearchRequest, cursor StreamCursor) (DocumentPage, error)

	// ZarrResponse resolves a single document by its uniq key, used when
	// the zarr gateway needs the backing path for a cache token.
	ZarrResponse(ctx context.Context, uniqKey domain.UniqKey, key string) (*domain.Dataset, error)

	// UpsertDocument writes or overwrites a user-ingested document, keyed
	// stably on (file, uri) (spec §4.6 "POST /userdata").
	UpsertDocument(ctx context.Context, d domain.Dataset) error

	// DeleteDocuments removes every document owned by user matching the
	// (already Lucene-escaped) facet constraints, returning the count
	// removed (spec §4.6 "DELETE /userdata").
	DeleteDocuments(ctx context.Context, user string, match map[string]string) (int64, error)
}
