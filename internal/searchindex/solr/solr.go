// Package solr implements the Solr search backend: a native cursorMark
// client built directly on net/http, the same hand-rolled-REST-client shape
// the teacher uses for its sibling search-indexer service (no Solr Go
// client appears anywhere in the retrieval pack).
package solr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/freva-org/freva-nextgen-sub000/internal/apperr"
	"github.com/freva-org/freva-nextgen-sub000/internal/domain"
	"github.com/freva-org/freva-nextgen-sub000/internal/searchindex"
)

var ErrIndexUnavailable = errors.New("solr index unavailable")

// Backend implements searchindex.Backend against a Solr core's /select
// endpoint using cursorMark deep pagination.
type Backend struct {
	baseURL    string
	core       string
	httpClient *http.Client
}

func New(baseURL, core string, timeout time.Duration) *Backend {
	return &Backend{
		baseURL:    strings.TrimRight(baseURL, "/"),
		core:       core,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// cursor is the Solr cursorMark pagination state; pagination terminates
// when Next equals Mark (spec §4.1 "Pagination").
type cursor struct {
	Mark string
	Next string
}

func (c *cursor) Done() bool {
	return c.Mark != "" && c.Mark == c.Next
}

func (b *Backend) selectURL(req searchindex.SearchRequest, cursorMark string, rows int) string {
	q := url.Values{}
	q.Set("q", buildQuery(req))
	q.Set("rows", strconv.Itoa(rows))
	q.Set("cursorMark", cursorMark)
	q.Set("sort", "file desc,_version_ asc")
	q.Set("wt", "json")
	return fmt.Sprintf("%s/solr/%s/select?%s", b.baseURL, b.core, q.Encode())
}

// buildQuery assembles the Solr `q` parameter from canonical facet
// constraints, OR-joining positive and negative terms within each key and
// AND-joining across keys.
func buildQuery(req searchindex.SearchRequest) string {
	if len(req.Facets) == 0 && len(req.NotFacets) == 0 && req.Time == nil && req.BBox == nil {
		return "*:*"
	}
	var clauses []string
	for key, values := range req.Facets {
		if len(values) == 0 {
			continue
		}
		clauses = append(clauses, fmt.Sprintf("%s:(%s)", key, strings.Join(values, " OR ")))
	}
	for key, values := range req.NotFacets {
		if len(values) == 0 {
			continue
		}
		clauses = append(clauses, fmt.Sprintf("-%s:(%s)", key, strings.Join(values, " OR ")))
	}
	if req.Time != nil && req.TimeOperator != "" {
		clauses = append(clauses, fmt.Sprintf("{!field f=time op=%s}[%s TO %s]",
			req.TimeOperator, req.Time.Start.Format(time.RFC3339), req.Time.End.Format(time.RFC3339)))
	}
	if req.BBox != nil && req.BBoxOperator != "" {
		clauses = append(clauses, fmt.Sprintf("{!field f=bbox op=%s}ENVELOPE(%g,%g,%g,%g)",
			req.BBoxOperator, req.BBox.MinLon, req.BBox.MaxLon, req.BBox.MaxLat, req.BBox.MinLat))
	}
	if len(clauses) == 0 {
		return "*:*"
	}
	return strings.Join(clauses, " AND ")
}

type selectResponse struct {
	Response struct {
		NumFound int64                    `json:"numFound"`
		Docs     []map[string]interface{} `json:"docs"`
	} `json:"response"`
	NextCursorMark string `json:"nextCursorMark"`
	FacetCounts    struct {
		FacetFields map[string][]interface{} `json:"facet_fields"`
	} `json:"facet_counts"`
}

func (b *Backend) doSelect(ctx context.Context, target string) (*selectResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := b.httpClient.Do(httpReq)
	if err != nil {
		return nil, apperr.UpstreamUnavailable("solr request failed", fmt.Errorf("%w: %v", ErrIndexUnavailable, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.UpstreamUnavailable("failed to read solr response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperr.UpstreamUnavailable(fmt.Sprintf("solr returned status %d", resp.StatusCode), nil)
	}

	var parsed selectResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, apperr.UpstreamUnavailable("malformed solr response", err)
	}
	return &parsed, nil
}

func docsToDatasets(uniqKey domain.UniqKey, docs []map[string]interface{}) []domain.Dataset {
	out := make([]domain.Dataset, 0, len(docs))
	for _, doc := range docs {
		ds := domain.Dataset{Facets: map[string]string{}}
		for k, v := range doc {
			s := fmt.Sprintf("%v", v)
			switch k {
			case string(domain.UniqKeyFile):
				ds.File = s
			case string(domain.UniqKeyURI):
				ds.URI = s
			case "version":
				ds.Version = s
			default:
				ds.Facets[k] = s
			}
		}
		out = append(out, ds)
	}
	return out
}

func (b *Backend) Count(ctx context.Context, req searchindex.SearchRequest) (int64, error) {
	rows := 0
	resp, err := b.doSelect(ctx, b.selectURL(req, "*", rows))
	if err != nil {
		return 0, err
	}
	return resp.Response.NumFound, nil
}

func (b *Backend) InitStream(ctx context.Context, req searchindex.SearchRequest) (searchindex.DocumentPage, error) {
	return b.page(ctx, req, "*")
}

func (b *Backend) StreamResponse(ctx context.Context, req searchindex.SearchRequest, c searchindex.StreamCursor) (searchindex.DocumentPage, error) {
	cur, ok := c.(*cursor)
	if !ok || cur.Done() {
		return searchindex.DocumentPage{}, nil
	}
	return b.page(ctx, req, cur.Next)
}

func (b *Backend) page(ctx context.Context, req searchindex.SearchRequest, mark string) (searchindex.DocumentPage, error) {
	rows := req.BatchSize
	if rows <= 0 {
		rows = 150
	}
	resp, err := b.doSelect(ctx, b.selectURL(req, mark, rows))
	if err != nil {
		return searchindex.DocumentPage{}, err
	}
	return searchindex.DocumentPage{
		Documents: docsToDatasets(req.UniqKey, resp.Response.Docs),
		Cursor:    &cursor{Mark: mark, Next: resp.NextCursorMark},
	}, nil
}

func (b *Backend) ExtendedSearch(ctx context.Context, req searchindex.SearchRequest, facetNames []string) (map[string]searchindex.FacetCounts, error) {
	q := url.Values{}
	q.Set("q", buildQuery(req))
	q.Set("rows", "0")
	q.Set("facet", "true")
	q.Set("wt", "json")
	for _, f := range facetNames {
		q.Add("facet.field", f)
	}
	target := fmt.Sprintf("%s/solr/%s/select?%s", b.baseURL, b.core, q.Encode())

	resp, err := b.doSelect(ctx, target)
	if err != nil {
		return nil, err
	}

	out := make(map[string]searchindex.FacetCounts, len(resp.FacetCounts.FacetFields))
	for field, pairs := range resp.FacetCounts.FacetFields {
		fc := searchindex.FacetCounts{}
		for i := 0; i+1 < len(pairs); i += 2 {
			value, _ := pairs[i].(string)
			count, _ := pairs[i+1].(float64)
			fc.Values = append(fc.Values, value)
			fc.Counts = append(fc.Counts, int64(count))
		}
		out[field] = fc
	}
	return out, nil
}

func (b *Backend) InitIntakeCatalogue(ctx context.Context, req searchindex.SearchRequest) (searchindex.DocumentPage, error) {
	return b.InitStream(ctx, req)
}

func (b *Backend) IntakeCatalogue(ctx context.Context, req searchindex.SearchRequest, c searchindex.StreamCursor) (searchindex.DocumentPage, error) {
	return b.StreamResponse(ctx, req, c)
}

// datasetID mirrors the doc-store's stable id scheme: keyed on whichever
// of file/uri is populated, so re-ingesting the same dataset overwrites
// the existing document (spec §4.6 "stable _id on (file, uri)").
func datasetID(d domain.Dataset) string {
	if d.File != "" {
		return d.File
	}
	return d.URI
}

// UpsertDocument writes one document via Solr's JSON update endpoint,
// committing immediately so the write is visible to subsequent searches.
func (b *Backend) UpsertDocument(ctx context.Context, d domain.Dataset) error {
	doc := map[string]interface{}{"id": datasetID(d)}
	if d.File != "" {
		doc["file"] = d.File
	}
	if d.URI != "" {
		doc["uri"] = d.URI
	}
	for k, v := range d.Facets {
		doc[k] = v
	}

	payload, err := json.Marshal([]map[string]interface{}{doc})
	if err != nil {
		return fmt.Errorf("failed to encode solr update document: %w", err)
	}
	target := fmt.Sprintf("%s/solr/%s/update?commit=true", b.baseURL, b.core)
	return b.doUpdate(ctx, target, payload)
}

// DeleteDocuments issues a delete-by-query against the AND of the given
// facet constraints plus the owning user.
func (b *Backend) DeleteDocuments(ctx context.Context, user string, match map[string]string) (int64, error) {
	clauses := []string{fmt.Sprintf("user:%s", user)}
	for k, v := range match {
		clauses = append(clauses, fmt.Sprintf("%s:%s", k, v))
	}
	deleteBody := map[string]interface{}{"delete": map[string]interface{}{"query": strings.Join(clauses, " AND ")}}
	payload, err := json.Marshal(deleteBody)
	if err != nil {
		return 0, fmt.Errorf("failed to encode solr delete query: %w", err)
	}
	target := fmt.Sprintf("%s/solr/%s/update?commit=true", b.baseURL, b.core)
	if err := b.doUpdate(ctx, target, payload); err != nil {
		return 0, err
	}
	return 0, nil
}

func (b *Backend) doUpdate(ctx context.Context, target string, payload []byte) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(string(payload)))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(httpReq)
	if err != nil {
		return apperr.UpstreamUnavailable("solr update request failed", fmt.Errorf("%w: %v", ErrIndexUnavailable, err))
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return apperr.UpstreamUnavailable(fmt.Sprintf("solr update returned status %d", resp.StatusCode), nil)
	}
	return nil
}

func (b *Backend) ZarrResponse(ctx context.Context, uniqKey domain.UniqKey, key string) (*domain.Dataset, error) {
	req := searchindex.SearchRequest{
		UniqKey: uniqKey,
		Facets:  map[string][]string{string(uniqKey): {key}},
	}
	resp, err := b.doSelect(ctx, b.selectURL(req, "*", 1))
	if err != nil {
		return nil, err
	}
	docs := docsToDatasets(uniqKey, resp.Response.Docs)
	if len(docs) == 0 {
		return nil, apperr.NotFound("dataset not found", nil)
	}
	return &docs[0], nil
}
