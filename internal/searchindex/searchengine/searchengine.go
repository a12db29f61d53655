// Package searchengine implements the OpenSearch-shaped search backend: a
// net/http client issuing `_search` queries with `search_after` deep
// pagination, the same hand-rolled-REST-client shape the teacher uses for
// its sibling search-indexer service (no OpenSearch/Elasticsearch Go client
// appears anywhere in the retrieval pack).
package searchengine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/freva-org/freva-nextgen-sub000/internal/apperr"
	"github.com/freva-org/freva-nextgen-sub000/internal/domain"
	"github.com/freva-org/freva-nextgen-sub000/internal/searchindex"
)

// Backend implements searchindex.Backend against an OpenSearch/Elasticsearch
// index's `_search` endpoint using search_after pagination.
type Backend struct {
	baseURL    string
	index      string
	httpClient *http.Client
}

func New(baseURL, index string, timeout time.Duration) *Backend {
	return &Backend{
		baseURL:    strings.TrimRight(baseURL, "/"),
		index:      index,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// searchAfterCursor carries the sort-key tuple of the last document seen, as
// required by OpenSearch's search_after pagination.
type searchAfterCursor struct {
	sortValues []interface{}
	done       bool
}

func (c *searchAfterCursor) Done() bool { return c.done }

type boolQuery struct {
	Must    []map[string]interface{} `json:"must,omitempty"`
	MustNot []map[string]interface{} `json:"must_not,omitempty"`
}

func buildQuery(req searchindex.SearchRequest) map[string]interface{} {
	var must, mustNot []map[string]interface{}

	for key, values := range req.Facets {
		if len(values) == 0 {
			continue
		}
		must = append(must, map[string]interface{}{
			"terms": map[string]interface{}{key: values},
		})
	}
	for key, values := range req.NotFacets {
		if len(values) == 0 {
			continue
		}
		mustNot = append(mustNot, map[string]interface{}{
			"terms": map[string]interface{}{key: values},
		})
	}
	if req.Time != nil {
		rangeOp := "gte"
		switch req.TimeOperator {
		case "Contains":
			rangeOp = "gte"
		}
		must = append(must, map[string]interface{}{
			"range": map[string]interface{}{
				"time": map[string]interface{}{
					rangeOp: req.Time.Start.Format(time.RFC3339),
					"lte":   req.Time.End.Format(time.RFC3339),
				},
			},
		})
	}
	if req.BBox != nil {
		must = append(must, map[string]interface{}{
			"geo_bounding_box": map[string]interface{}{
				"bbox": map[string]interface{}{
					"top_left":     map[string]float64{"lat": req.BBox.MaxLat, "lon": req.BBox.MinLon},
					"bottom_right": map[string]float64{"lat": req.BBox.MinLat, "lon": req.BBox.MaxLon},
				},
			},
		})
	}

	if len(must) == 0 && len(mustNot) == 0 {
		return map[string]interface{}{"match_all": map[string]interface{}{}}
	}
	return map[string]interface{}{"bool": boolQuery{Must: must, MustNot: mustNot}}
}

type searchBody struct {
	Query       map[string]interface{}           `json:"query"`
	Size        int                              `json:"size"`
	Sort        []map[string]interface{}         `json:"sort"`
	SearchAfter []interface{}                    `json:"search_after,omitempty"`
	Aggs        map[string]map[string]interface{} `json:"aggs,omitempty"`
}

type hit struct {
	Source map[string]interface{} `json:"_source"`
	Sort   []interface{}          `json:"sort"`
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []hit `json:"hits"`
	} `json:"hits"`
	Aggregations map[string]struct {
		Buckets []struct {
			Key      interface{} `json:"key"`
			DocCount int64       `json:"doc_count"`
		} `json:"buckets"`
	} `json:"aggregations"`
}

func (b *Backend) doSearch(ctx context.Context, body searchBody) (*searchResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode search body: %w", err)
	}

	target := fmt.Sprintf("%s/%s/_search", b.baseURL, b.index)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(httpReq)
	if err != nil {
		return nil, apperr.UpstreamUnavailable("search-engine request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.UpstreamUnavailable("failed to read search-engine response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperr.UpstreamUnavailable(fmt.Sprintf("search-engine returned status %d", resp.StatusCode), nil)
	}

	var parsed searchResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, apperr.UpstreamUnavailable("malformed search-engine response", err)
	}
	return &parsed, nil
}

func hitsToDatasets(uniqKey domain.UniqKey, hits []hit) []domain.Dataset {
	out := make([]domain.Dataset, 0, len(hits))
	for _, h := range hits {
		ds := domain.Dataset{Facets: map[string]string{}}
		for k, v := range h.Source {
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

func defaultSort() []map[string]interface{} {
	return []map[string]interface{}{
		{"file": map[string]interface{}{"order": "asc"}},
		{"_id": map[string]interface{}{"order": "asc"}},
	}
}

func (b *Backend) Count(ctx context.Context, req searchindex.SearchRequest) (int64, error) {
	resp, err := b.doSearch(ctx, searchBody{Query: buildQuery(req), Size: 0, Sort: defaultSort()})
	if err != nil {
		return 0, err
	}
	return resp.Hits.Total.Value, nil
}

func (b *Backend) page(ctx context.Context, req searchindex.SearchRequest, searchAfter []interface{}) (searchindex.DocumentPage, error) {
	size := req.BatchSize
	if size <= 0 {
		size = 150
	}
	resp, err := b.doSearch(ctx, searchBody{
		Query:       buildQuery(req),
		Size:        size,
		Sort:        defaultSort(),
		SearchAfter: searchAfter,
	})
	if err != nil {
		return searchindex.DocumentPage{}, err
	}

	done := len(resp.Hits.Hits) == 0 || len(resp.Hits.Hits) < size
	var next []interface{}
	if !done {
		next = resp.Hits.Hits[len(resp.Hits.Hits)-1].Sort
	}
	return searchindex.DocumentPage{
		Documents: hitsToDatasets(req.UniqKey, resp.Hits.Hits),
		Cursor:    &searchAfterCursor{sortValues: next, done: done},
	}, nil
}

func (b *Backend) InitStream(ctx context.Context, req searchindex.SearchRequest) (searchindex.DocumentPage, error) {
	return b.page(ctx, req, nil)
}

func (b *Backend) StreamResponse(ctx context.Context, req searchindex.SearchRequest, c searchindex.StreamCursor) (searchindex.DocumentPage, error) {
	cur, ok := c.(*searchAfterCursor)
	if !ok || cur.done {
		return searchindex.DocumentPage{}, nil
	}
	return b.page(ctx, req, cur.sortValues)
}

func (b *Backend) ExtendedSearch(ctx context.Context, req searchindex.SearchRequest, facetNames []string) (map[string]searchindex.FacetCounts, error) {
	aggs := make(map[string]map[string]interface{}, len(facetNames))
	for _, f := range facetNames {
		aggs[f] = map[string]interface{}{"terms": map[string]interface{}{"field": f, "size": 1000}}
	}
	resp, err := b.doSearch(ctx, searchBody{Query: buildQuery(req), Size: 0, Sort: defaultSort(), Aggs: aggs})
	if err != nil {
		return nil, err
	}

	out := make(map[string]searchindex.FacetCounts, len(resp.Aggregations))
	for field, agg := range resp.Aggregations {
		fc := searchindex.FacetCounts{}
		for _, bucket := range agg.Buckets {
			fc.Values = append(fc.Values, fmt.Sprintf("%v", bucket.Key))
			fc.Counts = append(fc.Counts, bucket.DocCount)
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

// datasetID mirrors the doc-store's stable id scheme (spec §4.6 "stable
// _id on (file, uri)").
func datasetID(d domain.Dataset) string {
	if d.File != "" {
		return d.File
	}
	return d.URI
}

// UpsertDocument writes one document via the index's document-update API,
// keyed by the stable dataset id so re-ingesting overwrites in place.
func (b *Backend) UpsertDocument(ctx context.Context, d domain.Dataset) error {
	doc := map[string]interface{}{}
	if d.File != "" {
		doc["file"] = d.File
	}
	if d.URI != "" {
		doc["uri"] = d.URI
	}
	for k, v := range d.Facets {
		doc[k] = v
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode search-engine document: %w", err)
	}

	target := fmt.Sprintf("%s/%s/_doc/%s", b.baseURL, b.index, datasetID(d))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut, target, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := b.httpClient.Do(httpReq)
	if err != nil {
		return apperr.UpstreamUnavailable("search-engine upsert request failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return apperr.UpstreamUnavailable(fmt.Sprintf("search-engine upsert returned status %d", resp.StatusCode), nil)
	}
	return nil
}

// DeleteDocuments issues a delete-by-query against the AND of the given
// facet term constraints plus the owning user.
func (b *Backend) DeleteDocuments(ctx context.Context, user string, match map[string]string) (int64, error) {
	must := []map[string]interface{}{{"term": map[string]interface{}{"user": user}}}
	for k, v := range match {
		must = append(must, map[string]interface{}{"term": map[string]interface{}{k: v}})
	}
	body := map[string]interface{}{"query": map[string]interface{}{"bool": map[string]interface{}{"must": must}}}
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("failed to encode search-engine delete query: %w", err)
	}

	target := fmt.Sprintf("%s/%s/_delete_by_query", b.baseURL, b.index)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := b.httpClient.Do(httpReq)
	if err != nil {
		return 0, apperr.UpstreamUnavailable("search-engine delete request failed", err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, apperr.UpstreamUnavailable("failed to read search-engine delete response", err)
	}
	if resp.StatusCode >= 300 {
		return 0, apperr.UpstreamUnavailable(fmt.Sprintf("search-engine delete returned status %d", resp.StatusCode), nil)
	}

	var parsed struct {
		Deleted int64 `json:"deleted"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return 0, apperr.UpstreamUnavailable("malformed search-engine delete response", err)
	}
	return parsed.Deleted, nil
}

func (b *Backend) ZarrResponse(ctx context.Context, uniqKey domain.UniqKey, key string) (*domain.Dataset, error) {
	req := searchindex.SearchRequest{
		UniqKey: uniqKey,
		Facets:  map[string][]string{string(uniqKey): {key}},
	}
	resp, err := b.doSearch(ctx, searchBody{Query: buildQuery(req), Size: 1, Sort: defaultSort()})
	if err != nil {
		return nil, err
	}
	docs := hitsToDatasets(uniqKey, resp.Hits.Hits)
	if len(docs) == 0 {
		return nil, apperr.NotFound("dataset not found", nil)
	}
	return &docs[0], nil
}
