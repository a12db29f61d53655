// Package userdata implements the user-ingested dataset upsert/delete
// orchestration that dual-writes to the search index and the document
// store (spec §4.6 "POST /userdata", "DELETE /userdata").
package userdata

import (
	"context"
	"strings"

	"github.com/freva-org/freva-nextgen-sub000/internal/domain"
	"github.com/freva-org/freva-nextgen-sub000/internal/query"
)

// IndexWriter is the subset of a search backend's write surface userdata
// needs; kept narrow so it can be satisfied by any backend or a fake.
type IndexWriter interface {
	UpsertDocument(ctx context.Context, d domain.Dataset) error
	DeleteDocuments(ctx context.Context, user string, luceneMatch map[string]string) (int64, error)
}

// DocStore is the document-store half of the dual write.
type DocStore interface {
	UpsertUserData(ctx context.Context, d domain.Dataset) error
	DeleteUserData(ctx context.Context, user string, match map[string]string) (int64, error)
}

// Service implements the `/userdata` endpoints' business logic.
type Service struct {
	index IndexWriter
	docs  DocStore
}

func New(index IndexWriter, docs DocStore) *Service {
	return &Service{index: index, docs: docs}
}

// UserMetadataItem is one entry of a `POST /userdata` request body.
type UserMetadataItem map[string]string

// Upsert merges each item with the shared facets, stamps `user = caller`,
// and writes the resulting dataset to both stores keyed by (file, uri)
// (spec §4.6 "merge facets with the item's own fields ... upsert into the
// index with a stable _id on (file, uri); also mirror to the doc-store").
func (s *Service) Upsert(ctx context.Context, caller string, items []UserMetadataItem, sharedFacets map[string]string) error {
	for _, item := range items {
		merged := make(map[string]string, len(sharedFacets)+len(item))
		for k, v := range sharedFacets {
			merged[k] = v
		}
		for k, v := range item {
			merged[k] = v
		}
		merged["user"] = caller

		d := domain.Dataset{
			File:   merged["file"],
			URI:    merged["uri"],
			Facets: merged,
		}

		if err := s.index.UpsertDocument(ctx, d); err != nil {
			return err
		}
		if err := s.docs.UpsertUserData(ctx, d); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes every user-owned document matching the given key/value
// constraints from both stores. Non-`file` values are lowercased before
// matching; the index side additionally Lucene-escapes every value,
// `file` included (spec §4.6
// "Lowercases non-file values; escapes Lucene specials on the index
// side").
func (s *Service) Delete(ctx context.Context, caller string, match map[string]string) (int64, error) {
	normalized := make(map[string]string, len(match))
	luceneEscaped := make(map[string]string, len(match))
	for k, v := range match {
		if k != "file" {
			v = strings.ToLower(v)
		}
		normalized[k] = v
		luceneEscaped[k] = query.EscapeLucene(v)
	}

	if _, err := s.index.DeleteDocuments(ctx, caller, luceneEscaped); err != nil {
		return 0, err
	}
	return s.docs.DeleteUserData(ctx, caller, normalized)
}
