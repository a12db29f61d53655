package stac

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"

	"github.com/freva-org/freva-nextgen-sub000/internal/domain"
)

// rootCatalog is the top-level `stac-catalog/catalog.json` document (spec
// §6 "STAC: application/zip archive with relative paths
// stac-catalog/catalog.json, stac-catalog/collections/{id}/collection.json,
// stac-catalog/items/{item_id}.json").
type rootCatalog struct {
	Type        string `json:"type"`
	StacVersion string `json:"stac_version"`
	ID          string `json:"id"`
	Description string `json:"description"`
	Links       []Link `json:"links"`
}

// WriteArchive streams documents into a zip archive per spec §6's layout:
// one root catalog.json, one collection.json, and one item JSON per
// document. Finalizes the collection's extent once the stream is
// exhausted, matching spec §4.2's accumulate-then-finalize sequence.
func WriteArchive(w io.Writer, collectionID, description string, docs <-chan domain.Dataset, uniqKey domain.UniqKey) error {
	zw := zip.NewWriter(w)
	defer zw.Close()

	collection := NewCollection(collectionID, description)

	for d := range docs {
		collection.Accumulate(d)
		item := ItemFromDataset(collectionID, d, uniqKey)

		f, err := zw.Create(fmt.Sprintf("stac-catalog/items/%s.json", item.ID))
		if err != nil {
			return fmt.Errorf("failed to create item entry: %w", err)
		}
		if err := json.NewEncoder(f).Encode(item); err != nil {
			return fmt.Errorf("failed to write item %q: %w", item.ID, err)
		}
		collection.Links = append(collection.Links, Link{
			Rel: "item", Href: fmt.Sprintf("../../items/%s.json", item.ID), Type: "application/json",
		})
	}
	collection.Finalize()

	root := rootCatalog{
		Type: "Catalog", StacVersion: "1.0.0", ID: collectionID, Description: description,
		Links: []Link{{Rel: "child", Href: fmt.Sprintf("./collections/%s/collection.json", collectionID)}},
	}
	rf, err := zw.Create("stac-catalog/catalog.json")
	if err != nil {
		return fmt.Errorf("failed to create root catalog entry: %w", err)
	}
	if err := json.NewEncoder(rf).Encode(root); err != nil {
		return fmt.Errorf("failed to write root catalog: %w", err)
	}

	cf, err := zw.Create(fmt.Sprintf("stac-catalog/collections/%s/collection.json", collectionID))
	if err != nil {
		return fmt.Errorf("failed to create collection entry: %w", err)
	}
	if err := json.NewEncoder(cf).Encode(collection); err != nil {
		return fmt.Errorf("failed to write collection: %w", err)
	}

	return nil
}
