// Package intake streams an intake-ESM catalog for a search result set
// (spec §4.1 "Streaming contract", §4.2 "Catalog composition").
package intake

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/freva-org/freva-nextgen-sub000/internal/domain"
	"github.com/freva-org/freva-nextgen-sub000/internal/translate"
)

// Header is the intake-ESM catalog's leading JSON object, emitted before
// the `catalog_dict` array starts streaming.
type Header struct {
	ESMCatVersion      string            `json:"esmcat_version"`
	Attributes         []Attribute       `json:"attributes"`
	AggregationControl AggregationControl `json:"aggregation_control"`
	ID                 string            `json:"id"`
	Description        string            `json:"description"`
	CatalogFile        string            `json:"catalog_file"`
}

type Attribute struct {
	ColumnName string `json:"column_name"`
}

// AggregationControl names the column intake-ESM aggregates along; spec
// §4.2 pins it to the flavor's translated "variable" facet name.
type AggregationControl struct {
	VariableColumnName string              `json:"variable_column_name"`
	GroupbyAttrs       []string            `json:"groupby_attrs"`
	Aggregations       []map[string]string `json:"aggregations"`
}

// NewHeader builds the catalog header for lookup, projecting the primary
// facets (in display vocabulary) as the catalog's declared attributes.
func NewHeader(id string, lookup *translate.Lookup, uniqKey domain.UniqKey) Header {
	attrs := make([]Attribute, 0, len(lookup.Primary)+1)
	for _, name := range lookup.PrimaryFacetsForward() {
		attrs = append(attrs, Attribute{ColumnName: name})
	}
	attrs = append(attrs, Attribute{ColumnName: string(uniqKey)})

	return Header{
		ESMCatVersion: "0.1.0",
		Attributes:    attrs,
		AggregationControl: AggregationControl{
			VariableColumnName: lookup.Forward["variable"],
			GroupbyAttrs:       lookup.PrimaryFacetsForward(),
			Aggregations: []map[string]string{
				{"type": "union", "attribute_name": lookup.Forward["variable"]},
			},
		},
		ID:          id,
		Description: "freva-nextgen intake-ESM catalog",
		CatalogFile: "",
	}
}

// WriteCatalog streams `{"esmcat_version":..., ..., "catalog_dict": [...]}`
// to w: the header fields first, then each projected document as it arrives
// on docs, without buffering the whole result set in memory (spec §4.1
// "Streaming contract").
func WriteCatalog(w io.Writer, header Header, lookup *translate.Lookup, uniqKey domain.UniqKey, docs <-chan domain.Dataset) error {
	enc := json.NewEncoder(w)

	if _, err := io.WriteString(w, `{"esmcat_version":`); err != nil {
		return err
	}
	if err := enc.Encode(header.ESMCatVersion); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, `,"id":`); err != nil {
		return err
	}
	if err := enc.Encode(header.ID); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, `,"description":`); err != nil {
		return err
	}
	if err := enc.Encode(header.Description); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, `,"attributes":`); err != nil {
		return err
	}
	if err := enc.Encode(header.Attributes); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, `,"aggregation_control":`); err != nil {
		return err
	}
	if err := enc.Encode(header.AggregationControl); err != nil {
		return err
	}
	if _, err := io.WriteString(w, `,"catalog_dict":[`); err != nil {
		return err
	}

	first := true
	for d := range docs {
		if !first {
			if _, err := io.WriteString(w, ","); err != nil {
				return err
			}
		}
		first = false
		if err := enc.Encode(ProjectDocument(d, lookup, uniqKey)); err != nil {
			return fmt.Errorf("failed to encode catalog_dict entry: %w", err)
		}
	}

	_, err := io.WriteString(w, "]}")
	return err
}

// ProjectDocument renders one result document to the canonical facet
// hierarchy in the flavor's display vocabulary, plus its uniq-key column
// (spec §4.2 "project each result document to the canonical facet
// hierarchy").
func ProjectDocument(d domain.Dataset, lookup *translate.Lookup, uniqKey domain.UniqKey) map[string]interface{} {
	out := make(map[string]interface{}, len(d.Facets)+1)
	for k, v := range lookup.TranslateForward(d.Facets) {
		out[k] = v
	}
	out[string(uniqKey)] = d.Key(uniqKey)
	return out
}
