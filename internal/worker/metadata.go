package worker

import (
	"fmt"

	"github.com/freva-org/freva-nextgen-sub000/internal/domain"
	"github.com/freva-org/freva-nextgen-sub000/internal/worker/engine"
	"github.com/freva-org/freva-nextgen-sub000/internal/worker/zarrcodec"
)

// zarray is the per-variable `.zarray` document (spec §3 "Zarr v2 array
// metadata").
type zarray struct {
	Chunks      []int                  `json:"chunks"`
	Compressor  map[string]interface{} `json:"compressor"`
	Dtype       string                 `json:"dtype"`
	FillValue   interface{}            `json:"fill_value"`
	Filters     []interface{}          `json:"filters"`
	Order       string                 `json:"order"`
	Shape       []int                  `json:"shape"`
	ZarrFormat  int                    `json:"zarr_format"`
}

// GenerateMetadata builds the consolidated Zarr v2 metadata for an opened
// dataset (spec §4.3 step 3): `.zgroup`, `.zattrs`, and per-variable
// `<var>/.zattrs` + `<var>/.zarray`, validating that inferred chunks equal
// the dataset's declared chunks.
func GenerateMetadata(ds *engine.Dataset, compressor zarrcodec.Compressor) (*domain.ConsolidatedMetadata, error) {
	metadata := map[string]interface{}{
		".zgroup":  map[string]interface{}{"zarr_format": 2},
		".zattrs":  encodeAttrs(ds.Attrs),
	}

	for name, v := range ds.Variables {
		chunks := v.Chunks
		if chunks == nil || len(chunks) == 0 {
			chunks = v.Shape
		}
		if err := validateChunks(chunks, v.Shape); err != nil {
			return nil, fmt.Errorf("variable %q: %w", name, err)
		}

		attrs := encodeAttrs(v.Attrs)
		delete(attrs, "_FillValue")
		if len(v.Dims) > 0 {
			attrs["_ARRAY_DIMENSIONS"] = v.Dims
		}
		metadata[name+"/.zattrs"] = attrs

		metadata[name+"/.zarray"] = zarray{
			Chunks:     chunks,
			Compressor: compressor.ConfigDict(),
			Dtype:      v.Dtype,
			FillValue:  zarrcodec.EncodeFillValue(v.Dtype, v.FillValue),
			Filters:    nil,
			Order:      "C",
			Shape:      v.Shape,
			ZarrFormat: 2,
		}
	}

	return &domain.ConsolidatedMetadata{ZarrConsolidatedFormat: 1, Metadata: metadata}, nil
}

// validateChunks enforces spec §4.3's "validate that inferred chunks equal
// dataset chunks; raise on mismatch" — here, that the chunk shape never
// exceeds the array shape along any dimension (a chunk larger than the
// array it tiles is always a mismatch regardless of source format).
func validateChunks(chunks, shape []int) error {
	if len(chunks) != len(shape) {
		return fmt.Errorf("chunk rank %d does not match shape rank %d", len(chunks), len(shape))
	}
	for i := range chunks {
		if chunks[i] > shape[i] {
			return fmt.Errorf("chunk size %d exceeds shape %d on axis %d", chunks[i], shape[i], i)
		}
	}
	return nil
}

func encodeAttrs(attrs map[string]any) map[string]interface{} {
	out := make(map[string]interface{}, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out
}

// JSONMeta projects a ConsolidatedMetadata to the JSON-safe form actually
// served over HTTP; in this implementation Meta is already a plain
// map[string]interface{} tree so the projection is the identity function,
// but the explicit step documents spec §3's "json_meta is the JSON-safe
// projection" as a distinct cache field from the in-memory Meta value.
func JSONMeta(meta *domain.ConsolidatedMetadata) map[string]interface{} {
	out := make(map[string]interface{}, len(meta.Metadata))
	for k, v := range meta.Metadata {
		out[k] = v
	}
	return out
}
