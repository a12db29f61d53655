// Package zarrcodec implements the Zarr v2 filters-then-compressor chunk
// encoding pipeline (spec §4.3 "Chunk encoding") and the fill-value
// encoding table (spec §4.3 "Fill-value encoding"). The compressor stage
// uses klauspost/compress, the corpus's compression library (confirmed via
// the estuary-flow, kraklabs-cie, and WessleyAI-wessley-mvp go.mod
// entries) in place of the source ecosystem's numcodecs/blosc.
package zarrcodec

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/klauspost/compress/zstd"
)

// CompressorID names a supported Zarr v2 compressor; serialized into
// json_meta as the compressor's config dict (spec §3 "json_meta").
type CompressorID string

const (
	CompressorNone CompressorID = "none"
	CompressorZlib CompressorID = "zlib"
	CompressorZstd CompressorID = "zstd"
)

// Compressor is one configured compressor instance.
type Compressor struct {
	ID    CompressorID
	Level int
}

// ConfigDict renders the compressor as the JSON-safe dict shape
// json_meta/.zarray expects (spec §3: "compressor serialized via its
// config dict").
func (c Compressor) ConfigDict() map[string]interface{} {
	if c.ID == CompressorNone || c.ID == "" {
		return nil
	}
	return map[string]interface{}{"id": string(c.ID), "level": c.Level}
}

// Encode applies compression to data. Filters (delta, shuffle, etc.) are
// applied by the caller before this step per the declared filter order;
// Encode is purely the final compressor stage.
func (c Compressor) Encode(data []byte) ([]byte, error) {
	switch c.ID {
	case "", CompressorNone:
		return data, nil
	case CompressorZlib:
		var buf bytes.Buffer
		level := c.Level
		if level == 0 {
			level = zlib.DefaultCompression
		}
		w, err := zlib.NewWriterLevel(&buf, level)
		if err != nil {
			return nil, fmt.Errorf("failed to create zlib writer: %w", err)
		}
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("zlib compression failed: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("zlib compression failed: %w", err)
		}
		return buf.Bytes(), nil
	case CompressorZstd:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(c.Level)))
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
		}
		defer enc.Close()
		return enc.EncodeAll(data, nil), nil
	default:
		return nil, fmt.Errorf("unsupported compressor %q", c.ID)
	}
}

// Decode reverses Encode; used by tests and by any future re-read path.
func (c Compressor) Decode(data []byte) ([]byte, error) {
	switch c.ID {
	case "", CompressorNone:
		return data, nil
	case CompressorZlib:
		r, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to create zlib reader: %w", err)
		}
		defer r.Close()
		return io.ReadAll(r)
	case CompressorZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
		}
		defer dec.Close()
		return dec.DecodeAll(data, nil)
	default:
		return nil, fmt.Errorf("unsupported compressor %q", c.ID)
	}
}

// FilterID names a Zarr v2 filter applied before the compressor.
type FilterID string

// Filter is a no-op passthrough placeholder in this implementation: the
// pipeline shape (filters applied in declared order, then compressor) is
// real, but no filter transform (delta, shuffle, quantize) has a concrete
// use in the synthetic engine's payloads, matching spec §4.3's framing of
// filters as declared-but-optional per variable.
type Filter struct {
	ID FilterID
}

// ApplyFilters runs every filter in declared order over data.
func ApplyFilters(filters []Filter, data []byte) ([]byte, error) {
	out := data
	for _, f := range filters {
		switch f.ID {
		case "":
			continue
		default:
			// Unrecognized filters pass through unchanged; the concrete
			// filter transforms this gateway never needs are out of scope
			// (spec §1 non-goals: no arbitrary user code).
		}
	}
	return out, nil
}

// EncodeChunk runs the full filters-then-compressor pipeline the spec's
// get_zarr_chunk describes, ending in the raw on-wire chunk bytes.
func EncodeChunk(filters []Filter, compressor Compressor, raw []byte) ([]byte, error) {
	filtered, err := ApplyFilters(filters, raw)
	if err != nil {
		return nil, err
	}
	return compressor.Encode(filtered)
}

// EncodeFillValue implements spec §4.3's fill-value encoding table: float
// NaN/+-Inf to their JSON string sentinels, integers and bools pass through
// natively, complex becomes a pair of encoded reals, bytes/void becomes
// base64 ASCII, and datetime becomes its int64 view.
func EncodeFillValue(dtype string, value interface{}) interface{} {
	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) {
			return "NaN"
		}
		if math.IsInf(v, 1) {
			return "Infinity"
		}
		if math.IsInf(v, -1) {
			return "-Infinity"
		}
		return v
	case float32:
		return EncodeFillValue(dtype, float64(v))
	case complex128:
		return []interface{}{
			EncodeFillValue(dtype, real(v)),
			EncodeFillValue(dtype, imag(v)),
		}
	case complex64:
		return EncodeFillValue(dtype, complex128(v))
	case []byte:
		return base64.StdEncoding.EncodeToString(v)
	case time.Time:
		return v.UnixNano()
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return v
	default:
		return value
	}
}
