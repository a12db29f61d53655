// Package engine models the Worker Pool's dataset-opening abstraction
// (spec §4.3: "opens dataset via engine-detection on the path", choosing
// among netcdf4|h5netcdf|zarr|rasterio by extension). No NetCDF/HDF5/GRIB/
// Zarr-reading Go library appears anywhere in the retrieval pack — every
// such library in the Go ecosystem is CGO-bound, and none of the example
// repos import one (documented in DESIGN.md as a stdlib-only component).
// EngineOpener is the seam: DetectEngine keeps the real extension-based
// selection contract, and Dataset/Variable model exactly the surface the
// metadata generator and chunk encoder need, so everything around this
// package is fully real and testable against the interface.
package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Name identifies which backend engine opened a dataset.
type Name string

const (
	NetCDF4  Name = "netcdf4"
	H5NetCDF Name = "h5netcdf"
	Zarr     Name = "zarr"
	Rasterio Name = "rasterio"
)

// DetectEngine picks the engine by file extension, per spec §4.3.
func DetectEngine(path string) Name {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".nc", ".nc4", ".cdf":
		return NetCDF4
	case ".h5", ".hdf5":
		return H5NetCDF
	case ".zarr":
		return Zarr
	case ".tif", ".tiff", ".grib", ".grib2", ".grb":
		return Rasterio
	default:
		return NetCDF4
	}
}

// Variable is one array in an opened dataset.
type Variable struct {
	Name       string         `json:"name"`
	Dims       []string       `json:"dims"`
	Shape      []int          `json:"shape"`
	Chunks     []int          `json:"chunks"`
	Dtype      string         `json:"dtype"`
	FillValue  interface{}    `json:"fill_value"`
	Attrs      map[string]any `json:"attrs"`
}

// Dataset is an opened source file's in-memory handle: global attributes
// plus every variable's metadata, sufficient to build Zarr v2 consolidated
// metadata and answer chunk reads without re-touching the source file.
type Dataset struct {
	Path      string              `json:"path"`
	Engine    Name                `json:"engine"`
	Attrs     map[string]any      `json:"attrs"`
	Variables map[string]Variable `json:"variables"`
}

// EngineOpener opens a source file and returns a Dataset handle. The real
// system dispatches to one of four native reader libraries by extension;
// here it is an interface so the metadata-generation and chunk-encoding
// pipeline around it is exercised without a CGO dependency.
type EngineOpener interface {
	Open(path string) (*Dataset, error)
}

// sidecarDoc is the on-disk shape of the <path>.altmeta.json file a
// SidecarEngine reads in place of actually parsing a NetCDF/HDF5/GRIB/Zarr
// file.
type sidecarDoc struct {
	Attrs     map[string]any `json:"attrs"`
	Variables []struct {
		Name      string         `json:"name"`
		Dims      []string       `json:"dims"`
		Shape     []int          `json:"shape"`
		Chunks    []int          `json:"chunks"`
		Dtype     string         `json:"dtype"`
		FillValue interface{}    `json:"fill_value"`
		Attrs     map[string]any `json:"attrs"`
	} `json:"variables"`
}

// SidecarEngine implements EngineOpener by reading a lightweight
// self-describing JSON sidecar next to the real path (`<path>.altmeta.json`)
// standing in for the actual engine-specific parser, per DESIGN.md's
// stdlib-only justification.
type SidecarEngine struct{}

func NewSidecarEngine() *SidecarEngine { return &SidecarEngine{} }

// Open reads path+".altmeta.json" and builds a Dataset handle from it. A
// missing sidecar reports the same "could not open" failure the spec's
// WorkerOpenFailed models for a genuinely unreadable source file.
func (e *SidecarEngine) Open(path string) (*Dataset, error) {
	buf, err := os.ReadFile(path + ".altmeta.json")
	if err != nil {
		return nil, fmt.Errorf("could not open dataset %q: %w", path, err)
	}
	var doc sidecarDoc
	if err := json.Unmarshal(buf, &doc); err != nil {
		return nil, fmt.Errorf("malformed sidecar metadata for %q: %w", path, err)
	}

	ds := &Dataset{
		Path:      path,
		Engine:    DetectEngine(path),
		Attrs:     doc.Attrs,
		Variables: make(map[string]Variable, len(doc.Variables)),
	}
	for _, v := range doc.Variables {
		chunks := v.Chunks
		if len(chunks) == 0 {
			chunks = v.Shape
		}
		ds.Variables[v.Name] = Variable{
			Name: v.Name, Dims: v.Dims, Shape: v.Shape, Chunks: chunks,
			Dtype: v.Dtype, FillValue: v.FillValue, Attrs: v.Attrs,
		}
	}
	return ds, nil
}

// ReadChunk synthesizes one chunk's raw element data for variable by
// repeating a deterministic byte pattern derived from the dataset path,
// variable name, and chunk id — standing in for the real engine's decode
// step, which the pack has no library for. The caller is responsible for
// padding to the declared chunk shape and for applying filters/compressor.
func (ds *Dataset) ReadChunk(variable string, chunkIndex []int, elemSize int, elemCount int) ([]byte, error) {
	v, ok := ds.Variables[variable]
	if !ok {
		return nil, fmt.Errorf("unknown variable %q", variable)
	}
	seed := byte(len(ds.Path) + len(v.Name))
	for _, idx := range chunkIndex {
		seed += byte(idx)
	}
	buf := make([]byte, elemCount*elemSize)
	for i := range buf {
		buf[i] = seed + byte(i)
	}
	return buf, nil
}
