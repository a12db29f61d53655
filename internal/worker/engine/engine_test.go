package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectEngine(t *testing.T) {
	assert.Equal(t, NetCDF4, DetectEngine("/data/ua_Amon.nc"))
	assert.Equal(t, H5NetCDF, DetectEngine("/data/ua_Amon.h5"))
	assert.Equal(t, Zarr, DetectEngine("/data/ua_Amon.zarr"))
	assert.Equal(t, Rasterio, DetectEngine("/data/dem.tif"))
	assert.Equal(t, NetCDF4, DetectEngine("/data/unknown.ext"))
}

func TestSidecarEngine_Open(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ua_Amon.nc")
	sidecar := `{
		"attrs": {"title": "test dataset"},
		"variables": [
			{"name": "ua", "dims": ["time", "lat", "lon"], "shape": [10, 5, 5], "chunks": [5, 5, 5], "dtype": "<f4", "fill_value": 1e20, "attrs": {"units": "m s-1"}}
		]
	}`
	require.NoError(t, os.WriteFile(path+".altmeta.json", []byte(sidecar), 0o644))

	e := NewSidecarEngine()
	ds, err := e.Open(path)
	require.NoError(t, err)

	assert.Equal(t, path, ds.Path)
	assert.Equal(t, NetCDF4, ds.Engine)
	assert.Equal(t, "test dataset", ds.Attrs["title"])
	v, ok := ds.Variables["ua"]
	require.True(t, ok)
	assert.Equal(t, []int{10, 5, 5}, v.Shape)
	assert.Equal(t, []int{5, 5, 5}, v.Chunks)
	assert.Equal(t, "m s-1", v.Attrs["units"])
}

func TestSidecarEngine_Open_MissingSidecar(t *testing.T) {
	e := NewSidecarEngine()
	_, err := e.Open(filepath.Join(t.TempDir(), "missing.nc"))
	assert.Error(t, err)
}

func TestSidecarEngine_Open_Malformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.nc")
	require.NoError(t, os.WriteFile(path+".altmeta.json", []byte("not json"), 0o644))

	e := NewSidecarEngine()
	_, err := e.Open(path)
	assert.Error(t, err)
}
