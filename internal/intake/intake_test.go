package intake

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freva-org/freva-nextgen-sub000/internal/domain"
	"github.com/freva-org/freva-nextgen-sub000/internal/translate"
)

func TestNewHeader(t *testing.T) {
	lookup := translate.BuiltinLookup("freva")
	h := NewHeader("cmip6", lookup, domain.UniqKeyFile)

	assert.Equal(t, "cmip6", h.ID)
	assert.Equal(t, "0.1.0", h.ESMCatVersion)
	assert.NotEmpty(t, h.Attributes)
	assert.Equal(t, lookup.Forward["variable"], h.AggregationControl.VariableColumnName)
}

func TestProjectDocument(t *testing.T) {
	lookup := translate.BuiltinLookup("freva")
	d := domain.Dataset{File: "/data/ua_Amon.nc", Facets: map[string]string{"variable": "ua"}}

	out := ProjectDocument(d, lookup, domain.UniqKeyFile)
	assert.Equal(t, "/data/ua_Amon.nc", out[string(domain.UniqKeyFile)])
	assert.Equal(t, "ua", out[lookup.Forward["variable"]])
}

func TestWriteCatalog_StreamsEveryDocument(t *testing.T) {
	lookup := translate.BuiltinLookup("freva")
	header := NewHeader("cmip6", lookup, domain.UniqKeyFile)

	docs := make(chan domain.Dataset, 2)
	docs <- domain.Dataset{File: "/data/a.nc", Facets: map[string]string{"variable": "ua"}}
	docs <- domain.Dataset{File: "/data/b.nc", Facets: map[string]string{"variable": "va"}}
	close(docs)

	var buf bytes.Buffer
	require.NoError(t, WriteCatalog(&buf, header, lookup, domain.UniqKeyFile, docs))

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))

	catalog, ok := parsed["catalog_dict"].([]interface{})
	require.True(t, ok)
	assert.Len(t, catalog, 2)
	assert.Equal(t, "cmip6", parsed["id"])
}

func TestWriteCatalog_EmptyStream(t *testing.T) {
	lookup := translate.BuiltinLookup("freva")
	header := NewHeader("cmip6", lookup, domain.UniqKeyFile)

	docs := make(chan domain.Dataset)
	close(docs)

	var buf bytes.Buffer
	require.NoError(t, WriteCatalog(&buf, header, lookup, domain.UniqKeyFile, docs))

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))
	catalog, ok := parsed["catalog_dict"].([]interface{})
	require.True(t, ok)
	assert.Empty(t, catalog)
}
