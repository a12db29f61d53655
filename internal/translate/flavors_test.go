package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuiltinLookup_RoundTrip(t *testing.T) {
	for _, name := range []string{"freva", "cmip6", "cmip5", "cordex", "user"} {
		t.Run(name, func(t *testing.T) {
			l := BuiltinLookup(name)
			if !assert.NotNil(t, l) {
				return
			}
			for canonical, display := range l.Forward {
				assert.Equal(t, canonical, l.Backward[display],
					"backward_lookup[forward_lookup[k]] must equal k for %q", canonical)
			}
		})
	}
}

func TestBuiltinLookup_Unknown(t *testing.T) {
	assert.Nil(t, BuiltinLookup("not-a-flavor"))
}

func TestLookup_TranslateForwardBackward(t *testing.T) {
	l := BuiltinLookup("cmip6")
	canonical := map[string]string{"project": "CMIP6", "model": "MPI-ESM"}
	display := l.TranslateForward(canonical)
	assert.Equal(t, "CMIP6", display["mip_era"])
	assert.Equal(t, "MPI-ESM", display["source_id"])

	back := l.TranslateBackward(display)
	assert.Equal(t, canonical, back)
}

func TestLookup_PassthroughUnknownKey(t *testing.T) {
	l := BuiltinLookup("freva")
	out := l.TranslateForward(map[string]string{"zarr_stream": "true"})
	assert.Equal(t, "true", out["zarr_stream"])
}

func TestCordexLookup_PrimaryFacetsIncludeRCM(t *testing.T) {
	l := BuiltinLookup("cordex")
	primary := l.PrimaryFacetsForward()
	assert.Contains(t, primary, "rcm_name")
	assert.Contains(t, primary, "driving_model")
	assert.Contains(t, primary, "rcm_version")
}
