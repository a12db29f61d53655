package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFacetValue(t *testing.T) {
	tests := []struct {
		in         string
		wantValue  string
		wantNegate bool
	}{
		{"!cmip6", "cmip6", true},
		{"-cmip6", "cmip6", true},
		{"not cmip6", "cmip6", true},
		{"NOT cmip6", "cmip6", true},
		{"cmip6", "cmip6", false},
	}
	for _, tt := range tests {
		term := ParseFacetValue(tt.in)
		assert.Equal(t, tt.wantValue, term.Value)
		assert.Equal(t, tt.wantNegate, term.Negate)
	}
}

func TestEscapeLucene(t *testing.T) {
	assert.Equal(t, `a\+b`, EscapeLucene("a+b"))
	assert.Equal(t, `\(a\)`, EscapeLucene("(a)"))
	assert.Equal(t, "plain", EscapeLucene("plain"))
}

func TestParseFacetValues_KeyNegationFlips(t *testing.T) {
	pos, neg := ParseFacetValues([]string{"cmip6", "!era5"}, false)
	assert.Equal(t, []string{"cmip6"}, pos)
	assert.Equal(t, []string{"era5"}, neg)

	pos, neg = ParseFacetValues([]string{"cmip6", "!era5"}, true)
	assert.Equal(t, []string{"era5"}, pos)
	assert.Equal(t, []string{"cmip6"}, neg)
}

func FuzzEscapeLucene(f *testing.F) {
	f.Add("normal")
	f.Add("a+b-c&&d||e!f(g)h{i}j[k]l^m~n:o/p")
	f.Add("")
	f.Fuzz(func(t *testing.T, s string) {
		assert.NotPanics(t, func() {
			EscapeLucene(s)
		})
	})
}
