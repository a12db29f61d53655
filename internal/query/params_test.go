package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		in         string
		wantKey    string
		wantNegate bool
	}{
		{"Project_not_", "project", true},
		{"PROJECT", "project", false},
		{"time_select", "time_select", false},
	}
	for _, tt := range tests {
		key, neg := NormalizeKey(tt.in)
		assert.Equal(t, tt.wantKey, key)
		assert.Equal(t, tt.wantNegate, neg)
	}
}

func TestValidateParams(t *testing.T) {
	accepted := CanonicalFacetSet()

	bad := ValidateParams(map[string][]string{"activity_": {"cmip"}}, accepted, false)
	assert.Equal(t, "activity_", bad)

	ok := ValidateParams(map[string][]string{"project": {"cmip"}, "time": {"2000"}}, accepted, false)
	assert.Equal(t, "", ok)

	assert.Equal(t, "version", ValidateParams(map[string][]string{"version": {"v1"}}, accepted, false))
	assert.Equal(t, "", ValidateParams(map[string][]string{"version": {"v1"}}, accepted, true))
}

func FuzzValidateParams(f *testing.F) {
	f.Add("project")
	f.Add("project_not_")
	f.Add("'; DROP TABLE files; --")
	f.Add("")
	f.Add("time_select")
	f.Add("проект")

	accepted := CanonicalFacetSet()
	f.Fuzz(func(t *testing.T, key string) {
		assert.NotPanics(t, func() {
			ValidateParams(map[string][]string{key: {"x"}}, accepted, true)
		})
	})
}
