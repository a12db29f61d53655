package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseBBox(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"full globe", "-180,180,-90,90", false},
		{"empty", "", false},
		{"lon out of range", "-181,180,-90,90", true},
		{"lat out of range", "-180,180,-91,90", true},
		{"wrong arity", "-180,180,-90", true},
		{"not numeric", "a,b,c,d", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bb, err := ParseBBox(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			if tt.raw != "" {
				assert.NotNil(t, bb)
			}
		})
	}
}
