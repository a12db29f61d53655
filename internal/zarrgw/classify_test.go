package zarrgw

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/freva-org/freva-nextgen-sub000/internal/apperr"
)

func TestClassifyOpenFailure_NotFound(t *testing.T) {
	err := classifyOpenFailure("open /data/missing.nc: no such file or directory")
	ae, ok := apperr.As(err)
	if !assert.True(t, ok) {
		return
	}
	assert.True(t, ae.Context["not_found"].(bool))
	assert.Equal(t, 404, ae.HTTPStatusCode())
}

func TestClassifyOpenFailure_Transient(t *testing.T) {
	err := classifyOpenFailure("unexpected EOF decoding variable ua")
	ae, ok := apperr.As(err)
	if !assert.True(t, ok) {
		return
	}
	assert.False(t, ae.Context["not_found"].(bool))
	assert.Equal(t, 503, ae.HTTPStatusCode())
}
