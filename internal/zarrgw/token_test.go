package zarrgw

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCacheTokenRoundTrip(t *testing.T) {
	path := "/data/cmip6/ua_Amon.nc"
	token := CacheToken(path)

	decoded, err := DecodeToken(token)
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, path, decoded)
}

func TestCacheTokenDeterministic(t *testing.T) {
	path := "/data/cmip6/ua_Amon.nc"
	assert.Equal(t, CacheToken(path), CacheToken(path))
}

func TestDecodeToken_Malformed(t *testing.T) {
	_, err := DecodeToken("not-base64url!!!")
	assert.Error(t, err)
}
