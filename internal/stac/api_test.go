package stac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageTokenEncodeDecode(t *testing.T) {
	tok := PageToken{Direction: "next", ItemID: "cmip6_ua_198001"}
	raw := tok.Encode("cmip6")

	decoded, err := DecodeToken(raw, "cmip6")
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, tok, decoded)
}

func TestDecodeToken_Empty(t *testing.T) {
	decoded, err := DecodeToken("", "cmip6")
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, PageToken{}, decoded)
}

func TestDecodeToken_WrongCollection(t *testing.T) {
	raw := PageToken{Direction: "next", ItemID: "x"}.Encode("cmip6")
	_, err := DecodeToken(raw, "cmip5")
	assert.Error(t, err)
}

func TestDecodeToken_BadDirection(t *testing.T) {
	_, err := DecodeToken("sideways:cmip6:x", "cmip6")
	assert.Error(t, err)
}

func TestDecodeToken_Malformed(t *testing.T) {
	_, err := DecodeToken("not-enough-parts", "cmip6")
	assert.Error(t, err)
}

func TestDefaultConformance(t *testing.T) {
	conf := DefaultConformance()
	assert.Contains(t, conf.ConformsTo, "https://api.stacspec.org/v1.0.0/core")
}
