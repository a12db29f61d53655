package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMintAndVerifyShareToken(t *testing.T) {
	secret := []byte("test-secret")
	now := time.Now()

	token, sig, exp, err := MintShareToken(secret, "/api/freva-nextgen/zarr/abc.zarr", time.Minute, now)
	if !assert.NoError(t, err) {
		return
	}
	assert.Greater(t, exp, now.Unix())

	payload, err := VerifyShareToken(secret, token, sig, now.Add(time.Second))
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, "/api/freva-nextgen/zarr/abc.zarr", payload.Path)
}

func TestVerifyShareToken_Expired(t *testing.T) {
	secret := []byte("test-secret")
	now := time.Now()
	token, sig, _, err := MintShareToken(secret, "/x", time.Second, now)
	if !assert.NoError(t, err) {
		return
	}
	_, err = VerifyShareToken(secret, token, sig, now.Add(time.Hour))
	assert.Error(t, err)
}

func TestVerifyShareToken_BadSignature(t *testing.T) {
	secret := []byte("test-secret")
	now := time.Now()
	token, _, _, err := MintShareToken(secret, "/x", time.Minute, now)
	if !assert.NoError(t, err) {
		return
	}
	_, err = VerifyShareToken(secret, token, "bogus-sig", now)
	assert.Error(t, err)
}

func TestVerifyShareToken_WrongSecret(t *testing.T) {
	now := time.Now()
	token, sig, _, err := MintShareToken([]byte("secret-a"), "/x", time.Minute, now)
	if !assert.NoError(t, err) {
		return
	}
	_, err = VerifyShareToken([]byte("secret-b"), token, sig, now)
	assert.Error(t, err)
}

func TestVerifyShareToken_MalformedToken(t *testing.T) {
	_, err := VerifyShareToken([]byte("secret"), "not base64url!!", "sig", time.Now())
	assert.ErrorIs(t, err, ErrMalformedShareToken)
}

func TestVerifyShareToken_BadSignatureIsNotMalformed(t *testing.T) {
	secret := []byte("test-secret")
	now := time.Now()
	token, _, _, err := MintShareToken(secret, "/x", time.Minute, now)
	if !assert.NoError(t, err) {
		return
	}
	_, err = VerifyShareToken(secret, token, "c2ln", now)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrMalformedShareToken))
}

func FuzzVerifyShareToken(f *testing.F) {
	f.Add("dG9rZW4", "c2ln")
	f.Add("", "")
	f.Fuzz(func(t *testing.T, token, sig string) {
		assert.NotPanics(t, func() {
			_, _ = VerifyShareToken([]byte("secret"), token, sig, time.Now())
		})
	})
}
