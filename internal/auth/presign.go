package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrMalformedShareToken distinguishes an undecodable token/signature/
// payload (caller should reject 400) from a rejection of an otherwise
// well-formed token: bad signature, expiry, or revocation (403).
var ErrMalformedShareToken = errors.New("malformed share token")

// SharePayload is the JSON structure base64url-encoded into a pre-signed
// URL's token segment.
type SharePayload struct {
	Path string `json:"path"`
	Exp  int64  `json:"exp"`
}

// MintShareToken builds the token/signature pair for a pre-signed zarr
// path, valid until now+ttl. Signing input is the token payload bytes
// (spec §4.2 "Pre-signed URL").
func MintShareToken(secret []byte, path string, ttl time.Duration, now time.Time) (token, sig string, expiresAt int64, err error) {
	exp := now.Add(ttl).Unix()
	payload, err := json.Marshal(SharePayload{Path: path, Exp: exp})
	if err != nil {
		return "", "", 0, fmt.Errorf("failed to marshal share payload: %w", err)
	}
	token = base64.RawURLEncoding.EncodeToString(payload)
	sig = signToken(secret, token)
	return token, sig, exp, nil
}

func signToken(secret []byte, token string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(token))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// VerifyShareToken decodes token and checks the signature and expiry. The
// caller is still responsible for checking doc-store revocation (spec §4.2
// "reject 403 if no matching doc-store record").
func VerifyShareToken(secret []byte, token, sig string, now time.Time) (*SharePayload, error) {
	payloadBytes, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed token: %v", ErrMalformedShareToken, err)
	}

	expectedSig := signToken(secret, token)
	sigBytes, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed signature: %v", ErrMalformedShareToken, err)
	}
	expectedSigBytes, _ := base64.RawURLEncoding.DecodeString(expectedSig)
	if subtle.ConstantTimeCompare(sigBytes, expectedSigBytes) != 1 {
		return nil, fmt.Errorf("signature mismatch")
	}

	var payload SharePayload
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		return nil, fmt.Errorf("%w: malformed payload: %v", ErrMalformedShareToken, err)
	}
	if now.Unix() >= payload.Exp {
		return nil, fmt.Errorf("token expired")
	}
	return &payload, nil
}
