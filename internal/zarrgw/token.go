// Package zarrgw implements the Zarr Gateway (spec §4.2): cache-token
// identity, the `.zmetadata`/`.zgroup`/`.zattrs`/`.zarray`/chunk HTTP
// handlers, the submit/poll/timeout request lifecycle against the shared
// cache, `/zarr/convert` aggregation requests, pre-signed share URL minting
// and verification, and the status endpoint. Grounded on the teacher's
// rest/ handler shape (one method per route, echo.Context in, error out)
// and on connect/v2/articles/handler.go's pattern of translating a usecase
// error into an HTTP status at the edge.
package zarrgw

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// tokenPayload is the JSON structure base64url-encoded into a cache token
// (spec §4.2 "Identity").
type tokenPayload struct {
	Path string `json:"path"`
}

// CacheToken computes cache_token(p) = base64url(json({"path": p})),
// deterministic and injective in the normalized path (spec §3 invariant iv,
// spec §8 "decode(encode(p)) = p and encode(p) is deterministic").
func CacheToken(path string) string {
	buf, _ := json.Marshal(tokenPayload{Path: path})
	return base64.RawURLEncoding.EncodeToString(buf)
}

// DecodeToken reverses CacheToken, recovering the original path.
func DecodeToken(token string) (string, error) {
	buf, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", fmt.Errorf("malformed cache token: %w", err)
	}
	var p tokenPayload
	if err := json.Unmarshal(buf, &p); err != nil {
		return "", fmt.Errorf("malformed cache token payload: %w", err)
	}
	return p.Path, nil
}
