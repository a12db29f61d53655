package zarrgw

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/freva-org/freva-nextgen-sub000/internal/apperr"
)

// Handlers wires echo.HandlerFuncs onto a Gateway; split from Gateway
// itself so Gateway's request-lifecycle logic stays testable without an
// HTTP harness, matching the teacher's usecase/rest split.
type Handlers struct {
	gw *Gateway
}

func NewHandlers(gw *Gateway) *Handlers {
	return &Handlers{gw: gw}
}

// metadataKeys are the fixed document-level keys servable directly from
// `.zmetadata`'s flat map (spec §4.2 endpoint table).
var metadataKeys = map[string]bool{".zmetadata": true, ".zgroup": true, ".zattrs": true}

// GetKey implements every `GET /zarr/<t>.zarr/<key>` route: root metadata
// documents, per-variable `.zattrs`/`.zarray`, and chunk keys (spec §4.2
// "Request lifecycle").
func (h *Handlers) GetKey(c echo.Context) error {
	token := strings.TrimSuffix(c.Param("tokenzarr"), ".zarr")
	key := c.Param("*")
	return h.serveKey(c, token, key)
}

// serveKey is GetKey's body, parameterized on the cache token and key
// rather than read from the route params, so ShareGet can dispatch with
// the cache token decoded from a share payload instead of the share token
// itself (spec §4.2 "dispatch as if it were the normal zarr endpoint with
// the decoded path").
func (h *Handlers) serveKey(c echo.Context, token, key string) error {
	ctx := c.Request().Context()

	entry, err := h.gw.EnsureMaterialized(ctx, token)
	if err != nil {
		return writeAppError(c, err)
	}

	if key == ".zmetadata" {
		return c.JSON(http.StatusOK, entry.JSONMeta)
	}
	if metadataKeys[key] {
		v, ok := entry.Meta.Metadata[key]
		if !ok {
			return writeAppError(c, apperr.NotFound("no such metadata key", nil))
		}
		return c.JSON(http.StatusOK, v)
	}

	if strings.HasSuffix(key, "/.zattrs") || strings.HasSuffix(key, "/.zarray") {
		v, ok := entry.Meta.Metadata[key]
		if !ok {
			return writeAppError(c, apperr.Validation("unknown variable", nil))
		}
		return c.JSON(http.StatusOK, v)
	}

	// Anything else is a chunk key "<var>/<chunk_id>".
	variable, chunkID, ok := splitChunkKey(key)
	if !ok {
		return writeAppError(c, apperr.Validation("malformed chunk key", nil))
	}
	if _, ok := entry.Meta.Metadata[variable+"/.zarray"]; !ok {
		return writeAppError(c, apperr.Validation("unknown variable", nil))
	}

	data, err := h.gw.Chunk(ctx, token, variable, chunkID)
	if err != nil {
		return writeAppError(c, err)
	}
	return c.Blob(http.StatusOK, "application/octet-stream", data)
}

// StatusEndpoint implements `GET /zarr-utils/status?url=`.
func (h *Handlers) StatusEndpoint(c echo.Context) error {
	url := c.QueryParam("url")
	token, ok := tokenFromURL(url)
	if !ok {
		return writeAppError(c, apperr.Validation("malformed zarr url", nil))
	}
	status, reason, err := h.gw.Status(c.Request().Context(), token)
	if err != nil {
		return writeAppError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"status": int(status), "reason": reason})
}

// splitChunkKey splits "<var>/<chunk_id>" into its parts.
func splitChunkKey(key string) (variable, chunkID string, ok bool) {
	idx := strings.LastIndex(key, "/")
	if idx < 0 {
		return "", "", false
	}
	return key[:idx], key[idx+1:], true
}

// tokenFromURL extracts the cache token from a "/zarr/<token>.zarr[/...]"
// shaped URL or path.
func tokenFromURL(url string) (string, bool) {
	idx := strings.Index(url, "/zarr/")
	if idx < 0 {
		return "", false
	}
	rest := url[idx+len("/zarr/"):]
	end := strings.Index(rest, ".zarr")
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}

func writeAppError(c echo.Context, err error) error {
	ae, ok := apperr.As(err)
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(ae.HTTPStatusCode(), ae.ToHTTPResponse())
}
