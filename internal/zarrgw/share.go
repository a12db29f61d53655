package zarrgw

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/freva-org/freva-nextgen-sub000/internal/apperr"
	"github.com/freva-org/freva-nextgen-sub000/internal/auth"
	"github.com/freva-org/freva-nextgen-sub000/internal/docstore"
	"github.com/freva-org/freva-nextgen-sub000/internal/domain"
)

// ShareStore persists pre-signed share records; satisfied by
// internal/docstore in production and a fake in tests.
type ShareStore interface {
	PutShare(ctx context.Context, rec domain.ShareRecord) error
	GetShare(ctx context.Context, id string) (*domain.ShareRecord, error)
}

// PresignOptions configures share minting (spec §4.2 "Pre-signed URL").
type PresignOptions struct {
	Secret     []byte
	MinTTL     time.Duration
	MaxTTL     time.Duration
	PathPrefix string // e.g. "/api/freva-nextgen/data-portal/zarr/"
}

type shareZarrRequest struct {
	Path       string `json:"path"`
	TTLSeconds int    `json:"ttl_seconds"`
}

// ShareZarr implements `POST /share-zarr`: validates the target path, mints
// a token/signature pair, persists the share record, and returns the
// pre-signed URL (spec §4.2 "Pre-signed URL").
func (h *Handlers) ShareZarr(store ShareStore, opts PresignOptions) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req shareZarrRequest
		if err := c.Bind(&req); err != nil {
			return writeAppError(c, apperr.Validation("malformed share request", err))
		}
		if !isAllowedZarrPath(req.Path, opts.PathPrefix) {
			return writeAppError(c, apperr.Validation("path is not a valid zarr endpoint", nil))
		}

		ttl := time.Duration(req.TTLSeconds) * time.Second
		if ttl == 0 {
			ttl = opts.MinTTL
		}
		if ttl < opts.MinTTL || ttl > opts.MaxTTL {
			return writeAppError(c, apperr.Validation("ttl_seconds out of bounds", nil))
		}

		token, sig, expiresAt, err := auth.MintShareToken(opts.Secret, req.Path, ttl, time.Now())
		if err != nil {
			return writeAppError(c, apperr.Unknown("failed to mint share token", err))
		}

		rec := domain.ShareRecord{ID: docstore.HashID(req.Path), Token: token, Signature: sig, ExpiresAt: expiresAt}
		if err := store.PutShare(c.Request().Context(), rec); err != nil {
			return writeAppError(c, apperr.UpstreamUnavailable("failed to persist share record", err))
		}

		return c.JSON(http.StatusOK, map[string]interface{}{
			"url":        opts.buildShareURL(sig, token, req.Path),
			"token":      token,
			"sig":        sig,
			"expires_at": expiresAt,
			"method":     "GET",
		})
	}
}

// ShareGet implements `GET /share/<sig>/<token>.zarr/<key>`: anonymous,
// pre-signed chunk/metadata access (spec §4.2 "Verification on
// /share/<sig>/<token>.zarr/<key>").
func (h *Handlers) ShareGet(store ShareStore, opts PresignOptions) echo.HandlerFunc {
	return func(c echo.Context) error {
		sig := c.Param("sig")
		token := strings.TrimSuffix(c.Param("tokenzarr"), ".zarr")
		ctx := c.Request().Context()

		payload, err := auth.VerifyShareToken(opts.Secret, token, sig, time.Now())
		if err != nil {
			if errors.Is(err, auth.ErrMalformedShareToken) {
				ae := apperr.Validation("malformed share token: "+err.Error(), err)
				return c.JSON(http.StatusBadRequest, ae.ToHTTPResponse())
			}
			return writeAppError(c, apperr.Forbidden("share token rejected: "+err.Error(), err))
		}

		rec, err := store.GetShare(ctx, docstore.HashID(payload.Path))
		if err != nil {
			return writeAppError(c, apperr.UpstreamUnavailable("failed to check share revocation", err))
		}
		if rec == nil {
			return writeAppError(c, apperr.Forbidden("share has been revoked", nil))
		}

		cacheToken, ok := tokenFromURL(payload.Path)
		if !ok {
			return writeAppError(c, apperr.Validation("share payload path is not a valid zarr url", nil))
		}
		return h.serveKey(c, cacheToken, c.Param("*"))
	}
}

// isAllowedZarrPath implements spec §4.2's target validation: the path
// must reference a zarr endpoint under the configured API prefix and must
// not traverse directories.
func isAllowedZarrPath(path, prefix string) bool {
	if strings.Contains(path, "..") {
		return false
	}
	return strings.Contains(path, prefix)
}

func (o PresignOptions) buildShareURL(sig, token, _ string) string {
	return "/share/" + sig + "/" + token + ".zarr"
}
