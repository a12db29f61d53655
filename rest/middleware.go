// Package rest registers the HTTP surface (spec §6 "External interfaces")
// against an echo.Echo using the di container's wired components, in the
// teacher's rest/routes.go layout: one RegisterRoutes entrypoint, the
// middleware chain built once, then per-category registerXRoutes helpers.
package rest

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/freva-org/freva-nextgen-sub000/internal/apperr"
	"github.com/freva-org/freva-nextgen-sub000/internal/auth"
)

type callerKey struct{}

// Caller is the resolved bearer-token principal, stashed in the request
// context by requireAuth.
type Caller struct {
	Username string
	Claims   map[string]interface{}
	IsAdmin  bool
}

func callerFrom(c echo.Context) *Caller {
	v, _ := c.Request().Context().Value(callerKey{}).(*Caller)
	return v
}

// requireAuth verifies the bearer token against the configured JWKS and
// stores the resolved caller on the request context (spec §4.5 "Bearer
// token auth").
func requireAuth(verifier *auth.JWKSVerifier, expectedAudience string, adminGate auth.ClaimGate) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			tokenStr, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenStr == "" {
				return writeAppError(c, apperr.Unauthenticated("missing bearer token", nil))
			}

			claims, err := auth.VerifyBearerToken(c.Request().Context(), verifier, tokenStr, expectedAudience)
			if err != nil {
				return writeAppError(c, apperr.Unauthenticated("invalid bearer token: "+err.Error(), err))
			}

			username, err := auth.ResolveUsername(c.Request().Context(), claims, nil)
			if err != nil {
				return writeAppError(c, apperr.Unauthenticated("could not resolve username: "+err.Error(), err))
			}

			caller := &Caller{
				Username: username,
				Claims:   claims.Raw,
				IsAdmin:  auth.IsAdmin(claims.Raw, adminGate),
			}
			ctx := context.WithValue(c.Request().Context(), callerKey{}, caller)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

func writeAppError(c echo.Context, err error) error {
	ae, ok := apperr.As(err)
	if !ok {
		return c.JSON(500, map[string]string{"detail": err.Error()})
	}
	return c.JSON(ae.HTTPStatusCode(), ae.ToHTTPResponse())
}
