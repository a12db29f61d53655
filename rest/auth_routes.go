package rest

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/freva-org/freva-nextgen-sub000/internal/apperr"
	"github.com/freva-org/freva-nextgen-sub000/internal/auth"
	"github.com/freva-org/freva-nextgen-sub000/internal/di"
)

// registerAuthRoutes wires the OIDC relay endpoints plus the two
// token-introspection endpoints this service implements directly rather
// than proxying (spec §6 "Auth").
func registerAuthRoutes(e *echo.Echo, g *echo.Group, c *di.GatewayComponents) {
	proxy := auth.NewProxyHandlers(c.JWKS)

	g.GET("/.well-known/openid-configuration", wrapVoid(proxy.WellKnown))
	e.GET("/.well-known/openid-configuration", wrapVoid(proxy.WellKnown))
	g.GET("/auth/v2/login", wrapErr(proxy.Login))
	g.GET("/auth/v2/callback", wrapErr(proxy.Callback))
	g.POST("/auth/v2/token", wrapErr(proxy.Token))
	g.POST("/auth/v2/device", wrapErr(proxy.Device))
	g.GET("/auth/v2/logout", wrapErr(proxy.Logout))
	g.GET("/auth/v2/userinfo", wrapErr(proxy.Userinfo))

	g.GET("/auth/v2/status", func(ec echo.Context) error {
		claims, caller, err := verifyStatus(ec, c)
		if err != nil {
			return writeAppError(ec, err)
		}
		return ec.JSON(http.StatusOK, map[string]interface{}{
			"is_active": true,
			"username":  caller,
			"claims":    claims.Raw,
		})
	})

	g.GET("/auth/v2/checkuser", func(ec echo.Context) error {
		_, caller, err := verifyStatus(ec, c)
		if err != nil {
			return writeAppError(ec, err)
		}
		return ec.JSON(http.StatusOK, map[string]interface{}{"username": caller})
	})
}

// verifyStatus is the shared bearer-token verification both introspection
// endpoints need, kept distinct from requireAuth since a 401 here is the
// expected response body rather than a middleware short-circuit.
func verifyStatus(ec echo.Context, c *di.GatewayComponents) (*auth.Claims, string, error) {
	header := ec.Request().Header.Get("Authorization")
	tokenStr, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || tokenStr == "" {
		return nil, "", apperr.Unauthenticated("missing bearer token", nil)
	}
	claims, err := auth.VerifyBearerToken(ec.Request().Context(), c.JWKS, tokenStr, c.Config.Auth.ExpectedAudience)
	if err != nil {
		return nil, "", apperr.Unauthenticated("invalid bearer token: "+err.Error(), err)
	}
	username, err := auth.ResolveUsername(ec.Request().Context(), claims, nil)
	if err != nil {
		return nil, "", apperr.Unauthenticated("could not resolve username: "+err.Error(), err)
	}
	return claims, username, nil
}

func wrapVoid(fn func(http.ResponseWriter, *http.Request)) echo.HandlerFunc {
	return func(ec echo.Context) error {
		fn(ec.Response(), ec.Request())
		return nil
	}
}

func wrapErr(fn func(http.ResponseWriter, *http.Request) error) echo.HandlerFunc {
	return func(ec echo.Context) error {
		return fn(ec.Response(), ec.Request())
	}
}
