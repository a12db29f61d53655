package rest

import (
	"log/slog"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/freva-org/freva-nextgen-sub000/internal/di"
	customMiddleware "github.com/freva-org/freva-nextgen-sub000/middleware"
)

// RegisterRoutes builds the middleware chain and wires every route category
// against the di container, following the teacher's single-entrypoint
// rest/routes.go layout. CSRF is omitted: this is a stateless bearer-token
// API with no session cookie for CSRF to defend. Route-specific payload
// validation is omitted: every handler already validates its own request
// through internal/query's parameter pipeline, so a second path-string-
// dispatched validation layer would only duplicate it.
func RegisterRoutes(e *echo.Echo, c *di.GatewayComponents, log *slog.Logger) {
	e.Use(customMiddleware.RequestIDMiddleware())
	e.Use(middleware.Recover())
	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE, echo.OPTIONS},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, "Authorization"},
	}))
	e.Use(customMiddleware.DOSProtectionMiddleware(c.Config.RateLimit))
	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: c.Config.Server.ReadTimeout,
		Skipper: func(ec echo.Context) bool {
			return strings.Contains(ec.Path(), "/data-search/") ||
				strings.Contains(ec.Path(), "-catalogue/") ||
				strings.Contains(ec.Path(), "/zarr/")
		},
	}))
	e.Use(customMiddleware.LoggingMiddleware(log))
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(ec echo.Context) bool {
			return strings.Contains(ec.Path(), "/zarr/")
		},
	}))

	prefix := c.Config.Server.PathPrefix
	v2 := e.Group(prefix)
	databrowser := v2.Group("/databrowser")

	registerAuthRoutes(e, v2, c)
	registerDatabrowserRoutes(databrowser, c)
	registerFlavourRoutes(databrowser, c)
	registerZarrRoutes(v2, c)
	registerStacRoutes(v2.Group("/stacapi"), c)

	e.GET("/metrics", echo.WrapHandler(c.Metrics.Handler()))
}
