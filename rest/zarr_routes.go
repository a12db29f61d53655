package rest

import (
	"github.com/labstack/echo/v4"

	"github.com/freva-org/freva-nextgen-sub000/internal/di"
	"github.com/freva-org/freva-nextgen-sub000/internal/zarrgw"
)

// registerZarrRoutes wires the Zarr gateway surface under the same
// PathPrefix the Gateway itself stamps into every minted URL (zarrgw.
// Gateway.ZarrURL), so published URLs resolve back to these routes.
func registerZarrRoutes(g *echo.Group, c *di.GatewayComponents) {
	shapes := zarrgw.NewCacheShape(c.Zarr)
	presign := zarrgw.PresignOptions{
		Secret:     []byte(c.Config.Auth.PresignSecret),
		MinTTL:     c.Config.Auth.PresignMinTTL,
		MaxTTL:     c.Config.Auth.PresignMaxTTL,
		PathPrefix: c.Config.Server.PathPrefix + "/zarr/",
	}

	// Every zarr endpoint requires a bearer token except the pre-signed
	// share routes, which carry their own HMAC-based authorization
	// (spec §4.5 "all zarr endpoints (except share URLs) require a valid
	// Bearer token").
	auth := requireAuth(c.JWKS, c.Config.Auth.ExpectedAudience, c.AdminGate)

	g.GET("/zarr/:tokenzarr", c.ZarrHandlers.GetKey, auth)
	g.GET("/zarr/:tokenzarr/*", c.ZarrHandlers.GetKey, auth)
	g.GET("/zarr-utils/status", c.ZarrHandlers.StatusEndpoint, auth)
	g.POST("/zarr/convert", c.ZarrHandlers.Convert(shapes), auth)
	g.POST("/share-zarr", c.ZarrHandlers.ShareZarr(c.DocStore, presign), auth)
	g.GET("/share/:sig/:tokenzarr", c.ZarrHandlers.ShareGet(c.DocStore, presign))
	g.GET("/share/:sig/:tokenzarr/*", c.ZarrHandlers.ShareGet(c.DocStore, presign))
}

func zarrResolver(c *di.GatewayComponents) zarrgw.BackendResolver {
	return zarrgw.BackendResolver{Backend: c.SearchBackend}
}
