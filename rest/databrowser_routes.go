package rest

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/freva-org/freva-nextgen-sub000/internal/apperr"
	"github.com/freva-org/freva-nextgen-sub000/internal/databrowser"
	"github.com/freva-org/freva-nextgen-sub000/internal/di"
	"github.com/freva-org/freva-nextgen-sub000/internal/domain"
)

func registerDatabrowserRoutes(g *echo.Group, c *di.GatewayComponents) {
	g.GET("/overview", func(ec echo.Context) error {
		return ec.JSON(http.StatusOK, databrowser.Overview())
	})

	g.GET("/metadata-search/:flavour/:uniq_key", buildSearchHandler(c, func(svc *databrowser.Service, ec echo.Context, req *databrowser.ParsedRequest) error {
		out, err := svc.MetadataSearch(ec.Request().Context(), req)
		if err != nil {
			return writeAppError(ec, err)
		}
		return ec.JSON(http.StatusOK, out)
	}))

	g.GET("/extended-search/:flavour/:uniq_key", buildSearchHandler(c, func(svc *databrowser.Service, ec echo.Context, req *databrowser.ParsedRequest) error {
		out, err := svc.ExtendedSearch(ec.Request().Context(), req)
		if err != nil {
			return writeAppError(ec, err)
		}
		return ec.JSON(http.StatusOK, out)
	}))

	g.GET("/data-search/:flavour/:uniq_key", buildSearchHandler(c, func(svc *databrowser.Service, ec echo.Context, req *databrowser.ParsedRequest) error {
		ec.Response().Header().Set(echo.HeaderContentType, "text/plain")
		ec.Response().WriteHeader(http.StatusOK)
		if err := svc.DataSearch(ec.Request().Context(), req, ec.Response()); err != nil {
			return writeAppError(ec, err)
		}
		return nil
	}))

	g.GET("/intake-catalogue/:flavour/:uniq_key", buildSearchHandler(c, func(svc *databrowser.Service, ec echo.Context, req *databrowser.ParsedRequest) error {
		ec.Response().Header().Set(echo.HeaderContentType, "application/json")
		ec.Response().WriteHeader(http.StatusOK)
		id := ec.Param("flavour")
		if err := svc.IntakeCatalogue(ec.Request().Context(), id, req, ec.Response()); err != nil {
			return writeAppError(ec, err)
		}
		return nil
	}))

	g.GET("/stac-catalogue/:flavour/:uniq_key", buildSearchHandler(c, func(svc *databrowser.Service, ec echo.Context, req *databrowser.ParsedRequest) error {
		ec.Response().Header().Set(echo.HeaderContentType, "application/zip")
		ec.Response().WriteHeader(http.StatusOK)
		id := ec.Param("flavour")
		if err := svc.StacCatalogue(ec.Request().Context(), id, "", req, ec.Response()); err != nil {
			return writeAppError(ec, err)
		}
		return nil
	}))

	g.GET("/load/:flavour", buildLoadHandler(c), requireAuth(c.JWKS, c.Config.Auth.ExpectedAudience, c.AdminGate))

	g.POST("/userdata", registerUserdataUpsert(c), requireAuth(c.JWKS, c.Config.Auth.ExpectedAudience, c.AdminGate))
	g.DELETE("/userdata", registerUserdataDelete(c), requireAuth(c.JWKS, c.Config.Auth.ExpectedAudience, c.AdminGate))
}

// buildSearchHandler wraps fn with the shared flavor-resolution and
// parameter-parsing pipeline every search endpoint shares (spec §4.1).
func buildSearchHandler(c *di.GatewayComponents, fn func(*databrowser.Service, echo.Context, *databrowser.ParsedRequest) error) echo.HandlerFunc {
	return func(ec echo.Context) error {
		req, err := parseRequest(c, ec)
		if err != nil {
			return writeAppError(ec, err)
		}
		return fn(c.Databrowser, ec, req)
	}
}

func buildLoadHandler(c *di.GatewayComponents) echo.HandlerFunc {
	return func(ec echo.Context) error {
		req, err := parseRequest(c, ec)
		if err != nil {
			return writeAppError(ec, err)
		}
		ctx := ec.Request().Context()
		keys, err := c.Databrowser.LoadKeys(ctx, req)
		if err != nil {
			return writeAppError(ec, err)
		}
		resolver := zarrResolver(c)
		urls, err := c.ZarrHandlers.LoadURLs(ctx, resolver, req.Search.UniqKey, keys)
		if err != nil {
			return writeAppError(ec, err)
		}
		return ec.JSON(http.StatusCreated, map[string]interface{}{"urls": urls})
	}
}

// parseRequest resolves the flavor's translation lookup and builds a
// ParsedRequest from the inbound query string (spec §4.1 full pipeline).
func parseRequest(c *di.GatewayComponents, ec echo.Context) (*databrowser.ParsedRequest, error) {
	flavour := ec.Param("flavour")
	uniqKey := domain.UniqKey(ec.Param("uniq_key"))
	if uniqKey == "" {
		uniqKey = domain.UniqKeyFile
	}

	caller := ""
	if cal := callerFrom(ec); cal != nil {
		caller = cal.Username
	}

	lookup, err := c.Resolver.Resolve(ec.Request().Context(), flavour, caller)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	for k, v := range ec.QueryParams() {
		params[k] = v
	}
	multiVersion := popBool(params, "multi-version")
	translate := popBoolDefault(params, "translate", true)

	return databrowser.BuildRequest(params, lookup, uniqKey, c.Config.Search.BatchSize, c.Config.Search.MaxResults, multiVersion, translate)
}

func popBool(params url.Values, key string) bool {
	return popBoolDefault(params, key, false)
}

// popBoolDefault removes key from params (so it never reaches facet
// validation) and parses it as a bool, falling back to def when absent or
// malformed.
func popBoolDefault(params url.Values, key string, def bool) bool {
	if !params.Has(key) {
		return def
	}
	v := params.Get(key)
	delete(params, key)
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func registerFlavourRoutes(g *echo.Group, c *di.GatewayComponents) {
	g.GET("/flavours", func(ec echo.Context) error {
		flavors, err := c.Stats.ListFlavors(ec.Request().Context())
		if err != nil {
			return writeAppError(ec, err)
		}
		return ec.JSON(http.StatusOK, flavors)
	})

	g.POST("/flavours", func(ec echo.Context) error {
		caller := callerFrom(ec)
		var body domain.CustomFlavor
		if err := ec.Bind(&body); err != nil {
			return writeAppError(ec, apperr.Validation("malformed flavor body", err))
		}
		if err := c.Stats.CreateFlavor(ec.Request().Context(), caller.Username, caller.IsAdmin, body); err != nil {
			return writeAppError(ec, err)
		}
		return ec.NoContent(http.StatusCreated)
	}, requireAuth(c.JWKS, c.Config.Auth.ExpectedAudience, c.AdminGate))

	g.PUT("/flavours/:name", func(ec echo.Context) error {
		caller := callerFrom(ec)
		isGlobal, _ := strconv.ParseBool(ec.QueryParam("is_global"))
		var mapping map[string]string
		if err := ec.Bind(&mapping); err != nil {
			return writeAppError(ec, apperr.Validation("malformed flavor mapping", err))
		}
		if err := c.Stats.UpdateFlavor(ec.Request().Context(), caller.Username, caller.IsAdmin, ec.Param("name"), isGlobal, mapping); err != nil {
			return writeAppError(ec, err)
		}
		return ec.NoContent(http.StatusOK)
	}, requireAuth(c.JWKS, c.Config.Auth.ExpectedAudience, c.AdminGate))

	g.DELETE("/flavours/:name", func(ec echo.Context) error {
		caller := callerFrom(ec)
		isGlobal, _ := strconv.ParseBool(ec.QueryParam("is_global"))
		if err := c.Stats.DeleteFlavor(ec.Request().Context(), caller.Username, caller.IsAdmin, ec.Param("name"), isGlobal); err != nil {
			return writeAppError(ec, err)
		}
		return ec.NoContent(http.StatusOK)
	}, requireAuth(c.JWKS, c.Config.Auth.ExpectedAudience, c.AdminGate))
}
