package rest

import (
	"net/http"
	"net/url"
	"sort"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/freva-org/freva-nextgen-sub000/internal/apperr"
	"github.com/freva-org/freva-nextgen-sub000/internal/databrowser"
	"github.com/freva-org/freva-nextgen-sub000/internal/di"
	"github.com/freva-org/freva-nextgen-sub000/internal/domain"
	"github.com/freva-org/freva-nextgen-sub000/internal/stac"
)

// stacCollections are the fixed collection ids this minimal STAC API
// exposes, one per flavor (spec §6 "STAC API (minimal)").
var stacCollections = []string{"freva", "cmip6", "cmip5", "cordex", "user"}

const stacDefaultPageSize = 100

func registerStacRoutes(g *echo.Group, c *di.GatewayComponents) {
	g.GET("/", func(ec echo.Context) error {
		return ec.JSON(http.StatusOK, stac.LandingPage{
			Type: "Catalog", StacVersion: "1.0.0", ID: "freva-nextgen",
			Description: "Minimal STAC API over the data browser catalog",
			Links: []stac.Link{
				{Rel: "self", Href: "./", Type: "application/json"},
				{Rel: "conformance", Href: "./conformance", Type: "application/json"},
				{Rel: "data", Href: "./collections", Type: "application/json"},
			},
		})
	})

	g.GET("/conformance", func(ec echo.Context) error {
		return ec.JSON(http.StatusOK, stac.DefaultConformance())
	})

	g.GET("/collections", func(ec echo.Context) error {
		cols := make([]*stac.Collection, 0, len(stacCollections))
		for _, id := range stacCollections {
			col, err := buildCollection(ec, c, id)
			if err != nil {
				return writeAppError(ec, err)
			}
			cols = append(cols, col)
		}
		return ec.JSON(http.StatusOK, map[string]interface{}{"collections": cols})
	})

	g.GET("/collections/:id", func(ec echo.Context) error {
		col, err := buildCollection(ec, c, ec.Param("id"))
		if err != nil {
			return writeAppError(ec, err)
		}
		return ec.JSON(http.StatusOK, col)
	})

	g.GET("/collections/:id/items", func(ec echo.Context) error {
		return listItems(ec, c)
	})

	g.GET("/collections/:id/items/:item_id", func(ec echo.Context) error {
		items, err := fetchItems(ec, c, ec.Param("id"))
		if err != nil {
			return writeAppError(ec, err)
		}
		for _, item := range items {
			if item.ID == ec.Param("item_id") {
				return ec.JSON(http.StatusOK, item)
			}
		}
		return writeAppError(ec, apperr.NotFound("no such item in collection", nil))
	})

	g.GET("/search", func(ec echo.Context) error { return stacSearch(ec, c) })
	g.POST("/search", func(ec echo.Context) error { return stacSearch(ec, c) })
}

// buildCollection runs an unfiltered search over a flavor's catalog to
// accumulate its extent (spec §4.2 "accumulates spatial/temporal extents
// as documents stream").
func buildCollection(ec echo.Context, c *di.GatewayComponents, id string) (*stac.Collection, error) {
	req, err := parseStacRequest(ec, c, id)
	if err != nil {
		return nil, err
	}
	docs, err := c.Databrowser.ListDatasets(ec.Request().Context(), req)
	if err != nil {
		if ae, ok := apperr.As(err); ok && ae.Code == apperr.CodeNotFound {
			docs = nil
		} else {
			return nil, err
		}
	}

	col := stac.NewCollection(id, "freva-nextgen "+id+" collection")
	for _, d := range docs {
		col.Accumulate(d)
	}
	col.Finalize()
	col.Links = append(col.Links, stac.Link{Rel: "items", Href: "./" + id + "/items", Type: "application/json"})
	return col, nil
}

func fetchItems(ec echo.Context, c *di.GatewayComponents, collectionID string) ([]stac.Item, error) {
	req, err := parseStacRequest(ec, c, collectionID)
	if err != nil {
		return nil, err
	}
	docs, err := c.Databrowser.ListDatasets(ec.Request().Context(), req)
	if err != nil {
		if ae, ok := apperr.As(err); ok && ae.Code == apperr.CodeNotFound {
			return nil, nil
		}
		return nil, err
	}

	items := make([]stac.Item, 0, len(docs))
	for _, d := range docs {
		items = append(items, stac.ItemFromDataset(collectionID, d, req.Search.UniqKey))
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

// listItems implements `GET /collections/{id}/items` with the
// `next|prev:<collection_id>:<item_id>` pagination token format (spec §6).
func listItems(ec echo.Context, c *di.GatewayComponents) error {
	collectionID := ec.Param("id")
	items, err := fetchItems(ec, c, collectionID)
	if err != nil {
		return writeAppError(ec, err)
	}

	limit := stacDefaultPageSize
	if raw := ec.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	token, err := stac.DecodeToken(ec.QueryParam("token"), collectionID)
	if err != nil {
		return writeAppError(ec, err)
	}

	start := 0
	if token.ItemID != "" {
		for i, it := range items {
			if it.ID == token.ItemID {
				start = i + 1
				break
			}
		}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	page := items[start:end]

	links := []stac.Link{{Rel: "self", Href: "./items", Type: "application/json"}}
	if end < len(items) {
		next := stac.PageToken{Direction: "next", ItemID: page[len(page)-1].ID}
		links = append(links, stac.Link{Rel: "next", Href: "./items?token=" + next.Encode(collectionID), Type: "application/json"})
	}

	return ec.JSON(http.StatusOK, map[string]interface{}{
		"type":     "FeatureCollection",
		"features": page,
		"links":    links,
	})
}

// stacSearch implements `GET|POST /search`: a thin adapter over the same
// flavor-scoped query pipeline, scanning every configured collection.
func stacSearch(ec echo.Context, c *di.GatewayComponents) error {
	collections := stacCollections
	if raw := ec.QueryParam("collections"); raw != "" {
		collections = []string{raw}
	}

	var all []stac.Item
	for _, id := range collections {
		items, err := fetchItems(ec, c, id)
		if err != nil {
			return writeAppError(ec, err)
		}
		all = append(all, items...)
	}
	return ec.JSON(http.StatusOK, map[string]interface{}{"type": "FeatureCollection", "features": all})
}

func parseStacRequest(ec echo.Context, c *di.GatewayComponents, flavour string) (*databrowser.ParsedRequest, error) {
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
		switch k {
		case "limit", "token", "collections":
			continue
		}
		params[k] = v
	}
	return databrowser.BuildRequest(params, lookup, domain.UniqKeyFile, c.Config.Search.BatchSize, c.Config.Search.MaxResults, false, true)
}
