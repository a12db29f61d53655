package rest

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/freva-org/freva-nextgen-sub000/internal/apperr"
	"github.com/freva-org/freva-nextgen-sub000/internal/di"
	"github.com/freva-org/freva-nextgen-sub000/internal/userdata"
)

type userdataUpsertRequest struct {
	UserMetadata []userdata.UserMetadataItem `json:"user_metadata"`
	Facets       map[string]string           `json:"facets"`
}

type userdataDeleteRequest struct {
	Facets map[string]string `json:"facets"`
}

func registerUserdataUpsert(c *di.GatewayComponents) echo.HandlerFunc {
	return func(ec echo.Context) error {
		var body userdataUpsertRequest
		if err := ec.Bind(&body); err != nil {
			return writeAppError(ec, apperr.Validation("malformed userdata body", err))
		}
		caller := callerFrom(ec)
		if err := c.UserData.Upsert(ec.Request().Context(), caller.Username, body.UserMetadata, body.Facets); err != nil {
			return writeAppError(ec, err)
		}
		return ec.NoContent(http.StatusCreated)
	}
}

func registerUserdataDelete(c *di.GatewayComponents) echo.HandlerFunc {
	return func(ec echo.Context) error {
		var body userdataDeleteRequest
		if err := ec.Bind(&body); err != nil {
			return writeAppError(ec, apperr.Validation("malformed userdata delete body", err))
		}
		caller := callerFrom(ec)
		n, err := c.UserData.Delete(ec.Request().Context(), caller.Username, body.Facets)
		if err != nil {
			return writeAppError(ec, err)
		}
		return ec.JSON(http.StatusOK, map[string]int64{"deleted": n})
	}
}
