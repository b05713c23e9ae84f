package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ahmedtelkodsh/geniussmart/core"
	"github.com/ahmedtelkodsh/geniussmart/core/i18n"
)

type i18nApi struct {
	catalog *i18n.Catalog
}

func registerI18nAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := i18nApi{catalog: opts.Catalog}

	ig := g.Group("/i18n", jwt)
	ig.GET("", api.languages)
	ig.GET("/:lang/:key", api.lookup)
}

type TranslationResponse struct {
	Lang  string    `json:"lang"`
	Key   string    `json:"key"`
	Kind  i18n.Kind `json:"kind"`
	Value string    `json:"value"`
}

// Handlers

func (api *i18nApi) languages(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.catalog.Languages())
}

// lookup renders a text as is and a formatter with the `count` query param (0 by default).
func (api *i18nApi) lookup(ctx echo.Context) error {
	var count int
	if val := ctx.QueryParam("count"); val != "" {
		n, err := strconv.Atoi(val)
		if err != nil {
			return core.NewValidationError(nil, core.FieldError{Field: "count", Error: "must be an integer"})
		}
		count = n
	}

	lang, key := ctx.Param("lang"), ctx.Param("key")
	v := api.catalog.Lookup(lang, key)
	return ctx.JSON(http.StatusOK, TranslationResponse{
		Lang:  lang,
		Key:   key,
		Kind:  v.Kind,
		Value: v.String(count),
	})
}
