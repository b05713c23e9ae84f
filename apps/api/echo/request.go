package echoapi

import (
	"bytes"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ahmedtelkodsh/geniussmart/core"
	"github.com/ahmedtelkodsh/geniussmart/core/i18n"
	"github.com/ahmedtelkodsh/geniussmart/core/request"
	exportsvc "github.com/ahmedtelkodsh/geniussmart/services/export"
)

type requestApi struct {
	svc        request.Service
	catalog    *i18n.Catalog
	validate   *validator.Validate
	translator ut.Translator
	opts       *Options
}

func registerRequestAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := requestApi{
		svc:        opts.RequestSvc,
		catalog:    opts.Catalog,
		validate:   opts.Validate,
		translator: opts.Translator,
		opts:       opts,
	}

	rg := g.Group("/requests", jwt)

	// teacher endpoints
	rg.POST("", api.create, teacherMiddleware())
	rg.GET("/mine", api.history, teacherMiddleware())

	// manager endpoints
	rg.GET("", api.buckets, managerMiddleware())
	rg.GET("/export", api.export, managerMiddleware())
	rg.GET("/:id", api.retrieve, managerMiddleware())
	rg.PUT("/:id/decision", api.decide, managerMiddleware())
}

// Handlers

func (api *requestApi) create(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data request.NewRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	req, err := api.svc.Create(ctx.Request().Context(), claims.Session(), claims.Email, data)
	if err != nil {
		return errors.Wrap(err, "creating request")
	}
	return ctx.JSON(http.StatusCreated, req)
}

func (api *requestApi) history(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	reqs, err := api.svc.History(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying request history")
	}
	if reqs == nil {
		reqs = []request.Request{}
	}
	return ctx.JSON(http.StatusOK, reqs)
}

func (api *requestApi) filter(ctx echo.Context) (request.QueryFilter, error) {
	types, err := bindTypes(ctx)
	if err != nil {
		return request.QueryFilter{}, err
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	return request.QueryFilter{
		TeacherID: core.CleanString(ctx.QueryParam("teacherId")),
		Types:     types,
		Orderings: ordering.Orderings,
	}, nil
}

func (api *requestApi) buckets(ctx echo.Context) error {
	filter, err := api.filter(ctx)
	if err != nil {
		return err
	}

	buckets, err := api.svc.Buckets(ctx.Request().Context(), filter, api.opts.now())
	if err != nil {
		return errors.Wrap(err, "bucketing requests")
	}
	return ctx.JSON(http.StatusOK, buckets)
}

func (api *requestApi) retrieve(ctx echo.Context) error {
	req, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding request by ID")
	}
	return ctx.JSON(http.StatusOK, req)
}

func (api *requestApi) decide(ctx echo.Context) error {
	var data request.Decision
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Decision")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	req, err := api.svc.Decide(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "deciding request")
	}
	return ctx.JSON(http.StatusOK, req)
}

func (api *requestApi) export(ctx echo.Context) error {
	format := core.CleanString(ctx.QueryParam("format"), true /* lower */)
	if format == "" {
		format = exportsvc.FormatExcel
	}
	contentType, ok := exportsvc.ContentTypes[format]
	if !ok {
		return core.NewValidationError(nil, core.FieldError{Field: "format", Error: "must be one of: xlsx, pdf"})
	}
	lang := core.CleanString(ctx.QueryParam("lang"), true /* lower */)
	if lang == "" || format == exportsvc.FormatPDF {
		lang = i18n.DefaultLang // PDF fonts are latin only
	}

	filter, err := api.filter(ctx)
	if err != nil {
		return err
	}
	now := api.opts.now()
	buckets, err := api.svc.Buckets(ctx.Request().Context(), filter, now)
	if err != nil {
		return errors.Wrap(err, "bucketing requests")
	}

	report := exportsvc.NewRequestsReport(buckets, api.catalog, lang, now)
	var buf bytes.Buffer
	if err = exportsvc.Write(&buf, format, report); err != nil {
		return errors.Wrap(err, "writing report")
	}

	filename := exportsvc.Filename(now, format)
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return ctx.Blob(http.StatusOK, contentType, buf.Bytes())
}
