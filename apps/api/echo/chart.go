package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ahmedtelkodsh/geniussmart/core/analytics"
)

type chartApi struct {
	source      analytics.Source
	comparisons *analytics.Comparisons
	opts        *Options
}

func registerChartAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := chartApi{
		source:      opts.ChartSource,
		comparisons: opts.Comparisons,
		opts:        opts,
	}

	cg := g.Group("/charts", jwt, managerMiddleware())
	cg.GET("", api.list)
	cg.DELETE("/comparisons", api.resetComparisons)
	cg.GET("/:chartId", api.retrieve)

	// comparison mode, per manager
	comp := cg.Group("/:chartId/comparison")
	comp.GET("", api.comparison)
	comp.POST("/toggle", api.toggleComparison)
	comp.PUT("/range", api.setComparisonRange)
	comp.POST("/picker", api.toggleDatePicker)
}

// Handlers

func (api *chartApi) list(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, analytics.Charts)
}

func (api *chartApi) retrieve(ctx echo.Context) error {
	rr := RangeRequest{
		Preset:    ctx.QueryParam("preset"),
		StartDate: ctx.QueryParam("start"),
		EndDate:   ctx.QueryParam("end"),
		Label:     ctx.QueryParam("label"),
	}
	r, err := rr.Range(api.opts.now(), api.opts.Calendar.WeekStart)
	if err != nil {
		return errors.Wrap(err, "resolving date range")
	}

	data, err := api.source.ChartData(ctx.Request().Context(), ctx.Param("chartId"), r)
	if err != nil {
		return errors.Wrap(err, "computing chart")
	}
	return ctx.JSON(http.StatusOK, data)
}

func (api *chartApi) comparison(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	st, err := api.comparisons.State(claims.Subject, ctx.Param("chartId"))
	if err != nil {
		return errors.Wrap(err, "getting comparison state")
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *chartApi) toggleComparison(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	st, err := api.comparisons.Toggle(claims.Subject, ctx.Param("chartId"))
	if err != nil {
		return errors.Wrap(err, "toggling comparison")
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *chartApi) setComparisonRange(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	chartID := ctx.Param("chartId")
	if !analytics.IsChart(chartID) {
		return analytics.ErrUnknownChart
	}

	var rr RangeRequest
	if err := ctx.Bind(&rr); err != nil {
		return errors.Wrap(err, "binding to RangeRequest")
	}
	r, err := rr.Range(api.opts.now(), api.opts.Calendar.WeekStart)
	if err != nil {
		return errors.Wrap(err, "resolving date range")
	}

	st, err := api.comparisons.SetRange(claims.Subject, chartID, r)
	if err != nil {
		return errors.Wrap(err, "setting comparison range")
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *chartApi) toggleDatePicker(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	st, err := api.comparisons.TogglePicker(claims.Subject, ctx.Param("chartId"))
	if err != nil {
		return errors.Wrap(err, "toggling date picker")
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *chartApi) resetComparisons(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	api.comparisons.Reset(claims.Subject)
	return ctx.NoContent(http.StatusNoContent)
}
