package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ahmedtelkodsh/geniussmart/core"
	"github.com/ahmedtelkodsh/geniussmart/core/dates"
)

type calendarApi struct {
	calendar dates.Calendar
	opts     *Options
}

func registerCalendarAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := calendarApi{calendar: opts.Calendar, opts: opts}

	cg := g.Group("/calendar", jwt)
	cg.GET("/ranges", api.presets)
	cg.GET("/ranges/:preset", api.preset)
	cg.GET("/month", api.month)
	cg.GET("/days", api.days)
}

type MonthResponse struct {
	Year  int           `json:"year"`
	Month time.Month    `json:"month"`
	Weeks [][]dates.Day `json:"weeks"`
}

type DaysResponse struct {
	Days        []dates.Day `json:"days"`
	WorkingDays int         `json:"workingDays"`
}

// Handlers

func (api *calendarApi) presets(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, dates.PresetNames())
}

func (api *calendarApi) preset(ctx echo.Context) error {
	r, err := dates.Preset(ctx.Param("preset"), api.opts.now(), api.calendar.WeekStart)
	if err != nil {
		return errors.Wrap(err, "resolving preset")
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *calendarApi) month(ctx echo.Context) error {
	today := api.opts.now()
	year, month := today.Year(), today.Month()

	if val := ctx.QueryParam("year"); val != "" {
		y, err := strconv.Atoi(val)
		if err != nil || y < 1 || y > 9999 {
			return core.NewValidationError(nil, core.FieldError{Field: "year", Error: "must be a valid year"})
		}
		year = y
	}
	if val := ctx.QueryParam("month"); val != "" {
		m, err := strconv.Atoi(val)
		if err != nil || m < 1 || m > 12 {
			return core.NewValidationError(nil, core.FieldError{Field: "month", Error: "must be between 1 and 12"})
		}
		month = time.Month(m)
	}

	return ctx.JSON(http.StatusOK, MonthResponse{
		Year:  year,
		Month: month,
		Weeks: api.calendar.MonthGrid(year, month, today),
	})
}

func (api *calendarApi) days(ctx echo.Context) error {
	today := api.opts.now()
	start, ok := dates.ParseISO(ctx.QueryParam("start"), today.Location())
	if !ok {
		return core.NewValidationError(nil, core.FieldError{Field: "start", Error: "must be an ISO-8601 date"})
	}
	end, ok := dates.ParseISO(ctx.QueryParam("end"), today.Location())
	if !ok {
		return core.NewValidationError(nil, core.FieldError{Field: "end", Error: "must be an ISO-8601 date"})
	}

	var holidays []time.Time
	for _, val := range ctx.QueryParams()["holiday"] {
		h, ok := dates.ParseISO(val, today.Location())
		if !ok {
			return core.NewValidationError(nil, core.FieldError{Field: "holiday", Error: "must be an ISO-8601 date"})
		}
		holidays = append(holidays, h)
	}

	days, err := api.calendar.Days(start, end, today)
	if err != nil {
		return errors.Wrap(err, "listing days")
	}
	working, err := api.calendar.WorkingDays(start, end, holidays...)
	if err != nil {
		return errors.Wrap(err, "counting working days")
	}
	return ctx.JSON(http.StatusOK, DaysResponse{Days: days, WorkingDays: working})
}
