package echoapi

import (
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ahmedtelkodsh/geniussmart/core"
	"github.com/ahmedtelkodsh/geniussmart/core/dates"
	"github.com/ahmedtelkodsh/geniussmart/core/request"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

// Bind reads the `ordering` query param, keeping the fields allowed for requests.
func (ord *Ordering) Bind(ctx echo.Context) {
	if val := ctx.QueryParam(orderingParam); val != "" {
		ord.Orderings = core.ParseOrderings(val, request.OrderingFields)
	}
}

// bindTypes reads the repeated `type` query param.
func bindTypes(ctx echo.Context) ([]request.Type, error) {
	var types []request.Type
	for _, val := range ctx.QueryParams()["type"] {
		typ := request.Type(core.CleanString(val))
		if !typ.IsValid() {
			return nil, core.NewValidationError(nil, core.FieldError{Field: "type", Error: "unknown request type: " + strconv.Quote(val)})
		}
		types = append(types, typ)
	}
	return types, nil
}

// RangeRequest selects a date range either by preset or by explicit bounds.
type RangeRequest struct {
	Preset    string `json:"preset"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Label     string `json:"label"`
}

func (rr RangeRequest) IsZero() bool {
	return rr.Preset == "" && rr.StartDate == "" && rr.EndDate == ""
}

// Range resolves the request against now; an empty request yields the week of now.
func (rr RangeRequest) Range(now time.Time, weekStart time.Weekday) (dates.DateRange, error) {
	if rr.Preset != "" {
		r, err := dates.Preset(core.CleanString(rr.Preset, true /* lower */), now, weekStart)
		if err != nil {
			return dates.DateRange{}, core.NewValidationError(nil, core.FieldError{Field: "preset", Error: "must be one of: " + strings.Join(dates.PresetNames(), ", ")})
		}
		return r, nil
	}
	if rr.IsZero() {
		return dates.ThisWeek(now, weekStart), nil
	}

	start, ok := dates.ParseISO(rr.StartDate, now.Location())
	if !ok {
		return dates.DateRange{}, core.NewValidationError(nil, core.FieldError{Field: "startDate", Error: "must be an ISO-8601 date"})
	}
	end, ok := dates.ParseISO(rr.EndDate, now.Location())
	if !ok {
		return dates.DateRange{}, core.NewValidationError(nil, core.FieldError{Field: "endDate", Error: "must be an ISO-8601 date"})
	}
	return dates.NewCustomRange(start, end, core.CleanString(rr.Label))
}
