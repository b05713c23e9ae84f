// Package analytics computes the manager dashboard charts and drives their comparison mode.
package analytics

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/ahmedtelkodsh/geniussmart/core/comparison"
	"github.com/ahmedtelkodsh/geniussmart/core/dates"
	"github.com/ahmedtelkodsh/geniussmart/core/request"
)

// Charts
const (
	ChartRequestsByType   = "requests-by-type"
	ChartRequestsByDay    = "requests-by-day"
	ChartRequestsByResult = "requests-by-result"
)

var (
	Charts = []string{ChartRequestsByType, ChartRequestsByDay, ChartRequestsByResult}

	// errors
	ErrUnknownChart = errors.New("unknown chart")
)

func IsChart(chartID string) bool {
	for _, id := range Charts {
		if id == chartID {
			return true
		}
	}
	return false
}

type (
	Point struct {
		Label string  `json:"label"`
		Value float64 `json:"value"`
	}

	ChartData struct {
		ChartID string          `json:"chartId"`
		Range   dates.DateRange `json:"range"`
		Points  []Point         `json:"points"`
	}

	// Source computes a chart over a date range.
	Source interface {
		ChartData(ctx context.Context, chartID string, r dates.DateRange) (ChartData, error)
	}
)

var _ comparison.Cloner = ChartData{}

// Clone copies the points so the copy can be handed out safely.
func (d ChartData) Clone() interface{} {
	if d.Points != nil {
		d.Points = append([]Point(nil), d.Points...)
	}
	return d
}

// RequestSource computes the charts from teacher requests.
// Requests whose applied date cannot be parsed are left out.
type RequestSource struct {
	repo request.Repository
	loc  *time.Location
}

var _ Source = (*RequestSource)(nil)

func NewRequestSource(repo request.Repository, loc *time.Location) *RequestSource {
	if loc == nil {
		loc = time.UTC
	}
	return &RequestSource{repo: repo, loc: loc}
}

func (src *RequestSource) ChartData(ctx context.Context, chartID string, r dates.DateRange) (ChartData, error) {
	if !IsChart(chartID) {
		return ChartData{}, errors.Wrap(ErrUnknownChart, chartID)
	}

	reqs, err := src.repo.QueryRequests(ctx, request.QueryFilter{})
	if err != nil {
		return ChartData{}, errors.Wrap(err, "querying requests")
	}

	type dated struct {
		req     request.Request
		applied time.Time
	}
	inRange := make([]dated, 0, len(reqs))
	for _, req := range reqs {
		applied, ok := dates.ParseISO(req.AppliedDate, src.loc)
		if ok && r.Contains(applied) {
			inRange = append(inRange, dated{req: req, applied: applied})
		}
	}

	data := ChartData{ChartID: chartID, Range: r}
	switch chartID {
	case ChartRequestsByType:
		counts := make(map[request.Type]float64, len(request.AllTypes))
		for _, d := range inRange {
			counts[d.req.RequestType]++
		}
		for _, typ := range request.AllTypes {
			data.Points = append(data.Points, Point{Label: string(typ), Value: counts[typ]})
		}

	case ChartRequestsByResult:
		counts := make(map[request.Result]float64, 3)
		for _, d := range inRange {
			res := d.req.Result
			if res == "" {
				res = request.ResultPending
			}
			counts[res]++
		}
		for _, res := range []request.Result{request.ResultPending, request.ResultApproved, request.ResultRejected} {
			data.Points = append(data.Points, Point{Label: string(res), Value: counts[res]})
		}

	case ChartRequestsByDay:
		days, err := dates.NewCalendar(time.Sunday).Days(r.StartDate.In(src.loc), r.EndDate.In(src.loc), r.StartDate)
		if err != nil {
			return ChartData{}, errors.Wrap(err, "expanding range")
		}
		counts := make(map[string]float64, len(days))
		for _, d := range inRange {
			counts[d.applied.Format("2006-01-02")]++
		}
		for _, day := range days {
			data.Points = append(data.Points, Point{Label: day.Date, Value: counts[day.Date]})
		}
	}
	return data, nil
}
