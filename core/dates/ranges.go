package dates

import (
	"sort"
	"time"

	"github.com/pkg/errors"
)

// Preset names
const (
	PresetThisWeek   = "this-week"
	PresetLastWeek   = "last-week"
	PresetThisMonth  = "this-month"
	PresetLastMonth  = "last-month"
	PresetLast7Days  = "last-7-days"
	PresetLast30Days = "last-30-days"
	PresetThisYear   = "this-year"
)

var (
	ErrUnknownPreset = errors.New("unknown date range preset")
	ErrInvalidRange  = errors.New("end date must not be before start date")
)

// DateRange is an inclusive range of instants with a display label.
type DateRange struct {
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Label     string    `json:"label"`
}

func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.StartDate) && !t.After(r.EndDate)
}

func (r DateRange) IsZero() bool {
	return r.StartDate.IsZero() && r.EndDate.IsZero()
}

// Validate checks the range is ordered and covers at most MaxSpanDays calendar days.
func (r DateRange) Validate() error {
	if r.EndDate.Before(r.StartDate) {
		return ErrInvalidRange
	}
	if DaysBetween(r.EndDate.In(r.StartDate.Location()), r.StartDate)+1 > MaxSpanDays {
		return ErrSpanTooLong
	}
	return nil
}

// NewCustomRange spans from the start of start's day to the end of end's day.
func NewCustomRange(start, end time.Time, label string) (DateRange, error) {
	r := DateRange{StartDate: StartOfDay(start), EndDate: EndOfDay(end), Label: label}
	if r.EndDate.Before(r.StartDate) {
		return DateRange{}, ErrInvalidRange
	}
	if r.Label == "" {
		r.Label = r.StartDate.Format("2006-01-02") + " - " + r.EndDate.Format("2006-01-02")
	}
	return r, nil
}

func ThisWeek(t time.Time, weekStart time.Weekday) DateRange {
	return DateRange{StartDate: StartOfWeek(t, weekStart), EndDate: EndOfWeek(t, weekStart), Label: "This Week"}
}

func LastWeek(t time.Time, weekStart time.Weekday) DateRange {
	r := ThisWeek(t.AddDate(0, 0, -7), weekStart)
	r.Label = "Last Week"
	return r
}

func ThisMonth(t time.Time) DateRange {
	return DateRange{StartDate: StartOfMonth(t), EndDate: EndOfMonth(t), Label: "This Month"}
}

func LastMonth(t time.Time) DateRange {
	prev := StartOfMonth(t).AddDate(0, 0, -1)
	return DateRange{StartDate: StartOfMonth(prev), EndDate: EndOfMonth(prev), Label: "Last Month"}
}

// LastDays spans the n calendar days ending today.
func LastDays(t time.Time, n int, label string) DateRange {
	return DateRange{StartDate: StartOfDay(t.AddDate(0, 0, -(n - 1))), EndDate: EndOfDay(t), Label: label}
}

func ThisYear(t time.Time) DateRange {
	return DateRange{StartDate: StartOfYear(t), EndDate: EndOfYear(t), Label: "This Year"}
}

var presets = map[string]func(t time.Time, weekStart time.Weekday) DateRange{
	PresetThisWeek:   ThisWeek,
	PresetLastWeek:   LastWeek,
	PresetThisMonth:  func(t time.Time, _ time.Weekday) DateRange { return ThisMonth(t) },
	PresetLastMonth:  func(t time.Time, _ time.Weekday) DateRange { return LastMonth(t) },
	PresetLast7Days:  func(t time.Time, _ time.Weekday) DateRange { return LastDays(t, 7, "Last 7 Days") },
	PresetLast30Days: func(t time.Time, _ time.Weekday) DateRange { return LastDays(t, 30, "Last 30 Days") },
	PresetThisYear:   func(t time.Time, _ time.Weekday) DateRange { return ThisYear(t) },
}

// Preset returns the named range relative to t.
func Preset(name string, t time.Time, weekStart time.Weekday) (DateRange, error) {
	fn, ok := presets[name]
	if !ok {
		return DateRange{}, errors.Wrap(ErrUnknownPreset, name)
	}
	return fn(t, weekStart), nil
}

// PresetNames lists the available presets, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
