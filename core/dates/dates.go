// Package dates is the calendar arithmetic shared by request bucketing, charts and the date pickers.
package dates

import (
	"strings"
	"time"

	"github.com/jinzhu/now"
)

// NowFunc is the clock read by services; mockable.
var NowFunc = time.Now

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseISO parses an ISO-8601 date or date-time.
// Values carrying an offset are converted into loc; values without one are read in loc.
func ParseISO(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.In(loc), true
		}
	}
	return time.Time{}, false
}

func with(t time.Time, weekStart time.Weekday) *now.Now {
	conf := &now.Config{WeekStartDay: weekStart, TimeLocation: t.Location()}
	return conf.With(t)
}

func StartOfDay(t time.Time) time.Time { return with(t, time.Sunday).BeginningOfDay() }
func EndOfDay(t time.Time) time.Time   { return with(t, time.Sunday).EndOfDay() }

func StartOfWeek(t time.Time, weekStart time.Weekday) time.Time {
	return with(t, weekStart).BeginningOfWeek()
}

func EndOfWeek(t time.Time, weekStart time.Weekday) time.Time {
	return with(t, weekStart).EndOfWeek()
}

func StartOfMonth(t time.Time) time.Time { return with(t, time.Sunday).BeginningOfMonth() }
func EndOfMonth(t time.Time) time.Time   { return with(t, time.Sunday).EndOfMonth() }
func StartOfYear(t time.Time) time.Time  { return with(t, time.Sunday).BeginningOfYear() }
func EndOfYear(t time.Time) time.Time    { return with(t, time.Sunday).EndOfYear() }

// SameDay reports whether b falls on a's calendar day, in a's location.
func SameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.In(a.Location()).Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// SameWeek reports whether b falls in a's week, weeks starting on weekStart.
func SameWeek(a, b time.Time, weekStart time.Weekday) bool {
	return StartOfWeek(a, weekStart).Equal(StartOfWeek(b.In(a.Location()), weekStart))
}

// SameMonth reports whether b falls in a's calendar month, in a's location.
func SameMonth(a, b time.Time) bool {
	y1, m1, _ := a.Date()
	y2, m2, _ := b.In(a.Location()).Date()
	return y1 == y2 && m1 == m2
}

// DaysBetween returns the number of calendar days from earlier to later, ignoring the time of day.
// It is negative when earlier is after later.
func DaysBetween(later, earlier time.Time) int {
	y1, m1, d1 := later.Date()
	y2, m2, d2 := earlier.In(later.Location()).Date()
	u1 := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	u2 := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return int(u1.Sub(u2).Hours() / 24)
}
