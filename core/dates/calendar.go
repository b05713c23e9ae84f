package dates

import (
	"time"

	"github.com/pkg/errors"
)

// MaxSpanDays bounds Calendar.Days.
const MaxSpanDays = 366

var ErrSpanTooLong = errors.New("date span is too long")

type Day struct {
	Date      string       `json:"date"` // YYYY-MM-DD
	Weekday   time.Weekday `json:"weekday"`
	InMonth   bool         `json:"inMonth"`
	IsToday   bool         `json:"isToday"`
	IsWeekend bool         `json:"isWeekend"`

	Time time.Time `json:"-"`
}

// Calendar lays out days for the holiday and attendance-period pickers.
type Calendar struct {
	WeekStart time.Weekday
	weekend   map[time.Weekday]bool
}

func NewCalendar(weekStart time.Weekday, weekendDays ...time.Weekday) Calendar {
	weekend := make(map[time.Weekday]bool, len(weekendDays))
	for _, wd := range weekendDays {
		weekend[wd] = true
	}
	return Calendar{WeekStart: weekStart, weekend: weekend}
}

func (c Calendar) IsWeekend(t time.Time) bool {
	return c.weekend[t.Weekday()]
}

func (c Calendar) day(t, today time.Time, month time.Month) Day {
	return Day{
		Date:      t.Format("2006-01-02"),
		Weekday:   t.Weekday(),
		InMonth:   t.Month() == month,
		IsToday:   SameDay(today, t),
		IsWeekend: c.IsWeekend(t),
		Time:      t,
	}
}

// MonthGrid returns the weeks covering the given month, padded with days of the adjacent months.
func (c Calendar) MonthGrid(year int, month time.Month, today time.Time) [][]Day {
	loc := today.Location()
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	last := EndOfMonth(first)

	var weeks [][]Day
	for cur := StartOfWeek(first, c.WeekStart); !cur.After(last); {
		week := make([]Day, 0, 7)
		for i := 0; i < 7; i++ {
			week = append(week, c.day(cur, today, month))
			cur = cur.AddDate(0, 0, 1)
		}
		weeks = append(weeks, week)
	}
	return weeks
}

// Days expands the inclusive range [start, end] into calendar days.
func (c Calendar) Days(start, end, today time.Time) ([]Day, error) {
	start, end = StartOfDay(start), StartOfDay(end.In(start.Location()))
	if end.Before(start) {
		return nil, ErrInvalidRange
	}
	span := DaysBetween(end, start) + 1
	if span > MaxSpanDays {
		return nil, ErrSpanTooLong
	}

	days := make([]Day, 0, span)
	for cur := start; !cur.After(end); cur = cur.AddDate(0, 0, 1) {
		days = append(days, c.day(cur, today, cur.Month()))
	}
	return days, nil
}

// WorkingDays counts the days of [start, end] that are not weekend days nor in holidays.
func (c Calendar) WorkingDays(start, end time.Time, holidays ...time.Time) (int, error) {
	days, err := c.Days(start, end, start)
	if err != nil {
		return 0, err
	}
	var n int
	for _, d := range days {
		if d.IsWeekend || isHoliday(d.Time, holidays) {
			continue
		}
		n++
	}
	return n, nil
}

func isHoliday(t time.Time, holidays []time.Time) bool {
	for _, h := range holidays {
		if SameDay(t, h) {
			return true
		}
	}
	return false
}
