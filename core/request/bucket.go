package request

import (
	"time"

	"github.com/ahmedtelkodsh/geniussmart/core/dates"
)

// delayedAfterDays is the age, in whole days, past which a request is delayed.
const delayedAfterDays = 30

// Buckets partitions requests by how recently they were applied for.
type Buckets struct {
	Today     []Request `json:"today"`
	ThisWeek  []Request `json:"thisWeek"`
	ThisMonth []Request `json:"thisMonth"`
	Delayed   []Request `json:"delayed"`
}

func (b Buckets) Len() int {
	return len(b.Today) + len(b.ThisWeek) + len(b.ThisMonth) + len(b.Delayed)
}

// Bucket names
const (
	BucketToday     = "today"
	BucketThisWeek  = "thisWeek"
	BucketThisMonth = "thisMonth"
	BucketDelayed   = "delayed"
)

var BucketNames = []string{BucketToday, BucketThisWeek, BucketThisMonth, BucketDelayed}

// Get returns the bucket with the given name.
func (b Buckets) Get(name string) []Request {
	switch name {
	case BucketToday:
		return b.Today
	case BucketThisWeek:
		return b.ThisWeek
	case BucketThisMonth:
		return b.ThisMonth
	case BucketDelayed:
		return b.Delayed
	}
	return nil
}

// Bucketize places every request in exactly one bucket, keeping input order within each bucket.
// Weeks start on Sunday. Applied dates are read in now's location.
//
// First matching rule wins:
//   - unparseable applied date: delayed
//   - same day as now: today
//   - same week: this week
//   - same month: this month
//   - more than 30 days old: delayed
//   - anything else: this month
func Bucketize(requests []Request, now time.Time) Buckets {
	b := Buckets{
		Today:     make([]Request, 0),
		ThisWeek:  make([]Request, 0),
		ThisMonth: make([]Request, 0),
		Delayed:   make([]Request, 0),
	}
	for _, req := range requests {
		switch bucketOf(req, now) {
		case BucketToday:
			b.Today = append(b.Today, req)
		case BucketThisWeek:
			b.ThisWeek = append(b.ThisWeek, req)
		case BucketThisMonth:
			b.ThisMonth = append(b.ThisMonth, req)
		default:
			b.Delayed = append(b.Delayed, req)
		}
	}
	return b
}

func bucketOf(req Request, now time.Time) string {
	applied, ok := dates.ParseISO(req.AppliedDate, now.Location())
	if !ok {
		return BucketDelayed
	}

	switch {
	case dates.SameDay(now, applied):
		return BucketToday
	case dates.SameWeek(now, applied, time.Sunday):
		return BucketThisWeek
	case dates.SameMonth(now, applied):
		return BucketThisMonth
	case dates.DaysBetween(now, applied) > delayedAfterDays:
		return BucketDelayed
	default:
		return BucketThisMonth
	}
}

// FilterByType keeps the requests of the given types; no types keeps everything.
func FilterByType(requests []Request, types ...Type) []Request {
	qf := QueryFilter{Types: types}
	filtered := make([]Request, 0, len(requests))
	for _, req := range requests {
		if qf.HasType(req.RequestType) {
			filtered = append(filtered, req)
		}
	}
	return filtered
}
