package comparison

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmedtelkodsh/geniussmart/core/dates"
)

// Wednesday
var clock = time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)

func newStore() *Store {
	return NewStore(func() time.Time { return clock })
}

func TestDefaultState(t *testing.T) {
	st := newStore().Get("chartA")

	assert.Equal(t, "chartA", st.ChartID)
	assert.False(t, st.IsActive)
	assert.False(t, st.IsDatePickerOpen)
	assert.False(t, st.Loading)
	assert.Nil(t, st.Data)
	assert.True(t, time.Date(2026, 10, 11, 0, 0, 0, 0, time.UTC).Equal(st.DateRange.StartDate), "start %v", st.DateRange.StartDate)
	assert.Equal(t, time.Saturday, st.DateRange.EndDate.Weekday())
	assert.True(t, dates.SameDay(time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC), st.DateRange.EndDate))
}

func TestStore_GetDoesNotPersist(t *testing.T) {
	s := newStore()
	_ = s.Get("chartA")
	assert.False(t, s.Has("chartA"))
	assert.Empty(t, s.ChartIDs())

	s.Initialize("chartA")
	assert.True(t, s.Has("chartA"))
}

func TestStore_InitializeIsIdempotent(t *testing.T) {
	s := newStore()
	assert.True(t, s.ToggleActive("chartA"))
	s.Initialize("chartA")
	assert.True(t, s.Get("chartA").IsActive)
}

func TestStore_Isolation(t *testing.T) {
	tests := []struct {
		name string
		op   func(s *Store, chartID string)
	}{
		{name: "toggle active", op: func(s *Store, id string) { s.ToggleActive(id) }},
		{name: "toggle picker", op: func(s *Store, id string) { s.ToggleDatePicker(id) }},
		{name: "set loading", op: func(s *Store, id string) { s.SetLoading(id, true) }},
		{name: "set data", op: func(s *Store, id string) { s.SetComparisonData(id, []int{1}) }},
		{name: "set range", op: func(s *Store, id string) {
			s.SetComparisonDateRange(id, dates.LastMonth(clock))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore()
			s.Initialize("chartB")
			before := s.Get("chartB")

			tt.op(s, "chartA")

			assert.Equal(t, before, s.Get("chartB"))
			assert.ElementsMatch(t, []string{"chartA", "chartB"}, s.ChartIDs())
		})
	}
}

func TestStore_TogglePairKeepsData(t *testing.T) {
	s := newStore()
	data := map[string]int{"Absence": 3}
	s.SetComparisonData("chartA", data)

	assert.True(t, s.ToggleActive("chartA"))
	assert.False(t, s.ToggleActive("chartA"))
	assert.Equal(t, data, s.Get("chartA").Data)
}

func TestStore_SetComparisonDateRangeClosesPicker(t *testing.T) {
	s := newStore()
	st := s.ToggleDatePicker("chartA")
	require.True(t, st.IsDatePickerOpen)

	r := dates.LastWeek(clock, time.Sunday)
	st = s.SetComparisonDateRange("chartA", r)
	assert.False(t, st.IsDatePickerOpen)
	assert.Equal(t, r, st.DateRange)
	assert.Equal(t, st, s.Get("chartA"))
}

func TestStore_Loading(t *testing.T) {
	s := newStore()
	s.SetComparisonData("chartA", "old")

	// fetch failure: loading ends, previous data stays
	assert.True(t, s.SetLoading("chartA", true).Loading)
	st := s.SetLoading("chartA", false)
	assert.False(t, st.Loading)
	assert.Equal(t, "old", st.Data)

	// data arrival ends loading
	s.SetLoading("chartA", true)
	st = s.SetComparisonData("chartA", "new")
	assert.False(t, st.Loading)
	assert.Equal(t, "new", st.Data)

	// last write wins, whatever fetch it came from
	s.SetComparisonData("chartA", "late")
	assert.Equal(t, "late", s.Get("chartA").Data)
}

func TestStore_ReturnsCopies(t *testing.T) {
	s := newStore()
	st := s.ToggleDatePicker("chartA")
	st.IsActive = true
	st.DateRange.Label = "mutated"

	got := s.Get("chartA")
	assert.False(t, got.IsActive)
	assert.Equal(t, "This Week", got.DateRange.Label)
}

type seriesData []int

func (d seriesData) Clone() interface{} { return append(seriesData(nil), d...) }

func TestStore_ClonesData(t *testing.T) {
	s := newStore()
	data := seriesData{1, 2, 3}

	st := s.SetComparisonData("chartA", data)
	data[0] = 100
	st.Data.(seriesData)[1] = 200
	s.Get("chartA").Data.(seriesData)[2] = 300

	assert.Equal(t, seriesData{1, 2, 3}, s.Get("chartA").Data)
}

func TestStore_Concurrent(t *testing.T) {
	s := newStore()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("chart%d", i%4)
			for j := 0; j < 100; j++ {
				s.ToggleActive(id)
				s.SetLoading(id, true)
				s.SetComparisonData(id, j)
				_ = s.Get(id)
			}
		}(i)
	}
	wg.Wait()

	// 5 goroutines x 100 toggles per chart
	for i := 0; i < 4; i++ {
		st := s.Get(fmt.Sprintf("chart%d", i))
		assert.False(t, st.IsActive)
		assert.False(t, st.Loading)
	}
}

func TestSessions(t *testing.T) {
	ss := NewSessions(func() time.Time { return clock })

	a := ss.For("manager-1")
	assert.Same(t, a, ss.For("manager-1"))
	a.ToggleActive("chartA")

	b := ss.For("manager-2")
	assert.False(t, b.Get("chartA").IsActive)
	assert.Equal(t, 2, ss.Len())

	ss.Drop("manager-1")
	assert.Equal(t, 1, ss.Len())
	assert.False(t, ss.For("manager-1").Get("chartA").IsActive)
}
