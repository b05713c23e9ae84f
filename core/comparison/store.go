// Package comparison keeps the comparison mode state of every chart on a view.
//
// Each chart id owns an independent State. Reads of an unknown chart return a default State
// without storing it; every mutating operation first creates the chart's entry if needed.
package comparison

import (
	"sync"
	"time"

	"github.com/ahmedtelkodsh/geniussmart/core/dates"
)

// State is a chart's comparison mode state.
type State struct {
	ChartID          string          `json:"chartId"`
	IsActive         bool            `json:"isActive"`
	DateRange        dates.DateRange `json:"comparisonDateRange"`
	IsDatePickerOpen bool            `json:"isDatePickerOpen"`
	Data             interface{}     `json:"comparisonData"` // nil until a fetch completes
	Loading          bool            `json:"loading"`
}

// Cloner is implemented by comparison data holding reference types.
// The store hands out clones so callers never share the stored data.
type Cloner interface {
	Clone() interface{}
}

func (st State) clone() State {
	if c, ok := st.Data.(Cloner); ok {
		st.Data = c.Clone()
	}
	return st
}

// DefaultState is inactive, idle, with the picker closed, no data and the week of now (Sunday to Saturday) selected.
func DefaultState(chartID string, now time.Time) State {
	return State{
		ChartID:   chartID,
		DateRange: dates.ThisWeek(now, time.Sunday),
	}
}

// Store is safe for concurrent use. States are handed out by value, with Cloner data cloned.
type Store struct {
	mu      sync.RWMutex
	states  map[string]*State
	nowFunc func() time.Time
}

func NewStore(nowFunc func() time.Time) *Store {
	if nowFunc == nil {
		nowFunc = time.Now
	}
	return &Store{
		states:  make(map[string]*State),
		nowFunc: nowFunc,
	}
}

// Get returns the chart's state, or a default one (not stored) for an unknown chart.
func (s *Store) Get(chartID string) State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if st, ok := s.states[chartID]; ok {
		return st.clone()
	}
	return DefaultState(chartID, s.nowFunc())
}

// Has reports whether the chart has a stored state.
func (s *Store) Has(chartID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.states[chartID]
	return ok
}

// Initialize stores a default state for the chart unless it already has one.
func (s *Store) Initialize(chartID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.init(chartID)
}

// must hold s.mu
func (s *Store) init(chartID string) *State {
	st, ok := s.states[chartID]
	if !ok {
		def := DefaultState(chartID, s.nowFunc())
		st = &def
		s.states[chartID] = st
	}
	return st
}

func (s *Store) update(chartID string, fn func(st *State)) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.init(chartID)
	fn(st)
	return st.clone()
}

// ToggleActive flips comparison mode and returns the new value.
// Callers fetch the comparison data for the current range when it returns true.
// Cached data is kept when comparison mode is turned off.
func (s *Store) ToggleActive(chartID string) bool {
	st := s.update(chartID, func(st *State) { st.IsActive = !st.IsActive })
	return st.IsActive
}

// SetComparisonDateRange selects the comparison range and closes the date picker.
func (s *Store) SetComparisonDateRange(chartID string, r dates.DateRange) State {
	return s.update(chartID, func(st *State) {
		st.DateRange = r
		st.IsDatePickerOpen = false
	})
}

func (s *Store) ToggleDatePicker(chartID string) State {
	return s.update(chartID, func(st *State) { st.IsDatePickerOpen = !st.IsDatePickerOpen })
}

// SetLoading marks a fetch as started or ended; ending it leaves the previous data in place.
func (s *Store) SetLoading(chartID string, loading bool) State {
	return s.update(chartID, func(st *State) { st.Loading = loading })
}

// SetComparisonData stores fetched data and ends loading.
// The last call wins: results of superseded fetches are not detected.
func (s *Store) SetComparisonData(chartID string, data interface{}) State {
	return s.update(chartID, func(st *State) {
		st.Data = data
		if c, ok := data.(Cloner); ok {
			st.Data = c.Clone()
		}
		st.Loading = false
	})
}

// ChartIDs lists the charts with a stored state.
func (s *Store) ChartIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.states))
	for id := range s.states {
		ids = append(ids, id)
	}
	return ids
}
