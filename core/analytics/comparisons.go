package analytics

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/ahmedtelkodsh/geniussmart/core"
	"github.com/ahmedtelkodsh/geniussmart/core/comparison"
	"github.com/ahmedtelkodsh/geniussmart/core/dates"
)

type Options struct {
	FetchTimeout time.Duration // per attempt
	RetryDelay   time.Duration
}

// Comparisons runs the comparison mode of the charts for every manager session:
// activating a chart or changing its range while active fetches the comparison data
// in the background, retrying once after RetryDelay.
type Comparisons struct {
	sessions *comparison.Sessions
	source   Source
	logger   core.Logger
	opts     Options

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewComparisons(sessions *comparison.Sessions, source Source, logger core.Logger, opts Options) *Comparisons {
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 10 * time.Second
	}
	if opts.RetryDelay < 0 {
		opts.RetryDelay = 0
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Comparisons{
		sessions: sessions,
		source:   source,
		logger:   logger,
		opts:     opts,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (c *Comparisons) store(sessionID, chartID string) (*comparison.Store, error) {
	if !IsChart(chartID) {
		return nil, errors.Wrap(ErrUnknownChart, chartID)
	}
	return c.sessions.For(sessionID), nil
}

func (c *Comparisons) State(sessionID, chartID string) (comparison.State, error) {
	store, err := c.store(sessionID, chartID)
	if err != nil {
		return comparison.State{}, err
	}
	return store.Get(chartID), nil
}

// Toggle flips the chart's comparison mode; turning it on starts a fetch for the selected range.
func (c *Comparisons) Toggle(sessionID, chartID string) (comparison.State, error) {
	store, err := c.store(sessionID, chartID)
	if err != nil {
		return comparison.State{}, err
	}
	if store.ToggleActive(chartID) {
		return c.fetch(store, chartID), nil
	}
	return store.Get(chartID), nil
}

// SetRange selects the comparison range, closing the picker, and refetches when active.
func (c *Comparisons) SetRange(sessionID, chartID string, r dates.DateRange) (comparison.State, error) {
	store, err := c.store(sessionID, chartID)
	if err != nil {
		return comparison.State{}, err
	}
	if err = r.Validate(); err != nil {
		return comparison.State{}, err
	}
	st := store.SetComparisonDateRange(chartID, r)
	if st.IsActive {
		return c.fetch(store, chartID), nil
	}
	return st, nil
}

func (c *Comparisons) TogglePicker(sessionID, chartID string) (comparison.State, error) {
	store, err := c.store(sessionID, chartID)
	if err != nil {
		return comparison.State{}, err
	}
	return store.ToggleDatePicker(chartID), nil
}

// Reset forgets every chart state of the session.
func (c *Comparisons) Reset(sessionID string) {
	c.sessions.Drop(sessionID)
}

// Wait blocks until the running fetches are done.
func (c *Comparisons) Wait() {
	c.wg.Wait()
}

// Close aborts the running fetches and waits for them.
func (c *Comparisons) Close() {
	c.cancel()
	c.wg.Wait()
}

// fetch marks the chart as loading and fetches its range in the background.
// It returns the state as of the start of the fetch.
func (c *Comparisons) fetch(store *comparison.Store, chartID string) comparison.State {
	st := store.SetLoading(chartID, true)
	r := st.DateRange

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		data, err := c.attempt(chartID, r)
		if err != nil && c.ctx.Err() == nil && !isPermanent(err) {
			c.logger.Warn("analytics.Comparisons: fetching "+chartID+", retrying: "+err.Error(), err)
			select {
			case <-time.After(c.opts.RetryDelay):
				data, err = c.attempt(chartID, r)
			case <-c.ctx.Done():
			}
		}
		if err != nil || c.ctx.Err() != nil {
			if err != nil {
				c.logger.Error("analytics.Comparisons: fetching "+chartID+": "+err.Error(), err)
			}
			store.SetLoading(chartID, false)
			return
		}
		store.SetComparisonData(chartID, data)
	}()
	return st
}

// isPermanent reports errors a retry cannot fix.
func isPermanent(err error) bool {
	switch errors.Cause(err) {
	case ErrUnknownChart, dates.ErrInvalidRange, dates.ErrSpanTooLong:
		return true
	}
	return false
}

func (c *Comparisons) attempt(chartID string, r dates.DateRange) (ChartData, error) {
	ctx, cancel := context.WithTimeout(c.ctx, c.opts.FetchTimeout)
	defer cancel()
	return c.source.ChartData(ctx, chartID, r)
}
