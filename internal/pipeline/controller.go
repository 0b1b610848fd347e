// Package pipeline drives the usage-analytics view: it coalesces filter
// changes into debounced fetches, guards against stale responses, and exposes
// aggregated read-only snapshots to the presenter.
package pipeline

import (
	"context"
	"log"
	"sync"
	"time"

	"example.com/litterbox/internal/analytics"
	"example.com/litterbox/internal/domain"
)

// DefaultDebounce is the coalescing window for rapid filter changes.
const DefaultDebounce = 300 * time.Millisecond

// DefaultFetchLimit caps how many records a single fetch requests.
const DefaultFetchLimit = 1000

// Fetcher retrieves usage records for a query window. Implementations own
// transport concerns including timeouts; the pipeline treats a timeout like
// any other fetch failure.
type Fetcher interface {
	FetchUsage(ctx context.Context, window domain.QueryWindow, limit int) ([]domain.UsageRecord, error)
}

// Snapshot is the presenter-facing state of the pipeline. All fields are
// read-only copies; Err is empty when the last fetch succeeded.
type Snapshot struct {
	Loading bool
	Err     string
	Daily   []analytics.DailyBucket
	Hourly  analytics.HourlyDistribution
	Stats   analytics.SummaryStats
	Page    Page
}

// Option configures optional behaviour for the Controller.
type Option func(*Controller)

// WithScheduler overrides the debounce scheduler (used by tests).
func WithScheduler(s Scheduler) Option {
	return func(c *Controller) { c.scheduler = s }
}

// WithDebounce overrides the debounce interval.
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) { c.debounce = d }
}

// WithPageSize overrides the record-list page size.
func WithPageSize(size int) Option {
	return func(c *Controller) { c.pager = NewPaginator(size) }
}

// WithFetchLimit overrides the per-fetch record cap.
func WithFetchLimit(limit int) Option {
	return func(c *Controller) { c.limit = limit }
}

// WithLogger overrides the logger used to report dropped responses.
func WithLogger(logger *log.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// Controller owns the mutable query state (subject, date range) and the
// derived views built from the last winning fetch. A generation counter
// provides a total order over queries: only the response matching the
// current generation is ever applied, so a slow response can never overwrite
// fresher state.
type Controller struct {
	fetcher   Fetcher
	scheduler Scheduler
	debounce  time.Duration
	limit     int
	logger    *log.Logger

	// mu protects everything below. Fetches run concurrently but their
	// results are serialised through the mutex, so the view behaves as if
	// driven by a single logical thread.
	mu sync.Mutex

	window     domain.QueryWindow
	generation uint64

	cancelTimer func()
	cancelFetch context.CancelFunc

	store   RecordStore
	pager   *Paginator
	loading bool
	errMsg  string

	report analytics.Report
}

// NewController constructs a Controller around the injected fetch capability.
func NewController(fetcher Fetcher, opts ...Option) *Controller {
	c := &Controller{
		fetcher:   fetcher,
		scheduler: TimerScheduler{},
		debounce:  DefaultDebounce,
		limit:     DefaultFetchLimit,
		logger:    log.New(log.Writer(), "[pipeline] ", log.LstdFlags),
		pager:     NewPaginator(DefaultPageSize),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetSubject changes the analyzed cat and schedules a debounced fetch.
func (c *Controller) SetSubject(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.window.SubjectID = id
	c.queryChanged()
}

// SetDateRange changes the date window and schedules a debounced fetch.
func (c *Controller) SetDateRange(start, end time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.window.Start = domain.Midnight(start)
	c.window.End = domain.Midnight(end)
	c.queryChanged()
}

// queryChanged bumps the generation, invalidating any in-flight fetch, and
// arms the trailing-edge debounce timer. Callers hold the lock.
func (c *Controller) queryChanged() {
	c.generation++
	gen := c.generation

	if c.cancelTimer != nil {
		c.cancelTimer()
		c.cancelTimer = nil
	}

	if !c.window.Valid() {
		// Invalid input skips the fetch entirely and blanks the view.
		c.store.Clear()
		c.loading = false
		c.errMsg = ""
		c.pager.Reset()
		c.rebuild()
		return
	}

	c.cancelTimer = c.scheduler.Schedule(c.debounce, func() {
		c.beginFetch(gen)
	})
}

// beginFetch launches the fetch for the given generation unless a newer
// query superseded it while the debounce timer was pending.
func (c *Controller) beginFetch(gen uint64) {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}

	c.loading = true
	c.errMsg = ""

	if c.cancelFetch != nil {
		c.cancelFetch()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancelFetch = cancel

	window := c.window
	limit := c.limit
	c.mu.Unlock()

	go func() {
		records, err := c.fetcher.FetchUsage(ctx, window, limit)
		c.complete(gen, records, err)
	}()
}

// complete applies a fetch result, or drops it when a newer generation has
// taken over. Exactly one result can win per generation; superseded fetches
// are never retried.
func (c *Controller) complete(gen uint64, records []domain.UsageRecord, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		c.logger.Printf("dropping stale response (generation %d, current %d)", gen, c.generation)
		return
	}

	c.loading = false
	if err != nil {
		// No stale data next to an error message.
		c.errMsg = err.Error()
		c.store.Clear()
	} else {
		c.errMsg = ""
		c.store.Replace(records)
	}
	c.pager.Reset()
	c.rebuild()
}

// rebuild recomputes the memoized aggregate report. Callers hold the lock;
// this runs only when the record set or window actually changed.
func (c *Controller) rebuild() {
	c.report = analytics.Aggregate(c.store.Records(), c.window)
	if c.report.DurationMismatches > 0 {
		c.logger.Printf("%d of %d records report durations inconsistent with their timestamps",
			c.report.DurationMismatches, c.store.Len())
	}
}

// GoToPage navigates the record list. Out-of-range indices are clamped.
func (c *Controller) GoToPage(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pager.GoTo(index, c.store.Len())
}

// Snapshot returns the current presenter-facing state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	page := c.pager.Slice(c.store.Records())
	page.Items = append([]domain.UsageRecord(nil), page.Items...)
	return Snapshot{
		Loading: c.loading,
		Err:     c.errMsg,
		Daily:   append([]analytics.DailyBucket(nil), c.report.Daily...),
		Hourly:  c.report.Hourly,
		Stats:   c.report.Stats,
		Page:    page,
	}
}

// Close cancels any pending debounce timer and in-flight fetch. Results of
// cancelled fetches are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	if c.cancelTimer != nil {
		c.cancelTimer()
		c.cancelTimer = nil
	}
	if c.cancelFetch != nil {
		c.cancelFetch()
		c.cancelFetch = nil
	}
}
