package selection

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"pricewatch/internal/chart"
	"pricewatch/internal/domain"
	"pricewatch/internal/history"
	"pricewatch/internal/window"
)

// Errors surfaced by the Controller.
var (
	// ErrFetchFailed wraps a data-source failure. The previous selection
	// stays displayed; the caller may re-trigger the selection to retry.
	ErrFetchFailed = errors.New("history fetch failed")

	// ErrUnknownWindow is returned for a window outside the supported set.
	ErrUnknownWindow = errors.New("unknown time window")
)

// HistorySource fetches price records for a product. Nil bounds request
// full history; dates are date-only.
type HistorySource interface {
	FetchHistory(ctx context.Context, productID int64, from, to *time.Time) ([]domain.PriceRecord, error)
}

// Controller runs the selection state machine for one product view.
// It rebuilds the chart spec whole on every settled transition and hands
// out the current one via Snapshot; a consumer never sees a partial chart.
type Controller struct {
	productID int64
	source    HistorySource
	clock     domain.Clock
	policy    *window.Policy

	mu        sync.Mutex
	state     State
	spec      *chart.Spec
	requestID uint64 // latest issued fetch id; stale completions are dropped
}

// Options configures a Controller.
type Options struct {
	ProductID int64
	Source    HistorySource
	// Clock defaults to domain.SystemClock.
	Clock domain.Clock
	// Initial seeds the view with pre-fetched records under the All
	// window, skipping the initial Load round-trip.
	Initial []domain.PriceRecord
}

// New creates a Controller. With no Initial records the view starts empty;
// call Load to fetch full history.
func New(opts Options) *Controller {
	clock := opts.Clock
	if clock == nil {
		clock = domain.SystemClock
	}
	c := &Controller{
		productID: opts.ProductID,
		source:    opts.Source,
		clock:     clock,
		policy:    window.NewPolicy(clock),
		state:     NewIdle(window.All, history.Normalize(opts.Initial, clock)),
	}
	c.spec = c.buildSpec(c.state)
	return c
}

// Snapshot is the externally visible selection state.
type Snapshot struct {
	Window  window.Window
	Loading bool
	Series  []domain.PriceRecord
	Spec    *chart.Spec // nil when there is no chart to render
}

// Snapshot returns the current window, loading flag, displayed series,
// and chart spec.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Window:  c.state.Window,
		Loading: c.state.Phase == Loading,
		Series:  c.state.Series,
		Spec:    c.spec,
	}
}

// Load fetches full history and resets the view to the All window.
// Issuing a fresh request id invalidates any fetch still in flight, so a
// stale selection cannot land on top of the reset view.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	c.requestID++
	id := c.requestID
	c.mu.Unlock()

	records, err := c.source.FetchHistory(ctx, c.productID, nil, nil)

	c.mu.Lock()
	defer c.mu.Unlock()
	if id != c.requestID {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: initial load: %w", ErrFetchFailed, err)
	}
	c.state = NewIdle(window.All, history.Normalize(records, c.clock))
	c.spec = c.buildSpec(c.state)
	return nil
}

// Select changes the active window and re-fetches the series for its
// bounds. Selecting the current window, or selecting while a fetch is in
// flight, is a no-op. On failure the previous selection is restored and
// the error is returned wrapped in ErrFetchFailed.
func (c *Controller) Select(ctx context.Context, w window.Window) error {
	if !w.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownWindow, w)
	}

	c.mu.Lock()
	next, ok := c.state.BeginSelect(w)
	if !ok {
		c.mu.Unlock()
		return nil
	}
	c.state = next
	c.requestID++
	id := c.requestID

	var from, to *time.Time
	if w != window.All {
		bounds := c.policy.BoundsFor(w)
		from, to = bounds.From, &bounds.To
	}
	c.mu.Unlock()

	records, err := c.source.FetchHistory(ctx, c.productID, from, to)

	c.mu.Lock()
	defer c.mu.Unlock()
	if id != c.requestID {
		// A newer request was issued after this one settled; drop it.
		return nil
	}
	if err != nil {
		c.state = c.state.Fail()
		c.spec = c.buildSpec(c.state)
		return fmt.Errorf("%w: window %s: %w", ErrFetchFailed, w, err)
	}
	c.state = c.state.Complete(history.Normalize(records, c.clock))
	c.spec = c.buildSpec(c.state)
	return nil
}

// buildSpec rebuilds the chart spec for a state. Called with c.mu held or
// during construction.
func (c *Controller) buildSpec(s State) *chart.Spec {
	earliest, hasRecords := history.EarliestDate(s.Series)
	options := make([]chart.WindowOption, 0, len(window.Ordered))
	for _, w := range window.Ordered {
		options = append(options, chart.WindowOption{
			Window:     w,
			Selectable: c.policy.Selectable(w, earliest, hasRecords),
		})
	}

	spec, err := chart.Build(s.Series, s.Window, options)
	if err != nil {
		// Only malformed discounts reach here; stored records are
		// validated at import time.
		return nil
	}
	return spec
}
