// Package selection owns the selected time window and the in-flight fetch
// state for one rendered product view. Transitions are pure functions over
// an explicit State value; the Controller serializes them around the fetch
// boundary.
package selection

import (
	"pricewatch/internal/domain"
	"pricewatch/internal/window"
)

// Phase is the state machine phase.
type Phase int

const (
	// Idle: a window is selected and its series is displayed.
	Idle Phase = iota
	// Loading: a new window was selected and its fetch is in flight.
	// The previous series stays displayed until the fetch settles.
	Loading
)

// State is the full selection state. During Loading, PrevWindow and
// PrevSeries hold the last good selection for revert on failure.
type State struct {
	Phase  Phase
	Window window.Window
	Series []domain.PriceRecord

	PrevWindow window.Window
	PrevSeries []domain.PriceRecord
}

// NewIdle returns an Idle state displaying series under w.
func NewIdle(w window.Window, series []domain.PriceRecord) State {
	return State{Phase: Idle, Window: w, Series: series}
}

// BeginSelect starts a window change. Rejected (ok=false, state unchanged)
// while a fetch is in flight or when w is already selected: at most one
// outstanding request, and re-selections are dropped, not queued.
func (s State) BeginSelect(w window.Window) (State, bool) {
	if s.Phase == Loading || w == s.Window {
		return s, false
	}
	return State{
		Phase:      Loading,
		Window:     w,
		Series:     s.Series, // previous series stays displayed
		PrevWindow: s.Window,
		PrevSeries: s.Series,
	}, true
}

// Complete applies a successful fetch: the new series replaces the old one
// wholesale and the machine returns to Idle on the requested window.
func (s State) Complete(series []domain.PriceRecord) State {
	return NewIdle(s.Window, series)
}

// Fail reverts to the previous selection. No partial update: the last
// known-good window and series come back exactly as they were.
func (s State) Fail() State {
	return NewIdle(s.PrevWindow, s.PrevSeries)
}
