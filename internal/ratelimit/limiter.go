// Package ratelimit spaces and caps calls to the generative API.
package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrRateExceeded is returned when the per-window ceiling has been reached.
var ErrRateExceeded = errors.New("too many requests sent, wait a minute and try again")

// State is the limiter's shared bookkeeping. It outlives a single run so
// consecutive runs in one process draw from the same budget.
type State struct {
	mu           sync.Mutex
	lastRequest  time.Time
	requestCount int
}

// NewState returns an empty state.
func NewState() *State {
	return &State{}
}

// Snapshot returns the last permit time and the number of permits still counted.
func (s *State) Snapshot() (time.Time, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRequest, s.requestCount
}

// Info describes the limiter's current budget.
type Info struct {
	Limit       int       `json:"limit"`
	Used        int       `json:"used"`
	Remaining   int       `json:"remaining"`
	LastRequest time.Time `json:"last_request,omitempty"`
}

// Limiter enforces a minimum spacing between permits and a ceiling of
// permits per rolling window.
type Limiter struct {
	config *Config
	state  *State
	clock  Clock

	// acquireMu serializes callers so the spacing holds between any two permits.
	acquireMu sync.Mutex
}

// NewLimiter creates a limiter. Nil arguments fall back to DefaultConfig,
// a fresh State and the wall clock.
func NewLimiter(config *Config, state *State, clock Clock) *Limiter {
	if config == nil {
		config = DefaultConfig()
	}
	if state == nil {
		state = NewState()
	}
	if clock == nil {
		clock = RealClock{}
	}
	return &Limiter{
		config: config,
		state:  state,
		clock:  clock,
	}
}

// Acquire blocks until a permit may be issued. It fails immediately with
// ErrRateExceeded when the window ceiling is reached and returns the context
// error if ctx ends during the spacing wait.
func (l *Limiter) Acquire(ctx context.Context) error {
	if !l.config.Enabled {
		return nil
	}

	l.acquireMu.Lock()
	defer l.acquireMu.Unlock()

	l.state.mu.Lock()
	if l.state.requestCount >= l.config.MaxPerWindow {
		l.state.mu.Unlock()
		return ErrRateExceeded
	}
	var wait time.Duration
	if !l.state.lastRequest.IsZero() {
		elapsed := l.clock.Now().Sub(l.state.lastRequest)
		if elapsed < l.config.MinSpacing {
			wait = l.config.MinSpacing - elapsed
		}
	}
	l.state.mu.Unlock()

	if wait > 0 {
		if err := l.clock.Sleep(ctx, wait); err != nil {
			return err
		}
	}

	l.state.mu.Lock()
	if l.state.requestCount >= l.config.MaxPerWindow {
		l.state.mu.Unlock()
		return ErrRateExceeded
	}
	l.state.lastRequest = l.clock.Now()
	l.state.requestCount++
	l.state.mu.Unlock()

	l.clock.AfterFunc(l.config.Window, l.release)
	return nil
}

func (l *Limiter) release() {
	l.state.mu.Lock()
	defer l.state.mu.Unlock()
	if l.state.requestCount > 0 {
		l.state.requestCount--
	}
}

// Status reports the current budget.
func (l *Limiter) Status() Info {
	last, used := l.state.Snapshot()
	remaining := l.config.MaxPerWindow - used
	if remaining < 0 {
		remaining = 0
	}
	return Info{
		Limit:       l.config.MaxPerWindow,
		Used:        used,
		Remaining:   remaining,
		LastRequest: last,
	}
}
