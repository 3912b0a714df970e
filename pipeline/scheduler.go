package pipeline

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/atomic"
)

var (
	// ErrBusy is returned when a frame arrives while the previous one is
	// still being processed.  The frame is dropped, not queued.
	ErrBusy = errors.New("pipeline busy, frame dropped")
	// ErrThrottled is returned when a frame arrives sooner than MinInterval
	// after the last processed frame started
	ErrThrottled = errors.New("frame throttled")
	// ErrStopped is returned while processing is switched off
	ErrStopped = errors.New("processing stopped")
	// ErrPanic wraps a panic recovered from frame processing
	ErrPanic = errors.New("frame processing panicked")
)

// Scheduler admits at most one frame at a time into the pipeline
type Scheduler struct {
	// MinInterval is the least time between the start of two admitted
	// frames, zero admits every frame that finds the pipeline idle
	MinInterval time.Duration

	clock clock.Clock
	busy  *atomic.Bool

	mu        sync.Mutex
	lastStart time.Time
	started   bool
}

// NewScheduler returns a Scheduler timing frames on clk, a nil clk uses the
// wall clock
func NewScheduler(clk clock.Clock, minInterval time.Duration) *Scheduler {

	if clk == nil {
		clk = clock.New()
	}

	return &Scheduler{
		MinInterval: minInterval,
		clock:       clk,
		busy:        atomic.NewBool(false),
	}
}

// TryRun runs fn if no other run is in progress and MinInterval has passed
// since the last run started.  The busy flag is released when fn returns or
// panics, a panic is returned as an error wrapping ErrPanic.
func (s *Scheduler) TryRun(fn func() error) (err error) {

	if !s.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}

	defer s.busy.Store(false)

	if !s.admit() {
		return ErrThrottled
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()

	return fn()
}

// admit records the start of a run unless it falls within MinInterval of
// the previous one
func (s *Scheduler) admit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()

	if s.started && now.Sub(s.lastStart) < s.MinInterval {
		return false
	}

	s.lastStart = now
	s.started = true

	return true
}

// Busy reports whether a run is in progress
func (s *Scheduler) Busy() bool {
	return s.busy.Load()
}
