// Package ratelimit spaces out calls made by this process to the external store.
package ratelimit

import (
	"sync"
	"time"
)

// Recorder mirrors gate activity into an observability backend.
type Recorder interface {
	ObserveStoreCall(batch bool, wait time.Duration)
	ObserveStoreError()
}

// Stats is the process-wide view of store API usage. LastCall is the start reserved by the
// latest call, which may still be ahead while that caller waits.
type Stats struct {
	LastCall  time.Time `json:"lastCall"`
	Calls     int64     `json:"calls"`
	Errors    int64     `json:"errors"`
	LastError string    `json:"lastError,omitempty"`
}

// Gate enforces a minimum spacing between consecutive store calls. Batch calls use the
// longer spacing. The wait is not cancellable.
type Gate struct {
	mu          sync.Mutex
	singleDelay time.Duration
	batchDelay  time.Duration
	now         func() time.Time
	sleep       func(time.Duration)
	recorder    Recorder
	stats       Stats
}

type Option func(*Gate)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(now func() time.Time, sleep func(time.Duration)) Option {
	return func(g *Gate) {
		if now != nil {
			g.now = now
		}

		if sleep != nil {
			g.sleep = sleep
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(g *Gate) {
		g.recorder = r
	}
}

func New(singleDelay, batchDelay time.Duration, opts ...Option) *Gate {
	g := &Gate{
		singleDelay: singleDelay,
		batchDelay:  batchDelay,
		now:         time.Now,
		sleep:       time.Sleep,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Throttle blocks until the spacing for this kind of call has elapsed since the previous
// call, then records the call. It returns how long the caller was held.
//
// The slot is reserved under the lock and the wait happens outside it, so the next caller
// measures from the reserved start and Stats is never held up by a waiting caller.
func (g *Gate) Throttle(isBatch bool) time.Duration {
	delay := g.singleDelay
	if isBatch {
		delay = g.batchDelay
	}

	g.mu.Lock()

	now := g.now()
	start := now

	if !g.stats.LastCall.IsZero() {
		if next := g.stats.LastCall.Add(delay); next.After(now) {
			start = next
		}
	}

	waited := start.Sub(now)

	g.stats.LastCall = start
	g.stats.Calls++

	g.mu.Unlock()

	if g.recorder != nil {
		g.recorder.ObserveStoreCall(isBatch, waited)
	}

	if waited > 0 {
		g.sleep(waited)
	}

	return waited
}

// RecordError counts a failed store call.
func (g *Gate) RecordError(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.stats.Errors++
	if err != nil {
		g.stats.LastError = err.Error()
	}

	if g.recorder != nil {
		g.recorder.ObserveStoreError()
	}
}

func (g *Gate) Stats() Stats {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.stats
}
