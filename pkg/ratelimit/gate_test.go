package ratelimit_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/samandr77/microservices/claims/pkg/ratelimit"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeClock struct {
	mu    sync.Mutex
	now   time.Time
	slept []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Sleep(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.slept = append(c.slept, d)
	c.now = c.now.Add(d)
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

type recorder struct {
	calls  int
	errors int
	waits  []time.Duration
}

func (r *recorder) ObserveStoreCall(_ bool, wait time.Duration) {
	r.calls++
	r.waits = append(r.waits, wait)
}

func (r *recorder) ObserveStoreError() {
	r.errors++
}

func TestGate_Throttle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		gap      time.Duration
		isBatch  bool
		wantWait time.Duration
	}{
		{name: "back to back single", gap: 0, wantWait: 1500 * time.Millisecond},
		{name: "partially elapsed single", gap: time.Second, wantWait: 500 * time.Millisecond},
		{name: "enough time elapsed", gap: 2 * time.Second, wantWait: 0},
		{name: "back to back batch", gap: 0, isBatch: true, wantWait: 2 * time.Second},
		{name: "single spacing is not enough for batch", gap: 1500 * time.Millisecond, isBatch: true, wantWait: 500 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			clock := newFakeClock()
			g := ratelimit.New(1500*time.Millisecond, 2*time.Second, ratelimit.WithClock(clock.Now, clock.Sleep))

			require.Zero(t, g.Throttle(false), "first call never waits")

			clock.Advance(tt.gap)

			require.Equal(t, tt.wantWait, g.Throttle(tt.isBatch))
			require.Equal(t, int64(2), g.Stats().Calls)
		})
	}
}

func TestGate_RecordsCallStart(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	g := ratelimit.New(1500*time.Millisecond, 2*time.Second, ratelimit.WithClock(clock.Now, clock.Sleep))

	g.Throttle(false)
	first := g.Stats().LastCall

	g.Throttle(false)
	second := g.Stats().LastCall

	require.Equal(t, 1500*time.Millisecond, second.Sub(first))
}

func TestGate_ConcurrentCallersAreSpaced(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	start := clock.Now()
	g := ratelimit.New(1500*time.Millisecond, 2*time.Second, ratelimit.WithClock(clock.Now, clock.Sleep))

	var wg sync.WaitGroup

	for range 4 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			g.Throttle(false)
		}()
	}

	wg.Wait()

	stats := g.Stats()
	require.Equal(t, int64(4), stats.Calls)
	require.Equal(t, start.Add(3*1500*time.Millisecond), stats.LastCall, "every caller after the first gets its own slot")
}

func TestGate_StatsDoNotWaitForSleepingCaller(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	sleeping := make(chan struct{})
	release := make(chan struct{})

	g := ratelimit.New(time.Second, 2*time.Second, ratelimit.WithClock(
		func() time.Time { return at },
		func(time.Duration) {
			close(sleeping)
			<-release
		},
	))

	g.Throttle(false)

	waited := make(chan time.Duration, 1)

	go func() {
		waited <- g.Throttle(true)
	}()

	<-sleeping

	got := make(chan ratelimit.Stats, 1)

	go func() {
		g.RecordError(errors.New("quota exceeded"))
		got <- g.Stats()
	}()

	select {
	case stats := <-got:
		require.Equal(t, int64(2), stats.Calls)
		require.Equal(t, int64(1), stats.Errors)
		require.Equal(t, at.Add(2*time.Second), stats.LastCall)
	case <-time.After(time.Second):
		t.Error("stats blocked behind a throttled call")
	}

	close(release)
	require.Equal(t, 2*time.Second, <-waited)
}

func TestGate_WallClockSpacing(t *testing.T) {
	t.Parallel()

	const delay = 40 * time.Millisecond

	g := ratelimit.New(delay, 2*delay)

	g.Throttle(false)
	start := time.Now()
	g.Throttle(false)

	require.GreaterOrEqual(t, time.Since(start), delay-5*time.Millisecond)

	time.Sleep(2 * delay)

	start = time.Now()
	require.Zero(t, g.Throttle(false))
	require.Less(t, time.Since(start), delay)
}

func TestGate_RecordError(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	clock := newFakeClock()
	g := ratelimit.New(time.Second, 2*time.Second,
		ratelimit.WithClock(clock.Now, clock.Sleep),
		ratelimit.WithRecorder(rec),
	)

	g.Throttle(true)
	g.RecordError(errors.New("quota exceeded"))

	stats := g.Stats()
	require.Equal(t, int64(1), stats.Calls)
	require.Equal(t, int64(1), stats.Errors)
	require.Equal(t, "quota exceeded", stats.LastError)
	require.Equal(t, 1, rec.calls)
	require.Equal(t, 1, rec.errors)
}
