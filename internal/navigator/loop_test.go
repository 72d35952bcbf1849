package navigator

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func runLoop(t *testing.T, l *Loop) context.Context {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- l.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-errc; err != nil {
			t.Errorf("Run() error = %v", err)
		}
	})

	tctx, tcancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(tcancel)
	return tctx
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func waitDisarmed(t *testing.T, ctx context.Context, l *Loop) {
	t.Helper()

	waitFor(t, "throttle timer to disarm", func() bool {
		armed, err := l.Armed(ctx)
		if err != nil {
			t.Fatalf("Armed() error = %v", err)
		}
		return !armed
	})
}

// invocationLog records the fake time of each throttled invocation.
type invocationLog struct {
	mu    sync.Mutex
	clock clockwork.Clock
	at    []time.Time
}

func (r *invocationLog) record() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.at = append(r.at, r.clock.Now())
}

func (r *invocationLog) times() []time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Time(nil), r.at...)
}

// ---------------------------------------------------------------------------
// TestLoop_Throttle - Leading call, trailing catch-up and disarm
// ---------------------------------------------------------------------------

func TestLoop_BurstInvokesTwice(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	log := &invocationLog{clock: clock}
	l := NewLoop(WithClock(clock))
	l.HandleThrottled(EventScroll, log.record)
	ctx := runLoop(t, l)

	for i := 0; i < 10; i++ {
		if err := l.Post(ctx, EventScroll); err != nil {
			t.Fatalf("Post() error = %v", err)
		}
	}
	armed, err := l.Armed(ctx)
	if err != nil {
		t.Fatalf("Armed() error = %v", err)
	}
	if !armed {
		t.Fatal("Armed() = false after a burst")
	}
	if got := len(log.times()); got != 1 {
		t.Fatalf("invocations after burst = %d, want 1 (leading)", got)
	}

	if err := clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatalf("BlockUntilContext() error = %v", err)
	}
	clock.Advance(DefaultInterval)
	waitFor(t, "trailing invocation", func() bool { return len(log.times()) == 2 })

	clock.Advance(DefaultInterval)
	waitDisarmed(t, ctx, l)

	times := log.times()
	if len(times) != 2 {
		t.Fatalf("invocations = %d, want 2", len(times))
	}
	if gap := times[1].Sub(times[0]); gap < DefaultInterval {
		t.Errorf("gap between invocations = %v, want >= %v", gap, DefaultInterval)
	}
}

func TestLoop_IdleDisarmsThenFiresImmediately(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	var calls atomic.Int32
	l := NewLoop(WithClock(clock), WithInterval(50*time.Millisecond))
	l.HandleThrottled(EventScroll, func() { calls.Add(1) })
	ctx := runLoop(t, l)

	if err := l.Post(ctx, EventScroll); err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	if err := clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatalf("BlockUntilContext() error = %v", err)
	}
	clock.Advance(50 * time.Millisecond)
	waitDisarmed(t, ctx, l)

	if err := clock.BlockUntilContext(ctx, 0); err != nil {
		t.Fatalf("BlockUntilContext(0) error = %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("calls = %d, want 1 (no catch-up when idle)", got)
	}

	if err := l.Post(ctx, EventScroll); err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	if err := l.Do(ctx, func() {}); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("calls = %d, want 2 without advancing the clock", got)
	}
}

// ---------------------------------------------------------------------------
// TestLoop_Dispatch - Plain handlers, queries and lifecycle
// ---------------------------------------------------------------------------

func TestLoop_PlainHandlersAreNotThrottled(t *testing.T) {
	t.Parallel()

	var calls int
	l := NewLoop(WithClock(clockwork.NewFakeClock()))
	l.Handle(EventReady, func() { calls++ })
	ctx := runLoop(t, l)

	for i := 0; i < 3; i++ {
		if err := l.Post(ctx, EventReady); err != nil {
			t.Fatalf("Post() error = %v", err)
		}
	}
	// Unhandled events are dropped.
	if err := l.Post(ctx, EventScroll); err != nil {
		t.Fatalf("Post() error = %v", err)
	}

	var got int
	if err := l.Do(ctx, func() { got = calls }); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}
}

func TestLoop_RunTwice(t *testing.T) {
	t.Parallel()

	l := NewLoop()
	runLoop(t, l)

	waitFor(t, "loop to start", func() bool { return l.running.Load() })
	if err := l.Run(context.Background()); !errors.Is(err, ErrLoopRunning) {
		t.Errorf("second Run() error = %v, want ErrLoopRunning", err)
	}
}

func TestLoop_ClosedAfterCancel(t *testing.T) {
	t.Parallel()

	l := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = l.Run(ctx)
	}()
	cancel()
	<-done

	if err := l.Post(context.Background(), EventScroll); !errors.Is(err, ErrLoopClosed) {
		t.Errorf("Post() error = %v, want ErrLoopClosed", err)
	}
	if err := l.Do(context.Background(), func() {}); !errors.Is(err, ErrLoopClosed) {
		t.Errorf("Do() error = %v, want ErrLoopClosed", err)
	}
}

func TestLoop_PostHonoursContext(t *testing.T) {
	t.Parallel()

	l := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := l.Post(ctx, EventReady); !errors.Is(err, context.Canceled) {
		t.Errorf("Post() error = %v, want context.Canceled", err)
	}
}

func TestEvent_String(t *testing.T) {
	t.Parallel()

	tests := map[Event]string{
		EventReady:  "ready",
		EventScroll: "scroll",
		Event(99):   "unknown",
	}
	for ev, want := range tests {
		if got := ev.String(); got != want {
			t.Errorf("Event(%d).String() = %q, want %q", int(ev), got, want)
		}
	}
}
