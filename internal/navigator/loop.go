package navigator

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/bookforge/go-booksite/internal/logfields"
)

// Event is a message delivered to a Loop.
type Event int

const (
	// EventReady is posted once the page has finished loading.
	EventReady Event = iota + 1

	// EventScroll is posted for every scroll of the page.
	EventScroll
)

func (e Event) String() string {
	switch e {
	case EventReady:
		return "ready"
	case EventScroll:
		return "scroll"
	default:
		return "unknown"
	}
}

var (
	ErrLoopClosed  = errors.New("navigator: loop closed")
	ErrLoopRunning = errors.New("navigator: loop already running")
)

// Handler reacts to an event. Handlers run on the loop goroutine only.
type Handler func()

type settings struct {
	clock    clockwork.Clock
	interval time.Duration
	logger   *zap.Logger
}

// Option configures a Loop or a Widget.
type Option func(*settings)

// WithClock sets the clock driving the throttle timer.
func WithClock(c clockwork.Clock) Option {
	return func(s *settings) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithInterval sets the throttle period.
func WithInterval(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

func newSettings(opts []Option) settings {
	s := settings{
		clock:    clockwork.NewRealClock(),
		interval: DefaultInterval,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Loop is a single-threaded event dispatcher. Events, throttle ticks and
// queries are all handled on the goroutine running Run, so handlers never
// run concurrently with each other.
//
// At most one event kind is throttled. Handlers registered before Run may be
// set from any goroutine; after Run starts, only handlers may register more.
type Loop struct {
	s settings

	events  chan Event
	queries chan func()
	done    chan struct{}
	running atomic.Bool

	handlers       map[Event]Handler
	throttledEvent Event
	throttled      Handler
	throttle       Throttle
}

// NewLoop returns a loop that is not yet running.
func NewLoop(opts ...Option) *Loop {
	return &Loop{
		s:        newSettings(opts),
		events:   make(chan Event),
		queries:  make(chan func()),
		done:     make(chan struct{}),
		handlers: make(map[Event]Handler),
	}
}

// Handle registers h for every ev.
func (l *Loop) Handle(ev Event, h Handler) {
	l.handlers[ev] = h
}

// HandleThrottled registers h for ev behind the throttle. It replaces any
// previously throttled handler.
func (l *Loop) HandleThrottled(ev Event, h Handler) {
	l.throttledEvent = ev
	l.throttled = h
}

// Run dispatches until ctx is done. It returns nil on cancellation.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrLoopRunning
	}
	defer close(l.done)

	var (
		ticker clockwork.Ticker
		tick   <-chan time.Time
	)
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-l.events:
			if l.throttled != nil && ev == l.throttledEvent {
				invoke, arm := l.throttle.Event()
				if arm {
					ticker = l.s.clock.NewTicker(l.s.interval)
					tick = ticker.Chan()
				}
				if invoke {
					l.throttled()
				}
				continue
			}
			if h, ok := l.handlers[ev]; ok {
				h()
				continue
			}
			l.s.logger.Debug("unhandled event", logfields.Event(ev))

		case <-tick:
			invoke, disarm := l.throttle.Tick()
			if disarm {
				ticker.Stop()
				ticker, tick = nil, nil
			}
			if invoke {
				l.throttled()
			}

		case q := <-l.queries:
			q()
		}
	}
}

// Post delivers ev to the loop. It blocks until the loop accepts it.
func (l *Loop) Post(ctx context.Context, ev Event) error {
	select {
	case l.events <- ev:
		return nil
	case <-l.done:
		return ErrLoopClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do runs fn on the loop goroutine and waits for it to return.
// Every event posted before Do has been handled when fn runs.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	ran := make(chan struct{})
	q := func() {
		defer close(ran)
		fn()
	}

	select {
	case l.queries <- q:
	case <-l.done:
		return ErrLoopClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	<-ran
	return nil
}

// Armed reports whether the throttle timer is currently running.
func (l *Loop) Armed(ctx context.Context) (bool, error) {
	var armed bool
	err := l.Do(ctx, func() { armed = l.throttle.Armed() })
	return armed, err
}
