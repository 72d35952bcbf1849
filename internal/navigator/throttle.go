package navigator

import "time"

// DefaultInterval is the scroll throttle period.
const DefaultInterval = 200 * time.Millisecond

// Throttle is the leading-edge throttle state machine with a trailing
// catch-up call. It holds no timer itself: the caller arms and disarms a
// periodic timer as instructed by the return values.
//
//	idle  + event          -> invoke, arm
//	armed + event          -> mark pending
//	armed + tick (pending) -> invoke, stay armed
//	armed + tick (idle)    -> disarm
type Throttle struct {
	armed   bool
	pending bool
}

// Event records an incoming event. invoke reports whether the wrapped
// function must run now; arm reports whether the timer must be started.
func (t *Throttle) Event() (invoke, arm bool) {
	if t.armed {
		t.pending = true
		return false, false
	}
	t.armed = true
	t.pending = false
	return true, true
}

// Tick records a timer tick. disarm reports whether the timer must stop.
func (t *Throttle) Tick() (invoke, disarm bool) {
	if !t.armed {
		return false, false
	}
	if t.pending {
		t.pending = false
		return true, false
	}
	t.armed = false
	return false, true
}

// Armed reports whether the periodic timer is running.
func (t *Throttle) Armed() bool { return t.armed }

// Pending reports whether a catch-up call is scheduled for the next tick.
func (t *Throttle) Pending() bool { return t.pending }
