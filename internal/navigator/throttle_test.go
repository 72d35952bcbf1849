package navigator

import "testing"

// ---------------------------------------------------------------------------
// TestThrottle - State machine transitions
// ---------------------------------------------------------------------------

func TestThrottle(t *testing.T) {
	t.Parallel()

	type step struct {
		tick       bool
		wantInvoke bool
		wantTimer  bool // arm on events, disarm on ticks
		wantArmed  bool
	}

	tests := []struct {
		name  string
		steps []step
	}{
		{
			name: "leading call arms the timer",
			steps: []step{
				{tick: false, wantInvoke: true, wantTimer: true, wantArmed: true},
			},
		},
		{
			name: "idle tick disarms",
			steps: []step{
				{tick: false, wantInvoke: true, wantTimer: true, wantArmed: true},
				{tick: true, wantInvoke: false, wantTimer: true, wantArmed: false},
			},
		},
		{
			name: "burst collapses into one trailing call",
			steps: []step{
				{tick: false, wantInvoke: true, wantTimer: true, wantArmed: true},
				{tick: false, wantArmed: true},
				{tick: false, wantArmed: true},
				{tick: false, wantArmed: true},
				{tick: true, wantInvoke: true, wantArmed: true},
				{tick: true, wantTimer: true, wantArmed: false},
			},
		},
		{
			name: "event after disarm fires immediately",
			steps: []step{
				{tick: false, wantInvoke: true, wantTimer: true, wantArmed: true},
				{tick: true, wantTimer: true, wantArmed: false},
				{tick: false, wantInvoke: true, wantTimer: true, wantArmed: true},
			},
		},
		{
			name: "stray tick while idle is ignored",
			steps: []step{
				{tick: true, wantArmed: false},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var th Throttle
			for i, s := range tt.steps {
				var invoke, timer bool
				if s.tick {
					invoke, timer = th.Tick()
				} else {
					invoke, timer = th.Event()
				}
				if invoke != s.wantInvoke || timer != s.wantTimer {
					t.Fatalf("step %d: got (invoke=%v, timer=%v), want (%v, %v)",
						i, invoke, timer, s.wantInvoke, s.wantTimer)
				}
				if th.Armed() != s.wantArmed {
					t.Fatalf("step %d: Armed() = %v, want %v", i, th.Armed(), s.wantArmed)
				}
			}
		})
	}
}

func TestThrottle_PendingClearedByTick(t *testing.T) {
	t.Parallel()

	var th Throttle
	th.Event()
	th.Event()
	if !th.Pending() {
		t.Fatal("Pending() = false after a second event")
	}
	th.Tick()
	if th.Pending() {
		t.Error("Pending() = true after the catch-up tick")
	}
}
