package session

import (
	"sync"
	"time"
)

// The countdown ticks once per wall-clock second.
const defaultTickInterval = time.Second

// Timer is a monotonic countdown owned by one attempt. It is constructed
// once per attempt and disposed on teardown; Start while running is a no-op
// so a second countdown loop can never exist. The expiry callback fires
// exactly once per timer.
type Timer struct {
	mu        sync.Mutex
	interval  time.Duration
	remaining int64 // milliseconds, never negative
	running   bool
	expired   bool
	disposed  bool
	stop      chan struct{}
	onExpire  func()
}

func NewTimer(onExpire func()) *Timer {
	return &Timer{
		interval: defaultTickInterval,
		onExpire: onExpire,
	}
}

// newTimerWithInterval is used by tests to tick faster than wall-clock seconds.
func newTimerWithInterval(interval time.Duration, onExpire func()) *Timer {
	return &Timer{
		interval: interval,
		onExpire: onExpire,
	}
}

// Start begins the countdown from durationMs. Calling Start on a running,
// expired, or disposed timer does nothing.
func (t *Timer) Start(durationMs int64) {
	t.mu.Lock()
	if t.running || t.expired || t.disposed {
		t.mu.Unlock()
		return
	}
	if durationMs < 0 {
		durationMs = 0
	}
	t.remaining = durationMs
	if t.remaining == 0 {
		// Resuming an attempt whose time already ran out expires immediately.
		t.expired = true
		fire := t.onExpire
		t.mu.Unlock()
		if fire != nil {
			go fire()
		}
		return
	}
	t.running = true
	t.stop = make(chan struct{})
	go t.loop(t.stop)
	t.mu.Unlock()
}

// Pause suspends ticking without touching the remaining time. Idempotent.
func (t *Timer) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		close(t.stop)
		t.running = false
	}
}

// Resume continues ticking from the current remaining time.
func (t *Timer) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running || t.expired || t.disposed || t.remaining <= 0 {
		return
	}
	t.running = true
	t.stop = make(chan struct{})
	go t.loop(t.stop)
}

// Remaining reports the countdown in milliseconds.
func (t *Timer) Remaining() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

// Dispose releases the ticking goroutine for good.
func (t *Timer) Dispose() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		close(t.stop)
		t.running = false
	}
	t.disposed = true
}

func (t *Timer) loop(stop chan struct{}) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			t.mu.Lock()
			select {
			case <-stop:
				// Pause landed between this tick being drawn and the lock;
				// the loop is stale and must not touch the countdown.
				t.mu.Unlock()
				return
			default:
			}
			t.remaining -= t.interval.Milliseconds()
			if t.remaining < 0 {
				t.remaining = 0
			}
			remaining := t.remaining
			var fire func()
			if remaining == 0 && !t.expired {
				t.expired = true
				t.running = false
				fire = t.onExpire
			}
			t.mu.Unlock()
			if fire != nil {
				fire()
				return
			}
			if remaining == 0 {
				return
			}
		}
	}
}
