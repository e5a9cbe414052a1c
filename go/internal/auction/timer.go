package auction

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

const (
	DefaultCountdown    = 30 * time.Second
	DefaultTickInterval = time.Second
)

// TimerListener receives countdown notifications. Calls are made while the
// timer state is locked, so a listener must not call back into the Timer and
// should hand work off quickly.
type TimerListener interface {
	OnTick(generation uint64, remaining int)
	OnExpire(generation uint64)
}

// TimerState is a point-in-time view of the countdown
type TimerState struct {
	Counting   bool
	Remaining  int
	Generation uint64
	Deadline   time.Time
}

// Timer is a debounced, cancellable countdown. Every Restart supersedes the
// running countdown; only the newest generation may notify the listener.
type Timer struct {
	clock    clockwork.Clock
	listener TimerListener
	total    time.Duration
	interval time.Duration
	ticks    int

	// restartMu serializes Restart and Stop so that at most one countdown
	// goroutine is alive at a time.
	restartMu sync.Mutex

	mu        sync.Mutex
	gen       uint64
	counting  bool
	remaining int
	deadline  time.Time
	cancel    chan struct{}
	done      chan struct{}
}

// TimerOption configures a Timer
type TimerOption func(*Timer)

// WithCountdown sets the full countdown length
func WithCountdown(d time.Duration) TimerOption {
	return func(t *Timer) {
		if d > 0 {
			t.total = d
		}
	}
}

// WithTickInterval sets the granularity of tick notifications
func WithTickInterval(d time.Duration) TimerOption {
	return func(t *Timer) {
		if d > 0 {
			t.interval = d
		}
	}
}

// NewTimer creates an idle timer
func NewTimer(clock clockwork.Clock, listener TimerListener, opts ...TimerOption) *Timer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	t := &Timer{
		clock:    clock,
		listener: listener,
		total:    DefaultCountdown,
		interval: DefaultTickInterval,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.ticks = int(t.total / t.interval)
	if t.ticks < 1 {
		t.ticks = 1
	}
	return t
}

// Countdown returns the full countdown length
func (t *Timer) Countdown() time.Duration {
	return time.Duration(t.ticks) * t.interval
}

// Restart invalidates the running countdown, if any, waits for it to wind
// down and starts a fresh one. It returns the generation of the new countdown.
func (t *Timer) Restart() uint64 {
	t.restartMu.Lock()
	defer t.restartMu.Unlock()

	t.halt()

	// The ticker is created before Restart returns so a fake clock sees the
	// waiter as soon as the caller does.
	ticker := t.clock.NewTicker(t.interval)
	cancel := make(chan struct{})
	done := make(chan struct{})

	t.mu.Lock()
	gen := t.gen
	t.counting = true
	t.remaining = t.ticks
	t.deadline = t.clock.Now().Add(t.Countdown())
	t.cancel = cancel
	t.done = done
	t.listener.OnTick(gen, t.remaining)
	t.mu.Unlock()

	go t.run(gen, ticker, cancel, done)

	log.Debug().
		Uint64("generation", gen).
		Dur("countdown", t.Countdown()).
		Msg("auction timer restarted")

	return gen
}

// Stop cancels the running countdown without notifying the listener
func (t *Timer) Stop() {
	t.restartMu.Lock()
	defer t.restartMu.Unlock()
	t.halt()
}

// halt bumps the generation so nothing already in flight can emit, then
// signals the countdown goroutine and waits for it to exit.
// Callers must hold restartMu.
func (t *Timer) halt() {
	t.mu.Lock()
	t.gen++
	t.counting = false
	t.remaining = 0
	t.deadline = time.Time{}
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.mu.Unlock()

	if cancel == nil {
		return
	}
	close(cancel)
	<-done
}

// State returns the current countdown state
func (t *Timer) State() TimerState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return TimerState{
		Counting:   t.counting,
		Remaining:  t.remaining,
		Generation: t.gen,
		Deadline:   t.deadline,
	}
}

func (t *Timer) run(gen uint64, ticker clockwork.Ticker, cancel <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer ticker.Stop()

	for {
		select {
		case <-cancel:
			return
		case <-ticker.Chan():
			if !t.advance(gen) {
				return
			}
		}
	}
}

// advance performs one tick for gen. It reports whether the countdown is
// still running.
func (t *Timer) advance(gen uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if gen != t.gen || !t.counting {
		return false
	}

	t.remaining--
	if t.remaining > 0 {
		t.listener.OnTick(gen, t.remaining)
		return true
	}

	t.counting = false
	t.deadline = time.Time{}
	t.listener.OnExpire(gen)
	return false
}
