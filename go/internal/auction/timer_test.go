package auction

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type timerNote struct {
	gen       uint64
	remaining int
	expired   bool
}

// timerRecorder is a TimerListener that keeps every notification
type timerRecorder struct {
	mu    sync.Mutex
	notes []timerNote
}

func (r *timerRecorder) OnTick(gen uint64, remaining int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, timerNote{gen: gen, remaining: remaining})
}

func (r *timerRecorder) OnExpire(gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, timerNote{gen: gen, expired: true})
}

func (r *timerRecorder) snapshot() []timerNote {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]timerNote(nil), r.notes...)
}

func (r *timerRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.notes)
}

func (r *timerRecorder) expiries() []timerNote {
	var out []timerNote
	for _, n := range r.snapshot() {
		if n.expired {
			out = append(out, n)
		}
	}
	return out
}

type fakeClock interface {
	clockwork.Clock
	Advance(d time.Duration)
	BlockUntilContext(ctx context.Context, n int) error
}

// advanceTicks moves the fake clock one interval at a time, waiting for the
// countdown goroutine to report each tick before moving on.
func advanceTicks(t *testing.T, clock fakeClock, interval time.Duration, n int, count func() int) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for i := 0; i < n; i++ {
		require.NoError(t, clock.BlockUntilContext(ctx, 1))
		before := count()
		clock.Advance(interval)
		require.Eventually(t, func() bool { return count() > before }, 2*time.Second, time.Millisecond,
			"no notification after tick %d", i+1)
	}
}

func TestTimer_CountsDownAndExpiresOnce(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	rec := &timerRecorder{}
	timer := NewTimer(clock, rec, WithCountdown(5*time.Second))

	assert.False(t, timer.State().Counting)

	gen := timer.Restart()
	st := timer.State()
	assert.True(t, st.Counting)
	assert.Equal(t, 5, st.Remaining)
	assert.Equal(t, gen, st.Generation)
	assert.Equal(t, clock.Now().Add(5*time.Second), st.Deadline)

	advanceTicks(t, clock, time.Second, 5, rec.count)

	notes := rec.snapshot()
	require.Len(t, notes, 6)
	for i, want := range []int{5, 4, 3, 2, 1} {
		assert.Equal(t, timerNote{gen: gen, remaining: want}, notes[i])
	}
	assert.Equal(t, timerNote{gen: gen, expired: true}, notes[5])
	assert.False(t, timer.State().Counting)

	// no further notifications once idle
	clock.Advance(10 * time.Second)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, 6, rec.count())
}

func TestTimer_DefaultCountdown(t *testing.T) {
	t.Parallel()

	timer := NewTimer(clockwork.NewFakeClock(), &timerRecorder{})
	assert.Equal(t, 30*time.Second, timer.Countdown())

	timer = NewTimer(clockwork.NewFakeClock(), &timerRecorder{},
		WithCountdown(3*time.Second), WithTickInterval(500*time.Millisecond))
	assert.Equal(t, 3*time.Second, timer.Countdown())
}

func TestTimer_RestartDebounces(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	rec := &timerRecorder{}
	timer := NewTimer(clock, rec)

	first := timer.Restart()
	advanceTicks(t, clock, time.Second, 10, rec.count)

	second := timer.Restart()
	require.Greater(t, second, first)

	// 29 more ticks of the new generation; the first generation would have
	// expired long before the end of this stretch
	advanceTicks(t, clock, time.Second, 29, rec.count)
	assert.Empty(t, rec.expiries())

	advanceTicks(t, clock, time.Second, 1, rec.count)

	expiries := rec.expiries()
	require.Len(t, expiries, 1)
	assert.Equal(t, second, expiries[0].gen)

	var sawSecond bool
	for _, n := range rec.snapshot() {
		if n.gen == second {
			sawSecond = true
			continue
		}
		assert.False(t, sawSecond, "stale notification %+v after newer generation", n)
	}
}

func TestTimer_StopSuppressesExpiry(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	rec := &timerRecorder{}
	timer := NewTimer(clock, rec, WithCountdown(3*time.Second))

	timer.Restart()
	advanceTicks(t, clock, time.Second, 1, rec.count)
	timer.Stop()

	before := rec.count()
	clock.Advance(time.Minute)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, before, rec.count())
	assert.Empty(t, rec.expiries())
	assert.False(t, timer.State().Counting)

	// a stopped timer can be restarted
	gen := timer.Restart()
	advanceTicks(t, clock, time.Second, 3, rec.count)
	expiries := rec.expiries()
	require.Len(t, expiries, 1)
	assert.Equal(t, gen, expiries[0].gen)
}

func TestTimer_StopWhenIdle(t *testing.T) {
	t.Parallel()

	timer := NewTimer(clockwork.NewFakeClock(), &timerRecorder{})
	timer.Stop()
	timer.Stop()
	assert.False(t, timer.State().Counting)
}

func TestTimer_ConcurrentRestartsExpireOnce(t *testing.T) {
	t.Parallel()

	rec := &timerRecorder{}
	interval := 5 * time.Millisecond
	timer := NewTimer(clockwork.NewRealClock(), rec,
		WithTickInterval(interval), WithCountdown(20*interval))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				timer.Restart()
				time.Sleep(time.Millisecond)
			}
		}()
	}
	wg.Wait()
	last := timer.State().Generation

	require.Eventually(t, func() bool { return len(rec.expiries()) > 0 }, 2*time.Second, time.Millisecond)
	time.Sleep(20 * interval)

	expiries := rec.expiries()
	require.Len(t, expiries, 1)
	assert.Equal(t, last, expiries[0].gen)

	// generations never go backwards and ticks within one generation are
	// strictly decreasing without gaps
	var prev timerNote
	for i, n := range rec.snapshot() {
		if i > 0 {
			require.GreaterOrEqual(t, n.gen, prev.gen, "generation went backwards at %d", i)
			if n.gen == prev.gen && !n.expired {
				require.Equal(t, prev.remaining-1, n.remaining, "gap within generation %d", n.gen)
			}
		}
		prev = n
	}
}
