package synctimer

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/spikeekips/synctimer/util"
	"github.com/spikeekips/synctimer/util/event"
	"github.com/spikeekips/synctimer/util/localtime"
	"github.com/spikeekips/synctimer/util/logging"
)

var DefaultPulseInterval = time.Second / 60 //nolint:gomnd //...

// Timer fires Tick at every interval boundary of the synchronized clock.
// Boundaries are computed from the start time and the number of ticks, so
// the timers started at the same synchronized time agree on when a tick
// happened, regardless of how often they are updated.
//
// Timer does not schedule its own wakeups; the boundaries are checked only
// when Update is called or a bound PulseSource pulses.
type Timer struct {
	*logging.Logging
	clock                 localtime.Clock
	janitor               *util.Janitor
	tick                  *event.Event[time.Duration]
	preTick               *event.Event[time.Duration]
	pausedDurationChanged *event.Event[time.Duration]
	updatech              pulse
	cancelPump            func()
	checked               func() // NOTE called after every scheduler pass; for testing
	id                    string
	relays                []func()
	pulseInterval         time.Duration
	clockState
	ledger     pauseLedger
	generation uint64
	running    bool
	sync.Mutex
}

type clockState struct {
	startTime     time.Time
	trueStartTime time.Time
	nextTick      time.Time
	interval      time.Duration
	tickCount     uint64
	elapsed       time.Duration
}

func New(interval time.Duration, opts ...Option) *Timer {
	o := newOptions(opts)

	t := &Timer{
		Logging: logging.NewLogging(func(c zerolog.Context) zerolog.Context {
			return c.Str("module", "synctimer").Str("id", o.id)
		}),
		clock:                 o.clock,
		janitor:               util.NewJanitor(),
		tick:                  event.New[time.Duration](),
		preTick:               event.New[time.Duration](),
		pausedDurationChanged: event.New[time.Duration](),
		updatech:              newPulse(),
		id:                    o.id,
		pulseInterval:         o.pulseInterval,
		clockState:            clockState{interval: interval},
	}

	_ = t.SetLogging(o.logging)

	t.janitor.Add(
		t.tick.Close,
		t.preTick.Close,
		t.pausedDurationChanged.Close,
	)
	t.janitor.Add(t.UnbindUpdate)
	t.janitor.Add(t.Stop)

	return t
}

func (t *Timer) ID() string {
	return t.id
}

// Tick fires with the current interval at every boundary.
func (t *Timer) Tick() *event.Event[time.Duration] {
	return t.tick
}

// PreTick fires just before Tick. If a PreTick subscriber pauses the timer,
// the Tick is deferred until the timer is resumed.
func (t *Timer) PreTick() *event.Event[time.Duration] {
	return t.preTick
}

func (t *Timer) PausedDurationChanged() *event.Event[time.Duration] {
	return t.pausedDurationChanged
}

func (t *Timer) IsRunning() bool {
	t.Lock()
	defer t.Unlock()

	return t.running
}

// Start starts the timer from now; the first tick is at now + interval. If
// the timer is already running, Start resumes it.
func (t *Timer) Start() {
	t.Lock()
	after := t.start()
	t.Unlock()

	after()
}

// StartNow fires Tick immediately and starts the timer. If the timer is
// already running, StartNow resumes it.
func (t *Timer) StartNow() {
	t.Lock()

	switch {
	case t.janitor.IsCleaned():
		t.Unlock()

		return
	case t.running:
		after := t.resume()
		t.Unlock()

		after()

		return
	}

	interval := t.interval

	t.Unlock()

	t.Log().Trace().Stringer("interval", interval).Msg("tick now")

	t.tick.Fire(interval)

	t.Start()
}

// Stop stops the update pump and resets the pause state. No event is fired
// after Stop returns.
func (t *Timer) Stop() {
	t.Lock()

	if !t.running {
		t.Unlock()

		return
	}

	t.generation++
	t.running = false

	cancel := t.cancelPump
	t.cancelPump = nil

	after := t.reset()

	t.Unlock()

	cancel()
	after()

	t.Log().Debug().Msg("stopped")
}

// Reset clears the pause state.
func (t *Timer) Reset() {
	t.Lock()
	after := t.reset()
	t.Unlock()

	after()
}

// SetInterval changes the interval without resetting the phase; the ticks
// already counted stay as they are and the next boundary moves by the
// difference of intervals.
func (t *Timer) SetInterval(d time.Duration) {
	t.Lock()

	old := t.interval

	t.nextTick = t.nextTick.Add(d - old)
	t.startTime = t.nextTick.Add(-time.Duration(t.tickCount) * d) //nolint:gosec //...
	t.interval = d

	t.Unlock()

	t.Log().Debug().Stringer("interval", d).Stringer("previous", old).Msg("interval changed")

	t.Update()
}

func (t *Timer) Interval() time.Duration {
	t.Lock()
	defer t.Unlock()

	return t.interval
}

func (t *Timer) TickCount() uint64 {
	t.Lock()
	defer t.Unlock()

	return t.tickCount
}

// ElapsedTime returns the time elapsed from the first start, excluding the
// paused duration. It is updated only when a tick boundary is crossed.
func (t *Timer) ElapsedTime() time.Duration {
	t.Lock()
	defer t.Unlock()

	return t.elapsed
}

// Destroy stops the timer, unbinds the pulse sources and closes the events.
// After Destroy, the timer can not be started again.
func (t *Timer) Destroy() {
	if t.janitor.Clean() {
		t.Log().Debug().Msg("destroyed")
	}
}

func (t *Timer) start() func() {
	switch {
	case t.janitor.IsCleaned():
		return func() {}
	case t.running:
		return t.resume()
	}

	now := t.clock.Now()

	t.trueStartTime = now
	t.startTime = now
	t.nextTick = now.Add(t.interval)
	t.tickCount = 1

	t.generation++
	t.running = true

	ctx, cancel := context.WithCancel(context.Background())
	t.cancelPump = cancel

	go t.pump(ctx, t.generation)

	l := t.Log().With().Time("start_time", now).Stringer("interval", t.interval).Logger()

	return func() {
		l.Debug().Msg("started")
	}
}
