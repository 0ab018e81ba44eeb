package synctimer

import (
	"sync"
	"time"
)

type pauseLedger struct {
	lastPause      *time.Time // NOTE set only when paused
	pausedDuration time.Duration
	paused         bool
}

// Pause stops checking the tick boundaries. Pause does not fire any event;
// the paused time is counted when the timer is resumed.
func (t *Timer) Pause() {
	t.Lock()
	defer t.Unlock()

	if t.ledger.paused {
		return
	}

	now := t.clock.Now()

	t.ledger.paused = true
	t.ledger.lastPause = &now

	t.Log().Debug().Time("paused_at", now).Msg("paused")
}

// Resume adds the paused time to the paused duration and checks the tick
// boundaries immediately. If the timer is not running, Resume starts it.
func (t *Timer) Resume() {
	t.Lock()
	after := t.resume()
	t.Unlock()

	after()
}

func (t *Timer) IsPaused() bool {
	t.Lock()
	defer t.Unlock()

	return t.ledger.paused
}

// PausedDuration returns the total paused duration, which defers the tick
// boundaries.
func (t *Timer) PausedDuration() time.Duration {
	t.Lock()
	defer t.Unlock()

	return t.ledger.pausedDuration
}

// SetPausedDuration overwrites the paused duration. It is used when the pause
// is tracked outside of the timer.
func (t *Timer) SetPausedDuration(d time.Duration) {
	t.Lock()
	t.ledger.pausedDuration = d
	t.Unlock()

	t.Log().Debug().Stringer("paused_duration", d).Msg("paused duration set")

	t.pausedDurationChanged.Fire(d)
}

// ObservePausedDuration calls f with the current paused duration and with
// every change. The current value is delivered in another goroutine; f is
// never called concurrently and the last call of f always has the latest
// value. The returned function unsubscribes f and can be called several
// times.
func (t *Timer) ObservePausedDuration(f func(time.Duration)) func() {
	o := &pausedDurationObserver{f: f}

	id := t.pausedDurationChanged.Subscribe(func(d time.Duration) {
		o.deliver(d, false)
	})

	current := t.PausedDuration()

	go o.deliver(current, true)

	var once sync.Once

	return func() {
		once.Do(func() {
			_ = t.pausedDurationChanged.Unsubscribe(id)

			o.close()
		})
	}
}

func (t *Timer) resume() func() {
	switch {
	case !t.running:
		return t.start()
	case !t.ledger.paused || t.ledger.lastPause == nil:
		t.ledger.paused = false

		return func() {}
	}

	now := t.clock.Now()

	t.ledger.paused = false
	t.ledger.pausedDuration += now.Sub(*t.ledger.lastPause)
	t.ledger.lastPause = nil

	d := t.ledger.pausedDuration

	return func() {
		t.Log().Debug().Time("resumed_at", now).Stringer("paused_duration", d).Msg("resumed")

		t.pausedDurationChanged.Fire(d)
		t.Update()
	}
}

func (t *Timer) reset() func() {
	t.ledger.paused = false
	t.ledger.lastPause = nil

	if t.ledger.pausedDuration == 0 {
		return func() {}
	}

	t.ledger.pausedDuration = 0

	return func() {
		t.pausedDurationChanged.Fire(0)
	}
}

type pausedDurationObserver struct {
	f       func(time.Duration)
	pending *time.Duration
	started bool
	busy    bool
	closed  bool
	sync.Mutex
}

// deliver calls f in order. The value arriving while f is running is kept and
// delivered after f returns; only the latest one is kept. The initial value is
// dropped when a change is already delivered.
func (o *pausedDurationObserver) deliver(d time.Duration, initial bool) {
	o.Lock()

	switch {
	case o.closed, initial && o.started:
		o.Unlock()

		return
	case o.busy:
		o.started = true
		o.pending = &d
		o.Unlock()

		return
	}

	o.started = true
	o.busy = true

	o.Unlock()

	for {
		o.f(d)

		o.Lock()

		if o.pending == nil || o.closed {
			o.busy = false
			o.Unlock()

			return
		}

		d = *o.pending
		o.pending = nil

		o.Unlock()
	}
}

func (o *pausedDurationObserver) close() {
	o.Lock()
	defer o.Unlock()

	o.closed = true
	o.pending = nil
}
