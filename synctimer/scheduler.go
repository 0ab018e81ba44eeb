package synctimer

import (
	"context"
	"time"

	"github.com/spikeekips/synctimer/util"
)

var errPumpStopped = util.NewError("pump stopped")

// checkTicks fires PreTick and Tick for every boundary crossed until now, in
// order. The events are fired without holding the lock, so the subscribers
// can call the methods of timer; before every fire the generation is checked
// again, so nothing fires after the timer is stopped.
func (t *Timer) checkTicks(ctx context.Context, gen uint64) error {
	t.Lock()

	switch {
	case t.generation != gen:
		t.Unlock()

		return errPumpStopped.Call()
	case t.ledger.paused:
		t.Unlock()

		return nil
	}

	now := t.clock.Now()

	if t.isTickReady(now) {
		t.elapsed = now.Sub(t.trueStartTime) - t.ledger.pausedDuration
	}

	t.Unlock()

	for {
		interval, ready, err := t.nextInterval(gen, func() bool { return t.isTickReady(now) })
		switch {
		case err != nil:
			return err
		case !ready:
			return nil
		}

		t.preTick.Fire(interval)

		if err := t.waitResumed(ctx, gen); err != nil {
			return err
		}

		interval, _, err = t.nextInterval(gen, nil)
		if err != nil {
			return err
		}

		t.Log().Trace().Stringer("interval", interval).Msg("tick")

		t.tick.Fire(interval)

		keep, err := t.advance(gen)
		if err != nil || !keep {
			return err
		}
	}
}

// isTickReady checks the next boundary, deferred by the paused duration.
func (t *Timer) isTickReady(now time.Time) bool {
	return !now.Before(t.nextTick.Add(t.ledger.pausedDuration))
}

func (t *Timer) nextInterval(gen uint64, ready func() bool) (time.Duration, bool, error) {
	t.Lock()
	defer t.Unlock()

	switch {
	case t.generation != gen:
		return 0, false, errPumpStopped.Call()
	case ready != nil && !ready():
		return 0, false, nil
	default:
		return t.interval, true, nil
	}
}

// waitResumed blocks while the timer is paused; the pause state is checked
// at every update request.
func (t *Timer) waitResumed(ctx context.Context, gen uint64) error {
	for {
		t.Lock()
		paused, stopped := t.ledger.paused, t.generation != gen
		t.Unlock()

		switch {
		case stopped:
			return errPumpStopped.Call()
		case !paused:
			return nil
		}

		if err := t.updatech.wait(ctx); err != nil {
			return err
		}
	}
}

// advance moves to the next boundary. The boundary is computed from the start
// time, not from the previous boundary, so the error does not accumulate.
// With the non-positive interval, advance stops the pass after one tick.
func (t *Timer) advance(gen uint64) (bool, error) {
	t.Lock()
	defer t.Unlock()

	if t.generation != gen {
		return false, errPumpStopped.Call()
	}

	t.tickCount++
	t.nextTick = t.startTime.Add(time.Duration(t.tickCount) * t.interval) //nolint:gosec //...

	return t.interval > 0, nil
}
