package synctimer

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spikeekips/synctimer/driver"
)

// PulseSource triggers Update at its own cadence, like once per frame.
type PulseSource interface {
	SubscribePulse(func()) (unsubscribe func())
}

// pulse holds at most one pending update request. The requests arriving while
// the pump is busy are merged into one; a scheduler pass handles every crossed
// boundary, so nothing is lost by merging.
type pulse chan struct{}

func newPulse() pulse {
	return make(pulse, 1)
}

func (p pulse) fire() {
	select {
	case p <- struct{}{}:
	default:
	}
}

func (p pulse) wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return errors.WithStack(ctx.Err())
	case <-p:
		return nil
	}
}

// Update requests one check of the tick boundaries.
func (t *Timer) Update() {
	t.updatech.fire()
}

// BindUpdate calls Update whenever the source pulses. If source is nil, a
// driver.FrameDriver with the pulse interval of the timer is started and
// bound; it is stopped by UnbindUpdate.
func (t *Timer) BindUpdate(source PulseSource) {
	if t.janitor.IsCleaned() {
		return
	}

	var unbind func()

	switch {
	case source == nil:
		d := driver.NewFrameDriver(t.pulseInterval)
		_ = d.SetLogging(t.Logging)

		unsubscribe := d.SubscribePulse(t.Update)

		if err := d.Start(context.Background()); err != nil {
			unsubscribe()

			t.Log().Error().Err(err).Msg("failed to start frame driver")

			return
		}

		unbind = func() {
			unsubscribe()
			_ = d.Stop()
		}
	default:
		unbind = source.SubscribePulse(t.Update)
	}

	t.Lock()
	t.relays = append(t.relays, unbind)
	t.Unlock()

	t.Log().Debug().Bool("default_source", source == nil).Msg("update bound")
}

// UnbindUpdate removes all the bound pulse sources.
func (t *Timer) UnbindUpdate() {
	t.Lock()
	relays := t.relays
	t.relays = nil
	t.Unlock()

	for i := range relays {
		relays[i]()
	}

	if len(relays) > 0 {
		t.Log().Debug().Int("sources", len(relays)).Msg("update unbound")
	}
}

// pump checks the tick boundaries once per update request until the timer is
// stopped. gen is the generation of timer when the pump is launched; the pump
// exits once the generation of timer changes.
func (t *Timer) pump(ctx context.Context, gen uint64) {
	defer t.Log().Trace().Uint64("generation", gen).Msg("pump stopped")

	for {
		if err := t.updatech.wait(ctx); err != nil {
			return
		}

		if !t.isGeneration(gen) {
			t.updatech.fire() // NOTE hand over the request to the next pump

			return
		}

		if err := t.checkTicks(ctx, gen); err != nil {
			return
		}

		t.Lock()
		checked := t.checked
		t.Unlock()

		if checked != nil {
			checked()
		}
	}
}

func (t *Timer) isGeneration(gen uint64) bool {
	t.Lock()
	defer t.Unlock()

	return t.generation == gen
}
