package driver

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/spikeekips/synctimer/util"
	"github.com/spikeekips/synctimer/util/event"
	"github.com/spikeekips/synctimer/util/logging"
)

// FrameDriver fires Frames at the fixed interval of local time. Frames are
// not aligned to the synchronized clock; they only tell when to check.
type FrameDriver struct {
	*logging.Logging
	*util.ContextDaemon
	frames   *event.Event[time.Time]
	interval time.Duration
}

func NewFrameDriver(interval time.Duration) *FrameDriver {
	d := &FrameDriver{
		Logging: logging.NewLogging(func(c zerolog.Context) zerolog.Context {
			return c.Str("module", "frame-driver").Stringer("interval", interval)
		}),
		frames:   event.New[time.Time](),
		interval: interval,
	}

	d.ContextDaemon = util.NewContextDaemon("frame-driver", d.run)

	return d
}

func (d *FrameDriver) SetLogging(l *logging.Logging) *logging.Logging {
	_ = d.ContextDaemon.SetLogging(l)

	return d.Logging.SetLogging(l)
}

func (d *FrameDriver) Interval() time.Duration {
	return d.interval
}

// Frames fires the local time at every frame.
func (d *FrameDriver) Frames() *event.Event[time.Time] {
	return d.frames
}

func (d *FrameDriver) SubscribePulse(f func()) func() {
	return d.frames.SubscribePulse(f)
}

func (d *FrameDriver) run(ctx context.Context) error {
	if d.interval < 1 {
		return util.ErrInvalid.Errorf("invalid frame interval, %v", d.interval)
	}

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case t := <-ticker.C:
			d.frames.Fire(t)
		}
	}
}
