package synctimer

import (
	"time"

	"github.com/spikeekips/synctimer/util"
	"github.com/spikeekips/synctimer/util/localtime"
	"github.com/spikeekips/synctimer/util/logging"
)

type Option func(*options)

type options struct {
	clock         localtime.Clock
	logging       *logging.Logging
	id            string
	pulseInterval time.Duration
}

func newOptions(opts []Option) options {
	o := options{
		clock:         localtime.DefaultClock,
		pulseInterval: DefaultPulseInterval,
	}

	for i := range opts {
		opts[i](&o)
	}

	if len(o.id) < 1 {
		o.id = util.ULID().String()
	}

	return o
}

// WithClock sets the synchronized clock; by default the timer follows
// localtime.DefaultClock.
func WithClock(c localtime.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

func WithLogging(l *logging.Logging) Option {
	return func(o *options) {
		o.logging = l
	}
}

func WithID(id string) Option {
	return func(o *options) {
		o.id = id
	}
}

// WithPulseInterval sets the interval of the default pulse source, which is
// bound by BindUpdate(nil).
func WithPulseInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.pulseInterval = d
		}
	}
}
