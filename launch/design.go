package launch

import (
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spikeekips/synctimer/synctimer"
	"github.com/spikeekips/synctimer/util"
	"gopkg.in/yaml.v3"
)

var (
	DefaultTimerInterval      = time.Second
	DefaultTimeServerPort     = 123
	DefaultTimeSyncerInterval = time.Minute * 10
)

// TimerDesign is the configuration of one timer.
type TimerDesign struct {
	TimeServer       string
	Metrics          MetricsDesign
	Interval         time.Duration
	PulseInterval    time.Duration
	TimeSyncInterval time.Duration
	TimeServerPort   int
	StartNow         bool
}

func TimerDesignFromFile(f string) (d TimerDesign, _ []byte, _ error) {
	e := util.StringErrorFunc("failed to load TimerDesign from file")

	b, err := os.ReadFile(filepath.Clean(f))
	if err != nil {
		return d, nil, e(err, "")
	}

	if err := d.DecodeYAML(b); err != nil {
		return d, b, e(err, "")
	}

	if err := d.IsValid(nil); err != nil {
		return d, b, e(err, "")
	}

	return d, b, nil
}

// IsValid fills the empty fields with the default values.
func (d *TimerDesign) IsValid([]byte) error {
	e := util.ErrInvalid.Errorf("invalid TimerDesign")

	switch {
	case d.Interval < 0:
		return e.Errorf("negative interval, %v", d.Interval)
	case d.Interval == 0:
		d.Interval = DefaultTimerInterval
	}

	switch {
	case d.PulseInterval < 0:
		return e.Errorf("negative pulse interval, %v", d.PulseInterval)
	case d.PulseInterval == 0:
		d.PulseInterval = synctimer.DefaultPulseInterval
	}

	d.TimeServer = strings.TrimSpace(d.TimeServer)

	if len(d.TimeServer) > 0 {
		switch {
		case d.TimeServerPort < 0 || d.TimeServerPort > 65535:
			return e.Errorf("invalid time server port, %d", d.TimeServerPort)
		case d.TimeServerPort == 0:
			d.TimeServerPort = DefaultTimeServerPort
		}

		switch {
		case d.TimeSyncInterval < 0:
			return e.Errorf("negative time sync interval, %v", d.TimeSyncInterval)
		case d.TimeSyncInterval == 0:
			d.TimeSyncInterval = DefaultTimeSyncerInterval
		}
	}

	if err := util.CheckIsValid(nil, false, &d.Metrics); err != nil {
		return e.Wrap(err)
	}

	return nil
}

type MetricsDesign struct {
	Listen    string
	Namespace string
}

func (d *MetricsDesign) IsValid([]byte) error {
	e := util.ErrInvalid.Errorf("invalid MetricsDesign")

	d.Listen = strings.TrimSpace(d.Listen)

	if len(d.Listen) < 1 {
		return nil
	}

	if _, _, err := net.SplitHostPort(d.Listen); err != nil {
		return e.Wrap(errors.Wrapf(err, "listen, %q", d.Listen))
	}

	return nil
}

// Enabled is true when metrics listen address is given.
func (d MetricsDesign) Enabled() bool {
	return len(d.Listen) > 0
}

type TimerDesignYAMLMarshaler struct {
	TimeServer       string                `yaml:"time_server,omitempty"`
	Interval         string                `yaml:"interval,omitempty"`
	PulseInterval    string                `yaml:"pulse_interval,omitempty"`
	TimeSyncInterval string                `yaml:"time_sync_interval,omitempty"`
	Metrics          MetricsDesignMarshaler `yaml:"metrics,omitempty"`
	TimeServerPort   int                   `yaml:"time_server_port,omitempty"`
	StartNow         bool                  `yaml:"start_now,omitempty"`
}

type MetricsDesignMarshaler struct {
	Listen    string `yaml:"listen,omitempty"`
	Namespace string `yaml:"namespace,omitempty"`
}

func (d TimerDesign) MarshalYAML() (interface{}, error) {
	m := TimerDesignYAMLMarshaler{
		TimeServer:     d.TimeServer,
		TimeServerPort: d.TimeServerPort,
		StartNow:       d.StartNow,
		Metrics: MetricsDesignMarshaler{
			Listen:    d.Metrics.Listen,
			Namespace: d.Metrics.Namespace,
		},
	}

	if d.Interval > 0 {
		m.Interval = d.Interval.String()
	}

	if d.PulseInterval > 0 {
		m.PulseInterval = d.PulseInterval.String()
	}

	if d.TimeSyncInterval > 0 {
		m.TimeSyncInterval = d.TimeSyncInterval.String()
	}

	return m, nil
}

func (d *TimerDesign) DecodeYAML(b []byte) error {
	e := util.StringErrorFunc("failed to unmarshal TimerDesign")

	var u TimerDesignYAMLMarshaler

	if err := yaml.Unmarshal(b, &u); err != nil {
		return e(err, "")
	}

	durations := []struct {
		d *time.Duration
		n string
		s string
	}{
		{n: "interval", s: u.Interval, d: &d.Interval},
		{n: "pulse_interval", s: u.PulseInterval, d: &d.PulseInterval},
		{n: "time_sync_interval", s: u.TimeSyncInterval, d: &d.TimeSyncInterval},
	}

	for i := range durations {
		j := durations[i]

		switch s := strings.TrimSpace(j.s); {
		case len(s) < 1:
			*j.d = 0
		default:
			k, err := time.ParseDuration(s)
			if err != nil {
				return e(errors.WithStack(err), "%s", j.n)
			}

			*j.d = k
		}
	}

	d.TimeServer = u.TimeServer
	d.TimeServerPort = u.TimeServerPort
	d.StartNow = u.StartNow
	d.Metrics = MetricsDesign{
		Listen:    u.Metrics.Listen,
		Namespace: u.Metrics.Namespace,
	}

	return nil
}

// TimerOptions converts the design to the options of synctimer.New.
func (d TimerDesign) TimerOptions() []synctimer.Option {
	return []synctimer.Option{
		synctimer.WithPulseInterval(d.PulseInterval),
	}
}
