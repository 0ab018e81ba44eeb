package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spikeekips/synctimer/synctimer"
)

// TimerCollector exports the state of Timer; register it to the prometheus
// Registerer and Close it when the timer is destroyed.
type TimerCollector struct {
	timer          *synctimer.Timer
	ticks          prometheus.Counter
	preTicks       prometheus.Counter
	pausedDuration prometheus.Gauge
	tickCount      prometheus.GaugeFunc
	elapsed        prometheus.GaugeFunc
	interval       prometheus.GaugeFunc
	running        prometheus.GaugeFunc
	closeOnce      sync.Once
	unsubscribes   []func()
}

func NewTimerCollector(namespace string, timer *synctimer.Timer) *TimerCollector {
	labels := prometheus.Labels{"timer": timer.ID()}

	opts := func(name, help string) prometheus.Opts {
		return prometheus.Opts{
			Namespace:   namespace,
			Subsystem:   "synctimer",
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		}
	}

	c := &TimerCollector{
		timer:    timer,
		ticks:    prometheus.NewCounter(prometheus.CounterOpts(opts("ticks_total", "Number of fired ticks."))),
		preTicks: prometheus.NewCounter(prometheus.CounterOpts(opts("preticks_total", "Number of fired preticks."))),
		pausedDuration: prometheus.NewGauge(prometheus.GaugeOpts(
			opts("paused_duration_seconds", "Total paused duration."),
		)),
		tickCount: prometheus.NewGaugeFunc(
			prometheus.GaugeOpts(opts("tick_count", "Tick count since the last start.")),
			func() float64 { return float64(timer.TickCount()) },
		),
		elapsed: prometheus.NewGaugeFunc(
			prometheus.GaugeOpts(opts("elapsed_seconds", "Elapsed time at the last tick boundary.")),
			func() float64 { return timer.ElapsedTime().Seconds() },
		),
		interval: prometheus.NewGaugeFunc(
			prometheus.GaugeOpts(opts("interval_seconds", "Current tick interval.")),
			func() float64 { return timer.Interval().Seconds() },
		),
		running: prometheus.NewGaugeFunc(
			prometheus.GaugeOpts(opts("running", "1 if the timer is running.")),
			func() float64 {
				if timer.IsRunning() {
					return 1
				}

				return 0
			},
		),
	}

	c.unsubscribes = []func(){
		timer.Tick().SubscribePulse(c.ticks.Inc),
		timer.PreTick().SubscribePulse(c.preTicks.Inc),
		timer.ObservePausedDuration(func(d time.Duration) {
			c.pausedDuration.Set(d.Seconds())
		}),
	}

	return c
}

func (c *TimerCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, m := range c.collectors() {
		m.Describe(ch)
	}
}

func (c *TimerCollector) Collect(ch chan<- prometheus.Metric) {
	for _, m := range c.collectors() {
		m.Collect(ch)
	}
}

// Close stops following the events of timer.
func (c *TimerCollector) Close() {
	c.closeOnce.Do(func() {
		for i := range c.unsubscribes {
			c.unsubscribes[i]()
		}
	})
}

func (c *TimerCollector) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		c.ticks,
		c.preTicks,
		c.pausedDuration,
		c.tickCount,
		c.elapsed,
		c.interval,
		c.running,
	}
}
