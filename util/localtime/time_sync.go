package localtime

import (
	"context"
	"sync"
	"time"

	"github.com/beevik/ntp"
	"github.com/rs/zerolog"
	"github.com/spikeekips/synctimer/util"
	"github.com/spikeekips/synctimer/util/logging"
)

var (
	allowedTimeSyncOffset     = time.Millisecond * 500
	minTimeSyncCheckInterval  = time.Minute * 10
	timeServerQueryingTimeout = time.Second * 5
	defaultTimeSyncer         *TimeSyncer
	defaultTimeSyncerLock     sync.RWMutex
)

type queryFunc func(host string, opt ntp.QueryOptions) (*ntp.Response, error)

// TimeSyncer tracks the offset between the local time and the time server.
type TimeSyncer struct {
	*logging.Logging
	*util.ContextDaemon
	query    queryFunc
	host     string
	port     int
	offset   time.Duration
	interval time.Duration
	sync.RWMutex
}

// NewTimeSyncer creates new TimeSyncer and checks the time server once.
func NewTimeSyncer(server string, port int, interval time.Duration) (*TimeSyncer, error) {
	ts := newTimeSyncer(server, port, interval, ntp.QueryWithOptions)

	return ts, ts.check()
}

func newTimeSyncer(server string, port int, interval time.Duration, query queryFunc) *TimeSyncer {
	ts := &TimeSyncer{
		Logging: logging.NewLogging(func(c zerolog.Context) zerolog.Context {
			return c.Str("module", "time-syncer").
				Str("server", server).
				Int("port", port).
				Stringer("interval", interval)
		}),
		host:     server,
		port:     port,
		interval: interval,
		query:    query,
	}

	ts.ContextDaemon = util.NewContextDaemon("time-syncer", ts.schedule)

	return ts
}

func (ts *TimeSyncer) Start(ctx context.Context) error {
	if ts.interval < minTimeSyncCheckInterval {
		ts.Log().Warn().
			Stringer("check_interval", ts.interval).
			Stringer("min_check_interval", minTimeSyncCheckInterval).
			Msg("interval too short")
	}

	return ts.ContextDaemon.Start(ctx)
}

func (ts *TimeSyncer) SetLogging(l *logging.Logging) *logging.Logging {
	_ = ts.ContextDaemon.SetLogging(l)

	return ts.Logging.SetLogging(l)
}

// Offset returns the latest time offset.
func (ts *TimeSyncer) Offset() time.Duration {
	ts.RLock()
	defer ts.RUnlock()

	return ts.offset
}

func (ts *TimeSyncer) setOffset(d time.Duration) {
	ts.Lock()
	defer ts.Unlock()

	ts.offset = d
}

func (ts *TimeSyncer) schedule(ctx context.Context) error {
	ticker := time.NewTicker(ts.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			started := time.Now()

			if err := ts.check(); err != nil {
				ts.Log().Error().Err(err).Stringer("elapsed", time.Since(started)).Msg("failed to check sync time")

				continue
			}

			ts.Log().Debug().Stringer("elapsed", time.Since(started)).Msg("time sync checked")
		}
	}
}

func (ts *TimeSyncer) check() error {
	e := util.StringErrorFunc("sync time")

	option := ntp.QueryOptions{Timeout: timeServerQueryingTimeout}

	if ts.port > 0 {
		option.Port = ts.port
	}

	response, err := ts.query(ts.host, option)
	if err != nil {
		return e(err, "query")
	}

	if err := response.Validate(); err != nil {
		return e(err, "invalid response")
	}

	offset := ts.Offset()
	defer ts.Log().Debug().
		Stringer("clock_offset", response.ClockOffset).
		Stringer("rtt", response.RTT).
		Stringer("offset", offset).
		Msg("time checked")

	diff := offset - response.ClockOffset
	if diff < 0 {
		diff *= -1
	}

	if diff > 0 && diff < allowedTimeSyncOffset {
		return nil
	}

	ts.setOffset(response.ClockOffset)

	return nil
}

// SetDefaultTimeSyncer sets the global TimeSyncer.
func SetDefaultTimeSyncer(syncer *TimeSyncer) {
	defaultTimeSyncerLock.Lock()
	defer defaultTimeSyncerLock.Unlock()

	defaultTimeSyncer = syncer
}

// Now returns the tuned Time with the offset of the default TimeSyncer.
func Now() time.Time {
	defaultTimeSyncerLock.RLock()
	syncer := defaultTimeSyncer
	defaultTimeSyncerLock.RUnlock()

	if syncer == nil {
		return time.Now()
	}

	return time.Now().Add(syncer.Offset())
}
