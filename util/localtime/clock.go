package localtime

import (
	"sync"
	"time"
)

// Clock supplies the synchronized time. The returned times never go
// backwards.
type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}

// DefaultClock follows the default TimeSyncer.
var DefaultClock Clock = NewSyncedClock(nil)

// SyncedClock adds the offset of TimeSyncer to the local time. When the
// offset is adjusted backwards, Now holds the last returned time until the
// local time catches up.
type SyncedClock struct {
	syncer *TimeSyncer
	last   time.Time
	sync.Mutex
}

// NewSyncedClock creates SyncedClock; if syncer is nil, the default
// TimeSyncer, which is set by SetDefaultTimeSyncer, is used.
func NewSyncedClock(syncer *TimeSyncer) *SyncedClock {
	return &SyncedClock{syncer: syncer}
}

func (c *SyncedClock) Now() time.Time {
	c.Lock()
	defer c.Unlock()

	var now time.Time

	switch syncer := c.syncer; {
	case syncer != nil:
		now = time.Now().Add(syncer.Offset())
	default:
		now = Now()
	}

	if now.Before(c.last) {
		return c.last
	}

	c.last = now

	return now
}

// ManualClock moves only by Set and Add.
type ManualClock struct {
	t time.Time
	sync.RWMutex
}

func NewManualClock(t time.Time) *ManualClock {
	return &ManualClock{t: t}
}

func (c *ManualClock) Now() time.Time {
	c.RLock()
	defer c.RUnlock()

	return c.t
}

// Set moves the clock to t; t before the current time is ignored.
func (c *ManualClock) Set(t time.Time) time.Time {
	c.Lock()
	defer c.Unlock()

	if t.After(c.t) {
		c.t = t
	}

	return c.t
}

func (c *ManualClock) Add(d time.Duration) time.Time {
	c.Lock()
	defer c.Unlock()

	if d > 0 {
		c.t = c.t.Add(d)
	}

	return c.t
}
