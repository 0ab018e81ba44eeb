package synctimer

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/spikeekips/synctimer/util"
)

// State is the snapshot of Timer.
type State struct {
	StartTime      time.Time     `json:"start_time"`
	TrueStartTime  time.Time     `json:"true_start_time"`
	NextTick       time.Time     `json:"next_tick"`
	LastPause      *time.Time    `json:"last_pause,omitempty"`
	ID             string        `json:"id"`
	Interval       time.Duration `json:"interval"`
	Elapsed        time.Duration `json:"elapsed"`
	PausedDuration time.Duration `json:"paused_duration"`
	TickCount      uint64        `json:"tick_count"`
	Paused         bool          `json:"paused"`
	Running        bool          `json:"running"`
}

func (t *Timer) State() State {
	t.Lock()
	defer t.Unlock()

	s := State{
		ID:             t.id,
		StartTime:      t.startTime,
		TrueStartTime:  t.trueStartTime,
		NextTick:       t.nextTick,
		Interval:       t.interval,
		Elapsed:        t.elapsed,
		PausedDuration: t.ledger.pausedDuration,
		TickCount:      t.tickCount,
		Paused:         t.ledger.paused,
		Running:        t.running,
	}

	if t.ledger.lastPause != nil {
		i := *t.ledger.lastPause
		s.LastPause = &i
	}

	return s
}

func (s State) String() string {
	b, err := util.MarshalJSON(s)
	if err != nil {
		return "<failed to marshal State>"
	}

	return string(b)
}

func (s State) MarshalZerologObject(e *zerolog.Event) {
	e.
		Str("id", s.ID).
		Bool("running", s.Running).
		Stringer("interval", s.Interval).
		Uint64("tick_count", s.TickCount).
		Time("next_tick", s.NextTick).
		Stringer("elapsed", s.Elapsed).
		Bool("paused", s.Paused).
		Stringer("paused_duration", s.PausedDuration)
}
