package launch

import (
	"context"
	"time"

	"github.com/spikeekips/synctimer/util"
	"github.com/spikeekips/synctimer/util/localtime"
	"github.com/spikeekips/synctimer/util/logging"
)

var (
	TimeSyncerRetryLimit    = 3
	TimeSyncerRetryInterval = time.Second
)

// StartTimeSyncer starts the TimeSyncer of the design and sets it as the
// default TimeSyncer, which localtime.DefaultClock follows. Without time
// server, it returns nil.
func StartTimeSyncer(ctx context.Context, design TimerDesign, log *logging.Logging) (*localtime.TimeSyncer, error) {
	e := util.StringErrorFunc("prepare time syncer")

	if len(design.TimeServer) < 1 {
		log.Log().Debug().Msg("no time server given")

		return nil, nil
	}

	var ts *localtime.TimeSyncer

	if err := util.Retry(ctx, func(attempt int) (bool, error) {
		i, err := localtime.NewTimeSyncer(design.TimeServer, design.TimeServerPort, design.TimeSyncInterval)
		if err != nil {
			log.Log().Debug().Err(err).Int("attempt", attempt).Msg("failed to query time server; retry")

			return true, err
		}

		ts = i

		return false, nil
	}, TimeSyncerRetryLimit, TimeSyncerRetryInterval); err != nil {
		return nil, e(err, "")
	}

	_ = ts.SetLogging(log)

	if err := ts.Start(context.Background()); err != nil {
		return nil, e(err, "")
	}

	localtime.SetDefaultTimeSyncer(ts)

	return ts, nil
}

func StopTimeSyncer(ts *localtime.TimeSyncer) error {
	if ts == nil {
		return nil
	}

	localtime.SetDefaultTimeSyncer(nil)

	if err := ts.Stop(); err != nil {
		return util.StringErrorFunc("stop time syncer")(err, "")
	}

	return nil
}
