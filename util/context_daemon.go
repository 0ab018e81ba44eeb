package util

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spikeekips/synctimer/util/logging"
)

type Daemon interface {
	Start(context.Context) error
	Stop() error
}

// ContextDaemon runs the callback in a goroutine until the callback returns
// or the daemon is stopped; Stop cancels the callback context and waits for
// the callback to return.
type ContextDaemon struct {
	*logging.Logging
	callback func(context.Context) error
	cancel   func()
	done     chan struct{}
	sync.RWMutex
}

func NewContextDaemon(name string, callback func(context.Context) error) *ContextDaemon {
	return &ContextDaemon{
		Logging: logging.NewLogging(func(c zerolog.Context) zerolog.Context {
			return c.Str("module", "context-daemon").Str("daemon", name)
		}),
		callback: callback,
	}
}

func (dm *ContextDaemon) IsStarted() bool {
	dm.RLock()
	defer dm.RUnlock()

	return dm.cancel != nil
}

func (dm *ContextDaemon) Start(ctx context.Context) error {
	select {
	case err := <-dm.Wait(ctx):
		return err
	default:
		return nil
	}
}

// Wait starts the callback and returns the channel, which receives the error
// of callback.
func (dm *ContextDaemon) Wait(ctx context.Context) <-chan error {
	dm.Lock()
	defer dm.Unlock()

	ch := make(chan error, 1)

	if dm.cancel != nil {
		ch <- ErrDaemonAlreadyStarted.Call()
		close(ch)

		return ch
	}

	cctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	dm.cancel = cancel
	dm.done = done

	dm.Log().Debug().Msg("started")

	go func() {
		err := dm.callback(cctx)

		dm.release(done)
		close(done)

		ch <- err
		close(ch)
	}()

	return ch
}

func (dm *ContextDaemon) Stop() error {
	dm.RLock()
	cancel, done := dm.cancel, dm.done
	dm.RUnlock()

	if cancel == nil {
		return ErrDaemonAlreadyStopped.Call()
	}

	cancel()
	<-done

	dm.Log().Debug().Msg("stopped")

	return nil
}

func (dm *ContextDaemon) release(done chan struct{}) {
	dm.Lock()
	defer dm.Unlock()

	if dm.done != done {
		return
	}

	dm.cancel()

	dm.cancel = nil
	dm.done = nil
}
