package logging

import (
	"sync"

	"github.com/rs/zerolog"
)

var NilLogging = NewLogging(nil).SetLogger(zerolog.Nop())

// Logging holds the zerolog.Logger of a component. The context function is
// applied again whenever the underlying logger is replaced, so a component
// keeps its own fields, like "module", under the parent logger.
type Logging struct {
	l   zerolog.Logger
	f   func(zerolog.Context) zerolog.Context
	mux sync.RWMutex
}

func NewLogging(f func(zerolog.Context) zerolog.Context) *Logging {
	if f == nil {
		f = func(c zerolog.Context) zerolog.Context { //revive:disable-line:modifies-parameter
			return c
		}
	}

	return &Logging{
		l: zerolog.Nop(),
		f: f,
	}
}

func (l *Logging) Log() *zerolog.Logger {
	l.mux.RLock()
	defer l.mux.RUnlock()

	z := l.l

	return &z
}

// SetLogging replaces the logger with the logger of the given Logging.
func (l *Logging) SetLogging(i *Logging) *Logging {
	if i == nil {
		return l
	}

	return l.SetLogger(*i.Log())
}

func (l *Logging) SetLogger(z zerolog.Logger) *Logging {
	l.mux.Lock()
	defer l.mux.Unlock()

	l.l = l.f(z.With()).Logger()

	return l
}
