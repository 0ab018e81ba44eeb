package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/diode"
)

// Setup creates the root Logging. format is "json" or "terminal"; terminal
// output is colored when stdout is a terminal or forceColor is set.
func Setup(
	output io.Writer,
	level zerolog.Level,
	format string,
	forceColor bool,
) *Logging {
	o := output
	if o == nil {
		o = os.Stderr
	}

	if format == "terminal" {
		useColor := forceColor || isatty.IsTerminal(os.Stdout.Fd())

		o = zerolog.ConsoleWriter{
			Out:        o,
			TimeFormat: time.RFC3339Nano,
			NoColor:    !useColor,
		}
	}

	z := zerolog.New(o).With().Timestamp()

	if level <= zerolog.DebugLevel {
		z = z.Caller()
	}

	return NewLogging(nil).SetLogger(z.Logger().Level(level))
}

// Output opens the log file in append mode behind a non-blocking writer.
func Output(f string) (io.Writer, error) {
	out, err := os.OpenFile(filepath.Clean(f), os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644) //nolint:gosec //...
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open file, %q", f)
	}

	return diode.NewWriter(out, 1000, 0, nil), nil //nolint:gomnd //...
}
