package launch

import (
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
	"github.com/spikeekips/synctimer/util/logging"
)

func init() { //nolint:gochecknoinits //...
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack //nolint:reassign //...
}

var LoggingFlagsVars = map[string]string{
	"log_format":      "terminal",
	"log_out":         "stderr",
	"log_level":       "info",
	"log_force_color": "false",
}

type LoggingFlags struct {
	//revive:disable:line-length-limit
	//revive:disable:struct-tag
	Format     string       `enum:"json, terminal" default:"${log_format}" help:"log format: {${enum}}" group:"logging"`
	Out        []LogOutFlag `name:"out" default:"${log_out}" help:"log output file: {stdout, stderr, <file>}" group:"logging"`
	Level      LogLevelFlag `name:"level" default:"${log_level}" help:"log level: {trace, debug, info, warn, error}" group:"logging"`
	ForceColor bool         `name:"force-color" default:"${log_force_color}" negatable:"" help:"log force color" group:"logging"`
	//revive:enable:struct-tag
	//revive:enable:line-length-limit
}

type LogLevelFlag struct {
	level zerolog.Level
}

func (f *LogLevelFlag) UnmarshalText(b []byte) error {
	l, err := zerolog.ParseLevel(string(b))
	if err != nil {
		return errors.WithStack(err)
	}

	f.level = l

	return nil
}

func (f LogLevelFlag) Level() zerolog.Level {
	return f.level
}

func (f LogLevelFlag) String() string {
	return f.level.String()
}

type LogOutFlag string

func (f LogOutFlag) File() (io.Writer, error) {
	switch f {
	case "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	default:
		return logging.Output(string(f))
	}
}

func SetupLoggingFromFlags(flag LoggingFlags) (*logging.Logging, error) {
	var ws []io.Writer

	found := map[LogOutFlag]struct{}{}

	for i := range flag.Out {
		f := flag.Out[i]

		if _, ok := found[f]; ok {
			continue
		}

		found[f] = struct{}{}

		w, err := f.File()
		if err != nil {
			return nil, err
		}

		ws = append(ws, w)
	}

	var logout io.Writer

	switch len(ws) {
	case 0:
	case 1:
		logout = ws[0]
	default:
		logout = zerolog.MultiLevelWriter(ws...)
	}

	return logging.Setup(
		logout,
		flag.Level.Level(),
		flag.Format,
		flag.ForceColor,
	), nil
}
