package main

import (
	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/spikeekips/synctimer/launch"
	"github.com/spikeekips/synctimer/util/logging"
)

var (
	rootLogging *logging.Logging
	log         *zerolog.Logger
)

type CLI struct {
	launch.LoggingFlags `embed:"" prefix:"log."`
	Run                 runCommand    `cmd:"" help:"run timer"`
	Design              designCommand `cmd:"" help:"print design"`
}

func main() {
	var cli CLI

	kctx := kong.Parse(&cli,
		kong.Name("synctimer-example"),
		kong.Vars(launch.LoggingFlagsVars),
	)

	switch i, err := launch.SetupLoggingFromFlags(cli.LoggingFlags); {
	case err != nil:
		kctx.FatalIfErrorf(err)
	default:
		rootLogging = i
	}

	log = logging.NewLogging(func(lctx zerolog.Context) zerolog.Context {
		return lctx.Str("module", "main")
	}).SetLogging(rootLogging).Log()

	log.Info().Str("command", kctx.Command()).Msg("start command")

	err := func() error {
		defer log.Info().Msg("stopped")

		return kctx.Run()
	}()
	if err != nil {
		log.Error().Err(err).Msg("stopped by error")
	}

	kctx.FatalIfErrorf(err)
}
