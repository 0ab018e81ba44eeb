package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spikeekips/synctimer/launch"
	"github.com/spikeekips/synctimer/metrics"
	"github.com/spikeekips/synctimer/synctimer"
	"golang.org/x/sync/errgroup"
)

type runCommand struct {
	Design string        `arg:"" name:"design" help:"design file" type:"existingfile"`
	For    time.Duration `name:"for" help:"stop after the duration; 0 runs until interrupted" default:"0s"`
}

func (cmd *runCommand) Run() error {
	design, _, err := launch.TimerDesignFromFile(cmd.Design)
	if err != nil {
		return err
	}

	log.Debug().Interface("design", design).Msg("design loaded")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cmd.For > 0 {
		var tcancel func()

		ctx, tcancel = context.WithTimeout(ctx, cmd.For)
		defer tcancel()
	}

	ts, err := launch.StartTimeSyncer(ctx, design, rootLogging)
	if err != nil {
		return err
	}

	defer func() {
		if err := launch.StopTimeSyncer(ts); err != nil {
			log.Error().Err(err).Msg("failed to stop time syncer")
		}
	}()

	timer := synctimer.New(design.Interval, append(design.TimerOptions(), synctimer.WithLogging(rootLogging))...)
	defer timer.Destroy()

	_ = timer.Tick().Subscribe(func(interval time.Duration) {
		log.Info().
			Uint64("tick_count", timer.TickCount()).
			Stringer("interval", interval).
			Stringer("elapsed", timer.ElapsedTime()).
			Msg("tick")
	})

	unobserve := timer.ObservePausedDuration(func(d time.Duration) {
		log.Debug().Stringer("paused_duration", d).Msg("paused duration changed")
	})
	defer unobserve()

	eg, ectx := errgroup.WithContext(ctx)

	if design.Metrics.Enabled() {
		stop, err := cmd.startMetrics(ectx, eg, design.Metrics, timer)
		if err != nil {
			return err
		}

		defer stop()
	}

	eg.Go(func() error {
		cmd.togglePause(ectx, timer)

		return nil
	})

	timer.BindUpdate(nil)

	switch {
	case design.StartNow:
		timer.StartNow()
	default:
		timer.Start()
	}

	log.Info().Object("state", timer.State()).Msg("timer started")

	if err := eg.Wait(); err != nil {
		return err
	}

	timer.Stop()

	log.Info().Object("state", timer.State()).Msg("timer stopped")

	return nil
}

func (*runCommand) startMetrics(
	ctx context.Context,
	eg *errgroup.Group,
	design launch.MetricsDesign,
	timer *synctimer.Timer,
) (func(), error) {
	reg := prometheus.NewRegistry()

	c := metrics.NewTimerCollector(design.Namespace, timer)

	if err := reg.Register(c); err != nil {
		c.Close()

		return nil, errors.WithStack(err)
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	srv, err := launch.NewMetricsServer(design.Listen, reg)
	if err != nil {
		c.Close()

		return nil, err
	}

	_ = srv.SetLogging(rootLogging)

	errch := srv.Wait(ctx)

	eg.Go(func() error {
		return <-errch
	})

	log.Info().Stringer("listen", srv.Addr()).Msg("metrics server started")

	return c.Close, nil
}

// togglePause pauses or resumes timer by SIGUSR1.
func (*runCommand) togglePause(ctx context.Context, timer *synctimer.Timer) {
	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, syscall.SIGUSR1)

	defer signal.Stop(sigch)

	for {
		select {
		case <-ctx.Done():
			return
		case <-sigch:
			switch {
			case timer.IsPaused():
				timer.Resume()

				log.Info().Stringer("paused_duration", timer.PausedDuration()).Msg("resumed")
			default:
				timer.Pause()

				log.Info().Msg("paused")
			}
		}
	}
}
