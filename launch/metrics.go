package launch

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spikeekips/synctimer/util"
	"github.com/spikeekips/synctimer/util/logging"
)

var (
	MetricsPath                    = "/metrics"
	metricsServerReadHeaderTimeout = time.Second * 3
	metricsServerShutdownTimeout   = time.Second * 3
)

// MetricsServer serves the metrics of the prometheus Gatherer over http.
type MetricsServer struct {
	*logging.Logging
	*util.ContextDaemon
	listener net.Listener
	server   *http.Server
}

// NewMetricsServer binds the listen address at once, so the address is
// available before Start.
func NewMetricsServer(listen string, gatherer prometheus.Gatherer) (*MetricsServer, error) {
	ln, err := net.Listen("tcp", listen)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to listen metrics server, %q", listen)
	}

	router := httprouter.New()
	router.Handler(http.MethodGet, MetricsPath, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	s := &MetricsServer{
		Logging: logging.NewLogging(func(c zerolog.Context) zerolog.Context {
			return c.Str("module", "metrics-server").Stringer("listen", ln.Addr())
		}),
		listener: ln,
		server: &http.Server{
			Handler:           router,
			ReadHeaderTimeout: metricsServerReadHeaderTimeout,
		},
	}

	s.ContextDaemon = util.NewContextDaemon("metrics-server", s.serve)

	return s, nil
}

func (s *MetricsServer) Addr() net.Addr {
	return s.listener.Addr()
}

func (s *MetricsServer) SetLogging(l *logging.Logging) *logging.Logging {
	_ = s.ContextDaemon.SetLogging(l)

	return s.Logging.SetLogging(l)
}

// Close releases the listener of the server, which is not started.
func (s *MetricsServer) Close() error {
	if s.IsStarted() {
		return nil
	}

	if err := s.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		return errors.WithStack(err)
	}

	return nil
}

func (s *MetricsServer) serve(ctx context.Context) error {
	errch := make(chan error, 1)

	go func() {
		s.Log().Debug().Msg("metrics server started")

		errch <- s.server.Serve(s.listener)
	}()

	select {
	case err := <-errch:
		return errors.Wrap(err, "metrics server")
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), metricsServerShutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(sctx); err != nil {
		return errors.Wrap(err, "failed to shutdown metrics server")
	}

	if err := <-errch; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "metrics server")
	}

	s.Log().Debug().Msg("metrics server stopped")

	return nil
}
