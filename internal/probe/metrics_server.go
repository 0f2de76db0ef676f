package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gaborage/go-sequencer/gateway/prommetrics"
	"github.com/gaborage/go-sequencer/logger"
)

// metricsServer exposes the Prometheus registry that the gateway client records into.
type metricsServer struct {
	echo     *echo.Echo
	registry *prometheus.Registry
	recorder *prommetrics.Recorder
	addr     string
}

func startMetricsServer(listen string, log logger.Logger) (*metricsServer, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s := &metricsServer{
		echo:     echo.New(),
		registry: reg,
		recorder: prommetrics.New(reg),
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))
	s.echo.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	ln, err := net.Listen("tcp", listen)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", listen, err)
	}
	s.echo.Listener = ln
	s.addr = ln.Addr().String()

	go func() {
		if err := s.echo.Start(""); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Metrics server stopped")
		}
	}()

	log.Info().Str("addr", s.addr).Msg("Serving Prometheus metrics")
	return s, nil
}

func (s *metricsServer) shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
