package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/joho/godotenv"

	"github.com/gaborage/go-sequencer/config"
	"github.com/gaborage/go-sequencer/gateway"
	"github.com/gaborage/go-sequencer/logger"
	"github.com/gaborage/go-sequencer/observability"
)

const shutdownTimeout = 5 * time.Second

// runtime is everything a subcommand needs, built from configuration.
type runtime struct {
	cfg      *config.Config
	log      logger.Logger
	client   *gateway.Client
	provider observability.Provider
	metrics  *metricsServer
}

func newRuntime(opts *rootOptions, stderr io.Writer) (*runtime, error) {
	// .env is optional
	_ = godotenv.Load(opts.envFiles...)

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.Log.Level
	if opts.debug {
		level = "debug"
	}
	log := logger.NewWithWriter(level, cfg.Log.Pretty, stderr).
		WithFields(map[string]any{"app": cfg.App.Name, "env": cfg.App.Env})

	rt := &runtime{cfg: cfg, log: log}

	rt.provider, err = observability.NewProvider(&cfg.Observability, log)
	if err != nil {
		return nil, err
	}

	recorder, err := rt.metricsRecorder()
	if err != nil {
		_ = rt.close()
		return nil, err
	}

	rt.client, err = newClient(cfg.Gateway, log, recorder)
	if err != nil {
		_ = rt.close()
		return nil, err
	}

	log.Debug().
		Str("feeder_gateway", rt.client.FeederGatewayURL()).
		Str("metrics_backend", cfg.Metrics.Backend).
		Msg("Sequencer client ready")
	return rt, nil
}

func (rt *runtime) metricsRecorder() (gateway.MetricsRecorder, error) {
	switch rt.cfg.Metrics.Backend {
	case config.MetricsPrometheus:
		srv, err := startMetricsServer(rt.cfg.Metrics.Listen, rt.log)
		if err != nil {
			return nil, err
		}
		rt.metrics = srv
		return srv.recorder, nil
	case config.MetricsNone:
		return gateway.NewNoopRecorder(), nil
	default:
		return gateway.NewOTelRecorder(), nil
	}
}

func newClient(cfg config.GatewayConfig, log logger.Logger, recorder gateway.MetricsRecorder) (*gateway.Client, error) {
	b := gateway.NewClientBuilder(log).
		WithAPIKey(cfg.APIKey).
		WithTimeout(cfg.Timeout).
		WithRetry(cfg.Retry).
		WithMetricsRecorder(recorder)

	if cfg.URL != "" {
		b.WithBaseURL(cfg.URL)
	} else {
		b.ForNetwork(gateway.Network(cfg.Network))
	}

	if cfg.Rate.RequestsPerSecond > 0 {
		b.WithRateLimit(cfg.Rate.RequestsPerSecond, cfg.Rate.Burst)
	}

	return b.Build()
}

// close stops the metrics endpoint and flushes telemetry.
func (rt *runtime) close() error {
	var errs []error

	if rt.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		errs = append(errs, rt.metrics.shutdown(ctx))
		cancel()
	}

	errs = append(errs, observability.Shutdown(rt.provider, shutdownTimeout))
	return errors.Join(errs...)
}
