package observability

import (
	"errors"
	"maps"
	"strings"
	"time"
)

var (
	ErrNilConfig             = errors.New("observability: config is nil")
	ErrMissingServiceName    = errors.New("observability: service name is required when observability is enabled")
	ErrInvalidSampleRate     = errors.New("observability: trace sample rate must be between 0.0 and 1.0")
	ErrInvalidProtocol       = errors.New("observability: protocol must be either 'http' or 'grpc'")
	ErrInvalidEndpointFormat = errors.New("observability: endpoint must be host:port for grpc and a full URL for http")
)

const (
	// EndpointStdout is a special endpoint value that outputs to stdout (for local development).
	EndpointStdout = "stdout"

	// ProtocolHTTP specifies OTLP over HTTP/protobuf.
	ProtocolHTTP = "http"

	// ProtocolGRPC specifies OTLP over gRPC.
	ProtocolGRPC = "grpc"

	// EnvironmentDevelopment is the default environment name.
	EnvironmentDevelopment = "development"

	// DefaultMetricsInterval is how often the periodic reader exports.
	DefaultMetricsInterval = 15 * time.Second

	defaultServiceVersion = "unknown"
)

// Float64Ptr returns a pointer to the provided float64 value.
func Float64Ptr(v float64) *float64 {
	return &v
}

// Config defines the configuration for exporting sequencer client telemetry.
type Config struct {
	// Enabled controls whether observability is active.
	// When false, NewProvider returns a no-op provider.
	Enabled bool `koanf:"enabled"`

	// ServiceName identifies the process in traces and metrics.
	// Required when Enabled is true.
	ServiceName string `koanf:"service_name"`

	ServiceVersion string `koanf:"service_version"`

	// Environment indicates the deployment environment (e.g. production, staging).
	Environment string `koanf:"environment"`

	Trace   TraceConfig   `koanf:"trace"`
	Metrics MetricsConfig `koanf:"metrics"`
}

// TraceConfig controls span export.
type TraceConfig struct {
	Enabled bool `koanf:"enabled"`

	// Endpoint is "stdout", a host:port for grpc, or a full URL for http.
	Endpoint string `koanf:"endpoint"`

	Protocol string `koanf:"protocol"`
	Insecure bool   `koanf:"insecure"`

	// SampleRate is the fraction of traces sampled. nil means 1.0.
	SampleRate *float64 `koanf:"sample_rate"`

	Headers map[string]string `koanf:"headers"`
}

// MetricsConfig controls metric export.
type MetricsConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Endpoint string        `koanf:"endpoint"`
	Protocol string        `koanf:"protocol"`
	Insecure bool          `koanf:"insecure"`
	Interval time.Duration `koanf:"interval"`

	Headers map[string]string `koanf:"headers"`
}

// ApplyDefaults fills unset fields with their defaults.
func (c *Config) ApplyDefaults() {
	if c.ServiceVersion == "" {
		c.ServiceVersion = defaultServiceVersion
	}
	if c.Environment == "" {
		c.Environment = EnvironmentDevelopment
	}

	if c.Trace.Endpoint == "" {
		c.Trace.Endpoint = EndpointStdout
	}
	if c.Trace.Protocol == "" {
		c.Trace.Protocol = ProtocolHTTP
	}
	if c.Trace.SampleRate == nil {
		c.Trace.SampleRate = Float64Ptr(1.0)
	}
	c.Trace.Headers = cloneHeaderMap(c.Trace.Headers)

	if c.Metrics.Endpoint == "" {
		c.Metrics.Endpoint = EndpointStdout
	}
	if c.Metrics.Protocol == "" {
		c.Metrics.Protocol = c.Trace.Protocol
	}
	if c.Metrics.Interval <= 0 {
		c.Metrics.Interval = DefaultMetricsInterval
	}
	c.Metrics.Headers = cloneHeaderMap(c.Metrics.Headers)
}

// Validate checks the configuration for common errors.
func (c *Config) Validate() error {
	if c == nil {
		return ErrNilConfig
	}

	if !c.Enabled {
		return nil
	}

	if c.ServiceName == "" {
		return ErrMissingServiceName
	}

	if c.Trace.Enabled {
		if r := c.Trace.SampleRate; r != nil && (*r < 0.0 || *r > 1.0) {
			return ErrInvalidSampleRate
		}
		if err := validateEndpoint(c.Trace.Endpoint, c.Trace.Protocol); err != nil {
			return err
		}
	}

	if c.Metrics.Enabled {
		return validateEndpoint(c.Metrics.Endpoint, c.Metrics.Protocol)
	}
	return nil
}

// validateEndpoint checks that the endpoint format matches the protocol.
// gRPC endpoints use "host:port"; HTTP endpoints carry an http:// or https:// scheme.
func validateEndpoint(endpoint, protocol string) error {
	if endpoint == EndpointStdout || endpoint == "" {
		return nil
	}

	if protocol == "" {
		protocol = ProtocolHTTP
	}

	hasScheme := strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://")

	switch protocol {
	case ProtocolGRPC:
		if hasScheme {
			return ErrInvalidEndpointFormat
		}
	case ProtocolHTTP:
		if !hasScheme {
			return ErrInvalidEndpointFormat
		}
	default:
		return ErrInvalidProtocol
	}
	return nil
}

func cloneHeaderMap(headers map[string]string) map[string]string {
	if headers == nil {
		return nil
	}
	clone := make(map[string]string, len(headers))
	maps.Copy(clone, headers)
	return clone
}
