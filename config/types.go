package config

import (
	"time"

	"github.com/gaborage/go-sequencer/observability"
)

// Config represents the overall sequencer probe configuration.
type Config struct {
	App           AppConfig            `koanf:"app"`
	Log           LogConfig            `koanf:"log"`
	Gateway       GatewayConfig        `koanf:"gateway"`
	Metrics       MetricsConfig        `koanf:"metrics"`
	Observability observability.Config `koanf:"observability"`
}

// AppConfig identifies the running process.
type AppConfig struct {
	Name string `koanf:"name" validate:"required"`
	Env  string `koanf:"env" validate:"oneof=development staging production"`
}

// LogConfig configures the zerolog logger.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Pretty bool   `koanf:"pretty"`
}

// GatewayConfig describes which sequencer to talk to and how.
type GatewayConfig struct {
	// Network selects a public deployment. "custom" requires URL.
	Network string `koanf:"network" validate:"oneof=mainnet sepolia integration custom"`

	// URL is the sequencer base URL; /gateway and /feeder_gateway are derived from it.
	URL string `koanf:"url" validate:"required_if=Network custom,omitempty,url"`

	APIKey  string          `koanf:"api_key"`
	Timeout time.Duration   `koanf:"timeout" validate:"gt=0"`
	Retry   bool            `koanf:"retry"`
	Rate    RateLimitConfig `koanf:"rate_limit"`
}

// RateLimitConfig bounds outgoing attempts. Zero requests per second disables the limiter.
type RateLimitConfig struct {
	RequestsPerSecond float64 `koanf:"requests_per_second" validate:"gte=0"`
	Burst             int     `koanf:"burst" validate:"gte=0"`
}

// MetricsConfig selects where per-attempt metrics go.
type MetricsConfig struct {
	Backend string `koanf:"backend" validate:"oneof=otel prometheus none"`

	// Listen is the address the Prometheus handler binds to.
	Listen string `koanf:"listen" validate:"required_if=Backend prometheus"`
}

// Metrics backends.
const (
	MetricsOTel       = "otel"
	MetricsPrometheus = "prometheus"
	MetricsNone       = "none"
)

// NetworkCustom means the gateway URL is given explicitly.
const NetworkCustom = "custom"

// Environment constants
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)
