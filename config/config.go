// Package config loads the sequencer probe configuration from defaults, YAML and
// SEQUENCER_-prefixed environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is stripped from environment variables before they are mapped onto keys.
// Levels are separated by a double underscore: SEQUENCER_GATEWAY__API_KEY sets gateway.api_key.
const EnvPrefix = "SEQUENCER_"

const envLevelSeparator = "__"

// Load loads configuration from multiple sources with priority:
// 1. Environment variables (highest priority)
// 2. The YAML file at path, then its environment overlay (config.<env>.yaml)
// 3. Default values (lowest priority)
//
// An empty path skips the YAML layer.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}

		if overlay := envOverlayPath(path, k.String("app.env")); overlay != "" {
			if err := k.Load(file.Provider(overlay), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load %s: %w", overlay, err)
			}
		}
	}

	return finish(k)
}

// LoadFromBytes is like Load with the YAML document given in memory.
func LoadFromBytes(b []byte) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if len(b) > 0 {
		if err := k.Load(rawbytes.Provider(b), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	return finish(k)
}

func finish(k *koanf.Koanf) (*Config, error) {
	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: envKey,
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// envKey maps SEQUENCER_GATEWAY__RATE_LIMIT__BURST to gateway.rate_limit.burst.
func envKey(k, v string) (string, any) {
	key := strings.ToLower(strings.TrimPrefix(k, EnvPrefix))
	return strings.ReplaceAll(key, envLevelSeparator, "."), v
}

// envOverlayPath returns config.<env>.yaml next to path when it exists.
func envOverlayPath(path, appEnv string) string {
	if appEnv == "" {
		return ""
	}

	ext := filepath.Ext(path)
	overlay := strings.TrimSuffix(path, ext) + "." + appEnv + ext

	if _, err := os.Stat(overlay); err != nil {
		return ""
	}
	return overlay
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"app.name": "sequencer-probe",
		"app.env":  EnvDevelopment,

		"log.level":  "info",
		"log.pretty": false,

		"gateway.network":                        "mainnet",
		"gateway.timeout":                        "30s",
		"gateway.retry":                          true,
		"gateway.rate_limit.requests_per_second": 0,
		"gateway.rate_limit.burst":               1,

		"metrics.backend": MetricsOTel,
		"metrics.listen":  ":9090",

		"observability.enabled":          false,
		"observability.service_name":     "sequencer-probe",
		"observability.trace.enabled":    true,
		"observability.trace.endpoint":   "stdout",
		"observability.metrics.enabled":  true,
		"observability.metrics.endpoint": "stdout",
		"observability.metrics.interval": "15s",
	}

	return k.Load(confmap.Provider(defaults, "."), nil)
}
