package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const envPrefix = "KTPORTS_"

func LoadFromEnv() (*Config, error) {
	cfg := DefaultConfig()

	if format := os.Getenv(envPrefix + "FORMAT"); format != "" {
		cfg.Format = Format(strings.ToLower(format))
	}

	if sig := os.Getenv(envPrefix + "SIGNAL"); sig != "" {
		cfg.Signal = sig
	}

	if v := os.Getenv(envPrefix + "LISTEN_ONLY"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %sLISTEN_ONLY: %w", envPrefix, err)
		}
		cfg.ListenOnly = parsed
	}

	if proto := os.Getenv(envPrefix + "PROTOCOL"); proto != "" {
		cfg.Protocol = proto
	}

	if v := os.Getenv(envPrefix + "DEBUG"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %sDEBUG: %w", envPrefix, err)
		}
		cfg.Debug = parsed
	}

	if path := os.Getenv(envPrefix + "METRICS_FILE"); path != "" {
		cfg.MetricsFile = path
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
