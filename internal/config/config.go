package config

import (
	"fmt"
	"strings"

	"github.com/kttools/ktports/internal/proc"
)

type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

type Config struct {
	Format      Format
	Signal      string
	ListenOnly  bool
	Protocol    string
	Debug       bool
	MetricsFile string
}

func DefaultConfig() *Config {
	return &Config{
		Format: FormatTable,
		Signal: "SIGKILL",
	}
}

func (c *Config) Validate() error {
	switch c.Format {
	case FormatTable, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("unsupported output format %q (supported: table, json, yaml)", c.Format)
	}

	if _, err := proc.ParseSignal(c.Signal); err != nil {
		return err
	}

	c.Protocol = strings.TrimSpace(c.Protocol)
	return nil
}

// KillSignal returns the parsed signal. Call Validate first.
func (c *Config) KillSignal() proc.Signal {
	sig, _ := proc.ParseSignal(c.Signal)
	return sig
}
