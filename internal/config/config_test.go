package config

import (
	"testing"

	"github.com/kttools/ktports/internal/proc"
	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, FormatTable, cfg.Format)
	assert.Equal(t, "SIGKILL", cfg.Signal)
	assert.False(t, cfg.ListenOnly)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, proc.SignalKill, cfg.KillSignal())
}

func TestValidate_Format(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Format = "xml"
	assert.Error(t, cfg.Validate())
}

func TestValidate_Signal(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Signal = "SIGHUP"
	assert.Error(t, cfg.Validate())

	cfg.Signal = "term"
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, proc.SignalTerm, cfg.KillSignal())
}

func TestValidate_TrimsProtocol(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Protocol = " tcp "
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "tcp", cfg.Protocol)
}
