package proc

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedPlatform is returned when no scanner exists for the running OS.
	ErrUnsupportedPlatform = errors.New("unsupported operating system")

	// ErrNoSocketTables means none of the /proc/net socket tables could be read.
	ErrNoSocketTables = errors.New("no socket tables could be read")

	errUnknownOwner = errors.New("owning process is unknown")
	errProcessGone  = errors.New("process is no longer running")
)

// CommandError reports an external tool that could not be started or exited non-zero.
type CommandError struct {
	Cmd    string
	Reason string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command '%s' failed: %s", e.Cmd, e.Reason)
}

// ProcessNotFoundError means the supplied scan holds no record for the port.
type ProcessNotFoundError struct {
	Port uint16
}

func (e *ProcessNotFoundError) Error() string {
	return fmt.Sprintf("port %d not found", e.Port)
}

// ProcessKillError means the owning process could not be signaled.
type ProcessKillError struct {
	PID uint32
	Err error
}

func (e *ProcessKillError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("failed to kill process %d", e.PID)
	}
	return fmt.Sprintf("failed to kill process %d: %v", e.PID, e.Err)
}

func (e *ProcessKillError) Unwrap() error { return e.Err }
