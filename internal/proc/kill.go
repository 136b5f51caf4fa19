package proc

import (
	"fmt"
	"strings"

	"github.com/kttools/ktports/pkg/logger"
	"github.com/kttools/ktports/pkg/model"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type Signal int

const (
	SignalKill Signal = iota // forceful, SIGKILL / TerminateProcess
	SignalTerm               // graceful, SIGTERM
)

func (s Signal) String() string {
	switch s {
	case SignalTerm:
		return "SIGTERM"
	default:
		return "SIGKILL"
	}
}

var signalNames = map[string]Signal{
	"KILL":    SignalKill,
	"SIGKILL": SignalKill,
	"9":       SignalKill,
	"TERM":    SignalTerm,
	"SIGTERM": SignalTerm,
	"15":      SignalTerm,
}

func ParseSignal(name string) (Signal, error) {
	sig, ok := signalNames[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return SignalKill, fmt.Errorf("unknown signal %q (use kill or term)", name)
	}
	return sig, nil
}

// LiveProcess is a running process taken from a fresh process table snapshot.
type LiveProcess interface {
	Name() string
	Signal(sig Signal) error
}

// ProcessTable gives access to the running processes. Every Snapshot call
// must read the live table; nothing may be cached between calls.
type ProcessTable interface {
	Snapshot() (map[uint32]LiveProcess, error)
}

// KillProcess terminates the owner of port as recorded in lastScan. The pid
// comes from the scan, but the process is looked up again in a new snapshot
// of table so that a process which already exited is reported instead of
// signaled.
func KillProcess(port uint16, lastScan []model.PortInfo, table ProcessTable, sig Signal) (string, error) {
	target, ok := lo.Find(lastScan, func(p model.PortInfo) bool {
		return p.Port == port
	})
	if !ok {
		return "", &ProcessNotFoundError{Port: port}
	}
	if target.PID == 0 {
		return "", &ProcessKillError{PID: 0, Err: errUnknownOwner}
	}

	procs, err := table.Snapshot()
	if err != nil {
		return "", &ProcessKillError{PID: target.PID, Err: err}
	}
	live, ok := procs[target.PID]
	if !ok {
		return "", &ProcessKillError{PID: target.PID, Err: errProcessGone}
	}

	if err := live.Signal(sig); err != nil {
		return "", &ProcessKillError{PID: target.PID, Err: err}
	}

	logger.Info("killed process",
		zap.Uint32("pid", target.PID),
		zap.String("name", live.Name()),
		zap.Uint16("port", port),
		zap.Stringer("signal", sig))
	return fmt.Sprintf("Successfully killed process %d on port %d", target.PID, port), nil
}
