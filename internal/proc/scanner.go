package proc

import (
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/kttools/ktports/pkg/logger"
	"github.com/kttools/ktports/pkg/model"
	"go.uber.org/zap"
)

// PortScanner produces the raw socket records of one platform. Records are
// not deduplicated and may still carry empty process or user names.
type PortScanner interface {
	Scan() ([]model.PortInfo, error)
}

// Runner runs an external tool and returns its stdout.
type Runner func(name string, args ...string) (string, error)

type options struct {
	run        Runner
	procRoot   string
	passwdFile string
}

func defaultOptions() options {
	return options{
		run:        execRunner,
		procRoot:   "/proc",
		passwdFile: "/etc/passwd",
	}
}

type Option func(*options)

// WithRunner replaces the external tool invocation.
func WithRunner(run Runner) Option {
	return func(o *options) { o.run = run }
}

// WithProcRoot points the Linux scanner at another proc filesystem mount.
func WithProcRoot(root string) Option {
	return func(o *options) { o.procRoot = root }
}

// WithPasswdFile sets the passwd database used when `id` cannot resolve a uid.
func WithPasswdFile(path string) Option {
	return func(o *options) { o.passwdFile = path }
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ListOpenPorts scans the current platform and returns the normalized list.
func ListOpenPorts(opts ...Option) ([]model.PortInfo, error) {
	s, err := NewScanner(opts...)
	if err != nil {
		return nil, err
	}
	return ScanPorts(s)
}

// ScanPorts runs s and normalizes its records.
func ScanPorts(s PortScanner) ([]model.PortInfo, error) {
	start := time.Now()
	raw, err := s.Scan()
	if err != nil {
		return nil, err
	}
	ports := Normalize(raw)
	logger.Debug("port scan finished",
		zap.Int("raw", len(raw)),
		zap.Int("ports", len(ports)),
		zap.Duration("took", time.Since(start)))
	return ports, nil
}

func execRunner(name string, args ...string) (string, error) {
	out, err := exec.Command(name, args...).Output()
	if err != nil {
		cmd := strings.TrimSpace(name + " " + strings.Join(args, " "))
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", &CommandError{Cmd: cmd, Reason: "command returned non-zero exit code"}
		}
		return "", &CommandError{Cmd: cmd, Reason: err.Error()}
	}
	return string(out), nil
}
