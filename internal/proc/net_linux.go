//go:build linux

package proc

// NewScanner returns the scanner for this platform.
func NewScanner(opts ...Option) (PortScanner, error) {
	return NewLinuxScanner(opts...), nil
}

// Platform names the socket source compiled into this build.
func Platform() string { return "linux" }
