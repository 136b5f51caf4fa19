//go:build windows

package proc

// NewScanner returns the scanner for this platform.
func NewScanner(opts ...Option) (PortScanner, error) {
	return NewWindowsScanner(opts...), nil
}

// Platform names the socket source compiled into this build.
func Platform() string { return "windows" }
