//go:build darwin

package proc

// NewScanner returns the scanner for this platform.
func NewScanner(opts ...Option) (PortScanner, error) {
	return NewMacOSScanner(opts...), nil
}

// Platform names the socket source compiled into this build.
func Platform() string { return "darwin" }
