//go:build !linux && !darwin && !windows

package proc

// NewScanner always fails: there is no socket source for this platform.
func NewScanner(opts ...Option) (PortScanner, error) {
	return nil, ErrUnsupportedPlatform
}

// Platform names the socket source compiled into this build.
func Platform() string { return "unsupported" }
