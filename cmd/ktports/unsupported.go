//go:build !linux && !darwin && !windows

package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Fprintln(
		os.Stderr,
		"ktports is only supported on Linux, macOS, and Windows.\n\nIf you are seeing this message, you are attempting to build or run ktports on an unsupported platform (such as FreeBSD).\n\nPlease use Linux, macOS, or Windows to build and run ktports.",
	)
	os.Exit(1)
}
