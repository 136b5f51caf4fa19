package proc

import (
	"strings"
	"sync"
)

// fakeRunner answers external tool calls from canned output keyed by the
// full command line. Unknown commands fail like a missing binary.
type fakeRunner struct {
	mu      sync.Mutex
	outputs map[string]string
	errs    map[string]error
	calls   []string
}

func newFakeRunner(outputs map[string]string) *fakeRunner {
	return &fakeRunner{outputs: outputs, errs: make(map[string]error)}
}

func (f *fakeRunner) Run(name string, args ...string) (string, error) {
	key := strings.Join(append([]string{name}, args...), " ")

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, key)

	if err, ok := f.errs[key]; ok {
		return "", err
	}
	if out, ok := f.outputs[key]; ok {
		return out, nil
	}
	return "", &CommandError{Cmd: key, Reason: "executable file not found in $PATH"}
}

func (f *fakeRunner) Calls(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}
