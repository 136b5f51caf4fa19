package app

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kttools/ktports/internal/proc"
	"github.com/kttools/ktports/pkg/model"
)

type stubScanner struct {
	ports []model.PortInfo
	err   error
}

func (s stubScanner) Scan() ([]model.PortInfo, error) { return s.ports, s.err }

type fakeProcess struct {
	name    string
	signals []proc.Signal
}

func (p *fakeProcess) Name() string { return p.name }

func (p *fakeProcess) Signal(sig proc.Signal) error {
	p.signals = append(p.signals, sig)
	return nil
}

type fakeTable map[uint32]proc.LiveProcess

func (t fakeTable) Snapshot() (map[uint32]proc.LiveProcess, error) { return t, nil }

var rawScan = []model.PortInfo{
	{Port: 8080, Protocol: "tcp", PID: 4242, ProcessName: "node", Status: "LISTEN", LocalAddr: "127.0.0.1:8080", User: "dev"},
	{Port: 8080, Protocol: "tcp", PID: 4242, ProcessName: "node", Status: "LISTEN", LocalAddr: "127.0.0.1:8080", User: "dev"},
	{Port: 5353, Protocol: "udp", PID: 77, ProcessName: "", Status: "-", LocalAddr: "0.0.0.0:5353"},
	{Port: 55000, Protocol: "tcp6", PID: 4242, ProcessName: "node", Status: "ESTABLISHED", LocalAddr: "[::1]:55000", RemoteAddr: "[::1]:443", User: "dev"},
}

func withStubs(t *testing.T, s proc.PortScanner, table proc.ProcessTable) {
	t.Helper()
	origScanner, origTable := newScanner, processTable
	newScanner = func() (proc.PortScanner, error) { return s, nil }
	processTable = table
	t.Cleanup(func() {
		newScanner, processTable = origScanner, origTable
	})
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestList_JSON(t *testing.T) {
	withStubs(t, stubScanner{ports: rawScan}, fakeTable{})

	out, err := run(t, "", "list", "--format", "json")
	require.NoError(t, err)

	var ports []model.PortInfo
	require.NoError(t, json.Unmarshal([]byte(out), &ports))
	require.Len(t, ports, 3)
	assert.Equal(t, uint16(8080), ports[0].Port)
	assert.Equal(t, model.Unknown, ports[1].ProcessName)
	assert.True(t, ports[1].ProcessNameUnknown)
	assert.Equal(t, model.Unknown, ports[1].User)
}

func TestList_Filters(t *testing.T) {
	withStubs(t, stubScanner{ports: rawScan}, fakeTable{})

	out, err := run(t, "", "list", "-f", "json", "--listen", "--proto", "TCP")
	require.NoError(t, err)

	var ports []model.PortInfo
	require.NoError(t, json.Unmarshal([]byte(out), &ports))
	require.Len(t, ports, 1)
	assert.Equal(t, uint16(8080), ports[0].Port)
}

func TestList_FormatFromEnv(t *testing.T) {
	withStubs(t, stubScanner{ports: rawScan}, fakeTable{})
	t.Setenv("KTPORTS_FORMAT", "yaml")

	out, err := run(t, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "- port: 8080")
}

func TestList_Table(t *testing.T) {
	withStubs(t, stubScanner{ports: rawScan}, fakeTable{})

	out, err := run(t, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "PROCESS")
	assert.Contains(t, out, "[::1]:443")
}

func TestList_InvalidFormat(t *testing.T) {
	withStubs(t, stubScanner{ports: rawScan}, fakeTable{})

	_, err := run(t, "", "list", "--format", "xml")
	assert.Error(t, err)
}

func TestList_ScanErrorPropagates(t *testing.T) {
	cmdErr := &proc.CommandError{Cmd: "lsof -i TCP", Reason: "command returned non-zero exit code"}
	withStubs(t, stubScanner{err: cmdErr}, fakeTable{})

	_, err := run(t, "", "list")
	var target *proc.CommandError
	assert.True(t, errors.As(err, &target))
}

func TestList_WritesMetricsFile(t *testing.T) {
	withStubs(t, stubScanner{ports: rawScan}, fakeTable{})
	path := filepath.Join(t.TempDir(), "ktports.prom")

	_, err := run(t, "", "list", "--metrics-file", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "ktports_scans_total")
}

func TestKill_Yes(t *testing.T) {
	node := &fakeProcess{name: "node"}
	withStubs(t, stubScanner{ports: rawScan}, fakeTable{4242: node})

	out, err := run(t, "", "kill", "8080", "--yes", "--signal", "term")
	require.NoError(t, err)
	assert.Contains(t, out, "Successfully killed process 4242 on port 8080")
	assert.Equal(t, []proc.Signal{proc.SignalTerm}, node.signals)
}

func TestKill_Confirm(t *testing.T) {
	node := &fakeProcess{name: "node"}
	withStubs(t, stubScanner{ports: rawScan}, fakeTable{4242: node})

	out, err := run(t, "y\n", "kill", "8080")
	require.NoError(t, err)
	assert.Contains(t, out, "Kill node (pid 4242) on port 8080 with SIGKILL? [y/N]")
	assert.Equal(t, []proc.Signal{proc.SignalKill}, node.signals)
}

func TestKill_Aborted(t *testing.T) {
	node := &fakeProcess{name: "node"}
	withStubs(t, stubScanner{ports: rawScan}, fakeTable{4242: node})

	out, err := run(t, "n\n", "kill", "8080")
	require.NoError(t, err)
	assert.Contains(t, out, "Aborted")
	assert.Empty(t, node.signals)
}

func TestKill_PortNotFound(t *testing.T) {
	withStubs(t, stubScanner{ports: rawScan}, fakeTable{})

	_, err := run(t, "", "kill", "9999")
	var notFound *proc.ProcessNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "port 9999 not found", err.Error())
}

func TestKill_ProcessGone(t *testing.T) {
	withStubs(t, stubScanner{ports: rawScan}, fakeTable{})

	_, err := run(t, "", "kill", "8080", "-y")
	var killErr *proc.ProcessKillError
	require.True(t, errors.As(err, &killErr))
	assert.Equal(t, uint32(4242), killErr.PID)
}

func TestKill_InvalidArgs(t *testing.T) {
	withStubs(t, stubScanner{ports: rawScan}, fakeTable{})

	for _, arg := range []string{"0", "65536", "http", "-1"} {
		_, err := run(t, "", "kill", "--", arg)
		assert.Error(t, err, arg)
	}

	_, err := run(t, "", "kill", "8080", "--signal", "hup", "--yes")
	assert.Error(t, err)
}

func TestParsePort(t *testing.T) {
	p, err := parsePort("65535")
	require.NoError(t, err)
	assert.Equal(t, uint16(65535), p)
}

func TestVersionString(t *testing.T) {
	origV, origC, origD := version, commit, buildDate
	t.Cleanup(func() { version, commit, buildDate = origV, origC, origD })

	SetVersionBuildCommitString("v1.2.0", "abc123", "2026-01-02")
	assert.Equal(t, "v1.2.0 (abc123, 2026-01-02)", versionString())

	SetVersionBuildCommitString("", "", "")
	assert.Equal(t, "v1.2.0", versionString())
}

func TestKill_UnknownOwnerSkipsPrompt(t *testing.T) {
	withStubs(t, stubScanner{ports: []model.PortInfo{
		{Port: 22, Protocol: "tcp", Status: "LISTEN", LocalAddr: "0.0.0.0:22"},
	}}, fakeTable{})

	out, err := run(t, "", "kill", "22")
	var killErr *proc.ProcessKillError
	require.True(t, errors.As(err, &killErr))
	assert.Equal(t, uint32(0), killErr.PID)
	assert.NotContains(t, out, "[y/N]")
}
