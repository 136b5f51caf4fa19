package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kttools/ktports/internal/proc"
	"github.com/kttools/ktports/pkg/model"
)

var scan = []model.PortInfo{
	{Port: 8080, Protocol: "tcp", PID: 300, ProcessName: "nginx", Status: "LISTEN", LocalAddr: "0.0.0.0:8080", User: "www"},
	{Port: 443, Protocol: "tcp", PID: 300, ProcessName: "nginx", Status: "ESTABLISHED", LocalAddr: "10.0.0.2:443", RemoteAddr: "10.0.0.9:51000", User: "www"},
	{Port: 53, Protocol: "udp", PID: 100, ProcessName: "dnsmasq", Status: "-", LocalAddr: "127.0.0.1:53", User: "root"},
	{Port: 22, Protocol: "tcp6", PID: 0, ProcessName: model.Unknown, ProcessNameUnknown: true, Status: "LISTEN", LocalAddr: "[::]:22", User: "root"},
}

type fakeProcess struct {
	name    string
	signals []proc.Signal
}

func (p *fakeProcess) Name() string { return p.name }

func (p *fakeProcess) Signal(sig proc.Signal) error {
	p.signals = append(p.signals, sig)
	return nil
}

type fakeTable struct {
	procs map[uint32]proc.LiveProcess
}

func (t fakeTable) Snapshot() (map[uint32]proc.LiveProcess, error) {
	return t.procs, nil
}

func key(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m MainModel, msg tea.Msg) (MainModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	mm, ok := next.(MainModel)
	require.True(t, ok)
	return mm, cmd
}

func loaded(t *testing.T, cfg Config) MainModel {
	t.Helper()
	if cfg.Scan == nil {
		cfg.Scan = func() ([]model.PortInfo, error) { return scan, nil }
	}
	if cfg.Describe == nil {
		cfg.Describe = func(pid uint32) (proc.ProcessDetail, error) {
			return proc.ProcessDetail{PID: pid, Name: "x"}, nil
		}
	}
	if cfg.Copy == nil {
		cfg.Copy = func(string) error { return nil }
	}
	m := InitialModel(cfg)
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 160, Height: 40})
	m, _ = send(t, m, portsMsg(scan))
	return m
}

func ports(rows []model.PortInfo) []uint16 {
	out := make([]uint16, 0, len(rows))
	for _, p := range rows {
		out = append(out, p.Port)
	}
	return out
}

func TestVisiblePorts_SortAndFilter(t *testing.T) {
	assert.Equal(t, []uint16{22, 53, 443, 8080}, ports(visiblePorts(scan, "", false, "port", false)))
	assert.Equal(t, []uint16{8080, 443, 53, 22}, ports(visiblePorts(scan, "", false, "port", true)))
	assert.Equal(t, []uint16{8080, 443}, ports(visiblePorts(scan, "NGINX", false, "port", true)))
	assert.Equal(t, []uint16{53}, ports(visiblePorts(scan, "127.0.0.1", false, "port", false)))
	assert.Equal(t, []uint16{22, 53, 8080}, ports(visiblePorts(scan, "", true, "port", false)))
	assert.Empty(t, visiblePorts(scan, "nothing-matches", false, "port", false))
}

func TestVisiblePorts_DoesNotReorderScan(t *testing.T) {
	before := append([]model.PortInfo(nil), scan...)
	visiblePorts(scan, "", false, "name", true)
	assert.Equal(t, before, scan)
}

func TestSortPorts_ByName(t *testing.T) {
	rows := append([]model.PortInfo(nil), scan...)
	sortPorts(rows, "name", false)
	assert.Equal(t, "dnsmasq", rows[0].ProcessName)
	assert.Equal(t, model.Unknown, rows[len(rows)-1].ProcessName)
}

func TestUpdate_PortsMsgFillsTable(t *testing.T) {
	m := loaded(t, Config{})
	assert.False(t, m.scanning)
	assert.Len(t, m.table.Rows(), 4)
	assert.Equal(t, "22", m.table.Rows()[0][0])
}

func TestUpdate_SortKeysToggleDirection(t *testing.T) {
	m := loaded(t, Config{})

	m, _ = send(t, m, key("p"))
	assert.Equal(t, "port", m.sortCol)
	assert.True(t, m.sortDesc)
	assert.Equal(t, uint16(8080), m.visible[0].Port)

	m, _ = send(t, m, key("s"))
	assert.Equal(t, "state", m.sortCol)
	assert.False(t, m.sortDesc)
	assert.Equal(t, "-", m.visible[0].Status)
}

func TestUpdate_ListenToggle(t *testing.T) {
	m := loaded(t, Config{})
	m, _ = send(t, m, key("a"))
	assert.True(t, m.listenOnly)
	assert.Len(t, m.visible, 3)

	m, _ = send(t, m, key("a"))
	assert.Len(t, m.visible, 4)
}

func TestUpdate_Search(t *testing.T) {
	m := loaded(t, Config{})
	m, _ = send(t, m, key("/"))
	require.True(t, m.input.Focused())

	for _, r := range "udp" {
		m, _ = send(t, m, key(string(r)))
	}
	assert.Equal(t, []uint16{53}, ports(m.visible))

	// keys typed into the search box are not commands
	assert.Nil(t, m.pendingKill)

	m, _ = send(t, m, key("esc"))
	assert.False(t, m.input.Focused())
	assert.Equal(t, []uint16{53}, ports(m.visible))
}

func TestUpdate_KillConfirmed(t *testing.T) {
	nginx := &fakeProcess{name: "nginx"}
	table := fakeTable{procs: map[uint32]proc.LiveProcess{300: nginx}}
	m := loaded(t, Config{Table: table, Signal: proc.SignalTerm})

	m, _ = send(t, m, key("p")) // port descending puts 8080 first
	require.Equal(t, uint16(8080), m.visible[m.table.Cursor()].Port)

	m, cmd := send(t, m, key("k"))
	assert.Nil(t, cmd)
	require.NotNil(t, m.pendingKill)
	assert.Contains(t, m.View(), "on port 8080")

	m, cmd = send(t, m, key("y"))
	assert.Nil(t, m.pendingKill)
	require.NotNil(t, cmd)

	res, ok := cmd().(killResultMsg)
	require.True(t, ok)
	require.NoError(t, res.err)
	assert.Equal(t, "Successfully killed process 300 on port 8080", res.text)
	assert.Equal(t, []proc.Signal{proc.SignalTerm}, nginx.signals)

	m, cmd = send(t, m, res)
	assert.Equal(t, res.text, m.statusMsg)
	assert.NotNil(t, cmd)
}

func TestUpdate_KillCancelled(t *testing.T) {
	nginx := &fakeProcess{name: "nginx"}
	m := loaded(t, Config{Table: fakeTable{procs: map[uint32]proc.LiveProcess{300: nginx}}})

	m, _ = send(t, m, key("k"))
	require.NotNil(t, m.pendingKill)

	m, cmd := send(t, m, key("n"))
	assert.Nil(t, cmd)
	assert.Nil(t, m.pendingKill)
	assert.Equal(t, "Kill cancelled", m.statusMsg)
	assert.Empty(t, nginx.signals)
}

func TestUpdate_KillUnknownOwner(t *testing.T) {
	m := loaded(t, Config{Table: fakeTable{procs: map[uint32]proc.LiveProcess{}}})
	require.Equal(t, uint16(22), m.visible[0].Port)

	m, _ = send(t, m, key("k"))
	_, cmd := send(t, m, key("y"))
	res := cmd().(killResultMsg)

	var killErr *proc.ProcessKillError
	assert.True(t, errors.As(res.err, &killErr))

	m, _ = send(t, m, res)
	assert.Contains(t, m.statusMsg, "Kill failed")
}

func TestUpdate_ScanError(t *testing.T) {
	m := InitialModel(Config{Scan: func() ([]model.PortInfo, error) {
		return nil, proc.ErrNoSocketTables
	}})
	msg := m.refreshPorts()()

	m, _ = send(t, m, msg)
	assert.Contains(t, m.statusMsg, "Scan failed")
	assert.False(t, m.scanning)
}

func TestUpdate_CopyAddress(t *testing.T) {
	var copied string
	m := loaded(t, Config{Copy: func(s string) error {
		copied = s
		return nil
	}})

	m, cmd := send(t, m, key("c"))
	require.NotNil(t, cmd)
	m, _ = send(t, m, cmd())
	assert.Equal(t, "[::]:22", copied)
	assert.Equal(t, "Copied [::]:22", m.statusMsg)
}

func TestUpdate_DetailIgnoredForOtherRow(t *testing.T) {
	m := loaded(t, Config{})
	m, _ = send(t, m, detailMsg{pid: 999, detail: proc.ProcessDetail{PID: 999}})
	assert.Nil(t, m.detail)

	m, _ = send(t, m, key("down"))
	p, ok := m.selected()
	require.True(t, ok)
	m, _ = send(t, m, detailMsg{pid: p.PID, detail: proc.ProcessDetail{PID: p.PID, Cmdline: "dnsmasq -k"}})
	require.NotNil(t, m.detail)
	assert.Contains(t, m.viewport.View(), "dnsmasq -k")
}

func TestUpdate_Quit(t *testing.T) {
	m := loaded(t, Config{})
	m, cmd := send(t, m, key("q"))
	assert.True(t, m.quitting)
	require.NotNil(t, cmd)
	assert.Equal(t, "", m.View())
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.5 KB", formatBytes(1536))
	assert.Equal(t, "2.0 GB", formatBytes(2<<30))
}

func TestDetailShowsStateNote(t *testing.T) {
	m := loaded(t, Config{})
	m.ports = []model.PortInfo{{Port: 9000, Protocol: "tcp", PID: 5, ProcessName: "app", Status: "CLOSE_WAIT"}}
	m.updateTable()
	assert.Contains(t, m.viewport.View(), "Remote side closed")
}

func TestUpdate_DebounceFetchesDetail(t *testing.T) {
	m := loaded(t, Config{})
	m, cmd := send(t, m, key("down"))
	require.NotNil(t, cmd)

	_, stale := send(t, m, debounceMsg{id: m.selectionID - 1, pid: 100})
	assert.Nil(t, stale)

	_, fetch := send(t, m, debounceMsg{id: m.selectionID, pid: 100})
	require.NotNil(t, fetch)
	d, ok := fetch().(detailMsg)
	require.True(t, ok)
	assert.Equal(t, uint32(100), d.pid)
}

func TestUpdate_KillPromptNamesFirstOwnerOfPort(t *testing.T) {
	nginx := &fakeProcess{name: "nginx"}
	caddy := &fakeProcess{name: "caddy"}
	shared := []model.PortInfo{
		{Port: 8080, Protocol: "tcp", PID: 300, ProcessName: "nginx", Status: "LISTEN", LocalAddr: "0.0.0.0:8080", User: "www"},
		{Port: 8080, Protocol: "tcp6", PID: 400, ProcessName: "caddy", Status: "LISTEN", LocalAddr: "[::]:8080", User: "www"},
	}
	m := loaded(t, Config{
		Scan:  func() ([]model.PortInfo, error) { return shared, nil },
		Table: fakeTable{procs: map[uint32]proc.LiveProcess{300: nginx, 400: caddy}},
	})
	m, _ = send(t, m, portsMsg(shared))

	m, _ = send(t, m, key("down"))
	p, ok := m.selected()
	require.True(t, ok)
	require.Equal(t, uint32(400), p.PID)

	m, _ = send(t, m, key("k"))
	require.NotNil(t, m.pendingKill)
	assert.Equal(t, uint32(300), m.pendingKill.PID)
	assert.Contains(t, m.View(), "Kill nginx (pid 300) on port 8080")

	_, cmd := send(t, m, key("y"))
	require.NotNil(t, cmd)
	res := cmd().(killResultMsg)
	require.NoError(t, res.err)

	assert.Len(t, nginx.signals, 1)
	assert.Empty(t, caddy.signals)
}
