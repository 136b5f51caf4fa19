package tui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wrap"
	"github.com/samber/lo"

	"github.com/kttools/ktports/internal/metrics"
	"github.com/kttools/ktports/internal/output"
	"github.com/kttools/ktports/internal/proc"
	"github.com/kttools/ktports/pkg/model"
)

type portsMsg []model.PortInfo

type scanErrMsg struct{ err error }

type killResultMsg struct {
	port uint16
	text string
	err  error
}

type detailMsg struct {
	pid    uint32
	detail proc.ProcessDetail
	err    error
}

type debounceMsg struct {
	id  int
	pid uint32
}

type copiedMsg struct {
	addr string
	err  error
}

func (m MainModel) refreshPorts() tea.Cmd {
	scan := m.cfg.Scan
	return func() tea.Msg {
		ports, err := scan()
		if err != nil {
			return scanErrMsg{err: err}
		}
		return portsMsg(ports)
	}
}

// killPort resolves port against the scan the user was looking at, not a
// newer one.
func (m MainModel) killPort(port uint16) tea.Cmd {
	lastScan := append([]model.PortInfo(nil), m.ports...)
	table, sig := m.cfg.Table, m.cfg.Signal
	return func() tea.Msg {
		text, err := proc.KillProcess(port, lastScan, table, sig)
		metrics.ObserveKill(err)
		return killResultMsg{port: port, text: text, err: err}
	}
}

// killTarget is the record proc.KillProcess will act on for port: the first
// one in the last scan, which is not necessarily the selected row.
func (m MainModel) killTarget(port uint16) model.PortInfo {
	target, _ := lo.Find(m.ports, func(p model.PortInfo) bool {
		return p.Port == port
	})
	return target
}

func (m MainModel) fetchDetail(pid uint32) tea.Cmd {
	describe := m.cfg.Describe
	return func() tea.Msg {
		d, err := describe(pid)
		return detailMsg{pid: pid, detail: d, err: err}
	}
}

func (m MainModel) copyAddr(addr string) tea.Cmd {
	write := m.cfg.Copy
	return func() tea.Msg {
		return copiedMsg{addr: addr, err: write(addr)}
	}
}

func (m *MainModel) scheduleDetail() tea.Cmd {
	p, ok := m.selected()
	if !ok || p.PID == 0 {
		return nil
	}
	m.selectionID++
	id := m.selectionID
	return tea.Tick(300*time.Millisecond, func(_ time.Time) tea.Msg {
		return debounceMsg{id: id, pid: p.PID}
	})
}

func (m MainModel) selected() (model.PortInfo, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.visible) {
		return model.PortInfo{}, false
	}
	return m.visible[idx], true
}

func portLess(a, b model.PortInfo, col string) bool {
	switch col {
	case "proto":
		return strings.ToLower(a.Protocol) < strings.ToLower(b.Protocol)
	case "name":
		return strings.ToLower(a.ProcessName) < strings.ToLower(b.ProcessName)
	case "state":
		return strings.ToLower(a.Status) < strings.ToLower(b.Status)
	default:
		return a.Port < b.Port
	}
}

func sortPorts(ports []model.PortInfo, col string, desc bool) {
	sort.SliceStable(ports, func(i, j int) bool {
		if desc {
			return portLess(ports[j], ports[i], col)
		}
		return portLess(ports[i], ports[j], col)
	})
}

func matchesFilter(p model.PortInfo, filter string) bool {
	if filter == "" {
		return true
	}
	fields := []string{
		strconv.Itoa(int(p.Port)),
		p.Protocol,
		strconv.FormatUint(uint64(p.PID), 10),
		p.ProcessName,
		p.Status,
		p.LocalAddr,
		p.RemoteAddr,
		p.User,
	}
	return lo.SomeBy(fields, func(f string) bool {
		return strings.Contains(strings.ToLower(f), filter)
	})
}

// visiblePorts applies the listen toggle, the search filter and the sort
// order to a scan without touching it.
func visiblePorts(ports []model.PortInfo, filter string, listenOnly bool, col string, desc bool) []model.PortInfo {
	filter = strings.ToLower(strings.TrimSpace(filter))
	out := lo.Filter(ports, func(p model.PortInfo, _ int) bool {
		if listenOnly && !p.IsListening() {
			return false
		}
		return matchesFilter(p, filter)
	})
	sortPorts(out, col, desc)
	return out
}

var sortKeys = []string{"port", "proto", "", "name", "state"}

func portColumns(sortCol string, desc bool) []table.Column {
	cols := []table.Column{
		{Title: "Port", Width: 7},
		{Title: "Proto", Width: 7},
		{Title: "PID", Width: 8},
		{Title: "Process", Width: 18},
		{Title: "State", Width: 12},
		{Title: "Local", Width: 24},
		{Title: "Remote", Width: 24},
		{Title: "User", Width: 12},
	}
	for i, key := range sortKeys {
		if key != "" && key == sortCol {
			if desc {
				cols[i].Title += " ↓"
			} else {
				cols[i].Title += " ↑"
			}
		}
	}
	return cols
}

func (m *MainModel) updateTable() {
	m.visible = visiblePorts(m.ports, m.input.Value(), m.listenOnly, m.sortCol, m.sortDesc)

	existing := m.table.Columns()
	cols := portColumns(m.sortCol, m.sortDesc)
	for i := range existing {
		if i < len(cols) {
			cols[i].Width = existing[i].Width
		}
	}

	rows := make([]table.Row, 0, len(m.visible))
	for _, p := range m.visible {
		rows = append(rows, table.Row(output.Row(p)))
	}
	m.table.SetColumns(cols)
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
	m.updateDetailViewport()
}

func (m *MainModel) updateDetailViewport() {
	p, ok := m.selected()
	if !ok {
		m.viewport.SetContent("No port selected")
		return
	}

	label := lipgloss.NewStyle().Foreground(lipgloss.Color("#bcbcbc")).Bold(true)
	var b strings.Builder
	line := func(k, v string) {
		if v == "" {
			v = "-"
		}
		fmt.Fprintf(&b, "%s %s\n", label.Render(k+":"), v)
	}

	line("Port", fmt.Sprintf("%d/%s", p.Port, p.Protocol))
	line("State", p.Status)
	if note := proc.ExplainState(p.Status); note.Explanation != "" {
		fmt.Fprintf(&b, "  %s\n", note.Explanation)
		if note.Workaround != "" {
			fmt.Fprintf(&b, "  %s %s\n", label.Render("Fix:"), note.Workaround)
		}
	}
	line("Local", p.LocalAddr)
	line("Remote", p.RemoteAddr)
	line("User", p.User)
	if p.PID == 0 {
		line("Process", p.ProcessName)
	} else {
		line("Process", fmt.Sprintf("%s (pid %d)", p.ProcessName, p.PID))
	}

	if m.detail != nil && m.detail.PID == p.PID {
		b.WriteString("\n")
		if !m.detail.StartedAt.IsZero() {
			line("Started", m.detail.StartedAt.Format("2006-01-02 15:04:05"))
		}
		line("Owner", m.detail.User)
		if m.detail.MemoryRSS > 0 {
			line("Memory", formatBytes(m.detail.MemoryRSS))
			line("CPU", fmt.Sprintf("%.1f%%", m.detail.CPUPercent))
		}
		line("Command", m.detail.Cmdline)
	}

	width := m.viewport.Width
	if width <= 0 {
		width = 40
	}
	m.viewport.SetContent(wrap.String(b.String(), width))
}

func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit && exp < 5; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
