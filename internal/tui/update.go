package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kttools/ktports/pkg/model"
)

type tickMsg time.Time

func waitTick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		var cmd tea.Cmd
		if !m.quitting && !m.input.Focused() && m.pendingKill == nil {
			cmd = m.refreshPorts()
		}
		return m, tea.Batch(cmd, waitTick())

	case portsMsg:
		m.scanning = false
		m.ports = []model.PortInfo(msg)
		m.updateTable()
		detail := m.scheduleDetail()
		return m, detail

	case scanErrMsg:
		m.scanning = false
		m.statusMsg = fmt.Sprintf("Scan failed: %v", msg.err)
		return m, nil

	case killResultMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Kill failed: %v", msg.err)
			return m, nil
		}
		m.statusMsg = msg.text
		m.scanning = true
		return m, m.refreshPorts()

	case debounceMsg:
		if msg.id != m.selectionID {
			return m, nil
		}
		return m, m.fetchDetail(msg.pid)

	case detailMsg:
		if msg.err != nil {
			return m, nil
		}
		if p, ok := m.selected(); ok && p.PID == msg.pid {
			d := msg.detail
			m.detail = &d
			m.updateDetailViewport()
		}
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Copy failed: %v", msg.err)
		} else {
			m.statusMsg = fmt.Sprintf("Copied %s", msg.addr)
		}
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m MainModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	// confirmation prompt
	if m.pendingKill != nil {
		switch msg.String() {
		case "y", "Y":
			port := m.pendingKill.Port
			m.pendingKill = nil
			m.statusMsg = fmt.Sprintf("Killing owner of port %d...", port)
			return m, m.killPort(port)
		case "n", "N", "esc":
			m.pendingKill = nil
			m.statusMsg = "Kill cancelled"
		}
		return m, nil
	}

	if m.input.Focused() {
		if msg.String() == "enter" || msg.String() == "esc" {
			m.input.Blur()
			return m, nil
		}
		var inputCmd tea.Cmd
		m.input, inputCmd = m.input.Update(msg)
		m.table.SetCursor(0)
		m.updateTable()
		detail := m.scheduleDetail()
		return m, tea.Batch(inputCmd, detail)
	}

	m.statusMsg = ""
	switch msg.String() {
	case "q", "esc":
		m.quitting = true
		return m, tea.Quit

	case "/":
		m.input.Focus()
		return m, textinput.Blink

	case "a", "A":
		m.listenOnly = !m.listenOnly
		m.updateTable()
		detail := m.scheduleDetail()
		return m, detail

	case "p", "P", "t", "T", "n", "N", "s", "S":
		m.toggleSort(sortKeyFor[strings.ToLower(msg.String())])
		return m, nil

	case "r", "R":
		m.scanning = true
		return m, m.refreshPorts()

	case "k", "K":
		if p, ok := m.selected(); ok {
			target := m.killTarget(p.Port)
			m.pendingKill = &target
		}
		return m, nil

	case "c", "C":
		if p, ok := m.selected(); ok && p.LocalAddr != "" {
			return m, m.copyAddr(p.LocalAddr)
		}
		m.statusMsg = "No address to copy"
		return m, nil
	}

	prev := m.table.Cursor()
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	if m.table.Cursor() != prev {
		m.updateDetailViewport()
		detail := m.scheduleDetail()
		return m, tea.Batch(cmd, detail)
	}
	return m, cmd
}

var sortKeyFor = map[string]string{
	"p": "port",
	"t": "proto",
	"n": "name",
	"s": "state",
}

func (m *MainModel) toggleSort(col string) {
	if col == "" {
		return
	}
	if m.sortCol == col {
		m.sortDesc = !m.sortDesc
	} else {
		m.sortCol = col
		m.sortDesc = false
	}
	m.updateTable()
}

func (m *MainModel) resize(width, height int) {
	m.width = width
	m.height = height

	availableWidth := width - 6
	if availableWidth < 0 {
		availableWidth = 0
	}

	listHeight := height - 11
	if listHeight < 5 {
		listHeight = 5
	}

	listPaneWidth := int(float64(availableWidth) * 0.7)
	if listPaneWidth < 10 {
		listPaneWidth = 10
	}

	m.table.SetWidth(listPaneWidth)
	m.table.SetHeight(listHeight)

	detailWidth := availableWidth - listPaneWidth - 4
	if detailWidth < 10 {
		detailWidth = 10
	}
	m.viewport.Width = detailWidth
	m.viewport.Height = listHeight - 2
	m.updateDetailViewport()
}
