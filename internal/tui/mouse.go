package tui

import (
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
)

// Rows above the table: border, tabs, spacer, status, input, margin.
const tableHeaderY = 6

// returns the column index at x pixels, or -1 if not found.
func (m *MainModel) getColumnAtX(x int, cols []table.Column) int {
	currentX := 0
	for i, col := range cols {
		colWidth := col.Width + 2
		if x >= currentX && x < currentX+colWidth {
			return i
		}
		currentX += colWidth
	}
	return -1
}

func (m *MainModel) handleHeaderClick(x int) {
	idx := m.getColumnAtX(x, m.table.Columns())
	if idx < 0 || idx >= len(sortKeys) {
		return
	}
	m.toggleSort(sortKeys[idx])
}

func (m MainModel) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.pendingKill != nil {
		return m, nil
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.table.MoveUp(1)
		m.updateDetailViewport()
		detail := m.scheduleDetail()
		return m, detail
	case tea.MouseButtonWheelDown:
		m.table.MoveDown(1)
		m.updateDetailViewport()
		detail := m.scheduleDetail()
		return m, detail
	}

	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}

	contentX := msg.X - 2
	if msg.Y == tableHeaderY {
		m.handleHeaderClick(contentX)
		return m, nil
	}

	row := msg.Y - tableHeaderY - 2
	if row >= 0 && row < len(m.visible) && contentX < m.table.Width() {
		// table rows scroll, so offset by the first visible row
		first := m.table.Cursor() - m.cursorOffset()
		m.table.SetCursor(first + row)
		m.updateDetailViewport()
		detail := m.scheduleDetail()
		return m, detail
	}
	return m, nil
}

// cursorOffset is the cursor's line within the visible window.
func (m MainModel) cursorOffset() int {
	h := m.table.Height()
	if h <= 0 {
		return 0
	}
	c := m.table.Cursor()
	if c < h {
		return c
	}
	return h - 1
}
