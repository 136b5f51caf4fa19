package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m MainModel) View() string {
	if m.quitting {
		return ""
	}

	outerStyle := baseStyle.
		Width(m.width-2).
		Height(m.height-2).
		Padding(0, 1)

	status := "Mode: Navigation (Press / to search)"
	switch {
	case m.pendingKill != nil:
		p := m.pendingKill
		status = confirmStyle.Render(fmt.Sprintf(
			"Kill %s (pid %d) on port %d with %s? [y/n]", p.ProcessName, p.PID, p.Port, m.cfg.Signal))
	case m.statusMsg != "":
		status = errorStyle.Render(m.statusMsg)
	case m.input.Focused():
		status = "Mode: Searching (Press Esc/Enter to stop)"
	case m.scanning:
		status = "Scanning..."
	}

	dimBorderColor := lipgloss.Color("#585858") // Dark Gray

	availableWidth := m.width - 6
	listPaneWidth := int(float64(availableWidth) * 0.7)
	if listPaneWidth < 10 {
		listPaneWidth = 10
	}

	detailContainerStyle := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(dimBorderColor).
		PaddingLeft(1).
		Height(m.table.Height())

	detailHeader := "Details"
	if p, ok := m.selected(); ok {
		detailHeader = fmt.Sprintf("Port %d", p.Port)
	}
	detailHeaderStyle := tableHeaderStyle.
		Width(m.viewport.Width).
		Foreground(lipgloss.Color("#bcbcbc")). // Light Gray
		BorderForeground(dimBorderColor)

	mainContent := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(listPaneWidth).Render(m.table.View()),
		detailContainerStyle.Render(
			lipgloss.JoinVertical(lipgloss.Left,
				detailHeaderStyle.Render(detailHeader),
				m.viewport.View(),
			),
		),
	)

	helpText := fmt.Sprintf("Total: %d | p/t/n/s: Sort | a: Listen/All | k: Kill | c: Copy | r: Refresh | Esc/q: Quit", len(m.visible))
	footerContent := helpText
	if m.cfg.Version != "" {
		gap := m.width - 6 - lipgloss.Width(helpText) - lipgloss.Width(m.cfg.Version)
		if gap > 0 {
			footerContent = helpText + strings.Repeat(" ", gap) + m.cfg.Version
		}
	}

	listenTab, allTab := inactiveTabStyle.Render("Listening"), inactiveTabStyle.Render("All")
	if m.listenOnly {
		listenTab = activeTabStyle.Render("Listening")
	} else {
		allTab = activeTabStyle.Render("All")
	}
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		titleStyle.Render("ktports"),
		listenTab,
		allTab,
	)

	return outerStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			lipgloss.NewStyle().Height(1).Render(""),
			lipgloss.NewStyle().MarginBottom(1).PaddingLeft(1).Render(status),
			lipgloss.NewStyle().MarginBottom(1).PaddingLeft(1).Render(m.input.View()),
			mainContent,
			lipgloss.NewStyle().Height(1).Render(""),
			footerStyle.Width(m.width-4).Render(footerContent),
		),
	)
}
