package tui

import (
	"fmt"
	"os"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kttools/ktports/internal/proc"
	"github.com/kttools/ktports/pkg/model"
)

var (
	baseStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("#585858")) // Dark Gray

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")). // White
			Background(lipgloss.Color("#7D56F4")). // Purple
			Padding(0, 1)

	tableHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#5f5fd7")). // Purple/Blue
				Bold(true).
				Border(lipgloss.NormalBorder(), false, false, true, false).
				BorderForeground(lipgloss.Color("#585858")). // Dark Gray
				Padding(0, 1)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5f5fd7")). // Purple/Blue
			Bold(true)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#767676")). // Dimmed Gray
			Border(lipgloss.NormalBorder(), true, false, false, false).
			BorderForeground(lipgloss.Color("#585858")). // Dark Gray
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")). // White
			Background(lipgloss.Color("#22aa22")). // Green
			Padding(0, 1).
			Bold(true)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#ffffff")). // White
				Background(lipgloss.Color("#767676")). // Dimmed Gray
				Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff5f5f")). // Soft red
			Bold(true)

	confirmStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffaf5f")). // Orange-amber
			Bold(true)
)

const refreshInterval = 10 * time.Second

// Config carries the collaborators of the port view. Zero fields fall back
// to the live system implementations.
type Config struct {
	Version  string
	Signal   proc.Signal
	Listen   bool
	Scan     func() ([]model.PortInfo, error)
	Table    proc.ProcessTable
	Describe func(pid uint32) (proc.ProcessDetail, error)
	Copy     func(string) error
}

func (c Config) withDefaults() Config {
	if c.Scan == nil {
		c.Scan = func() ([]model.PortInfo, error) { return proc.ListOpenPorts() }
	}
	if c.Table == nil {
		c.Table = proc.SystemProcessTable{}
	}
	if c.Describe == nil {
		c.Describe = proc.DescribeProcess
	}
	if c.Copy == nil {
		c.Copy = clipboard.WriteAll
	}
	return c
}

type MainModel struct {
	cfg Config

	table    table.Model
	input    textinput.Model
	viewport viewport.Model

	ports   []model.PortInfo // last full scan, kill targets resolve against this
	visible []model.PortInfo // filtered and sorted rows backing the table
	detail  *proc.ProcessDetail

	sortCol    string
	sortDesc   bool
	listenOnly bool

	pendingKill *model.PortInfo
	statusMsg   string
	scanning    bool

	selectionID int
	width       int
	height      int
	quitting    bool
}

func InitialModel(cfg Config) MainModel {
	cfg = cfg.withDefaults()

	t := table.New(
		table.WithColumns(portColumns("port", false)),
		table.WithFocused(true),
		table.WithHeight(20),
	)
	s := table.DefaultStyles()
	s.Header = tableHeaderStyle.BorderForeground(lipgloss.Color("#585858"))
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#ffffaf")). // Light Yellow
		Background(lipgloss.Color("#5f00d7")). // Purple
		Bold(false)
	t.SetStyles(s)

	ti := textinput.New()
	ti.Placeholder = "Search Port, Protocol, PID, Process, Address, User..."
	ti.CharLimit = 156
	ti.Width = 50
	ti.Prompt = "> "
	ti.PromptStyle = promptStyle
	ti.Blur()

	vp := viewport.New(0, 0)
	vp.YPosition = 0

	return MainModel{
		cfg:        cfg,
		table:      t,
		input:      ti,
		viewport:   vp,
		sortCol:    "port",
		listenOnly: cfg.Listen,
		scanning:   true,
	}
}

func Start(cfg Config) error {
	if os.Getenv("COLORTERM") == "" {
		os.Setenv("COLORTERM", "truecolor") //nolint:errcheck
	}

	p := tea.NewProgram(InitialModel(cfg), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running tui: %w", err)
	}
	return nil
}

func (m MainModel) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.refreshPorts(),
		waitTick(),
	)
}
