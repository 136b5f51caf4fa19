package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/kttools/ktports/internal/proc"
	"github.com/kttools/ktports/pkg/model"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	listenStyle  = cellStyle.Foreground(lipgloss.Color("42"))
	unknownStyle = cellStyle.Foreground(lipgloss.Color("241")).Italic(true)
	warnStyle    = cellStyle.Foreground(lipgloss.Color("214"))
	plainStyle   = lipgloss.NewStyle().Padding(0, 1)
)

var tableHeaders = []string{"PORT", "PROTO", "PID", "PROCESS", "STATE", "LOCAL", "REMOTE", "USER"}

type TableRenderer struct {
	Color bool
}

func (r *TableRenderer) Format() string { return "table" }

func (r *TableRenderer) Render(ports []model.PortInfo, w io.Writer) error {
	if len(ports) == 0 {
		_, err := fmt.Fprintln(w, "No open ports found")
		return err
	}

	rows := make([][]string, 0, len(ports))
	for _, p := range ports {
		rows = append(rows, Row(p))
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(tableHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if !r.Color {
				return plainStyle
			}
			if row == table.HeaderRow {
				return headerStyle
			}
			p := ports[row]
			switch {
			case col == 3 && p.ProcessNameUnknown:
				return unknownStyle
			case col == 4 && p.IsListening():
				return listenStyle
			case col == 4 && proc.IsProblematicState(p.Status):
				return warnStyle
			}
			return cellStyle
		})

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// Row formats one record as table cells. Missing values print as "-".
func Row(p model.PortInfo) []string {
	pid := "-"
	if p.PID != 0 {
		pid = strconv.FormatUint(uint64(p.PID), 10)
	}
	return []string{
		strconv.Itoa(int(p.Port)),
		p.Protocol,
		pid,
		p.ProcessName,
		dash(p.Status),
		dash(p.LocalAddr),
		dash(p.RemoteAddr),
		dash(p.User),
	}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
