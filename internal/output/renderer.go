package output

import (
	"fmt"
	"io"

	"github.com/kttools/ktports/pkg/model"
)

// Renderer writes a scan result in one output format.
type Renderer interface {
	Format() string
	Render(ports []model.PortInfo, w io.Writer) error
}

// New returns the renderer for format. An empty format means table.
func New(format string, colorEnabled bool) (Renderer, error) {
	switch format {
	case "table", "":
		return &TableRenderer{Color: colorEnabled}, nil
	case "json":
		return &JSONRenderer{}, nil
	case "yaml":
		return &YAMLRenderer{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (supported: table, json, yaml)", format)
	}
}

func SupportedFormats() []string {
	return []string{"table", "json", "yaml"}
}
