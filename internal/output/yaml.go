package output

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/kttools/ktports/pkg/model"
)

type YAMLRenderer struct{}

func (r *YAMLRenderer) Format() string { return "yaml" }

func (r *YAMLRenderer) Render(ports []model.PortInfo, w io.Writer) error {
	if ports == nil {
		ports = []model.PortInfo{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(ports)
}
