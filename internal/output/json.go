package output

import (
	"encoding/json"
	"io"

	"github.com/kttools/ktports/pkg/model"
)

type JSONRenderer struct{}

func (r *JSONRenderer) Format() string { return "json" }

func (r *JSONRenderer) Render(ports []model.PortInfo, w io.Writer) error {
	out, err := ToJSON(ports)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out+"\n")
	return err
}

// ToJSON encodes ports as an indented array, never null.
func ToJSON(ports []model.PortInfo) (string, error) {
	if ports == nil {
		ports = []model.PortInfo{}
	}
	data, err := json.MarshalIndent(ports, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
