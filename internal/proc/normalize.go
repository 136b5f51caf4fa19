package proc

import "github.com/kttools/ktports/pkg/model"

type dedupKey struct {
	port     uint16
	protocol string
	pid      uint32
}

// Normalize fills unresolved names with model.Unknown and collapses records
// sharing (port, protocol, pid). A later record replaces an earlier one
// entirely. Output keeps the order in which each key was first seen.
func Normalize(ports []model.PortInfo) []model.PortInfo {
	index := make(map[dedupKey]int, len(ports))
	out := make([]model.PortInfo, 0, len(ports))

	for _, p := range ports {
		if p.PID == 0 || p.ProcessName == "" {
			p.ProcessName = model.Unknown
			p.ProcessNameUnknown = true
		}
		if p.User == "" {
			p.User = model.Unknown
		}

		key := dedupKey{port: p.Port, protocol: p.Protocol, pid: p.PID}
		if i, ok := index[key]; ok {
			out[i] = p
			continue
		}
		index[key] = len(out)
		out = append(out, p)
	}
	return out
}
