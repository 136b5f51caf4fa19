package proc

import (
	"encoding/csv"
	"strconv"
	"strings"

	"github.com/kttools/ktports/pkg/logger"
	"github.com/kttools/ktports/pkg/model"
	"go.uber.org/zap"
)

// WindowsScanner parses `netstat -ano`. Local and remote addresses are
// not carried over into the records.
type WindowsScanner struct {
	run Runner
}

func NewWindowsScanner(opts ...Option) *WindowsScanner {
	o := buildOptions(opts)
	return &WindowsScanner{run: o.run}
}

func (s *WindowsScanner) Scan() ([]model.PortInfo, error) {
	out, err := s.run("netstat", "-ano")
	if err != nil {
		return nil, err
	}

	ports := parseNetstatOutput(out)
	if len(ports) > 0 {
		s.enrichProcessNames(ports)
	}
	return ports, nil
}

func parseNetstatOutput(out string) []model.PortInfo {
	var ports []model.PortInfo

	started := false
	for _, line := range strings.Split(out, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if !started {
			started = strings.HasPrefix(trimmed, "Proto")
			continue
		}

		// TCP    0.0.0.0:135     0.0.0.0:0     LISTENING    888
		// UDP    0.0.0.0:123     *:*                        999
		fields := strings.Fields(trimmed)
		if len(fields) < 4 {
			continue
		}

		proto := strings.ToUpper(fields[0])
		isTCP := strings.HasPrefix(proto, model.ProtoTCPUpper)
		if !isTCP && !strings.HasPrefix(proto, model.ProtoUDPUpper) {
			continue
		}

		port, ok := parseNetstatPort(fields[1])
		if !ok {
			continue
		}

		status, pidIdx := "-", 3
		if isTCP {
			if len(fields) < 5 {
				continue
			}
			status, pidIdx = fields[3], 4
			if status == "LISTENING" {
				status = "LISTEN"
			}
		}

		pid, _ := strconv.ParseUint(fields[pidIdx], 10, 32)

		ports = append(ports, model.PortInfo{
			Port:     port,
			Protocol: proto,
			PID:      uint32(pid),
			Status:   status,
		})
	}
	return ports
}

func parseNetstatPort(addr string) (uint16, bool) {
	if strings.HasPrefix(addr, "[") {
		i := strings.LastIndex(addr, "]")
		if i == -1 || i+2 > len(addr) {
			return 0, false
		}
		return parseUint16(addr[i+2:])
	}
	i := strings.LastIndex(addr, ":")
	if i == -1 {
		return 0, false
	}
	return parseUint16(addr[i+1:])
}

// enrichProcessNames maps pids to image names with tasklist. Best effort.
func (s *WindowsScanner) enrichProcessNames(ports []model.PortInfo) {
	out, err := s.run("tasklist", "/FO", "CSV", "/NH")
	if err != nil {
		logger.Debug("tasklist enrichment unavailable", zap.Error(err))
		return
	}

	names := parseTasklist(out)
	for i := range ports {
		if name, ok := names[ports[i].PID]; ok && ports[i].PID != 0 {
			ports[i].ProcessName = name
		}
	}
}

// parseTasklist reads `"image.exe","1234","Console","1","10,000 K"` rows.
func parseTasklist(out string) map[uint32]string {
	names := make(map[uint32]string)

	r := csv.NewReader(strings.NewReader(out))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		logger.Debug("parse tasklist output", zap.Error(err))
	}

	for _, record := range records {
		if len(record) < 2 {
			continue
		}
		pid, ok := parseUint32(strings.TrimSpace(record[1]))
		if !ok {
			continue
		}
		names[pid] = record[0]
	}
	return names
}
