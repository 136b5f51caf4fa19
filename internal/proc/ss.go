package proc

import (
	"strconv"
	"strings"

	"github.com/kttools/ktports/pkg/logger"
	"github.com/kttools/ktports/pkg/model"
	"go.uber.org/zap"
)

type socketOwner struct {
	pid  uint32
	name string
	user string
}

// enrich fills pid, process name and user from `ss -tulpn`. The kernel
// tables carry no pid, so without ss every record ends up "unknown".
func (s *LinuxScanner) enrich(ports []model.PortInfo, users *userResolver) {
	out, err := s.run("ss", "-tulpn")
	if err != nil {
		logger.Debug("ss enrichment unavailable", zap.Error(err))
	} else {
		applyOwners(ports, parseSSOutput(out, users.Lookup))
	}

	for i := range ports {
		if ports[i].ProcessName == "" {
			ports[i].ProcessName = model.Unknown
			ports[i].ProcessNameUnknown = true
		}
	}
}

// parseSSOutput keys owners by local port; a later row for the same port wins.
func parseSSOutput(out string, lookupUser func(uint32) string) map[uint16]socketOwner {
	owners := make(map[uint16]socketOwner)

	lines := strings.Split(out, "\n")
	if len(lines) > 0 {
		lines = lines[1:]
	}

	for _, line := range lines {
		if !strings.Contains(line, "users:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 7 {
			continue
		}

		port, ok := parseDecimalPort(fields[4])
		if !ok {
			continue
		}

		info := fields[6]
		pid, _ := extractPID(info)
		name := extractProcessName(info)
		user := ""
		if uid, ok := extractUID(info); ok {
			user = lookupUser(uid)
		}

		if pid > 0 || name != "" {
			owners[port] = socketOwner{pid: pid, name: name, user: user}
		}
	}
	return owners
}

func applyOwners(ports []model.PortInfo, owners map[uint16]socketOwner) {
	for i := range ports {
		owner, ok := owners[ports[i].Port]
		if !ok {
			continue
		}
		ports[i].PID = owner.pid
		if owner.name != "" {
			ports[i].ProcessName = owner.name
		}
		if owner.user != "" && ports[i].User == "" {
			ports[i].User = owner.user
		}
	}
}

func parseDecimalPort(addr string) (uint16, bool) {
	if strings.HasPrefix(addr, "[") {
		if i := strings.Index(addr, "]:"); i != -1 {
			return parseUint16(addr[i+2:])
		}
	}
	i := strings.LastIndex(addr, ":")
	if i == -1 {
		return 0, false
	}
	return parseUint16(addr[i+1:])
}

// extractPID reads the value after "pid=" in a users:(("name",pid=1,fd=3)) column.
func extractPID(info string) (uint32, bool) {
	return extractNumber(info, "pid=")
}

func extractUID(info string) (uint32, bool) {
	return extractNumber(info, "uid=")
}

func extractNumber(info, marker string) (uint32, bool) {
	_, rest, ok := strings.Cut(info, marker)
	if !ok {
		return 0, false
	}
	if end := strings.IndexAny(rest, ",)"); end != -1 {
		rest = rest[:end]
	}
	n, err := strconv.ParseUint(rest, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(n), true
}

func extractProcessName(info string) string {
	_, rest, ok := strings.Cut(info, `("`)
	if !ok {
		return ""
	}
	name, _, ok := strings.Cut(rest, `"`)
	if !ok {
		return ""
	}
	return name
}

func parseUint16(s string) (uint16, bool) {
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, false
	}
	return uint16(n), true
}

func parseUint32(s string) (uint32, bool) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(n), true
}
