package proc

import (
	"bufio"
	"encoding/hex"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kttools/ktports/pkg/logger"
	"github.com/kttools/ktports/pkg/model"
	"go.uber.org/zap"
)

// from include/net/tcp_states.h
var stateMap = map[string]string{
	"01": "ESTABLISHED",
	"02": "SYN_SENT",
	"03": "SYN_RECV",
	"04": "FIN_WAIT1",
	"05": "FIN_WAIT2",
	"06": "TIME_WAIT",
	"07": "CLOSE",
	"08": "CLOSE_WAIT",
	"09": "LAST_ACK",
	"0A": "LISTEN",
	"0B": "CLOSING",
	"0C": "NEW_SYN_RECV",
}

type procNetTable struct {
	file     string
	protocol string
	udp      bool
}

var procNetTables = []procNetTable{
	{file: "tcp", protocol: model.ProtoTCP},
	{file: "tcp6", protocol: model.ProtoTCP6},
	{file: "udp", protocol: model.ProtoUDP, udp: true},
	{file: "udp6", protocol: model.ProtoUDP6, udp: true},
}

// LinuxScanner reads the kernel socket tables under /proc/net and asks
// `ss` for the owning processes.
type LinuxScanner struct {
	run        Runner
	procRoot   string
	passwdFile string
}

func NewLinuxScanner(opts ...Option) *LinuxScanner {
	o := buildOptions(opts)
	return &LinuxScanner{run: o.run, procRoot: o.procRoot, passwdFile: o.passwdFile}
}

func (s *LinuxScanner) Scan() ([]model.PortInfo, error) {
	users := newUserResolver(s.run, s.passwdFile)

	var ports []model.PortInfo
	readable := 0
	for _, t := range procNetTables {
		path := filepath.Join(s.procRoot, "net", t.file)
		f, err := os.Open(path)
		if err != nil {
			logger.Debug("skipping socket table", zap.String("path", path), zap.Error(err))
			continue
		}
		readable++
		ports = append(ports, parseProcNet(f, t, users.Lookup)...)
		f.Close()
	}
	if readable == 0 {
		return nil, ErrNoSocketTables
	}

	if len(ports) > 0 {
		s.enrich(ports, users)
	}
	return ports, nil
}

func parseProcNet(r io.Reader, t procNetTable, lookupUser func(uint32) string) []model.PortInfo {
	var ports []model.PortInfo

	scanner := bufio.NewScanner(r)
	scanner.Scan() // skip header

	for scanner.Scan() {
		if p, ok := parseProcNetLine(scanner.Text(), t, lookupUser); ok {
			ports = append(ports, p)
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Debug("error reading socket table", zap.String("file", t.file), zap.Error(err))
	}
	return ports
}

func parseProcNetLine(line string, t procNetTable, lookupUser func(uint32) string) (model.PortInfo, bool) {
	fields := strings.Fields(line)
	if len(fields) < 10 {
		return model.PortInfo{}, false
	}

	port, ok := parseHexPort(fields[1])
	if !ok {
		return model.PortInfo{}, false
	}

	status := "-"
	if !t.udp {
		status, ok = stateMap[strings.ToUpper(fields[3])]
		if !ok {
			return model.PortInfo{}, false
		}
	}

	uid, _ := strconv.ParseUint(fields[7], 10, 32)

	remote := ""
	if rport, ok := parseHexPort(fields[2]); ok && rport != 0 {
		remote = formatHexAddr(fields[2])
	}

	return model.PortInfo{
		Port:       port,
		Protocol:   t.protocol,
		Status:     status,
		LocalAddr:  formatHexAddr(fields[1]),
		RemoteAddr: remote,
		User:       lookupUser(uint32(uid)),
	}, true
}

func parseHexPort(raw string) (uint16, bool) {
	_, portHex, ok := strings.Cut(raw, ":")
	if !ok {
		return 0, false
	}
	port, err := strconv.ParseUint(portHex, 16, 16)
	if err != nil {
		return 0, false
	}
	return uint16(port), true
}

// hexToIP decodes the kernel's address encoding: 4 or 16 bytes written as
// host-order (little-endian) 32-bit words.
func hexToIP(raw string) (net.IP, bool) {
	b, err := hex.DecodeString(raw)
	if err != nil || (len(b) != net.IPv4len && len(b) != net.IPv6len) {
		return nil, false
	}
	ip := make(net.IP, len(b))
	for i := 0; i < len(b); i += 4 {
		ip[i+0] = b[i+3]
		ip[i+1] = b[i+2]
		ip[i+2] = b[i+1]
		ip[i+3] = b[i+0]
	}
	return ip, true
}

func formatHexAddr(raw string) string {
	ipHex, _, ok := strings.Cut(raw, ":")
	if !ok {
		return raw
	}
	ip, ok := hexToIP(ipHex)
	if !ok {
		return raw
	}
	port, ok := parseHexPort(raw)
	if !ok {
		return raw
	}
	return net.JoinHostPort(ip.String(), strconv.Itoa(int(port)))
}
