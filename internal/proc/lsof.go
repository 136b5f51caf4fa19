package proc

import (
	"strings"

	"github.com/kttools/ktports/pkg/logger"
	"github.com/kttools/ktports/pkg/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// lsofFieldSet asks lsof for pid, command, fd, name, TCP info and user.
const lsofFieldSet = "pcfnTu"

// MacOSScanner lists internet sockets with lsof's field output (-F).
type MacOSScanner struct {
	run        Runner
	passwdFile string
}

func NewMacOSScanner(opts ...Option) *MacOSScanner {
	o := buildOptions(opts)
	return &MacOSScanner{run: o.run, passwdFile: o.passwdFile}
}

func (s *MacOSScanner) Scan() ([]model.PortInfo, error) {
	var tcpOut, udpOut string

	var g errgroup.Group
	g.Go(func() error {
		out, err := s.run("lsof", "-P", "-n", "-iTCP", "-F", lsofFieldSet)
		tcpOut = out
		return err
	})
	g.Go(func() error {
		out, err := s.run("lsof", "-P", "-n", "-iUDP", "-F", lsofFieldSet)
		udpOut = out
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ports := parseLsofOutput(tcpOut, model.ProtoTCPUpper)
	ports = append(ports, parseLsofOutput(udpOut, model.ProtoUDPUpper)...)

	// lsof's u field is a numeric uid
	users := newUserResolver(s.run, s.passwdFile)
	for i := range ports {
		if isNumeric(ports[i].User) {
			if uid, ok := parseUint32(ports[i].User); ok {
				ports[i].User = users.Lookup(uid)
			}
		}
	}
	return ports, nil
}

func parseLsofOutput(out, protocol string) []model.PortInfo {
	acc := newLsofAccumulator(protocol)
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		acc.Feed(line[0], line[1:])
	}
	return acc.Finish()
}

// lsofFields holds what has been read for the current process and descriptor.
type lsofFields struct {
	pid        uint32
	hasPID     bool
	command    string
	hasCommand bool
	user       string
	fd         uint32
	hasFD      bool
	address    string
	hasAddress bool
	status     string
}

func (f *lsofFields) complete() bool {
	return f.hasPID && f.hasCommand && f.hasFD && f.hasAddress
}

// lsofAccumulator turns the one-field-per-line lsof stream into records.
//
//	p  emit, reset everything, set pid
//	c  set command
//	u  set user
//	f  emit, reset address and state, set fd
//	n  set address
//	T  set state when the value starts with ST=
//
// Finish emits whatever the last descriptor left behind.
type lsofAccumulator struct {
	protocol string
	cur      lsofFields
	ports    []model.PortInfo
}

func newLsofAccumulator(protocol string) *lsofAccumulator {
	return &lsofAccumulator{protocol: protocol}
}

func (a *lsofAccumulator) Feed(tag byte, value string) {
	switch tag {
	case 'p':
		a.emit()
		a.cur = lsofFields{}
		a.cur.pid, a.cur.hasPID = parseUint32(value)
	case 'c':
		a.cur.command, a.cur.hasCommand = value, true
	case 'u':
		a.cur.user = value
	case 'f':
		a.emit()
		a.cur.address, a.cur.hasAddress = "", false
		a.cur.status = ""
		a.cur.fd, a.cur.hasFD = parseUint32(value)
	case 'n':
		a.cur.address, a.cur.hasAddress = value, true
	case 'T':
		if state, ok := strings.CutPrefix(value, "ST="); ok {
			a.cur.status = state
		}
	}
}

func (a *lsofAccumulator) Finish() []model.PortInfo {
	a.emit()
	return a.ports
}

func (a *lsofAccumulator) emit() {
	if !a.cur.complete() {
		return
	}

	port, ok := lsofLocalPort(a.cur.address)
	if !ok {
		logger.Debug("skipping lsof address without port",
			zap.Uint32("pid", a.cur.pid), zap.String("address", a.cur.address))
		return
	}
	local, remote := splitLsofAddress(a.cur.address)

	status := a.cur.status
	a.cur.status = ""
	if status == "" {
		status = a.defaultStatus(a.cur.address)
	}

	a.ports = append(a.ports, model.PortInfo{
		Port:        port,
		Protocol:    a.protocol,
		PID:         a.cur.pid,
		ProcessName: a.cur.command,
		Status:      status,
		LocalAddr:   local,
		RemoteAddr:  remote,
		User:        a.cur.user,
	})

	a.cur.hasFD = false
	a.cur.address, a.cur.hasAddress = "", false
}

func (a *lsofAccumulator) defaultStatus(address string) string {
	switch {
	case a.protocol == model.ProtoUDPUpper:
		return "*"
	case strings.Contains(address, "->"):
		return "ESTABLISHED"
	default:
		return "LISTEN"
	}
}

// lsofLocalPort extracts the port of the local half of "local[->remote]".
func lsofLocalPort(address string) (uint16, bool) {
	local, _, _ := strings.Cut(address, "->")
	if local == "*:*" || !strings.Contains(local, ":") {
		return 0, false
	}
	if strings.HasPrefix(local, "[") {
		i := strings.LastIndex(local, "]:")
		if i == -1 {
			return 0, false
		}
		return parseUint16(local[i+2:])
	}
	i := strings.LastIndex(local, ":")
	return parseUint16(local[i+1:])
}

func splitLsofAddress(address string) (string, string) {
	local, remote, ok := strings.Cut(address, "->")
	if !ok || strings.Contains(remote, "->") {
		return address, ""
	}
	return local, remote
}
