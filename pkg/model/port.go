package model

// Unknown is substituted for process and user names that could not be resolved.
const Unknown = "unknown"

const (
	ProtoTCP  = "tcp"
	ProtoTCP6 = "tcp6"
	ProtoUDP  = "udp"
	ProtoUDP6 = "udp6"

	// lsof and netstat report protocols upper-cased.
	ProtoTCPUpper = "TCP"
	ProtoUDPUpper = "UDP"
)

type PortInfo struct {
	Port               uint16 `json:"port" yaml:"port"`
	Protocol           string `json:"protocol" yaml:"protocol"`
	PID                uint32 `json:"pid" yaml:"pid"`
	ProcessName        string `json:"process_name" yaml:"process_name"`
	ProcessNameUnknown bool   `json:"process_name_unknown" yaml:"process_name_unknown"`
	Status             string `json:"status" yaml:"status"` // LISTEN, ESTABLISHED, ... ; "-" or "*" for UDP
	LocalAddr          string `json:"local_addr" yaml:"local_addr"`
	RemoteAddr         string `json:"remote_addr" yaml:"remote_addr"`
	User               string `json:"user" yaml:"user"`
}

// IsListening reports whether the record is a listening TCP socket or a bound UDP socket.
func (p PortInfo) IsListening() bool {
	switch p.Status {
	case "LISTEN", "-", "*":
		return true
	}
	return false
}
