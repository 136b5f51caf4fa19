package proc

// StateNote is a human readable description of a socket state, with a
// suggested fix for the states that commonly keep a port busy.
type StateNote struct {
	Explanation string
	Workaround  string
}

// ExplainState describes status as reported by any of the platform scanners.
func ExplainState(status string) StateNote {
	switch status {
	case "LISTEN":
		return StateNote{Explanation: "Actively listening for connections"}
	case "-", "*":
		return StateNote{Explanation: "Bound datagram socket, UDP has no connection state"}
	case "TIME_WAIT":
		return StateNote{
			Explanation: "Connection closed, waiting for delayed packets",
			Workaround:  "Wait for timeout (usually 60s) or use SO_REUSEADDR",
		}
	case "CLOSE_WAIT":
		return StateNote{
			Explanation: "Remote side closed connection, local side has not closed yet",
			Workaround:  "The application should call close() on the socket",
		}
	case "FIN_WAIT_1", "FIN_WAIT1":
		return StateNote{Explanation: "Local side initiated close, waiting for acknowledgment"}
	case "FIN_WAIT_2", "FIN_WAIT2":
		return StateNote{Explanation: "Local close acknowledged, waiting for remote close"}
	case "ESTABLISHED":
		return StateNote{Explanation: "Active connection"}
	case "SYN_SENT":
		return StateNote{Explanation: "Connection request sent, waiting for response"}
	case "SYN_RECV", "SYN_RECEIVED", "NEW_SYN_RECV":
		return StateNote{Explanation: "Connection request received, sending acknowledgment"}
	case "CLOSING":
		return StateNote{Explanation: "Both sides initiated close simultaneously"}
	case "LAST_ACK":
		return StateNote{Explanation: "Waiting for final acknowledgment of close"}
	case "CLOSE", "CLOSED":
		return StateNote{Explanation: "Socket is closed"}
	case "":
		return StateNote{}
	default:
		return StateNote{Explanation: "Socket in " + status + " state"}
	}
}

// IsProblematicState reports states that hold a port after its owner is done with it.
func IsProblematicState(status string) bool {
	switch status {
	case "TIME_WAIT", "CLOSE_WAIT", "FIN_WAIT_1", "FIN_WAIT_2", "FIN_WAIT1", "FIN_WAIT2":
		return true
	}
	return false
}
