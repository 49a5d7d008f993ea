package netprobe

// Protocol tags the wire protocol a probe round emits and matches against.
type Protocol string

const (
	ProtocolARP  Protocol = "ARP"
	ProtocolNDP  Protocol = "NDP"
	ProtocolICMP Protocol = "ICMP"
	ProtocolTCP  Protocol = "TCP"
	ProtocolUDP  Protocol = "UDP"
)

// FingerprintType selects the stimulus a Fingerprinter emits.
type FingerprintType int

const (
	IcmpEcho FingerprintType = iota
	IcmpTimestamp
	IcmpAddressMask
	IcmpInformation
	IcmpUnreachable
	TcpSynAck
	TcpRstAck
	TcpEcn
)

func (t FingerprintType) String() string {
	switch t {
	case IcmpEcho:
		return "IcmpEcho"
	case IcmpTimestamp:
		return "IcmpTimestamp"
	case IcmpAddressMask:
		return "IcmpAddressMask"
	case IcmpInformation:
		return "IcmpInformation"
	case IcmpUnreachable:
		return "IcmpUnreachable"
	case TcpSynAck:
		return "TcpSynAck"
	case TcpRstAck:
		return "TcpRstAck"
	case TcpEcn:
		return "TcpEcn"
	default:
		return "Unknown"
	}
}

// Protocol projects a FingerprintType onto the Protocol it rides on, per
// spec.md §3: IcmpUnreachable rides UDP, every Tcp* rides TCP, every other
// Icmp* rides ICMP.
func (t FingerprintType) Protocol() Protocol {
	switch t {
	case IcmpUnreachable:
		return ProtocolUDP
	case TcpSynAck, TcpRstAck, TcpEcn:
		return ProtocolTCP
	default:
		return ProtocolICMP
	}
}

// PortStatus is the inferred state of a transport-layer port.
type PortStatus string

const (
	PortOpen     PortStatus = "Open"
	PortClosed   PortStatus = "Closed"
	PortFiltered PortStatus = "Filtered"
	PortUnknown  PortStatus = "Unknown"
)

// NodeType classifies the role of a node that answered a probe.
type NodeType string

const (
	NodeDefaultGateway NodeType = "DefaultGateway"
	NodeRelay          NodeType = "Relay"
	NodeDestination    NodeType = "Destination"
)

// ProbeState is the terminal state of one probe round or one session.
type ProbeState string

const (
	StateDone    ProbeState = "Done"
	StateError   ProbeState = "Error"
	StateTimeout ProbeState = "Timeout"
)

// ProbeStatus carries a terminal state and, for Error/Timeout, a message.
type ProbeStatus struct {
	State   ProbeState
	Message string
}

// Done reports a successful probe round.
func Done() ProbeStatus { return ProbeStatus{State: StateDone} }

// TimeoutStatus reports a per-round receive-deadline expiry.
func TimeoutStatus(msg string) ProbeStatus {
	return ProbeStatus{State: StateTimeout, Message: msg}
}

// ErrorStatus reports an in-session error coerced into a terminal result.
func ErrorStatus(msg string) ProbeStatus {
	return ProbeStatus{State: StateError, Message: msg}
}

func (s ProbeStatus) String() string {
	if s.Message == "" {
		return string(s.State)
	}
	return string(s.State) + ": " + s.Message
}
