package netprobe

import (
	"net"
	"time"

	"github.com/shellrow/netprobe/internal/filter"
)

// DecodedFrame is the layered view of a captured reply, returned to the
// caller of Fingerprinter.Probe (spec.md §4.7).
type DecodedFrame = filter.DecodedFrame

// ProbeResult is the outcome of one probe round (spec.md §3). On Timeout,
// ReceivedPacketSize, RTT, MACAddr and TTL are all left at their zero value
// by construction — see TimeoutResult / TraceTimeoutResult below.
type ProbeResult struct {
	Seq         int
	MACAddr     net.HardwareAddr
	IPAddr      net.IP
	HostName    string
	PortNumber  uint16
	HasPort     bool
	PortStatus  PortStatus
	TTL         uint8
	Hop         uint8
	RTT         time.Duration
	ProbeStatus ProbeStatus
	Protocol    Protocol
	NodeType    NodeType

	SentPacketSize     int
	ReceivedPacketSize int
}

// TimeoutResult builds the ProbeResult pushed when a round's receive-timeout
// elapses with no matching frame (spec.md §3 invariant).
func TimeoutResult(seq int, dstIP net.IP, hostname string, protocol Protocol, sentSize int) ProbeResult {
	return ProbeResult{
		Seq:            seq,
		IPAddr:         dstIP,
		HostName:       hostname,
		ProbeStatus:    TimeoutStatus("receive timeout"),
		Protocol:       protocol,
		SentPacketSize: sentSize,
	}
}

// ErrorResult builds the ProbeResult pushed when sending or receiving fails
// outright for a round (spec.md §9 open question: prefer an Error result to
// silently swallowing the failure).
func ErrorResult(seq int, dstIP net.IP, hostname string, protocol Protocol, sentSize int, err error) ProbeResult {
	return ProbeResult{
		Seq:            seq,
		IPAddr:         dstIP,
		HostName:       hostname,
		ProbeStatus:    ErrorStatus(err.Error()),
		Protocol:       protocol,
		SentPacketSize: sentSize,
	}
}

// TraceTimeoutResult is TimeoutResult's traceroute-mode counterpart: seq
// carries the TTL of the round that timed out and node type defaults to
// Relay (spec.md §4.6 step 4).
func TraceTimeoutResult(ttl int, sentSize int) ProbeResult {
	r := TimeoutResult(ttl, nil, "", ProtocolUDP, sentSize)
	r.NodeType = NodeRelay
	return r
}

// PingStat is the terminal aggregate for a Ping session (spec.md §3/§4.5).
type PingStat struct {
	Responses        []ProbeResult
	ProbeTime        time.Duration
	TransmittedCount int
	ReceivedCount    int
	Min, Avg, Max    time.Duration
}

// NewPingStat computes the aggregate RTT statistics over only the Done
// responses, per spec.md §4.5 and the testable property in §8.
func NewPingStat(responses []ProbeResult, transmitted int, probeTime time.Duration) PingStat {
	stat := PingStat{Responses: responses, ProbeTime: probeTime, TransmittedCount: transmitted}
	var sum time.Duration
	for _, r := range responses {
		if r.ProbeStatus.State != StateDone {
			continue
		}
		stat.ReceivedCount++
		sum += r.RTT
		if stat.Min == 0 || r.RTT < stat.Min {
			stat.Min = r.RTT
		}
		if r.RTT > stat.Max {
			stat.Max = r.RTT
		}
	}
	if stat.ReceivedCount > 0 {
		stat.Avg = sum / time.Duration(stat.ReceivedCount)
	}
	return stat
}

// LossPercent returns the fraction of transmitted probes that were not
// answered, correctly oriented (spec.md §9 flags the source's formula as
// inverted; this is 100 * (1 - received/transmitted)).
func (s PingStat) LossPercent() float64 {
	if s.TransmittedCount == 0 {
		return 0
	}
	return 100 * (1 - float64(s.ReceivedCount)/float64(s.TransmittedCount))
}

// sessionAggregate fields shared by every engine's terminal result.
type sessionAggregate struct {
	Protocol    Protocol
	StartTime   time.Time
	EndTime     time.Time
	ElapsedTime time.Duration
	ProbeStatus ProbeStatus
}

// PingResult is the terminal value returned by Pinger.Ping.
type PingResult struct {
	sessionAggregate
	Stat PingStat
}

// TracerouteResult is the terminal value returned by Tracer.Trace.
type TracerouteResult struct {
	sessionAggregate
	Hops []ProbeResult
}

// DeviceResolveResult is the terminal value returned by DeviceResolver.Resolve.
type DeviceResolveResult struct {
	sessionAggregate
	Responses []ProbeResult
}

// Fingerprint is the terminal value returned by Fingerprinter.Probe.
type Fingerprint struct {
	ProbeStatus ProbeStatus
	RTT         time.Duration
	Frame       *DecodedFrame
}
