// Package packet assembles ARP/NDP/ICMPv4/ICMPv6/TCP/UDP probe frames from a
// flat set of build parameters (spec.md §4.1). It has no dependency on the
// netprobe package so the engines can translate a ProbeSetting into Params
// without an import cycle.
package packet

import (
	"net"
	"time"
)

// Protocol mirrors netprobe.Protocol without importing it.
type Protocol string

const (
	ARP  Protocol = "ARP"
	NDP  Protocol = "NDP"
	ICMP Protocol = "ICMP"
	TCP  Protocol = "TCP"
	UDP  Protocol = "UDP"
)

// FingerprintType mirrors netprobe.FingerprintType's ordinal values.
type FingerprintType int

const (
	FPIcmpEcho FingerprintType = iota
	FPIcmpTimestamp
	FPIcmpAddressMask
	FPIcmpInformation
	FPIcmpUnreachable
	FPTcpSynAck
	FPTcpRstAck
	FPTcpEcn
)

// Params is the subset of ProbeSetting a builder needs, plus the per-round
// overrides (TTL, sequence number) traceroute and ping apply.
type Params struct {
	SrcMAC, DstMAC net.HardwareAddr
	SrcIP, DstIP   net.IP
	SrcPort, DstPort uint16
	HopLimit       uint8
	Tunnel         bool
	Seq            int
	Timestamp      time.Time
}

// IsIPv6 reports whether the session operates over IPv6 addresses.
func (p Params) IsIPv6() bool { return p.DstIP != nil && p.DstIP.To4() == nil }
