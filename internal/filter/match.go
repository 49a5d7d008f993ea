package filter

import (
	"net"

	"github.com/google/gopacket/layers"
)

// MatchParams is the subset of a ProbeSetting a matcher needs.
type MatchParams struct {
	SrcIP, DstIP     net.IP
	DstPort          uint16
	HasDstPort       bool
	TTLRound         uint8 // not set by the engines and not read by any matcher
}

// MatchARPReply implements spec.md §4.2's ARP Reply rule, and additionally
// requires the ARP sender IP to be the probed address.
func MatchARPReply(f *DecodedFrame, p MatchParams) bool {
	if f.Ethernet == nil || f.ARP == nil {
		return false
	}
	if f.ARP.Operation != layers.ARPReply {
		return false
	}
	if !net.IP(f.ARP.SourceProtAddress).Equal(p.DstIP) {
		return false
	}
	if f.IPv4 != nil {
		if !f.IPv4.SrcIP.Equal(p.DstIP) || !f.IPv4.DstIP.Equal(p.SrcIP) {
			return false
		}
	}
	return true
}

// MatchNeighborAdvertisement implements spec.md §4.2's NDP rule.
func MatchNeighborAdvertisement(f *DecodedFrame, p MatchParams) bool {
	if f.IPv6 == nil || !f.IPv6.SrcIP.Equal(p.DstIP) {
		return false
	}
	return f.ICMPv6 != nil && f.ICMPv6.TypeCode.Type() == layers.ICMPv6TypeNeighborAdvertisement
}

// MatchICMPEchoReply implements spec.md §4.2's ICMP Echo Reply rule for
// both address families.
func MatchICMPEchoReply(f *DecodedFrame, p MatchParams) bool {
	if f.IPv4 != nil {
		return f.IPv4.SrcIP.Equal(p.DstIP) && f.ICMPv4 != nil && f.ICMPv4.TypeCode.Type() == layers.ICMPv4TypeEchoReply
	}
	if f.IPv6 != nil {
		return f.IPv6.SrcIP.Equal(p.DstIP) && f.ICMPv6 != nil && f.ICMPv6.TypeCode.Type() == layers.ICMPv6TypeEchoReply
	}
	return false
}

// MatchUDPPingReply implements spec.md §4.2's UDP ping reply rule: an ICMP
// (or ICMPv6) Destination Unreachable from the probed host.
func MatchUDPPingReply(f *DecodedFrame, p MatchParams) bool {
	if f.IPv4 != nil {
		return f.IPv4.SrcIP.Equal(p.DstIP) && f.IPv4.DstIP.Equal(p.SrcIP) &&
			f.ICMPv4 != nil && f.ICMPv4.TypeCode.Type() == layers.ICMPv4TypeDestinationUnreachable
	}
	if f.IPv6 != nil {
		return f.IPv6.DstIP.Equal(p.SrcIP) &&
			f.ICMPv6 != nil && f.ICMPv6.TypeCode.Type() == layers.ICMPv6TypeDestinationUnreachable
	}
	return false
}

// TCPPingVerdict is the outcome of matching a TCP ping reply: whether it
// matched at all, and if so whether the port was Open or Closed.
type TCPPingVerdict struct {
	Matched bool
	Open    bool
}

// MatchTCPPingReply implements spec.md §4.2's TCP ping reply rule.
func MatchTCPPingReply(f *DecodedFrame, p MatchParams) TCPPingVerdict {
	if f.TCP == nil {
		return TCPPingVerdict{}
	}
	if p.HasDstPort && uint16(f.TCP.SrcPort) != p.DstPort {
		return TCPPingVerdict{}
	}
	if !f.IPSource().Equal(p.DstIP) {
		return TCPPingVerdict{}
	}
	switch {
	case f.TCP.SYN && f.TCP.ACK:
		return TCPPingVerdict{Matched: true, Open: true}
	case f.TCP.RST && f.TCP.ACK:
		return TCPPingVerdict{Matched: true, Open: false}
	default:
		return TCPPingVerdict{}
	}
}

// TraceVerdict is the outcome of matching a traceroute reply.
type TraceVerdict struct {
	Matched          bool
	DestinationReached bool
}

// MatchTraceReply implements spec.md §4.2/§4.6's traceroute rule: TimeExceeded
// from any intermediate source is a relay hop; DestinationUnreachable ends
// the trace.
func MatchTraceReply(f *DecodedFrame, p MatchParams) TraceVerdict {
	if f.IPv4 != nil && f.ICMPv4 != nil {
		switch f.ICMPv4.TypeCode.Type() {
		case layers.ICMPv4TypeTimeExceeded:
			return TraceVerdict{Matched: true}
		case layers.ICMPv4TypeDestinationUnreachable:
			return TraceVerdict{Matched: true, DestinationReached: true}
		}
	}
	if f.IPv6 != nil && f.ICMPv6 != nil {
		switch f.ICMPv6.TypeCode.Type() {
		case layers.ICMPv6TypeTimeExceeded:
			return TraceVerdict{Matched: true}
		case layers.ICMPv6TypeDestinationUnreachable:
			return TraceVerdict{Matched: true, DestinationReached: true}
		}
	}
	return TraceVerdict{}
}

// MatchFingerprint reports whether a frame matches a fingerprinting
// stimulus's expected reply shape (spec.md §4.2 "Fingerprinting").
func MatchFingerprint(f *DecodedFrame, p MatchParams, fp FingerprintType) bool {
	switch fp {
	case FPIcmpEcho, FPIcmpTimestamp, FPIcmpAddressMask, FPIcmpInformation:
		return matchICMPFingerprint(f, p, fp)
	case FPIcmpUnreachable:
		return f.IPv4 != nil && f.IPv4.SrcIP.Equal(p.DstIP) &&
			f.ICMPv4 != nil && f.ICMPv4.TypeCode.Type() == layers.ICMPv4TypeDestinationUnreachable
	case FPTcpSynAck:
		return f.TCP != nil && tcpFlags(f.TCP) == tcpSYN|tcpACK
	case FPTcpRstAck:
		return f.TCP != nil && tcpFlags(f.TCP) == tcpRST|tcpACK
	case FPTcpEcn:
		return f.TCP != nil && tcpFlags(f.TCP) == tcpSYN|tcpACK|tcpECE
	}
	return false
}

// TCP flag bits, packed for exact flags-byte comparison rather than mere
// bit-presence checks — a reply carrying extra bits (SYN|ACK|FIN, say) is
// not a clean SynAck or RstAck and must not be classified as one.
const (
	tcpFIN uint8 = 1 << iota
	tcpSYN
	tcpRST
	tcpPSH
	tcpACK
	tcpURG
	tcpECE
	tcpCWR
)

func tcpFlags(t *layers.TCP) uint8 {
	var f uint8
	if t.FIN {
		f |= tcpFIN
	}
	if t.SYN {
		f |= tcpSYN
	}
	if t.RST {
		f |= tcpRST
	}
	if t.PSH {
		f |= tcpPSH
	}
	if t.ACK {
		f |= tcpACK
	}
	if t.URG {
		f |= tcpURG
	}
	if t.ECE {
		f |= tcpECE
	}
	if t.CWR {
		f |= tcpCWR
	}
	return f
}

func matchICMPFingerprint(f *DecodedFrame, p MatchParams, fp FingerprintType) bool {
	if f.IPv4 != nil && f.IPv4.SrcIP.Equal(p.DstIP) && f.ICMPv4 != nil {
		t := f.ICMPv4.TypeCode.Type()
		switch fp {
		case FPIcmpEcho:
			return t == layers.ICMPv4TypeEchoReply
		case FPIcmpTimestamp:
			return t == layers.ICMPv4TypeTimestampReply
		case FPIcmpAddressMask:
			return t == layers.ICMPv4TypeAddressMaskReply
		case FPIcmpInformation:
			return t == layers.ICMPv4TypeInfoReply
		}
	}
	if f.IPv6 != nil && f.IPv6.SrcIP.Equal(p.DstIP) && f.ICMPv6 != nil && fp == FPIcmpEcho {
		return f.ICMPv6.TypeCode.Type() == layers.ICMPv6TypeEchoReply
	}
	return false
}

// FingerprintType mirrors packet.FingerprintType without importing it (the
// filter package stays a leaf).
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
