package netprobe

import (
	"fmt"
	"net"
	"time"
)

// Defaults for fields a builder fills in when the caller leaves them zero
// (spec.md §6, "Defaults on the wire").
const (
	DefaultTCPSrcPort   = 44322
	DefaultTCPDstPort   = 80
	DefaultUDPSrcPort   = 53445
	DefaultUDPDstPort   = 33435
	DefaultHopLimit     = 64
	DefaultCount        = 4
	DefaultReceiveTimeout = time.Second
	DefaultSendRate       = time.Second
	DefaultProbeTimeout   = 30 * time.Second
	ndpHopLimit           = 255
)

// ProbeSetting is the immutable-per-session configuration for one probe
// engine. Each packet build clones the fields it needs rather than mutating
// the setting (spec.md §3, "Ownership").
type ProbeSetting struct {
	IfIndex int
	IfName  string

	SrcMAC net.HardwareAddr
	DstMAC net.HardwareAddr

	SrcIP       net.IP
	DstIP       net.IP
	DstHostname string

	SrcPort uint16
	DstPort uint16

	HopLimit uint8
	Count    uint8
	Protocol Protocol

	ReceiveTimeout time.Duration
	ProbeTimeout   time.Duration
	SendRate       time.Duration

	Tunnel   bool
	Loopback bool
}

// Clone returns a shallow copy safe for a packet builder to consult without
// racing the owning engine (addresses are net.IP/net.HardwareAddr byte
// slices that this package never mutates in place).
func (s ProbeSetting) Clone() ProbeSetting { return s }

// Validate applies spec.md §4.8's pre-flight checks. It does not touch the
// network; callers resolve ifc via FindInterfaceByIndex/Name first.
func (s ProbeSetting) Validate(ifc Interface) error {
	switch s.Protocol {
	case ProtocolARP:
		if ifc.IsTun() || ifc.IsLoopback() {
			return fmt.Errorf("netprobe: arp requires a non-tunnel, non-loopback interface")
		}
		if len(ifc.IPv4) == 0 {
			return fmt.Errorf("netprobe: arp requires an IPv4 address on %s", ifc.Name)
		}
	case ProtocolNDP:
		if ifc.IsTun() || ifc.IsLoopback() {
			return fmt.Errorf("netprobe: ndp requires a non-tunnel, non-loopback interface")
		}
		if len(ifc.IPv6) == 0 {
			return fmt.Errorf("netprobe: ndp requires an IPv6 address on %s", ifc.Name)
		}
	}
	if s.SrcIP == nil || s.DstIP == nil {
		return fmt.Errorf("netprobe: src_ip and dst_ip are required")
	}
	if (s.SrcIP.To4() == nil) != (s.DstIP.To4() == nil) {
		return fmt.Errorf("netprobe: src_ip and dst_ip must share an address family")
	}
	return nil
}

// applyDefaults fills protocol-specific zero fields, matching spec.md §6.
func (s ProbeSetting) applyDefaults() ProbeSetting {
	out := s
	if out.Count == 0 {
		out.Count = DefaultCount
	}
	if out.HopLimit == 0 {
		out.HopLimit = DefaultHopLimit
	}
	if out.ReceiveTimeout == 0 {
		out.ReceiveTimeout = DefaultReceiveTimeout
	}
	if out.SendRate == 0 {
		out.SendRate = DefaultSendRate
	}
	if out.ProbeTimeout == 0 {
		out.ProbeTimeout = DefaultProbeTimeout
	}
	if out.DstMAC == nil {
		out.DstMAC = net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
	}
	switch out.Protocol {
	case ProtocolTCP:
		if out.SrcPort == 0 {
			out.SrcPort = DefaultTCPSrcPort
		}
		if out.DstPort == 0 {
			out.DstPort = DefaultTCPDstPort
		}
	case ProtocolUDP:
		if out.SrcPort == 0 {
			out.SrcPort = DefaultUDPSrcPort
		}
		if out.DstPort == 0 {
			out.DstPort = DefaultUDPDstPort
		}
	case ProtocolNDP:
		out.HopLimit = ndpHopLimit
	}
	return out
}

// IsIPv6 reports whether the session operates over IPv6 addresses.
func (s ProbeSetting) IsIPv6() bool {
	return s.DstIP != nil && s.DstIP.To4() == nil
}

// NewARPSetting builds the setting for an ARP neighbor-resolution session.
func NewARPSetting(ifc Interface, dstIP net.IP, count uint8, receiveTimeout, sendRate time.Duration) (ProbeSetting, error) {
	if len(ifc.IPv4) == 0 {
		return ProbeSetting{}, fmt.Errorf("netprobe: arp requires an IPv4 address on %s", ifc.Name)
	}
	s := ProbeSetting{
		IfIndex: ifc.Index, IfName: ifc.Name,
		SrcMAC: ifc.MACAddr,
		SrcIP:  ifc.IPv4[0], DstIP: dstIP.To4(),
		Count: count, Protocol: ProtocolARP,
		ReceiveTimeout: receiveTimeout, SendRate: sendRate,
	}.applyDefaults()
	return s, s.Validate(ifc)
}

// NewNDPSetting builds the setting for an NDP neighbor-resolution session.
func NewNDPSetting(ifc Interface, dstIP net.IP, count uint8, receiveTimeout, sendRate time.Duration) (ProbeSetting, error) {
	if ifc.IsTun() || ifc.IsLoopback() {
		return ProbeSetting{}, fmt.Errorf("netprobe: ndp requires a non-tunnel, non-loopback interface")
	}
	src := pickIPv6Source(ifc.IPv6, dstIP)
	if src == nil {
		return ProbeSetting{}, fmt.Errorf("netprobe: ndp requires an IPv6 address on %s", ifc.Name)
	}
	s := ProbeSetting{
		IfIndex: ifc.Index, IfName: ifc.Name,
		SrcMAC: ifc.MACAddr,
		SrcIP:  src, DstIP: dstIP,
		Count: count, Protocol: ProtocolNDP,
		ReceiveTimeout: receiveTimeout, SendRate: sendRate,
	}.applyDefaults()
	return s, s.Validate(ifc)
}

// pickIPv6Source prefers a global address over link-local when the
// destination is itself global (spec.md §4.8).
func pickIPv6Source(candidates []net.IP, dst net.IP) net.IP {
	if len(candidates) == 0 {
		return nil
	}
	wantGlobal := IsGlobalIPv6(dst)
	for _, c := range candidates {
		if IsGlobalIPv6(c) == wantGlobal {
			return c
		}
	}
	return candidates[0]
}

// NewPingSetting builds the setting for a Ping session over the given
// protocol (ICMP, TCP or UDP).
func NewPingSetting(ifc Interface, dstIP net.IP, protocol Protocol, dstPort uint16, count uint8, receiveTimeout, sendRate, probeTimeout time.Duration) (ProbeSetting, error) {
	src, err := pickSource(ifc, dstIP)
	if err != nil {
		return ProbeSetting{}, err
	}
	s := ProbeSetting{
		IfIndex: ifc.Index, IfName: ifc.Name,
		SrcMAC: ifc.MACAddr, DstMAC: gatewayMAC(ifc),
		SrcIP: src, DstIP: dstIP, DstPort: dstPort,
		Count: count, Protocol: protocol,
		ReceiveTimeout: receiveTimeout, SendRate: sendRate, ProbeTimeout: probeTimeout,
	}.applyDefaults()
	return s, s.Validate(ifc)
}

// NewTracerouteSetting builds the setting for a Traceroute session. HopLimit
// (maxHops) bounds the sweep: TTLs 1..HopLimit-1 are probed (spec.md §4.6).
func NewTracerouteSetting(ifc Interface, dstIP net.IP, maxHops uint8, receiveTimeout, sendRate time.Duration) (ProbeSetting, error) {
	src, err := pickSource(ifc, dstIP)
	if err != nil {
		return ProbeSetting{}, err
	}
	s := ProbeSetting{
		IfIndex: ifc.Index, IfName: ifc.Name,
		SrcMAC: ifc.MACAddr, DstMAC: gatewayMAC(ifc),
		SrcIP: src, DstIP: dstIP,
		HopLimit: maxHops, Protocol: ProtocolUDP,
		ReceiveTimeout: receiveTimeout, SendRate: sendRate,
	}.applyDefaults()
	return s, s.Validate(ifc)
}

// NewFingerprintSetting builds the setting for a single-shot Fingerprinter
// probe; the protocol is projected from fpType per spec.md §3.
func NewFingerprintSetting(ifc Interface, dstIP net.IP, fpType FingerprintType, receiveTimeout time.Duration) (ProbeSetting, error) {
	src, err := pickSource(ifc, dstIP)
	if err != nil {
		return ProbeSetting{}, err
	}
	s := ProbeSetting{
		IfIndex: ifc.Index, IfName: ifc.Name,
		SrcMAC: ifc.MACAddr, DstMAC: gatewayMAC(ifc),
		SrcIP: src, DstIP: dstIP,
		Count: 1, Protocol: fpType.Protocol(),
		ReceiveTimeout: receiveTimeout,
	}.applyDefaults()
	return s, s.Validate(ifc)
}

func pickSource(ifc Interface, dst net.IP) (net.IP, error) {
	if dst.To4() != nil {
		if len(ifc.IPv4) == 0 {
			return nil, fmt.Errorf("netprobe: no IPv4 address on %s", ifc.Name)
		}
		return ifc.IPv4[0], nil
	}
	src := pickIPv6Source(ifc.IPv6, dst)
	if src == nil {
		return nil, fmt.Errorf("netprobe: no IPv6 address on %s", ifc.Name)
	}
	return src, nil
}

func gatewayMAC(ifc Interface) net.HardwareAddr {
	if ifc.Gateway != nil && ifc.Gateway.MACAddr != nil {
		return ifc.Gateway.MACAddr
	}
	return nil
}
