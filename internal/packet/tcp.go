package packet

import (
	"math"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// BuildTCPSyn builds a TCP ping SYN segment (spec.md §4.1 "TCP ping" row):
// MSS 1460, SACK permitted, two NOPs, window scale 7.
func BuildTCPSyn(p Params) ([]byte, error) {
	opts := []layers.TCPOption{
		{OptionType: layers.TCPOptionKindMSS, OptionLength: 4, OptionData: []byte{0x05, 0xb4}},
		{OptionType: layers.TCPOptionKindSACKPermitted, OptionLength: 2},
		{OptionType: layers.TCPOptionKindNop, OptionLength: 1},
		{OptionType: layers.TCPOptionKindNop, OptionLength: 1},
		{OptionType: layers.TCPOptionKindWindowScale, OptionLength: 3, OptionData: []byte{0x07}},
	}
	return buildTCP(p, tcpFlags{SYN: true}, 0xffff, opts, 0)
}

// BuildTCPFingerprintProbe builds the TCP fingerprinting stimulus for
// SynAck/RstAck/ECN classifiers (spec.md §4.1 "TCP fingerprint" row):
// window 65535, MSS 1460 / NOP / WScale 6 / NOP / NOP / TS(max,0) / SACK
// permitted, with flags SYN for SynAck/RstAck and CWR|ECE|SYN for ECN.
func BuildTCPFingerprintProbe(p Params, fp FingerprintType) ([]byte, error) {
	tsOpt := make([]byte, 8)
	// TSval = max uint32, TSecr = 0, matching the classifier stimulus shape
	// the reply filter (spec.md §4.2) expects to provoke.
	for i := 0; i < 4; i++ {
		tsOpt[i] = 0xff
	}
	opts := []layers.TCPOption{
		{OptionType: layers.TCPOptionKindMSS, OptionLength: 4, OptionData: []byte{0x05, 0xb4}},
		{OptionType: layers.TCPOptionKindNop, OptionLength: 1},
		{OptionType: layers.TCPOptionKindWindowScale, OptionLength: 3, OptionData: []byte{0x06}},
		{OptionType: layers.TCPOptionKindNop, OptionLength: 1},
		{OptionType: layers.TCPOptionKindNop, OptionLength: 1},
		{OptionType: layers.TCPOptionKindTimestamps, OptionLength: 10, OptionData: tsOpt},
		{OptionType: layers.TCPOptionKindSACKPermitted, OptionLength: 2},
	}
	flags := tcpFlags{SYN: true}
	if fp == FPTcpEcn {
		flags = tcpFlags{SYN: true, ECE: true, CWR: true}
	}
	return buildTCP(p, flags, math.MaxUint16, opts, 0)
}

type tcpFlags struct {
	SYN, ACK, RST, ECE, CWR bool
}

func buildTCP(p Params, flags tcpFlags, window uint16, opts []layers.TCPOption, seq uint32) ([]byte, error) {
	tcp := &layers.TCP{
		SrcPort: layers.TCPPort(p.SrcPort),
		DstPort: layers.TCPPort(p.DstPort),
		Seq:     seq,
		Window:  window,
		SYN:     flags.SYN,
		ACK:     flags.ACK,
		RST:     flags.RST,
		ECE:     flags.ECE,
		CWR:     flags.CWR,
		Options: opts,
	}

	layersSlice := []gopacket.SerializableLayer{}
	var networkLayer gopacket.NetworkLayer
	if p.IsIPv6() {
		ip6 := &layers.IPv6{
			Version:    6,
			NextHeader: layers.IPProtocolTCP,
			HopLimit:   hopLimitOrDefault(p.HopLimit),
			SrcIP:      p.SrcIP,
			DstIP:      p.DstIP,
		}
		networkLayer = ip6
		if !p.Tunnel {
			layersSlice = append(layersSlice, &layers.Ethernet{SrcMAC: p.SrcMAC, DstMAC: p.DstMAC, EthernetType: layers.EthernetTypeIPv6})
		}
		layersSlice = append(layersSlice, ip6)
	} else {
		ip4 := &layers.IPv4{
			Version:  4,
			IHL:      5,
			TTL:      hopLimitOrDefault(p.HopLimit),
			Protocol: layers.IPProtocolTCP,
			SrcIP:    p.SrcIP.To4(),
			DstIP:    p.DstIP.To4(),
		}
		networkLayer = ip4
		if !p.Tunnel {
			layersSlice = append(layersSlice, &layers.Ethernet{SrcMAC: p.SrcMAC, DstMAC: p.DstMAC, EthernetType: layers.EthernetTypeIPv4})
		}
		layersSlice = append(layersSlice, ip4)
	}
	if err := tcp.SetNetworkLayerForChecksum(networkLayer); err != nil {
		return nil, err
	}
	layersSlice = append(layersSlice, tcp)

	buf := gopacket.NewSerializeBuffer()
	sopts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, sopts, layersSlice...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
