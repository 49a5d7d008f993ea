package packet

import (
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// BuildICMPEcho builds an ICMP/ICMPv6 Echo Request (spec.md §4.1 ICMPv4/v6
// Echo rows). The identifier is derived from the low 16 bits of p.Seq so
// replies can be correlated even though the filter in this library matches
// purely on source address and type (spec.md §4.2).
func BuildICMPEcho(p Params) ([]byte, error) {
	return buildICMPProbe(p, FPIcmpEcho)
}

// BuildICMPProbe builds the stimulus for an ICMP-based FingerprintType
// (Echo, Timestamp, AddressMask, Information — spec.md §4.1/§4.2).
func BuildICMPProbe(p Params, fp FingerprintType) ([]byte, error) {
	return buildICMPProbe(p, fp)
}

func buildICMPProbe(p Params, fp FingerprintType) ([]byte, error) {
	id := uint16(p.Seq)
	if p.IsIPv6() {
		return buildICMPv6Probe(p, id)
	}
	return buildICMPv4Probe(p, fp, id)
}

func buildICMPv4Probe(p Params, fp FingerprintType, id uint16) ([]byte, error) {
	var typ uint8
	var payload []byte
	switch fp {
	case FPIcmpTimestamp:
		typ = layers.ICMPv4TypeTimestampRequest
		payload = make([]byte, 12) // originate/receive/transmit timestamps, zeroed
	case FPIcmpAddressMask:
		typ = layers.ICMPv4TypeAddressMaskRequest
		payload = make([]byte, 4)
	case FPIcmpInformation:
		typ = layers.ICMPv4TypeInfoRequest
	default:
		typ = layers.ICMPv4TypeEchoRequest
		payload = []byte("netprobe")
	}

	layersSlice := []gopacket.SerializableLayer{}
	var eth *layers.Ethernet
	if !p.Tunnel {
		eth = &layers.Ethernet{SrcMAC: p.SrcMAC, DstMAC: p.DstMAC, EthernetType: layers.EthernetTypeIPv4}
		layersSlice = append(layersSlice, eth)
	}
	ip4 := &layers.IPv4{
		Version:  4,
		IHL:      5,
		TTL:      hopLimitOrDefault(p.HopLimit),
		Protocol: layers.IPProtocolICMPv4,
		SrcIP:    p.SrcIP.To4(),
		DstIP:    p.DstIP.To4(),
	}
	icmp := &layers.ICMPv4{
		TypeCode: layers.CreateICMPv4TypeCode(typ, 0),
		Id:       id,
		Seq:      id,
	}
	layersSlice = append(layersSlice, ip4, icmp, gopacket.Payload(payload))

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, layersSlice...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func buildICMPv6Probe(p Params, id uint16) ([]byte, error) {
	ip6 := &layers.IPv6{
		Version:    6,
		NextHeader: layers.IPProtocolICMPv6,
		HopLimit:   hopLimitOrDefault(p.HopLimit),
		SrcIP:      p.SrcIP,
		DstIP:      p.DstIP,
	}
	icmp6 := &layers.ICMPv6{TypeCode: layers.CreateICMPv6TypeCode(layers.ICMPv6TypeEchoRequest, 0)}
	icmp6.SetNetworkLayerForChecksum(ip6)
	echo := &layers.ICMPv6Echo{Identifier: id, SeqNumber: id}

	layersSlice := []gopacket.SerializableLayer{}
	if !p.Tunnel {
		layersSlice = append(layersSlice, &layers.Ethernet{SrcMAC: p.SrcMAC, DstMAC: p.DstMAC, EthernetType: layers.EthernetTypeIPv6})
	}
	layersSlice = append(layersSlice, ip6, icmp6, echo, gopacket.Payload([]byte("netprobe")))

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, layersSlice...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func hopLimitOrDefault(ttl uint8) uint8 {
	if ttl == 0 {
		return 64
	}
	return ttl
}
