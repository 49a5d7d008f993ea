package filter

import (
	"net"
	"testing"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serialize(t *testing.T, layerz ...gopacket.SerializableLayer) []byte {
	t.Helper()
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	require.NoError(t, gopacket.SerializeLayers(buf, opts, layerz...))
	return buf.Bytes()
}

func TestMatchARPReplyForgedFromDestination(t *testing.T) {
	eth := &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{0x02, 0, 0, 0, 0, 2},
		DstMAC:       net.HardwareAddr{0x02, 0, 0, 0, 0, 1},
		EthernetType: layers.EthernetTypeARP,
	}
	arp := &layers.ARP{
		AddrType: gopacket.LinkTypeEthernet, Protocol: layers.EthernetTypeIPv4,
		HwAddressSize: 6, ProtAddressSize: 4, Operation: layers.ARPReply,
		SourceHwAddress:   []byte{0x02, 0, 0, 0, 0, 2},
		SourceProtAddress: net.ParseIP("192.168.1.1").To4(),
		DstHwAddress:      []byte{0x02, 0, 0, 0, 0, 1},
		DstProtAddress:    net.ParseIP("192.168.1.10").To4(),
	}
	raw := serialize(t, eth, arp)
	frame := Decode(raw, ParseOption{})

	ok := MatchARPReply(frame, MatchParams{
		SrcIP: net.ParseIP("192.168.1.10"),
		DstIP: net.ParseIP("192.168.1.1"),
	})
	assert.True(t, ok)

	notOurs := MatchARPReply(frame, MatchParams{
		SrcIP: net.ParseIP("192.168.1.10"),
		DstIP: net.ParseIP("192.168.1.99"),
	})
	assert.False(t, notOurs)
}

func TestMatchTCPPingReplySynAckIsOpen(t *testing.T) {
	ip4 := &layers.IPv4{
		Version: 4, IHL: 5, TTL: 64, Protocol: layers.IPProtocolTCP,
		SrcIP: net.ParseIP("10.0.0.2").To4(), DstIP: net.ParseIP("10.0.0.1").To4(),
	}
	tcp := &layers.TCP{SrcPort: 80, DstPort: 44322, SYN: true, ACK: true}
	require.NoError(t, tcp.SetNetworkLayerForChecksum(ip4))
	raw := serialize(t, ip4, tcp)
	frame := Decode(raw, ParseOption{FromIPPacket: true})

	verdict := MatchTCPPingReply(frame, MatchParams{DstIP: net.ParseIP("10.0.0.2"), DstPort: 80, HasDstPort: true})
	assert.True(t, verdict.Matched)
	assert.True(t, verdict.Open)
}

func TestMatchTCPPingReplyRstAckIsClosed(t *testing.T) {
	ip4 := &layers.IPv4{
		Version: 4, IHL: 5, TTL: 64, Protocol: layers.IPProtocolTCP,
		SrcIP: net.ParseIP("10.0.0.2").To4(), DstIP: net.ParseIP("10.0.0.1").To4(),
	}
	tcp := &layers.TCP{SrcPort: 443, DstPort: 44322, RST: true, ACK: true}
	require.NoError(t, tcp.SetNetworkLayerForChecksum(ip4))
	raw := serialize(t, ip4, tcp)
	frame := Decode(raw, ParseOption{FromIPPacket: true})

	verdict := MatchTCPPingReply(frame, MatchParams{DstIP: net.ParseIP("10.0.0.2"), DstPort: 443, HasDstPort: true})
	assert.True(t, verdict.Matched)
	assert.False(t, verdict.Open)
}

func TestMatchFingerprintSynAckExcludesEcn(t *testing.T) {
	ip4 := &layers.IPv4{
		Version: 4, IHL: 5, TTL: 64, Protocol: layers.IPProtocolTCP,
		SrcIP: net.ParseIP("10.0.0.2").To4(), DstIP: net.ParseIP("10.0.0.1").To4(),
	}
	tcp := &layers.TCP{SrcPort: 80, DstPort: 44322, SYN: true, ACK: true, ECE: true}
	require.NoError(t, tcp.SetNetworkLayerForChecksum(ip4))
	raw := serialize(t, ip4, tcp)
	frame := Decode(raw, ParseOption{FromIPPacket: true})

	mp := MatchParams{DstIP: net.ParseIP("10.0.0.2")}
	assert.False(t, MatchFingerprint(frame, mp, FPTcpSynAck), "SYN|ACK|ECE must not be classified as SynAck")
	assert.True(t, MatchFingerprint(frame, mp, FPTcpEcn))
}

func TestMatchFingerprintSynAckRejectsExtraFlags(t *testing.T) {
	mp := MatchParams{DstIP: net.ParseIP("10.0.0.2")}

	ip4 := &layers.IPv4{
		Version: 4, IHL: 5, TTL: 64, Protocol: layers.IPProtocolTCP,
		SrcIP: net.ParseIP("10.0.0.2").To4(), DstIP: net.ParseIP("10.0.0.1").To4(),
	}
	synAckFin := &layers.TCP{SrcPort: 80, DstPort: 44322, SYN: true, ACK: true, FIN: true}
	require.NoError(t, synAckFin.SetNetworkLayerForChecksum(ip4))
	raw := serialize(t, ip4, synAckFin)
	frame := Decode(raw, ParseOption{FromIPPacket: true})
	assert.False(t, MatchFingerprint(frame, mp, FPTcpSynAck), "SYN|ACK|FIN must not be classified as a clean SynAck")

	ip4b := &layers.IPv4{
		Version: 4, IHL: 5, TTL: 64, Protocol: layers.IPProtocolTCP,
		SrcIP: net.ParseIP("10.0.0.2").To4(), DstIP: net.ParseIP("10.0.0.1").To4(),
	}
	rstAckUrg := &layers.TCP{SrcPort: 443, DstPort: 44322, RST: true, ACK: true, URG: true}
	require.NoError(t, rstAckUrg.SetNetworkLayerForChecksum(ip4b))
	raw2 := serialize(t, ip4b, rstAckUrg)
	frame2 := Decode(raw2, ParseOption{FromIPPacket: true})
	assert.False(t, MatchFingerprint(frame2, mp, FPTcpRstAck), "RST|ACK|URG must not be classified as a clean RstAck")
}

func TestMatchTraceReplyTimeExceededVsUnreachable(t *testing.T) {
	ip4 := &layers.IPv4{
		Version: 4, IHL: 5, TTL: 64, Protocol: layers.IPProtocolICMPv4,
		SrcIP: net.ParseIP("10.0.0.5").To4(), DstIP: net.ParseIP("10.0.0.1").To4(),
	}
	relay := &layers.ICMPv4{TypeCode: layers.CreateICMPv4TypeCode(layers.ICMPv4TypeTimeExceeded, 0)}
	raw := serialize(t, ip4, relay, gopacket.Payload([]byte{0, 0, 0, 0}))
	frame := Decode(raw, ParseOption{FromIPPacket: true})

	verdict := MatchTraceReply(frame, MatchParams{})
	assert.True(t, verdict.Matched)
	assert.False(t, verdict.DestinationReached)

	dest := &layers.ICMPv4{TypeCode: layers.CreateICMPv4TypeCode(layers.ICMPv4TypeDestinationUnreachable, 3)}
	raw2 := serialize(t, ip4, dest, gopacket.Payload([]byte{0, 0, 0, 0}))
	frame2 := Decode(raw2, ParseOption{FromIPPacket: true})

	verdict2 := MatchTraceReply(frame2, MatchParams{})
	assert.True(t, verdict2.Matched)
	assert.True(t, verdict2.DestinationReached)
}
