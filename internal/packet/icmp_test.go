package packet

import (
	"net"
	"testing"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildICMPEchoIPv4(t *testing.T) {
	p := Params{
		SrcMAC:   net.HardwareAddr{0x02, 0, 0, 0, 0, 1},
		DstMAC:   net.HardwareAddr{0x02, 0, 0, 0, 0, 2},
		SrcIP:    net.ParseIP("10.0.0.1"),
		DstIP:    net.ParseIP("10.0.0.2"),
		HopLimit: 64,
		Seq:      7,
	}

	raw, err := BuildICMPEcho(p)
	require.NoError(t, err)

	decoded := gopacket.NewPacket(raw, layers.LayerTypeEthernet, gopacket.Default)
	ip4, ok := decoded.Layer(layers.LayerTypeIPv4).(*layers.IPv4)
	require.True(t, ok)
	assert.Equal(t, layers.IPProtocolICMPv4, ip4.Protocol)
	assert.EqualValues(t, 64, ip4.TTL)

	icmp, ok := decoded.Layer(layers.LayerTypeICMPv4).(*layers.ICMPv4)
	require.True(t, ok)
	assert.Equal(t, layers.ICMPv4TypeEchoRequest, icmp.TypeCode.Type())
	assert.EqualValues(t, 7, icmp.Id)
}

func TestBuildICMPProbeTimestamp(t *testing.T) {
	p := Params{
		SrcMAC: net.HardwareAddr{0x02, 0, 0, 0, 0, 1},
		DstMAC: net.HardwareAddr{0x02, 0, 0, 0, 0, 2},
		SrcIP:  net.ParseIP("10.0.0.1"),
		DstIP:  net.ParseIP("10.0.0.2"),
	}
	raw, err := BuildICMPProbe(p, FPIcmpTimestamp)
	require.NoError(t, err)

	decoded := gopacket.NewPacket(raw, layers.LayerTypeEthernet, gopacket.Default)
	icmp, ok := decoded.Layer(layers.LayerTypeICMPv4).(*layers.ICMPv4)
	require.True(t, ok)
	assert.Equal(t, layers.ICMPv4TypeTimestampRequest, icmp.TypeCode.Type())
}

func TestHopLimitOrDefault(t *testing.T) {
	assert.EqualValues(t, 64, hopLimitOrDefault(0))
	assert.EqualValues(t, 12, hopLimitOrDefault(12))
}
