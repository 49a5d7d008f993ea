package packet

import (
	"net"
	"testing"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTCPSyn(t *testing.T) {
	p := Params{
		SrcMAC:  net.HardwareAddr{0x02, 0, 0, 0, 0, 1},
		DstMAC:  net.HardwareAddr{0x02, 0, 0, 0, 0, 2},
		SrcIP:   net.ParseIP("10.0.0.1"),
		DstIP:   net.ParseIP("10.0.0.2"),
		SrcPort: 44322,
		DstPort: 80,
	}
	raw, err := BuildTCPSyn(p)
	require.NoError(t, err)

	decoded := gopacket.NewPacket(raw, layers.LayerTypeEthernet, gopacket.Default)
	tcp, ok := decoded.Layer(layers.LayerTypeTCP).(*layers.TCP)
	require.True(t, ok)
	assert.True(t, tcp.SYN)
	assert.False(t, tcp.ACK)
	assert.EqualValues(t, 44322, tcp.SrcPort)
	assert.EqualValues(t, 80, tcp.DstPort)
}

func TestBuildTCPFingerprintProbeEcnFlags(t *testing.T) {
	p := Params{
		SrcMAC: net.HardwareAddr{0x02, 0, 0, 0, 0, 1},
		DstMAC: net.HardwareAddr{0x02, 0, 0, 0, 0, 2},
		SrcIP:  net.ParseIP("10.0.0.1"),
		DstIP:  net.ParseIP("10.0.0.2"),
	}
	raw, err := BuildTCPFingerprintProbe(p, FPTcpEcn)
	require.NoError(t, err)

	decoded := gopacket.NewPacket(raw, layers.LayerTypeEthernet, gopacket.Default)
	tcp, ok := decoded.Layer(layers.LayerTypeTCP).(*layers.TCP)
	require.True(t, ok)
	assert.True(t, tcp.SYN)
	assert.True(t, tcp.ECE)
	assert.True(t, tcp.CWR)
}

func TestBuildTCPFingerprintProbeSynAckFlags(t *testing.T) {
	p := Params{
		SrcMAC: net.HardwareAddr{0x02, 0, 0, 0, 0, 1},
		DstMAC: net.HardwareAddr{0x02, 0, 0, 0, 0, 2},
		SrcIP:  net.ParseIP("10.0.0.1"),
		DstIP:  net.ParseIP("10.0.0.2"),
	}
	raw, err := BuildTCPFingerprintProbe(p, FPTcpSynAck)
	require.NoError(t, err)

	decoded := gopacket.NewPacket(raw, layers.LayerTypeEthernet, gopacket.Default)
	tcp, ok := decoded.Layer(layers.LayerTypeTCP).(*layers.TCP)
	require.True(t, ok)
	assert.True(t, tcp.SYN)
	assert.False(t, tcp.ECE)
	assert.False(t, tcp.CWR)
}
