package packet

import (
	"net"
	"testing"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildARPRequest(t *testing.T) {
	p := Params{
		SrcMAC: net.HardwareAddr{0x02, 0x00, 0x00, 0x00, 0x00, 0x01},
		DstMAC: net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
		SrcIP:  net.ParseIP("192.168.1.10"),
		DstIP:  net.ParseIP("192.168.1.1"),
	}

	raw, err := BuildARPRequest(p)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	decoded := gopacket.NewPacket(raw, layers.LayerTypeEthernet, gopacket.Default)
	eth, ok := decoded.Layer(layers.LayerTypeEthernet).(*layers.Ethernet)
	require.True(t, ok)
	assert.Equal(t, layers.EthernetTypeARP, eth.EthernetType)
	assert.Equal(t, p.SrcMAC, eth.SrcMAC)

	arp, ok := decoded.Layer(layers.LayerTypeARP).(*layers.ARP)
	require.True(t, ok)
	assert.EqualValues(t, layers.ARPRequest, arp.Operation)
	assert.Equal(t, p.SrcIP.To4(), net.IP(arp.SourceProtAddress))
	assert.Equal(t, p.DstIP.To4(), net.IP(arp.DstProtAddress))
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0}, arp.DstHwAddress)
}
