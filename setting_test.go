package netprobe

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInterface() Interface {
	return Interface{
		Index:   1,
		Name:    "eth0",
		MACAddr: net.HardwareAddr{0x02, 0, 0, 0, 0, 1},
		IPv4:    []net.IP{net.ParseIP("192.168.1.10")},
		IPv6:    []net.IP{net.ParseIP("fe80::1")},
	}
}

func TestApplyDefaultsFillsProtocolSpecificPorts(t *testing.T) {
	s := ProbeSetting{Protocol: ProtocolTCP, SrcIP: net.ParseIP("192.168.1.10"), DstIP: net.ParseIP("192.168.1.1")}.applyDefaults()
	assert.EqualValues(t, DefaultTCPSrcPort, s.SrcPort)
	assert.EqualValues(t, DefaultTCPDstPort, s.DstPort)
	assert.EqualValues(t, DefaultCount, s.Count)
	assert.EqualValues(t, DefaultHopLimit, s.HopLimit)

	s = ProbeSetting{Protocol: ProtocolUDP, SrcIP: net.ParseIP("192.168.1.10"), DstIP: net.ParseIP("192.168.1.1")}.applyDefaults()
	assert.EqualValues(t, DefaultUDPSrcPort, s.SrcPort)
	assert.EqualValues(t, DefaultUDPDstPort, s.DstPort)

	s = ProbeSetting{Protocol: ProtocolNDP, SrcIP: net.ParseIP("fe80::1"), DstIP: net.ParseIP("fe80::2")}.applyDefaults()
	assert.EqualValues(t, ndpHopLimit, s.HopLimit)
}

func TestValidateRejectsMismatchedAddressFamily(t *testing.T) {
	s := ProbeSetting{
		Protocol: ProtocolICMP,
		SrcIP:    net.ParseIP("192.168.1.10"),
		DstIP:    net.ParseIP("fe80::2"),
	}
	err := s.Validate(testInterface())
	assert.Error(t, err)
}

func TestValidateRejectsARPWithoutIPv4(t *testing.T) {
	ifc := testInterface()
	ifc.IPv4 = nil
	s := ProbeSetting{Protocol: ProtocolARP, SrcIP: net.ParseIP("10.0.0.1"), DstIP: net.ParseIP("10.0.0.2")}
	err := s.Validate(ifc)
	assert.Error(t, err)
}

func TestNewARPSettingPicksInterfaceIPv4(t *testing.T) {
	ifc := testInterface()
	s, err := NewARPSetting(ifc, net.ParseIP("192.168.1.1"), 4, time.Second, time.Second)
	require.NoError(t, err)
	assert.Equal(t, ProtocolARP, s.Protocol)
	assert.True(t, s.SrcIP.Equal(net.ParseIP("192.168.1.10")))
}

func TestPickIPv6SourcePrefersMatchingScope(t *testing.T) {
	candidates := []net.IP{net.ParseIP("fe80::1"), net.ParseIP("2001:db8::1")}
	global := pickIPv6Source(candidates, net.ParseIP("2001:db8::dead"))
	assert.True(t, global.Equal(net.ParseIP("2001:db8::1")))

	linkLocal := pickIPv6Source(candidates, net.ParseIP("fe80::dead"))
	assert.True(t, linkLocal.Equal(net.ParseIP("fe80::1")))
}
