package netprobe

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostAddressesExcludesNetworkAndBroadcast(t *testing.T) {
	_, cidr, err := net.ParseCIDR("192.168.1.0/29")
	require.NoError(t, err)

	hosts, err := hostAddresses(cidr)
	require.NoError(t, err)
	require.Len(t, hosts, 6)
	assert.True(t, hosts[0].Equal(net.ParseIP("192.168.1.1")))
	assert.True(t, hosts[len(hosts)-1].Equal(net.ParseIP("192.168.1.6")))
}

func TestHostAddressesRejectsIPv6(t *testing.T) {
	_, cidr, err := net.ParseCIDR("2001:db8::/126")
	require.NoError(t, err)

	_, err = hostAddresses(cidr)
	assert.Error(t, err)
}

func TestSweepOptionsApplyDefaults(t *testing.T) {
	o := SweepOptions{}.applyDefaults()
	assert.Equal(t, 32, o.Concurrency)
	assert.EqualValues(t, 1, o.Count)
	assert.Equal(t, DefaultReceiveTimeout, o.ReceiveTimeout)
	assert.Equal(t, DefaultSendRate, o.SendRate)
}

func TestIncIPCarriesOverOctets(t *testing.T) {
	ip := net.ParseIP("192.168.1.255").To4()
	incIP(ip)
	assert.True(t, ip.Equal(net.ParseIP("192.168.2.0")))
}

func TestSweptHostIsAliveExcludesTimeoutOnly(t *testing.T) {
	target := net.ParseIP("192.168.1.5")
	timeoutOnly := NeighborSweepResult{
		IP: target,
		Result: DeviceResolveResult{
			Responses: []ProbeResult{
				TimeoutResult(1, target, "", ProtocolARP, 42),
				TimeoutResult(2, target, "", ProtocolARP, 42),
			},
		},
	}
	assert.False(t, sweptHostIsAlive(timeoutOnly), "a host that only timed out must not be reported alive")

	replied := NeighborSweepResult{
		IP: target,
		Result: DeviceResolveResult{
			Responses: []ProbeResult{
				TimeoutResult(1, target, "", ProtocolARP, 42),
				{Seq: 2, IPAddr: target, ProbeStatus: Done(), RTT: 2 * time.Millisecond},
			},
		},
	}
	assert.True(t, sweptHostIsAlive(replied))

	errored := NeighborSweepResult{IP: target, Err: assert.AnError}
	assert.False(t, sweptHostIsAlive(errored))
}
