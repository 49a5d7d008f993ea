package netprobe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprintTypeProtocolProjection(t *testing.T) {
	cases := []struct {
		fp   FingerprintType
		want Protocol
	}{
		{IcmpEcho, ProtocolICMP},
		{IcmpTimestamp, ProtocolICMP},
		{IcmpAddressMask, ProtocolICMP},
		{IcmpInformation, ProtocolICMP},
		{IcmpUnreachable, ProtocolUDP},
		{TcpSynAck, ProtocolTCP},
		{TcpRstAck, ProtocolTCP},
		{TcpEcn, ProtocolTCP},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.fp.Protocol(), c.fp.String())
	}
}

func TestFingerprintTypeStringUnknown(t *testing.T) {
	assert.Equal(t, "Unknown", FingerprintType(99).String())
}

func TestProbeStatusString(t *testing.T) {
	assert.Equal(t, "Done", Done().String())
	assert.Equal(t, "Timeout: receive timeout", TimeoutStatus("receive timeout").String())
	assert.Equal(t, "Error: boom", ErrorStatus("boom").String())
}
