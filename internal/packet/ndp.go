package packet

import (
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// BuildNeighborSolicitation builds an Ethernet+IPv6+ICMPv6 Neighbor
// Solicitation carrying a source-link-layer-address option (spec.md §4.1
// NDP row). hop_limit is fixed at 255 for NDP.
func BuildNeighborSolicitation(p Params) ([]byte, error) {
	eth := layers.Ethernet{
		SrcMAC:       p.SrcMAC,
		DstMAC:       p.DstMAC,
		EthernetType: layers.EthernetTypeIPv6,
	}
	ip6 := layers.IPv6{
		Version:    6,
		NextHeader: layers.IPProtocolICMPv6,
		HopLimit:   255,
		SrcIP:      p.SrcIP,
		DstIP:      p.DstIP,
	}
	icmp6 := layers.ICMPv6{
		TypeCode: layers.CreateICMPv6TypeCode(layers.ICMPv6TypeNeighborSolicitation, 0),
	}
	icmp6.SetNetworkLayerForChecksum(&ip6)
	ns := layers.ICMPv6NeighborSolicitation{
		TargetAddress: p.DstIP,
		Options: layers.ICMPv6Options{
			{Type: layers.ICMPv6OptSourceAddress, Data: []byte(p.SrcMAC)},
		},
	}
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, &eth, &ip6, &icmp6, &ns); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
