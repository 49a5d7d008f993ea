package packet

import (
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// BuildUDP builds a UDP probe datagram for ping/traceroute/fingerprinting
// (spec.md §4.1 "UDP" row). Traceroute overrides p.HopLimit per round.
func BuildUDP(p Params) ([]byte, error) {
	udp := &layers.UDP{
		SrcPort: layers.UDPPort(p.SrcPort),
		DstPort: layers.UDPPort(p.DstPort),
	}
	payload := gopacket.Payload([]byte("netprobe"))

	layersSlice := []gopacket.SerializableLayer{}
	var networkLayer gopacket.NetworkLayer
	if p.IsIPv6() {
		ip6 := &layers.IPv6{
			Version:    6,
			NextHeader: layers.IPProtocolUDP,
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
			Protocol: layers.IPProtocolUDP,
			SrcIP:    p.SrcIP.To4(),
			DstIP:    p.DstIP.To4(),
		}
		networkLayer = ip4
		if !p.Tunnel {
			layersSlice = append(layersSlice, &layers.Ethernet{SrcMAC: p.SrcMAC, DstMAC: p.DstMAC, EthernetType: layers.EthernetTypeIPv4})
		}
		layersSlice = append(layersSlice, ip4)
	}
	if err := udp.SetNetworkLayerForChecksum(networkLayer); err != nil {
		return nil, err
	}
	layersSlice = append(layersSlice, udp, payload)

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, layersSlice...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
