// Package filter decodes captured bytes into a layered view and applies the
// per-protocol matching rules that decide whether a frame answers a given
// outstanding probe (spec.md §4.2).
package filter

import (
	"net"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// ParseOption controls where decoding starts, mirroring spec.md §6's
// ParseOption{from_ip_packet, offset}.
type ParseOption struct {
	FromIPPacket bool
	Offset       int
}

// DecodedFrame is the layered view spec.md §4.2 decodes a captured frame
// into: {datalink{ethernet?,arp?}, ip{ipv4?,ipv6?,icmp?,icmpv6?},
// transport{tcp?,udp?}}.
type DecodedFrame struct {
	Raw []byte

	Ethernet *layers.Ethernet
	ARP      *layers.ARP

	IPv4   *layers.IPv4
	IPv6   *layers.IPv6
	ICMPv4 *layers.ICMPv4
	ICMPv6 *layers.ICMPv6

	NeighborAdvertisement *layers.ICMPv6NeighborAdvertisement

	TCP *layers.TCP
	UDP *layers.UDP
}

// Decode parses raw captured bytes per opt (spec.md §4.2's tunnel/loopback
// offset rule — the engine computes Offset from setting.Tunnel/Loopback
// before calling Decode).
func Decode(data []byte, opt ParseOption) *DecodedFrame {
	frame := &DecodedFrame{Raw: data}
	if opt.Offset > 0 && opt.Offset <= len(data) {
		data = data[opt.Offset:]
	}
	if len(data) == 0 {
		return frame
	}

	var first gopacket.LayerType
	if opt.FromIPPacket {
		switch data[0] >> 4 {
		case 6:
			first = layers.LayerTypeIPv6
		default:
			first = layers.LayerTypeIPv4
		}
	} else {
		first = layers.LayerTypeEthernet
	}

	packet := gopacket.NewPacket(data, first, gopacket.DecodeOptions{Lazy: true, NoCopy: true})
	for _, l := range packet.Layers() {
		switch v := l.(type) {
		case *layers.Ethernet:
			frame.Ethernet = v
		case *layers.ARP:
			frame.ARP = v
		case *layers.IPv4:
			frame.IPv4 = v
		case *layers.IPv6:
			frame.IPv6 = v
		case *layers.ICMPv4:
			frame.ICMPv4 = v
		case *layers.ICMPv6:
			frame.ICMPv6 = v
		case *layers.ICMPv6NeighborAdvertisement:
			frame.NeighborAdvertisement = v
		case *layers.TCP:
			frame.TCP = v
		case *layers.UDP:
			frame.UDP = v
		}
	}
	return frame
}

// SourceMAC returns the frame's Ethernet source address, or a zero address
// when the frame carries no Ethernet layer (tunnel mode).
func (f *DecodedFrame) SourceMAC() net.HardwareAddr {
	if f.Ethernet == nil {
		return nil
	}
	return f.Ethernet.SrcMAC
}

// IPSource returns whichever of IPv4/IPv6 is present.
func (f *DecodedFrame) IPSource() net.IP {
	if f.IPv4 != nil {
		return f.IPv4.SrcIP
	}
	if f.IPv6 != nil {
		return f.IPv6.SrcIP
	}
	return nil
}

// IPDestination returns whichever of IPv4/IPv6 is present.
func (f *DecodedFrame) IPDestination() net.IP {
	if f.IPv4 != nil {
		return f.IPv4.DstIP
	}
	if f.IPv6 != nil {
		return f.IPv6.DstIP
	}
	return nil
}

// TTL returns the IPv4 TTL or IPv6 hop limit, whichever is present.
func (f *DecodedFrame) TTL() uint8 {
	if f.IPv4 != nil {
		return f.IPv4.TTL
	}
	if f.IPv6 != nil {
		return f.IPv6.HopLimit
	}
	return 0
}
