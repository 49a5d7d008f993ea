package packet

import (
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// BuildARPRequest builds an Ethernet+ARP request frame (spec.md §4.1 ARP
// row): sender HW/IP from p.SrcMAC/p.SrcIP, target IP from p.DstIP, target
// HW left zero as ARP Request requires.
func BuildARPRequest(p Params) ([]byte, error) {
	eth := layers.Ethernet{
		SrcMAC:       p.SrcMAC,
		DstMAC:       p.DstMAC,
		EthernetType: layers.EthernetTypeARP,
	}
	arp := layers.ARP{
		AddrType:          gopacket.LinkTypeEthernet,
		Protocol:          layers.EthernetTypeIPv4,
		HwAddressSize:     6,
		ProtAddressSize:   4,
		Operation:         layers.ARPRequest,
		SourceHwAddress:   []byte(p.SrcMAC),
		SourceProtAddress: p.SrcIP.To4(),
		DstHwAddress:      []byte{0, 0, 0, 0, 0, 0},
		DstProtAddress:    p.DstIP.To4(),
	}
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, &eth, &arp); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
