package netprobe

import (
	"fmt"
	"net"
)

// Gateway is the next-hop (default gateway) learned for an Interface, when
// known. netprobe never discovers gateways on its own (spec.md §1 lists
// gateway MAC discovery as an external collaborator concern); callers that
// know the gateway MAC (e.g. from a prior ARP resolution) may set it.
type Gateway struct {
	MACAddr net.HardwareAddr
}

// Interface is the narrow, passive capability the probe engines need from a
// host network interface: spec.md §9 explicitly calls out that engines must
// not inherit a host-enumeration library's full type, just this shape.
type Interface struct {
	Index   int
	Name    string
	MACAddr net.HardwareAddr
	IPv4    []net.IP
	IPv6    []net.IP
	Gateway *Gateway

	tun      bool
	loopback bool
}

// IsTun reports whether the interface is a tunnel device (no Ethernet
// framing expected on the wire).
func (i Interface) IsTun() bool { return i.tun }

// IsLoopback reports whether the interface is the loopback device.
func (i Interface) IsLoopback() bool { return i.loopback }

// ErrInterfaceNotFound is returned when neither an index nor a name resolves
// to a live local interface.
var ErrInterfaceNotFound = fmt.Errorf("netprobe: interface not found")

// FindInterfaceByIndex resolves a local Interface by its OS-assigned index.
// This wraps the stdlib net package, the only reasonable source of local
// interface enumeration (see DESIGN.md) — no ecosystem library in the
// retrieval pack supersedes net.Interfaces for this.
func FindInterfaceByIndex(index int) (Interface, error) {
	ifi, err := net.InterfaceByIndex(index)
	if err != nil {
		return Interface{}, fmt.Errorf("netprobe: find interface by index %d: %w", index, ErrInterfaceNotFound)
	}
	return interfaceFromNet(ifi)
}

// FindInterfaceByName resolves a local Interface by its OS device name.
func FindInterfaceByName(name string) (Interface, error) {
	ifi, err := net.InterfaceByName(name)
	if err != nil {
		return Interface{}, fmt.Errorf("netprobe: find interface by name %q: %w", name, ErrInterfaceNotFound)
	}
	return interfaceFromNet(ifi)
}

func interfaceFromNet(ifi *net.Interface) (Interface, error) {
	addrs, err := ifi.Addrs()
	if err != nil {
		return Interface{}, fmt.Errorf("netprobe: list addresses for %s: %w", ifi.Name, err)
	}
	out := Interface{
		Index:    ifi.Index,
		Name:     ifi.Name,
		MACAddr:  ifi.HardwareAddr,
		loopback: ifi.Flags&net.FlagLoopback != 0,
		tun:      ifi.Flags&(net.FlagPointToPoint|net.FlagBroadcast) == net.FlagPointToPoint,
	}
	for _, a := range addrs {
		ipNet, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		if v4 := ipNet.IP.To4(); v4 != nil {
			out.IPv4 = append(out.IPv4, v4)
		} else {
			out.IPv6 = append(out.IPv6, ipNet.IP)
		}
	}
	return out, nil
}

// ResolveInterface finds the local Interface s.IfIndex (or, failing that,
// s.IfName) refers to — spec.md §6: "Pinger::new(setting) → Pinger |
// Error(\"unable to get interface …\")" validates by index OR name.
func ResolveInterface(s ProbeSetting) (Interface, error) {
	if s.IfIndex != 0 {
		if ifc, err := FindInterfaceByIndex(s.IfIndex); err == nil {
			return ifc, nil
		}
	}
	if s.IfName != "" {
		if ifc, err := FindInterfaceByName(s.IfName); err == nil {
			return ifc, nil
		}
	}
	return Interface{}, fmt.Errorf("netprobe: unable to get interface for index=%d name=%q: %w", s.IfIndex, s.IfName, ErrInterfaceNotFound)
}

// IsGlobalIPv4 reports whether addr is a globally routable IPv4 address
// (spec.md §6's is_global_ipv4 collaborator).
func IsGlobalIPv4(addr net.IP) bool {
	v4 := addr.To4()
	if v4 == nil {
		return false
	}
	return v4.IsGlobalUnicast() && !v4.IsPrivate() && !v4.IsLinkLocalUnicast()
}

// IsGlobalIPv6 reports whether addr is a globally routable IPv6 address, as
// opposed to link-local or unique-local (spec.md §4.8 uses this to choose
// between a global and a link-local source address for NDP).
func IsGlobalIPv6(addr net.IP) bool {
	if addr.To4() != nil {
		return false
	}
	if addr.IsLinkLocalUnicast() || addr.IsLinkLocalMulticast() {
		return false
	}
	// fc00::/7 unique local range is not globally routable either.
	if len(addr) == net.IPv6len && addr[0]&0xfe == 0xfc {
		return false
	}
	return addr.IsGlobalUnicast()
}
