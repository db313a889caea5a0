//go:build darwin || dragonfly || freebsd || netbsd || openbsd

package route

import (
	"fmt"
	"net"
	"net/netip"

	"golang.org/x/net/route"
	"golang.org/x/sys/unix"
)

// fetchRIB reads the kernel routing table off the routing socket.
// Variable for mocking in tests.
var fetchRIB = func() ([]route.Message, error) {
	rib, err := route.FetchRIB(unix.AF_UNSPEC, route.RIBTypeRoute, 0)
	if err != nil {
		return nil, err
	}
	return route.ParseRIB(route.RIBTypeRoute, rib)
}

// addrFromRoute converts a routing socket address to netip form. ok is false
// for nil slots and non-IP address types such as link addresses.
func addrFromRoute(a route.Addr) (netip.Addr, bool) {
	switch a := a.(type) {
	case *route.Inet4Addr:
		return netip.AddrFrom4(a.IP), true
	case *route.Inet6Addr:
		return netip.AddrFrom16(a.IP), true
	}
	return netip.Addr{}, false
}

// maskBits returns the prefix length encoded by a route mask slot.
func maskBits(a route.Addr) (int, bool) {
	switch a := a.(type) {
	case *route.Inet4Addr:
		ones, _ := net.IPv4Mask(a.IP[0], a.IP[1], a.IP[2], a.IP[3]).Size()
		return ones, true
	case *route.Inet6Addr:
		ones, _ := net.IPMask(a.IP[:]).Size()
		return ones, true
	}
	return 0, false
}

// bestMatch scans the RIB for the longest prefix containing ip. A host route
// (RTF_HOST) for ip wins immediately; otherwise the most specific subnet
// route is kept, first one winning ties. The BSDs have no equivalent of the
// netlink RTM_GETROUTE lookup, so the selection happens here.
func bestMatch(ip netip.Addr, msgs []route.Message) (Route, error) {
	var best Route
	bestLen := -1

	for _, msg := range msgs {
		rm, ok := msg.(*route.RouteMessage)
		if !ok || rm.Flags&unix.RTF_UP == 0 || len(rm.Addrs) < 6 {
			continue
		}

		dst, ok := addrFromRoute(rm.Addrs[0])
		if !ok || dst.Is4() != ip.Is4() {
			continue
		}
		// Directly connected routes carry a link address in the gateway slot
		gw, _ := addrFromRoute(rm.Addrs[1])
		src, ok := addrFromRoute(rm.Addrs[5])
		if !ok {
			continue
		}

		if rm.Flags&unix.RTF_HOST != 0 {
			if dst != ip {
				continue
			}
			intf, err := net.InterfaceByIndex(rm.Index)
			if err != nil {
				return Route{}, fmt.Errorf("looking up egress interface %d: %w", rm.Index, err)
			}
			return Route{Destination: ip, Gateway: gw, Source: src, Interface: intf}, nil
		}

		bits, ok := maskBits(rm.Addrs[2])
		if !ok {
			continue
		}
		if !netip.PrefixFrom(dst, bits).Contains(ip) || bits <= bestLen {
			continue
		}
		intf, err := net.InterfaceByIndex(rm.Index)
		if err != nil {
			return Route{}, fmt.Errorf("looking up egress interface %d: %w", rm.Index, err)
		}
		best = Route{Destination: ip, Gateway: gw, Source: src, Interface: intf}
		bestLen = bits
	}

	if bestLen < 0 {
		return Route{}, fmt.Errorf("no route to %s", ip)
	}
	return best, nil
}

func get(ip netip.Addr) (Route, error) {
	msgs, err := fetchRIB()
	if err != nil {
		return Route{}, fmt.Errorf("reading routing table: %w", err)
	}
	return bestMatch(ip, msgs)
}
