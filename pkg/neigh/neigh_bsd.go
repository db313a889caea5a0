//go:build darwin || dragonfly || openbsd

package neigh

import (
	"errors"
	"net"
	"net/netip"

	"golang.org/x/net/route"
	"golang.org/x/sys/unix"
)

// fetchNeighbourTable reads the link-layer entries from the routing socket.
// Variable for mocking in tests.
var fetchNeighbourTable = func() ([]route.Message, error) {
	rib, err := route.FetchRIB(unix.AF_UNSPEC, unix.NET_RT_FLAGS, unix.RTF_LLINFO)
	if err != nil {
		return nil, err
	}
	return route.ParseRIB(route.RIBTypeRoute, rib)
}

// neighbourMatch reports whether msg is a link-layer entry for ip.
func neighbourMatch(msg route.Message, ip netip.Addr) bool {
	rm, ok := msg.(*route.RouteMessage)
	if !ok || rm.Flags&unix.RTF_LLINFO == 0 {
		return false
	}

	addrs := rm.Addrs
	if len(addrs) <= unix.RTAX_GATEWAY || addrs[unix.RTAX_DST] == nil {
		return false
	}

	var dst netip.Addr
	switch addr := addrs[unix.RTAX_DST].(type) {
	case *route.Inet4Addr:
		dst = netip.AddrFrom4(addr.IP)
	case *route.Inet6Addr:
		dst = netip.AddrFrom16(addr.IP).Unmap()
	default:
		return false
	}

	return dst == ip.Unmap().WithZone("")
}

func lookup(ip netip.Addr, iface *net.Interface) (net.HardwareAddr, error) {
	msgs, err := fetchNeighbourTable()
	if err != nil {
		return nil, err
	}

	for _, msg := range msgs {
		if !neighbourMatch(msg, ip) {
			continue
		}
		rm := msg.(*route.RouteMessage)
		if iface != nil && rm.Index != iface.Index {
			continue
		}
		if linkAddr, ok := rm.Addrs[unix.RTAX_GATEWAY].(*route.LinkAddr); ok && len(linkAddr.Addr) > 0 {
			return net.HardwareAddr(linkAddr.Addr), nil
		}
	}
	return nil, errors.New("no neighbour entry found")
}
