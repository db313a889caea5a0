//go:build linux

package neigh

import (
	"errors"
	"net"
	"net/netip"

	"github.com/jsimonetti/rtnetlink/rtnl"
)

// fetchNeighbours reads the neighbour table over rtnetlink. Variable for
// mocking in tests. A nil iface asks the kernel for all interfaces.
var fetchNeighbours = func(iface *net.Interface) ([]*rtnl.Neigh, error) {
	c, err := rtnl.Dial(nil)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	return c.Neighbours(iface, 0)
}

func lookup(ip netip.Addr, iface *net.Interface) (net.HardwareAddr, error) {
	neighbours, err := fetchNeighbours(iface)
	if err != nil {
		return nil, err
	}

	target := net.IP(ip.Unmap().WithZone("").AsSlice())
	for _, n := range neighbours {
		// Incomplete entries carry no link-layer address.
		if n.IP.Equal(target) && len(n.HwAddr) > 0 {
			return n.HwAddr, nil
		}
	}
	return nil, errors.New("no neighbour entry found")
}
