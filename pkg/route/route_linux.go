//go:build linux

package route

import (
	"fmt"
	"net"
	"net/netip"

	"github.com/jsimonetti/rtnetlink"
	"golang.org/x/sys/unix"
)

// queryKernelRoute sends an RTM_GETROUTE request for ip against the main
// routing table. Variable for mocking in tests.
var queryKernelRoute = func(ip netip.Addr) ([]rtnetlink.RouteMessage, error) {
	c, err := rtnetlink.Dial(nil)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	family := unix.AF_INET
	if ip.Is6() {
		family = unix.AF_INET6
	}

	req := &rtnetlink.RouteMessage{
		Family: uint8(family),
		Table:  unix.RT_TABLE_MAIN,
		Attributes: rtnetlink.RouteAttributes{
			Dst: ip.AsSlice(),
		},
	}
	return c.Route.Get(req)
}

// routeFromMessages converts the netlink reply into a Route. RTM_GETROUTE
// resolves the lookup in the kernel, so exactly one message is expected.
func routeFromMessages(ip netip.Addr, msgs []rtnetlink.RouteMessage) (Route, error) {
	if len(msgs) != 1 {
		return Route{}, fmt.Errorf("expected one route for %s, kernel returned %d", ip, len(msgs))
	}
	m := msgs[0]

	dst, ok := netip.AddrFromSlice(m.Attributes.Dst)
	if !ok {
		return Route{}, fmt.Errorf("unparseable destination in route reply: %v", m.Attributes.Dst)
	}
	if dst != ip {
		return Route{}, fmt.Errorf("kernel answered for %s, asked about %s", dst, ip)
	}

	// Directly connected destinations come back without a gateway
	gw, _ := netip.AddrFromSlice(m.Attributes.Gateway)

	src, ok := netip.AddrFromSlice(m.Attributes.Src)
	if !ok {
		return Route{}, fmt.Errorf("unparseable source in route reply: %v", m.Attributes.Src)
	}

	intf, err := net.InterfaceByIndex(int(m.Attributes.OutIface))
	if err != nil {
		return Route{}, fmt.Errorf("looking up egress interface %d: %w", m.Attributes.OutIface, err)
	}
	if intf.Flags&net.FlagUp == 0 {
		return Route{}, fmt.Errorf("egress interface %s is down", intf.Name)
	}

	return Route{
		Destination: dst,
		Gateway:     gw,
		Source:      src,
		Interface:   intf,
	}, nil
}

func get(ip netip.Addr) (Route, error) {
	msgs, err := queryKernelRoute(ip)
	if err != nil {
		return Route{}, fmt.Errorf("netlink route query: %w", err)
	}
	return routeFromMessages(ip, msgs)
}
