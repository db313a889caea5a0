package route

import (
	"net"
	"net/netip"
)

// Route is the kernel's answer for how traffic to Destination leaves the
// host: the next hop, the source address the kernel would use, and the
// egress interface.
type Route struct {
	Destination netip.Addr
	Gateway     netip.Addr
	Source      netip.Addr
	Interface   *net.Interface
}

// String renders the route in the shape `ip route get` prints, e.g.
// "8.8.8.8 via 192.168.1.1 dev eth0 src 192.168.1.23". Directly connected
// destinations have no gateway and omit the "via" part.
func (r Route) String() string {
	s := r.Destination.String()
	if r.Gateway.IsValid() {
		s += " via " + r.Gateway.String()
	}
	if r.Interface != nil {
		s += " dev " + r.Interface.Name
	}
	if r.Source.IsValid() {
		s += " src " + r.Source.String()
	}
	return s
}

// Get asks the kernel which route it would use to reach ip. The lookup goes
// through netlink on Linux and the routing socket on the BSDs, so the answer
// reflects the live table rather than parsed command output. Both IPv4 and
// IPv6 destinations are supported.
func Get(ip netip.Addr) (Route, error) {
	return get(ip)
}
