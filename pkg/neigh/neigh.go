// Package neigh looks up link-layer addresses in the kernel's neighbour
// table: the ARP cache for IPv4 and the NDP cache for IPv6. It only reads
// what the kernel already knows and never probes the network itself.
package neigh

import (
	"net"
	"net/netip"
)

// Lookup returns the MAC address the kernel's neighbour table holds for ip.
// A nil iface matches entries on any interface.
func Lookup(ip netip.Addr, iface *net.Interface) (net.HardwareAddr, error) {
	return lookup(ip, iface)
}
