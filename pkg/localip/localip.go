// Package localip determines the host's preferred outbound IP address, the
// one a LAN peer would see this machine connect from.
package localip

import (
	"fmt"
	"log/slog"
	"net"
	"net/netip"

	"github.com/jackpal/gateway"
)

// probeAddr is a public address used to make the kernel pick an egress
// source. The socket is only connected, never written to, so nothing is sent.
const probeAddr = "8.8.8.8:80"

// dialUDP opens the connect-only probe socket. Variable for mocking in tests.
var dialUDP = func(network, addr string) (net.Conn, error) {
	return net.Dial(network, addr)
}

// discoverInterface finds the address of the default-route interface.
// Variable for mocking in tests.
var discoverInterface = gateway.DiscoverInterface

// Get returns the preferred outbound IPv4 address. The primary method is a
// connected UDP socket, which asks the kernel for its source selection
// without any traffic. If the host has no default route for that to resolve
// against, the address of the default-route interface is reported instead.
func Get() (netip.Addr, error) {
	addr, err := fromUDP()
	if err == nil {
		return addr, nil
	}
	slog.Debug("UDP source probe failed, falling back to interface discovery", "error", err)

	ip, derr := discoverInterface()
	if derr != nil {
		return netip.Addr{}, fmt.Errorf("no usable local address: %w", derr)
	}
	addr, ok := netip.AddrFromSlice(ip)
	if !ok {
		return netip.Addr{}, fmt.Errorf("unparseable interface address %v", ip)
	}
	return addr.Unmap(), nil
}

func fromUDP() (netip.Addr, error) {
	conn, err := dialUDP("udp4", probeAddr)
	if err != nil {
		return netip.Addr{}, err
	}
	defer conn.Close()

	udpAddr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return netip.Addr{}, fmt.Errorf("unexpected local address type %T", conn.LocalAddr())
	}
	addr, ok := netip.AddrFromSlice(udpAddr.IP)
	if !ok {
		return netip.Addr{}, fmt.Errorf("unparseable local address %v", udpAddr.IP)
	}
	return addr.Unmap(), nil
}
