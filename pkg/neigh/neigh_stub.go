//go:build !linux && !darwin && !dragonfly && !openbsd

package neigh

import (
	"fmt"
	"net"
	"net/netip"
	"runtime"
)

func lookup(netip.Addr, *net.Interface) (net.HardwareAddr, error) {
	return nil, fmt.Errorf("neighbour table lookup not supported on %s", runtime.GOOS)
}
