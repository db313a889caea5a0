//go:build !linux && !darwin && !dragonfly && !freebsd && !netbsd && !openbsd

package route

import (
	"fmt"
	"net/netip"
	"runtime"
)

func get(ip netip.Addr) (Route, error) {
	return Route{}, fmt.Errorf("native route lookup not supported on %s", runtime.GOOS)
}
