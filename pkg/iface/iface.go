// Package iface enumerates the host's network interfaces as flat
// interface/address records, one per bound address.
package iface

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/netip"
	"sort"
)

// Record is one address bound to one interface, the unit the listing
// displays. An interface with three addresses produces three records.
type Record struct {
	Name    string     `json:"name"`
	IP      netip.Addr `json:"ip"`
	Netmask string     `json:"netmask,omitempty"`
}

// IsIPv4 reports whether the record's address is IPv4.
func (r Record) IsIPv4() bool { return r.IP.Is4() }

// systemInterfaces and interfaceAddrs wrap the interface syscalls.
// Variables for mocking in tests.
var systemInterfaces = func() ([]net.Interface, error) {
	return net.Interfaces()
}

var interfaceAddrs = func(ifi *net.Interface) ([]net.Addr, error) {
	return ifi.Addrs()
}

// List returns every interface address on the host, sorted by interface
// name. Interfaces whose addresses cannot be read are skipped rather than
// failing the whole listing. An empty result is an error, since a host
// always has at least a loopback address when enumeration works.
func List() ([]Record, error) {
	ifaces, err := systemInterfaces()
	if err != nil {
		return nil, fmt.Errorf("listing interfaces: %w", err)
	}

	var records []Record
	for i := range ifaces {
		addrs, err := interfaceAddrs(&ifaces[i])
		if err != nil {
			slog.Debug("Skipping interface with unreadable addresses", "interface", ifaces[i].Name, "error", err)
			continue
		}
		for _, a := range addrs {
			ipNet, ok := a.(*net.IPNet)
			if !ok {
				continue
			}
			ip, ok := netip.AddrFromSlice(ipNet.IP)
			if !ok {
				continue
			}
			records = append(records, Record{
				Name:    ifaces[i].Name,
				IP:      ip.Unmap(),
				Netmask: net.IP(ipNet.Mask).String(),
			})
		}
	}

	if len(records) == 0 {
		return nil, errors.New("no network interfaces found")
	}

	sort.SliceStable(records, func(i, j int) bool { return records[i].Name < records[j].Name })
	return records, nil
}
