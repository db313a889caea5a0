package inspect

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"runtime"
	"testing"

	"github.com/guangyu-he/ls-net/pkg/iface"
	"github.com/guangyu-he/ls-net/pkg/route"
	"github.com/guangyu-he/ls-net/pkg/routetable"

	"github.com/guangyu-he/ls-net/internal/config"
)

// fakeSource is a route table source with canned results.
type fakeSource struct {
	name     string
	table    *routetable.Table
	routeErr error
	dump     string
	dumpErr  error

	dumpCalls int
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Routes() (*routetable.Table, error) { return f.table, f.routeErr }

func (f *fakeSource) Dump() (string, error) {
	f.dumpCalls++
	return f.dump, f.dumpErr
}

// stubHost replaces the host probes for the duration of a test. The outbound
// route and OS gateway probes fail by default; tests that need them swap in
// their own.
func stubHost(t *testing.T, mainIP netip.Addr, mainIPErr error, records []iface.Record, recordsErr error) {
	t.Helper()
	origIP := getMainIP
	origRoute := getOutboundRoute
	origIfaces := listInterfaces
	origGateway := discoverGateway
	origMAC := lookupMAC
	origIfaceByName := interfaceByName
	getMainIP = func() (netip.Addr, error) { return mainIP, mainIPErr }
	getOutboundRoute = func(netip.Addr) (route.Route, error) { return route.Route{}, errors.New("no outbound route") }
	listInterfaces = func() ([]iface.Record, error) { return records, recordsErr }
	discoverGateway = func() (net.IP, error) { return nil, errors.New("no os gateway") }
	lookupMAC = func(netip.Addr, *net.Interface) (net.HardwareAddr, error) {
		return nil, errors.New("no neighbour entry found")
	}
	interfaceByName = func(string) (*net.Interface, error) { return nil, errors.New("no such interface") }
	t.Cleanup(func() {
		getMainIP = origIP
		getOutboundRoute = origRoute
		listInterfaces = origIfaces
		discoverGateway = origGateway
		lookupMAC = origMAC
		interfaceByName = origIfaceByName
	})
}

func routingTable(entries ...routetable.Entry) *routetable.Table {
	table := routetable.New()
	for _, e := range entries {
		table.AddRoute(e)
	}
	return table
}

func TestInspector_Run(t *testing.T) {
	stubHost(t, netip.MustParseAddr("192.168.1.23"), nil, []iface.Record{
		{Name: "eth0", IP: netip.MustParseAddr("192.168.1.23"), Netmask: "255.255.255.0"},
	}, nil)
	origRoute := getOutboundRoute
	getOutboundRoute = func(dst netip.Addr) (route.Route, error) {
		return route.Route{
			Destination: dst,
			Gateway:     netip.MustParseAddr("192.168.1.1"),
			Source:      netip.MustParseAddr("192.168.1.23"),
		}, nil
	}
	defer func() { getOutboundRoute = origRoute }()

	src := &fakeSource{name: "netstat-linux", table: routingTable(
		routetable.Entry{Destination: "0.0.0.0", Gateway: "192.168.1.1", Flags: "UG", Iface: "eth0", IPVersion: routetable.IPv4},
		routetable.Entry{Destination: "::/0", Gateway: "fe80::1", Flags: "UGc", Iface: "eth0", IPVersion: routetable.IPv6},
	)}

	ins := NewInspector(config.Args{Protocol: "all"}, src)
	defer ins.Close()
	var lookups []string
	ins.lookupName = func(ip string) string {
		lookups = append(lookups, ip)
		if ip == "192.168.1.1" {
			return "gateway.lan"
		}
		return ""
	}
	interfaceByName = func(name string) (*net.Interface, error) {
		return &net.Interface{Index: 2, Name: name}, nil
	}
	var macLookups []string
	lookupMAC = func(ip netip.Addr, ifi *net.Interface) (net.HardwareAddr, error) {
		if ifi == nil || ifi.Name != "eth0" {
			t.Errorf("lookupMAC got iface %v, want eth0", ifi)
		}
		macLookups = append(macLookups, ip.String())
		if ip == netip.MustParseAddr("192.168.1.1") {
			return net.HardwareAddr{0xf4, 0x5c, 0x89, 0xaa, 0xbb, 0xcc}, nil
		}
		return nil, errors.New("no neighbour entry found")
	}

	s := ins.Run()

	if s.Timestamp.IsZero() {
		t.Error("Run() Timestamp is zero")
	}
	if s.MainIP != "192.168.1.23" {
		t.Errorf("Run() MainIP = %q, want %q", s.MainIP, "192.168.1.23")
	}
	if s.MainIPError != "" {
		t.Errorf("Run() MainIPError = %q, want empty", s.MainIPError)
	}
	if want := "8.8.8.8 via 192.168.1.1 src 192.168.1.23"; s.OutboundRoute != want {
		t.Errorf("Run() OutboundRoute = %q, want %q", s.OutboundRoute, want)
	}
	if len(s.Interfaces) != 1 || s.Interfaces[0].Name != "eth0" {
		t.Errorf("Run() Interfaces = %v, want one eth0 record", s.Interfaces)
	}
	if s.Routes == nil {
		t.Fatal("Run() Routes is nil")
	}
	if len(s.Routes.IPv4Routes) != 1 || len(s.Routes.IPv6Routes) != 1 {
		t.Errorf("Run() route counts = %d/%d, want 1/1",
			len(s.Routes.IPv4Routes), len(s.Routes.IPv6Routes))
	}
	if len(lookups) != 2 {
		t.Errorf("Run() looked up %d gateways, want 2", len(lookups))
	}
	if got := s.GatewayNames["192.168.1.1"]; got != "gateway.lan" {
		t.Errorf("Run() GatewayNames[192.168.1.1] = %q, want %q", got, "gateway.lan")
	}
	if _, ok := s.GatewayNames["fe80::1"]; ok {
		t.Error("Run() stored a name for the unresolved IPv6 gateway")
	}
	if len(macLookups) != 2 {
		t.Errorf("Run() looked up %d MACs, want 2", len(macLookups))
	}
	if got := s.GatewayMACs["192.168.1.1"]; got != "f4:5c:89:aa:bb:cc" {
		t.Errorf("Run() GatewayMACs[192.168.1.1] = %q, want %q", got, "f4:5c:89:aa:bb:cc")
	}
	if _, ok := s.GatewayMACs["fe80::1"]; ok {
		t.Error("Run() stored a MAC for the gateway with no neighbour entry")
	}
}

func TestInspector_Run_SectionsDegrade(t *testing.T) {
	stubHost(t, netip.Addr{}, errors.New("no private address found"),
		nil, errors.New("listing interfaces: permission denied"))
	src := &fakeSource{name: "netstat-linux", routeErr: errors.New("netstat -rn: exit status 1")}

	ins := NewInspector(config.Args{Protocol: "ipv4"}, src)
	defer ins.Close()

	s := ins.Run()

	if s.MainIP != "" {
		t.Errorf("Run() MainIP = %q, want empty", s.MainIP)
	}
	if s.MainIPError != "no private address found" {
		t.Errorf("Run() MainIPError = %q, want %q", s.MainIPError, "no private address found")
	}
	if s.OutboundRoute != "" {
		t.Errorf("Run() OutboundRoute = %q, want empty", s.OutboundRoute)
	}
	if s.InterfacesError != "listing interfaces: permission denied" {
		t.Errorf("Run() InterfacesError = %q, want the listing error", s.InterfacesError)
	}
	if s.Routes != nil {
		t.Errorf("Run() Routes = %v, want nil", s.Routes)
	}
	if s.RoutesError != "netstat -rn: exit status 1" {
		t.Errorf("Run() RoutesError = %q, want the netstat error", s.RoutesError)
	}
	if s.GatewayNames != nil {
		t.Errorf("Run() GatewayNames = %v, want nil", s.GatewayNames)
	}
}

func TestInspector_Run_RawDumpFallback(t *testing.T) {
	stubHost(t, netip.MustParseAddr("10.0.0.2"), nil, nil, nil)
	src := &fakeSource{
		name:     "route-print",
		routeErr: routetable.ErrParseNotImplemented,
		dump:     "IPv4 Route Table\n===========================\n",
	}

	ins := NewInspector(config.Args{Protocol: "ipv4"}, src)
	defer ins.Close()

	s := ins.Run()

	if s.RawRouteDump != src.dump {
		t.Errorf("Run() RawRouteDump = %q, want %q", s.RawRouteDump, src.dump)
	}
	if s.Routes != nil {
		t.Errorf("Run() Routes = %v, want nil", s.Routes)
	}
	if s.RoutesError != "" {
		t.Errorf("Run() RoutesError = %q, want empty", s.RoutesError)
	}
	if src.dumpCalls != 1 {
		t.Errorf("Run() called Dump() %d times, want 1", src.dumpCalls)
	}
}

func TestInspector_Run_RawDumpFailure(t *testing.T) {
	stubHost(t, netip.MustParseAddr("10.0.0.2"), nil, nil, nil)
	src := &fakeSource{
		name:     "route-print",
		routeErr: routetable.ErrParseNotImplemented,
		dumpErr:  errors.New("route print: exit status 1"),
	}

	ins := NewInspector(config.Args{Protocol: "ipv4"}, src)
	defer ins.Close()

	s := ins.Run()

	if s.RawRouteDump != "" {
		t.Errorf("Run() RawRouteDump = %q, want empty", s.RawRouteDump)
	}
	if s.RoutesError != "route print: exit status 1" {
		t.Errorf("Run() RoutesError = %q, want the dump error", s.RoutesError)
	}
}

func TestInspector_Run_NoSource(t *testing.T) {
	stubHost(t, netip.MustParseAddr("10.0.0.2"), nil, nil, nil)

	ins := NewInspector(config.Args{Protocol: "ipv4"}, nil)
	defer ins.Close()

	s := ins.Run()

	if want := fmt.Sprintf("no route table source for %s", runtime.GOOS); s.RoutesError != want {
		t.Errorf("Run() RoutesError = %q, want %q", s.RoutesError, want)
	}
	if s.MainIP != "10.0.0.2" {
		t.Errorf("Run() MainIP = %q, want %q", s.MainIP, "10.0.0.2")
	}
}

func TestInspector_Run_NoResolve(t *testing.T) {
	stubHost(t, netip.MustParseAddr("10.0.0.2"), nil, nil, nil)
	src := &fakeSource{name: "netstat-linux", table: routingTable(
		routetable.Entry{Destination: "default", Gateway: "10.0.0.1", Flags: "UG", Iface: "eth0", IPVersion: routetable.IPv4},
	)}

	ins := NewInspector(config.Args{Protocol: "ipv4", NoResolve: true}, src)
	defer ins.Close()
	called := false
	ins.lookupName = func(string) string {
		called = true
		return "gateway.lan"
	}
	lookupMAC = func(netip.Addr, *net.Interface) (net.HardwareAddr, error) {
		return net.HardwareAddr{0xaa, 0xbb, 0xcc, 0x00, 0x11, 0x22}, nil
	}

	s := ins.Run()

	if called {
		t.Error("Run() resolved gateway names with resolution disabled")
	}
	if s.GatewayNames != nil {
		t.Errorf("Run() GatewayNames = %v, want nil", s.GatewayNames)
	}
	// --no-resolve disables reverse DNS only, not the local neighbour read.
	if got := s.GatewayMACs["10.0.0.1"]; got != "aa:bb:cc:00:11:22" {
		t.Errorf("Run() GatewayMACs[10.0.0.1] = %q, want %q", got, "aa:bb:cc:00:11:22")
	}
}

func TestInspector_Run_GatewayMACSkipsNonIP(t *testing.T) {
	stubHost(t, netip.MustParseAddr("10.0.0.2"), nil, nil, nil)
	src := &fakeSource{name: "netstat-bsd", table: routingTable(
		routetable.Entry{Destination: "default", Gateway: "link#11", Flags: "UCS", Iface: "en0", IPVersion: routetable.IPv4},
	)}

	ins := NewInspector(config.Args{Protocol: "ipv4", NoResolve: true}, src)
	defer ins.Close()
	called := false
	lookupMAC = func(netip.Addr, *net.Interface) (net.HardwareAddr, error) {
		called = true
		return nil, errors.New("unreachable")
	}

	s := ins.Run()

	if called {
		t.Error("Run() looked up a neighbour entry for a non-IP gateway")
	}
	if s.GatewayMACs != nil {
		t.Errorf("Run() GatewayMACs = %v, want nil", s.GatewayMACs)
	}
}
