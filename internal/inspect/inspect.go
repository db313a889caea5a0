// Package inspect gathers one snapshot of the host's network state: the
// main IP address, the interface listing, and the system route table.
package inspect

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/netip"
	"runtime"
	"time"

	"github.com/jackpal/gateway"

	"github.com/guangyu-he/ls-net/pkg/iface"
	"github.com/guangyu-he/ls-net/pkg/localip"
	"github.com/guangyu-he/ls-net/pkg/neigh"
	"github.com/guangyu-he/ls-net/pkg/ptr"
	"github.com/guangyu-he/ls-net/pkg/route"
	"github.com/guangyu-he/ls-net/pkg/routetable"

	"github.com/guangyu-he/ls-net/internal/config"
	"github.com/guangyu-he/ls-net/internal/shared"
)

// outboundProbe is the public address used to discover the host's egress path.
var outboundProbe = netip.AddrFrom4([4]byte{8, 8, 8, 8})

// Swappable for tests.
var (
	getMainIP        = localip.Get
	getOutboundRoute = route.Get
	listInterfaces   = iface.List
	discoverGateway  = gateway.DiscoverGateway
	lookupMAC        = neigh.Lookup
	interfaceByName  = net.InterfaceByName
)

// Inspector collects the sections of a snapshot. Every section degrades
// independently: a failure is logged and recorded on the snapshot, and the
// remaining sections are still collected.
type Inspector struct {
	args     config.Args
	source   routetable.Source
	resolver *ptr.Resolver

	lookupName func(ip string) string
}

// NewInspector returns an inspector reading routes from src. A nil src is
// tolerated: the routes section then reports the platform as unsupported and
// the other sections still run.
func NewInspector(a config.Args, src routetable.Source) *Inspector {
	r := ptr.NewResolver()
	return &Inspector{
		args:       a,
		source:     src,
		resolver:   r,
		lookupName: r.Lookup,
	}
}

// Close releases the inspector's resolver.
func (ins *Inspector) Close() {
	ins.resolver.Stop()
}

// Run collects all sections and returns the snapshot.
func (ins *Inspector) Run() *shared.Snapshot {
	s := &shared.Snapshot{Timestamp: time.Now().UTC()}

	ins.collectMainIP(s)
	ins.collectOutboundRoute(s)
	ins.collectInterfaces(s)
	ins.collectRoutes(s)
	ins.annotateGateways(s)

	return s
}

func (ins *Inspector) collectMainIP(s *shared.Snapshot) {
	ip, err := getMainIP()
	if err != nil {
		slog.Warn("Main IP discovery failed", "error", err)
		s.MainIPError = err.Error()
		return
	}
	s.MainIP = ip.String()
}

func (ins *Inspector) collectOutboundRoute(s *shared.Snapshot) {
	r, err := getOutboundRoute(outboundProbe)
	if err != nil {
		slog.Debug("Outbound route lookup failed", "destination", outboundProbe, "error", err)
		return
	}
	s.OutboundRoute = r.String()
}

func (ins *Inspector) collectInterfaces(s *shared.Snapshot) {
	records, err := listInterfaces()
	if err != nil {
		slog.Warn("Interface listing failed", "error", err)
		s.InterfacesError = err.Error()
		return
	}
	s.Interfaces = records
}

func (ins *Inspector) collectRoutes(s *shared.Snapshot) {
	if ins.source == nil {
		s.RoutesError = fmt.Sprintf("no route table source for %s", runtime.GOOS)
		return
	}

	table, err := ins.source.Routes()
	if err == nil {
		s.Routes = table
		// Cross-check against the OS route API, visible at debug level.
		if gw, gwErr := discoverGateway(); gwErr == nil {
			slog.Debug("OS-reported default gateway", "gateway", gw.String())
		}
		return
	}

	if errors.Is(err, routetable.ErrParseNotImplemented) {
		raw, dumpErr := ins.source.Dump()
		if dumpErr != nil {
			slog.Warn("Route dump failed", "source", ins.source.Name(), "error", dumpErr)
			s.RoutesError = dumpErr.Error()
			return
		}
		s.RawRouteDump = raw
		return
	}

	slog.Warn("Route table acquisition failed", "source", ins.source.Name(), "error", err)
	s.RoutesError = err.Error()
}

// annotateGateways enriches each default gateway with its PTR name and the
// MAC address from the kernel's neighbour table. --no-resolve disables the
// DNS part only, the neighbour read is local.
func (ins *Inspector) annotateGateways(s *shared.Snapshot) {
	if s.Routes == nil {
		return
	}
	for _, version := range ins.args.Versions() {
		entry, ok := s.Routes.DefaultGateway(version)
		if !ok || entry.Gateway == "" {
			continue
		}
		ins.resolveGatewayName(s, entry.Gateway)
		ins.resolveGatewayMAC(s, entry)
	}
}

func (ins *Inspector) resolveGatewayName(s *shared.Snapshot, gw string) {
	if ins.args.NoResolve {
		return
	}
	if _, done := s.GatewayNames[gw]; done {
		return
	}
	name := ins.lookupName(gw)
	if name == "" {
		return
	}
	if s.GatewayNames == nil {
		s.GatewayNames = make(map[string]string)
	}
	s.GatewayNames[gw] = name
}

func (ins *Inspector) resolveGatewayMAC(s *shared.Snapshot, entry routetable.Entry) {
	if _, done := s.GatewayMACs[entry.Gateway]; done {
		return
	}
	// BSD tables can carry link names or MAC addresses in the gateway
	// column. Those have no neighbour entry to look up.
	ip, err := netip.ParseAddr(entry.Gateway)
	if err != nil {
		return
	}
	var ifi *net.Interface
	if entry.Iface != "" {
		ifi, _ = interfaceByName(entry.Iface)
	}
	mac, err := lookupMAC(ip, ifi)
	if err != nil {
		slog.Debug("Neighbour table lookup failed", "gateway", entry.Gateway, "error", err)
		return
	}
	if s.GatewayMACs == nil {
		s.GatewayMACs = make(map[string]string)
	}
	s.GatewayMACs[entry.Gateway] = mac.String()
}
