package shared

import (
	"time"

	"github.com/guangyu-he/ls-net/pkg/iface"
	"github.com/guangyu-he/ls-net/pkg/routetable"
)

// Snapshot is everything one inspection run learned about the host. Output
// implementations render it without gathering anything themselves. Each
// section degrades independently: a failed section carries its error string
// and an empty value, and the rest of the report still renders.
type Snapshot struct {
	Timestamp time.Time `json:"timestamp"`

	MainIP      string `json:"main_ip,omitempty"`
	MainIPError string `json:"main_ip_error,omitempty"`

	// OutboundRoute is the kernel's route to the public probe address, in
	// `ip route get` shape. Best effort, empty when the lookup fails.
	OutboundRoute string `json:"outbound_route,omitempty"`

	Interfaces      []iface.Record `json:"interfaces,omitempty"`
	InterfacesError string         `json:"interfaces_error,omitempty"`

	Routes *routetable.Table `json:"routes,omitempty"`
	// RawRouteDump carries the unparsed route listing on platforms where
	// only a verbatim dump is available.
	RawRouteDump string `json:"raw_route_dump,omitempty"`
	RoutesError  string `json:"routes_error,omitempty"`

	// GatewayNames maps default-gateway addresses to their PTR names.
	// Empty when resolution is disabled or nothing resolved.
	GatewayNames map[string]string `json:"gateway_names,omitempty"`

	// GatewayMACs maps default-gateway addresses to the link-layer address
	// the kernel's neighbour table holds for them. Best effort.
	GatewayMACs map[string]string `json:"gateway_macs,omitempty"`
}

// Gateway is the resolved default-gateway view for one IP version.
type Gateway struct {
	Version  routetable.IPVersion
	Entry    routetable.Entry
	Hostname string
	MAC      string
}

// DefaultGateway returns the default route for one IP version together with
// its resolved hostname, when the snapshot carries one.
func (s *Snapshot) DefaultGateway(version routetable.IPVersion) (Gateway, bool) {
	if s.Routes == nil {
		return Gateway{}, false
	}
	entry, ok := s.Routes.DefaultGateway(version)
	if !ok {
		return Gateway{}, false
	}
	return Gateway{
		Version:  version,
		Entry:    entry,
		Hostname: s.GatewayNames[entry.Gateway],
		MAC:      s.GatewayMACs[entry.Gateway],
	}, true
}
