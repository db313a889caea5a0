package routetable

// IPVersion tags a route entry with the address family it was reported under.
type IPVersion string

const (
	IPv4 IPVersion = "ipv4"
	IPv6 IPVersion = "ipv6"
)

// Entry is one normalized row of the kernel routing table, independent of
// which platform's command output it came from.
type Entry struct {
	Destination string    `json:"destination"`
	Gateway     string    `json:"gateway"`
	Flags       string    `json:"flags"`
	Iface       string    `json:"iface"`
	IPVersion   IPVersion `json:"ip_version"`

	// Genmask is only populated from Linux-style output (netmask column).
	Genmask string `json:"genmask,omitempty"`
	// Expire is only populated from BSD-style output (route expiry column).
	Expire string `json:"expire,omitempty"`
}

// Field returns the named attribute of the entry. The second return value is
// false for unknown names and for optional fields that are unset, which lets
// formatting code compute column widths without per-field logic.
func (e Entry) Field(name string) (string, bool) {
	switch name {
	case "destination":
		return e.Destination, true
	case "gateway":
		return e.Gateway, true
	case "flags":
		return e.Flags, true
	case "iface":
		return e.Iface, true
	case "genmask":
		return e.Genmask, e.Genmask != ""
	case "expire":
		return e.Expire, e.Expire != ""
	}
	return "", false
}

// Table holds route entries partitioned by IP version. Entries keep the order
// they were parsed in; nothing is deduplicated or sorted.
type Table struct {
	IPv4Routes []Entry `json:"ipv4_routes"`
	IPv6Routes []Entry `json:"ipv6_routes"`
}

// New returns an empty route table.
func New() *Table {
	return &Table{}
}

// AddRoute appends the entry to the sequence matching its IP version.
func (t *Table) AddRoute(e Entry) {
	if e.IPVersion == IPv6 {
		t.IPv6Routes = append(t.IPv6Routes, e)
		return
	}
	t.IPv4Routes = append(t.IPv4Routes, e)
}

// Routes returns the entries for one IP version.
func (t *Table) Routes(version IPVersion) []Entry {
	if version == IPv6 {
		return t.IPv6Routes
	}
	return t.IPv4Routes
}

// DefaultGateway returns the first entry (in parse order) for the given IP
// version whose destination names the default route, or false if there is
// none. Systems with multiple default routes surface only the first one.
func (t *Table) DefaultGateway(version IPVersion) (Entry, bool) {
	for _, e := range t.Routes(version) {
		switch e.Destination {
		case "default", "0.0.0.0", "::/0":
			return e, true
		}
	}
	return Entry{}, false
}
