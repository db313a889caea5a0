package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/guangyu-he/ls-net/pkg/iface"
	"github.com/guangyu-he/ls-net/pkg/routetable"

	"github.com/guangyu-he/ls-net/internal/shared"
)

// Report colors: green bold for section titles, blue bold for labels and
// table headers, yellow for addresses, green for banners.
var (
	titleColor  = color.New(color.FgGreen, color.Bold)
	headerColor = color.New(color.FgBlue, color.Bold)
	valueColor  = color.New(color.FgYellow)
	bannerColor = color.New(color.FgGreen)
	errorColor  = color.New(color.FgRed)
	ifaceColor  = color.New(color.Bold)
)

const interfacesBanner = "============================================"

// routeColumn is one column of the fixed-width route table. Cells are padded
// before they are colored, so column widths hold with colors enabled. Middle
// columns carry two extra spaces of padding.
type routeColumn struct {
	field string
	label string
	pad   int
}

var routeColumns = []routeColumn{
	{field: "destination", label: "Destination"},
	{field: "gateway", label: "Gateway", pad: 2},
	{field: "flags", label: "Flags", pad: 2},
	{field: "iface", label: "Iface", pad: 2},
}

// expireColumn is appended only when at least one entry carries an expire
// value, so Linux tables are not rendered with a permanently empty column.
var expireColumn = routeColumn{field: "expire", label: "Expire"}

// TextOutput renders the snapshot as a colored fixed-width report.
type TextOutput struct {
	w        io.Writer
	versions []routetable.IPVersion
}

// NewTextOutput returns a text output writing to w, or to stdout when w is
// nil. versions selects the address families the report shows, in order.
// Colors are dropped when the writer is not a terminal.
func NewTextOutput(w io.Writer, versions []routetable.IPVersion) *TextOutput {
	if w == nil {
		w = os.Stdout
	}
	if f, ok := w.(*os.File); ok && !term.IsTerminal(int(f.Fd())) {
		color.NoColor = true
	}
	return &TextOutput{w: w, versions: versions}
}

func (t *TextOutput) Render(s *shared.Snapshot) error {
	t.renderHeader(s)
	t.renderInterfaces(s)
	fmt.Fprintln(t.w)
	t.renderRoutes(s)
	return nil
}

func (t *TextOutput) Close() error {
	return nil
}

func (t *TextOutput) renderHeader(s *shared.Snapshot) {
	fmt.Fprintln(t.w, titleColor.Sprint("Local Network Interfaces and IP Addresses"))
	if s.MainIPError != "" {
		fmt.Fprintln(t.w, errorColor.Sprintf("Error getting IP address: %s", s.MainIPError))
	} else if s.MainIP != "" {
		fmt.Fprintf(t.w, "%s %s\n", headerColor.Sprint("Main IP address:"), valueColor.Sprint(s.MainIP))
	}
	if s.OutboundRoute != "" {
		fmt.Fprintf(t.w, "%s %s\n", headerColor.Sprint("Outbound route:"), s.OutboundRoute)
	}
}

func (t *TextOutput) renderInterfaces(s *shared.Snapshot) {
	if s.InterfacesError != "" {
		fmt.Fprintln(t.w, errorColor.Sprint(interfacesBanner))
		fmt.Fprintln(t.w, errorColor.Sprintf("Failed to get network interfaces: %s", s.InterfacesError))
		fmt.Fprintln(t.w, errorColor.Sprint(interfacesBanner))
		return
	}

	// Names are padded to the longest name in the full listing, not just
	// the displayed part, so the layout is stable across filters.
	maxName := 0
	for _, r := range s.Interfaces {
		if len(r.Name) > maxName {
			maxName = len(r.Name)
		}
	}

	displayed := 0
	for _, r := range s.Interfaces {
		if !t.wants(recordVersion(r)) {
			continue
		}
		label := "IPv6"
		if r.IsIPv4() {
			label = "IPv4"
		}
		name := fmt.Sprintf("%-*s", maxName, r.Name)
		info := fmt.Sprintf("%s: %s/%s", label, r.IP, r.Netmask)
		fmt.Fprintf(t.w, "%s: %s\n", headerColor.Sprint(name), valueColor.Sprint(info))
		displayed++
	}

	fmt.Fprintln(t.w, bannerColor.Sprint(interfacesBanner))
	fmt.Fprintf(t.w, "Found %d network interfaces (displaying %d)\n", len(s.Interfaces), displayed)
}

func (t *TextOutput) renderRoutes(s *shared.Snapshot) {
	if s.RoutesError != "" {
		fmt.Fprintln(t.w, errorColor.Sprint(s.RoutesError))
		return
	}
	if s.RawRouteDump != "" {
		fmt.Fprintf(t.w, "Route table:\n%s\n", s.RawRouteDump)
		return
	}
	if s.Routes == nil {
		return
	}

	fmt.Fprintln(t.w, titleColor.Sprint("Local Network Routes Table"))
	for _, version := range t.versions {
		t.renderRouteSection(s, version)
	}
}

func (t *TextOutput) renderRouteSection(s *shared.Snapshot, version routetable.IPVersion) {
	label := versionLabel(version)

	fmt.Fprintln(t.w, bannerColor.Sprintf("================ %s Routes ================", label))
	t.renderEntries(s.Routes.Routes(version))
	fmt.Fprintln(t.w, bannerColor.Sprintf("============ %s Default Gateway ===========", label))

	gw, ok := s.DefaultGateway(version)
	if !ok {
		return
	}
	line := fmt.Sprintf("%s %s via %s",
		headerColor.Sprintf("%s Default Gateway:", label),
		valueColor.Sprint(gw.Entry.Gateway),
		ifaceColor.Sprint(gw.Entry.Iface))
	if gw.Hostname != "" {
		line += fmt.Sprintf(" (%s)", gw.Hostname)
	}
	if gw.MAC != "" {
		line += fmt.Sprintf(" at %s", gw.MAC)
	}
	fmt.Fprintln(t.w, line)
	fmt.Fprintln(t.w)
}

func (t *TextOutput) renderEntries(entries []routetable.Entry) {
	if len(entries) == 0 {
		return
	}

	columns := routeColumns
	if hasExpire(entries) {
		columns = append(append([]routeColumn{}, routeColumns...), expireColumn)
	}

	widths := make([]int, len(columns))
	for i, c := range columns {
		widths[i] = len(c.label)
		for _, e := range entries {
			if v, ok := e.Field(c.field); ok && len(v) > widths[i] {
				widths[i] = len(v)
			}
		}
		widths[i] += c.pad
	}

	cells := make([]string, len(columns))
	for i, c := range columns {
		cells[i] = headerColor.Sprint(fmt.Sprintf("%-*s", widths[i], c.label))
	}
	fmt.Fprintln(t.w, strings.Join(cells, " "))

	for _, e := range entries {
		for i, c := range columns {
			v, _ := e.Field(c.field)
			cell := fmt.Sprintf("%-*s", widths[i], v)
			if c.field == "destination" {
				cell = valueColor.Sprint(cell)
			}
			cells[i] = cell
		}
		fmt.Fprintln(t.w, strings.Join(cells, " "))
	}
}

func (t *TextOutput) wants(v routetable.IPVersion) bool {
	for _, want := range t.versions {
		if want == v {
			return true
		}
	}
	return false
}

// hasExpire reports whether at least one entry carries an expire value.
func hasExpire(entries []routetable.Entry) bool {
	for _, e := range entries {
		if e.Expire != "" {
			return true
		}
	}
	return false
}

func recordVersion(r iface.Record) routetable.IPVersion {
	if r.IsIPv4() {
		return routetable.IPv4
	}
	return routetable.IPv6
}

func versionLabel(v routetable.IPVersion) string {
	if v == routetable.IPv6 {
		return "IPv6"
	}
	return "IPv4"
}
