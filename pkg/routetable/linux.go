package routetable

import "strings"

// linuxState tracks progress through Linux `netstat -rn` output, which prints
// a banner line, then a column header, then one route per line.
type linuxState int

const (
	linuxAwaitingHeader linuxState = iota
	linuxInTable
)

// nextLinuxLine advances the parser by one line and returns the entry that
// line produced, if any. The header line switches state without producing an
// entry; lines before it are ignored.
func nextLinuxLine(state linuxState, line string) (linuxState, *Entry) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return state, nil
	}

	if state == linuxAwaitingHeader {
		if strings.HasPrefix(trimmed, "Destination") {
			return linuxInTable, nil
		}
		return linuxAwaitingHeader, nil
	}

	if entry, ok := parseLinuxRow(trimmed); ok {
		return linuxInTable, &entry
	}
	return linuxInTable, nil
}

// parseLinuxRow splits one table row into an Entry.
// Column layout: destination, gateway, genmask, flags, ..., iface last.
// Columns between flags and iface (MSS, Window, irtt) are ignored.
func parseLinuxRow(line string) (Entry, bool) {
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return Entry{}, false
	}
	return Entry{
		Destination: fields[0],
		Gateway:     fields[1],
		Genmask:     fields[2],
		Flags:       fields[3],
		Iface:       fields[len(fields)-1],
		IPVersion:   IPv4,
	}, true
}

// ParseLinux parses `netstat -rn` output as printed on Linux. The format only
// carries IPv4 routes, so every entry is tagged IPv4. Rows with too few
// columns are skipped rather than treated as errors, so unexpected netstat
// variations degrade to a shorter table instead of a failure.
func ParseLinux(output string) *Table {
	table := New()
	state := linuxAwaitingHeader
	for _, line := range strings.Split(output, "\n") {
		var entry *Entry
		state, entry = nextLinuxLine(state, line)
		if entry != nil {
			table.AddRoute(*entry)
		}
	}
	return table
}
