package routetable

import "strings"

// darwinSection identifies which protocol block of BSD-style netstat output
// the parser is inside.
type darwinSection int

const (
	sectionNone darwinSection = iota
	sectionInet
	sectionInet6
)

// darwinState is the parser position: the active section plus whether that
// section's column header has been seen. A section switch resets headerSeen.
type darwinState struct {
	section    darwinSection
	headerSeen bool
}

// nextDarwinLine advances the parser by one line and returns the entry that
// line produced, if any. Section markers and the per-section header line
// switch state without producing entries; lines outside a section, or inside
// a section before its header, are ignored.
func nextDarwinLine(state darwinState, line string) (darwinState, *Entry) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return state, nil
	}

	switch {
	case strings.HasPrefix(trimmed, "Internet:"):
		return darwinState{section: sectionInet}, nil
	case strings.HasPrefix(trimmed, "Internet6:"):
		return darwinState{section: sectionInet6}, nil
	}

	if state.section == sectionNone {
		return state, nil
	}

	if !state.headerSeen {
		if strings.HasPrefix(trimmed, "Destination") {
			state.headerSeen = true
		}
		return state, nil
	}

	version := IPv4
	if state.section == sectionInet6 {
		version = IPv6
	}
	if entry, ok := parseDarwinRow(trimmed, version); ok {
		return state, &entry
	}
	return state, nil
}

// parseDarwinRow splits one table row into an Entry.
// Column layout: destination, gateway, flags, iface, with a trailing expiry
// column that only some rows carry. The last token is taken as the expiry
// only when it is numeric (or the "Expire" header literal); otherwise it is
// some other trailing column and the expiry stays unset.
func parseDarwinRow(line string, version IPVersion) (Entry, bool) {
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return Entry{}, false
	}
	entry := Entry{
		Destination: fields[0],
		Gateway:     fields[1],
		Flags:       fields[2],
		Iface:       fields[3],
		IPVersion:   version,
	}
	if last := fields[len(fields)-1]; last == "Expire" || isASCIIDigits(last) {
		entry.Expire = last
	}
	return entry, true
}

// isASCIIDigits reports whether s is non-empty and contains only 0-9.
func isASCIIDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ParseDarwin parses `netstat -rn` output as printed on macOS and the BSDs,
// where IPv4 and IPv6 routes arrive in separate "Internet:" and "Internet6:"
// sections of a single run. Entries are tagged with the section they appear
// in. Rows with too few columns are skipped, same policy as ParseLinux.
func ParseDarwin(output string) *Table {
	table := New()
	var state darwinState
	for _, line := range strings.Split(output, "\n") {
		var entry *Entry
		state, entry = nextDarwinLine(state, line)
		if entry != nil {
			table.AddRoute(*entry)
		}
	}
	return table
}
