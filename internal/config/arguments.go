package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/guangyu-he/ls-net/internal/version"
	"github.com/guangyu-he/ls-net/pkg/routetable"
	flag "github.com/spf13/pflag"
)

type Args struct {
	Protocol  string // address family filter: all, ipv4, ipv6
	OnlyIP    bool   // print the main IP address and nothing else
	NoResolve bool

	// Output
	Json bool // machine-readable snapshot on stdout

	// Logging
	Log      string // log file path, empty means no logging
	LogLevel string // log level: debug, info, warn, error
}

func ParseArgs() (Args, error) {
	var args Args
	var showVersion bool

	// Set custom usage message
	flag.Usage = func() {
		println("ls-net - Local Network Overview")
		println()
		println("Shows the machine's main IP address, its network interfaces, and the")
		println("system routing table with default gateways.")
		println()
		println("Usage:")
		println("  ls-net [OPTIONS]")
		println()
		println("Examples:")
		println("  ls-net                     # IPv4 interfaces and routes")
		println("  ls-net -p all              # Both address families")
		println("  ls-net --ip                # Print the main IP address only")
		println("  ls-net -J                  # JSON snapshot on stdout")
		println()
		println("Options:")
		flag.PrintDefaults()
		println()
		println("Documentation: https://github.com/guangyu-he/ls-net")
		println("Report issues: https://github.com/guangyu-he/ls-net/issues")
	}

	flag.BoolVarP(&showVersion, "version", "v", false, "Show version information")
	flag.StringVarP(&args.Protocol, "protocol", "p", "ipv4", "Address family to display: all, ipv4 or ipv6")
	flag.BoolVar(&args.OnlyIP, "ip", false, "Only show the main IP address of the machine")
	flag.BoolVarP(&args.NoResolve, "no-resolve", "n", false, "Do not resolve gateway addresses to hostnames")
	flag.BoolVarP(&args.Json, "json", "J", false, "Write JSON output to stdout (disables the text report)")
	flag.StringVarP(&args.Log, "log", "l", "", "Diagnostic log file (empty = no logging)")
	flag.StringVar(&args.LogLevel, "log-level", "error", "Log level: debug, info, warn, error")
	flag.Parse()

	// Handle version flag
	if showVersion {
		fmt.Println(version.FullVersion())
		os.Exit(0)
	}

	switch {
	case flag.NArg() > 0:
		return args, fmt.Errorf("unexpected argument: %s", flag.Arg(0))
	case args.Protocol != "all" && args.Protocol != "ipv4" && args.Protocol != "ipv6":
		return args, errors.New("protocol must be one of 'all', 'ipv4' or 'ipv6'")
	}

	return args, nil
}

// Versions returns the IP versions selected by the protocol flag.
func (a Args) Versions() []routetable.IPVersion {
	switch a.Protocol {
	case "ipv6":
		return []routetable.IPVersion{routetable.IPv6}
	case "all":
		return []routetable.IPVersion{routetable.IPv4, routetable.IPv6}
	}
	return []routetable.IPVersion{routetable.IPv4}
}
