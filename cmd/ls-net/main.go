package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/guangyu-he/ls-net/pkg/localip"
	"github.com/guangyu-he/ls-net/pkg/routetable"

	"github.com/guangyu-he/ls-net/internal/config"
	"github.com/guangyu-he/ls-net/internal/inspect"
	"github.com/guangyu-he/ls-net/internal/output"
)

func main() {
	args, err := config.ParseArgs()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Setup logging
	logFile, err := config.SetupLogging(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to setup logging: %v\n", err)
		os.Exit(1)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	// --ip prints the main address and nothing else.
	if args.OnlyIP {
		ip, err := localip.Get()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting IP address: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(ip)
		return
	}

	source, err := routetable.Detect()
	if err != nil {
		// The rest of the report still renders, with the routes
		// section carrying the error.
		slog.Warn("No route table source for this platform", "error", err)
	}

	slog.Debug("Starting inspection",
		"protocol", args.Protocol,
		"json", args.Json,
	)

	ins := inspect.NewInspector(args, source)
	defer ins.Close()
	snapshot := ins.Run()

	om := &output.OutputManager{}
	if args.Json {
		om.Register(output.NewJSONOutput(nil))
	} else {
		om.Register(output.NewTextOutput(nil, args.Versions()))
	}
	defer om.Close()

	if err := om.Render(snapshot); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to render report: %v\n", err)
		os.Exit(1)
	}

	slog.Debug("Inspection completed")
}
