// Command dlight-log views and analyzes dLight protocol capture files.
//
// Capture files are written by dlightctl and dlight-sim when run with the
// -protocol-log flag.
//
// Usage:
//
//	dlight-log <command> [flags] <file.dlog>
//
// Commands:
//
//	view     View events in human-readable format
//	export   Export events to JSONL or CSV
//	filter   Write matching events to a new capture file
//	stats    Show command, latency and error statistics
//
// Examples:
//
//	# Everything one command did
//	dlight-log view -command-id hass-42 session.dlog
//
//	# Errors for one device
//	dlight-log view -device-id dl-0001 -category error session.dlog
//
//	# Latency per command type
//	dlight-log stats session.dlog
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dlight-protocol/dlight-go/cmd/dlight-log/commands"
	"github.com/dlight-protocol/dlight-go/pkg/log"
)

const usage = `dlight-log - dLight Protocol Log Analyzer

Usage:
  dlight-log <command> [flags] <file.dlog>

Commands:
  view     View events in human-readable format
  export   Export events to JSONL or CSV
  filter   Write matching events to a new capture file
  stats    Show command, latency and error statistics

Use "dlight-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "view":
		err = runView(args)
	case "export":
		err = runExport(args)
	case "filter":
		err = runFilter(args)
	case "stats":
		err = runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newFlagSet creates a flag set carrying the shared filter flags.
func newFlagSet(name, summary string, opts *commands.FilterOptions) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "dlight-log %s - %s\n\nUsage:\n  dlight-log %s [flags] <file%s>\n\nFlags:\n",
			name, summary, name, log.FileExtension)
		fs.PrintDefaults()
	}

	fs.StringVar(&opts.ConnID, "conn-id", "", "Filter by connection ID")
	fs.StringVar(&opts.DeviceID, "device-id", "", "Filter by device ID")
	fs.StringVar(&opts.CommandID, "command-id", "", "Filter by command ID")
	fs.StringVar(&opts.TimeStart, "time-start", "", "Filter by start time (RFC3339)")
	fs.StringVar(&opts.TimeEnd, "time-end", "", "Filter by end time (RFC3339)")
	fs.StringVar(&opts.Layer, "layer", "", "Filter by layer (transport, wire, client)")
	fs.StringVar(&opts.Direction, "direction", "", "Filter by direction (in, out)")
	fs.StringVar(&opts.Category, "category", "", "Filter by category (message, state, error)")
	return fs
}

// parse parses args and returns the input path and filter.
func parse(fs *flag.FlagSet, args []string, opts *commands.FilterOptions) (string, log.Filter, error) {
	if err := fs.Parse(args); err != nil {
		return "", log.Filter{}, err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return "", log.Filter{}, fmt.Errorf("log file path required")
	}
	filter, err := opts.Build()
	return fs.Arg(0), filter, err
}

func runView(args []string) error {
	var opts commands.FilterOptions
	fs := newFlagSet("view", "View events in human-readable format", &opts)

	path, filter, err := parse(fs, args, &opts)
	if err != nil {
		return err
	}
	return commands.RunView(path, filter, os.Stdout)
}

func runExport(args []string) error {
	var opts commands.FilterOptions
	fs := newFlagSet("export", "Export events to JSONL or CSV", &opts)
	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")

	path, filter, err := parse(fs, args, &opts)
	if err != nil {
		return err
	}
	return commands.RunExport(path, *format, *output, filter)
}

func runFilter(args []string) error {
	var opts commands.FilterOptions
	fs := newFlagSet("filter", "Write matching events to a new capture file", &opts)
	output := fs.String("o", "", "Output file (required)")

	path, filter, err := parse(fs, args, &opts)
	if err != nil {
		return err
	}
	if *output == "" {
		fs.Usage()
		return fmt.Errorf("output file (-o) required")
	}
	return commands.RunFilter(path, *output, filter, os.Stdout)
}

func runStats(args []string) error {
	var opts commands.FilterOptions
	fs := newFlagSet("stats", "Show command, latency and error statistics", &opts)

	path, filter, err := parse(fs, args, &opts)
	if err != nil {
		return err
	}
	return commands.RunStats(path, filter, os.Stdout)
}
