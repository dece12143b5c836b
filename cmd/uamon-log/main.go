// Command uamon-log is a tool for viewing and analyzing protocol log files.
//
// Log files are created by the protocol logging infrastructure when a
// client or server facade is configured with a file logger, or when
// uamon-server runs with the -protocol-log flag.
//
// Usage:
//
//	uamon-log <command> [flags] <file.ulog>
//
// Commands:
//
//	view     Print events as human-readable text
//	export   Convert a capture to JSONL or CSV
//	filter   Write a matching subset into a new capture
//	stats    Summarize a capture
//
// Examples:
//
//	# View all events
//	uamon-log view server.ulog
//
//	# View only notification traffic
//	uamon-log view --category notification server.ulog
//
//	# View only outgoing stack frames
//	uamon-log view --direction out --layer stack server.ulog
//
//	# Export to JSONL
//	uamon-log export --format jsonl server.ulog
//
//	# Filter by subscription and save to new file
//	uamon-log filter --sub-id 3 -o sub3.ulog server.ulog
//
//	# Show statistics
//	uamon-log stats server.ulog
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/uamon-protocol/uamon-go/cmd/uamon-log/commands"
)

const usage = `uamon-log - Protocol Log Analyzer

Usage:
  uamon-log <command> [flags] <file.ulog>

Commands:
  view     Print events as human-readable text
  export   Convert a capture to JSONL or CSV
  filter   Write a matching subset into a new capture
  stats    Summarize a capture

Use "uamon-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func runView(args []string) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `uamon-log view - View log file in human-readable format

Usage:
  uamon-log view [flags] <file.ulog>

Flags:
`)
		fs.PrintDefaults()
	}

	layer := fs.String("layer", "", "Filter by layer (stack, lifecycle, service)")
	direction := fs.String("direction", "", "Filter by direction (in, out)")
	category := fs.String("category", "", "Filter by category (service, notification, state, error)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}

	path := fs.Arg(0)

	// Build filter
	var filter commands.ViewFilter

	if *layer != "" {
		l, err := commands.ParseLayerFlag(*layer)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		filter.Layer = &l
	}

	if *direction != "" {
		d, err := commands.ParseDirectionFlag(*direction)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		filter.Direction = &d
	}

	if *category != "" {
		c, err := commands.ParseCategoryFlag(*category)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		filter.Category = &c
	}

	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `uamon-log export - Export log file to JSON or CSV format

Usage:
  uamon-log export [flags] <file.ulog>

Flags:
`)
		fs.PrintDefaults()
	}

	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}

	path := fs.Arg(0)

	if err := commands.RunExport(path, *format, *output); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runFilter(args []string) {
	fs := flag.NewFlagSet("filter", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `uamon-log filter - Filter log file and write to new file

Usage:
  uamon-log filter [flags] <file.ulog>

Flags:
`)
		fs.PrintDefaults()
	}

	output := fs.String("o", "", "Output file (required)")
	connID := fs.String("conn-id", "", "Filter by connection ID")
	appURI := fs.String("app-uri", "", "Filter by application URI")
	subID := fs.Uint("sub-id", 0, "Filter by subscription ID")
	timeStart := fs.String("time-start", "", "Filter by start time (RFC3339)")
	timeEnd := fs.String("time-end", "", "Filter by end time (RFC3339)")
	layer := fs.String("layer", "", "Filter by layer (stack, lifecycle, service)")
	direction := fs.String("direction", "", "Filter by direction (in, out)")
	category := fs.String("category", "", "Filter by category (service, notification, state, error)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}

	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}

	path := fs.Arg(0)

	opts := commands.FilterOptions{
		Output:         *output,
		ConnID:         *connID,
		ApplicationURI: *appURI,
		SubscriptionID: uint32(*subID),
		TimeStart:      *timeStart,
		TimeEnd:        *timeEnd,
		Layer:          *layer,
		Direction:      *direction,
		Category:       *category,
	}

	if err := commands.RunFilter(path, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `uamon-log stats - Show statistics about the log file

Usage:
  uamon-log stats <file.ulog>

`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}

	path := fs.Arg(0)

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
