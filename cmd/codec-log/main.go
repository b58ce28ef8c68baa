// Command codec-log views and analyzes codec event trace files.
//
// Trace files are written by codec-sim with the -event-log flag: one CBOR
// record per feedback change, usage edge or isolated failure.
//
// Usage:
//
//	codec-log <command> [flags] <file.clog>
//
// Commands:
//
//	view     View trace in human-readable format
//	export   Export trace to JSONL or CSV format
//	filter   Filter trace and write to new file
//	stats    Show statistics and usage sessions
//
// Examples:
//
//	# View all events
//	codec-log view room-101.clog
//
//	# View only changes of the inCall feedback
//	codec-log view -feedback inCall room-101.clog
//
//	# Export to CSV
//	codec-log export -format csv -o room-101.csv room-101.clog
//
//	# Keep one usage session
//	codec-log filter -session 6f1c... -o call.clog room-101.clog
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/roomkit/codec-go/cmd/codec-log/commands"
)

const usage = `codec-log - Codec Event Trace Analyzer

Usage:
  codec-log <command> [flags] <file.clog>

Commands:
  view     View trace in human-readable format
  export   Export trace to JSONL or CSV format
  filter   Filter trace and write to new file
  stats    Show statistics and usage sessions

Use "codec-log <command> -help" for more information about a command.
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

// pathArg parses args and returns the single positional trace path.
func pathArg(fs *flag.FlagSet, args []string) string {
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func runView(args []string) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `codec-log view - View trace in human-readable format

Usage:
  codec-log view [flags] <file.clog>

Flags:
`)
		fs.PrintDefaults()
	}

	var opts commands.FilterOptions
	fs.StringVar(&opts.Category, "category", "", "Filter by category (feedback, usage, error)")
	fs.StringVar(&opts.DeviceKey, "device", "", "Filter by device key")
	fs.StringVar(&opts.FeedbackKey, "feedback", "", "Filter by feedback key")
	fs.StringVar(&opts.SessionID, "session", "", "Filter by usage session ID")

	path := pathArg(fs, args)

	filter, err := commands.BuildFilter(opts)
	if err != nil {
		fail(err)
	}
	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fail(err)
	}
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `codec-log export - Export trace to JSONL or CSV format

Usage:
  codec-log export [flags] <file.clog>

Flags:
`)
		fs.PrintDefaults()
	}

	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")

	path := pathArg(fs, args)

	if err := commands.RunExport(path, *format, *output); err != nil {
		fail(err)
	}
}

func runFilter(args []string) {
	fs := flag.NewFlagSet("filter", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `codec-log filter - Filter trace and write to new file

Usage:
  codec-log filter [flags] <file.clog>

Flags:
`)
		fs.PrintDefaults()
	}

	var opts commands.FilterOptions
	fs.StringVar(&opts.Output, "o", "", "Output file (required)")
	fs.StringVar(&opts.Category, "category", "", "Filter by category (feedback, usage, error)")
	fs.StringVar(&opts.DeviceKey, "device", "", "Filter by device key")
	fs.StringVar(&opts.FeedbackKey, "feedback", "", "Filter by feedback key")
	fs.StringVar(&opts.SessionID, "session", "", "Filter by usage session ID")
	fs.StringVar(&opts.TimeStart, "time-start", "", "Filter by start time (RFC3339)")
	fs.StringVar(&opts.TimeEnd, "time-end", "", "Filter by end time (RFC3339)")

	path := pathArg(fs, args)

	if opts.Output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}

	n, err := commands.RunFilter(path, opts)
	if err != nil {
		fail(err)
	}
	fmt.Printf("Filtered %d events to %s\n", n, opts.Output)
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `codec-log stats - Show statistics and usage sessions

Usage:
  codec-log stats <file.clog>

`)
	}

	path := pathArg(fs, args)

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fail(err)
	}
}
