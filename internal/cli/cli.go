package cli

import (
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Report   *ReportCommand
	Ingest   *IngestCommand
	Validate *ValidateCommand
	Genfeed  *GenfeedCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "lightning-report"
	parser.LongDescription = "Ingest ISS LIS lightning flash exports, filter them to a region, and render maps, charts and a summary workbook."

	cmds := &commands{
		Report:   &ReportCommand{globals: &globals, version: version},
		Ingest:   &IngestCommand{globals: &globals},
		Validate: &ValidateCommand{globals: &globals},
		Genfeed:  &GenfeedCommand{globals: &globals},
	}

	parser.AddCommand("report", "Build every map, chart and the summary", "Ingest all configured feeds and write the HTML maps, PDF charts and Summary.xlsx.", cmds.Report)
	parser.AddCommand("ingest", "Print one feed as JSON lines", "Ingest a single feed and print the normalized strikes inside the region, one JSON object per line.", cmds.Ingest)
	parser.AddCommand("validate", "Report per-feed row accounting", "Ingest every configured feed and report rows read, kept, out of region and malformed by column.", cmds.Validate)
	parser.AddCommand("genfeed", "Write a synthetic feed", "Write a deterministic synthetic feed in the upstream export format.", cmds.Genfeed)

	return parser, &globals, cmds
}

// Run is the main entry point using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	// go-flags requires a subcommand, but --version is valid without one.
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("lightning-report %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				return nil
			}
		}
		return err
	}

	return nil
}
