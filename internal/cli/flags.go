package cli

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to YAML config file" default:""`
	Verbose bool   `long:"verbose" description:"Log at debug level"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// ReportCommand ingests all feeds and writes every artifact.
type ReportCommand struct {
	OutputDir string `long:"output-dir" description:"Override the output directory"`
	Boundary  string `long:"boundary" description:"Override the boundary GeoJSON path"`

	globals *GlobalFlags
	version string
}

// IngestCommand prints one feed's normalized strikes as JSON lines.
type IngestCommand struct {
	Source string `long:"source" description:"Feed URL or path (defaults to the configured feed for --year)"`
	Year   int    `long:"year" description:"Configured feed year to ingest"`

	globals *GlobalFlags
}

// ValidateCommand reports per-feed row accounting.
type ValidateCommand struct {
	Year   int  `long:"year" description:"Only validate this year"`
	Strict bool `long:"strict" description:"Fail when any feed has malformed rows or keeps nothing"`

	globals *GlobalFlags
}

// GenfeedCommand writes a synthetic feed.
type GenfeedCommand struct {
	Out       string  `long:"out" description:"Output path, - for stdout" default:"-"`
	Year      int     `long:"year" description:"Feed year (defaults to the current year)"`
	Rows      int     `long:"rows" description:"Number of data rows" default:"1000"`
	Seed      uint64  `long:"seed" description:"Random seed" default:"1"`
	Margin    float64 `long:"margin" description:"Degrees added around the region" default:"0.5"`
	Malformed int     `long:"malformed-every" description:"Corrupt every n-th row, 0 for none" default:"0"`

	globals *GlobalFlags
}
