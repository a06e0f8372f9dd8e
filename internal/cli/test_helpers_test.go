package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/lightning-report-etl/internal/config"
	"github.com/couchcryptid/lightning-report-etl/internal/feedgen"
)

// captureOutput captures stdout during fn execution and returns it as a string.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		done <- buf.String()
	}()

	fn()

	w.Close()
	os.Stdout = old
	return <-done
}

// fixture is a config file pointing at generated local feeds.
type fixture struct {
	configPath string
	outputDir  string
	metrics    string
	feeds      map[int]string
}

// newFixture generates one feed per year (the first year is the reference
// year) and writes a config that reads them.
func newFixture(t *testing.T, malformedEvery int, years ...int) fixture {
	t.Helper()
	dir := t.TempDir()
	region := config.DefaultConfig().Region

	fx := fixture{
		configPath: filepath.Join(dir, "config.yaml"),
		outputDir:  filepath.Join(dir, "out"),
		metrics:    filepath.Join(dir, "metrics.prom"),
		feeds:      make(map[int]string, len(years)),
	}

	var feeds strings.Builder
	for i, year := range years {
		path := filepath.Join(dir, fmt.Sprintf("lis_%d.txt", year))
		f, err := os.Create(path)
		require.NoError(t, err)
		_, err = feedgen.Generate(f, feedgen.Options{
			Year: year, Rows: 200, Seed: uint64(year), Region: region, Margin: 0.5, MalformedEvery: malformedEvery,
		})
		require.NoError(t, err)
		require.NoError(t, f.Close())
		fx.feeds[year] = path

		fmt.Fprintf(&feeds, "  - year: %d\n    source: %q\n    reference: %t\n", year, path, i == 0)
	}

	cfg := fmt.Sprintf("feeds:\n%soutput_dir: %q\nmetrics_file: %q\nlog_level: error\n", feeds.String(), fx.outputDir, fx.metrics)
	require.NoError(t, os.WriteFile(fx.configPath, []byte(cfg), 0o600))
	return fx
}
