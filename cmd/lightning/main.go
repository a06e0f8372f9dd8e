// Command lightning-report ingests ISS LIS lightning exports for a region
// and writes heat maps, charts and a summary workbook.
package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/couchcryptid/lightning-report-etl/internal/cli"
)

var version = "dev"

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env", "error", err)
	}

	if err := cli.Run(version); err != nil {
		os.Exit(1)
	}
}
