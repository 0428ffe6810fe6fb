package seed

import (
	"os"

	"github.com/okian/timeline/pkg/logger"
)

// SetupLogging initializes the global logger, at debug level when verbose.
func SetupLogging(verbose bool) error {
	if err := logger.Init(); err != nil {
		return err
	}
	if verbose {
		return logger.SetLevelString("debug")
	}
	return nil
}

// ShowHelp prints usage information for the seed tool.
func ShowHelp() {
	os.Stdout.WriteString(`Timeline Seed Tool
==================

Generates a deterministic sample timeline, posts it to a running timeline
server with concurrent submitters, exports it back and verifies it.

Usage:
  go run ./cmd/timeline-seed [options]

Options:
  -url string        Base URL of the service (default "http://localhost:9080")
  -events int        Number of point events (default 200)
  -spans int         Number of duration spans (default 20)
  -start int         First year of generated dates (default 2000)
  -end int           Last year of generated dates (default 2020)
  -seed uint         Generator seed (default 1)
  -workers int       Concurrent submitters (default CPU cores)
  -retries int       Attempts per item on backpressure (default 5)
  -timeout duration  HTTP request timeout (default 10s)
  -reset             Replace the timeline with an empty one first
  -title string      Title used with -reset
  -snapshot          Take a snapshot after verification
  -output string     Write the exported document to this file
  -verbose           Enable debug logging
  -help              Show this help message

Examples:
  go run ./cmd/timeline-seed -reset -title "Company history"
  go run ./cmd/timeline-seed -events 5000 -workers 16 -snapshot
`)
}
