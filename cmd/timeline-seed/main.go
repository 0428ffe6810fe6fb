package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/timeline/internal/seed"
	"github.com/okian/timeline/pkg/logger"
)

const defaultRunTimeout = 10 * time.Minute

func main() {
	var (
		baseURL    = flag.String("url", seed.DefaultBaseURL, "Base URL of the service")
		numEvents  = flag.Int("events", seed.DefaultNumEvents, "Number of point events to generate")
		numSpans   = flag.Int("spans", seed.DefaultNumSpans, "Number of duration spans to generate")
		startYear  = flag.Int("start", seed.DefaultStartYear, "First year of generated dates")
		endYear    = flag.Int("end", seed.DefaultEndYear, "Last year of generated dates")
		seedValue  = flag.Uint64("seed", 1, "Generator seed")
		workers    = flag.Int("workers", runtime.NumCPU(), "Number of concurrent submitters")
		retries    = flag.Int("retries", seed.DefaultRetries, "Attempts per item on backpressure")
		timeout    = flag.Duration("timeout", seed.DefaultTimeout, "HTTP request timeout")
		reset      = flag.Bool("reset", false, "Replace the timeline with an empty one first")
		title      = flag.String("title", "", "Title used with -reset")
		snapshot   = flag.Bool("snapshot", false, "Take a snapshot after verification")
		outputFile = flag.String("output", "", "Write the exported document to this file")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		seed.ShowHelp()
		return
	}

	if err := seed.SetupLogging(*verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultRunTimeout)
	defer cancel()

	cfg := &seed.Config{
		BaseURL:    *baseURL,
		Reset:      *reset,
		Title:      *title,
		NumEvents:  *numEvents,
		NumSpans:   *numSpans,
		StartYear:  *startYear,
		EndYear:    *endYear,
		Seed:       *seedValue,
		Workers:    *workers,
		Timeout:    *timeout,
		Retries:    *retries,
		Snapshot:   *snapshot,
		OutputFile: *outputFile,
		Verbose:    *verbose,
	}

	if _, err := seed.Run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "seed failed", logger.Error(err))
		os.Exit(1)
	}
}
