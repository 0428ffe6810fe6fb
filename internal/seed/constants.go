package seed

import "time"

// Defaults for a seeding run.
const (
	DefaultBaseURL   = "http://localhost:9080"
	DefaultNumEvents = 200
	DefaultNumSpans  = 20
	DefaultStartYear = 2000
	DefaultEndYear   = 2020
	DefaultRetries   = 5
	DefaultTimeout   = 10 * time.Second
)

// Submitter configuration constants.
const (
	WorkerChannelMultiplier = 2
	retryBackoff            = 50 * time.Millisecond
	maxSpanLayers           = 3
	outputFilePermission    = 0o600
)
