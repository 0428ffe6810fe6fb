package model

import "errors"

// Sentinel kinds for timeline model errors.
var (
	// ErrUserInput marks a missing or malformed required field on creation.
	ErrUserInput = errors.New("invalid user input")
	// ErrDegenerateConfig marks a viewport the coordinate mapper cannot use:
	// zoom <= 0 or an end year before the start year.
	ErrDegenerateConfig = errors.New("degenerate timeline configuration")
)
