package service

import "errors"

// Sentinel kinds for service errors.
var (
	// ErrBackpressure is returned when the command queue is full.
	ErrBackpressure = errors.New("interaction queue full")
	// ErrNotStarted is returned by operations called before Start or after Stop.
	ErrNotStarted = errors.New("service not started")
	// ErrRenderFormat is returned for an unknown render format.
	ErrRenderFormat = errors.New("unsupported render format")
	// ErrCanvasTooLarge is returned when a requested surface exceeds the raster limit.
	ErrCanvasTooLarge = errors.New("canvas too large")
)
