package seed

import "errors"

var (
	// ErrInvalidRun reports a configuration the generator cannot use.
	ErrInvalidRun = errors.New("invalid seed run")
	// ErrUnhealthy reports a service that failed its health check.
	ErrUnhealthy = errors.New("service unhealthy")
	// ErrVerification reports an export that does not match what was sent.
	ErrVerification = errors.New("verification failed")
)
