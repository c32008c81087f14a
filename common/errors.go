package common

import "errors"

// Sentinel errors for watchdog operations.
// These can be checked with errors.Is() for proper error handling.
var (
	// Process errors.
	ErrProcessNotFound = errors.New("vpn client process not found")

	// Launch errors.
	ErrLaunchFailed = errors.New("failed to bring up vpn interface")

	// Probe errors. ErrProbeUnavailable means the underlying utility could
	// not be invoked at all, which is an environment problem, not an
	// unhealthy connection.
	ErrProbeUnavailable = errors.New("probe utility unavailable")

	// Loop errors.
	ErrRestartLimit = errors.New("restart limit reached")

	// Configuration errors.
	ErrInvalidSettings = errors.New("invalid settings")
)

// WrapError wraps an error with additional context.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{
		msg: message,
		err: err,
	}
}

type wrappedError struct {
	msg string
	err error
}

func (e *wrappedError) Error() string {
	return e.msg + ": " + e.err.Error()
}

func (e *wrappedError) Unwrap() error {
	return e.err
}
