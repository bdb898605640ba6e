package actuatorbus

import "errors"

// Sentinel errors for the actuator bus, in the style of the rest of the
// stack's device packages: plain errors.New values wrapped with %w at the
// call site rather than a custom error type hierarchy.
var (
	// ErrPort is returned when opening the serial device or setting its
	// baud rate fails. A startup-time ErrPort is fatal. Per-tick broadcast
	// failures wrap the port's own write error rather than ErrPort; the
	// gait engine logs them and continues.
	ErrPort = errors.New("actuatorbus: port error")

	// ErrNotSupported is returned on platforms without a serial backend.
	ErrNotSupported = errors.New("actuatorbus: not supported on this platform")

	// ErrClosed is returned by any operation after Close has been called.
	ErrClosed = errors.New("actuatorbus: bus is closed")
)
