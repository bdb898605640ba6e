package orchestrator

import "errors"

// ErrShutdownTimeout is logged (not fatal) if the shutdown sequence's final
// INIT broadcast does not complete within the shutdown grace period.
var ErrShutdownTimeout = errors.New("orchestrator: control loop did not stop within grace period")
