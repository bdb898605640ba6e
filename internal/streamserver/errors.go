package streamserver

import "errors"

// ErrNoFrame is returned internally when no frame has been published yet;
// the /stream handler treats it as "skip this tick", not as a fatal error.
var ErrNoFrame = errors.New("streamserver: no frame available")
