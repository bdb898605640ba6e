package camera

import "errors"

var (
	// ErrSpawn is returned when the MJPEG subprocess cannot be started.
	ErrSpawn = errors.New("camera: failed to spawn capture process")

	// ErrDecode marks a malformed JPEG segment; the stream buffer is
	// truncated and capture continues (spec.md §7 DecodeError).
	ErrDecode = errors.New("camera: failed to decode frame")

	// ErrNoFrame names the state before the first frame has been
	// published. LatestFrame does not return it: it reports that state
	// as ok=false.
	ErrNoFrame = errors.New("camera: no frame available yet")
)
