//go:build linux

package teleop

import (
	"os"

	"golang.org/x/sys/unix"
)

// enableCbreak puts f into non-canonical, non-blocking, no-echo mode and
// returns a function that restores the original termios. If f is not a
// TTY, it returns a no-op restore and isTTY=false.
func enableCbreak(f *os.File) (restore func() error, isTTY bool, err error) {
	fd := int(f.Fd())
	original, termErr := unix.IoctlGetTermios(fd, unix.TCGETS)
	if termErr != nil {
		// Not a TTY (e.g. piped stdin in tests/CI): treat as disabled,
		// not an error.
		return func() error { return nil }, false, nil
	}

	raw := *original
	raw.Lflag &^= unix.ICANON | unix.ECHO | unix.ISIG
	raw.Cc[unix.VMIN] = 0
	raw.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, &raw); err != nil {
		return nil, false, err
	}

	restore = func() error {
		return unix.IoctlSetTermios(fd, unix.TCSETS, original)
	}
	return restore, true, nil
}
