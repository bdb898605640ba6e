// Package teleop provides a non-blocking keypress source for manual
// control, polling the terminal in cbreak mode.
package teleop

import (
	"os"
)

// Key is a recognised teleop keypress (spec.md §4.7).
type Key int

const (
	KeyNone Key = iota
	KeyForward
	KeyBackward
	KeySlideLeft
	KeySlideRight
	KeyPivotLeft
	KeyPivotRight
	KeyStop
	KeyQuit
)

var keyMap = map[byte]Key{
	'z':    KeyForward,
	's':    KeyBackward,
	'q':    KeySlideLeft,
	'd':    KeySlideRight,
	'a':    KeyPivotLeft,
	'e':    KeyPivotRight,
	' ':    KeyStop,
	'x':    KeyQuit,
	0x03:   KeyQuit, // Ctrl-C
}

// Source polls stdin without blocking. In autonomy mode, 'q' means Quit
// instead of SlideLeft (spec.md §4.7); callers pass autonomyMode to
// TryReadKey to select the right mapping.
type Source struct {
	f        *os.File
	restore  func() error
	isTTY    bool
}

// NewSource puts the terminal (if any) into cbreak mode. If stdin is not
// a TTY (e.g. running under a supervisor with redirected stdin),
// TryReadKey always returns KeyNone, KeyNone safely.
func NewSource() (*Source, error) {
	s := &Source{f: os.Stdin}
	restore, isTTY, err := enableCbreak(os.Stdin)
	if err != nil {
		return nil, err
	}
	s.restore = restore
	s.isTTY = isTTY
	return s, nil
}

// TryReadKey performs one non-blocking read and maps the byte to a Key.
// autonomyMode selects the 'q'->Quit vs 'q'->SlideLeft mapping.
func (s *Source) TryReadKey(autonomyMode bool) Key {
	if !s.isTTY {
		return KeyNone
	}
	var buf [1]byte
	n, err := s.f.Read(buf[:])
	if err != nil || n == 0 {
		return KeyNone
	}
	if autonomyMode && buf[0] == 'q' {
		return KeyQuit
	}
	if k, ok := keyMap[buf[0]]; ok {
		return k
	}
	return KeyNone
}

// Restore resets the terminal to its original settings. Safe to call
// multiple times and from a deferred recover() handler so abnormal exits
// never leave the terminal in raw mode.
func (s *Source) Restore() error {
	if s.restore == nil {
		return nil
	}
	return s.restore()
}
