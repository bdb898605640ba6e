//go:build !linux

package teleop

import "os"

func enableCbreak(f *os.File) (restore func() error, isTTY bool, err error) {
	return func() error { return nil }, false, nil
}
