//go:build !linux

package actuatorbus

import "fmt"

type linuxPort struct{}

func openPort(device string, baud uint32) (*linuxPort, error) {
	return nil, fmt.Errorf("%w: serial bus is only implemented for linux in this build", ErrNotSupported)
}

func (p *linuxPort) Read(b []byte) (int, error)  { return 0, ErrNotSupported }
func (p *linuxPort) Write(b []byte) (int, error) { return 0, ErrNotSupported }
func (p *linuxPort) Close() error                { return nil }
