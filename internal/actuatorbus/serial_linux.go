//go:build linux

package actuatorbus

import (
	"fmt"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// linuxPort talks to a serial TTY device via raw termios, adapted for the
// actuator bus's blocking-read/blocking-write usage (the bus driver owns
// pacing, not the port).
type linuxPort struct {
	file *os.File
}

func openPort(device string, baud uint32) (*linuxPort, error) {
	file, err := os.OpenFile(device, os.O_RDWR|syscall.O_NOCTTY, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrPort, device, err)
	}

	termios, err := unix.IoctlGetTermios(int(file.Fd()), unix.TCGETS)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("%w: get termios: %v", ErrPort, err)
	}

	baudConst := baudRateToConstant(baud)
	if baudConst == 0 {
		termios.Cflag &^= unix.CBAUD
		termios.Cflag |= unix.BOTHER
		termios.Ispeed = baud
		termios.Ospeed = baud
	} else {
		termios.Ispeed = baudConst
		termios.Ospeed = baudConst
	}

	termios.Cflag &^= unix.CSIZE | unix.PARENB | unix.CSTOPB
	termios.Cflag |= unix.CS8 | unix.CREAD | unix.CLOCAL
	termios.Lflag &^= unix.ICANON | unix.ECHO | unix.ECHOE | unix.ISIG
	termios.Cc[unix.VMIN] = 0
	termios.Cc[unix.VTIME] = 2 // 200ms read timeout, bus is a request/response protocol

	if err := unix.IoctlSetTermios(int(file.Fd()), unix.TCSETS, termios); err != nil {
		file.Close()
		return nil, fmt.Errorf("%w: set termios: %v", ErrPort, err)
	}

	return &linuxPort{file: file}, nil
}

func (p *linuxPort) Read(b []byte) (int, error) {
	n, err := syscall.Read(int(p.file.Fd()), b)
	if err != nil {
		if err == syscall.EAGAIN || err == syscall.EWOULDBLOCK {
			return 0, nil
		}
		return n, err
	}
	return n, nil
}

func (p *linuxPort) Write(b []byte) (int, error) {
	return p.file.Write(b)
}

func (p *linuxPort) Close() error {
	return p.file.Close()
}

func baudRateToConstant(baud uint32) uint32 {
	switch baud {
	case 9600:
		return unix.B9600
	case 19200:
		return unix.B19200
	case 38400:
		return unix.B38400
	case 57600:
		return unix.B57600
	case 115200:
		return unix.B115200
	case 230400:
		return unix.B230400
	case 460800:
		return unix.B460800
	case 500000:
		return unix.B500000
	case 921600:
		return unix.B921600
	case 1000000:
		return unix.B1000000
	case 2000000:
		return unix.B2000000
	case 3000000:
		return unix.B3000000
	case 4000000:
		return unix.B4000000
	default:
		return 0
	}
}
