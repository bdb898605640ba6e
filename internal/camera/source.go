// Package camera manages the MJPEG subprocess (or still-image fallback)
// feeding the obstacle detector and HTTP streamer, and exposes the latest
// decoded frame.
package camera

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff"
	cv "gocv.io/x/gocv"

	"github.com/fieldbots/hexapod/pkg/logger"
)

// Config describes the desired capture parameters; width/height/fps are
// passed through to the external capture command.
type Config struct {
	Width   int
	Height  int
	FPS     int
	Quality int

	// PrimaryCommand/FallbackCommand let tests and alternate platforms
	// substitute a different MJPEG producer while honouring the same
	// CLI-ish contract (spec.md §6).
	PrimaryCommand  func(cfg Config) *exec.Cmd
	FallbackCommand func(cfg Config, outFile string) *exec.Cmd
}

// scanBufLimit bounds the resynchronisation buffer: on a corrupt stream we
// truncate rather than grow without bound (spec.md §4.4).
const scanBufLimit = 500 * 1024

// DefaultConfig returns sane defaults matching spec.md §3.
func DefaultConfig() Config {
	return Config{
		Width:           640,
		Height:          240,
		FPS:             10,
		Quality:         60,
		PrimaryCommand:  defaultPrimaryCommand,
		FallbackCommand: defaultFallbackCommand,
	}
}

func defaultPrimaryCommand(cfg Config) *exec.Cmd {
	return exec.Command("libcamera-vid",
		"--codec", "mjpeg", "-o", "-",
		"--width", fmt.Sprint(cfg.Width),
		"--height", fmt.Sprint(cfg.Height),
		"--framerate", fmt.Sprint(cfg.FPS),
		"-n",
	)
}

func defaultFallbackCommand(cfg Config, outFile string) *exec.Cmd {
	return exec.Command("rpicam-jpeg",
		"-o", outFile,
		"--width", fmt.Sprint(cfg.Width),
		"--height", fmt.Sprint(cfg.Height),
		"-n",
		"-t", "1",
	)
}

// Source spawns and manages the capture process and publishes decoded
// frames into a frameSlot.
type Source struct {
	cfg    Config
	slot   *frameSlot
	tmpDir string

	cancel context.CancelFunc
	done   chan struct{}
	proc   *os.Process // set on the primary (subprocess streaming) path only
}

// NewSource constructs a Source; call Start to begin capturing.
func NewSource(cfg Config) *Source {
	return &Source{cfg: cfg, slot: newFrameSlot()}
}

// Start spawns the capture process (or the still-image fallback if spawn
// fails once) and begins publishing decoded frames. Start returns once
// the capture goroutine has been launched; it does not block for the
// first frame.
func (s *Source) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	log := logger.For("camera")

	cmd := s.cfg.PrimaryCommand(s.cfg)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("%w: stdout pipe: %v", ErrSpawn, err)
	}
	if err := cmd.Start(); err != nil {
		log.Error().Err(err).Msg("primary capture process failed to spawn, falling back to still-image capture")
		return s.startFallback(ctx)
	}
	s.proc = cmd.Process

	go func() {
		defer close(s.done)
		s.streamMJPEG(ctx, stdout)
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	}()
	return nil
}

// streamMJPEG scans the subprocess stdout for JPEG SOI/EOI markers,
// decodes each complete segment, and publishes it.
func (s *Source) streamMJPEG(ctx context.Context, r io.Reader) {
	log := logger.For("camera")
	reader := bufio.NewReaderSize(r, 64*1024)
	buf := make([]byte, 0, scanBufLimit)

	readByte := func() (byte, error) {
		return reader.ReadByte()
	}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		b, err := readByte()
		if err != nil {
			if err != io.EOF {
				log.Error().Err(err).Msg("capture stream read failed")
			}
			return
		}
		buf = append(buf, b)

		if len(buf) >= 2 && buf[len(buf)-2] == 0xFF && buf[len(buf)-1] == 0xD9 {
			// Found EOI; buf should start at or after the last SOI.
			start := findSOI(buf)
			if start < 0 {
				buf = buf[:0]
				continue
			}
			segment := buf[start:]
			mat, err := cv.IMDecode(segment, cv.IMReadColor)
			if err != nil || mat.Empty() {
				log.Error().Err(ErrDecode).Msg("dropping malformed JPEG segment")
			} else {
				s.slot.publish(mat)
			}
			buf = buf[:0]
			continue
		}

		if len(buf) >= scanBufLimit {
			// Corrupt/unsynchronised stream: truncate to resynchronise,
			// keeping only a trailing window in case a SOI straddles it.
			tail := buf[len(buf)-2:]
			buf = buf[:0]
			buf = append(buf, tail...)
		}
	}
}

func findSOI(buf []byte) int {
	for i := 0; i+1 < len(buf); i++ {
		if buf[i] == 0xFF && buf[i+1] == 0xD8 {
			return i
		}
	}
	return -1
}

// startFallback invokes the still-image capture command into a temp file
// at the target framerate, reading each file back and publishing it.
func (s *Source) startFallback(ctx context.Context) error {
	dir, err := os.MkdirTemp("", "hexapod-camera-*")
	if err != nil {
		return fmt.Errorf("%w: temp dir: %v", ErrSpawn, err)
	}
	s.tmpDir = dir

	go func() {
		defer close(s.done)
		defer os.RemoveAll(dir)

		log := logger.For("camera")
		period := time.Second / time.Duration(maxInt(s.cfg.FPS, 1))
		outFile := filepath.Join(dir, "frame.jpg")

		boff := backoff.NewExponentialBackOff()
		boff.MaxElapsedDuration = 0

		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			cmd := s.cfg.FallbackCommand(s.cfg, outFile)
			if err := cmd.Run(); err != nil {
				log.Error().Err(err).Msg("fallback still-image capture failed")
				time.Sleep(boff.NextBackOff())
				continue
			}
			boff.Reset()

			data, err := os.ReadFile(outFile)
			if err != nil || len(data) == 0 {
				continue
			}
			mat, err := cv.IMDecode(data, cv.IMReadColor)
			if err != nil || mat.Empty() {
				log.Error().Err(ErrDecode).Msg("dropping malformed fallback frame")
				continue
			}
			s.slot.publish(mat)
		}
	}()
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// LatestFrame returns a clone of the most recent decoded frame, or false
// if none has been published yet. The caller owns the returned Mat.
func (s *Source) LatestFrame() (cv.Mat, bool) {
	return s.slot.latest()
}

// Close terminates the capture goroutine and releases the frame slot and
// any fallback temp directory.
func (s *Source) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	if s.proc != nil {
		// Unblocks a streamMJPEG goroutine parked in a blocking ReadByte on
		// a subprocess that has stalled without exiting: cancelling ctx
		// alone only takes effect between reads, so the pipe must be
		// closed out from under it by killing the process.
		_ = s.proc.Kill()
	}
	if s.done != nil {
		<-s.done
	}
	s.slot.close()
	if s.tmpDir != "" {
		os.RemoveAll(s.tmpDir)
	}
	return nil
}
