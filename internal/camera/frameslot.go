package camera

import (
	"sync"

	cv "gocv.io/x/gocv"
)

// frameSlot is the mutex-guarded single-slot "latest frame" buffer
// described in spec.md §5: readers clone under lock and release; writers
// overwrite unconditionally. No queue — latest wins, never stalling the
// capture side for slow consumers.
type frameSlot struct {
	mu   sync.Mutex
	mat  cv.Mat
	have bool
}

func newFrameSlot() *frameSlot {
	return &frameSlot{mat: cv.NewMat()}
}

// publish replaces the latest frame, releasing the previous Mat's memory.
func (s *frameSlot) publish(m cv.Mat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mat.Close()
	s.mat = m
	s.have = true
}

// latest returns a clone of the most recent frame, or ok=false if no
// frame has been published yet. Callers own the returned Mat and must
// Close it.
func (s *frameSlot) latest() (cv.Mat, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.have {
		return cv.Mat{}, false
	}
	return s.mat.Clone(), true
}

func (s *frameSlot) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mat.Close()
	s.have = false
}
