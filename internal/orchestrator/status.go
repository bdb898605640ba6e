package orchestrator

import (
	"sync"
	"time"

	"github.com/fieldbots/hexapod/internal/gait"
	"github.com/fieldbots/hexapod/internal/streamserver"
	"github.com/fieldbots/hexapod/internal/vision"
)

// snapshot is the orchestrator's mutex-guarded status state (spec.md §5:
// "status snapshot for /status (mutex)"). It satisfies
// streamserver.StatusProvider.
type snapshot struct {
	mu sync.Mutex

	startedAt   time.Time
	paused      bool
	action      gait.Action
	danger      vision.Danger
	obstacles   int
	dangerCount uint32

	frameWindowStart time.Time
	frameCount       int
	fps              float64
}

func newSnapshot() *snapshot {
	return &snapshot{startedAt: time.Now(), frameWindowStart: time.Now()}
}

func (s *snapshot) setPaused(p bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = p
}

func (s *snapshot) setTick(action gait.Action, summary vision.Summary, dangerCount uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.action = action
	s.danger = summary.Danger
	s.obstacles = len(summary.Obstacles)
	s.dangerCount = dangerCount
}

// recordFrame is called once per successfully fetched camera frame and
// recomputes fps over a rolling one-second window.
func (s *snapshot) recordFrame() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frameCount++
	elapsed := time.Since(s.frameWindowStart)
	if elapsed >= time.Second {
		s.fps = float64(s.frameCount) / elapsed.Seconds()
		s.frameCount = 0
		s.frameWindowStart = time.Now()
	}
}

// dangerEscalationThreshold is the consecutive STOP/danger_count at which
// the policy has pivoted repeatedly without clearing the obstacle (spec.md
// §4.6: danger_count increments on every STOP,Center tick, and only resets
// on OK,None); below it a STOP is reported as the ordinary BLOCKED state,
// at or above it as the escalated DANGER state.
const dangerEscalationThreshold = 3

// state derives the coarse state label of spec.md §6 from the current
// danger/action/paused fields.
func (s *snapshot) state() string {
	if s.paused {
		return "PAUSE"
	}
	switch s.danger {
	case vision.DangerStop:
		if s.dangerCount >= dangerEscalationThreshold {
			return "DANGER"
		}
		return "BLOCKED"
	case vision.DangerWarn, vision.DangerObs:
		return "AVOIDING"
	}
	if s.action == gait.ActionStop || s.action == "" {
		return "INIT"
	}
	return "FORWARD"
}

// Status implements streamserver.StatusProvider.
func (s *snapshot) Status() streamserver.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	action := s.action
	if action == "" {
		action = gait.ActionStop
	}
	danger := string(s.danger)
	switch {
	case s.paused:
		danger = "PAUSE"
	case danger == "":
		danger = "INIT"
	}
	return streamserver.Status{
		FPS:           s.fps,
		Obstacles:     s.obstacles,
		Danger:        danger,
		Action:        string(action),
		State:         s.state(),
		Paused:        s.paused,
		UptimeSeconds: time.Since(s.startedAt).Seconds(),
	}
}
