// Package autonomy implements the FSM that converts (danger, position)
// into the next gait command, with escape-direction memory, rotation
// bias under STOP, and step budgeting to avoid oscillation.
package autonomy

import (
	"github.com/fieldbots/hexapod/internal/gait"
	"github.com/fieldbots/hexapod/internal/vision"
)

// Side is a lateral direction.
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// pivotStepsPerBlock and blockLength implement the WARN/Both alternation
// rule: 3 steps left, 3 steps right, then one pivot, repeat.
const (
	blockLength        = 6
	pivotStepsPerBlock = 3
	obsForwardBudget   = 10
	sideObstacleClear  = 0.30
)

// State is the FSM's hidden memory (spec.md §3 AutonomyState, minus the
// Mode field which the orchestrator's pause gate owns).
type State struct {
	EscapeDirection *Side
	EscapeSteps     uint32
	RotationBias    *Side
	DangerCount     uint32
}

// Reset clears escape memory; called on every mode entry (spec.md §3
// Lifecycle: "Autonomy state: reset on every mode entry").
func (s *State) Reset() {
	s.EscapeDirection = nil
	s.EscapeSteps = 0
	s.RotationBias = nil
	s.DangerCount = 0
}

// Policy evaluates the transition table against a State in place.
type Policy struct {
	State State
}

// NewPolicy returns a Policy with freshly reset state.
func NewPolicy() *Policy {
	p := &Policy{}
	p.State.Reset()
	return p
}

// Next computes the next Action for the given detector Summary,
// mutating the policy's hidden state per the transition table in
// spec.md §4.6. Determinism (P8): this function is a pure mapping from
// (summary, State) to (Action, State'); it is never called concurrently
// with itself by construction (the autonomy loop is single-threaded).
func (p *Policy) Next(summary vision.Summary) gait.Action {
	s := &p.State
	switch {
	case summary.Danger == vision.DangerStop && summary.Position == vision.PositionCenter:
		return p.onStopCenter(summary.Obstacles)

	case summary.Danger == vision.DangerWarn && summary.Position == vision.PositionCenter:
		return p.onWarnCenter()

	case summary.Danger == vision.DangerWarn && summary.Position == vision.PositionBoth:
		return p.onWarnBoth()

	case summary.Danger == vision.DangerObs && summary.Position == vision.PositionLeft:
		return p.onObsSide(SideRight, SideRight)

	case summary.Danger == vision.DangerObs && summary.Position == vision.PositionRight:
		return p.onObsSide(SideLeft, SideLeft)

	default: // OK, None
		s.Reset()
		return gait.ActionForward
	}
}

func (p *Policy) onStopCenter(obstacles []vision.Obstacle) gait.Action {
	s := &p.State
	s.DangerCount++

	leftClear := !sideBlocked(obstacles, vision.ZoneLeft)
	rightClear := !sideBlocked(obstacles, vision.ZoneRight)

	var direction Side
	switch {
	case leftClear && !rightClear:
		direction = SideLeft
	case rightClear && !leftClear:
		direction = SideRight
	default: // both clear or both blocked: keep previous bias, default Left
		if s.RotationBias != nil {
			direction = *s.RotationBias
		} else {
			direction = SideLeft
		}
	}
	s.RotationBias = &direction

	if direction == SideLeft {
		return gait.ActionPivotLeft
	}
	return gait.ActionPivotRight
}

func sideBlocked(obstacles []vision.Obstacle, zone vision.Zone) bool {
	for _, o := range obstacles {
		if o.Zone == zone && o.Distance > sideObstacleClear {
			return true
		}
	}
	return false
}

func (p *Policy) onWarnCenter() gait.Action {
	s := &p.State
	if s.EscapeDirection == nil {
		left := SideLeft
		s.EscapeDirection = &left
	}
	if *s.EscapeDirection == SideLeft {
		return gait.ActionSlideLeft
	}
	return gait.ActionSlideRight
}

func (p *Policy) onWarnBoth() gait.Action {
	s := &p.State

	if s.EscapeSteps >= blockLength {
		s.EscapeSteps = 0
		bias := SideLeft
		if s.RotationBias != nil {
			bias = *s.RotationBias
		}
		if bias == SideLeft {
			return gait.ActionPivotLeft
		}
		return gait.ActionPivotRight
	}

	step := s.EscapeSteps
	s.EscapeSteps++
	if step < pivotStepsPerBlock {
		return gait.ActionSlideLeft
	}
	return gait.ActionSlideRight
}

// onObsSide handles the symmetric OBS,Left / OBS,Right rules: slide away
// from the obstacle, track escape direction, and break out with a
// Forward step if the slide has run long enough to suggest oscillation.
func (p *Policy) onObsSide(slideDirection Side, newEscapeDirection Side) gait.Action {
	s := &p.State
	s.EscapeDirection = &newEscapeDirection
	s.EscapeSteps++

	if s.EscapeSteps > obsForwardBudget {
		s.EscapeSteps = 0
		return gait.ActionForward
	}
	if slideDirection == SideLeft {
		return gait.ActionSlideLeft
	}
	return gait.ActionSlideRight
}
