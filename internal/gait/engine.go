package gait

import (
	"time"

	"github.com/fieldbots/hexapod/internal/actuatorbus"
	"github.com/fieldbots/hexapod/pkg/logger"
)

// settleDelay is the brief pause after an action change, before the first
// keyframe of the new gait is emitted, to let servos settle (spec.md §4.3).
const settleDelay = 100 * time.Millisecond

// Engine maintains the active gait and step cursor and drives the
// actuator bus one keyframe per tick.
type Engine struct {
	lib *Library
	bus actuatorbus.Bus

	action Action
	active Gait
	cursor int

	sleep func(time.Duration) // injected for tests
}

// NewEngine constructs a gait engine; the active action starts at Stop
// (INIT pose), matching the invariant that every mode entry resets to a
// known state.
func NewEngine(lib *Library, bus actuatorbus.Bus) *Engine {
	e := &Engine{
		lib:    lib,
		bus:    bus,
		action: ActionStop,
		active: lib.Gait(Init),
		cursor: 0,
		sleep:  time.Sleep,
	}
	return e
}

// SetAction reassigns the active gait if the action changed. Changing the
// active gait resets the cursor to 0; A->A is a no-op for the cursor
// (P6). Stop always maps to the Init gait.
func (e *Engine) SetAction(a Action) {
	if a == e.action {
		return
	}
	e.action = a
	e.active = e.lib.ForAction(a)
	e.cursor = 0
	e.sleep(settleDelay)
}

// Tick writes the current keyframe to the bus and advances the cursor.
// Stop always (re-)writes the single Init keyframe and never advances
// (idempotent; P9 pause safety relies on this). A bus write failure is
// logged and returned, but the cursor still advances: the next tick
// broadcasts the next keyframe rather than retrying this one, so a dropped
// tick is harmless (spec.md §7).
func (e *Engine) Tick() error {
	kf := e.active.Keyframes[e.cursor]
	var positions [actuatorbus.NumMotors]uint16
	for i, deg := range kf {
		positions[i] = DegToRaw(deg)
	}

	err := e.bus.BroadcastGoalPositions(positions)

	if e.action != ActionStop {
		e.cursor = (e.cursor + 1) % len(e.active.Keyframes)
	}

	if err != nil {
		logger.For("gait").Error().Err(err).Msg("broadcast failed, continuing with the next keyframe")
		return err
	}
	return nil
}

// Action returns the currently active action.
func (e *Engine) Action() Action { return e.action }

// Cursor returns the current step cursor, for tests and /status.
func (e *Engine) Cursor() int { return e.cursor }

// RecommendedDelay returns the pacing between ticks for the active
// action. A slower profile is used when running alongside vision to
// reduce contention (spec.md §4.3).
func (e *Engine) RecommendedDelay(visionActive bool) time.Duration {
	if visionActive {
		switch e.action {
		case ActionSlideLeft, ActionSlideRight, ActionPivotLeft, ActionPivotRight:
			return 250 * time.Millisecond
		case ActionStop:
			return 200 * time.Millisecond
		default:
			return 200 * time.Millisecond
		}
	}
	switch e.action {
	case ActionSlideLeft, ActionSlideRight, ActionPivotLeft, ActionPivotRight:
		return 150 * time.Millisecond
	case ActionForward, ActionBackward:
		return 80 * time.Millisecond
	default: // ActionStop
		return 100 * time.Millisecond
	}
}
