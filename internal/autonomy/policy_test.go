package autonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fieldbots/hexapod/internal/gait"
	"github.com/fieldbots/hexapod/internal/vision"
)

func TestOKClearsEscapeState(t *testing.T) {
	p := NewPolicy()
	p.State.EscapeSteps = 5
	left := SideLeft
	p.State.EscapeDirection = &left

	action := p.Next(vision.Summary{Danger: vision.DangerOK, Position: vision.PositionNone})
	assert.Equal(t, gait.ActionForward, action)
	assert.Nil(t, p.State.EscapeDirection)
	assert.Equal(t, uint32(0), p.State.EscapeSteps)
}

func TestStopCenterPivotsDefaultLeft(t *testing.T) {
	// spec.md §8 scenario 4: central near obstacle -> PivotLeft, danger_count=1.
	p := NewPolicy()
	obstacles := []vision.Obstacle{{Zone: vision.ZoneCenter, Distance: 0.70}}
	action := p.Next(vision.Summary{Danger: vision.DangerStop, Position: vision.PositionCenter, Obstacles: obstacles})

	assert.Equal(t, gait.ActionPivotLeft, action)
	assert.Equal(t, uint32(1), p.State.DangerCount)
}

func TestStopCenterPivotsTowardClearSide(t *testing.T) {
	p := NewPolicy()
	obstacles := []vision.Obstacle{
		{Zone: vision.ZoneCenter, Distance: 0.70},
		{Zone: vision.ZoneLeft, Distance: 0.50}, // left blocked, right clear
	}
	action := p.Next(vision.Summary{Danger: vision.DangerStop, Position: vision.PositionCenter, Obstacles: obstacles})
	assert.Equal(t, gait.ActionPivotRight, action)
}

func TestObsRightSlidesLeft(t *testing.T) {
	// spec.md §8 scenario 3: obstacle on the right -> SlideLeft.
	p := NewPolicy()
	action := p.Next(vision.Summary{Danger: vision.DangerObs, Position: vision.PositionRight})
	assert.Equal(t, gait.ActionSlideLeft, action)
}

func TestObsLeftSlidesRight(t *testing.T) {
	p := NewPolicy()
	action := p.Next(vision.Summary{Danger: vision.DangerObs, Position: vision.PositionLeft})
	assert.Equal(t, gait.ActionSlideRight, action)
}

func TestObsSideBreaksOutAfterBudget(t *testing.T) {
	p := NewPolicy()
	var action gait.Action
	for i := 0; i < obsForwardBudget+1; i++ {
		action = p.Next(vision.Summary{Danger: vision.DangerObs, Position: vision.PositionRight})
	}
	assert.Equal(t, gait.ActionForward, action)
	assert.Equal(t, uint32(0), p.State.EscapeSteps)
}

func TestWarnCenterSlidesConsistentDirection(t *testing.T) {
	p := NewPolicy()
	first := p.Next(vision.Summary{Danger: vision.DangerWarn, Position: vision.PositionCenter})
	second := p.Next(vision.Summary{Danger: vision.DangerWarn, Position: vision.PositionCenter})
	assert.Equal(t, first, second)
}

func TestWarnBothAlternatesThenPivots(t *testing.T) {
	p := NewPolicy()
	var actions []gait.Action
	for i := 0; i < blockLength+1; i++ {
		actions = append(actions, p.Next(vision.Summary{Danger: vision.DangerWarn, Position: vision.PositionBoth}))
	}
	for i := 0; i < pivotStepsPerBlock; i++ {
		assert.Equal(t, gait.ActionSlideLeft, actions[i])
	}
	for i := pivotStepsPerBlock; i < blockLength; i++ {
		assert.Equal(t, gait.ActionSlideRight, actions[i])
	}
	assert.Equal(t, gait.ActionPivotLeft, actions[blockLength])
}

func TestResetClearsAllMemory(t *testing.T) {
	s := State{EscapeSteps: 3, DangerCount: 2}
	left := SideLeft
	s.EscapeDirection = &left
	s.RotationBias = &left

	s.Reset()
	assert.Nil(t, s.EscapeDirection)
	assert.Nil(t, s.RotationBias)
	assert.Equal(t, uint32(0), s.EscapeSteps)
	assert.Equal(t, uint32(0), s.DangerCount)
}
