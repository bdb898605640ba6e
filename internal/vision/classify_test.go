package vision

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyEmptyIsOK(t *testing.T) {
	danger, position := classify(nil, DefaultConfig())
	assert.Equal(t, DangerOK, danger)
	assert.Equal(t, PositionNone, position)
}

func TestClassifyStopCenter(t *testing.T) {
	cfg := DefaultConfig()
	obstacles := []Obstacle{{Zone: ZoneCenter, Distance: 0.70}}
	danger, position := classify(obstacles, cfg)
	assert.Equal(t, DangerStop, danger)
	assert.Equal(t, PositionCenter, position)
}

func TestClassifyWarnCenter(t *testing.T) {
	cfg := DefaultConfig()
	obstacles := []Obstacle{{Zone: ZoneCenter, Distance: 0.55}}
	danger, position := classify(obstacles, cfg)
	assert.Equal(t, DangerWarn, danger)
	assert.Equal(t, PositionCenter, position)
}

func TestClassifyWarnBoth(t *testing.T) {
	cfg := DefaultConfig()
	obstacles := []Obstacle{
		{Zone: ZoneLeft, Distance: 0.50},
		{Zone: ZoneRight, Distance: 0.50},
	}
	danger, position := classify(obstacles, cfg)
	assert.Equal(t, DangerWarn, danger)
	assert.Equal(t, PositionBoth, position)
}

func TestClassifyObsRight(t *testing.T) {
	// spec.md §8 scenario 3: single obstacle at zone=Right, dist~0.72.
	cfg := DefaultConfig()
	obstacles := []Obstacle{{Zone: ZoneRight, Distance: 0.72, Size: SizeMedium}}
	danger, position := classify(obstacles, cfg)
	assert.Equal(t, DangerObs, danger)
	assert.Equal(t, PositionRight, position)
}

func TestClassifyObsLeft(t *testing.T) {
	cfg := DefaultConfig()
	obstacles := []Obstacle{{Zone: ZoneLeft, Distance: 0.60}}
	danger, position := classify(obstacles, cfg)
	assert.Equal(t, DangerObs, danger)
	assert.Equal(t, PositionLeft, position)
}

func TestClassifyBelowThresholdIsOK(t *testing.T) {
	cfg := DefaultConfig()
	obstacles := []Obstacle{{Zone: ZoneLeft, Distance: 0.10}}
	danger, position := classify(obstacles, cfg)
	assert.Equal(t, DangerOK, danger)
	assert.Equal(t, PositionNone, position)
}

func TestDangerMonotonicity(t *testing.T) {
	// P7: classifier monotonicity under the OK<OBS<WARN<STOP ordering.
	assert.Less(t, DangerOK.Rank(), DangerObs.Rank())
	assert.Less(t, DangerObs.Rank(), DangerWarn.Rank())
	assert.Less(t, DangerWarn.Rank(), DangerStop.Rank())

	base := []Obstacle{{Zone: ZoneLeft, Distance: 0.60}}
	withExtra := append(append([]Obstacle{}, base...), Obstacle{Zone: ZoneCenter, Distance: 0.70})

	d1, _ := classify(base, DefaultConfig())
	d2, _ := classify(withExtra, DefaultConfig())
	assert.GreaterOrEqual(t, d2.Rank(), d1.Rank())
}
