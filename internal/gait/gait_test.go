package gait

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDegToRawScenario1(t *testing.T) {
	// spec.md §8 scenario 1: INIT_POSE[0] = 30 -> deg_to_raw(30) = 2389.
	assert.Equal(t, uint16(2389), DegToRaw(30))
}

func TestDegToRawClamps(t *testing.T) {
	// P1: raw positions always land in [0, 4095].
	assert.Equal(t, uint16(0), DegToRaw(-1000))
	assert.Equal(t, uint16(4095), DegToRaw(1000))
}

func TestDegToRawNeutral(t *testing.T) {
	assert.Equal(t, uint16(2048), DegToRaw(0))
}

func TestAmplifyIdentity(t *testing.T) {
	// P3: f=1 is the identity transform.
	src := []Keyframe{{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}}
	out := Amplify(src, 1)
	assert.Equal(t, src, out)
}

func TestAmplifyPreservesColumnMean(t *testing.T) {
	// P4: the column mean is preserved for any amplitude factor.
	src := []Keyframe{
		{10, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
		{-10, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
	}
	for _, f := range []float32{0.5, 2.0, 3.0} {
		out := Amplify(src, f)
		var sum float32
		for _, kf := range out {
			sum += kf[0]
		}
		assert.InDelta(t, 0, sum/float32(len(out)), 1e-4)
	}
}

func TestAmplifyRoundTrip(t *testing.T) {
	// P10: amplifying by f then by 1/f returns each value within
	// numerical tolerance of the original.
	src := rawForward
	up := Amplify(src, 1.7)
	back := Amplify(up, 1/1.7)
	for k := range src {
		for i := range src[k] {
			assert.InDelta(t, src[k][i], back[k][i], 1e-3)
		}
	}
}

func TestLibraryGaitLengths(t *testing.T) {
	lib := NewLibrary()
	assert.Len(t, lib.Gait(Forward).Keyframes, 12)
	assert.Len(t, lib.Gait(Init).Keyframes, 1)
}

func TestForActionUnknownPanics(t *testing.T) {
	lib := NewLibrary()
	assert.Panics(t, func() { lib.ForAction(Action("bogus")) })
}

func TestBackwardTableIsIndependentOfForward(t *testing.T) {
	// rawBackward is its own captured sequence (not a reflection of
	// rawForward), but both cycle through the same number of motors.
	require.Len(t, rawBackward[0], NumMotors)
	assert.NotEqual(t, rawForward, rawBackward)
}
