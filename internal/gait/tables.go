package gait

// Keyframe is a pose for all twelve motors, indexed by slot (slot i is
// motor id i+1), in signed degrees.
type Keyframe [NumMotors]float32

// NumMotors mirrors actuatorbus.NumMotors; kept as an independent constant
// so this package has no hardware dependency, matching the teacher's
// separation between device packages and pure data/algorithm packages.
const NumMotors = 12

// rawInit, rawForward, ... are the per-motor keyframe tables for this
// robot's tripod gait, in raw degrees before the amplitude transform.
// Forward, backward, slide-left/right and pivot-left/right are each an
// independently captured sequence, not a mechanical reflection of one
// another: the reference controller this was captured from tunes the legs
// that lead a turn or a strafe asymmetrically (e.g. SEQ_SLIDE_L forces the
// front-right leg to recede further than a pure mirror of SEQ_SLIDE_R
// would), so each table is transcribed as its own data rather than derived.
var (
	rawInit = []Keyframe{
		{30, -30, -30, -30, 15, -30, -15, -30, -30, -30, 30, -30},
	}

	rawForward = []Keyframe{
		{51.54, -40, -40, -10, 10, -10, -10, -10, -50, -10, 61.54, -20},
		{43.85, -20, -43.85, -10, 13.85, -10, -13.85, -10, -46.15, -10, 69.23, -30},
		{47.69, -10, -47.69, -10, 17.69, -10, -17.69, -10, -53.85, -20, 76.92, -40},
		{51.54, -10, -51.54, -10, 21.54, -10, -21.54, -10, -61.54, -30, 84.62, -20},
		{55.38, -10, -55.38, -10, 25.38, -10, -13.85, -20, -69.23, -40, 80.77, -10},
		{59.23, -10, -59.23, -10, 29.23, -10, -6.15, -30, -76.92, -20, 76.92, -10},
		{63.08, -10, -63.08, -10, 21.54, -20, 1.54, -40, -73.08, -10, 73.08, -10},
		{66.92, -10, -66.92, -10, 13.85, -30, 9.23, -20, -69.23, -10, 69.23, -10},
		{70.77, -10, -59.23, -20, 6.15, -40, 5.38, -10, -65.38, -10, 65.38, -10},
		{74.62, -10, -51.54, -30, -1.54, -20, 1.54, -10, -61.54, -10, 61.54, -10},
		{66.92, -20, -43.85, -40, 2.31, -10, -2.31, -10, -57.69, -10, 57.69, -10},
		{59.23, -30, -36.15, -20, 6.15, -10, -6.15, -10, -53.85, -10, 53.85, -10},
	}

	rawBackward = []Keyframe{
		{59.23, -30, -36.15, -20, 6.15, -10, -6.15, -10, -53.85, -10, 53.85, -10},
		{66.92, -20, -43.85, -40, 2.31, -10, -2.31, -10, -57.69, -10, 58, -10},
		{75, -10, -52, -30, -2, -20, 2, -10, -62, -10, 62, -10},
		{71, -10, -59, -20, 6.2, -40, 5, -10, -65, -10, 65, -10},
		{67, -10, -67, -10, 14, -30, 9, -20, -69, -10, 69, -10},
		{63, -10, -63, -10, 22, -20, 2, -40, -73, -10, 73, -10},
		{59, -10, -59, -10, 29, -10, -6.2, -30, -77, -20, 77, -10},
		{55, -10, -55, -10, 25, -10, -14, -20, -69, -40, 81, -10},
		{52, -10, -52, -10, 22, -10, -22, -10, -62, -30, 85, -20},
		{48, -10, -48, -10, 18, -10, -18, -10, -54, -20, 77, -40},
		{44, -20, -44, -10, 14, -10, -14, -10, -46, -10, 69, -30},
		{52, -40, -40, -10, 10, -10, -10, -10, -50, -10, 62, -20},
	}

	// rawSlideLeft forces the front-right leg (slot 0) to recede (a larger
	// positive value) to free the leg's swing path, a correction the
	// reference controller applied after finding the naive strafe gait
	// caught that leg on the return stroke.
	rawSlideLeft = []Keyframe{
		{60, -25, 0, -35, 8, -50, -8, -60, -40, -25, 0, -35},
		{50, -50, 10, -20, 8, -30, -8, -20, 10, -50, -10, -20},
		{50, -20, 10, -40, 8, -30, -8, -20, 10, -20, -10, -40},
		{50, -20, -40, -40, 8, -30, -8, -20, 10, -20, 40, -40},
		{60, -30, -60, -20, 8, -50, -8, -50, 10, -30, 60, -20},
	}

	// rawSlideRight mirrors the correction onto the front-left leg (slot
	// 2) instead.
	rawSlideRight = []Keyframe{
		{0, -35, -60, -25, 8, -60, -8, -50, 0, -35, 40, -25},
		{-10, -20, -50, -50, 8, -20, -8, -30, 10, -20, -10, -50},
		{-10, -40, -50, -20, 8, -20, -8, -30, 10, -40, -10, -20},
		{40, -40, -50, -20, 8, -20, -8, -30, -40, -40, -10, -20},
		{60, -20, -60, -30, 8, -50, -8, -50, -60, -20, -10, -30},
	}

	rawPivotLeft = []Keyframe{
		{55, -20, -55, -40, -7, -40, 7, -20, -35, -20, 35, -40},
		{70, -10, -70, -10, -22, -10, 22, -10, -20, -10, 20, -10},
		{55.29, -40, -55.29, -20, -7.29, -20, 7.29, -40, -34.71, -40, 34.71, -20},
		{40, -10, -40, -10, 8, -10, -8, -10, -50, -10, 50, -10},
	}

	rawPivotRight = []Keyframe{
		{25, -20, -25, -40, 23, -40, -23, -20, -65, -20, 65, -40},
		{10, -10, -10, -10, 38, -10, -38, -10, -80, -10, 80, -10},
		{25.29, -40, -25.29, -20, 22.71, -20, -22.71, -40, -64.71, -40, 64.71, -20},
		{40, -10, -40, -10, 8, -10, -8, -10, -50, -10, 50, -10},
	}
)

func columnMeans(src []Keyframe) [NumMotors]float32 {
	var sums [NumMotors]float32
	for _, kf := range src {
		for i, v := range kf {
			sums[i] += v
		}
	}
	var means [NumMotors]float32
	n := float32(len(src))
	for i := range sums {
		means[i] = sums[i] / n
	}
	return means
}
