package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cv "gocv.io/x/gocv"

	"github.com/fieldbots/hexapod/internal/actuatorbus"
	"github.com/fieldbots/hexapod/internal/config"
	"github.com/fieldbots/hexapod/internal/gait"
	"github.com/fieldbots/hexapod/internal/teleop"
	"github.com/fieldbots/hexapod/internal/vision"
)

type fakeCamera struct{ ok bool }

func (f *fakeCamera) Start(ctx context.Context) error { return nil }
func (f *fakeCamera) LatestFrame() (cv.Mat, bool) {
	if !f.ok {
		return cv.Mat{}, false
	}
	return cv.NewMatWithSize(240, 640, cv.MatTypeCV8UC3), true
}
func (f *fakeCamera) Close() error { return nil }

// fakeInput replays a fixed sequence of keys, one per TryReadKey call,
// then returns KeyNone forever.
type fakeInput struct {
	keys []teleop.Key
	i    int
}

func (f *fakeInput) TryReadKey(autonomyMode bool) teleop.Key {
	if f.i >= len(f.keys) {
		return teleop.KeyNone
	}
	k := f.keys[f.i]
	f.i++
	return k
}
func (f *fakeInput) Restore() error { return nil }

func newTestOrchestrator(mode string, bus actuatorbus.Bus, cam cameraSource, input inputSource) *Orchestrator {
	cfg := config.Default()
	cfg.Mode = mode
	lib := gait.NewLibrary()
	o := New(cfg, bus, lib, cam, vision.DefaultConfig(), input, ":0")
	o.sleepFn = func(time.Duration) {} // no real pacing delay in tests
	return o
}

func TestInitialTickWritesInitPose(t *testing.T) {
	bus := actuatorbus.NewSimulatedBus()
	o := newTestOrchestrator("manual", bus, &fakeCamera{}, &fakeInput{keys: []teleop.Key{teleop.KeyQuit}})

	err := o.Run(context.Background())
	require.NoError(t, err)

	// First broadcast must be the INIT pose (scenario 1, spec.md §8):
	// deg_to_raw(30) = 2389 for INIT_POSE[0] = 30.
	assert.Equal(t, uint16(2389), bus.Last()[0])
}

func TestManualForwardThenQuit(t *testing.T) {
	bus := actuatorbus.NewSimulatedBus()
	input := &fakeInput{keys: []teleop.Key{teleop.KeyForward, teleop.KeyQuit}}
	o := newTestOrchestrator("manual", bus, &fakeCamera{}, input)

	err := o.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, gait.ActionStop, o.engine.Action()) // reset to Stop during shutdown
}

func TestAutonomousPauseRoundTrip(t *testing.T) {
	bus := actuatorbus.NewSimulatedBus()
	// space toggles pause on, then off, then quit.
	input := &fakeInput{keys: []teleop.Key{teleop.KeyStop, teleop.KeyStop, teleop.KeyQuit}}
	o := newTestOrchestrator("autonomous", bus, &fakeCamera{ok: false}, input)

	err := o.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, o.snap.Status().Paused)
}

func TestNoFrameForcesStopAction(t *testing.T) {
	bus := actuatorbus.NewSimulatedBus()
	o := newTestOrchestrator("autonomous", bus, &fakeCamera{ok: false}, &fakeInput{})
	summary, action := o.evaluate()
	assert.Equal(t, vision.DangerOK, summary.Danger)
	assert.Equal(t, vision.PositionNone, summary.Position)
	assert.Equal(t, gait.ActionStop, action)
}
