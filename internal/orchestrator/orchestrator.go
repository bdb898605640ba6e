// Package orchestrator composes the actuator bus, gait engine, camera,
// obstacle detector, autonomy policy, teleop input, and streaming server
// into the manual and autonomous operating modes (spec.md §4.9, C9).
package orchestrator

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/fieldbots/hexapod/internal/actuatorbus"
	"github.com/fieldbots/hexapod/internal/autonomy"
	"github.com/fieldbots/hexapod/internal/config"
	"github.com/fieldbots/hexapod/internal/gait"
	"github.com/fieldbots/hexapod/internal/streamserver"
	"github.com/fieldbots/hexapod/internal/teleop"
	"github.com/fieldbots/hexapod/internal/vision"
	"github.com/fieldbots/hexapod/pkg/logger"
)

// cameraSource is the slice of camera.Source the orchestrator depends on,
// narrow enough for tests to fake.
type cameraSource interface {
	Start(ctx context.Context) error
	streamserver.FrameSource
	Close() error
}

// inputSource is the slice of teleop.Source the orchestrator depends on.
type inputSource interface {
	TryReadKey(autonomyMode bool) teleop.Key
	Restore() error
}

// shutdownGrace is how long the shutdown sequence, which runs after the
// control loop has exited, waits for its final INIT broadcast to complete
// (spec.md §5: "waits up to 500 ms for the control loop to emit INIT").
const shutdownGrace = 500 * time.Millisecond

// Orchestrator owns the control loop and every long-lived resource the
// loop touches; the shutdown sequence that Run executes before returning
// releases all of them on every exit path, per spec.md §5.
type Orchestrator struct {
	cfg       config.Config
	bus       actuatorbus.Bus
	engine    *gait.Engine
	cam       cameraSource
	visionCfg vision.Config
	policy    *autonomy.Policy
	input     inputSource
	server    *streamserver.Server
	snap      *snapshot

	running atomic.Bool
	sleepFn func(time.Duration) // injected for tests
}

// New wires the components; the streaming server listens on addr (e.g.
// ":8080") and is started by Run, not by New.
func New(cfg config.Config, bus actuatorbus.Bus, lib *gait.Library, cam cameraSource, visionCfg vision.Config, input inputSource, addr string) *Orchestrator {
	o := &Orchestrator{
		cfg:       cfg,
		bus:       bus,
		engine:    gait.NewEngine(lib, bus),
		cam:       cam,
		visionCfg: visionCfg,
		policy:    autonomy.NewPolicy(),
		input:     input,
		snap:      newSnapshot(),
		sleepFn:   time.Sleep,
	}
	o.server = streamserver.New(addr, cam, o.snap)
	return o
}

func motorIDs() []int {
	ids := make([]int, actuatorbus.NumMotors)
	for i := range ids {
		ids[i] = i + 1
	}
	return ids
}

// Run enables torque, starts the HTTP server and (in autonomous mode only)
// the camera, and drives the
// control loop until ctx is cancelled or a quit keypress is observed. It
// always runs the full shutdown sequence before returning, regardless of
// how the loop ended.
func (o *Orchestrator) Run(ctx context.Context) error {
	log := logger.For("orchestrator")
	o.running.Store(true)

	if err := o.bus.EnableTorque(motorIDs()); err != nil {
		log.Error().Err(err).Msg("enable torque failed at startup")
	}
	// Scenario 1 (spec.md §8): the very first tick writes the INIT pose.
	if err := o.engine.Tick(); err != nil {
		log.Error().Err(err).Msg("initial INIT broadcast failed")
	}
	o.snap.setTick(o.engine.Action(), vision.Summary{}, 0)

	camCtx, camCancel := context.WithCancel(ctx)
	defer camCancel()
	if o.cfg.Mode == "autonomous" {
		if err := o.cam.Start(camCtx); err != nil {
			log.Error().Err(err).Msg("camera start failed, continuing without frames")
		}
	}

	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		if err := o.server.ListenAndServe(); err != nil {
			log.Info().Err(err).Msg("streaming server stopped")
		}
	}()

	var loopErr error
	if o.cfg.Mode == "manual" {
		loopErr = o.runManual(ctx)
	} else {
		loopErr = o.runAutonomous(ctx)
	}

	o.shutdown(serverDone)
	return loopErr
}

// runManual implements spec.md §4.9 Teleop: poll, map, set_action, tick.
func (o *Orchestrator) runManual(ctx context.Context) error {
	log := logger.For("orchestrator")
	for o.running.Load() && ctx.Err() == nil {
		key := o.input.TryReadKey(false)
		if key == teleop.KeyQuit {
			o.running.Store(false)
			break
		}
		if key != teleop.KeyNone {
			o.engine.SetAction(actionForKey(key))
		}

		if err := o.engine.Tick(); err != nil {
			log.Error().Err(err).Msg("tick failed")
		}
		o.snap.setTick(o.engine.Action(), vision.Summary{}, 0)

		o.sleep(o.engine.RecommendedDelay(false))
	}
	return nil
}

// runAutonomous implements spec.md §4.9 Autonomy, including the pause
// gate of §4.6: while paused it emits Stop and sleeps the engine's
// vision-active Stop delay each iteration, without touching FSM state.
func (o *Orchestrator) runAutonomous(ctx context.Context) error {
	log := logger.For("orchestrator")
	paused := false

	for o.running.Load() && ctx.Err() == nil {
		key := o.input.TryReadKey(true)
		switch key {
		case teleop.KeyQuit:
			o.running.Store(false)
			continue
		case teleop.KeyStop:
			paused = !paused
			o.snap.setPaused(paused)
		}

		if paused {
			o.engine.SetAction(gait.ActionStop)
			if err := o.engine.Tick(); err != nil {
				log.Error().Err(err).Msg("tick failed")
			}
			o.snap.setTick(gait.ActionStop, vision.Summary{}, o.policy.State.DangerCount)
			o.sleep(o.engine.RecommendedDelay(true))
			continue
		}

		summary, action := o.evaluate()
		o.engine.SetAction(action)
		if err := o.engine.Tick(); err != nil {
			log.Error().Err(err).Msg("tick failed")
		}
		o.snap.setTick(action, summary, o.policy.State.DangerCount)

		o.sleep(o.engine.RecommendedDelay(true))
	}
	return nil
}

// evaluate fetches the latest frame, runs the detector and policy, and
// applies the no-frame safety override of spec.md §7: with no frame ever
// published, report (OK, None) but force Stop.
func (o *Orchestrator) evaluate() (vision.Summary, gait.Action) {
	frame, ok := o.cam.LatestFrame()
	if !ok {
		return vision.Summary{Danger: vision.DangerOK, Position: vision.PositionNone}, gait.ActionStop
	}
	defer frame.Close()
	o.snap.recordFrame()

	summary := vision.Detect(frame, o.visionCfg)
	return summary, o.policy.Next(summary)
}

func (o *Orchestrator) sleep(d time.Duration) {
	o.sleepFn(d)
}

// shutdown releases every acquired resource, in the order of spec.md §5:
// emit a final INIT, disable torque and close the port, terminate the
// camera and clean up temp files, restore the terminal, and shut down the
// HTTP server. Every step runs even if an earlier one errors.
func (o *Orchestrator) shutdown(serverDone <-chan struct{}) {
	log := logger.For("orchestrator")

	o.engine.SetAction(gait.ActionStop)
	done := make(chan struct{})
	go func() {
		_ = o.engine.Tick()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(shutdownGrace):
		log.Error().Err(ErrShutdownTimeout).Msg("shutdown grace period elapsed")
	}

	if err := o.bus.Close(); err != nil {
		log.Error().Err(err).Msg("actuator bus close failed")
	}
	if err := o.cam.Close(); err != nil {
		log.Error().Err(err).Msg("camera close failed")
	}
	if err := o.input.Restore(); err != nil {
		log.Error().Err(err).Msg("terminal restore failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := o.server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("streaming server shutdown failed")
	}
	<-serverDone
}

func actionForKey(k teleop.Key) gait.Action {
	switch k {
	case teleop.KeyForward:
		return gait.ActionForward
	case teleop.KeyBackward:
		return gait.ActionBackward
	case teleop.KeySlideLeft:
		return gait.ActionSlideLeft
	case teleop.KeySlideRight:
		return gait.ActionSlideRight
	case teleop.KeyPivotLeft:
		return gait.ActionPivotLeft
	case teleop.KeyPivotRight:
		return gait.ActionPivotRight
	default:
		return gait.ActionStop
	}
}
