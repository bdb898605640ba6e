// Command hexapod is the control-stack entrypoint: it wires the actuator
// bus, gait engine, camera, obstacle detector, autonomy policy, teleop
// input, and streaming server into one of the two operating modes and
// runs until signalled or a quit keypress is observed.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/pkg/errors"

	"github.com/fieldbots/hexapod/internal/actuatorbus"
	"github.com/fieldbots/hexapod/internal/camera"
	"github.com/fieldbots/hexapod/internal/config"
	"github.com/fieldbots/hexapod/internal/gait"
	"github.com/fieldbots/hexapod/internal/orchestrator"
	"github.com/fieldbots/hexapod/internal/teleop"
	"github.com/fieldbots/hexapod/internal/vision"
	"github.com/fieldbots/hexapod/pkg/logger"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code per spec.md §6: 0 normal, 1 startup
// failure, 130 signal.
func run() int {
	log := logger.For("main")

	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	bus, err := openBus(cfg)
	if err != nil {
		log.Error().Err(err).Msg("failed to open actuator bus")
		return 1
	}

	input, err := teleop.NewSource()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize teleop input")
		return 1
	}

	lib := gait.NewLibrary()
	camCfg := camera.DefaultConfig()
	camCfg.Width = cfg.CameraWidth
	camCfg.Height = cfg.CameraHeight
	camCfg.FPS = cfg.CameraFPS
	camCfg.Quality = cfg.CameraQuality
	cam := camera.NewSource(camCfg)

	visionCfg := vision.DefaultConfig()
	visionCfg.MinAreaPx = cfg.MinAreaPx
	visionCfg.StopDistanceThreshold = cfg.StopDistance
	visionCfg.CenterDistanceThreshold = cfg.CenterDistance
	visionCfg.SideDistanceThreshold = cfg.SideDistance

	addr := fmt.Sprintf(":%d", cfg.Port)
	orch := orchestrator.New(cfg, bus, lib, cam, visionCfg, input, addr)

	log.Info().Str("mode", cfg.Mode).Str("device", cfg.Device).Uint16("port", cfg.Port).Msg("starting")

	if err := orch.Run(ctx); err != nil {
		log.Error().Err(errors.Wrap(err, "control loop")).Msg("orchestrator exited with error")
		return 1
	}

	if ctx.Err() != nil {
		return 130
	}
	return 0
}

func openBus(cfg config.Config) (actuatorbus.Bus, error) {
	bus, err := actuatorbus.Open(cfg.Device, cfg.Baud)
	if err == nil {
		return bus, nil
	}
	if !cfg.AllowSimulatedBus {
		return nil, errors.Wrapf(err, "open actuator bus %s", cfg.Device)
	}
	return actuatorbus.NewSimulatedBus(), nil
}
