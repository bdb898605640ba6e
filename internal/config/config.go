// Package config resolves the CLI surface and an optional YAML overlay into
// a single Config used to wire the rest of the stack.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidArgument is returned for any CLI/YAML value outside its valid
// range; the orchestrator treats it as a fatal ConfigError at startup.
var ErrInvalidArgument = errors.New("config: invalid argument")

// Config is the fully resolved startup configuration.
type Config struct {
	Mode string // "manual" or "autonomous"

	Port   uint16
	Device string
	Baud   uint32

	CameraWidth  int
	CameraHeight int
	CameraFPS    int
	CameraQuality int

	MinAreaPx float64

	AllowSimulatedBus bool

	// StopDistance/CenterDistance/SideDistance mirror the obstacle detector's
	// configurable thresholds (spec.md Open Questions: STOP threshold is
	// configurable, defaulting to the cautious 0.65).
	StopDistance   float32
	CenterDistance float32
	SideDistance   float32
}

// Default returns the baseline configuration before CLI/YAML overrides.
func Default() Config {
	return Config{
		Mode:          "autonomous",
		Port:          8080,
		Device:        "/dev/ttyUSB0",
		Baud:          1000000,
		CameraWidth:   640,
		CameraHeight:  240,
		CameraFPS:     10,
		CameraQuality: 60,
		MinAreaPx:     4000,
		StopDistance:   0.65,
		CenterDistance: 0.50,
		SideDistance:   0.45,
	}
}

// overlay is the shape of the optional --config YAML file; zero values mean
// "not set" and are left at their Default().
type overlay struct {
	Mode          string  `yaml:"mode"`
	Port          uint16  `yaml:"port"`
	Device        string  `yaml:"device"`
	Baud          uint32  `yaml:"baud"`
	CameraWidth   int     `yaml:"camera_width"`
	CameraHeight  int     `yaml:"camera_height"`
	CameraFPS     int     `yaml:"camera_fps"`
	CameraQuality int     `yaml:"camera_quality"`
	MinAreaPx     float64 `yaml:"min_area"`
	StopDistance  float32 `yaml:"stop_distance"`
}

// Parse builds a Config from the given CLI arguments (excluding argv[0]).
func Parse(args []string) (Config, error) {
	cfg := Default()

	fs := flag.NewFlagSet("hexapod", flag.ContinueOnError)
	mode := fs.String("mode", cfg.Mode, "operating mode: manual or autonomous")
	port := fs.Uint("port", uint(cfg.Port), "HTTP streaming server port")
	device := fs.String("device", cfg.Device, "serial device path for the actuator bus")
	baud := fs.Uint("baud", uint(cfg.Baud), "serial baud rate")
	camWidth := fs.Int("camera-width", cfg.CameraWidth, "camera frame width")
	camHeight := fs.Int("camera-height", cfg.CameraHeight, "camera frame height")
	camFPS := fs.Int("camera-fps", cfg.CameraFPS, "camera capture framerate")
	minArea := fs.Float64("min-area", cfg.MinAreaPx, "minimum obstacle contour area in pixels")
	allowSim := fs.Bool("allow-sim", false, "fall back to a simulated actuator bus if the port can't be opened")
	configFile := fs.String("config", "", "optional YAML overlay file")

	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("config: %w: %v", ErrInvalidArgument, err)
	}

	cfg.Mode = *mode
	cfg.Port = uint16(*port)
	cfg.Device = *device
	cfg.Baud = uint32(*baud)
	cfg.CameraWidth = *camWidth
	cfg.CameraHeight = *camHeight
	cfg.CameraFPS = *camFPS
	cfg.MinAreaPx = *minArea
	cfg.AllowSimulatedBus = *allowSim

	if *configFile != "" {
		if err := applyOverlay(&cfg, *configFile); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyOverlay(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: reading %s: %w", path, err)
	}
	var ov overlay
	if err := yaml.Unmarshal(raw, &ov); err != nil {
		return fmt.Errorf("config: %w: parsing %s: %v", ErrInvalidArgument, path, err)
	}
	if ov.Mode != "" {
		cfg.Mode = ov.Mode
	}
	if ov.Port != 0 {
		cfg.Port = ov.Port
	}
	if ov.Device != "" {
		cfg.Device = ov.Device
	}
	if ov.Baud != 0 {
		cfg.Baud = ov.Baud
	}
	if ov.CameraWidth != 0 {
		cfg.CameraWidth = ov.CameraWidth
	}
	if ov.CameraHeight != 0 {
		cfg.CameraHeight = ov.CameraHeight
	}
	if ov.CameraFPS != 0 {
		cfg.CameraFPS = ov.CameraFPS
	}
	if ov.CameraQuality != 0 {
		cfg.CameraQuality = ov.CameraQuality
	}
	if ov.MinAreaPx != 0 {
		cfg.MinAreaPx = ov.MinAreaPx
	}
	if ov.StopDistance != 0 {
		cfg.StopDistance = ov.StopDistance
	}
	return nil
}

func (c Config) validate() error {
	if c.Mode != "manual" && c.Mode != "autonomous" {
		return fmt.Errorf("config: %w: mode must be manual or autonomous, got %q", ErrInvalidArgument, c.Mode)
	}
	if c.Device == "" {
		return fmt.Errorf("config: %w: device must not be empty", ErrInvalidArgument)
	}
	if c.CameraWidth <= 0 || c.CameraHeight <= 0 || c.CameraFPS <= 0 {
		return fmt.Errorf("config: %w: camera dimensions and fps must be positive", ErrInvalidArgument)
	}
	if c.StopDistance <= 0 || c.StopDistance > 1 {
		return fmt.Errorf("config: %w: stop-distance must be in (0,1]", ErrInvalidArgument)
	}
	return nil
}
